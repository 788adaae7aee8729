package compositor

import (
	"bytes"
	"fmt"
	"testing"
)

// countingRenderer records how many times the real compositor would run.
type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(caption string, anchorPct int) ([]byte, error) {
	r.calls++
	return []byte(fmt.Sprintf("frame:%s:%d", caption, r.calls)), nil
}

func TestCacheReusesUnchangedCaption(t *testing.T) {
	stub := &countingRenderer{}
	cache := NewCache(stub)

	first, err := cache.Render("hello", 50)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	second, err := cache.Render("hello", 50)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	if stub.calls != 1 {
		t.Errorf("expected 1 compositor call for identical captions, got %d", stub.calls)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached frame differs from original")
	}
}

func TestCacheRerendersOnCaptionChange(t *testing.T) {
	stub := &countingRenderer{}
	cache := NewCache(stub)

	captions := []string{"", "A", "A", "B", "B", "B", ""}
	for _, caption := range captions {
		if _, err := cache.Render(caption, 50); err != nil {
			t.Fatalf("Render(%q) error: %v", caption, err)
		}
	}

	// "", "A", "B", "" -> four caption changes
	if stub.calls != 4 {
		t.Errorf("expected 4 compositor calls, got %d", stub.calls)
	}
}

func TestCacheCachesEmptyCaption(t *testing.T) {
	stub := &countingRenderer{}
	cache := NewCache(stub)

	for i := 0; i < 5; i++ {
		if _, err := cache.Render("", 50); err != nil {
			t.Fatalf("Render error: %v", err)
		}
	}
	if stub.calls != 1 {
		t.Errorf("empty caption should cache like any other, got %d calls", stub.calls)
	}
}
