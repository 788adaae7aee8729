package subtitle

import (
	"math"
	"strings"
	"testing"
)

const wellFormed = `1
00:00:00,000 --> 00:00:02,000
Hello world

2
00:00:02,000 --> 00:00:04,000
Second line
continues here
`

func TestParse(t *testing.T) {
	cues := Parse(wellFormed)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "Hello world" {
		t.Errorf("cue 0 text = %q", cues[0].Text)
	}
	if cues[1].Text != "Second line continues here" {
		t.Errorf("cue 1 text = %q, want lines joined with spaces", cues[1].Text)
	}
	if math.Abs(cues[0].Start-0) > 0.001 || math.Abs(cues[0].End-2) > 0.001 {
		t.Errorf("cue 0 timing = [%f, %f]", cues[0].Start, cues[0].End)
	}
	if math.Abs(cues[1].Start-2) > 0.001 || math.Abs(cues[1].End-4) > 0.001 {
		t.Errorf("cue 1 timing = [%f, %f]", cues[1].Start, cues[1].End)
	}
}

func TestParseDropsMalformedBlocks(t *testing.T) {
	doc := `1
00:00:00,000 --> 00:00:02,000
Good block

2
this block has no arrow line

3
00:00:04,000 --> 00:00:06,000 --> 00:00:08,000
too many timestamps

4
00:00:06,000 --> 00:00:08,000
`
	cues := Parse(doc)
	if len(cues) != 1 {
		t.Fatalf("expected exactly 1 surviving cue, got %d", len(cues))
	}
	if cues[0].Text != "Good block" {
		t.Errorf("surviving cue = %q", cues[0].Text)
	}
}

func TestParseKeepsDocumentOrder(t *testing.T) {
	doc := `1
00:00:10,000 --> 00:00:12,000
Later

2
00:00:00,000 --> 00:00:02,000
Earlier
`
	cues := Parse(doc)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "Later" || cues[1].Text != "Earlier" {
		t.Errorf("cues were reordered: %q, %q", cues[0].Text, cues[1].Text)
	}
}

func TestActiveAt(t *testing.T) {
	cues := []Cue{
		{Text: "A", Start: 0, End: 2},
		{Text: "B", Start: 2, End: 4},
	}

	tests := []struct {
		t    float64
		want string
		ok   bool
	}{
		{1.9, "A", true},
		{2.0, "B", true}, // interval is [start, end): boundary belongs to the next cue
		{3.99, "B", true},
		{5.0, "", false},
		{0.0, "A", true},
	}

	for _, tt := range tests {
		cue, ok := ActiveAt(cues, tt.t)
		if ok != tt.ok || cue.Text != tt.want {
			t.Errorf("ActiveAt(t=%.2f) = (%q, %v), want (%q, %v)", tt.t, cue.Text, ok, tt.want, tt.ok)
		}
	}
}

func TestActiveAtFirstMatchWins(t *testing.T) {
	// Overlapping ranges resolve by source order, not by start time.
	cues := []Cue{
		{Text: "B", Start: 1, End: 5},
		{Text: "A", Start: 0, End: 5},
	}
	cue, ok := ActiveAt(cues, 2.0)
	if !ok || cue.Text != "B" {
		t.Errorf("ActiveAt(2.0) = (%q, %v), want first source-order match B", cue.Text, ok)
	}
}

func TestEvents(t *testing.T) {
	events := Events(wellFormed)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Start != "0:00:00.00" || events[0].End != "0:00:02.00" {
		t.Errorf("event 0 clocks = %q -> %q", events[0].Start, events[0].End)
	}
	if events[1].Text != `Second line\Ncontinues here` {
		t.Errorf("event 1 text = %q, want \\N line join", events[1].Text)
	}
}

func TestWriteASS(t *testing.T) {
	events := Events(wellFormed)
	var sb strings.Builder
	if err := WriteASS(&sb, events, DefaultStyle(1280, 720)); err != nil {
		t.Fatalf("WriteASS error: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"[Script Info]",
		"PlayResX: 1280",
		"[V4+ Styles]",
		"[Events]",
		"Dialogue: 0,0:00:00.00,0:00:02.00,Default,,0,0,0,,Hello world",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ASS output missing %q", want)
		}
	}
	if got := strings.Count(out, "Dialogue:"); got != 2 {
		t.Errorf("expected 2 dialogue lines, got %d", got)
	}
}
