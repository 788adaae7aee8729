package timecode

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"01:02:03,004", 3723.004}, // 4 components, exact
		{"01:02:03:004", 3723.004}, // colon-separated millis
		{"01:02:03.004", 3723.004},
		{"00:00:00,000", 0},
		{"01:02,500", 62.5},   // 3-digit third component -> MM:SS,mmm
		{"01:02:75", 62.075},  // value > 59 -> MM:SS,mmm
		{"01:02:03", 3723},    // plain H:MM:SS, no millis
		{"02:30", 150},        // MM:SS
		{"xx:30", 30},         // bad component degrades to zero
		{"01:xx:03", 3603},    // middle component degrades to zero
		{"10:00:00,5", 36000.005},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.raw, err)
			}
			if math.Abs(got-tt.want) > 0.0005 {
				t.Errorf("Parse(%q) = %f, want %f", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{"", "12", "1:2:3:4:5"} {
		if _, err := Parse(raw); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("Parse(%q): expected ErrMalformedTimestamp, got %v", raw, err)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"01:02:03,004", "01:02:03,004"},
		{"1:2:3,4", "01:02:03,004"},
		{"01:02,500", "00:01:02,500"}, // ambiguous form resolves to MM:SS,mmm
		{"01:02:03", "01:02:03,000"},
		{"02:30", "00:02:30,000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Canonicalize(tt.raw)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{"01:02:03,004", "1:2:3", "01:02,500", "02:30", "0:0:0,0"}
	for _, raw := range inputs {
		once, err := Canonicalize(raw)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", raw, err)
		}
		twice, err := Canonicalize(once)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

func TestParseCanonicalizeRoundTrip(t *testing.T) {
	inputs := []string{"01:02:03,004", "1:2:3", "01:02,500", "02:30", "00:59:59,999"}
	for _, raw := range inputs {
		direct, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", raw, err)
		}
		canon, err := Canonicalize(raw)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", raw, err)
		}
		viaCanon, err := Parse(canon)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", canon, err)
		}
		if math.Abs(direct-viaCanon) > 0.0005 {
			t.Errorf("round trip %q: direct %f, via canonical %f", raw, direct, viaCanon)
		}
	}
}

func TestASSClock(t *testing.T) {
	tests := []struct {
		hms  string
		ms   string
		want string
	}{
		{"00:00:01", "500", "0:00:01.50"},
		{"01:02:03", "004", "1:02:03.00"},
		{"10:59:59", "999", "10:59:59.99"},
		{"00:02:30", "000", "0:02:30.00"},
	}

	for _, tt := range tests {
		if got := ASSClock(tt.hms, tt.ms); got != tt.want {
			t.Errorf("ASSClock(%q, %q) = %q, want %q", tt.hms, tt.ms, got, tt.want)
		}
	}
}
