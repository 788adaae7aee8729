// Package subtitle parses loosely-formatted timed-text documents into cue
// lists. The input comes from transcription services and is not assumed to
// be well-formed SRT: malformed blocks are dropped, never fatal.
package subtitle

import (
	"strings"

	"github.com/ivlev/sub2video/internal/timecode"
)

// Cue is one timed caption. Start/End are seconds. Cues keep document
// order and may overlap; consumers must not assume temporal monotonicity.
type Cue struct {
	Text  string
	Start float64
	End   float64
}

const arrow = "-->"

// blocks splits a document on blank-line boundaries.
func blocks(doc string) []string {
	normalized := strings.ReplaceAll(doc, "\r\n", "\n")
	return strings.Split(normalized, "\n\n")
}

// parseBlock extracts the timing line and the text lines from one block.
// Lines above the arrow line are an optional sequence index and are ignored.
func parseBlock(block string) (start, end float64, textLines []string, ok bool) {
	lines := strings.Split(block, "\n")

	arrowIdx := -1
	for i, line := range lines {
		if strings.Contains(line, arrow) {
			arrowIdx = i
			break
		}
	}
	if arrowIdx == -1 {
		return 0, 0, nil, false
	}

	stamps := strings.Split(lines[arrowIdx], arrow)
	if len(stamps) != 2 {
		return 0, 0, nil, false
	}

	start, err := timecode.Parse(stamps[0])
	if err != nil {
		return 0, 0, nil, false
	}
	end, err = timecode.Parse(stamps[1])
	if err != nil {
		return 0, 0, nil, false
	}

	for _, line := range lines[arrowIdx+1:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			textLines = append(textLines, trimmed)
		}
	}
	return start, end, textLines, true
}

// Parse converts a timed-text document into cues, in document order.
// Blocks with no arrow line, an unsplittable timing line, or empty text
// are dropped silently.
func Parse(doc string) []Cue {
	var cues []Cue
	for _, block := range blocks(doc) {
		start, end, textLines, ok := parseBlock(block)
		if !ok {
			continue
		}
		text := strings.Join(textLines, " ")
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Text: text, Start: start, End: end})
	}
	return cues
}

// ActiveAt returns the first cue in source order whose [Start, End)
// interval contains t. First-match-wins is load-bearing for overlapping
// cue ranges; do not sort or tie-break by start time.
func ActiveAt(cues []Cue, t float64) (Cue, bool) {
	for _, c := range cues {
		if t >= c.Start && t < c.End {
			return c, true
		}
	}
	return Cue{}, false
}
