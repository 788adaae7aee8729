package subtitle

import (
	"fmt"
	"io"
	"strings"

	"github.com/ivlev/sub2video/internal/timecode"
)

// Event is one ASS dialogue record: the same cue data re-serialized with
// encoder-clock timestamps for the subtitle-burn path.
type Event struct {
	Start string // H:MM:SS.cc
	End   string // H:MM:SS.cc
	Text  string // lines joined with \N
}

// StyleProfile is the single fixed caption style burned by the encoder.
type StyleProfile struct {
	FontName  string
	FontSize  int
	PlayResX  int
	PlayResY  int
	Outline   float64
	MarginV   int
	Alignment int
}

// DefaultStyle matches the raster compositor: bold white fill over a
// black outline, bottom-center.
func DefaultStyle(w, h int) StyleProfile {
	return StyleProfile{
		FontName:  "Arial",
		FontSize:  48,
		PlayResX:  w,
		PlayResY:  h,
		Outline:   3,
		MarginV:   40,
		Alignment: 2,
	}
}

// assClock canonicalizes a raw timestamp and reshapes it into the ASS
// H:MM:SS.cc clock.
func assClock(raw string) (string, bool) {
	canon, err := timecode.Canonicalize(raw)
	if err != nil {
		return "", false
	}
	// canon is always HH:MM:SS,mmm
	parts := strings.SplitN(canon, ",", 2)
	return timecode.ASSClock(parts[0], parts[1]), true
}

// Events converts a timed-text document directly into dialogue records.
// This is an alternate serialization of the cue list Parse produces: the
// same blocks survive, in the same order.
func Events(doc string) []Event {
	var events []Event
	for _, block := range blocks(doc) {
		_, _, textLines, ok := parseBlock(block)
		if !ok || len(textLines) == 0 {
			continue
		}
		text := strings.Join(textLines, `\N`)
		if strings.TrimSpace(strings.ReplaceAll(text, `\N`, " ")) == "" {
			continue
		}

		// parseBlock validated the arrow line already; re-split for the
		// raw timestamp substrings.
		var start, end string
		for _, line := range strings.Split(block, "\n") {
			if strings.Contains(line, arrow) {
				stamps := strings.Split(line, arrow)
				start, end = stamps[0], stamps[1]
				break
			}
		}

		startClock, ok := assClock(start)
		if !ok {
			continue
		}
		endClock, ok := assClock(end)
		if !ok {
			continue
		}
		events = append(events, Event{Start: startClock, End: endClock, Text: text})
	}
	return events
}

// WriteASS emits a complete ASS script for ffmpeg's subtitles filter.
func WriteASS(w io.Writer, events []Event, style StyleProfile) error {
	header := fmt.Sprintf(`[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 0

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, OutlineColour, BackColour, Bold, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,&H00FFFFFF,&H00000000,&H00000000,-1,1,%.1f,0,%d,10,10,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, style.PlayResX, style.PlayResY, style.FontName, style.FontSize, style.Outline, style.Alignment, style.MarginV)

	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, ev := range events {
		line := fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n", ev.Start, ev.End, ev.Text)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
