// Package timecode converts the loose timestamp dialect produced by
// transcription services into seconds and into the strict forms the
// encoder pipeline needs.
package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTimestamp reports a timestamp whose component count matches
// no recognized shape. Individual unparsable components do NOT trigger it;
// they degrade to zero instead.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// splitComponents breaks a raw timestamp on any of ':', ',' or '.'.
// Transcription output mixes all three separators freely.
func splitComponents(raw string) []string {
	return strings.FieldsFunc(strings.TrimSpace(raw), func(r rune) bool {
		return r == ':' || r == ',' || r == '.'
	})
}

// atoiSafe parses a component, degrading to 0 on garbage. Malformed
// subtitle sources are expected; a single bad digit must not abort the batch.
func atoiSafe(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// normalize resolves a component slice into (hours, minutes, seconds, millis).
//
// The 3-component case is ambiguous: "01:02:03" could be H:MM:SS or MM:SS:mmm.
// The rule (reverse-engineered from the upstream service, keep it exactly):
// if the last component exceeds 59 or is written with exactly three digits,
// it is milliseconds and there are no hours.
func normalize(comps []string) (h, m, s, ms int, err error) {
	switch len(comps) {
	case 4:
		h = atoiSafe(comps[0])
		m = atoiSafe(comps[1])
		s = atoiSafe(comps[2])
		ms = atoiSafe(comps[3])
	case 3:
		last := atoiSafe(comps[2])
		if last > 59 || len(strings.TrimSpace(comps[2])) == 3 {
			m = atoiSafe(comps[0])
			s = atoiSafe(comps[1])
			ms = last
		} else {
			h = atoiSafe(comps[0])
			m = atoiSafe(comps[1])
			s = last
		}
	case 2:
		m = atoiSafe(comps[0])
		s = atoiSafe(comps[1])
	default:
		err = fmt.Errorf("%w: %d components", ErrMalformedTimestamp, len(comps))
	}
	return
}

// Parse converts a raw timestamp into seconds.
func Parse(raw string) (float64, error) {
	h, m, s, ms, err := normalize(splitComponents(raw))
	if err != nil {
		return 0, fmt.Errorf("%q: %w", raw, err)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

// Canonicalize reformats a raw timestamp into the strict SRT form
// HH:MM:SS,mmm. Components are zero-padded and reduced to field range, so
// the operation is idempotent: canonicalizing canonical input reproduces it.
func Canonicalize(raw string) (string, error) {
	h, m, s, ms, err := normalize(splitComponents(raw))
	if err != nil {
		return "", fmt.Errorf("%q: %w", raw, err)
	}
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h%100, m%100, s%100, ms%1000), nil
}

// ASSClock converts an HH:MM:SS clock plus a 3-digit millisecond fragment
// into the H:MM:SS.cc form the ASS subtitle format uses (hours not padded,
// centisecond precision).
func ASSClock(hms string, msFrag string) string {
	parts := strings.Split(hms, ":")
	h, m, s := 0, 0, 0
	switch len(parts) {
	case 3:
		h, m, s = atoiSafe(parts[0]), atoiSafe(parts[1]), atoiSafe(parts[2])
	case 2:
		m, s = atoiSafe(parts[0]), atoiSafe(parts[1])
	}
	cs := 0
	frag := strings.TrimSpace(msFrag)
	if len(frag) > 2 {
		frag = frag[:2]
	}
	cs = atoiSafe(frag)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}
