package encoder

import (
	"fmt"
	"strings"
)

// buildFilter scales frames to the output resolution (even dimensions,
// required by yuv420p) and optionally burns an ASS subtitle script.
func buildFilter(width, height int, subtitlePath string) string {
	filters := []string{
		fmt.Sprintf("scale=%d:%d", width&^1, height&^1),
		"format=yuv420p",
	}
	if subtitlePath != "" {
		filters = append(filters, fmt.Sprintf("subtitles=%s", escapeFilterPath(subtitlePath)))
	}
	return strings.Join(filters, ",")
}

// escapeFilterPath quotes a path for use inside a filtergraph: colons and
// quotes are meta-characters there.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `'`, `\'`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	return "'" + path + "'"
}
