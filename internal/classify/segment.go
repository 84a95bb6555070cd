package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minBlockLength       = 20
	minDescriptionLength = 10
	noRisksMarker        = "no significant risks detected"
)

var (
	markerRun      = regexp.MustCompile(`\*+`)
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
)

// Segment splits a narrative into candidate blocks, in order. Runs of
// asterisks delimit blocks; a narrative without any falls back to blank-line
// paragraphs. Blocks of 20 characters or fewer are dropped.
func Segment(narrative string) []string {
	text := strings.ReplaceAll(narrative, "\r\n", "\n")

	var parts []string
	if strings.Contains(text, "*") {
		parts = markerRun.Split(text, -1)
	} else {
		parts = paragraphBreak.Split(text, -1)
	}

	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if utf8.RuneCountInString(trimmed) <= minBlockLength {
			continue
		}
		blocks = append(blocks, trimmed)
	}
	return blocks
}

func noFindings(narrative string) bool {
	return strings.Contains(strings.ToLower(narrative), noRisksMarker)
}
