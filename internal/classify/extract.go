package classify

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingMarkers  = regexp.MustCompile(`^\*+\s*`)
	trailingMarkers = regexp.MustCompile(`\*+$`)
)

// extractFields splits a block into title and description. ordinal is the
// 1-based position of the block and only names untitled blocks.
func extractFields(block string, ordinal int) (title, description string) {
	if label, rest, ok := splitLabel(block); ok {
		title = label
		description = stripEmphasis(rest)
	} else {
		sentences := strings.Split(block, ".")
		title = strings.TrimSpace(leadingMarkers.ReplaceAllString(sentences[0], ""))
		if title == "" {
			title = "Risk Item " + strconv.Itoa(ordinal)
		}
		description = stripEmphasis(strings.Join(sentences[1:], "."))
	}
	return cleanTitle(title), description
}

// splitLabel finds a "label: remainder" shape. The label must be non-empty
// and the remainder must contain at least one character after the colon.
func splitLabel(block string) (label, rest string, ok bool) {
	for i := 1; i < len(block); i++ {
		if block[i] != ':' {
			continue
		}
		if i+1 >= len(block) {
			return "", "", false
		}
		return block[:i], strings.TrimLeft(block[i+1:], " \t\r\n\f\v"), true
	}
	return "", "", false
}

// cleanTitle strips emphasis markers and folds the title onto one line.
func cleanTitle(title string) string {
	title = leadingMarkers.ReplaceAllString(title, "")
	title = trailingMarkers.ReplaceAllString(title, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(title, " "))
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}
