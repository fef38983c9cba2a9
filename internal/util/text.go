package util

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// EqualFoldAll reports whether each field equals the matching want, ignoring case
// and surrounding whitespace.
func EqualFoldAll(fields []string, want ...string) bool {
	if len(fields) < len(want) {
		return false
	}
	for i, w := range want {
		if !strings.EqualFold(strings.TrimSpace(fields[i]), w) {
			return false
		}
	}
	return true
}
