// Package sanitizer normalizes caller-supplied strings before validation
// and storage. All functions are idempotent and handle empty input
// gracefully.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims leading/trailing whitespace and collapses internal
// runs of whitespace to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeID trims an identifier; ids never contain internal whitespace.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizeSearchTerm lowercases a free-text search term after whitespace
// normalization so substring matching stays case-insensitive.
func NormalizeSearchTerm(term string) string {
	return strings.ToLower(TrimAndNormalize(term))
}
