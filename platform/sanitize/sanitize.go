// Package sanitize provides text cleanup for values read from contact exports.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fieldCleaner drops control and format characters (stray BOMs, zero-width
// spaces) and composes to NFC so equal names compare equal.
var fieldCleaner = transform.Chain(runes.Remove(runes.Predicate(isInvisible)), norm.NFC)

func isInvisible(r rune) bool {
	if r == '\t' || r == ' ' {
		return false
	}
	return unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r)
}

// Field cleans a single CSV field for output.
func Field(s string) string {
	result, _, err := transform.String(fieldCleaner, s)
	if err != nil {
		result = s
	}
	return strings.TrimSpace(result)
}

// FirstNonEmpty returns the first non-empty raw value, cleaned with Field.
// A value of only spaces still wins and comes out blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return Field(v)
		}
	}
	return ""
}
