// Package sanitize cleans flag values pasted from documents and chat tools.
//
// Pasted filters often carry invisible Unicode characters and stray line breaks
// that the API would reject as unknown attributes.
package sanitize

import (
	"regexp"
	"strings"
)

var invisible = strings.NewReplacer(
	"\u200B", "", // Zero-width space
	"\u200C", "", // Zero-width non-joiner
	"\u200D", "", // Zero-width joiner
	"\uFEFF", "", // Zero-width no-break space (BOM)
	"\u00AD", "", // Soft hyphen
	"\u2060", "", // Word joiner
	"\u180E", "", // Mongolian vowel separator
)

var whitespace = regexp.MustCompile(`[ \t\r\n]+`)

// Field removes invisible characters, folds line breaks and runs of whitespace
// into single spaces and trims the result.
func Field(s string) string {
	if s == "" {
		return s
	}
	s = invisible.Replace(s)
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Identifier is Field for values that never contain spaces, such as filter keys
// and resource types.
func Identifier(s string) string {
	return strings.ReplaceAll(Field(s), " ", "")
}
