package state

import (
	"strings"
	"unicode"
)

// NormalizeUsernames splits free text on commas and whitespace and drops
// the empty tokens. Order and duplicates are kept.
func NormalizeUsernames(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
