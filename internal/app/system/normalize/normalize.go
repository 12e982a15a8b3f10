// Package normalize cleans user-supplied strings before validation or lookup.
package normalize

import (
	"strings"
	"unicode/utf8"
)

// Name trims surrounding whitespace and collapses internal runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NameLength counts characters (runes), not bytes, so Hangul names of two
// syllables satisfy a two-character minimum.
func NameLength(s string) int {
	return utf8.RuneCountInString(s)
}

// JoinCode trims and uppercases a join code so lookups are case-insensitive.
func JoinCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// AccessMode lowercases and trims an access mode value.
func AccessMode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ID trims an opaque identifier taken from a path or payload.
func ID(s string) string {
	return strings.TrimSpace(s)
}
