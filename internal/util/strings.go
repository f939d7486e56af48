package util

import "unicode/utf8"

// Truncate shortens s to at most max runes. Provider error bodies go through
// this before they reach a client.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
