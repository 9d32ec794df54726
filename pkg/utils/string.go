package utils

import "unicode/utf8"

// Truncate is a simple string truncate. The cut lands on a rune boundary so
// truncated multi-byte text stays valid UTF-8.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
