package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims input and caps it at maxLen bytes without splitting a
// UTF-8 sequence. maxLen <= 0 disables the cap.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return strings.TrimSpace(trimmed[:cut])
}

// SanitizeStrings trims every entry and drops empty ones.
func SanitizeStrings(input []string, maxLen int) []string {
	out := make([]string, 0, len(input))
	for _, v := range input {
		if s := SanitizeString(v, maxLen); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func NormalizeEmail(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
