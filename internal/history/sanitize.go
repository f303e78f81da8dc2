package history

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize removes control characters and collapses whitespace.
// Pasted queries often carry newlines or tabs; stored entries never do.
func Sanitize(query string) string {
	// Replace control characters with spaces, then collapse all whitespace
	query = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, query)

	return strings.Join(strings.Fields(query), " ")
}

// Truncate ensures an entry is at most maxLen runes, appending "..." when cut.
func Truncate(query string, maxLen int) string {
	query = strings.TrimSpace(query)

	if utf8.RuneCountInString(query) <= maxLen {
		return query
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}

	runes := []rune(query)
	return string(runes[:maxLen-3]) + "..."
}
