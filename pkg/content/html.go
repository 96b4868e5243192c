package content

import (
	"regexp"
	"strings"
)

var tagRE = regexp.MustCompile(`<[^>]+>`)

// StripTags removes HTML tags from content and collapses whitespace,
// returning plain text suitable for word counts and text previews.
func StripTags(htmlContent string) string {
	text := tagRE.ReplaceAllString(htmlContent, " ")
	return strings.Join(strings.Fields(text), " ")
}

// CountWords returns the number of whitespace-separated words in the
// text of content, ignoring HTML markup.
func CountWords(htmlContent string) int {
	text := StripTags(htmlContent)
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

// Truncate shortens s to at most limit characters, appending "..." when
// truncation happens. The ellipsis counts toward the limit. Limits are in
// runes so multi-byte text is never cut mid-character.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// Clamp hard-cuts s to at most limit runes with no ellipsis.
func Clamp(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
