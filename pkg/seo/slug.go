package seo

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugRE   = regexp.MustCompile(`[^a-z0-9_\s-]`)
	hyphenRunRE = regexp.MustCompile(`[-\s]+`)

	// slugFolder strips combining marks after canonical decomposition, so
	// "café" folds to "cafe" instead of being dropped by nonSlugRE.
	slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slug derives a URL slug from a keyword. Leading articles are dropped,
// diacritics are folded to their ASCII base letters, and every run of
// non-alphanumeric characters collapses to a single hyphen.
func Slug(keyword string) string {
	s := strings.TrimSpace(strings.ToLower(keyword))
	for _, article := range []string{"a ", "an ", "the "} {
		if strings.HasPrefix(s, article) {
			s = s[len(article):]
		}
	}
	if folded, _, err := transform.String(slugFolder, s); err == nil {
		s = folded
	}
	s = nonSlugRE.ReplaceAllString(s, "")
	s = hyphenRunRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
