package seo

import "github.com/seoflow/seoflow/pkg/content"

// Display budgets for search result pages.
const (
	TitleLimit           = 60
	MetaDescriptionLimit = 150
)

// TrimTitle shortens a title to the search-display budget, ellipsis
// included.
func TrimTitle(s string) string {
	return content.Truncate(s, TitleLimit)
}

// TrimMetaDescription shortens a meta description to the snippet budget,
// ellipsis included.
func TrimMetaDescription(s string) string {
	return content.Truncate(s, MetaDescriptionLimit)
}
