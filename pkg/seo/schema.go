package seo

import (
	"regexp"
	"strings"
	"time"

	"github.com/seoflow/seoflow/pkg/content"
)

var imgSrcRE = regexp.MustCompile(`<img[^>]+src="([^"]+)"`)

// SchemaInput bundles the post fields JSON-LD generation reads.
type SchemaInput struct {
	Title       string
	Description string
	// Audience names the author/publisher organization; empty falls back
	// to "Content Team".
	Audience  string
	Keywords  []string
	Published time.Time
	Modified  time.Time
}

// ArticleSchema builds the Article JSON-LD payload for a post. At most ten
// keywords are published; dates are included only when set.
func ArticleSchema(in SchemaInput) map[string]any {
	org := map[string]any{"@type": "Organization", "name": orgName(in.Audience)}

	keywords := in.Keywords
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}

	schema := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "Article",
		"headline":         in.Title,
		"description":      in.Description,
		"author":           org,
		"publisher":        org,
		"keywords":         strings.Join(keywords, ", "),
		"mainEntityOfPage": map[string]any{"@type": "WebPage", "@id": "#webpage"},
	}
	if !in.Published.IsZero() {
		schema["datePublished"] = in.Published.Format(time.RFC3339)
	}
	if !in.Modified.IsZero() {
		schema["dateModified"] = in.Modified.Format(time.RFC3339)
	}
	return schema
}

func orgName(audience string) string {
	if strings.TrimSpace(audience) != "" {
		return audience
	}
	return "Content Team"
}

// FAQSchema builds the FAQPage JSON-LD payload, or nil when there is
// nothing to publish.
func FAQSchema(faqs []content.FAQ) map[string]any {
	if len(faqs) == 0 {
		return nil
	}
	entities := make([]map[string]any, 0, len(faqs))
	for _, f := range faqs {
		entities = append(entities, map[string]any{
			"@type":          "Question",
			"name":           f.Question,
			"acceptedAnswer": map[string]any{"@type": "Answer", "text": f.Answer},
		})
	}
	return map[string]any{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entities,
	}
}

// OGInput carries the page fields Open Graph tags are built from.
type OGInput struct {
	Title       string
	Description string
	Slug        string
	SiteURL     string
	SiteName    string
	HTMLContent string
}

// OGTags builds the Open Graph meta tag map for a post. The first image in
// the content becomes og:image; relative sources are resolved against the
// site URL.
func OGTags(in OGInput) map[string]string {
	base := strings.TrimRight(in.SiteURL, "/")
	tags := map[string]string{
		"og:title":       content.Clamp(in.Title, 60),
		"og:description": content.Clamp(in.Description, 200),
		"og:type":        "article",
		"og:url":         base + "/" + in.Slug,
		"og:site_name":   in.SiteName,
	}
	if m := imgSrcRE.FindStringSubmatch(in.HTMLContent); m != nil {
		src := m[1]
		if !strings.HasPrefix(src, "http") && !strings.HasPrefix(src, "data:") {
			src = base + src
		}
		tags["og:image"] = src
	}
	return tags
}
