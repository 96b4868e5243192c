package seo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/seoflow/seoflow/pkg/content"
)

func TestArticleSchema(t *testing.T) {
	keywords := make([]string, 12)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("kw%d", i)
	}

	got := ArticleSchema(SchemaInput{
		Title:       "Brewing Guide",
		Description: "Everything about brewing.",
		Keywords:    keywords,
		Published:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	})

	if got["@type"] != "Article" || got["headline"] != "Brewing Guide" {
		t.Errorf("schema = %v", got)
	}

	author, ok := got["author"].(map[string]any)
	if !ok || author["name"] != "Content Team" {
		t.Errorf("author = %v, want Content Team organization", got["author"])
	}

	if want := strings.Join(keywords[:10], ", "); got["keywords"] != want {
		t.Errorf("keywords = %q, want %q", got["keywords"], want)
	}

	if got["datePublished"] != "2026-01-15T00:00:00Z" {
		t.Errorf("datePublished = %v", got["datePublished"])
	}
	if _, ok := got["dateModified"]; ok {
		t.Error("dateModified should be absent when unset")
	}
}

func TestArticleSchemaAudience(t *testing.T) {
	got := ArticleSchema(SchemaInput{Title: "T", Audience: "Home Baristas"})
	publisher := got["publisher"].(map[string]any)
	if publisher["name"] != "Home Baristas" {
		t.Errorf("publisher name = %v, want Home Baristas", publisher["name"])
	}
}

func TestFAQSchema(t *testing.T) {
	if got := FAQSchema(nil); got != nil {
		t.Errorf("FAQSchema(nil) = %v, want nil", got)
	}

	got := FAQSchema([]content.FAQ{
		{Question: "How hot should the water be?", Answer: "Just off the boil, around 93C."},
		{Question: "Do I need a scale?", Answer: "Yes, ratios matter more than anything."},
	})
	if got["@type"] != "FAQPage" {
		t.Errorf("@type = %v", got["@type"])
	}
	entities := got["mainEntity"].([]map[string]any)
	if len(entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(entities))
	}
	if entities[0]["name"] != "How hot should the water be?" {
		t.Errorf("name = %v", entities[0]["name"])
	}
	answer := entities[1]["acceptedAnswer"].(map[string]any)
	if answer["text"] != "Yes, ratios matter more than anything." {
		t.Errorf("answer text = %v", answer["text"])
	}
}

func TestOGTags(t *testing.T) {
	longTitle := strings.Repeat("t", 70)
	got := OGTags(OGInput{
		Title:       longTitle,
		Description: "A compact summary.",
		Slug:        "best-coffee",
		SiteURL:     "https://example.com/",
		SiteName:    "Example Blog",
		HTMLContent: `<p>Intro</p><img class="hero" src="/img/hero.png" /><img src="/img/second.png" />`,
	})

	if want := strings.Repeat("t", 60); got["og:title"] != want {
		t.Errorf("og:title = %q (len %d), want hard cut at 60", got["og:title"], len(got["og:title"]))
	}
	if got["og:type"] != "article" {
		t.Errorf("og:type = %q", got["og:type"])
	}
	if got["og:url"] != "https://example.com/best-coffee" {
		t.Errorf("og:url = %q", got["og:url"])
	}
	if got["og:site_name"] != "Example Blog" {
		t.Errorf("og:site_name = %q", got["og:site_name"])
	}
	// First image wins; relative sources are resolved against the site.
	if got["og:image"] != "https://example.com/img/hero.png" {
		t.Errorf("og:image = %q", got["og:image"])
	}
}

func TestOGTagsImageSources(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"absolute kept", `<img src="https://cdn.example.com/a.png">`, "https://cdn.example.com/a.png"},
		{"data URI kept", `<img src="data:image/png;base64,AAAA">`, "data:image/png;base64,AAAA"},
		{"relative resolved", `<img src="/a.png">`, "https://example.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OGTags(OGInput{SiteURL: "https://example.com", HTMLContent: tt.html})
			if got["og:image"] != tt.want {
				t.Errorf("og:image = %q, want %q", got["og:image"], tt.want)
			}
		})
	}

	if got := OGTags(OGInput{SiteURL: "https://example.com", HTMLContent: "<p>no media</p>"}); got["og:image"] != "" {
		t.Errorf("og:image = %q, want absent", got["og:image"])
	}
}
