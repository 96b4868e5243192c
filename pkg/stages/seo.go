package stages

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/seo"
)

// seoPreviewLimit caps the content context sent with the optimization prompt.
const seoPreviewLimit = 1000

// articleDescriptionLimit caps the schema description fallback taken from
// the post text when no meta description exists.
const articleDescriptionLimit = 300

const seoSystemPrompt = "You are an expert SEO specialist. Optimize titles and meta descriptions to be compelling, keyword-rich, and within strict character limits."

const seoPromptFormat = `Optimize the following title and meta description for SEO while ensuring strict character limits:

Original Title: %s
Current Title Length: %d characters
REQUIRED: Title must be MAXIMUM 60 characters

Original Meta Description: %s
Current Meta Description Length: %d characters
REQUIRED: Meta Description must be MAXIMUM 150 characters

Content Preview (for context):
%s

Please optimize both the title and meta description to:
1. Be compelling and SEO-friendly
2. Include primary keywords naturally
3. Stay within the strict character limits (title: 60 chars max, meta: 150 chars max)
4. Be clear and descriptive

Return a JSON object with this structure:
{
    "title": "Optimized title (MAX 60 characters)",
    "meta_description": "Optimized meta description (MAX 150 characters)"
}

Return ONLY valid JSON, no other text.`

// SEO assembles the final search metadata for a post: an optimized title
// and meta description, a URL slug, Article and FAQPage JSON-LD schemas,
// and Open Graph tags. Model failures degrade to plain truncation of the
// originals, so this stage always produces a usable bundle.
type SEO struct {
	LLM   Completer
	Model string

	// SiteURL and SiteName feed the Open Graph tags.
	SiteURL  string
	SiteName string

	Logger  *log.Logger
	Refresh bool
}

// NewSEO returns an SEO stage with defaults applied for any zero fields.
func NewSEO(llm Completer, model, siteURL, siteName string, logger *log.Logger) *SEO {
	if model == "" {
		model = defaultJSONModel
	}
	if siteURL == "" {
		siteURL = "https://example.com"
	}
	if siteName == "" {
		siteName = "Content Site"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SEO{LLM: llm, Model: model, SiteURL: siteURL, SiteName: siteName, Logger: logger}
}

// Run builds the SEO bundle for a finished post. The slug derives from the
// optimized title, while the schemas and OG tags describe the post as
// written; only the returned Title and MetaDescription carry the optimized
// values back to the caller.
func (s *SEO) Run(ctx context.Context, brief content.Brief, post content.BlogPost) (content.SEOData, error) {
	title, meta := s.optimizeTitleMeta(ctx, brief, post)
	slug := seo.Slug(title)

	description := post.MetaDescription
	if description == "" {
		description = content.Clamp(content.StripTags(post.Content), articleDescriptionLimit)
	}
	article := seo.ArticleSchema(seo.SchemaInput{
		Title:       post.Title,
		Description: description,
		Audience:    brief.TargetAudience,
		Keywords:    brief.LSIKeywords,
	})

	faqs := seo.ExtractFAQs(post.Content)
	og := seo.OGTags(seo.OGInput{
		Title:       post.Title,
		Description: post.MetaDescription,
		Slug:        slug,
		SiteURL:     s.SiteURL,
		SiteName:    s.SiteName,
		HTMLContent: post.Content,
	})

	s.Logger.Info("seo optimization complete", "slug", slug, "og_tags", len(og), "faqs", len(faqs))

	return content.SEOData{
		Title:           title,
		MetaTitle:       title,
		MetaDescription: meta,
		Slug:            slug,
		ArticleSchema:   article,
		FAQSchema:       seo.FAQSchema(faqs),
		OGTags:          og,
		FAQCount:        len(faqs),
	}, nil
}

// optimizeTitleMeta asks the model for an optimized title and meta
// description and enforces the character limits on whatever comes back.
// Any failure falls back to hard truncation of the originals.
func (s *SEO) optimizeTitleMeta(ctx context.Context, brief content.Brief, post content.BlogPost) (string, string) {
	originalTitle := brief.RecommendedTitle
	if originalTitle == "" {
		originalTitle = post.Title
	}
	originalMeta := brief.MetaDescription
	if originalMeta == "" {
		originalMeta = post.MetaDescription
	}

	preview := content.Clamp(content.StripTags(post.Content), seoPreviewLimit)
	user := fmt.Sprintf(seoPromptFormat,
		originalTitle, utf8.RuneCountInString(originalTitle),
		originalMeta, utf8.RuneCountInString(originalMeta),
		preview)

	raw, err := s.LLM.CompleteJSON(ctx, s.Model, seoSystemPrompt, user, s.Refresh)
	if err != nil {
		s.Logger.Warn("title/meta optimization failed, truncating originals", "error", err)
		return content.Clamp(originalTitle, seo.TitleLimit), content.Clamp(originalMeta, seo.MetaDescriptionLimit)
	}

	var reply struct {
		Title           string `json:"title"`
		MetaDescription string `json:"meta_description"`
	}
	if err := decodeJSON(raw, &reply); err != nil {
		s.Logger.Warn("malformed optimization response, truncating originals", "error", err)
		return content.Clamp(originalTitle, seo.TitleLimit), content.Clamp(originalMeta, seo.MetaDescriptionLimit)
	}

	title, meta := reply.Title, reply.MetaDescription
	if title == "" {
		title = originalTitle
	}
	if meta == "" {
		meta = originalMeta
	}
	return seo.TrimTitle(title), seo.TrimMetaDescription(meta)
}
