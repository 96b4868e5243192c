package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/seo"
)

const briefSystemPrompt = "You are an expert SEO content strategist. Create detailed, actionable content briefs based on DOM analysis."

const briefTopicsFormat = `
        DOM Analysis Results:

        MAJOR TOPICS (Core themes - prioritize these):
        %s

        MINOR TOPICS (Supporting themes):
        %s

        IMPORTANT:
        - The "topics_to_cover" in your response MUST prioritize all major topics first, then include relevant minor topics.
        - Use the subtopics as guidance for what specific points to cover under each major/minor topic.
        - These topics were extracted from actual competitor content analysis using web search via OpenRouter and represent what successful pages are covering.
        - Create a heading structure that aligns with these major topics.
        - Each topic has subtopics that provide specific details to cover in that section.
            `

const briefPromptFormat = `
        Based on the following analysis for the keywords "%s", create a comprehensive content brief for an SEO-optimized blog post.%s

        %s

        Please create a content brief that includes:
        1. Target keyword and 5-7 LSI keywords
        2. Recommended title (H1) that's SEO-optimized and should be used only once in the content.
        3. Meta title (MAXIMUM 60 characters) and meta description (MAXIMUM 150 characters) templates
        4. Suggested heading structure (H2, H3, H4) based on the topics identified
        5. Topics to cover - prioritize major topics first, then include relevant minor topics
        6. Recommended word count
        7. Schema markup recommendations

        Return the response as a JSON object with the following structure:
        {
            "target_keyword": "string",
            "lsi_keywords": ["string1", "string2", ...],
            "recommended_title": "string",
            "meta_title": "string (MAX 60 characters)",
            "meta_description": "string (MAX 150 characters)",
            "heading_structure": [
                {"level": "H1", "title": "string", "description": "string"}
                {"level": "H2", "title": "string", "description": "string"},
                {"level": "H3", "title": "string", "description": "string"},
                ...
            ],
            "H1_count":1,
            "topics_to_cover": ["topic1", "topic2", ...],
            "recommended_word_count": number,
            "schema_markup": "string",
            "content_angle": "string",
            "target_audience": "string"
        }
        `

// Brief turns consolidated topic research into a structured content brief.
// The model's outline is repaired after the fact: exactly one H1, first in
// the structure, titled with the recommended title, and meta fields inside
// their display budgets.
type Brief struct {
	LLM     Completer
	Model   string
	Logger  *log.Logger
	Refresh bool
}

// NewBrief creates the brief stage.
func NewBrief(llm Completer, model string, logger *log.Logger) *Brief {
	if model == "" {
		model = defaultJSONModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Brief{LLM: llm, Model: model, Logger: logger}
}

// Run creates a content brief for the keywords from the topic research.
// location is optional audience targeting; topics may be empty, in which
// case the model works from the keywords alone.
func (b *Brief) Run(ctx context.Context, keywords []string, location string, topics content.TopicSet) (content.Brief, error) {
	keywordString := strings.Join(keywords, ", ")
	b.Logger.Info("creating content brief", "keywords", keywordString, "model", b.Model)

	raw, err := b.LLM.CompleteJSON(ctx, b.Model, briefSystemPrompt, briefPrompt(keywordString, location, topics), b.Refresh)
	if err != nil {
		return content.Brief{}, errors.Wrap(errors.ErrCodeBriefFailed, err, "create content brief")
	}

	var brief content.Brief
	if err := decodeJSON(raw, &brief); err != nil {
		return content.Brief{}, err
	}

	brief.NormalizeHeadingStructure(keywordString)
	normalizeBriefMeta(&brief, keywordString)

	b.Logger.Info("content brief created",
		"title", brief.RecommendedTitle,
		"headings", len(brief.HeadingStructure),
		"topics", len(brief.TopicsToCover))
	return brief, nil
}

func briefPrompt(keywordString, location string, topics content.TopicSet) string {
	locationContext := ""
	if location != "" {
		locationContext = "\n        Target Location: " + location
	}
	topicsSection := fmt.Sprintf(briefTopicsFormat, topicLines(topics.MajorTopics), topicLines(topics.MinorTopics))
	return fmt.Sprintf(briefPromptFormat, keywordString, locationContext, topicsSection)
}

// topicLines renders topics as prompt bullet lines, capped at ten topics
// with the first three subtopics each.
func topicLines(topics []content.Topic) string {
	if len(topics) == 0 {
		return "  - None"
	}
	if len(topics) > 10 {
		topics = topics[:10]
	}

	lines := make([]string, 0, len(topics))
	for _, t := range topics {
		if len(t.Subtopics) == 0 {
			lines = append(lines, "  - "+t.Name)
			continue
		}
		subs := t.Subtopics
		if len(subs) > 3 {
			subs = subs[:3]
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s...", t.Name, strings.Join(subs, ", ")))
	}
	return strings.Join(lines, "\n")
}

// normalizeBriefMeta enforces the meta display budgets, deriving defaults
// from the title or keywords when the model omits a field.
func normalizeBriefMeta(b *content.Brief, keywordString string) {
	switch {
	case b.MetaTitle != "":
		b.MetaTitle = seo.TrimTitle(b.MetaTitle)
	case b.RecommendedTitle != "":
		b.MetaTitle = content.Clamp(b.RecommendedTitle, 60)
	default:
		b.MetaTitle = content.Clamp(keywordString, 60)
	}

	if b.MetaDescription != "" {
		b.MetaDescription = seo.TrimMetaDescription(b.MetaDescription)
	} else {
		b.MetaDescription = content.Clamp(fmt.Sprintf("Discover %s. Expert insights and comprehensive guide.", keywordString), 150)
	}
}
