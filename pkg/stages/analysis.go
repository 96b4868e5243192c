package stages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/seoflow/seoflow/pkg/content"
)

const analysisSystemPrompt = "You are an expert at analyzing web content and extracting structured topics with subtopics. You have access to web search to fetch and analyze webpage content. Return only valid JSON in the exact format specified."

const analysisPromptFormat = `Analyze the content of this webpage: %s

Using web search, fetch and analyze the actual content from this URL. Extract the main topics and organize them into major and minor categories.

Focus on extracting:
- Major topics: Core themes, main sections, primary subject areas (typically H2-level headings or main sections)
- Minor topics: Supporting concepts, secondary themes, less prominent but still relevant topics
- Subtopics: Specific points, details, or aspects covered under each major/minor topic

IMPORTANT: Ignore and do NOT include topics from Call-to-Action (CTA) sections such as:
- Sign-up forms and buttons
- Purchase/buy now buttons
- Newsletter subscription forms
- Download buttons
- Contact forms
- "Get started" or "Try now" prompts
- Pricing tables with purchase buttons
- Any promotional or sales-focused content

Only extract topics from the actual informational/educational content.

Return a JSON object with this exact structure:
{
  "major_topics": [
    {
      "name": "Major topic name (clear, descriptive, 5-15 words)",
      "subtopics": [
        "Specific subtopic 1 (detailed, 5-20 words)",
        "Specific subtopic 2",
        "Specific subtopic 3"
      ]
    },
    {
      "name": "Another major topic",
      "subtopics": ["subtopic 1", "subtopic 2"]
    }
  ],
  "minor_topics": [
    {
      "name": "Minor topic name",
      "subtopics": ["subtopic 1", "subtopic 2"]
    }
  ]
}

Guidelines:
- Major topics should represent the main sections/themes of the content (typically 3-8 major topics)
- Each major topic should have 3-8 subtopics that are specific and detailed
- Minor topics are supporting themes (typically 2-5 minor topics)
- Each minor topic should have 2-5 subtopics
- Topic names should be clear, descriptive, and NOT generic (avoid "introduction", "conclusion", "about us", etc.)
- Subtopics should be specific, actionable, or descriptive points covered in that section
- Do NOT include CTA-related content

Return ONLY valid JSON, no other text.`

// Analysis extracts the topic structure of competitor pages. Each URL is
// analyzed by a web-search-enabled model; per-URL failures degrade to an
// empty topic set rather than aborting, so one dead link cannot sink the
// whole research phase.
type Analysis struct {
	LLM      Completer
	Model    string
	Logger   *log.Logger
	Progress func(string)
	Refresh  bool
}

// NewAnalysis creates the topic extraction stage.
// If model is empty, a structured-output default is used.
// If logger is nil, the default logger is used.
func NewAnalysis(llm Completer, model string, logger *log.Logger) *Analysis {
	if model == "" {
		model = defaultJSONModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Analysis{LLM: llm, Model: model, Logger: logger}
}

// Run analyzes every URL and returns the consolidated topic set: topics
// merged by case-insensitive name, subtopics deduplicated and sorted,
// topics ordered by how many pages mention them. An empty set (no page
// yielded topics) is not an error; callers decide how to degrade.
func (a *Analysis) Run(ctx context.Context, urls []string) (content.TopicSet, error) {
	a.Logger.Info("starting dom analysis", "urls", len(urls), "model", a.Model)

	major := newTopicCollector()
	minor := newTopicCollector()
	analyzed := 0

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return content.TopicSet{}, err
		}
		notify(a.Progress, fmt.Sprintf("Processing URL %d/%d: %s...", i+1, len(urls), content.Clamp(url, 50)))

		topics := a.analyzeURL(ctx, url)
		if topics.Empty() {
			notify(a.Progress, fmt.Sprintf("No topics extracted from %s...", content.Clamp(url, 50)))
			continue
		}

		analyzed++
		notify(a.Progress, fmt.Sprintf("Found %d major and %d minor topics for %s...",
			len(topics.MajorTopics), len(topics.MinorTopics), content.Clamp(url, 50)))
		for _, t := range topics.MajorTopics {
			major.add(t)
		}
		for _, t := range topics.MinorTopics {
			minor.add(t)
		}
	}

	if analyzed == 0 {
		a.Logger.Warn("no topics extracted from any url")
		return content.TopicSet{}, nil
	}

	notify(a.Progress, "Consolidating topics across all URLs...")
	result := content.TopicSet{MajorTopics: major.topics(), MinorTopics: minor.topics()}
	a.Logger.Info("dom analysis completed",
		"analyzed", analyzed,
		"major_topics", len(result.MajorTopics),
		"minor_topics", len(result.MinorTopics))
	return result, nil
}

// analyzeURL extracts topics from one page. Failures are reported through
// the progress callback and come back as an empty set.
func (a *Analysis) analyzeURL(ctx context.Context, url string) content.TopicSet {
	notify(a.Progress, "Analyzing "+content.Clamp(url, 60)+"...")

	raw, err := a.LLM.CompleteJSONWeb(ctx, a.Model, analysisSystemPrompt, fmt.Sprintf(analysisPromptFormat, url), a.Refresh)
	if err != nil {
		notify(a.Progress, fmt.Sprintf("Error analyzing %s: %v", url, err))
		a.Logger.Warn("url analysis failed", "url", url, "error", err)
		return content.TopicSet{}
	}

	var topics content.TopicSet
	if err := decodeJSON(raw, &topics); err != nil {
		notify(a.Progress, fmt.Sprintf("Error analyzing %s: %v", url, err))
		a.Logger.Warn("url analysis returned malformed topics", "url", url, "error", err)
		return content.TopicSet{}
	}
	return topics
}

// topicGroup accumulates one consolidated topic: the first spelling seen,
// its deduplicated subtopics, and how many pages mentioned it.
type topicGroup struct {
	name      string
	subtopics map[string]struct{}
	sources   int
}

// topicCollector merges topics by normalized name while remembering
// first-seen order, which breaks ties when sorting by source count.
type topicCollector struct {
	groups map[string]*topicGroup
	order  []*topicGroup
}

func newTopicCollector() *topicCollector {
	return &topicCollector{groups: make(map[string]*topicGroup)}
}

func (c *topicCollector) add(t content.Topic) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return
	}

	key := strings.ToLower(name)
	g, ok := c.groups[key]
	if !ok {
		g = &topicGroup{name: name, subtopics: make(map[string]struct{})}
		c.groups[key] = g
		c.order = append(c.order, g)
	}

	for _, sub := range t.Subtopics {
		if sub = strings.TrimSpace(sub); sub != "" {
			g.subtopics[sub] = struct{}{}
		}
	}
	g.sources++
}

// topics returns the consolidated topics, most widely mentioned first.
func (c *topicCollector) topics() []content.Topic {
	sorted := make([]*topicGroup, len(c.order))
	copy(sorted, c.order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].sources > sorted[j].sources
	})

	out := make([]content.Topic, 0, len(sorted))
	for _, g := range sorted {
		subs := make([]string, 0, len(g.subtopics))
		for s := range g.subtopics {
			subs = append(subs, s)
		}
		sort.Strings(subs)
		out = append(out, content.Topic{Name: g.name, Subtopics: subs})
	}
	return out
}
