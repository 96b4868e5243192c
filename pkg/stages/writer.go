package stages

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
)

const writerSystemPrompt = "You are an expert SEO content writer. Create comprehensive, engaging blog posts that rank well in search engines while providing genuine value to readers."

const writerPromptFormat = `
        Write comprehensive, SEO-optimized blog post content based on the following content brief:

        Target Keyword: %s
        LSI Keywords: %s
        Recommended Word Count: %d

        Heading Structure:
        %s

        Topics to Cover:
        %s

        Requirements:
        1. Write engaging, informative content that naturally incorporates the target keyword and LSI keywords
        2. Follow the provided heading structure exactly (use H1, H2, H3, H4 as specified)
        3. Aim for approximately %d words
        4. Include practical examples, tips, and actionable advice
        5. Write in a conversational yet authoritative tone
        6. Ensure proper keyword density (1-2%% for primary keyword)
        7. If the content includes code examples (JSON, HTML, JavaScript, Python, SQL, etc.), format them using proper code blocks:
           - Use <pre class="wp-block-code"><code class="language-[lang]">[code]</code></pre> format
           - Detect language automatically (json, html, javascript, python, sql, php, css, etc.)
           - Ensure code is properly escaped and formatted
           - Example: <pre class="wp-block-code"><code class="language-json">{"key": "value"}</code></pre>

        Return the response as a JSON object with the following structure:
        {
            "content": "string (HTML formatted with proper heading tags H1, H2, H3, H4, and code blocks when needed)"
        }
        `

// defaultWordCount is the article length used when the brief does not
// recommend one.
const defaultWordCount = 2000

// htmlTagHint detects block-level HTML. Replies without any such tag are
// treated as Markdown and converted.
var htmlTagHint = regexp.MustCompile(`(?i)<(h[1-6]|p|div|ul|ol|table|section|article|pre|blockquote)[\s>]`)

var markdown = goldmark.New()

// Writer generates the article body from a content brief. The title and
// meta fields are taken from the brief, not the model; the model only
// writes the HTML content.
type Writer struct {
	LLM     Completer
	Model   string
	Logger  *log.Logger
	Refresh bool
}

// NewWriter creates the writing stage.
func NewWriter(llm Completer, model string, logger *log.Logger) *Writer {
	if model == "" {
		model = defaultContentModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{LLM: llm, Model: model, Logger: logger}
}

// Run writes the article for brief. A reply with no usable content is an
// error: the rest of the pipeline has nothing to work with.
func (w *Writer) Run(ctx context.Context, brief content.Brief) (content.BlogPost, error) {
	wordCount := brief.RecommendedWordCount
	if wordCount <= 0 {
		wordCount = defaultWordCount
	}
	w.Logger.Info("generating content", "keyword", brief.TargetKeyword, "model", w.Model, "target_words", wordCount)

	raw, err := w.LLM.CompleteJSON(ctx, w.Model, writerSystemPrompt, writerPrompt(brief, wordCount), w.Refresh)
	if err != nil {
		return content.BlogPost{}, errors.Wrap(errors.ErrCodeWriterFailed, err, "generate content")
	}

	var reply struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(raw, &reply); err != nil {
		return content.BlogPost{}, err
	}
	if strings.TrimSpace(reply.Content) == "" {
		return content.BlogPost{}, errors.New(errors.ErrCodeWriterFailed, "model returned no content")
	}

	html := reply.Content
	if !htmlTagHint.MatchString(html) {
		if converted, err := renderMarkdown(html); err == nil {
			html = converted
		} else {
			w.Logger.Warn("markdown conversion failed, keeping raw content", "error", err)
		}
	}

	post := content.BlogPost{
		Title:           brief.RecommendedTitle,
		MetaTitle:       brief.MetaTitle,
		MetaDescription: brief.MetaDescription,
		Content:         html,
		WordCount:       content.CountWords(html),
	}
	w.Logger.Info("content generated", "words", post.WordCount)
	return post, nil
}

func writerPrompt(brief content.Brief, wordCount int) string {
	headings, err := json.MarshalIndent(brief.HeadingStructure, "", "  ")
	if err != nil {
		headings = []byte("[]")
	}
	return fmt.Sprintf(writerPromptFormat,
		brief.TargetKeyword,
		strings.Join(brief.LSIKeywords, ", "),
		wordCount,
		string(headings),
		strings.Join(brief.TopicsToCover, ", "),
		wordCount)
}

// renderMarkdown converts a Markdown reply to HTML.
func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
