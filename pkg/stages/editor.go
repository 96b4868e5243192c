package stages

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
)

// Default tone and quality guidelines, used when no tone file is configured.
//
//go:embed tone.txt
var defaultToneGuidelines string

const editorConvertSystemPrompt = "You are an expert at converting guidelines and instructions into structured JSON format. Return only valid JSON."

const editorConvertPromptFormat = `Convert the following tone and quality guidelines into a structured JSON format that can be used to edit content.

Tone Guidelines:
%s

Create a comprehensive JSON structure that captures:
1. Core behavior principles
2. Tonality requirements
3. Structure and output discipline rules
4. Vocabulary controls (forbidden words, preferred style)
5. Quality standards
6. Internal self-editing checklist
7. Examples (approved vs not approved)

Return ONLY a valid JSON object with this structure:
{
    "core_behavior": {
        "principles": [
            {"name": "string", "description": "string", "rules": ["string"]}
        ]
    },
    "tonality": {
        "requirements": [
            {"name": "string", "description": "string", "guidelines": "string"}
        ]
    },
    "structure": {
        "rules": [
            {"name": "string", "description": "string", "requirements": "string"}
        ]
    },
    "vocabulary": {
        "forbidden_words": ["string"],
        "preferred_style": {
            "nouns": "string",
            "verbs": "string",
            "descriptors": "string"
        }
    },
    "quality_standards": {
        "depth_requirements": "string",
        "research_behavior": "string",
        "example_quality": "string",
        "originality": "string"
    },
    "editing_checklist": [
        {"category": "string", "checks": ["string"]}
    ],
    "examples": {
        "approved": [{"type": "string", "text": "string"}],
        "not_approved": [{"type": "string", "text": "string"}]
    },
    "default_rules": ["string"]
}

Return ONLY valid JSON, no other text.`

// minimalToneJSON stands in when tone conversion fails so editing can still
// proceed. Built as a literal rather than a marshaled map so the edit prompt
// stays byte-stable across runs and cache keys keep matching.
const minimalToneJSON = `{
  "error": %s,
  "core_behavior": {"principles": []},
  "tonality": {"requirements": []},
  "vocabulary": {"forbidden_words": []}
}`

const editorEditSystemPrompt = "You are an expert content editor. Your primary task is to edit content to strictly adhere to tone and quality guidelines while ABSOLUTELY PRESERVING the heading structure. You must NOT modify, add, remove, or change any heading tags (H1, H2, H3, H4) or their text. Only edit the paragraph and list content to match tone guidelines."

const editorEditPromptFormat = `Edit the following blog post content to strictly adhere to the tone and quality guidelines provided.

Tone Guidelines (JSON):
%s

Original Content:
%s

CRITICAL REQUIREMENTS - HEADING STRUCTURE PRESERVATION:
1. You MUST preserve the EXACT heading structure from the original content
2. DO NOT add, remove, or modify any heading tags (H1, H2, H3, H4)
3. DO NOT change heading text unless it contains forbidden words (then replace only the forbidden words)
4. DO NOT change heading hierarchy or order
5. DO NOT change heading levels (e.g., don't convert H2 to H3)
6. The heading structure is CRITICAL and must remain IDENTICAL

Editing Instructions:
1. Review every sentence against the tone guidelines
2. Remove any forbidden words and replace with preferred alternatives
3. Ensure clarity, substance, and zero hallucination
4. Follow the structure and output discipline rules
5. Apply the editing checklist before finalizing
6. ONLY edit the text content within paragraphs, lists, and other non-heading elements
7. Preserve ALL HTML tags exactly as they are (especially heading tags)
8. Only edit the content to match tone - do not change the topic, structure, or headings

Return the edited content as a JSON object with this structure:
{
    "content": "string (HTML formatted with EXACT same heading structure, edited to match tone guidelines)"
}

Return ONLY valid JSON, no other text.`

// Editor rewrites a blog post to match tone and quality guidelines without
// touching its heading structure. The guidelines are converted to structured
// JSON with a small model first, then a content model performs the edit. If
// any step after guideline loading fails the original content is kept, so a
// flaky edit never costs a finished draft.
type Editor struct {
	// LLM performs both the tone conversion and the edit itself.
	LLM Completer

	// JSONModel converts the tone guidelines into structured JSON.
	JSONModel string

	// ContentModel performs the actual content edit.
	ContentModel string

	// TonePath optionally points at a tone guidelines file. When empty the
	// embedded defaults are used.
	TonePath string

	Logger  *log.Logger
	Refresh bool
}

// NewEditor returns an Editor with defaults applied for any zero fields.
func NewEditor(llm Completer, jsonModel, contentModel string, logger *log.Logger) *Editor {
	if jsonModel == "" {
		jsonModel = defaultJSONModel
	}
	if contentModel == "" {
		contentModel = defaultContentModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Editor{LLM: llm, JSONModel: jsonModel, ContentModel: contentModel, Logger: logger}
}

// Run edits the post content against the tone guidelines and returns the
// post with edited content and a refreshed word count. When the edit fails
// or damages the heading structure the original content is returned
// unchanged. An error is returned only when there is nothing to edit or the
// configured tone file cannot be read.
func (e *Editor) Run(ctx context.Context, post content.BlogPost) (content.BlogPost, error) {
	tone, err := e.loadTone()
	if err != nil {
		return content.BlogPost{}, err
	}
	if strings.TrimSpace(post.Content) == "" {
		return content.BlogPost{}, errors.New(errors.ErrCodeEditorFailed, "no content found in blog post to edit")
	}

	e.Logger.Info("editing content for tone", "json_model", e.JSONModel, "content_model", e.ContentModel)

	toneJSON := e.convertTone(ctx, tone)
	edited := e.editContent(ctx, post.Content, toneJSON)

	post.Content = edited
	post.WordCount = content.CountWords(edited)
	return post, nil
}

func (e *Editor) loadTone() (string, error) {
	if e.TonePath == "" {
		return defaultToneGuidelines, nil
	}
	data, err := os.ReadFile(e.TonePath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeEditorFailed, err, "read tone guidelines")
	}
	return string(data), nil
}

// convertTone turns the free-form guidelines into structured JSON. On
// failure a minimal structure carrying the error is used so the edit can
// still run.
func (e *Editor) convertTone(ctx context.Context, toneText string) string {
	raw, err := e.LLM.CompleteJSON(ctx, e.JSONModel, editorConvertSystemPrompt, fmt.Sprintf(editorConvertPromptFormat, toneText), e.Refresh)
	if err != nil {
		e.Logger.Warn("tone conversion failed, using minimal structure", "error", err)
		return fmt.Sprintf(minimalToneJSON, strconv.Quote(err.Error()))
	}
	return raw
}

// editContent asks the content model for an edited version and validates
// that the heading structure survived. Any failure falls back to the
// original content.
func (e *Editor) editContent(ctx context.Context, original, toneJSON string) string {
	user := fmt.Sprintf(editorEditPromptFormat, toneJSON, original)
	raw, err := e.LLM.CompleteJSON(ctx, e.ContentModel, editorEditSystemPrompt, user, e.Refresh)
	if err != nil {
		e.Logger.Warn("content editing failed, keeping original", "error", err)
		return original
	}

	var reply struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(raw, &reply); err != nil {
		e.Logger.Warn("malformed edit response, keeping original", "error", err)
		return original
	}

	if !content.HeadingsPreserved(original, reply.Content) {
		e.Logger.Warn("heading structure changed during editing, keeping original",
			"original_headings", len(content.ExtractHeadings(original)),
			"edited_headings", len(content.ExtractHeadings(reply.Content)))
		return original
	}
	return reply.Content
}
