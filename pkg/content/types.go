// Package content defines the shared data model for the seoflow pipeline.
//
// The types here are the payloads passed between pipeline stages: topic sets
// from DOM analysis, content briefs, blog posts, visual requirements and
// generated visual elements, and the final SEO metadata. JSON tags match the
// wire format the LLM collaborators are prompted to produce, so stage
// responses unmarshal directly into these types.
//
// # Visual Elements
//
// A VisualRequirement describes a visual the presenter stage wants added to
// the post (what to generate, where to place it, how important it is). A
// VisualElement is the result of generating one requirement; its Status field
// distinguishes usable payloads from failures.
package content

import (
	"github.com/seoflow/seoflow/pkg/errors"
)

// VisualType identifies the kind of visual element to generate.
type VisualType string

// Supported visual element types.
const (
	VisualImage       VisualType = "image"
	VisualInfographic VisualType = "infographic"
	VisualTable       VisualType = "table"
)

// ValidVisualTypes is the set of recognized visual element types.
var ValidVisualTypes = map[VisualType]bool{
	VisualImage:       true,
	VisualInfographic: true,
	VisualTable:       true,
}

// Validate returns an error if the visual type is not recognized.
func (t VisualType) Validate() error {
	if !ValidVisualTypes[t] {
		return errors.New(errors.ErrCodeInvalidVisual, "unknown visual type: %q", string(t))
	}
	return nil
}

// kindRank orders visual types for layout processing: infographics first
// (early placement), then images, then tables.
var kindRank = map[VisualType]int{
	VisualInfographic: 0,
	VisualImage:       1,
	VisualTable:       2,
}

// Rank returns the layout processing rank of the visual type.
// Unknown types sort last.
func (t VisualType) Rank() int {
	if r, ok := kindRank[t]; ok {
		return r
	}
	return 3
}

// Priority expresses how important a visual requirement is.
type Priority string

// Requirement priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriorities is the set of recognized priorities.
var ValidPriorities = map[Priority]bool{
	PriorityHigh:   true,
	PriorityMedium: true,
	PriorityLow:    true,
}

// Validate returns an error if the priority is not recognized.
func (p Priority) Validate() error {
	if !ValidPriorities[p] {
		return errors.New(errors.ErrCodeInvalidPriority, "unknown priority: %q", string(p))
	}
	return nil
}

// Rank returns the sort rank of the priority: high sorts before medium,
// medium before low. Unknown priorities rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 1
}

// Status reports whether generating a visual element succeeded.
type Status string

// Visual element generation outcomes.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// VisualRequirement describes one visual element the presenter stage wants
// inserted into the post.
type VisualRequirement struct {
	Type      VisualType `json:"type"`
	Prompt    string     `json:"prompt"`
	Placement string     `json:"placement"`
	Priority  Priority   `json:"priority"`
}

// Validate checks the requirement's type and priority.
func (r VisualRequirement) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}
	return r.Priority.Validate()
}

// VisualElement is the result of generating one VisualRequirement.
// Exactly one of the payload groups is populated depending on Type:
// ImageURL/AltText/Caption for images and infographics, HTML/Caption for
// tables. Description carries the textual fallback rendered as a placeholder
// when no media could be produced.
type VisualElement struct {
	Type          VisualType `json:"type"`
	Status        Status     `json:"status"`
	Placement     string     `json:"placement,omitempty"`
	Priority      Priority   `json:"priority,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	AltText       string     `json:"alt_text,omitempty"`
	Caption       string     `json:"caption,omitempty"`
	HTML          string     `json:"html,omitempty"`
	Description   string     `json:"description,omitempty"`
	IsPlaceholder bool       `json:"is_placeholder,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Topic is one subject extracted from a researched page.
type Topic struct {
	Name      string   `json:"name"`
	Subtopics []string `json:"subtopics,omitempty"`
}

// TopicSet groups the topics extracted across all researched pages,
// consolidated and ordered by how many pages mention them.
type TopicSet struct {
	MajorTopics []Topic `json:"major_topics"`
	MinorTopics []Topic `json:"minor_topics"`
}

// Empty reports whether the set contains no topics at all.
func (ts TopicSet) Empty() bool {
	return len(ts.MajorTopics) == 0 && len(ts.MinorTopics) == 0
}

// Heading is one entry of a brief's planned heading outline.
type Heading struct {
	Level       string `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Brief is the content brief produced by the brief stage. It drives the
// writer: outline, keywords, tone, and length targets.
type Brief struct {
	TargetKeyword        string    `json:"target_keyword,omitempty"`
	LSIKeywords          []string  `json:"lsi_keywords,omitempty"`
	RecommendedTitle     string    `json:"recommended_title"`
	MetaTitle            string    `json:"meta_title,omitempty"`
	MetaDescription      string    `json:"meta_description,omitempty"`
	HeadingStructure     []Heading `json:"heading_structure"`
	H1Count              int       `json:"H1_count,omitempty"`
	TopicsToCover        []string  `json:"topics_to_cover,omitempty"`
	RecommendedWordCount int       `json:"recommended_word_count,omitempty"`
	SchemaMarkup         string    `json:"schema_markup,omitempty"`
	ContentAngle         string    `json:"content_angle,omitempty"`
	TargetAudience       string    `json:"target_audience,omitempty"`
}

// BlogPost is the evolving article payload. The writer fills Title, the meta
// fields, and Content; the presenter appends VisualRequirements; the layout
// stage replaces Content with the composed version and records what it
// generated.
type BlogPost struct {
	Title              string              `json:"title,omitempty"`
	MetaTitle          string              `json:"meta_title,omitempty"`
	MetaDescription    string              `json:"meta_description,omitempty"`
	Content            string              `json:"content"`
	WordCount          int                 `json:"word_count,omitempty"`
	VisualRequirements []VisualRequirement `json:"visual_requirements,omitempty"`
	VisualSummary      string              `json:"visual_analysis_summary,omitempty"`
	GeneratedElements  []VisualElement     `json:"visual_elements_generated,omitempty"`
	LayoutErrors       []string            `json:"layout_errors,omitempty"`
	LayoutCompleted    bool                `json:"layout_completed,omitempty"`
}

// FAQ is one question/answer pair extracted from post content.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SEOData is the final SEO metadata bundle for a post.
type SEOData struct {
	Title           string            `json:"title"`
	MetaTitle       string            `json:"meta_title"`
	MetaDescription string            `json:"meta_description"`
	Slug            string            `json:"slug"`
	ArticleSchema   map[string]any    `json:"article_schema"`
	FAQSchema       map[string]any    `json:"faq_schema,omitempty"`
	OGTags          map[string]string `json:"og_tags"`
	FAQCount        int               `json:"faqs_detected"`
}
