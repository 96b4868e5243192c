// Package workflow orchestrates the seoflow content pipeline.
//
// A workflow turns a set of keywords into a review-ready blog post by
// driving nine stages in fixed order:
//
//	url_research → dom_analysis → brief_creation → content_writing →
//	content_editing → content_presentation → layout_creation →
//	seo_optimization → ready_for_review
//
// Stage collaborators are injected through the Stages bundle, so the CLI
// wires real clients while tests wire fakes.
//
// # Failure policy
//
// Research that finds no URLs at all, brief creation, and content writing
// abort the run with a structured error response. Editing, presentation,
// layout, and SEO optimization degrade instead: the failure is appended to
// the error log, the previous stage's output carries forward, and the run
// still reaches ready_for_review. An empty topic set from DOM analysis is a
// warning, not a failure.
//
// # Usage
//
// Create a Run and start the workflow:
//
//	run := workflow.NewRun(stages, logger)
//	run.SetProgressFunc(func(ev workflow.ProgressEvent) {
//	    fmt.Printf("%3d%% %s\n", ev.Percent, ev.Message)
//	})
//	resp := run.Start(ctx, []string{"espresso machines"}, workflow.MethodSerpAPI, "")
//	if !resp.Success {
//	    log.Fatal(resp.Error)
//	}
//	fmt.Println(resp.WorkflowData.Post.Content)
//
// One workflow is in flight per Run at a time; concurrent workflows use
// separate Run values.
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/layout"
)

// Stage identifies one workflow state.
type Stage string

// Workflow stages in execution order. A run starts at StageIdle and, absent
// a hard failure, ends at StageReadyForReview.
const (
	StageIdle                Stage = "idle"
	StageURLResearch         Stage = "url_research"
	StageDOMAnalysis         Stage = "dom_analysis"
	StageBriefCreation       Stage = "brief_creation"
	StageContentWriting      Stage = "content_writing"
	StageContentEditing      Stage = "content_editing"
	StageContentPresentation Stage = "content_presentation"
	StageLayoutCreation      Stage = "layout_creation"
	StageSEOOptimization     Stage = "seo_optimization"
	StageReadyForReview      Stage = "ready_for_review"
)

// StageOrder lists the pipeline stages in execution order, idle excluded.
var StageOrder = []Stage{
	StageURLResearch,
	StageDOMAnalysis,
	StageBriefCreation,
	StageContentWriting,
	StageContentEditing,
	StageContentPresentation,
	StageLayoutCreation,
	StageSEOOptimization,
	StageReadyForReview,
}

// hardFailStages abort the run on failure. Every other stage degrades and
// the run continues with the previous stage's output.
var hardFailStages = map[Stage]bool{
	StageURLResearch:    true,
	StageBriefCreation:  true,
	StageContentWriting: true,
}

// Method selects the url_research backend.
type Method string

// Supported research methods.
const (
	MethodSerpAPI   Method = "serpapi"
	MethodWebBrowse Method = "webbrowse"
)

// ValidMethods is the set of supported research methods.
var ValidMethods = map[Method]bool{
	MethodSerpAPI:   true,
	MethodWebBrowse: true,
}

// ParseMethod normalizes a user-supplied method name.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !ValidMethods[m] {
		return "", errors.New(errors.ErrCodeInvalidMethod,
			"invalid research method: %q (must be one of: serpapi, webbrowse)", s)
	}
	return m, nil
}

// Run status values reported in progress events and snapshots.
const (
	StatusIdle       = "idle"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Researcher finds competitor URLs for a single keyword. Name identifies
// the method in progress messages and error responses. Satisfied by
// *stages.SerpResearch and *stages.BrowseResearch.
type Researcher interface {
	Name() string
	Research(ctx context.Context, keyword, location string) ([]string, error)
}

// TopicAnalyzer consolidates page topics from competitor URLs.
type TopicAnalyzer interface {
	Run(ctx context.Context, urls []string) (content.TopicSet, error)
}

// BriefBuilder turns keywords and topic research into a content brief.
type BriefBuilder interface {
	Run(ctx context.Context, keywords []string, location string, topics content.TopicSet) (content.Brief, error)
}

// Writer drafts the article from the brief.
type Writer interface {
	Run(ctx context.Context, brief content.Brief) (content.BlogPost, error)
}

// Editor rewrites the draft to match the house tone.
type Editor interface {
	Run(ctx context.Context, post content.BlogPost) (content.BlogPost, error)
}

// Presenter analyzes the draft and attaches visual requirements.
type Presenter interface {
	Run(ctx context.Context, post content.BlogPost) (content.BlogPost, error)
}

// Composer generates visual elements and splices them into the content.
// Satisfied by *layout.Composer.
type Composer interface {
	Compose(ctx context.Context, htmlContent string, reqs []content.VisualRequirement) (*layout.Result, error)
}

// Optimizer produces the SEO metadata bundle for the finished post.
type Optimizer interface {
	Run(ctx context.Context, brief content.Brief, post content.BlogPost) (content.SEOData, error)
}

// Stages bundles the collaborators a run drives, one per workflow stage.
// Research is keyed by method; every other field must be set.
type Stages struct {
	Research  map[Method]Researcher
	Analysis  TopicAnalyzer
	Brief     BriefBuilder
	Writer    Writer
	Editor    Editor
	Presenter Presenter
	Composer  Composer
	SEO       Optimizer
}

// State accumulates the outputs of one run. Field tags follow the names the
// progress API reports, so a marshaled State reads like the run transcript.
type State struct {
	Keywords    []string            `json:"keywords"`
	Location    string              `json:"location,omitempty"`
	Method      Method              `json:"research_method,omitempty"`
	SERPURLs    []string            `json:"serp_urls,omitempty"`
	KeywordURLs map[string][]string `json:"keyword_urls_map,omitempty"`
	Topics      content.TopicSet    `json:"dom_analysis"`
	Brief       content.Brief       `json:"content_brief"`
	Post        content.BlogPost    `json:"blog_post"`
	SEO         content.SEOData     `json:"seo_optimization"`
}

// ProgressEvent is one progress update pushed to the registered callback
// and recorded in the run history.
type ProgressEvent struct {
	RunID   string    `json:"run_id"`
	Status  string    `json:"status"`
	Stage   Stage     `json:"current_step"`
	Percent int       `json:"progress_percentage"`
	Message string    `json:"message"`
	At      time.Time `json:"timestamp"`
}

// StatusSnapshot reports where a run currently stands. History carries every
// event emitted so far, so late-attaching pollers can catch up.
type StatusSnapshot struct {
	Status      string          `json:"status"`
	CurrentStep Stage           `json:"current_step"`
	Percent     int             `json:"progress_percentage"`
	Message     string          `json:"message"`
	History     []ProgressEvent `json:"history,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
}

// Response is the terminal result of Start.
type Response struct {
	Success      bool              `json:"success"`
	Keyword      string            `json:"keyword,omitempty"`
	Message      string            `json:"message,omitempty"`
	Error        string            `json:"error,omitempty"`
	ErrorData    map[string]string `json:"error_data,omitempty"`
	CurrentState Stage             `json:"current_state"`
	WorkflowData State             `json:"workflow_data"`
	ErrorLog     []string          `json:"error_log,omitempty"`
}
