package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/observability"
)

// Run executes content workflows. It is stateful: Status and the progress
// history describe the most recent Start call. One workflow is in flight per
// Run at a time; a second Start while one is running fails immediately.
//
// Status, SetProgressFunc, and Reset are safe to call from other goroutines
// while a workflow runs.
type Run struct {
	Stages Stages
	Logger *log.Logger

	mu       sync.Mutex
	running  bool
	runID    string
	stage    Stage
	state    State
	errorLog []string
	history  []ProgressEvent
	snapshot StatusSnapshot
	progress func(ProgressEvent)
}

// NewRun creates a run over the given stage collaborators.
// If logger is nil, the default logger is used.
func NewRun(stages Stages, logger *log.Logger) *Run {
	if logger == nil {
		logger = log.Default()
	}
	return &Run{
		Stages:   stages,
		Logger:   logger,
		stage:    StageIdle,
		snapshot: StatusSnapshot{Status: StatusIdle, CurrentStep: StageIdle},
	}
}

// SetProgressFunc registers fn to receive progress events. A nil fn drops
// them. Events are delivered synchronously from the workflow goroutine.
func (r *Run) SetProgressFunc(fn func(ProgressEvent)) {
	r.mu.Lock()
	r.progress = fn
	r.mu.Unlock()
}

// Status reports where the run currently stands.
func (r *Run) Status() StatusSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.snapshot
	if len(r.history) > 0 {
		snap.History = append([]ProgressEvent(nil), r.history...)
	}
	return snap
}

// Reset returns the run to idle and clears the progress history. It does
// not stop a workflow in flight.
func (r *Run) Reset() {
	r.mu.Lock()
	r.runID = ""
	r.stage = StageIdle
	r.state = State{}
	r.errorLog = nil
	r.history = nil
	r.snapshot = StatusSnapshot{Status: StatusIdle, CurrentStep: StageIdle}
	r.mu.Unlock()
}

// AgentProgress returns a bridge for collaborator Progress fields: each
// message is forwarded as an event at the fixed percent under the current
// stage. Research collaborators bridge at 15, DOM analysis at 30.
func (r *Run) AgentProgress(percent int) func(string) {
	return func(msg string) { r.emit(percent, msg) }
}

// Start runs the full workflow for the given keywords and returns the
// terminal response. It blocks until the run finishes; callers wanting live
// progress register a callback with SetProgressFunc and invoke Start from a
// goroutine.
func (r *Run) Start(ctx context.Context, keywords []string, method Method, location string) *Response {
	cleaned := cleanKeywords(keywords)

	if !r.begin(cleaned, method, location) {
		return &Response{
			Success:      false,
			Error:        "Workflow already running",
			ErrorData:    map[string]string{"error": "another workflow is in flight on this Run"},
			CurrentState: r.currentStage(),
		}
	}
	defer r.end()

	if len(cleaned) == 0 {
		return r.fail("Invalid keywords", map[string]string{"error": "At least one keyword is required"})
	}
	researcher := r.Stages.Research[method]
	if researcher == nil {
		return r.fail("Invalid research method", map[string]string{
			"error": fmt.Sprintf("no researcher configured for method %q", method),
		})
	}

	joined := strings.Join(cleaned, ", ")
	hooks := observability.Workflow()
	hooks.OnWorkflowStart(ctx, r.runID, joined)
	workflowStart := time.Now()
	var runErr error
	defer func() {
		hooks.OnWorkflowComplete(ctx, r.runID, joined, time.Since(workflowStart), runErr)
	}()

	// Stage 1: url_research (hard fail when no keyword yields a URL)
	agent := researcher.Name()
	err := r.runStage(ctx, StageURLResearch, func() error {
		return r.research(ctx, researcher, cleaned, location, method)
	})
	if err != nil {
		runErr = err
		if resp := r.cancelResponse(ctx); resp != nil {
			return resp
		}
		return r.fail(agent+" failed", map[string]string{
			"error":  "No URLs found",
			"method": string(method),
			"agent":  agent,
		})
	}

	// Stage 2: dom_analysis (warn and continue on empty topics)
	var topics content.TopicSet
	err = r.runStage(ctx, StageDOMAnalysis, func() error {
		r.emit(25, fmt.Sprintf("Analyzing DOM content from %d unique URLs...", len(r.state.SERPURLs)))
		var err error
		topics, err = r.Stages.Analysis.Run(ctx, r.state.SERPURLs)
		return err
	})
	if err != nil {
		runErr = err
		if resp := r.cancelResponse(ctx); resp != nil {
			return resp
		}
		runErr = nil
		r.logError("DOM Analysis failed: " + err.Error())
		r.emit(35, "Warning: Limited topics extracted, continuing with available data...")
	} else if topics.Empty() {
		r.logError("DOM Analysis failed: No topics extracted")
		r.emit(35, "Warning: Limited topics extracted, continuing with available data...")
	}
	r.state.Topics = topics
	r.emit(40, fmt.Sprintf("Extracted %d major topics and %d minor topics",
		len(topics.MajorTopics), len(topics.MinorTopics)))

	// Stage 3: brief_creation (hard fail)
	var brief content.Brief
	err = r.runStage(ctx, StageBriefCreation, func() error {
		r.emit(45, "Creating content brief from DOM analysis...")
		var err error
		brief, err = r.Stages.Brief.Run(ctx, cleaned, location, topics)
		return err
	})
	if err != nil {
		runErr = err
		if resp := r.cancelResponse(ctx); resp != nil {
			return resp
		}
		r.logError("Content Brief failed: " + err.Error())
		return r.fail("Content Brief failed", map[string]string{"error": err.Error()})
	}
	r.state.Brief = brief
	r.emit(50, "Content brief created with topic analysis and structure...")

	// Stage 4: content_writing (hard fail)
	var post content.BlogPost
	err = r.runStage(ctx, StageContentWriting, func() error {
		r.emit(55, "Generating SEO-optimized content with AI...")
		var err error
		post, err = r.Stages.Writer.Run(ctx, brief)
		return err
	})
	if err != nil {
		runErr = err
		if resp := r.cancelResponse(ctx); resp != nil {
			return resp
		}
		r.logError("Content Writing failed: " + err.Error())
		return r.fail("Content Writing failed", map[string]string{"error": err.Error()})
	}
	r.state.Post = post
	r.emit(70, fmt.Sprintf("Content generated successfully! Word count: %d", post.WordCount))

	// Stage 5: content_editing (soft fail, keep the original draft)
	err = r.runStage(ctx, StageContentEditing, func() error {
		r.emit(72, "Editing content to match tone guidelines...")
		edited, err := r.Stages.Editor.Run(ctx, post)
		if err != nil {
			return err
		}
		post = edited
		return nil
	})
	if err != nil {
		if resp := r.cancelResponse(ctx); resp != nil {
			runErr = err
			return resp
		}
		r.logError("Content Editing failed: " + err.Error())
		r.emit(75, "Content editing skipped due to error, using original content")
	} else {
		r.emit(75, "Content edited to match tone guidelines")
	}
	r.state.Post = post

	// Stage 6: content_presentation (soft fail, post carries no requirements)
	err = r.runStage(ctx, StageContentPresentation, func() error {
		r.emit(77, "Analyzing content for visual element requirements...")
		analyzed, err := r.Stages.Presenter.Run(ctx, post)
		if err != nil {
			return err
		}
		post = analyzed
		return nil
	})
	if err != nil {
		if resp := r.cancelResponse(ctx); resp != nil {
			runErr = err
			return resp
		}
		r.logError("Content Presentation Analysis failed: " + err.Error())
		r.emit(78, "Visual requirements analysis skipped")
	} else {
		r.emit(78, fmt.Sprintf("Created %d visual element requirements", len(post.VisualRequirements)))
	}
	r.state.Post = post

	// Stage 7: layout_creation (soft fail, keep content without visuals)
	err = r.runStage(ctx, StageLayoutCreation, func() error {
		r.emit(79, "Generating visual elements and creating final layout...")
		res, err := r.Stages.Composer.Compose(ctx, post.Content, post.VisualRequirements)
		if err != nil {
			return err
		}
		post.Content = res.Content
		post.GeneratedElements = res.Generated
		post.LayoutErrors = res.Errors
		post.LayoutCompleted = true
		return nil
	})
	if err != nil {
		if resp := r.cancelResponse(ctx); resp != nil {
			runErr = err
			return resp
		}
		r.logError("Layout creation failed: " + err.Error())
		r.emit(80, "Layout creation skipped, using content without visuals")
	} else {
		generated := 0
		for _, el := range post.GeneratedElements {
			if el.Status == content.StatusSuccess {
				generated++
			}
		}
		r.emit(80, fmt.Sprintf("Layout completed: %d/%d visual elements generated",
			generated, len(post.VisualRequirements)))
	}
	r.state.Post = post

	// Stage 8: seo_optimization (soft fail, post keeps its own metadata)
	var seoData content.SEOData
	err = r.runStage(ctx, StageSEOOptimization, func() error {
		r.emit(82, "Optimizing SEO elements: title, meta, slug, schemas, OG tags...")
		var err error
		seoData, err = r.Stages.SEO.Run(ctx, brief, post)
		return err
	})
	if err != nil {
		if resp := r.cancelResponse(ctx); resp != nil {
			runErr = err
			return resp
		}
		r.logError("SEO Optimization failed: " + err.Error())
		r.emit(83, "SEO optimization skipped due to error")
	} else {
		post.Title = seoData.Title
		post.MetaTitle = seoData.MetaTitle
		post.MetaDescription = seoData.MetaDescription
		r.state.SEO = seoData
		r.state.Post = post
		r.emit(83, fmt.Sprintf("SEO optimization completed: slug generated, %d OG tags, schemas created",
			len(seoData.OGTags)))
	}

	// Stage 9: ready_for_review
	err = r.runStage(ctx, StageReadyForReview, func() error {
		r.emit(90, "Preparing content for review and editing...")
		return nil
	})
	if err != nil {
		if resp := r.cancelResponse(ctx); resp != nil {
			runErr = err
			return resp
		}
	}

	return r.succeed(joined)
}

// research fans the keywords out over one researcher and merges the URL
// lists, dropping duplicates while preserving first-seen order. It returns
// an error only when no keyword yields a URL.
func (r *Run) research(ctx context.Context, researcher Researcher, keywords []string, location string, method Method) error {
	agent := researcher.Name()

	locationInfo := ""
	switch {
	case location != "":
		locationInfo = " in " + location
	case method == MethodSerpAPI:
		locationInfo = " in United States (default)"
	}
	r.emit(10, fmt.Sprintf("Starting %s for %d keyword(s)%s", agent, len(keywords), locationInfo))

	var merged []string
	seen := make(map[string]bool)
	perKeyword := make(map[string][]string, len(keywords))
	total := 0

	for i, keyword := range keywords {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.emit(10+(i+1)*5/len(keywords),
			fmt.Sprintf("Searching keyword %d/%d: %s", i+1, len(keywords), keyword))

		urls, err := researcher.Research(ctx, keyword, location)
		if err != nil {
			r.Logger.Error("keyword research failed", "keyword", keyword, "error", err)
			r.logError(fmt.Sprintf("Error researching keyword '%s': %v", keyword, err))
			continue
		}
		perKeyword[keyword] = urls
		total += len(urls)
		for _, u := range urls {
			if !seen[u] {
				seen[u] = true
				merged = append(merged, u)
			}
		}
	}

	if len(merged) == 0 {
		r.logError(agent + " failed: No URLs found for any keyword")
		return errors.New(errors.ErrCodeResearchEmpty, "%s returned no URLs for %d keyword(s)", agent, len(keywords))
	}

	r.state.SERPURLs = merged
	r.state.KeywordURLs = perKeyword
	r.emit(20, fmt.Sprintf("Found %d unique URLs from %d keyword(s) (%d duplicates removed)",
		len(merged), len(keywords), total-len(merged)))
	return nil
}

// runStage brackets one stage: it records the transition, fires the
// observability hooks, and skips the body when ctx is already done.
func (r *Run) runStage(ctx context.Context, stage Stage, fn func() error) error {
	r.setStage(stage)
	hooks := observability.Workflow()
	hooks.OnStageStart(ctx, r.runID, string(stage))
	start := time.Now()

	err := ctx.Err()
	if err == nil {
		err = fn()
	}

	dur := time.Since(start)
	hooks.OnStageComplete(ctx, r.runID, string(stage), dur, err)
	if err != nil {
		r.Logger.Debug("stage failed", "stage", stage, "duration", dur, "error", err)
	} else {
		r.Logger.Debug("stage complete", "stage", stage, "duration", dur)
	}
	return err
}

// begin claims the run for a new workflow. It reports false when another
// workflow is already in flight.
func (r *Run) begin(keywords []string, method Method, location string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	r.runID = uuid.NewString()
	r.stage = StageIdle
	r.state = State{Keywords: keywords, Location: location, Method: method}
	r.errorLog = nil
	r.history = nil
	r.snapshot = StatusSnapshot{Status: StatusInProgress, CurrentStep: StageIdle, RunID: r.runID}
	return true
}

func (r *Run) end() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Run) setStage(stage Stage) {
	r.mu.Lock()
	r.stage = stage
	r.snapshot.CurrentStep = stage
	r.mu.Unlock()
}

func (r *Run) currentStage() Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}

// emit records a progress event and forwards it to the registered callback.
func (r *Run) emit(percent int, message string) {
	r.mu.Lock()
	ev := ProgressEvent{
		RunID:   r.runID,
		Status:  StatusInProgress,
		Stage:   r.stage,
		Percent: percent,
		Message: message,
		At:      time.Now(),
	}
	r.snapshot.Status = StatusInProgress
	r.snapshot.Percent = percent
	r.snapshot.Message = message
	r.history = append(r.history, ev)
	fn := r.progress
	r.mu.Unlock()

	r.Logger.Debug("progress", "stage", ev.Stage, "percent", percent, "message", message)
	if fn != nil {
		fn(ev)
	}
}

// logError appends to the run's error log and logs at error level.
func (r *Run) logError(message string) {
	r.Logger.Error(message)
	r.mu.Lock()
	r.errorLog = append(r.errorLog, message)
	r.mu.Unlock()
}

// cancelResponse builds the failure response for a canceled context, or nil
// when the context is still live.
func (r *Run) cancelResponse(ctx context.Context) *Response {
	if ctx.Err() == nil {
		return nil
	}
	r.logError("Workflow canceled: " + ctx.Err().Error())
	return r.fail("Workflow canceled", map[string]string{"error": ctx.Err().Error()})
}

// fail builds the uniform error response from the run's current state.
func (r *Run) fail(message string, data map[string]string) *Response {
	r.mu.Lock()
	r.snapshot.Status = StatusError
	r.snapshot.Message = message
	resp := &Response{
		Success:      false,
		Error:        message,
		ErrorData:    data,
		CurrentState: r.stage,
		WorkflowData: r.state,
		ErrorLog:     append([]string(nil), r.errorLog...),
	}
	stage := r.stage
	r.mu.Unlock()

	r.Logger.Error("workflow failed", "stage", stage, "error", message)
	return resp
}

// succeed builds the completion response.
func (r *Run) succeed(keyword string) *Response {
	r.mu.Lock()
	r.snapshot.Status = StatusCompleted
	resp := &Response{
		Success:      true,
		Keyword:      keyword,
		Message:      "Workflow completed successfully. Ready for review.",
		CurrentState: r.stage,
		WorkflowData: r.state,
		ErrorLog:     append([]string(nil), r.errorLog...),
	}
	r.mu.Unlock()

	r.Logger.Info("workflow completed", "keyword", keyword, "stage", resp.CurrentState)
	return resp
}

// cleanKeywords trims whitespace and drops empty entries.
func cleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	return cleaned
}
