package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/layout"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type fakeResearcher struct {
	name     string
	urls     map[string][]string
	err      error
	keywords []string
	onSearch func(keyword string)
}

func (f *fakeResearcher) Name() string {
	if f.name == "" {
		return "SERP API"
	}
	return f.name
}

func (f *fakeResearcher) Research(_ context.Context, keyword, _ string) ([]string, error) {
	f.keywords = append(f.keywords, keyword)
	if f.onSearch != nil {
		f.onSearch(keyword)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.urls[keyword], nil
}

type fakeAnalysis struct {
	topics content.TopicSet
	err    error
	urls   []string
}

func (f *fakeAnalysis) Run(_ context.Context, urls []string) (content.TopicSet, error) {
	f.urls = urls
	return f.topics, f.err
}

type fakeBrief struct {
	brief content.Brief
	err   error
}

func (f *fakeBrief) Run(_ context.Context, _ []string, _ string, _ content.TopicSet) (content.Brief, error) {
	return f.brief, f.err
}

type fakeWriter struct {
	post content.BlogPost
	err  error

	// entered/release coordinate the concurrency test; nil means no blocking.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeWriter) Run(_ context.Context, _ content.Brief) (content.BlogPost, error) {
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	return f.post, f.err
}

type fakeEditor struct {
	err  error
	edit func(content.BlogPost) content.BlogPost
}

func (f *fakeEditor) Run(_ context.Context, post content.BlogPost) (content.BlogPost, error) {
	if f.err != nil {
		return content.BlogPost{}, f.err
	}
	if f.edit != nil {
		return f.edit(post), nil
	}
	return post, nil
}

type fakePresenter struct {
	reqs    []content.VisualRequirement
	summary string
	err     error
}

func (f *fakePresenter) Run(_ context.Context, post content.BlogPost) (content.BlogPost, error) {
	if f.err != nil {
		return content.BlogPost{}, f.err
	}
	post.VisualRequirements = f.reqs
	post.VisualSummary = f.summary
	return post, nil
}

type fakeComposer struct {
	appendHTML string
	elements   []content.VisualElement
	errs       []string
	err        error
	reqs       []content.VisualRequirement
}

func (f *fakeComposer) Compose(_ context.Context, html string, reqs []content.VisualRequirement) (*layout.Result, error) {
	f.reqs = reqs
	if f.err != nil {
		return nil, f.err
	}
	return &layout.Result{Content: html + f.appendHTML, Generated: f.elements, Errors: f.errs}, nil
}

type fakeSEO struct {
	data content.SEOData
	err  error
}

func (f *fakeSEO) Run(_ context.Context, _ content.Brief, _ content.BlogPost) (content.SEOData, error) {
	return f.data, f.err
}

const draftContent = "<h1>The Best Espresso Machines</h1><p>Pick a machine you will actually clean.</p>"

// happyStages returns a collaborator set where every stage succeeds.
func happyStages() Stages {
	return Stages{
		Research: map[Method]Researcher{
			MethodSerpAPI: &fakeResearcher{urls: map[string][]string{
				"espresso machines": {"https://a.example.com", "https://b.example.com"},
			}},
		},
		Analysis: &fakeAnalysis{topics: content.TopicSet{
			MajorTopics: []content.Topic{{Name: "Grind Size", Subtopics: []string{"Burr types"}}},
			MinorTopics: []content.Topic{{Name: "Cleaning"}},
		}},
		Brief: &fakeBrief{brief: content.Brief{
			TargetKeyword:    "espresso machines",
			RecommendedTitle: "The Best Espresso Machines",
			HeadingStructure: []content.Heading{{Level: "H1", Title: "The Best Espresso Machines"}},
		}},
		Writer: &fakeWriter{post: content.BlogPost{
			Title:     "The Best Espresso Machines",
			Content:   draftContent,
			WordCount: 11,
		}},
		Editor: &fakeEditor{},
		Presenter: &fakePresenter{
			reqs:    []content.VisualRequirement{{Type: content.VisualImage, Prompt: "A lever machine", Priority: content.PriorityHigh}},
			summary: "One hero image",
		},
		Composer: &fakeComposer{
			appendHTML: `<figure><img src="x.png" alt="A lever machine"/></figure>`,
			elements:   []content.VisualElement{{Type: content.VisualImage, Status: content.StatusSuccess}},
		},
		SEO: &fakeSEO{data: content.SEOData{
			Title:           "Espresso Machines Guide",
			MetaTitle:       "Espresso Machines Guide",
			MetaDescription: "Pick the right machine.",
			Slug:            "espresso-machines-guide",
			OGTags:          map[string]string{"og:title": "Espresso Machines Guide", "og:site_name": "Brew Notes"},
		}},
	}
}

func hasMessage(events []ProgressEvent, msg string) bool {
	for _, ev := range events {
		if ev.Message == msg {
			return true
		}
	}
	return false
}

func hasLogEntry(entries []string, substr string) bool {
	for _, e := range entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestRunHappyPath(t *testing.T) {
	run := NewRun(happyStages(), testLogger())
	var events []ProgressEvent
	run.SetProgressFunc(func(ev ProgressEvent) { events = append(events, ev) })

	resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
	if !resp.Success {
		t.Fatalf("workflow failed: %q %v", resp.Error, resp.ErrorLog)
	}
	if resp.CurrentState != StageReadyForReview {
		t.Errorf("state = %s", resp.CurrentState)
	}
	if resp.Keyword != "espresso machines" {
		t.Errorf("keyword = %q", resp.Keyword)
	}
	if resp.Message != "Workflow completed successfully. Ready for review." {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.ErrorLog) != 0 {
		t.Errorf("error log = %v", resp.ErrorLog)
	}

	data := resp.WorkflowData
	if len(data.SERPURLs) != 2 {
		t.Errorf("serp urls = %v", data.SERPURLs)
	}
	if len(data.Topics.MajorTopics) == 0 {
		t.Error("no major topics recorded")
	}
	if data.Brief.HeadingStructure[0].Level != "H1" {
		t.Errorf("brief heading = %+v", data.Brief.HeadingStructure[0])
	}
	if !strings.HasPrefix(data.Post.Content, draftContent) || !strings.Contains(data.Post.Content, "<figure>") {
		t.Errorf("post content = %q", data.Post.Content)
	}
	if !data.Post.LayoutCompleted {
		t.Error("layout not marked completed")
	}
	if data.Post.Title != "Espresso Machines Guide" {
		t.Errorf("post title = %q, want the SEO-optimized title", data.Post.Title)
	}
	if data.SEO.Slug != "espresso-machines-guide" {
		t.Errorf("slug = %q", data.SEO.Slug)
	}

	if len(events) == 0 {
		t.Fatal("no progress events")
	}
	if events[0].Message != "Starting SERP API for 1 keyword(s) in United States (default)" {
		t.Errorf("first event = %q", events[0].Message)
	}
	last := events[len(events)-1]
	if last.Message != "Preparing content for review and editing..." || last.Percent != 90 {
		t.Errorf("last event = %d%% %q", last.Percent, last.Message)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Errorf("progress decreased: %d%% (%s) after %d%% (%s)",
				events[i].Percent, events[i].Message, events[i-1].Percent, events[i-1].Message)
		}
	}
	for _, msg := range []string{
		"Found 2 unique URLs from 1 keyword(s) (0 duplicates removed)",
		"Content generated successfully! Word count: 11",
		"Content edited to match tone guidelines",
		"Created 1 visual element requirements",
		"Layout completed: 1/1 visual elements generated",
		"SEO optimization completed: slug generated, 2 OG tags, schemas created",
	} {
		if !hasMessage(events, msg) {
			t.Errorf("missing progress message %q", msg)
		}
	}

	snap := run.Status()
	if snap.Status != StatusCompleted || snap.CurrentStep != StageReadyForReview || snap.Percent != 90 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.RunID == "" {
		t.Error("snapshot has no run id")
	}
	if len(snap.History) != len(events) {
		t.Errorf("history has %d events, callback saw %d", len(snap.History), len(events))
	}
}

func TestRunMergesAcrossKeywords(t *testing.T) {
	st := happyStages()
	st.Research[MethodSerpAPI] = &fakeResearcher{urls: map[string][]string{
		"coffee":   {"https://a.example.com", "https://b.example.com"},
		"espresso": {"https://b.example.com", "https://c.example.com"},
	}}
	run := NewRun(st, testLogger())
	var events []ProgressEvent
	run.SetProgressFunc(func(ev ProgressEvent) { events = append(events, ev) })

	resp := run.Start(context.Background(), []string{"coffee", "espresso"}, MethodSerpAPI, "Austin, Texas")
	if !resp.Success {
		t.Fatalf("workflow failed: %q", resp.Error)
	}

	want := []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"}
	got := resp.WorkflowData.SERPURLs
	if len(got) != len(want) {
		t.Fatalf("merged urls = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("merged[%d] = %q, want %q (first-seen order)", i, got[i], want[i])
		}
	}
	if urls := resp.WorkflowData.KeywordURLs["espresso"]; len(urls) != 2 {
		t.Errorf("keyword map entry = %v", urls)
	}
	if resp.Keyword != "coffee, espresso" {
		t.Errorf("keyword = %q", resp.Keyword)
	}

	if !hasMessage(events, "Starting SERP API for 2 keyword(s) in Austin, Texas") {
		t.Error("missing location-aware start message")
	}
	if !hasMessage(events, "Found 3 unique URLs from 2 keyword(s) (1 duplicates removed)") {
		t.Error("missing merge summary message")
	}
	for _, ev := range events {
		switch ev.Message {
		case "Searching keyword 1/2: coffee":
			if ev.Percent != 12 {
				t.Errorf("first keyword marker at %d%%", ev.Percent)
			}
		case "Searching keyword 2/2: espresso":
			if ev.Percent != 15 {
				t.Errorf("second keyword marker at %d%%", ev.Percent)
			}
		}
	}
}

func TestRunResearchEmpty(t *testing.T) {
	st := happyStages()
	st.Research[MethodSerpAPI] = &fakeResearcher{}
	run := NewRun(st, testLogger())

	resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
	if resp.Success {
		t.Fatal("workflow should fail with no URLs")
	}
	if resp.Error != "SERP API failed" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.ErrorData["error"] != "No URLs found" || resp.ErrorData["method"] != "serpapi" || resp.ErrorData["agent"] != "SERP API" {
		t.Errorf("error data = %v", resp.ErrorData)
	}
	if resp.CurrentState != StageURLResearch {
		t.Errorf("state = %s", resp.CurrentState)
	}
	if !hasLogEntry(resp.ErrorLog, "SERP API failed: No URLs found for any keyword") {
		t.Errorf("error log = %v", resp.ErrorLog)
	}
	if snap := run.Status(); snap.Status != StatusError {
		t.Errorf("snapshot status = %q", snap.Status)
	}
}

func TestRunInvalidKeywords(t *testing.T) {
	run := NewRun(happyStages(), testLogger())

	resp := run.Start(context.Background(), []string{"  ", ""}, MethodSerpAPI, "")
	if resp.Success {
		t.Fatal("workflow should reject blank keywords")
	}
	if resp.Error != "Invalid keywords" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.ErrorData["error"] != "At least one keyword is required" {
		t.Errorf("error data = %v", resp.ErrorData)
	}
	if resp.CurrentState != StageIdle {
		t.Errorf("state = %s", resp.CurrentState)
	}
}

func TestRunUnknownMethod(t *testing.T) {
	run := NewRun(happyStages(), testLogger())

	resp := run.Start(context.Background(), []string{"espresso machines"}, Method("bing"), "")
	if resp.Success || resp.Error != "Invalid research method" {
		t.Errorf("response = %+v", resp)
	}
}

func TestRunHardFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Stages)
		wantError string
		wantState Stage
	}{
		{
			name:      "brief creation aborts",
			mutate:    func(s *Stages) { s.Brief = &fakeBrief{err: fmt.Errorf("no brief")} },
			wantError: "Content Brief failed",
			wantState: StageBriefCreation,
		},
		{
			name:      "content writing aborts",
			mutate:    func(s *Stages) { s.Writer = &fakeWriter{err: fmt.Errorf("model offline")} },
			wantError: "Content Writing failed",
			wantState: StageContentWriting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := happyStages()
			tt.mutate(&st)
			run := NewRun(st, testLogger())

			resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
			if resp.Success {
				t.Fatal("workflow should abort")
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if resp.CurrentState != tt.wantState {
				t.Errorf("state = %s, want %s", resp.CurrentState, tt.wantState)
			}
			if !hasLogEntry(resp.ErrorLog, tt.wantError) {
				t.Errorf("error log = %v", resp.ErrorLog)
			}
		})
	}
}

func TestRunSoftFailures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Stages)
		wantLog   string
		wantEvent string
	}{
		{
			name:      "editing degrades",
			mutate:    func(s *Stages) { s.Editor = &fakeEditor{err: fmt.Errorf("tone service down")} },
			wantLog:   "Content Editing failed: tone service down",
			wantEvent: "Content editing skipped due to error, using original content",
		},
		{
			name:      "presentation degrades",
			mutate:    func(s *Stages) { s.Presenter = &fakePresenter{err: fmt.Errorf("no analysis")} },
			wantLog:   "Content Presentation Analysis failed: no analysis",
			wantEvent: "Visual requirements analysis skipped",
		},
		{
			name:      "layout degrades",
			mutate:    func(s *Stages) { s.Composer = &fakeComposer{err: fmt.Errorf("graphics offline")} },
			wantLog:   "Layout creation failed: graphics offline",
			wantEvent: "Layout creation skipped, using content without visuals",
		},
		{
			name:      "seo optimization degrades",
			mutate:    func(s *Stages) { s.SEO = &fakeSEO{err: fmt.Errorf("optimizer down")} },
			wantLog:   "SEO Optimization failed: optimizer down",
			wantEvent: "SEO optimization skipped due to error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := happyStages()
			tt.mutate(&st)
			run := NewRun(st, testLogger())
			var events []ProgressEvent
			run.SetProgressFunc(func(ev ProgressEvent) { events = append(events, ev) })

			resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
			if !resp.Success {
				t.Fatalf("soft failure should not abort: %q", resp.Error)
			}
			if resp.CurrentState != StageReadyForReview {
				t.Errorf("state = %s", resp.CurrentState)
			}
			if !hasLogEntry(resp.ErrorLog, tt.wantLog) {
				t.Errorf("error log = %v, want entry %q", resp.ErrorLog, tt.wantLog)
			}
			if !hasMessage(events, tt.wantEvent) {
				t.Errorf("missing degraded-progress message %q", tt.wantEvent)
			}
		})
	}
}

func TestRunEditorFailureKeepsDraft(t *testing.T) {
	st := happyStages()
	st.Editor = &fakeEditor{err: fmt.Errorf("tone service down")}
	st.Composer = &fakeComposer{}
	run := NewRun(st, testLogger())

	resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
	if !resp.Success {
		t.Fatalf("workflow failed: %q", resp.Error)
	}
	if resp.WorkflowData.Post.Content != draftContent {
		t.Errorf("content = %q, want the unedited draft", resp.WorkflowData.Post.Content)
	}
	if len(resp.ErrorLog) != 1 || !strings.Contains(resp.ErrorLog[0], "Content Editing failed") {
		t.Errorf("error log = %v", resp.ErrorLog)
	}
}

func TestRunAnalysisDegrades(t *testing.T) {
	tests := []struct {
		name     string
		analysis *fakeAnalysis
		wantLog  string
	}{
		{
			name:     "empty topic set",
			analysis: &fakeAnalysis{},
			wantLog:  "DOM Analysis failed: No topics extracted",
		},
		{
			name:     "analysis error",
			analysis: &fakeAnalysis{err: fmt.Errorf("fetch blocked")},
			wantLog:  "DOM Analysis failed: fetch blocked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := happyStages()
			st.Analysis = tt.analysis
			run := NewRun(st, testLogger())
			var events []ProgressEvent
			run.SetProgressFunc(func(ev ProgressEvent) { events = append(events, ev) })

			resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
			if !resp.Success {
				t.Fatalf("analysis trouble should not abort: %q", resp.Error)
			}
			if !hasLogEntry(resp.ErrorLog, tt.wantLog) {
				t.Errorf("error log = %v", resp.ErrorLog)
			}
			if !hasMessage(events, "Warning: Limited topics extracted, continuing with available data...") {
				t.Error("missing limited-topics warning")
			}
			if !hasMessage(events, "Extracted 0 major topics and 0 minor topics") {
				t.Error("missing extraction summary")
			}
		})
	}
}

func TestRunAgentProgressBridge(t *testing.T) {
	research := &fakeResearcher{urls: map[string][]string{
		"espresso machines": {"https://a.example.com"},
	}}
	st := happyStages()
	st.Research[MethodSerpAPI] = research
	run := NewRun(st, testLogger())
	research.onSearch = func(string) {
		run.AgentProgress(15)("Querying SerpAPI for search results...")
	}
	var events []ProgressEvent
	run.SetProgressFunc(func(ev ProgressEvent) { events = append(events, ev) })

	resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
	if !resp.Success {
		t.Fatalf("workflow failed: %q", resp.Error)
	}
	for _, ev := range events {
		if ev.Message == "Querying SerpAPI for search results..." {
			if ev.Percent != 15 || ev.Stage != StageURLResearch {
				t.Errorf("bridged event = %d%% in %s", ev.Percent, ev.Stage)
			}
			return
		}
	}
	t.Error("bridged agent message never surfaced")
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run := NewRun(happyStages(), testLogger())

	resp := run.Start(ctx, []string{"espresso machines"}, MethodSerpAPI, "")
	if resp.Success {
		t.Fatal("workflow should fail under a canceled context")
	}
	if resp.Error != "Workflow canceled" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.ErrorData["error"] != context.Canceled.Error() {
		t.Errorf("error data = %v", resp.ErrorData)
	}
	if resp.CurrentState != StageURLResearch {
		t.Errorf("state = %s", resp.CurrentState)
	}
}

func TestRunRejectsConcurrentStart(t *testing.T) {
	st := happyStages()
	writer := &fakeWriter{
		post:    content.BlogPost{Content: draftContent, WordCount: 11},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	st.Writer = writer
	run := NewRun(st, testLogger())

	done := make(chan *Response, 1)
	go func() {
		done <- run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, "")
	}()
	<-writer.entered

	second := run.Start(context.Background(), []string{"pour over"}, MethodSerpAPI, "")
	if second.Success || second.Error != "Workflow already running" {
		t.Errorf("second start = %+v", second)
	}

	close(writer.release)
	if first := <-done; !first.Success {
		t.Errorf("first start failed: %q", first.Error)
	}
}

func TestRunReset(t *testing.T) {
	run := NewRun(happyStages(), testLogger())
	if resp := run.Start(context.Background(), []string{"espresso machines"}, MethodSerpAPI, ""); !resp.Success {
		t.Fatalf("workflow failed: %q", resp.Error)
	}

	run.Reset()
	snap := run.Status()
	if snap.Status != StatusIdle || snap.CurrentStep != StageIdle || snap.Percent != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.RunID != "" || len(snap.History) != 0 {
		t.Errorf("snapshot keeps run artifacts: %+v", snap)
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"serpapi", MethodSerpAPI, false},
		{"SERPAPI", MethodSerpAPI, false},
		{" webbrowse ", MethodWebBrowse, false},
		{"bing", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMethod(%q) should fail", tt.in)
			} else if code := errors.GetCode(err); code != errors.ErrCodeInvalidMethod {
				t.Errorf("ParseMethod(%q) code = %s", tt.in, code)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMethod(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
