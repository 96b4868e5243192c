package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/seoflow/seoflow/pkg/content"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/workflow"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	keywords string
	method   string
	location string
	output   string
	jsonOut  bool
	noTUI    bool
	refresh  bool
	noCache  bool
}

// runCommand creates the run command, the pipeline's main entry point.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOpts{method: string(workflow.MethodSerpAPI)}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the content workflow for one or more keywords",
		Long: `Run the full content workflow: keyword research, DOM analysis, content
brief, AI writing and editing, visual layout, and SEO optimization.

The live view shows stage progress; q cancels the run. Use --no-tui for
plain log lines (CI), or --json to print the full response as JSON.

Examples:
  seoflow run -k "espresso machines"
  seoflow run -k "espresso machines,burr grinders" -l "Austin, Texas"
  seoflow run -k "pour over" -m webbrowse --json > response.json
  seoflow run -k "pour over" -o post.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWorkflow(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.keywords, "keywords", "k", "", "comma-separated keywords (required)")
	cmd.Flags().StringVarP(&opts.method, "method", "m", opts.method, "research method: serpapi, webbrowse")
	cmd.Flags().StringVarP(&opts.location, "location", "l", "", `search location (e.g. "Austin, Texas")`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the final HTML content to this file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the full response as JSON")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "plain progress logs instead of the live view")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached API responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable response caching")
	_ = cmd.MarkFlagRequired("keywords")

	return cmd
}

// runWorkflow wires configuration into stage collaborators and executes the
// workflow, live or plain.
func (c *CLI) runWorkflow(ctx context.Context, opts runOpts) error {
	method, err := workflow.ParseMethod(opts.method)
	if err != nil {
		return err
	}
	keywords := splitKeywords(opts.keywords)
	for _, kw := range keywords {
		if kw == "" {
			continue // the workflow drops empties
		}
		if err := errors.ValidateKeyword(kw); err != nil {
			return err
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := c.newCacheBackend(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("cache backend: %w", err)
	}
	defer backend.Close()

	col, err := c.buildStages(cfg, backend, opts.refresh)
	if err != nil {
		return err
	}
	if err := checkMethod(col, method); err != nil {
		return err
	}

	useTUI := !opts.noTUI && !opts.jsonOut
	runLogger := c.Logger
	if useTUI {
		// The live view owns the terminal; run details surface in the
		// final summary instead.
		runLogger = log.New(io.Discard)
	}

	run := workflow.NewRun(col.stages(), runLogger)
	if col.serp != nil {
		col.serp.Progress = run.AgentProgress(15)
	}
	if col.browse != nil {
		col.browse.Progress = run.AgentProgress(15)
	}
	col.analysis.Progress = run.AgentProgress(30)

	var resp *workflow.Response
	if useTUI {
		resp, err = c.runLive(ctx, run, keywords, method, opts.location)
		if err != nil {
			return err
		}
	} else {
		resp = c.runPlain(ctx, run, keywords, method, opts.location)
	}

	return c.finish(resp, opts)
}

// checkMethod reports a configuration error when the selected research
// method has no client behind it.
func checkMethod(col *collaborators, method workflow.Method) error {
	switch method {
	case workflow.MethodSerpAPI:
		if col.serp == nil {
			return errors.New(errors.ErrCodeInvalidConfig,
				"SerpAPI key not set (SEOFLOW_SERPAPI_KEY or [serpapi] api_key); or use --method webbrowse")
		}
	case workflow.MethodWebBrowse:
		if col.browse == nil {
			return errors.New(errors.ErrCodeInvalidConfig,
				"OpenAI API key not set (SEOFLOW_OPENAI_API_KEY or [openai] api_key); webbrowse searches through OpenAI")
		}
	}
	return nil
}

// runPlain executes the workflow with progress as plain log lines.
func (c *CLI) runPlain(ctx context.Context, run *workflow.Run, keywords []string, method workflow.Method, location string) *workflow.Response {
	logger := c.Logger
	run.SetProgressFunc(func(ev workflow.ProgressEvent) {
		logger.Infof("%3d%% %s", ev.Percent, ev.Message)
	})

	prog := newProgress(logger)
	resp := run.Start(ctx, keywords, method, location)
	if resp.Success {
		prog.done("Workflow completed")
	}
	return resp
}

// runLive executes the workflow behind the bubbletea progress view.
func (c *CLI) runLive(ctx context.Context, run *workflow.Run, keywords []string, method workflow.Method, location string) (*workflow.Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newRunModel(strings.Join(keywords, ", "), cancel))
	run.SetProgressFunc(func(ev workflow.ProgressEvent) {
		program.Send(progressMsg(ev))
	})

	go func() {
		program.Send(doneMsg{resp: run.Start(ctx, keywords, method, location)})
	}()

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	model, ok := final.(runModel)
	if !ok || model.resp == nil {
		return nil, fmt.Errorf("workflow did not report a result")
	}
	return model.resp, nil
}

// finish prints the response and writes requested artifacts. Hard failures
// return an error so the process exits non-zero.
func (c *CLI) finish(resp *workflow.Response, opts runOpts) error {
	if opts.jsonOut {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printSummary(resp)
	}

	if resp.Success && opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(resp.WorkflowData.Post.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		if !opts.jsonOut {
			printFile(opts.output)
		}
	}

	if !resp.Success {
		return fmt.Errorf("workflow failed: %s", resp.Error)
	}
	return nil
}

// printSummary renders the terminal response as styled output.
func printSummary(resp *workflow.Response) {
	printNewline()
	if !resp.Success {
		printError("%s", resp.Error)
		for _, k := range sortedKeys(resp.ErrorData) {
			printDetail("%s: %s", k, resp.ErrorData[k])
		}
		for _, entry := range resp.ErrorLog {
			printDetail("%s", entry)
		}
		return
	}

	post := resp.WorkflowData.Post
	printSuccess("Workflow completed: %s", resp.Keyword)
	if post.Title != "" {
		printKeyValue("Title", post.Title)
	}
	if slug := resp.WorkflowData.SEO.Slug; slug != "" {
		printKeyValue("Slug", slug)
	}
	if post.MetaDescription != "" {
		printKeyValue("Description", post.MetaDescription)
	}
	printStats(post.WordCount, countGenerated(post), len(resp.ErrorLog))
	for _, entry := range resp.ErrorLog {
		printDetail("%s", entry)
	}
}

// countGenerated counts the successfully generated visual elements.
func countGenerated(post content.BlogPost) int {
	n := 0
	for _, el := range post.GeneratedElements {
		if el.Status == content.StatusSuccess {
			n++
		}
	}
	return n
}

// splitKeywords splits the --keywords flag; the workflow drops empties.
func splitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// sortedKeys returns the map's keys in stable order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
