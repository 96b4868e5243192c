// Package cli implements the seoflow command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/seoflow/seoflow/pkg/buildinfo"
	"github.com/seoflow/seoflow/pkg/cache"
	"github.com/seoflow/seoflow/pkg/config"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/integrations/openrouter"
	"github.com/seoflow/seoflow/pkg/integrations/serpapi"
	"github.com/seoflow/seoflow/pkg/integrations/webbrowse"
	"github.com/seoflow/seoflow/pkg/layout"
	"github.com/seoflow/seoflow/pkg/stages"
	"github.com/seoflow/seoflow/pkg/workflow"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "seoflow"

	// openAIBaseURL is the endpoint for the search-enabled webbrowse model,
	// which runs against OpenAI directly rather than OpenRouter.
	openAIBaseURL = "https://api.openai.com/v1"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location (--config).
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "seoflow",
		Short:        "Seoflow generates SEO-optimized blog content from keywords",
		Long:         `Seoflow runs a staged content pipeline: keyword research, competitor DOM analysis, content brief creation, AI writing and editing, visual layout, and SEO optimization, producing an HTML post ready for review.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/seoflow/config.toml)")

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves configuration from --config or the default path.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.ConfigPath != "" {
		return config.Load(c.ConfigPath)
	}
	return config.LoadDefault()
}

// =============================================================================
// Stage Factory
// =============================================================================

// collaborators holds the concrete stage implementations so the run command
// can attach progress bridges before bundling them for the workflow.
type collaborators struct {
	serp      *stages.SerpResearch   // nil without a SerpAPI key
	browse    *stages.BrowseResearch // nil without an OpenAI key
	analysis  *stages.Analysis
	brief     *stages.Brief
	writer    *stages.Writer
	editor    *stages.Editor
	presenter *stages.Presenter
	composer  *layout.Composer
	seo       *stages.SEO
}

// buildStages constructs every stage collaborator from cfg, sharing one LLM
// client and one response cache. Research methods whose keys are missing are
// left nil rather than failing: the run command reports the gap only when
// the missing method is actually selected.
func (c *CLI) buildStages(cfg config.Config, backend cache.Cache, refresh bool) (*collaborators, error) {
	if cfg.OpenRouter.APIKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"OpenRouter API key not set (SEOFLOW_OPENROUTER_API_KEY or [openrouter] api_key)")
	}

	ttl := cfg.Cache.TTL.Duration
	llm := openrouter.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, backend, ttl)

	col := &collaborators{
		analysis:  stages.NewAnalysis(llm, cfg.Models.JSON, c.Logger),
		brief:     stages.NewBrief(llm, cfg.Models.JSON, c.Logger),
		writer:    stages.NewWriter(llm, cfg.Models.Content, c.Logger),
		editor:    stages.NewEditor(llm, cfg.Models.JSON, cfg.Models.Content, c.Logger),
		presenter: stages.NewPresenter(llm, cfg.Models.JSON, c.Logger),
		seo:       stages.NewSEO(llm, cfg.Models.JSON, cfg.Site.URL, cfg.Site.Name, c.Logger),
	}
	col.analysis.Refresh = refresh
	col.brief.Refresh = refresh
	col.writer.Refresh = refresh
	col.editor.Refresh = refresh
	col.editor.TonePath = cfg.Content.TonePath
	col.presenter.Refresh = refresh
	col.seo.Refresh = refresh

	media := openrouter.NewImageClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL)
	generators := stages.NewGenerators(llm, media, cfg.Models.JSON, cfg.Models.Image, cfg.Models.Infographic, refresh)
	col.composer = layout.NewComposer(layout.NewTextEngine(), generators, c.Logger)

	if cfg.SerpAPI.APIKey != "" {
		serpClient := serpapi.NewClient(cfg.SerpAPI.APIKey, cfg.SerpAPI.Results, backend, ttl)
		col.serp = stages.NewSerpResearch(serpClient)
		col.serp.Refresh = refresh
	}
	if cfg.OpenAI.APIKey != "" {
		// The search model rejects response_format, and its results are
		// cached at the webbrowse layer, so its completion client gets no
		// cache of its own.
		searchLLM := openrouter.NewClient(cfg.OpenAI.APIKey, openAIBaseURL, nil, 0)
		browseClient := webbrowse.NewClient(searchLLM, cfg.Models.Search, backend, ttl)
		col.browse = stages.NewBrowseResearch(browseClient)
		col.browse.Refresh = refresh
	}

	return col, nil
}

// stages bundles the collaborators for the workflow. Research methods
// without a configured key are absent from the map.
func (col *collaborators) stages() workflow.Stages {
	research := make(map[workflow.Method]workflow.Researcher)
	if col.serp != nil {
		research[workflow.MethodSerpAPI] = col.serp
	}
	if col.browse != nil {
		research[workflow.MethodWebBrowse] = col.browse
	}
	return workflow.Stages{
		Research:  research,
		Analysis:  col.analysis,
		Brief:     col.brief,
		Writer:    col.writer,
		Editor:    col.editor,
		Presenter: col.presenter,
		Composer:  col.composer,
		SEO:       col.seo,
	}
}

// =============================================================================
// Cache Backend
// =============================================================================

// newCacheBackend builds the response cache selected in cfg. A file cache
// that cannot determine its directory degrades to no caching; an explicitly
// selected redis backend that cannot connect is an error.
func (c *CLI) newCacheBackend(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.CacheBackendOff {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	default:
		dir, err := cacheFileDir(cfg)
		if err != nil {
			c.Logger.Warn("response caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheFileDir returns the file cache directory: the configured one, or the
// XDG default.
func cacheFileDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/seoflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
