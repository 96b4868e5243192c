package cli

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/seoflow/seoflow/pkg/cache"
	"github.com/seoflow/seoflow/pkg/config"
	"github.com/seoflow/seoflow/pkg/errors"
	"github.com/seoflow/seoflow/pkg/workflow"
)

func testCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func TestRootCommand(t *testing.T) {
	root := testCLI().RootCommand()

	if root.Use != appName {
		t.Errorf("root use = %q, want %q", root.Use, appName)
	}

	for _, name := range []string{"run", "graph", "cache", "completion"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing %q", name)
		}
	}
}

func TestRootCommandConfigFlag(t *testing.T) {
	root := testCLI().RootCommand()

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command should have a --config flag")
	}
}

func TestNewCacheBackendOff(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheBackendOff

	backend, err := testCLI().newCacheBackend(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newCacheBackend() error: %v", err)
	}
	if _, ok := backend.(*cache.NullCache); !ok {
		t.Errorf("backend = %T, want *cache.NullCache", backend)
	}
}

func TestNewCacheBackendNoCacheFlag(t *testing.T) {
	cfg := config.Default() // file backend by default

	backend, err := testCLI().newCacheBackend(context.Background(), cfg, true)
	if err != nil {
		t.Fatalf("newCacheBackend() error: %v", err)
	}
	if _, ok := backend.(*cache.NullCache); !ok {
		t.Errorf("backend = %T, want *cache.NullCache", backend)
	}
}

func TestNewCacheBackendFile(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	backend, err := testCLI().newCacheBackend(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newCacheBackend() error: %v", err)
	}
	if _, ok := backend.(*cache.FileCache); !ok {
		t.Errorf("backend = %T, want *cache.FileCache", backend)
	}
}

func TestNewCacheBackendRedis(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("miniredis start error: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := config.Default()
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.RedisAddr = mr.Addr()

	backend, err := testCLI().newCacheBackend(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("newCacheBackend() error: %v", err)
	}
	defer backend.Close()
	if _, ok := backend.(*cache.RedisCache); !ok {
		t.Errorf("backend = %T, want *cache.RedisCache", backend)
	}
}

func TestNewCacheBackendRedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.RedisAddr = "127.0.0.1:1" // nothing listens here

	if _, err := testCLI().newCacheBackend(context.Background(), cfg, false); err == nil {
		t.Fatal("expected connection error for unreachable redis")
	}
}

func TestBuildStagesRequiresOpenRouterKey(t *testing.T) {
	cfg := config.Default()

	_, err := testCLI().buildStages(cfg, cache.NewNullCache(), false)
	if err == nil {
		t.Fatal("expected error without an OpenRouter key")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestBuildStagesResearchMethods(t *testing.T) {
	tests := []struct {
		name       string
		serpKey    string
		openAIKey  string
		wantSerp   bool
		wantBrowse bool
	}{
		{name: "both keys", serpKey: "sk", openAIKey: "ok", wantSerp: true, wantBrowse: true},
		{name: "serp only", serpKey: "sk", wantSerp: true},
		{name: "openai only", openAIKey: "ok", wantBrowse: true},
		{name: "neither"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.OpenRouter.APIKey = "or-key"
			cfg.SerpAPI.APIKey = tt.serpKey
			cfg.OpenAI.APIKey = tt.openAIKey

			col, err := testCLI().buildStages(cfg, cache.NewNullCache(), false)
			if err != nil {
				t.Fatalf("buildStages() error: %v", err)
			}

			bundle := col.stages()
			if _, ok := bundle.Research[workflow.MethodSerpAPI]; ok != tt.wantSerp {
				t.Errorf("serpapi researcher present = %v, want %v", ok, tt.wantSerp)
			}
			if _, ok := bundle.Research[workflow.MethodWebBrowse]; ok != tt.wantBrowse {
				t.Errorf("webbrowse researcher present = %v, want %v", ok, tt.wantBrowse)
			}
			if bundle.Analysis == nil || bundle.Brief == nil || bundle.Writer == nil ||
				bundle.Editor == nil || bundle.Presenter == nil || bundle.Composer == nil || bundle.SEO == nil {
				t.Error("all non-research stages should be constructed")
			}
		})
	}
}

func TestBuildStagesRefresh(t *testing.T) {
	cfg := config.Default()
	cfg.OpenRouter.APIKey = "or-key"
	cfg.SerpAPI.APIKey = "serp-key"
	cfg.Content.TonePath = "/etc/seoflow/tone.json"

	col, err := testCLI().buildStages(cfg, cache.NewNullCache(), true)
	if err != nil {
		t.Fatalf("buildStages() error: %v", err)
	}

	if !col.analysis.Refresh || !col.brief.Refresh || !col.writer.Refresh ||
		!col.editor.Refresh || !col.presenter.Refresh || !col.seo.Refresh || !col.serp.Refresh {
		t.Error("refresh flag should propagate to every stage")
	}
	if col.editor.TonePath != "/etc/seoflow/tone.json" {
		t.Errorf("editor tone path = %q", col.editor.TonePath)
	}
}
