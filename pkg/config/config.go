// Package config loads seoflow settings from TOML and the environment.
//
// Settings resolve in three layers: compiled defaults, then the config file
// (~/.config/seoflow/config.toml unless overridden), then environment
// variables. SEOFLOW_-prefixed variables take precedence over the bare names
// (OPENROUTER_API_KEY, SERPAPI_KEY, ...) kept for compatibility with
// existing deployments.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/seoflow/seoflow/pkg/errors"
)

const appName = "seoflow"

// Cache backends selectable in [cache].
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendOff   = "off"
)

// Duration wraps time.Duration so TTLs can be written as "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the full runtime configuration.
type Config struct {
	OpenRouter OpenRouter `toml:"openrouter"`
	OpenAI     OpenAI     `toml:"openai"`
	Models     Models     `toml:"models"`
	SerpAPI    SerpAPI    `toml:"serpapi"`
	Site       Site       `toml:"site"`
	Content    Content    `toml:"content"`
	Cache      Cache      `toml:"cache"`
}

// OpenRouter configures the chat-completion endpoint most stages call.
type OpenRouter struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// OpenAI configures direct OpenAI access, used by the webbrowse research
// method's search-enabled model.
type OpenAI struct {
	APIKey string `toml:"api_key"`
}

// Models names the model used for each task shape.
type Models struct {
	// JSON handles structured-output stages (analysis, brief, presenter,
	// SEO, tables).
	JSON string `toml:"json"`
	// Content handles long-form writing and editing.
	Content string `toml:"content"`
	// Image and Infographic are image-output models.
	Image       string `toml:"image"`
	Infographic string `toml:"infographic"`
	// Search is the search-enabled model behind the webbrowse method.
	Search string `toml:"search"`
}

// SerpAPI configures keyword research through SerpAPI.
type SerpAPI struct {
	APIKey  string `toml:"api_key"`
	Results int    `toml:"results"`
}

// Site identifies the publishing site for OG tags and canonical URLs.
type Site struct {
	URL  string `toml:"url"`
	Name string `toml:"name"`
}

// Content tunes the writing stages.
type Content struct {
	// TonePath points at a tone-of-voice guidelines file the editing stage
	// applies. Empty uses the embedded defaults.
	TonePath string `toml:"tone_path"`
}

// Cache selects and tunes the response cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		OpenRouter: OpenRouter{BaseURL: "https://openrouter.ai/api/v1"},
		Models: Models{
			JSON:        "openai/gpt-4o",
			Content:     "openai/gpt-5",
			Image:       "google/gemini-2.5-flash-image",
			Infographic: "google/gemini-3-pro-image-preview",
			Search:      "gpt-4o-mini-search-preview",
		},
		SerpAPI: SerpAPI{Results: 10},
		Site:    Site{URL: "https://example.com", Name: "Content Site"},
		Cache: Cache{
			Backend:   CacheBackendFile,
			TTL:       Duration{24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the config file at path (if it exists), applies environment
// overrides, and validates the result. A missing file is not an error:
// defaults plus environment are enough to run.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads from the standard path.
func LoadDefault() (Config, error) {
	path, _ := DefaultPath()
	return Load(path)
}

// DefaultPath returns the standard config location following XDG
// (~/.config/seoflow/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Validate checks cross-field consistency. API keys are deliberately not
// required here: commands that never touch the network (cache info, graph)
// must work without them, so key presence is enforced where clients are
// constructed.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendOff:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.SerpAPI.Results <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "serpapi results must be positive")
	}
	if err := errors.ValidateURL(c.Site.URL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "site url")
	}
	if err := errors.ValidateURL(c.OpenRouter.BaseURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "openrouter base url")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.OpenRouter.APIKey, "SEOFLOW_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.BaseURL, "SEOFLOW_OPENROUTER_BASE_URL")
	setFromEnv(&cfg.OpenAI.APIKey, "SEOFLOW_OPENAI_API_KEY", "OPENAI_API_KEY")
	setFromEnv(&cfg.SerpAPI.APIKey, "SEOFLOW_SERPAPI_KEY", "SERPAPI_KEY")
	setFromEnv(&cfg.Site.URL, "SEOFLOW_SITE_URL", "SITE_URL")
	setFromEnv(&cfg.Site.Name, "SEOFLOW_SITE_NAME", "SITE_NAME")
	setFromEnv(&cfg.Content.TonePath, "SEOFLOW_TONE_PATH", "TONE_OF_VOICE_PATH")
	setFromEnv(&cfg.Cache.Backend, "SEOFLOW_CACHE_BACKEND")
	setFromEnv(&cfg.Cache.Dir, "SEOFLOW_CACHE_DIR")
	setFromEnv(&cfg.Cache.RedisAddr, "SEOFLOW_REDIS_ADDR")
}

// setFromEnv writes the first set variable into dst, earlier names winning.
func setFromEnv(dst *string, names ...string) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			*dst = v
			return
		}
	}
}
