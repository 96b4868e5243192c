package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/seoflow/seoflow/pkg/cache"
	"github.com/seoflow/seoflow/pkg/observability"
)

// DefaultBaseURL is the OpenRouter API endpoint. The client speaks the
// OpenAI-compatible chat protocol, so it also works pointed directly at
// api.openai.com/v1 for models hosted there.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const (
	// completionTimeout allows for long-form content generation.
	completionTimeout = 3 * time.Minute

	// webSearchResults is how many pages the web plugin feeds the model.
	webSearchResults = 5
)

// ErrEmptyResponse is returned when the model replies with no usable content.
var ErrEmptyResponse = errors.New("empty model response")

// Client wraps an OpenAI-compatible chat completion API with response
// caching and retry for transient failures.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	api   openai.Client
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewClient creates a chat completion client for the given endpoint.
// An empty baseURL selects OpenRouter. Pass nil for backend to disable
// response caching; ttl is how long completions are cached.
func NewClient(apiKey, baseURL string, backend cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithRequestTimeout(completionTimeout),
			// Retry policy is owned by cache.RetryWithBackoff
			option.WithMaxRetries(0),
			option.WithHeader("X-Title", "seoflow"),
		),
		cache: backend,
		keyer: cache.NewDefaultKeyer(),
		ttl:   ttl,
	}
}

type completionOpts struct {
	jsonMode  bool
	webSearch bool
}

// Complete sends a system+user chat completion and returns the assistant text.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) Complete(ctx context.Context, model, system, user string, refresh bool) (string, error) {
	return c.complete(ctx, model, system, user, completionOpts{}, refresh)
}

// CompleteJSON requests a JSON-object response and returns the raw JSON
// text. Malformed JSON from the model is treated as transient and retried.
func (c *Client) CompleteJSON(ctx context.Context, model, system, user string, refresh bool) (string, error) {
	return c.complete(ctx, model, system, user, completionOpts{jsonMode: true}, refresh)
}

// CompleteJSONWeb is CompleteJSON with OpenRouter's web search plugin
// enabled, letting the model fetch and read live pages. Models that reject
// the plugin (500) are retried once without it.
func (c *Client) CompleteJSONWeb(ctx context.Context, model, system, user string, refresh bool) (string, error) {
	return c.complete(ctx, model, system, user, completionOpts{jsonMode: true, webSearch: true}, refresh)
}

func (c *Client) complete(ctx context.Context, model, system, user string, opts completionOpts, refresh bool) (string, error) {
	key := c.keyer.CompletionKey(model, system, user, cache.CompletionKeyOpts{
		JSONMode:  opts.jsonMode,
		WebSearch: opts.webSearch,
	})
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, "llm")
			return string(data), nil
		}
		observability.Cache().OnCacheMiss(ctx, "llm")
	}

	var content string
	err := cache.RetryWithBackoff(ctx, func() error {
		text, err := c.request(ctx, model, system, user, opts)
		if err != nil {
			return classify(err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return cache.Retryable(ErrEmptyResponse)
		}
		if opts.jsonMode && !json.Valid([]byte(text)) {
			return cache.Retryable(errors.New("model returned invalid JSON"))
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}

	_ = c.cache.Set(ctx, key, []byte(content), c.ttl)
	observability.Cache().OnCacheSet(ctx, "llm", len(content))
	return content, nil
}

type webPlugin struct {
	ID         string `json:"id"`
	MaxResults int    `json:"max_results"`
}

func (c *Client) request(ctx context.Context, model, system, user string, opts completionOpts) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if opts.jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	var reqOpts []option.RequestOption
	if opts.webSearch {
		reqOpts = append(reqOpts, option.WithJSONSet("plugins", []webPlugin{{ID: "web", MaxResults: webSearchResults}}))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil && opts.webSearch && statusOf(err) == http.StatusInternalServerError {
		// Some models reject the web plugin; try the bare request
		resp, err = c.api.Chat.Completions.New(ctx, params)
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func statusOf(err error) int {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode
	}
	return 0
}

// classify marks which completion failures are worth retrying: rate
// limits, server errors, empty replies, and transport faults. Client
// errors like a bad API key fail fast.
func classify(err error) error {
	if errors.Is(err, ErrEmptyResponse) {
		return cache.Retryable(err)
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if apierr.StatusCode == http.StatusTooManyRequests || apierr.StatusCode >= 500 {
			return cache.Retryable(err)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return cache.Retryable(err)
}
