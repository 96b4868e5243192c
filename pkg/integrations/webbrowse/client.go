package webbrowse

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/seoflow/seoflow/pkg/cache"
	"github.com/seoflow/seoflow/pkg/observability"
)

// DefaultModel is a search-enabled chat model hosted by OpenAI.
const DefaultModel = "gpt-4o-mini-search-preview"

// maxResults is how many URLs a search returns at most.
const maxResults = 5

const systemPrompt = "You are a web search assistant. Search the web and return the top 5 search results in JSON format with title, link, and snippet for each result."

const userPromptFormat = `Search the web for: %s. Return the top 5 search results in this exact JSON format:

{
  "results": [
    {
      "title": "Result Title",
      "link": "https://example.com",
      "snippet": "Description of the result"
    }
  ]
}

Return ONLY valid JSON, no other text.`

var urlRE = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+[^\\s<>\"{}|\\\\^`\\[\\].,;!?)]")

// Completer is the chat completion surface Client needs. It is satisfied
// by openrouter.Client.
type Completer interface {
	Complete(ctx context.Context, model, system, user string, refresh bool) (string, error)
}

// Client searches the web through a search-enabled chat model. Search
// models reject structured response formats, so the reply is free text
// that the client parses leniently: JSON in several shapes first, then a
// plain URL scan.
type Client struct {
	llm   Completer
	model string
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewClient creates a web search client on top of llm. An empty model
// selects [DefaultModel]. Pass nil for backend to disable caching of
// search results; ttl is how long results are cached.
//
// The completion layer should not cache on its own, or refreshed
// searches would be served stale from below.
func NewClient(llm Completer, model string, backend cache.Cache, ttl time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		llm:   llm,
		model: model,
		cache: backend,
		keyer: cache.NewDefaultKeyer(),
		ttl:   ttl,
	}
}

// Search returns up to five result URLs for keyword. A reply the client
// cannot extract any URL from yields an empty slice and no error.
//
// If refresh is true, the cache is bypassed and a fresh search is made.
func (c *Client) Search(ctx context.Context, keyword string, refresh bool) ([]string, error) {
	key := c.keyer.SearchKey("webbrowse", keyword, "", maxResults)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			var urls []string
			if err := json.Unmarshal(data, &urls); err == nil {
				observability.Cache().OnCacheHit(ctx, "search")
				return urls, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "search")
	}

	content, err := c.llm.Complete(ctx, c.model, systemPrompt, fmt.Sprintf(userPromptFormat, keyword), refresh)
	if err != nil {
		return nil, err
	}

	urls := extractURLs(content)
	// An empty extraction usually means a flaky reply, not an empty
	// web, so only real results are cached.
	if len(urls) > 0 {
		if data, err := json.Marshal(urls); err == nil {
			_ = c.cache.Set(ctx, key, data, c.ttl)
			observability.Cache().OnCacheSet(ctx, "search", len(data))
		}
	}
	return urls, nil
}

// extractURLs pulls result links out of a model reply. Well-behaved
// models return the requested {"results": [...]} object, but search
// models also produce bare arrays, ad-hoc objects, and plain prose, so
// each shape gets a chance before the regex scan. The scan only runs
// when the reply is not JSON at all: a parsed reply with no links means
// the search genuinely found nothing.
func extractURLs(content string) []string {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return scanURLs(content)
	}

	var urls []string
	switch v := parsed.(type) {
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			urls = appendLinks(urls, results)
			break
		}
		// No results key; take links from whatever lists are present,
		// in stable order
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if list, ok := v[key].([]any); ok {
				urls = appendLinks(urls, list)
			}
		}
	case []any:
		urls = appendLinks(urls, v)
	}
	return urls
}

// appendLinks takes up to maxResults links from a decoded JSON list.
func appendLinks(urls []string, items []any) []string {
	if len(items) > maxResults {
		items = items[:maxResults]
	}
	for _, item := range items {
		switch it := item.(type) {
		case map[string]any:
			link := stringField(it, "link")
			if link == "" {
				link = stringField(it, "url")
			}
			if link == "" {
				link = stringField(it, "href")
			}
			if link != "" {
				urls = append(urls, link)
			}
		case string:
			if strings.HasPrefix(it, "http") {
				urls = append(urls, it)
			}
		}
	}
	return urls
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// scanURLs extracts URLs from prose, deduplicated in order of appearance.
func scanURLs(content string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, url := range urlRE.FindAllString(content, -1) {
		url = strings.TrimRight(url, ".,;!?)")
		if url == "" || seen[url] || len(url) <= 10 {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
		if len(urls) >= maxResults {
			break
		}
	}
	return urls
}
