package serpapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/seoflow/seoflow/pkg/cache"
	"github.com/seoflow/seoflow/pkg/integrations"
)

// DefaultResults is how many organic results a search requests when the
// caller does not say otherwise.
const DefaultResults = 10

// Result is one organic search result.
type Result struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// Client provides access to the SerpAPI Google Search API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	apiKey  string
	baseURL string
	results int
}

// NewClient creates a SerpAPI client with the given cache backend.
// results is how many organic results to request per search; ttl is how
// long responses are cached.
func NewClient(apiKey string, results int, backend cache.Cache, ttl time.Duration) *Client {
	if results <= 0 {
		results = DefaultResults
	}
	return &Client{
		Client:  integrations.NewClient(backend, "serpapi:", ttl, nil),
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search.json",
		results: results,
	}
}

// Search runs a Google search for keyword and returns the organic results
// in ranked order. location uses SerpAPI's canonical location names; empty
// defaults to the United States.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) Search(ctx context.Context, keyword, location string, refresh bool) ([]Result, error) {
	key := fmt.Sprintf("%s|%s|%d", keyword, location, c.results)

	var results []Result
	err := c.Cached(ctx, key, refresh, &results, func() error {
		return c.fetch(ctx, keyword, location, &results)
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) fetch(ctx context.Context, keyword, location string, results *[]Result) error {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", keyword)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(c.results))
	params.Set("gl", "us")
	params.Set("hl", "en")
	if location != "" {
		params.Set("location", location)
	}

	var data apiResponse
	if err := c.Get(ctx, c.baseURL+"?"+params.Encode(), &data); err != nil {
		return err
	}
	if data.Error != "" {
		return fmt.Errorf("serpapi: %s", data.Error)
	}
	*results = data.OrganicResults
	return nil
}

type apiResponse struct {
	OrganicResults []Result `json:"organic_results"`
	// SerpAPI reports failures like exhausted quotas in an error field
	// on an otherwise successful response.
	Error string `json:"error"`
}
