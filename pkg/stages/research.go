package stages

import (
	"context"
	"fmt"

	"github.com/seoflow/seoflow/pkg/integrations/serpapi"
)

// topURLs caps how many competitor URLs one keyword contributes.
const topURLs = 5

// Agent names reported in progress steps and research error messages.
const (
	SerpName   = "SERP API"
	BrowseName = "OpenAI Web Search"
)

// Researcher finds competitor URLs for a single keyword. The orchestrator
// fans keywords out over one Researcher and merges the results. Name
// identifies the method in progress steps and error messages.
type Researcher interface {
	Name() string
	Research(ctx context.Context, keyword, location string) ([]string, error)
}

// OrganicSearcher is the search surface SerpResearch needs, satisfied by
// *serpapi.Client.
type OrganicSearcher interface {
	Search(ctx context.Context, keyword, location string, refresh bool) ([]serpapi.Result, error)
}

// URLSearcher is the search surface BrowseResearch needs, satisfied by
// *webbrowse.Client.
type URLSearcher interface {
	Search(ctx context.Context, keyword string, refresh bool) ([]string, error)
}

// SerpResearch resolves keywords to top-ranking URLs through SerpAPI.
type SerpResearch struct {
	Client OrganicSearcher
	// Progress receives fine-grained status messages; nil drops them.
	Progress func(string)
	// Refresh bypasses cached search results.
	Refresh bool
}

// NewSerpResearch creates a SerpAPI-backed researcher.
func NewSerpResearch(client OrganicSearcher) *SerpResearch {
	return &SerpResearch{Client: client}
}

// Name implements Researcher.
func (s *SerpResearch) Name() string { return SerpName }

// Research returns the top organic result URLs for keyword. An empty
// location searches the United States.
func (s *SerpResearch) Research(ctx context.Context, keyword, location string) ([]string, error) {
	locationInfo := " in United States (default)"
	if location != "" {
		locationInfo = " in " + location
	}
	notify(s.Progress, "Searching for keyword: "+keyword+locationInfo)
	notify(s.Progress, "Querying SerpAPI for search results...")

	results, err := s.Client.Search(ctx, keyword, location, s.Refresh)
	if err != nil {
		return nil, err
	}
	notify(s.Progress, fmt.Sprintf("Found %d organic search results", len(results)))

	urls := make([]string, 0, topURLs)
	for _, r := range results {
		if r.Link == "" {
			continue
		}
		urls = append(urls, r.Link)
		if len(urls) == topURLs {
			break
		}
	}
	return urls, nil
}

// BrowseResearch resolves keywords to URLs by asking a search-enabled
// model, for runs without a SerpAPI key. Location is not supported by the
// underlying search and is ignored.
type BrowseResearch struct {
	Client   URLSearcher
	Progress func(string)
	Refresh  bool
}

// NewBrowseResearch creates a web-search-model-backed researcher.
func NewBrowseResearch(client URLSearcher) *BrowseResearch {
	return &BrowseResearch{Client: client}
}

// Name implements Researcher.
func (b *BrowseResearch) Name() string { return BrowseName }

// Research returns up to five URLs the search model suggests for keyword.
func (b *BrowseResearch) Research(ctx context.Context, keyword, _ string) ([]string, error) {
	notify(b.Progress, "Searching for keyword: "+keyword)
	notify(b.Progress, "Using OpenAI Web Search tool...")

	urls, err := b.Client.Search(ctx, keyword, b.Refresh)
	if err != nil {
		notify(b.Progress, "Error with OpenAI Web Search: "+err.Error())
		return nil, err
	}
	if len(urls) == 0 {
		notify(b.Progress, "No URLs found in web search response")
		return nil, nil
	}
	notify(b.Progress, fmt.Sprintf("Found %d search results using OpenAI Web Search", len(urls)))
	return urls, nil
}

// notify delivers a progress message when a callback is set.
func notify(fn func(string), msg string) {
	if fn != nil {
		fn(msg)
	}
}
