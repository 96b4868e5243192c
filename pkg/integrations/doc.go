// Package integrations provides HTTP clients for the external APIs the
// content pipeline depends on.
//
// # Overview
//
// This package contains low-level API clients used by the pipeline stages.
// Each service has its own subpackage:
//
//   - [serpapi]: Google organic results via SerpAPI for keyword research
//   - [openrouter]: OpenAI-compatible chat completions, web-search-assisted
//     completions, and multimodal image generation
//
// # Client Pattern
//
// API clients follow a consistent pattern:
//
//	client := serpapi.NewClient(apiKey, 10, backend, 24*time.Hour)
//	results, err := client.Search(ctx, "home espresso setup", "", false)  // false = use cache
//
// Clients handle:
//   - HTTP requests with retry for transient failures
//   - Response caching (backend chosen by configuration)
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by the API
// clients, including response caching via [cache.Cache]. Clients report
// request and cache events through the observability hooks.
//
// [serpapi]: github.com/seoflow/seoflow/pkg/integrations/serpapi
// [openrouter]: github.com/seoflow/seoflow/pkg/integrations/openrouter
// [cache.Cache]: github.com/seoflow/seoflow/pkg/cache.Cache
package integrations
