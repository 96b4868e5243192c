// Package serpapi provides an HTTP client for the SerpAPI Google Search API.
//
// # Overview
//
// This package fetches Google organic search results via SerpAPI
// (https://serpapi.com), used by keyword research to find the pages that
// currently rank for a target keyword.
//
// # Usage
//
//	client := serpapi.NewClient(apiKey, 10, backend, 24*time.Hour)
//
//	results, err := client.Search(ctx, "home espresso setup", "", false)  // false = use cache
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, r := range results {
//	    fmt.Println(r.Position, r.Link)
//	}
//
// # Caching
//
// Responses are cached to keep re-runs of a workflow from re-spending API
// quota. The cache TTL is set when creating the client. Pass refresh=true
// to [Client.Search] to bypass the cache.
//
// # Location
//
// Searches default to the United States (gl=us, hl=en). A location string
// using SerpAPI's canonical location names narrows the results to that
// market.
package serpapi
