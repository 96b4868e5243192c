// Package webbrowse searches the web through a search-enabled chat model.
//
// # Overview
//
// [Client.Search] asks the model for the top results for a keyword and
// returns their URLs. It is the zero-setup alternative to the serpapi
// package for URL research: no search API subscription, just an OpenAI
// key. The trade-off is reliability. Search models ignore structured
// output requests, so replies arrive as JSON in assorted shapes or as
// plain prose, and the client parses whatever it gets.
//
// # Usage
//
//	llm := openrouter.NewClient(apiKey, "https://api.openai.com/v1", nil, 0)
//	client := webbrowse.NewClient(llm, "", backend, 24*time.Hour)
//	urls, err := client.Search(ctx, "best coffee grinder", false)
//
// Parsed URL lists are cached by keyword, so repeated pipeline runs skip
// the model call entirely.
package webbrowse
