// Package stages implements the pipeline stage collaborators for seoflow.
//
// Each stage is a small struct holding its model name and the client it
// calls, with a single Run method that takes typed inputs and returns typed
// outputs. Stages validate and repair the JSON the models return, so the
// orchestrator in pkg/workflow only ever sees well-formed domain values.
//
// # Architecture
//
// The stages mirror the pipeline order:
//
//  1. Research: keyword → competitor URLs (SerpResearch or BrowseResearch)
//  2. Analysis: URLs → consolidated topic set
//  3. Brief: keywords + topics → content brief with a normalized outline
//  4. Writer: brief → HTML blog post
//  5. Editor: post → tone-edited post (heading structure preserved)
//  6. Presenter: post → visual element requirements
//  7. ImageGenerator / InfographicGenerator / TableGenerator: requirement →
//     visual element (driven by the layout composer, not the orchestrator)
//  8. SEO: brief + post → optimized title, meta, slug, schemas, OG tags
//
// # Usage
//
// Build a stage with its client and run it:
//
//	llm := openrouter.NewClient(apiKey, "", backend, ttl)
//	analysis := stages.NewAnalysis(llm, "openai/gpt-4o", logger)
//	topics, err := analysis.Run(ctx, urls)
//
// Stages report fine-grained progress through an optional Progress func
// field; the orchestrator bridges those messages into its event stream.
package stages
