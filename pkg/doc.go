// Package pkg provides the core libraries for the seoflow content pipeline.
//
// # Overview
//
// Seoflow turns a handful of seed keywords into an SEO-optimized blog post:
// it researches what already ranks, distills the competition into a content
// brief, writes and edits a draft, lays in generated visuals, and finishes
// with metadata, schemas, and a slug. The pkg directory is organized into
// three main areas:
//
//  1. Domain logic ([content], [stages], [layout], [seo])
//  2. Orchestration ([workflow])
//  3. Infrastructure ([cache], [config], [errors], [integrations], [observability])
//
// # Architecture
//
// The data flow through one workflow run:
//
//	Keywords
//	    ↓
//	[stages] research (SerpAPI or web browsing)
//	    ↓
//	[stages] DOM analysis + content brief
//	    ↓
//	[stages] writing + editing
//	    ↓
//	[layout] visual composition (images, infographics, tables)
//	    ↓
//	[seo] metadata, schemas, slug
//	    ↓
//	Ready-for-review HTML
//
// # Quick Start
//
// Bundle the stages and run a workflow:
//
//	import (
//	    "context"
//	    "github.com/seoflow/seoflow/pkg/workflow"
//	)
//
//	run := workflow.NewRun(stages, logger)
//	resp := run.Start(context.Background(), []string{"espresso machines"}, workflow.MethodSerpAPI, "")
//	if resp.Success {
//	    fmt.Println(resp.WorkflowData.Post.Content)
//	}
//
// # Main Packages
//
// [content] - Domain types shared across the pipeline: topics, briefs, blog
// posts, visual elements, SEO data, plus the HTML and heading helpers the
// stages lean on.
//
// [stages] - One type per pipeline stage (research, analysis, brief, writer,
// editor, presenter, SEO) and the visual generators. Each stage wraps an LLM
// or search client and owns its prompts.
//
// [workflow] - The orchestrator. Runs the stages in order, reports progress,
// distinguishes hard failures from degraded stages, and exposes the stage
// machine as a Graphviz graph.
//
// [layout] - Visual composition: decides placements for requested elements
// and splices generated HTML into the post.
//
// [seo] - Deterministic SEO helpers: slugs, meta tags, FAQ extraction, and
// JSON-LD schema generation.
//
// [integrations] - HTTP clients for OpenRouter, SerpAPI, and LLM-driven web
// browsing, sharing one cached, retrying HTTP core.
//
// [cache] - Response cache with file, Redis, and null backends, plus the
// keyers that derive deterministic keys from requests.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors carrying user-facing messages, and input validation.
//
// [observability] - Pluggable hooks for cache and HTTP instrumentation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/workflow/... # Specific package
//	go test -run Example       # Examples only
//
// [content]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/content
// [stages]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/stages
// [workflow]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/workflow
// [layout]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/layout
// [seo]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/seo
// [integrations]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/cache
// [config]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/config
// [errors]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/seoflow/seoflow/pkg/observability
package pkg
