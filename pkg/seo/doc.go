// Package seo derives search metadata from a finished post.
//
// # Overview
//
// Everything here is a pure function of the post and brief: the package
// performs no network calls, so the LLM-backed title rewriting that sits in
// front of it can fail without losing the deterministic parts:
//
//   - [Slug]: URL slug from the target keyword
//   - [ExtractFAQs]: question/answer mining from article HTML
//   - [ArticleSchema], [FAQSchema]: JSON-LD payloads
//   - [OGTags]: Open Graph meta tag map
//   - [TrimTitle], [TrimMetaDescription]: display-budget truncation
//
// # Display budgets
//
// Search result pages reliably show about 60 characters of a title and 150
// of a description; Open Graph consumers show a little more. Trimming
// appends an ellipsis inside the budget:
//
//	seo.TrimTitle("Some Very Long Title ...")        // ≤ 60 chars
//	seo.TrimMetaDescription("Some long summary ...") // ≤ 150 chars
//
// # FAQ mining
//
// [ExtractFAQs] scans two shapes: explicit "Q:"/"A:" blocks in the article
// text, and H3/H4 headings phrased as questions paired with the paragraph
// text that follows them. The result feeds [FAQSchema], which returns nil
// when nothing was found so callers can publish a null schema.
package seo
