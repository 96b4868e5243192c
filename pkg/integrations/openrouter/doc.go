// Package openrouter provides chat completion and image generation
// clients for OpenRouter's OpenAI-compatible API.
//
// # Overview
//
// [Client] covers text completions in three flavors: [Client.Complete]
// for plain text, [Client.CompleteJSON] for JSON-object responses, and
// [Client.CompleteJSONWeb] for JSON responses grounded in live web pages
// via OpenRouter's web search plugin. [ImageClient.Generate] produces
// images as base64 data URLs.
//
// # Usage
//
//	client := openrouter.NewClient(apiKey, "", backend, 24*time.Hour)
//	text, err := client.Complete(ctx, "openai/gpt-4o", system, user, false)
//
// Because the client speaks the standard OpenAI protocol, pointing
// baseURL at https://api.openai.com/v1 with an OpenAI key works for
// models hosted there.
//
// # Caching and retry
//
// Completions are cached by a key derived from the model, both prompts,
// and the response options, so reruns of a pipeline never pay for the
// same generation twice. Rate limits, server errors, and empty or
// malformed replies are retried with exponential backoff.
package openrouter
