package stages

import (
	"context"
	"encoding/json"

	"github.com/seoflow/seoflow/pkg/errors"
)

// Default models per task shape. Callers override these through the stage
// constructors, typically from config.
const (
	defaultJSONModel        = "openai/gpt-4o"
	defaultContentModel     = "openai/gpt-5"
	defaultImageModel       = "google/gemini-2.5-flash-image"
	defaultInfographicModel = "google/gemini-3-pro-image-preview"
)

// Completer is the chat-completion surface the stages call. It is satisfied
// by *openrouter.Client. The refresh flag bypasses the response cache.
type Completer interface {
	// Complete returns the model's plain-text reply.
	Complete(ctx context.Context, model, system, user string, refresh bool) (string, error)

	// CompleteJSON constrains the reply to a JSON object.
	CompleteJSON(ctx context.Context, model, system, user string, refresh bool) (string, error)

	// CompleteJSONWeb is CompleteJSON with the provider's web search
	// enabled, for prompts that reference live URLs.
	CompleteJSONWeb(ctx context.Context, model, system, user string, refresh bool) (string, error)
}

// decodeJSON unmarshals a model reply into v, tagging failures as bad
// responses so callers can distinguish them from transport errors.
func decodeJSON(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return errors.Wrap(errors.ErrCodeBadResponse, err, "decode model response")
	}
	return nil
}
