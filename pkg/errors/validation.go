package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateKeyword validates a search keyword for safety and correctness.
// It rejects inputs that could break prompt construction or URL building.
//
// The validation rules are intentionally conservative:
//   - No empty keywords
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateKeyword(keyword string) error {
	if strings.TrimSpace(keyword) == "" {
		return New(ErrCodeInvalidKeyword, "keyword cannot be empty")
	}

	if len(keyword) > 256 {
		return New(ErrCodeInvalidKeyword, "keyword too long (max 256 characters)")
	}

	for _, r := range keyword {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKeyword, "keyword contains invalid control characters")
		}
	}

	return nil
}

// ValidateKeywords validates a keyword list for a workflow run.
// At least one keyword is required, and every keyword must pass
// ValidateKeyword.
func ValidateKeywords(keywords []string) error {
	if len(keywords) == 0 {
		return New(ErrCodeInvalidKeyword, "at least one keyword is required")
	}

	for _, kw := range keywords {
		if err := ValidateKeyword(kw); err != nil {
			return err
		}
	}

	return nil
}

// ValidateLocation validates an optional target location string.
// Empty locations are allowed (location targeting is optional).
func ValidateLocation(location string) error {
	if location == "" {
		return nil
	}

	if len(location) > 256 {
		return New(ErrCodeInvalidInput, "location too long (max 256 characters)")
	}

	for _, r := range location {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "location contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// modelNameRegex matches model identifiers in provider/name form
// (e.g. "openai/gpt-4o", "anthropic/claude-sonnet-4") or bare names.
var modelNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._:-]*(/[a-zA-Z0-9][a-zA-Z0-9._:-]*)?$`)

// ValidateModelName validates an LLM model identifier.
func ValidateModelName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "model name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidConfig, "model name too long (max 128 characters)")
	}

	if !modelNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid model name: %q", name)
	}

	return nil
}
