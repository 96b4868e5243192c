// Package cache provides response caching for pipeline collaborators.
//
// Research lookups and chat completions are expensive and, for a fixed
// prompt, stable enough to reuse: re-running a workflow after a late-stage
// failure should not re-pay for the early stages. The [Cache] interface
// abstracts the backing store ([FileCache] for single-machine use,
// [RedisCache] for shared deployments, [NullCache] to disable), and [Keyer]
// derives deterministic keys from the request parameters that change a
// response.
//
// Cached values are opaque byte slices; callers own serialization.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque values with optional expiry.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired; errors are reserved for backend faults.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A non-positive ttl stores it without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives deterministic cache keys for the request shapes seoflow
// caches. Implementations must fold every parameter that changes the
// response into the key.
type Keyer interface {
	// HTTPKey keys a raw HTTP response within a namespace.
	HTTPKey(namespace, key string) string
	// SearchKey keys a keyword research lookup.
	SearchKey(method, keyword, location string, results int) string
	// CompletionKey keys a chat completion.
	CompletionKey(model, system, user string, opts CompletionKeyOpts) string
}

// CompletionKeyOpts captures completion parameters beyond the prompt that
// change the output.
type CompletionKeyOpts struct {
	JSONMode  bool `json:"json_mode"`
	WebSearch bool `json:"web_search"`
}

// DefaultKeyer implements Keyer. HTTP keys stay human-readable; search and
// completion keys are SHA-256 hashed so arbitrary prompt text yields
// fixed-length keys safe for any backend.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SearchKey generates a key for keyword research results.
func (k *DefaultKeyer) SearchKey(method, keyword, location string, results int) string {
	return hashKey("search:"+method, keyword, location, results)
}

// CompletionKey generates a key for chat completion responses.
func (k *DefaultKeyer) CompletionKey(model, system, user string, opts CompletionKeyOpts) string {
	return hashKey("llm:"+model, system, user, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
