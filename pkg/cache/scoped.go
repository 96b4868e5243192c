package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// backend without colliding. Useful when a single Redis instance serves
// pipelines for more than one site.
//
// Example usage:
//
//	// Keys for one site's content pipeline
//	siteKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:example.com:")
//
//	// Unscoped keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SearchKey generates a prefixed key for keyword research results.
func (k *ScopedKeyer) SearchKey(method, keyword, location string, results int) string {
	return k.prefix + k.inner.SearchKey(method, keyword, location, results)
}

// CompletionKey generates a prefixed key for chat completion responses.
func (k *ScopedKeyer) CompletionKey(model, system, user string, opts CompletionKeyOpts) string {
	return k.prefix + k.inner.CompletionKey(model, system, user, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
