package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Roundtrip
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if string(data) != "value" {
		t.Errorf("Get data unexpected: %q", data)
	}

	// Delete removes the entry; deleting again is not an error
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of absent key should be nil, got: %v", err)
	}
}

func TestFileCacheNoExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	// Zero ttl stores without expiry
	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("Entry without expiry should hit")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}

	// Expired entry is removed from disk
	path := c.(*FileCache).path("key")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Corrupt the entry on disk
	path := c.(*FileCache).path("key")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	// Corrupt entry is a miss, not an error, and gets removed
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Corrupt entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Corrupt entry should be removed")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// HTTPKey stays human-readable
	httpKey := k.HTTPKey("serpapi", "coffee grinder")
	if httpKey != "http:serpapi:coffee grinder" {
		t.Errorf("HTTPKey unexpected: %s", httpKey)
	}

	// SearchKey is deterministic and includes every parameter
	sk1 := k.SearchKey("serpapi", "coffee grinder", "United States", 10)
	sk2 := k.SearchKey("serpapi", "coffee grinder", "United States", 10)
	if sk1 != sk2 {
		t.Error("SearchKey should be deterministic")
	}
	if !strings.HasPrefix(sk1, "search:serpapi:") {
		t.Errorf("SearchKey prefix unexpected: %s", sk1)
	}
	if sk3 := k.SearchKey("serpapi", "coffee grinder", "United States", 5); sk3 == sk1 {
		t.Error("Different result counts should produce different keys")
	}
	if sk4 := k.SearchKey("webbrowse", "coffee grinder", "United States", 10); sk4 == sk1 {
		t.Error("Different methods should produce different keys")
	}

	// CompletionKey should include options in hash
	ck1 := k.CompletionKey("openai/gpt-4o", "system", "user", CompletionKeyOpts{JSONMode: true})
	ck2 := k.CompletionKey("openai/gpt-4o", "system", "user", CompletionKeyOpts{JSONMode: false})
	if ck1 == ck2 {
		t.Error("Different CompletionKeyOpts should produce different keys")
	}
	if ck3 := k.CompletionKey("openai/gpt-4o", "system", "other user", CompletionKeyOpts{JSONMode: true}); ck3 == ck1 {
		t.Error("Different prompts should produce different keys")
	}
	if ck4 := k.CompletionKey("openai/gpt-4o", "system", "user", CompletionKeyOpts{JSONMode: true, WebSearch: true}); ck4 == ck1 {
		t.Error("Web search option should produce a different key")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "site:example.com:")

	// All keys should be prefixed
	httpKey := scoped.HTTPKey("serpapi", "espresso")
	if httpKey != "site:example.com:http:serpapi:espresso" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", httpKey)
	}

	searchKey := scoped.SearchKey("serpapi", "espresso", "", 10)
	if !strings.HasPrefix(searchKey, "site:example.com:search:") {
		t.Errorf("ScopedKeyer SearchKey should be prefixed: %s", searchKey)
	}

	completionKey := scoped.CompletionKey("openai/gpt-4o", "s", "u", CompletionKeyOpts{})
	if !strings.HasPrefix(completionKey, "site:example.com:llm:") {
		t.Errorf("ScopedKeyer CompletionKey should be prefixed: %s", completionKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HTTPKey("serpapi", "key")
	if key != "prefix:http:serpapi:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

var (
	errTransient = errors.New("connection reset")
	errPermanent = errors.New("invalid api key")
)

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(errTransient)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != errTransient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Unwrap exposes the cause to errors.Is
	if !errors.Is(err, errTransient) {
		t.Error("errors.Is should see through RetryableError")
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(errPermanent) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return errPermanent
	})
	if err != errPermanent {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errTransient)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errTransient)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
