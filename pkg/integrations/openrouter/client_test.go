package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	openai "github.com/openai/openai-go"

	"github.com/seoflow/seoflow/pkg/cache"
)

func chatResponse(content string) string {
	return fmt.Sprintf(`{"id":"gen-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}]}`, strconv.Quote(content))
}

// writeChat writes a completion reply with the JSON content type the
// openai-go decoder requires.
func writeChat(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, chatResponse(content))
}

// writeError writes an API error body with the given status.
func writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func newChatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestComplete(t *testing.T) {
	var auth, title string
	var body map[string]any
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		title = r.Header.Get("X-Title")
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		writeChat(w, "  A burr grinder gives a more even grind.  ")
	})

	client := NewClient("test-key", server.URL, nil, 0)
	got, err := client.Complete(context.Background(), "openai/gpt-4o", "You are a coffee expert.", "Why burr grinders?", false)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "A burr grinder gives a more even grind." {
		t.Errorf("content = %q", got)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if title != "seoflow" {
		t.Errorf("X-Title = %q", title)
	}
	if body["model"] != "openai/gpt-4o" {
		t.Errorf("model = %v", body["model"])
	}
	if _, ok := body["response_format"]; ok {
		t.Error("plain completion should not set response_format")
	}
	if _, ok := body["plugins"]; ok {
		t.Error("plain completion should not set plugins")
	}
}

func TestCompleteJSON(t *testing.T) {
	var body map[string]any
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		writeChat(w, `{"topics": ["grind size"]}`)
	})

	client := NewClient("test-key", server.URL, nil, 0)
	got, err := client.CompleteJSON(context.Background(), "openai/gpt-4o", "system", "user", false)
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if got != `{"topics": ["grind size"]}` {
		t.Errorf("content = %q", got)
	}
	format, ok := body["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Errorf("response_format = %v", body["response_format"])
	}
}

func TestCompleteJSONRetriesInvalidJSON(t *testing.T) {
	calls := 0
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeChat(w, "not json at all")
			return
		}
		writeChat(w, `{"ok": true}`)
	})

	client := NewClient("test-key", server.URL, nil, 0)
	got, err := client.CompleteJSON(context.Background(), "openai/gpt-4o", "system", "user", false)
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if got != `{"ok": true}` {
		t.Errorf("content = %q", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestCompleteJSONWebSendsPlugins(t *testing.T) {
	var body map[string]any
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		writeChat(w, `{"results": []}`)
	})

	client := NewClient("test-key", server.URL, nil, 0)
	if _, err := client.CompleteJSONWeb(context.Background(), "openai/gpt-4o", "system", "user", false); err != nil {
		t.Fatalf("CompleteJSONWeb: %v", err)
	}

	plugins, ok := body["plugins"].([]any)
	if !ok || len(plugins) != 1 {
		t.Fatalf("plugins = %v", body["plugins"])
	}
	plugin := plugins[0].(map[string]any)
	if plugin["id"] != "web" {
		t.Errorf("plugin id = %v", plugin["id"])
	}
	if plugin["max_results"] != float64(webSearchResults) {
		t.Errorf("plugin max_results = %v", plugin["max_results"])
	}
}

func TestCompleteJSONWebFallsBackWithoutPlugins(t *testing.T) {
	var sawPlugins []bool
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		json.Unmarshal(data, &body)
		_, hasPlugins := body["plugins"]
		sawPlugins = append(sawPlugins, hasPlugins)
		if hasPlugins {
			writeError(w, http.StatusInternalServerError, `{"error": {"message": "provider does not support plugins"}}`)
			return
		}
		writeChat(w, `{"results": []}`)
	})

	client := NewClient("test-key", server.URL, nil, 0)
	got, err := client.CompleteJSONWeb(context.Background(), "openai/gpt-4o", "system", "user", false)
	if err != nil {
		t.Fatalf("CompleteJSONWeb: %v", err)
	}
	if got != `{"results": []}` {
		t.Errorf("content = %q", got)
	}
	want := []bool{true, false}
	if len(sawPlugins) != 2 || sawPlugins[0] != want[0] || sawPlugins[1] != want[1] {
		t.Errorf("plugin sequence = %v, want %v", sawPlugins, want)
	}
}

func TestCompleteBadKeyFailsFast(t *testing.T) {
	calls := 0
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeError(w, http.StatusUnauthorized, `{"error": {"message": "invalid api key"}}`)
	})

	client := NewClient("bad-key", server.URL, nil, 0)
	_, err := client.Complete(context.Background(), "openai/gpt-4o", "system", "user", false)
	if err == nil {
		t.Fatal("expected error for bad API key")
	}
	var apierr *openai.Error
	if !errors.As(err, &apierr) || apierr.StatusCode != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401 API error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (auth errors are not retryable)", calls)
	}
}

func TestCompleteCaches(t *testing.T) {
	calls := 0
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeChat(w, "cached answer")
	})

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient("test-key", server.URL, backend, 0)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := client.Complete(ctx, "openai/gpt-4o", "system", "user", false)
		if err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
		if got != "cached answer" {
			t.Errorf("Complete %d = %q", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (second call should hit the cache)", calls)
	}

	if _, err := client.Complete(ctx, "openai/gpt-4o", "system", "user", true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 after refresh", calls)
	}
}

func TestCompleteCacheVariesByOptions(t *testing.T) {
	calls := 0
	server := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeChat(w, `{"n": 1}`)
	})

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient("test-key", server.URL, backend, 0)

	ctx := context.Background()
	if _, err := client.CompleteJSON(ctx, "openai/gpt-4o", "system", "user", false); err != nil {
		t.Fatal(err)
	}
	if _, err := client.CompleteJSONWeb(ctx, "openai/gpt-4o", "system", "user", false); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (different options must not share cache entries)", calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"empty response", ErrEmptyResponse, true},
		{"rate limited", &openai.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"server error", &openai.Error{StatusCode: http.StatusInternalServerError}, true},
		{"bad gateway", &openai.Error{StatusCode: http.StatusBadGateway}, true},
		{"unauthorized", &openai.Error{StatusCode: http.StatusUnauthorized}, false},
		{"bad request", &openai.Error{StatusCode: http.StatusBadRequest}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"transport", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.IsRetryable(classify(tt.err)); got != tt.retryable {
				t.Errorf("IsRetryable(classify(%v)) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("key", "", nil, 0)
	if client.cache == nil {
		t.Error("nil backend should default to a null cache")
	}
	if client.keyer == nil {
		t.Error("keyer not set")
	}
}
