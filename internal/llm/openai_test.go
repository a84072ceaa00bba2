package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type openaiCapture struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content any    `json:"content"`
	} `json:"messages"`
}

func openaiServer(t *testing.T, wantAuth string, captured *openaiCapture, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Errorf("Authorization = %q, want %q", got, wantAuth)
		}
		body, _ := io.ReadAll(r.Body)
		if captured != nil {
			json.Unmarshal(body, captured)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
}

func newTestOpenAI(t *testing.T, cfg ProviderConfig) *OpenAIClient {
	t.Helper()
	c, err := NewOpenAIClient(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return c
}

func TestOpenAIClient_Ask(t *testing.T) {
	var captured openaiCapture
	server := openaiServer(t, "Bearer sk-test", &captured, "print('hi'[::-1])")
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{
		APIKey:       "sk-test",
		BaseURL:      server.URL,
		SystemPrompt: "Provide code-only responses, unless you are acting as a judge.",
	})
	if c.Name() != "ChatGPT" {
		t.Errorf("Name() = %q, want ChatGPT", c.Name())
	}

	got, err := c.Ask(context.Background(), "reverse a string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "print('hi'[::-1])" {
		t.Errorf("Ask() = %q", got)
	}

	if captured.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", captured.Model)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("messages[0].role = %q, want system", captured.Messages[0].Role)
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "reverse a string" {
		t.Errorf("messages[1] = %+v", captured.Messages[1])
	}
}

func TestOpenAIClient_NoSystemPrompt(t *testing.T) {
	var captured openaiCapture
	server := openaiServer(t, "Bearer sk-test", &captured, "ok")
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{APIKey: "sk-test", BaseURL: server.URL})
	if _, err := c.Ask(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured.Messages) != 1 {
		t.Errorf("expected only the user message, got %d", len(captured.Messages))
	}
}

func TestOpenAIClient_EmptyContent(t *testing.T) {
	server := openaiServer(t, "Bearer sk-test", nil, "")
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{APIKey: "sk-test", BaseURL: server.URL})
	_, err := c.Ask(context.Background(), "hi")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestOpenAIClient_AskKeepsConversation(t *testing.T) {
	var captured openaiCapture
	server := openaiServer(t, "Bearer sk-test", &captured, "first reply")
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{APIKey: "sk-test", BaseURL: server.URL, SystemPrompt: "sys"})
	if _, err := c.Ask(context.Background(), "first turn"); err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	captured = openaiCapture{}
	if _, err := c.Ask(context.Background(), "second turn"); err != nil {
		t.Fatalf("second Ask: %v", err)
	}

	want := []struct{ role, content string }{
		{"system", "sys"},
		{"user", "first turn"},
		{"assistant", "first reply"},
		{"user", "second turn"},
	}
	if len(captured.Messages) != len(want) {
		t.Fatalf("second request carries %d messages, want %d: %+v", len(captured.Messages), len(want), captured.Messages)
	}
	for i, w := range want {
		m := captured.Messages[i]
		if m.Role != w.role || m.Content != w.content {
			t.Errorf("message %d = %+v, want {%s %q}", i, m, w.role, w.content)
		}
	}
}

func TestOpenAIClient_FailedTurnNotRecorded(t *testing.T) {
	var calls int
	var last openaiCapture
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		last = openaiCapture{}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &last)

		w.Header().Set("Content-Type", "application/json")
		if calls == 2 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "ok"},
			}},
		})
	}))
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{APIKey: "sk-test", BaseURL: server.URL})
	if _, err := c.Ask(context.Background(), "one"); err != nil {
		t.Fatalf("first Ask: %v", err)
	}
	if _, err := c.Ask(context.Background(), "two"); err == nil {
		t.Fatal("expected error on second Ask")
	}
	if _, err := c.Ask(context.Background(), "three"); err != nil {
		t.Fatalf("third Ask: %v", err)
	}

	var got []any
	for _, m := range last.Messages {
		got = append(got, m.Content)
	}
	if len(got) != 3 || got[0] != "one" || got[1] != "ok" || got[2] != "three" {
		t.Errorf("third request messages = %v, want [one ok three]", got)
	}
}

func TestOpenAIClient_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIClient(ProviderConfig{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestOpenAIClient_KeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	server := openaiServer(t, "Bearer sk-env", nil, "ok")
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{BaseURL: server.URL})
	if _, err := c.Ask(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenAIClient_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	c := newTestOpenAI(t, ProviderConfig{APIKey: "bad", BaseURL: server.URL})
	_, err := c.Ask(context.Background(), "hi")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if perr.Kind != KindAuth {
		t.Errorf("Kind = %q, want %q", perr.Kind, KindAuth)
	}
}

func TestOllamaClient_Ask(t *testing.T) {
	var captured openaiCapture
	server := openaiServer(t, "Bearer ollama", &captured, "fn main() {}")
	defer server.Close()

	c := NewOllamaClient(ProviderConfig{BaseURL: server.URL})
	if c.Name() != "Ollama" {
		t.Errorf("Name() = %q, want Ollama", c.Name())
	}
	got, err := c.Ask(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fn main() {}" {
		t.Errorf("Ask() = %q", got)
	}
	if captured.Model != "llama3.2" {
		t.Errorf("model = %q, want llama3.2", captured.Model)
	}
}

func TestOllamaBaseURL(t *testing.T) {
	tests := []struct {
		name string
		env  string
		in   string
		want string
	}{
		{"default", "", "", "http://localhost:11434/v1"},
		{"env host", "127.0.0.1:11500", "", "http://127.0.0.1:11500/v1"},
		{"explicit wins", "127.0.0.1:11500", "http://gpu-box:11434", "http://gpu-box:11434/v1"},
		{"already v1", "", "http://gpu-box:11434/v1/", "http://gpu-box:11434/v1"},
		{"full endpoint", "", "http://gpu-box:11434/v1/chat/completions", "http://gpu-box:11434/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OLLAMA_HOST", tt.env)
			if got := ollamaBaseURL(tt.in); got != tt.want {
				t.Errorf("ollamaBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
