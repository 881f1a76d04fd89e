package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"scentmatch-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	prev := apiURL
	apiURL = srv.URL
	t.Cleanup(func() {
		apiURL = prev
		srv.Close()
	})
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := NewClient("key", " "); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestCompleteSendsJSONModeAndSystemPrompt(t *testing.T) {
	var captured chatRequest
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-4o-mini","choices":[{"message":{"role":"assistant","content":"  {\"ok\":true}  "}}],"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.CompletionRequest{
		System: "Respond with JSON only.",
		Prompt: "recommend",
		JSON:   true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected content %q", out)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("expected system + user messages, got %+v", captured.Messages)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format")
	}
	if captured.Temperature == nil {
		t.Fatalf("expected temperature for non gpt-5 model")
	}
}

func TestCompleteOmitsResponseFormatForText(t *testing.T) {
	var raw map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &raw)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"plain text"}}]}`))
	})

	client, _ := NewClient("k", "gpt-5-mini")
	out, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "explain"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "plain text" {
		t.Fatalf("unexpected content %q", out)
	}
	if _, ok := raw["response_format"]; ok {
		t.Fatalf("response_format should be omitted for text completions")
	}
	if _, ok := raw["temperature"]; ok {
		t.Fatalf("temperature should be omitted for gpt-5 models")
	}
}

func TestCompleteReportsHTTPStatus(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	client, _ := NewClient("k", "gpt-4o-mini")
	_, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "http status 503") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if !llm.ShouldRetry(err) {
		t.Fatalf("expected 503 to be retryable")
	}
}

func TestCompleteRejectsEmptyContent(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	})

	client, _ := NewClient("k", "gpt-4o-mini")
	if _, err := client.Complete(context.Background(), llm.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error for empty content")
	}
}
