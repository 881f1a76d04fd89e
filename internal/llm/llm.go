package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers used for recommendations and explanations.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single chat completion.
type CompletionRequest struct {
	System      string
	Prompt      string
	JSON        bool
	Temperature float32
	MaxTokens   int
	// Purpose labels the call in logs and metrics (e.g. "ai_strategy", "beginner_explanation").
	Purpose string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
