// Package llm talks to chat-completion providers for AI problem generation.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// TokenUsage is the provider's token accounting for one completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one completed chat request.
type Response struct {
	Content string
	Model   string
	Usage   *TokenUsage
}

// ErrContentFiltered marks completions discarded by the provider's safety
// systems. These do not count as generation failures.
var ErrContentFiltered = errors.New("content was filtered by safety systems")

// RateLimitedError carries the provider's requested backoff.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfterSeconds)
}

// Provider is a chat-completion backend.
type Provider interface {
	// Name identifies the provider ("openai").
	Name() string
	// Model returns the configured model id.
	Model() string
	// Complete runs one system+user chat completion.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*Response, error)
}
