package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	var gotReq chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"title": "Test"}`}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
		})
	}))
	defer server.Close()

	p := NewOpenAIProviderWithURL(server.URL, "test-key", "gpt-4o-mini")
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o-mini", p.Model())

	resp, err := p.Complete(context.Background(), "system says", "user asks")
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Test"}`, resp.Content)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 30, resp.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "system says", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.InDelta(t, 0.7, gotReq.Temperature, 1e-9)
	assert.Equal(t, 4000, gotReq.MaxTokens)
}

func TestOpenAIRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOpenAIProviderWithURL(server.URL, "k", "m")
	_, err := p.Complete(context.Background(), "s", "u")

	var rateErr *RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 30, rateErr.RetryAfterSeconds)
}

func TestOpenAIRateLimitedDefaultBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOpenAIProviderWithURL(server.URL, "k", "m")
	_, err := p.Complete(context.Background(), "s", "u")

	var rateErr *RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 60, rateErr.RetryAfterSeconds)
}

func TestOpenAIContentFiltered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "m",
			"choices": []map[string]any{
				{"message": map[string]any{"content": nil}, "finish_reason": "content_filter"},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAIProviderWithURL(server.URL, "k", "m")
	_, err := p.Complete(context.Background(), "s", "u")
	assert.True(t, errors.Is(err, ErrContentFiltered))
}

func TestOpenAIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "model not found"},
		})
	}))
	defer server.Close()

	p := NewOpenAIProviderWithURL(server.URL, "k", "m")
	_, err := p.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}
