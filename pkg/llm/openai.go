package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// Generation parameters for problem creation.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 4000
)

// OpenAIProvider is an OpenAI-compatible chat-completions client.
type OpenAIProvider struct {
	client *http.Client
	url    string
	apiKey string
	model  string
}

// NewOpenAIProvider creates a provider against the public OpenAI endpoint.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: &http.Client{Timeout: 2 * time.Minute},
		url:    defaultOpenAIURL,
		apiKey: apiKey,
		model:  model,
	}
}

// NewOpenAIProviderWithURL targets a compatible endpoint, used by tests and
// self-hosted gateways.
func NewOpenAIProviderWithURL(url, apiKey, model string) *OpenAIProvider {
	p := NewOpenAIProvider(apiKey, model)
	p.url = url
	return p
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Model() string { return p.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Model string      `json:"model"`
	Usage *TokenUsage `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one chat completion. HTTP 429 returns a RateLimitedError
// honoring the Retry-After header (default 60 s); content-filtered choices
// return ErrContentFiltered.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Response, error) {
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60
		if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = v
		}
		return nil, &RateLimitedError{RetryAfterSeconds: retryAfter}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API request failed: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API request failed: HTTP %d: %s", resp.StatusCode, body)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("invalid response: no choices")
	}

	choice := completion.Choices[0]
	if choice.FinishReason != nil && *choice.FinishReason == "content_filter" {
		return nil, ErrContentFiltered
	}
	if choice.Message.Content == nil {
		return nil, fmt.Errorf("invalid response: no content in message")
	}

	return &Response{
		Content: *choice.Message.Content,
		Model:   completion.Model,
		Usage:   completion.Usage,
	}, nil
}
