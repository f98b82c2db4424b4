// Package openrouter is a minimal chat-completions client for the OpenRouter
// API. The engines only consume the first choice's message content; reasoning
// text is requested but discarded.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultModel matches the free routing alias the desktop build used.
	DefaultModel = "openrouter/free"

	// DefaultTimeout bounds a single completion call. A hung request must
	// not pin the classification counter forever.
	DefaultTimeout = 60 * time.Second

	reasoningEffort = "high"
)

var ErrNoAPIKey = errors.New("openrouter: api key required")

type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   DefaultModel,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReasoning struct {
	Effort string `json:"effort"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	Reasoning chatReasoning `json:"reasoning"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			Reasoning string `json:"reasoning"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ChatCompletion sends one non-streaming request with a system instruction
// and a user message and returns the first choice's content.
func (c *Client) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:    false,
		Reasoning: chatReasoning{Effort: reasoningEffort},
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openrouter: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openrouter: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("openrouter: api error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("openrouter: api error (%d): %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("openrouter: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", errors.New("openrouter: response has no choices")
	}
	return chat.Choices[0].Message.Content, nil
}
