// Package openai is a minimal client for OpenAI-compatible chat and
// embeddings endpoints (OpenAI proper, OpenRouter, local gateways).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultBaseURL    = "https://openrouter.ai/api/v1"
	defaultChatModel  = "openai/gpt-4o-mini"
	defaultEmbedModel = "openai/text-embedding-3-small"
)

// NewClient instantiates an OpenAI-compatible API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = defaultChatModel
	}

	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		chatModel:  chatModel,
		embedModel: embedModel,
		httpClient: httpClient,
	}, nil
}

// ChatJSON sends a system/user prompt pair and returns the model's reply,
// requested as a strict JSON object.
func (c *Client) ChatJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("openai: client is nil")
	}

	payload := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: chat: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: chat: no choices returned")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Some models wrap JSON in a fenced block despite the response format.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("openai: chat: reply is not valid JSON")
	}

	return json.RawMessage(content), nil
}

// Embed returns the embedding vector for one input text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil {
		return nil, fmt.Errorf("openai: client is nil")
	}
	if text == "" {
		return nil, fmt.Errorf("openai: embed: input is empty")
	}

	payload := embeddingsRequest{
		Model: c.embedModel,
		Input: []string{text},
	}

	var resp embeddingsResponse
	if err := c.post(ctx, "/embeddings", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai: embeddings: %s", resp.Error.Message)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("openai: embeddings: empty response")
	}

	return resp.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("openai: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}

	return nil
}
