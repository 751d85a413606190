// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package openai generates structured meeting notes from transcript text via
// the OpenAI Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meetingharvest/transcript-service/internal/domain"
)

const (
	// DefaultAPIURL is the Chat Completions endpoint.
	DefaultAPIURL = "https://api.openai.com/v1/chat/completions"
	// DefaultModel balances notes quality and cost for transcript summaries.
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 120 * time.Second

	// Notes generation is summarization: low temperature, bounded output.
	notesTemperature = 0.2
	notesMaxTokens   = 800

	systemPrompt = "You are an assistant that writes concise, structured meeting notes. " +
		"Given a raw meeting transcript, produce notes with these sections: " +
		"Summary, Key Decisions, Action Items (with owners when identifiable), and Open Questions."
)

// Client implements domain.NotesGenerator using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// Config holds the configuration for the notes client.
type Config struct {
	APIKey string
	// Optional: override model
	Model string
	// Optional: override API URL for testing
	APIURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// NewClient constructs a new OpenAI notes client.
func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		apiKey: config.APIKey,
		model:  config.Model,
		apiURL: config.APIURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

var _ domain.NotesGenerator = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate turns raw transcript text into structured meeting notes.
func (c *Client) Generate(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", domain.NewValidationError("transcript is empty")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: transcript},
		},
		Temperature: notesTemperature,
		MaxTokens:   notesMaxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", domain.NewInternalError("failed to marshal notes request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewInternalError("failed to create notes request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewUpstreamError("openai request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewUpstreamError("failed to read openai response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", domain.NewUpstreamError("failed to parse openai response", err)
	}
	if parsed.Error != nil {
		return "", domain.NewUpstreamError(
			fmt.Sprintf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type))
	}
	if len(parsed.Choices) == 0 {
		return "", domain.NewUpstreamError("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", domain.NewUpstreamError("openai response empty content")
	}

	if parsed.Usage != nil {
		slog.DebugContext(ctx, "generated meeting notes",
			"model", c.model,
			"prompt_tokens", parsed.Usage.PromptTokens,
			"completion_tokens", parsed.Usage.CompletionTokens,
		)
	}

	return content, nil
}
