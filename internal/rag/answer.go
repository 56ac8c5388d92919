package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/errs"
)

// Generator produces answers through an OpenAI-compatible chat
// completions endpoint.
type Generator struct {
	client      *http.Client
	apiKey      string
	endpoint    string
	model       string
	temperature float64
}

// NewGenerator creates a generator from LLM configuration.
func NewGenerator(cfg *config.LLMConfig) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llm config is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Generator{
		client:      &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		endpoint:    endpoint,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a single-user-message completion request and returns the
// model's text. Transport failures, non-200 statuses and empty
// completions all surface as remote errors.
func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", errs.NewRemoteError("llm", 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errs.NewRemoteError("llm", resp.StatusCode, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", errs.NewRemoteError("llm", resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if chatResp.Error != nil {
		return "", errs.NewRemoteError("llm", resp.StatusCode, fmt.Errorf("API error: %s", chatResp.Error.Message))
	}

	if len(chatResp.Choices) == 0 {
		return "", errs.NewRemoteError("llm", resp.StatusCode, fmt.Errorf("no choices in response"))
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", errs.NewRemoteError("llm", resp.StatusCode, fmt.Errorf("empty completion"))
	}

	return content, nil
}

// Model reports the configured completion model name.
func (g *Generator) Model() string {
	return g.model
}
