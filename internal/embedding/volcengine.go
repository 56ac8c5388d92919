package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/errs"
)

// VolcEngineClient implements Client for VolcEngine's embedding API
type VolcEngineClient struct {
	apiKey     string
	endpoint   string
	model      string
	dimensions int
	client     *http.Client
}

// VolcEngineEmbeddingRequest is the request format for VolcEngine API
type VolcEngineEmbeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
	Dimensions     int      `json:"dimensions,omitempty"`
}

// VolcEngineEmbeddingResponse is the response from VolcEngine API
type VolcEngineEmbeddingResponse struct {
	ID     string `json:"id"`
	Model  string `json:"model"`
	Object string `json:"object"`
	Data   []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
		Object    string    `json:"object"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}

// NewVolcEngineClient creates a new VolcEngine embedding client
func NewVolcEngineClient(cfg *config.EmbeddingConfig) (*VolcEngineClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("volcengine api_key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://ark.cn-beijing.volces.com/api/v3/embeddings"
	}

	model := cfg.Model
	if model == "" {
		model = "doubao-embedding-text-240715"
	}

	return &VolcEngineClient{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		model:      model,
		dimensions: cfg.Dimensions,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Embed generates an embedding for a single text
func (c *VolcEngineClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errs.NewRemoteError("embedding", 0, fmt.Errorf("no embedding returned"))
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts
func (c *VolcEngineClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := VolcEngineEmbeddingRequest{
		Input:          texts,
		Model:          c.model,
		EncodingFormat: "float",
		Dimensions:     c.dimensions,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errs.NewRemoteError("embedding", 0, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewRemoteError("embedding", 0, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewRemoteError("embedding", resp.StatusCode, fmt.Errorf("API returned: %s", string(body)))
	}

	var apiResp VolcEngineEmbeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, errs.NewRemoteError("embedding", resp.StatusCode, fmt.Errorf("failed to parse response: %w", err))
	}

	if len(apiResp.Data) != len(texts) {
		return nil, errs.NewRemoteError("embedding", resp.StatusCode, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(apiResp.Data)))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range apiResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, errs.NewRemoteError("embedding", resp.StatusCode, fmt.Errorf("invalid embedding index: %d", data.Index))
		}
		embeddings[data.Index] = data.Embedding
	}

	return embeddings, nil
}

// Dimensions returns the dimension of the embeddings
func (c *VolcEngineClient) Dimensions() int {
	return c.dimensions
}

// Model returns the embedding model name
func (c *VolcEngineClient) Model() string {
	return c.model
}
