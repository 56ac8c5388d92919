package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/errs"
)

// Service provides embedding generation functionality
type Service struct {
	cfg    *config.EmbeddingConfig
	client Client
}

// Client is the interface for embedding API clients
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}

// NewService creates a new embedding service
func NewService(cfg *config.EmbeddingConfig) (*Service, error) {
	svc := &Service{cfg: cfg}

	var client Client
	var err error

	switch cfg.Provider {
	case "volcengine":
		client, err = NewVolcEngineClient(cfg)
	case "openai":
		client, err = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	svc.client = client
	return svc, nil
}

// NewServiceWithClient wraps an existing client. Used by tests and by
// callers that construct clients directly.
func NewServiceWithClient(cfg *config.EmbeddingConfig, client Client) *Service {
	return &Service{cfg: cfg, client: client}
}

// Embed generates an L2-normalized embedding for a single text
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errs.NewInputError("", "cannot embed empty text")
	}
	vector, err := s.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	NormalizeL2(vector)
	return vector, nil
}

// EmbedBatch generates L2-normalized embeddings for multiple texts.
// All vectors are normalized so cosine similarity reduces to the dot
// product regardless of the metric the store applies.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Filter out empty texts
	validTexts := make([]string, 0, len(texts))
	validIndices := make([]int, 0, len(texts))
	for i, text := range texts {
		if text != "" {
			validTexts = append(validTexts, text)
			validIndices = append(validIndices, i)
		}
	}

	if len(validTexts) == 0 {
		return nil, errs.NewInputError("", "no valid texts to embed")
	}

	// Process in batches
	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	results := make([][]float32, len(texts))

	for i := 0; i < len(validTexts); i += batchSize {
		end := i + batchSize
		if end > len(validTexts) {
			end = len(validTexts)
		}

		batch := validTexts[i:end]
		embeddings, err := s.client.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", i, end, err)
		}

		// Map results back to original indices
		for j, emb := range embeddings {
			NormalizeL2(emb)
			results[validIndices[i+j]] = emb
		}
	}

	return results, nil
}

// Dimensions returns the dimension of the embeddings
func (s *Service) Dimensions() int {
	return s.client.Dimensions()
}

// Model returns the identity of the embedding model. The index records it
// at build time and checks it on open; query-time and build-time
// embeddings must share model and dimension or rankings are meaningless.
func (s *Service) Model() string {
	return s.client.Model()
}

// NormalizeL2 scales vector in place to unit length. Zero vectors are
// left untouched.
func NormalizeL2(vector []float32) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= norm
	}
}

// Dot computes the dot product of two equal-length vectors. For
// L2-normalized vectors this equals their cosine similarity.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", len(a), len(b)))
	}
	var sum float32
	for i := 0; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}
