package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/creditrust/complaintrag/internal/config"
)

func TestDotIsCosineForUnitVectors(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float32
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2, 3},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 1, 1},
			b:        []float32{-1, -1, -1},
			expected: -1.0,
		},
		{
			name:     "similar vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{1.1, 2.1, 3.1},
			expected: 0.999, // Approximately
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NormalizeL2(tt.a)
			NormalizeL2(tt.b)
			result := Dot(tt.a, tt.b)
			diff := result - tt.expected
			if diff < 0 {
				diff = -diff
			}
			if diff > 0.001 {
				t.Errorf("Dot() = %v, want %v (diff: %v)", result, tt.expected, diff)
			}
		})
	}
}

func TestNormalizeL2(t *testing.T) {
	vector := []float32{3, 4, 0}
	NormalizeL2(vector)

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 0.001 {
		t.Errorf("expected unit length after normalization, got %v", math.Sqrt(norm))
	}
	if math.Abs(float64(vector[0])-0.6) > 0.001 || math.Abs(float64(vector[1])-0.8) > 0.001 {
		t.Errorf("unexpected normalized vector: %v", vector)
	}

	// Zero vectors stay zero rather than dividing by zero.
	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for i, v := range zero {
		if v != 0 {
			t.Errorf("zero vector element %d changed to %v", i, v)
		}
	}
}

func TestDotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for dimension mismatch")
		}
	}()

	Dot([]float32{1, 2}, []float32{1, 2, 3})
}

// recordingClient returns fixed vectors and records the texts it was
// asked to embed.
type recordingClient struct {
	batches [][]string
}

func (c *recordingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{3, 4}, nil
}

func (c *recordingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (c *recordingClient) Dimensions() int { return 2 }
func (c *recordingClient) Model() string   { return "recording" }

func TestEmbedNormalizesOutput(t *testing.T) {
	svc := NewServiceWithClient(&config.EmbeddingConfig{BatchSize: 32}, &recordingClient{})

	vector, err := svc.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if math.Abs(float64(vector[0])-0.6) > 0.001 || math.Abs(float64(vector[1])-0.8) > 0.001 {
		t.Errorf("expected normalized vector, got %v", vector)
	}
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	svc := NewServiceWithClient(&config.EmbeddingConfig{}, &recordingClient{})

	if _, err := svc.Embed(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestEmbedBatchSplitsAndMapsIndices(t *testing.T) {
	client := &recordingClient{}
	svc := NewServiceWithClient(&config.EmbeddingConfig{BatchSize: 2}, client)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := svc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	if len(client.batches) != 3 {
		t.Errorf("expected 3 batches of size <= 2, got %d", len(client.batches))
	}
	// Each vector's pre-normalization first component encodes the text
	// length, so position i must map back to texts[i].
	for i, v := range vectors {
		want := float32(len(texts[i]))
		ratio := v[0] / v[1]
		if math.Abs(float64(ratio-want)) > 0.001 {
			t.Errorf("vector %d does not correspond to texts[%d]: ratio %v, want %v", i, i, ratio, want)
		}
	}
}

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	_, err := NewService(&config.EmbeddingConfig{Provider: "mystery"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
