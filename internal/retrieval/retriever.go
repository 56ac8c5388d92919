// Package retrieval turns a natural-language question into ranked evidence
// chunks by embedding the question and scanning the vector store.
package retrieval

import (
	"context"

	"github.com/creditrust/complaintrag/internal/errs"
	"github.com/creditrust/complaintrag/internal/store"
)

// Embedder embeds a single query string.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is one retrieved evidence chunk. Rank is 1-based position in the
// returned list; Score is the cosine similarity against the query.
type Result struct {
	Document string
	Metadata store.Metadata
	Rank     int
	Score    float32
}

// Retriever answers similarity queries against an opened index.
type Retriever struct {
	index       *store.Index
	embedder    Embedder
	defaultTopK int
}

func New(index *store.Index, embedder Embedder, defaultTopK int) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Retriever{
		index:       index,
		embedder:    embedder,
		defaultTopK: defaultTopK,
	}
}

// Retrieve embeds the query and returns up to topK nearest chunks in
// decreasing similarity order. topK == 0 uses the configured default;
// a negative topK is rejected. A store holding fewer than topK entries
// returns what exists.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Result, error) {
	if query == "" {
		return nil, errs.NewInputError("", "query must not be empty")
	}
	if topK < 0 {
		return nil, errs.NewInputError("", "top k must not be negative, got %d", topK)
	}
	if topK == 0 {
		topK = r.defaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.index.Search(vector, topK)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Document: m.Document,
			Metadata: m.Metadata,
			Rank:     i + 1,
			Score:    m.Score,
		}
	}

	return results, nil
}
