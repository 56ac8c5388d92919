package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/creditrust/complaintrag/internal/embedding"
	"github.com/creditrust/complaintrag/internal/errs"
	"github.com/creditrust/complaintrag/internal/store"
)

// hashEmbedder maps text deterministically into a small vector space so
// related phrasing lands close together without a live embedding service.
type hashEmbedder struct{}

func (hashEmbedder) Model() string   { return "hash-test" }
func (hashEmbedder) Dimensions() int { return 8 }

func (hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, 8)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		var h uint32
		for _, c := range word {
			h = h*31 + uint32(c)
		}
		vector[h%8]++
	}
	embedding.NormalizeL2(vector)
	return vector, nil
}

func buildFixtureIndex(t *testing.T) *store.Index {
	t.Helper()

	emb := hashEmbedder{}
	idx, err := store.Create(t.TempDir(), "complaint_chunks", emb.Model(), emb.Dimensions())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	docs := []string{
		"the bank charged me twice for the same credit card purchase and refused to reverse the billing error",
		"my savings account was closed without notice and my balance was held for weeks",
		"the money transfer to my family never arrived and support stopped responding",
	}
	metas := []store.Metadata{
		{RecordID: "c1", Category: "Credit card", ChunkIndex: 0},
		{RecordID: "c2", Category: "Savings account", ChunkIndex: 0},
		{RecordID: "c3", Category: "Money transfer, virtual currency", ChunkIndex: 0},
	}
	vectors := make([][]float32, len(docs))
	for i, doc := range docs {
		vectors[i], _ = emb.Embed(context.Background(), doc)
	}

	if err := idx.Build(context.Background(), docs, vectors, metas); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return idx
}

func TestRetrieveRanksRelevantFirst(t *testing.T) {
	idx := buildFixtureIndex(t)
	defer idx.Close()

	r := New(idx, hashEmbedder{}, 5)

	results, err := r.Retrieve(context.Background(), "the bank charged me twice for the same credit card purchase", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Metadata.RecordID != "c1" {
		t.Errorf("expected credit card complaint ranked first, got record %q", results[0].Metadata.RecordID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at position %d", i)
		}
		if results[i].Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, results[i].Rank)
		}
	}
}

func TestRetrieveFewerThanTopK(t *testing.T) {
	idx := buildFixtureIndex(t)
	defer idx.Close()

	r := New(idx, hashEmbedder{}, 5)

	results, err := r.Retrieve(context.Background(), "billing error", 50)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected all 3 stored chunks, got %d", len(results))
	}
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	idx := buildFixtureIndex(t)
	defer idx.Close()

	r := New(idx, hashEmbedder{}, 2)

	results, err := r.Retrieve(context.Background(), "billing error", 0)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected default topK of 2, got %d results", len(results))
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	idx := buildFixtureIndex(t)
	defer idx.Close()

	r := New(idx, hashEmbedder{}, 5)

	if _, err := r.Retrieve(context.Background(), "", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRetrieveNegativeTopK(t *testing.T) {
	idx := buildFixtureIndex(t)
	defer idx.Close()

	r := New(idx, hashEmbedder{}, 5)

	_, err := r.Retrieve(context.Background(), "billing error", -5)
	if !errs.IsInput(err) {
		t.Errorf("expected input error for negative topK, got %v", err)
	}
}
