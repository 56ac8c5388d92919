package store

import (
	"context"
	"strings"
	"testing"
)

type fakeModel struct {
	model string
	dims  int
}

func (f fakeModel) Model() string   { return f.model }
func (f fakeModel) Dimensions() int { return f.dims }

func buildTestIndex(t *testing.T, location string) *Index {
	t.Helper()

	idx, err := Create(location, "test_chunks", "test-model", 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	docs := []string{"first document", "second document", "third document"}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	metas := []Metadata{
		{RecordID: "r1", Category: "Credit card", ChunkIndex: 0},
		{RecordID: "r1", Category: "Credit card", ChunkIndex: 1},
		{RecordID: "r2", Category: "Savings account", ChunkIndex: 0},
	}

	if err := idx.Build(context.Background(), docs, vectors, metas); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return idx
}

func TestBuildAndSearch(t *testing.T) {
	dir := t.TempDir()
	idx := buildTestIndex(t, dir)
	defer idx.Close()

	results, err := idx.Search([]float32{0.9, 0.1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document != "first document" {
		t.Errorf("expected best match 'first document', got %q", results[0].Document)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not in decreasing score order: %f < %f", results[0].Score, results[1].Score)
	}
	if results[0].Metadata.RecordID != "r1" || results[0].Metadata.ChunkIndex != 0 {
		t.Errorf("unexpected metadata on best match: %+v", results[0].Metadata)
	}
}

func TestSearchTopKLargerThanStore(t *testing.T) {
	dir := t.TempDir()
	idx := buildTestIndex(t, dir)
	defer idx.Close()

	results, err := idx.Search([]float32{1, 0, 0}, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected all 3 entries back, got %d", len(results))
	}
}

func TestSearchValidation(t *testing.T) {
	dir := t.TempDir()
	idx := buildTestIndex(t, dir)
	defer idx.Close()

	if _, err := idx.Search(nil, 5); err == nil {
		t.Error("expected error for empty query vector")
	}
	if _, err := idx.Search([]float32{1, 0, 0}, 0); err == nil {
		t.Error("expected error for non-positive topK")
	}
}

func TestBuildLengthValidation(t *testing.T) {
	dir := t.TempDir()
	idx, err := Create(dir, "test_chunks", "test-model", 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()

	if err := idx.Build(ctx, nil, nil, nil); err == nil {
		t.Error("expected error for empty build input")
	}
	err = idx.Build(ctx, []string{"a", "b"}, [][]float32{{1, 0, 0}}, []Metadata{{}, {}})
	if err == nil {
		t.Error("expected error for mismatched lengths")
	}
	err = idx.Build(ctx, []string{"a"}, [][]float32{{1, 0}}, []Metadata{{}})
	if err == nil {
		t.Error("expected error for wrong vector dimension")
	}
}

func TestBuildIdempotentReplace(t *testing.T) {
	dir := t.TempDir()
	idx := buildTestIndex(t, dir)
	defer idx.Close()

	// Re-indexing the same record/chunk pair replaces rather than duplicates.
	err := idx.Build(context.Background(),
		[]string{"first document revised"},
		[][]float32{{1, 0, 0}},
		[]Metadata{{RecordID: "r1", Category: "Credit card", ChunkIndex: 0}})
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 entries after replace, got %d", count)
	}

	results, err := idx.Search([]float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].Document != "first document revised" {
		t.Errorf("expected replaced document, got %q", results[0].Document)
	}
}

func TestOpenVerifiesManifest(t *testing.T) {
	dir := t.TempDir()
	idx := buildTestIndex(t, dir)
	idx.Close()

	// Matching model and dimension opens cleanly.
	opened, err := Open(dir, "test_chunks", fakeModel{model: "test-model", dims: 3})
	if err != nil {
		t.Fatalf("Open with matching embedder failed: %v", err)
	}
	m := opened.Manifest()
	if m.Model != "test-model" || m.Dimension != 3 {
		t.Errorf("unexpected manifest: %+v", m)
	}
	opened.Close()

	_, err = Open(dir, "test_chunks", fakeModel{model: "other-model", dims: 3})
	if err == nil || !strings.Contains(err.Error(), "model mismatch") {
		t.Errorf("expected model mismatch error, got %v", err)
	}

	_, err = Open(dir, "test_chunks", fakeModel{model: "test-model", dims: 8})
	if err == nil || !strings.Contains(err.Error(), "dimension mismatch") {
		t.Errorf("expected dimension mismatch error, got %v", err)
	}

	if _, err := Open(dir, "test_chunks", nil); err == nil {
		t.Error("expected error for nil embedder")
	}
}

func TestOpenMissingCollection(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(dir, "nothing_here", fakeModel{model: "test-model", dims: 3})
	if err == nil {
		t.Fatal("expected error opening missing collection")
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	original := []float32{0.25, -1.5, 3.14159, 0}

	vector, err := blobToVector(vectorToBlob(original))
	if err != nil {
		t.Fatalf("blobToVector failed: %v", err)
	}
	if len(vector) != len(original) {
		t.Fatalf("length mismatch: %d vs %d", len(vector), len(original))
	}
	for i := range original {
		if vector[i] != original[i] {
			t.Errorf("element %d: expected %f, got %f", i, original[i], vector[i])
		}
	}

	if _, err := blobToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}
