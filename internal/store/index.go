package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/creditrust/complaintrag/internal/embedding"
	"github.com/creditrust/complaintrag/internal/errs"
)

// Manifest key names.
const (
	manifestCollection = "collection"
	manifestModel      = "embedding_model"
	manifestDimension  = "dimension"
	manifestCreatedAt  = "created_at"
)

// writeBatchSize bounds how many entries one committed transaction holds.
// A crash mid-build loses at most the in-flight batch; earlier batches are
// durable and the lost batch is idempotently retryable.
const writeBatchSize = 500

// Metadata is the per-chunk metadata persisted alongside each document.
type Metadata struct {
	RecordID   string
	Category   string
	ChunkIndex int
}

// SearchResult is one similarity match, highest score first.
type SearchResult struct {
	Document string
	Metadata Metadata
	Score    float32
}

// Manifest describes how a collection was built.
type Manifest struct {
	Collection string
	Model      string
	Dimension  int
	CreatedAt  string
}

// ModelInfo is the slice of the embedding service the loader needs to
// verify build/query compatibility.
type ModelInfo interface {
	Model() string
	Dimensions() int
}

// Index is an opened collection, either for building or for querying.
type Index struct {
	db       *DB
	manifest Manifest
}

// Create opens (or creates) a collection for building and records the
// embedding model identity in its manifest.
func Create(location, collection, model string, dimension int) (*Index, error) {
	if model == "" {
		return nil, errs.NewInputError("", "embedding model name is required to build an index")
	}
	if dimension <= 0 {
		return nil, errs.NewInputError("", "embedding dimension must be positive, got %d", dimension)
	}

	db, err := openDB(location, collection, true)
	if err != nil {
		return nil, err
	}

	// Refuse to append under a different model than the one recorded.
	existing, err := db.getManifest(manifestModel)
	if err != nil {
		db.Close()
		return nil, err
	}
	if existing != "" && existing != model {
		db.Close()
		return nil, fmt.Errorf("collection %q was built with embedding model %q, cannot build with %q", collection, existing, model)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.sqlDB.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		manifestCollection: collection,
		manifestModel:      model,
		manifestDimension:  strconv.Itoa(dimension),
		manifestCreatedAt:  createdAt,
	} {
		if err := setManifest(tx, key, value); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to commit manifest: %w", err)
	}

	return &Index{
		db: db,
		manifest: Manifest{
			Collection: collection,
			Model:      model,
			Dimension:  dimension,
			CreatedAt:  createdAt,
		},
	}, nil
}

// Open reopens a previously built collection for querying. It fails when
// the location or collection is missing, the file is not a valid store,
// the embedding capability is absent, or the live embedder's model or
// dimension differ from the ones recorded at build time.
func Open(location, collection string, embedder ModelInfo) (*Index, error) {
	if embedder == nil {
		return nil, errs.NewStateError("open index", "embedding capability is required for similarity queries")
	}

	db, err := openDB(location, collection, false)
	if err != nil {
		return nil, errs.NewStateError("open index", "%v", err)
	}

	manifest, err := readManifest(db)
	if err != nil {
		db.Close()
		return nil, errs.NewStateError("open index", "%v", err)
	}

	if manifest.Model != embedder.Model() {
		db.Close()
		return nil, fmt.Errorf("embedding model mismatch: index built with %q, querying with %q", manifest.Model, embedder.Model())
	}
	if manifest.Dimension != embedder.Dimensions() {
		db.Close()
		return nil, fmt.Errorf("embedding dimension mismatch: index built with %d, querying with %d", manifest.Dimension, embedder.Dimensions())
	}

	return &Index{db: db, manifest: manifest}, nil
}

func readManifest(db *DB) (Manifest, error) {
	var m Manifest
	var err error

	if m.Collection, err = db.getManifest(manifestCollection); err != nil {
		return m, err
	}
	if m.Model, err = db.getManifest(manifestModel); err != nil {
		return m, err
	}
	if m.Model == "" {
		return m, fmt.Errorf("index manifest has no embedding model recorded")
	}
	dim, err := db.getManifest(manifestDimension)
	if err != nil {
		return m, err
	}
	if m.Dimension, err = strconv.Atoi(dim); err != nil {
		return m, fmt.Errorf("index manifest has invalid dimension %q", dim)
	}
	if m.CreatedAt, err = db.getManifest(manifestCreatedAt); err != nil {
		return m, err
	}

	return m, nil
}

// Manifest returns the build-time facts about this collection.
func (idx *Index) Manifest() Manifest {
	return idx.manifest
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Build persists documents, vectors and metadata as one logical unit per
// entry. All three inputs must be non-empty and of equal length. Entries
// are written in bounded-size batches with a durable commit per batch.
func (idx *Index) Build(ctx context.Context, documents []string, vectors [][]float32, metadatas []Metadata) error {
	if len(documents) == 0 {
		return errs.NewInputError("", "no documents to index")
	}
	if len(documents) != len(vectors) || len(documents) != len(metadatas) {
		return errs.NewInputError("", "documents, vectors and metadatas must have equal length: %d/%d/%d",
			len(documents), len(vectors), len(metadatas))
	}

	now := time.Now().UTC().Format(time.RFC3339)

	for start := 0; start < len(documents); start += writeBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + writeBatchSize
		if end > len(documents) {
			end = len(documents)
		}

		if err := idx.writeBatch(documents[start:end], vectors[start:end], metadatas[start:end], now); err != nil {
			return fmt.Errorf("failed to write batch %d-%d: %w", start, end, err)
		}
	}

	return nil
}

func (idx *Index) writeBatch(documents []string, vectors [][]float32, metadatas []Metadata, now string) error {
	tx, err := idx.db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO entries (record_id, category, chunk_index, document, vector, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, doc := range documents {
		if len(vectors[i]) != idx.manifest.Dimension {
			return errs.NewInputError("", "vector %d has dimension %d, index expects %d", i, len(vectors[i]), idx.manifest.Dimension)
		}
		blob := vectorToBlob(vectors[i])
		meta := metadatas[i]
		if _, err := stmt.Exec(meta.RecordID, meta.Category, meta.ChunkIndex, doc, blob, len(vectors[i]), now); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Search performs nearest-neighbor search over all stored vectors. Stored
// and query vectors are L2-normalized, so the dot product is the cosine
// similarity. Results come back in decreasing score order; ties keep
// insertion order. Fewer than topK entries returns what exists.
func (idx *Index) Search(queryVector []float32, topK int) ([]SearchResult, error) {
	if len(queryVector) == 0 {
		return nil, errs.NewInputError("", "query vector is empty")
	}
	if topK <= 0 {
		return nil, errs.NewInputError("", "topK must be positive, got %d", topK)
	}

	// Full scan in insertion order; fine at this scale.
	rows, err := idx.db.sqlDB.Query("SELECT record_id, category, chunk_index, document, vector FROM entries ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var meta Metadata
		var document string
		var blob []byte

		if err := rows.Scan(&meta.RecordID, &meta.Category, &meta.ChunkIndex, &document, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		vector, err := blobToVector(blob)
		if err != nil {
			continue // Skip malformed vectors
		}
		if len(vector) != len(queryVector) {
			continue
		}

		results = append(results, SearchResult{
			Document: document,
			Metadata: meta,
			Score:    embedding.Dot(vector, queryVector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// CountByCategory returns entry counts keyed by stored category.
func (idx *Index) CountByCategory() (map[string]int, error) {
	rows, err := idx.db.sqlDB.Query("SELECT category, COUNT(*) FROM entries GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[category] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return counts, nil
}

// RecordCount returns the number of distinct complaint records indexed.
func (idx *Index) RecordCount() (int, error) {
	var count int
	if err := idx.db.sqlDB.QueryRow("SELECT COUNT(DISTINCT record_id) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Count returns the number of persisted entries.
func (idx *Index) Count() (int, error) {
	var count int
	if err := idx.db.sqlDB.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Helper functions for vector serialization

// vectorToBlob converts a float32 slice to a binary blob
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		bits := math.Float32bits(v)
		binary.LittleEndian.PutUint32(blob[i*4:i*4+4], bits)
	}
	return blob
}

// blobToVector converts a binary blob to a float32 slice
func blobToVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob size %d is not a multiple of 4", len(blob))
	}

	vector := make([]float32, len(blob)/4)
	for i := 0; i < len(vector); i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		vector[i] = math.Float32frombits(bits)
	}

	return vector, nil
}
