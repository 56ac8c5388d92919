package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/creditrust/complaintrag/internal/chunk"
	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/embedding"
	"github.com/creditrust/complaintrag/internal/ingest"
	"github.com/creditrust/complaintrag/internal/progress"
	"github.com/creditrust/complaintrag/internal/store"
)

// handleIndex implements the index subcommand
func handleIndex(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)

	var input string
	var collection string

	fs.StringVar(&input, "input", "", "Cleaned complaint CSV path")
	fs.StringVar(&collection, "collection", "", "Collection name to build")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    complaintrag index [options]

DESCRIPTION:
    Chunk the cleaned complaint narratives, embed every chunk, and
    persist documents, vectors and metadata in the vector store. The
    embedding model identity is recorded in the index so queries with
    a different model are rejected.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Index the configured cleaned file
    complaintrag index

    # Index a specific file into a named collection
    complaintrag index -input cleaned.csv -collection complaint_chunks
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if input == "" {
		input = cfg.Data.Output
	}
	if input == "" {
		fmt.Fprintf(os.Stderr, "Error: no cleaned input specified (use -input or data.output in config)\n\n")
		fs.Usage()
		os.Exit(1)
	}
	if collection == "" {
		collection = cfg.Store.Collection
	}

	embedService, err := embedding.NewService(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}

	chunker, err := chunk.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		log.Fatalf("Invalid chunking configuration: %v", err)
	}

	idx, err := store.Create(cfg.Store.Location, collection, embedService.Model(), embedService.Dimensions())
	if err != nil {
		log.Fatalf("Failed to create index: %v", err)
	}
	defer idx.Close()

	f, err := os.Open(input)
	if err != nil {
		log.Fatalf("Failed to open cleaned input: %v", err)
	}
	defer f.Close()

	reader, err := ingest.NewBatchReader(f, cfg.Data.BatchSize)
	if err != nil {
		log.Fatalf("Failed to read cleaned input: %v", err)
	}

	ctx := context.Background()
	recordsIndexed := 0
	chunksIndexed := 0

	for {
		batch, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read batch: %v", err)
		}

		// Cleaned rows carry the category in the product column.
		records := make([]ingest.ComplaintRecord, 0, len(batch))
		for _, row := range batch {
			records = append(records, ingest.ComplaintRecord{
				ID:               row.ID,
				Category:         ingest.Category(row.Product),
				CleanedNarrative: row.Narrative,
			})
		}

		chunks, err := chunker.Records(records)
		if err != nil {
			log.Fatalf("Failed to chunk records: %v", err)
		}
		if len(chunks) == 0 {
			continue
		}

		documents := make([]string, len(chunks))
		metadatas := make([]store.Metadata, len(chunks))
		for i, ch := range chunks {
			documents[i] = ch.Text
			metadatas[i] = store.Metadata{
				RecordID:   ch.RecordID,
				Category:   string(ch.Category),
				ChunkIndex: ch.Index,
			}
		}

		vectors, err := embedChunks(ctx, embedService, documents, cfg.Embedding.BatchSize)
		if err != nil {
			log.Fatalf("Failed to embed chunks: %v", err)
		}

		if err := idx.Build(ctx, documents, vectors, metadatas); err != nil {
			log.Fatalf("Failed to write index: %v", err)
		}

		recordsIndexed += len(records)
		chunksIndexed += len(chunks)
	}

	count, err := idx.Count()
	if err != nil {
		log.Fatalf("Failed to count index entries: %v", err)
	}

	fmt.Printf("Indexing complete: %s\n\n", store.CollectionPath(cfg.Store.Location, collection))
	fmt.Printf("  Records processed: %d\n", recordsIndexed)
	fmt.Printf("  Chunks embedded:   %d\n", chunksIndexed)
	fmt.Printf("  Entries stored:    %d\n", count)
	fmt.Printf("  Embedding model:   %s (%d dimensions)\n", embedService.Model(), embedService.Dimensions())
}

// embedChunks embeds documents with a visible progress bar, one embedding
// request per batch.
func embedChunks(ctx context.Context, svc *embedding.Service, documents []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 32
	}

	reporter := progress.NewReporter(progress.Enabled(), "embedding")
	progress.Start(reporter, len(documents))
	defer progress.Finish(reporter)

	vectors := make([][]float32, 0, len(documents))
	for start := 0; start < len(documents); start += batchSize {
		end := start + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		batch, err := svc.EmbedBatch(ctx, documents[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)

		for range documents[start:end] {
			progress.Increment(reporter)
		}
	}

	return vectors, nil
}
