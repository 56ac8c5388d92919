package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/embedding"
	"github.com/creditrust/complaintrag/internal/store"
)

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	var collection string
	fs.StringVar(&collection, "collection", "", "Collection name to inspect")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    complaintrag stats [options]

DESCRIPTION:
    Show statistics for an indexed collection: manifest, entry counts
    and the per-category breakdown.
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if collection == "" {
		collection = cfg.Store.Collection
	}

	embedService, err := embedding.NewService(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}

	idx, err := store.Open(cfg.Store.Location, collection, embedService)
	if err != nil {
		log.Fatalf("Failed to open index: %v", err)
	}
	defer idx.Close()

	manifest := idx.Manifest()
	entries, err := idx.Count()
	if err != nil {
		log.Fatalf("Failed to count entries: %v", err)
	}
	records, err := idx.RecordCount()
	if err != nil {
		log.Fatalf("Failed to count records: %v", err)
	}
	byCategory, err := idx.CountByCategory()
	if err != nil {
		log.Fatalf("Failed to count by category: %v", err)
	}

	fmt.Printf("Index: %s\n\n", store.CollectionPath(cfg.Store.Location, collection))
	fmt.Printf("  Collection:      %s\n", manifest.Collection)
	fmt.Printf("  Embedding model: %s (%d dimensions)\n", manifest.Model, manifest.Dimension)
	fmt.Printf("  Created:         %s\n", manifest.CreatedAt)
	fmt.Printf("  Records:         %d\n", records)
	fmt.Printf("  Chunks:          %d\n", entries)

	if len(byCategory) > 0 {
		categories := make([]string, 0, len(byCategory))
		for cat := range byCategory {
			categories = append(categories, cat)
		}
		sort.Strings(categories)

		fmt.Println("\n  Chunks by category:")
		for _, cat := range categories {
			fmt.Printf("    %-35s %d\n", cat, byCategory[cat])
		}
	}
}
