package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/creditrust/complaintrag/cmd/complaintrag/internal"
	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/ingest"
	"github.com/creditrust/complaintrag/internal/progress"
)

// handleClean implements the clean subcommand
func handleClean(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)

	var inputs internal.StringList
	var output string
	var batchSize int
	var stripSpecial bool

	fs.Var(&inputs, "input", "Raw complaint CSV file or glob pattern (repeatable)")
	fs.StringVar(&output, "output", "", "Cleaned output CSV path")
	fs.IntVar(&batchSize, "batch", 0, "Rows per processing batch")
	fs.BoolVar(&stripSpecial, "strip-special", false, "Remove special characters from narratives")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    complaintrag clean [options]

DESCRIPTION:
    Filter a raw complaint CSV export down to the supported product
    categories, drop rows without a narrative, and normalize the
    narrative text for embedding.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Clean one export
    complaintrag clean -input complaints.csv -output cleaned.csv

    # Clean every monthly export at once
    complaintrag clean -input "exports/**/*.csv" -output cleaned.csv

    # Aggressive normalization
    complaintrag clean -input complaints.csv -output cleaned.csv -strip-special
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if len(inputs) == 0 && cfg.Data.Input != "" {
		inputs = append(inputs, cfg.Data.Input)
	}
	if len(inputs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no input files specified (use -input or data.input in config)\n\n")
		fs.Usage()
		os.Exit(1)
	}
	if output == "" {
		output = cfg.Data.Output
	}
	if output == "" {
		fmt.Fprintf(os.Stderr, "Error: no output path specified (use -output or data.output in config)\n\n")
		fs.Usage()
		os.Exit(1)
	}
	if batchSize <= 0 {
		batchSize = cfg.Data.BatchSize
	}
	if !stripSpecial {
		stripSpecial = cfg.Chunking.StripSpecial
	}

	files, err := expandInputs(inputs)
	if err != nil {
		log.Fatalf("Failed to resolve input files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No files matched the input patterns: %v", inputs)
	}

	outFile, err := os.Create(output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer outFile.Close()

	writer := ingest.NewCleanedWriter(outFile)
	filter := ingest.NewFilter(stripSpecial)

	for _, file := range files {
		log.Printf("Cleaning %s", file)
		if err := cleanFile(file, batchSize, filter, writer); err != nil {
			log.Fatalf("Failed to clean %s: %v", file, err)
		}
	}

	if err := writer.Flush(); err != nil {
		log.Fatalf("Failed to finalize output: %v", err)
	}

	printCleanStats(filter.Stats(), output)
}

// expandInputs resolves each pattern through doublestar globbing. A
// pattern with no glob metacharacters passes through as a literal path.
func expandInputs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if matches == nil {
			// Literal path that exists but matched nothing as a glob
			if _, statErr := os.Stat(pattern); statErr == nil {
				matches = []string{pattern}
			}
		}
		files = append(files, matches...)
	}
	return files, nil
}

func cleanFile(path string, batchSize int, filter *ingest.Filter, writer *ingest.CleanedWriter) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := ingest.NewBatchReader(f, batchSize)
	if err != nil {
		return err
	}

	stop := progress.StartSpinner(progress.Enabled(), "cleaning")
	defer stop()

	for {
		batch, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		records, err := filter.FilterBatch(batch)
		if err != nil {
			return err
		}
		if err := writer.WriteBatch(records); err != nil {
			return err
		}
	}
}

func printCleanStats(stats *ingest.Stats, output string) {
	fmt.Printf("Cleaning complete: %s\n\n", output)
	fmt.Printf("  Batches processed:   %d\n", stats.BatchesProcessed)
	fmt.Printf("  Rows loaded:         %d\n", stats.RowsLoaded)
	fmt.Printf("  Rows kept:           %d\n", stats.RowsKept)
	fmt.Printf("  Dropped (category):  %d\n", stats.DroppedWrongCategory)
	fmt.Printf("  Dropped (narrative): %d\n", stats.DroppedNoNarrative)
	fmt.Println()
	fmt.Println("  Kept rows by category:")
	for _, cat := range ingest.Categories() {
		if n, ok := stats.PerCategory[cat]; ok {
			fmt.Printf("    %-35s %d\n", cat, n)
		}
	}
}
