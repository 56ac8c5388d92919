package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/creditrust/complaintrag/internal/config"
	"github.com/creditrust/complaintrag/internal/embedding"
	"github.com/creditrust/complaintrag/internal/progress"
	"github.com/creditrust/complaintrag/internal/rag"
	"github.com/creditrust/complaintrag/internal/retrieval"
	"github.com/creditrust/complaintrag/internal/store"
)

// evidencePreviewChars caps how much of each cited narrative is echoed.
const evidencePreviewChars = 300

// handleAsk implements the ask subcommand
func handleAsk(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)

	var topK int
	var evaluate bool
	var collection string

	fs.IntVar(&topK, "k", 0, "Number of evidence chunks to retrieve")
	fs.BoolVar(&evaluate, "evaluate", false, "Run self-evaluation on the answer")
	fs.StringVar(&collection, "collection", "", "Collection name to query")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    complaintrag ask [options] "<question>"

DESCRIPTION:
    Answer a question from the indexed complaint narratives. The answer
    is grounded strictly in retrieved complaint excerpts; when the
    excerpts cannot support an answer the tool says so rather than
    speculating. Without a question argument on a terminal, an
    interactive prompt loop starts.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # One-shot question
    complaintrag ask "Why are customers unhappy with BNPL?"

    # More evidence, with self-evaluation
    complaintrag ask -k 10 -evaluate "What billing problems do credit card holders report?"

    # Interactive session
    complaintrag ask
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if topK < 0 {
		log.Fatalf("-k must not be negative, got %d", topK)
	}
	if topK == 0 {
		topK = cfg.Search.DefaultTopK
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

	generator, err := rag.NewGenerator(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create answer generator: %v", err)
	}

	pipeline := rag.NewPipeline(
		retrieval.New(idx, embedService, cfg.Search.DefaultTopK),
		rag.NewAssembler(cfg.Prompt.MaxContextChars),
		generator,
		generator,
	)

	ctx := context.Background()

	if fs.NArg() >= 1 {
		askOnce(ctx, pipeline, fs.Arg(0), topK, evaluate)
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Error: question is required when stdin is not a terminal\n\n")
		fs.Usage()
		os.Exit(1)
	}

	runInteractive(ctx, pipeline, topK, evaluate)
}

func askOnce(ctx context.Context, pipeline *rag.Pipeline, question string, topK int, evaluate bool) {
	stop := progress.StartSpinner(progress.Enabled(), "thinking")
	answer, err := pipeline.Ask(ctx, question, topK, evaluate)
	stop()
	if err != nil {
		log.Fatalf("Failed to answer question: %v", err)
	}
	printAnswer(answer)
}

func runInteractive(ctx context.Context, pipeline *rag.Pipeline, topK int, evaluate bool) {
	fmt.Println("Ask questions about the indexed complaints. Empty line or Ctrl-D exits.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return
		}

		stop := progress.StartSpinner(progress.Enabled(), "thinking")
		answer, err := pipeline.Ask(ctx, question, topK, evaluate)
		stop()
		if err != nil {
			log.Printf("Failed to answer question: %v", err)
			continue
		}
		printAnswer(answer)
	}
}

// previewText truncates s to at most max characters, keeping rune
// boundaries intact and appending an ellipsis when anything was cut.
func previewText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func printAnswer(answer *rag.Answer) {
	fmt.Printf("\n%s\n", answer.Text)

	if len(answer.Evidence) == 0 {
		fmt.Println("\n(no relevant complaint excerpts were found)")
		return
	}
	if rag.IsNoAnswer(answer.Text) {
		return
	}

	fmt.Println("\nEvidence:")
	shown := len(answer.Evidence)
	if shown > 2 {
		shown = 2
	}
	for _, ev := range answer.Evidence[:shown] {
		fmt.Printf("  %d. [%s] complaint %s (score %.3f)\n     %s\n",
			ev.Rank, ev.Metadata.Category, ev.Metadata.RecordID, ev.Score,
			previewText(ev.Document, evidencePreviewChars))
	}

	if answer.Evaluation != nil {
		j := answer.Evaluation.Judgment
		fmt.Println("\nSelf-evaluation:")
		if answer.Evaluation.Degraded {
			fmt.Printf("  (degraded: %s)\n", answer.Evaluation.Reason)
		}
		if j.Relevance != "" {
			fmt.Printf("  Relevance:     %s\n", j.Relevance)
		}
		if j.Accuracy != "" {
			fmt.Printf("  Accuracy:      %s\n", j.Accuracy)
		}
		if j.Completeness != "" {
			fmt.Printf("  Completeness:  %s\n", j.Completeness)
		}
		fmt.Printf("  Quality score: %s\n", j.QualityScore)
		if j.Comments != "" {
			fmt.Printf("  Comments:      %s\n", j.Comments)
		}
	}
}
