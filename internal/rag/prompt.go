// Package rag assembles grounded prompts from retrieved complaint chunks,
// calls the completion model, and post-processes the answer.
package rag

import (
	"fmt"
	"strings"

	"github.com/creditrust/complaintrag/internal/errs"
)

// evidenceDelimiter separates complaint excerpts inside the prompt.
const evidenceDelimiter = "\n---\n"

// NoAnswerSentinel is the exact refusal the model is instructed to emit
// when the supplied excerpts cannot support an answer. Downstream code
// matches it verbatim.
const NoAnswerSentinel = "The available complaint data does not provide enough information to answer this question."

// Assembler builds completion prompts under a hard context budget.
type Assembler struct {
	// MaxContextChars caps the combined size of the evidence section,
	// delimiters included.
	MaxContextChars int
}

func NewAssembler(maxContextChars int) *Assembler {
	if maxContextChars <= 0 {
		maxContextChars = 3000
	}
	return &Assembler{MaxContextChars: maxContextChars}
}

// BuildPrompt joins as many evidence documents as fit the budget, in the
// order given, and wraps them with the question and answering rules.
// Documents are admitted whole or not at all; admission stops at the
// first document that would overflow the budget. It returns the prompt
// and how many documents were admitted.
func (a *Assembler) BuildPrompt(question string, documents []string) (string, int, error) {
	if strings.TrimSpace(question) == "" {
		return "", 0, errs.NewInputError("", "question must not be empty")
	}
	if len(documents) == 0 {
		return "", 0, errs.NewInputError("", "no evidence documents to assemble")
	}

	var evidence strings.Builder
	admitted := 0

	for _, doc := range documents {
		cost := len(doc)
		if admitted > 0 {
			cost += len(evidenceDelimiter)
		}
		if evidence.Len()+cost > a.MaxContextChars {
			break
		}
		if admitted > 0 {
			evidence.WriteString(evidenceDelimiter)
		}
		evidence.WriteString(doc)
		admitted++
	}

	prompt := fmt.Sprintf(`You are a financial analyst assistant for CrediTrust. Answer questions about customer complaints using only the complaint excerpts provided below.

Rules:
1. Base your answer strictly on the provided excerpts. Do not use outside knowledge.
2. If the excerpts do not contain enough information to answer, reply exactly: %s
3. Be concise and factual.

Complaint excerpts:
%s

Question: %s

Answer:`, NoAnswerSentinel, evidence.String(), question)

	return prompt, admitted, nil
}
