package rag

import (
	"context"

	"github.com/creditrust/complaintrag/internal/retrieval"
)

// Searcher retrieves ranked evidence for a question.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Result, error)
}

// Completer produces a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Evaluator judges an answer against its evidence.
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, question, answer string, evidence []string) EvalResult
}

// Answer is the full outcome of one question.
type Answer struct {
	Text     string
	Evidence []retrieval.Result
	// Admitted counts how many evidence documents fit the prompt budget.
	Admitted   int
	Evaluation *EvalResult
}

// Pipeline wires retrieval, prompt assembly, completion and optional
// self-evaluation into a single ask operation.
type Pipeline struct {
	searcher  Searcher
	assembler *Assembler
	completer Completer
	evaluator Evaluator
}

func NewPipeline(searcher Searcher, assembler *Assembler, completer Completer, evaluator Evaluator) *Pipeline {
	return &Pipeline{
		searcher:  searcher,
		assembler: assembler,
		completer: completer,
		evaluator: evaluator,
	}
}

// Ask answers a question from the indexed complaints. An empty retrieval
// result short-circuits to the refusal sentinel without a completion
// call; retrieval and completion failures propagate as errors so callers
// can tell infrastructure trouble apart from an honest "no answer".
// Self-evaluation runs only when requested and never fails the ask.
func (p *Pipeline) Ask(ctx context.Context, question string, topK int, evaluate bool) (*Answer, error) {
	evidence, err := p.searcher.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	if len(evidence) == 0 {
		return &Answer{Text: NoAnswerSentinel, Evidence: evidence}, nil
	}

	documents := make([]string, len(evidence))
	for i, ev := range evidence {
		documents[i] = ev.Document
	}

	prompt, admitted, err := p.assembler.BuildPrompt(question, documents)
	if err != nil {
		return nil, err
	}

	completion, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Text:     FinalizeAnswer(completion),
		Evidence: evidence,
		Admitted: admitted,
	}

	if evaluate && p.evaluator != nil {
		result := p.evaluator.EvaluateAnswer(ctx, question, answer.Text, documents[:admitted])
		answer.Evaluation = &result
	}

	return answer, nil
}
