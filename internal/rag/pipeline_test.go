package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/creditrust/complaintrag/internal/retrieval"
)

type fakeSearcher struct {
	results []retrieval.Result
	err     error
}

func (f fakeSearcher) Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Result, error) {
	return f.results, f.err
}

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeEvaluator struct {
	result EvalResult
	calls  int
}

func (f *fakeEvaluator) EvaluateAnswer(ctx context.Context, question, answer string, evidence []string) EvalResult {
	f.calls++
	return f.result
}

func someEvidence() []retrieval.Result {
	return []retrieval.Result{
		{Document: "billing dispute narrative", Rank: 1, Score: 0.9},
		{Document: "late fee narrative", Rank: 2, Score: 0.7},
	}
}

func TestAskHappyPath(t *testing.T) {
	completer := &fakeCompleter{reply: "Customers dispute duplicate billing."}
	evaluator := &fakeEvaluator{result: EvalResult{Judgment: Evaluation{QualityScore: "7"}}}
	p := NewPipeline(fakeSearcher{results: someEvidence()}, NewAssembler(3000), completer, evaluator)

	answer, err := p.Ask(context.Background(), "why do customers complain", 5, true)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer.Text != "Customers dispute duplicate billing." {
		t.Errorf("unexpected answer text: %q", answer.Text)
	}
	if len(answer.Evidence) != 2 || answer.Admitted != 2 {
		t.Errorf("expected 2 evidence docs admitted, got %d/%d", len(answer.Evidence), answer.Admitted)
	}
	if answer.Evaluation == nil || answer.Evaluation.Judgment.QualityScore != "7" {
		t.Errorf("expected evaluation attached, got %+v", answer.Evaluation)
	}
	if evaluator.calls != 1 {
		t.Errorf("expected 1 evaluator call, got %d", evaluator.calls)
	}
}

func TestAskEmptyRetrievalShortCircuits(t *testing.T) {
	completer := &fakeCompleter{reply: "should never be used"}
	p := NewPipeline(fakeSearcher{}, NewAssembler(3000), completer, nil)

	answer, err := p.Ask(context.Background(), "anything", 5, false)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer.Text != NoAnswerSentinel {
		t.Errorf("expected sentinel answer, got %q", answer.Text)
	}
	if completer.calls != 0 {
		t.Errorf("expected no completion call on empty retrieval, got %d", completer.calls)
	}
}

func TestAskNormalizesHedgedRefusal(t *testing.T) {
	completer := &fakeCompleter{reply: "There is not enough information here to say."}
	p := NewPipeline(fakeSearcher{results: someEvidence()}, NewAssembler(3000), completer, nil)

	answer, err := p.Ask(context.Background(), "question", 5, false)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer.Text != NoAnswerSentinel {
		t.Errorf("expected hedge normalized to sentinel, got %q", answer.Text)
	}
}

func TestAskPropagatesFailures(t *testing.T) {
	retrieveErr := errors.New("store unavailable")
	p := NewPipeline(fakeSearcher{err: retrieveErr}, NewAssembler(3000), &fakeCompleter{}, nil)
	if _, err := p.Ask(context.Background(), "q", 5, false); !errors.Is(err, retrieveErr) {
		t.Errorf("expected retrieval error to propagate, got %v", err)
	}

	completeErr := errors.New("llm down")
	p = NewPipeline(fakeSearcher{results: someEvidence()}, NewAssembler(3000), &fakeCompleter{err: completeErr}, nil)
	if _, err := p.Ask(context.Background(), "q", 5, false); !errors.Is(err, completeErr) {
		t.Errorf("expected completion error to propagate, got %v", err)
	}
}

func TestAskSkipsEvaluationWhenDisabled(t *testing.T) {
	evaluator := &fakeEvaluator{}
	p := NewPipeline(fakeSearcher{results: someEvidence()}, NewAssembler(3000), &fakeCompleter{reply: "ok"}, evaluator)

	answer, err := p.Ask(context.Background(), "q", 5, false)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer.Evaluation != nil {
		t.Error("expected no evaluation when disabled")
	}
	if evaluator.calls != 0 {
		t.Errorf("expected 0 evaluator calls, got %d", evaluator.calls)
	}
}
