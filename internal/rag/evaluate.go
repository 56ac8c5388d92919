package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Evaluation is the model's structured judgment of its own answer. Field
// names mirror the JSON keys the evaluation prompt demands.
type Evaluation struct {
	Relevance    string `json:"Relevance"`
	Accuracy     string `json:"Accuracy"`
	Completeness string `json:"Completeness"`
	QualityScore string `json:"Quality Score"`
	Comments     string `json:"Comments"`
}

// EvalResult carries the judgment plus whether it had to be degraded.
// Degraded judgments get the floor quality score and a Reason explaining
// what went wrong, rather than hiding the failure.
type EvalResult struct {
	Judgment Evaluation
	Degraded bool
	Reason   string
}

const evalPromptTemplate = `You are evaluating the quality of an answer produced from customer complaint excerpts.

Question: %s

Answer: %s

Complaint excerpts used:
%s

Rate the answer and respond with a single JSON object using exactly these keys:
{"Relevance": "...", "Accuracy": "...", "Completeness": "...", "Quality Score": "<1-10>", "Comments": "..."}`

// degradedEvaluation is the floor judgment used when the evaluator call
// fails or returns something unusable.
func degradedEvaluation(reason string) EvalResult {
	return EvalResult{
		Judgment: Evaluation{
			QualityScore: "1",
			Comments:     "evaluation unavailable",
		},
		Degraded: true,
		Reason:   reason,
	}
}

// EvaluateAnswer asks the completion model to judge an answer against the
// evidence it was built from. Evaluator failures never fail the caller:
// they come back as a degraded result with the floor score.
func (g *Generator) EvaluateAnswer(ctx context.Context, question, answer string, evidence []string) EvalResult {
	prompt := fmt.Sprintf(evalPromptTemplate, question, answer, strings.Join(evidence, evidenceDelimiter))

	raw, err := g.Complete(ctx, prompt)
	if err != nil {
		return degradedEvaluation(fmt.Sprintf("evaluator call failed: %v", err))
	}

	judgment, err := parseEvaluation(raw)
	if err != nil {
		return degradedEvaluation(fmt.Sprintf("unparseable evaluator output: %v", err))
	}

	if judgment.QualityScore == "" {
		judgment.QualityScore = "1"
	}

	return EvalResult{Judgment: judgment}
}

// parseEvaluation extracts the JSON object from the model output. Models
// often wrap the object in prose or markdown fences, so it parses the
// span from the first '{' to the last '}'.
func parseEvaluation(raw string) (Evaluation, error) {
	var judgment Evaluation

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return judgment, fmt.Errorf("no JSON object in output")
	}

	if err := json.Unmarshal([]byte(raw[start:end+1]), &judgment); err != nil {
		return judgment, fmt.Errorf("failed to parse evaluation JSON: %w", err)
	}

	return judgment, nil
}
