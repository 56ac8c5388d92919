package rag

import (
	"strings"
	"testing"
)

func TestBuildPromptContainsQuestionAndEvidence(t *testing.T) {
	a := NewAssembler(3000)

	prompt, admitted, err := a.BuildPrompt("Why are customers unhappy?", []string{"doc one", "doc two"})
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	if admitted != 2 {
		t.Fatalf("expected 2 admitted documents, got %d", admitted)
	}
	if !strings.Contains(prompt, "Why are customers unhappy?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(prompt, "doc one"+evidenceDelimiter+"doc two") {
		t.Error("prompt missing delimiter-joined evidence")
	}
	if !strings.Contains(prompt, NoAnswerSentinel) {
		t.Error("prompt missing the refusal instruction")
	}
}

func TestBuildPromptValidation(t *testing.T) {
	a := NewAssembler(3000)

	if _, _, err := a.BuildPrompt("  ", []string{"doc"}); err == nil {
		t.Error("expected error for blank question")
	}
	if _, _, err := a.BuildPrompt("question", nil); err == nil {
		t.Error("expected error for empty evidence")
	}
}

func TestBuildPromptBudget(t *testing.T) {
	tests := []struct {
		name         string
		budget       int
		documents    []string
		wantAdmitted int
	}{
		{
			name:         "all fit",
			budget:       100,
			documents:    []string{"aaaa", "bbbb"},
			wantAdmitted: 2,
		},
		{
			name:         "second overflows",
			budget:       10,
			documents:    []string{"aaaa", "bbbbbbbb"},
			wantAdmitted: 1,
		},
		{
			name:         "first overflows",
			budget:       3,
			documents:    []string{"aaaa", "bb"},
			wantAdmitted: 0,
		},
		{
			name:         "delimiter counts against budget",
			budget:       9, // 4 + 5-byte delimiter + 4 = 13 > 9
			documents:    []string{"aaaa", "bbbb"},
			wantAdmitted: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(tt.budget)

			prompt, admitted, err := a.BuildPrompt("q", tt.documents)
			if err != nil {
				t.Fatalf("BuildPrompt failed: %v", err)
			}

			if admitted != tt.wantAdmitted {
				t.Errorf("expected %d admitted, got %d", tt.wantAdmitted, admitted)
			}
			// Admitted documents appear whole, never truncated.
			for i := 0; i < admitted; i++ {
				if !strings.Contains(prompt, tt.documents[i]) {
					t.Errorf("admitted document %d truncated or missing", i)
				}
			}
			// Rejected documents are absent entirely.
			for i := admitted; i < len(tt.documents); i++ {
				if strings.Contains(prompt, tt.documents[i]) {
					t.Errorf("rejected document %d leaked into prompt", i)
				}
			}
		})
	}
}
