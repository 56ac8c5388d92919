package rag

import "testing"

func TestFinalizeAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{
			name:   "substantive answer passes through",
			answer: "Customers report duplicate charges on credit card statements.",
			want:   "Customers report duplicate charges on credit card statements.",
		},
		{
			name:   "hedged refusal is normalized",
			answer: "Unfortunately there is not enough information in the excerpts to say.",
			want:   NoAnswerSentinel,
		},
		{
			name:   "hedge detection is case-insensitive",
			answer: "INSUFFICIENT DATA to determine the cause.",
			want:   NoAnswerSentinel,
		},
		{
			name:   "context hedge",
			answer: "I cannot answer based on provided context.",
			want:   NoAnswerSentinel,
		},
		{
			name:   "exact sentinel stays itself",
			answer: NoAnswerSentinel,
			want:   NoAnswerSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinalizeAnswer(tt.answer)
			if got != tt.want {
				t.Errorf("FinalizeAnswer(%q) = %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestIsNoAnswer(t *testing.T) {
	if !IsNoAnswer(NoAnswerSentinel) {
		t.Error("expected sentinel to be recognized")
	}
	if IsNoAnswer("a real answer") {
		t.Error("expected substantive answer not to match")
	}
}
