package ingest

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		strip bool
		in    string
		want  string
	}{
		{
			name: "collapses whitespace and lowercases",
			in:   "I was  charged\t\tTWICE\n for one purchase",
			want: "i was charged twice for one purchase",
		},
		{
			name: "trims surrounding whitespace",
			in:   "   some narrative   ",
			want: "some narrative",
		},
		{
			name: "empty input stays empty",
			in:   "",
			want: "",
		},
		{
			name: "whitespace-only input becomes empty",
			in:   " \t\n ",
			want: "",
		},
		{
			name: "keeps special characters by default",
			in:   "charged $500 (twice!)",
			want: "charged $500 (twice!)",
		},
		{
			name:  "strips special characters when asked",
			strip: true,
			in:    "charged $500 (twice!)",
			want:  "charged 500 twice!",
		},
		{
			name:  "stripping does not leave double spaces",
			strip: true,
			in:    "a @ b",
			want:  "a b",
		},
		{
			name:  "punctuation needed by sentences survives stripping",
			strip: true,
			in:    `They said "no refund." Why?`,
			want:  `they said "no refund." why?`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalizer{StripSpecial: tt.strip}
			got := n.Clean(tt.in)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"I was  charged\t\tTWICE\n for one purchase",
		"charged $500 (twice!) on 01/02/2024 @ midnight",
		"   UPPER and lower   MIXED   ",
		"unicode éè and emoji \U0001f600 content",
	}

	for _, strip := range []bool{false, true} {
		n := Normalizer{StripSpecial: strip}
		for _, in := range inputs {
			once := n.Clean(in)
			twice := n.Clean(once)
			if once != twice {
				t.Errorf("Clean not idempotent (strip=%v) for %q: %q != %q", strip, in, once, twice)
			}
		}
	}
}
