package ingest

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^A-Za-z0-9.,!?'" ]+`)
)

// Normalizer performs minimal, lossless-as-possible text cleaning for
// embedding readiness. It is stateless; the zero value keeps special
// characters.
type Normalizer struct {
	// StripSpecial removes characters outside A-Za-z0-9.,!?'" and space.
	StripSpecial bool
}

// Clean collapses whitespace runs to a single space, trims, lowercases and
// optionally strips special characters. Idempotent: Clean(Clean(x)) ==
// Clean(x). Missing input maps to the empty string, never an error.
func (n Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	if n.StripSpecial {
		// Stripping may leave adjacent spaces behind; collapse again so
		// the function stays idempotent.
		text = specialRe.ReplaceAllString(text, "")
		text = whitespaceRe.ReplaceAllString(text, " ")
	}
	return strings.ToLower(strings.TrimSpace(text))
}
