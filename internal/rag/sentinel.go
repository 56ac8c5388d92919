package rag

import "strings"

// hedgePhrases are refusal formulations models tend to improvise instead
// of the exact sentinel. Any answer containing one is normalized.
var hedgePhrases = []string{
	"not enough information",
	"insufficient data",
	"cannot answer based on provided context",
}

// FinalizeAnswer normalizes hedged refusals to the canonical sentinel so
// callers can match refusals by string equality. Substantive answers pass
// through unchanged.
func FinalizeAnswer(answer string) string {
	lower := strings.ToLower(answer)
	for _, phrase := range hedgePhrases {
		if strings.Contains(lower, phrase) {
			return NoAnswerSentinel
		}
	}
	return answer
}

// IsNoAnswer reports whether a finalized answer is the refusal sentinel.
func IsNoAnswer(answer string) bool {
	return answer == NoAnswerSentinel
}
