package textgen

import (
	"context"
	"strings"
)

// Extractive is the offline fallback: it keeps leading sentences up to
// the length budget. No model, no network, fully deterministic.
type Extractive struct{}

func NewExtractive() Extractive {
	return Extractive{}
}

func (Extractive) Summarise(_ context.Context, text string, maxTokens int) (string, error) {
	maxChars := maxTokens * 4
	text = strings.TrimSpace(text)
	if len(text) <= maxChars {
		return text, nil
	}

	var b strings.Builder
	for _, sentence := range strings.SplitAfter(text, ". ") {
		if b.Len()+len(sentence) > maxChars {
			break
		}
		b.WriteString(sentence)
	}
	if b.Len() == 0 {
		// A single oversized sentence: hard cut.
		return strings.TrimSpace(text[:maxChars]), nil
	}
	return strings.TrimSpace(b.String()), nil
}
