// Package textgen provides interchangeable text summarisation backends:
// a hosted inference endpoint, the Anthropic API, or a local extractive
// fallback that needs no network at all.
package textgen

import "context"

// Client condenses text. maxTokens bounds the length of the generated
// summary, approximated at four characters per token for backends that
// think in characters.
type Client interface {
	Summarise(ctx context.Context, text string, maxTokens int) (string, error)
}
