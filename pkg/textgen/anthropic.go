package textgen

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

const summarisePrompt = "Summarise the following sustainability report text. " +
	"Keep concrete figures, units, years and named frameworks. " +
	"Reply with the summary only.\n\n"

// Anthropic summarises text through the Anthropic Messages API.
type Anthropic struct {
	client sdk.Client
	model  string
}

// NewAnthropic creates an Anthropic backend. An empty model selects a
// small default suitable for summarisation.
func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *Anthropic) Summarise(ctx context.Context, text string, maxTokens int) (string, error) {
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(summarisePrompt + text)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "textgen: anthropic summarise")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", eris.New("textgen: anthropic returned no text content")
	}
	return summary, nil
}
