// Package summary condenses report sections into an executive summary
// and pulls out dated commitments. Generation goes through a pluggable
// textgen backend; commitment extraction is pure regex and always works.
package summary

import (
	"context"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/carbon-compass/compass/internal/model"
	"github.com/carbon-compass/compass/pkg/textgen"
)

const (
	// modelWindow is the input budget per generation call, in tokens.
	modelWindow = 1024
	// avgCharsPerToken approximates tokens from characters; backends
	// truncate precisely.
	avgCharsPerToken = 4

	sectionSummaryTokens   = 150
	executiveSummaryTokens = 200

	// minCommitmentLength drops degenerate matches like a bare "pledge to".
	minCommitmentLength = 15
)

var commitmentRe = regexp.MustCompile(`(?i)(` + strings.Join([]string{
	`commit to .*? by \d{4}`,
	`target of .*? by \d{4}`,
	`achieve net[- ]zero by \d{4}`,
	`will reduce .*? by .*?(?:\d{4}|within \d+ years)`,
	`pledge to .*?\d{4}`,
}, "|") + `)`)

// Summariser generates report summaries through a textgen backend.
type Summariser struct {
	client textgen.Client
	log    *zap.Logger
}

func New(client textgen.Client) *Summariser {
	return &Summariser{
		client: client,
		log:    zap.L().With(zap.String("component", "summary")),
	}
}

// SummariseSection summarises one section's text. Sections longer than
// the model window are chunked, summarised piecewise and folded once.
func (s *Summariser) SummariseSection(ctx context.Context, text string, maxTokens int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	chunks := chunkForModel(text, modelWindow)
	summaries := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out, err := s.client.Summarise(ctx, chunk, maxTokens)
		if err != nil {
			return "", eris.Wrap(err, "summary: summarise chunk")
		}
		summaries = append(summaries, out)
	}
	if len(summaries) == 1 {
		return strings.TrimSpace(summaries[0]), nil
	}

	combined, err := s.client.Summarise(ctx, strings.Join(summaries, " "), maxTokens)
	if err != nil {
		return "", eris.Wrap(err, "summary: fold summaries")
	}
	return strings.TrimSpace(combined), nil
}

// SummariseFullReport summarises every section and the document as a
// whole, and extracts commitments from the combined text.
func (s *Summariser) SummariseFullReport(ctx context.Context, sections []model.SectionText) (model.ReportSummary, error) {
	sectionSummaries := make([]model.SectionSummary, 0, len(sections))
	parts := make([]string, 0, len(sections))

	for _, section := range sections {
		summarised, err := s.SummariseSection(ctx, section.Text, sectionSummaryTokens)
		if err != nil {
			return model.ReportSummary{}, eris.Wrapf(err, "summary: section %q", section.Name)
		}
		sectionSummaries = append(sectionSummaries, model.SectionSummary{
			SectionName: section.Name,
			Summary:     summarised,
		})
		parts = append(parts, section.Text)
	}

	combined := strings.Join(parts, "\n")
	executive, err := s.SummariseSection(ctx, combined, executiveSummaryTokens)
	if err != nil {
		return model.ReportSummary{}, eris.Wrap(err, "summary: executive summary")
	}

	return model.ReportSummary{
		ExecutiveSummary: executive,
		SectionSummaries: sectionSummaries,
		Commitments:      ExtractKeyCommitments(combined),
	}, nil
}

// ExtractKeyCommitments finds dated target statements in text. Matches
// are deduplicated exactly; near-duplicates are kept since wording
// differences matter to reviewers.
func ExtractKeyCommitments(text string) []string {
	var commitments []string
	seen := map[string]bool{}
	for _, m := range commitmentRe.FindAllString(text, -1) {
		snippet := strings.TrimSpace(m)
		if len(snippet) < minCommitmentLength || seen[snippet] {
			continue
		}
		seen[snippet] = true
		commitments = append(commitments, snippet)
	}
	return commitments
}

// chunkForModel splits text into pieces that fit the model window,
// breaking on sentence boundaries.
func chunkForModel(text string, maxTokens int) []string {
	maxChars := maxTokens * avgCharsPerToken

	var chunks []string
	current := ""
	for _, part := range strings.Split(text, ". ") {
		sentence := strings.TrimSpace(part)
		if sentence == "" {
			continue
		}
		if !strings.HasSuffix(sentence, ".") {
			sentence += "."
		}
		if current != "" && len(current)+1+len(sentence) > maxChars {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
