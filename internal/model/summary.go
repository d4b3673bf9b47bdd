package model

// SectionSummary pairs a detected section with its abstractive summary.
type SectionSummary struct {
	SectionName string `json:"section_name"`
	Summary     string `json:"summary"`
}

// ReportSummary is the full summarisation output for one document.
type ReportSummary struct {
	ExecutiveSummary string           `json:"executive_summary"`
	SectionSummaries []SectionSummary `json:"section_summaries"`
	Commitments      []string         `json:"commitments"`
}
