package model

import "time"

// AnalysisResult aggregates every pipeline stage's output for one document.
type AnalysisResult struct {
	ID          string              `json:"id"`
	Filename    string              `json:"filename"`
	Pdf         PdfExtractionResult `json:"pdf"`
	ChunksCount int                 `json:"chunks_count"`
	Metrics     MetricExtraction    `json:"metrics"`
	Greenwash   GreenwashingResult  `json:"greenwashing"`
	Summary     ReportSummary       `json:"summary"`
	Risk        RiskScore           `json:"risk"`
	Timings     map[string]float64  `json:"timings"` // stage -> seconds
	CreatedAt   time.Time           `json:"created_at"`
}
