package model

// DiscrepancySeverity grades the gap between reported and calculated values.
type DiscrepancySeverity string

const (
	DiscrepancyMinor    DiscrepancySeverity = "minor"
	DiscrepancyModerate DiscrepancySeverity = "moderate"
	DiscrepancyMajor    DiscrepancySeverity = "major"
)

// VerificationStatus is the outcome for one compared metric.
type VerificationStatus string

const (
	StatusVerified      VerificationStatus = "verified"
	StatusDiscrepancy   VerificationStatus = "discrepancy"
	StatusUnverified    VerificationStatus = "unverified"
	StatusNotCalculated VerificationStatus = "not_calculated"
)

// Discrepancy is a material difference between a reported figure and the
// independently calculated one, both in tonnes CO2e.
type Discrepancy struct {
	MetricType           string              `json:"metric_type"`
	ReportedValue        float64             `json:"reported_value"`
	ReportedUnit         string              `json:"reported_unit"`
	CalculatedValue      float64             `json:"calculated_value"`
	CalculatedUnit       string              `json:"calculated_unit"`
	DifferenceAbsolute   float64             `json:"difference_absolute"`
	DifferencePercentage float64             `json:"difference_percentage"`
	Severity             DiscrepancySeverity `json:"severity"`
	PossibleExplanations []string            `json:"possible_explanations"`
}

// VerifiedMetric records the comparison outcome for one reported metric.
// CalculatedValue is nil when no calculated bucket matched.
type VerifiedMetric struct {
	MetricType      string             `json:"metric_type"`
	ReportedValue   float64            `json:"reported_value"`
	CalculatedValue *float64           `json:"calculated_value"`
	Status          VerificationStatus `json:"status"`
	Confidence      float64            `json:"confidence"`
}

// VerificationResult is the full reconciliation between NLP-extracted
// metrics and calculated emissions.
type VerificationResult struct {
	MatchScore       float64          `json:"match_score"`
	Discrepancies    []Discrepancy    `json:"discrepancies"`
	VerifiedMetrics  []VerifiedMetric `json:"verified_metrics"`
	Summary          string           `json:"summary"`
	Recommendations  []string         `json:"recommendations"`
	DataCompleteness float64          `json:"data_completeness"`
}
