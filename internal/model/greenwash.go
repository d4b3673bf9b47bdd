package model

// IndicatorType names a greenwashing heuristic.
type IndicatorType string

const (
	IndicatorVagueClaim       IndicatorType = "VAGUE_CLAIM"
	IndicatorNoBaseline       IndicatorType = "NO_BASELINE"
	IndicatorNoTimeline       IndicatorType = "NO_TIMELINE"
	IndicatorNoProof          IndicatorType = "NO_PROOF"
	IndicatorAspirationalOnly IndicatorType = "ASPIRATIONAL_ONLY"
	IndicatorCherryPicking    IndicatorType = "CHERRY_PICKING"
)

// Severity grades a greenwashing flag.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// GreenwashingFlag is one suspicious passage with its diagnosis.
type GreenwashingFlag struct {
	IndicatorType IndicatorType `json:"indicator_type"`
	Text          string        `json:"text"`
	Explanation   string        `json:"explanation"`
	Severity      Severity      `json:"severity"`
	Confidence    float64       `json:"confidence"`
}

// GreenwashingResult aggregates all flags for a document. RiskScore is
// 0-100, higher meaning more greenwashing signal.
type GreenwashingResult struct {
	Flags     []GreenwashingFlag `json:"flags"`
	RiskScore float64            `json:"risk_score"`
}
