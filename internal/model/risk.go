package model

// RiskLevel is a categorical band over the overall risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskComponents are the five sub-scores, each 0-100 with higher = better.
type RiskComponents struct {
	Transparency float64 `json:"transparency"`
	Commitment   float64 `json:"commitment"`
	Credibility  float64 `json:"credibility"`
	DataQuality  float64 `json:"data_quality"`
	Verification float64 `json:"verification"`
}

// RiskScore is the composite assessment. OverallScore is 0-100 with higher
// meaning more risk (the inverse of the weighted component average).
type RiskScore struct {
	OverallScore    float64        `json:"overall_score"`
	RiskLevel       RiskLevel      `json:"risk_level"`
	Components      RiskComponents `json:"components"`
	Recommendations []string       `json:"recommendations"`
}
