// Package risk scores a report's environmental risk from its disclosures,
// commitments and greenwashing signals. Component scores run 0-100 where
// higher is better; the overall score inverts them so higher means more
// risk.
package risk

import (
	"math"
	"regexp"

	"github.com/carbon-compass/compass/internal/model"
)

var verificationRe = regexp.MustCompile(
	`(?i)\b(gr[il]|cdp|tcfd|sbti|iso\s*14001|assurance|independent auditor|limited assurance)\b`)

// Scorer computes risk scores. The zero value is ready to use.
type Scorer struct{}

func New() *Scorer {
	return &Scorer{}
}

// Score combines the five component scores into an overall risk rating.
// Commitments are the extracted target statements for the same document.
func (s *Scorer) Score(fullText string, metrics model.MetricExtraction, greenwashing model.GreenwashingResult, commitments []string) model.RiskScore {
	components := model.RiskComponents{
		Transparency: scoreTransparency(metrics),
		Commitment:   scoreCommitment(commitments),
		Credibility:  scoreCredibility(greenwashing),
		DataQuality:  scoreDataQuality(metrics),
		Verification: scoreVerification(fullText),
	}

	overall := overallRisk(components)
	level := riskLevel(overall)

	return model.RiskScore{
		OverallScore:    math.Round(overall*100) / 100,
		RiskLevel:       level,
		Components:      components,
		Recommendations: recommendations(components, level),
	}
}

// scoreTransparency uses the breadth of distinct metric types disclosed
// as a proxy for transparency.
func scoreTransparency(metrics model.MetricExtraction) float64 {
	disclosed := metrics.TypesDisclosed()
	score := float64(len(disclosed)) / float64(len(model.MetricTypes)) * 100
	return clamp(score)
}

// scoreCommitment rewards concrete, dated commitments. No commitments at
// all is a floor score, not zero; silence is penalised but distinguishable
// from active misdirection.
func scoreCommitment(commitments []string) float64 {
	if len(commitments) == 0 {
		return 20
	}
	return math.Min(100, 40+float64(len(commitments))*10)
}

func scoreCredibility(greenwashing model.GreenwashingResult) float64 {
	return math.Max(0, 100-greenwashing.RiskScore)
}

// scoreDataQuality rewards metrics that carry years and scopes.
func scoreDataQuality(metrics model.MetricExtraction) float64 {
	if len(metrics.Metrics) == 0 {
		return 20
	}
	withYear, withScope := 0, 0
	for _, m := range metrics.Metrics {
		if m.Year != 0 {
			withYear++
		}
		if m.Scope != "" {
			withScope++
		}
	}
	ratio := float64(withYear+withScope) / float64(2*len(metrics.Metrics))
	return clamp(40 + ratio*60)
}

func scoreVerification(fullText string) float64 {
	matches := verificationRe.FindAllStringIndex(fullText, -1)
	if len(matches) == 0 {
		return 20
	}
	return math.Min(100, 50+float64(len(matches))*10)
}

func overallRisk(c model.RiskComponents) float64 {
	weighted := c.Transparency*0.25 +
		c.Commitment*0.20 +
		c.Credibility*0.25 +
		c.DataQuality*0.15 +
		c.Verification*0.15
	return clamp(100 - weighted)
}

func riskLevel(overall float64) model.RiskLevel {
	switch {
	case overall <= 25:
		return model.RiskLow
	case overall <= 50:
		return model.RiskMedium
	case overall <= 75:
		return model.RiskHigh
	}
	return model.RiskCritical
}

func recommendations(c model.RiskComponents, level model.RiskLevel) []string {
	var recs []string
	if c.Transparency < 60 {
		recs = append(recs, "Disclose a broader set of environmental metrics with clear units and scopes.")
	}
	if c.Commitment < 60 {
		recs = append(recs, "Strengthen environmental targets with specific percentages and deadlines.")
	}
	if c.Credibility < 60 {
		recs = append(recs, "Reduce vague sustainability language and align claims with quantified data.")
	}
	if c.DataQuality < 60 {
		recs = append(recs, "Improve methodological transparency and ensure metrics include years and scopes.")
	}
	if c.Verification < 60 {
		recs = append(recs, "Seek third-party verification or align reporting with frameworks like GRI, CDP, or SBTi.")
	}
	if len(recs) == 0 && level == model.RiskLow {
		recs = append(recs, "Maintain current transparency and continue enhancing long-term climate strategy.")
	}
	return recs
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
