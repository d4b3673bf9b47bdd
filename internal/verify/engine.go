// Package verify reconciles emissions figures extracted from a report
// against emissions independently calculated from activity data. All
// comparisons happen in tonnes CO2e.
package verify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carbon-compass/compass/internal/model"
)

const (
	minorThreshold    = 0.10
	moderateThreshold = 0.25
	majorThreshold    = 0.50
)

var printer = message.NewPrinter(language.BritishEnglish)

var explanations = map[string][]string{
	"underreported": {
		"Different reporting boundaries may exclude some emission sources",
		"Location-based vs market-based methodology differences",
		"Potential understatement of emissions in the report",
		"Some emission sources may have been excluded from reporting",
	},
	"overreported": {
		"Company may be using conservative estimation methods",
		"Market-based accounting may include additional offsets",
		"Reporting boundaries may be broader than calculation scope",
		"Activity data may not capture all emission sources",
	},
	"general": {
		"Different reporting periods between report and activity data",
		"Unit conversion differences in methodology",
		"Estimation vs actual measurement differences",
		"Changes in emission factors between reporting years",
	},
	"scope_mismatch": {
		"Missing Scope 3 categories in the calculation",
		"Supply chain emissions not captured in activity data",
		"Different scope boundary definitions",
	},
}

// Engine compares reported and calculated emissions. The zero value is
// ready to use.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Compare matches every reported carbon metric to its calculated scope
// bucket and grades the differences. Scope buckets with zero calculated
// emissions count as not calculated rather than as a 100% discrepancy.
func (e *Engine) Compare(nlpMetrics []model.Metric, calculated model.TotalEmissions) model.VerificationResult {
	calcTotal := calculated.TotalKgCO2e / 1000
	calcScope := make(map[string]float64, len(calculated.ByScope))
	for k, v := range calculated.ByScope {
		calcScope[k] = v / 1000
	}

	var discrepancies []model.Discrepancy
	var verified []model.VerifiedMetric
	comparisonsMade, comparisonsPossible := 0, 0

	for _, metric := range nlpMetrics {
		if metric.MetricType != model.MetricCarbonEmissions {
			continue
		}
		comparisonsPossible++
		reported := normaliseToTonnes(metric.Value, metric.Unit)

		calc := matchToCalculated(metric.Scope, calcScope, calcTotal)
		if calc == nil {
			verified = append(verified, model.VerifiedMetric{
				MetricType:    scopeLabel(metric.Scope),
				ReportedValue: reported,
				Status:        model.StatusNotCalculated,
				Confidence:    metric.Confidence,
			})
			continue
		}
		comparisonsMade++

		diffAbs := *calc - reported
		diffPct := 0.0
		if reported != 0 {
			diffPct = math.Abs(diffAbs/reported) * 100
		}

		severity, isMatch := classifySeverity(diffPct / 100)
		if isMatch {
			verified = append(verified, model.VerifiedMetric{
				MetricType:      scopeLabel(metric.Scope),
				ReportedValue:   reported,
				CalculatedValue: calc,
				Status:          model.StatusVerified,
				Confidence:      metric.Confidence,
			})
			continue
		}

		direction := "overreported"
		if *calc > reported {
			direction = "underreported"
		}
		explain := append([]string{}, explanations[direction][:2]...)
		explain = append(explain, explanations["general"][:1]...)
		if strings.Contains(metric.Scope, "3") {
			explain = append(explain, explanations["scope_mismatch"][:1]...)
		}

		discrepancies = append(discrepancies, model.Discrepancy{
			MetricType:           scopeLabel(metric.Scope),
			ReportedValue:        reported,
			ReportedUnit:         "tonnes CO2e",
			CalculatedValue:      *calc,
			CalculatedUnit:       "tonnes CO2e",
			DifferenceAbsolute:   diffAbs,
			DifferencePercentage: diffPct,
			Severity:             severity,
			PossibleExplanations: explain,
		})
		verified = append(verified, model.VerifiedMetric{
			MetricType:      scopeLabel(metric.Scope),
			ReportedValue:   reported,
			CalculatedValue: calc,
			Status:          model.StatusDiscrepancy,
			Confidence:      metric.Confidence * (1 - diffPct/200),
		})
	}

	matchScore := calculateMatchScore(verified, discrepancies)
	completeness := float64(comparisonsMade) / float64(max(comparisonsPossible, 1)) * 100

	sort.SliceStable(discrepancies, func(i, j int) bool {
		return severityRank(discrepancies[i].Severity) < severityRank(discrepancies[j].Severity)
	})

	return model.VerificationResult{
		MatchScore:       matchScore,
		Discrepancies:    discrepancies,
		VerifiedMetrics:  verified,
		Summary:          generateSummary(matchScore, discrepancies, verified),
		Recommendations:  generateRecommendations(discrepancies, verified, calcScope),
		DataCompleteness: completeness,
	}
}

// normaliseToTonnes converts a reported value to tonnes CO2e. Units
// without a clear magnitude are assumed to already be tonnes.
func normaliseToTonnes(value float64, unit string) float64 {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.Contains(u, "tonne"), strings.Contains(u, "t co2"), u == "tco2e":
		return value
	case strings.Contains(u, "kg"):
		return value / 1000
	case strings.Contains(u, "mt"), strings.Contains(u, "million"):
		return value * 1_000_000
	case strings.Contains(u, "kt"), strings.Contains(u, "kilo"):
		return value * 1000
	}
	return value
}

// matchToCalculated picks the calculated bucket for a reported scope.
// Nil means the bucket has no calculated data to compare against.
func matchToCalculated(scope string, calcScope map[string]float64, calcTotal float64) *float64 {
	s := strings.ToLower(scope)
	for _, digit := range []string{"1", "2", "3"} {
		if strings.Contains(s, digit) {
			v := calcScope["scope_"+digit]
			if v > 0 {
				return &v
			}
			return nil
		}
	}
	return &calcTotal
}

// classifySeverity grades a fractional difference. The second return is
// true when the difference is within tolerance.
func classifySeverity(fracDiff float64) (model.DiscrepancySeverity, bool) {
	switch {
	case fracDiff < minorThreshold:
		return "", true
	case fracDiff < moderateThreshold:
		return model.DiscrepancyMinor, false
	case fracDiff < majorThreshold:
		return model.DiscrepancyModerate, false
	}
	return model.DiscrepancyMajor, false
}

func scopeLabel(scope string) string {
	s := strings.ToLower(scope)
	switch {
	case strings.Contains(s, "1"):
		return "Scope 1 Emissions"
	case strings.Contains(s, "2"):
		return "Scope 2 Emissions"
	case strings.Contains(s, "3"):
		return "Scope 3 Emissions"
	}
	return "Total Emissions"
}

func severityRank(s model.DiscrepancySeverity) int {
	switch s {
	case model.DiscrepancyMajor:
		return 0
	case model.DiscrepancyModerate:
		return 1
	case model.DiscrepancyMinor:
		return 2
	}
	return 3
}

// calculateMatchScore weights each compared metric by its outcome:
// verified 100, minor 70, moderate 40, major 10.
func calculateMatchScore(verified []model.VerifiedMetric, discrepancies []model.Discrepancy) float64 {
	if len(verified) == 0 {
		return 0
	}
	matched := 0
	for _, v := range verified {
		if v.Status == model.StatusVerified {
			matched++
		}
	}
	minor, moderate, major := countBySeverity(discrepancies)
	score := float64(matched*100+minor*70+moderate*40+major*10) / float64(len(verified))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func countBySeverity(discrepancies []model.Discrepancy) (minor, moderate, major int) {
	for _, d := range discrepancies {
		switch d.Severity {
		case model.DiscrepancyMinor:
			minor++
		case model.DiscrepancyModerate:
			moderate++
		case model.DiscrepancyMajor:
			major++
		}
	}
	return minor, moderate, major
}

func generateSummary(matchScore float64, discrepancies []model.Discrepancy, verified []model.VerifiedMetric) string {
	if len(verified) == 0 {
		return "No comparable metrics found between the report and calculated data."
	}

	_, moderate, major := countBySeverity(discrepancies)
	verifiedCount := 0
	for _, v := range verified {
		if v.Status == model.StatusVerified {
			verifiedCount++
		}
	}

	base := "Significant discrepancies detected, detailed review recommended."
	switch {
	case matchScore >= 80:
		base = "Reported figures closely align with calculated estimates."
	case matchScore >= 50:
		base = "Some discrepancies detected between reported and calculated values."
	}

	var details []string
	if verifiedCount > 0 {
		details = append(details, fmt.Sprintf("%d metric(s) verified", verifiedCount))
	}
	if major > 0 {
		details = append(details, fmt.Sprintf("%d major discrepancy(ies)", major))
	}
	if moderate > 0 {
		details = append(details, fmt.Sprintf("%d moderate discrepancy(ies)", moderate))
	}
	if len(details) == 0 {
		return base
	}
	return base + " " + strings.Join(details, ", ") + "."
}

func generateRecommendations(discrepancies []model.Discrepancy, verified []model.VerifiedMetric, calcScope map[string]float64) []string {
	var recs []string

	for _, d := range discrepancies {
		if d.Severity != model.DiscrepancyMajor {
			continue
		}
		if d.CalculatedValue > d.ReportedValue {
			recs = append(recs, printer.Sprintf(
				"Reported %s (%.0f tonnes) is %.0f%% lower than calculated (%.0f tonnes), investigate potential understatement",
				d.MetricType, d.ReportedValue, d.DifferencePercentage, d.CalculatedValue))
		} else {
			recs = append(recs, printer.Sprintf(
				"Calculated %s (%.0f tonnes) is %.0f%% lower than reported (%.0f tonnes), activity data may be incomplete",
				d.MetricType, d.CalculatedValue, d.DifferencePercentage, d.ReportedValue))
		}
	}

	if calcScope["scope_3"] == 0 {
		recs = append(recs, "Add Scope 3 (supply chain, business travel) activity data for a complete comparison")
	}
	if calcScope["scope_1"] == 0 {
		recs = append(recs, "Add Scope 1 (direct fuel combustion, company vehicles) activity data")
	}

	notCalculated := 0
	for _, v := range verified {
		if v.Status == model.StatusNotCalculated {
			notCalculated++
		}
	}
	if notCalculated > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d reported metric(s) could not be verified, add corresponding activity data", notCalculated))
	}

	if len(discrepancies) == 0 && len(verified) > 0 {
		recs = append(recs, "Reported figures align well with calculated estimates, no major concerns identified")
	}
	return recs
}
