package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-compass/compass/internal/model"
)

func calculatedTotals(scope1, scope2, scope3 float64) model.TotalEmissions {
	return model.TotalEmissions{
		TotalKgCO2e: scope1 + scope2 + scope3,
		ByScope: map[string]float64{
			"scope_1": scope1,
			"scope_2": scope2,
			"scope_3": scope3,
		},
	}
}

func TestCompareCloseFiguresVerify(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		{MetricType: model.MetricCarbonEmissions, Value: 100, Unit: "tCO2e", Scope: "Scope 2", Confidence: 0.8},
	}
	// 105 tonnes calculated against 100 reported: 5% difference.
	result := e.Compare(metrics, calculatedTotals(50_000, 105_000, 20_000))

	require.Len(t, result.VerifiedMetrics, 1)
	vm := result.VerifiedMetrics[0]
	assert.Equal(t, model.StatusVerified, vm.Status)
	assert.Equal(t, "Scope 2 Emissions", vm.MetricType)
	assert.InDelta(t, 100, vm.ReportedValue, 1e-9)
	require.NotNil(t, vm.CalculatedValue)
	assert.InDelta(t, 105, *vm.CalculatedValue, 1e-9)
	assert.InDelta(t, 0.8, vm.Confidence, 1e-9)

	assert.Empty(t, result.Discrepancies)
	assert.InDelta(t, 100, result.MatchScore, 1e-9)
	assert.InDelta(t, 100, result.DataCompleteness, 1e-9)
	assert.Contains(t, result.Summary, "closely align")
	assert.Contains(t, result.Recommendations, "Reported figures align well with calculated estimates, no major concerns identified")
}

func TestCompareModerateDiscrepancy(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		{MetricType: model.MetricCarbonEmissions, Value: 100, Unit: "tonnes CO2e", Scope: "scope 1", Confidence: 0.8},
	}
	// 140 calculated against 100 reported: 40% difference.
	result := e.Compare(metrics, calculatedTotals(140_000, 10_000, 10_000))

	require.Len(t, result.Discrepancies, 1)
	d := result.Discrepancies[0]
	assert.Equal(t, model.DiscrepancyModerate, d.Severity)
	assert.Equal(t, "Scope 1 Emissions", d.MetricType)
	assert.InDelta(t, 40, d.DifferencePercentage, 1e-9)
	assert.InDelta(t, 40, d.DifferenceAbsolute, 1e-9)
	// Calculated exceeds reported, so the underreported explanations lead.
	assert.Equal(t, "Different reporting boundaries may exclude some emission sources", d.PossibleExplanations[0])
	assert.Len(t, d.PossibleExplanations, 3)

	require.Len(t, result.VerifiedMetrics, 1)
	vm := result.VerifiedMetrics[0]
	assert.Equal(t, model.StatusDiscrepancy, vm.Status)
	assert.InDelta(t, 0.8*(1-40.0/200), vm.Confidence, 1e-9)

	assert.InDelta(t, 40, result.MatchScore, 1e-9)
	assert.Contains(t, result.Summary, "Significant discrepancies")
}

func TestCompareMajorDiscrepancyScope3(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		{MetricType: model.MetricCarbonEmissions, Value: 100, Unit: "tCO2e", Scope: "scope 3", Confidence: 0.8},
	}
	// 10 calculated against 100 reported: 90% difference.
	result := e.Compare(metrics, calculatedTotals(5_000, 5_000, 10_000))

	require.Len(t, result.Discrepancies, 1)
	d := result.Discrepancies[0]
	assert.Equal(t, model.DiscrepancyMajor, d.Severity)
	// Scope 3 mismatch adds a fourth explanation.
	require.Len(t, d.PossibleExplanations, 4)
	assert.Equal(t, "Missing Scope 3 categories in the calculation", d.PossibleExplanations[3])

	assert.InDelta(t, 10, result.MatchScore, 1e-9)
	require.NotEmpty(t, result.Recommendations)
	assert.Contains(t, result.Recommendations[0], "activity data may be incomplete")
}

func TestCompareUnitNormalisation(t *testing.T) {
	e := New()
	cases := []struct {
		name     string
		value    float64
		unit     string
		expected float64
	}{
		{"tonnes pass through", 120, "tonnes CO2e", 120},
		{"tco2e pass through", 120, "tCO2e", 120},
		{"kg divides", 120_000, "kg CO2e", 120},
		{"megatonnes scale up", 0.00012, "MtCO2e", 120},
		{"kilotonnes scale up", 0.12, "ktCO2e", 120},
		{"unknown assumed tonnes", 120, "units", 120},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, normaliseToTonnes(tc.value, tc.unit), 1e-6)
		})
	}

	metrics := []model.Metric{
		{MetricType: model.MetricCarbonEmissions, Value: 120_000, Unit: "kg CO2e", Scope: "scope 2", Confidence: 0.8},
	}
	result := e.Compare(metrics, calculatedTotals(10_000, 121_000, 10_000))
	require.Len(t, result.VerifiedMetrics, 1)
	assert.Equal(t, model.StatusVerified, result.VerifiedMetrics[0].Status)
}

func TestCompareEmptyScopeMatchesTotal(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		{MetricType: model.MetricCarbonEmissions, Value: 200, Unit: "tCO2e", Scope: "", Confidence: 0.8},
	}
	result := e.Compare(metrics, calculatedTotals(100_000, 50_000, 55_000))

	require.Len(t, result.VerifiedMetrics, 1)
	vm := result.VerifiedMetrics[0]
	assert.Equal(t, "Total Emissions", vm.MetricType)
	require.NotNil(t, vm.CalculatedValue)
	assert.InDelta(t, 205, *vm.CalculatedValue, 1e-9)
	assert.Equal(t, model.StatusVerified, vm.Status)
}

func TestCompareZeroScopeBucketNotCalculated(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		{MetricType: model.MetricCarbonEmissions, Value: 100, Unit: "tCO2e", Scope: "scope 3", Confidence: 0.8},
		{MetricType: model.MetricCarbonEmissions, Value: 50, Unit: "tCO2e", Scope: "scope 1", Confidence: 0.8},
	}
	result := e.Compare(metrics, calculatedTotals(52_000, 10_000, 0))

	require.Len(t, result.VerifiedMetrics, 2)
	assert.Equal(t, model.StatusNotCalculated, result.VerifiedMetrics[0].Status)
	assert.Nil(t, result.VerifiedMetrics[0].CalculatedValue)
	assert.Equal(t, model.StatusVerified, result.VerifiedMetrics[1].Status)

	// One of two possible comparisons made.
	assert.InDelta(t, 50, result.DataCompleteness, 1e-9)
	assert.Contains(t, result.Recommendations, "Add Scope 3 (supply chain, business travel) activity data for a complete comparison")
	assert.Contains(t, result.Recommendations, "1 reported metric(s) could not be verified, add corresponding activity data")
}

func TestCompareIgnoresNonCarbonMetrics(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		{MetricType: model.MetricEnergy, Value: 500, Unit: "MWh", Confidence: 0.8},
		{MetricType: model.MetricWater, Value: 1200, Unit: "m3", Confidence: 0.8},
	}
	result := e.Compare(metrics, calculatedTotals(10_000, 10_000, 10_000))

	assert.Empty(t, result.VerifiedMetrics)
	assert.Zero(t, result.MatchScore)
	assert.Equal(t, "No comparable metrics found between the report and calculated data.", result.Summary)
}

func TestCompareSortsDiscrepanciesBySeverity(t *testing.T) {
	e := New()
	metrics := []model.Metric{
		// 15% off scope 1: minor.
		{MetricType: model.MetricCarbonEmissions, Value: 100, Unit: "tCO2e", Scope: "scope 1", Confidence: 0.8},
		// 90% off scope 2: major.
		{MetricType: model.MetricCarbonEmissions, Value: 100, Unit: "tCO2e", Scope: "scope 2", Confidence: 0.8},
	}
	result := e.Compare(metrics, calculatedTotals(115_000, 10_000, 5_000))

	require.Len(t, result.Discrepancies, 2)
	assert.Equal(t, model.DiscrepancyMajor, result.Discrepancies[0].Severity)
	assert.Equal(t, model.DiscrepancyMinor, result.Discrepancies[1].Severity)

	// (70 + 10) / 2 compared metrics.
	assert.InDelta(t, 40, result.MatchScore, 1e-9)
}
