package greenwash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-compass/compass/internal/model"
)

func newDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := New()
	require.NoError(t, err)
	return d
}

func flagsOf(result model.GreenwashingResult, indicator model.IndicatorType) []model.GreenwashingFlag {
	var out []model.GreenwashingFlag
	for _, f := range result.Flags {
		if f.IndicatorType == indicator {
			out = append(out, f)
		}
	}
	return out
}

func TestVagueClaim(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("We are deeply committed to sustainability across everything we do.")

	vague := flagsOf(result, model.IndicatorVagueClaim)
	require.Len(t, vague, 1)
	assert.Equal(t, model.SeverityMedium, vague[0].Severity)
	assert.InDelta(t, 0.8, vague[0].Confidence, 1e-9)
	assert.Contains(t, vague[0].Text, "committed to sustainability")
	assert.Greater(t, result.RiskScore, 0.0)
}

func TestTargetWithoutTimelineOrBaseline(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("Our group will reach net zero across all operations.")

	assert.Len(t, flagsOf(result, model.IndicatorNoTimeline), 1)
	assert.Len(t, flagsOf(result, model.IndicatorNoBaseline), 1)
}

func TestTargetWithTimelineStillMissingBaseline(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("We will be carbon neutral by 2035.")

	assert.Empty(t, flagsOf(result, model.IndicatorNoTimeline))
	assert.Len(t, flagsOf(result, model.IndicatorNoBaseline), 1)
}

func TestTargetFullySpecified(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("We will reduce emissions by 2030, down 40% from 2020 levels.")

	assert.Empty(t, flagsOf(result, model.IndicatorNoTimeline))
	assert.Empty(t, flagsOf(result, model.IndicatorNoBaseline))
}

func TestNoProofClaim(t *testing.T) {
	d := newDetector(t)

	t.Run("bare superlative is flagged", func(t *testing.T) {
		result := d.Analyse("Acme is the undisputed leader in sustainability worldwide.")
		proof := flagsOf(result, model.IndicatorNoProof)
		require.Len(t, proof, 1)
		assert.Equal(t, model.SeverityHigh, proof[0].Severity)
	})

	t.Run("nearby figures suppress the flag", func(t *testing.T) {
		result := d.Analyse("Acme is the leader in sustainability, cutting emissions 38% since 2019.")
		assert.Empty(t, flagsOf(result, model.IndicatorNoProof))
	})

	t.Run("verification framework suppresses the flag", func(t *testing.T) {
		result := d.Analyse("Acme is the leader in sustainability, as assessed under CDP and TCFD.")
		assert.Empty(t, flagsOf(result, model.IndicatorNoProof))
	})
}

func TestAspirationalLanguage(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("We aim to decarbonise our supply chain and we hope to publish progress.")

	aspire := flagsOf(result, model.IndicatorAspirationalOnly)
	require.Len(t, aspire, 2)
	assert.Equal(t, model.SeverityLow, aspire[0].Severity)
}

func TestCherryPicking(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("Energy use fell 60% at selected sites and our flagship site runs on wind power.")

	cherry := flagsOf(result, model.IndicatorCherryPicking)
	assert.Len(t, cherry, 2)
}

func TestCleanTextNoFlags(t *testing.T) {
	d := newDetector(t)
	result := d.Analyse("Scope 1 emissions were 12,500 tCO2e in 2024, verified under ISO 14001.")

	assert.Empty(t, result.Flags)
	assert.Zero(t, result.RiskScore)
}

func TestRiskScoreWeighting(t *testing.T) {
	flags := []model.GreenwashingFlag{
		{Severity: model.SeverityLow, Confidence: 0.7},
		{Severity: model.SeverityMedium, Confidence: 0.8},
		{Severity: model.SeverityHigh, Confidence: 0.8},
	}
	// (1*0.7 + 2*0.8 + 3*0.8) * 5 = 23.5
	assert.InDelta(t, 23.5, riskScore(flags), 1e-9)
	assert.Zero(t, riskScore(nil))
}

func TestRiskScoreSoftCap(t *testing.T) {
	var flags []model.GreenwashingFlag
	for i := 0; i < 50; i++ {
		flags = append(flags, model.GreenwashingFlag{Severity: model.SeverityHigh, Confidence: 0.9})
	}
	assert.InDelta(t, 100, riskScore(flags), 1e-9)
}
