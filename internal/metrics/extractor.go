// Package metrics pulls quantified environmental disclosures out of
// report text with regex pattern matching. Precision over recall: every
// pattern anchors a number to a recognised unit.
package metrics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/carbon-compass/compass/internal/model"
)

const baseConfidence = 0.8

const (
	numberPattern = `(?P<number>\d{1,3}(?:[.,]\d{3})*(?:[.,]\d+)?|\d+(?:[.,]\d+)?)`
	yearPattern   = `(?P<year>20\d{2}|19\d{2})`
)

var (
	carbonRe = regexp.MustCompile(`(?i)(?P<scope>scope\s*[123]|total)?[^\d%]{0,20}` +
		numberPattern + `\s*(?P<unit>tco2e|tonnes? ?co2e?|mtco2e|ktco2e|mt|kt)`)
	energyRe = regexp.MustCompile(`(?i)` + numberPattern + `\s*(?P<unit>kwh|mwh|gwh|twh|gj|tj)`)
	waterRe  = regexp.MustCompile(`(?i)` + numberPattern + `\s*(?P<unit>m3|cubic meters?|litres?|liters?|gallons?|ml)`)
	wasteRe  = regexp.MustCompile(`(?i)` + numberPattern + `\s*(?P<unit>tonnes?|tons?|kg|kilograms?)`)

	renewableRe = regexp.MustCompile(`(?i)` + numberPattern + `\s*%[^.]*\brenewable\b`)
	reductionRe = regexp.MustCompile(`(?i)reduc\w*[^\d%]{0,20}` + numberPattern +
		`\s*%[^\d]{0,40}(?:by|before|in)\s+` + yearPattern)

	multiplierRe = regexp.MustCompile(`(?i)\b(million|billion|thousand|k)\b`)
	yearRe       = regexp.MustCompile(yearPattern)
)

// Extractor extracts metrics from text chunks. The zero value is ready to
// use.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

type dedupKey struct {
	metricType model.MetricType
	value      float64
	unit       string
	year       int
	scope      string
}

// ExtractFromChunks runs every pattern family over every chunk and
// deduplicates the hits. The first occurrence of a metric wins; later
// duplicates from overlapping chunks are dropped.
func (e *Extractor) ExtractFromChunks(chunks []model.Chunk) model.MetricExtraction {
	var metrics []model.Metric
	for _, chunk := range chunks {
		text := chunk.Text
		metrics = append(metrics, matchAll(carbonRe, model.MetricCarbonEmissions, text, false)...)
		metrics = append(metrics, matchAll(energyRe, model.MetricEnergy, text, false)...)
		metrics = append(metrics, matchAll(waterRe, model.MetricWater, text, false)...)
		metrics = append(metrics, matchAll(wasteRe, model.MetricWaste, text, false)...)
		metrics = append(metrics, matchAll(renewableRe, model.MetricRenewablePercentage, text, true)...)
		metrics = append(metrics, matchAll(reductionRe, model.MetricReductionTarget, text, true)...)
	}

	seen := make(map[dedupKey]bool, len(metrics))
	deduped := make([]model.Metric, 0, len(metrics))
	for _, m := range metrics {
		key := dedupKey{m.MetricType, m.Value, m.Unit, m.Year, m.Scope}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, m)
	}
	return model.MetricExtraction{Metrics: deduped}
}

// matchAll collects every pattern hit in text. When narrowContext is set,
// the matched span itself is the context (used for percentage patterns
// whose surroundings would pull in unrelated years); otherwise the whole
// chunk is.
func matchAll(re *regexp.Regexp, metricType model.MetricType, text string, narrowContext bool) []model.Metric {
	numberIdx := re.SubexpIndex("number")
	unitIdx := re.SubexpIndex("unit")
	scopeIdx := re.SubexpIndex("scope")

	var out []model.Metric
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		context := text
		if narrowContext {
			context = m[0]
		}

		value, ok := parseNumber(m[numberIdx], context)
		if !ok {
			continue
		}

		unit := ""
		if unitIdx >= 0 {
			unit = strings.TrimSpace(m[unitIdx])
		}
		scope := ""
		if scopeIdx >= 0 {
			scope = scopeTitle(strings.TrimSpace(m[scopeIdx]))
		}

		out = append(out, model.Metric{
			MetricType: metricType,
			Value:      value,
			Unit:       unit,
			Year:       extractYear(context),
			Scope:      scope,
			Context:    strings.TrimSpace(context),
			Confidence: baseConfidence,
		})
	}
	return out
}

// parseNumber parses a matched number, stripping separators and scaling
// by any multiplier word found in the context.
func parseNumber(raw, context string) (float64, bool) {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(raw)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if m := multiplierRe.FindStringSubmatch(context); m != nil {
		switch strings.ToLower(m[1]) {
		case "million":
			value *= 1_000_000
		case "billion":
			value *= 1_000_000_000
		case "thousand", "k":
			value *= 1_000
		}
	}
	return value, true
}

func extractYear(text string) int {
	m := yearRe.FindString(text)
	if m == "" {
		return 0
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return year
}

// scopeTitle capitalises each word ("scope 2" to "Scope 2").
func scopeTitle(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
