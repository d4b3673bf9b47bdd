package model

// MetricType classifies an extracted quantitative metric.
type MetricType string

const (
	MetricCarbonEmissions     MetricType = "carbon_emissions"
	MetricEnergy              MetricType = "energy"
	MetricWater               MetricType = "water"
	MetricWaste               MetricType = "waste"
	MetricRenewablePercentage MetricType = "renewable_percentage"
	MetricReductionTarget     MetricType = "reduction_target"
)

// MetricTypes lists every metric type the extractor can produce. The risk
// scorer uses the count as the denominator for transparency.
var MetricTypes = []MetricType{
	MetricCarbonEmissions,
	MetricEnergy,
	MetricWater,
	MetricWaste,
	MetricRenewablePercentage,
	MetricReductionTarget,
}

// Metric is one extracted quantitative fact. Value is fully expanded
// ("2.3 million" -> 2300000). Scope is free text like "Scope 1",
// title-cased, empty when the match carried none.
type Metric struct {
	MetricType MetricType `json:"metric_type"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit"`
	Year       int        `json:"year,omitempty"`
	Scope      string     `json:"scope,omitempty"`
	Context    string     `json:"context"`
	Confidence float64    `json:"confidence"`
}

// MetricExtraction holds the deduplicated metrics from one document.
type MetricExtraction struct {
	Metrics []Metric `json:"metrics"`
}

// TypesDisclosed returns the set of distinct metric types present.
func (e MetricExtraction) TypesDisclosed() map[MetricType]bool {
	types := make(map[MetricType]bool, len(e.Metrics))
	for _, m := range e.Metrics {
		types[m.MetricType] = true
	}
	return types
}
