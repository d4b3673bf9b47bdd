package model

// EmissionResult is the outcome of a single emission calculation.
type EmissionResult struct {
	ActivityType        string  `json:"activity_type"`
	ActivityAmount      float64 `json:"activity_amount"`
	ActivityUnit        string  `json:"activity_unit"`
	EmissionsKgCO2e     float64 `json:"emissions_kg_co2e"`
	EmissionsTonnesCO2e float64 `json:"emissions_tonnes_co2e"`
	Scope               int     `json:"scope"`
	FactorUsed          float64 `json:"factor_used"`
	FactorSource        string  `json:"factor_source"`
	CalculationDetails  string  `json:"calculation_details"`
}

// TotalEmissions aggregates a bulk calculation. Invariant: TotalKgCO2e
// equals the sum over Breakdown, the sum over ByScope, and the sum over
// ByCategory.
type TotalEmissions struct {
	TotalKgCO2e     float64            `json:"total_kg_co2e"`
	TotalTonnesCO2e float64            `json:"total_tonnes_co2e"`
	ByScope         map[string]float64 `json:"by_scope"`
	ByCategory      map[string]float64 `json:"by_category"`
	Breakdown       []EmissionResult   `json:"breakdown"`
	ActivityCount   int                `json:"activity_count"`
	Warnings        []string           `json:"warnings"`
}

// ScopeKey returns the by-scope map key for a numeric scope ("scope_1" ...).
func ScopeKey(scope int) string {
	switch scope {
	case 1:
		return "scope_1"
	case 2:
		return "scope_2"
	case 3:
		return "scope_3"
	}
	return "scope_3"
}
