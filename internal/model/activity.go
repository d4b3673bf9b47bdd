// Package model holds the value objects shared across the analysis and
// calculation pipelines. Everything here is constructed once per run and
// never mutated afterwards.
package model

// Category is a canonical activity category.
type Category string

const (
	CategoryElectricity Category = "electricity"
	CategoryFuel        Category = "fuel"
	CategoryTransport   Category = "transport"
	CategoryFlight      Category = "flight"
	CategoryWaste       Category = "waste"
	CategoryWater       Category = "water"
)

// Categories lists all supported activity categories.
var Categories = []Category{
	CategoryElectricity,
	CategoryFuel,
	CategoryTransport,
	CategoryFlight,
	CategoryWaste,
	CategoryWater,
}

// ValidCategory reports whether c is one of the supported categories.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ActivityInput is a single activity to calculate emissions for, either
// parsed from a tabular file or supplied directly over the API.
type ActivityInput struct {
	Category            Category          `json:"category"`
	SubCategory         string            `json:"sub_category,omitempty"`
	Description         string            `json:"description,omitempty"`
	Amount              float64           `json:"amount"`
	Unit                string            `json:"unit,omitempty"`
	Country             string            `json:"country,omitempty"`
	Date                string            `json:"date,omitempty"`
	FlightClass         string            `json:"flight_class,omitempty"`
	ReturnTrip          bool              `json:"return_trip,omitempty"`
	RenewablePercentage float64           `json:"renewable_percentage,omitempty"`
	RawRow              map[string]string `json:"raw_row,omitempty"`
}

// InvalidRow describes one rejected row from validation.
type InvalidRow struct {
	Row    int               `json:"row"`
	Errors []string          `json:"errors"`
	Data   map[string]string `json:"data"`
}

// ValidationResult separates parsed activities into usable and rejected
// rows. This is the authoritative gate before calculation.
type ValidationResult struct {
	Valid           bool            `json:"valid"`
	Errors          []string        `json:"errors"`
	Warnings        []string        `json:"warnings"`
	ValidActivities []ActivityInput `json:"-"`
	InvalidRows     []InvalidRow    `json:"invalid_rows"`
}

// FilePreview is a header/row sample of an uploaded tabular file plus the
// auto-detected column mapping, for human review before a full parse.
type FilePreview struct {
	Columns         []string            `json:"columns"`
	Rows            []map[string]string `json:"rows"`
	TotalColumns    int                 `json:"total_columns"`
	DetectedMapping map[string]string   `json:"detected_mapping"`
}
