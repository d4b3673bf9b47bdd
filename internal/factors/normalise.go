package factors

import "strings"

var countryAliases = map[string]string{
	"uk":            "united_kingdom",
	"gb":            "united_kingdom",
	"great_britain": "united_kingdom",
	"us":            "united_states",
	"usa":           "united_states",
	"america":       "united_states",
	"emirates":      "uae",
	"korea":         "south_korea",
}

var unitAliases = map[string]string{
	"l":              "litres",
	"liter":          "litres",
	"liters":         "litres",
	"litre":          "litres",
	"gal":            "gallons",
	"gallon":         "gallons",
	"m3":             "cubic_metres",
	"m³":             "cubic_metres",
	"cubic_meters":   "cubic_metres",
	"cubic_metre":    "cubic_metres",
	"cubic_meter":    "cubic_metres",
	"ton":            "tonnes",
	"tons":           "tonnes",
	"tonne":          "tonnes",
	"metric_ton":     "tonnes",
	"metric_tons":    "tonnes",
	"kilowatt_hour":  "kwh",
	"kilowatt_hours": "kwh",
	"megawatt_hour":  "mwh",
	"megawatt_hours": "mwh",
	"kilogram":       "kg",
	"kilograms":      "kg",
	"kgs":            "kg",
	"kilometre":      "km",
	"kilometres":     "km",
	"kilometer":      "km",
	"kilometers":     "km",
	"mile":           "miles",
	"therm":          "therms",
}

// NormaliseKey lowercases a lookup key, converts separators to
// underscores and strips parenthesised qualifiers.
func NormaliseKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if i := strings.IndexByte(key, '('); i >= 0 {
		if j := strings.IndexByte(key[i:], ')'); j >= 0 {
			key = key[:i] + key[i+j+1:]
		} else {
			key = key[:i]
		}
		key = strings.TrimSpace(key)
	}
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return strings.Trim(key, "_")
}

// NormaliseCountry applies NormaliseKey and resolves common country
// aliases (uk, usa, korea and so on) to canonical table keys.
func NormaliseCountry(country string) string {
	key := NormaliseKey(country)
	if canonical, ok := countryAliases[key]; ok {
		return canonical
	}
	return key
}

// NormaliseUnit applies NormaliseKey and resolves unit spellings and
// abbreviations to the canonical unit keys used in the factor tables.
func NormaliseUnit(unit string) string {
	key := NormaliseKey(unit)
	if canonical, ok := unitAliases[key]; ok {
		return canonical
	}
	return key
}
