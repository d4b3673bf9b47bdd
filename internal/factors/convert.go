package factors

import (
	"sort"

	"github.com/rotisserie/eris"
)

// ErrUnknownConversion is returned by Convert for keys outside the
// supported table.
var ErrUnknownConversion = eris.New("factors: unknown conversion")

var conversions = map[string]float64{
	"km_to_miles":            0.621371,
	"miles_to_km":            1.60934,
	"litres_to_gallons":      0.264172,
	"gallons_to_litres":      3.78541,
	"kg_to_tonnes":           0.001,
	"tonnes_to_kg":           1000,
	"cubic_metres_to_litres": 1000,
	"litres_to_cubic_metres": 0.001,
	"kwh_to_mwh":             0.001,
	"mwh_to_kwh":             1000,
}

// Convert applies a named unit conversion such as "miles_to_km".
func Convert(value float64, conversion string) (float64, error) {
	factor, ok := conversions[NormaliseKey(conversion)]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownConversion, "%q", conversion)
	}
	return value * factor, nil
}

// Conversions lists the supported conversion keys, sorted.
func Conversions() []string {
	keys := make([]string, 0, len(conversions))
	for k := range conversions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
