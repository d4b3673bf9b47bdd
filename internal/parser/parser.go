// Package parser reads bulk activity data from CSV and XLSX uploads and
// turns it into calculable activities. Column names are matched against
// the common spellings seen in sustainability exports; callers can
// override the detection with an explicit mapping.
package parser

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/carbon-compass/compass/internal/model"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = eris.New("parser: unsupported file format")

// columnAliases maps canonical field names to header spellings, tried in
// order. Detection is exact first, then substring in either direction.
var columnAliases = []struct {
	field   string
	aliases []string
}{
	{"category", []string{"category", "type", "emission_type", "emission type", "activity_type", "activity type", "source_type"}},
	{"sub_category", []string{"sub_category", "sub-category", "subcategory", "activity", "source", "fuel_type", "fuel type", "vehicle_type", "vehicle type", "sub category"}},
	{"description", []string{"description", "desc", "details", "notes", "name", "label"}},
	{"amount", []string{"amount", "quantity", "value", "consumption", "usage", "volume", "distance"}},
	{"unit", []string{"unit", "units", "uom", "unit_of_measure", "measure", "unit of measure"}},
	{"country", []string{"country", "region", "location", "country_code", "country code", "grid"}},
	{"date", []string{"date", "period", "month", "year", "reporting_period", "reporting period", "time"}},
}

var categoryAliases = map[string]model.Category{
	"electric":        model.CategoryElectricity,
	"electricity":     model.CategoryElectricity,
	"power":           model.CategoryElectricity,
	"grid":            model.CategoryElectricity,
	"energy":          model.CategoryElectricity,
	"fuel":            model.CategoryFuel,
	"fuels":           model.CategoryFuel,
	"combustion":      model.CategoryFuel,
	"gas":             model.CategoryFuel,
	"natural gas":     model.CategoryFuel,
	"heating":         model.CategoryFuel,
	"transport":       model.CategoryTransport,
	"transportation":  model.CategoryTransport,
	"travel":          model.CategoryTransport,
	"vehicle":         model.CategoryTransport,
	"road":            model.CategoryTransport,
	"car":             model.CategoryTransport,
	"flight":          model.CategoryFlight,
	"flights":         model.CategoryFlight,
	"air":             model.CategoryFlight,
	"air travel":      model.CategoryFlight,
	"aviation":        model.CategoryFlight,
	"waste":           model.CategoryWaste,
	"disposal":        model.CategoryWaste,
	"rubbish":         model.CategoryWaste,
	"refuse":          model.CategoryWaste,
	"water":           model.CategoryWater,
	"water supply":    model.CategoryWater,
	"water treatment": model.CategoryWater,
}

var unitAliases = map[string]string{
	"kwh":            "kWh",
	"kilowatt hours": "kWh",
	"kilowatt-hours": "kWh",
	"mwh":            "MWh",
	"l":              "litres",
	"litre":          "litres",
	"liter":          "litres",
	"liters":         "litres",
	"litres":         "litres",
	"gal":            "gallons",
	"gallon":         "gallons",
	"gallons":        "gallons",
	"m3":             "cubic_metres",
	"m³":             "cubic_metres",
	"cubic meters":   "cubic_metres",
	"cubic metres":   "cubic_metres",
	"km":             "km",
	"kilometres":     "km",
	"kilometers":     "km",
	"mi":             "miles",
	"mile":           "miles",
	"miles":          "miles",
	"kg":             "kg",
	"kilograms":      "kg",
	"t":              "tonnes",
	"tonne":          "tonnes",
	"tonnes":         "tonnes",
	"ton":            "tonnes",
	"tons":           "tonnes",
	"trips":          "trips",
	"trip":           "trips",
	"therms":         "therms",
	"therm":          "therms",
}

var defaultUnits = map[model.Category]string{
	model.CategoryElectricity: "kWh",
	model.CategoryFuel:        "litres",
	model.CategoryTransport:   "km",
	model.CategoryFlight:      "trips",
	model.CategoryWaste:       "tonnes",
	model.CategoryWater:       "cubic_metres",
}

// ActivityParser parses tabular activity files. The zero value is ready
// to use.
type ActivityParser struct{}

func New() *ActivityParser {
	return &ActivityParser{}
}

// Parse reads activities from raw file bytes. Format is "csv" or "xlsx";
// mapping overrides auto-detection when non-nil.
func (p *ActivityParser) Parse(content []byte, format string, mapping map[string]string) ([]model.ActivityInput, error) {
	header, rows, err := readTable(content, format)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		mapping = DetectColumns(header)
	}
	return p.parseRows(header, rows, mapping), nil
}

// DetectColumns maps canonical field names to header columns. Fields with
// no plausible column are omitted.
func DetectColumns(columns []string) map[string]string {
	byKey := make(map[string]string, len(columns))
	keys := make([]string, 0, len(columns))
	for _, col := range columns {
		key := normaliseHeader(col)
		if _, seen := byKey[key]; !seen {
			byKey[key] = col
			keys = append(keys, key)
		}
	}

	mapping := make(map[string]string)
	for _, entry := range columnAliases {
		for _, alias := range entry.aliases {
			if col, ok := byKey[normaliseHeader(alias)]; ok {
				mapping[entry.field] = col
				break
			}
		}
		if _, ok := mapping[entry.field]; ok {
			continue
		}
		// Substring fallback, in file column order.
	scan:
		for _, key := range keys {
			for _, alias := range entry.aliases {
				a := normaliseHeader(alias)
				if strings.Contains(key, a) || strings.Contains(a, key) {
					mapping[entry.field] = byKey[key]
					break scan
				}
			}
		}
	}
	return mapping
}

// Validate checks parsed activities and separates usable rows from
// rejected ones. Electricity without a country is allowed but warned; the
// calculation falls back to the world-average grid factor.
func (p *ActivityParser) Validate(activities []model.ActivityInput) model.ValidationResult {
	result := model.ValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		InvalidRows: []model.InvalidRow{},
	}

	for i, act := range activities {
		rowNum := i + 1
		var rowErrors []string

		if act.Category == "" {
			rowErrors = append(rowErrors, "missing category")
		} else if !model.ValidCategory(act.Category) {
			rowErrors = append(rowErrors, "unknown category: '"+string(act.Category)+"'")
		}
		if act.Amount <= 0 {
			rowErrors = append(rowErrors, "invalid amount: "+strconv.FormatFloat(act.Amount, 'g', -1, 64))
		}
		if act.Unit == "" && act.Category != model.CategoryElectricity {
			rowErrors = append(rowErrors, "missing unit")
		}

		if act.Category == model.CategoryElectricity && act.Country == "" {
			result.Warnings = append(result.Warnings,
				"row "+strconv.Itoa(rowNum)+": no country specified for electricity, will use world average")
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors,
				"row "+strconv.Itoa(rowNum)+": "+strings.Join(rowErrors, "; "))
			data := act.RawRow
			if data == nil {
				data = map[string]string{}
			}
			result.InvalidRows = append(result.InvalidRows, model.InvalidRow{
				Row:    rowNum,
				Errors: rowErrors,
				Data:   data,
			})
			continue
		}
		result.ValidActivities = append(result.ValidActivities, act)
	}

	result.Valid = len(result.InvalidRows) == 0
	return result
}

// Preview returns the header, up to maxRows sample rows and the detected
// column mapping for user review before a full parse.
func (p *ActivityParser) Preview(content []byte, format string, maxRows int) (model.FilePreview, error) {
	header, rows, err := readTable(content, format)
	if err != nil {
		return model.FilePreview{}, err
	}
	if maxRows <= 0 {
		maxRows = 5
	}
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	sample := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		sample = append(sample, rowMap(header, row))
	}

	return model.FilePreview{
		Columns:         header,
		Rows:            sample,
		TotalColumns:    len(header),
		DetectedMapping: DetectColumns(header),
	}, nil
}

func (p *ActivityParser) parseRows(header []string, rows [][]string, mapping map[string]string) []model.ActivityInput {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	field := func(row []string, canonical string) string {
		col, ok := mapping[canonical]
		if !ok {
			return ""
		}
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var activities []model.ActivityInput
	for _, row := range rows {
		if emptyRow(row) {
			continue
		}
		categoryRaw := field(row, "category")
		if categoryRaw == "" {
			continue
		}
		amount, ok := parseNumber(field(row, "amount"))
		if !ok || amount == 0 {
			continue
		}

		category := normaliseCategory(categoryRaw)
		unit := normaliseUnit(field(row, "unit"))
		if unit == "" {
			unit = defaultUnits[category]
		}

		activities = append(activities, model.ActivityInput{
			Category:    category,
			SubCategory: field(row, "sub_category"),
			Description: field(row, "description"),
			Amount:      amount,
			Unit:        unit,
			Country:     field(row, "country"),
			Date:        field(row, "date"),
			RawRow:      rowMap(header, row),
		})
	}
	return activities
}

func rowMap(header, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(row) {
			m[col] = row[i]
		} else {
			m[col] = ""
		}
	}
	return m
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseNumber parses a cell value, tolerating thousands separators and
// stray spaces.
func parseNumber(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(raw))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func normaliseHeader(col string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
}

func normaliseCategory(raw string) model.Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := categoryAliases[key]; ok {
		return canonical
	}
	return model.Category(key)
}

func normaliseUnit(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if canonical, ok := unitAliases[key]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}
