// Package calculator turns activity data into greenhouse gas emissions
// using the loaded factor catalog. All amounts are kg CO2e unless a field
// name says otherwise.
package calculator

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/carbon-compass/compass/internal/factors"
	"github.com/carbon-compass/compass/internal/model"
)

// ErrInvalidInput is the sentinel for rejected activity values (negative
// amounts, out-of-range percentages, unknown categories).
var ErrInvalidInput = eris.New("calculator: invalid input")

// printer renders human-readable calculation detail strings with digit
// grouping ("12,500 kWh").
var printer = message.NewPrinter(language.BritishEnglish)

// Calculator computes emissions against an immutable factor catalog and
// is safe for concurrent use.
type Calculator struct {
	catalog *factors.Catalog
}

func New(catalog *factors.Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Electricity calculates Scope 2 emissions from grid electricity.
// renewablePct is the share of supply from renewable sources and reduces
// the grid draw proportionally.
func (c *Calculator) Electricity(kwh float64, country string, renewablePct float64) (model.EmissionResult, error) {
	if err := validatePositive(kwh, "electricity kWh"); err != nil {
		return model.EmissionResult{}, err
	}
	if renewablePct < 0 || renewablePct > 100 {
		return model.EmissionResult{}, eris.Wrapf(ErrInvalidInput,
			"renewable percentage must be between 0 and 100 (got %g)", renewablePct)
	}
	if country == "" {
		country = "world_average"
	}

	factor, err := c.catalog.ElectricityFactor(country)
	if err != nil {
		return model.EmissionResult{}, err
	}
	gridKwh := kwh * (1 - renewablePct/100)
	emissionsKg := gridKwh * factor

	details := printer.Sprintf("%.0f kWh × %v kg CO2e/kWh", kwh, factor)
	if renewablePct > 0 {
		details += fmt.Sprintf(" × %.0f%% grid", 100-renewablePct)
	}
	details += printer.Sprintf(" = %.2f kg CO2e", emissionsKg)

	return model.EmissionResult{
		ActivityType:        "electricity",
		ActivityAmount:      kwh,
		ActivityUnit:        "kWh",
		EmissionsKgCO2e:     emissionsKg,
		EmissionsTonnesCO2e: emissionsKg / 1000,
		Scope:               2,
		FactorUsed:          factor,
		FactorSource:        "IEA/DEFRA 2024 - " + country,
		CalculationDetails:  details,
	}, nil
}

// Fuel calculates combustion emissions; scope comes from the fuel catalog
// entry (Scope 1 for everything currently listed).
func (c *Calculator) Fuel(amount float64, fuelType, unit string) (model.EmissionResult, error) {
	if err := validatePositive(amount, fmt.Sprintf("fuel amount (%s)", fuelType)); err != nil {
		return model.EmissionResult{}, err
	}
	if unit == "" {
		unit = "litres"
	}

	factor, err := c.catalog.FuelFactor(fuelType, unit)
	if err != nil {
		return model.EmissionResult{}, err
	}
	scope := c.catalog.FuelScope(fuelType)
	emissionsKg := amount * factor

	return model.EmissionResult{
		ActivityType:        "fuel",
		ActivityAmount:      amount,
		ActivityUnit:        unit,
		EmissionsKgCO2e:     emissionsKg,
		EmissionsTonnesCO2e: emissionsKg / 1000,
		Scope:               scope,
		FactorUsed:          factor,
		FactorSource:        "UK DEFRA 2024 - " + fuelType,
		CalculationDetails: printer.Sprintf("%.2f %s of %s × %v kg CO2e/%s = %.2f kg CO2e",
			amount, unit, fuelType, factor, unit, emissionsKg),
	}, nil
}

// Transport calculates ground transport emissions. Distances in miles are
// converted to km; per-person allocation divides by passengers.
func (c *Calculator) Transport(distance float64, mode, vehicleType string, passengers int, unit string) (model.EmissionResult, error) {
	if err := validatePositive(distance, "distance"); err != nil {
		return model.EmissionResult{}, err
	}
	if passengers < 1 {
		passengers = 1
	}
	if unit == "" {
		unit = "km"
	}

	distanceKm := distance
	switch strings.ToLower(unit) {
	case "miles", "mile", "mi":
		km, err := factors.Convert(distance, "miles_to_km")
		if err != nil {
			return model.EmissionResult{}, eris.Wrap(err, "calculator: convert distance")
		}
		distanceKm = km
	}

	factor, err := c.catalog.TransportFactor(mode, vehicleType)
	if err != nil {
		return model.EmissionResult{}, err
	}
	scope := c.catalog.TransportScope(mode, vehicleType)
	emissionsKg := distanceKm * factor / float64(passengers)

	label := vehicleType
	if label == "" {
		label = mode
	}
	details := printer.Sprintf("%.0f %s by %s × %v kg CO2e/km", distance, unit, label, factor)
	if passengers > 1 {
		details += fmt.Sprintf(" ÷ %d passengers", passengers)
	}
	details += printer.Sprintf(" = %.2f kg CO2e", emissionsKg)

	return model.EmissionResult{
		ActivityType:        "transport",
		ActivityAmount:      distance,
		ActivityUnit:        unit,
		EmissionsKgCO2e:     emissionsKg,
		EmissionsTonnesCO2e: emissionsKg / 1000,
		Scope:               scope,
		FactorUsed:          factor,
		FactorSource:        "UK DEFRA 2024 - " + label,
		CalculationDetails:  details,
	}, nil
}

// Flight calculates air travel emissions. A nil distance uses the average
// distance for the flight type; a return trip doubles the distance and the
// cabin class applies its multiplier.
func (c *Calculator) Flight(distanceKm *float64, flightType, flightClass string, returnTrip bool, passengers int) (model.EmissionResult, error) {
	if flightType == "" {
		flightType = "short_haul"
	}
	if flightClass == "" {
		flightClass = "economy"
	}
	if passengers < 1 {
		passengers = 1
	}

	var distance float64
	if distanceKm != nil {
		if err := validatePositive(*distanceKm, "flight distance"); err != nil {
			return model.EmissionResult{}, err
		}
		distance = *distanceKm
	} else {
		distance = c.catalog.FlightAverageDistance(flightType)
	}

	factor, err := c.catalog.TransportFactor("flights", flightType)
	if err != nil {
		return model.EmissionResult{}, err
	}
	multiplier := c.catalog.FlightClassMultiplier(flightClass)

	totalDistance := distance
	if returnTrip {
		totalDistance *= 2
	}
	emissionsKg := totalDistance * factor * multiplier * float64(passengers)

	leg := flightType
	if returnTrip {
		leg += ", return"
	}
	details := printer.Sprintf("%.0f km (%s) × %v kg CO2e/pkm × %vx (%s)",
		totalDistance, leg, factor, multiplier, flightClass)
	if passengers > 1 {
		details += fmt.Sprintf(" × %d pax", passengers)
	}
	details += printer.Sprintf(" = %.2f kg CO2e", emissionsKg)

	return model.EmissionResult{
		ActivityType:        "flight",
		ActivityAmount:      totalDistance,
		ActivityUnit:        "passenger-km",
		EmissionsKgCO2e:     emissionsKg,
		EmissionsTonnesCO2e: emissionsKg / 1000,
		Scope:               3,
		FactorUsed:          factor,
		FactorSource:        fmt.Sprintf("UK DEFRA 2024 - %s (%s)", flightType, flightClass),
		CalculationDetails:  details,
	}, nil
}

// Waste calculates Scope 3 disposal emissions. A material routes to the
// recycling table and can produce negative (avoided) emissions.
func (c *Calculator) Waste(tonnes float64, disposalMethod, material string) (model.EmissionResult, error) {
	if err := validatePositive(tonnes, "waste tonnes"); err != nil {
		return model.EmissionResult{}, err
	}

	factor, err := c.catalog.WasteFactor(disposalMethod, material)
	if err != nil {
		return model.EmissionResult{}, err
	}
	emissionsKg := tonnes * factor

	label := disposalMethod
	if material != "" {
		label = material + " recycling"
	}

	return model.EmissionResult{
		ActivityType:        "waste",
		ActivityAmount:      tonnes,
		ActivityUnit:        "tonnes",
		EmissionsKgCO2e:     emissionsKg,
		EmissionsTonnesCO2e: emissionsKg / 1000,
		Scope:               3,
		FactorUsed:          factor,
		FactorSource:        "UK DEFRA 2024 - " + label,
		CalculationDetails: printer.Sprintf("%.2f tonnes (%s) × %v kg CO2e/tonne = %.2f kg CO2e",
			tonnes, label, factor, emissionsKg),
	}, nil
}

// Water calculates Scope 3 emissions from water use, including treatment
// unless the caller asked for supply only.
func (c *Calculator) Water(cubicMetres float64, includeTreatment bool) (model.EmissionResult, error) {
	if err := validatePositive(cubicMetres, "water cubic metres"); err != nil {
		return model.EmissionResult{}, err
	}

	waterType := "supply"
	if includeTreatment {
		waterType = "supply_and_treatment"
	}
	factor, err := c.catalog.WaterFactor(waterType)
	if err != nil {
		return model.EmissionResult{}, err
	}
	emissionsKg := cubicMetres * factor

	return model.EmissionResult{
		ActivityType:        "water",
		ActivityAmount:      cubicMetres,
		ActivityUnit:        "cubic metres",
		EmissionsKgCO2e:     emissionsKg,
		EmissionsTonnesCO2e: emissionsKg / 1000,
		Scope:               3,
		FactorUsed:          factor,
		FactorSource:        "UK DEFRA 2024 - water " + waterType,
		CalculationDetails: printer.Sprintf("%.2f m³ × %v kg CO2e/m³ (%s) = %.2f kg CO2e",
			cubicMetres, factor, waterType, emissionsKg),
	}, nil
}

// CalculateSingle routes one activity to its category calculation,
// accepting the common spellings seen in uploaded files.
func (c *Calculator) CalculateSingle(activity model.ActivityInput) (model.EmissionResult, error) {
	switch strings.ToLower(strings.TrimSpace(string(activity.Category))) {
	case "electricity", "electric", "power", "grid":
		return c.Electricity(activity.Amount, activity.Country, activity.RenewablePercentage)

	case "fuel", "fuels", "combustion", "gas", "heating":
		fuelType := activity.SubCategory
		if fuelType == "" {
			fuelType = "natural_gas"
		}
		return c.Fuel(activity.Amount, fuelType, activity.Unit)

	case "transport", "travel", "vehicle", "road":
		return c.Transport(activity.Amount, "road", activity.SubCategory, 1, activity.Unit)

	case "flight", "flights", "air", "aviation", "air_travel":
		var distance *float64
		switch activity.Unit {
		case "km", "kilometres", "kilometers":
			d := activity.Amount
			distance = &d
		}
		flightType := activity.SubCategory
		if flightType == "" {
			flightType = "short_haul"
		}
		return c.Flight(distance, flightType, activity.FlightClass, activity.ReturnTrip, 1)

	case "waste", "disposal", "rubbish":
		method := activity.SubCategory
		if method == "" {
			method = "landfill_mixed"
		}
		return c.Waste(activity.Amount, method, "")

	case "water", "water_supply":
		includeTreatment := activity.SubCategory != "supply" && activity.SubCategory != "supply_only"
		return c.Water(activity.Amount, includeTreatment)
	}

	return model.EmissionResult{}, eris.Wrapf(ErrInvalidInput,
		"unknown activity category %q (supported: electricity, fuel, transport, flight, waste, water)",
		activity.Category)
}

// CalculateTotal runs every activity and aggregates the results. Failed
// rows become warnings rather than failing the batch; the scope breakdown
// always carries all three scope keys.
func (c *Calculator) CalculateTotal(activities []model.ActivityInput) model.TotalEmissions {
	results := make([]model.EmissionResult, 0, len(activities))
	var warnings []string

	for i, activity := range activities {
		result, err := c.CalculateSingle(activity)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", i+1, err))
			continue
		}
		results = append(results, result)
	}

	byScope := map[string]float64{"scope_1": 0, "scope_2": 0, "scope_3": 0}
	byCategory := map[string]float64{}
	var totalKg float64
	for _, r := range results {
		totalKg += r.EmissionsKgCO2e
		byScope[model.ScopeKey(r.Scope)] += r.EmissionsKgCO2e
		byCategory[r.ActivityType] += r.EmissionsKgCO2e
	}

	return model.TotalEmissions{
		TotalKgCO2e:     totalKg,
		TotalTonnesCO2e: totalKg / 1000,
		ByScope:         byScope,
		ByCategory:      byCategory,
		Breakdown:       results,
		ActivityCount:   len(results),
		Warnings:        warnings,
	}
}

func validatePositive(value float64, label string) error {
	if value < 0 {
		return eris.Wrapf(ErrInvalidInput, "%s cannot be negative (got %g)", label, value)
	}
	return nil
}
