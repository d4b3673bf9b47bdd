// Package factors loads and serves emission conversion factors. Tables are
// compiled into the binary and can be overridden by a data directory; the
// catalog is immutable after Load and safe for concurrent reads.
package factors

import (
	"embed"
	"encoding/json"
	"io/fs"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed data/*.json
var embedded embed.FS

// ErrNotFound is the sentinel for any failed factor lookup. Callers check
// it with errors.Is; wrapped messages carry the detail.
var ErrNotFound = eris.New("factors: not found")

type factorEntry struct {
	Value float64 `json:"value"`
	Name  string  `json:"name"`
	Scope int     `json:"scope,omitempty"`
}

type electricityTable struct {
	Source  string                 `json:"source"`
	Factors map[string]factorEntry `json:"factors"`
}

type fuelEntry struct {
	Name        string             `json:"name"`
	Scope       int                `json:"scope"`
	DefaultUnit string             `json:"default_unit"`
	Factors     map[string]float64 `json:"factors"`
}

type fuelsTable struct {
	Source string               `json:"source"`
	Fuels  map[string]fuelEntry `json:"fuels"`
}

type vehicleSection struct {
	Vehicles map[string]factorEntry `json:"vehicles"`
}

type typedSection struct {
	Types map[string]factorEntry `json:"types"`
}

type flightSection struct {
	Types              map[string]factorEntry `json:"types"`
	ClassMultipliers   map[string]float64     `json:"class_multipliers"`
	AverageDistancesKm map[string]float64     `json:"average_distances_km"`
}

type transportTable struct {
	Source   string         `json:"source"`
	Road     vehicleSection `json:"road"`
	Rail     typedSection   `json:"rail"`
	Shipping typedSection   `json:"shipping"`
	Flights  flightSection  `json:"flights"`
}

type methodSection struct {
	Methods map[string]factorEntry `json:"methods"`
}

type materialSection struct {
	Materials map[string]factorEntry `json:"materials"`
}

type wasteTable struct {
	Source            string          `json:"source"`
	DisposalMethods   methodSection   `json:"disposal_methods"`
	MaterialRecycling materialSection `json:"material_recycling"`
}

type waterTable struct {
	Source  string                 `json:"source"`
	Factors map[string]factorEntry `json:"factors"`
}

// Catalog holds the five loaded factor tables.
type Catalog struct {
	electricity electricityTable
	fuels       fuelsTable
	transport   transportTable
	waste       wasteTable
	water       waterTable
}

// Load builds a Catalog from the embedded tables, or from dataDir when it
// is non-empty. A missing or malformed table degrades to an empty one so
// lookups fail individually rather than startup failing wholesale.
func Load(dataDir string) *Catalog {
	var source fs.FS = embedded
	prefix := "data/"
	if dataDir != "" {
		source = os.DirFS(dataDir)
		prefix = ""
	}

	c := &Catalog{}
	loadTable(source, prefix+"electricity.json", &c.electricity)
	loadTable(source, prefix+"fuels.json", &c.fuels)
	loadTable(source, prefix+"transport.json", &c.transport)
	loadTable(source, prefix+"waste.json", &c.waste)
	loadTable(source, prefix+"water.json", &c.water)
	c.validate()
	return c
}

func loadTable(source fs.FS, path string, dst any) {
	raw, err := fs.ReadFile(source, path)
	if err != nil {
		zap.L().Warn("factors: table missing, using empty table",
			zap.String("path", path), zap.Error(err))
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		zap.L().Warn("factors: table malformed, using empty table",
			zap.String("path", path), zap.Error(err))
	}
}

// validate drops entries with non-finite values so lookups never return
// NaN into a calculation.
func (c *Catalog) validate() {
	dropBad := func(table string, m map[string]factorEntry) {
		for key, e := range m {
			if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
				zap.L().Warn("factors: dropping malformed entry",
					zap.String("table", table), zap.String("key", key))
				delete(m, key)
			}
		}
	}
	dropBad("electricity", c.electricity.Factors)
	dropBad("road", c.transport.Road.Vehicles)
	dropBad("rail", c.transport.Rail.Types)
	dropBad("shipping", c.transport.Shipping.Types)
	dropBad("flights", c.transport.Flights.Types)
	dropBad("waste_methods", c.waste.DisposalMethods.Methods)
	dropBad("waste_materials", c.waste.MaterialRecycling.Materials)
	dropBad("water", c.water.Factors)
}

// FactorInfo is one listed factor for discovery endpoints.
type FactorInfo struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FuelInfo is one listed fuel with its available units.
type FuelInfo struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	AvailableUnits []string `json:"available_units"`
	DefaultUnit    string   `json:"default_unit"`
}

// ElectricityFactor returns the grid factor in kg CO2e/kWh for a country,
// falling back to the world average when the country is unknown.
func (c *Catalog) ElectricityFactor(country string) (float64, error) {
	key := NormaliseCountry(country)
	if e, ok := c.electricity.Factors[key]; ok {
		return e.Value, nil
	}
	if e, ok := c.electricity.Factors["world_average"]; ok {
		return e.Value, nil
	}
	return 0, eris.Wrapf(ErrNotFound, "no electricity factor for country %q", country)
}

// Countries lists all countries with electricity factors, sorted by key.
func (c *Catalog) Countries() []FactorInfo {
	return listEntries(c.electricity.Factors)
}

// FuelFactor returns the factor in kg CO2e per unit for a fuel type.
func (c *Catalog) FuelFactor(fuelType, unit string) (float64, error) {
	fuel, ok := c.fuels.Fuels[NormaliseKey(fuelType)]
	if !ok {
		return 0, eris.Wrapf(ErrNotFound, "unknown fuel type %q (available: %s)",
			fuelType, strings.Join(sortedKeys(c.fuels.Fuels), ", "))
	}
	unitKey := NormaliseUnit(unit)
	factor, ok := fuel.Factors[unitKey]
	if !ok {
		return 0, eris.Wrapf(ErrNotFound, "unit %q not available for %s (available: %s)",
			unit, fuelType, strings.Join(sortedKeys(fuel.Factors), ", "))
	}
	return factor, nil
}

// FuelScope returns the GHG scope for a fuel type, defaulting to 1.
func (c *Catalog) FuelScope(fuelType string) int {
	if fuel, ok := c.fuels.Fuels[NormaliseKey(fuelType)]; ok && fuel.Scope != 0 {
		return fuel.Scope
	}
	return 1
}

// Fuels lists all fuels with their available units.
func (c *Catalog) Fuels() []FuelInfo {
	out := make([]FuelInfo, 0, len(c.fuels.Fuels))
	for _, key := range sortedKeys(c.fuels.Fuels) {
		fuel := c.fuels.Fuels[key]
		name := fuel.Name
		if name == "" {
			name = key
		}
		defaultUnit := fuel.DefaultUnit
		if defaultUnit == "" {
			defaultUnit = "litres"
		}
		out = append(out, FuelInfo{
			Key:            key,
			Name:           name,
			AvailableUnits: sortedKeys(fuel.Factors),
			DefaultUnit:    defaultUnit,
		})
	}
	return out
}

// roadModes are mode words routed to the road vehicle table.
var roadModes = map[string]bool{
	"road": true, "car": true, "van": true, "hgv": true,
	"bus": true, "taxi": true, "motorcycle": true,
}

// TransportFactor returns the per-km factor for a transport mode. Road
// lookups try exact then substring vehicle matching before falling back to
// the average car.
func (c *Catalog) TransportFactor(mode, vehicleType string) (float64, error) {
	modeKey := NormaliseKey(mode)
	switch {
	case roadModes[modeKey]:
		if vehicleType == "" {
			vehicleType = modeKey
		}
		return c.roadFactor(vehicleType)
	case modeKey == "flight" || modeKey == "flights" || modeKey == "air":
		return c.flightFactor(vehicleType)
	case modeKey == "rail":
		return c.typedFactor(c.transport.Rail.Types, vehicleType, "national_rail", 0.035, "rail")
	case modeKey == "shipping":
		return c.typedFactor(c.transport.Shipping.Types, vehicleType, "container_ship", 0.016, "shipping")
	}
	return 0, eris.Wrapf(ErrNotFound, "unknown transport mode %q (available: road, flights, rail, shipping)", mode)
}

// TransportScope returns the GHG scope for a transport selection, default 3.
func (c *Catalog) TransportScope(mode, vehicleType string) int {
	modeKey := NormaliseKey(mode)
	if roadModes[modeKey] {
		key := NormaliseKey(vehicleType)
		if key == "" {
			key = "average_car"
		}
		if v, ok := c.transport.Road.Vehicles[key]; ok && v.Scope != 0 {
			return v.Scope
		}
	}
	return 3
}

// FlightClassMultiplier returns the cabin-class uplift, default 1.0.
func (c *Catalog) FlightClassMultiplier(class string) float64 {
	if m, ok := c.transport.Flights.ClassMultipliers[NormaliseKey(class)]; ok {
		return m
	}
	return 1.0
}

// FlightAverageDistance returns the average distance in km for a flight
// type, defaulting to short-haul's 1500 km.
func (c *Catalog) FlightAverageDistance(flightType string) float64 {
	if d, ok := c.transport.Flights.AverageDistancesKm[NormaliseKey(flightType)]; ok {
		return d
	}
	return 1500
}

// Transport lists all transport factors grouped by mode.
func (c *Catalog) Transport() map[string][]FactorInfo {
	return map[string][]FactorInfo{
		"road":     listEntries(c.transport.Road.Vehicles),
		"rail":     listEntries(c.transport.Rail.Types),
		"shipping": listEntries(c.transport.Shipping.Types),
		"flights":  listEntries(c.transport.Flights.Types),
	}
}

// WasteFactor returns the kg CO2e/tonne factor for a disposal method. A
// material takes precedence and resolves against the recycling table;
// recycling factors may be negative (avoided emissions).
func (c *Catalog) WasteFactor(disposalMethod, material string) (float64, error) {
	if material != "" {
		if e, ok := c.waste.MaterialRecycling.Materials[NormaliseKey(material)]; ok {
			return e.Value, nil
		}
		return 0, eris.Wrapf(ErrNotFound, "unknown recycling material %q (available: %s)",
			material, strings.Join(sortedKeys(c.waste.MaterialRecycling.Materials), ", "))
	}
	if e, ok := c.waste.DisposalMethods.Methods[NormaliseKey(disposalMethod)]; ok {
		return e.Value, nil
	}
	return 0, eris.Wrapf(ErrNotFound, "unknown disposal method %q (available: %s)",
		disposalMethod, strings.Join(sortedKeys(c.waste.DisposalMethods.Methods), ", "))
}

// WasteOptions lists disposal methods and recycling materials.
func (c *Catalog) WasteOptions() (methods, materials []FactorInfo) {
	return listEntries(c.waste.DisposalMethods.Methods),
		listEntries(c.waste.MaterialRecycling.Materials)
}

// WaterFactor returns the kg CO2e/m3 factor for a water type
// (supply, treatment, or supply_and_treatment).
func (c *Catalog) WaterFactor(waterType string) (float64, error) {
	if e, ok := c.water.Factors[NormaliseKey(waterType)]; ok {
		return e.Value, nil
	}
	return 0, eris.Wrapf(ErrNotFound, "unknown water type %q (available: %s)",
		waterType, strings.Join(sortedKeys(c.water.Factors), ", "))
}

func (c *Catalog) roadFactor(vehicleType string) (float64, error) {
	vehicles := c.transport.Road.Vehicles
	key := NormaliseKey(vehicleType)
	if e, ok := vehicles[key]; ok {
		return e.Value, nil
	}
	// Substring match in either direction, in stable key order.
	for _, vkey := range sortedKeys(vehicles) {
		if strings.Contains(vkey, key) || strings.Contains(key, vkey) {
			return vehicles[vkey].Value, nil
		}
	}
	if e, ok := vehicles["average_car"]; ok {
		return e.Value, nil
	}
	return 0, eris.Wrapf(ErrNotFound, "unknown vehicle type %q", vehicleType)
}

func (c *Catalog) flightFactor(flightType string) (float64, error) {
	return c.typedFactor(c.transport.Flights.Types, flightType, "short_haul", 0.151, "flight")
}

// typedFactor resolves a keyed type with a default key; the literal
// fallback only applies when the default key itself is missing from an
// otherwise-loaded table.
func (c *Catalog) typedFactor(types map[string]factorEntry, typ, defaultKey string, defaultValue float64, label string) (float64, error) {
	if typ == "" {
		if e, ok := types[defaultKey]; ok {
			return e.Value, nil
		}
		return defaultValue, nil
	}
	if e, ok := types[NormaliseKey(typ)]; ok {
		return e.Value, nil
	}
	return 0, eris.Wrapf(ErrNotFound, "unknown %s type %q", label, typ)
}

func listEntries(m map[string]factorEntry) []FactorInfo {
	out := make([]FactorInfo, 0, len(m))
	for _, key := range sortedKeys(m) {
		e := m[key]
		name := e.Name
		if name == "" {
			name = key
		}
		out = append(out, FactorInfo{Key: key, Name: name, Value: e.Value})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
