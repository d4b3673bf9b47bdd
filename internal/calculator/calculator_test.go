package calculator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbon-compass/compass/internal/factors"
	"github.com/carbon-compass/compass/internal/model"
)

func newCalculator() *Calculator {
	return New(factors.Load(""))
}

func TestElectricity(t *testing.T) {
	c := newCalculator()

	r, err := c.Electricity(10000, "UK", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Scope)
	assert.InDelta(t, 10000*0.207, r.EmissionsKgCO2e, 1e-6)
	assert.InDelta(t, r.EmissionsKgCO2e/1000, r.EmissionsTonnesCO2e, 1e-9)
	assert.Equal(t, "IEA/DEFRA 2024 - UK", r.FactorSource)

	t.Run("renewable share reduces grid draw", func(t *testing.T) {
		half, err := c.Electricity(10000, "UK", 50)
		require.NoError(t, err)
		assert.InDelta(t, r.EmissionsKgCO2e/2, half.EmissionsKgCO2e, 1e-6)
	})

	t.Run("invalid renewable percentage", func(t *testing.T) {
		_, err := c.Electricity(100, "UK", 120)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("negative kwh", func(t *testing.T) {
		_, err := c.Electricity(-1, "UK", 0)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("empty country uses world average", func(t *testing.T) {
		r, err := c.Electricity(1000, "", 0)
		require.NoError(t, err)
		assert.InDelta(t, 1000*0.436, r.EmissionsKgCO2e, 1e-6)
		assert.Equal(t, "IEA/DEFRA 2024 - world_average", r.FactorSource)
	})
}

func TestFuel(t *testing.T) {
	c := newCalculator()

	r, err := c.Fuel(500, "diesel", "litres")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Scope)
	assert.InDelta(t, 500*2.512, r.EmissionsKgCO2e, 1e-6)
	assert.Equal(t, "UK DEFRA 2024 - diesel", r.FactorSource)

	_, err = c.Fuel(10, "unobtainium", "litres")
	assert.True(t, errors.Is(err, factors.ErrNotFound))
}

func TestTransport(t *testing.T) {
	c := newCalculator()

	t.Run("miles convert to km", func(t *testing.T) {
		km, err := c.Transport(100, "road", "average_car", 1, "km")
		require.NoError(t, err)
		miles, err := c.Transport(100, "road", "average_car", 1, "miles")
		require.NoError(t, err)
		assert.InDelta(t, km.EmissionsKgCO2e*1.60934, miles.EmissionsKgCO2e, 1e-6)
	})

	t.Run("passenger allocation", func(t *testing.T) {
		solo, err := c.Transport(200, "road", "average_car", 1, "km")
		require.NoError(t, err)
		shared, err := c.Transport(200, "road", "average_car", 4, "km")
		require.NoError(t, err)
		assert.InDelta(t, solo.EmissionsKgCO2e/4, shared.EmissionsKgCO2e, 1e-9)
	})

	t.Run("van is scope 1", func(t *testing.T) {
		r, err := c.Transport(50, "road", "van", 1, "km")
		require.NoError(t, err)
		assert.Equal(t, 1, r.Scope)
	})
}

func TestFlight(t *testing.T) {
	c := newCalculator()

	t.Run("nil distance uses type average", func(t *testing.T) {
		r, err := c.Flight(nil, "long_haul", "economy", false, 1)
		require.NoError(t, err)
		assert.InDelta(t, 7000*0.148, r.EmissionsKgCO2e, 1e-6)
		assert.Equal(t, "passenger-km", r.ActivityUnit)
		assert.Equal(t, 3, r.Scope)
	})

	t.Run("return trip doubles distance", func(t *testing.T) {
		d := 1000.0
		oneWay, err := c.Flight(&d, "short_haul", "economy", false, 1)
		require.NoError(t, err)
		ret, err := c.Flight(&d, "short_haul", "economy", true, 1)
		require.NoError(t, err)
		assert.InDelta(t, 2*oneWay.EmissionsKgCO2e, ret.EmissionsKgCO2e, 1e-9)
		assert.InDelta(t, 2000, ret.ActivityAmount, 1e-9)
	})

	t.Run("class multiplier", func(t *testing.T) {
		d := 1000.0
		economy, err := c.Flight(&d, "short_haul", "economy", false, 1)
		require.NoError(t, err)
		business, err := c.Flight(&d, "short_haul", "business", false, 1)
		require.NoError(t, err)
		assert.InDelta(t, 2.9*economy.EmissionsKgCO2e, business.EmissionsKgCO2e, 1e-6)
	})
}

func TestWaste(t *testing.T) {
	c := newCalculator()

	r, err := c.Waste(2, "landfill_mixed", "")
	require.NoError(t, err)
	assert.InDelta(t, 2*497.0, r.EmissionsKgCO2e, 1e-6)
	assert.Equal(t, 3, r.Scope)

	t.Run("recycled material is avoided emissions", func(t *testing.T) {
		r, err := c.Waste(1, "recycling_average", "aluminium")
		require.NoError(t, err)
		assert.InDelta(t, -8143.0, r.EmissionsKgCO2e, 1e-6)
		assert.Equal(t, "UK DEFRA 2024 - aluminium recycling", r.FactorSource)
	})
}

func TestWater(t *testing.T) {
	c := newCalculator()

	full, err := c.Water(100, true)
	require.NoError(t, err)
	assert.InDelta(t, 100*0.449, full.EmissionsKgCO2e, 1e-6)

	supply, err := c.Water(100, false)
	require.NoError(t, err)
	assert.InDelta(t, 100*0.177, supply.EmissionsKgCO2e, 1e-6)
	assert.Equal(t, "UK DEFRA 2024 - water supply", supply.FactorSource)
}

func TestCalculateSingle(t *testing.T) {
	c := newCalculator()

	t.Run("category aliases", func(t *testing.T) {
		for _, cat := range []string{"electricity", "Power", "GRID"} {
			r, err := c.CalculateSingle(model.ActivityInput{
				Category: model.Category(cat), Amount: 100, Country: "france",
			})
			require.NoError(t, err, cat)
			assert.Equal(t, "electricity", r.ActivityType)
		}
	})

	t.Run("fuel defaults to natural gas", func(t *testing.T) {
		r, err := c.CalculateSingle(model.ActivityInput{
			Category: "heating", Amount: 1000, Unit: "kWh",
		})
		require.NoError(t, err)
		assert.InDelta(t, 1000*0.182, r.EmissionsKgCO2e, 1e-6)
	})

	t.Run("flight in non-km unit uses average distance", func(t *testing.T) {
		r, err := c.CalculateSingle(model.ActivityInput{
			Category: "flight", Amount: 3, Unit: "trips",
		})
		require.NoError(t, err)
		assert.InDelta(t, 1500*0.151, r.EmissionsKgCO2e, 1e-6)
	})

	t.Run("water supply only", func(t *testing.T) {
		r, err := c.CalculateSingle(model.ActivityInput{
			Category: "water", SubCategory: "supply_only", Amount: 10, Unit: "cubic_metres",
		})
		require.NoError(t, err)
		assert.InDelta(t, 10*0.177, r.EmissionsKgCO2e, 1e-6)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := c.CalculateSingle(model.ActivityInput{Category: "magic", Amount: 1})
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestCalculateTotal(t *testing.T) {
	c := newCalculator()

	activities := []model.ActivityInput{
		{Category: "electricity", Amount: 10000, Country: "uk", Unit: "kWh"},
		{Category: "fuel", SubCategory: "diesel", Amount: 500, Unit: "litres"},
		{Category: "transport", SubCategory: "average_car", Amount: 1200, Unit: "km"},
		{Category: "nonsense", Amount: 1},
		{Category: "waste", SubCategory: "landfill_mixed", Amount: -3, Unit: "tonnes"},
	}

	total := c.CalculateTotal(activities)

	assert.Equal(t, 3, total.ActivityCount)
	assert.Len(t, total.Breakdown, 3)
	require.Len(t, total.Warnings, 2)
	assert.Contains(t, total.Warnings[0], "row 4:")
	assert.Contains(t, total.Warnings[1], "row 5:")

	var sum float64
	for _, r := range total.Breakdown {
		sum += r.EmissionsKgCO2e
	}
	assert.InDelta(t, sum, total.TotalKgCO2e, 1e-9)
	assert.InDelta(t, total.TotalKgCO2e/1000, total.TotalTonnesCO2e, 1e-9)

	// All three scope keys are always present.
	assert.Contains(t, total.ByScope, "scope_1")
	assert.Contains(t, total.ByScope, "scope_2")
	assert.Contains(t, total.ByScope, "scope_3")
	assert.InDelta(t, total.ByScope["scope_1"]+total.ByScope["scope_2"]+total.ByScope["scope_3"],
		total.TotalKgCO2e, 1e-9)

	assert.InDelta(t, 10000*0.207, total.ByCategory["electricity"], 1e-6)
}

func TestCalculateTotalEmpty(t *testing.T) {
	c := newCalculator()
	total := c.CalculateTotal(nil)
	assert.Zero(t, total.TotalKgCO2e)
	assert.Zero(t, total.ActivityCount)
	assert.Empty(t, total.Warnings)
	assert.Equal(t, map[string]float64{"scope_1": 0, "scope_2": 0, "scope_3": 0}, total.ByScope)
}
