package costs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

func TestRoadTax(t *testing.T) {
	cases := []struct {
		name string
		fuel model.FuelCategory
		year int
		reg  int
		want float64
	}{
		{"petrol", model.FuelPetrol, 2025, 2018, 40},
		{"diesel", model.FuelDiesel, 2025, 2018, 100},
		{"electric 2024", model.FuelElectric, 2024, 2020, 0},
		{"electric 2025", model.FuelElectric, 2025, 2020, 10},
		{"electric 2026", model.FuelElectric, 2026, 2020, 40},
		{"hydrogen", model.FuelHydrogen, 2030, 2024, 0},
		{"oldtimer", model.FuelPetrol, 2025, 1980, 10},
		{"plug-in hybrid", model.FuelPluginHybrid, 2025, 2021, 40},
	}
	for _, tc := range cases {
		v := model.VehicleDescription{FuelCategory: tc.fuel, MassKg: 1500, FirstRegistrationYear: tc.reg}
		got, err := RoadTax(v, tc.year)
		require.NoError(t, err, tc.name)
		assert.InDelta(t, tc.want, got, 1e-9, tc.name)
	}
}

func TestRoadTaxMissingInputs(t *testing.T) {
	_, err := RoadTax(model.VehicleDescription{FuelCategory: model.FuelOther, MassKg: 1200}, 2025)
	assert.ErrorIs(t, err, model.ErrMissingRequiredCost)

	_, err = RoadTax(model.VehicleDescription{FuelCategory: model.FuelPetrol}, 2025)
	assert.ErrorIs(t, err, model.ErrMissingRequiredCost)
}

func TestInsuranceBands(t *testing.T) {
	cases := []struct {
		price float64
		reg   int
		want  float64
	}{
		{12000, 2020, 40},
		{12000, 2010, 30},
		{25000, 2020, 60},
		{25000, 2010, 50},
		{40000, 2010, 90},
		{50000, 2020, 120},
		{75000, 2020, 145},
	}
	for _, tc := range cases {
		v := model.VehicleDescription{ListPrice: tc.price, FirstRegistrationYear: tc.reg}
		assert.Equal(t, tc.want, Insurance(v, 2025), "price %v reg %d", tc.price, tc.reg)
	}
}

func TestMaintenance(t *testing.T) {
	v := model.VehicleDescription{FuelCategory: model.FuelPetrol, FirstRegistrationYear: 2022}
	assert.Equal(t, 50.0, Maintenance(v, 2025, 1000, nil))
	assert.Equal(t, 65.0, Maintenance(v, 2025, 2000, nil))

	v.FirstRegistrationYear = 2008
	odo := 260000.0
	// 150, +30 and +50 for the odometer.
	assert.Equal(t, 230.0, Maintenance(v, 2025, 1000, &odo))

	v.FuelCategory = model.FuelElectric
	v.FirstRegistrationYear = 2023
	assert.Equal(t, 30.0, Maintenance(v, 2025, 1000, nil))
}

func TestInspection(t *testing.T) {
	v := model.VehicleDescription{FirstRegistrationYear: 2022}
	_, due := Inspection(v, 2025)
	assert.False(t, due)

	amount, due := Inspection(v, 2026)
	assert.True(t, due)
	assert.InDelta(t, 50.0/12, amount, 1e-9)
}

func TestEstimateListPrice(t *testing.T) {
	est := rules.Default().ListPriceEstimate
	cases := []struct {
		name  string
		brand string
		reg   int
		want  float64
	}{
		{"new bmw", "Bmw", 2025, 45000},
		{"five year old bmw", "Bmw", 2020, 20000},
		{"unknown brand", "Dacia", 2022, 15400},
		{"registered after as-of year", "Tesla", 2027, 60000},
		{"depreciation stops at ten years", "Ford", 2000, 5900},
	}
	for _, tc := range cases {
		v := model.VehicleDescription{Brand: tc.brand, FirstRegistrationYear: tc.reg}
		assert.Equal(t, tc.want, EstimateListPrice(est, v, 2025), tc.name)
	}
}
