package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
)

func TestClassifyFuel(t *testing.T) {
	cases := map[string]model.FuelCategory{
		"Benzine":                    model.FuelPetrol,
		"DIESEL":                     model.FuelDiesel,
		"Elektriciteit":              model.FuelElectric,
		"electric":                   model.FuelElectric,
		"Waterstof":                  model.FuelHydrogen,
		"Plug-in hybride":            model.FuelPluginHybrid,
		"PHEV":                       model.FuelPluginHybrid,
		"Hybride elektrisch/benzine": model.FuelHybrid,
		"LPG":                        model.FuelLPG,
		"CNG":                        model.FuelCNG,
		"Alcohol":                    model.FuelOther,
	}
	for text, want := range cases {
		if got := ClassifyFuel(text); got != want {
			t.Errorf("ClassifyFuel(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestNormalizeRegistryRecord(t *testing.T) {
	raw := &model.RawVehicleRecord{
		Brand:                 "TESLA",
		Model:                 "MODEL 3",
		FirstRegistrationDate: "20220315",
		Fuel:                  []any{"Elektriciteit"},
		Mass:                  "1765",
		ListPrice:             "45000",
		CO2:                   float64(0),
	}

	v, msgs, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no warnings, got %v", msgs)
	}
	if v.Brand != "Tesla" {
		t.Fatalf("expected brand Tesla, got %s", v.Brand)
	}
	if v.FuelCategory != model.FuelElectric {
		t.Fatalf("expected ELECTRIC, got %s", v.FuelCategory)
	}
	if v.FirstRegistrationYear != 2022 {
		t.Fatalf("expected year 2022, got %d", v.FirstRegistrationYear)
	}
	want := time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC)
	if v.FirstRegistrationDate == nil || !v.FirstRegistrationDate.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, v.FirstRegistrationDate)
	}
	if v.MassKg != 1765 || v.ListPrice != 45000 {
		t.Fatalf("unexpected mass/price %v/%v", v.MassKg, v.ListPrice)
	}
	if v.CO2GramsPerKm == nil || *v.CO2GramsPerKm != 0 {
		t.Fatalf("expected co2 0, got %v", v.CO2GramsPerKm)
	}
}

func TestNormalizeNumericAndISODates(t *testing.T) {
	v, _, err := Normalize(&model.RawVehicleRecord{
		FirstRegistrationDate: float64(20190701),
		Fuel:                  "Benzine",
		ListPrice:             30000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FirstRegistrationDate == nil || v.FirstRegistrationDate.Format("2006-01-02") != "2019-07-01" {
		t.Fatalf("expected 2019-07-01, got %v", v.FirstRegistrationDate)
	}

	v, _, err = Normalize(&model.RawVehicleRecord{
		FirstRegistrationDate: "2016-11-30",
		Fuel:                  "Diesel",
		ListPrice:             30000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FirstRegistrationYear != 2016 || v.FirstRegistrationDate == nil {
		t.Fatalf("expected ISO date to pass through, got %d %v", v.FirstRegistrationYear, v.FirstRegistrationDate)
	}
}

func TestNormalizeUnrecognizedDateFallsBackToYear(t *testing.T) {
	v, msgs, err := Normalize(&model.RawVehicleRecord{
		FirstRegistrationDate: "15/03/2022",
		FirstRegistrationYear: "2022",
		Fuel:                  "Benzine",
		ListPrice:             30000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FirstRegistrationDate != nil {
		t.Fatalf("expected no precise date, got %v", v.FirstRegistrationDate)
	}
	if v.FirstRegistrationYear != 2022 {
		t.Fatalf("expected year 2022, got %d", v.FirstRegistrationYear)
	}
	if len(msgs) != 1 || msgs[0].Code != model.CodeRegistrationDate {
		t.Fatalf("expected REGISTRATION_DATE_UNKNOWN warning, got %v", msgs)
	}
}

func TestNormalizeSecondaryElectricIsPluginHybrid(t *testing.T) {
	v, _, err := Normalize(&model.RawVehicleRecord{
		FirstRegistrationYear: 2021,
		Fuel:                  []string{"Benzine", "Elektriciteit"},
		ListPrice:             52000,
		CO2:                   "32",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.FuelCategory != model.FuelPluginHybrid {
		t.Fatalf("expected PLUGIN_HYBRID, got %s", v.FuelCategory)
	}
	if v.CO2GramsPerKm == nil || *v.CO2GramsPerKm != 32 {
		t.Fatalf("expected co2 32, got %v", v.CO2GramsPerKm)
	}
}

func TestNormalizeUnknownFuelDegrades(t *testing.T) {
	v, msgs, err := Normalize(&model.RawVehicleRecord{
		FirstRegistrationYear: 2020,
		Fuel:                  "Alcohol",
		ListPrice:             20000,
	})
	if err != nil {
		t.Fatalf("unknown fuel must not abort: %v", err)
	}
	if v.FuelCategory != model.FuelOther {
		t.Fatalf("expected OTHER, got %s", v.FuelCategory)
	}
	if len(msgs) != 1 || msgs[0].Code != model.CodeUnknownFuel || msgs[0].Level != model.LevelWarning {
		t.Fatalf("expected UNKNOWN_FUEL_CATEGORY warning, got %v", msgs)
	}
}

func TestNormalizeFailures(t *testing.T) {
	cases := map[string]*model.RawVehicleRecord{
		"nil record":    nil,
		"no year":       {Fuel: "Benzine", ListPrice: 10000},
		"no fuel":       {FirstRegistrationYear: 2020, ListPrice: 10000},
		"blank fuel":    {FirstRegistrationYear: 2020, Fuel: []any{" ", ""}},
		"negative list": {FirstRegistrationYear: 2020, Fuel: "Benzine", ListPrice: -1},
	}
	for name, raw := range cases {
		_, _, err := Normalize(raw)
		if !errors.Is(err, model.ErrInvalidVehicleData) {
			t.Errorf("%s: expected ErrInvalidVehicleData, got %v", name, err)
		}
	}
}

func TestNormalizeMissingListPriceWarns(t *testing.T) {
	v, msgs, err := Normalize(&model.RawVehicleRecord{FirstRegistrationYear: 2018, Fuel: "Diesel"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ListPrice != 0 {
		t.Fatalf("expected list price 0, got %v", v.ListPrice)
	}
	if len(msgs) != 1 || msgs[0].Code != model.CodeMissingListPrice {
		t.Fatalf("expected MISSING_LIST_PRICE warning, got %v", msgs)
	}
}

func TestNormalizeEstimatesMissingListPrice(t *testing.T) {
	var seen model.VehicleDescription
	est := func(v model.VehicleDescription) float64 {
		seen = v
		return 20000
	}
	raw := &model.RawVehicleRecord{Brand: "BMW", FirstRegistrationYear: 2020, Fuel: "Benzine"}
	v, msgs, err := Normalize(raw, WithListPriceEstimator(est))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ListPrice != 20000 {
		t.Fatalf("expected estimated list price 20000, got %v", v.ListPrice)
	}
	if seen.FirstRegistrationYear != 2020 || seen.Brand != v.Brand {
		t.Fatalf("estimator saw incomplete vehicle: %+v", seen)
	}
	if len(msgs) != 1 || msgs[0].Code != model.CodeEstimatedListPrice {
		t.Fatalf("expected ESTIMATED_LIST_PRICE warning, got %v", msgs)
	}

	raw.ListPrice = "41000"
	v, msgs, err = Normalize(raw, WithListPriceEstimator(est))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ListPrice != 41000 || len(msgs) != 0 {
		t.Fatalf("registry price must win over the estimate, got %v %v", v.ListPrice, msgs)
	}
}
