package model

import "time"

type FuelCategory string

const (
	FuelPetrol       FuelCategory = "PETROL"
	FuelDiesel       FuelCategory = "DIESEL"
	FuelElectric     FuelCategory = "ELECTRIC"
	FuelHydrogen     FuelCategory = "HYDROGEN"
	FuelPluginHybrid FuelCategory = "PLUGIN_HYBRID"
	FuelHybrid       FuelCategory = "HYBRID"
	FuelLPG          FuelCategory = "LPG"
	FuelCNG          FuelCategory = "CNG"
	FuelOther        FuelCategory = "OTHER"
)

// IsZeroEmission reports whether the category qualifies for the electric regime.
// Hybrids never do, even when one of their fuels is electricity.
func (f FuelCategory) IsZeroEmission() bool {
	return f == FuelElectric || f == FuelHydrogen
}

// RawVehicleRecord is the loosely typed shape returned by the vehicle registry or
// entered by hand. Values may be strings, numbers, lists or null.
type RawVehicleRecord struct {
	LicensePlate          string `json:"kenteken,omitempty"`
	Brand                 any    `json:"merk,omitempty"`
	Model                 any    `json:"model,omitempty"`
	FirstRegistrationDate any    `json:"datum_eerste_toelating,omitempty"`
	FirstRegistrationYear any    `json:"bouwjaar,omitempty"`
	Fuel                  any    `json:"brandstof,omitempty"`
	Mass                  any    `json:"massa_ledig_voertuig,omitempty"`
	ListPrice             any    `json:"catalogusprijs,omitempty"`
	CO2                   any    `json:"co2_uitstoot,omitempty"`
	MarketValue           any    `json:"dagwaarde,omitempty"`
}

type VehicleDescription struct {
	Brand                 string       `json:"brand,omitempty"`
	Model                 string       `json:"model,omitempty"`
	FirstRegistrationYear int          `json:"first_registration_year"`
	FirstRegistrationDate *time.Time   `json:"first_registration_date"`
	FuelCategory          FuelCategory `json:"fuel_category"`
	MassKg                float64      `json:"mass_kg"`
	ListPrice             float64      `json:"list_price"`
	CO2GramsPerKm         *float64     `json:"co2_grams_per_km"`
	CurrentMarketValue    *float64     `json:"current_market_value"`
}

// AgeAt returns the vehicle age in whole calendar years for the given year.
func (v VehicleDescription) AgeAt(year int) int {
	return year - v.FirstRegistrationYear
}

type BenefitInKindResult struct {
	Percentage           float64    `json:"percentage"`
	BasisAmount          float64    `json:"basis_amount"`
	RateYear             int        `json:"rate_year"`
	IsYoungtimer         bool       `json:"is_youngtimer"`
	IsPreThreshold       bool       `json:"is_pre_threshold"`
	IsElectricOrHydrogen bool       `json:"is_electric_or_hydrogen"`
	LockInActive         bool       `json:"lock_in_active"`
	LockInExpiryDate     *time.Time `json:"lock_in_expiry_date"`
	Explanation          string     `json:"explanation"`
}

// AnnualAmount is the imputed yearly income before tax.
func (r BenefitInKindResult) AnnualAmount() float64 {
	return r.BasisAmount * r.Percentage / 100
}
