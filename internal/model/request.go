package model

import "time"

type CalculationRequest struct {
	TenantID     string             `json:"tenant_id,omitempty"`
	LicensePlate string             `json:"license_plate,omitempty"`
	Vehicle      *RawVehicleRecord  `json:"vehicle"`
	Usage        Usage              `json:"usage"`
	Ownership    Ownership          `json:"ownership"`
	Recurring    Recurring          `json:"recurring"`
	Finance      Finance            `json:"finance"`
	AsOf         AsOf               `json:"as_of"`
	Projection   *ProjectionOptions `json:"projection,omitempty"`
}

type Usage struct {
	MonthlyDistance       float64  `json:"monthly_distance"`
	ConsumptionPerHundred float64  `json:"consumption_per_hundred"`
	UnitPrice             float64  `json:"unit_price"`
	Odometer              *float64 `json:"odometer,omitempty"`
}

// Ownership describes the private purchase. A nil PurchasePrice falls back to the
// list price; an explicit zero is kept.
type Ownership struct {
	PurchasePrice     *float64 `json:"purchase_price,omitempty"`
	ResidualValue     *float64 `json:"residual_value,omitempty"`
	DepreciationYears int      `json:"depreciation_years"`
}

// Recurring holds monthly amounts. A nil field is estimated, an explicit zero is kept.
type Recurring struct {
	RoadTax     *float64 `json:"road_tax,omitempty"`
	Insurance   *float64 `json:"insurance,omitempty"`
	Maintenance *float64 `json:"maintenance,omitempty"`
}

// Finance carries the driver's income as decoded, number or numeric string; the
// engine coerces it and rejects anything else as invalid income.
type Finance struct {
	AnnualGrossIncome any     `json:"annual_gross_income"`
	OwnContribution   float64 `json:"own_contribution,omitempty"`
}

// AsOf pins the calculation in time. Year selects the rate tables, Instant is the
// evaluation moment used for the lock-in window. Zero values fall back to the clock.
type AsOf struct {
	Year    int       `json:"year"`
	Instant time.Time `json:"instant"`
}

type ProjectionOptions struct {
	Years         int      `json:"years,omitempty"`
	InflationRate *float64 `json:"inflation_rate,omitempty"`
}
