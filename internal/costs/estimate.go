package costs

import (
	"fmt"
	"math"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/money"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

const (
	roadTaxPer100Kg     = 8.0
	dieselSurcharge     = 2.5
	oldtimerAge         = 40
	oldtimerDiscount    = 0.25
	electricPhaseInYear = 2025
	electricFullYear    = 2026
	electricPhaseInRate = 2.0

	inspectionPerYear = 50.0
	inspectionMinAge  = 3
)

// RoadTax estimates the monthly motor vehicle tax from unladen mass. It fails with
// ErrMissingRequiredCost when mass or a usable fuel category is missing.
func RoadTax(v model.VehicleDescription, asOfYear int) (float64, error) {
	if v.FuelCategory == model.FuelOther {
		return 0, fmt.Errorf("%w: road tax cannot be estimated for an unknown fuel category", model.ErrMissingRequiredCost)
	}
	if v.MassKg <= 0 {
		return 0, fmt.Errorf("%w: road tax cannot be estimated without vehicle mass", model.ErrMissingRequiredCost)
	}

	rate := roadTaxPer100Kg
	switch v.FuelCategory {
	case model.FuelHydrogen:
		return 0, nil
	case model.FuelElectric:
		switch {
		case asOfYear < electricPhaseInYear:
			return 0, nil
		case asOfYear < electricFullYear:
			rate = electricPhaseInRate
		}
	case model.FuelDiesel:
		rate *= dieselSurcharge
	}
	if v.FuelCategory != model.FuelElectric && v.AgeAt(asOfYear) > oldtimerAge {
		rate *= oldtimerDiscount
	}

	quarterly := v.MassKg / 100 * rate
	return money.Round(quarterly/3, 2), nil
}

// Insurance estimates a monthly premium from list price, banded by age.
func Insurance(v model.VehicleDescription, asOfYear int) float64 {
	old := v.AgeAt(asOfYear) > 10
	var premium float64
	switch p := v.ListPrice; {
	case p < 15000:
		premium = 40
		if old {
			premium -= 10
		}
	case p < 30000:
		premium = 60
		if old {
			premium -= 10
		}
	case p < 50000:
		premium = 90
	default:
		premium = 120 + (p-50000)/1000
	}
	return money.Round(premium, 0)
}

// Maintenance estimates monthly upkeep from age, yearly distance and odometer.
func Maintenance(v model.VehicleDescription, asOfYear int, monthlyDistance float64, odometer *float64) float64 {
	age := v.AgeAt(asOfYear)
	cost := 50.0
	if age > 10 {
		cost += 50
	}
	if age > 15 {
		cost += 50
	}
	if monthlyDistance*12 > 20000 {
		cost *= 1.3
	}
	if odometer != nil {
		if *odometer > 150000 {
			cost += 30
		}
		if *odometer > 250000 {
			cost += 50
		}
	}
	if v.FuelCategory == model.FuelElectric {
		cost *= 0.6
	}
	return money.Round(cost, 0)
}

// Inspection is the monthly share of the yearly roadworthiness test, due from the
// fourth year on.
func Inspection(v model.VehicleDescription, asOfYear int) (float64, bool) {
	if v.AgeAt(asOfYear) <= inspectionMinAge {
		return 0, false
	}
	return inspectionPerYear / 12, true
}

// EstimateListPrice guesses a catalogue price from brand and age when the registry
// has none. Ages below zero count as new; ages past est.MaxYears stop depreciating.
func EstimateListPrice(est rules.ListPriceEstimate, v model.VehicleDescription, asOfYear int) float64 {
	age := v.AgeAt(asOfYear)
	if age < 0 {
		age = 0
	}
	if age > est.MaxYears {
		age = est.MaxYears
	}
	price := est.Base(v.Brand) * math.Pow(1-est.YearlyDepreciation, float64(age))
	if est.RoundTo > 0 {
		return money.Round(price/est.RoundTo, 0) * est.RoundTo
	}
	return money.Round(price, 0)
}
