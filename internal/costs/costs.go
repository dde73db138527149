// Package costs builds the monthly cost breakdowns for private ownership and for a
// business car.
package costs

import (
	"errors"
	"fmt"
	"math"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/money"
)

const (
	DefaultResidualRatio     = 0.30
	DefaultDepreciationYears = 5
)

type Options struct {
	// ResidualRatio is the share of the purchase price kept at the end of the
	// depreciation period when no residual value is given.
	ResidualRatio float64
}

func DefaultOptions() Options {
	return Options{ResidualRatio: DefaultResidualRatio}
}

type PrivateInput struct {
	Vehicle   model.VehicleDescription
	Usage     model.Usage
	Ownership model.Ownership
	Recurring model.Recurring
	AsOfYear  int
}

// Private returns the monthly cost of owning the vehicle privately. Explicit
// recurring amounts are used as given; missing ones are estimated and reported as
// warnings.
func Private(in PrivateInput, opts Options) (model.CostBreakdown, []model.CalculationMessage, error) {
	var b model.CostBreakdown
	if err := validatePrivate(in); err != nil {
		return b, nil, err
	}

	var msgs []model.CalculationMessage
	v := in.Vehicle

	var purchase float64
	if p := in.Ownership.PurchasePrice; p != nil {
		purchase = *p
	} else if v.ListPrice > 0 {
		purchase = v.ListPrice
		msgs = append(msgs, model.Warning(model.CodeDefaultedPurchase,
			fmt.Sprintf("No purchase price given, using the list price of %s", money.FormatEuro(purchase, 0))))
	}
	years := in.Ownership.DepreciationYears
	if years == 0 {
		years = DefaultDepreciationYears
		msgs = append(msgs, model.Warning(model.CodeDefaultedDeprYears,
			fmt.Sprintf("No depreciation period given, using %d years", years)))
	}

	var residual float64
	if in.Ownership.ResidualValue != nil {
		residual = *in.Ownership.ResidualValue
		if residual > purchase {
			return b, nil, fmt.Errorf("%w: residual value %.2f exceeds purchase price %.2f", model.ErrInvalidRequest, residual, purchase)
		}
	} else {
		residual = purchase * opts.ResidualRatio
		if purchase > 0 {
			msgs = append(msgs, model.Warning(model.CodeEstimatedResidual,
				fmt.Sprintf("Residual value estimated at %g%% of the purchase price: %s", opts.ResidualRatio*100, money.FormatEuro(residual, 0))))
		}
	}

	b.Add(model.CostComponent{
		Name:   model.ComponentDepreciation,
		Amount: (purchase - residual) / float64(years*12),
	})
	b.Add(model.CostComponent{
		Name:     model.ComponentFuel,
		Amount:   in.Usage.MonthlyDistance / 100 * in.Usage.ConsumptionPerHundred * in.Usage.UnitPrice,
		Volatile: true,
	})

	roadTax := model.CostComponent{Name: model.ComponentRoadTax}
	if in.Recurring.RoadTax != nil {
		roadTax.Amount = *in.Recurring.RoadTax
	} else {
		roadTax.Estimated = true
		amount, err := RoadTax(v, in.AsOfYear)
		switch {
		case errors.Is(err, model.ErrMissingRequiredCost):
			msgs = append(msgs, model.Warning(model.CodeMissingRequiredCost, err.Error()+"; counted as 0"))
		case err != nil:
			return b, nil, err
		default:
			roadTax.Amount = amount
			msgs = append(msgs, model.Warning(model.CodeEstimatedRoadTax,
				fmt.Sprintf("Road tax estimated from %g kg: %s per month", v.MassKg, money.FormatEuro(amount, 2))))
		}
	}
	b.Add(roadTax)

	insurance := model.CostComponent{Name: model.ComponentInsurance, Volatile: true}
	if in.Recurring.Insurance != nil {
		insurance.Amount = *in.Recurring.Insurance
	} else {
		insurance.Amount = Insurance(v, in.AsOfYear)
		insurance.Estimated = true
		msgs = append(msgs, model.Warning(model.CodeEstimatedInsurance,
			fmt.Sprintf("Insurance estimated from list price and age: %s per month", money.FormatEuro(insurance.Amount, 0))))
	}
	b.Add(insurance)

	maintenance := model.CostComponent{Name: model.ComponentMaintenance, Volatile: true}
	if in.Recurring.Maintenance != nil {
		maintenance.Amount = *in.Recurring.Maintenance
	} else {
		maintenance.Amount = Maintenance(v, in.AsOfYear, in.Usage.MonthlyDistance, in.Usage.Odometer)
		maintenance.Estimated = true
		msgs = append(msgs, model.Warning(model.CodeEstimatedMaintenance,
			fmt.Sprintf("Maintenance estimated from age and mileage: %s per month", money.FormatEuro(maintenance.Amount, 0))))
	}
	b.Add(maintenance)

	if amount, due := Inspection(v, in.AsOfYear); due {
		b.Add(model.CostComponent{Name: model.ComponentInspection, Amount: amount})
	}

	return b, msgs, nil
}

func validatePrivate(in PrivateInput) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"monthly_distance", in.Usage.MonthlyDistance},
		{"consumption_per_hundred", in.Usage.ConsumptionPerHundred},
		{"unit_price", in.Usage.UnitPrice},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", model.ErrInvalidRequest, f.name)
		}
	}
	optional := []struct {
		name  string
		value *float64
	}{
		{"purchase_price", in.Ownership.PurchasePrice},
		{"residual_value", in.Ownership.ResidualValue},
		{"road_tax", in.Recurring.RoadTax},
		{"insurance", in.Recurring.Insurance},
		{"maintenance", in.Recurring.Maintenance},
		{"odometer", in.Usage.Odometer},
	}
	for _, f := range optional {
		if f.value != nil && (math.IsNaN(*f.value) || math.IsInf(*f.value, 0) || *f.value < 0) {
			return fmt.Errorf("%w: %s must not be negative", model.ErrInvalidRequest, f.name)
		}
	}
	if in.Ownership.DepreciationYears < 0 {
		return fmt.Errorf("%w: depreciation_years must not be negative", model.ErrInvalidRequest)
	}
	return nil
}

// Business returns the monthly net cost of a business car: the income tax due on
// the benefit in kind, plus any contribution paid by the driver.
func Business(bik model.BenefitInKindResult, taxPercentage, ownContribution float64) model.CostBreakdown {
	var b model.CostBreakdown
	b.Add(model.CostComponent{
		Name:   model.ComponentBenefitInKind,
		Amount: NetMonthlyBenefitTax(bik, taxPercentage),
	})
	if ownContribution > 0 {
		b.Add(model.CostComponent{Name: model.ComponentOwnContribution, Amount: ownContribution})
	}
	return b
}

func NetMonthlyBenefitTax(bik model.BenefitInKindResult, taxPercentage float64) float64 {
	return bik.AnnualAmount() / 12 * taxPercentage / 100
}
