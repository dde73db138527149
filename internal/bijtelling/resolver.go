// Package bijtelling resolves the benefit-in-kind percentage and basis for a vehicle.
//
// Resolution order, first match wins:
//  1. youngtimer (age 15-30): fixed rate over the current market value
//  2. electric or hydrogen: year table with optional list-price cap
//  3. plug-in hybrid with low CO2: year table
//  4. registered before the 2017 cutover: permanent pre-cutover rate
//  5. standard rate
//
// When the registration date is known, the 60-month lock-in freezes the rate that
// applied in the registration year until the window ends.
package bijtelling

import (
	"fmt"
	"time"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/money"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

// CapStrategy decides how an electric list price above the year's cap is taxed.
type CapStrategy string

const (
	// CapBlend keeps the full list price as basis and blends the reduced rate (up to
	// the cap) with the excess rate (above it) into one percentage.
	CapBlend CapStrategy = "blend"
	// CapBasis applies the reduced rate to the cap amount only.
	CapBasis CapStrategy = "cap_basis"
)

func ParseCapStrategy(s string) (CapStrategy, error) {
	switch CapStrategy(s) {
	case "", CapBlend:
		return CapBlend, nil
	case CapBasis:
		return CapBasis, nil
	default:
		return "", fmt.Errorf("unknown cap strategy %q", s)
	}
}

type Resolver struct {
	table    *rules.Table
	strategy CapStrategy
}

func NewResolver(table *rules.Table, strategy CapStrategy) *Resolver {
	if strategy == "" {
		strategy = CapBlend
	}
	return &Resolver{table: table, strategy: strategy}
}

// LockInWindow returns the rate-freeze window for a registration date: it starts on
// the first day of the following month and lasts the given number of months.
func LockInWindow(registered time.Time, months int) (start, end time.Time) {
	start = time.Date(registered.Year(), registered.Month()+1, 1, 0, 0, 0, 0, registered.Location())
	end = start.AddDate(0, months, 0)
	return start, end
}

// Resolve is deterministic: the same vehicle, as-of year and evaluation instant
// always produce the same result.
func (r *Resolver) Resolve(v model.VehicleDescription, asOfYear int, now time.Time) model.BenefitInKindResult {
	t := r.table
	res := model.BenefitInKindResult{
		RateYear:             asOfYear,
		IsPreThreshold:       v.FirstRegistrationYear < t.PreCutover.BeforeYear,
		IsElectricOrHydrogen: v.FuelCategory.IsZeroEmission(),
	}

	if t.IsYoungtimerAge(v.AgeAt(asOfYear)) {
		res.IsYoungtimer = true
		res.Percentage = t.Youngtimer.Rate
		res.Explanation = fmt.Sprintf("Youngtimer regime: %g%% of the current market value for vehicles aged %d-%d years",
			t.Youngtimer.Rate, t.Youngtimer.MinAge, t.Youngtimer.MaxAge)
		if v.CurrentMarketValue != nil {
			res.BasisAmount = *v.CurrentMarketValue
		} else {
			res.BasisAmount = v.ListPrice * t.Youngtimer.MarketValueEstimateRatio
			res.Explanation += fmt.Sprintf(" (market value estimated at %g%% of list price)", t.Youngtimer.MarketValueEstimateRatio*100)
		}
		return res
	}

	rateYear := asOfYear
	var expired bool
	var lockEnd time.Time
	if v.FirstRegistrationDate != nil {
		_, lockEnd = LockInWindow(*v.FirstRegistrationDate, t.LockIn.Months)
		if now.Before(lockEnd) {
			res.LockInActive = true
			res.LockInExpiryDate = &lockEnd
			rateYear = v.FirstRegistrationYear
		} else {
			expired = true
		}
	}

	r.applyBranch(&res, v, rateYear)
	res.RateYear = rateYear

	switch {
	case res.LockInActive:
		res.Explanation += fmt.Sprintf(" (frozen until %s under the %d-month rule)", lockEnd.Format("02-01-2006"), t.LockIn.Months)
	case expired:
		res.Explanation = fmt.Sprintf("%d-month period ended on %s. %s", t.LockIn.Months, lockEnd.Format("02-01-2006"), res.Explanation)
	}
	return res
}

func (r *Resolver) applyBranch(res *model.BenefitInKindResult, v model.VehicleDescription, year int) {
	t := r.table
	res.BasisAmount = v.ListPrice

	if v.FuelCategory.IsZeroEmission() {
		r.electric(res, v, year)
		return
	}

	if v.FuelCategory == model.FuelPluginHybrid && v.CO2GramsPerKm != nil && *v.CO2GramsPerKm <= t.PluginHybrid.MaxCO2 {
		if pct, ok := t.PluginHybridRate(year); ok {
			res.Percentage = pct
			res.Explanation = fmt.Sprintf("Plug-in hybrid %d with CO2 <= %g g/km: %g%%", year, t.PluginHybrid.MaxCO2, pct)
			return
		}
	}

	if res.IsPreThreshold {
		res.Percentage = t.PreCutover.Rate
		res.Explanation = fmt.Sprintf("Registered before %d: permanent %g%%", t.PreCutover.BeforeYear, t.PreCutover.Rate)
		return
	}

	res.Percentage = t.StandardRate
	res.Explanation = fmt.Sprintf("Standard rate %g%% for non-electric vehicles from %d", t.StandardRate, t.PreCutover.BeforeYear)
}

func (r *Resolver) electric(res *model.BenefitInKindResult, v model.VehicleDescription, year int) {
	t := r.table
	rate, ok := t.ElectricRate(year)
	if !ok {
		first, last := t.ElectricYears()
		res.Percentage = t.FallbackRate
		if year < first {
			res.Explanation = fmt.Sprintf("Before %d there was no special regime for electric vehicles: %g%%", first, t.FallbackRate)
		} else {
			res.Explanation = fmt.Sprintf("Electric vehicle %d: reduced rates ended after %d, %g%% without cap", year, last, t.FallbackRate)
		}
		return
	}

	res.Percentage = rate.Percentage
	res.Explanation = fmt.Sprintf("Electric vehicle %d: %g%%", year, rate.Percentage)
	if rate.Cap == nil {
		return
	}
	limit := *rate.Cap
	if v.ListPrice <= limit {
		res.Explanation += fmt.Sprintf(" over the full list price (cap %s)", money.FormatEuro(limit, 0))
		return
	}

	switch r.strategy {
	case CapBasis:
		res.BasisAmount = limit
		res.Explanation += fmt.Sprintf(" over the capped list price of %s", money.FormatEuro(limit, 0))
	default:
		res.Percentage = BlendedPercentage(v.ListPrice, limit, rate.Percentage, t.ExcessRate)
		res.Explanation += fmt.Sprintf(" up to %s list price, %g%% above (blended %.2f%%)",
			money.FormatEuro(limit, 0), t.ExcessRate, res.Percentage)
	}
}

// BlendedPercentage is the weighted rate over the whole list price when lowRate
// applies up to limit and excessRate to the remainder.
func BlendedPercentage(listPrice, limit, lowRate, excessRate float64) float64 {
	if listPrice <= limit || listPrice <= 0 {
		return lowRate
	}
	return (limit*lowRate/100 + (listPrice-limit)*excessRate/100) / listPrice * 100
}
