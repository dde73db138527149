// Package compare weighs the private and business breakdowns against each other and
// projects both over several years.
package compare

import (
	"fmt"
	"math"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/money"
)

const (
	DefaultInflationRate = 0.02
	DefaultYears         = 5
)

// Compare reports difference = private - business. A positive difference favours the
// business car; a tie stays private.
func Compare(private, business model.CostBreakdown) model.ComparisonResult {
	diff := private.Total() - business.Total()
	res := model.ComparisonResult{
		Private:           private,
		Business:          business,
		MonthlyDifference: diff,
		Winner:            model.WinnerPrivate,
	}
	if diff > 0 {
		res.Winner = model.WinnerBusiness
	}
	res.Advice = advice(res.Winner, diff)
	return res
}

func advice(w model.Winner, diff float64) string {
	abs := math.Abs(diff)
	switch {
	case w == model.WinnerBusiness:
		return fmt.Sprintf("A business car is cheaper: %s per month, %s per year less than private ownership",
			money.FormatEuro(abs, 2), money.FormatEuro(abs*12, 0))
	case abs < 0.005:
		return "Both options cost the same per month; private ownership is kept"
	default:
		return fmt.Sprintf("Private ownership is cheaper: %s per month, %s per year less than a business car",
			money.FormatEuro(abs, 2), money.FormatEuro(abs*12, 0))
	}
}

// Project annualizes both breakdowns for each year of the horizon. Volatile
// components grow by (1+inflation)^(year-1); the others stay flat.
func Project(private, business model.CostBreakdown, years int, inflation float64, startYear int) []model.YearlyTotals {
	if years <= 0 {
		return nil
	}
	out := make([]model.YearlyTotals, 0, years)
	for y := 1; y <= years; y++ {
		factor := math.Pow(1+inflation, float64(y-1))
		p := private.Scaled(factor).Total() * 12
		b := business.Scaled(factor).Total() * 12
		out = append(out, model.YearlyTotals{
			Year:          y,
			CalendarYear:  startYear + y - 1,
			BusinessTotal: b,
			PrivateTotal:  p,
			Difference:    p - b,
		})
	}
	return out
}
