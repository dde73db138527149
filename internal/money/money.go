// Package money rounds and formats euro amounts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds half away from zero to the given number of decimal places.
func Round(amount float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(places).Float64()
	return f
}

// FormatEuro renders amount the Dutch way: "€ 35.000" or "€ 1.234,56".
func FormatEuro(amount float64, places int32) string {
	d := decimal.NewFromFloat(amount).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return "€ " + sign + b.String()
}
