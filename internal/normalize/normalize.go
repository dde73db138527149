// Package normalize turns loosely typed registry records into a VehicleDescription.
// All presence and validity checks on raw fields live here; downstream packages
// trust the description they receive.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/money"
)

type fuelKeyword struct {
	keyword  string
	category model.FuelCategory
}

// Checked in order, first match wins. Hybrids come before electricity so that
// "Plug-in hybride elektrisch" is not read as a pure EV.
var fuelKeywords = []fuelKeyword{
	{"plug", model.FuelPluginHybrid},
	{"phev", model.FuelPluginHybrid},
	{"hybr", model.FuelHybrid},
	{"elektr", model.FuelElectric},
	{"electr", model.FuelElectric},
	{"waterstof", model.FuelHydrogen},
	{"hydrogen", model.FuelHydrogen},
	{"diesel", model.FuelDiesel},
	{"benzine", model.FuelPetrol},
	{"petrol", model.FuelPetrol},
	{"gasoline", model.FuelPetrol},
	{"lpg", model.FuelLPG},
	{"cng", model.FuelCNG},
	{"aardgas", model.FuelCNG},
}

// ClassifyFuel maps a free-text fuel description to a category. Unknown text is Other.
func ClassifyFuel(text string) model.FuelCategory {
	lower := strings.ToLower(text)
	for _, k := range fuelKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.category
		}
	}
	return model.FuelOther
}

// ListPriceEstimator supplies a catalogue price for a vehicle whose record has none.
// It sees the description built so far (brand and registration year are set).
type ListPriceEstimator func(v model.VehicleDescription) float64

type options struct {
	estimateListPrice ListPriceEstimator
}

type Option func(*options)

// WithListPriceEstimator fills a missing list price from est instead of leaving it at 0.
func WithListPriceEstimator(est ListPriceEstimator) Option {
	return func(o *options) {
		o.estimateListPrice = est
	}
}

// Normalize builds a VehicleDescription from raw. Warnings describe degraded fields;
// the error wraps model.ErrInvalidVehicleData when year or fuel cannot be found.
func Normalize(raw *model.RawVehicleRecord, opts ...Option) (model.VehicleDescription, []model.CalculationMessage, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var v model.VehicleDescription
	var msgs []model.CalculationMessage

	if raw == nil {
		return v, nil, fmt.Errorf("%w: no vehicle record", model.ErrInvalidVehicleData)
	}

	v.Brand = titleCase(cast.ToString(raw.Brand))
	v.Model = strings.TrimSpace(cast.ToString(raw.Model))

	date, dateText := parseRegistrationDate(raw.FirstRegistrationDate)
	if date != nil {
		v.FirstRegistrationDate = date
		v.FirstRegistrationYear = date.Year()
	} else {
		if dateText != "" {
			msgs = append(msgs, model.Warning(model.CodeRegistrationDate,
				fmt.Sprintf("Registration date %q not recognized, using registration year only", dateText)))
		}
		if y, ok := number(raw.FirstRegistrationYear); ok && y > 0 {
			v.FirstRegistrationYear = int(y)
		}
	}
	if v.FirstRegistrationYear <= 0 {
		return v, nil, fmt.Errorf("%w: registration year unknown", model.ErrInvalidVehicleData)
	}

	fuels := fuelEntries(raw.Fuel)
	if len(fuels) == 0 {
		return v, nil, fmt.Errorf("%w: fuel description missing", model.ErrInvalidVehicleData)
	}
	v.FuelCategory = categorize(fuels)
	if v.FuelCategory == model.FuelOther {
		msgs = append(msgs, model.Warning(model.CodeUnknownFuel,
			fmt.Sprintf("Fuel %q not recognized, treated as other", strings.Join(fuels, ", "))))
	}

	if price, ok := number(raw.ListPrice); ok {
		if price < 0 {
			return v, nil, fmt.Errorf("%w: list price %.2f is negative", model.ErrInvalidVehicleData, price)
		}
		v.ListPrice = price
	} else if o.estimateListPrice != nil {
		v.ListPrice = o.estimateListPrice(v)
		msgs = append(msgs, model.Warning(model.CodeEstimatedListPrice,
			fmt.Sprintf("List price unknown, estimated at %s from brand and age", money.FormatEuro(v.ListPrice, 0))))
	} else {
		msgs = append(msgs, model.Warning(model.CodeMissingListPrice, "List price unknown, using 0"))
	}

	if mass, ok := number(raw.Mass); ok && mass > 0 {
		v.MassKg = mass
	}
	if co2, ok := number(raw.CO2); ok && co2 >= 0 {
		v.CO2GramsPerKm = &co2
	}
	if mv, ok := number(raw.MarketValue); ok && mv >= 0 {
		v.CurrentMarketValue = &mv
	}

	return v, msgs, nil
}

// categorize applies the multi-fuel rules: any electric entry next to another fuel
// makes a plug-in hybrid, hydrogen wins over the remaining fuels, otherwise the
// primary entry decides.
func categorize(fuels []string) model.FuelCategory {
	cats := make([]model.FuelCategory, len(fuels))
	for i, f := range fuels {
		cats[i] = ClassifyFuel(f)
	}
	if len(cats) > 1 {
		for _, c := range cats {
			if c == model.FuelElectric {
				return model.FuelPluginHybrid
			}
		}
		for _, c := range cats {
			if c == model.FuelHydrogen {
				return model.FuelHydrogen
			}
		}
	}
	return cats[0]
}

func fuelEntries(v any) []string {
	var entries []string
	switch f := v.(type) {
	case nil:
		return nil
	case string:
		entries = []string{f}
	default:
		list, err := cast.ToStringSliceE(f)
		if err != nil {
			return nil
		}
		entries = list
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// parseRegistrationDate accepts YYYYMMDD (string or number) and YYYY-MM-DD.
// It returns the raw text when something was supplied but not understood.
func parseRegistrationDate(v any) (*time.Time, string) {
	if v == nil {
		return nil, ""
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return nil, ""
	}
	if len(s) == 8 && isDigits(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return &t, s
		}
		return nil, s
	}
	if t, ok := fastParseDate(s); ok {
		return &t, s
	}
	return nil, s
}

// fastParseDate parses "YYYY-MM-DD" and rejects impossible calendar dates.
func fastParseDate(s string) (time.Time, bool) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}
	if !isDigits(s[0:4]) || !isDigits(s[5:7]) || !isDigits(s[8:10]) {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(s[0:4])
	m, _ := strconv.Atoi(s[5:7])
	d, _ := strconv.Atoi(s[8:10])
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// number reads a numeric field that may arrive as a number or a numeric string.
func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
