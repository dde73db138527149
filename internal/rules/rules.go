// Package rules holds the authoritative benefit-in-kind rule table. The table is
// data (rules.yaml, embedded at build time); resolvers consume it and never branch
// on specific policy years themselves.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embedded []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

type Table struct {
	Version           string            `yaml:"version"`
	StandardRate      float64           `yaml:"standard_rate"`
	ExcessRate        float64           `yaml:"excess_rate"`
	FallbackRate      float64           `yaml:"fallback_rate"`
	PreCutover        PreCutover        `yaml:"pre_cutover"`
	Youngtimer        Youngtimer        `yaml:"youngtimer"`
	LockIn            LockIn            `yaml:"lock_in"`
	Electric          Electric          `yaml:"electric"`
	PluginHybrid      PluginHybrid      `yaml:"plugin_hybrid"`
	IncomeTax         IncomeTax         `yaml:"income_tax"`
	CO2History        CO2History        `yaml:"co2_history"`
	ListPriceEstimate ListPriceEstimate `yaml:"list_price_estimate"`

	electricByYear map[int]ElectricRate
	electricFirst  int
	electricLast   int
}

type PreCutover struct {
	BeforeYear int     `yaml:"before_year"`
	Rate       float64 `yaml:"rate"`
}

type Youngtimer struct {
	MinAge                   int     `yaml:"min_age"`
	MaxAge                   int     `yaml:"max_age"`
	Rate                     float64 `yaml:"rate"`
	MarketValueEstimateRatio float64 `yaml:"market_value_estimate_ratio"`
}

type LockIn struct {
	Months int `yaml:"months"`
}

type Electric struct {
	Rates []ElectricRate `yaml:"rates"`
}

// ElectricRate is the reduced rate for zero-emission vehicles in one year. Cap is
// the list-price ceiling up to which the reduced rate applies; nil means no ceiling.
type ElectricRate struct {
	Year       int      `yaml:"year"`
	Percentage float64  `yaml:"percentage"`
	Cap        *float64 `yaml:"cap"`
}

type PluginHybrid struct {
	MaxCO2 float64     `yaml:"max_co2"`
	Rates  []YearRange `yaml:"rates"`
}

// YearRange applies Percentage from FromYear through ToYear. ToYear 0 is open-ended.
type YearRange struct {
	FromYear   int     `yaml:"from_year"`
	ToYear     int     `yaml:"to_year"`
	Percentage float64 `yaml:"percentage"`
}

func (r YearRange) contains(year int) bool {
	return year >= r.FromYear && (r.ToYear == 0 || year <= r.ToYear)
}

type IncomeTax struct {
	Year     int       `yaml:"year"`
	Brackets []Bracket `yaml:"brackets"`
}

// Bracket applies Rate to incomes up to and including Max. The top bracket has no Max.
type Bracket struct {
	Max  *float64 `yaml:"max" json:"max,omitempty"`
	Rate float64  `yaml:"rate" json:"rate"`
}

type CO2History struct {
	Flat        FlatPeriod `yaml:"flat"`
	DefaultRate float64    `yaml:"default_rate"`
	Years       []CO2Year  `yaml:"years"`
}

type FlatPeriod struct {
	FromYear int     `yaml:"from_year"`
	ToYear   int     `yaml:"to_year"`
	Rate     float64 `yaml:"rate"`
}

type CO2Year struct {
	Year     int          `yaml:"year"`
	Brackets []CO2Bracket `yaml:"brackets"`
}

// ListPriceEstimate stands in for a missing catalogue price: a base value per brand,
// depreciated by YearlyDepreciation for at most MaxYears and rounded to RoundTo.
type ListPriceEstimate struct {
	Default            float64      `yaml:"default"`
	YearlyDepreciation float64      `yaml:"yearly_depreciation"`
	MaxYears           int          `yaml:"max_years"`
	RoundTo            float64      `yaml:"round_to"`
	Brands             []BrandPrice `yaml:"brands"`
}

// BrandPrice applies Value to brands whose lower-cased name contains any of Match.
type BrandPrice struct {
	Match []string `yaml:"match"`
	Value float64  `yaml:"value"`
}

// Base returns the undepreciated estimate for brand.
func (e ListPriceEstimate) Base(brand string) float64 {
	lower := strings.ToLower(brand)
	for _, b := range e.Brands {
		for _, m := range b.Match {
			if m != "" && strings.Contains(lower, strings.ToLower(m)) {
				return b.Value
			}
		}
	}
	return e.Default
}

// CO2Bracket matches emissions up to Max (DieselMax for diesel when set).
type CO2Bracket struct {
	Max       *float64 `yaml:"max" json:"max,omitempty"`
	DieselMax *float64 `yaml:"diesel_max" json:"diesel_max,omitempty"`
	Rate      float64  `yaml:"rate" json:"rate"`
}

// Default returns the embedded rule table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded table is invalid: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Load reads a rule table from path, or returns the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.index()
	return &t, nil
}

func (t *Table) validate() error {
	if len(t.Electric.Rates) == 0 {
		return errors.New("rules: electric table is empty")
	}
	if len(t.PluginHybrid.Rates) == 0 {
		return errors.New("rules: plug-in hybrid table is empty")
	}
	if t.Youngtimer.MinAge > t.Youngtimer.MaxAge {
		return fmt.Errorf("rules: youngtimer age range %d-%d is inverted", t.Youngtimer.MinAge, t.Youngtimer.MaxAge)
	}
	if t.LockIn.Months <= 0 {
		return errors.New("rules: lock-in months must be positive")
	}
	seen := make(map[int]bool, len(t.Electric.Rates))
	for _, r := range t.Electric.Rates {
		if seen[r.Year] {
			return fmt.Errorf("rules: electric year %d listed twice", r.Year)
		}
		seen[r.Year] = true
	}
	if e := t.ListPriceEstimate; e.Default < 0 || e.YearlyDepreciation < 0 || e.YearlyDepreciation >= 1 || e.MaxYears < 0 || e.RoundTo < 0 {
		return errors.New("rules: list price estimate is out of range")
	}
	return ValidateBrackets(t.IncomeTax.Brackets)
}

// ValidateBrackets checks that brackets ascend and end with an open top bracket.
func ValidateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return errors.New("rules: no income tax brackets")
	}
	prev := -1.0
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Max == nil {
			if !last {
				return fmt.Errorf("rules: bracket %d has no upper bound but is not the top bracket", i+1)
			}
			continue
		}
		if last {
			return errors.New("rules: top bracket must not have an upper bound")
		}
		if *b.Max <= prev {
			return fmt.Errorf("rules: bracket %d upper bound %.2f is not ascending", i+1, *b.Max)
		}
		prev = *b.Max
	}
	return nil
}

func (t *Table) index() {
	t.electricByYear = make(map[int]ElectricRate, len(t.Electric.Rates))
	years := make([]int, 0, len(t.Electric.Rates))
	for _, r := range t.Electric.Rates {
		t.electricByYear[r.Year] = r
		years = append(years, r.Year)
	}
	sort.Ints(years)
	t.electricFirst = years[0]
	t.electricLast = years[len(years)-1]
}

// ElectricRate looks up the zero-emission rate for year. ok is false outside the table.
func (t *Table) ElectricRate(year int) (ElectricRate, bool) {
	r, ok := t.electricByYear[year]
	return r, ok
}

// ElectricYears returns the first and last year covered by the electric table.
func (t *Table) ElectricYears() (first, last int) {
	return t.electricFirst, t.electricLast
}

// PluginHybridRate returns the low-CO2 plug-in hybrid rate for year. ok is false
// for years before the first listed range.
func (t *Table) PluginHybridRate(year int) (float64, bool) {
	for _, r := range t.PluginHybrid.Rates {
		if r.contains(year) {
			return r.Percentage, true
		}
	}
	return 0, false
}

func (t *Table) IsYoungtimerAge(age int) bool {
	return age >= t.Youngtimer.MinAge && age <= t.Youngtimer.MaxAge
}

// HistoricalRate returns the CO2-differentiated rate that applied in year for the
// given emissions. Years without bracket data fall back to the table default.
func (t *Table) HistoricalRate(year int, co2 float64, diesel bool) float64 {
	h := t.CO2History
	if year >= h.Flat.FromYear && year <= h.Flat.ToYear {
		return h.Flat.Rate
	}
	if year >= t.PreCutover.BeforeYear {
		return t.StandardRate
	}
	for _, y := range h.Years {
		if y.Year != year {
			continue
		}
		for _, b := range y.Brackets {
			limit := b.Max
			if diesel && b.DieselMax != nil {
				limit = b.DieselMax
			}
			if limit == nil || co2 <= *limit {
				return b.Rate
			}
		}
	}
	return h.DefaultRate
}

type YearSummary struct {
	Year                   int          `json:"year"`
	Version                string       `json:"version"`
	ElectricPercentage     float64      `json:"electric_percentage"`
	ElectricCap            *float64     `json:"electric_cap"`
	ElectricRegime         bool         `json:"electric_regime"`
	PluginHybridLowCO2     *float64     `json:"plugin_hybrid_low_co2_percentage"`
	StandardPercentage     float64      `json:"standard_percentage"`
	YoungtimerPercentage   float64      `json:"youngtimer_percentage"`
	RegisteredAfterCutover bool         `json:"registered_after_cutover"`
	LockInMonths           int          `json:"lock_in_months"`
	CO2Brackets            []CO2Bracket `json:"co2_brackets,omitempty"`
}

// Summary collects the rates that applied to new registrations in year.
func (t *Table) Summary(year int) YearSummary {
	s := YearSummary{
		Year:                   year,
		Version:                t.Version,
		ElectricPercentage:     t.FallbackRate,
		StandardPercentage:     t.PreCutover.Rate,
		YoungtimerPercentage:   t.Youngtimer.Rate,
		RegisteredAfterCutover: year >= t.PreCutover.BeforeYear,
		LockInMonths:           t.LockIn.Months,
	}
	switch flat := t.CO2History.Flat; {
	case year >= flat.FromYear && year <= flat.ToYear:
		s.StandardPercentage = flat.Rate
	case year >= t.PreCutover.BeforeYear:
		s.StandardPercentage = t.StandardRate
	}
	if r, ok := t.ElectricRate(year); ok {
		s.ElectricPercentage = r.Percentage
		s.ElectricCap = r.Cap
		s.ElectricRegime = true
	}
	if pct, ok := t.PluginHybridRate(year); ok {
		s.PluginHybridLowCO2 = &pct
	}
	for _, y := range t.CO2History.Years {
		if y.Year == year {
			s.CO2Brackets = y.Brackets
		}
	}
	return s
}
