// Package engine runs one calculation end to end: normalize the vehicle, resolve the
// benefit in kind and the tax rate, build both cost breakdowns and compare them.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/aitechneut/autovandezaakofprive/internal/bijtelling"
	"github.com/aitechneut/autovandezaakofprive/internal/compare"
	"github.com/aitechneut/autovandezaakofprive/internal/costs"
	"github.com/aitechneut/autovandezaakofprive/internal/incometax"
	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/normalize"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

type Engine struct {
	table       *rules.Table
	capStrategy bijtelling.CapStrategy
	brackets    []rules.Bracket
	costOpts    costs.Options
	years       int
	inflation   float64
	now         func() time.Time

	bik *bijtelling.Resolver
	tax *incometax.Resolver
}

type Option func(*Engine)

func WithCapStrategy(s bijtelling.CapStrategy) Option {
	return func(e *Engine) { e.capStrategy = s }
}

// WithTaxBrackets replaces the income tax brackets of the rule table.
func WithTaxBrackets(b []rules.Bracket) Option {
	return func(e *Engine) { e.brackets = b }
}

func WithResidualRatio(r float64) Option {
	return func(e *Engine) { e.costOpts.ResidualRatio = r }
}

func WithProjection(years int, inflation float64) Option {
	return func(e *Engine) {
		e.years = years
		e.inflation = inflation
	}
}

// WithClock sets the clock used when a request carries no as-of instant.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(table *rules.Table, opts ...Option) (*Engine, error) {
	if table == nil {
		table = rules.Default()
	}
	e := &Engine{
		table:       table,
		capStrategy: bijtelling.CapBlend,
		brackets:    table.IncomeTax.Brackets,
		costOpts:    costs.DefaultOptions(),
		years:       compare.DefaultYears,
		inflation:   compare.DefaultInflationRate,
		now:         time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	if e.costOpts.ResidualRatio < 0 || e.costOpts.ResidualRatio >= 1 {
		return nil, fmt.Errorf("residual ratio %g must be in [0,1)", e.costOpts.ResidualRatio)
	}
	if e.years < 0 {
		return nil, fmt.Errorf("projection years %d must not be negative", e.years)
	}
	tax, err := incometax.NewResolver(e.brackets)
	if err != nil {
		return nil, err
	}
	e.tax = tax
	e.bik = bijtelling.NewResolver(table, e.capStrategy)
	return e, nil
}

func (e *Engine) Rules() *rules.Table {
	return e.table
}

// NormalizeVehicle normalizes raw the way Calculate does, estimating a missing list
// price from brand and age as of asOfYear. Year 0 means the current year.
func (e *Engine) NormalizeVehicle(raw *model.RawVehicleRecord, asOfYear int) (model.VehicleDescription, []model.CalculationMessage, error) {
	asOfYear, _ = e.asOf(model.AsOf{Year: asOfYear})
	est := e.table.ListPriceEstimate
	return normalize.Normalize(raw, normalize.WithListPriceEstimator(func(v model.VehicleDescription) float64 {
		return costs.EstimateListPrice(est, v, asOfYear)
	}))
}

// Calculate never returns nil. A fatal error yields a FAILURE response with the
// warnings gathered so far and one CRITICAL message.
func (e *Engine) Calculate(req *model.CalculationRequest) *model.CalculationResponse {
	start := time.Now()

	var messages []model.CalculationMessage
	add := func(msgs ...model.CalculationMessage) {
		for _, m := range msgs {
			m.ID = len(messages)
			messages = append(messages, m)
		}
	}

	year, instant := e.asOf(req.AsOf)
	result, err := e.calculate(req, year, instant, add)
	outcome := model.OutcomeSuccess
	if err != nil {
		outcome = model.OutcomeFailure
		add(model.CalculationMessage{
			Level:   model.LevelCritical,
			Code:    model.CodeOf(err),
			Message: err.Error(),
		})
		result = model.CalculationResult{}
	}
	if messages == nil {
		messages = []model.CalculationMessage{}
	}
	result.Messages = messages

	elapsed := time.Since(start)
	now := time.Now().UTC()

	return &model.CalculationResponse{
		CalculationMetadata: model.CalculationMetadata{
			CalculationID:          uuid.New().String(),
			TenantID:               req.TenantID,
			CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
			CalculationCompletedAt: now.Format(time.RFC3339),
			CalculationDurationMs:  elapsed.Milliseconds(),
			CalculationOutcome:     outcome,
			AsOfYear:               year,
			AsOfInstant:            instant.Format(time.RFC3339),
		},
		CalculationResult: result,
	}
}

// asOf fills in a missing instant from the clock and a missing year from the instant.
func (e *Engine) asOf(a model.AsOf) (int, time.Time) {
	instant := a.Instant
	if instant.IsZero() {
		instant = e.now()
	}
	year := a.Year
	if year == 0 {
		year = instant.Year()
	}
	return year, instant
}

func (e *Engine) calculate(req *model.CalculationRequest, year int, instant time.Time, add func(...model.CalculationMessage)) (model.CalculationResult, error) {
	var res model.CalculationResult

	if req.Vehicle == nil {
		return res, fmt.Errorf("%w: vehicle is required", model.ErrInvalidRequest)
	}
	income, err := annualIncome(req.Finance.AnnualGrossIncome)
	if err != nil {
		return res, err
	}
	if c := req.Finance.OwnContribution; c < 0 || math.IsNaN(c) {
		return res, fmt.Errorf("%w: own_contribution must not be negative", model.ErrInvalidRequest)
	}
	years, inflation := e.years, e.inflation
	if p := req.Projection; p != nil {
		if p.Years < 0 {
			return res, fmt.Errorf("%w: projection years must not be negative", model.ErrInvalidRequest)
		}
		if p.Years > 0 {
			years = p.Years
		}
		if p.InflationRate != nil {
			inflation = *p.InflationRate
		}
	}

	vehicle, warnings, err := e.NormalizeVehicle(req.Vehicle, year)
	if err != nil {
		return res, err
	}
	add(warnings...)

	taxPct, err := e.tax.Resolve(income)
	if err != nil {
		return res, err
	}

	bik := e.bik.Resolve(vehicle, year, instant)
	if bik.IsYoungtimer && vehicle.CurrentMarketValue == nil {
		add(model.Warning(model.CodeEstimatedMarketValue, "Current market value unknown, estimated from the list price"))
	}

	private, warnings, err := costs.Private(costs.PrivateInput{
		Vehicle:   vehicle,
		Usage:     req.Usage,
		Ownership: req.Ownership,
		Recurring: req.Recurring,
		AsOfYear:  year,
	}, e.costOpts)
	if err != nil {
		return res, err
	}
	add(warnings...)

	business := costs.Business(bik, taxPct, req.Finance.OwnContribution)

	cmp := compare.Compare(private, business)
	cmp.YearlyProjection = compare.Project(private, business, years, inflation, year)

	res.Vehicle = &vehicle
	res.BenefitInKind = &bik
	res.TaxPercentage = taxPct
	res.Comparison = &cmp
	return res, nil
}

// annualIncome coerces the decoded income field. Numbers and numeric strings pass;
// anything else, including booleans, is an invalid income.
func annualIncome(v any) (float64, error) {
	switch v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: annual_gross_income is required", model.ErrInvalidIncome)
	case bool:
		return 0, fmt.Errorf("%w: annual_gross_income must be a number", model.ErrInvalidIncome)
	}
	income, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: annual_gross_income %v is not a number", model.ErrInvalidIncome, v)
	}
	return income, nil
}
