package model

import json "github.com/goccy/go-json"

const (
	ComponentDepreciation    = "depreciation"
	ComponentFuel            = "fuel"
	ComponentRoadTax         = "road_tax"
	ComponentInsurance       = "insurance"
	ComponentMaintenance     = "maintenance"
	ComponentInspection      = "inspection"
	ComponentBenefitInKind   = "benefit_in_kind_tax"
	ComponentOwnContribution = "own_contribution"
)

// CostComponent is one monthly amount. Volatile components follow inflation in
// projections; Estimated marks amounts produced by a heuristic.
type CostComponent struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Estimated bool    `json:"estimated,omitempty"`
	Volatile  bool    `json:"volatile,omitempty"`
}

// CostBreakdown is an ordered list of monthly amounts. The total is never stored;
// it is summed from the components every time it is asked for.
type CostBreakdown struct {
	Components []CostComponent
}

func (b *CostBreakdown) Add(c CostComponent) {
	b.Components = append(b.Components, c)
}

func (b CostBreakdown) Total() float64 {
	var total float64
	for _, c := range b.Components {
		total += c.Amount
	}
	return total
}

// Amount returns the monthly amount of the named component, 0 when absent.
func (b CostBreakdown) Amount(name string) float64 {
	for _, c := range b.Components {
		if c.Name == name {
			return c.Amount
		}
	}
	return 0
}

// Scaled returns a copy with volatile components multiplied by factor.
func (b CostBreakdown) Scaled(factor float64) CostBreakdown {
	out := CostBreakdown{Components: make([]CostComponent, len(b.Components))}
	for i, c := range b.Components {
		if c.Volatile {
			c.Amount *= factor
		}
		out.Components[i] = c
	}
	return out
}

type costBreakdownJSON struct {
	Components []CostComponent `json:"components"`
	Total      float64         `json:"total"`
}

func (b CostBreakdown) MarshalJSON() ([]byte, error) {
	components := b.Components
	if components == nil {
		components = []CostComponent{}
	}
	return json.Marshal(costBreakdownJSON{Components: components, Total: b.Total()})
}

// UnmarshalJSON ignores any incoming total; it is derived from the components.
func (b *CostBreakdown) UnmarshalJSON(data []byte) error {
	var raw costBreakdownJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Components = raw.Components
	return nil
}

type Winner string

const (
	WinnerBusiness Winner = "BUSINESS"
	WinnerPrivate  Winner = "PRIVATE"
)

type ComparisonResult struct {
	Private           CostBreakdown  `json:"private"`
	Business          CostBreakdown  `json:"business"`
	MonthlyDifference float64        `json:"monthly_difference"`
	Winner            Winner         `json:"winner"`
	Advice            string         `json:"advice"`
	YearlyProjection  []YearlyTotals `json:"yearly_projection,omitempty"`
}

type YearlyTotals struct {
	Year          int     `json:"year"`
	CalendarYear  int     `json:"calendar_year"`
	BusinessTotal float64 `json:"business_total"`
	PrivateTotal  float64 `json:"private_total"`
	Difference    float64 `json:"difference"`
}
