// Package incometax resolves the marginal income tax percentage for a gross income.
package incometax

import (
	"fmt"
	"math"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

type Resolver struct {
	brackets []rules.Bracket
}

// NewResolver validates brackets: ascending upper bounds with an open top bracket.
func NewResolver(brackets []rules.Bracket) (*Resolver, error) {
	if err := rules.ValidateBrackets(brackets); err != nil {
		return nil, err
	}
	cp := make([]rules.Bracket, len(brackets))
	copy(cp, brackets)
	return &Resolver{brackets: cp}, nil
}

// Resolve returns the rate of the first bracket whose upper bound is not below income.
func (r *Resolver) Resolve(annualGrossIncome float64) (float64, error) {
	if math.IsNaN(annualGrossIncome) || math.IsInf(annualGrossIncome, 0) {
		return 0, fmt.Errorf("%w: income is not a number", model.ErrInvalidIncome)
	}
	if annualGrossIncome < 0 {
		return 0, fmt.Errorf("%w: income %.2f is negative", model.ErrInvalidIncome, annualGrossIncome)
	}
	for _, b := range r.brackets {
		if b.Max == nil || annualGrossIncome <= *b.Max {
			return b.Rate, nil
		}
	}
	// unreachable: the top bracket is open
	return r.brackets[len(r.brackets)-1].Rate, nil
}

func (r *Resolver) Brackets() []rules.Bracket {
	out := make([]rules.Bracket, len(r.brackets))
	copy(out, r.brackets)
	return out
}
