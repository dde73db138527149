package incometax

import (
	"errors"
	"math"
	"testing"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

func newDefault(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(rules.Default().IncomeTax.Brackets)
	if err != nil {
		t.Fatalf("default brackets rejected: %v", err)
	}
	return r
}

func TestResolveMiddleBracket(t *testing.T) {
	r := newDefault(t)
	got, err := r.Resolve(50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 37.48 {
		t.Fatalf("expected 37.48 for income 50000, got %v", got)
	}
}

func TestResolveBoundaries(t *testing.T) {
	r := newDefault(t)
	cases := []struct {
		income float64
		want   float64
	}{
		{0, 36.97},
		{38441, 36.97},
		{38441.01, 37.48},
		{76817, 37.48},
		{76818, 49.50},
		{1e9, 49.50},
	}
	for _, tc := range cases {
		got, err := r.Resolve(tc.income)
		if err != nil {
			t.Fatalf("income %v: unexpected error %v", tc.income, err)
		}
		if got != tc.want {
			t.Errorf("income %v: expected %v, got %v", tc.income, tc.want, got)
		}
	}
}

func TestResolveRejectsInvalidIncome(t *testing.T) {
	r := newDefault(t)
	for _, income := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := r.Resolve(income); !errors.Is(err, model.ErrInvalidIncome) {
			t.Errorf("income %v: expected ErrInvalidIncome, got %v", income, err)
		}
	}
}

func TestNewResolverRejectsOpenMiddleBracket(t *testing.T) {
	top := 50000.0
	_, err := NewResolver([]rules.Bracket{{Rate: 30}, {Max: &top, Rate: 40}})
	if err == nil {
		t.Fatal("expected error for brackets without an open top bracket")
	}
}
