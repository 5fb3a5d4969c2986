package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// LoanPolicy holds the inclusive bounds every loan request must satisfy.
// It is built once at start-up and never mutated.
type LoanPolicy struct {
	minAmount decimal.Decimal
	maxAmount decimal.Decimal
	minPeriod int
	maxPeriod int
}

// Default policy bounds.
var (
	DefaultMinAmount = decimal.NewFromInt(2000)
	DefaultMaxAmount = decimal.NewFromInt(10000)
)

const (
	DefaultMinPeriod = 12
	DefaultMaxPeriod = 60
)

// ErrInvalidPolicy is returned when policy bounds are inconsistent.
var ErrInvalidPolicy = errors.New("invalid loan policy")

// NewLoanPolicy validates and builds a LoanPolicy.
func NewLoanPolicy(minAmount, maxAmount decimal.Decimal, minPeriod, maxPeriod int) (LoanPolicy, error) {
	if minAmount.LessThanOrEqual(decimal.Zero) {
		return LoanPolicy{}, fmt.Errorf("%w: minimum amount must be positive", ErrInvalidPolicy)
	}
	if maxAmount.LessThan(minAmount) {
		return LoanPolicy{}, fmt.Errorf("%w: maximum amount %s is below minimum %s", ErrInvalidPolicy, maxAmount, minAmount)
	}
	if minPeriod <= 0 {
		return LoanPolicy{}, fmt.Errorf("%w: minimum period must be positive", ErrInvalidPolicy)
	}
	if maxPeriod < minPeriod {
		return LoanPolicy{}, fmt.Errorf("%w: maximum period %d is below minimum %d", ErrInvalidPolicy, maxPeriod, minPeriod)
	}
	return LoanPolicy{
		minAmount: minAmount,
		maxAmount: maxAmount,
		minPeriod: minPeriod,
		maxPeriod: maxPeriod,
	}, nil
}

// DefaultLoanPolicy returns the 2000–10000 / 12–60 month policy.
func DefaultLoanPolicy() LoanPolicy {
	return LoanPolicy{
		minAmount: DefaultMinAmount,
		maxAmount: DefaultMaxAmount,
		minPeriod: DefaultMinPeriod,
		maxPeriod: DefaultMaxPeriod,
	}
}

func (p LoanPolicy) MinAmount() decimal.Decimal { return p.minAmount }
func (p LoanPolicy) MaxAmount() decimal.Decimal { return p.maxAmount }
func (p LoanPolicy) MinPeriod() int             { return p.minPeriod }
func (p LoanPolicy) MaxPeriod() int             { return p.maxPeriod }
