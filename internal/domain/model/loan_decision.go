package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-decision/internal/domain/valueobject"
)

// LoanRequest is one applicant's ask. It is consumed by a single decision.
type LoanRequest struct {
	ApplicantID           string
	RequestedAmount       decimal.Decimal
	RequestedPeriodMonths int
}

// LoanDecision is the engine's output.
type LoanDecision struct {
	outcome         valueobject.DecisionOutcome
	amount          decimal.Decimal
	message         string
	suggestedPeriod int
}

// NewLoanDecision builds a decision. suggestedPeriod is zero when no period
// counter-offer is attached.
func NewLoanDecision(
	outcome valueobject.DecisionOutcome,
	amount decimal.Decimal,
	message string,
	suggestedPeriod int,
) LoanDecision {
	return LoanDecision{
		outcome:         outcome,
		amount:          amount,
		message:         message,
		suggestedPeriod: suggestedPeriod,
	}
}

func (d LoanDecision) Outcome() valueobject.DecisionOutcome { return d.outcome }
func (d LoanDecision) Amount() decimal.Decimal              { return d.amount }
func (d LoanDecision) Message() string                      { return d.message }
func (d LoanDecision) SuggestedPeriod() int                 { return d.suggestedPeriod }

// HasSuggestedPeriod reports whether a counter-offer period is attached.
func (d LoanDecision) HasSuggestedPeriod() bool { return d.suggestedPeriod > 0 }
