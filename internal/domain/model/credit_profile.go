package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// CreditProfile – what the bank knows about one applicant
// ---------------------------------------------------------------------------

// CreditProfile is immutable. A profile may carry a missing or non-positive
// credit modifier; that is a data fault detected by the decision engine, not
// by the constructor.
type CreditProfile struct {
	applicantID        string
	hasOutstandingDebt bool
	creditModifier     decimal.NullDecimal
}

// NewCreditProfile builds a profile with a known credit modifier.
func NewCreditProfile(applicantID string, hasOutstandingDebt bool, creditModifier decimal.Decimal) (CreditProfile, error) {
	return NewCreditProfileWithModifier(applicantID, hasOutstandingDebt, decimal.NewNullDecimal(creditModifier))
}

// NewCreditProfileWithModifier builds a profile whose modifier may be absent,
// as read from a backing store.
func NewCreditProfileWithModifier(applicantID string, hasOutstandingDebt bool, creditModifier decimal.NullDecimal) (CreditProfile, error) {
	if applicantID == "" {
		return CreditProfile{}, errors.New("applicant ID is required")
	}
	return CreditProfile{
		applicantID:        applicantID,
		hasOutstandingDebt: hasOutstandingDebt,
		creditModifier:     creditModifier,
	}, nil
}

func (p CreditProfile) ApplicantID() string                 { return p.applicantID }
func (p CreditProfile) HasOutstandingDebt() bool            { return p.hasOutstandingDebt }
func (p CreditProfile) CreditModifier() decimal.NullDecimal { return p.creditModifier }

// HasUsableModifier reports whether the credit modifier is present and strictly positive.
func (p CreditProfile) HasUsableModifier() bool {
	return p.creditModifier.Valid && p.creditModifier.Decimal.GreaterThan(decimal.Zero)
}
