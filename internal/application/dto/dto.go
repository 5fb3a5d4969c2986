package dto

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// LoanDecisionRequest carries one applicant's loan ask as received on the wire.
// Zero values mean the field was absent.
type LoanDecisionRequest struct {
	PersonalCode string          `json:"personalCode"`
	LoanAmount   decimal.Decimal `json:"loanAmount"`
	LoanPeriod   int             `json:"loanPeriod"`
}

// Field validation messages.
const (
	MsgPersonalCodeRequired = "Personal Code is mandatory for Loan Decision Operation"
	MsgLoanAmountRequired   = "Loan Amount is mandatory for Loan Decision Operation"
	MsgLoanAmountPositive   = "Loan Amount should be greater than 0"
	MsgLoanPeriodRequired   = "Loan Period is mandatory for Loan Decision Operation"
	MsgLoanPeriodPositive   = "Loan Period should be greater than 0"
)

// Validate returns the field violations of the request, in field order.
// It checks shape only; policy bounds are enforced by the decision engine.
func (r LoanDecisionRequest) Validate() []string {
	var problems []string
	if strings.TrimSpace(r.PersonalCode) == "" {
		problems = append(problems, MsgPersonalCodeRequired)
	}
	if r.LoanAmount.Sign() <= 0 {
		problems = append(problems, MsgLoanAmountPositive)
	}
	if r.LoanPeriod <= 0 {
		problems = append(problems, MsgLoanPeriodPositive)
	}
	return problems
}

// AuthenticateRequest carries operator credentials.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// LoanDecisionResponse is the external representation of a loan decision.
type LoanDecisionResponse struct {
	Decision        string          `json:"decision"`
	LoanAmount      decimal.Decimal `json:"loanAmount"`
	Outcome         string          `json:"outcome"`
	SuggestedPeriod int             `json:"suggestedPeriod,omitempty"`
}

// AuthenticateResponse carries an issued bearer token.
type AuthenticateResponse struct {
	Token string `json:"token"`
}

// ErrorDetails is the body of every non-2xx REST response.
type ErrorDetails struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Details   string `json:"details"`
}
