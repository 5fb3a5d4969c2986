package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-decision/internal/domain/model"
	"github.com/bibbank/loan-decision/internal/domain/port"
	"github.com/bibbank/loan-decision/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// DecisionEngine – domain service for credit-modifier based loan decisions
// ---------------------------------------------------------------------------

// DecisionEngine is stateless apart from its immutable collaborators and is
// safe for concurrent use.
type DecisionEngine struct {
	lookup   port.ProfileLookup
	policy   valueobject.LoanPolicy
	messages Messages
}

// Option customises a DecisionEngine.
type Option func(*DecisionEngine)

// WithPolicy overrides the default loan policy.
func WithPolicy(p valueobject.LoanPolicy) Option {
	return func(e *DecisionEngine) { e.policy = p }
}

// WithMessages overrides the default message fragments.
func WithMessages(m Messages) Option {
	return func(e *DecisionEngine) { e.messages = m }
}

// NewDecisionEngine returns an engine backed by the given directory.
func NewDecisionEngine(lookup port.ProfileLookup, opts ...Option) *DecisionEngine {
	e := &DecisionEngine{
		lookup:   lookup,
		policy:   valueobject.DefaultLoanPolicy(),
		messages: DefaultMessages(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the bounds the engine validates against.
func (e *DecisionEngine) Policy() valueobject.LoanPolicy { return e.policy }

// Decide validates the request, resolves the applicant and evaluates the
// request against the applicant's profile.
//
// Bounds are checked before the directory is consulted, so a malformed request
// for an unknown applicant reports the bound violation.
func (e *DecisionEngine) Decide(ctx context.Context, req model.LoanRequest) (model.LoanDecision, error) {
	if err := e.Validate(req); err != nil {
		return model.LoanDecision{}, err
	}

	profile, found, err := e.lookup.FindProfile(ctx, req.ApplicantID)
	if err != nil {
		return model.LoanDecision{}, &model.DecisionError{
			Kind: model.KindServer,
			Err:  fmt.Errorf("lookup profile %s: %w", req.ApplicantID, err),
		}
	}
	if !found {
		return model.LoanDecision{}, model.ClientError(model.ErrAccountNotFound, "%s", req.ApplicantID)
	}

	return e.Evaluate(req, profile)
}

// Validate checks the request against the policy. Checks run in a fixed order
// and the first violation is returned.
func (e *DecisionEngine) Validate(req model.LoanRequest) error {
	switch {
	case req.RequestedAmount.LessThan(e.policy.MinAmount()):
		return model.ClientError(model.ErrAmountTooLow, "minimum is %s", e.policy.MinAmount())
	case req.RequestedAmount.GreaterThan(e.policy.MaxAmount()):
		return model.ClientError(model.ErrAmountTooHigh, "maximum is %s", e.policy.MaxAmount())
	case req.RequestedPeriodMonths > e.policy.MaxPeriod():
		return model.ClientError(model.ErrPeriodTooLong, "maximum is %d months", e.policy.MaxPeriod())
	case req.RequestedPeriodMonths < e.policy.MinPeriod():
		return model.ClientError(model.ErrPeriodTooShort, "minimum is %d months", e.policy.MinPeriod())
	}
	return nil
}

// Evaluate applies the debt gate, the profile integrity check and the
// eligibility rules. The request must already have passed Validate.
//
// Rules, first match wins:
//
//	eligible = modifier * period
//	eligible >= amount                  -> approved, min(eligible, max amount)
//	eligible >= min amount              -> counter-offer of eligible
//	ceil(amount/modifier) <= max period -> counter-offer of that period
//	max period * modifier >= min amount -> counter-offer of both
//	otherwise                           -> rejected
func (e *DecisionEngine) Evaluate(req model.LoanRequest, profile model.CreditProfile) (model.LoanDecision, error) {
	if profile.HasOutstandingDebt() {
		return model.NewLoanDecision(valueobject.OutcomeRejected, decimal.Zero, e.messages.rejectedForDebt(), 0), nil
	}

	if !profile.HasUsableModifier() {
		return model.LoanDecision{}, model.ServerError(model.ErrInvalidProfileData, "%s", profile.ApplicantID())
	}

	modifier := profile.CreditModifier().Decimal
	amount := req.RequestedAmount
	eligible := modifier.Mul(decimal.NewFromInt(int64(req.RequestedPeriodMonths)))

	// The credit score eligible/amount is >= 1 exactly when eligible >= amount,
	// since amount is positive. Comparing directly avoids any rounding.
	if eligible.GreaterThanOrEqual(amount) {
		return model.NewLoanDecision(valueobject.OutcomeApproved, decimal.Min(eligible, e.policy.MaxAmount()), e.messages.approved(), 0), nil
	}

	if eligible.GreaterThanOrEqual(e.policy.MinAmount()) {
		return model.NewLoanDecision(valueobject.OutcomeRejectedWithCounterOffer, eligible, e.messages.counterAmount(), 0), nil
	}

	maxPeriod := decimal.NewFromInt(int64(e.policy.MaxPeriod()))
	if suggested := ceilQuotient(amount, modifier); suggested.LessThanOrEqual(maxPeriod) {
		period := int(suggested.IntPart())
		return model.NewLoanDecision(valueobject.OutcomeRejectedWithCounterOffer, amount, e.messages.counterPeriod(period), period), nil
	}

	maxPossible := maxPeriod.Mul(modifier)
	if maxPossible.GreaterThanOrEqual(e.policy.MinAmount()) {
		return model.NewLoanDecision(
			valueobject.OutcomeRejectedWithCounterOffer,
			maxPossible,
			e.messages.counterAmountAndPeriod(e.policy.MaxPeriod()),
			e.policy.MaxPeriod(),
		), nil
	}

	return model.NewLoanDecision(valueobject.OutcomeRejected, decimal.Zero, e.messages.rejected(), 0), nil
}

// CreditScore returns eligible/amount for the request, rounded to
// scorePrecision decimal places. It is informational; Evaluate compares the
// operands exactly.
func CreditScore(req model.LoanRequest, profile model.CreditProfile) decimal.Decimal {
	if !profile.HasUsableModifier() || req.RequestedAmount.Sign() <= 0 {
		return decimal.Zero
	}
	eligible := profile.CreditModifier().Decimal.Mul(decimal.NewFromInt(int64(req.RequestedPeriodMonths)))
	return eligible.DivRound(req.RequestedAmount, scorePrecision)
}

const scorePrecision = 34

// ceilQuotient returns ceil(a/b) for positive a and b without intermediate rounding.
func ceilQuotient(a, b decimal.Decimal) decimal.Decimal {
	q, r := a.QuoRem(b, 0)
	if r.Sign() > 0 {
		q = q.Add(decimal.NewFromInt(1))
	}
	return q
}
