package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// DecisionOutcome – immutable value object
// ---------------------------------------------------------------------------

// DecisionOutcome classifies the result of a loan decision.
type DecisionOutcome struct {
	value string
}

const (
	outcomeApproved                 = "APPROVED"
	outcomeRejected                 = "REJECTED"
	outcomeRejectedWithCounterOffer = "REJECTED_WITH_COUNTER_OFFER"
)

var (
	OutcomeApproved                 = DecisionOutcome{value: outcomeApproved}
	OutcomeRejected                 = DecisionOutcome{value: outcomeRejected}
	OutcomeRejectedWithCounterOffer = DecisionOutcome{value: outcomeRejectedWithCounterOffer}
)

var validOutcomes = map[string]DecisionOutcome{
	outcomeApproved:                 OutcomeApproved,
	outcomeRejected:                 OutcomeRejected,
	outcomeRejectedWithCounterOffer: OutcomeRejectedWithCounterOffer,
}

// NewDecisionOutcome creates a DecisionOutcome from a raw string.
func NewDecisionOutcome(s string) (DecisionOutcome, error) {
	v, ok := validOutcomes[s]
	if !ok {
		return DecisionOutcome{}, fmt.Errorf("invalid decision outcome: %q", s)
	}
	return v, nil
}

// String returns the string representation of the outcome.
func (o DecisionOutcome) String() string { return o.value }

// IsZero returns true if the outcome has not been initialised.
func (o DecisionOutcome) IsZero() bool { return o.value == "" }

// Equal returns true when both outcomes carry the same value.
func (o DecisionOutcome) Equal(other DecisionOutcome) bool { return o.value == other.value }

// IsRejection reports whether the outcome denies the request as asked.
func (o DecisionOutcome) IsRejection() bool {
	return o.value == outcomeRejected || o.value == outcomeRejectedWithCounterOffer
}
