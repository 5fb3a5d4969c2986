package port

import (
	"context"

	"github.com/bibbank/loan-decision/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Account directory port (driven/secondary adapter)
// ---------------------------------------------------------------------------

// ProfileLookup resolves an applicant to a credit profile. It is read-only.
//
// found is false when the applicant is unknown. A non-nil error means the
// backing store itself failed and says nothing about the applicant.
type ProfileLookup interface {
	FindProfile(ctx context.Context, applicantID string) (profile model.CreditProfile, found bool, err error)
}

// ProfileLookupFunc adapts a plain function to ProfileLookup.
type ProfileLookupFunc func(ctx context.Context, applicantID string) (model.CreditProfile, bool, error)

// FindProfile calls f.
func (f ProfileLookupFunc) FindProfile(ctx context.Context, applicantID string) (model.CreditProfile, bool, error) {
	return f(ctx, applicantID)
}
