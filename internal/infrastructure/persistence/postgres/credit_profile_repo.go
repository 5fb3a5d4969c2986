package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-decision/internal/domain/model"
	pkgpostgres "github.com/bibbank/loan-decision/pkg/postgres"
)

// CreditProfileRepo implements port.ProfileLookup over the credit_profiles table.
// It never writes.
type CreditProfileRepo struct {
	db pkgpostgres.Querier
}

// NewCreditProfileRepo creates a repository backed by PostgreSQL.
func NewCreditProfileRepo(db pkgpostgres.Querier) *CreditProfileRepo {
	return &CreditProfileRepo{db: db}
}

// FindProfile loads one applicant. A missing row is reported as not found.
func (r *CreditProfileRepo) FindProfile(ctx context.Context, applicantID string) (model.CreditProfile, bool, error) {
	query := `
		SELECT applicant_id, has_outstanding_debt, credit_modifier::text
		FROM credit_profiles
		WHERE applicant_id = $1
	`
	var (
		id       string
		debt     bool
		modifier *string
	)
	err := r.db.QueryRow(ctx, query, applicantID).Scan(&id, &debt, &modifier)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CreditProfile{}, false, nil
	}
	if err != nil {
		return model.CreditProfile{}, false, fmt.Errorf("find credit profile: %w", err)
	}

	var mod decimal.NullDecimal
	if modifier != nil {
		d, err := decimal.NewFromString(*modifier)
		if err != nil {
			return model.CreditProfile{}, false, fmt.Errorf("parse credit modifier of %s: %w", id, err)
		}
		mod = decimal.NewNullDecimal(d)
	}

	p, err := model.NewCreditProfileWithModifier(id, debt, mod)
	if err != nil {
		return model.CreditProfile{}, false, fmt.Errorf("reconstruct credit profile: %w", err)
	}
	return p, true, nil
}

// Count returns the number of stored profiles.
func (r *CreditProfileRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM credit_profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credit profiles: %w", err)
	}
	return n, nil
}
