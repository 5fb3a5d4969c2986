package directory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loan-decision/internal/domain/model"
)

// ProfileRecord is the serialised form of a credit profile, shared by seed
// files, the profile topic and the cache. A null creditModifier is preserved
// so the decision engine can report it.
type ProfileRecord struct {
	ApplicantID        string              `json:"applicantId"`
	HasOutstandingDebt bool                `json:"hasOutstandingDebt"`
	CreditModifier     decimal.NullDecimal `json:"creditModifier"`
}

// ToProfile converts the record into a domain profile.
func (r ProfileRecord) ToProfile() (model.CreditProfile, error) {
	return model.NewCreditProfileWithModifier(r.ApplicantID, r.HasOutstandingDebt, r.CreditModifier)
}

// RecordFromProfile converts a domain profile into its serialised form.
func RecordFromProfile(p model.CreditProfile) ProfileRecord {
	return ProfileRecord{
		ApplicantID:        p.ApplicantID(),
		HasOutstandingDebt: p.HasOutstandingDebt(),
		CreditModifier:     p.CreditModifier(),
	}
}

func seedRecord(id string, debt bool, modifier int64) ProfileRecord {
	return ProfileRecord{
		ApplicantID:        id,
		HasOutstandingDebt: debt,
		CreditModifier:     decimal.NewNullDecimal(decimal.NewFromInt(modifier)),
	}
}

// DefaultSeed returns the built-in applicant directory.
func DefaultSeed() []ProfileRecord {
	return []ProfileRecord{
		seedRecord("49002010965", true, 100),
		seedRecord("49002010976", false, 100),
		seedRecord("49002010987", false, 300),
		seedRecord("49002010998", false, 1000),
		seedRecord("49002010999", false, 30),
	}
}

// LoadSeedFile reads a JSON array of profile records.
func LoadSeedFile(path string) ([]ProfileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []ProfileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return records, nil
}
