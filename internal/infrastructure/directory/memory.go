package directory

import (
	"context"
	"fmt"

	"github.com/bibbank/loan-decision/internal/domain/model"
)

// MemoryDirectory is an immutable in-process directory. It is built once and
// only read afterwards, so it needs no locking.
type MemoryDirectory struct {
	profiles map[string]model.CreditProfile
}

// NewMemoryDirectory builds a directory from records. Duplicate applicant IDs
// are rejected.
func NewMemoryDirectory(records []ProfileRecord) (*MemoryDirectory, error) {
	profiles := make(map[string]model.CreditProfile, len(records))
	for i, r := range records {
		p, err := r.ToProfile()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := profiles[p.ApplicantID()]; dup {
			return nil, fmt.Errorf("record %d: duplicate applicant %s", i, p.ApplicantID())
		}
		profiles[p.ApplicantID()] = p
	}
	return &MemoryDirectory{profiles: profiles}, nil
}

// FindProfile never returns an error.
func (d *MemoryDirectory) FindProfile(_ context.Context, applicantID string) (model.CreditProfile, bool, error) {
	p, ok := d.profiles[applicantID]
	return p, ok, nil
}

// Len returns the number of applicants.
func (d *MemoryDirectory) Len() int { return len(d.profiles) }
