package valueobject_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-decision/internal/domain/valueobject"
)

func TestDecisionOutcome(t *testing.T) {
	t.Run("parses known values", func(t *testing.T) {
		for _, s := range []string{"APPROVED", "REJECTED", "REJECTED_WITH_COUNTER_OFFER"} {
			o, err := valueobject.NewDecisionOutcome(s)
			require.NoError(t, err)
			assert.Equal(t, s, o.String())
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := valueobject.NewDecisionOutcome("MAYBE")
		assert.Error(t, err)
	})

	t.Run("rejection classification", func(t *testing.T) {
		assert.False(t, valueobject.OutcomeApproved.IsRejection())
		assert.True(t, valueobject.OutcomeRejected.IsRejection())
		assert.True(t, valueobject.OutcomeRejectedWithCounterOffer.IsRejection())
	})

	t.Run("zero value", func(t *testing.T) {
		var o valueobject.DecisionOutcome
		assert.True(t, o.IsZero())
		assert.False(t, o.Equal(valueobject.OutcomeApproved))
	})
}

func TestLoanPolicy(t *testing.T) {
	t.Run("default bounds", func(t *testing.T) {
		p := valueobject.DefaultLoanPolicy()
		assert.True(t, p.MinAmount().Equal(decimal.NewFromInt(2000)))
		assert.True(t, p.MaxAmount().Equal(decimal.NewFromInt(10000)))
		assert.Equal(t, 12, p.MinPeriod())
		assert.Equal(t, 60, p.MaxPeriod())
	})

	t.Run("valid custom policy", func(t *testing.T) {
		p, err := valueobject.NewLoanPolicy(decimal.NewFromInt(500), decimal.NewFromInt(500), 3, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, p.MaxPeriod())
	})

	tests := []struct {
		name           string
		minAmt, maxAmt int64
		minPer, maxPer int
	}{
		{"non-positive minimum amount", 0, 100, 1, 2},
		{"maximum below minimum amount", 200, 100, 1, 2},
		{"non-positive minimum period", 100, 200, 0, 2},
		{"maximum below minimum period", 100, 200, 6, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := valueobject.NewLoanPolicy(decimal.NewFromInt(tc.minAmt), decimal.NewFromInt(tc.maxAmt), tc.minPer, tc.maxPer)
			assert.ErrorIs(t, err, valueobject.ErrInvalidPolicy)
		})
	}
}
