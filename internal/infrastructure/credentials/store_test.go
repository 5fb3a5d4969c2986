package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bibbank/loan-decision/pkg/auth"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestParseStore(t *testing.T) {
	users := "alice:" + hash(t, "wonderland") + ", svc:" + hash(t, "s3cret") + ":api_client|admin,"

	store, err := ParseStore(users)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	t.Run("default role", func(t *testing.T) {
		op, err := store.Authenticate("alice", "wonderland")
		require.NoError(t, err)
		assert.Equal(t, []string{auth.RoleOperator}, op.Roles)
	})

	t.Run("explicit roles", func(t *testing.T) {
		op, err := store.Authenticate("svc", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, []string{auth.RoleAPIClient, auth.RoleAdmin}, op.Roles)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := store.Authenticate("alice", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.Authenticate("bob", "wonderland")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestParseStore_Errors(t *testing.T) {
	tests := map[string]string{
		"plain password": "alice:wonderland",
		"missing hash":   "alice",
		"empty user":     ":" + hash(t, "x"),
		"duplicate":      "a:" + hash(t, "x") + ",a:" + hash(t, "y"),
	}
	for name, users := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStore(users)
			assert.Error(t, err)
		})
	}
}

func TestEmptyStoreRejectsEveryone(t *testing.T) {
	store, err := ParseStore("")
	require.NoError(t, err)
	_, err = store.Authenticate("", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")))
}
