package credentials

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bibbank/loan-decision/pkg/auth"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// Callers cannot tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Operator is an account allowed to request tokens.
type Operator struct {
	Username string
	Roles    []string
	hash     []byte
}

// Store verifies operator passwords against bcrypt hashes.
type Store struct {
	operators map[string]Operator
	// dummy is compared against for unknown users so both paths cost one bcrypt run.
	dummy []byte
}

// ParseStore reads entries of the form user:bcrypt-hash[:role|role], separated
// by commas. Entries without roles get the operator role.
func ParseStore(users string) (*Store, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("unused"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s := &Store{operators: make(map[string]Operator), dummy: dummy}

	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("malformed AUTH_USERS entry for %q", parts[0])
		}
		if _, err := bcrypt.Cost([]byte(parts[1])); err != nil {
			return nil, fmt.Errorf("AUTH_USERS entry %q: password must be a bcrypt hash: %w", parts[0], err)
		}
		roles := []string{auth.RoleOperator}
		if len(parts) == 3 && parts[2] != "" {
			roles = strings.Split(parts[2], "|")
		}
		if _, dup := s.operators[parts[0]]; dup {
			return nil, fmt.Errorf("duplicate AUTH_USERS entry %q", parts[0])
		}
		s.operators[parts[0]] = Operator{Username: parts[0], Roles: roles, hash: []byte(parts[1])}
	}
	return s, nil
}

// Len returns the number of configured operators.
func (s *Store) Len() int { return len(s.operators) }

// Authenticate checks a username and password.
func (s *Store) Authenticate(username, password string) (Operator, error) {
	op, ok := s.operators[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return Operator{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(op.hash, []byte(password)); err != nil {
		return Operator{}, ErrInvalidCredentials
	}
	return op, nil
}

// HashPassword returns a bcrypt hash suitable for AUTH_USERS.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
