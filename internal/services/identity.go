package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
)

type staticIdentityStore struct {
	username     string
	passwordHash string
}

// NewStaticIdentityStore returns a store holding exactly one identity.
//
// passwordHash takes precedence over password. A plain password is hashed
// with argon2id once, so it is never kept in memory in the clear.
func NewStaticIdentityStore(username, password, passwordHash string) (IdentityStore, error) {
	if username == "" {
		return nil, fmt.Errorf("identity username is empty")
	}

	if passwordHash == "" {
		if password == "" {
			return nil, fmt.Errorf("identity password is empty")
		}

		var err error
		passwordHash, err = argon2id.CreateHash(password, argon2id.DefaultParams)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	} else if !strings.HasPrefix(passwordHash, "$argon2id$") {
		return nil, fmt.Errorf("identity password hash is not an argon2id hash")
	}

	return &staticIdentityStore{
		username:     username,
		passwordHash: passwordHash,
	}, nil
}

func (s *staticIdentityStore) Verify(_ context.Context, username, password string) (bool, error) {
	// The hash is compared even for a wrong username so both failures
	// take about the same time.
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	passwordMatch, err := argon2id.ComparePasswordAndHash(password, s.passwordHash)
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return usernameMatch && passwordMatch, nil
}
