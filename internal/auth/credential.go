// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package auth

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/samber/oops"
)

// MaxUsernameLength bounds usernames at creation time.
const MaxUsernameLength = 64

// Credential is the stored record used to verify a login. Exactly one exists
// per registered username. Records are immutable once created: there is no
// password change, reset, or account deletion flow.
type Credential struct {
	Username     string
	PasswordSalt string
	PasswordHash string
	ProfileRef   string // ULID of the user's logging profile
	CreatedAt    time.Time
}

// NewCredential creates a validated Credential. ProfileRef is assigned by the
// registrar when the logging profile is created.
func NewCredential(username, salt, hash string) (*Credential, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if salt == "" {
		return nil, oops.Code("AUTH_INVALID_CREDENTIAL").Errorf("password salt cannot be empty")
	}
	if hash == "" {
		return nil, oops.Code("AUTH_INVALID_CREDENTIAL").Errorf("password hash cannot be empty")
	}

	return &Credential{
		Username:     username,
		PasswordSalt: salt,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateUsername validates a username's shape. Usernames containing dots or
// whitespace are rejected; this predates the relational schema but remains
// the public contract, so registered names keep working across storage
// engines.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").
			Wrapf(ErrInvalidUsername, "username cannot be empty")
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Wrapf(ErrInvalidUsername, "username must be at most %d characters", MaxUsernameLength)
	}
	if strings.Contains(username, ".") {
		return oops.Code("AUTH_INVALID_USERNAME").
			Wrapf(ErrInvalidUsername, "username cannot contain dots")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return oops.Code("AUTH_INVALID_USERNAME").
			Wrapf(ErrInvalidUsername, "username cannot contain whitespace")
	}
	return nil
}

// CredentialRepository manages credential persistence. Creation goes through
// Registrar so the profile bootstrap and the credential insert commit as one
// unit.
type CredentialRepository interface {
	// Get retrieves the credential for a username. Returns ErrNotFound if
	// the username is unknown.
	Get(ctx context.Context, username string) (*Credential, error)

	// Exists reports whether a credential record exists for the username.
	Exists(ctx context.Context, username string) (bool, error)
}

// Registrar atomically creates a credential record together with its logging
// profile. Implementations must enforce username uniqueness at the storage
// layer and report a conflict as ErrDuplicateUsername; an application-level
// existence check cannot close the concurrent-registration race.
type Registrar interface {
	// CreateUser persists the credential and its profile in a single unit,
	// filling in cred.ProfileRef. Returns ErrDuplicateUsername if the
	// username is already registered.
	CreateUser(ctx context.Context, cred *Credential) error
}
