// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package postgres implements the auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/equanimity/equanimity/internal/auth"
)

// poolIface is the subset of pgxpool.Pool the repositories need. Both
// *pgxpool.Pool and pgxmock pools satisfy it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CredentialRepository implements auth.CredentialRepository using PostgreSQL.
type CredentialRepository struct {
	pool poolIface
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(pool poolIface) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// Get retrieves the credential for a username.
func (r *CredentialRepository) Get(ctx context.Context, username string) (*auth.Credential, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT username, password_salt, password_hash, profile_ref, created_at
		FROM credentials
		WHERE username = $1
	`, username)

	var (
		cred       auth.Credential
		profileRef string
		createdAt  time.Time
	)
	err := row.Scan(&cred.Username, &cred.PasswordSalt, &cred.PasswordHash, &profileRef, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_FAILED").
			With("operation", "get credential by username").
			With("username", username).
			Wrap(err)
	}

	cred.ProfileRef = profileRef
	cred.CreatedAt = createdAt
	return &cred, nil
}

// Exists reports whether a credential record exists for the username.
func (r *CredentialRepository) Exists(ctx context.Context, username string) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM credentials WHERE username = $1)
	`, username)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, oops.Code("CREDENTIAL_EXISTS_FAILED").
			With("operation", "check credential exists").
			With("username", username).
			Wrap(err)
	}
	return exists, nil
}

// Compile-time interface check.
var _ auth.CredentialRepository = (*CredentialRepository)(nil)
