// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/equanimity/equanimity/internal/auth"
	"github.com/equanimity/equanimity/internal/profile"
	profilepg "github.com/equanimity/equanimity/internal/profile/postgres"
)

// Registrar implements auth.Registrar using PostgreSQL. The profile and the
// credential are created in one transaction, so a failure between the two
// writes never leaves a profile without a credential.
type Registrar struct {
	pool poolIface
}

// NewRegistrar creates a new Registrar.
func NewRegistrar(pool poolIface) *Registrar {
	return &Registrar{pool: pool}
}

// CreateUser persists the credential and a fresh empty profile atomically,
// filling in cred.ProfileRef. Username uniqueness is enforced by the unique
// constraint on credentials; a concurrent duplicate surfaces as
// ErrDuplicateUsername no matter which insert loses the race.
func (r *Registrar) CreateUser(ctx context.Context, cred *auth.Credential) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return oops.Code("REGISTRAR_BEGIN_FAILED").
			With("operation", "begin registration transaction").
			Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p := profile.New(cred.Username)
	if err := profilepg.InsertTx(ctx, tx, p); err != nil {
		if isUniqueViolation(err) {
			return oops.Code("REGISTRAR_DUPLICATE_USERNAME").
				With("username", cred.Username).
				Wrap(auth.ErrDuplicateUsername)
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO credentials (username, password_salt, password_hash, profile_ref, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		cred.Username,
		cred.PasswordSalt,
		cred.PasswordHash,
		p.ID.String(),
		cred.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("REGISTRAR_DUPLICATE_USERNAME").
				With("username", cred.Username).
				Wrap(auth.ErrDuplicateUsername)
		}
		return oops.Code("REGISTRAR_INSERT_FAILED").
			With("operation", "insert credential").
			With("username", cred.Username).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("REGISTRAR_COMMIT_FAILED").
			With("operation", "commit registration transaction").
			With("username", cred.Username).
			Wrap(err)
	}

	cred.ProfileRef = p.ID.String()
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.Registrar = (*Registrar)(nil)
