// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/equanimity/equanimity/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// Expiry filtering happens in SQL against an injectable clock so boundary
// behavior is testable.
type SessionRepository struct {
	pool poolIface
	now  func() time.Time
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool, now: time.Now}
}

// FindByToken retrieves the session for a token. Expired sessions are
// filtered by the query, so unknown and expired tokens are indistinguishable.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token, username, issued_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > $2
	`, token, r.now().UTC())

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token").
			Wrap(err)
	}
	return session, nil
}

// FindActiveByUsername retrieves a non-expired session owned by the username.
// If several exist the most recently issued wins.
func (r *SessionRepository) FindActiveByUsername(ctx context.Context, username string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token, username, issued_at, expires_at
		FROM sessions
		WHERE username = $1 AND expires_at > $2
		ORDER BY issued_at DESC
		LIMIT 1
	`, username, r.now().UTC())

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_USERNAME_FAILED").
			With("operation", "get active session by username").
			With("username", username).
			Wrap(err)
	}
	return session, nil
}

// Put upserts a session record keyed by its token.
func (r *SessionRepository) Put(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token, username, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET
			username = $2, issued_at = $3, expires_at = $4
	`,
		session.Token,
		session.Username,
		session.IssuedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return oops.Code("SESSION_PUT_FAILED").
			With("operation", "upsert session").
			With("username", session.Username).
			Wrap(err)
	}
	return nil
}

// SweepExpired removes all expired sessions and returns the count.
func (r *SessionRepository) SweepExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE expires_at <= $1
	`, r.now().UTC())
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanSession scans a single row into a Session.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var s auth.Session
	err := row.Scan(&s.Token, &s.Username, &s.IssuedAt, &s.ExpiresAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}
	return &s, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
