// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"
)

// SessionTTL is the fixed lifetime of a session, measured from issuance.
// There is no sliding expiry: reuse never extends the window.
const SessionTTL = 7 * 24 * time.Hour

// Session is a capability-bearing record: possession of the token implies
// the identity of the owning username until the expiry instant.
type Session struct {
	Token     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewSession creates a validated Session issued at the given instant.
func NewSession(token, username string, issuedAt time.Time) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID_TOKEN").Errorf("session token cannot be empty")
	}
	if username == "" {
		return nil, oops.Code("SESSION_INVALID_USERNAME").Errorf("session username cannot be empty")
	}
	if issuedAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_ISSUED_AT").Errorf("issue time cannot be zero")
	}

	return &Session{
		Token:     token,
		Username:  username,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(SessionTTL),
	}, nil
}

// ActiveAt reports whether the session is active at the given instant.
// Comparison is strict: the session expires at the exact instant ExpiresAt
// is reached, not after.
func (s *Session) ActiveAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

// Active reports whether the session is active now.
func (s *Session) Active() bool {
	return s.ActiveAt(time.Now())
}

// SessionRepository manages session persistence, keyed by token.
type SessionRepository interface {
	// FindByToken retrieves the session for a token. Expired sessions are
	// filtered out; both unknown and expired tokens return ErrNotFound.
	FindByToken(ctx context.Context, token string) (*Session, error)

	// FindActiveByUsername retrieves a non-expired session owned by the
	// username, or ErrNotFound if none exists.
	FindActiveByUsername(ctx context.Context, username string) (*Session, error)

	// Put upserts a session record keyed by its token.
	Put(ctx context.Context, session *Session) error

	// SweepExpired deletes every session whose expiry instant has passed
	// and returns the count of deleted records.
	SweepExpired(ctx context.Context) (int64, error)
}
