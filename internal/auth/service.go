// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Dummy salt and hash used when a username doesn't exist, so verification
// still runs and response time stays consistent. These are not credentials;
// the hash can never match any password.
const (
	dummyPasswordSalt = "AAAAAAAAAAAAAAAAAAAAAA"
	//nolint:gosec // G101: intentionally fake value for timing-attack prevention, not a credential.
	dummyPasswordHash = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

// Service orchestrates registration, login, and session issuance. It is the
// only mutation path into the credential and session stores.
type Service struct {
	credentials CredentialRepository
	sessions    SessionRepository
	registrar   Registrar
	hasher      PasswordHasher
	tokens      TokenGenerator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a Service, validating that all dependencies are present.
func NewService(credentials CredentialRepository, sessions SessionRepository, registrar Registrar, hasher PasswordHasher, tokens TokenGenerator) (*Service, error) {
	return NewServiceWithLogger(credentials, sessions, registrar, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(credentials CredentialRepository, sessions SessionRepository, registrar Registrar, hasher PasswordHasher, tokens TokenGenerator, logger *slog.Logger) (*Service, error) {
	if credentials == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("credentials repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("sessions repository is required")
	}
	if registrar == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("registrar is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("token generator is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}

	return &Service{
		credentials: credentials,
		sessions:    sessions,
		registrar:   registrar,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Register creates a credential and its logging profile, then issues a
// session. The credential and profile commit as one unit: a user either
// fully exists or not at all.
// Returns ErrInvalidUsername or ErrDuplicateUsername as expected outcomes.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if err := ValidateUsername(username); err != nil {
		return "", err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "generate salt").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password, salt)
	if err != nil {
		return "", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	cred, err := NewCredential(username, salt, hash)
	if err != nil {
		return "", err
	}

	if err := s.registrar.CreateUser(ctx, cred); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return "", err
		}
		return "", oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("username", username).
			Wrap(err)
	}

	s.logger.Info("user registered", "username", username, "profile_ref", cred.ProfileRef)

	return s.IssueOrReuseSession(ctx, username)
}

// LoginWithPassword verifies a credential pair and issues or reuses a
// session. Unknown usernames and wrong passwords both return
// ErrInvalidCredentials; verification runs either way so response time does
// not reveal which.
func (s *Service) LoginWithPassword(ctx context.Context, username, password string) (string, error) {
	cred, lookupErr := s.credentials.Get(ctx, username)

	salt, hash := dummyPasswordSalt, dummyPasswordHash
	exists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get credential").
				Wrap(lookupErr)
		}
	} else {
		salt, hash = cred.PasswordSalt, cred.PasswordHash
		exists = true
	}

	valid, verifyErr := s.hasher.Verify(password, salt, hash)
	if verifyErr != nil {
		if !exists {
			return "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !exists || !valid {
		return "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	return s.IssueOrReuseSession(ctx, username)
}

// LoginWithToken resolves a bearer token to its owning username. The session
// store is swept before the lookup, so an expired session is removed by the
// very read that rejects it. Returns ErrSessionInvalid for unknown and
// expired tokens alike.
func (s *Service) LoginWithToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", oops.Code("SESSION_INVALID").Wrap(ErrSessionInvalid)
	}

	swept, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		return "", oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "sweep expired sessions").
			Wrap(err)
	}
	if swept > 0 {
		s.logger.Debug("swept expired sessions", "count", swept)
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("SESSION_INVALID").Wrap(ErrSessionInvalid)
		}
		return "", oops.Code("SESSION_LOOKUP_FAILED").
			With("operation", "find session by token").
			Wrap(err)
	}

	return session.Username, nil
}

// IssueOrReuseSession returns the user's active session token if one exists,
// otherwise mints a new one. Reuse returns the token unchanged: the expiry
// window is fixed at first issuance and never extended.
func (s *Service) IssueOrReuseSession(ctx context.Context, username string) (string, error) {
	existing, err := s.sessions.FindActiveByUsername(ctx, username)
	if err == nil {
		return existing.Token, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "find active session").
			With("username", username).
			Wrap(err)
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	session, err := NewSession(token, username, s.now().UTC())
	if err != nil {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		return "", oops.Code("SESSION_ISSUE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	s.logger.Info("session issued", "username", username, "expires_at", session.ExpiresAt)

	return token, nil
}
