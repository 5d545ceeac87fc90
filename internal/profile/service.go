// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// Service enforces onboarding rules and stamps activity entries before they
// reach the repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(repo Repository) (*Service, error) {
	return NewServiceWithLogger(repo, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("PROFILE_SERVICE_INVALID").Errorf("profile repository is required")
	}
	if logger == nil {
		return nil, oops.Code("PROFILE_SERVICE_INVALID").Errorf("logger is required")
	}
	return &Service{repo: repo, logger: logger, now: time.Now}, nil
}

// Get retrieves a user's profile.
func (s *Service) Get(ctx context.Context, username string) (*Profile, error) {
	return s.repo.Get(ctx, username)
}

// UpdateOnboarding applies an onboarding submission to the user's profile.
// Submitting fewer than MinPositiveStates positive states is rejected before
// anything is written.
func (s *Service) UpdateOnboarding(ctx context.Context, username string, u OnboardingUpdate) (*Profile, error) {
	if u.PositiveStates != nil && len(u.PositiveStates) < MinPositiveStates {
		return nil, oops.Code("PROFILE_TOO_FEW_POSITIVE_STATES").
			With("min", MinPositiveStates).
			With("got", len(u.PositiveStates)).
			Wrap(ErrTooFewPositiveStates)
	}

	p, err := s.repo.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	p.Apply(u)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, oops.Code("PROFILE_UPDATE_FAILED").
			With("operation", "update profile").
			With("username", username).
			Wrap(err)
	}

	s.logger.Info("onboarding updated",
		"username", username,
		"onboarding_complete", p.OnboardingComplete,
	)

	return p, nil
}

// Log appends an activity entry to the user's log, stamping it with the
// current time.
func (s *Service) Log(ctx context.Context, username, kind string, payload json.RawMessage) (*Entry, error) {
	k, err := ParseEntryKind(kind)
	if err != nil {
		return nil, err
	}

	e, err := NewEntry(k, payload, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.repo.AppendEntry(ctx, username, e); err != nil {
		return nil, oops.Code("PROFILE_LOG_FAILED").
			With("operation", "append entry").
			With("username", username).
			With("kind", kind).
			Wrap(err)
	}

	return e, nil
}

// Entries returns the user's activity log, oldest first.
func (s *Service) Entries(ctx context.Context, username string) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, username)
}
