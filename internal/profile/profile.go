// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package profile holds each user's logging profile: onboarding selections
// and the append-only activity log of food, habit, and mood entries.
package profile

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// MinPositiveStates is the minimum number of positive states a user must
// select during onboarding.
const MinPositiveStates = 3

// Profile is a user's logging profile, created empty at registration and
// filled in by the onboarding wizard.
type Profile struct {
	ID                 ulid.ULID
	Username           string
	DisplayName        string
	PositiveHabits     []string
	NegativeHabits     []string
	PositiveStates     []string
	NegativeStates     []string
	OnboardingComplete bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// New creates an empty profile for a freshly registered user.
func New(username string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:             ulid.Make(),
		Username:       username,
		PositiveHabits: []string{},
		NegativeHabits: []string{},
		PositiveStates: []string{},
		NegativeStates: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// OnboardingUpdate carries a partial onboarding submission. Nil slices and a
// nil display name mean "leave unchanged".
type OnboardingUpdate struct {
	DisplayName    *string
	PositiveStates []string
	NegativeStates []string
	PositiveHabits []string
	NegativeHabits []string
}

// Apply merges the update into the profile and recomputes the
// onboarding-complete flag.
func (p *Profile) Apply(u OnboardingUpdate) {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.PositiveStates != nil {
		p.PositiveStates = u.PositiveStates
	}
	if u.NegativeStates != nil {
		p.NegativeStates = u.NegativeStates
	}
	if u.PositiveHabits != nil {
		p.PositiveHabits = u.PositiveHabits
	}
	if u.NegativeHabits != nil {
		p.NegativeHabits = u.NegativeHabits
	}

	p.OnboardingComplete = p.DisplayName != "" &&
		len(p.PositiveStates) >= MinPositiveStates &&
		len(p.NegativeStates) > 0 &&
		len(p.PositiveHabits) > 0 &&
		len(p.NegativeHabits) > 0

	p.UpdatedAt = time.Now().UTC()
}
