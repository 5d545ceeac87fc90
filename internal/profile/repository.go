// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package profile

import "context"

// Repository manages profile and activity-log persistence.
type Repository interface {
	// Get retrieves a profile by username. Returns ErrNotFound if the
	// username has no profile.
	Get(ctx context.Context, username string) (*Profile, error)

	// Update replaces the mutable fields of an existing profile.
	Update(ctx context.Context, p *Profile) error

	// AppendEntry appends an activity entry to the user's log.
	AppendEntry(ctx context.Context, username string, e *Entry) error

	// ListEntries returns the user's activity entries ordered by logged-at
	// time, oldest first.
	ListEntries(ctx context.Context, username string) ([]*Entry, error)
}
