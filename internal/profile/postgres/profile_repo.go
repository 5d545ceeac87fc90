// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package postgres implements profile.Repository using PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/equanimity/equanimity/internal/profile"
)

// poolIface is the subset of pgxpool.Pool the repository needs. Both
// *pgxpool.Pool and pgxmock pools satisfy it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileRepository implements profile.Repository using PostgreSQL.
type ProfileRepository struct {
	pool poolIface
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool poolIface) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// InsertTx inserts a profile inside an existing transaction. Registration
// uses this to create the profile and the credential atomically.
func InsertTx(ctx context.Context, tx pgx.Tx, p *profile.Profile) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO profiles (
			id, username, display_name,
			positive_habits, negative_habits, positive_states, negative_states,
			onboarding_complete, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		p.ID.String(),
		p.Username,
		p.DisplayName,
		p.PositiveHabits,
		p.NegativeHabits,
		p.PositiveStates,
		p.NegativeStates,
		p.OnboardingComplete,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return oops.Code("PROFILE_INSERT_FAILED").
			With("operation", "insert profile").
			With("username", p.Username).
			Wrap(err)
	}
	return nil
}

// Get retrieves a profile by username.
func (r *ProfileRepository) Get(ctx context.Context, username string) (*profile.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, display_name,
		       positive_habits, negative_habits, positive_states, negative_states,
		       onboarding_complete, created_at, updated_at
		FROM profiles
		WHERE username = $1
	`, username)

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROFILE_NOT_FOUND").
			With("username", username).
			Wrap(profile.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").
			With("operation", "get profile by username").
			With("username", username).
			Wrap(err)
	}
	return p, nil
}

// Update replaces the mutable fields of an existing profile.
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE profiles SET
			display_name = $2,
			positive_habits = $3,
			negative_habits = $4,
			positive_states = $5,
			negative_states = $6,
			onboarding_complete = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID.String(),
		p.DisplayName,
		p.PositiveHabits,
		p.NegativeHabits,
		p.PositiveStates,
		p.NegativeStates,
		p.OnboardingComplete,
		p.UpdatedAt,
	)
	if err != nil {
		return oops.Code("PROFILE_UPDATE_FAILED").
			With("operation", "update profile").
			With("id", p.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROFILE_NOT_FOUND").
			With("id", p.ID.String()).
			Wrap(profile.ErrNotFound)
	}
	return nil
}

// AppendEntry appends an activity entry to the user's log. The profile is
// resolved by username in the same statement, so a missing profile surfaces
// as zero rows inserted.
func (r *ProfileRepository) AppendEntry(ctx context.Context, username string, e *profile.Entry) error {
	result, err := r.pool.Exec(ctx, `
		INSERT INTO activity_logs (id, profile_id, kind, payload, logged_at)
		SELECT $1, p.id, $3, $4, $5
		FROM profiles p
		WHERE p.username = $2
	`,
		e.ID.String(),
		username,
		string(e.Kind),
		[]byte(e.Payload),
		e.LoggedAt,
	)
	if err != nil {
		return oops.Code("ENTRY_APPEND_FAILED").
			With("operation", "insert activity log entry").
			With("username", username).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROFILE_NOT_FOUND").
			With("username", username).
			Wrap(profile.ErrNotFound)
	}
	return nil
}

// ListEntries returns the user's activity entries, oldest first.
func (r *ProfileRepository) ListEntries(ctx context.Context, username string) ([]*profile.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.kind, e.payload, e.logged_at
		FROM activity_logs e
		JOIN profiles p ON p.id = e.profile_id
		WHERE p.username = $1
		ORDER BY e.logged_at ASC, e.id ASC
	`, username)
	if err != nil {
		return nil, oops.Code("ENTRY_LIST_FAILED").
			With("operation", "list activity log entries").
			With("username", username).
			Wrap(err)
	}
	defer rows.Close()

	var entries []*profile.Entry
	for rows.Next() {
		var (
			idStr    string
			kind     string
			payload  []byte
			loggedAt time.Time
		)
		if err := rows.Scan(&idStr, &kind, &payload, &loggedAt); err != nil {
			return nil, oops.Code("ENTRY_SCAN_FAILED").
				With("operation", "scan activity log entry").
				Wrap(err)
		}

		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("ENTRY_INVALID_ID").
				With("operation", "parse entry id").
				With("id", idStr).
				Wrap(err)
		}

		entries = append(entries, &profile.Entry{
			ID:       id,
			Kind:     profile.EntryKind(kind),
			Payload:  json.RawMessage(payload),
			LoggedAt: loggedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("ENTRY_ROWS_ERROR").
			With("operation", "iterate activity log entries").
			Wrap(err)
	}

	return entries, nil
}

// scanProfile scans a single row into a Profile.
// Callers are responsible for handling pgx.ErrNoRows.
func scanProfile(row pgx.Row) (*profile.Profile, error) {
	var (
		idStr              string
		username           string
		displayName        string
		positiveHabits     []string
		negativeHabits     []string
		positiveStates     []string
		negativeStates     []string
		onboardingComplete bool
		createdAt          time.Time
		updatedAt          time.Time
	)

	err := row.Scan(
		&idStr,
		&username,
		&displayName,
		&positiveHabits,
		&negativeHabits,
		&positiveStates,
		&negativeStates,
		&onboardingComplete,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("PROFILE_SCAN_FAILED").
			With("operation", "scan profile").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PROFILE_INVALID_ID").
			With("operation", "parse profile id").
			With("id", idStr).
			Wrap(err)
	}

	return &profile.Profile{
		ID:                 id,
		Username:           username,
		DisplayName:        displayName,
		PositiveHabits:     positiveHabits,
		NegativeHabits:     negativeHabits,
		PositiveStates:     positiveStates,
		NegativeStates:     negativeStates,
		OnboardingComplete: onboardingComplete,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

// Compile-time interface check.
var _ profile.Repository = (*ProfileRepository)(nil)
