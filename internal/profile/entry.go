// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package profile

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// EntryKind distinguishes the three kinds of activity log entries.
type EntryKind string

// Supported entry kinds.
const (
	EntryKindState EntryKind = "state"
	EntryKindHabit EntryKind = "habit"
	EntryKindMeal  EntryKind = "meal"
)

// ParseEntryKind validates a client-supplied entry kind.
func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case EntryKindState, EntryKindHabit, EntryKindMeal:
		return EntryKind(s), nil
	default:
		return "", oops.Code("PROFILE_UNKNOWN_ENTRY_KIND").
			With("kind", s).
			Wrapf(ErrUnknownEntryKind, "unknown entry kind %q", s)
	}
}

// Entry is one activity log record. The payload is kept opaque here; the
// insights package interprets it per kind.
type Entry struct {
	ID       ulid.ULID
	Kind     EntryKind
	Payload  json.RawMessage
	LoggedAt time.Time
}

// NewEntry creates a validated Entry stamped with the given time.
func NewEntry(kind EntryKind, payload json.RawMessage, loggedAt time.Time) (*Entry, error) {
	if _, err := ParseEntryKind(string(kind)); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	if loggedAt.IsZero() {
		return nil, oops.Code("PROFILE_INVALID_ENTRY").Errorf("logged-at time cannot be zero")
	}

	return &Entry{
		ID:       ulid.Make(),
		Kind:     kind,
		Payload:  payload,
		LoggedAt: loggedAt,
	}, nil
}
