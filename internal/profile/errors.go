// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package profile

import "errors"

// Sentinel errors for expected outcomes.
var (
	// ErrNotFound is returned when no profile exists for a username.
	ErrNotFound = errors.New("profile not found")

	// ErrTooFewPositiveStates is returned when an onboarding submission
	// selects fewer positive states than the minimum.
	ErrTooFewPositiveStates = errors.New("too few positive states selected")

	// ErrUnknownEntryKind is returned for activity entries of an
	// unrecognized kind.
	ErrUnknownEntryKind = errors.New("unknown entry kind")
)
