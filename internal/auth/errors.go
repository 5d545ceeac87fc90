// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package auth

import "errors"

// Sentinel errors for expected outcomes. Callers match these with errors.Is;
// the oops wrappers added at call sites preserve the chain.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when registering a username that
	// already has a credential record.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrInvalidUsername is returned when a username fails shape validation.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidCredentials is returned on any failed credential login.
	// Unknown usernames and wrong passwords are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionInvalid is returned on any failed token login. Unknown and
	// expired tokens are indistinguishable.
	ErrSessionInvalid = errors.New("invalid or expired session")
)
