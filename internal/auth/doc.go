// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package auth implements the credential and session subsystem that backs
// every authenticated request.
//
// # Domain Types
//
// Credential holds a username with its salted password hash and a reference
// to the user's logging profile. Session is a capability-bearing token with
// a fixed seven-day expiry window. Both are created through their
// constructors (NewCredential, NewSession) so validation cannot be bypassed.
//
// # Service
//
// Service orchestrates registration, credential login, token login, and
// session issuance. Callers never touch the stores directly; the repository
// interfaces are satisfied by the postgres subpackage and mutation happens
// only through Service operations.
//
// Expired sessions are evicted lazily: every token lookup sweeps the session
// store first, so expiry is enforced at next access rather than wall-clock
// exact. The serve command additionally runs a periodic sweep for sessions
// that are never looked up again.
package auth
