// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters. The cost factor is a fixed
// conservative default and deliberately not configurable.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// PasswordHasher generates per-credential salts and computes slow, adaptive
// password hashes. Salt and hash are kept as separate values because the
// credential record stores them in separate columns.
type PasswordHasher interface {
	// GenerateSalt returns a fresh cryptographically random salt.
	GenerateSalt() (string, error)

	// Hash computes the hash of password under salt. Deterministic for a
	// given (password, salt) pair.
	Hash(password, salt string) (string, error)

	// Verify recomputes the hash and compares it against expectedHash in
	// constant time. A mismatch is (false, nil), not an error.
	Verify(password, salt, expectedHash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id with fixed
// parameters. Salts and hashes are base64 raw-std encoded.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// GenerateSalt returns a fresh random salt.
func (h *Argon2idHasher) GenerateSalt() (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	return base64.RawStdEncoding.EncodeToString(salt), nil
}

// Hash computes the argon2id hash of password under salt.
func (h *Argon2idHasher) Hash(password, salt string) (string, error) {
	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return "", oops.Code("AUTH_INVALID_SALT").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), rawSalt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return base64.RawStdEncoding.EncodeToString(key), nil
}

// Verify recomputes the hash and compares it against expectedHash in
// constant time.
func (h *Argon2idHasher) Verify(password, salt, expectedHash string) (bool, error) {
	expected, err := base64.RawStdEncoding.DecodeString(expectedHash)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return false, oops.Code("AUTH_INVALID_SALT").Wrap(err)
	}

	computed := argon2.IDKey([]byte(password), rawSalt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)
