// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package auth

import (
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// TokenGenerator produces unguessable session identifiers.
type TokenGenerator interface {
	// Generate returns a fresh random token.
	Generate() (string, error)
}

// UUIDTokenGenerator implements TokenGenerator with cryptographically random
// v4 UUIDs. 128 bits of randomness; collisions are treated as impossible and
// no collision handling is attempted.
type UUIDTokenGenerator struct{}

// NewUUIDTokenGenerator creates a new UUIDTokenGenerator.
func NewUUIDTokenGenerator() *UUIDTokenGenerator {
	return &UUIDTokenGenerator{}
}

// Generate returns a random v4 UUID string.
func (g *UUIDTokenGenerator) Generate() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_GENERATE_FAILED").
			With("operation", "uuid.NewRandom").
			Wrap(err)
	}
	return u.String(), nil
}

// Compile-time interface check.
var _ TokenGenerator = (*UUIDTokenGenerator)(nil)
