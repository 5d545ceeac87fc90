// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package mocks provides testify mocks for profile interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/equanimity/equanimity/internal/profile"
)

// MockRepository is a mock implementation of profile.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a new MockRepository bound to the test's lifecycle.
func NewMockRepository(t *testing.T) *MockRepository {
	t.Helper()
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Get(ctx context.Context, username string) (*profile.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *profile.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) AppendEntry(ctx context.Context, username string, e *profile.Entry) error {
	args := m.Called(ctx, username, e)
	return args.Error(0)
}

func (m *MockRepository) ListEntries(ctx context.Context, username string) ([]*profile.Entry, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*profile.Entry), args.Error(1)
}

var _ profile.Repository = (*MockRepository)(nil)
