// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/tomtom215/reelgate/internal/models"
)

type mockTokenValidator struct {
	mock.Mock
}

func newMockTokenValidator(t *testing.T) *mockTokenValidator {
	m := &mockTokenValidator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockTokenValidator) Validate(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenValidator) UserOf(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockTokenValidator) IsInRole(ctx context.Context, token string, role *models.Role) (bool, error) {
	args := m.Called(ctx, token, role)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenValidator) Authenticate(ctx context.Context, user *models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

type mockRoleCatalog struct {
	mock.Mock
}

func newMockRoleCatalog(t *testing.T) *mockRoleCatalog {
	m := &mockRoleCatalog{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockRoleCatalog) ByType(ctx context.Context, roleType models.RoleType) (*models.Role, error) {
	args := m.Called(ctx, roleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

type mockMovieStore struct {
	mock.Mock
}

func newMockMovieStore(t *testing.T) *mockMovieStore {
	m := &mockMovieStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockMovieStore) ByID(ctx context.Context, id int64) (*models.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Movie), args.Error(1)
}

type mockClipStore struct {
	mock.Mock
}

func newMockClipStore(t *testing.T) *mockClipStore {
	m := &mockClipStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockClipStore) ByClipID(ctx context.Context, id int64) (*models.ClipData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClipData), args.Error(1)
}

type mockAdStore struct {
	mock.Mock
}

func newMockAdStore(t *testing.T) *mockAdStore {
	m := &mockAdStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockAdStore) AllAds(ctx context.Context) ([]models.Ad, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ad), args.Error(1)
}

type mockActivityStore struct {
	mock.Mock
}

func newMockActivityStore(t *testing.T) *mockActivityStore {
	m := &mockActivityStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockActivityStore) Add(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}
