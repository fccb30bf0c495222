package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/positions-api/internal/model"
	"github.com/iliyamo/positions-api/internal/service"
)

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (service.TokenPair, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(service.TokenPair), args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, token string) (service.TokenPair, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(service.TokenPair), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAuth) Register(ctx context.Context, in service.RegisterInput) (model.PrincipalView, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.PrincipalView), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) List(ctx context.Context) ([]model.PrincipalView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PrincipalView), args.Error(1)
}

func (m *mockUsers) Get(ctx context.Context, id uint64) (model.PrincipalView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.PrincipalView), args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, a service.Actor, id uint64, upd service.ProfileUpdate) (model.PrincipalView, error) {
	args := m.Called(ctx, a, id, upd)
	return args.Get(0).(model.PrincipalView), args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, a service.Actor, id uint64) (bool, error) {
	args := m.Called(ctx, a, id)
	return args.Bool(0), args.Error(1)
}

type mockPositions struct {
	mock.Mock
}

func (m *mockPositions) Create(ctx context.Context, a service.Actor, code, name string) (*model.Position, error) {
	args := m.Called(ctx, a, code, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Position), args.Error(1)
}

func (m *mockPositions) Get(ctx context.Context, a service.Actor, id uint64) (*model.Position, error) {
	args := m.Called(ctx, a, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Position), args.Error(1)
}

func (m *mockPositions) List(ctx context.Context, a service.Actor, mine bool) ([]model.Position, error) {
	args := m.Called(ctx, a, mine)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Position), args.Error(1)
}

func (m *mockPositions) Update(ctx context.Context, a service.Actor, id uint64, ch model.PositionChanges) (*model.Position, error) {
	args := m.Called(ctx, a, id, ch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Position), args.Error(1)
}

func (m *mockPositions) Delete(ctx context.Context, a service.Actor, id uint64) (bool, error) {
	args := m.Called(ctx, a, id)
	return args.Bool(0), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
