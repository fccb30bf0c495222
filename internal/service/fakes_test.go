package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/positions-api/internal/model"
	"github.com/iliyamo/positions-api/internal/queue"
	"github.com/iliyamo/positions-api/internal/repository"
	"github.com/iliyamo/positions-api/internal/utils"
)

// =============================================================================
// In-memory credential store with the same single-slot semantics as
// repository.PrincipalRepo.
// =============================================================================

type memStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Principal
	slots  map[uint64]string // id -> refresh digest
}

func newMemStore() *memStore {
	return &memStore{rows: map[uint64]*model.Principal{}, slots: map[uint64]string{}}
}

func (m *memStore) Create(_ context.Context, in repository.NewPrincipal) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Username == in.Username {
			return 0, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
	}
	m.nextID++
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	m.rows[m.nextID] = &model.Principal{
		ID: m.nextID, Username: in.Username, FullName: in.FullName, Age: in.Age,
		PasswordHash: in.PasswordHash, Role: role, CreatedAt: time.Now().UTC(),
	}
	return m.nextID, nil
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindByID(_ context.Context, id uint64) (*model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) FindByRefreshToken(_ context.Context, token string) (*model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	digest := utils.HashRefreshRaw(token)
	for id, d := range m.slots {
		if d == digest {
			cp := *m.rows[id]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) SetRefreshToken(_ context.Context, id uint64, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == nil {
		delete(m.slots, id)
		return nil
	}
	m.slots[id] = utils.HashRefreshRaw(*token)
	return nil
}

func (m *memStore) slot(id uint64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.slots[id]
	return d, ok
}

func (m *memStore) List(context.Context) ([]model.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Principal, 0, len(m.rows))
	for id := uint64(1); id <= m.nextID; id++ {
		if p, ok := m.rows[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id uint64, ch model.ProfileChanges) (*model.Principal, error) {
	if ch.Empty() {
		return nil, repository.ErrNoOpUpdate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ch.FullName != nil {
		p.FullName = *ch.FullName
	}
	if ch.Age != nil {
		p.Age = *ch.Age
	}
	if ch.PasswordHash != nil {
		p.PasswordHash = *ch.PasswordHash
	}
	if ch.Role != nil {
		p.Role = *ch.Role
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	delete(m.slots, id)
	return true, nil
}

// =============================================================================
// Mocks
// =============================================================================

type mockCredentialStore struct {
	mock.Mock
}

func (m *mockCredentialStore) Create(ctx context.Context, in repository.NewPrincipal) (uint64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockCredentialStore) FindByUsername(ctx context.Context, username string) (*model.Principal, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Principal), args.Error(1)
}

func (m *mockCredentialStore) FindByRefreshToken(ctx context.Context, token string) (*model.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Principal), args.Error(1)
}

func (m *mockCredentialStore) SetRefreshToken(ctx context.Context, id uint64, token *string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

// chanPublisher records published events.
type chanPublisher struct{ ch chan queue.AuthEvent }

func newChanPublisher() *chanPublisher { return &chanPublisher{ch: make(chan queue.AuthEvent, 16)} }

func (p *chanPublisher) Publish(_ context.Context, ev queue.AuthEvent) error {
	p.ch <- ev
	return nil
}
