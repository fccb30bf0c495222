package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/positions-api/internal/model"
)

// PositionStore is implemented by *repository.PositionRepo.
type PositionStore interface {
	Create(ctx context.Context, code, name string, ownerID uint64) (*model.Position, error)
	Get(ctx context.Context, id uint64, owner *uint64) (*model.Position, error)
	List(ctx context.Context, owner *uint64) ([]model.Position, error)
	Update(ctx context.Context, id uint64, owner *uint64, ch model.PositionChanges) (*model.Position, error)
	Delete(ctx context.Context, id uint64, owner *uint64) (bool, error)
}

// PositionService scopes position CRUD to the caller: admins see every row,
// everyone else only the rows they own.
type PositionService struct{ store PositionStore }

func NewPositionService(store PositionStore) *PositionService { return &PositionService{store: store} }

func scope(a Actor) *uint64 {
	if a.IsAdmin() {
		return nil
	}
	id := a.ID
	return &id
}

// Create stores a position owned by the actor.
func (s *PositionService) Create(ctx context.Context, actor Actor, code, name string) (*model.Position, error) {
	code, name = strings.TrimSpace(code), strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: position_code and position_name are required", ErrInvalidInput)
	}
	return s.store.Create(ctx, code, name, actor.ID)
}

func (s *PositionService) Get(ctx context.Context, actor Actor, id uint64) (*model.Position, error) {
	return s.store.Get(ctx, id, scope(actor))
}

// List returns every visible position.  Mine forces owner scoping even for
// admins.
func (s *PositionService) List(ctx context.Context, actor Actor, mine bool) ([]model.Position, error) {
	if mine {
		id := actor.ID
		return s.store.List(ctx, &id)
	}
	return s.store.List(ctx, scope(actor))
}

func (s *PositionService) Update(ctx context.Context, actor Actor, id uint64, ch model.PositionChanges) (*model.Position, error) {
	return s.store.Update(ctx, id, scope(actor), ch)
}

func (s *PositionService) Delete(ctx context.Context, actor Actor, id uint64) (bool, error) {
	return s.store.Delete(ctx, id, scope(actor))
}
