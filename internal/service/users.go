package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iliyamo/positions-api/internal/model"
)

// ProfileStore is the subset of *repository.PrincipalRepo used for profile
// management.
type ProfileStore interface {
	FindByID(ctx context.Context, id uint64) (*model.Principal, error)
	List(ctx context.Context) ([]model.Principal, error)
	UpdateProfile(ctx context.Context, id uint64, ch model.ProfileChanges) (*model.Principal, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// Actor is the authenticated caller as read from the access token.
type Actor struct {
	ID   uint64
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// ProfileUpdate is a caller-supplied partial update.  Password is plaintext
// and is hashed before it reaches storage.
type ProfileUpdate struct {
	FullName *string
	Age      *int
	Password *string
	Role     *string
}

// UserService manages principal profiles.  Principals may change or remove
// only themselves; admins may act on anyone and are the only ones who may
// change a role.
type UserService struct {
	store  ProfileStore
	hasher Hasher
	log    zerolog.Logger
}

func NewUserService(store ProfileStore, hasher Hasher, logger zerolog.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, log: logger.With().Str("component", "users").Logger()}
}

func (s *UserService) List(ctx context.Context) ([]model.PrincipalView, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.PrincipalView, 0, len(list))
	for _, p := range list {
		out = append(out, p.View())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id uint64) (model.PrincipalView, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.PrincipalView{}, err
	}
	return p.View(), nil
}

// UpdateProfile applies upd to principal id on behalf of actor.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, id uint64, upd ProfileUpdate) (model.PrincipalView, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return model.PrincipalView{}, ErrForbidden
	}
	if upd.Role != nil && !actor.IsAdmin() {
		return model.PrincipalView{}, fmt.Errorf("%w: only admins may change roles", ErrForbidden)
	}
	if upd.Age != nil && *upd.Age < 0 {
		return model.PrincipalView{}, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}
	if upd.Password != nil && *upd.Password == "" {
		return model.PrincipalView{}, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}

	ch := model.ProfileChanges{FullName: upd.FullName, Age: upd.Age, Role: upd.Role}
	if upd.Password != nil {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return model.PrincipalView{}, err
		}
		ch.PasswordHash = &hash
	}
	p, err := s.store.UpdateProfile(ctx, id, ch)
	if err != nil {
		return model.PrincipalView{}, err
	}
	s.log.Info().Uint64("user_id", id).Uint64("actor_id", actor.ID).Msg("profile updated")
	return p.View(), nil
}

// Delete removes principal id on behalf of actor and reports whether a row
// was removed.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint64) (bool, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return false, ErrForbidden
	}
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info().Uint64("user_id", id).Uint64("actor_id", actor.ID).Msg("principal deleted")
	}
	return ok, nil
}
