// Package service holds the session lifecycle and profile management logic
// between the HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/positions-api/internal/database"
	"github.com/iliyamo/positions-api/internal/model"
	"github.com/iliyamo/positions-api/internal/queue"
	"github.com/iliyamo/positions-api/internal/repository"
	"github.com/iliyamo/positions-api/internal/utils"
)

// CredentialStore is the subset of *repository.PrincipalRepo the session
// lifecycle needs.
type CredentialStore interface {
	Create(ctx context.Context, in repository.NewPrincipal) (uint64, error)
	FindByUsername(ctx context.Context, username string) (*model.Principal, error)
	FindByRefreshToken(ctx context.Context, token string) (*model.Principal, error)
	SetRefreshToken(ctx context.Context, id uint64, token *string) error
}

// Hasher is a one-way password hash with a constant-time verify.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// EventPublisher receives auth events.  Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput carries the fields accepted at registration.  Role may be
// empty, in which case model.RoleUser is stored.
type RegisterInput struct {
	Username string
	FullName string
	Age      int
	Password string
	Role     string
}

const publishTimeout = 3 * time.Second

// AuthService is the session lifecycle: login, refresh with rotation,
// logout and registration.  It holds no per-principal state; the single
// refresh-token slot in storage is the source of truth.
type AuthService struct {
	store     CredentialStore
	hasher    Hasher
	codec     *utils.TokenCodec
	events    EventPublisher
	log       zerolog.Logger
	dummyHash string
}

// NewAuthService wires the lifecycle.  events may be nil.
func NewAuthService(store CredentialStore, hasher Hasher, codec *utils.TokenCodec, events EventPublisher, logger zerolog.Logger) (*AuthService, error) {
	// Verified against for unknown usernames so both login failures cost one
	// hash verification.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		codec:     codec,
		events:    events,
		log:       logger.With().Str("component", "auth").Logger(),
		dummyHash: dummy,
	}, nil
}

// Login verifies the password and, on success, stores the new refresh token
// in the principal's slot, superseding any earlier one.
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	p, err := s.store.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.hasher.Verify(s.dummyHash, password)
		s.emit(queue.AuthEvent{Type: queue.EventLoginFailed, Username: username, Reason: "unknown_user"})
		return TokenPair{}, ErrInvalidCredentials
	case err != nil:
		return TokenPair{}, err
	}
	if !s.hasher.Verify(p.PasswordHash, password) {
		s.emit(queue.AuthEvent{Type: queue.EventLoginFailed, UserID: p.ID, Username: p.Username, Reason: "bad_password"})
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, p)
	if err != nil {
		return TokenPair{}, err
	}
	s.log.Info().Uint64("user_id", p.ID).Msg("login")
	s.emit(queue.AuthEvent{Type: queue.EventLogin, UserID: p.ID, Username: p.Username})
	return pair, nil
}

// Refresh rotates a session.  The token must verify and must also be the
// value currently held in the slot; a superseded token fails with
// ErrRefreshFailed wrapping ErrTokenNotCurrent.  Storage failures are
// returned as they are.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.Verify(utils.RefreshToken, refreshToken)
	if err != nil {
		s.refreshFailed(0, err)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	p, err := s.store.FindByRefreshToken(ctx, refreshToken)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.refreshFailed(claims.SubjectID, ErrTokenNotCurrent)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrTokenNotCurrent)
	case err != nil:
		return TokenPair{}, err
	case p.ID != claims.SubjectID:
		s.refreshFailed(claims.SubjectID, ErrTokenNotCurrent)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrRefreshFailed, ErrTokenNotCurrent)
	}

	pair, err := s.issue(ctx, p)
	if err != nil {
		return TokenPair{}, err
	}
	s.log.Debug().Uint64("user_id", p.ID).Msg("session rotated")
	s.emit(queue.AuthEvent{Type: queue.EventRefresh, UserID: p.ID, Username: p.Username})
	return pair, nil
}

// Logout clears the principal's refresh-token slot.  It is idempotent.
func (s *AuthService) Logout(ctx context.Context, principalID uint64) error {
	if err := s.store.SetRefreshToken(ctx, principalID, nil); err != nil {
		return err
	}
	s.log.Info().Uint64("user_id", principalID).Msg("logout")
	s.emit(queue.AuthEvent{Type: queue.EventLogout, UserID: principalID})
	return nil
}

// Register creates a principal with a hashed password.  A duplicate username
// yields ErrUsernameTaken with the driver error still in the chain.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.PrincipalView, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return model.PrincipalView{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if in.Age < 0 {
		return model.PrincipalView{}, fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.PrincipalView{}, err
	}
	id, err := s.store.Create(ctx, repository.NewPrincipal{
		Username:     in.Username,
		FullName:     in.FullName,
		Age:          in.Age,
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return model.PrincipalView{}, fmt.Errorf("%w: %w", ErrUsernameTaken, err)
		}
		return model.PrincipalView{}, err
	}

	s.emit(queue.AuthEvent{Type: queue.EventRegistered, UserID: id, Username: in.Username})
	return model.PrincipalView{ID: id, Username: in.Username, FullName: in.FullName, Age: in.Age, Role: in.Role}, nil
}

// issue mints a pair and overwrites the slot.  Nothing is returned unless
// the slot write succeeded.
func (s *AuthService) issue(ctx context.Context, p *model.Principal) (TokenPair, error) {
	payload := utils.Payload{SubjectID: p.ID, Username: p.Username, Role: p.Role}
	access, err := s.codec.Sign(utils.AccessToken, payload)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.Sign(utils.RefreshToken, payload)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.SetRefreshToken(ctx, p.ID, &refresh); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) refreshFailed(userID uint64, cause error) {
	s.log.Debug().Err(cause).Uint64("user_id", userID).Msg("refresh rejected")
	s.emit(queue.AuthEvent{Type: queue.EventRefreshFailed, UserID: userID, Reason: reason(cause)})
}

func reason(err error) string {
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		return "expired"
	case errors.Is(err, utils.ErrTokenSignature):
		return "bad_signature"
	case errors.Is(err, utils.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenNotCurrent):
		return "not_current"
	}
	return "unknown"
}

func (s *AuthService) emit(ev queue.AuthEvent) {
	if s.events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Debug().Err(err).Str("event", ev.Type).Msg("auth event dropped")
		}
	}()
}
