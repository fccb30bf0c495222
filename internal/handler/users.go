package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/positions-api/internal/model"
	"github.com/iliyamo/positions-api/internal/service"
)

// UsersAPI is implemented by *service.UserService.
type UsersAPI interface {
	List(ctx context.Context) ([]model.PrincipalView, error)
	Get(ctx context.Context, id uint64) (model.PrincipalView, error)
	UpdateProfile(ctx context.Context, actor service.Actor, id uint64, upd service.ProfileUpdate) (model.PrincipalView, error)
	Delete(ctx context.Context, actor service.Actor, id uint64) (bool, error)
}

// UserHandler serves /users.  Creation goes through the same registration
// path as /auth/register.
type UserHandler struct {
	users UsersAPI
	auth  *AuthHandler
	log   zerolog.Logger
}

func NewUserHandler(users UsersAPI, auth *AuthHandler, logger zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, log: logger.With().Str("component", "http-users").Logger()}
}

type updateUserReq struct {
	FullName *string `json:"fullname"`
	Age      *int    `json:"age"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.users.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.users.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *UserHandler) Create(c echo.Context) error { return h.auth.Register(c) }

// Update applies a partial profile update.  Unknown fields, including
// username, are ignored.
func (h *UserHandler) Update(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.FullName != nil {
		trimmed := strings.TrimSpace(*req.FullName)
		req.FullName = &trimmed
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.users.UpdateProfile(ctx, a, id, service.ProfileUpdate{
		FullName: req.FullName,
		Age:      req.Age,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *UserHandler) Delete(c echo.Context) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	removed, err := h.users.Delete(ctx, a, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
