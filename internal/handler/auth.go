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

// AuthAPI is implemented by *service.AuthService.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error)
	Logout(ctx context.Context, principalID uint64) error
	Register(ctx context.Context, in service.RegisterInput) (model.PrincipalView, error)
}

// ProfileReader resolves the current principal for /auth/me.
type ProfileReader interface {
	Get(ctx context.Context, id uint64) (model.PrincipalView, error)
}

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	auth     AuthAPI
	profiles ProfileReader
	log      zerolog.Logger
}

func NewAuthHandler(auth AuthAPI, profiles ProfileReader, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles, log: logger.With().Str("component", "http-auth").Logger()}
}

type registerReq struct {
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Age      *int   `json:"age"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates an ordinary principal.  The role is always "user";
// admins are provisioned out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" || req.Age == nil {
		return badRequest(c, "username, fullname, age and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.auth.Register(ctx, service.RegisterInput{
		Username: req.Username,
		FullName: strings.TrimSpace(req.FullName),
		Age:      *req.Age,
		Password: req.Password,
		Role:     model.RoleUser,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Login exchanges credentials for {accessToken, refreshToken}.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	pair, err := h.auth.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh rotates the session; the presented token stops working.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refreshToken is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	pair, err := h.auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the caller's refresh token.  The principal comes from the
// access token, never from the body.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.auth.Logout(ctx, uid); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.profiles.Get(ctx, uid)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}
