package handler // package handler contains the echo HTTP handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/positions-api/internal/middleware"
	"github.com/iliyamo/positions-api/internal/repository"
	"github.com/iliyamo/positions-api/internal/service"
)

// requestTimeout bounds the storage work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID extracts the user_id stored by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get(middleware.CtxUserID).(uint64); ok && id > 0 {
		return id, nil
	}
	return 0, errors.New("invalid user_id in context")
}

// actor reads the authenticated caller.  ok is false on unauthenticated
// routes or when JWTAuth did not run.
func actor(c echo.Context) (service.Actor, bool) {
	id, err := getUserID(c)
	if err != nil {
		return service.Actor{}, false
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Actor{ID: id, Role: role}, true
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	return n, err == nil && n > 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// respondError maps service and repository errors to status codes.  Only
// unexpected errors are logged; their text never reaches the client.
func respondError(c echo.Context, log zerolog.Logger, err error) error {
	var (
		status = http.StatusInternalServerError
		msg    = "internal error"
	)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, service.ErrRefreshFailed):
		status, msg = http.StatusUnauthorized, "could not refresh tokens"
	case errors.Is(err, service.ErrUsernameTaken):
		status, msg = http.StatusConflict, "username already exists"
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrNoOpUpdate):
		status, msg = http.StatusBadRequest, "no fields to update"
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "request timed out"
	default:
		log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
	}
	return c.JSON(status, echo.Map{"error": msg})
}
