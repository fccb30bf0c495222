package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is the storage liveness probe; *database.Executor implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports 200 "ok" when storage answers the probe and 503 otherwise.
// It is used by load balancers and container health checks.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.String(http.StatusServiceUnavailable, "unavailable")
		}
		return c.String(http.StatusOK, "ok")
	}
}
