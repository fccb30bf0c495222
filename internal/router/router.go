package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/positions-api/internal/handler"
	"github.com/iliyamo/positions-api/internal/middleware"
	"github.com/iliyamo/positions-api/internal/model"
)

// Deps bundles what RegisterRoutes wires together.
type Deps struct {
	Health    handler.Pinger
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Positions *handler.PositionHandler
	Verifier  middleware.AccessVerifier
	RateLimit echo.MiddlewareFunc // applied to credential endpoints; may be nil
}

// RegisterRoutes mounts every route on e.
//
//	GET  /healthz
//	POST /auth/register|login|refresh   rate limited, anonymous
//	POST /auth/logout, GET /auth/me     access token
//	/users                              list is admin only; create is open
//	/positions                          access token, owner scoped
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Health))

	authn := middleware.JWTAuth(d.Verifier)
	limited := []echo.MiddlewareFunc{}
	if d.RateLimit != nil {
		limited = append(limited, d.RateLimit)
	}

	a := e.Group("/auth")
	a.POST("/register", d.Auth.Register, limited...)
	a.POST("/login", d.Auth.Login, limited...)
	a.POST("/refresh", d.Auth.Refresh, limited...)
	a.POST("/logout", d.Auth.Logout, authn)
	a.GET("/me", d.Auth.Me, authn)

	u := e.Group("/users")
	u.POST("", d.Users.Create, limited...)
	u.GET("", d.Users.List, authn, middleware.RequireRole(model.RoleAdmin))
	u.GET("/:id", d.Users.Get, authn)
	u.PUT("/:id", d.Users.Update, authn)
	u.DELETE("/:id", d.Users.Delete, authn)

	p := e.Group("/positions", authn)
	p.GET("", d.Positions.List)
	p.GET("/me", d.Positions.Mine)
	p.GET("/:id", d.Positions.Get)
	p.POST("", d.Positions.Create)
	p.PUT("", d.Positions.UpdateByBody)
	p.PUT("/:id", d.Positions.Update)
	p.DELETE("/:id", d.Positions.Delete)
}
