package middleware // package middleware holds echo middleware for authentication, roles and rate limiting

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/positions-api/internal/utils"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"  // uint64
	CtxUsername = "username" // string
	CtxRole     = "role"     // string
)

// AccessVerifier is satisfied by *utils.TokenCodec.
type AccessVerifier interface {
	Verify(kind utils.TokenKind, token string) (utils.Payload, error)
}

// JWTAuth validates a Bearer access token and stores its payload in the
// echo context under CtxUserID, CtxUsername and CtxRole.  Refresh tokens are
// rejected because they verify against a different secret.
func JWTAuth(v AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			p, err := v.Verify(utils.AccessToken, strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, p.SubjectID)
			c.Set(CtxUsername, p.Username)
			c.Set(CtxRole, p.Role)
			return next(c)
		}
	}
}
