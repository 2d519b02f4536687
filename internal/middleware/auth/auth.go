package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mkudrin/photostore/internal/service"
	"github.com/mkudrin/photostore/internal/token"
)

const principalKey = "principal"

// bearerPrefix is matched case-sensitively with a single space. Anything else
// counts as "no token provided", not a parse error.
const bearerPrefix = "Bearer "

type Middleware struct {
	Secret []byte
}

func New(secret []byte) *Middleware {
	return &Middleware{Secret: secret}
}

// extractBearer returns the token string, or "" when the header is absent or
// not a bearer credential.
func extractBearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return h[len(bearerPrefix):]
}

// RequireAuth rejects the request with 401 unless a valid bearer token is
// presented. The verification failure kind is never echoed to the caller.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := extractBearer(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		claims, err := token.Verify(raw, m.Secret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		c.Set(principalKey, claims)
		return next(c)
	}
}

// RequireAdmin is RequireAuth plus a role gate. An authenticated non-admin
// gets 403, which is distinct from the 401 an anonymous caller gets.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		p := Principal(c)
		if p == nil || p.Role != service.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	})
}

// OptionalAuth attaches a principal when a valid token is presented and
// silently continues without one otherwise. Token errors never propagate.
func (m *Middleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := extractBearer(c); raw != "" {
			if claims, err := token.Verify(raw, m.Secret); err == nil {
				c.Set(principalKey, claims)
			}
		}
		return next(c)
	}
}

// Principal returns the verified claims for this request, or nil.
func Principal(c echo.Context) *token.Claims {
	if v, ok := c.Get(principalKey).(*token.Claims); ok {
		return v
	}
	return nil
}
