package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkudrin/photostore/internal/service"
	"github.com/mkudrin/photostore/internal/token"
)

var testSecret = []byte("middleware-test-secret")

func issueToken(t *testing.T, role string, ttl int64) string {
	t.Helper()
	tok, err := token.Issue(token.Claims{
		UserID: "8e1e63c4-26a9-4a79-9f0a-52cf4f26f88f",
		Email:  "alice@example.com",
		Role:   role,
	}, testSecret, ttl)
	require.NoError(t, err)
	return tok
}

func newCtx(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	m := New(testSecret)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"lowercase bearer", "bearer " + issueToken(t, service.RoleCustomer, 900), http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + func() string {
			tok, _ := token.Issue(token.Claims{UserID: "x"}, []byte("other"), 900)
			return tok
		}(), http.StatusUnauthorized},
		{"expired", "Bearer " + issueToken(t, service.RoleCustomer, -1), http.StatusUnauthorized},
		{"valid", "Bearer " + issueToken(t, service.RoleCustomer, 900), http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newCtx(tc.header)
			err := m.RequireAuth(okHandler)(c)
			if tc.wantCode == http.StatusOK {
				require.NoError(t, err)
				require.NotNil(t, Principal(c))
				assert.Equal(t, "alice@example.com", Principal(c).Email)
				return
			}
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError, got %v", err)
			assert.Equal(t, tc.wantCode, he.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()
	m := New(testSecret)

	c, _ := newCtx("Bearer " + issueToken(t, service.RoleAdmin, 900))
	require.NoError(t, m.RequireAdmin(okHandler)(c))

	// authenticated but wrong role: 403, not 401
	c, _ = newCtx("Bearer " + issueToken(t, service.RoleCustomer, 900))
	err := m.RequireAdmin(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)

	// anonymous: 401
	c, _ = newCtx("")
	err = m.RequireAdmin(okHandler)(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestOptionalAuth(t *testing.T) {
	t.Parallel()
	m := New(testSecret)

	// valid token attaches a principal
	c, _ := newCtx("Bearer " + issueToken(t, service.RoleCustomer, 900))
	require.NoError(t, m.OptionalAuth(okHandler)(c))
	require.NotNil(t, Principal(c))

	// no token: handler still runs, no principal
	c, _ = newCtx("")
	require.NoError(t, m.OptionalAuth(okHandler)(c))
	assert.Nil(t, Principal(c))

	// invalid token is swallowed, not propagated
	c, _ = newCtx("Bearer " + issueToken(t, service.RoleCustomer, -1))
	require.NoError(t, m.OptionalAuth(okHandler)(c))
	assert.Nil(t, Principal(c))
}
