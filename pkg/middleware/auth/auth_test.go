package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altera-edu/school-platform/pkg/tokens"
)

func newTestIssuer() *tokens.Issuer {
	return &tokens.Issuer{Secret: []byte("test-jwt-secret"), AccessTTL: time.Minute}
}

func newGatedEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	handler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"email": c.Get(CtxEmail),
			"role":  c.Get(CtxRole),
		})
	}
	e.GET("/health/live", handler)
	e.GET("/api/v1/things", handler)
	e.POST("/api/v1/things", handler)
	return e
}

func doRequest(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_PublicPathPasses(t *testing.T) {
	t.Parallel()

	e := newGatedEcho(Config{Issuer: newTestIssuer(), PublicPaths: []string{"/health/**"}})
	rec := doRequest(e, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_PreflightPasses(t *testing.T) {
	t.Parallel()

	e := newGatedEcho(Config{Issuer: newTestIssuer()})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/things", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_MissingOrBadToken(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	expiredIss := &tokens.Issuer{Secret: iss.Secret, AccessTTL: -time.Minute}
	expired, _, err := expiredIss.IssueAccess("alice@example.com", tokens.RoleParent)
	require.NoError(t, err)

	e := newGatedEcho(Config{Issuer: iss})

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "garbage"},
		{name: "expired", token: expired},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(e, http.MethodGet, "/api/v1/things", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMiddleware_ValidTokenSetsPrincipal(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	token, _, err := iss.IssueAccess("alice@example.com", tokens.RoleTeacher)
	require.NoError(t, err)

	e := newGatedEcho(Config{Issuer: iss})
	rec := doRequest(e, http.MethodGet, "/api/v1/things", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
	assert.Contains(t, rec.Body.String(), tokens.RoleTeacher)
}

type staticRevocations struct {
	revoked bool
	err     error
}

func (s staticRevocations) IsRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func TestMiddleware_RevokedToken(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	token, _, err := iss.IssueAccess("alice@example.com", tokens.RoleParent)
	require.NoError(t, err)

	e := newGatedEcho(Config{Issuer: iss, Revocations: staticRevocations{revoked: true}})
	rec := doRequest(e, http.MethodGet, "/api/v1/things", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_RevocationLookupErrorIs401(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	token, _, err := iss.IssueAccess("alice@example.com", tokens.RoleParent)
	require.NoError(t, err)

	e := newGatedEcho(Config{Issuer: iss, Revocations: staticRevocations{err: errors.New("store down")}})
	rec := doRequest(e, http.MethodGet, "/api/v1/things", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_PrincipalLoader(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	token, _, err := iss.IssueAccess("alice@example.com", tokens.RoleParent)
	require.NoError(t, err)

	t.Run("disabled account rejected", func(t *testing.T) {
		t.Parallel()

		e := newGatedEcho(Config{
			Issuer: iss,
			LoadPrincipal: func(context.Context, string) (*Principal, error) {
				return nil, errors.New("account disabled")
			},
		})
		rec := doRequest(e, http.MethodGet, "/api/v1/things", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("store role wins over claim", func(t *testing.T) {
		t.Parallel()

		e := newGatedEcho(Config{
			Issuer: iss,
			LoadPrincipal: func(_ context.Context, email string) (*Principal, error) {
				return &Principal{Email: email, Role: tokens.RoleAdmin}, nil
			},
		})
		rec := doRequest(e, http.MethodGet, "/api/v1/things", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), tokens.RoleAdmin)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	e := echo.New()
	e.Use(Middleware(Config{Issuer: iss}))
	admin := e.Group("/admin", RequireRole(tokens.RoleAdmin))
	admin.GET("/things", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	adminToken, _, err := iss.IssueAccess("root@example.com", tokens.RoleAdmin)
	require.NoError(t, err)
	parentToken, _, err := iss.IssueAccess("alice@example.com", tokens.RoleParent)
	require.NoError(t, err)

	rec := doRequest(e, http.MethodGet, "/admin/things", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/admin/things", parentToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(e, http.MethodGet, "/admin/things", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMatchPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{pattern: "/api/v1/auth/login", path: "/api/v1/auth/login", want: true},
		{pattern: "/api/v1/auth/login", path: "/api/v1/auth/login/extra", want: false},
		{pattern: "/health/**", path: "/health/live", want: true},
		{pattern: "/health/**", path: "/health/ready/deep", want: true},
		{pattern: "/health/**", path: "/healthz", want: false},
		{pattern: "/api/v1/files/*", path: "/api/v1/files/a", want: true},
		{pattern: "/api/v1/files/*", path: "/api/v1/files/a/b", want: false},
		{pattern: "/api/v1/files/*", path: "/api/v1/files", want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.pattern+" vs "+tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matchPath(tt.pattern, tt.path))
		})
	}
}
