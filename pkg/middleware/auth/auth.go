package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/altera-edu/school-platform/pkg/logging"
	"github.com/altera-edu/school-platform/pkg/tokens"
)

const (
	CtxEmail = "auth_email"
	CtxRole  = "auth_role"

	bearerPrefix = "Bearer "
)

// Principal is the authenticated account attached to request scope.
type Principal struct {
	Email string
	Role  string
}

// RevocationChecker reports whether a token string has been blacklisted.
// Deployments without a blacklist leave it nil.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// PrincipalLoader resolves the subject against the credential store so a
// deleted or disabled account stops authenticating before its token expires.
// Nil means the claims are trusted as-is (gateway mode).
type PrincipalLoader func(ctx context.Context, email string) (*Principal, error)

type Config struct {
	Issuer        *tokens.Issuer
	PublicPaths   []string
	Revocations   RevocationChecker
	LoadPrincipal PrincipalLoader
}

// Middleware gates every request: public paths and CORS preflight pass
// untouched, everything else needs a valid bearer token. All failures map to
// 401 with the same generic body; nothing in steps 2-5 ever surfaces as 500.
func Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method == http.MethodOptions || isPublic(cfg.PublicPaths, req.URL.Path) {
				return next(c)
			}

			ctx := req.Context()
			l := logging.FromContext(ctx).With("mw", "auth")

			raw, ok := BearerToken(c)
			if !ok {
				l.Warn("auth_rejected", "status", 401, "reason", "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			claims, err := cfg.Issuer.Validate(raw)
			if err != nil {
				l.Warn("auth_rejected", "status", 401, "reason", "token validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}

			if cfg.Revocations != nil {
				revoked, err := cfg.Revocations.IsRevoked(ctx, raw)
				if err != nil || revoked {
					l.Warn("auth_rejected", "status", 401, "reason", "token revoked", "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
				}
			}

			email, role := claims.Subject, claims.Role
			if cfg.LoadPrincipal != nil {
				p, err := cfg.LoadPrincipal(ctx, email)
				if err != nil || p == nil {
					l.Warn("auth_rejected", "status", 401, "reason", "principal lookup failed", "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
				}
				email, role = p.Email, p.Role
			}

			c.Set(CtxEmail, email)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}

// RequireRole guards a route group behind one of the given role strings.
// It must run after Middleware.
func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			if !slices.Contains(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient rights")
			}
			return next(c)
		}
	}
}

// BearerToken pulls the raw token out of the Authorization header.
func BearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	return raw, raw != ""
}

func isPublic(patterns []string, path string) bool {
	for _, p := range patterns {
		if matchPath(p, path) {
			return true
		}
	}
	return false
}

// matchPath supports exact matches plus trailing "/*" and "/**" prefix
// wildcards, which is all the public-path configuration uses.
func matchPath(pattern, path string) bool {
	switch {
	case strings.HasSuffix(pattern, "/**"):
		base := strings.TrimSuffix(pattern, "/**")
		return path == base || strings.HasPrefix(path, base+"/")
	case strings.HasSuffix(pattern, "/*"):
		base := strings.TrimSuffix(pattern, "/*")
		if !strings.HasPrefix(path, base) {
			return false
		}
		rest := strings.TrimPrefix(path, base)
		return rest == "" || (strings.HasPrefix(rest, "/") && !strings.Contains(rest[1:], "/"))
	default:
		return pattern == path
	}
}
