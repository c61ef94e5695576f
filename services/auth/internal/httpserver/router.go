package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/altera-edu/school-platform/pkg/middleware/auth"
	"github.com/altera-edu/school-platform/pkg/tokens"
	"github.com/altera-edu/school-platform/services/auth/internal/repo"
)

// PublicPaths is the no-auth allow-list for this service: login variants,
// registration, the reset flow and health probes. Logout is listed because it
// must stay a no-op success for absent and already-revoked tokens; the
// handler extracts the bearer token itself.
var PublicPaths = []string{
	"/health/**",
	"/api/v1/auth/login",
	"/api/v1/auth/register/parent",
	"/api/v1/auth/refresh",
	"/api/v1/auth/forgot-password",
	"/api/v1/auth/reset-password",
	"/api/v1/auth/logout",
}

type Deps struct {
	AuthHandler *AuthHTTP
	Issuer      *tokens.Issuer
	Repo        *repo.GormRepo
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	gate := authmw.Middleware(authmw.Config{
		Issuer:      d.Issuer,
		PublicPaths: PublicPaths,
		Revocations: d.Repo,
		LoadPrincipal: func(ctx context.Context, email string) (*authmw.Principal, error) {
			u, err := d.Repo.FindUserByEmail(ctx, email)
			if err != nil || !u.Enabled {
				return nil, err
			}
			return &authmw.Principal{Email: u.Email, Role: u.Role}, nil
		},
	})
	e.Use(gate)

	api := e.Group("/api/v1/auth")
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/register/parent", d.AuthHandler.RegisterParent)
	api.POST("/refresh", d.AuthHandler.Refresh)
	api.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	api.POST("/reset-password", d.AuthHandler.ResetPassword)

	api.POST("/logout", d.AuthHandler.Logout)
	api.GET("/me", d.AuthHandler.Me)
}
