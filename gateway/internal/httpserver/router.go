package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/altera-edu/school-platform/gateway/internal/middleware"
	authmw "github.com/altera-edu/school-platform/pkg/middleware/auth"
	"github.com/altera-edu/school-platform/pkg/tokens"
)

type Deps struct {
	AuthURL    string
	StudentURL string
	TeacherURL string

	JWTSecret    []byte
	AllowOrigins []string
}

// The auth service handles its own public/protected split, so its routes are
// forwarded untouched. Student and teacher traffic is gated here with a
// claims-only token check; role enforcement stays with the owning service.
func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common(d.AllowOrigins) {
		e.Use(m)
	}

	authProxy, err := newProxy(d.AuthURL)
	if err != nil {
		return err
	}
	studentProxy, err := newProxy(d.StudentURL)
	if err != nil {
		return err
	}
	teacherProxy, err := newProxy(d.TeacherURL)
	if err != nil {
		return err
	}

	e.Any("/api/v1/auth", authProxy)
	e.Any("/api/v1/auth/*", authProxy)

	issuer := &tokens.Issuer{Secret: d.JWTSecret}
	gate := authmw.Middleware(authmw.Config{Issuer: issuer})

	api := e.Group("/api/v1", gate)
	api.Any("/students", studentProxy)
	api.Any("/students/*", studentProxy)
	api.Any("/teachers", teacherProxy)
	api.Any("/teachers/*", teacherProxy)
	api.Any("/admin/teachers", teacherProxy)
	api.Any("/admin/teachers/*", teacherProxy)

	return nil
}
