package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/altera-edu/school-platform/pkg/middleware/auth"
	"github.com/altera-edu/school-platform/pkg/tokens"
)

var PublicPaths = []string{"/health/**"}

type Deps struct {
	TeacherHandler *TeacherHTTP
	Issuer         *tokens.Issuer
}

// Reads are open to any authenticated role; registration and writes are
// admin-only.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(authmw.Middleware(authmw.Config{
		Issuer:      d.Issuer,
		PublicPaths: PublicPaths,
	}))

	api := e.Group("/api/v1/teachers")
	api.GET("", d.TeacherHandler.ListTeachers)
	api.GET("/:id", d.TeacherHandler.GetTeacher)

	admin := e.Group("/api/v1/admin/teachers", authmw.RequireRole(tokens.RoleAdmin))
	admin.POST("", d.TeacherHandler.RegisterTeacher)
	admin.PATCH("/:id", d.TeacherHandler.UpdateTeacher)
	admin.DELETE("/:id", d.TeacherHandler.DeleteTeacher)
}
