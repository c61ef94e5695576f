package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/altera-edu/school-platform/pkg/middleware/auth"
	"github.com/altera-edu/school-platform/pkg/tokens"
)

var PublicPaths = []string{"/health/**"}

type Deps struct {
	StudentHandler *StudentHTTP
	Issuer         *tokens.Issuer
}

// Reads are open to any authenticated role; writes are restricted to admin
// and teaching staff.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(authmw.Middleware(authmw.Config{
		Issuer:      d.Issuer,
		PublicPaths: PublicPaths,
	}))

	api := e.Group("/api/v1/students")
	api.GET("", d.StudentHandler.ListStudents)
	api.GET("/search", d.StudentHandler.SearchStudents)
	api.GET("/:id", d.StudentHandler.GetStudent)

	staff := api.Group("", authmw.RequireRole(tokens.RoleAdmin, tokens.RoleTeacher))
	staff.POST("", d.StudentHandler.CreateStudent)
	staff.PATCH("/:id", d.StudentHandler.UpdateStudent)
	staff.DELETE("/:id", d.StudentHandler.DeleteStudent)
}
