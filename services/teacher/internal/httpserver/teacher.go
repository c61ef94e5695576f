package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/altera-edu/school-platform/pkg/logging"
	"github.com/altera-edu/school-platform/services/teacher/internal/service"
	"github.com/altera-edu/school-platform/services/teacher/internal/transport"
	"github.com/altera-edu/school-platform/services/teacher/internal/util"
)

type TeacherHTTP struct {
	Svc *service.TeacherService
}

func (h *TeacherHTTP) GetTeacher(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "teacher.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_teacher_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	teacher, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "teacher not found")
		}
		l.Error("get_teacher_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load teacher")
	}

	return c.JSON(http.StatusOK, teacher)
}

func (h *TeacherHTTP) ListTeachers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "teacher.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		l.Error("list_teachers_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list teachers")
	}

	return c.JSON(http.StatusOK, paged(items, page, limit, offset, total))
}

func (h *TeacherHTTP) RegisterTeacher(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "teacher.register")

	var req transport.RegisterTeacherRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_teacher_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	teacher, err := h.Svc.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid teacher data")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "email is already in use")
		default:
			l.Error("register_teacher_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot register teacher")
		}
	}

	return c.JSON(http.StatusCreated, teacher)
}

func (h *TeacherHTTP) UpdateTeacher(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "teacher.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_teacher_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	var req transport.UpdateTeacherRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_teacher_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	teacher, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "teacher not found")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid teacher data")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "email is already in use")
		default:
			l.Error("update_teacher_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update teacher")
		}
	}

	return c.JSON(http.StatusOK, teacher)
}

func (h *TeacherHTTP) DeleteTeacher(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "teacher.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_teacher_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "teacher not found")
		}
		l.Error("delete_teacher_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete teacher")
	}

	return c.NoContent(http.StatusNoContent)
}

func paged(items any, page, limit, offset int, total int64) map[string]any {
	return map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	}
}
