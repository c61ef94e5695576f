package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/altera-edu/school-platform/pkg/logging"
	authmw "github.com/altera-edu/school-platform/pkg/middleware/auth"
	"github.com/altera-edu/school-platform/services/auth/internal/service"
	"github.com/altera-edu/school-platform/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc   *service.AuthService
	Reset *service.ResetService
}

func authResponse(res *service.LoginResult) transport.AuthResponse {
	return transport.AuthResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Role:         res.Role,
		Email:        res.Email,
		ExpiresInMs:  time.Until(res.AccessExp).Milliseconds(),
	}
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AuthHTTP) RegisterParent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register_parent")

	var req transport.RegisterParentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.RegisterParent(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid registration data")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "email is already in use")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
		}
	}

	return c.JSON(http.StatusCreated, authResponse(res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed")
	}

	return c.JSON(http.StatusOK, authResponse(res))
}

// Logout is registered on the protected group but does its own token
// extraction: a request without a bearer token is still a no-op success.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	token, _ := authmw.BearerToken(c)
	if err := h.Svc.Logout(ctx, token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "logged out"})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_forgot_password")

	var req transport.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		l.Warn("forgot_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Reset.RequestReset(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no account with this email")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not process request")
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "password reset link has been sent to your email"})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Reset.Redeem(ctx, req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not reset password")
		}
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "password has been reset successfully"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	email, _ := c.Get(authmw.CtxEmail).(string)
	role, _ := c.Get(authmw.CtxRole).(string)
	return c.JSON(http.StatusOK, echo.Map{"email": email, "role": role})
}
