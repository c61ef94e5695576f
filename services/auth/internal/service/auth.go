package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/altera-edu/school-platform/pkg/events"
	pkghash "github.com/altera-edu/school-platform/pkg/hash"
	"github.com/altera-edu/school-platform/pkg/logging"
	"github.com/altera-edu/school-platform/pkg/tokens"
	"github.com/altera-edu/school-platform/services/auth/internal/models"
	"github.com/altera-edu/school-platform/services/auth/internal/repo"
	"github.com/altera-edu/school-platform/services/auth/internal/transport"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("email already in use")
	ErrNotFound           = errors.New("not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const minPasswordLen = 8

type AuthService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	Events events.Publisher
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Email        string
	Role         string
}

func (s *AuthService) issuePair(email, role string) (*LoginResult, error) {
	access, accessExp, err := s.Issuer.IssueAccess(email, role)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.Issuer.IssueRefresh(email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		Email:        email,
		Role:         role,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	if email == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !user.Enabled || !pkghash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad password or disabled account")
		return nil, ErrInvalidCredentials
	}

	res, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	l.Info("login_successful", "role", user.Role)
	return res, nil
}

func (s *AuthService) RegisterParent(ctx context.Context, req transport.RegisterParentRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register_parent", "email", req.Email)

	if err := validateRegistration(req); err != nil {
		l.Warn("register_failed", "status", 400, "error", err)
		return nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, req.Email)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}
	if taken {
		l.Warn("register_failed", "status", 409, "reason", "email already in use")
		return nil, ErrConflict
	}

	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash password", "error", err)
		return nil, err
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         tokens.RoleParent,
		Enabled:      true,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.TypeUserRegistered,
		Subject: user.Email,
		Data:    map[string]any{"role": user.Role},
	})

	res, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}
	l.Info("register_successful")
	return res, nil
}

// Refresh validates the refresh token and re-checks the account against the
// credential store before issuing a new pair, so a deleted or disabled user
// cannot keep a session alive through refreshes.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Issuer.Validate(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token")
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.FindUserByEmail(ctx, claims.Subject)
	if err != nil || !user.Enabled {
		l.Warn("refresh_failed", "status", 401, "reason", "account missing or disabled")
		return nil, ErrInvalidCredentials
	}

	res, err := s.issuePair(user.Email, user.Role)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	return res, nil
}

// Logout blacklists the presented bearer token until its natural expiry.
// A missing token and an already-blacklisted token are both no-op successes.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if token == "" {
		return nil
	}

	exp, ok := s.Issuer.Expiry(token)
	if !ok {
		exp = time.Now().UTC().Add(time.Hour)
	}
	if err := s.Repo.Blacklist(ctx, token, exp); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	s.publish(ctx, events.Event{Type: events.TypeTokenRevoked, Subject: "logout"})
	l.Info("logout_successful")
	return nil
}

// PurgeExpired drops reset tokens and blacklist rows past their expiry.
// Housekeeping only; correctness never depends on it running.
func (s *AuthService) PurgeExpired(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "auth.purge")
	now := time.Now().UTC()

	if n, err := s.Repo.PurgeExpiredResetTokens(ctx, now); err != nil {
		l.Error("purge_reset_tokens_failed", "error", err)
	} else if n > 0 {
		l.Info("purged_reset_tokens", "count", n)
	}
	if n, err := s.Repo.PurgeExpiredBlacklist(ctx, now); err != nil {
		l.Error("purge_blacklist_failed", "error", err)
	} else if n > 0 {
		l.Info("purged_blacklist", "count", n)
	}
}

func (s *AuthService) publish(ctx context.Context, evt events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", evt.Type, "error", err)
	}
}

func validateRegistration(req transport.RegisterParentRequest) error {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return ErrValidation
	}
	if len(req.Password) < minPasswordLen {
		return ErrValidation
	}
	if req.FirstName == "" || req.LastName == "" {
		return ErrValidation
	}
	return nil
}
