package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/altera-edu/school-platform/pkg/events"
	pkghash "github.com/altera-edu/school-platform/pkg/hash"
	"github.com/altera-edu/school-platform/pkg/logging"
	"github.com/altera-edu/school-platform/services/auth/internal/models"
	"github.com/altera-edu/school-platform/services/auth/internal/repo"
)

const resetTokenTTL = 24 * time.Hour

// ResetService owns the password-reset token lifecycle. FrontendURL is the
// base the emailed reset links point at.
type ResetService struct {
	Repo        *repo.GormRepo
	Mailer      MailDispatch
	Events      events.Publisher
	FrontendURL string
}

// MailDispatch decouples the reset flow from SMTP; the HTTP response never
// waits on mail delivery.
type MailDispatch interface {
	DispatchResetLink(to, name, link string)
	DispatchResetConfirmation(to, name string)
}

// RequestReset issues a fresh single-use token for the account and emails a
// reset link. Any previously unissued token for the same user is invalidated
// in the same transaction.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password", "email", email)

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("forgot_password_failed", "status", 404, "reason", "unknown email")
			return ErrNotFound
		}
		l.Error("forgot_password_failed", "status", 500, "error", err)
		return err
	}

	token, err := newOpaqueToken()
	if err != nil {
		l.Error("forgot_password_failed", "status", 500, "reason", "cannot generate token", "error", err)
		return err
	}

	row := models.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}
	if err := s.Repo.IssueResetToken(ctx, &row); err != nil {
		l.Error("forgot_password_failed", "status", 500, "error", err)
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.FrontendURL, token)
	s.Mailer.DispatchResetLink(user.Email, user.FirstName, link)

	s.publish(ctx, events.Event{Type: events.TypePasswordResetRequested, Subject: user.Email})
	l.Info("reset_token_issued")
	return nil
}

// Redeem consumes a reset token exactly once. Used and expired tokens fail
// with ErrInvalidResetToken; expired rows are deleted as cleanup on the way
// out.
func (s *ResetService) Redeem(ctx context.Context, token, newPassword, confirmPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.reset_password")

	row, err := s.Repo.FindResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("reset_password_failed", "status", 400, "reason", "unknown token")
			return ErrInvalidResetToken
		}
		l.Error("reset_password_failed", "status", 500, "error", err)
		return err
	}
	if row.Used {
		l.Warn("reset_password_failed", "status", 400, "reason", "token already used")
		return ErrInvalidResetToken
	}
	if row.Expired() {
		_ = s.Repo.DeleteResetToken(ctx, row.ID)
		l.Warn("reset_password_failed", "status", 400, "reason", "token expired")
		return ErrInvalidResetToken
	}
	if newPassword != confirmPassword || len(newPassword) < minPasswordLen {
		l.Warn("reset_password_failed", "status", 400, "reason", "password mismatch or too short")
		return ErrValidation
	}

	pwHash, err := pkghash.HashPassword(newPassword)
	if err != nil {
		l.Error("reset_password_failed", "status", 500, "error", err)
		return err
	}
	if err := s.Repo.RedeemResetToken(ctx, row, pwHash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// lost a race with a concurrent redeem of the same token
			l.Warn("reset_password_failed", "status", 400, "reason", "token already used")
			return ErrInvalidResetToken
		}
		l.Error("reset_password_failed", "status", 500, "error", err)
		return err
	}

	if u, err := s.Repo.FindUserByID(ctx, row.UserID); err == nil {
		s.Mailer.DispatchResetConfirmation(u.Email, u.FirstName)
		s.publish(ctx, events.Event{Type: events.TypePasswordResetCompleted, Subject: u.Email})
	}

	l.Info("password_reset_successful")
	return nil
}

func (s *ResetService) publish(ctx context.Context, evt events.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", evt.Type, "error", err)
	}
}

// 128 bits of entropy, hex-encoded: unguessable and safe in a URL.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
