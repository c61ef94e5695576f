package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghash "github.com/altera-edu/school-platform/pkg/hash"
	"github.com/altera-edu/school-platform/pkg/tokens"
	"github.com/altera-edu/school-platform/services/auth/internal/models"
)

type recordingMailer struct {
	links         []string
	confirmations []string
}

func (m *recordingMailer) DispatchResetLink(_, _, link string) {
	m.links = append(m.links, link)
}

func (m *recordingMailer) DispatchResetConfirmation(to, _ string) {
	m.confirmations = append(m.confirmations, to)
}

func (m *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.links)
	link := m.links[len(m.links)-1]
	i := strings.Index(link, "token=")
	require.GreaterOrEqual(t, i, 0)
	return link[i+len("token="):]
}

func newResetEnv(t *testing.T) (*testEnv, *ResetService, *recordingMailer) {
	t.Helper()

	env := newTestEnv(t)
	mailer := &recordingMailer{}
	reset := &ResetService{
		Repo:        env.repo,
		Mailer:      mailer,
		FrontendURL: "http://localhost:3000",
	}
	return env, reset, mailer
}

func TestResetService_RequestReset_UnknownEmail(t *testing.T) {
	t.Parallel()

	_, reset, mailer := newResetEnv(t)
	err := reset.RequestReset(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mailer.links)
}

func TestResetService_RequestReset_IssuesTokenAndMailsLink(t *testing.T) {
	t.Parallel()

	env, reset, mailer := newResetEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "alice@example.com", "Secret123", tokens.RoleParent, true)

	require.NoError(t, reset.RequestReset(ctx, "alice@example.com"))

	token := mailer.lastToken(t)
	assert.Len(t, token, 32)

	row, err := env.repo.FindResetToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, row.UserID)
	assert.False(t, row.Used)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), row.ExpiresAt, 5*time.Second)
}

func TestResetService_RequestReset_InvalidatesPriorToken(t *testing.T) {
	t.Parallel()

	env, reset, mailer := newResetEnv(t)
	ctx := context.Background()
	createUser(t, env, "alice@example.com", "Secret123", tokens.RoleParent, true)

	require.NoError(t, reset.RequestReset(ctx, "alice@example.com"))
	first := mailer.lastToken(t)
	require.NoError(t, reset.RequestReset(ctx, "alice@example.com"))
	second := mailer.lastToken(t)
	require.NotEqual(t, first, second)

	err := reset.Redeem(ctx, first, "NewSecret123", "NewSecret123")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, reset.Redeem(ctx, second, "NewSecret123", "NewSecret123"))
}

func TestResetService_Redeem_Success_ExactlyOnce(t *testing.T) {
	t.Parallel()

	env, reset, mailer := newResetEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "alice@example.com", "Secret123", tokens.RoleParent, true)

	require.NoError(t, reset.RequestReset(ctx, "alice@example.com"))
	token := mailer.lastToken(t)

	require.NoError(t, reset.Redeem(ctx, token, "NewSecret123", "NewSecret123"))

	updated, err := env.repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, pkghash.CheckPassword(updated.PasswordHash, "NewSecret123"))
	assert.False(t, pkghash.CheckPassword(updated.PasswordHash, "Secret123"))
	assert.Equal(t, []string{"alice@example.com"}, mailer.confirmations)

	err = reset.Redeem(ctx, token, "AnotherSecret1", "AnotherSecret1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetService_Redeem_Failures(t *testing.T) {
	t.Parallel()

	env, reset, mailer := newResetEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "alice@example.com", "Secret123", tokens.RoleParent, true)

	require.NoError(t, reset.RequestReset(ctx, "alice@example.com"))
	token := mailer.lastToken(t)

	t.Run("unknown token", func(t *testing.T) {
		err := reset.Redeem(ctx, "does-not-exist", "NewSecret123", "NewSecret123")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("password mismatch", func(t *testing.T) {
		err := reset.Redeem(ctx, token, "NewSecret123", "Different123")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("password too short", func(t *testing.T) {
		err := reset.Redeem(ctx, token, "short", "short")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("expired token is rejected and deleted", func(t *testing.T) {
		expired := models.PasswordResetToken{
			Token:     "expired-token",
			UserID:    user.ID,
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}
		require.NoError(t, env.db.Create(&expired).Error)

		err := reset.Redeem(ctx, "expired-token", "NewSecret123", "NewSecret123")
		assert.ErrorIs(t, err, ErrInvalidResetToken)

		var count int64
		require.NoError(t, env.db.Model(&models.PasswordResetToken{}).
			Where("token = ?", "expired-token").Count(&count).Error)
		assert.Zero(t, count)
	})
}
