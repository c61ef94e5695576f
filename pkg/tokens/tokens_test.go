package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return &Issuer{
		Secret:     []byte("test-jwt-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func TestIssuer_IssueAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	token, exp, err := iss.IssueAccess("alice@example.com", RoleTeacher)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(iss.AccessTTL), exp, time.Second)

	claims, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, RoleTeacher, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestIssuer_IssueRefresh_HasUniqueID(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()
	first, _, err := iss.IssueRefresh("alice@example.com")
	require.NoError(t, err)
	second, _, err := iss.IssueRefresh("alice@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	claims, err := iss.Validate(first)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Empty(t, claims.Role)
}

func TestIssuer_Validate_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer()

	expired := &Issuer{Secret: iss.Secret, AccessTTL: -time.Minute}
	expiredToken, _, err := expired.IssueAccess("alice@example.com", RoleParent)
	require.NoError(t, err)

	other := &Issuer{Secret: []byte("some-other-secret"), AccessTTL: time.Minute}
	misSigned, _, err := other.IssueAccess("alice@example.com", RoleParent)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: misSigned},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := iss.Validate(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssuer_Expiry_WorksOnExpiredTokens(t *testing.T) {
	t.Parallel()

	expired := &Issuer{Secret: []byte("test-jwt-secret"), AccessTTL: -time.Hour}
	token, _, err := expired.IssueAccess("alice@example.com", RoleParent)
	require.NoError(t, err)

	_, ok := expired.Expiry("")
	assert.False(t, ok)

	exp, ok := expired.Expiry(token)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), exp, time.Second)
}

func TestIssuer_Expiry_RejectsForeignSignature(t *testing.T) {
	t.Parallel()

	other := &Issuer{Secret: []byte("some-other-secret"), AccessTTL: time.Minute}
	token, _, err := other.IssueAccess("alice@example.com", RoleParent)
	require.NoError(t, err)

	iss := newTestIssuer()
	_, ok := iss.Expiry(token)
	assert.False(t, ok)
}
