package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("u1", "nok@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "nok@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("one", time.Hour).Issue("u1", "", RoleUser)
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenService("two", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)
	issuedAt := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, err := svc.Issue("u1", "", RoleUser)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
