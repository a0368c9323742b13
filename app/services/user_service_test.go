package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.users.ValidateCredentials("admin@test.local", adminPassword)
	require.NoError(t, err)
	assert.Equal(t, env.admin.ID, u.ID)

	_, err = env.users.ValidateCredentials("admin@test.local", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown accounts answer the same as wrong passwords
	_, err = env.users.ValidateCredentials("nobody@test.local", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.users.EnsureAdmin("admin@test.local", "Admin", "different"))

	// the existing account is untouched
	_, err := env.users.ValidateCredentials("admin@test.local", adminPassword)
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	err := env.users.ChangePassword(env.admin.ID, "wrong", "newpass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.users.ChangePassword(env.admin.ID, adminPassword, "newpass123"))
	_, err = env.users.ValidateCredentials("admin@test.local", "newpass123")
	require.NoError(t, err)
	_, err = env.users.ValidateCredentials("admin@test.local", adminPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.users.RequestReset("admin@test.local")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	u, err := env.users.ResetPassword(token, "fresh-password")
	require.NoError(t, err)
	assert.Equal(t, env.admin.ID, u.ID)
	_, err = env.users.ValidateCredentials("admin@test.local", "fresh-password")
	require.NoError(t, err)

	// tokens are single-use
	_, err = env.users.ResetPassword(token, "another-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequestResetUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.users.RequestReset("nobody@test.local")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestResetTokenSupersededByNewRequest(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.users.RequestReset("admin@test.local")
	require.NoError(t, err)
	second, err := env.users.RequestReset("admin@test.local")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = env.users.ResetPassword(first, "should-not-work")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.users.ResetPassword(second, "does-work")
	require.NoError(t, err)
}

func TestResetPasswordBogusToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.ResetPassword("not-a-token", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
