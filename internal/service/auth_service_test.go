package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()
	settings := NewSettingsService(setupTestStorage(t, 0), nil)
	return NewAuthService(settings, nil)
}

func TestAuthServiceBootstrapOnlyOnce(t *testing.T) {
	auth := setupAuthService(t)

	_, err := auth.Verify("admin", "whatever")
	require.ErrorIs(t, err, ErrCredentialsNotConfigured)

	created, err := auth.Bootstrap("", "first-password")
	require.NoError(t, err)
	require.True(t, created)

	created, err = auth.Bootstrap("other", "second-password")
	require.NoError(t, err)
	require.False(t, created)

	username, err := auth.Verify("admin", "first-password")
	require.NoError(t, err)
	require.Equal(t, "admin", username)
}

func TestAuthServiceBootstrapWithoutPassword(t *testing.T) {
	auth := setupAuthService(t)

	created, err := auth.Bootstrap("admin", "")
	require.NoError(t, err)
	require.False(t, created)

	_, err = auth.Verify("admin", "")
	require.ErrorIs(t, err, ErrCredentialsNotConfigured)
}

func TestAuthServiceVerifyRejectsWrongCredentials(t *testing.T) {
	auth := setupAuthService(t)
	_, err := auth.Bootstrap("owner", "correct-horse")
	require.NoError(t, err)

	_, err = auth.Verify("owner", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Verify("someone", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	username, err := auth.Verify(" owner ", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "owner", username)
}

func TestAuthServiceUpdateCredentials(t *testing.T) {
	auth := setupAuthService(t)
	_, err := auth.Bootstrap("owner", "correct-horse")
	require.NoError(t, err)

	_, err = auth.UpdateCredentials("wrong", "owner", "battery-staple")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.UpdateCredentials("correct-horse", "  ", "battery-staple")
	require.ErrorIs(t, err, ErrAdminUsernameMissing)

	_, err = auth.UpdateCredentials("correct-horse", "owner", "short")
	require.ErrorIs(t, err, ErrAdminPasswordTooShort)

	username, err := auth.UpdateCredentials("correct-horse", "curator", "battery-staple")
	require.NoError(t, err)
	require.Equal(t, "curator", username)

	_, err = auth.Verify("owner", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Verify("curator", "battery-staple")
	require.NoError(t, err)

	// 只改用户名
	username, err = auth.UpdateCredentials("battery-staple", "studio", "")
	require.NoError(t, err)
	require.Equal(t, "studio", username)
	_, err = auth.Verify("studio", "battery-staple")
	require.NoError(t, err)
}
