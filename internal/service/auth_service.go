package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minAdminPasswordLength = 8

var (
	// ErrInvalidCredentials 表示用户名或密码不匹配。
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrCredentialsNotConfigured 表示尚未设置管理员密码。
	ErrCredentialsNotConfigured = errors.New("admin credentials are not configured")
	// ErrAdminUsernameMissing 表示新用户名为空。
	ErrAdminUsernameMissing = errors.New("admin username is required")
	// ErrAdminPasswordTooShort 表示新密码过短。
	ErrAdminPasswordTooShort = errors.New("admin password is too short")
)

// AuthService 校验保存在主题配置中的管理员凭据。
// 它只用于挡住后台入口，不是完整的账号体系。
type AuthService struct {
	settings *SettingsService
	logger   *zap.Logger
}

// NewAuthService 构造 AuthService。
func NewAuthService(settings *SettingsService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{settings: settings, logger: logger}
}

// Bootstrap 在主题中没有管理员密码时写入初始凭据，返回是否写入。
func (s *AuthService) Bootstrap(username, password string) (bool, error) {
	theme, err := s.settings.LoadTheme()
	if err != nil {
		return false, err
	}
	if theme.AdminPasswordHash != "" {
		return false, nil
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "admin"
	}
	if strings.TrimSpace(password) == "" {
		s.logger.Warn("no admin password configured; the dashboard stays locked until one is set")
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	theme.AdminUsername = username
	theme.AdminPasswordHash = string(hashed)
	if err := s.settings.writeTheme(theme); err != nil {
		return false, err
	}
	s.logger.Info("admin credentials initialized", zap.String("username", username))
	return true, nil
}

// Verify 比较用户名与密码。
func (s *AuthService) Verify(username, password string) (string, error) {
	theme, err := s.settings.LoadTheme()
	if err != nil {
		return "", err
	}
	if theme.AdminPasswordHash == "" {
		return "", ErrCredentialsNotConfigured
	}

	usernameMatches := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(theme.AdminUsername)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(theme.AdminPasswordHash), []byte(password))
	if !usernameMatches || passwordErr != nil {
		return "", ErrInvalidCredentials
	}
	return theme.AdminUsername, nil
}

// UpdateCredentials 在校验当前密码后修改用户名与密码。
// newPassword 为空时只修改用户名。
func (s *AuthService) UpdateCredentials(currentPassword, newUsername, newPassword string) (string, error) {
	theme, err := s.settings.LoadTheme()
	if err != nil {
		return "", err
	}
	if theme.AdminPasswordHash == "" {
		return "", ErrCredentialsNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(theme.AdminPasswordHash), []byte(currentPassword)); err != nil {
		return "", ErrInvalidCredentials
	}

	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return "", ErrAdminUsernameMissing
	}
	theme.AdminUsername = newUsername

	if newPassword != "" {
		if len([]rune(newPassword)) < minAdminPasswordLength {
			return "", fmt.Errorf("%w: at least %d characters", ErrAdminPasswordTooShort, minAdminPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash admin password: %w", err)
		}
		theme.AdminPasswordHash = string(hashed)
	}

	if err := s.settings.writeTheme(theme); err != nil {
		return "", err
	}
	return theme.AdminUsername, nil
}
