package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/site"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBiographyMissing 表示简介内容为空。
var ErrBiographyMissing = errors.New("biography content is required")

// SettingsService 读写整体序列化的主题与 SEO 配置。
// 缺失或无法解析的值回退到内置默认值，旧版本数据在读取时迁移一次。
type SettingsService struct {
	store  *Storage
	logger *zap.Logger
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(store *Storage, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{store: store, logger: logger}
}

// LoadTheme 读取主题配置。
func (s *SettingsService) LoadTheme() (site.ThemeConfig, error) {
	raw, found, err := s.readSetting(db.SettingKeyTheme)
	if err != nil {
		return site.DefaultTheme(), err
	}
	if !found {
		return site.DefaultTheme(), nil
	}

	theme, err := site.DecodeTheme([]byte(raw))
	if err != nil {
		s.logger.Warn("persisted theme is unreadable, using defaults", zap.Error(err))
		return site.DefaultTheme(), nil
	}

	migrated, changed, err := site.MigrateTheme(theme)
	if err != nil {
		s.logger.Warn("theme migration failed", zap.Error(err))
		return theme, nil
	}
	if changed {
		if err := s.writeTheme(migrated); err != nil {
			s.logger.Warn("failed to persist migrated theme", zap.Error(err))
		} else {
			s.logger.Info("theme migrated", zap.Int("from", theme.SchemaVersion), zap.Int("to", migrated.SchemaVersion))
		}
	}
	return migrated, nil
}

// SaveTheme 保存展示相关的主题字段，管理员凭据保持不变。
func (s *SettingsService) SaveTheme(input site.ThemeConfig) (site.ThemeConfig, error) {
	theme := input.Normalize()
	if err := theme.Validate(); err != nil {
		return site.ThemeConfig{}, err
	}

	current, err := s.LoadTheme()
	if err != nil {
		return site.ThemeConfig{}, err
	}
	theme.AdminUsername = current.AdminUsername
	theme.AdminPasswordHash = current.AdminPasswordHash
	theme.AdminPassword = ""
	theme.SchemaVersion = site.ThemeSchemaVersion

	if err := s.writeTheme(theme); err != nil {
		return site.ThemeConfig{}, err
	}
	return theme, nil
}

// UpdateBiography 只更新简介正文与头像。
func (s *SettingsService) UpdateBiography(content, profileImageURL string) (site.ThemeConfig, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return site.ThemeConfig{}, ErrBiographyMissing
	}

	theme, err := s.LoadTheme()
	if err != nil {
		return site.ThemeConfig{}, err
	}
	theme.BioContent = content
	if trimmed := strings.TrimSpace(profileImageURL); trimmed != "" {
		theme.ProfileImageURL = trimmed
	}

	if err := s.writeTheme(theme); err != nil {
		return site.ThemeConfig{}, err
	}
	return theme, nil
}

// LoadSEO 读取 SEO 配置。
func (s *SettingsService) LoadSEO() (site.SEOConfig, error) {
	raw, found, err := s.readSetting(db.SettingKeySEO)
	if err != nil {
		return site.DefaultSEO(), err
	}
	if !found {
		return site.DefaultSEO(), nil
	}

	seo, err := site.DecodeSEO([]byte(raw))
	if err != nil {
		s.logger.Warn("persisted seo is unreadable, using defaults", zap.Error(err))
		return site.DefaultSEO(), nil
	}
	return seo, nil
}

// SaveSEO 保存 SEO 配置，关键词会被规范化。
func (s *SettingsService) SaveSEO(input site.SEOConfig) (site.SEOConfig, error) {
	seo := input.Normalize()
	if err := s.writeJSON(db.SettingKeySEO, seo); err != nil {
		return site.SEOConfig{}, err
	}
	return seo, nil
}

func (s *SettingsService) writeTheme(theme site.ThemeConfig) error {
	theme.AdminPassword = ""
	return s.writeJSON(db.SettingKeyTheme, theme)
}

func (s *SettingsService) writeJSON(key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return s.store.Write(func(tx *gorm.DB) error {
		return upsertSetting(tx, key, string(encoded))
	})
}

func (s *SettingsService) readSetting(key string) (string, bool, error) {
	var record db.SystemSetting
	if err := s.store.db.Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}
	if strings.TrimSpace(record.Value) == "" {
		return "", false, nil
	}
	return record.Value, true, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
