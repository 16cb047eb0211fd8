package db

import "gorm.io/gorm"

// SystemSetting 以键值对形式保存整体序列化的站点配置。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyTheme 保存 site.ThemeConfig 的 JSON。
	SettingKeyTheme = "theme"
	// SettingKeySEO 保存 site.SEOConfig 的 JSON。
	SettingKeySEO = "seo"
)
