package site

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DecodeTheme 将持久化的 JSON 合并到默认主题之上：缺失字段取默认值，已有字段保留。
// 解析失败时返回错误，调用方应回退到 DefaultTheme。
func DecodeTheme(raw []byte) (ThemeConfig, error) {
	theme := DefaultTheme()
	// 未写入版本号的数据视为第一版
	theme.SchemaVersion = 0
	if err := json.Unmarshal(raw, &theme); err != nil {
		return DefaultTheme(), fmt.Errorf("decode theme: %w", err)
	}
	if theme.SchemaVersion <= 0 {
		theme.SchemaVersion = 1
	}
	return theme, nil
}

// DecodeSEO 与 DecodeTheme 相同，作用于 SEO 配置。
func DecodeSEO(raw []byte) (SEOConfig, error) {
	seo := DefaultSEO()
	if err := json.Unmarshal(raw, &seo); err != nil {
		return DefaultSEO(), fmt.Errorf("decode seo: %w", err)
	}
	return seo, nil
}

// MigrateTheme 按版本逐级升级主题配置，返回升级后的配置以及是否发生变化。
//
//	v1 → v2 统一 headingFont 取值
//	v2 → v3 补齐联系地址、电话、博客
//	v3 → v4 将明文 adminPassword 转为 bcrypt 哈希
func MigrateTheme(theme ThemeConfig) (ThemeConfig, bool, error) {
	changed := false
	defaults := DefaultTheme()

	if theme.SchemaVersion < 2 {
		theme.HeadingFont = normalizeHeadingFont(theme.HeadingFont)
		theme.SchemaVersion = 2
		changed = true
	}

	if theme.SchemaVersion < 3 {
		if strings.TrimSpace(theme.ContactAddress) == "" {
			theme.ContactAddress = defaults.ContactAddress
		}
		if strings.TrimSpace(theme.SocialLinks.Phone) == "" {
			theme.SocialLinks.Phone = defaults.SocialLinks.Phone
		}
		if strings.TrimSpace(theme.SocialLinks.Blog) == "" {
			theme.SocialLinks.Blog = defaults.SocialLinks.Blog
		}
		theme.SchemaVersion = 3
		changed = true
	}

	if theme.SchemaVersion < 4 {
		theme.SchemaVersion = 4
		changed = true
	}

	// 任何版本残留的明文密码都要转成哈希
	if plain := theme.AdminPassword; plain != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return theme, changed, fmt.Errorf("hash legacy admin password: %w", err)
		}
		theme.AdminPasswordHash = string(hashed)
		theme.AdminPassword = ""
		changed = true
	}

	return theme, changed, nil
}

func normalizeHeadingFont(font string) string {
	switch strings.ToLower(strings.TrimSpace(font)) {
	case "sans", "sans-serif", "sansserif":
		return HeadingFontSans
	default:
		return HeadingFontSerif
	}
}
