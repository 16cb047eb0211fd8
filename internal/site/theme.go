package site

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ThemeSchemaVersion 是当前主题配置的结构版本，MigrateTheme 会把旧数据升级到该版本。
const ThemeSchemaVersion = 4

const (
	// HeadingFontSerif 表示标题使用衬线字体。
	HeadingFontSerif = "serif"
	// HeadingFontSans 表示标题使用无衬线字体。
	HeadingFontSans = "sans"
)

var (
	// ErrThemeFontInvalid 表示标题字体取值不在允许范围内。
	ErrThemeFontInvalid = errors.New("heading font must be serif or sans")
	// ErrThemeColorInvalid 表示颜色不是合法的十六进制色值。
	ErrThemeColorInvalid = errors.New("color must be a #rgb or #rrggbb hex value")
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// SocialLinks 汇总前台展示的社交与联系方式。
type SocialLinks struct {
	Instagram string `json:"instagram"`
	Behance   string `json:"behance"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Blog      string `json:"blog"`
}

// ThemeConfig 是站点级的展示配置，整体序列化后存储。
// AdminPassword 仅用于读取旧版本的明文密码，迁移后会被清空且不再写回。
type ThemeConfig struct {
	SchemaVersion     int         `json:"schemaVersion"`
	PrimaryColor      string      `json:"primaryColor"`
	AccentColor       string      `json:"accentColor"`
	HeadingFont       string      `json:"headingFont"`
	SiteName          string      `json:"siteName"`
	HeroTitle         string      `json:"heroTitle"`
	HeroSubtitle      string      `json:"heroSubtitle"`
	BioContent        string      `json:"bioContent"`
	ProfileImageURL   string      `json:"profileImageUrl"`
	ContactAddress    string      `json:"contactAddress"`
	SocialLinks       SocialLinks `json:"socialLinks"`
	AdminUsername     string      `json:"adminUsername"`
	AdminPasswordHash string      `json:"adminPasswordHash"`
	AdminPassword     string      `json:"adminPassword,omitempty"`
}

// Validate 检查颜色与字体字段。
func (t ThemeConfig) Validate() error {
	if t.HeadingFont != HeadingFontSerif && t.HeadingFont != HeadingFontSans {
		return ErrThemeFontInvalid
	}
	for name, value := range map[string]string{"primaryColor": t.PrimaryColor, "accentColor": t.AccentColor} {
		if !hexColorPattern.MatchString(value) {
			return fmt.Errorf("%w: %s=%q", ErrThemeColorInvalid, name, value)
		}
	}
	return nil
}

// Normalize 去除首尾空白并统一字体、颜色的大小写。
func (t ThemeConfig) Normalize() ThemeConfig {
	t.PrimaryColor = strings.ToLower(strings.TrimSpace(t.PrimaryColor))
	t.AccentColor = strings.ToLower(strings.TrimSpace(t.AccentColor))
	t.HeadingFont = strings.ToLower(strings.TrimSpace(t.HeadingFont))
	t.SiteName = strings.TrimSpace(t.SiteName)
	t.HeroTitle = strings.TrimSpace(t.HeroTitle)
	t.HeroSubtitle = strings.TrimSpace(t.HeroSubtitle)
	t.BioContent = strings.TrimSpace(t.BioContent)
	t.ProfileImageURL = strings.TrimSpace(t.ProfileImageURL)
	t.ContactAddress = strings.TrimSpace(t.ContactAddress)
	t.SocialLinks = SocialLinks{
		Instagram: strings.TrimSpace(t.SocialLinks.Instagram),
		Behance:   strings.TrimSpace(t.SocialLinks.Behance),
		Email:     strings.TrimSpace(t.SocialLinks.Email),
		Phone:     strings.TrimSpace(t.SocialLinks.Phone),
		Blog:      strings.TrimSpace(t.SocialLinks.Blog),
	}
	t.AdminUsername = strings.TrimSpace(t.AdminUsername)
	return t
}

// Get 按 JSON 字段名取出链接，未知 key 返回空串。
func (s SocialLinks) Get(key string) string {
	switch key {
	case "instagram":
		return s.Instagram
	case "behance":
		return s.Behance
	case "email":
		return s.Email
	case "phone":
		return s.Phone
	case "blog":
		return s.Blog
	default:
		return ""
	}
}

// InstagramHandle 返回 Instagram 链接的最后一段，用于联系页展示。
func (s SocialLinks) InstagramHandle() string {
	trimmed := strings.TrimRight(strings.TrimSpace(s.Instagram), "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// BlogHost 返回去掉协议前缀的博客地址。
func (s SocialLinks) BlogHost() string {
	blog := strings.TrimSpace(s.Blog)
	blog = strings.TrimPrefix(blog, "https://")
	blog = strings.TrimPrefix(blog, "http://")
	return strings.TrimRight(blog, "/")
}
