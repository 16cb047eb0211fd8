package handler

import (
	"errors"
	"net/http"

	"github.com/folio/internal/service"
	"github.com/folio/internal/site"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type socialLinksRequest struct {
	Instagram string `json:"instagram"`
	Behance   string `json:"behance"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Blog      string `json:"blog"`
}

type themeRequest struct {
	PrimaryColor    string             `json:"primaryColor"`
	AccentColor     string             `json:"accentColor"`
	HeadingFont     string             `json:"headingFont"`
	SiteName        string             `json:"siteName"`
	HeroTitle       string             `json:"heroTitle"`
	HeroSubtitle    string             `json:"heroSubtitle"`
	BioContent      string             `json:"bioContent"`
	ProfileImageURL string             `json:"profileImageUrl"`
	ContactAddress  string             `json:"contactAddress"`
	SocialLinks     socialLinksRequest `json:"socialLinks"`
}

type seoRequest struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
	Keywords        string `json:"keywords"`
}

type biographyRequest struct {
	BioContent      string `json:"bioContent"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type securityRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Username        string `json:"username"`
	NewPassword     string `json:"newPassword"`
}

func (r themeRequest) toTheme() site.ThemeConfig {
	return site.ThemeConfig{
		PrimaryColor:    r.PrimaryColor,
		AccentColor:     r.AccentColor,
		HeadingFont:     r.HeadingFont,
		SiteName:        r.SiteName,
		HeroTitle:       r.HeroTitle,
		HeroSubtitle:    r.HeroSubtitle,
		BioContent:      r.BioContent,
		ProfileImageURL: r.ProfileImageURL,
		ContactAddress:  r.ContactAddress,
		SocialLinks: site.SocialLinks{
			Instagram: r.SocialLinks.Instagram,
			Behance:   r.SocialLinks.Behance,
			Email:     r.SocialLinks.Email,
			Phone:     r.SocialLinks.Phone,
			Blog:      r.SocialLinks.Blog,
		},
	}
}

func (r seoRequest) toConfig() site.SEOConfig {
	return site.SEOConfig{
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		Keywords:        r.Keywords,
	}
}

// themePayload 返回主题配置，不包含管理员凭据
func themePayload(theme site.ThemeConfig) gin.H {
	return gin.H{
		"primaryColor":    theme.PrimaryColor,
		"accentColor":     theme.AccentColor,
		"headingFont":     theme.HeadingFont,
		"siteName":        theme.SiteName,
		"heroTitle":       theme.HeroTitle,
		"heroSubtitle":    theme.HeroSubtitle,
		"bioContent":      theme.BioContent,
		"profileImageUrl": theme.ProfileImageURL,
		"contactAddress":  theme.ContactAddress,
		"socialLinks":     theme.SocialLinks,
		"adminUsername":   theme.AdminUsername,
	}
}

// GetTheme 返回当前主题
func (a *API) GetTheme(c *gin.Context) {
	theme, err := a.settings.LoadTheme()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "테마 설정을 불러오지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": themePayload(theme)})
}

// UpdateTheme 保存主题
func (a *API) UpdateTheme(c *gin.Context) {
	var payload themeRequest
	if !bindJSON(c, &payload, "테마 설정을 확인하세요.") {
		return
	}

	theme, err := a.settings.SaveTheme(payload.toTheme())
	if err != nil {
		switch {
		case errors.Is(err, site.ErrThemeColorInvalid):
			respondError(c, http.StatusBadRequest, "색상은 #RRGGBB 형식이어야 합니다.")
		case errors.Is(err, site.ErrThemeFontInvalid):
			respondError(c, http.StatusBadRequest, "제목 글꼴은 serif 또는 sans 중 하나여야 합니다.")
		default:
			a.respondWriteError(c, err, "테마 설정을 저장하지 못했습니다.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "테마가 저장되었습니다.",
		"theme":   themePayload(theme),
	})
}

// GetSEO 返回 SEO 设置
func (a *API) GetSEO(c *gin.Context) {
	seo, err := a.settings.LoadSEO()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SEO 설정을 불러오지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"seo": seo})
}

// UpdateSEO 保存 SEO 设置
func (a *API) UpdateSEO(c *gin.Context) {
	var payload seoRequest
	if !bindJSON(c, &payload, "SEO 설정을 확인하세요.") {
		return
	}

	seo, err := a.settings.SaveSEO(payload.toConfig())
	if err != nil {
		a.respondWriteError(c, err, "SEO 설정을 저장하지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "SEO 설정이 저장되었습니다.",
		"seo":     seo,
	})
}

// UpdateBiography 保存简介正文与头像
func (a *API) UpdateBiography(c *gin.Context) {
	var payload biographyRequest
	if !bindJSON(c, &payload, "소개 내용을 확인하세요.") {
		return
	}

	theme, err := a.settings.UpdateBiography(payload.BioContent, payload.ProfileImageURL)
	if err != nil {
		if errors.Is(err, service.ErrBiographyMissing) {
			respondError(c, http.StatusBadRequest, "소개 내용을 입력하세요.")
			return
		}
		a.respondWriteError(c, err, "소개를 저장하지 못했습니다.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "소개가 저장되었습니다.",
		"theme":   themePayload(theme),
	})
}

// UpdateSecurity 修改管理员账号，需要当前密码
func (a *API) UpdateSecurity(c *gin.Context) {
	var payload securityRequest
	if !bindJSON(c, &payload, "계정 정보를 확인하세요.") {
		return
	}

	username, err := a.auth.UpdateCredentials(payload.CurrentPassword, payload.Username, payload.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusForbidden, "현재 비밀번호가 올바르지 않습니다.")
		case errors.Is(err, service.ErrAdminUsernameMissing):
			respondError(c, http.StatusBadRequest, "아이디를 입력하세요.")
		case errors.Is(err, service.ErrAdminPasswordTooShort):
			respondError(c, http.StatusBadRequest, "비밀번호는 8자 이상이어야 합니다.")
		case errors.Is(err, service.ErrCredentialsNotConfigured):
			respondError(c, http.StatusConflict, "관리자 계정이 아직 설정되지 않았습니다.")
		default:
			a.respondWriteError(c, err, "계정 정보를 저장하지 못했습니다.")
		}
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyAdmin, username)
	if err := session.Save(); err != nil {
		c.Error(err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "계정 정보가 변경되었습니다.",
		"username": username,
	})
}
