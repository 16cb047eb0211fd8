package handler

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/folio/internal/service"
	"github.com/folio/internal/site"
	"github.com/folio/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionName 是后台会话 Cookie 的名称。
const SessionName = "folio_session"

const sessionKeyAdmin = "admin_user"

var dashboardTabs = []string{"projects", "biography", "theme", "seo", "security", "notices"}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	if isAuthenticated(c) {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Admin Login",
	})
}

// Login 校验表单中的用户名与密码，成功后写入会话标记
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.auth.Verify(username, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := "아이디 또는 비밀번호가 올바르지 않습니다."
		switch {
		case errors.Is(err, service.ErrCredentialsNotConfigured):
			status = http.StatusServiceUnavailable
			message = "관리자 비밀번호가 설정되지 않았습니다. FOLIO_ADMIN_PASSWORD 를 설정한 뒤 다시 시작하세요."
		case !errors.Is(err, service.ErrInvalidCredentials):
			c.Error(err)
			status = http.StatusInternalServerError
			message = "로그인 처리 중 오류가 발생했습니다."
		}
		a.logger.Info("admin login rejected", zap.String("username", strings.TrimSpace(username)), zap.String("ip", c.ClientIP()))
		a.renderHTML(c, status, "login.html", gin.H{
			"title":    "Admin Login",
			"error":    message,
			"username": username,
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyAdmin, user)
	if err := session.Save(); err != nil {
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "Admin Login",
			"error": "세션을 저장하지 못했습니다.",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板，tab 决定当前展示的子视图
func (a *API) ShowDashboard(c *gin.Context) {
	tab := strings.TrimSpace(c.DefaultQuery("tab", "projects"))
	if !slices.Contains(dashboardTabs, tab) {
		tab = "projects"
	}

	projects, err := a.projects.List()
	if err != nil {
		c.Error(err)
	}
	notices, err := a.notices.List(true)
	if err != nil {
		c.Error(err)
	}
	usage, err := a.storage.Usage()
	if err != nil {
		c.Error(err)
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":     "Dashboard",
		"tab":       tab,
		"tabs":      dashboardTabs,
		"username":  sessions.Default(c).Get(sessionKeyAdmin),
		"projects":  projects,
		"notices":   notices,
		"usage":     usage,
		"quota":     a.storage.Quota(),
		"aiEnabled": a.aiEnabled,
		"fontSerif": site.HeadingFontSerif,
		"fontSans":  site.HeadingFontSans,
		"channels":  view.SocialIconOptions(),
	})
}

// ShowProjectEdit 渲染单个项目的编辑页
func (a *API) ShowProjectEdit(c *gin.Context) {
	project, err := a.projects.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			a.ShowNotFound(c)
			return
		}
		c.Error(err)
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}

	a.renderHTML(c, http.StatusOK, "project_edit.html", gin.H{
		"title":     "Edit Project",
		"project":   project,
		"gallery":   strings.Join(project.Gallery, "\n"),
		"aiEnabled": a.aiEnabled,
	})
}

// AuthRequired 是一个简单的认证中间件：页面请求跳转到登录页，API 请求返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAuthenticated(c) {
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
			respondError(c, http.StatusUnauthorized, "로그인이 필요합니다.")
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, "/admin/login")
		c.Abort()
	}
}
