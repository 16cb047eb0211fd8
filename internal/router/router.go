package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/folio/internal/handler"
	"github.com/folio/internal/logging"
	"github.com/folio/internal/view"
	"github.com/folio/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options 汇总路由层需要的配置。
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURL     string
	SecureCookie  bool
	Logger        *zap.Logger
}

// LoadTemplates 解析内嵌的页面模板。
func LoadTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(view.FuncMap()).ParseFS(web.Templates, "templates/*.html", "templates/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(logging.GinMiddleware(logger), logging.Recovery(logger))

	// 会话只在浏览器关闭前有效
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(handler.SessionName, store))

	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	assets, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/assets", http.FS(assets))

	if opts.UploadDir != "" {
		uploadURL := "/" + strings.Trim(opts.UploadURL, "/")
		if uploadURL == "/" {
			uploadURL = "/uploads"
		}
		r.Static(uploadURL, opts.UploadDir)
	}

	r.GET("/healthz", api.HealthCheck)

	r.GET("/", api.ShowHome)
	r.GET("/project/:id", api.ShowProject)
	r.GET("/biography", api.ShowBiography)
	r.GET("/contact", api.ShowContact)
	r.GET("/notices", api.ShowNotices)
	r.NoRoute(api.ShowNotFound)

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/admin/dashboard")
		})
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/projects/:id/edit", api.ShowProjectEdit)

			// API路由
			apiGroup := auth.Group("/api")
			{
				apiGroup.GET("/projects", api.ListProjects)
				apiGroup.POST("/projects", api.CreateProject)
				apiGroup.POST("/projects/reorder", api.ReorderProjects)
				apiGroup.GET("/projects/:id", api.GetProject)
				apiGroup.PUT("/projects/:id", api.UpdateProject)
				apiGroup.DELETE("/projects/:id", api.DeleteProject)

				apiGroup.GET("/theme", api.GetTheme)
				apiGroup.PUT("/theme", api.UpdateTheme)
				apiGroup.GET("/seo", api.GetSEO)
				apiGroup.PUT("/seo", api.UpdateSEO)
				apiGroup.PUT("/biography", api.UpdateBiography)
				apiGroup.PUT("/security", api.UpdateSecurity)

				apiGroup.GET("/notices", api.ListNotices)
				apiGroup.POST("/notices", api.CreateNotice)
				apiGroup.PUT("/notices/:id", api.UpdateNotice)
				apiGroup.DELETE("/notices/:id", api.DeleteNotice)

				apiGroup.POST("/upload", api.UploadImage)
				apiGroup.POST("/ai/description", api.GenerateDescription)
				apiGroup.POST("/ai/biography", api.GenerateBiography)

				apiGroup.GET("/export", api.ExportSnapshot)
				apiGroup.POST("/import", api.ImportSnapshot)
				apiGroup.POST("/reset", api.ResetSite)
			}
		}
	}

	return r, nil
}
