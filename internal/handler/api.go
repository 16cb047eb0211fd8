package handler

import (
	"time"

	"github.com/folio/internal/imageopt"
	"github.com/folio/internal/service"
	"github.com/folio/internal/site"
	"github.com/folio/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	projects       *service.ProjectService
	notices        *service.NoticeService
	settings       *service.SettingsService
	auth           *service.AuthService
	snapshots      *service.SnapshotService
	storage        *service.Storage
	writer         service.TextWriter
	aiEnabled      bool
	images         *imageopt.Optimizer
	logger         *zap.Logger
	uploadDir      string
	uploadURL      string
	maxUploadBytes int64
}

// Options 描述处理器的可选依赖。
type Options struct {
	Writer         service.TextWriter
	AIEnabled      bool
	Optimizer      *imageopt.Optimizer
	Logger         *zap.Logger
	UploadDir      string
	UploadURL      string
	MaxUploadBytes int64
}

const (
	siteContextKey        = "__site_view"
	defaultMaxUploadBytes = 20 << 20
)

type siteViewModel struct {
	Theme    site.ThemeConfig
	SEO      site.SEOConfig
	Keywords []string
}

// NewAPI constructs a handler set over the shared services.
func NewAPI(bundle *service.Bundle, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	optimizer := opts.Optimizer
	if optimizer == nil {
		optimizer = imageopt.New(0, 0)
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	uploadURL := opts.UploadURL
	if uploadURL == "" {
		uploadURL = "/uploads"
	}

	return &API{
		db:             bundle.Storage.DB(),
		projects:       bundle.Projects,
		notices:        bundle.Notices,
		settings:       bundle.Settings,
		auth:           bundle.Auth,
		snapshots:      bundle.Snapshots,
		storage:        bundle.Storage,
		writer:         opts.Writer,
		aiEnabled:      opts.AIEnabled,
		images:         optimizer,
		logger:         logger,
		uploadDir:      opts.UploadDir,
		uploadURL:      uploadURL,
		maxUploadBytes: maxUpload,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

func (a *API) siteView(c *gin.Context) siteViewModel {
	if cached, exists := c.Get(siteContextKey); exists {
		if model, ok := cached.(siteViewModel); ok {
			return model
		}
	}

	theme, err := a.settings.LoadTheme()
	if err != nil {
		c.Error(err)
	}
	seo, err := a.settings.LoadSEO()
	if err != nil {
		c.Error(err)
	}

	model := siteViewModel{Theme: theme, SEO: seo, Keywords: seo.KeywordList()}
	c.Set(siteContextKey, model)
	return model
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	model := a.siteView(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["theme"]; !exists {
		payload["theme"] = model.Theme
	}
	if _, exists := payload["seo"]; !exists {
		payload["seo"] = model.SEO
	}
	if _, exists := payload["keywords"]; !exists {
		payload["keywords"] = model.Keywords
	}
	if _, exists := payload["pageTitle"]; !exists {
		payload["pageTitle"] = pageTitle(model.SEO.MetaTitle, payload["title"])
	}
	if _, exists := payload["headingClass"]; !exists {
		payload["headingClass"] = view.HeadingClass(model.Theme.HeadingFont)
	}
	if _, exists := payload["path"]; !exists {
		payload["path"] = c.Request.URL.Path
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}
	payload["isAdmin"] = isAuthenticated(c)

	c.HTML(status, template, payload)
}

// RenderHTML 在渲染模板时自动附加主题与 SEO 信息。
func (a *API) RenderHTML(c *gin.Context, status int, template string, data gin.H) {
	a.renderHTML(c, status, template, data)
}

func pageTitle(metaTitle string, title any) string {
	if text, ok := title.(string); ok && text != "" {
		return text + " | " + metaTitle
	}
	return metaTitle
}

func isAuthenticated(c *gin.Context) bool {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return false
	}
	return sessions.Default(c).Get(sessionKeyAdmin) != nil
}
