package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/folio/internal/db"
	"github.com/folio/internal/imageopt"
	"github.com/folio/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	mu   sync.Mutex
	last *stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	instance := &stubHTMLInstance{name: name, data: data}
	r.mu.Lock()
	r.last = instance
	r.mu.Unlock()
	return instance
}

func (r *stubHTMLRender) lastRendered(t *testing.T) (string, gin.H) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotNil(t, r.last, "expected a template to be rendered")
	data, ok := r.last.data.(gin.H)
	require.True(t, ok, "expected gin.H template data, got %T", r.last.data)
	return r.last.name, data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

var handlerDBCounter atomic.Int64

func setupHandlerBundle(t *testing.T, quota int64) *service.Bundle {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", handlerDBCounter.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return service.NewBundle(gdb, quota, nil)
}

type testServer struct {
	api    *API
	bundle *service.Bundle
	html   *stubHTMLRender
	engine *gin.Engine
}

// newTestServer 注册与正式路由一致的处理器；admin 为 true 时每个请求都带有登录状态。
func newTestServer(t *testing.T, bundle *service.Bundle, opts Options, admin bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := NewAPI(bundle, opts)
	html := &stubHTMLRender{}

	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions(SessionName, cookie.NewStore([]byte("test-secret"))))
	if admin {
		r.Use(func(c *gin.Context) {
			sessions.Default(c).Set(sessionKeyAdmin, "admin")
			c.Next()
		})
	}

	r.GET("/", api.ShowHome)
	r.GET("/project/:id", api.ShowProject)
	r.GET("/notices", api.ShowNotices)
	r.NoRoute(api.ShowNotFound)
	r.GET("/admin/login", api.ShowLoginPage)
	r.POST("/admin/login", api.Login)

	auth := r.Group("/admin", AuthRequired())
	auth.GET("/dashboard", api.ShowDashboard)
	auth.GET("/projects/:id/edit", api.ShowProjectEdit)
	auth.POST("/api/projects", api.CreateProject)
	auth.POST("/api/projects/reorder", api.ReorderProjects)
	auth.PUT("/api/projects/:id", api.UpdateProject)
	auth.DELETE("/api/projects/:id", api.DeleteProject)
	auth.PUT("/api/theme", api.UpdateTheme)
	auth.PUT("/api/security", api.UpdateSecurity)
	auth.POST("/api/notices", api.CreateNotice)
	auth.POST("/api/upload", api.UploadImage)
	auth.POST("/api/ai/description", api.GenerateDescription)
	auth.GET("/api/export", api.ExportSnapshot)
	auth.POST("/api/import", api.ImportSnapshot)

	return &testServer{api: api, bundle: bundle, html: html, engine: r}
}

func (s *testServer) do(method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return s.do(method, target, body, "application/json")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func TestAuthRequiredGuardsPagesAndAPI(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, false)

	w := srv.do(http.MethodGet, "/admin/dashboard", nil, "")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = srv.doJSON(t, http.MethodPost, "/admin/api/projects", map[string]any{})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, decodeBody(t, w)["error"], "로그인")

	count, err := srv.bundle.Projects.Count()
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestLoginChecksCredentials(t *testing.T) {
	bundle := setupHandlerBundle(t, 0)
	_, err := bundle.Auth.Bootstrap("owner", "correct-horse")
	require.NoError(t, err)
	srv := newTestServer(t, bundle, Options{}, false)

	form := url.Values{"username": {"owner"}, "password": {"wrong-password"}}
	w := srv.do(http.MethodPost, "/admin/login", []byte(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	name, data := srv.html.lastRendered(t)
	require.Equal(t, "login.html", name)
	require.NotEmpty(t, data["error"])
	require.Equal(t, "owner", data["username"])

	form.Set("password", "correct-horse")
	w = srv.do(http.MethodPost, "/admin/login", []byte(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie, "expected a session cookie")

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(sessionCookie)
	w = httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	name, data = srv.html.lastRendered(t)
	require.Equal(t, "dashboard.html", name)
	require.Equal(t, "owner", data["username"])
}

func TestLoginWithoutConfiguredPasswordIsUnavailable(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, false)

	form := url.Values{"username": {"admin"}, "password": {"anything"}}
	w := srv.do(http.MethodPost, "/admin/login", []byte(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestShowDashboardFallsBackToProjectsTab(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{AIEnabled: true}, true)

	w := srv.do(http.MethodGet, "/admin/dashboard?tab=unknown", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	name, data := srv.html.lastRendered(t)
	require.Equal(t, "dashboard.html", name)
	require.Equal(t, "projects", data["tab"])
	require.Equal(t, true, data["aiEnabled"])
	require.Equal(t, true, data["isAdmin"])
}

func TestProjectLifecycleThroughAPI(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, true)

	w := srv.doJSON(t, http.MethodPost, "/admin/api/projects", map[string]any{})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)["project"].(map[string]any)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	w = srv.doJSON(t, http.MethodPut, "/admin/api/projects/"+id, map[string]any{
		"title":    "Quiet Rooms",
		"category": "Photography",
		"link":     "ftp://example.com",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.doJSON(t, http.MethodPut, "/admin/api/projects/"+id, map[string]any{
		"title":    "Quiet Rooms",
		"category": "Photography",
		"imageUrl": "https://example.com/cover.jpg",
		"gallery":  []string{"https://example.com/1.jpg"},
		"date":     "2025.04",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodGet, "/project/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	name, data := srv.html.lastRendered(t)
	require.Equal(t, "project_detail.html", name)
	require.Equal(t, "Quiet Rooms", data["project"].(*db.Project).Title)

	w = srv.do(http.MethodGet, "/admin/projects/"+id+"/edit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	_, data = srv.html.lastRendered(t)
	require.Equal(t, "https://example.com/1.jpg", data["gallery"])

	w = srv.do(http.MethodDelete, "/admin/api/projects/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodDelete, "/admin/api/projects/"+id, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderRejectsPartialList(t *testing.T) {
	bundle := setupHandlerBundle(t, 0)
	_, err := bundle.Projects.SeedDefaults()
	require.NoError(t, err)
	srv := newTestServer(t, bundle, Options{}, true)

	projects, err := bundle.Projects.List()
	require.NoError(t, err)
	require.Greater(t, len(projects), 1)

	w := srv.doJSON(t, http.MethodPost, "/admin/api/projects/reorder", map[string]any{"ids": []string{projects[0].ID}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	ids := make([]string, 0, len(projects))
	for i := len(projects) - 1; i >= 0; i-- {
		ids = append(ids, projects[i].ID)
	}
	w = srv.doJSON(t, http.MethodPost, "/admin/api/projects/reorder", map[string]any{"ids": ids})
	require.Equal(t, http.StatusOK, w.Code)

	reordered, err := bundle.Projects.List()
	require.NoError(t, err)
	require.Equal(t, projects[len(projects)-1].ID, reordered[0].ID)
}

func TestWriteOverQuotaReturns413(t *testing.T) {
	bundle := setupHandlerBundle(t, 6000)
	srv := newTestServer(t, bundle, Options{}, true)

	w := srv.doJSON(t, http.MethodPost, "/admin/api/projects", map[string]any{})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["project"].(map[string]any)["id"].(string)

	w = srv.doJSON(t, http.MethodPut, "/admin/api/projects/"+id, map[string]any{
		"title":       "Too Much",
		"description": strings.Repeat("x", 8000),
	})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Equal(t, quotaExceededMessage, decodeBody(t, w)["error"])

	project, err := bundle.Projects.Get(id)
	require.NoError(t, err)
	require.NotEqual(t, "Too Much", project.Title)
}

func TestUpdateThemeRejectsBadColor(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, true)

	w := srv.doJSON(t, http.MethodPut, "/admin/api/theme", map[string]any{
		"primaryColor": "white",
		"accentColor":  "#ff5a36",
		"headingFont":  "serif",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.doJSON(t, http.MethodPut, "/admin/api/theme", map[string]any{
		"primaryColor": "#FAFAFA",
		"accentColor":  "#ff5a36",
		"headingFont":  "sans",
		"siteName":     "Studio",
	})
	require.Equal(t, http.StatusOK, w.Code)
	theme := decodeBody(t, w)["theme"].(map[string]any)
	require.Equal(t, "#fafafa", theme["primaryColor"])
	require.NotContains(t, theme, "adminPasswordHash")
}

func TestUpdateSecurityRequiresCurrentPassword(t *testing.T) {
	bundle := setupHandlerBundle(t, 0)
	_, err := bundle.Auth.Bootstrap("admin", "correct-horse")
	require.NoError(t, err)
	srv := newTestServer(t, bundle, Options{}, true)

	w := srv.doJSON(t, http.MethodPut, "/admin/api/security", map[string]any{
		"currentPassword": "nope",
		"username":        "curator",
		"newPassword":     "battery-staple",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = srv.doJSON(t, http.MethodPut, "/admin/api/security", map[string]any{
		"currentPassword": "correct-horse",
		"username":        "curator",
		"newPassword":     "battery-staple",
	})
	require.Equal(t, http.StatusOK, w.Code)

	user, err := bundle.Auth.Verify("curator", "battery-staple")
	require.NoError(t, err)
	require.Equal(t, "curator", user)
}

func TestCreateNoticeValidatesInput(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, true)

	w := srv.doJSON(t, http.MethodPost, "/admin/api/notices", map[string]any{"title": "", "content": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	draft := false
	w = srv.doJSON(t, http.MethodPost, "/admin/api/notices", map[string]any{"title": "Hidden", "content": "draft", "published": draft})
	require.Equal(t, http.StatusCreated, w.Code)
	w = srv.doJSON(t, http.MethodPost, "/admin/api/notices", map[string]any{"title": "Open Studio", "content": "**Saturday**"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(http.MethodGet, "/notices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	_, data := srv.html.lastRendered(t)
	notices := data["notices"].([]db.Notice)
	require.Len(t, notices, 1)
	require.Equal(t, "Open Studio", notices[0].Title)
}

func TestUnknownProjectRendersNotFound(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, false)

	cases := map[string]string{
		"/project/missing": "프로젝트를 찾을 수 없습니다.",
		"/no/such/page":    "페이지를 찾을 수 없습니다.",
	}
	for target, message := range cases {
		w := srv.do(http.MethodGet, target, nil, "")
		require.Equal(t, http.StatusNotFound, w.Code, target)
		name, data := srv.html.lastRendered(t)
		require.Equal(t, "not_found.html", name)
		require.Equal(t, message, data["message"], target)
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes(), writer.FormDataContentType()
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadImageWritesOptimizedJPEG(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{
		Optimizer: imageopt.New(100, 80),
		UploadDir: dir,
		UploadURL: "/uploads",
	}, true)

	body, contentType := multipartBody(t, "image", "wide.png", encodePNG(t, 400, 200))
	w := srv.do(http.MethodPost, "/admin/api/upload", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody(t, w)
	fileURL := resp["url"].(string)
	require.True(t, strings.HasPrefix(fileURL, "/uploads/"), fileURL)
	require.True(t, strings.HasSuffix(fileURL, ".jpg"), fileURL)

	meta := resp["image"].(map[string]any)
	require.EqualValues(t, 100, meta["width"])
	require.EqualValues(t, 50, meta["height"])

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(fileURL, "/uploads/")))
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xD8}, stored[:2])

	body, contentType = multipartBody(t, "image", "inline.png", encodePNG(t, 20, 20))
	w = srv.do(http.MethodPost, "/admin/api/upload?inline=1", body, contentType)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(decodeBody(t, w)["url"].(string), "data:image/jpeg;base64,"))
}

func TestUploadImageRejectsGarbage(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{UploadDir: t.TempDir()}, true)

	body, contentType := multipartBody(t, "image", "notes.png", []byte("definitely not an image"))
	w := srv.do(http.MethodPost, "/admin/api/upload", body, contentType)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPost, "/admin/api/upload", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImageTooLarge(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{UploadDir: t.TempDir(), MaxUploadBytes: 1}, true)

	body, contentType := multipartBody(t, "image", "huge.png", bytes.Repeat([]byte{0x89}, 2<<20))
	w := srv.do(http.MethodPost, "/admin/api/upload", body, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Equal(t, imageTooLargeMessage, decodeBody(t, w)["error"])

	optimizer := imageopt.New(100, 80)
	optimizer.MaxPixels = 30 * 30
	srv = newTestServer(t, setupHandlerBundle(t, 0), Options{UploadDir: t.TempDir(), Optimizer: optimizer}, true)
	body, contentType = multipartBody(t, "image", "wide.png", encodePNG(t, 40, 40))
	w = srv.do(http.MethodPost, "/admin/api/upload", body, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImportSnapshotTooLarge(t *testing.T) {
	previous := maxSnapshotBytes
	maxSnapshotBytes = 64
	t.Cleanup(func() { maxSnapshotBytes = previous })

	bundle := setupHandlerBundle(t, 0)
	srv := newTestServer(t, bundle, Options{}, true)

	payload := []byte(`{"version":1,"projects":[],"notices":[],"seo":{"metaTitle":"` + strings.Repeat("x", 128) + `"}}`)
	w := srv.do(http.MethodPost, "/admin/api/import", payload, "application/json")
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	body, contentType := multipartBody(t, "file", "backup.json", payload)
	w = srv.do(http.MethodPost, "/admin/api/import", body, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

type blockingWriter struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	busy    bool
}

func (w *blockingWriter) GenerateDescription(ctx context.Context, title string) (string, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return "", service.ErrGenerationInProgress
	}
	w.busy = true
	w.mu.Unlock()

	close(w.started)
	<-w.release

	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
	return "A study of light on " + title + ".", nil
}

func (w *blockingWriter) GenerateBiography(context.Context, string) (string, error) {
	return "", service.ErrGenerationEmpty
}

func TestGenerateDescriptionRejectsConcurrentCalls(t *testing.T) {
	writer := &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{Writer: writer, AIEnabled: true}, true)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- srv.doJSON(t, http.MethodPost, "/admin/api/ai/description", map[string]any{"title": "Harbour"})
	}()
	<-writer.started

	w := srv.doJSON(t, http.MethodPost, "/admin/api/ai/description", map[string]any{"title": "Harbour"})
	require.Equal(t, http.StatusConflict, w.Code)

	close(writer.release)
	w = <-first
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "A study of light on Harbour.", decodeBody(t, w)["text"])
}

func TestGenerateDescriptionWithoutWriter(t *testing.T) {
	srv := newTestServer(t, setupHandlerBundle(t, 0), Options{}, true)

	w := srv.doJSON(t, http.MethodPost, "/admin/api/ai/description", map[string]any{"title": "Harbour"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportImportRoundTrip(t *testing.T) {
	source := setupHandlerBundle(t, 0)
	_, err := source.Projects.SeedDefaults()
	require.NoError(t, err)
	published := true
	_, err = source.Notices.Create(service.NoticeInput{Title: "Moved", Content: "New studio address.", Published: &published})
	require.NoError(t, err)
	exporter := newTestServer(t, source, Options{}, true)

	w := exporter.do(http.MethodGet, "/admin/api/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	exported := w.Body.Bytes()

	target := setupHandlerBundle(t, 0)
	importer := newTestServer(t, target, Options{}, true)

	w = importer.do(http.MethodPost, "/admin/api/import", []byte("{not json"), "application/json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body, contentType := multipartBody(t, "file", "backup.json", exported)
	w = importer.do(http.MethodPost, "/admin/api/import", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	want, err := source.Projects.List()
	require.NoError(t, err)
	got, err := target.Projects.List()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID)
		require.Equal(t, want[i].Title, got[i].Title)
	}

	notices, err := target.Notices.List(true)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, "Moved", notices[0].Title)
}
