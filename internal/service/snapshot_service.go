package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/site"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SnapshotVersion is written into every exported snapshot.
const SnapshotVersion = 1

// ErrSnapshotInvalid is returned when an imported snapshot cannot be used.
var ErrSnapshotInvalid = errors.New("snapshot is invalid")

// Snapshot is the full persisted state of a site.
type Snapshot struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Projects   []db.Project     `json:"projects"`
	Theme      site.ThemeConfig `json:"theme"`
	SEO        site.SEOConfig   `json:"seo"`
	Notices    []SnapshotNotice `json:"notices"`
}

// SnapshotNotice is the portable form of a notice.
type SnapshotNotice struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	Published bool   `json:"published"`
}

type rawSnapshot struct {
	Version  int              `json:"version"`
	Projects []db.Project     `json:"projects"`
	Theme    json.RawMessage  `json:"theme"`
	SEO      json.RawMessage  `json:"seo"`
	Notices  []SnapshotNotice `json:"notices"`
}

// ParseSnapshot decodes an exported snapshot. Theme and SEO objects are
// merged over the defaults so older exports gain newly added fields.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if raw.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrSnapshotInvalid, raw.Version)
	}

	snap := Snapshot{
		Version:  SnapshotVersion,
		Projects: raw.Projects,
		Theme:    site.DefaultTheme(),
		SEO:      site.DefaultSEO(),
		Notices:  raw.Notices,
	}
	if len(raw.Theme) > 0 && string(raw.Theme) != "null" {
		theme, err := site.DecodeTheme(raw.Theme)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
		}
		snap.Theme = theme
	}
	if len(raw.SEO) > 0 && string(raw.SEO) != "null" {
		seo, err := site.DecodeSEO(raw.SEO)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
		}
		snap.SEO = seo
	}
	return snap, nil
}

// SnapshotService exports, imports and resets the whole site state.
type SnapshotService struct {
	store    *Storage
	projects *ProjectService
	notices  *NoticeService
	settings *SettingsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSnapshotService wires a SnapshotService over the other services.
func NewSnapshotService(store *Storage, projects *ProjectService, notices *NoticeService, settings *SettingsService, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		store:    store,
		projects: projects,
		notices:  notices,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Export collects the current state.
func (s *SnapshotService) Export() (Snapshot, error) {
	projects, err := s.projects.List()
	if err != nil {
		return Snapshot{}, err
	}
	notices, err := s.notices.List(true)
	if err != nil {
		return Snapshot{}, err
	}
	theme, err := s.settings.LoadTheme()
	if err != nil {
		return Snapshot{}, err
	}
	seo, err := s.settings.LoadSEO()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.now().UTC(),
		Projects:   projects,
		Theme:      theme,
		SEO:        seo,
		Notices:    make([]SnapshotNotice, 0, len(notices)),
	}
	// notices are listed newest first; export oldest first so import keeps ids ascending
	for i := len(notices) - 1; i >= 0; i-- {
		n := notices[i]
		snap.Notices = append(snap.Notices, SnapshotNotice{Title: n.Title, Content: n.Content, Date: n.Date, Published: n.Published})
	}
	return snap, nil
}

// Import replaces the whole state with snap in a single transaction.
func (s *SnapshotService) Import(snap Snapshot) error {
	theme, _, err := site.MigrateTheme(snap.Theme)
	if err != nil {
		return err
	}
	theme = theme.Normalize()
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	theme.AdminPassword = ""
	if theme.AdminPasswordHash == "" {
		// 快照中没有凭据时保留当前管理员账号，避免导入后无法登录
		current, err := s.settings.LoadTheme()
		if err != nil {
			return err
		}
		theme.AdminUsername = current.AdminUsername
		theme.AdminPasswordHash = current.AdminPasswordHash
	}
	seo := snap.SEO.Normalize()

	themeJSON, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	seoJSON, err := json.Marshal(seo)
	if err != nil {
		return fmt.Errorf("encode seo: %w", err)
	}

	return s.store.Write(func(tx *gorm.DB) error {
		if err := replaceProjects(tx, snap.Projects); err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&db.Notice{}).Error; err != nil {
			return fmt.Errorf("clear notices: %w", err)
		}
		for _, n := range snap.Notices {
			notice := db.Notice{Title: n.Title, Content: n.Content, Date: n.Date, Published: n.Published}
			if err := tx.Create(&notice).Error; err != nil {
				return fmt.Errorf("insert notice: %w", err)
			}
			if !n.Published {
				if err := tx.Model(&notice).Update("published", false).Error; err != nil {
					return err
				}
			}
		}
		if err := upsertSetting(tx, db.SettingKeyTheme, string(themeJSON)); err != nil {
			return err
		}
		return upsertSetting(tx, db.SettingKeySEO, string(seoJSON))
	})
}

// Reset restores the built-in content while keeping the admin credentials.
func (s *SnapshotService) Reset() error {
	current, err := s.settings.LoadTheme()
	if err != nil {
		return err
	}
	theme := site.DefaultTheme()
	theme.AdminUsername = current.AdminUsername
	theme.AdminPasswordHash = current.AdminPasswordHash

	return s.Import(Snapshot{
		Version:  SnapshotVersion,
		Projects: defaultProjects(),
		Theme:    theme,
		SEO:      site.DefaultSEO(),
	})
}

// IsEmpty reports whether nothing has been persisted yet.
func (s *SnapshotService) IsEmpty() (bool, error) {
	for _, model := range []any{&db.Project{}, &db.Notice{}, &db.SystemSetting{}} {
		var count int64
		if err := s.store.db.Model(model).Count(&count).Error; err != nil {
			return false, fmt.Errorf("count state: %w", err)
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// RestoreFromFile imports the snapshot at path when the database is empty.
// A missing file is not an error.
func (s *SnapshotService) RestoreFromFile(path string) (bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return false, nil
	}
	empty, err := s.IsEmpty()
	if err != nil || !empty {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read mirror: %w", err)
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return false, err
	}
	if err := s.Import(snap); err != nil {
		return false, err
	}
	s.logger.Info("state restored from mirror", zap.String("path", path), zap.Int("projects", len(snap.Projects)))
	return true, nil
}
