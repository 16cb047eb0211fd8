package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/site"
	"github.com/folio/internal/view"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectTitleMissing = errors.New("project title is required")
	ErrProjectURLInvalid   = errors.New("project link must be an http(s) url")
	ErrProjectOrderInvalid = errors.New("project order must list every project exactly once")
	ErrProjectDuplicateID  = errors.New("duplicate project id")
)

// ProjectService handles portfolio project CRUD.
type ProjectService struct {
	store *Storage
	now   func() time.Time
}

// ProjectInput represents the editable fields of a project.
type ProjectInput struct {
	Title       string
	Category    string
	Description string
	ImageURL    string
	Gallery     []string
	VideoURL    string
	Date        string
	Link        string
}

// NewProjectService creates a ProjectService instance.
func NewProjectService(store *Storage) *ProjectService {
	return &ProjectService{store: store, now: time.Now}
}

// NewProjectID returns a fresh time-ordered opaque id.
func NewProjectID() string {
	return ulid.Make().String()
}

// List returns all projects in display order.
func (s *ProjectService) List() ([]db.Project, error) {
	var items []db.Project
	if err := s.store.db.Order("position asc").Order("created_at desc").Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return items, nil
}

// Count returns the number of stored projects.
func (s *ProjectService) Count() (int64, error) {
	var count int64
	if err := s.store.db.Model(&db.Project{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}

// Get fetches a project by id.
func (s *ProjectService) Get(id string) (*db.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProjectNotFound
	}

	var item db.Project
	if err := s.store.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &item, nil
}

// Create inserts a project with placeholder values at the front of the list.
func (s *ProjectService) Create() (*db.Project, error) {
	item := db.Project{
		ID:          NewProjectID(),
		Title:       site.PlaceholderTitle,
		Category:    site.PlaceholderCategory,
		Description: site.PlaceholderDescription,
		ImageURL:    site.PlaceholderImageURL,
		Gallery:     []string{},
		Date:        site.DisplayMonth(s.now()),
	}

	err := s.store.Write(func(tx *gorm.DB) error {
		var minPosition int
		if err := tx.Model(&db.Project{}).Select("COALESCE(MIN(position), 1)").Scan(&minPosition).Error; err != nil {
			return err
		}
		item.Position = minPosition - 1
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &item, nil
}

// Update replaces the editable fields of an existing project.
func (s *ProjectService) Update(id string, input ProjectInput) (*db.Project, error) {
	input, err := normalizeProjectInput(input)
	if err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Title = input.Title
	item.Category = input.Category
	item.Description = input.Description
	item.ImageURL = input.ImageURL
	item.Gallery = input.Gallery
	item.VideoURL = input.VideoURL
	item.Date = input.Date
	item.Link = input.Link

	if err := s.store.Write(func(tx *gorm.DB) error {
		return tx.Save(item).Error
	}); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return item, nil
}

// Delete removes a project. Nothing references projects, so nothing cascades.
func (s *ProjectService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.store.Write(func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&db.Project{}).Error
	}); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Reorder assigns positions 0..n-1 following ids.
func (s *ProjectService) Reorder(ids []string) error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	if len(ids) != len(existing) {
		return ErrProjectOrderInvalid
	}

	known := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		known[item.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return ErrProjectOrderInvalid
		}
		if _, dup := seen[id]; dup {
			return ErrProjectOrderInvalid
		}
		seen[id] = struct{}{}
	}

	return s.store.Write(func(tx *gorm.DB) error {
		for index, id := range ids {
			if err := tx.Model(&db.Project{}).Where("id = ?", id).Update("position", index).Error; err != nil {
				return fmt.Errorf("reorder projects: %w", err)
			}
		}
		return nil
	})
}

// ReplaceAll swaps the whole collection for items, keeping their order.
// Missing ids are generated.
func (s *ProjectService) ReplaceAll(items []db.Project) error {
	return s.store.Write(func(tx *gorm.DB) error {
		return replaceProjects(tx, items)
	})
}

// SeedDefaults inserts the built-in projects when the table is empty.
func (s *ProjectService) SeedDefaults() (bool, error) {
	count, err := s.Count()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := s.ReplaceAll(defaultProjects()); err != nil {
		return false, err
	}
	return true, nil
}

func replaceProjects(tx *gorm.DB, items []db.Project) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.Project{}).Error; err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for index, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			item.ID = NewProjectID()
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s", ErrProjectDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
		if item.Gallery == nil {
			item.Gallery = []string{}
		}
		item.Position = index
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("insert project %s: %w", item.ID, err)
		}
	}
	return nil
}

func defaultProjects() []db.Project {
	seeds := site.DefaultProjects()
	items := make([]db.Project, 0, len(seeds))
	for _, seed := range seeds {
		items = append(items, db.Project{
			ID:          NewProjectID(),
			Title:       seed.Title,
			Category:    seed.Category,
			Description: seed.Description,
			ImageURL:    seed.ImageURL,
			Gallery:     []string{},
			Date:        seed.Date,
		})
	}
	return items
}

func normalizeProjectInput(input ProjectInput) (ProjectInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.VideoURL = view.NormalizeVideoURL(strings.TrimSpace(input.VideoURL))
	input.Date = strings.TrimSpace(input.Date)
	input.Link = strings.TrimSpace(input.Link)

	if input.Title == "" {
		return input, ErrProjectTitleMissing
	}
	for _, link := range []string{input.Link, input.VideoURL} {
		if link != "" && !isHTTPURL(link) {
			return input, fmt.Errorf("%w: %q", ErrProjectURLInvalid, link)
		}
	}

	gallery := make([]string, 0, len(input.Gallery))
	for _, image := range input.Gallery {
		if trimmed := strings.TrimSpace(image); trimmed != "" {
			gallery = append(gallery, trimmed)
		}
	}
	input.Gallery = gallery
	return input, nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
