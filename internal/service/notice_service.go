package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrNoticeNotFound 在公告不存在时返回
	ErrNoticeNotFound = errors.New("notice not found")
	// ErrNoticeInvalidInput 在标题或内容缺失时返回
	ErrNoticeInvalidInput = errors.New("invalid notice input")
)

// NoticeService 维护工作室公告
type NoticeService struct {
	store *Storage
	now   func() time.Time
}

// NoticeInput 描述创建或更新公告时可设置的字段
// Published 使用指针判断是否显式传入
type NoticeInput struct {
	Title     string
	Content   string
	Date      string
	Published *bool
}

// NewNoticeService 构造 NoticeService
func NewNoticeService(store *Storage) *NoticeService {
	return &NoticeService{store: store, now: time.Now}
}

// List 返回公告，最新的在前；includeDrafts 为 false 时只返回已发布的
func (s *NoticeService) List(includeDrafts bool) ([]db.Notice, error) {
	query := s.store.db.Model(&db.Notice{})
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}

	var items []db.Notice
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return items, nil
}

// Get 根据主键获取公告
func (s *NoticeService) Get(id uint) (*db.Notice, error) {
	var item db.Notice
	if err := s.store.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, fmt.Errorf("get notice: %w", err)
	}
	return &item, nil
}

// Create 新建公告，未填写日期时使用当天
func (s *NoticeService) Create(input NoticeInput) (*db.Notice, error) {
	if err := validateNoticeInput(input); err != nil {
		return nil, err
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}

	notice := db.Notice{
		Title:     strings.TrimSpace(input.Title),
		Content:   strings.TrimSpace(input.Content),
		Date:      s.resolveDate(input.Date),
		Published: published,
	}

	if err := s.store.Write(func(tx *gorm.DB) error {
		// gorm 对 bool 零值使用 default:true，需要显式写入 false
		if err := tx.Create(&notice).Error; err != nil {
			return err
		}
		if !published {
			return tx.Model(&notice).Update("published", false).Error
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create notice: %w", err)
	}
	return &notice, nil
}

// Update 更新指定公告
func (s *NoticeService) Update(id uint, input NoticeInput) (*db.Notice, error) {
	if err := validateNoticeInput(input); err != nil {
		return nil, err
	}

	notice, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	notice.Title = strings.TrimSpace(input.Title)
	notice.Content = strings.TrimSpace(input.Content)
	notice.Date = s.resolveDate(input.Date)
	if input.Published != nil {
		notice.Published = *input.Published
	}

	if err := s.store.Write(func(tx *gorm.DB) error {
		return tx.Save(notice).Error
	}); err != nil {
		return nil, fmt.Errorf("update notice: %w", err)
	}
	return notice, nil
}

// Delete 删除指定公告
func (s *NoticeService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.store.Write(func(tx *gorm.DB) error {
		return tx.Unscoped().Delete(&db.Notice{}, id).Error
	}); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}

func (s *NoticeService) resolveDate(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return s.now().Format("2006.01.02")
}

func validateNoticeInput(input NoticeInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrNoticeInvalidInput)
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrNoticeInvalidInput)
	}
	return nil
}
