package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/folio/internal/db"
	"gorm.io/gorm"
)

// ErrStorageQuotaExceeded 表示写入后持久化数据的体积超过配额，写入已回滚。
var ErrStorageQuotaExceeded = errors.New("storage quota exceeded")

// ChangeNotifier 在数据提交成功后收到通知，用于触发镜像写入。
type ChangeNotifier interface {
	Notify()
}

type noopNotifier struct{}

func (noopNotifier) Notify() {}

// Storage 是各个服务共享的持久化依赖：数据库、配额与变更通知。
type Storage struct {
	db       *gorm.DB
	quota    int64
	notifier ChangeNotifier
}

// NewStorage 构造 Storage。quota <= 0 表示不限制。
func NewStorage(gdb *gorm.DB, quota int64) *Storage {
	return &Storage{db: gdb, quota: quota, notifier: noopNotifier{}}
}

// DB 返回底层 gorm 实例。
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// Quota 返回配额字节数。
func (s *Storage) Quota() int64 {
	return s.quota
}

// SetNotifier 设置变更通知，nil 恢复为空实现。
func (s *Storage) SetNotifier(n ChangeNotifier) {
	if n == nil {
		s.notifier = noopNotifier{}
		return
	}
	s.notifier = n
}

// Write 在事务中执行 fn，提交前检查配额，成功提交后发出变更通知。
// 只拒绝让数据变大且超出配额的写入，已超额时删除等缩减操作仍可提交。
func (s *Storage) Write(fn func(tx *gorm.DB) error) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var before int64
		if s.quota > 0 {
			var err error
			if before, err = measureState(tx); err != nil {
				return err
			}
		}
		if err := fn(tx); err != nil {
			return err
		}
		if s.quota <= 0 {
			return nil
		}
		used, err := measureState(tx)
		if err != nil {
			return err
		}
		if used > s.quota && used > before {
			return fmt.Errorf("%w: %d of %d bytes", ErrStorageQuotaExceeded, used, s.quota)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.Notify()
	return nil
}

// Usage 返回当前持久化数据按 JSON 序列化后的字节数。
func (s *Storage) Usage() (int64, error) {
	return measureState(s.db)
}

func measureState(tx *gorm.DB) (int64, error) {
	var projects []db.Project
	if err := tx.Find(&projects).Error; err != nil {
		return 0, fmt.Errorf("measure projects: %w", err)
	}
	var notices []db.Notice
	if err := tx.Find(&notices).Error; err != nil {
		return 0, fmt.Errorf("measure notices: %w", err)
	}

	var total int64
	for _, value := range []any{projects, notices} {
		encoded, err := json.Marshal(value)
		if err != nil {
			return 0, fmt.Errorf("measure state: %w", err)
		}
		total += int64(len(encoded))
	}

	var settingsSize int64
	if err := tx.Model(&db.SystemSetting{}).
		Select("COALESCE(SUM(LENGTH(CAST(value AS BLOB))), 0)").
		Scan(&settingsSize).Error; err != nil {
		return 0, fmt.Errorf("measure settings: %w", err)
	}

	return total + settingsSize, nil
}
