package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Bundle 汇总共享同一个 Storage 的服务，供 HTTP 处理器与命令行使用。
type Bundle struct {
	Storage   *Storage
	Projects  *ProjectService
	Notices   *NoticeService
	Settings  *SettingsService
	Auth      *AuthService
	Snapshots *SnapshotService
}

// NewBundle 基于数据库与配额构造全部服务。
func NewBundle(gdb *gorm.DB, quota int64, logger *zap.Logger) *Bundle {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := NewStorage(gdb, quota)
	settings := NewSettingsService(store, logger.Named("settings"))
	projects := NewProjectService(store)
	notices := NewNoticeService(store)
	return &Bundle{
		Storage:   store,
		Projects:  projects,
		Notices:   notices,
		Settings:  settings,
		Auth:      NewAuthService(settings, logger.Named("auth")),
		Snapshots: NewSnapshotService(store, projects, notices, settings, logger.Named("snapshot")),
	}
}
