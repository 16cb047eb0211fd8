// Package cli wires the folio commands: serve, export, import, optimize and config init.
package cli

import (
	"fmt"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/logging"
	"github.com/folio/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
}

// NewRootCommand 构造完整的命令树，每次调用返回独立实例。
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Portfolio site with a password-gated admin",
		Long: `folio serves a single-artist portfolio: a project gallery, biography,
contact page and studio notices, edited through a session-protected admin.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "folio.yaml", "config file path (missing file falls back to defaults and FOLIO_* env)")

	root.AddCommand(
		newServeCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newOptimizeCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

func (o *rootOptions) load() (config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, logger, nil
}

// openBundle 打开数据库并构造服务集合，返回的 close 函数负责释放连接。
func openBundle(cfg config.AppConfig, logger *zap.Logger) (*service.Bundle, func(), error) {
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database %s: %w", cfg.DatabasePath, err)
	}
	closeDB := func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("closing database", zap.Error(err))
		}
	}
	return service.NewBundle(gdb, cfg.StorageQuotaBytes, logger), closeDB, nil
}

