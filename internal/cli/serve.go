package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/folio/internal/config"
	"github.com/folio/internal/handler"
	"github.com/folio/internal/imageopt"
	"github.com/folio/internal/router"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio site and admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	bundle, closeDB, err := openBundle(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := prepareState(bundle, cfg, logger); err != nil {
		return err
	}

	var mirror *service.Mirror
	if path := strings.TrimSpace(cfg.MirrorPath); path != "" {
		mirror = service.NewMirror(path, bundle.Snapshots.Export, logger.Named("mirror"))
		bundle.Storage.SetNotifier(mirror)
		mirror.Start()
		mirror.Notify()
		defer func() {
			if err := mirror.Close(); err != nil {
				logger.Warn("final mirror flush failed", zap.Error(err))
			}
		}()
	}

	writer := service.NewAIWriterService(service.AIConfig{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		BaseURL:  cfg.AIBaseURL,
	}, logger.Named("ai"))
	if !writer.Enabled() {
		logger.Info("no ai api key configured; ai drafting is disabled")
	}

	optimizer := imageopt.New(cfg.ImageMaxDimension, cfg.ImageQuality)
	optimizer.MaxInputBytes = cfg.MaxUploadBytes

	api := handler.NewAPI(bundle, handler.Options{
		Writer:         writer,
		AIEnabled:      writer.Enabled(),
		Optimizer:      optimizer,
		Logger:         logger.Named("http"),
		UploadDir:      cfg.UploadDir,
		UploadURL:      cfg.UploadURLPath,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	if cfg.UsesDefaultSessionSecret() {
		logger.Warn("using the built-in session secret; set FOLIO_SESSION_SECRET in production")
	}
	engine, err := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		UploadDir:     cfg.UploadDir,
		UploadURL:     cfg.UploadURLPath,
		SecureCookie:  cfg.SecureCookie,
		Logger:        logger.Named("http"),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// prepareState 在空库时依次尝试镜像恢复与内置示例，然后写入初始管理员。
func prepareState(bundle *service.Bundle, cfg config.AppConfig, logger *zap.Logger) error {
	if _, err := bundle.Snapshots.RestoreFromFile(cfg.MirrorPath); err != nil {
		logger.Warn("mirror restore skipped", zap.String("path", cfg.MirrorPath), zap.Error(err))
	}

	seeded, err := bundle.Projects.SeedDefaults()
	if err != nil {
		return fmt.Errorf("seeding projects: %w", err)
	}
	if seeded {
		logger.Info("seeded default projects")
	}

	if _, err := bundle.Auth.Bootstrap(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}
	return nil
}
