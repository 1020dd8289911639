package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stomatrack/internal/config"
	"stomatrack/internal/imagestore"
	"stomatrack/internal/llm"
	"stomatrack/internal/notify"
	"stomatrack/internal/repository"
	"stomatrack/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting stomatrack...", zap.String("version", Version))

	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.MigrateDB(db, cfg.Database.Driver, logger); err != nil {
		return err
	}

	deps := server.Dependencies{
		DB:       db,
		Notifier: notify.Nop{},
		Images:   imagestore.Nop{},
	}

	// Without providers every AI-backed entry falls back to the default result.
	if len(cfg.AI.Providers) > 0 {
		multi, err := llm.NewMultiProvider(llm.MultiProviderConfig{
			Providers:   cfg.AI.Providers,
			MaxFailures: cfg.AI.MaxFailuresBeforeSwitch,
		}, logger)
		if err != nil {
			logger.Warn("AI providers unavailable, entries will use default analysis", zap.Error(err))
		} else {
			defer multi.Close()
			deps.Provider = multi
			deps.Models = multi
			logger.Info("AI providers initialized", zap.Int("provider_count", len(multi.GetProvidersInfo())))
		}
	} else {
		logger.Warn("No AI providers configured, entries will use default analysis")
	}

	if tg := cfg.Notifications.Telegram; tg.Enabled {
		notifier, err := notify.NewTelegramNotifier(tg.BotToken, tg.ChatID, logger)
		if err != nil {
			logger.Warn("Telegram notifier unavailable, high risk alerts disabled", zap.Error(err))
		} else {
			deps.Notifier = notifier
		}
	}

	if s3cfg := cfg.Images.S3; s3cfg.Enabled {
		store, err := imagestore.NewS3Store(ctx, imagestore.S3Config{
			Bucket:        s3cfg.Bucket,
			Region:        s3cfg.Region,
			Prefix:        s3cfg.Prefix,
			PublicBaseURL: s3cfg.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Warn("S3 image store unavailable, meal photos will not be archived", zap.Error(err))
		} else {
			deps.Images = store
		}
	}

	srv := server.NewServer(cfg, deps, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("Server exited")
	return nil
}
