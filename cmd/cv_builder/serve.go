package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/cv-builder/internal/browser"
	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/logging"
	"github.com/jonathan/cv-builder/internal/server"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/storage"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: "Starts the HTTP API for rendering and exporting CVs. Accounts and saved CVs are enabled when " +
		"database.url is set; exported files can be uploaded to S3 when s3.bucket is set.",
	RunE: runServe,
}

var (
	serveAddr      string
	serveNoMigrate bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&serveNoMigrate, "no-migrate", false, "Skip database migrations on startup")
	rootCmd.AddCommand(serveCmd)
}

// newCache returns the shared cache for saved CVs and revoked tokens.
func newCache(ctx context.Context, cfg *config.Config) (store.Cache, func() error, error) {
	if cfg.Redis.Addr == "" {
		return store.NewMemoryCache(), func() error { return nil }, nil
	}
	rc, err := store.NewRedisCache(ctx, store.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return nil, nil, err
	}
	return rc, rc.Close, nil
}

// newPrintSpool prefers the artifact bucket and falls back to a local directory.
func newPrintSpool(cfg *config.Config, artifacts *storage.S3) (browser.Spool, error) {
	if artifacts != nil {
		return artifacts, nil
	}
	return browser.NewDirSpool(cfg.Chrome.SpoolDir)
}

// pruneResets removes expired password reset tokens until ctx is done.
func pruneResets(ctx context.Context, database *db.DB, every time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := database.DeleteExpiredPasswordResets(ctx, now)
			if err != nil {
				logger.Warn(ctx, "failed to prune password resets", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "pruned password resets", "count", n)
			}
		}
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn(ctx, "failed to close cache", "error", err)
		}
	}()

	deps := server.Deps{Logger: logger}

	if cfg.Database.URL != "" {
		if !serveNoMigrate {
			if err := db.Migrate(ctx, cfg.Database.URL); err != nil {
				return err
			}
		}
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()

		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("auth configuration: %w", err)
		}
		passwords, err := config.NewPasswordConfig()
		if err != nil {
			return fmt.Errorf("auth configuration: %w", err)
		}
		tokens := server.NewJWTService(jwtCfg, cache)
		deps.Tokens = tokens
		deps.Auth = server.NewAuthService(database, passwords, tokens, server.LogNotifier{Logger: logger}, logger)
		deps.CVs = store.NewService(database, store.ServiceConfig{Cache: cache, CacheTTL: cfg.Cache.TTL, Logger: logger})
		deps.Ping = database.Ping
		go pruneResets(ctx, database, time.Hour, logger)
	} else {
		logger.Warn(ctx, "database.url not set, accounts and saved CVs are disabled")
	}

	artifacts, err := storage.New(ctx, storage.Config{
		Region:     cfg.S3.Region,
		Endpoint:   cfg.S3.Endpoint,
		AccessKey:  cfg.S3.AccessKey,
		SecretKey:  cfg.S3.SecretKey,
		Bucket:     cfg.S3.Bucket,
		PathStyle:  cfg.S3.PathStyle,
		PresignTTL: cfg.S3.PresignTTL,
	})
	switch {
	case err == nil:
		deps.Artifacts = artifacts
	case errors.Is(err, storage.ErrDisabled):
		artifacts = nil
	default:
		return err
	}

	spool, err := newPrintSpool(cfg, artifacts)
	if err != nil {
		return err
	}
	chrome := newChrome(cfg, spool, logger)
	deps.Exports = export.NewPipeline(chrome, chrome, nil, logger)
	deps.Exports.TextFont = cfg.PDF.FontFile

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		RateLimit:       ratelimit.FromSettings(cfg.RateLimit),
	}, deps)
	return srv.Run(ctx)
}
