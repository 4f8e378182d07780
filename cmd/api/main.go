// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solifin/internal/config"
	"solifin/internal/db"
	"solifin/internal/db/migrations"
	"solifin/internal/interfaces"
	"solifin/internal/logging"
	"solifin/internal/routes"
	"solifin/internal/services"
	"solifin/internal/storage"
)

// @title SOLIFIN Publications API
// @version 1.0
// @description Owner page, publication submission and moderation for advertisements, job offers and business opportunities.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.CreateDatabaseIfNotExists(ctx, cfg.DatabaseURL, logger); err != nil {
		logger.Error("failed to ensure database exists", logging.Err(err))
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", logging.Err(err))
		os.Exit(1)
	}
	defer database.Close()

	if err := migrations.RunMigrations(ctx, database.DB, migrations.Files, logger); err != nil {
		logger.Error("failed to run migrations", logging.Err(err))
		os.Exit(1)
	}

	s3Config, err := config.NewS3Config(ctx)
	if err != nil {
		logger.Error("failed to configure S3", logging.Err(err))
		os.Exit(1)
	}

	var sender services.EmailSender
	if cfg.SMTP.Enabled() {
		sender = services.NewSMTPSender(cfg.SMTP)
	} else {
		logger.Warn("SMTP not configured, moderation decisions will only be logged")
	}
	var notifier interfaces.ModerationNotifier = services.NewModerationNotifier(sender, logger)

	router := routes.SetupRoutes(database.DB, cfg, routes.Deps{
		Store:    storage.NewS3Store(s3Config),
		Notifier: notifier,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", logging.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	// Give server 5 seconds to finish current requests
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", logging.Err(err))
		os.Exit(1)
	}

	logger.Info("server exiting")
}
