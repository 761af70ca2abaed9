// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires the services into the HTTP API and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/config"
	"github.com/mauricehans/moto/internal/database"
	"github.com/mauricehans/moto/internal/handlers"
	"github.com/mauricehans/moto/internal/i18n"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/email"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"cache", cfg.Cache.Backend,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Cache
	store, err := cache.Open(ctx, cfg.Cache.Backend, cfg.Cache.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close cache", "error", closeErr)
		}
	}()

	// Mail
	sender, err := NewSender(&cfg.SMTP)
	if err != nil {
		return err
	}

	app, err := NewApp(cfg, repository.New(db), store, sender)
	if err != nil {
		return err
	}
	if err := bootstrapSuperuser(ctx, app); err != nil {
		return err
	}

	return startWithGracefulShutdown(New(app), cfg)
}

// NewSender returns an SMTP sender, or a sender writing to stderr when no
// SMTP host is configured.
func NewSender(cfg *config.SMTPConfig) (email.Sender, error) {
	if cfg.Host == "" {
		slog.Warn("no SMTP host configured, emails are written to stderr")
		return email.NewLogSender(os.Stderr), nil
	}
	sender, err := email.NewSMTPSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure SMTP: %w", err)
	}
	return sender, nil
}

// bootstrapSuperuser creates the configured superuser on an empty install.
func bootstrapSuperuser(ctx context.Context, app *App) error {
	addr, password := app.Config.Auth.AdminEmail, app.Config.Auth.AdminPassword
	if addr == "" || password == "" {
		return nil
	}
	created, err := app.Auth.EnsureSuperuser(ctx, addr, password)
	if err != nil {
		return err
	}
	if created {
		slog.Info("bootstrap_superuser_created", "email", email.MaskEmail(addr))
	}
	return nil
}

// New builds the echo instance serving app.
func New(app *App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, app)
	setupRoutes(e, app)
	return e
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
