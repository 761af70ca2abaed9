// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/config"
	"github.com/mauricehans/moto/internal/handlers"
	"github.com/mauricehans/moto/internal/metrics"
	"github.com/mauricehans/moto/internal/ratelimit"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/auth"
	"github.com/mauricehans/moto/internal/services/catalog"
	"github.com/mauricehans/moto/internal/services/email"
	"github.com/mauricehans/moto/internal/services/reset"
	"github.com/mauricehans/moto/internal/services/token"
)

// RateLimits are the parsed rate-limit rules.
type RateLimits struct {
	LoginIP        ratelimit.Rule
	ResetIP        ratelimit.Rule
	ResetConfirmIP ratelimit.Rule
	OTPIP          ratelimit.Rule
	OTPConfirmIP   ratelimit.Rule
	handlers.Rules
}

// ParseRateLimits parses every rule of cfg.
func ParseRateLimits(cfg config.RateLimitConfig) (RateLimits, error) {
	var (
		limits RateLimits
		err    error
	)
	for _, r := range []struct {
		name string
		src  string
		dst  *ratelimit.Rule
	}{
		{"login-ip", cfg.LoginIP, &limits.LoginIP},
		{"login-identifier", cfg.LoginIdentifier, &limits.LoginIdentifier},
		{"reset-ip", cfg.ResetIP, &limits.ResetIP},
		{"reset-email", cfg.ResetEmail, &limits.ResetEmail},
		{"reset-confirm-ip", cfg.ResetConfirmIP, &limits.ResetConfirmIP},
		{"otp-ip", cfg.OTPIP, &limits.OTPIP},
		{"otp-email", cfg.OTPEmail, &limits.OTPEmail},
		{"otp-confirm-ip", cfg.OTPConfirmIP, &limits.OTPConfirmIP},
	} {
		if *r.dst, err = ratelimit.ParseRule(r.src); err != nil {
			return RateLimits{}, fmt.Errorf("ratelimit-%s: %w", r.name, err)
		}
	}
	return limits, nil
}

// App holds the services behind the HTTP API.
type App struct {
	Config  *config.Config
	Repo    *repository.Repository
	Store   cache.Store
	Auth    *auth.Service
	Tokens  *token.Service
	Reset   *reset.Service
	Catalog *catalog.Service
	Metrics *metrics.Counters
	Limiter *ratelimit.Limiter
	Limits  RateLimits
}

// NewApp wires the services. Without a configured JWT secret a random one is
// used, so tokens and reset links do not survive a restart.
func NewApp(cfg *config.Config, repo *repository.Repository, store cache.Store, sender email.Sender) (*App, error) {
	limits, err := ParseRateLimits(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = token.GenerateSecret(); err != nil {
			return nil, err
		}
		slog.Warn("no JWT secret configured, using a random one; tokens will not survive a restart")
	}

	tokens := token.NewService(secret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, store)
	counters := metrics.New(store)
	validator := auth.NewPasswordValidator(cfg.Auth.MinPasswordLength)

	return &App{
		Config: cfg,
		Repo:   repo,
		Store:  store,
		Auth:   auth.NewService(repo, validator),
		Tokens: tokens,
		Reset: reset.NewService(repo, store, email.NewService(sender), tokens, counters,
			reset.NewTokenGenerator(secret, cfg.Reset.TokenTTL),
			reset.Config{
				FrontendURL:       cfg.Reset.FrontendURL,
				TokenTTL:          cfg.Reset.TokenTTL,
				OTPTTL:            cfg.Reset.OTPTTL,
				MinPasswordLength: validator.MinLength,
			}),
		Catalog: catalog.NewService(repo, store),
		Metrics: counters,
		Limiter: ratelimit.New(store),
		Limits:  limits,
	}, nil
}

func (a *App) handlers() *handlers.Handlers {
	return handlers.New(handlers.Deps{
		Repo:    a.Repo,
		Auth:    a.Auth,
		Tokens:  a.Tokens,
		Reset:   a.Reset,
		Catalog: a.Catalog,
		Metrics: a.Metrics,
		Limiter: a.Limiter,
		Rules:   a.Limits.Rules,
	})
}
