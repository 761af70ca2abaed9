// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/metrics"
	"github.com/mauricehans/moto/internal/middleware"
	"github.com/mauricehans/moto/internal/ratelimit"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/auth"
	"github.com/mauricehans/moto/internal/services/catalog"
	"github.com/mauricehans/moto/internal/services/reset"
	"github.com/mauricehans/moto/internal/services/token"
)

// Rules are the rate limits applied to submitted identifiers. Per-IP limits
// are applied by middleware before the handlers run.
type Rules struct {
	LoginIdentifier ratelimit.Rule
	ResetEmail      ratelimit.Rule
	OTPEmail        ratelimit.Rule
}

// Deps are the services the handlers depend on.
type Deps struct {
	Repo    *repository.Repository
	Auth    *auth.Service
	Tokens  *token.Service
	Reset   *reset.Service
	Catalog *catalog.Service
	Metrics *metrics.Counters
	Limiter *ratelimit.Limiter
	Rules   Rules
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo    *repository.Repository
	auth    *auth.Service
	tokens  *token.Service
	reset   *reset.Service
	catalog *catalog.Service
	metrics *metrics.Counters
	limiter *ratelimit.Limiter
	rules   Rules
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	return &Handlers{
		repo:    d.Repo,
		auth:    d.Auth,
		tokens:  d.Tokens,
		reset:   d.Reset,
		catalog: d.Catalog,
		metrics: d.Metrics,
		limiter: d.Limiter,
		rules:   d.Rules,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Agde Moto API is running",
	})
}

// Status lists the entry points of the API.
func (h *Handlers) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"api_status": "active",
		"endpoints": map[string]string{
			"motorcycles": "/api/v1/motorcycles",
			"parts":       "/api/v1/parts",
			"blog":        "/api/v1/blog/posts",
			"garage":      "/api/v1/garage/settings",
			"admin":       "/admin",
		},
	})
}

// limit counts one request for key under scope and returns the 429 error
// once rule is exceeded.
func (h *Handlers) limit(c echo.Context, scope, key string, rule ratelimit.Rule) error {
	d := h.limiter.Allow(c.Request().Context(), scope, key, rule)
	if d.Allowed {
		return nil
	}
	return middleware.TooManyRequests(c, d, h.limiter.Now())
}
