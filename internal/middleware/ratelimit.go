// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/i18n"
	"github.com/mauricehans/moto/internal/ratelimit"
)

// TooManyRequests builds the 429 error for a rejected decision and sets the
// Retry-After header.
func TooManyRequests(c echo.Context, d ratelimit.Decision, now time.Time) error {
	secs := int(d.RetryAfter(now) / time.Second)
	if secs < 1 {
		secs = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return echo.NewHTTPError(http.StatusTooManyRequests, i18n.T(c.Request().Context(), "error.rate_limited"))
}

// RateLimit throttles requests per client IP under scope. A disabled rule
// lets every request through.
func RateLimit(l *ratelimit.Limiter, scope string, rule ratelimit.Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !rule.Enabled() {
			return next
		}
		return func(c echo.Context) error {
			d := l.Allow(c.Request().Context(), scope, c.RealIP(), rule)
			if !d.Allowed {
				return TooManyRequests(c, d, l.Now())
			}
			return next(c)
		}
	}
}
