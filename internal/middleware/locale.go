// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/auth"
	"github.com/mauricehans/moto/internal/i18n"
)

// Locale detects the user's preferred language from the Accept-Language
// header and sets it in the request context.
func Locale(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		lang := i18n.MatchLanguage(c.Request().Header.Get("Accept-Language"))
		ctx := i18n.WithLocale(c.Request().Context(), lang)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set("Content-Language", i18n.GetLocale(ctx))
		return next(c)
	}
}

// RequestID copies the ID set by echo's RequestID middleware into the
// request context.
func RequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			c.SetRequest(c.Request().WithContext(auth.SetRequestID(c.Request().Context(), id)))
		}
		return next(c)
	}
}
