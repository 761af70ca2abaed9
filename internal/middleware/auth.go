// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides echo middleware for authentication, locale
// selection and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/auth"
	"github.com/mauricehans/moto/internal/i18n"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/services/token"
)

// UserLoader is an interface for loading full user data
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	scheme, value, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

// LoadUser resolves a bearer access token to an active user and stores it in
// the request context. Requests without a valid token continue anonymously.
func LoadUser(tokens *token.Service, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				return next(c)
			}
			claims, err := tokens.ParseAccess(raw)
			if err != nil {
				return next(c)
			}
			user, err := users.GetUserByID(c.Request().Context(), claims.UserID)
			if err != nil || user == nil || !user.IsActive {
				return next(c)
			}
			c.SetRequest(c.Request().WithContext(auth.SetUser(c.Request().Context(), user)))
			return next(c)
		}
	}
}

func deny(c echo.Context, code int, messageID string) error {
	return echo.NewHTTPError(code, i18n.T(c.Request().Context(), messageID))
}

// RequireStaff rejects anonymous users with 401 and non-staff users with 403.
func RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if !auth.IsAuthenticated(ctx) {
			return deny(c, http.StatusUnauthorized, "error.unauthorized")
		}
		if !auth.IsStaff(ctx) {
			return deny(c, http.StatusForbidden, "error.forbidden")
		}
		return next(c)
	}
}

// RequireSuperadmin only admits users that are both staff and superuser.
func RequireSuperadmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if !auth.IsAuthenticated(ctx) {
			return deny(c, http.StatusUnauthorized, "error.unauthorized")
		}
		if !auth.IsSuperadmin(ctx) {
			return deny(c, http.StatusForbidden, "error.forbidden")
		}
		return next(c)
	}
}
