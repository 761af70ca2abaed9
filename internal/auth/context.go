// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"github.com/mauricehans/moto/internal/ctxkeys"
	"github.com/mauricehans/moto/internal/models"
)

// SetUser stores the authenticated user in the context.
func SetUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxkeys.User{}, user)
}

// GetUser returns the authenticated user from the context, or nil if not authenticated.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(ctxkeys.User{}).(*models.User); ok {
		return user
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return GetUser(ctx) != nil
}

// IsStaff reports whether the context user may manage the catalog.
func IsStaff(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// IsSuperadmin reports whether the context user may manage administrators.
func IsSuperadmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.IsStaff && u.IsSuperuser
}

// SetRequestID stores the request ID in the context.
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkeys.RequestID{}, id)
}

// GetRequestID returns the request ID, or "" when none was set.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkeys.RequestID{}).(string)
	return id
}
