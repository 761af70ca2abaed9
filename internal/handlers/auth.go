// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/auth"
	"github.com/mauricehans/moto/internal/services/token"
)

// LoginRequest is the request body of Login. Username may hold either a
// username or an email address.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if err := h.limit(c, "login_identifier", identifier, h.rules.LoginIdentifier); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.auth.Login(ctx, identifier, req.Password, c.RealIP())
	switch {
	case errors.Is(err, auth.ErrCredentialsRequired):
		return fail(c, http.StatusBadRequest, "error.credentials_required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "error.invalid_credentials")
	case err != nil:
		return internalError(c, "login_error", err)
	}

	pair, err := h.tokens.Issue(user.ID)
	if err != nil {
		return internalError(c, "token_issue_failed", err)
	}
	return c.JSON(http.StatusOK, pair)
}

// RefreshRequest is the request body of Refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh trades a refresh token for a new pair. Each refresh token is
// accepted once.
func (h *Handlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	if strings.TrimSpace(req.Refresh) == "" {
		return invalid(c, map[string]string{"refresh": "required"})
	}

	ctx := c.Request().Context()
	claims, err := h.tokens.Redeem(ctx, req.Refresh)
	switch {
	case errors.Is(err, token.ErrInvalidToken), errors.Is(err, token.ErrTokenRevoked):
		return fail(c, http.StatusUnauthorized, "error.invalid_token")
	case err != nil:
		return internalError(c, "token_redeem_failed", err)
	}

	user, err := h.repo.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !user.IsActive) {
		return fail(c, http.StatusUnauthorized, "error.invalid_token")
	}
	if err != nil {
		return internalError(c, "token_user_lookup_failed", err)
	}

	pair, err := h.tokens.Issue(user.ID)
	if err != nil {
		return internalError(c, "token_issue_failed", err)
	}
	return c.JSON(http.StatusOK, pair)
}
