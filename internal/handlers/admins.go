// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	ctxauth "github.com/mauricehans/moto/internal/auth"
	"github.com/mauricehans/moto/internal/i18n"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/services/auth"
)

// AdminResponse describes a staff account.
type AdminResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active"`
}

func newAdminResponse(u *models.User) AdminResponse {
	return AdminResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
	}
}

// CreateAdminRequest is the body of CreateAdmin.
type CreateAdminRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsSuperuser bool   `json:"is_superuser"`
}

var passwordCodeMessages = map[string]string{
	auth.CodeTooShort:        "error.password_too_short",
	auth.CodeEntirelyNumeric: "error.password_numeric",
	auth.CodeTooSimilar:      "error.password_similar",
}

// ListAdmins lists staff accounts.
func (h *Handlers) ListAdmins(c echo.Context) error {
	users, err := h.auth.ListAdmins(c.Request().Context())
	if err != nil {
		return internalError(c, "list_admins_failed", err)
	}
	admins := make([]AdminResponse, 0, len(users))
	for i := range users {
		admins = append(admins, newAdminResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"admins": admins})
}

// CreateAdmin creates a staff account.
func (h *Handlers) CreateAdmin(c echo.Context) error {
	var req CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}

	ctx := c.Request().Context()
	user, err := h.auth.CreateAdmin(ctx, auth.CreateAdminParams{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Superuser: req.IsSuperuser,
	})

	var perr *auth.PasswordValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, newAdminResponse(user))
	case errors.As(err, &perr):
		// Report the first failed check; details carry every code.
		first := perr.Errors[0].Code
		text := i18n.TData(ctx, passwordCodeMessages[first],
			map[string]any{"Min": h.auth.PasswordValidator().MinLength})
		return fieldError(c, text, map[string]string{"password": strings.Join(perr.Codes(), ",")})
	case errors.Is(err, auth.ErrEmailRequired):
		details := map[string]string{}
		if req.Email == "" {
			details["email"] = "required"
		}
		if req.Password == "" {
			details["password"] = "required"
		}
		return fieldError(c, i18n.T(ctx, "error.validation"), details)
	case errors.Is(err, auth.ErrInvalidEmail):
		return fieldError(c, i18n.T(ctx, "error.invalid_email"), map[string]string{"email": "invalid"})
	case errors.Is(err, auth.ErrEmailTaken):
		return fieldError(c, i18n.T(ctx, "error.email_taken"), map[string]string{"email": "taken"})
	case errors.Is(err, auth.ErrUsernameTaken):
		return fieldError(c, i18n.T(ctx, "error.username_taken"), map[string]string{"username": "taken"})
	default:
		return internalError(c, "create_admin_failed", err)
	}
}

// DeleteAdmin removes a staff account other than the caller's.
func (h *Handlers) DeleteAdmin(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusNotFound, "error.user_not_found")
	}

	ctx := c.Request().Context()
	actor := ctxauth.GetUser(ctx)
	err = h.auth.DeleteAdmin(ctx, actor.ID, id)
	switch {
	case errors.Is(err, auth.ErrCannotDeleteSelf):
		return fail(c, http.StatusBadRequest, "error.cannot_delete_self")
	case errors.Is(err, auth.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "error.user_not_found")
	case err != nil:
		return internalError(c, "delete_admin_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(ctx, "message.admin_deleted"),
	})
}
