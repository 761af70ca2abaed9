// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/i18n"
	"github.com/mauricehans/moto/internal/services/reset"
)

// EmailRequest is the body of the reset and OTP requests.
type EmailRequest struct {
	Email string `json:"email"`
}

// ConfirmResetRequest is the body of ConfirmReset.
type ConfirmResetRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ConfirmOTPRequest is the body of ConfirmOTP.
type ConfirmOTPRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// OTPConfirmResponse signs the user in after a successful OTP reset.
type OTPConfirmResponse struct {
	Message string `json:"message"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func fieldError(c echo.Context, text string, details map[string]string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: text, Details: details})
}

// passwordError renders the password field errors shared by both reset
// flows. It reports false for errors it does not handle.
func (h *Handlers) passwordError(c echo.Context, err error) (bool, error) {
	ctx := c.Request().Context()
	switch {
	case errors.Is(err, reset.ErrPasswordMismatch):
		return true, fieldError(c, i18n.T(ctx, "error.password_mismatch"),
			map[string]string{"confirm_password": "mismatch"})
	case errors.Is(err, reset.ErrPasswordTooShort):
		return true, fieldError(c,
			i18n.TData(ctx, "error.password_too_short", map[string]any{"Min": h.reset.MinPasswordLength()}),
			map[string]string{"new_password": "min_length"})
	}
	return false, nil
}

// RequestReset mails a reset link to an administrator. The response does not
// reveal whether the address belongs to an account.
func (h *Handlers) RequestReset(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	addr := strings.TrimSpace(req.Email)
	if err := h.limit(c, "reset_email", addr, h.rules.ResetEmail); err != nil {
		return err
	}

	err := h.reset.RequestReset(c.Request().Context(), addr)
	switch {
	case errors.Is(err, reset.ErrEmailRequired):
		return fieldError(c, i18n.T(c.Request().Context(), "error.email_required"),
			map[string]string{"email": "required"})
	case errors.Is(err, reset.ErrMailDelivery):
		return fail(c, http.StatusInternalServerError, "error.mail_delivery")
	case err != nil:
		return internalError(c, "password_reset_request_error", err)
	}
	return message(c, "message.reset_sent_generic")
}

// ConfirmReset sets a new password from a reset link.
func (h *Handlers) ConfirmReset(c echo.Context) error {
	var req ConfirmResetRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}

	err := h.reset.ConfirmReset(c.Request().Context(), c.Param("uid"), c.Param("token"),
		req.NewPassword, req.ConfirmPassword)
	if err == nil {
		return message(c, "message.reset_done")
	}
	if handled, rerr := h.passwordError(c, err); handled {
		return rerr
	}
	switch {
	case errors.Is(err, reset.ErrPasswordsRequired):
		details := map[string]string{}
		if req.NewPassword == "" {
			details["new_password"] = "required"
		}
		if req.ConfirmPassword == "" {
			details["confirm_password"] = "required"
		}
		return fieldError(c, i18n.T(c.Request().Context(), "error.passwords_required"), details)
	case errors.Is(err, reset.ErrInvalidLink):
		return fail(c, http.StatusBadRequest, "error.invalid_link")
	default:
		return internalError(c, "password_reset_confirm_error", err)
	}
}

// RequestOTP mails a one-time code to an administrator. It answers the same
// way whether or not the account exists.
func (h *Handlers) RequestOTP(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}
	addr := strings.TrimSpace(req.Email)
	if err := h.limit(c, "otp_email", addr, h.rules.OTPEmail); err != nil {
		return err
	}

	err := h.reset.RequestOTP(c.Request().Context(), addr)
	switch {
	case errors.Is(err, reset.ErrEmailRequired):
		return fieldError(c, i18n.T(c.Request().Context(), "error.email_required"),
			map[string]string{"email": "required"})
	case err != nil:
		return internalError(c, "otp_request_error", err)
	}
	return message(c, "message.otp_sent")
}

// ConfirmOTP resets the password with a one-time code and returns a fresh
// token pair.
func (h *Handlers) ConfirmOTP(c echo.Context) error {
	var req ConfirmOTPRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "error.bad_request")
	}

	ctx := c.Request().Context()
	pair, err := h.reset.ConfirmOTP(ctx, req.Email, req.Code, req.NewPassword)
	if err == nil {
		return c.JSON(http.StatusOK, OTPConfirmResponse{
			Message: i18n.T(ctx, "message.otp_done"),
			Access:  pair.Access,
			Refresh: pair.Refresh,
		})
	}
	if handled, rerr := h.passwordError(c, err); handled {
		return rerr
	}
	switch {
	case errors.Is(err, reset.ErrOTPFieldsRequired):
		details := map[string]string{}
		for field, v := range map[string]string{"email": req.Email, "code": req.Code, "new_password": req.NewPassword} {
			if strings.TrimSpace(v) == "" {
				details[field] = "required"
			}
		}
		return fieldError(c, i18n.T(ctx, "error.otp_fields_required"), details)
	case errors.Is(err, reset.ErrInvalidCode):
		return fail(c, http.StatusBadRequest, "error.invalid_code")
	case errors.Is(err, reset.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "error.user_not_found")
	default:
		return internalError(c, "otp_confirm_error", err)
	}
}

// Metrics returns the password-reset and OTP counters.
func (h *Handlers) Metrics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.metrics.Snapshot(c.Request().Context()))
}
