// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/i18n"
	"github.com/mauricehans/moto/internal/services/catalog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse is the body of requests that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// fail writes a localized error body.
func fail(c echo.Context, code int, messageID string) error {
	return c.JSON(code, ErrorResponse{Error: i18n.T(c.Request().Context(), messageID)})
}

// invalid writes a 400 with field-level details.
func invalid(c echo.Context, details map[string]string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   i18n.T(c.Request().Context(), "error.validation"),
		Details: details,
	})
}

func message(c echo.Context, messageID string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: i18n.T(c.Request().Context(), messageID)})
}

// internalError logs err and hides it behind the generic message.
func internalError(c echo.Context, msg string, err error) error {
	slog.Error(msg, "error", err, "request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return fail(c, http.StatusInternalServerError, "error.internal")
}

// catalogError maps catalog service errors to responses.
func catalogError(c echo.Context, err error) error {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return invalid(c, verr.Fields)
	case errors.Is(err, catalog.ErrNotFound):
		return fail(c, http.StatusNotFound, "error.not_found")
	default:
		return internalError(c, "catalog_error", err)
	}
}

var statusMessages = map[int]string{
	http.StatusBadRequest:            "error.bad_request",
	http.StatusUnauthorized:          "error.unauthorized",
	http.StatusForbidden:             "error.forbidden",
	http.StatusNotFound:              "error.not_found",
	http.StatusMethodNotAllowed:      "error.method_not_allowed",
	http.StatusRequestEntityTooLarge: "error.payload_too_large",
	http.StatusTooManyRequests:       "error.rate_limited",
}

// ErrorHandler renders errors returned by handlers and middleware as JSON.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var text string

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		// Middleware in this module builds localized string messages; echo's
		// own errors carry English text that is replaced below.
		if msg, ok := he.Message.(string); ok && he.Internal == nil && !isFrameworkMessage(code, msg) {
			text = msg
		}
	}

	if code >= http.StatusInternalServerError {
		slog.Error("request_failed", "error", err, "path", c.Path())
		text = ""
	}
	if text == "" {
		id, ok := statusMessages[code]
		if !ok {
			id = "error.internal"
		}
		text = i18n.T(c.Request().Context(), id)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, ErrorResponse{Error: text})
	}
	if werr != nil {
		slog.Error("failed to write error response", "error", werr)
	}
}

func isFrameworkMessage(code int, msg string) bool {
	return msg == http.StatusText(code)
}
