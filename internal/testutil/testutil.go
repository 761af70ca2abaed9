// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mauricehans/moto/internal/database"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/email"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// UserOption customises a fixture user.
type UserOption func(*models.User)

// Staff marks the user as staff.
func Staff() UserOption { return func(u *models.User) { u.IsStaff = true } }

// Superuser marks the user as staff and superuser.
func Superuser() UserOption {
	return func(u *models.User) {
		u.IsStaff = true
		u.IsSuperuser = true
	}
}

// Inactive deactivates the user.
func Inactive() UserOption { return func(u *models.User) { u.IsActive = false } }

// WithEmail sets the user's email.
func WithEmail(email string) UserOption { return func(u *models.User) { u.Email = email } }

// NewTestUser creates an active user with the given password.
func NewTestUser(t *testing.T, repo *repository.Repository, username, password string, opts ...UserOption) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewJSONRequest creates a JSON request with an optional bearer token.
func NewJSONRequest(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

// Mailbox is an email.Sender that keeps every message.
type Mailbox struct {
	mu       sync.Mutex
	messages []email.Message
	Err      error
}

func (m *Mailbox) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return m.Err
}

// Count returns the number of messages sent.
func (m *Mailbox) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Last returns the most recent message.
func (m *Mailbox) Last(t *testing.T) email.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.messages, "no email sent")
	return m.messages[len(m.messages)-1]
}

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

// LastCode returns the one-time code in the most recent message.
func (m *Mailbox) LastCode(t *testing.T) string {
	t.Helper()
	code := sixDigits.FindString(m.Last(t).Text)
	require.NotEmpty(t, code, "no code in email")
	return code
}

// LastLink returns the first URL starting with prefix in the most recent
// message.
func (m *Mailbox) LastLink(t *testing.T, prefix string) string {
	t.Helper()
	text := m.Last(t).Text
	start := strings.Index(text, prefix)
	require.GreaterOrEqual(t, start, 0, "no link in email: %s", text)
	return strings.Fields(text[start:])[0]
}
