// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredentialsRequired = errors.New("credentials required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRequired       = errors.New("email and password required")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmailTaken          = errors.New("email already in use")
	ErrUsernameTaken       = errors.New("username already in use")
	ErrCannotDeleteSelf    = errors.New("cannot delete own account")
)

// dummyHash keeps failed lookups as slow as failed password checks.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

type Service struct {
	repo      *repository.Repository
	validator *PasswordValidator
	now       func() time.Time
}

func NewService(repo *repository.Repository, validator *PasswordValidator) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		now:       time.Now,
	}
}

// PasswordValidator returns the password validator for use in handlers
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.validator
}

// Fingerprint identifies a login attempt in logs without revealing the
// identifier or the client address.
func Fingerprint(clientIP, identifier string) string {
	sum := sha256.Sum256([]byte(clientIP + ":" + strings.ToLower(identifier)))
	return hex.EncodeToString(sum[:])[:12]
}

// Login resolves identifier as an email among active users (superuser, then
// staff, then lowest ID wins) and falls back to an exact username match.
// Unknown identities and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identifier, password, clientIP string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	fp := Fingerprint(clientIP, identifier)

	user, err := s.resolve(ctx, identifier)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		slog.Warn("login_failed", "fingerprint", fp, "reason", "user_not_found")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "fingerprint", fp, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		slog.Warn("last_login_update_failed", "user_id", user.ID, "error", err)
	}

	slog.Info("login_success", "user_id", user.ID, "fingerprint", fp)
	return user, nil
}

func (s *Service) resolve(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.repo.FindActiveUserByEmail(ctx, strings.ToLower(identifier))
	if err == nil || !errors.Is(err, repository.ErrNotFound) {
		return user, err
	}
	return s.repo.GetActiveUserByUsername(ctx, identifier)
}

// CreateAdminParams holds the parameters for creating a staff account.
type CreateAdminParams struct {
	Email     string
	Username  string // defaults to the local part of Email
	Password  string
	Superuser bool
}

// CreateAdmin creates an active staff account.
func (s *Service) CreateAdmin(ctx context.Context, p CreateAdminParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || p.Password == "" {
		return nil, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	username := strings.TrimSpace(p.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	if err := s.validator.Validate(p.Password, email, username); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}
	exists, err = s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  p.Superuser,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("admin_created", "user_id", user.ID, "superuser", user.IsSuperuser)
	return user, nil
}

// ListAdmins returns every staff account.
func (s *Service) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.repo.ListStaff(ctx)
}

// DeleteAdmin removes the staff account id on behalf of actorID.
func (s *Service) DeleteAdmin(ctx context.Context, actorID, id int64) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !user.IsStaff) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.ID == actorID {
		return ErrCannotDeleteSelf
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	slog.Info("admin_deleted", "user_id", id, "by", actorID)
	return nil
}

// EnsureSuperuser creates a superuser unless one already exists.
func (s *Service) EnsureSuperuser(ctx context.Context, email, password string) (bool, error) {
	count, err := s.repo.CountSuperusers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count superusers: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, CreateAdminParams{Email: email, Password: password, Superuser: true}); err != nil {
		return false, fmt.Errorf("failed to create superuser: %w", err)
	}
	return true, nil
}

// SetPassword hashes and stores a new password for userID.
func (s *Service) SetPassword(ctx context.Context, userID int64, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
