// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package reset implements administrator password recovery through emailed
// links and one-time codes.
package reset

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/metrics"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/services/auth"
	"github.com/mauricehans/moto/internal/services/email"
	"github.com/mauricehans/moto/internal/services/token"
)

const otpKeyPrefix = "admin_otp:"

var (
	ErrEmailRequired     = errors.New("email required")
	ErrPasswordsRequired = errors.New("new password and confirmation required")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrInvalidLink       = errors.New("invalid or expired reset link")
	ErrMailDelivery      = errors.New("mail delivery failed")
	ErrOTPFieldsRequired = errors.New("email, code and new password required")
	ErrInvalidCode       = errors.New("invalid or expired code")
	ErrUserNotFound      = errors.New("user not found")
)

type Config struct {
	FrontendURL       string
	TokenTTL          time.Duration
	OTPTTL            time.Duration
	MinPasswordLength int
}

type Service struct {
	repo      *repository.Repository
	store     cache.Store
	mailer    *email.Service
	tokens    *token.Service
	metrics   *metrics.Counters
	generator *TokenGenerator
	config    Config
}

func NewService(
	repo *repository.Repository,
	store cache.Store,
	mailer *email.Service,
	tokens *token.Service,
	counters *metrics.Counters,
	generator *TokenGenerator,
	cfg Config,
) *Service {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 8
	}
	return &Service{
		repo:      repo,
		store:     store,
		mailer:    mailer,
		tokens:    tokens,
		metrics:   counters,
		generator: generator,
		config:    cfg,
	}
}

// MinPasswordLength is the shortest accepted new password.
func (s *Service) MinPasswordLength() int {
	return s.config.MinPasswordLength
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ResetURL builds the frontend link for a reset token.
func (s *Service) ResetURL(uid, tok string) string {
	return fmt.Sprintf("%s/admin/password-reset/confirm/%s/%s/",
		strings.TrimRight(s.config.FrontendURL, "/"), uid, tok)
}

// RequestReset mails a reset link when addr belongs to an active superuser.
// Unknown addresses succeed silently.
func (s *Service) RequestReset(ctx context.Context, addr string) error {
	s.metrics.Inc(ctx, metrics.ResetRequests)

	addr = normalizeEmail(addr)
	if addr == "" {
		s.metrics.Inc(ctx, metrics.ResetFailures)
		return ErrEmailRequired
	}
	masked := email.MaskEmail(addr)

	user, err := s.repo.GetActiveSuperuserByEmail(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("password_reset_unknown_email", "email", masked)
		return nil
	}
	if err != nil {
		s.metrics.Inc(ctx, metrics.ResetFailures)
		return fmt.Errorf("failed to look up user: %w", err)
	}

	link := s.ResetURL(EncodeUID(user.ID), s.generator.Make(user))
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, link, s.config.TokenTTL); err != nil {
		s.metrics.Inc(ctx, metrics.ResetFailures)
		slog.Error("password_reset_mail_failed",
			"email", masked, "class", email.Classify(err), "error", err)
		return fmt.Errorf("%w: %w", ErrMailDelivery, err)
	}

	s.metrics.Inc(ctx, metrics.EmailsSent)
	slog.Info("password_reset_requested", "user_id", user.ID, "email", masked)
	return nil
}

// ConfirmReset sets a new password using a link from RequestReset.
func (s *Service) ConfirmReset(ctx context.Context, uid, tok, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return ErrPasswordsRequired
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(newPassword) < s.config.MinPasswordLength {
		return ErrPasswordTooShort
	}

	id, ok := DecodeUID(uid)
	if !ok {
		slog.Warn("password_reset_confirm_failed", "reason", "bad_uid")
		return ErrInvalidLink
	}
	user, err := s.repo.GetActiveSuperuserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("password_reset_confirm_failed", "reason", "user_not_found")
		return ErrInvalidLink
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !s.generator.Check(user, tok) {
		slog.Warn("password_reset_confirm_failed", "reason", "bad_token", "user_id", user.ID)
		return ErrInvalidLink
	}

	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	s.metrics.Inc(ctx, metrics.ResetSuccess)
	slog.Info("password_reset_completed", "user_id", user.ID)
	return nil
}

// RequestOTP mails a fresh one-time code to an active superuser, replacing
// any earlier code. The outcome is not reported to the caller.
func (s *Service) RequestOTP(ctx context.Context, addr string) error {
	s.metrics.Inc(ctx, metrics.OTPRequests)

	addr = normalizeEmail(addr)
	if addr == "" {
		return ErrEmailRequired
	}
	masked := email.MaskEmail(addr)

	user, err := s.repo.GetActiveSuperuserByEmail(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("otp_unknown_email", "email", masked)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, otpKeyPrefix+addr, code, s.config.OTPTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Username, code, s.config.OTPTTL); err != nil {
		slog.Error("otp_mail_failed", "email", masked, "class", email.Classify(err), "error", err)
		return nil
	}
	s.metrics.Inc(ctx, metrics.EmailsSent)
	slog.Info("otp_issued", "user_id", user.ID, "email", masked)
	return nil
}

// ConfirmOTP consumes a one-time code, sets the new password and signs the
// user in.
func (s *Service) ConfirmOTP(ctx context.Context, addr, code, newPassword string) (token.Pair, error) {
	addr = normalizeEmail(addr)
	code = strings.TrimSpace(code)

	if addr == "" || code == "" || newPassword == "" {
		s.metrics.Inc(ctx, metrics.OTPFailures)
		return token.Pair{}, ErrOTPFieldsRequired
	}
	if utf8.RuneCountInString(newPassword) < s.config.MinPasswordLength {
		s.metrics.Inc(ctx, metrics.OTPFailures)
		return token.Pair{}, ErrPasswordTooShort
	}

	key := otpKeyPrefix + addr
	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to read code: %w", err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		s.metrics.Inc(ctx, metrics.OTPFailures)
		slog.Warn("otp_confirm_failed", "email", email.MaskEmail(addr), "reason", "bad_code")
		return token.Pair{}, ErrInvalidCode
	}

	user, err := s.repo.GetActiveSuperuserByEmail(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.Inc(ctx, metrics.OTPFailures)
		return token.Pair{}, ErrUserNotFound
	}
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to look up user: %w", err)
	}

	// Only the caller that removes the code may use it.
	consumed, err := s.store.Delete(ctx, key)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to consume code: %w", err)
	}
	if !consumed {
		s.metrics.Inc(ctx, metrics.OTPFailures)
		return token.Pair{}, ErrInvalidCode
	}

	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return token.Pair{}, err
	}
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return token.Pair{}, err
	}

	s.metrics.Inc(ctx, metrics.OTPVerifications)
	s.metrics.Inc(ctx, metrics.ResetSuccess)
	slog.Info("otp_verified", "user_id", user.ID)
	return pair, nil
}

func (s *Service) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GenerateCode returns a random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
