// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies HS256 session-token pairs.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mauricehans/moto/internal/cache"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	blacklistPrefix = "token:blacklist:"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Pair is what clients receive after authenticating.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      cache.Store
	now        func() time.Time
}

// NewService creates a token service. Refresh tokens are single use; their
// IDs are remembered in store until they expire.
func NewService(secret string, accessTTL, refreshTTL time.Duration, store cache.Store) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateSecret returns a random hex secret for deployments without one.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Issue signs a fresh access and refresh token for userID.
func (s *Service) Issue(userID int64) (Pair, error) {
	access, err := s.sign(userID, TypeAccess, s.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.sign(userID, TypeRefresh, s.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (s *Service) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parse(raw, tokenType string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.TokenType != tokenType || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccess verifies an access token.
func (s *Service) ParseAccess(raw string) (*Claims, error) {
	return s.parse(raw, TypeAccess)
}

// Redeem verifies a refresh token and marks it used. A token can be redeemed
// once; the caller issues the replacement pair.
func (s *Service) Redeem(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.parse(raw, TypeRefresh)
	if err != nil {
		return nil, err
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	n, err := s.store.Incr(ctx, blacklistPrefix+claims.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to blacklist token: %w", err)
	}
	if n > 1 {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}
