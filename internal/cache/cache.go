// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package cache provides the shared key/value store used for one-time codes,
// rate-limit counters, metrics, token blacklists and catalog caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotInteger is returned by Incr when the stored value is not a number.
var ErrNotInteger = errors.New("cache: value is not an integer")

// Store is a key/value store with per-key expiry. A zero ttl means the key
// never expires.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key and reports whether a live key was removed. Of two
	// concurrent callers at most one observes true.
	Delete(ctx context.Context, key string) (bool, error)
	// Incr atomically increments key by one. The ttl is applied only when the
	// increment creates the key.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// GetJSON decodes the JSON value stored under key into v.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw), ttl)
}

// Open returns the store for backend ("memory" or "redis").
func Open(ctx context.Context, backend, redisURL string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		client, err := Connect(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("cache: ping redis: %w", err)
		}
		return NewRedis(client), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", backend)
	}
}
