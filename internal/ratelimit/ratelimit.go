// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ratelimit implements fixed-window request counters on the shared
// cache, so limits hold across processes when the cache is Redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mauricehans/moto/internal/cache"
)

// Rule allows Limit requests per Window. A zero Limit disables the rule.
type Rule struct {
	Limit  int
	Window time.Duration
}

var units = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseRule parses "N/unit" with unit one of s, m, h, d ("5/h"). An empty
// string or "off" yields a disabled rule.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "off" {
		return Rule{}, nil
	}
	count, unit, ok := strings.Cut(s, "/")
	if !ok {
		return Rule{}, fmt.Errorf("ratelimit: invalid rule %q", s)
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return Rule{}, fmt.Errorf("ratelimit: invalid count in rule %q", s)
	}
	window, ok := units[unit]
	if !ok {
		return Rule{}, fmt.Errorf("ratelimit: invalid unit in rule %q", s)
	}
	return Rule{Limit: n, Window: window}, nil
}

// MustParseRule is like ParseRule but panics on error.
func MustParseRule(s string) Rule {
	r, err := ParseRule(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Enabled reports whether the rule limits anything.
func (r Rule) Enabled() bool {
	return r.Limit > 0 && r.Window > 0
}

func (r Rule) String() string {
	if !r.Enabled() {
		return "off"
	}
	for _, u := range []string{"d", "h", "m", "s"} {
		if r.Window == units[u] {
			return fmt.Sprintf("%d/%s", r.Limit, u)
		}
	}
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	Count   int64
	ResetAt time.Time
}

// RetryAfter returns the time left in the current window, rounded up to a
// whole second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	left := d.ResetAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return (left + time.Second - 1).Truncate(time.Second)
}

// Limiter counts requests per scope and key.
type Limiter struct {
	store cache.Store
	now   func() time.Time
}

// New creates a Limiter on store.
func New(store cache.Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// WithClock returns a copy of l using now as its time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	return &Limiter{store: l.store, now: now}
}

// Key returns the cache key of the window containing t.
func Key(scope, key string, window time.Time) string {
	return "ratelimit:" + scope + ":" + key + ":" + strconv.FormatInt(window.Unix(), 10)
}

// Allow records one request for key under scope and reports whether it fits
// in the rule. The request that pushes the count past the limit is the first
// one rejected. Cache failures allow the request.
func (l *Limiter) Allow(ctx context.Context, scope, key string, rule Rule) Decision {
	if !rule.Enabled() || key == "" {
		return Decision{Allowed: true}
	}

	start := l.now().Truncate(rule.Window)
	reset := start.Add(rule.Window)

	n, err := l.store.Incr(ctx, Key(scope, strings.ToLower(key), start), rule.Window)
	if err != nil {
		slog.Error("ratelimit_store_failed", "scope", scope, "error", err)
		return Decision{Allowed: true, ResetAt: reset}
	}

	d := Decision{Allowed: n <= int64(rule.Limit), Count: n, ResetAt: reset}
	if !d.Allowed {
		slog.Warn("rate_limited", "scope", scope, "count", n, "limit", rule.Limit)
	}
	return d
}

// Now returns the limiter's current time.
func (l *Limiter) Now() time.Time {
	return l.now()
}
