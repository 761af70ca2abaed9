// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package metrics keeps named event counters for the credential recovery
// flows in the shared cache.
package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/mauricehans/moto/internal/cache"
)

// Counter names.
const (
	ResetRequests    = "pr_requests"
	ResetSuccess     = "pr_success"
	ResetFailures    = "pr_failures"
	EmailsSent       = "emails_sent"
	OTPRequests      = "otp_requests"
	OTPVerifications = "otp_verifications"
	OTPFailures      = "otp_failures"
)

// TTL is how long a counter lives after its first increment.
const TTL = 24 * time.Hour

var keys = map[string]string{
	ResetRequests:    "metrics:password_reset:requests",
	ResetSuccess:     "metrics:password_reset:success",
	ResetFailures:    "metrics:password_reset:failures",
	EmailsSent:       "metrics:password_reset:emails_sent",
	OTPRequests:      "metrics:otp:requests",
	OTPVerifications: "metrics:otp:verifications",
	OTPFailures:      "metrics:otp:failures",
}

// Names returns every counter name.
func Names() []string {
	return []string{
		ResetRequests, ResetSuccess, ResetFailures, EmailsSent,
		OTPRequests, OTPVerifications, OTPFailures,
	}
}

// Counters increments and reads the named counters.
type Counters struct {
	store cache.Store
}

// New creates Counters on store.
func New(store cache.Store) *Counters {
	return &Counters{store: store}
}

// Inc adds one to the named counter. Failures are logged, never returned.
func (c *Counters) Inc(ctx context.Context, name string) {
	key, ok := keys[name]
	if !ok {
		slog.Warn("metrics_unknown_counter", "name", name)
		return
	}
	if _, err := c.store.Incr(ctx, key, TTL); err != nil {
		slog.Warn("metrics_increment_failed", "name", name, "error", err)
	}
}

// Snapshot returns all counters; missing or unreadable ones are zero.
func (c *Counters) Snapshot(ctx context.Context) map[string]int64 {
	out := make(map[string]int64, len(keys))
	for _, name := range Names() {
		raw, ok, err := c.store.Get(ctx, keys[name])
		if err != nil {
			slog.Warn("metrics_read_failed", "name", name, "error", err)
		}
		if err != nil || !ok {
			out[name] = 0
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			n = 0
		}
		out[name] = n
	}
	return out
}
