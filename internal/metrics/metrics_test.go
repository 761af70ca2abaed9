// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestSnapshot_Empty(t *testing.T) {
	c := metrics.New(cache.NewMemory())

	snap := c.Snapshot(context.Background())

	assert.Len(t, snap, 7)
	for _, name := range metrics.Names() {
		assert.Zero(t, snap[name], name)
	}
}

func TestInc(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	c := metrics.New(store)

	c.Inc(ctx, metrics.ResetRequests)
	c.Inc(ctx, metrics.ResetRequests)
	c.Inc(ctx, metrics.OTPFailures)
	c.Inc(ctx, "unknown")

	snap := c.Snapshot(ctx)
	assert.Equal(t, int64(2), snap[metrics.ResetRequests])
	assert.Equal(t, int64(1), snap[metrics.OTPFailures])
	assert.Zero(t, snap[metrics.EmailsSent])

	v, ok, _ := store.Get(ctx, "metrics:password_reset:requests")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestInc_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := cache.NewMemory(cache.WithClock(func() time.Time { return now }))
	c := metrics.New(store)

	c.Inc(ctx, metrics.EmailsSent)
	now = now.Add(metrics.TTL)

	assert.Zero(t, c.Snapshot(ctx)[metrics.EmailsSent])
}

type brokenStore struct{ cache.Store }

func (brokenStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("down")
}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("down")
}

func TestCounters_SwallowStoreErrors(t *testing.T) {
	c := metrics.New(brokenStore{})

	assert.NotPanics(t, func() { c.Inc(context.Background(), metrics.OTPRequests) })
	assert.Zero(t, c.Snapshot(context.Background())[metrics.OTPRequests])
}
