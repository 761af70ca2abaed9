// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cache_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mauricehans/moto/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// storeFactory returns a fresh store and a key namespace unique to the test.
type storeFactory func(t *testing.T) (cache.Store, string)

func memoryFactory(t *testing.T) (cache.Store, string) {
	s := cache.NewMemory()
	t.Cleanup(func() { _ = s.Close() })
	return s, "test:"
}

func redisFactory(t *testing.T) (cache.Store, string) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := cache.Open(context.Background(), "redis", url)
	require.NoError(t, err)
	ns := "moto-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		_ = s.DeletePrefix(context.Background(), ns)
		_ = s.Close()
	})
	return s, ns
}

func TestStores(t *testing.T) {
	factories := map[string]storeFactory{
		"memory": memoryFactory,
		"redis":  redisFactory,
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			runStoreSuite(t, factory)
		})
	}
}

func runStoreSuite(t *testing.T, factory storeFactory) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s, ns := factory(t)
		_, ok, err := s.Get(ctx, ns+"missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set get delete", func(t *testing.T) {
		s, ns := factory(t)
		require.NoError(t, s.Set(ctx, ns+"k", "v", time.Minute))

		v, ok, err := s.Get(ctx, ns+"k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)

		deleted, err := s.Delete(ctx, ns+"k")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = s.Delete(ctx, ns+"k")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("set replaces", func(t *testing.T) {
		s, ns := factory(t)
		require.NoError(t, s.Set(ctx, ns+"k", "old", time.Minute))
		require.NoError(t, s.Set(ctx, ns+"k", "new", time.Minute))

		v, _, err := s.Get(ctx, ns+"k")
		require.NoError(t, err)
		assert.Equal(t, "new", v)
	})

	t.Run("incr", func(t *testing.T) {
		s, ns := factory(t)
		for i := int64(1); i <= 3; i++ {
			n, err := s.Incr(ctx, ns+"counter", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}

		require.NoError(t, s.Set(ctx, ns+"text", "abc", time.Minute))
		_, err := s.Incr(ctx, ns+"text", time.Minute)
		assert.ErrorIs(t, err, cache.ErrNotInteger)
	})

	t.Run("concurrent incr", func(t *testing.T) {
		s, ns := factory(t)
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.Incr(ctx, ns+"c", time.Minute)
			}()
		}
		wg.Wait()

		v, _, err := s.Get(ctx, ns+"c")
		require.NoError(t, err)
		assert.Equal(t, "50", v)
	})

	t.Run("single delete winner", func(t *testing.T) {
		s, ns := factory(t)
		require.NoError(t, s.Set(ctx, ns+"otp", "123456", time.Minute))

		var winners atomic.Int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := s.Delete(ctx, ns+"otp"); ok {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners.Load())
	})

	t.Run("delete prefix", func(t *testing.T) {
		s, ns := factory(t)
		require.NoError(t, s.Set(ctx, ns+"catalog:a", "1", time.Minute))
		require.NoError(t, s.Set(ctx, ns+"catalog:b", "2", time.Minute))
		require.NoError(t, s.Set(ctx, ns+"other", "3", time.Minute))

		require.NoError(t, s.DeletePrefix(ctx, ns+"catalog:"))

		_, ok, _ := s.Get(ctx, ns+"catalog:a")
		assert.False(t, ok)
		_, ok, _ = s.Get(ctx, ns+"other")
		assert.True(t, ok)
	})

	t.Run("json helpers", func(t *testing.T) {
		s, ns := factory(t)
		type payload struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}
		require.NoError(t, cache.SetJSON(ctx, s, ns+"json", payload{"mt-07", 3}, time.Minute))

		got, ok, err := cache.GetJSON[payload](ctx, s, ns+"json")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, payload{"mt-07", 3}, got)

		_, ok, err = cache.GetJSON[payload](ctx, s, ns+"absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := cache.NewMemory(cache.WithClock(clock.Now))

	require.NoError(t, s.Set(ctx, "otp", "123456", 10*time.Minute))
	require.NoError(t, s.Set(ctx, "forever", "x", 0))

	clock.Advance(9 * time.Minute)
	_, ok, _ := s.Get(ctx, "otp")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, _ = s.Get(ctx, "otp")
	assert.False(t, ok)

	deleted, err := s.Delete(ctx, "otp")
	require.NoError(t, err)
	assert.False(t, deleted, "expired keys are not reported as deleted")

	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemory_IncrKeepsTTLFromCreation(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := cache.NewMemory(cache.WithClock(clock.Now))

	_, err := s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)

	clock.Advance(50 * time.Minute)
	n, err := s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	clock.Advance(10 * time.Minute)
	n, err = s.Incr(ctx, "rl", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "counter restarts once the window expired")
}

func TestMemory_Janitor(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemory(cache.WithJanitor(5 * time.Millisecond))
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Set(ctx, "short", "x", time.Millisecond))

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestOpen(t *testing.T) {
	s, err := cache.Open(context.Background(), "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, s)
	require.NoError(t, s.Close())

	_, err = cache.Open(context.Background(), "memcached", "")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	client, err := cache.Connect(context.Background(), "redis://localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	client, err = cache.Connect(context.Background(), "cache:6379")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", client.Options().Addr)
	_ = client.Close()

	_, err = cache.Connect(context.Background(), "redis://localhost:notaport/0")
	assert.Error(t, err)
}
