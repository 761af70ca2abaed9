// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time // zero: no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is a process-local Store. Expired keys are invisible immediately
// and reclaimed by a janitor goroutine.
type Memory struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock replaces the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithJanitor sets the sweep interval; zero disables sweeping.
func WithJanitor(interval time.Duration) MemoryOption {
	return func(m *Memory) {
		if interval <= 0 {
			m.stop = nil
			return
		}
		m.stop = make(chan struct{})
		go m.janitor(interval, m.stop)
	}
}

// NewMemory creates an in-memory store sweeping expired keys every minute.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]entry),
		now:   time.Now,
	}
	if len(opts) == 0 {
		opts = []MemoryOption{WithJanitor(time.Minute)}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) janitor(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-stop:
			return
		}
	}
}

func (m *Memory) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

// lookup returns the live entry for key. Caller holds mu.
func (m *Memory) lookup(key string) (entry, bool) {
	e, ok := m.items[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(m.now()) {
		delete(m.items, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	return e.value, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry{value: value, expires: m.expiry(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	delete(m.items, key)
	return ok, nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		m.items[key] = entry{value: "1", expires: m.expiry(ttl)}
		return 1, nil
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	m.items[key] = e
	return n, nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}

// Len returns the number of stored keys, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) Close() error {
	m.once.Do(func() {
		if m.stop != nil {
			close(m.stop)
		}
	})
	return nil
}
