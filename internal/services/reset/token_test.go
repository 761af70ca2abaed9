// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package reset

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mauricehans/moto/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTokenGenerator(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewTokenGenerator("secret", 24*time.Hour)
	g.now = func() time.Time { return now }

	user := &models.User{ID: 3, PasswordHash: "hash-a"}
	tok := g.Make(user)
	assert.True(t, g.Check(user, tok))

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenGenerator("different", 24*time.Hour)
		other.now = g.now
		assert.False(t, other.Check(user, tok))
	})

	t.Run("other user", func(t *testing.T) {
		assert.False(t, g.Check(&models.User{ID: 4, PasswordHash: "hash-a"}, tok))
	})

	t.Run("password changed", func(t *testing.T) {
		assert.False(t, g.Check(&models.User{ID: 3, PasswordHash: "hash-b"}, tok))
	})

	t.Run("logged in since", func(t *testing.T) {
		changed := &models.User{ID: 3, PasswordHash: "hash-a", LastLogin: sql.NullTime{Time: now, Valid: true}}
		assert.False(t, g.Check(changed, tok))
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenGenerator("secret", 24*time.Hour)
		later.now = func() time.Time { return now.Add(24*time.Hour + time.Second) }
		assert.False(t, later.Check(user, tok))

		edge := NewTokenGenerator("secret", 24*time.Hour)
		edge.now = func() time.Time { return now.Add(24 * time.Hour) }
		assert.True(t, edge.Check(user, tok))
	})

	t.Run("malformed", func(t *testing.T) {
		for _, bad := range []string{"", "-", "abc", "!!-abc", tok + "0"} {
			assert.False(t, g.Check(user, bad), bad)
		}
	})
}

func TestUID(t *testing.T) {
	uid := EncodeUID(42)
	assert.Equal(t, "NDI", uid)

	id, ok := DecodeUID(uid)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = DecodeUID("NDI=")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "%%", EncodeUID(0), EncodeUID(-1), "YWJj"} {
		_, ok := DecodeUID(bad)
		assert.False(t, ok, bad)
	}
}
