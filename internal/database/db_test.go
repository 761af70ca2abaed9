// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mauricehans/moto/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := database.Open(":memory:")

	require.NoError(t, err)
	require.NotNil(t, db)
	require.NoError(t, db.Close())
}

func TestOpen_DefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	db, err := database.Open("")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	_, err = os.Stat(filepath.Join(tmpDir, "data", "moto.db"))
	assert.NoError(t, err)
}

func TestOpen_MigrationsApplied(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	tables := []string{
		"users",
		"motorcycles",
		"part_categories",
		"parts",
		"blog_categories",
		"blog_posts",
		"garage_settings",
	}
	for _, table := range tables {
		var count int64
		err = db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, table)
	}

	version, err := database.Version(db.DB)
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var enabled int
	require.NoError(t, db.Get(&enabled, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, enabled)

	_, err = db.Exec(`INSERT INTO parts (category_id, slug, name, price_cents) VALUES (42, 'x', 'x', 100)`)
	assert.Error(t, err)
}

func TestOpen_WithExistingParams(t *testing.T) {
	db, err := database.Open(":memory:?_pragma=busy_timeout(1000)")

	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var timeout int
	require.NoError(t, db.Get(&timeout, "PRAGMA busy_timeout"))
	assert.Equal(t, 1000, timeout)
}

func TestOpen_FileDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "test.db")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var journalMode string
	require.NoError(t, db.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)

	var count int64
	err = db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name='users'")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "moto.db")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Migrations are idempotent.
	db, err = database.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestMigrateReset(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	require.NoError(t, database.MigrateReset(db.DB))

	var count int64
	err = db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name='users'")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, database.RunMigrations(db.DB))
}
