// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

func withGoose(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return fn()
}

// RunMigrations applies all pending migrations.
func RunMigrations(db *sql.DB) error {
	return withGoose(func() error { return goose.Up(db, "migrations") })
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sql.DB) error {
	return withGoose(func() error { return goose.Down(db, "migrations") })
}

// MigrateReset rolls back all migrations.
func MigrateReset(db *sql.DB) error {
	return withGoose(func() error { return goose.Reset(db, "migrations") })
}

// Version returns the current schema version.
func Version(db *sql.DB) (int64, error) {
	var v int64
	err := withGoose(func() error {
		var err error
		v, err = goose.GetDBVersion(db)
		return err
	})
	return v, err
}
