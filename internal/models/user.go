// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64        `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	IsStaff      bool         `db:"is_staff" json:"is_staff"`
	IsSuperuser  bool         `db:"is_superuser" json:"is_superuser"`
	LastLogin    sql.NullTime `db:"last_login" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"date_joined"`
	UpdatedAt    time.Time    `db:"updated_at" json:"-"`
}

// IsAdmin reports whether the user may manage other administrators.
func (u *User) IsAdmin() bool {
	return u.IsActive && u.IsStaff && u.IsSuperuser
}

// LastLoginUnix returns the last login as a Unix timestamp, or 0 if the
// user never logged in.
func (u *User) LastLoginUnix() int64 {
	if !u.LastLogin.Valid {
		return 0
	}
	return u.LastLogin.Time.UTC().Unix()
}
