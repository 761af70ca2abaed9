// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/mauricehans/moto/internal/models"
)

const userColumns = `id, username, email, password_hash, is_active, is_staff, is_superuser,
	last_login, created_at, updated_at`

// CreateUser inserts a user and fills in its ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, is_active, is_staff, is_superuser, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.IsActive, user.IsStaff, user.IsSuperuser, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user by ID regardless of its flags.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// FindActiveUserByEmail returns the best active match for a case-insensitive
// email: superusers first, then staff, then the lowest ID.
func (r *Repository) FindActiveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users
		 WHERE email = ? COLLATE NOCASE AND is_active = 1
		 ORDER BY is_superuser DESC, is_staff DESC, id ASC
		 LIMIT 1`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetActiveUserByUsername retrieves an active user by exact username.
func (r *Repository) GetActiveUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND is_active = 1`, username)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetActiveSuperuserByEmail retrieves the active superuser owning email.
func (r *Repository) GetActiveSuperuserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users
		 WHERE email = ? COLLATE NOCASE AND is_active = 1 AND is_superuser = 1
		 ORDER BY id ASC
		 LIMIT 1`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetActiveSuperuserByID retrieves a user by ID if it is an active superuser.
func (r *Repository) GetActiveSuperuserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND is_active = 1 AND is_superuser = 1`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// EmailExists reports whether any user has the given email (case-insensitive).
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM users WHERE email = ? COLLATE NOCASE`, email)
	return count > 0, err
}

// UsernameExists reports whether the username is taken.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM users WHERE username = ?`, username)
	return count > 0, err
}

// UpdateUserPassword replaces a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id))
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return affected(r.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, at.UTC(), id))
}

// ListStaff returns all staff accounts, newest first.
func (r *Repository) ListStaff(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE is_staff = 1 ORDER BY created_at DESC, id DESC`)
	return users, err
}

// DeleteUser deletes a user by ID.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

// CountSuperusers returns the number of active superusers.
func (r *Repository) CountSuperusers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM users WHERE is_superuser = 1 AND is_active = 1`)
	return count, err
}
