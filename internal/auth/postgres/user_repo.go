// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/shoplist/internal/auth"
	"github.com/holomush/shoplist/internal/store"
)

const userColumns = `id, username, password_hash, twofa_enabled, twofa_code,
	       failed_attempts, lock_until, created_at`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db store.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (
			id, username, password_hash, twofa_enabled, twofa_code,
			failed_attempts, lock_until, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID.String(),
		user.Username,
		user.PasswordHash,
		user.TwoFactorEnabled,
		user.TwoFactorCode,
		user.FailedAttempts,
		user.LockUntil,
		user.CreatedAt,
	)
	if store.IsUniqueViolation(err) {
		return oops.Code("USER_USERNAME_TAKEN").
			With("username", user.Username).
			Wrap(auth.ErrUsernameTaken)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// ExistsByUsername reports whether the exact username is registered.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check username").
			With("username", username).
			Wrap(err)
	}
	return exists, nil
}

// CompareAndSetLockout updates the lockout counters only if they still hold
// the expected values.
func (r *UserRepository) CompareAndSetLockout(ctx context.Context, id ulid.ULID, expected, next auth.LockoutState) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE users SET failed_attempts = $4, lock_until = $5
		WHERE id = $1
		  AND failed_attempts = $2
		  AND lock_until IS NOT DISTINCT FROM $3
	`,
		id.String(),
		expected.FailedAttempts,
		expected.LockUntil,
		next.FailedAttempts,
		next.LockUntil,
	)
	if err != nil {
		return false, oops.Code("USER_LOCKOUT_UPDATE_FAILED").
			With("operation", "compare and set lockout").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id.String()).Scan(&exists); err != nil {
		return false, oops.Code("USER_LOCKOUT_UPDATE_FAILED").
			With("operation", "check user after lost update").
			With("id", id.String()).
			Wrap(err)
	}
	if !exists {
		return false, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return false, nil
}

// ResetLockout clears the lockout counters.
func (r *UserRepository) ResetLockout(ctx context.Context, id ulid.ULID) error {
	return r.execOne(ctx, "reset lockout", id,
		`UPDATE users SET failed_attempts = 0, lock_until = NULL WHERE id = $1`,
		id.String())
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id ulid.ULID, hash string) error {
	return r.execOne(ctx, "update password hash", id,
		`UPDATE users SET password_hash = $2 WHERE id = $1`,
		id.String(), hash)
}

// UpdateTwoFactor sets the second-factor flag and secret.
func (r *UserRepository) UpdateTwoFactor(ctx context.Context, id ulid.ULID, enabled bool, code *string) error {
	return r.execOne(ctx, "update two-factor", id,
		`UPDATE users SET twofa_enabled = $2, twofa_code = $3 WHERE id = $1`,
		id.String(), enabled, code)
}

// execOne runs a single-row update and maps zero affected rows to ErrNotFound.
func (r *UserRepository) execOne(ctx context.Context, operation string, id ulid.ULID, sql string, args ...any) error {
	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", operation).
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr string
		user  auth.User
		lock  *time.Time
	)
	err := row.Scan(
		&idStr,
		&user.Username,
		&user.PasswordHash,
		&user.TwoFactorEnabled,
		&user.TwoFactorCode,
		&user.FailedAttempts,
		&lock,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}
	user.ID = id
	user.LockUntil = lock
	return &user, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
