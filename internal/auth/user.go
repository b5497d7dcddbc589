// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username and password constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 8
)

// usernameRegex matches ASCII letters, digits and underscores only.
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// User is a registered account.
type User struct {
	ID               ulid.ULID
	Username         string
	PasswordHash     string
	TwoFactorEnabled bool
	// TwoFactorCode is the stored second-factor secret. Nil means the
	// fallback code applies.
	TwoFactorCode  *string
	FailedAttempts int
	LockUntil      *time.Time
	CreatedAt      time.Time
}

// Lockout returns the user's current lockout counters.
func (u *User) Lockout() LockoutState {
	return LockoutState{FailedAttempts: u.FailedAttempts, LockUntil: u.LockUntil}
}

// Identity returns the session identity payload for u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, TwoFactorEnabled: u.TwoFactorEnabled}
}

// ValidateUsername checks an already-trimmed username. Length is counted in
// bytes, which the character set makes equal to characters.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			With("max", MaxUsernameLength).
			Errorf("Username must be %d-%d characters.", MinUsernameLength, MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("Username may contain only Latin letters, digits and _.")
	}
	return nil
}

// ValidatePassword checks the minimum password length in bytes.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("Password must be at least %d characters.", MinPasswordLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by exact, case-sensitive username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername reports whether a user with the exact username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// CompareAndSetLockout replaces the lockout counters only when the stored
	// values still equal expected. Returns false when another writer got there
	// first, or ErrNotFound when the user is gone.
	CompareAndSetLockout(ctx context.Context, id ulid.ULID, expected, next LockoutState) (bool, error)

	// ResetLockout clears the failure counter and lock unconditionally.
	ResetLockout(ctx context.Context, id ulid.ULID) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id ulid.ULID, hash string) error

	// UpdateTwoFactor sets the second-factor flag and secret.
	UpdateTwoFactor(ctx context.Context, id ulid.ULID, enabled bool, code *string) error
}
