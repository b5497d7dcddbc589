// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/shoplist/internal/auth"
)

// memUserRepo is an in-memory UserRepository with real compare-and-swap
// semantics, used where a scripted mock would hide ordering bugs.
type memUserRepo struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User

	// casConflicts makes the next N compare-and-swap calls report a lost race.
	casConflicts int
	casCalls     int
}

func newMemUserRepo(users ...*auth.User) *memUserRepo {
	r := &memUserRepo{users: make(map[ulid.ULID]*auth.User)}
	for _, u := range users {
		c := *u
		r.users[u.ID] = &c
	}
	return r
}

func (r *memUserRepo) get(id ulid.ULID) auth.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

func (r *memUserRepo) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return auth.ErrUsernameTaken
		}
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *memUserRepo) CompareAndSetLockout(_ context.Context, id ulid.ULID, expected, next auth.LockoutState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.casCalls++
	u, ok := r.users[id]
	if !ok {
		return false, auth.ErrNotFound
	}
	if r.casConflicts > 0 {
		r.casConflicts--
		return false, nil
	}
	if !u.Lockout().Equal(expected) {
		return false, nil
	}
	u.FailedAttempts, u.LockUntil = next.FailedAttempts, next.LockUntil
	return true, nil
}

func (r *memUserRepo) ResetLockout(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.FailedAttempts, u.LockUntil = 0, nil
	return nil
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, id ulid.ULID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *memUserRepo) UpdateTwoFactor(_ context.Context, id ulid.ULID, enabled bool, code *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	u.TwoFactorEnabled, u.TwoFactorCode = enabled, code
	return nil
}

// plainHasher stores passwords as "plain:<password>" so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", auth.ErrEmptyPassword
	}
	return "plain:" + password, nil
}

func (plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "plain:"+password, nil
}

func (plainHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, "plain:")
}
