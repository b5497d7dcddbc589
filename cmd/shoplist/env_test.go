// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/holomush/shoplist/internal/auth"
	authmocks "github.com/holomush/shoplist/internal/auth/mocks"
	"github.com/holomush/shoplist/internal/config"
	"github.com/holomush/shoplist/internal/item"
	itemmocks "github.com/holomush/shoplist/internal/item/mocks"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var anyCtx = mock.Anything

// fakeStore hands out testify mocks instead of PostgreSQL repositories.
type fakeStore struct {
	users      *authmocks.MockUserRepository
	items      *itemmocks.MockItemRepository
	categories *itemmocks.MockCategoryRepository
	closed     int
}

func (s *fakeStore) Users() auth.UserRepository          { return s.users }
func (s *fakeStore) Items() item.ItemRepository          { return s.items }
func (s *fakeStore) Categories() item.CategoryRepository { return s.categories }
func (s *fakeStore) Close()                              { s.closed++ }

type testEnv struct {
	store  *fakeStore
	hasher *authmocks.MockPasswordHasher
	deps   *Deps
	dbURL  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: &fakeStore{
			users:      authmocks.NewMockUserRepository(t),
			items:      itemmocks.NewMockItemRepository(t),
			categories: itemmocks.NewMockCategoryRepository(t),
		},
		hasher: authmocks.NewMockPasswordHasher(t),
	}
	env.deps = &Deps{
		StoreOpener: func(_ context.Context, url string) (Store, error) {
			env.dbURL = url
			return env.store, nil
		},
		Hasher: env.hasher,
		Getenv: func(key string) string {
			if key == config.DatabaseURLEnv {
				return "postgres://test/shoplist"
			}
			return ""
		},
		Now: func() time.Time { return testNow },
	}
	return env
}

// run executes the CLI with stdin and returns what it wrote to stdout and
// stderr.
func (env *testEnv) run(stdin string, args ...string) (string, string, error) {
	configFile = ""
	cmd := newRootCmd(env.deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// newUser returns an account with a known password hash and no lockout.
func newUser(name string) *auth.User {
	return &auth.User{
		ID:           ulid.Make(),
		Username:     name,
		PasswordHash: "$argon2id$" + name,
		CreatedAt:    testNow.Add(-time.Hour),
	}
}

// expectPasswordOK sets up a successful password check for user.
func (env *testEnv) expectPasswordOK(user *auth.User, password string) {
	env.store.users.On("GetByUsername", anyCtx, user.Username).Return(user, nil).Once()
	env.hasher.On("Verify", password, user.PasswordHash).Return(true, nil).Once()
	env.store.users.On("ResetLockout", anyCtx, user.ID).Return(nil).Once()
	env.hasher.On("NeedsUpgrade", user.PasswordHash).Return(false).Once()
}
