// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/holomush/shoplist/internal/auth"
	authpg "github.com/holomush/shoplist/internal/auth/postgres"
	"github.com/holomush/shoplist/internal/item"
	itempg "github.com/holomush/shoplist/internal/item/postgres"
	"github.com/holomush/shoplist/internal/store"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// StoreOpener connects to the database.
	// Default: openPostgresStore
	StoreOpener func(ctx context.Context, url string) (Store, error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// Hasher hashes and verifies passwords.
	// Default: auth.NewArgon2idHasher
	Hasher auth.PasswordHasher

	// Getenv reads environment variables.
	// Default: os.Getenv
	Getenv func(string) string

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// Store is the storage the commands work against.
type Store interface {
	Users() auth.UserRepository
	Items() item.ItemRepository
	Categories() item.CategoryRepository
	Close()
}

// Migrator wraps the methods migrate uses from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Status() (*store.Status, error)
	Force(version int) error
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.StoreOpener == nil {
		out.StoreOpener = openPostgresStore
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = newPostgresMigrator
	}
	if out.Hasher == nil {
		out.Hasher = auth.NewArgon2idHasher()
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}

// postgresStore serves the repositories from one connection pool.
type postgresStore struct {
	pool *pgxpool.Pool
}

func openPostgresStore(ctx context.Context, url string) (Store, error) {
	pool, err := store.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Users() auth.UserRepository {
	return authpg.NewUserRepository(s.pool)
}

func (s *postgresStore) Items() item.ItemRepository {
	return itempg.NewItemRepository(s.pool)
}

func (s *postgresStore) Categories() item.CategoryRepository {
	return itempg.NewCategoryRepository(s.pool)
}

func (s *postgresStore) Close() {
	s.pool.Close()
}

func newPostgresMigrator(url string) (Migrator, error) {
	m, err := store.NewMigrator(url)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Compile-time interface checks.
var (
	_ Store    = (*postgresStore)(nil)
	_ Migrator = (*store.Migrator)(nil)
)
