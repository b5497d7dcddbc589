// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Item is one entry on a user's shopping list.
type Item struct {
	ID         ulid.ULID
	UserID     ulid.ULID
	CategoryID int
	// CategoryName is filled in by reads that join the category.
	CategoryName string
	Name         string
	Price        decimal.Decimal
	Purchased    bool
	CreatedAt    time.Time
}

// Category groups items. Categories are shared by all users.
type Category struct {
	ID   int
	Name string
}

// ItemRepository persists items. Every method that takes a userID only
// touches items owned by that user; a miss returns ErrNotFound.
type ItemRepository interface {
	// Create stores a new item.
	Create(ctx context.Context, item *Item) error

	// Update replaces the name, price and category of an item.
	Update(ctx context.Context, item *Item) error

	// Delete removes an item.
	Delete(ctx context.Context, userID, id ulid.ULID) error

	// TogglePurchased flips the purchased flag and returns the new value.
	TogglePurchased(ctx context.Context, userID, id ulid.ULID) (bool, error)

	// Get retrieves one item with its category name.
	Get(ctx context.Context, userID, id ulid.ULID) (*Item, error)

	// List returns the user's items, newest first. A nil categoryID lists
	// every category.
	List(ctx context.Context, userID ulid.ULID, categoryID *int) ([]*Item, error)

	// SumUnpurchased totals the prices of items not yet purchased.
	SumUnpurchased(ctx context.Context, userID ulid.ULID) (decimal.Decimal, error)
}

// CategoryRepository reads and seeds categories.
type CategoryRepository interface {
	// List returns all categories ordered by ID.
	List(ctx context.Context) ([]Category, error)

	// GetByID retrieves a category. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id int) (*Category, error)

	// GetByName retrieves a category by exact name. Returns ErrNotFound if absent.
	GetByName(ctx context.Context, name string) (*Category, error)

	// Ensure inserts the category unless one with the same name exists and
	// reports whether a row was added.
	Ensure(ctx context.Context, name string) (bool, error)
}
