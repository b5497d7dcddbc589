// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements item and category repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/shopspring/decimal"

	"github.com/holomush/shoplist/internal/item"
	"github.com/holomush/shoplist/internal/store"
)

// Prices travel as text so NUMERIC values never pass through float64.
const itemSelect = `
	SELECT i.id, i.user_id, i.category_id, c.name, i.name, i.price::text, i.is_purchased, i.created_at
	FROM items i JOIN categories c ON c.id = i.category_id`

// ItemRepository implements item.ItemRepository using PostgreSQL.
type ItemRepository struct {
	db store.DB
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db store.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create stores a new item.
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, user_id, category_id, name, price, is_purchased, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
	`,
		it.ID.String(),
		it.UserID.String(),
		it.CategoryID,
		it.Name,
		it.Price.StringFixed(2),
		it.Purchased,
		it.CreatedAt,
	)
	if store.IsForeignKeyViolation(err) {
		return oops.Code("ITEM_CATEGORY_NOT_FOUND").
			With("category_id", it.CategoryID).
			Wrap(item.ErrNotFound)
	}
	if err != nil {
		return oops.Code("ITEM_CREATE_FAILED").
			With("operation", "insert item").
			With("id", it.ID.String()).
			Wrap(err)
	}
	return nil
}

// Update replaces the name, price and category of an owned item.
func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	result, err := r.db.Exec(ctx, `
		UPDATE items SET name = $3, price = $4::numeric, category_id = $5
		WHERE id = $1 AND user_id = $2
	`,
		it.ID.String(),
		it.UserID.String(),
		it.Name,
		it.Price.StringFixed(2),
		it.CategoryID,
	)
	if store.IsForeignKeyViolation(err) {
		return oops.Code("ITEM_CATEGORY_NOT_FOUND").
			With("category_id", it.CategoryID).
			Wrap(item.ErrNotFound)
	}
	if err != nil {
		return oops.Code("ITEM_UPDATE_FAILED").
			With("operation", "update item").
			With("id", it.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return notFound(it.ID)
	}
	return nil
}

// Delete removes an owned item.
func (r *ItemRepository) Delete(ctx context.Context, userID, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1 AND user_id = $2`, id.String(), userID.String())
	if err != nil {
		return oops.Code("ITEM_DELETE_FAILED").
			With("operation", "delete item").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

// TogglePurchased flips the purchased flag of an owned item.
func (r *ItemRepository) TogglePurchased(ctx context.Context, userID, id ulid.ULID) (bool, error) {
	var purchased bool
	err := r.db.QueryRow(ctx, `
		UPDATE items SET is_purchased = NOT is_purchased
		WHERE id = $1 AND user_id = $2
		RETURNING is_purchased
	`, id.String(), userID.String()).Scan(&purchased)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, notFound(id)
	}
	if err != nil {
		return false, oops.Code("ITEM_TOGGLE_FAILED").
			With("operation", "toggle purchased").
			With("id", id.String()).
			Wrap(err)
	}
	return purchased, nil
}

// Get retrieves an owned item with its category name.
func (r *ItemRepository) Get(ctx context.Context, userID, id ulid.ULID) (*item.Item, error) {
	row := r.db.QueryRow(ctx, itemSelect+` WHERE i.id = $1 AND i.user_id = $2`, id.String(), userID.String())

	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, oops.Code("ITEM_GET_FAILED").
			With("operation", "get item").
			With("id", id.String()).
			Wrap(err)
	}
	return it, nil
}

// List returns the user's items newest first, optionally limited to one category.
func (r *ItemRepository) List(ctx context.Context, userID ulid.ULID, categoryID *int) ([]*item.Item, error) {
	rows, err := r.db.Query(ctx, itemSelect+`
		WHERE i.user_id = $1 AND ($2::integer IS NULL OR i.category_id = $2)
		ORDER BY i.created_at DESC, i.id DESC
	`, userID.String(), categoryID)
	if err != nil {
		return nil, oops.Code("ITEM_LIST_FAILED").
			With("operation", "list items").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, oops.Code("ITEM_LIST_FAILED").With("operation", "scan items").Wrap(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ITEM_LIST_FAILED").With("operation", "iterate items").Wrap(err)
	}
	return items, nil
}

// SumUnpurchased totals the prices of the user's unpurchased items.
func (r *ItemRepository) SumUnpurchased(ctx context.Context, userID ulid.ULID) (decimal.Decimal, error) {
	var total string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(price), 0)::text FROM items
		WHERE user_id = $1 AND NOT is_purchased
	`, userID.String()).Scan(&total)
	if err != nil {
		return decimal.Zero, oops.Code("ITEM_SUM_FAILED").
			With("operation", "sum unpurchased").
			With("user_id", userID.String()).
			Wrap(err)
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return decimal.Zero, oops.Code("ITEM_SUM_FAILED").
			With("operation", "parse sum").
			With("value", total).
			Wrap(err)
	}
	return d, nil
}

func notFound(id ulid.ULID) error {
	return oops.Code("ITEM_NOT_FOUND").With("id", id.String()).Wrap(item.ErrNotFound)
}

// scanItem scans one row of itemSelect.
// Callers are responsible for handling pgx.ErrNoRows.
func scanItem(row pgx.Row) (*item.Item, error) {
	var (
		it             item.Item
		idStr, userStr string
		price          string
	)
	err := row.Scan(
		&idStr,
		&userStr,
		&it.CategoryID,
		&it.CategoryName,
		&it.Name,
		&price,
		&it.Purchased,
		&it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ITEM_SCAN_FAILED").With("operation", "scan item").Wrap(err)
	}

	if it.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("ITEM_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if it.UserID, err = ulid.Parse(userStr); err != nil {
		return nil, oops.Code("ITEM_INVALID_ID").With("user_id", userStr).Wrap(err)
	}
	if it.Price, err = decimal.NewFromString(price); err != nil {
		return nil, oops.Code("ITEM_INVALID_PRICE").With("price", price).Wrap(err)
	}
	return &it, nil
}

// Compile-time interface check.
var _ item.ItemRepository = (*ItemRepository)(nil)
