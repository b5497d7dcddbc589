// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/holomush/shoplist/internal/item"
	"github.com/holomush/shoplist/internal/store"
)

// CategoryRepository implements item.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db store.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db store.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all categories ordered by ID.
func (r *CategoryRepository) List(ctx context.Context) ([]item.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "list categories").Wrap(err)
	}
	defer rows.Close()

	cats := make([]item.Category, 0)
	for rows.Next() {
		var c item.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "scan category").Wrap(err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "iterate categories").Wrap(err)
	}
	return cats, nil
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*item.Category, error) {
	var c item.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CATEGORY_NOT_FOUND").With("id", id).Wrap(item.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CATEGORY_GET_FAILED").With("operation", "get category by id").With("id", id).Wrap(err)
	}
	return &c, nil
}

// GetByName retrieves a category by exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*item.Category, error) {
	var c item.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE name = $1`, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CATEGORY_NOT_FOUND").With("name", name).Wrap(item.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CATEGORY_GET_FAILED").With("operation", "get category by name").With("name", name).Wrap(err)
	}
	return &c, nil
}

// Ensure inserts the category if the name is new.
func (r *CategoryRepository) Ensure(ctx context.Context, name string) (bool, error) {
	result, err := r.db.Exec(ctx, `INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, oops.Code("CATEGORY_ENSURE_FAILED").With("operation", "insert category").With("name", name).Wrap(err)
	}
	return result.RowsAffected() == 1, nil
}

// Compile-time interface check.
var _ item.CategoryRepository = (*CategoryRepository)(nil)
