// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/holomush/shoplist/pkg/errutil"
)

var tracer = otel.Tracer("shoplist/item")

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	CategoryID *int
	// NameGlob is a case-insensitive glob such as "*milk*".
	NameGlob string
}

// Service is the owner-scoped CRUD surface for shopping items.
type Service struct {
	items      ItemRepository
	categories CategoryRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates an item service. A nil logger uses slog.Default().
func NewService(items ItemRepository, categories CategoryRepository, logger *slog.Logger) (*Service, error) {
	if items == nil {
		return nil, oops.Code("ITEM_INVALID_CONFIG").Errorf("item repository is required")
	}
	if categories == nil {
		return nil, oops.Code("ITEM_INVALID_CONFIG").Errorf("category repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{items: items, categories: categories, logger: logger, now: time.Now}, nil
}

// Create validates and stores a new unpurchased item.
func (s *Service) Create(ctx context.Context, userID ulid.ULID, name, price string, categoryID int) (*Item, error) {
	ctx, span := tracer.Start(ctx, "item.create")
	defer span.End()

	amount, err := s.validate(ctx, name, price, categoryID)
	if err != nil {
		return nil, err
	}

	it := &Item{
		ID:         ulid.Make(),
		UserID:     userID,
		CategoryID: categoryID,
		Name:       NormalizeName(name),
		Price:      amount,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, oops.Code("ITEM_CREATE_FAILED").
			With("operation", "create item").
			With("user_id", userID.String()).
			Wrap(err)
	}
	Operations.WithLabelValues("create").Inc()
	s.logger.DebugContext(ctx, "item created", "user_id", userID.String(), "item_id", it.ID.String())
	return it, nil
}

// Update replaces the name, price and category of an owned item.
func (s *Service) Update(ctx context.Context, userID, id ulid.ULID, name, price string, categoryID int) (*Item, error) {
	ctx, span := tracer.Start(ctx, "item.update")
	defer span.End()

	amount, err := s.validate(ctx, name, price, categoryID)
	if err != nil {
		return nil, err
	}

	it := &Item{
		ID:         id,
		UserID:     userID,
		CategoryID: categoryID,
		Name:       NormalizeName(name),
		Price:      amount,
	}
	if err := s.items.Update(ctx, it); err != nil {
		return nil, s.wrap(err, "ITEM_UPDATE_FAILED", "update item", userID, id)
	}
	Operations.WithLabelValues("update").Inc()
	return it, nil
}

// Delete removes an owned item.
func (s *Service) Delete(ctx context.Context, userID, id ulid.ULID) error {
	if err := s.items.Delete(ctx, userID, id); err != nil {
		return s.wrap(err, "ITEM_DELETE_FAILED", "delete item", userID, id)
	}
	Operations.WithLabelValues("delete").Inc()
	return nil
}

// TogglePurchased flips an owned item's purchased flag and returns the new value.
func (s *Service) TogglePurchased(ctx context.Context, userID, id ulid.ULID) (bool, error) {
	purchased, err := s.items.TogglePurchased(ctx, userID, id)
	if err != nil {
		return false, s.wrap(err, "ITEM_TOGGLE_FAILED", "toggle purchased", userID, id)
	}
	Operations.WithLabelValues("toggle").Inc()
	return purchased, nil
}

// Get returns an owned item.
func (s *Service) Get(ctx context.Context, userID, id ulid.ULID) (*Item, error) {
	it, err := s.items.Get(ctx, userID, id)
	if err != nil {
		return nil, s.wrap(err, "ITEM_GET_FAILED", "get item", userID, id)
	}
	return it, nil
}

// List returns the user's items, newest first, narrowed by filter.
func (s *Service) List(ctx context.Context, userID ulid.ULID, filter ListFilter) ([]*Item, error) {
	ctx, span := tracer.Start(ctx, "item.list")
	defer span.End()

	var matcher glob.Glob
	if filter.NameGlob != "" {
		g, err := glob.Compile(strings.ToLower(filter.NameGlob))
		if err != nil {
			return nil, oops.Code("ITEM_INVALID_FILTER").
				With("glob", filter.NameGlob).
				Wrap(err)
		}
		matcher = g
	}

	items, err := s.items.List(ctx, userID, filter.CategoryID)
	if err != nil {
		return nil, oops.Code("ITEM_LIST_FAILED").
			With("operation", "list items").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if matcher == nil {
		return items, nil
	}

	out := items[:0]
	for _, it := range items {
		if matcher.Match(strings.ToLower(it.Name)) {
			out = append(out, it)
		}
	}
	return out, nil
}

// SumUnpurchased totals what is still left to buy.
func (s *Service) SumUnpurchased(ctx context.Context, userID ulid.ULID) (decimal.Decimal, error) {
	total, err := s.items.SumUnpurchased(ctx, userID)
	if err != nil {
		return decimal.Zero, oops.Code("ITEM_SUM_FAILED").
			With("operation", "sum unpurchased").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return total, nil
}

// Categories lists every category ordered by ID.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "list categories").Wrap(err)
	}
	return cats, nil
}

// SeedCategories adds the named categories that do not exist yet and
// returns how many were added. Blank names are ignored.
func (s *Service) SeedCategories(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		created, err := s.categories.Ensure(ctx, name)
		if err != nil {
			return added, oops.Code("CATEGORY_SEED_FAILED").
				With("operation", "ensure category").
				With("category", name).
				Wrap(err)
		}
		if created {
			added++
			s.logger.InfoContext(ctx, "category added", "category", name)
		}
	}
	return added, nil
}

// validate collects every problem with the input and returns the normalized price.
func (s *Service) validate(ctx context.Context, name, price string, categoryID int) (decimal.Decimal, error) {
	problems := &errutil.ValidationError{}
	problems.Check(ValidateName(name))
	amount, err := NormalizePrice(price)
	problems.Check(err)

	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return decimal.Zero, oops.Code("ITEM_CATEGORY_LOOKUP_FAILED").
				With("operation", "get category").
				With("category_id", categoryID).
				Wrap(err)
		}
		problems.Add(MsgUnknownCategory)
	}

	if !problems.Empty() {
		return decimal.Zero, oops.Code("ITEM_INVALID").Wrap(problems)
	}
	return amount, nil
}

// wrap keeps ErrNotFound visible to callers while attaching context.
func (s *Service) wrap(err error, code, operation string, userID, id ulid.ULID) error {
	if errors.Is(err, ErrNotFound) {
		code = "ITEM_NOT_FOUND"
	}
	return oops.Code(code).
		With("operation", operation).
		With("user_id", userID.String()).
		With("item_id", id.String()).
		Wrap(err)
}
