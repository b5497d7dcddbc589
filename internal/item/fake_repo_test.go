// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item_test

import (
	"context"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/holomush/shoplist/internal/item"
)

// memStore is an in-memory ItemRepository and CategoryRepository with the
// same ownership rules as the PostgreSQL implementation.
type memStore struct {
	mu    sync.Mutex
	items map[ulid.ULID]item.Item
	cats  []item.Category
}

func newMemStore(categories ...string) *memStore {
	s := &memStore{items: make(map[ulid.ULID]item.Item)}
	for _, name := range categories {
		_, _ = s.Ensure(context.Background(), name)
	}
	return s
}

func (s *memStore) categoryName(id int) string {
	for _, c := range s.cats {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *memStore) Create(_ context.Context, it *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = *it
	return nil
}

func (s *memStore) Update(_ context.Context, it *item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[it.ID]
	if !ok || cur.UserID != it.UserID {
		return item.ErrNotFound
	}
	cur.Name, cur.Price, cur.CategoryID = it.Name, it.Price, it.CategoryID
	s.items[it.ID] = cur
	return nil
}

func (s *memStore) Delete(_ context.Context, userID, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok || cur.UserID != userID {
		return item.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *memStore) TogglePurchased(_ context.Context, userID, id ulid.ULID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok || cur.UserID != userID {
		return false, item.ErrNotFound
	}
	cur.Purchased = !cur.Purchased
	s.items[id] = cur
	return cur.Purchased, nil
}

func (s *memStore) Get(_ context.Context, userID, id ulid.ULID) (*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok || cur.UserID != userID {
		return nil, item.ErrNotFound
	}
	cur.CategoryName = s.categoryName(cur.CategoryID)
	return &cur, nil
}

func (s *memStore) List(_ context.Context, userID ulid.ULID, categoryID *int) ([]*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*item.Item
	for _, it := range s.items {
		if it.UserID != userID || (categoryID != nil && it.CategoryID != *categoryID) {
			continue
		}
		it.CategoryName = s.categoryName(it.CategoryID)
		out = append(out, &it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Compare(out[j].ID) > 0
	})
	return out, nil
}

func (s *memStore) SumUnpurchased(_ context.Context, userID ulid.ULID) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		if it.UserID == userID && !it.Purchased {
			total = total.Add(it.Price)
		}
	}
	return total, nil
}

func (s *memStore) GetByID(_ context.Context, id int) (*item.Category, error) {
	for _, c := range s.cats {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, item.ErrNotFound
}

func (s *memStore) GetByName(_ context.Context, name string) (*item.Category, error) {
	for _, c := range s.cats {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, item.ErrNotFound
}

func (s *memStore) Ensure(_ context.Context, name string) (bool, error) {
	for _, c := range s.cats {
		if c.Name == name {
			return false, nil
		}
	}
	s.cats = append(s.cats, item.Category{ID: len(s.cats) + 1, Name: name})
	return true, nil
}

// categoryView satisfies CategoryRepository.List without clashing with the
// item List method.
type categoryView struct{ *memStore }

func (v categoryView) List(_ context.Context) ([]item.Category, error) {
	return append([]item.Category(nil), v.cats...), nil
}
