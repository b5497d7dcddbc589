// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for the item package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/holomush/shoplist/internal/item"
)

// MockItemRepository is a testify mock for item.ItemRepository.
type MockItemRepository struct {
	mock.Mock
}

// NewMockItemRepository creates a MockItemRepository that asserts its
// expectations when the test finishes.
func NewMockItemRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockItemRepository {
	m := &MockItemRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockItemRepository) Create(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockItemRepository) Update(ctx context.Context, it *item.Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, userID, id ulid.ULID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockItemRepository) TogglePurchased(ctx context.Context, userID, id ulid.ULID) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockItemRepository) Get(ctx context.Context, userID, id ulid.ULID) (*item.Item, error) {
	args := m.Called(ctx, userID, id)
	it, _ := args.Get(0).(*item.Item)
	return it, args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, userID ulid.ULID, categoryID *int) ([]*item.Item, error) {
	args := m.Called(ctx, userID, categoryID)
	items, _ := args.Get(0).([]*item.Item)
	return items, args.Error(1)
}

func (m *MockItemRepository) SumUnpurchased(ctx context.Context, userID ulid.ULID) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	total, _ := args.Get(0).(decimal.Decimal)
	return total, args.Error(1)
}

// MockCategoryRepository is a testify mock for item.CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

// NewMockCategoryRepository creates a MockCategoryRepository that asserts its
// expectations when the test finishes.
func NewMockCategoryRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockCategoryRepository {
	m := &MockCategoryRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]item.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]item.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int) (*item.Category, error) {
	args := m.Called(ctx, id)
	cat, _ := args.Get(0).(*item.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*item.Category, error) {
	args := m.Called(ctx, name)
	cat, _ := args.Get(0).(*item.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryRepository) Ensure(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ item.ItemRepository     = (*MockItemRepository)(nil)
	_ item.CategoryRepository = (*MockCategoryRepository)(nil)
)
