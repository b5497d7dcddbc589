// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/shopspring/decimal"

	"github.com/holomush/shoplist/internal/item"
	"github.com/holomush/shoplist/internal/item/postgres"
)

func createOwner(username string) ulid.ULID {
	id := ulid.Make()
	_, err := pool.Exec(suiteCtx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, 'x', NOW())`,
		id.String(), username)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(func() {
		_, _ = pool.Exec(suiteCtx, `DELETE FROM users WHERE id = $1`, id.String())
	})
	return id
}

var _ = Describe("ItemRepository", func() {
	var (
		items *postgres.ItemRepository
		cats  *postgres.CategoryRepository
		svc   *item.Service
		alice ulid.ULID
		bob   ulid.ULID
	)

	BeforeEach(func() {
		items = postgres.NewItemRepository(pool)
		cats = postgres.NewCategoryRepository(pool)
		var err error
		svc, err = item.NewService(items, cats, nil)
		Expect(err).NotTo(HaveOccurred())
		suffix := strings.ToLower(ulid.Make().String()[20:])
		alice = createOwner("alice_" + suffix)
		bob = createOwner("bob_" + suffix)
	})

	It("stores prices exactly and reads them back", func() {
		it, err := svc.Create(suiteCtx, alice, "Лампочка", "0,105", 3)
		Expect(err).NotTo(HaveOccurred())

		got, err := items.Get(suiteCtx, alice, it.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Price.StringFixed(2)).To(Equal("0.11"))
		Expect(got.CategoryName).To(Equal("Інше"))
		Expect(got.CreatedAt).To(BeTemporally("~", time.Now(), time.Minute))
	})

	It("never lists another user's items even in the same category", func() {
		_, err := svc.Create(suiteCtx, alice, "Milk", "10", 1)
		Expect(err).NotTo(HaveOccurred())
		theirs, err := svc.Create(suiteCtx, bob, "Milk", "20", 1)
		Expect(err).NotTo(HaveOccurred())

		cat := 1
		list, err := items.List(suiteCtx, alice, &cat)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].UserID).To(Equal(alice))

		_, err = items.Get(suiteCtx, alice, theirs.ID)
		Expect(err).To(MatchError(item.ErrNotFound))
		Expect(items.Delete(suiteCtx, alice, theirs.ID)).To(MatchError(item.ErrNotFound))
		_, err = items.TogglePurchased(suiteCtx, alice, theirs.ID)
		Expect(err).To(MatchError(item.ErrNotFound))
	})

	It("lists newest first and totals unpurchased items", func() {
		first, err := svc.Create(suiteCtx, alice, "First", "1.10", 1)
		Expect(err).NotTo(HaveOccurred())
		time.Sleep(5 * time.Millisecond)
		second, err := svc.Create(suiteCtx, alice, "Second", "2.20", 2)
		Expect(err).NotTo(HaveOccurred())

		list, err := items.List(suiteCtx, alice, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].ID).To(Equal(second.ID))
		Expect(list[1].ID).To(Equal(first.ID))

		purchased, err := items.TogglePurchased(suiteCtx, alice, first.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(purchased).To(BeTrue())

		total, err := items.SumUnpurchased(suiteCtx, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(total.Equal(decimal.RequireFromString("2.20"))).To(BeTrue())
	})

	It("imports a CSV file against the seeded categories", func() {
		im, err := item.NewImporter(items, cats, nil)
		Expect(err).NotTo(HaveOccurred())

		payload := "name,price,category,is_purchased\n" +
			",10,Продукти,false\n" +
			"Хліб,abc,Продукти,false\n" +
			"Сир,120.00,Продукти,no\n"
		sum, err := im.Import(suiteCtx, strings.NewReader(payload), item.FormatCSV, alice)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum).To(Equal(item.Summary{Imported: 1, Skipped: 2}))
	})
})

var _ = Describe("CategoryRepository", func() {
	It("has the seeded categories in order", func() {
		cats, err := postgres.NewCategoryRepository(pool).List(suiteCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(cats)).To(BeNumerically(">=", 3))
		Expect(cats[:3]).To(Equal([]item.Category{{ID: 1, Name: "Продукти"}, {ID: 2, Name: "Одяг"}, {ID: 3, Name: "Інше"}}))
	})

	It("ensures categories idempotently", func() {
		repo := postgres.NewCategoryRepository(pool)
		created, err := repo.Ensure(suiteCtx, "Побутова хімія")
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())

		created, err = repo.Ensure(suiteCtx, "Побутова хімія")
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeFalse())
	})
})
