// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package cli_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("shoplist CLI", func() {
	var ctx context.Context
	login := []string{"-u", "alice", "--password-stdin"}

	run := func(stdin string, args ...string) string {
		GinkgoHelper()
		output, err := shoplist(ctx, stdin, args...)
		Expect(err).NotTo(HaveOccurred(), "shoplist %v failed: %s", args, output)
		return output
	}

	BeforeEach(func() {
		ctx = context.Background()
		resetDatabase(ctx, env.pool)
		run("", "migrate", "up")
		run("secret1\n", "register", "-u", "alice", "--password-stdin")
	})

	Describe("migrate", func() {
		It("reports every migration as applied", func() {
			output := run("", "migrate", "status")
			Expect(output).To(ContainSubstring("000003_items"))
			Expect(output).To(ContainSubstring("Pending:\n  (none)"))
		})
	})

	Describe("registration", func() {
		It("refuses a taken username", func() {
			output, err := shoplist(ctx, "secret1\n", "register", "-u", "alice", "--password-stdin")
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("Username already exists."))
		})
	})

	Describe("items", func() {
		It("adds, totals, toggles and exports items", func() {
			Expect(run("secret1\n", append([]string{"item", "add", "--name", "Milk", "--price", "1,25", "--category", "1"}, login...)...)).
				To(ContainSubstring("Added Milk"))
			Expect(run("secret1\n", append([]string{"item", "add", "--name", "Bread", "--price", "2.5", "--category", "1"}, login...)...)).
				To(ContainSubstring("Added Bread"))

			Expect(run("secret1\n", append([]string{"item", "total"}, login...)...)).To(ContainSubstring("3.75"))

			out := filepath.Join(GinkgoT().TempDir(), "list.csv")
			run("secret1\n", append([]string{"export", "--format", "csv", "--out", out}, login...)...)
			data, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(HavePrefix("name,price,category,is_purchased\nBread,2.50,"))
			Expect(string(data)).To(ContainSubstring("Milk,1.25,"))
		})

		It("imports a CSV file and skips bad rows", func() {
			path := filepath.Join(GinkgoT().TempDir(), "list.csv")
			Expect(os.WriteFile(path, []byte("name,price,category,is_purchased\n"+
				"Eggs,3,Інше,yes\n"+
				"Nails,1,Garden,0\n"+
				"Tea,99999,Інше,0\n"), 0o600)).To(Succeed())

			output := run("secret1\n", append([]string{"import", path}, login...)...)
			Expect(output).To(ContainSubstring("Imported: 1, skipped: 2"))

			Expect(run("secret1\n", append([]string{"item", "total"}, login...)...)).To(ContainSubstring("0.00"))
		})
	})

	Describe("lockout", func() {
		It("locks the account after three wrong passwords", func() {
			for range 3 {
				_, err := shoplist(ctx, "wrong!\n", append([]string{"login"}, login...)...)
				Expect(err).To(HaveOccurred())
			}
			output, err := shoplist(ctx, "secret1\n", append([]string{"login"}, login...)...)
			Expect(err).To(HaveOccurred())
			Expect(output).To(ContainSubstring("Account is temporarily locked until"))
		})
	})

	Describe("categories", func() {
		It("seeds categories from a YAML file only once", func() {
			path := filepath.Join(GinkgoT().TempDir(), "categories.yaml")
			Expect(os.WriteFile(path, []byte("categories:\n  - Garden\n  - Інше\n"), 0o600)).To(Succeed())

			Expect(run("", "category", "seed", "--file", path)).To(ContainSubstring("Added 1 of 2 categories"))
			Expect(run("", "category", "seed", "--file", path)).To(ContainSubstring("Added 0 of 2 categories"))
			Expect(run("", "category", "list")).To(ContainSubstring("Garden"))
		})
	})
})
