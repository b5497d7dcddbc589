// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/shoplist/internal/item"
)

// NewItemCmd creates the item command. Every subcommand logs in first and
// acts on the logged-in user's items only.
func NewItemCmd(deps *Deps) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, list, edit and tick off shopping list items",
	}
	addCredentialFlags(cmd.PersistentFlags(), &creds)

	cmd.AddCommand(
		newItemAddCmd(deps, &creds),
		newItemListCmd(deps, &creds),
		newItemEditCmd(deps, &creds),
		newItemRemoveCmd(deps, &creds),
		newItemToggleCmd(deps, &creds),
		newItemTotalCmd(deps, &creds),
	)
	return cmd
}

// itemFlags are the editable fields of an item.
type itemFlags struct {
	name     string
	price    string
	category string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "item name")
	cmd.Flags().StringVar(&f.price, "price", "", "price, e.g. 12.50 or 12,5")
	cmd.Flags().StringVar(&f.category, "category", "", "category id or name")
}

// withItems logs in and runs fn with the item service.
func withItems(cmd *cobra.Command, deps *Deps, creds *credentials, name string,
	fn func(ctx context.Context, a *app, svc *item.Service, userID ulid.ULID) error,
) error {
	return runCommand(cmd, deps, name, func(ctx context.Context, a *app) error {
		id, _, err := a.signIn(ctx, cmd, *creds)
		if err != nil {
			return err
		}
		svc, err := a.itemService(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, a, svc, id.ID)
	})
}

func newItemAddCmd(deps *Deps, creds *credentials) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withItems(cmd, deps, creds, "item-add", func(ctx context.Context, _ *app, svc *item.Service, userID ulid.ULID) error {
				categoryID, err := resolveCategory(ctx, svc, f.category)
				if err != nil {
					return err
				}
				it, err := svc.Create(ctx, userID, f.name, f.price, categoryID)
				if err != nil {
					return err
				}
				cmd.Printf("Added %s (%s)\n", it.Name, it.ID)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newItemListCmd(deps *Deps, creds *credentials) *cobra.Command {
	var (
		category string
		pattern  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your items, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withItems(cmd, deps, creds, "item-list", func(ctx context.Context, _ *app, svc *item.Service, userID ulid.ULID) error {
				filter := item.ListFilter{NameGlob: pattern}
				if category != "" {
					id, err := resolveCategory(ctx, svc, category)
					if err != nil {
						return err
					}
					filter.CategoryID = &id
				}
				items, err := svc.List(ctx, userID, filter)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderItems(items)) //nolint:errcheck // CLI output
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only items in this category (id or name)")
	cmd.Flags().StringVar(&pattern, "glob", "", `only items whose name matches this pattern, e.g. "*milk*"`)
	return cmd
}

func newItemEditCmd(deps *Deps, creds *credentials) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an item; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return withItems(cmd, deps, creds, "item-edit", func(ctx context.Context, _ *app, svc *item.Service, userID ulid.ULID) error {
				current, err := svc.Get(ctx, userID, id)
				if err != nil {
					return err
				}
				name, price, categoryID := current.Name, current.Price.StringFixed(2), current.CategoryID
				if cmd.Flags().Changed("name") {
					name = f.name
				}
				if cmd.Flags().Changed("price") {
					price = f.price
				}
				if cmd.Flags().Changed("category") {
					if categoryID, err = resolveCategory(ctx, svc, f.category); err != nil {
						return err
					}
				}
				it, err := svc.Update(ctx, userID, id, name, price, categoryID)
				if err != nil {
					return err
				}
				cmd.Printf("Updated %s\n", it.Name)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newItemRemoveCmd(deps *Deps, creds *credentials) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return withItems(cmd, deps, creds, "item-rm", func(ctx context.Context, _ *app, svc *item.Service, userID ulid.ULID) error {
				if err := svc.Delete(ctx, userID, id); err != nil {
					return err
				}
				cmd.Println("Item deleted")
				return nil
			})
		},
	}
}

func newItemToggleCmd(deps *Deps, creds *credentials) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip the purchased mark of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return withItems(cmd, deps, creds, "item-toggle", func(ctx context.Context, _ *app, svc *item.Service, userID ulid.ULID) error {
				purchased, err := svc.TogglePurchased(ctx, userID, id)
				if err != nil {
					return err
				}
				if purchased {
					cmd.Println("Marked as purchased")
				} else {
					cmd.Println("Marked as not purchased")
				}
				return nil
			})
		},
	}
}

func newItemTotalCmd(deps *Deps, creds *credentials) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Sum the prices of items not yet purchased",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withItems(cmd, deps, creds, "item-total", func(ctx context.Context, _ *app, svc *item.Service, userID ulid.ULID) error {
				total, err := svc.SumUnpurchased(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), total.StringFixed(2)) //nolint:errcheck // CLI output
				return nil
			})
		},
	}
}

func parseItemID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(strings.TrimSpace(s))
	if err != nil {
		return ulid.ULID{}, oops.Code("ITEM_INVALID_ID").With("id", s).Wrap(err)
	}
	return id, nil
}

// resolveCategory turns a category id or name into an id. A name that
// matches nothing resolves to 0, which the item validator reports as an
// unknown category.
func resolveCategory(ctx context.Context, svc *item.Service, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	categories, err := svc.Categories(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, s) {
			return c.ID, nil
		}
	}
	return 0, nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func renderItems(items []*item.Item) string {
	if len(items) == 0 {
		return "No items."
	}
	t := newTable("ID", "NAME", "PRICE", "CATEGORY", "PURCHASED")
	for _, it := range items {
		mark := ""
		if it.Purchased {
			mark = "yes"
		}
		t.Row(it.ID.String(), it.Name, it.Price.StringFixed(2), it.CategoryName, mark)
	}
	return t.Render()
}
