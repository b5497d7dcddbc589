// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of a category seed file:
//
//	categories:
//	  - Groceries
//	  - Household
type seedFile struct {
	Categories []string `yaml:"categories"`
}

// NewCategoryCmd creates the category command. Categories are shared by all
// users, so these commands do not log in.
func NewCategoryCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "List or seed item categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, deps, "category-list", func(ctx context.Context, a *app) error {
				svc, err := a.itemService(ctx)
				if err != nil {
					return err
				}
				categories, err := svc.Categories(ctx)
				if err != nil {
					return err
				}
				t := newTable("ID", "NAME")
				for _, c := range categories {
					t.Row(strconv.Itoa(c.ID), c.Name)
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.Render()) //nolint:errcheck // CLI output
				return nil
			})
		},
	})

	var file string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Add the categories listed in a YAML file",
		Long: `Add the categories listed in a YAML file. Categories that already
exist are left alone, so seeding is safe to repeat.

The file looks like:

  categories:
    - Groceries
    - Household`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := readSeedFile(file)
			if err != nil {
				return err
			}
			return runCommand(cmd, deps, "category-seed", func(ctx context.Context, a *app) error {
				svc, err := a.itemService(ctx)
				if err != nil {
					return err
				}
				added, err := svc.SeedCategories(ctx, names)
				if err != nil {
					return err
				}
				cmd.Printf("Added %d of %d categories\n", added, len(names))
				return nil
			})
		},
	}
	seed.Flags().StringVarP(&file, "file", "f", "", "YAML file with a categories list (required)")
	_ = seed.MarkFlagRequired("file")

	cmd.AddCommand(seed)
	return cmd
}

func readSeedFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}
	if len(f.Categories) == 0 {
		return nil, oops.Code("SEED_INVALID").With("path", path).Errorf("%s lists no categories", path)
	}
	return f.Categories, nil
}
