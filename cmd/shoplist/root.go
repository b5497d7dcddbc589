// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/shoplist/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the shoplist CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "shoplist",
		Short: "shoplist - a per-user shopping list",
		Long: `shoplist keeps a shopping list per user in PostgreSQL.

Users log in with a password and an optional second factor, then add,
edit, tick off and total their items, or move them in and out as JSON
or CSV files.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewMigrateCmd(deps))
	cmd.AddCommand(NewRegisterCmd(deps))
	cmd.AddCommand(NewLoginCmd(deps))
	cmd.AddCommand(NewItemCmd(deps))
	cmd.AddCommand(NewCategoryCmd(deps))
	cmd.AddCommand(NewImportCmd(deps))
	cmd.AddCommand(NewExportCmd(deps))
	cmd.AddCommand(NewUserCmd(deps))
	cmd.AddCommand(NewSchemaCmd(deps))

	return cmd
}
