// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/shoplist/internal/item"
)

// NewSchemaCmd creates the schema command for the JSON import format.
func NewSchemaCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print or check against the JSON import schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the JSON Schema of an import file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommand(cmd, deps, "schema-print", func(_ context.Context, _ *app) error {
				data, err := item.GenerateRecordSchema()
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
					return oops.Code("OUTPUT_FAILED").Wrap(err)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check FILE",
		Short: "Check a JSON import file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, deps, "schema-check", func(_ context.Context, _ *app) error {
				if err := checkFile(args[0]); err != nil {
					return err
				}
				cmd.Printf("%s matches the import schema\n", args[0])
				return nil
			})
		},
	})

	return cmd
}
