// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/shoplist/internal/item"
)

// NewImportCmd creates the import command.
func NewImportCmd(deps *Deps) *cobra.Command {
	var (
		creds  credentials
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Add items from a JSON or CSV file",
		Long: `Add items from a JSON or CSV file. The format comes from the file
extension unless --format is given.

Records with a bad name, price or category are skipped and counted; the
rest are added. A file that is not a JSON array, or a CSV file without
the name,price,category,is_purchased header, is rejected as a whole.
With --strict a JSON file must also match the import schema exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := importFormat(path, format)
			if err != nil {
				return err
			}
			return runCommand(cmd, deps, "import", func(ctx context.Context, a *app) error {
				id, _, err := a.signIn(ctx, cmd, creds)
				if err != nil {
					return err
				}
				if strict && f == item.FormatJSON {
					if err := checkFile(path); err != nil {
						return err
					}
				}
				st, err := a.open(ctx)
				if err != nil {
					return err
				}
				im, err := item.NewImporter(st.Items(), st.Categories(), a.logger)
				if err != nil {
					return err
				}

				file, err := os.Open(path) //nolint:gosec // path comes from the user
				if err != nil {
					return oops.Code("IMPORT_READ_FAILED").With("path", path).Wrap(err)
				}
				defer file.Close() //nolint:errcheck // read-only

				summary, err := im.Import(ctx, file, f, id.ID)
				if err != nil {
					if summary.Imported > 0 {
						cmd.Printf("Stopped after %d imported, %d skipped\n", summary.Imported, summary.Skipped)
					}
					return err
				}
				cmd.Printf("Imported: %d, skipped: %d\n", summary.Imported, summary.Skipped)
				return nil
			})
		},
	}
	addCredentialFlags(cmd.Flags(), &creds)
	cmd.Flags().StringVar(&format, "format", "", "json or csv (default: from the file extension)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject a JSON file that does not match the import schema")
	return cmd
}

// NewExportCmd creates the export command.
func NewExportCmd(deps *Deps) *cobra.Command {
	var (
		creds  credentials
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write your items as JSON or CSV",
		Long: `Write your items as JSON or CSV, in the same layout import reads.
Output goes to stdout unless --out is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := item.ParseFormat(format)
			if err != nil {
				return err
			}
			return runCommand(cmd, deps, "export", func(ctx context.Context, a *app) error {
				id, _, err := a.signIn(ctx, cmd, creds)
				if err != nil {
					return err
				}
				st, err := a.open(ctx)
				if err != nil {
					return err
				}
				ex, err := item.NewExporter(st.Items())
				if err != nil {
					return err
				}
				return exportTo(ctx, cmd, ex, f, id.ID, out)
			})
		},
	}
	addCredentialFlags(cmd.Flags(), &creds)
	cmd.Flags().StringVar(&format, "format", string(item.FormatJSON), "json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func exportTo(ctx context.Context, cmd *cobra.Command, ex *item.Exporter, f item.Format, userID ulid.ULID, path string) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		file, err := os.Create(path) //nolint:gosec // path comes from the user
		if err != nil {
			return oops.Code("EXPORT_WRITE_FAILED").With("path", path).Wrap(err)
		}
		defer file.Close() //nolint:errcheck // Sync below reports write errors
		w = file
		n, err := ex.Export(ctx, w, f, userID)
		if err != nil {
			return err
		}
		if err := file.Sync(); err != nil {
			return oops.Code("EXPORT_WRITE_FAILED").With("path", path).Wrap(err)
		}
		cmd.Printf("Exported %d items to %s\n", n, path)
		return nil
	}
	_, err := ex.Export(ctx, w, f, userID)
	return err
}

func importFormat(path, flag string) (item.Format, error) {
	if flag != "" {
		return item.ParseFormat(flag)
	}
	return item.FormatFromPath(path)
}

func checkFile(path string) error {
	file, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return oops.Code("SCHEMA_READ_FAILED").With("path", path).Wrap(err)
	}
	defer file.Close() //nolint:errcheck // read-only
	return item.CheckPayload(file)
}
