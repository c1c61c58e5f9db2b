package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptvault/internal/convert"
)

func newImportCmd(st *cliState) *cobra.Command {
	var conflict, author, dir string
	var asVariant bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import provider-format JSON prompt files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && dir == "" {
				return errors.New("import: pass files or --dir")
			}
			if err := st.open(); err != nil {
				return err
			}

			importer := convert.NewImporter(st.store)
			opts := convert.Options{
				Conflict:  convert.ConflictResolution(conflict),
				Author:    author,
				AsVariant: asVariant,
			}

			var batch *convert.BatchResult
			if dir != "" {
				var err error
				batch, err = importer.ImportDir(cmd.Context(), dir, opts)
				if err != nil {
					return err
				}
			} else {
				batch = importer.ImportFiles(cmd.Context(), args, opts)
			}

			out := cmd.OutOrStdout()
			for _, res := range batch.Imported {
				fmt.Fprintf(out, "imported %s (%s)\n", res.Record.Slug, res.Path)
			}
			for _, res := range batch.Skipped {
				fmt.Fprintf(out, "skipped %s: %s\n", res.Path, res.Reason)
			}
			for _, res := range batch.Failed {
				fmt.Fprintf(out, "failed %s: %s\n", res.Path, res.Reason)
			}
			fmt.Fprintf(out, "%d imported, %d skipped, %d failed\n",
				len(batch.Imported), len(batch.Skipped), len(batch.Failed))

			if len(batch.Failed) > 0 && len(batch.Imported) == 0 && len(batch.Skipped) == 0 {
				return errors.New("import: all files failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&conflict, "conflict", "", "conflict resolution: skip, overwrite, create_new")
	cmd.Flags().StringVar(&author, "author", "", "author recorded in the version history")
	cmd.Flags().StringVar(&dir, "dir", "", "import every .json file in a directory")
	cmd.Flags().BoolVar(&asVariant, "as-variant", false, "request the variant import path")
	return cmd
}
