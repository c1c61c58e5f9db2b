package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptvault/internal/provider"
)

func newExportCmd(st *cliState) *cobra.Command {
	var providerID, model, outDir, filename string
	var vars []string

	cmd := &cobra.Command{
		Use:   "export <id|slug>",
		Short: "Render and write a provider payload to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}
			id, err := resolve(st, cmd, args[0])
			if err != nil {
				return err
			}
			values, err := parseVars(vars)
			if err != nil {
				return err
			}

			export, err := st.mgr.ExportPrompt(cmd.Context(), id, providerID, provider.RenderOptions{
				Model:     model,
				Variables: values,
			}, filename)
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(export.Document, "", "  ")
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, export.Filename)
			if err := os.WriteFile(path, raw, 0o644); err != nil {
				return fmt.Errorf("export: write %q: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerID, "provider", "", "provider id (openai, anthropic, meta)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&filename, "filename", "", "override the derived filename")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "variable value as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}
