package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stellarlinkco/promptvault/internal/manager"
	"github.com/stellarlinkco/promptvault/internal/prompt"
)

func newCreateCmd(st *cliState) *cobra.Command {
	var file, title, summary, owner, goal, audience, format, author string
	var steps, tags, fields []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a prompt record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}

			var in manager.CreateInput
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("create: read %q: %w", file, err)
				}
				if err := yaml.Unmarshal(raw, &in); err != nil {
					return fmt.Errorf("create: parse %q: %w", file, err)
				}
			} else {
				in = manager.CreateInput{
					Title:   title,
					Summary: summary,
					Tags:    tags,
					Owner:   owner,
					Human: prompt.HumanPrompt{
						Goal:     goal,
						Audience: audience,
						Steps:    steps,
						Output: prompt.OutputExpectations{
							Format: format,
							Fields: fields,
						},
					},
				}
			}
			if author != "" {
				in.Author = author
			}

			r, err := st.mgr.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (id %s, version %d)\n", r.Slug, r.ID, r.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML file describing the prompt")
	cmd.Flags().StringVar(&title, "title", "", "prompt title")
	cmd.Flags().StringVar(&summary, "summary", "", "one-line summary")
	cmd.Flags().StringVar(&owner, "owner", "", "owning user or team")
	cmd.Flags().StringVar(&goal, "goal", "", "what the prompt should achieve")
	cmd.Flags().StringVar(&audience, "audience", "", "intended audience")
	cmd.Flags().StringVar(&format, "format", "", "expected output format")
	cmd.Flags().StringVar(&author, "author", "", "author recorded in the version history")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "processing step (repeatable)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "expected output field (repeatable)")
	return cmd
}
