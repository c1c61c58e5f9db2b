package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnhanceCmd(st *cliState) *cobra.Command {
	var contextNote, author string

	cmd := &cobra.Command{
		Use:   "enhance <id|slug>",
		Short: "Generate a structured prompt with the configured LLM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}
			id, err := resolve(st, cmd, args[0])
			if err != nil {
				return err
			}
			r, err := st.mgr.Enhance(cmd.Context(), id, contextNote, author)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enhanced %s to version %d (%d variables)\n",
				r.Slug, r.Version, len(r.Variables))
			return nil
		},
	}

	cmd.Flags().StringVar(&contextNote, "context", "", "extra context passed to the agent")
	cmd.Flags().StringVar(&author, "author", "", "author recorded in the version history")
	return cmd
}
