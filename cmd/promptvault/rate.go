package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRateCmd(st *cliState) *cobra.Command {
	var user, note string
	var score int

	cmd := &cobra.Command{
		Use:   "rate <id|slug>",
		Short: "Rate a prompt (1..5, one rating per user)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}
			id, err := resolve(st, cmd, args[0])
			if err != nil {
				return err
			}
			r, err := st.mgr.Rate(cmd.Context(), id, user, score, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rated %s: %d by %s\n", r.Slug, score, user)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "rating user")
	cmd.Flags().IntVar(&score, "score", 0, "score from 1 to 5")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}
