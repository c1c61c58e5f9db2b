package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id|slug>",
		Short: "Show version history, ratings and run stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}
			id, err := resolve(st, cmd, args[0])
			if err != nil {
				return err
			}
			view, err := st.mgr.History(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tDATE\tAUTHOR\tMESSAGE")
			for _, v := range view.Versions {
				fmt.Fprintf(tw, "v%d\t%s\t%s\t%s\n",
					v.Number, v.CreatedAt.Format(time.RFC3339), v.Author, v.Message)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if view.Summary.Count > 0 {
				fmt.Fprintf(out, "\nratings: %d, average %.1f\n", view.Summary.Count, view.Summary.Average)
			}
			if view.Runs.Total > 0 {
				fmt.Fprintf(out, "runs: %d, success rate %.0f%%, avg latency %.0fms\n",
					view.Runs.Total, view.Runs.SuccessRate*100, view.Runs.AvgLatencyMs)
			}
			return nil
		},
	}
}
