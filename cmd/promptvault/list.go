package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/store"
)

func newListCmd(st *cliState) *cobra.Command {
	var status, owner, tag, query string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}

			filter := store.Filter{
				Status: prompt.Status(strings.TrimSpace(status)),
				Owner:  strings.TrimSpace(owner),
				Tag:    strings.TrimSpace(tag),
				Query:  strings.TrimSpace(query),
				Limit:  limit,
			}

			var records []*prompt.Record
			var err error
			if filter.Query != "" {
				records, err = st.mgr.Search(cmd.Context(), filter)
			} else {
				records, err = st.mgr.List(cmd.Context(), filter)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tVERSION\tSTATUS\tOWNER\tTITLE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\tv%d\t%s\t%s\t%s\n", r.Slug, r.Version, r.Status, r.Metadata.Owner, r.Metadata.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (draft, active, archived)")
	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	cmd.Flags().StringVar(&query, "query", "", "free text search over title and summary")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}
