package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|slug>",
		Short: "Print a prompt record as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.open(); err != nil {
				return err
			}
			id, err := resolve(st, cmd, args[0])
			if err != nil {
				return err
			}
			r, err := st.mgr.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(r)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
