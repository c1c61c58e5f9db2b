package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptvault/internal/provider"
)

func newRenderCmd(st *cliState) *cobra.Command {
	var providerID, model string
	var vars []string
	var maxTokens int
	var temperature float64

	cmd := &cobra.Command{
		Use:   "render <id|slug>",
		Short: "Render a prompt into a provider-native payload",
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

			payload, err := st.mgr.Render(cmd.Context(), id, providerID, provider.RenderOptions{
				Model:       model,
				Variables:   values,
				MaxTokens:   maxTokens,
				Temperature: temperature,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&providerID, "provider", "", "provider id (openai, anthropic, meta)")
	cmd.Flags().StringVar(&model, "model", "", "model override")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "variable value as key=value (repeatable)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "max output tokens")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "sampling temperature")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --var %q (expected key=value)", pair)
		}
		values[strings.TrimSpace(key)] = value
	}
	return values, nil
}
