package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/promptvault/internal/config"
	"github.com/stellarlinkco/promptvault/internal/enhance"
	"github.com/stellarlinkco/promptvault/internal/history"
	"github.com/stellarlinkco/promptvault/internal/llm"
	"github.com/stellarlinkco/promptvault/internal/manager"
	"github.com/stellarlinkco/promptvault/internal/provider"
	"github.com/stellarlinkco/promptvault/internal/store"
)

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

// cliState lazily opens the store and builds the manager so commands
// that only print help never touch the database.
type cliState struct {
	configPath string

	cfg   *config.Config
	store store.Store
	mgr   *manager.Manager
	reg   *provider.Registry
}

func (st *cliState) open() error {
	if st.mgr != nil {
		return nil
	}

	cfg, err := config.Load(st.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = config.Default()
	}
	st.cfg = cfg

	s, err := store.Open(cfg)
	if err != nil {
		return err
	}
	st.store = s

	st.reg = provider.NewDefaultRegistry()

	var agent enhance.Agent
	if completion, err := llm.DefaultProviderFromConfig(cfg); err == nil {
		agent = enhance.NewLLMAgent(completion, cfg.Enhancement.Model)
	}
	st.mgr = manager.New(s, st.reg, agent, history.NewTrail())
	return nil
}

func (st *cliState) close() {
	if st.store != nil {
		_ = st.store.Close()
	}
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "promptvault",
		Short:         "Manage, enhance and render prompt records",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			st.close()
		},
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")

	root.AddCommand(newListCmd(st))
	root.AddCommand(newShowCmd(st))
	root.AddCommand(newCreateCmd(st))
	root.AddCommand(newEnhanceCmd(st))
	root.AddCommand(newRenderCmd(st))
	root.AddCommand(newExportCmd(st))
	root.AddCommand(newImportCmd(st))
	root.AddCommand(newHistoryCmd(st))
	root.AddCommand(newRateCmd(st))
	return root
}

// resolve looks a prompt up by id first, then slug.
func resolve(st *cliState, cmd *cobra.Command, key string) (string, error) {
	r, err := st.mgr.Get(cmd.Context(), key)
	if err == nil {
		return r.ID, nil
	}
	r, err = st.mgr.GetBySlug(cmd.Context(), key)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}
