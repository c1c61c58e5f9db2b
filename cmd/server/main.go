package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/stellarlinkco/promptvault/api"
	"github.com/stellarlinkco/promptvault/internal/config"
	"github.com/stellarlinkco/promptvault/internal/convert"
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

	loadConfig                = config.Load
	openStore                 = store.Open
	defaultProviderFromConfig = llm.DefaultProviderFromConfig
	newServer                 = api.NewServer
	runServer                 = (*api.Server).Run
)

func main() {
	osExit(runMain(os.Args[1:]))
}

func runMain(args []string) int {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(stderrWriter)

	var addr string
	var configPath string
	fs.StringVar(&addr, "addr", "", "listen address (defaults to server.addr from config)")
	fs.StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}
	defer func() { _ = st.Close() }()

	registry := provider.NewDefaultRegistry()

	// The enhancement agent is optional: without a configured LLM
	// backend the server still serves everything except enhance.
	var agent enhance.Agent
	if completion, err := defaultProviderFromConfig(cfg); err == nil {
		agent = enhance.NewLLMAgent(completion, cfg.Enhancement.Model)
	}

	mgr := manager.New(st, registry, agent, history.NewTrail())

	srv, err := newServer(cfg, mgr, registry, convert.NewImporter(st))
	if err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}
	if err := runServer(srv, addr); err != nil {
		fmt.Fprintln(stderrWriter, err)
		return 1
	}

	return 0
}
