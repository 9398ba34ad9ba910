// arteus-council - terminal client for the Arteus model council.
//
// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/cli"
	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/session"
	"github.com/arteusai/council-tui/internal/storage"
	"github.com/arteusai/council-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdModels:
		cli.HandleModels(args)
	case cli.CmdExport:
		cli.HandleExport(args)
	case cli.CmdDoctor:
		cli.HandleDoctor(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func runTUI(args cli.Args) {
	// The TUI owns stdout, so diagnostics go to a file under the config dir.
	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}

	baseURL, err := cfg.ResolveBaseURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := storage.OpenBestEffort(cfg.Storage.Path)
	defer store.Close()

	client := api.NewClient(baseURL).
		WithAuthMode(cfg.AuthMode()).
		WithCredentials(store)
	streams := session.NewManager(client)

	program := tea.NewProgram(
		chat.New(cfg, client, store, streams),
		tea.WithAltScreen(),
	)

	// Theme and language edits in the config file apply live.
	if path, err := config.PathTOML(); err == nil {
		watcher, err := config.NewWatcher(path, func(next *config.Config) {
			program.Send(chat.ConfigReloadedMsg{Cfg: next})
		})
		if err == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging redirects the stdlib logger to ~/.arteus-council/client.log. When
// the directory is unavailable logging is discarded rather than corrupting
// the terminal.
func setupLogging() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "client.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(f)
}
