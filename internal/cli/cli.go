// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the
// non-interactive subcommands. The TUI itself lives in internal/ui/chat;
// everything here prints to stdout and exits.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/storage"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdModels
	CmdExport
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Server string // --server overrides the configured base URL
	JSON   bool   // --json machine-readable output
	Quiet  bool   // --quiet suppresses informational lines

	// Command-specific
	Subcommand     string
	ConversationID string
	Format         string // export: "md" or "pdf"
	Output         string // export: output directory override

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `arteus-council - terminal client for the Arteus model council

The council sends your question to several language models, has each model
rank the anonymized answers of its peers, and a chairman model synthesize
the final reply. This client streams all three stages live.

Usage:
  arteus-council                 Start the TUI (default)
  arteus-council login           Sign in and store the token locally
  arteus-council logout          Drop stored credentials
  arteus-council models          List available council models
  arteus-council export <id>     Export a conversation turn (md or pdf)
  arteus-council doctor          Check backend connectivity and local state
  arteus-council version         Show version information

Export:
  arteus-council export <id> --format md       Markdown document
  arteus-council export <id> --format pdf      PDF document
  arteus-council export <id> --output <dir>    Write into a directory
  arteus-council export latest                 Newest conversation

Global flags:
  --server <url>    Backend base URL (overrides config and env)
  --json            Machine-readable output where supported
  --quiet           Only print errors and results

Configuration:
  ~/.arteus-council/config.toml  Settings file (TOML)
  ARTEUS_BASE_URL                Backend base URL
  ARTEUS_AUTH_MODE               "token" or "session"

Examples:
  arteus-council
  arteus-council login
  arteus-council export latest --format pdf --output ~/Documents
`

// Parse reads os.Args and returns the command to run with its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs is Parse over an explicit argument slice, split out for tests.
func ParseArgs(argv []string) (Command, Args) {
	var args Args
	remaining := parseGlobalFlags(&args, argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "login", "signin":
		return CmdLogin, args

	case "logout", "signout":
		return CmdLogout, args

	case "models", "m":
		return CmdModels, args

	case "export":
		parseExportArgs(&args, remaining)
		return CmdExport, args

	case "doctor", "diag":
		return CmdDoctor, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// parseGlobalFlags strips the flags every command accepts and returns what
// is left for command dispatch.
func parseGlobalFlags(args *Args, argv []string) []string {
	var remaining []string
	for i := 0; i < len(argv); i++ {
		switch arg := argv[i]; {
		case arg == "--server" && i+1 < len(argv):
			i++
			args.Server = argv[i]
		case strings.HasPrefix(arg, "--server="):
			args.Server = strings.TrimPrefix(arg, "--server=")
		case arg == "--json":
			args.JSON = true
		case arg == "--quiet", arg == "-q":
			args.Quiet = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining
}

func parseExportArgs(args *Args, argv []string) {
	for i := 0; i < len(argv); i++ {
		switch arg := argv[i]; {
		case arg == "--format" && i+1 < len(argv):
			i++
			args.Format = strings.ToLower(argv[i])
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.ToLower(strings.TrimPrefix(arg, "--format="))
		case arg == "--output" && i+1 < len(argv):
			i++
			args.Output = argv[i]
		case strings.HasPrefix(arg, "--output="):
			args.Output = strings.TrimPrefix(arg, "--output=")
		case !strings.HasPrefix(arg, "-") && args.ConversationID == "":
			args.ConversationID = arg
		}
	}
	if args.Format == "" {
		args.Format = "md"
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// HandleVersion prints version information.
func HandleVersion(args Args) {
	if args.JSON {
		fmt.Printf("{\"version\":%q,\"commit\":%q,\"built\":%q,\"go\":%q}\n",
			Version, GitCommit, BuildDate, runtime.Version())
		return
	}
	fmt.Printf("arteus-council %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
	fmt.Printf("  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// SHARED WIRING
// =============================================================================

// bootstrap loads configuration and opens storage plus an API client the
// same way main does for the TUI.
func bootstrap(args Args) (*config.Config, *storage.Store, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}

	baseURL, err := cfg.ResolveBaseURL()
	if err != nil {
		return nil, nil, nil, err
	}

	store := storage.OpenBestEffort(cfg.Storage.Path)
	client := api.NewClient(baseURL).
		WithAuthMode(cfg.AuthMode()).
		WithCredentials(store)
	return cfg, store, client, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
