// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/arteusai/council-tui/internal/config"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	doctorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	checkFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

type checkStatus int

const (
	statusPass checkStatus = iota
	statusWarn
	statusFail
)

type checkResult struct {
	Name    string      `json:"name"`
	Status  checkStatus `json:"status"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// HandleDoctor runs connectivity and local-state diagnostics.
func HandleDoctor(args Args) {
	cfg, store, client, err := bootstrap(args)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var results []checkResult

	// 1. Configuration
	if path, err := config.PathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			results = append(results, checkResult{
				Name:    "Config file",
				Status:  statusPass,
				Message: path,
			})
		} else {
			results = append(results, checkResult{
				Name:    "Config file",
				Status:  statusWarn,
				Message: "not found, using defaults",
				Hint:    "create " + path + " to pin server and models",
			})
		}
	}

	// 2. Local storage
	if store.Persistent() {
		results = append(results, checkResult{
			Name:    "Local storage",
			Status:  statusPass,
			Message: cfg.Storage.Path,
		})
	} else {
		results = append(results, checkResult{
			Name:    "Local storage",
			Status:  statusWarn,
			Message: "sqlite unavailable, state is in-memory only",
			Hint:    "check permissions on " + cfg.Storage.Path,
		})
	}

	// 3. Backend reachability
	baseURL := client.BaseURL()
	serverCfg, err := client.GetServerConfig(ctx)
	if err != nil {
		results = append(results, checkResult{
			Name:    "Backend",
			Status:  statusFail,
			Message: fmt.Sprintf("%s unreachable: %v", baseURL, err),
			Hint:    "set ARTEUS_BASE_URL or --server",
		})
		report(args, results)
		return
	}
	results = append(results, checkResult{
		Name:    "Backend",
		Status:  statusPass,
		Message: baseURL,
	})

	// 4. Authentication
	switch {
	case serverCfg.LeadsMode:
		if me, err := client.LeadMe(ctx); err == nil && me.Authenticated {
			results = append(results, checkResult{Name: "Auth", Status: statusPass, Message: "lead session valid"})
		} else {
			results = append(results, checkResult{
				Name:    "Auth",
				Status:  statusWarn,
				Message: "no valid lead session",
				Hint:    "run: arteus-council login",
			})
		}
	case serverCfg.AuthEnabled:
		if me, err := client.Me(ctx); err == nil && (me.Authenticated || me.IPBypassed) {
			who := "token valid"
			if me.User != nil && me.User.Email != "" {
				who = me.User.Email
			}
			results = append(results, checkResult{Name: "Auth", Status: statusPass, Message: who})
		} else {
			results = append(results, checkResult{
				Name:    "Auth",
				Status:  statusWarn,
				Message: "not signed in",
				Hint:    "run: arteus-council login",
			})
		}
	default:
		results = append(results, checkResult{Name: "Auth", Status: statusPass, Message: "not required"})
	}

	// 5. Model catalog
	if catalog, err := client.ListModels(ctx); err == nil && len(catalog.CouncilModels) > 0 {
		results = append(results, checkResult{
			Name:    "Models",
			Status:  statusPass,
			Message: fmt.Sprintf("%d council models, chairman %s", len(catalog.CouncilModels), catalog.ChairmanModel),
		})
	} else {
		results = append(results, checkResult{
			Name:    "Models",
			Status:  statusFail,
			Message: "model catalog unavailable",
		})
	}

	// 6. PDF fonts
	if cfg.Export.FontRegular == "" {
		results = append(results, checkResult{
			Name:    "PDF fonts",
			Status:  statusWarn,
			Message: "no Unicode font configured, PDF export uses Helvetica",
			Hint:    "set export.font_regular for Cyrillic output",
		})
	} else {
		results = append(results, checkResult{
			Name:    "PDF fonts",
			Status:  statusPass,
			Message: cfg.Export.FontRegular,
		})
	}

	report(args, results)
}

func report(args Args, results []checkResult) {
	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
	} else {
		fmt.Println(doctorTitleStyle.Render("arteus-council doctor"))
		fmt.Println()
		for _, r := range results {
			fmt.Printf("  %s %-14s %s\n", r.Status.mark(), r.Name, r.Message)
			if r.Hint != "" {
				fmt.Printf("    %s\n", r.Hint)
			}
		}
	}

	for _, r := range results {
		if r.Status == statusFail {
			os.Exit(1)
		}
	}
}

func (s checkStatus) mark() string {
	switch s {
	case statusPass:
		return checkPassStyle.Render("[OK]")
	case statusWarn:
		return checkWarnStyle.Render("[!!]")
	default:
		return checkFailStyle.Render("[XX]")
	}
}
