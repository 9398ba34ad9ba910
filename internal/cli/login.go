// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/arteusai/council-tui/internal/api"
)

const loginTimeout = 30 * time.Second

// HandleLogin prompts for credentials, authenticates against the backend
// and stores the issued token for later runs.
func HandleLogin(args Args) {
	cfg, store, client, err := bootstrap(args)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	serverCfg, err := client.GetServerConfig(ctx)
	if err != nil {
		fail(fmt.Errorf("reach backend: %w", err))
	}
	if !serverCfg.AuthEnabled && !serverCfg.LeadsMode {
		fmt.Println("This deployment does not require authentication.")
		return
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		fail(err)
	}
	email = strings.TrimSpace(email)

	var resp *api.LoginResponse
	if serverCfg.LeadsMode {
		fmt.Print("Telegram (optional): ")
		telegram, _ := reader.ReadString('\n')
		resp, err = client.RegisterLead(ctx, api.LeadRegisterRequest{
			Email:    email,
			Telegram: strings.TrimSpace(telegram),
		})
	} else {
		fmt.Print("Password: ")
		password, readErr := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if readErr != nil {
			fail(readErr)
		}
		resp, err = client.Login(ctx, email, string(password))
	}
	if err != nil {
		fail(err)
	}

	if resp.AccessToken == "" {
		fail(fmt.Errorf("backend returned no token"))
	}
	if serverCfg.LeadsMode {
		err = store.SetSessionID(resp.AccessToken)
	} else {
		err = store.SetToken(resp.AccessToken)
	}
	if err != nil {
		fail(fmt.Errorf("store credentials: %w", err))
	}
	if !store.Persistent() {
		fmt.Fprintln(os.Stderr, "Warning: local storage unavailable, the token is not persisted.")
	}

	if !args.Quiet {
		who := email
		if resp.User != nil && resp.User.Username != "" {
			who = resp.User.Username
		}
		fmt.Printf("Signed in as %s (%s)\n", who, cfg.Server.AuthMode)
	}
}

// HandleLogout clears stored credentials.
func HandleLogout(args Args) {
	_, store, _, err := bootstrap(args)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	if err := store.ClearCredentials(); err != nil {
		fail(err)
	}
	if !args.Quiet {
		fmt.Println("Signed out.")
	}
}
