// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arteusai/council-tui/internal/council"
)

// HandleModels lists the backend's model catalog and marks the local
// selection.
func HandleModels(args Args) {
	_, store, client, err := bootstrap(args)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	catalog, err := client.ListModels(ctx)
	if err != nil {
		fail(err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(catalog); err != nil {
			fail(err)
		}
		return
	}

	selected := map[string]bool{}
	if models, err := store.SelectedModels(); err == nil {
		for _, m := range models {
			selected[m] = true
		}
	}

	fmt.Println("Council models:")
	for _, model := range catalog.CouncilModels {
		mark := " "
		if selected[model] {
			mark = "*"
		}
		fmt.Printf("  %s %-40s %s\n", mark, model, council.ShortModelName(model))
	}
	fmt.Printf("\nChairman: %s\n", catalog.ChairmanModel)
	if len(selected) > 0 {
		fmt.Println("\n* = selected for this session")
	}
}
