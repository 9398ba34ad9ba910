// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/export"
	"github.com/arteusai/council-tui/internal/i18n"
)

// HandleExport fetches a conversation and writes its latest finished turn
// as a Markdown or PDF document.
func HandleExport(args Args) {
	if args.ConversationID == "" {
		fail(fmt.Errorf("export needs a conversation id (or \"latest\")"))
	}
	if args.Format != "md" && args.Format != "pdf" {
		fail(fmt.Errorf("unsupported format %q (md or pdf)", args.Format))
	}

	cfg, store, client, err := bootstrap(args)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	id := args.ConversationID
	if id == "latest" {
		metas, err := client.ListConversations(ctx)
		if err != nil {
			fail(err)
		}
		if len(metas) == 0 {
			fail(fmt.Errorf("no conversations on the backend"))
		}
		newest := metas[0]
		for _, meta := range metas[1:] {
			if meta.CreatedAt.After(newest.CreatedAt) {
				newest = meta
			}
		}
		id = newest.ID
	}

	conv, err := client.GetConversation(ctx, id)
	if err != nil {
		fail(err)
	}

	turn, err := latestTurn(conv)
	if err != nil {
		fail(err)
	}

	opts := exportOptions(cfg, args)
	resolver := turnResolver(turn.Message)

	var exporter export.Exporter
	if args.Format == "pdf" {
		exporter = export.NewPDFExporter(opts, fontPack(cfg))
	} else {
		exporter = export.NewMarkdownExporter(opts)
	}

	path, err := export.ExportToFile(turn, exporter, opts, resolver)
	if err != nil {
		fail(err)
	}
	if args.Quiet {
		fmt.Println(path)
	} else {
		fmt.Printf("Exported %s to %s\n", conv.Title, path)
	}
}

// latestTurn picks the newest finished answer of a conversation.
func latestTurn(conv *council.Conversation) (export.Turn, error) {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		msg := conv.Messages[i]
		if msg.Role == council.RoleAssistant && (msg.Stage3 != nil || len(msg.Stage1) > 0) {
			return export.Turn{
				Question:  conv.LastUserContent(),
				Message:   msg,
				Timestamp: time.Now(),
			}, nil
		}
	}
	return export.Turn{}, fmt.Errorf("conversation has no completed answer")
}

// turnResolver maps anonymized ranking labels back to model names using
// the turn's own metadata.
func turnResolver(msg council.Message) council.DisplayNameResolver {
	var labels map[string]string
	if msg.Metadata != nil {
		labels = msg.Metadata.LabelToModel
	}
	return func(model string) string {
		if full, ok := labels[model]; ok {
			return council.ShortModelName(full)
		}
		return council.ShortModelName(model)
	}
}

func exportOptions(cfg *config.Config, args Args) *export.Options {
	opts := export.DefaultOptions()
	if cfg.Export.OutputDir != "" {
		opts.OutputDir = cfg.Export.OutputDir
	}
	if args.Output != "" {
		opts.OutputDir = args.Output
	}

	strs := i18n.For(cfg.Council.Language)
	opts.Labels = export.Labels{
		DocumentTitle:       "Arteus Council",
		Question:            questionLabel(strs.Code()),
		FinalAnswer:         strs.FinalAnswer,
		IndividualResponses: strs.IndividualAnswers,
		RankingTable:        strs.RankingsHeading,
		ColumnModel:         strs.ModelColumn,
		ColumnAverage:       strs.AverageColumn,
		ColumnVotes:         strs.VotesColumn,
	}
	return opts
}

func questionLabel(lang string) string {
	if lang == "ru" {
		return "Вопрос"
	}
	return "Question"
}

func fontPack(cfg *config.Config) *export.FontPack {
	reg, bold := cfg.Export.FontRegular, cfg.Export.FontBold
	if reg == "" {
		return nil
	}
	if len(reg) > 7 && (reg[:7] == "http://" || (len(reg) > 8 && reg[:8] == "https://")) {
		return export.NewHTTPFontPack(reg, bold)
	}
	return export.NewFileFontPack(reg, bold)
}
