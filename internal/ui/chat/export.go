// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/export"
)

var errNothingToExport = errors.New("no completed answer to export")

// exportTurn captures the latest finished question/answer pair. Streams in
// flight export their settled snapshot if one exists.
func (m Model) exportTurn() (export.Turn, error) {
	if m.current != nil {
		for i := len(m.current.Messages) - 1; i >= 0; i-- {
			msg := m.current.Messages[i]
			if msg.Role == council.RoleAssistant && (msg.Stage3 != nil || len(msg.Stage1) > 0) {
				return export.Turn{
					Question:  m.current.LastUserContent(),
					Message:   msg,
					Timestamp: time.Now(),
				}, nil
			}
		}
	}
	return export.Turn{}, errNothingToExport
}

func (m Model) exportOptions() *export.Options {
	opts := export.DefaultOptions()
	if m.cfg.Export.OutputDir != "" {
		opts.OutputDir = m.cfg.Export.OutputDir
	}
	opts.Labels = export.Labels{
		DocumentTitle:       "Arteus Council",
		Question:            questionLabel(m.strings.Code()),
		FinalAnswer:         m.strings.FinalAnswer,
		IndividualResponses: m.strings.IndividualAnswers,
		RankingTable:        m.strings.RankingsHeading,
		ColumnModel:         m.strings.ModelColumn,
		ColumnAverage:       m.strings.AverageColumn,
		ColumnVotes:         m.strings.VotesColumn,
	}
	return opts
}

func questionLabel(lang string) string {
	if lang == "ru" {
		return "Вопрос"
	}
	return "Question"
}

// copyMarkdown renders the latest turn as Markdown and places it on the
// system clipboard.
func (m Model) copyMarkdown() tea.Cmd {
	turn, err := m.exportTurn()
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err, toClipboard: true} }
	}
	opts := m.exportOptions()
	resolver := m.displayResolver()
	return func() tea.Msg {
		data, err := export.NewMarkdownExporter(opts).Export(turn, resolver)
		if err == nil {
			err = clipboard.WriteAll(string(data))
		}
		return exportDoneMsg{toClipboard: true, err: err}
	}
}

// exportPDF writes the latest turn as a PDF next to the configured output
// directory.
func (m Model) exportPDF() tea.Cmd {
	turn, err := m.exportTurn()
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}
	opts := m.exportOptions()
	resolver := m.displayResolver()
	fonts := m.fonts
	return func() tea.Msg {
		exporter := export.NewPDFExporter(opts, fonts)
		path, err := export.ExportToFile(turn, exporter, opts, resolver)
		return exportDoneMsg{path: path, err: err}
	}
}
