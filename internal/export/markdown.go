// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/arteusai/council-tui/internal/council"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports a council turn to Markdown. The same output is
// used for file export and clipboard copy.
type MarkdownExporter struct {
	labels Labels
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{labels: opts.Labels}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// Export renders the turn. Sections appear only when their data is present:
// title and timestamp, the question, the chairman's final answer, one
// subsection per Stage 1 model, and the aggregate ranking table (numeric
// rows only, ascending by average).
func (e *MarkdownExporter) Export(turn Turn, resolver council.DisplayNameResolver) ([]byte, error) {
	var sb strings.Builder

	ts := turn.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", e.labels.DocumentTitle))
	sb.WriteString(fmt.Sprintf("*%s*\n\n", ts.Format("2006-01-02 15:04")))

	if strings.TrimSpace(turn.Question) != "" {
		sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", e.labels.Question, turn.Question))
	}

	msg := turn.Message

	if msg.Stage3 != nil && msg.Stage3.Response != "" {
		name := council.ResolveDisplayName(resolver, msg.Stage3.Model)
		sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", e.labels.FinalAnswer, name))
		sb.WriteString(msg.Stage3.Response)
		sb.WriteString("\n\n")
	}

	if len(msg.Stage1) > 0 {
		sb.WriteString(fmt.Sprintf("## %s\n\n", e.labels.IndividualResponses))
		for _, resp := range msg.Stage1 {
			name := council.ResolveDisplayName(resolver, resp.Model)
			sb.WriteString(fmt.Sprintf("### %s\n\n%s\n\n", name, resp.Response))
		}
	}

	if msg.Metadata != nil {
		if table := e.rankingTable(msg.Metadata.AggregateRankings, resolver); table != "" {
			sb.WriteString(table)
		}
	}

	return []byte(sb.String()), nil
}

// rankingTable renders the aggregate table, or "" when no row is numeric.
// Non-numeric averages are excluded from the Markdown output.
func (e *MarkdownExporter) rankingTable(rankings []council.AggregateRanking, resolver council.DisplayNameResolver) string {
	rows := council.SortedAggregate(rankings)
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", e.labels.RankingTable))
	sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", e.labels.ColumnModel, e.labels.ColumnAverage, e.labels.ColumnVotes))
	sb.WriteString("| --- | --- | --- |\n")
	for _, row := range rows {
		name := council.ResolveDisplayName(resolver, row.Model)
		sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n", name, row.AverageRank.String(), row.RankingsCount))
	}
	sb.WriteString("\n")
	return sb.String()
}
