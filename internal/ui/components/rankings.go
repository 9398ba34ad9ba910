// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/ui/styles"
	"github.com/arteusai/council-tui/internal/util"
)

// =============================================================================
// RANKING TABLE
// =============================================================================

// RankingTable renders stage-2 aggregate rankings. Rows sort ascending by
// average rank; entries without a numeric average trail the table as N/A.
type RankingTable struct {
	Metadata *council.Metadata
	Resolver council.DisplayNameResolver
	MaxWidth int

	// Column headers, localized by the caller
	ModelHeader   string
	AverageHeader string
	VotesHeader   string
}

// Render returns the formatted table, or "" when there is nothing to show.
func (rt RankingTable) Render(theme *styles.Theme) string {
	if rt.Metadata == nil || len(rt.Metadata.AggregateRankings) == 0 {
		return ""
	}

	modelW := 30
	avgW := 14
	votesW := 7
	if rt.MaxWidth > 0 && rt.MaxWidth < modelW+avgW+votesW+4 {
		modelW = rt.MaxWidth - avgW - votesW - 4
		if modelW < 10 {
			modelW = 10
		}
	}

	cell := func(style lipgloss.Style, text string, width int) string {
		return style.Width(width).Render(util.TruncateWidth(text, width))
	}

	var b strings.Builder
	b.WriteString(cell(theme.TableHeader, rt.ModelHeader, modelW))
	b.WriteString(cell(theme.TableHeader, rt.AverageHeader, avgW))
	b.WriteString(cell(theme.TableHeader, rt.VotesHeader, votesW))
	b.WriteString("\n")

	rows := council.SortedAggregate(rt.Metadata.AggregateRankings)
	for _, agg := range rt.Metadata.AggregateRankings {
		if !agg.AverageRank.Valid {
			rows = append(rows, agg)
		}
	}
	for i, agg := range rows {
		name := council.ResolveDisplayName(rt.Resolver, agg.Model)
		avg := agg.AverageRank.String()

		rowStyle := theme.TableCell
		if i%2 == 1 {
			rowStyle = theme.TableRowAlt
		}
		b.WriteString(cell(rowStyle, name, modelW))
		b.WriteString(cell(rowStyle, avg, avgW))
		b.WriteString(cell(rowStyle, fmt.Sprintf("%d", agg.RankingsCount), votesW))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
