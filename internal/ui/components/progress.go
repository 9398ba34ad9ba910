// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/i18n"
	"github.com/arteusai/council-tui/internal/ui/styles"
)

// =============================================================================
// STAGE PROGRESS
// =============================================================================

// StageProgress renders the pipeline position of an in-flight council
// answer as one line per stage.
type StageProgress struct {
	Staged  council.StagedMessage
	Frame   string // current spinner frame
	Strings i18n.Strings
}

// Render returns the progress panel, or "" when nothing is in flight.
func (sp StageProgress) Render(theme *styles.Theme) string {
	var lines []string

	if sp.Staged.Loading.Scraping {
		lines = append(lines, theme.Spinner.Render(sp.Frame)+" "+sp.Strings.Scraping)
	}

	lines = appendStageLine(lines, theme, sp.Frame,
		sp.Strings.Stage1Heading, sp.Staged.Loading.Stage1,
		len(sp.Staged.Stage1) > 0 || sp.Staged.Stage3 != nil, sp.Staged.Stage1Progress)
	lines = appendStageLine(lines, theme, sp.Frame,
		sp.Strings.Stage2Heading, sp.Staged.Loading.Stage2,
		len(sp.Staged.Stage2) > 0 || sp.Staged.Stage3 != nil, sp.Staged.Stage2Progress)
	lines = appendStageLine(lines, theme, sp.Frame,
		sp.Strings.Stage3Heading, sp.Staged.Loading.Stage3,
		sp.Staged.Stage3 != nil, council.StageProgress{})

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// appendStageLine adds one stage row: done, active with model counters, or
// pending. Stages not yet reached render dimmed.
func appendStageLine(lines []string, theme *styles.Theme, frame, label string, active, done bool, progress council.StageProgress) []string {
	switch {
	case done:
		return append(lines, theme.ProgressDone.Render(styles.IndicatorDone+" "+label))
	case active:
		line := theme.Spinner.Render(frame) + " " + label
		if progress.Total > 0 {
			line += theme.ProgressWait.Render(
				fmt.Sprintf(" %d/%d", len(progress.Completed), progress.Total))
		}
		return append(lines, line)
	default:
		return append(lines, theme.ProgressWait.Render(styles.IndicatorPending+" "+label))
	}
}
