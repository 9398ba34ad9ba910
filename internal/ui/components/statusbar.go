// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arteusai/council-tui/internal/ui/styles"
	"github.com/arteusai/council-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the single-line footer: identity on the left, a transient
// notice or error in the middle, key hints on the right.
type StatusBar struct {
	Width    int
	Identity string // signed-in user or auth mode
	Language string
	Notice   string
	IsError  bool
	Hints    []Shortcut
}

// Render draws the bar at the configured width.
func (sb StatusBar) Render(theme *styles.Theme) string {
	if sb.Width <= 0 {
		return ""
	}

	left := sb.Identity
	if sb.Language != "" {
		if left != "" {
			left += " · "
		}
		left += strings.ToUpper(sb.Language)
	}

	var hints []string
	for _, h := range sb.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+" "+theme.StatusDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	middle := ""
	if sb.Notice != "" {
		if sb.IsError {
			middle = theme.StatusError.Render(sb.Notice)
		} else {
			middle = theme.StatusNotice.Render(sb.Notice)
		}
	}

	// Truncate the notice first when space runs out
	pad := sb.Width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 0 {
		pad = 0
	}
	if lipgloss.Width(middle) > pad {
		middle = util.TruncateWidth(sb.Notice, pad)
	}

	gapTotal := sb.Width - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right) - 2
	leftGap := gapTotal / 2
	rightGap := gapTotal - leftGap
	if leftGap < 1 {
		leftGap = 1
	}
	if rightGap < 1 {
		rightGap = 1
	}

	line := left + strings.Repeat(" ", leftGap) + middle + strings.Repeat(" ", rightGap) + right
	return theme.StatusBar.Width(sb.Width).Render(util.TruncateWidth(line, sb.Width-2))
}
