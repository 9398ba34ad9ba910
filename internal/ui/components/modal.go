// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/arteusai/council-tui/internal/ui/styles"
)

// CenterModal places modal content in a box centered within the given
// screen dimensions.
func CenterModal(theme *styles.Theme, content string, width, height int) string {
	box := theme.ModalBox.Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// Checkbox renders one multi-select row for modal lists.
func Checkbox(theme *styles.Theme, label string, checked, focused bool) string {
	mark := "[ ]"
	if checked {
		mark = "[x]"
	}
	line := mark + " " + label
	if focused {
		return theme.ModalItemSelected.Render(line)
	}
	return theme.ModalItem.Render(line)
}

// RadioButton renders one single-select row for modal lists.
func RadioButton(theme *styles.Theme, label string, selected, focused bool) string {
	mark := "( )"
	if selected {
		mark = "(*)"
	}
	line := mark + " " + label
	if focused {
		return theme.ModalItemSelected.Render(line)
	}
	return theme.ModalItem.Render(line)
}
