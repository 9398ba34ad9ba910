// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/ui/components"
)

// =============================================================================
// MODEL PICKER
// =============================================================================

// pickerState is the model-picker modal: a multi-select over the council
// catalog followed by a single-select chairman row. The selection lives in
// session-scoped storage and resets on the next run.
type pickerState struct {
	cursor   int
	selected map[string]bool
	chairman string
}

// openPicker seeds the modal from the current effective selection.
func (m *Model) openPicker() {
	if m.catalog == nil {
		return
	}
	selected := make(map[string]bool)
	effective := m.selectedModels()
	if effective == nil {
		effective = m.catalog.DefaultPreferred
	}
	if effective == nil {
		effective = m.catalog.CouncilModels
	}
	for _, model := range effective {
		selected[model] = true
	}
	m.picker = pickerState{
		selected: selected,
		chairman: m.chairmanModel(),
	}
	m.modal = modalModels
}

// updatePicker handles key input while the picker modal is open.
func (m Model) updatePicker(msg tea.KeyMsg) (Model, tea.Cmd) {
	total := len(m.catalog.CouncilModels)

	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "up":
		if m.picker.cursor > 0 {
			m.picker.cursor--
		}
		return m, nil
	case "down":
		if m.picker.cursor < total+len(m.catalog.CouncilModels)-1 {
			m.picker.cursor++
		}
		return m, nil
	case " ", "x":
		if m.picker.cursor < total {
			model := m.catalog.CouncilModels[m.picker.cursor]
			m.picker.selected[model] = !m.picker.selected[model]
		} else {
			m.picker.chairman = m.catalog.CouncilModels[m.picker.cursor-total]
		}
		return m, nil
	case "enter":
		return m.applyPicker()
	}
	return m, nil
}

// applyPicker persists the selection for this session and closes the modal.
func (m Model) applyPicker() (Model, tea.Cmd) {
	var models []string
	for _, model := range m.catalog.CouncilModels {
		if m.picker.selected[model] {
			models = append(models, model)
		}
	}
	if len(models) == 0 {
		// An empty council falls back to the backend default
		models = nil
	}
	if err := m.store.SetSelectedModels(models); err == nil {
		_ = m.store.SetChairmanModel(m.picker.chairman)
	}
	m.modal = modalNone
	return m, nil
}

// viewPicker renders the picker modal content.
func (m Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.ModalTitle.Render(m.strings.PickModels))
	b.WriteString("\n\n")

	total := len(m.catalog.CouncilModels)
	for i, model := range m.catalog.CouncilModels {
		b.WriteString(components.Checkbox(m.theme,
			council.ShortModelName(model),
			m.picker.selected[model],
			m.picker.cursor == i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ModalTitle.Render(m.strings.PickChairman))
	b.WriteString("\n\n")
	for i, model := range m.catalog.CouncilModels {
		b.WriteString(components.RadioButton(m.theme,
			council.ShortModelName(model),
			m.picker.chairman == model,
			m.picker.cursor == total+i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ModalHint.Render("space toggle · enter apply · esc close"))
	return b.String()
}
