// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/util"
)

// =============================================================================
// SIDEBAR
// =============================================================================

// updateSidebar handles key input while the conversation list has focus.
// The first row is always "new chat".
func (m Model) updateSidebar(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
		return m, nil
	case "down", "j":
		if m.sidebarIndex < len(m.conversations) {
			m.sidebarIndex++
		}
		return m, nil
	case "enter":
		return m.activateSidebar()
	case "esc", "tab", "ctrl+b":
		m.focus = focusInput
		m.input.Focus()
		return m, nil
	}
	return m, nil
}

// activateSidebar opens the selected conversation, stashing the current
// draft first.
func (m Model) activateSidebar() (Model, tea.Cmd) {
	_ = m.store.SetDraft(m.visibleID(), m.input.Value())

	m.focus = focusInput
	m.input.Focus()

	if m.sidebarIndex == 0 {
		// New chat
		m.current = nil
		m.stage1Tab = 0
		_ = m.store.SetCurrentConversation("")
		m.restoreDraft("")
		m.refreshViewport()
		return m, nil
	}

	meta := m.conversations[m.sidebarIndex-1]
	_ = m.store.SetCurrentConversation(meta.ID)
	m.restoreDraft(meta.ID)
	return m, m.loadConversation(meta.ID)
}

func (m *Model) restoreDraft(conversationID string) {
	draft, err := m.store.Draft(conversationID)
	if err != nil {
		draft = ""
	}
	m.input.SetValue(draft)
}

// viewSidebar renders the conversation list column.
func (m Model) viewSidebar(height int) string {
	width := m.cfg.UI.SidebarWidth
	if width <= 0 {
		width = 32
	}

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render(m.strings.Conversations))
	b.WriteString("\n")

	rows := []string{"+ " + m.strings.NewChat}
	for _, meta := range m.conversations {
		title := meta.Title
		if title == "" {
			title = meta.CreatedAt.Format("Jan 2 15:04")
		}
		rows = append(rows, title)
	}

	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.sidebarIndex >= visible {
		start = m.sidebarIndex - visible + 1
	}

	for i := start; i < len(rows) && i < start+visible; i++ {
		label := util.TruncateWidth(rows[i], width-3)
		style := m.theme.SidebarItem
		if i == m.sidebarIndex && m.focus == focusSidebar {
			style = m.theme.SidebarItemSelected
		} else if i > 0 && m.current != nil && m.conversations[i-1].ID == m.current.ID {
			style = m.theme.SidebarItemSelected
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	return m.theme.Sidebar.Width(width).Height(height).Render(b.String())
}
