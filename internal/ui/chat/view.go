// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/ui/components"
)

// View renders the whole screen for the current state.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.screen {
	case screenLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" arteus-council")
	case screenLogin:
		return m.viewLogin()
	}

	main := m.viewChat()

	switch m.modal {
	case modalModels:
		if m.catalog != nil {
			return components.CenterModal(m.theme, m.viewPicker(), m.width, m.height)
		}
	case modalPersonalize:
		return components.CenterModal(m.theme, m.viewPersonalize(), m.width, m.height)
	case modalDeleteConfirm:
		return components.CenterModal(m.theme, m.strings.DeleteConfirm, m.width, m.height)
	case modalHelp:
		return components.CenterModal(m.theme, m.viewHelp(), m.width, m.height)
	}
	return main
}

// =============================================================================
// LOGIN SCREEN
// =============================================================================

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.theme.ModalTitle.Render(m.strings.SignIn))
	b.WriteString("\n\n")

	b.WriteString(m.theme.LoginLabel.Render(m.strings.Email))
	b.WriteString("\n")
	b.WriteString(m.login.email.View())
	b.WriteString("\n\n")

	passwordLabel := m.strings.Password
	if m.serverCfg != nil && m.serverCfg.LeadsMode {
		passwordLabel = "Telegram"
	}
	b.WriteString(m.theme.LoginLabel.Render(passwordLabel))
	b.WriteString("\n")
	b.WriteString(m.login.password.View())
	b.WriteString("\n")

	if m.login.errText != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.LoginError.Render(m.login.errText))
		b.WriteString("\n")
	}
	if m.login.busy {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
	}

	box := m.theme.LoginBox.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m Model) viewChat() string {
	contentHeight := m.height - 1 // status bar
	sidebar := m.viewSidebar(contentHeight)

	transcript := m.viewport.View()
	input := m.theme.InputContainer.Width(m.viewport.Width).Render(m.input.View())
	right := lipgloss.JoinVertical(lipgloss.Left, transcript, input)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewStatusBar())
}

func (m Model) viewStatusBar() string {
	identity := ""
	if m.user != nil {
		switch {
		case m.user.Username != "":
			identity = m.user.Username
		case m.user.Email != "":
			identity = m.user.Email
		}
	}

	var hints []components.Shortcut
	for _, binding := range m.keyMap.ShortHelp() {
		hints = append(hints, components.Shortcut{
			Key:  binding.Help().Key,
			Desc: binding.Help().Desc,
		})
	}

	return components.StatusBar{
		Width:    m.width,
		Identity: identity,
		Language: m.strings.Code(),
		Notice:   m.notice,
		IsError:  m.noticeErr,
		Hints:    hints,
	}.Render(m.theme)
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.ModalTitle.Render("arteus-council"))
	b.WriteString("\n\n")
	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			b.WriteString(m.theme.StatusKey.Render(binding.Help().Key))
			b.WriteString("  ")
			b.WriteString(binding.Help().Desc)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport rebuilds the transcript content from the visible
// conversation plus any staged in-flight answer.
func (m *Model) refreshViewport() {
	var sections []string

	if m.current != nil {
		for _, msg := range m.current.Messages {
			switch msg.Role {
			case council.RoleUser:
				sections = append(sections,
					m.theme.UserMessage.Width(m.viewport.Width-2).Render(msg.Content))
			case council.RoleAssistant:
				sections = append(sections, m.renderAssistant(messageAsStaged(msg), true))
			}
		}
	}

	if staged, ok := m.streams.Snapshot(m.visibleID()); ok && !staged.Done {
		progress := components.StageProgress{
			Staged:  staged,
			Frame:   m.spinner.View(),
			Strings: m.strings,
		}.Render(m.theme)
		if progress != "" {
			sections = append(sections, progress)
		}
		sections = append(sections, m.renderAssistant(staged, false))
	}

	if len(sections) == 0 {
		sections = append(sections, m.theme.InputPlaceholder.Render(m.strings.TypeMessage))
	}

	m.viewport.SetContent(strings.Join(sections, "\n\n"))
}

// messageAsStaged views a settled transcript message through the staged
// renderer so both paths share one layout.
func messageAsStaged(msg council.Message) council.StagedMessage {
	return council.StagedMessage{
		Stage1:   msg.Stage1,
		Stage2:   msg.Stage2,
		Stage3:   msg.Stage3,
		Metadata: msg.Metadata,
		Done:     true,
	}
}

// renderAssistant renders one council answer: scraped links, stage-1 model
// tabs, the stage-2 ranking table and the chairman synthesis.
func (m Model) renderAssistant(staged council.StagedMessage, settled bool) string {
	var parts []string
	width := m.viewport.Width - 2
	resolver := m.displayResolver()

	if len(staged.ScrapedLinks) > 0 {
		var links []string
		for _, link := range staged.ScrapedLinks {
			mark := "+"
			if !link.Success {
				mark = "-"
			}
			links = append(links, mark+" "+m.theme.ScrapedLink.Render(link.URL))
		}
		parts = append(parts, strings.Join(links, "\n"))
	}

	if len(staged.Stage1) > 0 && !m.cfg.UI.CompactMode {
		parts = append(parts, m.renderStage1(staged.Stage1, resolver, width))
	}

	if staged.Metadata != nil && len(staged.Metadata.AggregateRankings) > 0 {
		table := components.RankingTable{
			Metadata:      staged.Metadata,
			Resolver:      resolver,
			MaxWidth:      width,
			ModelHeader:   m.strings.ModelColumn,
			AverageHeader: m.strings.AverageColumn,
			VotesHeader:   m.strings.VotesColumn,
		}.Render(m.theme)
		if table != "" {
			parts = append(parts,
				m.theme.Stage2Header.Render(m.strings.RankingsHeading)+"\n"+table)
		}
	}

	if staged.Stage3 != nil {
		heading := m.strings.FinalAnswer + " (" +
			council.ResolveDisplayName(resolver, staged.Stage3.Model) + ")"
		body := m.md.Render(staged.Stage3.Response)
		parts = append(parts,
			m.theme.Stage3Header.Render(heading)+"\n"+body)
	}

	if staged.Err != "" {
		parts = append(parts, m.theme.StatusError.Render(staged.Err))
	}

	if len(parts) == 0 {
		return ""
	}
	return m.theme.AssistantMessage.Width(width).Render(strings.Join(parts, "\n\n"))
}

// renderStage1 shows per-model answers behind a tab row; only the active
// tab's answer is expanded.
func (m Model) renderStage1(results council.Stage1Results, resolver council.DisplayNameResolver, width int) string {
	tab := m.stage1Tab
	if tab >= len(results) {
		tab = 0
	}

	var tabs []string
	for i, result := range results {
		name := council.ResolveDisplayName(resolver, result.Model)
		if i == tab {
			tabs = append(tabs, m.theme.ModelTabActive.Render(name))
		} else {
			tabs = append(tabs, m.theme.ModelTab.Render(name))
		}
	}

	body := components.RenderFences(results[tab].Response, width)
	return m.theme.Stage1Header.Render(m.strings.Stage1Heading) + "\n" +
		strings.Join(tabs, " ") + "\n" + body
}
