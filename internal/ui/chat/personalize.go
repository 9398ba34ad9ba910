// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/ui/components"
)

// =============================================================================
// PERSONALIZATION MODAL
// =============================================================================

// personalizeState edits the per-user council settings: a personalization
// template, a custom prompt, and the base identity template.
type personalizeState struct {
	cursor     int // index into template rows; last row is the prompt input
	templateID string
	identityID string
	prompt     textinput.Model
	inPrompt   bool
}

func (m *Model) openPersonalize() {
	prompt := textinput.New()
	prompt.Prompt = ""
	prompt.CharLimit = 2000
	prompt.Placeholder = m.strings.CustomPrompt
	prompt.SetValue(m.settings.PersonalPrompt)

	m.personalize = personalizeState{
		templateID: m.settings.TemplateID,
		identityID: m.settings.BaseSystemPromptID,
		prompt:     prompt,
	}
	m.modal = modalPersonalize
}

func (m Model) updatePersonalize(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := &m.personalize

	if p.inPrompt {
		switch msg.String() {
		case "esc":
			p.inPrompt = false
			p.prompt.Blur()
			return m, nil
		case "enter":
			return m.applyPersonalize()
		}
		var cmd tea.Cmd
		p.prompt, cmd = p.prompt.Update(msg)
		return m, cmd
	}

	rows := len(m.personalizationTemplates) + len(m.identityTemplates) + 1

	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down":
		if p.cursor < rows-1 {
			p.cursor++
		}
	case " ", "x", "enter":
		nPers := len(m.personalizationTemplates)
		nIdent := len(m.identityTemplates)
		switch {
		case p.cursor < nPers:
			tpl := m.personalizationTemplates[p.cursor]
			if p.templateID == tpl.ID {
				p.templateID = ""
			} else {
				p.templateID = tpl.ID
			}
		case p.cursor < nPers+nIdent:
			tpl := m.identityTemplates[p.cursor-nPers]
			if p.identityID == tpl.ID {
				p.identityID = ""
			} else {
				p.identityID = tpl.ID
			}
		default:
			// Prompt row: enter starts editing, save happens from edit mode
			p.inPrompt = true
			p.prompt.Focus()
			return m, nil
		}
		if msg.String() == "enter" {
			return m.applyPersonalize()
		}
	}
	return m, nil
}

// applyPersonalize posts the edited settings to the backend.
func (m Model) applyPersonalize() (Model, tea.Cmd) {
	settings := api.CouncilSettings{
		PersonalPrompt:     strings.TrimSpace(m.personalize.prompt.Value()),
		TemplateID:         m.personalize.templateID,
		BaseSystemPromptID: m.personalize.identityID,
	}
	// Resolve the identity template's prompt text so sends can carry it
	for _, tpl := range m.identityTemplates {
		if tpl.ID == settings.BaseSystemPromptID {
			settings.BaseSystemPrompt = tpl.Prompt
		}
	}
	m.modal = modalNone
	return m, m.saveSettings(settings)
}

func (m Model) viewPersonalize() string {
	var b strings.Builder
	p := m.personalize

	b.WriteString(m.theme.ModalTitle.Render(m.strings.Personalization))
	b.WriteString("\n\n")

	b.WriteString(m.theme.ModalHint.Render(m.strings.Templates))
	b.WriteString("\n")
	for i, tpl := range m.personalizationTemplates {
		b.WriteString(components.Checkbox(m.theme, tpl.Name,
			p.templateID == tpl.ID, p.cursor == i))
		b.WriteString("\n")
	}

	nPers := len(m.personalizationTemplates)
	if len(m.identityTemplates) > 0 {
		b.WriteString("\n")
		for i, tpl := range m.identityTemplates {
			b.WriteString(components.RadioButton(m.theme, tpl.Name,
				p.identityID == tpl.ID, p.cursor == nPers+i))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ModalHint.Render(m.strings.CustomPrompt))
	b.WriteString("\n")
	promptLine := p.prompt.View()
	if p.cursor == nPers+len(m.identityTemplates) && !p.inPrompt {
		promptLine = m.theme.ModalItemSelected.Render(p.prompt.Value())
		if p.prompt.Value() == "" {
			promptLine = m.theme.ModalItemSelected.Render(m.strings.CustomPrompt)
		}
	}
	b.WriteString(promptLine)
	b.WriteString("\n\n")
	b.WriteString(m.theme.ModalHint.Render("enter save · esc close"))
	return b.String()
}
