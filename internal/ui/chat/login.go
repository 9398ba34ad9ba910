// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// loginForm is the credential entry state. In leads mode the password
// field becomes an optional Telegram handle and login registers a lead.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	field    int // 0 = email, 1 = password
	busy     bool
	errText  string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Prompt = ""
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.CharLimit = 256
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginForm{email: email, password: password}
}

// leadsMode reconfigures the form for lead registration.
func (f *loginForm) setLeadsMode() {
	f.password.EchoMode = textinput.EchoNormal
	f.password.Placeholder = "@telegram (optional)"
}

func (f *loginForm) focusField(field int) {
	f.field = field
	if field == 0 {
		f.email.Focus()
		f.password.Blur()
	} else {
		f.email.Blur()
		f.password.Focus()
	}
}

// updateLogin handles key input on the login screen.
func (m Model) updateLogin(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.login.focusField(1 - m.login.field)
		return m, nil
	case "enter":
		if m.login.busy {
			return m, nil
		}
		email := strings.TrimSpace(m.login.email.Value())
		if email == "" {
			m.login.errText = m.strings.LoginFailed
			return m, nil
		}
		m.login.busy = true
		m.login.errText = ""
		if m.serverCfg != nil && m.serverCfg.LeadsMode {
			return m, m.registerLead(api.LeadRegisterRequest{
				Email:    email,
				Telegram: strings.TrimSpace(m.login.password.Value()),
			})
		}
		return m, m.loginCmd(email, m.login.password.Value())
	}

	var cmd tea.Cmd
	if m.login.field == 0 {
		m.login.email, cmd = m.login.email.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}
