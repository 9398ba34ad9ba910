// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/council"
)

// =============================================================================
// MESSAGES
// =============================================================================

type serverConfigMsg struct{ cfg *api.ServerConfig }

type identityMsg struct{ me *api.MeResponse }

type modelsMsg struct{ catalog *api.ModelCatalog }

type conversationsMsg struct{ metas []council.ConversationMeta }

type conversationMsg struct{ conv *council.Conversation }

type conversationCreatedMsg struct {
	conv    *council.Conversation
	content string // pending question to send into the fresh conversation
}

type conversationDeletedMsg struct{ id string }

type allConversationsDeletedMsg struct{}

type settingsMsg struct{ settings *api.CouncilSettings }

type settingsSavedMsg struct{ settings *api.CouncilSettings }

type templatesMsg struct {
	personalization []api.PromptTemplate
	identity        []api.PromptTemplate
}

type loginResultMsg struct {
	resp *api.LoginResponse
	err  error
}

type exportDoneMsg struct {
	path        string
	toClipboard bool
	err         error
}

type noticeExpiredMsg struct{ seq int }

// errMsg wraps any failed async operation for the status bar.
type errMsg struct{ err error }

// ConfigReloadedMsg is delivered by main when the config file changes on
// disk; the shell re-applies theme and language without a restart.
type ConfigReloadedMsg struct{ Cfg *config.Config }

// requestTimeout is the ceiling for non-streaming API calls issued by the
// UI loop.
const requestTimeout = 30 * time.Second

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadServerConfig() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		cfg, err := m.client.GetServerConfig(ctx)
		if err != nil {
			return errMsg{err}
		}
		return serverConfigMsg{cfg}
	}
}

func (m Model) loadIdentity(leadsMode bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var me *api.MeResponse
		var err error
		if leadsMode {
			me, err = m.client.LeadMe(ctx)
		} else {
			me, err = m.client.Me(ctx)
		}
		if err != nil {
			return errMsg{err}
		}
		return identityMsg{me}
	}
}

func (m Model) loadModels() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		catalog, err := m.client.ListModels(ctx)
		if err != nil {
			return errMsg{err}
		}
		return modelsMsg{catalog}
	}
}

func (m Model) loadConversations() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		metas, err := m.client.ListConversations(ctx)
		if err != nil {
			return errMsg{err}
		}
		return conversationsMsg{metas}
	}
}

func (m Model) loadConversation(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		conv, err := m.client.GetConversation(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return conversationMsg{conv}
	}
}

// createConversation makes a fresh conversation; content, when non-empty,
// is submitted into it as soon as the id is known.
func (m Model) createConversation(content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		conv, err := m.client.CreateConversation(ctx)
		if err != nil {
			return errMsg{err}
		}
		return conversationCreatedMsg{conv: conv, content: content}
	}
}

func (m Model) deleteConversation(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := m.client.DeleteConversation(ctx, id); err != nil {
			return errMsg{err}
		}
		return conversationDeletedMsg{id}
	}
}

func (m Model) deleteAllConversations() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := m.client.DeleteAllConversations(ctx); err != nil {
			return errMsg{err}
		}
		return allConversationsDeletedMsg{}
	}
}

func (m Model) loadSettings() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		settings, err := m.client.GetCouncilSettings(ctx)
		if err != nil {
			return errMsg{err}
		}
		return settingsMsg{settings}
	}
}

func (m Model) saveSettings(settings api.CouncilSettings) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		saved, err := m.client.SetCouncilSettings(ctx, settings)
		if err != nil {
			return errMsg{err}
		}
		return settingsSavedMsg{saved}
	}
}

func (m Model) loadTemplates() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		personalization, err := m.client.GetPersonalizationTemplates(ctx)
		if err != nil {
			return errMsg{err}
		}
		identity, err := m.client.GetIdentityTemplates(ctx)
		if err != nil {
			return errMsg{err}
		}
		return templatesMsg{personalization: personalization, identity: identity}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := m.client.Login(ctx, email, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

func (m Model) registerLead(req api.LeadRegisterRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := m.client.RegisterLead(ctx, req)
		return loginResultMsg{resp: resp, err: err}
	}
}

// expireNotice clears a transient status message after a few seconds. The
// sequence number keeps an old timer from wiping a newer notice.
func expireNotice(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq}
	})
}
