// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/i18n"
	"github.com/arteusai/council-tui/internal/session"
	"github.com/arteusai/council-tui/internal/ui/styles"
)

// Update is the Bubble Tea message dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.streams.Streaming() {
			m.refreshViewport()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Stream lifecycle
	case session.EventMsg:
		return m.handleStreamEvent(msg)
	case session.DoneMsg:
		return m.handleStreamDone(msg)

	// Backend loads
	case serverConfigMsg:
		m.serverCfg = msg.cfg
		if m.serverCfg.LeadsMode {
			m.login.setLeadsMode()
		}
		if m.screen == screenLoading {
			if m.serverCfg.AuthEnabled || m.serverCfg.LeadsMode {
				return m, m.loadIdentity(m.serverCfg.LeadsMode)
			}
			m.screen = screenChat
			m.refreshViewport()
		}
		return m, nil

	case identityMsg:
		if msg.me.Authenticated || msg.me.IPBypassed {
			m.user = msg.me.User
			m.screen = screenChat
			m.refreshViewport()
		} else {
			m.screen = screenLogin
		}
		return m, nil

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case modelsMsg:
		m.catalog = msg.catalog
		return m, nil

	case conversationsMsg:
		m.conversations = msg.metas
		// Reopen the conversation from the previous run
		if m.current == nil {
			if id, err := m.store.CurrentConversation(); err == nil && id != "" {
				for _, meta := range m.conversations {
					if meta.ID == id {
						return m, m.loadConversation(id)
					}
				}
			}
		}
		return m, nil

	case conversationMsg:
		m.current = msg.conv
		m.stage1Tab = 0
		m.syncSidebarIndex()
		m.restoreDraft(msg.conv.ID)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case conversationCreatedMsg:
		m.current = msg.conv
		m.syncSidebarIndex()
		_ = m.store.SetCurrentConversation(msg.conv.ID)
		cmds := []tea.Cmd{m.loadConversations()}
		if msg.content != "" {
			var sendCmd tea.Cmd
			m, sendCmd = m.sendContent(msg.content)
			cmds = append(cmds, sendCmd)
		}
		return m, tea.Batch(cmds...)

	case conversationDeletedMsg:
		if m.current != nil && m.current.ID == msg.id {
			m.current = nil
			_ = m.store.SetCurrentConversation("")
		}
		m.streams.Forget(msg.id)
		_ = m.store.DeleteDraft(msg.id)
		m.refreshViewport()
		return m, m.loadConversations()

	case allConversationsDeletedMsg:
		m.current = nil
		m.conversations = nil
		m.sidebarIndex = 0
		_ = m.store.SetCurrentConversation("")
		_ = m.store.DeleteAllDrafts()
		m.refreshViewport()
		return m, nil

	case settingsMsg:
		m.settings = *msg.settings
		return m, nil

	case settingsSavedMsg:
		m.settings = *msg.settings
		return m, m.setNotice(m.strings.SaveSettings+" "+m.strings.Confirm, false)

	case templatesMsg:
		m.personalizationTemplates = msg.personalization
		m.identityTemplates = msg.identity
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setNotice(msg.err.Error(), true)
		}
		if msg.toClipboard {
			return m, m.setNotice(m.strings.CopiedToClipboard, false)
		}
		return m, m.setNotice(m.strings.ExportedPDF+": "+msg.path, false)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case errMsg:
		return m, m.setNotice(apiErrorText(msg.err), true)

	case ConfigReloadedMsg:
		return m.applyReloadedConfig(msg.Cfg), nil
	}

	return m, nil
}

// resize recomputes the layout after a terminal size change.
func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	sidebarW := m.cfg.UI.SidebarWidth
	if sidebarW <= 0 {
		sidebarW = 32
	}
	chatW := m.width - sidebarW - 3
	if chatW < 20 {
		chatW = 20
	}
	m.viewport.Width = chatW
	m.viewport.Height = m.height - 5
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.Width = chatW - 4
	m.md.SetWidth(chatW - 2)
	m.refreshViewport()
	return m
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		_ = m.store.SetDraft(m.visibleID(), m.input.Value())
		m.streams.Cancel()
		return m, tea.Quit
	}

	switch m.screen {
	case screenLoading:
		return m, nil
	case screenLogin:
		return m.updateLogin(msg)
	}

	// Modals swallow all input while open
	switch m.modal {
	case modalModels:
		return m.updatePicker(msg)
	case modalPersonalize:
		return m.updatePersonalize(msg)
	case modalDeleteConfirm:
		return m.updateDeleteConfirm(msg)
	case modalHelp:
		m.modal = modalNone
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()
	case key.Matches(msg, m.keyMap.Cancel):
		if m.streams.Streaming() {
			m.streams.Cancel()
		}
		return m, nil
	case key.Matches(msg, m.keyMap.NewChat):
		return m.startNewChat()
	case key.Matches(msg, m.keyMap.Sidebar):
		m.focus = focusSidebar
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keyMap.Delete):
		if m.current != nil {
			m.modal = modalDeleteConfirm
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Models):
		m.openPicker()
		return m, nil
	case key.Matches(msg, m.keyMap.Personalize):
		m.openPersonalize()
		return m, nil
	case key.Matches(msg, m.keyMap.Language):
		return m.toggleLanguage()
	case key.Matches(msg, m.keyMap.CopyMD):
		return m, m.copyMarkdown()
	case key.Matches(msg, m.keyMap.ExportPDF):
		return m, m.exportPDF()
	case key.Matches(msg, m.keyMap.Help):
		m.modal = modalHelp
		return m, nil
	case key.Matches(msg, m.keyMap.NextTab):
		return m.cycleStage1Tab(1), nil
	case key.Matches(msg, m.keyMap.PrevTab):
		return m.cycleStage1Tab(-1), nil
	case key.Matches(msg, m.keyMap.Up), key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit sends the composed question to the council.
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	m.input.SetValue("")
	_ = m.store.DeleteDraft(m.visibleID())

	if m.current == nil {
		return m, m.createConversation(content)
	}
	var cmd tea.Cmd
	m, cmd = m.sendContent(content)
	return m, cmd
}

// sendContent appends the user turn locally and starts the stream.
func (m Model) sendContent(content string) (Model, tea.Cmd) {
	m.current.Messages = append(m.current.Messages, council.Message{
		Role:    council.RoleUser,
		Content: content,
	})
	m.stage1Tab = 0

	req := api.SendMessageRequest{
		Content:          content,
		Language:         m.cfg.Council.Language,
		Models:           m.selectedModels(),
		ChairmanModel:    m.chairmanModel(),
		BaseSystemPrompt: m.settings.BaseSystemPrompt,
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, m.streams.Start(m.current.ID, req)
}

func (m Model) startNewChat() (tea.Model, tea.Cmd) {
	_ = m.store.SetDraft(m.visibleID(), m.input.Value())
	m.current = nil
	m.sidebarIndex = 0
	m.stage1Tab = 0
	_ = m.store.SetCurrentConversation("")
	m.restoreDraft("")
	m.refreshViewport()
	return m, nil
}

func (m Model) toggleLanguage() (tea.Model, tea.Cmd) {
	m.strings = m.strings.Toggle()
	m.input.Placeholder = m.strings.TypeMessage
	m.cfg.UI.Language = m.strings.Code()
	m.cfg.Council.Language = m.strings.Code()
	_ = m.store.SetLanguage(m.strings.Code())
	m.refreshViewport()
	return m, m.setNotice(m.strings.LanguageSwitched, false)
}

func (m Model) cycleStage1Tab(delta int) Model {
	count := m.stage1Count()
	if count == 0 {
		return m
	}
	m.stage1Tab = (m.stage1Tab + delta + count) % count
	m.refreshViewport()
	return m
}

// stage1Count is the number of model tabs in the newest assistant turn.
func (m Model) stage1Count() int {
	if staged, ok := m.streams.Snapshot(m.visibleID()); ok && len(staged.Stage1) > 0 {
		return len(staged.Stage1)
	}
	if m.current != nil {
		for i := len(m.current.Messages) - 1; i >= 0; i-- {
			if n := len(m.current.Messages[i].Stage1); n > 0 {
				return n
			}
		}
	}
	return 0
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.modal = modalNone
		if m.current != nil {
			return m, m.deleteConversation(m.current.ID)
		}
		return m, nil
	case "a", "A":
		m.modal = modalNone
		return m, m.deleteAllConversations()
	default:
		m.modal = modalNone
		return m, nil
	}
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

func (m Model) handleStreamEvent(msg session.EventMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.streams.Await()}

	if msg.Event.Type == council.EventTitleComplete && msg.Event.Title != "" {
		for i := range m.conversations {
			if m.conversations[i].ID == msg.ConversationID {
				m.conversations[i].Title = msg.Event.Title
			}
		}
		if m.current != nil && m.current.ID == msg.ConversationID {
			m.current.Title = msg.Event.Title
		}
	}

	// Off-screen conversations keep accumulating in the session cache;
	// only the visible one re-renders.
	if msg.ConversationID == m.visibleID() {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleStreamDone(msg session.DoneMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.streams.Await()}

	// Fold the settled answer into the transcript and drop the cache
	if m.current != nil && m.current.ID == msg.ConversationID {
		if msg.Staged.Stage3 != nil || len(msg.Staged.Stage1) > 0 {
			m.current.Messages = append(m.current.Messages, msg.Staged.ToMessage())
		}
		m.streams.Forget(msg.ConversationID)
		m.refreshViewport()
		m.viewport.GotoBottom()
	}

	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		cmds = append(cmds, m.setNotice(m.strings.StreamFailed, true))
	} else if msg.Err == nil && m.visibleID() == msg.ConversationID {
		// The backend normalizes the stored transcript (metadata, label
		// maps); reload the canonical conversation over the locally
		// folded copy.
		cmds = append(cmds, m.loadConversation(msg.ConversationID))
	}
	// Titles arrive during the stream; refresh the list to pick up counts
	cmds = append(cmds, m.loadConversations())
	return m, tea.Batch(cmds...)
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.errText = m.strings.LoginFailed + ": " + apiErrorText(msg.err)
		return m, nil
	}
	if msg.resp.AccessToken != "" {
		if m.serverCfg != nil && m.serverCfg.LeadsMode {
			_ = m.store.SetSessionID(msg.resp.AccessToken)
		} else {
			_ = m.store.SetToken(msg.resp.AccessToken)
		}
	}
	m.user = msg.resp.User
	m.screen = screenChat
	m.refreshViewport()
	return m, tea.Batch(m.loadConversations(), m.loadSettings())
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) syncSidebarIndex() {
	if m.current == nil {
		m.sidebarIndex = 0
		return
	}
	for i, meta := range m.conversations {
		if meta.ID == m.current.ID {
			m.sidebarIndex = i + 1
			return
		}
	}
}

// applyReloadedConfig adopts a config-file edit made while the TUI runs.
// Preferences persisted through the UI still win over the file.
func (m Model) applyReloadedConfig(cfg *config.Config) Model {
	m.cfg = cfg

	if theme, err := m.store.Theme(); err != nil || theme == "" {
		m.theme = styles.NewThemeNamed(cfg.UI.Theme)
	}
	if lang, err := m.store.Language(); err != nil || lang == "" {
		m.strings = i18n.For(cfg.UI.Language)
		m.input.Placeholder = m.strings.TypeMessage
	}
	m.refreshViewport()
	return m
}

// apiErrorText prefers the backend detail message over Go error chains.
func apiErrorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
