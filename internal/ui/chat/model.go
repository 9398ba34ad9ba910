// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea application shell for the
// council client: conversation sidebar, staged transcript, input line,
// login screen and the modal dialogs.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/export"
	"github.com/arteusai/council-tui/internal/i18n"
	"github.com/arteusai/council-tui/internal/session"
	"github.com/arteusai/council-tui/internal/storage"
	"github.com/arteusai/council-tui/internal/ui/components"
	"github.com/arteusai/council-tui/internal/ui/styles"
)

// =============================================================================
// SHELL STATE
// =============================================================================

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenChat
)

type modal int

const (
	modalNone modal = iota
	modalModels
	modalPersonalize
	modalDeleteConfirm
	modalHelp
)

type focus int

const (
	focusInput focus = iota
	focusSidebar
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the council client.
type Model struct {
	cfg     *config.Config
	client  *api.Client
	store   *storage.Store
	streams *session.Manager

	theme   *styles.Theme
	strings i18n.Strings
	keyMap  KeyMap

	width  int
	height int

	screen screen
	modal  modal
	focus  focus

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	md       *components.MarkdownRenderer
	fonts    *export.FontPack

	// Backend state
	serverCfg *api.ServerConfig
	user      *api.User
	catalog   *api.ModelCatalog
	settings  api.CouncilSettings

	personalizationTemplates []api.PromptTemplate
	identityTemplates        []api.PromptTemplate

	// Conversations
	conversations []council.ConversationMeta
	sidebarIndex  int
	current       *council.Conversation

	// Stage-1 tab selection for the newest assistant turn
	stage1Tab int

	// Transient status line
	notice    string
	noticeErr bool
	noticeSeq int

	// Sub-states
	login       loginForm
	picker      pickerState
	personalize personalizeState
}

// New assembles the application model from its wired dependencies.
func New(cfg *config.Config, client *api.Client, store *storage.Store, streams *session.Manager) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	theme := styles.NewThemeNamed(cfg.UI.Theme)
	strs := i18n.For(cfg.UI.Language)
	ti.Placeholder = strs.TypeMessage

	m := Model{
		cfg:      cfg,
		client:   client,
		store:    store,
		streams:  streams,
		theme:    theme,
		strings:  strs,
		keyMap:   DefaultKeyMap(),
		screen:   screenLoading,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		md:       components.NewMarkdownRenderer(76, theme.IsDark),
		fonts:    newFontPack(cfg),
		login:    newLoginForm(),
	}

	// Persisted preferences override config-file defaults
	if theme, err := store.Theme(); err == nil && theme != "" {
		m.theme = styles.NewThemeNamed(theme)
	}
	if lang, err := store.Language(); err == nil && lang != "" {
		m.strings = i18n.For(lang)
		m.input.Placeholder = m.strings.TypeMessage
	}

	return m
}

// newFontPack builds the lazily-loaded PDF font pair from configuration.
func newFontPack(cfg *config.Config) *export.FontPack {
	reg, bold := cfg.Export.FontRegular, cfg.Export.FontBold
	if reg == "" {
		return nil
	}
	if isHTTP(reg) {
		return export.NewHTTPFontPack(reg, bold)
	}
	return export.NewFileFontPack(reg, bold)
}

func isHTTP(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}

// Init starts the initial backend loads and the stream listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadServerConfig(),
		m.loadModels(),
		m.loadConversations(),
		m.loadSettings(),
		m.loadTemplates(),
		m.spinner.Tick,
		m.streams.Await(),
	)
}

// visibleID is the conversation the transcript currently shows, or ""
// for a fresh chat.
func (m Model) visibleID() string {
	if m.current == nil {
		return ""
	}
	return m.current.ID
}

// selectedModels resolves the council composition for the next send:
// session override first, then config, then backend default (nil).
func (m Model) selectedModels() []string {
	if models, err := m.store.SelectedModels(); err == nil && models != nil {
		return models
	}
	if len(m.cfg.Council.Models) > 0 {
		return m.cfg.Council.Models
	}
	return nil
}

func (m Model) chairmanModel() string {
	if chairman, err := m.store.ChairmanModel(); err == nil && chairman != "" {
		return chairman
	}
	return m.cfg.Council.ChairmanModel
}

// displayResolver maps anonymized stage-2 labels and model ids to display
// names using the latest metadata.
func (m Model) displayResolver() council.DisplayNameResolver {
	var labels map[string]string
	if staged, ok := m.streams.Snapshot(m.visibleID()); ok && staged.Metadata != nil {
		labels = staged.Metadata.LabelToModel
	} else if m.current != nil {
		for i := len(m.current.Messages) - 1; i >= 0; i-- {
			if meta := m.current.Messages[i].Metadata; meta != nil {
				labels = meta.LabelToModel
				break
			}
		}
	}
	return func(model string) string {
		if full, ok := labels[model]; ok {
			return council.ShortModelName(full)
		}
		return council.ShortModelName(model)
	}
}

// setNotice replaces the transient status message and schedules expiry.
func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	return expireNotice(m.noticeSeq)
}
