// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the keyboard bindings for the chat interface.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Submit      key.Binding
	Cancel      key.Binding
	NewChat     key.Binding
	Sidebar     key.Binding
	Delete      key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Models      key.Binding
	Personalize key.Binding
	Language    key.Binding
	CopyMD      key.Binding
	ExportPDF   key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("ctrl+b", "tab"),
			key.WithHelp("C-b", "conversations"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete chat"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("right", "]"),
			key.WithHelp("right", "next model"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "["),
			key.WithHelp("left", "prev model"),
		),
		Models: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "models"),
		),
		Personalize: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "personalize"),
		),
		Language: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "language"),
		),
		CopyMD: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy markdown"),
		),
		ExportPDF: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export pdf"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("C-h", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewChat, k.Models, k.CopyMD, k.Quit}
}

// FullHelp returns all bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.NextTab, k.PrevTab},
		{k.Submit, k.Cancel, k.NewChat, k.Sidebar, k.Delete},
		{k.Models, k.Personalize, k.Language, k.CopyMD, k.ExportPDF},
		{k.Help, k.Quit},
	}
}
