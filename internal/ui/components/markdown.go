// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the council TUI.
package components

import (
	"log"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders model answers as terminal Markdown. The
// underlying glamour renderer is rebuilt when the wrap width changes.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// NewMarkdownRenderer creates a renderer for the given wrap width.
func NewMarkdownRenderer(width int, dark bool) *MarkdownRenderer {
	m := &MarkdownRenderer{dark: dark}
	m.SetWidth(width)
	return m
}

// SetWidth rebuilds the renderer when the viewport width changes.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if m.renderer != nil && m.width == width {
		return
	}
	style := "light"
	if m.dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		log.Printf("components: markdown renderer: %v", err)
		return
	}
	m.renderer = r
	m.width = width
}

// Render converts Markdown to styled terminal text. On renderer failure
// the raw text comes back unstyled so content is never lost.
func (m *MarkdownRenderer) Render(markdown string) string {
	if m.renderer == nil {
		return markdown
	}
	out, err := m.renderer.Render(markdown)
	if err != nil {
		log.Printf("components: render markdown: %v", err)
		return markdown
	}
	return out
}
