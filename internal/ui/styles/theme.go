// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability once at startup; the configured theme name
// can force light or dark rendering regardless of detection.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App     lipgloss.Style
	Header  lipgloss.Style
	Title   lipgloss.Style
	Divider lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarMeta         lipgloss.Style

	// ==========================================================================
	// CHAT TRANSCRIPT
	// ==========================================================================

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	StageHeader      lipgloss.Style
	Stage1Header     lipgloss.Style
	Stage2Header     lipgloss.Style
	Stage3Header     lipgloss.Style
	ModelTab         lipgloss.Style
	ModelTabActive   lipgloss.Style
	ScrapedLink      lipgloss.Style

	// ==========================================================================
	// PROGRESS
	// ==========================================================================

	Spinner      lipgloss.Style
	ProgressDone lipgloss.Style
	ProgressWait lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusDesc   lipgloss.Style
	StatusError  lipgloss.Style
	StatusNotice lipgloss.Style

	// ==========================================================================
	// MODALS AND TABLES
	// ==========================================================================

	ModalBox          lipgloss.Style
	ModalTitle        lipgloss.Style
	ModalItem         lipgloss.Style
	ModalItemSelected lipgloss.Style
	ModalHint         lipgloss.Style
	TableHeader       lipgloss.Style
	TableCell         lipgloss.Style
	TableRowAlt       lipgloss.Style

	// ==========================================================================
	// LOGIN
	// ==========================================================================

	LoginBox   lipgloss.Style
	LoginLabel lipgloss.Style
	LoginError lipgloss.Style
}

// NewTheme creates a theme using detected terminal capabilities.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// NewThemeNamed forces light or dark rendering from the configured theme
// name; any other value falls back to detection.
func NewThemeNamed(name string) *Theme {
	t := NewTheme()
	switch name {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		t.IsDark = true
	case "light":
		lipgloss.SetHasDarkBackground(false)
		t.IsDark = false
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.Divider = lipgloss.NewStyle().
		Foreground(Overlay)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		PaddingRight(1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.SidebarItemSelected = lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true).
		Padding(0, 1)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	// Transcript
	t.UserMessage = lipgloss.NewStyle().
		Foreground(UserFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserBorder).
		PaddingLeft(1)

	t.AssistantMessage = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantBorder).
		PaddingLeft(1)

	t.StageHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Stage1Header = t.StageHeader.Foreground(Stage1)
	t.Stage2Header = t.StageHeader.Foreground(Stage2)
	t.Stage3Header = t.StageHeader.Foreground(Stage3)

	t.ModelTab = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.ModelTabActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Stage1).
		Bold(true).
		Padding(0, 1)

	t.ScrapedLink = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	// Progress
	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.ProgressDone = lipgloss.NewStyle().Foreground(Emerald)
	t.ProgressWait = lipgloss.NewStyle().Foreground(TextMuted)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.StatusNotice = lipgloss.NewStyle().
		Foreground(Emerald)

	// Modals
	t.ModalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Indigo).
		Padding(1, 2)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.ModalItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ModalItemSelected = lipgloss.NewStyle().
		Background(Indigo).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ModalHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Tables
	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableCell = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TableRowAlt = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Login
	t.LoginBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 3)

	t.LoginLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.LoginError = lipgloss.NewStyle().
		Foreground(Rose)
}
