// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/arteusai/council-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders a fenced code block with syntax highlighting. Used for
// stage-1 answers, which are shown raw rather than through the Markdown
// renderer so individual models can be compared verbatim.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{Language: language, Code: code, MaxWidth: 80}
}

// Render returns the highlighted block inside a bordered container.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	highlighted := Highlight(code, c.Language)

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.OverlayDim).
			Padding(0, 1).
			Bold(true).
			Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(header + highlighted)
}

// =============================================================================
// MARKDOWN FENCE PASS
// =============================================================================

// RenderFences replaces fenced code blocks in text with highlighted
// renditions, leaving everything else untouched.
func RenderFences(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var out []string
	var inFence bool
	var fence []string
	var language string

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inFence {
				cb := NewCodeBlock(language, strings.Join(fence, "\n"))
				cb.MaxWidth = maxWidth
				out = append(out, cb.Render())
				fence = nil
				language = ""
				inFence = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inFence = true
			}
			continue
		}
		if inFence {
			fence = append(fence, line)
		} else {
			out = append(out, line)
		}
	}

	// Unclosed fence renders as code anyway
	if inFence && len(fence) > 0 {
		cb := NewCodeBlock(language, strings.Join(fence, "\n"))
		cb.MaxWidth = maxWidth
		out = append(out, cb.Render())
	}

	return strings.Join(out, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight applies chroma syntax highlighting for terminal output.
// Unknown languages fall back to analysis, then to plain text.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
