// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import "strings"

// =============================================================================
// GREEDY WORD WRAP
// =============================================================================

// MeasureFunc returns the rendered width of text in a given style, in the
// output's units. Abstracted so wrapping is testable without a PDF engine.
type MeasureFunc func(text string, style Style) float64

// WrappedLine is one output line of styled segments.
type WrappedLine struct {
	Segments []Segment
}

// WrapSegments wraps styled segments against a maximum line width. Words
// are never split; a word wider than the whole line is emitted on its own
// line and allowed to overflow. Style carries across wrap boundaries and
// leading whitespace on a wrapped line is dropped.
func WrapSegments(segments []Segment, maxWidth float64, measure MeasureFunc) []WrappedLine {
	var lines []WrappedLine
	var current []Segment
	width := 0.0

	flush := func() {
		if len(current) == 0 {
			return
		}
		lines = append(lines, WrappedLine{Segments: current})
		current = nil
		width = 0
	}

	appendText := func(text string, style Style) {
		if text == "" {
			return
		}
		if n := len(current); n > 0 && current[n-1].Style == style {
			current[n-1].Text += text
		} else {
			current = append(current, Segment{Text: text, Style: style})
		}
		width += measure(text, style)
	}

	for _, seg := range segments {
		for _, token := range splitTokens(seg.Text) {
			if strings.TrimSpace(token) == "" {
				// Whitespace never starts a line.
				if len(current) > 0 {
					appendText(token, seg.Style)
				}
				continue
			}

			tokenWidth := measure(token, seg.Style)
			if len(current) > 0 && width+tokenWidth > maxWidth {
				trimTrailingSpace(current, measure)
				flush()
			}
			appendText(token, seg.Style)
		}
	}
	flush()

	return lines
}

// splitTokens splits text into alternating word and whitespace runs.
func splitTokens(text string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range text {
		isSpace := r == ' ' || r == '\t'
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
			inSpace = isSpace
		}
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// trimTrailingSpace drops whitespace left at the end of a flushed line.
func trimTrailingSpace(segments []Segment, measure MeasureFunc) {
	for i := len(segments) - 1; i >= 0; i-- {
		trimmed := strings.TrimRight(segments[i].Text, " \t")
		segments[i].Text = trimmed
		if trimmed != "" {
			return
		}
	}
}
