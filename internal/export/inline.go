// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import "regexp"

// =============================================================================
// INLINE MARKDOWN TOKENIZER
// =============================================================================

// Style is the rendering style of one inline segment.
type Style int

const (
	StyleNormal Style = iota
	StyleBold
	StyleItalic
	StyleCode
)

// Segment is one run of text with a single style.
type Segment struct {
	Text  string
	Style Style
}

// inlinePattern matches the supported inline markup. Alternatives are tried
// in order at each position, so bold beats italic on a "**" opener and a
// link's href is captured separately so it can be discarded.
var inlinePattern = regexp.MustCompile(
	`\*\*(.+?)\*\*` + // 1: bold
		`|__(.+?)__` + // 2: bold
		`|\*([^*]+?)\*` + // 3: italic
		`|_([^_]+?)_` + // 4: italic
		"|`([^`]+?)`" + // 5: code
		`|\[([^\]]+?)\]\(([^)]*?)\)`) // 6: link text, 7: href (dropped)

// TokenizeInline splits a line of text into styled segments. Text not
// covered by any marker is emitted as StyleNormal; link markup renders as
// the link text only.
func TokenizeInline(text string) []Segment {
	if text == "" {
		return nil
	}

	var segments []Segment
	emit := func(t string, s Style) {
		if t == "" {
			return
		}
		// Merge adjacent runs of the same style.
		if n := len(segments); n > 0 && segments[n-1].Style == s {
			segments[n-1].Text += t
			return
		}
		segments = append(segments, Segment{Text: t, Style: s})
	}

	pos := 0
	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > pos {
			emit(text[pos:m[0]], StyleNormal)
		}

		switch {
		case m[2] >= 0:
			emit(text[m[2]:m[3]], StyleBold)
		case m[4] >= 0:
			emit(text[m[4]:m[5]], StyleBold)
		case m[6] >= 0:
			emit(text[m[6]:m[7]], StyleItalic)
		case m[8] >= 0:
			emit(text[m[8]:m[9]], StyleItalic)
		case m[10] >= 0:
			emit(text[m[10]:m[11]], StyleCode)
		case m[12] >= 0:
			emit(text[m[12]:m[13]], StyleNormal)
		}

		pos = m[1]
	}
	if pos < len(text) {
		emit(text[pos:], StyleNormal)
	}

	return segments
}

// PlainText flattens segments back to unstyled text.
func PlainText(segments []Segment) string {
	out := ""
	for _, s := range segments {
		out += s.Text
	}
	return out
}
