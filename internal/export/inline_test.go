// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"reflect"
	"testing"
)

// =============================================================================
// TOKENIZER TESTS
// =============================================================================

func TestTokenizeInline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			"plain text",
			"hello world",
			[]Segment{{"hello world", StyleNormal}},
		},
		{
			"bold asterisks",
			"a **bold** b",
			[]Segment{{"a ", StyleNormal}, {"bold", StyleBold}, {" b", StyleNormal}},
		},
		{
			"bold underscores",
			"__bold__",
			[]Segment{{"bold", StyleBold}},
		},
		{
			"italic asterisk",
			"an *italic* word",
			[]Segment{{"an ", StyleNormal}, {"italic", StyleItalic}, {" word", StyleNormal}},
		},
		{
			"italic underscore",
			"_italic_",
			[]Segment{{"italic", StyleItalic}},
		},
		{
			"inline code",
			"run `go build` now",
			[]Segment{{"run ", StyleNormal}, {"go build", StyleCode}, {" now", StyleNormal}},
		},
		{
			"link renders text only",
			"see [the docs](https://example.com) here",
			[]Segment{{"see the docs here", StyleNormal}},
		},
		{
			"bold wins over italic at same position",
			"**x**",
			[]Segment{{"x", StyleBold}},
		},
		{
			"mixed styles",
			"**b** *i* `c`",
			[]Segment{{"b", StyleBold}, {" ", StyleNormal}, {"i", StyleItalic}, {" ", StyleNormal}, {"c", StyleCode}},
		},
		{
			"unterminated marker is normal text",
			"a **dangling",
			[]Segment{{"a **dangling", StyleNormal}},
		},
		{
			"empty string",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenizeInline(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TokenizeInline(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	segs := TokenizeInline("**Final** answer")
	if got := PlainText(segs); got != "Final answer" {
		t.Errorf("PlainText = %q, want %q", got, "Final answer")
	}
}

// =============================================================================
// BLOCK CLASSIFIER TESTS
// =============================================================================

func TestClassifyLines(t *testing.T) {
	body := "# Title\n" +
		"\n" +
		"A paragraph.\n" +
		"- item one\n" +
		"  - nested\n" +
		"1. first\n" +
		"```\n" +
		"code **not styled**\n" +
		"```\n" +
		"tail"

	blocks := ClassifyLines(body)
	want := []Block{
		{Kind: BlockHeading, Level: 1, Text: "Title"},
		{Kind: BlockBlank},
		{Kind: BlockParagraph, Text: "A paragraph."},
		{Kind: BlockBullet, Indent: 0, Text: "item one"},
		{Kind: BlockBullet, Indent: 1, Text: "nested"},
		{Kind: BlockNumbered, Indent: 0, Marker: "1.", Text: "first"},
		{Kind: BlockCode, Text: "code **not styled**"},
		{Kind: BlockParagraph, Text: "tail"},
	}
	if !reflect.DeepEqual(blocks, want) {
		t.Errorf("ClassifyLines mismatch:\ngot  %+v\nwant %+v", blocks, want)
	}
}

func TestClassifyLines_HeadingLevels(t *testing.T) {
	blocks := ClassifyLines("### Three\n###### Six\n####### Seven hashes")
	if blocks[0].Level != 3 || blocks[1].Level != 6 {
		t.Errorf("unexpected levels: %+v", blocks)
	}
	// Seven hashes is not a heading.
	if blocks[2].Kind != BlockParagraph {
		t.Errorf("expected paragraph for 7 hashes, got %+v", blocks[2])
	}
}

// =============================================================================
// WRAP TESTS
// =============================================================================

// runeMeasure counts one unit per rune, making widths easy to reason about.
func runeMeasure(text string, _ Style) float64 {
	return float64(len([]rune(text)))
}

func lineText(l WrappedLine) string {
	return PlainText(l.Segments)
}

func TestWrapSegments_Greedy(t *testing.T) {
	segs := []Segment{{Text: "the quick brown fox jumps", Style: StyleNormal}}

	lines := WrapSegments(segs, 10, runeMeasure)
	want := []string{"the quick", "brown fox", "jumps"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(lines), lines, len(want))
	}
	for i, w := range want {
		if lineText(lines[i]) != w {
			t.Errorf("line %d = %q, want %q", i, lineText(lines[i]), w)
		}
	}
}

func TestWrapSegments_NeverSplitsWords(t *testing.T) {
	segs := []Segment{{Text: "short incomprehensibility end", Style: StyleNormal}}

	lines := WrapSegments(segs, 8, runeMeasure)
	for _, line := range lines {
		text := lineText(line)
		if text == "" {
			t.Error("empty wrapped line")
		}
	}
	// The overlong word occupies its own line, unsplit.
	found := false
	for _, line := range lines {
		if lineText(line) == "incomprehensibility" {
			found = true
		}
	}
	if !found {
		t.Errorf("overlong word was split: %v", lines)
	}
}

func TestWrapSegments_StyleCarriesAcrossWrap(t *testing.T) {
	segs := []Segment{
		{Text: "plain ", Style: StyleNormal},
		{Text: "bold text that wraps over", Style: StyleBold},
	}

	lines := WrapSegments(segs, 12, runeMeasure)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, seg := range lines[1].Segments {
		if seg.Style != StyleBold {
			t.Errorf("continuation line lost style: %+v", lines[1])
		}
	}
}

func TestWrapSegments_DropsLeadingWhitespaceOnWrap(t *testing.T) {
	segs := []Segment{{Text: "aaaa bbbb cccc", Style: StyleNormal}}

	lines := WrapSegments(segs, 5, runeMeasure)
	for i, line := range lines {
		text := lineText(line)
		if len(text) > 0 && (text[0] == ' ' || text[0] == '\t') {
			t.Errorf("line %d starts with whitespace: %q", i, text)
		}
	}
}
