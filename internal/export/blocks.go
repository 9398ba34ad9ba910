// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"regexp"
	"strings"
)

// =============================================================================
// BLOCK-LEVEL LINE CLASSIFIER
// =============================================================================

// BlockKind classifies one source line of a markdown body.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBullet
	BlockNumbered
	BlockCode
	BlockBlank
)

// Block is one classified line. Text holds the inline content with the
// block marker stripped; code lines keep their text verbatim.
type Block struct {
	Kind   BlockKind
	Level  int    // heading level 1..6
	Indent int    // list nesting depth in 2-space units
	Marker string // numbered list marker, e.g. "1."
	Text   string
}

var (
	headingPattern  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern   = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	numberedPattern = regexp.MustCompile(`^(\s*)(\d+)\.\s+(.*)$`)
)

// ClassifyLines splits a markdown body into classified blocks, one per
// source line. Fenced code delimiters toggle verbatim mode; the delimiter
// lines themselves produce no block.
func ClassifyLines(body string) []Block {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	blocks := make([]Block, 0, len(lines))

	inCode := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if inCode {
			blocks = append(blocks, Block{Kind: BlockCode, Text: line})
			continue
		}

		if strings.TrimSpace(line) == "" {
			blocks = append(blocks, Block{Kind: BlockBlank})
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, Block{Kind: BlockHeading, Level: len(m[1]), Text: m[2]})
			continue
		}

		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, Block{Kind: BlockBullet, Indent: len(m[1]) / 2, Text: m[2]})
			continue
		}

		if m := numberedPattern.FindStringSubmatch(line); m != nil {
			blocks = append(blocks, Block{Kind: BlockNumbered, Indent: len(m[1]) / 2, Marker: m[2] + ".", Text: m[3]})
			continue
		}

		blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
	}

	return blocks
}
