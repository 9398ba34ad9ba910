// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Turn is one exportable question/answer pair of a conversation.
type Turn struct {
	// Question is the user prompt that produced this answer.
	Question string

	// Message is the staged assistant result.
	Message council.Message

	// Timestamp is when the turn happened; a zero value means export time.
	Timestamp time.Time
}

// Exporter defines the interface for turn exporters.
type Exporter interface {
	// Export converts a turn to the target format and returns the content.
	Export(turn Turn, resolver council.DisplayNameResolver) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Labels are the document strings, injected so exports follow the UI
// language.
type Labels struct {
	DocumentTitle       string
	Question            string
	FinalAnswer         string
	IndividualResponses string
	RankingTable        string
	ColumnModel         string
	ColumnAverage       string
	ColumnVotes         string
}

// DefaultLabels returns the English document strings.
func DefaultLabels() Labels {
	return Labels{
		DocumentTitle:       "Council Conversation",
		Question:            "Question",
		FinalAnswer:         "Final Answer",
		IndividualResponses: "Individual Model Responses",
		RankingTable:        "Aggregate Rankings",
		ColumnModel:         "Model",
		ColumnAverage:       "Average Rank",
		ColumnVotes:         "Votes",
	}
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are saved. Default: current directory.
	OutputDir string

	// Labels override the document strings.
	Labels Labels
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir: ".",
		Labels:    DefaultLabels(),
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a turn to a file and returns the output path. The
// write is atomic so an interrupted export never leaves a partial document.
func ExportToFile(turn Turn, exporter Exporter, opts *Options, resolver council.DisplayNameResolver) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(turn, resolver)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, Filename(exporter.FileExtension(), time.Now()))
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// Filename builds the export filename: "arteus-council-<timestamp><ext>"
// where the timestamp is ISO-8601 with ':' and 'T' replaced by '-'.
func Filename(ext string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05")
	stamp = strings.NewReplacer(":", "-", "T", "-").Replace(stamp)
	return "arteus-council-" + stamp + ext
}
