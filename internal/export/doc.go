// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a council conversation turn into shareable
// documents: Markdown text (also used for clipboard copy) and a paginated
// PDF with hand-rolled inline-markdown parsing and manual text layout.
//
// # Key Types
//
//   - Turn: one question/answer pair to export
//   - MarkdownExporter: Markdown formatter
//   - PDFExporter: paginated PDF renderer
//   - FontPack: lazily-initialized Unicode font handle for the PDF path
package export
