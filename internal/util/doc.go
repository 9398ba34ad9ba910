// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the council-tui application.
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation for terminal columns
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
