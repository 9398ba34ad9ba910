// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists client-side state between runs: credentials,
// the current conversation, per-conversation drafts and UI preferences.
package storage

const (
	// SchemaVersion tracks the database schema version for migrations.
	SchemaVersion = 1
)

// SQLite schema for the local state store.
const Schema = `
-- Durable key/value state: credentials, current conversation, preferences
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Per-conversation unsent input drafts
CREATE TABLE IF NOT EXISTS drafts (
    conversation_id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    updated_at INTEGER NOT NULL -- Unix timestamp
) WITHOUT ROWID;

-- Session-scoped state: cleared on every open, mirroring state that should
-- not outlive one run (selected models, chairman override)
CREATE TABLE IF NOT EXISTS session_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;
`

// Durable kv keys.
const (
	keyToken               = "auth_token"
	keySessionID           = "session_id"
	keyCurrentConversation = "current_conversation"
	keyTheme               = "theme"
	keyLanguage            = "language"
	keySchemaVersion       = "schema_version"
)

// Session-scoped keys.
const (
	keySelectedModels = "selected_models"
	keyChairmanModel  = "chairman_model"
)
