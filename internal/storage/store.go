// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arteusai/council-tui/internal/api"
)

// =============================================================================
// Store
// =============================================================================

// Store is the local state database. All reads and writes go through a
// single connection; sqlite serializes access for us.
//
// When the database cannot be opened the store degrades to an in-memory
// map so the client stays usable, losing persistence only.
type Store struct {
	db *sql.DB

	mu  sync.Mutex
	mem map[string]string // fallback when db == nil
}

// Open opens (creating if needed) the state database at path and applies
// the schema. Session-scoped state from a previous run is cleared.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	// Single connection: avoids SQLITE_BUSY under concurrent access
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.setKV(keySchemaVersion, strconv.Itoa(SchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("record schema version: %w", err)
	}

	// Session state does not survive across runs
	if _, err := db.Exec(`DELETE FROM session_state`); err != nil {
		db.Close()
		return nil, fmt.Errorf("reset session state: %w", err)
	}

	return s, nil
}

// OpenBestEffort opens the state database, falling back to a memory-only
// store when the database is unavailable. The client keeps working without
// persistence in that case.
func OpenBestEffort(path string) *Store {
	s, err := Open(path)
	if err != nil {
		log.Printf("storage: %v; continuing without persistence", err)
		return NewMemory()
	}
	return s
}

// NewMemory returns a store backed only by process memory.
func NewMemory() *Store {
	return &Store{mem: make(map[string]string)}
}

// Persistent reports whether state survives process restarts.
func (s *Store) Persistent() bool {
	return s.db != nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// =============================================================================
// Key/value plumbing
// =============================================================================

func (s *Store) getKV(key string) (string, bool, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.mem["kv:"+key]
		return v, ok, nil
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setKV(key, value string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mem["kv:"+key] = value
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteKV(key string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mem, "kv:"+key)
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) getSession(key string) (string, bool, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.mem["session:"+key]
		return v, ok, nil
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read session %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) setSession(key, value string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mem["session:"+key] = value
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO session_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write session %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteSession(key string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mem, "session:"+key)
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM session_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

// =============================================================================
// Credentials
// =============================================================================

// Credentials implements api.CredentialSource from the stored token and
// session id. Read errors degrade to empty credentials.
func (s *Store) Credentials() (api.Credentials, error) {
	token, _, err := s.getKV(keyToken)
	if err != nil {
		return api.Credentials{}, err
	}
	sessionID, _, err := s.getKV(keySessionID)
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{Token: token, SessionID: sessionID}, nil
}

// SetToken stores the bearer token obtained from login.
func (s *Store) SetToken(token string) error {
	return s.setKV(keyToken, token)
}

// SetSessionID stores the lead-capture session identifier.
func (s *Store) SetSessionID(id string) error {
	return s.setKV(keySessionID, id)
}

// ClearCredentials removes any stored token and session id.
func (s *Store) ClearCredentials() error {
	if err := s.deleteKV(keyToken); err != nil {
		return err
	}
	return s.deleteKV(keySessionID)
}

// =============================================================================
// Current conversation and preferences
// =============================================================================

func (s *Store) CurrentConversation() (string, error) {
	v, _, err := s.getKV(keyCurrentConversation)
	return v, err
}

func (s *Store) SetCurrentConversation(id string) error {
	if id == "" {
		return s.deleteKV(keyCurrentConversation)
	}
	return s.setKV(keyCurrentConversation, id)
}

func (s *Store) Theme() (string, error) {
	v, _, err := s.getKV(keyTheme)
	return v, err
}

func (s *Store) SetTheme(theme string) error {
	return s.setKV(keyTheme, theme)
}

func (s *Store) Language() (string, error) {
	v, _, err := s.getKV(keyLanguage)
	return v, err
}

func (s *Store) SetLanguage(lang string) error {
	return s.setKV(keyLanguage, lang)
}

// =============================================================================
// Drafts
// =============================================================================

// Draft returns the saved unsent input for a conversation, or "" when none
// exists. The empty conversation id keys the draft for a new, unsaved chat.
func (s *Store) Draft(conversationID string) (string, error) {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.mem["draft:"+conversationID], nil
	}
	var content string
	err := s.db.QueryRow(`SELECT content FROM drafts WHERE conversation_id = ?`,
		conversationID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return content, nil
}

// SetDraft saves unsent input for a conversation. Empty content deletes
// the draft.
func (s *Store) SetDraft(conversationID, content string) error {
	if content == "" {
		return s.DeleteDraft(conversationID)
	}
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mem["draft:"+conversationID] = content
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO drafts (conversation_id, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			content = excluded.content, updated_at = excluded.updated_at`,
		conversationID, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

func (s *Store) DeleteDraft(conversationID string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mem, "draft:"+conversationID)
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE conversation_id = ?`,
		conversationID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// DeleteAllDrafts removes every saved draft, used when all conversations
// are deleted server-side.
func (s *Store) DeleteAllDrafts() error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k := range s.mem {
			if len(k) >= 6 && k[:6] == "draft:" {
				delete(s.mem, k)
			}
		}
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM drafts`); err != nil {
		return fmt.Errorf("delete drafts: %w", err)
	}
	return nil
}

// =============================================================================
// Session-scoped model selection
// =============================================================================

// SelectedModels returns the council model selection for this run, or nil
// when the user has not overridden the defaults.
func (s *Store) SelectedModels() ([]string, error) {
	raw, ok, err := s.getSession(keySelectedModels)
	if err != nil || !ok {
		return nil, err
	}
	var models []string
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		return nil, fmt.Errorf("decode selected models: %w", err)
	}
	return models, nil
}

// SetSelectedModels records the council model selection for this run only.
// Nil clears the override.
func (s *Store) SetSelectedModels(models []string) error {
	if models == nil {
		return s.deleteSession(keySelectedModels)
	}
	raw, err := json.Marshal(models)
	if err != nil {
		return fmt.Errorf("encode selected models: %w", err)
	}
	return s.setSession(keySelectedModels, string(raw))
}

// ChairmanModel returns the session chairman override, or "" for the
// server default.
func (s *Store) ChairmanModel() (string, error) {
	v, _, err := s.getSession(keyChairmanModel)
	return v, err
}

func (s *Store) SetChairmanModel(model string) error {
	if model == "" {
		return s.deleteSession(keyChairmanModel)
	}
	return s.setSession(keyChairmanModel, model)
}
