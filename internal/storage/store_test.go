// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestCredentialsRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	creds, err := s.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Token != "" || creds.SessionID != "" {
		t.Fatalf("fresh store should have empty credentials, got %+v", creds)
	}

	if err := s.SetToken("tok-123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := s.SetSessionID("sess-456"); err != nil {
		t.Fatalf("SetSessionID: %v", err)
	}

	creds, err = s.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Token != "tok-123" || creds.SessionID != "sess-456" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	if err := s.ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials: %v", err)
	}
	creds, _ = s.Credentials()
	if creds.Token != "" || creds.SessionID != "" {
		t.Fatalf("credentials not cleared: %+v", creds)
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.SetToken("persist-me"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := s.SetCurrentConversation("conv-1"); err != nil {
		t.Fatalf("SetCurrentConversation: %v", err)
	}
	if err := s.SetDraft("conv-1", "unfinished thought"); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	creds, _ := s2.Credentials()
	if creds.Token != "persist-me" {
		t.Errorf("token = %q, want persist-me", creds.Token)
	}
	conv, _ := s2.CurrentConversation()
	if conv != "conv-1" {
		t.Errorf("current conversation = %q, want conv-1", conv)
	}
	draft, _ := s2.Draft("conv-1")
	if draft != "unfinished thought" {
		t.Errorf("draft = %q", draft)
	}
}

func TestSessionStateClearedOnOpen(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.SetSelectedModels([]string{"openai/gpt-5", "anthropic/claude-3"}); err != nil {
		t.Fatalf("SetSelectedModels: %v", err)
	}
	if err := s.SetChairmanModel("google/gemini"); err != nil {
		t.Fatalf("SetChairmanModel: %v", err)
	}

	models, err := s.SelectedModels()
	if err != nil {
		t.Fatalf("SelectedModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	models, err = s2.SelectedModels()
	if err != nil {
		t.Fatalf("SelectedModels after reopen: %v", err)
	}
	if models != nil {
		t.Errorf("session models survived reopen: %v", models)
	}
	chairman, _ := s2.ChairmanModel()
	if chairman != "" {
		t.Errorf("chairman survived reopen: %q", chairman)
	}
}

func TestSelectedModelsClear(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.SetSelectedModels([]string{"a"}); err != nil {
		t.Fatalf("SetSelectedModels: %v", err)
	}
	if err := s.SetSelectedModels(nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	models, err := s.SelectedModels()
	if err != nil {
		t.Fatalf("SelectedModels: %v", err)
	}
	if models != nil {
		t.Errorf("models = %v, want nil", models)
	}
}

func TestDrafts(t *testing.T) {
	s, _ := openTestStore(t)

	// Empty id keys the draft for the new-chat composer
	if err := s.SetDraft("", "new chat draft"); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	if err := s.SetDraft("conv-1", "first"); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	if err := s.SetDraft("conv-1", "second"); err != nil {
		t.Fatalf("overwrite draft: %v", err)
	}

	got, _ := s.Draft("conv-1")
	if got != "second" {
		t.Errorf("draft = %q, want second", got)
	}
	got, _ = s.Draft("")
	if got != "new chat draft" {
		t.Errorf("new-chat draft = %q", got)
	}

	// Saving empty content deletes
	if err := s.SetDraft("conv-1", ""); err != nil {
		t.Fatalf("delete via empty: %v", err)
	}
	got, _ = s.Draft("conv-1")
	if got != "" {
		t.Errorf("draft not deleted: %q", got)
	}

	if err := s.DeleteAllDrafts(); err != nil {
		t.Fatalf("DeleteAllDrafts: %v", err)
	}
	got, _ = s.Draft("")
	if got != "" {
		t.Errorf("draft survived DeleteAllDrafts: %q", got)
	}
}

func TestPreferences(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.SetTheme("light"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if err := s.SetLanguage("ru"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	theme, _ := s.Theme()
	if theme != "light" {
		t.Errorf("theme = %q", theme)
	}
	lang, _ := s.Language()
	if lang != "ru" {
		t.Errorf("language = %q", lang)
	}
}

func TestMemoryFallback(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	if s.Persistent() {
		t.Fatal("memory store reported persistent")
	}
	if err := s.SetToken("mem-tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	creds, err := s.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Token != "mem-tok" {
		t.Errorf("token = %q", creds.Token)
	}
	if err := s.SetDraft("c", "d"); err != nil {
		t.Fatalf("SetDraft: %v", err)
	}
	draft, _ := s.Draft("c")
	if draft != "d" {
		t.Errorf("draft = %q", draft)
	}
	if err := s.SetSelectedModels([]string{"m"}); err != nil {
		t.Fatalf("SetSelectedModels: %v", err)
	}
	models, _ := s.SelectedModels()
	if len(models) != 1 || models[0] != "m" {
		t.Errorf("models = %v", models)
	}
}

func TestOpenBestEffortFallsBack(t *testing.T) {
	// A regular file in the path blocks directory creation
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	s := OpenBestEffort(filepath.Join(blocker, "nested", "state.db"))
	defer s.Close()
	if s.Persistent() {
		t.Error("expected memory fallback")
	}
	if err := s.SetToken("x"); err != nil {
		t.Errorf("fallback store unusable: %v", err)
	}
}
