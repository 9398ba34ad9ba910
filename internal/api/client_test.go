// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// BASE URL RESOLUTION
// =============================================================================

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		override string
		origin   string
		subPath  string
		want     string
		wantErr  bool
	}{
		{"override wins", "https://api.example.com/", "https://ignored.example.com", "app", "https://api.example.com", false},
		{"origin only", "", "https://example.com", "", "https://example.com", false},
		{"origin with sub-path", "", "https://example.com", "council", "https://example.com/council", false},
		{"sub-path slashes trimmed", "", "https://example.com/", "/council/", "https://example.com/council", false},
		{"root sub-path ignored", "", "https://example.com", "/", "https://example.com", false},
		{"nothing configured", "", "", "", "", true},
		{"bad scheme", "", "ftp://example.com", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBaseURL(tt.override, tt.origin, tt.subPath)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAuthMode(t *testing.T) {
	if ParseAuthMode("session") != AuthModeSession {
		t.Error("session not parsed")
	}
	if ParseAuthMode("SESSION ") != AuthModeSession {
		t.Error("session parsing should be case/space insensitive")
	}
	if ParseAuthMode("token") != AuthModeToken {
		t.Error("token not parsed")
	}
	if ParseAuthMode("anything-else") != AuthModeToken {
		t.Error("unknown mode should fall back to token")
	}
}

// =============================================================================
// AUTH HEADER ATTACHMENT
// =============================================================================

func TestClient_TokenAuthHeader(t *testing.T) {
	var gotAuth, gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSession = r.Header.Get("X-Session-Id")
		w.Write([]byte(`{"council_models":["m1"],"chairman_model":"m1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL).
		WithAuthMode(AuthModeToken).
		WithCredentials(StaticCredentials{Token: "tok-123", SessionID: "sess-456"})

	if _, err := client.ListModels(context.Background()); err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotSession != "" {
		t.Errorf("token mode must not send X-Session-Id, got %q", gotSession)
	}
}

func TestClient_SessionAuthHeader(t *testing.T) {
	var gotAuth, gotSession string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSession = r.Header.Get("X-Session-Id")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL).
		WithAuthMode(AuthModeSession).
		WithCredentials(StaticCredentials{Token: "tok-123", SessionID: "sess-456"})

	if _, err := client.ListConversations(context.Background()); err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if gotSession != "sess-456" {
		t.Errorf("X-Session-Id = %q, want sess-456", gotSession)
	}
	if gotAuth != "" {
		t.Errorf("session mode must not send Authorization, got %q", gotAuth)
	}
}

// failingCredentials always errors, modeling unavailable local storage.
type failingCredentials struct{}

func (failingCredentials) Credentials() (Credentials, error) {
	return Credentials{}, errors.New("storage unavailable")
}

func TestClient_CredentialFailureFailsOpen(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"authenticated":false}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithCredentials(failingCredentials{})

	// The request must still go out, just without a header.
	me, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.Authenticated {
		t.Error("unexpected authenticated state")
	}
	if gotAuth != "" {
		t.Errorf("expected no auth header, got %q", gotAuth)
	}
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestClient_ErrorCarriesBackendDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Conversation not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetConversation(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got := err.Error(); !contains(got, "Conversation not found") {
		t.Errorf("error should carry backend detail, got %q", got)
	}
}

func TestClient_UnauthorizedMapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetCouncilSettings(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_UnparseableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`plain text failure`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.DeleteConversation(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusBadRequest || !contains(apiErr.Detail, "plain text failure") {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

// =============================================================================
// ENDPOINT ROUND TRIPS
// =============================================================================

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"access_token":"tok-1","user":{"email":"a@b.c"}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.AccessToken != "tok-1" || resp.User == nil || resp.User.Email != "a@b.c" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_SendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/conversations/conv-1/message" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"stage1":[{"model":"m1","response":"hi"}],"stage2":[],"stage3":{"model":"m2","response":"final"}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).SendMessage(context.Background(), "conv-1", SendMessageRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(resp.Stage1) != 1 || resp.Stage3 == nil || resp.Stage3.Response != "final" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"council_models":["m1"],"chairman_model":"m1"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).ListModels(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}
