// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/config"
	"github.com/arteusai/council-tui/internal/council"
	"github.com/arteusai/council-tui/internal/session"
	"github.com/arteusai/council-tui/internal/storage"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Theme = "dark"
	store := storage.NewMemory()
	client := api.NewClient("http://127.0.0.1:1")
	streams := session.NewManager(client)
	m := New(cfg, client, store, streams)
	m.screen = screenChat
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return resized.(Model)
}

func assistantTurn() council.Message {
	return council.Message{
		Role: council.RoleAssistant,
		Stage1: council.Stage1Results{
			{Model: "openai/gpt-5.1", Response: "Answer from gpt."},
			{Model: "anthropic/claude-sonnet-4.5", Response: "Answer from claude."},
			{Model: "google/gemini-3-pro", Response: "Answer from gemini."},
		},
		Stage3: &council.Stage3Response{
			Model:    "google/gemini-3-pro",
			Response: "Synthesized verdict.",
		},
		Metadata: &council.Metadata{
			LabelToModel: map[string]string{
				"Response A": "openai/gpt-5.1",
				"Response B": "anthropic/claude-sonnet-4.5",
			},
			AggregateRankings: []council.AggregateRanking{
				{Model: "Response A", AverageRank: council.NumericAverage(1.5), RankingsCount: 2},
				{Model: "Response B", AverageRank: council.NumericAverage(2.0), RankingsCount: 2},
			},
		},
	}
}

func withConversation(m Model) Model {
	m.current = &council.Conversation{
		ID:    "conv-1",
		Title: "Test conversation",
		Messages: []council.Message{
			{Role: council.RoleUser, Content: "What is the answer?"},
			assistantTurn(),
		},
	}
	m.conversations = []council.ConversationMeta{{ID: "conv-1", Title: "Test conversation"}}
	m.refreshViewport()
	return m
}

// =============================================================================
// MODEL STATE TESTS
// =============================================================================

func TestVisibleIDEmptyForNewChat(t *testing.T) {
	m := newTestModel(t)
	if id := m.visibleID(); id != "" {
		t.Errorf("Expected empty visible id for new chat, got %q", id)
	}
	m = withConversation(m)
	if id := m.visibleID(); id != "conv-1" {
		t.Errorf("Expected visible id conv-1, got %q", id)
	}
}

func TestSelectedModelsPrecedence(t *testing.T) {
	m := newTestModel(t)

	// Nothing configured: defer to the backend default
	if models := m.selectedModels(); models != nil {
		t.Errorf("Expected nil models when nothing is configured, got %v", models)
	}

	m.cfg.Council.Models = []string{"cfg/model"}
	if models := m.selectedModels(); len(models) != 1 || models[0] != "cfg/model" {
		t.Errorf("Expected config models, got %v", models)
	}

	// A session override wins over the config file
	if err := m.store.SetSelectedModels([]string{"session/model"}); err != nil {
		t.Fatalf("SetSelectedModels: %v", err)
	}
	if models := m.selectedModels(); len(models) != 1 || models[0] != "session/model" {
		t.Errorf("Expected session override, got %v", models)
	}
}

func TestChairmanModelPrecedence(t *testing.T) {
	m := newTestModel(t)
	m.cfg.Council.ChairmanModel = "cfg/chairman"
	if got := m.chairmanModel(); got != "cfg/chairman" {
		t.Errorf("Expected config chairman, got %q", got)
	}
	if err := m.store.SetChairmanModel("session/chairman"); err != nil {
		t.Fatalf("SetChairmanModel: %v", err)
	}
	if got := m.chairmanModel(); got != "session/chairman" {
		t.Errorf("Expected session chairman override, got %q", got)
	}
}

func TestDisplayResolverMapsLabels(t *testing.T) {
	m := withConversation(newTestModel(t))
	resolve := m.displayResolver()

	if got := resolve("Response A"); got != "gpt-5.1" {
		t.Errorf("Expected anonymized label to resolve to gpt-5.1, got %q", got)
	}
	if got := resolve("anthropic/claude-sonnet-4.5"); got != "claude-sonnet-4.5" {
		t.Errorf("Expected raw id to shorten, got %q", got)
	}
}

func TestStage1CountFromTranscript(t *testing.T) {
	m := withConversation(newTestModel(t))
	if n := m.stage1Count(); n != 3 {
		t.Errorf("Expected 3 stage-1 tabs, got %d", n)
	}
}

// =============================================================================
// UPDATE FLOW TESTS
// =============================================================================

func TestSubmitEmptyInputIsNoop(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Expected no command for an empty submit")
	}
	if updated.(Model).input.Value() != "" {
		t.Error("Expected input to stay empty")
	}
}

func TestSubmitWithoutConversationCreatesOne(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hello council")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected a create-conversation command")
	}
	if updated.(Model).input.Value() != "" {
		t.Error("Expected input cleared after submit")
	}
}

func TestCreatedConversationSendsPendingContent(t *testing.T) {
	m := newTestModel(t)
	conv := &council.Conversation{ID: "conv-new"}
	updated, cmd := m.Update(conversationCreatedMsg{conv: conv, content: "pending question"})
	if cmd == nil {
		t.Fatal("Expected follow-up commands after conversation creation")
	}
	um := updated.(Model)
	if um.current == nil || um.current.ID != "conv-new" {
		t.Fatal("Expected the fresh conversation to become current")
	}
	if len(um.current.Messages) != 1 || um.current.Messages[0].Role != council.RoleUser {
		t.Fatalf("Expected the pending question as a user turn, got %+v", um.current.Messages)
	}
	if um.current.Messages[0].Content != "pending question" {
		t.Errorf("Expected pending content, got %q", um.current.Messages[0].Content)
	}
}

func TestToggleLanguagePersists(t *testing.T) {
	m := newTestModel(t)
	before := m.strings.Code()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	um := updated.(Model)
	if um.strings.Code() == before {
		t.Error("Expected language to flip")
	}
	saved, err := um.store.Language()
	if err != nil {
		t.Fatalf("Language: %v", err)
	}
	if saved != um.strings.Code() {
		t.Errorf("Expected persisted language %q, got %q", um.strings.Code(), saved)
	}
}

func TestStage1TabCycles(t *testing.T) {
	m := withConversation(newTestModel(t))
	um, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = um.(Model)
	if m.stage1Tab != 1 {
		t.Errorf("Expected tab 1 after next, got %d", m.stage1Tab)
	}
	um, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = um.(Model)
	um, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = um.(Model)
	if m.stage1Tab != 0 {
		t.Errorf("Expected tab wrap to 0, got %d", m.stage1Tab)
	}
	um, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = um.(Model)
	if m.stage1Tab != 2 {
		t.Errorf("Expected tab wrap backwards to 2, got %d", m.stage1Tab)
	}
}

func TestStreamDoneFoldsAnswerIntoTranscript(t *testing.T) {
	m := withConversation(newTestModel(t))
	before := len(m.current.Messages)

	staged := council.NewStagedMessage()
	staged.Stage3 = &council.Stage3Response{Model: "google/gemini-3-pro", Response: "done"}
	staged = staged.Finalize()

	updated, cmd := m.Update(session.DoneMsg{ConversationID: "conv-1", Staged: staged})
	if cmd == nil {
		t.Fatal("Expected the listener to be re-armed")
	}
	um := updated.(Model)
	if len(um.current.Messages) != before+1 {
		t.Fatalf("Expected the settled answer appended, got %d messages", len(um.current.Messages))
	}
	last := um.current.Messages[len(um.current.Messages)-1]
	if last.Role != council.RoleAssistant || last.Stage3 == nil {
		t.Errorf("Expected a settled assistant turn, got %+v", last)
	}
}

func TestStreamDoneWithoutAnswerAddsNothing(t *testing.T) {
	m := withConversation(newTestModel(t))
	before := len(m.current.Messages)

	staged := council.NewStagedMessage().Finalize()
	updated, _ := m.Update(session.DoneMsg{ConversationID: "conv-1", Staged: staged})
	if got := len(updated.(Model).current.Messages); got != before {
		t.Errorf("Expected transcript unchanged, got %d messages", got)
	}
}

func TestStreamDoneReloadsCanonicalConversation(t *testing.T) {
	m := withConversation(newTestModel(t))

	staged := council.NewStagedMessage()
	staged.Stage3 = &council.Stage3Response{Model: "google/gemini-3-pro", Response: "done"}
	staged = staged.Finalize()

	updated, cmd := m.Update(session.DoneMsg{ConversationID: "conv-1", Staged: staged})
	if cmd == nil {
		t.Fatal("Expected a reload command after a clean completion")
	}

	// The backend copy supersedes the locally folded one, so the arriving
	// canonical transcript replaces rather than appends.
	canonical := &council.Conversation{
		ID:    "conv-1",
		Title: "Test conversation",
		Messages: []council.Message{
			{Role: council.RoleUser, Content: "What is the answer?"},
			assistantTurn(),
			{Role: council.RoleAssistant, Stage3: staged.Stage3},
		},
	}
	updated, _ = updated.(Model).Update(conversationMsg{canonical})
	um := updated.(Model)
	if len(um.current.Messages) != len(canonical.Messages) {
		t.Fatalf("Expected the canonical transcript, got %d messages", len(um.current.Messages))
	}
	if um.current != canonical {
		t.Error("Expected the loaded conversation to replace the folded copy")
	}
}

func TestTitleEventUpdatesConversation(t *testing.T) {
	m := withConversation(newTestModel(t))
	ev := council.Event{Type: council.EventTitleComplete, Title: "A better title"}

	updated, _ := m.Update(session.EventMsg{ConversationID: "conv-1", Event: ev})
	um := updated.(Model)
	if um.current.Title != "A better title" {
		t.Errorf("Expected current title updated, got %q", um.current.Title)
	}
	if um.conversations[0].Title != "A better title" {
		t.Errorf("Expected sidebar title updated, got %q", um.conversations[0].Title)
	}
}

func TestLoginResultStoresTokenByMode(t *testing.T) {
	m := newTestModel(t)
	m.screen = screenLogin
	m.serverCfg = &api.ServerConfig{AuthEnabled: true}

	resp := &api.LoginResponse{AccessToken: "tok-1", User: &api.User{Email: "a@b.c"}}
	updated, _ := m.Update(loginResultMsg{resp: resp})
	um := updated.(Model)
	if um.screen != screenChat {
		t.Error("Expected chat screen after login")
	}
	creds, err := um.store.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.Token != "tok-1" || creds.SessionID != "" {
		t.Errorf("Expected bearer token stored, got %+v", creds)
	}

	// Leads deployments authenticate with a session id instead
	m2 := newTestModel(t)
	m2.screen = screenLogin
	m2.serverCfg = &api.ServerConfig{LeadsMode: true}
	updated, _ = m2.Update(loginResultMsg{resp: resp})
	creds, err = updated.(Model).store.Credentials()
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if creds.SessionID != "tok-1" || creds.Token != "" {
		t.Errorf("Expected session id stored in leads mode, got %+v", creds)
	}
}

func TestLoginFailureShowsDetail(t *testing.T) {
	m := newTestModel(t)
	m.screen = screenLogin
	updated, _ := m.Update(loginResultMsg{err: &api.APIError{Status: 401, Detail: "bad password"}})
	um := updated.(Model)
	if um.screen != screenLogin {
		t.Error("Expected to stay on the login screen")
	}
	if !strings.Contains(um.login.errText, "bad password") {
		t.Errorf("Expected backend detail surfaced, got %q", um.login.errText)
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	m := withConversation(newTestModel(t))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	um := updated.(Model)
	if um.modal != modalDeleteConfirm {
		t.Fatal("Expected delete confirmation modal")
	}

	// Anything but y/a closes without deleting
	updated, cmd := um.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	um = updated.(Model)
	if um.modal != modalNone || cmd != nil {
		t.Error("Expected modal dismissed without a delete command")
	}

	um.modal = modalDeleteConfirm
	_, cmd = um.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if cmd == nil {
		t.Error("Expected a delete command on confirm")
	}

	um.modal = modalDeleteConfirm
	_, cmd = um.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if cmd == nil {
		t.Error("Expected a delete-all command on 'a'")
	}
}

func TestConversationDeletedClearsState(t *testing.T) {
	m := withConversation(newTestModel(t))
	_ = m.store.SetCurrentConversation("conv-1")

	updated, cmd := m.Update(conversationDeletedMsg{id: "conv-1"})
	um := updated.(Model)
	if um.current != nil {
		t.Error("Expected current conversation cleared")
	}
	if cmd == nil {
		t.Error("Expected a reload of the conversation list")
	}
	if id, _ := um.store.CurrentConversation(); id != "" {
		t.Errorf("Expected persisted pointer cleared, got %q", id)
	}
}

func TestNoticeExpiryIgnoresStaleTimer(t *testing.T) {
	m := newTestModel(t)
	_ = m.setNotice("first", false)
	staleSeq := m.noticeSeq
	_ = m.setNotice("second", false)

	updated, _ := m.Update(noticeExpiredMsg{seq: staleSeq})
	if got := updated.(Model).notice; got != "second" {
		t.Errorf("Expected stale expiry ignored, notice is %q", got)
	}

	updated, _ = updated.(Model).Update(noticeExpiredMsg{seq: m.noticeSeq})
	if got := updated.(Model).notice; got != "" {
		t.Errorf("Expected notice cleared, got %q", got)
	}
}

// =============================================================================
// VIEW TESTS
// =============================================================================

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// stripANSI removes terminal color sequences so substring checks see the
// text the way a reader does. Renderers split words across style resets.
func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestViewRendersTranscript(t *testing.T) {
	m := withConversation(newTestModel(t))
	out := stripANSI(m.View())
	if out == "" {
		t.Fatal("Expected non-empty view")
	}
	if !strings.Contains(out, "What is the answer?") {
		t.Error("Expected the user question in the transcript")
	}
	if !strings.Contains(out, "Synthesized verdict.") {
		t.Error("Expected the chairman answer in the transcript")
	}
	if !strings.Contains(out, "Test conversation") {
		t.Error("Expected the conversation title in the sidebar")
	}
}

func TestViewResolvesAnonymizedRankings(t *testing.T) {
	m := withConversation(newTestModel(t))
	out := stripANSI(m.View())
	if !strings.Contains(out, "gpt-5.1") {
		t.Error("Expected anonymized ranking rows resolved to model names")
	}
	if strings.Contains(out, "Response A") {
		t.Error("Expected anonymized labels to never surface")
	}
}

func TestViewShowsLoginScreen(t *testing.T) {
	m := newTestModel(t)
	m.screen = screenLogin
	out := stripANSI(m.View())
	if !strings.Contains(out, m.strings.SignIn) {
		t.Error("Expected the sign-in heading on the login screen")
	}
}

func TestHelpModalListsBindings(t *testing.T) {
	m := withConversation(newTestModel(t))
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlH})
	um := updated.(Model)
	if um.modal != modalHelp {
		t.Fatal("Expected help modal open")
	}
	out := stripANSI(um.View())
	if !strings.Contains(out, "new chat") {
		t.Error("Expected key bindings listed in the help modal")
	}
}

func TestZeroWidthViewIsEmpty(t *testing.T) {
	cfg := config.Default()
	client := api.NewClient("http://127.0.0.1:1")
	m := New(cfg, client, storage.NewMemory(), session.NewManager(client))
	if out := m.View(); out != "" {
		t.Errorf("Expected empty view before the first resize, got %d bytes", len(out))
	}
}
