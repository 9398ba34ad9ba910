// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the lifecycle of council streams: at most one
// stream runs per client, a new send aborts the prior one, and staged
// progress is cached per conversation so switching away and back never
// loses an in-flight answer.
package session

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arteusai/council-tui/internal/api"
	"github.com/arteusai/council-tui/internal/council"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the coarse position of a conversation in the council pipeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScraping
	PhaseStage1
	PhaseStage2
	PhaseStage3
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseScraping:
		return "scraping"
	case PhaseStage1:
		return "stage1"
	case PhaseStage2:
		return "stage2"
	case PhaseStage3:
		return "stage3"
	case PhaseSettled:
		return "settled"
	default:
		return "idle"
	}
}

// phaseOf derives the pipeline phase from staged-message state.
func phaseOf(sm council.StagedMessage) Phase {
	switch {
	case sm.Done:
		return PhaseSettled
	case sm.Loading.Stage3:
		return PhaseStage3
	case sm.Loading.Stage2:
		return PhaseStage2
	case sm.Loading.Stage1:
		return PhaseStage1
	case sm.Loading.Scraping:
		return PhaseScraping
	default:
		return PhaseIdle
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// EventMsg carries one applied stream event plus the staged state after it.
type EventMsg struct {
	ConversationID string
	Event          council.Event
	Staged         council.StagedMessage
}

// DoneMsg reports stream termination. Err is nil on a clean close,
// context.Canceled when a newer send or an explicit cancel aborted the
// stream, and the transport error otherwise.
type DoneMsg struct {
	ConversationID string
	Staged         council.StagedMessage
	Err            error
}

// Streamer is the slice of the API client the manager needs.
type Streamer interface {
	StreamMessage(ctx context.Context, conversationID string, req api.SendMessageRequest, cb api.EventCallback) error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the single active stream and the per-conversation cache of
// staged answers. Methods are safe for concurrent use; the stream goroutine
// and the UI loop both touch it.
type Manager struct {
	mu sync.Mutex

	streamer Streamer

	cancel     context.CancelFunc
	activeID   string
	generation uint64

	staged map[string]council.StagedMessage

	// Buffered so the stream goroutine never blocks on a busy UI loop
	events chan tea.Msg
}

const eventBuffer = 256

// NewManager creates a stream manager on top of the given client.
func NewManager(streamer Streamer) *Manager {
	return &Manager{
		streamer: streamer,
		staged:   make(map[string]council.StagedMessage),
		events:   make(chan tea.Msg, eventBuffer),
	}
}

// Start begins streaming a council answer for the conversation. Any prior
// stream is canceled first and its remaining progress forgotten. The
// returned command must be scheduled; events then arrive via Await.
func (m *Manager) Start(conversationID string, req api.SendMessageRequest) tea.Cmd {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		delete(m.staged, m.activeID)
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.activeID = conversationID
	m.generation++
	gen := m.generation
	m.staged[conversationID] = council.NewStagedMessage()
	streamer := m.streamer
	m.mu.Unlock()

	return func() tea.Msg {
		err := streamer.StreamMessage(ctx, conversationID, req, func(ev council.Event) {
			m.applyEvent(gen, conversationID, ev)
		})
		m.finish(gen, conversationID, err)
		return nil
	}
}

// Cancel aborts the active stream, if any. The stream resolves with
// context.Canceled via DoneMsg.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Await returns a command that delivers the next stream message. The UI
// re-issues it after handling each EventMsg; a DoneMsg ends the cycle.
func (m *Manager) Await() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// applyEvent folds one event into the cached staged message. Events from a
// superseded stream are dropped.
func (m *Manager) applyEvent(gen uint64, conversationID string, ev council.Event) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	next := m.staged[conversationID].Apply(ev)
	m.staged[conversationID] = next
	m.mu.Unlock()

	m.events <- EventMsg{ConversationID: conversationID, Event: ev, Staged: next}
}

// finish records stream termination and emits DoneMsg, unless a newer
// stream already took over.
func (m *Manager) finish(gen uint64, conversationID string, err error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.activeID = ""
	final := m.staged[conversationID].Finalize()
	// A transport failure settles the staged message with the error so a
	// snapshot taken later still shows why the answer stopped. Cancellation
	// is not an error state.
	if err != nil && !errors.Is(err, context.Canceled) && !final.Settled() {
		final.Err = err.Error()
	}
	m.staged[conversationID] = final
	m.mu.Unlock()

	m.events <- DoneMsg{ConversationID: conversationID, Staged: final, Err: err}
}

// =============================================================================
// STATE QUERIES
// =============================================================================

// Streaming reports whether a stream is in flight.
func (m *Manager) Streaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// ActiveConversation returns the conversation id of the in-flight stream,
// or "" when idle.
func (m *Manager) ActiveConversation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Snapshot returns the cached staged message for a conversation. The second
// result is false when no answer has been started for it. Cached copies
// keep receiving events while another conversation is on screen, so a
// caller switching back gets current state.
func (m *Manager) Snapshot(conversationID string) (council.StagedMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.staged[conversationID]
	return sm, ok
}

// Phase returns the pipeline phase of a conversation's cached answer.
func (m *Manager) Phase(conversationID string) Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.staged[conversationID]
	if !ok {
		return PhaseIdle
	}
	return phaseOf(sm)
}

// Forget drops the cached staged message, typically after it has been
// merged into the conversation transcript.
func (m *Manager) Forget(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.staged, conversationID)
}
