// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arteusai/council-tui/internal/council"
)

// chunkedReader yields the source in fixed-size chunks to exercise
// arbitrary chunk boundaries, including mid-line splits.
type chunkedReader struct {
	data  []byte
	pos   int
	chunk int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

// failAfterReader returns the source, then a non-EOF error.
type failAfterReader struct {
	data []byte
	pos  int
	err  error
}

func (r *failAfterReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

const sampleStream = `data: {"type":"stage1_start"}

data: {"type":"stage1_model_complete","data":{"model":"m1"}}

data: {"type":"stage1_complete","data":[{"model":"m1","response":"Hi"}]}

data: {"type":"stage2_start"}

data: {"type":"stage2_complete","data":[{"model":"m1","ranking":"1. Response A"}],"metadata":{"label_to_model":{"Response A":"m1"}}}

data: {"type":"stage3_start"}

data: {"type":"stage3_complete","data":{"model":"m1","response":"final"}}

data: {"type":"complete"}

`

func collectEvents(t *testing.T, r io.Reader) []council.Event {
	t.Helper()
	var events []council.Event
	if err := consumeStream(context.Background(), r, func(ev council.Event) {
		events = append(events, ev)
	}); err != nil {
		t.Fatalf("consumeStream failed: %v", err)
	}
	return events
}

// =============================================================================
// CHUNK BOUNDARY TESTS
// =============================================================================

func TestConsumeStream_ChunkBoundariesDoNotChangeEvents(t *testing.T) {
	whole := collectEvents(t, strings.NewReader(sampleStream))
	if len(whole) != 8 {
		t.Fatalf("expected 8 events from full text, got %d", len(whole))
	}

	// The same text split in 1, 3, 7 and 64 byte chunks must deliver the
	// identical ordered event sequence.
	for _, chunk := range []int{1, 3, 7, 64} {
		got := collectEvents(t, &chunkedReader{data: []byte(sampleStream), chunk: chunk})
		if len(got) != len(whole) {
			t.Fatalf("chunk=%d: got %d events, want %d", chunk, len(got), len(whole))
		}
		for i := range got {
			if got[i].Type != whole[i].Type {
				t.Errorf("chunk=%d: event %d type %v, want %v", chunk, i, got[i].Type, whole[i].Type)
			}
		}
	}
}

func TestConsumeStream_FlushesFinalLineWithoutNewline(t *testing.T) {
	input := "data: {\"type\":\"stage1_start\"}\n\ndata: {\"type\":\"complete\"}"

	events := collectEvents(t, strings.NewReader(input))
	if len(events) != 2 {
		t.Fatalf("expected trailing line to be flushed at EOF, got %d events", len(events))
	}
	if events[1].Type != council.EventComplete {
		t.Errorf("final event = %v, want complete", events[1].Type)
	}
}

// =============================================================================
// MALFORMED AND UNKNOWN LINES
// =============================================================================

func TestConsumeStream_MalformedLineSkipped(t *testing.T) {
	input := "data: {\"type\":\"stage1_start\"}\n" +
		"data: {broken json\n" +
		"data: {\"type\":\"complete\"}\n"

	events := collectEvents(t, strings.NewReader(input))
	if len(events) != 2 {
		t.Fatalf("expected malformed line skipped, got %d events", len(events))
	}
	if events[0].Type != council.EventStage1Start || events[1].Type != council.EventComplete {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestConsumeStream_UnknownTypeNotDelivered(t *testing.T) {
	input := "data: {\"type\":\"stage9_start\"}\ndata: {\"type\":\"complete\"}\n"

	events := collectEvents(t, strings.NewReader(input))
	if len(events) != 1 || events[0].Type != council.EventComplete {
		t.Errorf("unknown event should be dropped, got %+v", events)
	}
}

func TestConsumeStream_NonDataLinesIgnored(t *testing.T) {
	input := ": comment\nretry: 3000\n\ndata: {\"type\":\"complete\"}\n"

	events := collectEvents(t, strings.NewReader(input))
	if len(events) != 1 {
		t.Errorf("expected only the data line delivered, got %+v", events)
	}
}

// =============================================================================
// CANCELLATION AND FAILURE
// =============================================================================

func TestConsumeStream_CancellationStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var events []council.Event
	err := consumeStream(ctx, strings.NewReader(sampleStream), func(ev council.Event) {
		events = append(events, ev)
		if len(events) == 3 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected no events after cancellation, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Type == council.EventError {
			t.Error("cancellation must not deliver a synthetic error event")
		}
	}
}

func TestConsumeStream_ReadFailureDeliversSyntheticError(t *testing.T) {
	reader := &failAfterReader{
		data: []byte("data: {\"type\":\"stage1_start\"}\n"),
		err:  errors.New("connection reset"),
	}

	var events []council.Event
	err := consumeStream(context.Background(), reader, func(ev council.Event) {
		events = append(events, ev)
	})

	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected read error re-raised, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected stage1_start plus synthetic error, got %d events", len(events))
	}
	last := events[len(events)-1]
	if last.Type != council.EventError || !strings.Contains(last.Message, "connection reset") {
		t.Errorf("unexpected terminal event: %+v", last)
	}
}

// =============================================================================
// END TO END AGAINST A TEST SERVER
// =============================================================================

func TestStreamMessage_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/conversations/conv-1/message/stream" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sampleStream)
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithCredentials(StaticCredentials{Token: "t"})

	msg := council.NewStagedMessage()
	err := client.StreamMessage(context.Background(), "conv-1", SendMessageRequest{Content: "hello"}, func(ev council.Event) {
		msg = msg.Apply(ev)
	})
	if err != nil {
		t.Fatalf("StreamMessage failed: %v", err)
	}

	if !msg.Done {
		t.Error("message not settled")
	}
	if len(msg.Stage1) != 1 || msg.Stage3 == nil || msg.Stage3.Response != "final" {
		t.Errorf("staged message incomplete: %+v", msg)
	}
	if msg.Metadata == nil || msg.Metadata.LabelToModel["Response A"] != "m1" {
		t.Errorf("metadata missing: %+v", msg.Metadata)
	}
}

func TestStreamMessage_HTTPErrorBeforeStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"At least one model must be selected."}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.StreamMessage(context.Background(), "conv-1", SendMessageRequest{}, func(council.Event) {
		t.Error("no events expected")
	})
	if err == nil || !strings.Contains(err.Error(), "At least one model") {
		t.Errorf("expected backend detail in error, got %v", err)
	}
}
