// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/arteusai/council-tui/internal/council"
)

// dataPrefix marks an SSE payload line.
var dataPrefix = []byte("data:")

// EventCallback receives each decoded event in arrival order.
type EventCallback func(council.Event)

// =============================================================================
// STREAMING MESSAGE
// =============================================================================

// StreamMessage posts a message to the streaming endpoint and invokes the
// callback once per decoded event until the stream ends.
//
// Cancellation via ctx resolves quietly: the loop exits with ctx.Err() and
// no further callbacks, including no synthetic error event. Any other
// transport failure mid-stream delivers one synthetic error event to the
// callback and is then returned to the caller. The response body is closed
// on every exit path.
func (c *Client) StreamMessage(ctx context.Context, conversationID string, req SendMessageRequest, callback EventCallback) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	path := "/api/conversations/" + url.PathEscape(conversationID) + "/message/stream"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("User-Agent", c.userAgent)
	c.attachAuth(httpReq)

	resp, err := c.streaming.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return handleErrorResponse(resp.StatusCode, body)
	}

	return consumeStream(ctx, resp.Body, callback)
}

// =============================================================================
// SSE CONSUMER
// =============================================================================

// consumeStream reads newline-delimited `data: <json>` lines from the body
// and delivers one decoded event per complete line. A partial trailing line
// is held back until more bytes arrive and flushed once at EOF. A line that
// fails to decode is dropped with a logged diagnostic and the stream
// continues.
func consumeStream(ctx context.Context, body io.Reader, callback EventCallback) error {
	reader := bufio.NewReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Flush a final pending data line with no trailing newline.
				deliverLine(line, callback)
				return nil
			}
			if ctx.Err() != nil {
				// User-initiated cancellation, not a network failure.
				return ctx.Err()
			}
			callback(council.ErrorEvent(err.Error()))
			return fmt.Errorf("stream read failed: %w", err)
		}

		deliverLine(line, callback)
	}
}

// deliverLine decodes one raw line and invokes the callback if it carries a
// valid event. Non-data lines (blank separators, comments, id/retry fields)
// are ignored.
func deliverLine(line []byte, callback EventCallback) {
	line = bytes.TrimRight(line, "\r\n")
	if !bytes.HasPrefix(line, dataPrefix) {
		return
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if len(payload) == 0 {
		return
	}

	ev, err := council.DecodeEvent(payload)
	if err != nil {
		log.Printf("api: dropping malformed stream line: %v", err)
		return
	}
	if ev.Type == council.EventUnknown {
		log.Printf("api: ignoring unknown stream event type %q", ev.RawType)
		return
	}
	callback(ev)
}
