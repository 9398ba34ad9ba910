// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package council

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType is the closed set of event kinds the streaming endpoint emits.
// Unrecognized wire strings decode to EventUnknown so new backend event
// kinds degrade to a logged no-op instead of an error.
type EventType int

const (
	EventUnknown EventType = iota
	EventScrapingStart
	EventScrapingComplete
	EventScrapingError
	EventStage1Start
	EventStage1ModelComplete
	EventStage1Complete
	EventStage2Start
	EventStage2ModelComplete
	EventStage2Complete
	EventStage3Start
	EventStage3Complete
	EventTitleComplete
	EventComplete
	EventError
)

var eventTypeNames = map[string]EventType{
	"scraping_start":        EventScrapingStart,
	"scraping_complete":     EventScrapingComplete,
	"scraping_error":        EventScrapingError,
	"stage1_start":          EventStage1Start,
	"stage1_model_complete": EventStage1ModelComplete,
	"stage1_complete":       EventStage1Complete,
	"stage2_start":          EventStage2Start,
	"stage2_model_complete": EventStage2ModelComplete,
	"stage2_complete":       EventStage2Complete,
	"stage3_start":          EventStage3Start,
	"stage3_complete":       EventStage3Complete,
	"title_complete":        EventTitleComplete,
	"complete":              EventComplete,
	"error":                 EventError,
}

// ParseEventType maps a wire string to its EventType.
func ParseEventType(s string) EventType {
	if t, ok := eventTypeNames[s]; ok {
		return t
	}
	return EventUnknown
}

// String returns the wire name of the event type.
func (t EventType) String() string {
	for name, typ := range eventTypeNames {
		if typ == t {
			return name
		}
	}
	return "unknown"
}

// Terminal reports whether the event ends the stream.
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// =============================================================================
// DECODED EVENT
// =============================================================================

// Event is one decoded streaming event. Only the fields relevant to the
// event's Type are populated.
type Event struct {
	Type    EventType
	RawType string // wire string, kept for unknown-event diagnostics

	Stage1   Stage1Results   // stage1_complete
	Stage2   Stage2Results   // stage2_complete
	Stage3   *Stage3Response // stage3_complete
	Metadata *Metadata       // stage2_complete

	Model string // stage{1,2}_model_complete
	Total int    // stage{1,2}_model_complete, optional participant count

	Links []ScrapedLink // scraping_complete
	Title string        // title_complete

	Message string // error, scraping_error
}

// eventEnvelope is the wire shape of one `data:` line.
type eventEnvelope struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// modelCompletePayload is the data field of stage{1,2}_model_complete.
type modelCompletePayload struct {
	Model string `json:"model"`
	Total int    `json:"total,omitempty"`
}

// titlePayload is the data field of title_complete.
type titlePayload struct {
	Title string `json:"title"`
}

// DecodeEvent parses one JSON event payload into an Event. The JSON must be
// a valid envelope; payload fields that fail to decode for a recognized
// type are an error, while an unrecognized type decodes to EventUnknown
// with no payload.
func DecodeEvent(data []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("decode event envelope: %w", err)
	}

	ev := Event{
		Type:    ParseEventType(env.Type),
		RawType: env.Type,
		Message: env.Message,
	}

	switch ev.Type {
	case EventStage1Complete:
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &ev.Stage1); err != nil {
				return Event{}, fmt.Errorf("decode stage1_complete: %w", err)
			}
		}
	case EventStage2Complete:
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &ev.Stage2); err != nil {
				return Event{}, fmt.Errorf("decode stage2_complete: %w", err)
			}
		}
		ev.Metadata = env.Metadata
	case EventStage3Complete:
		if len(env.Data) > 0 {
			var resp Stage3Response
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				return Event{}, fmt.Errorf("decode stage3_complete: %w", err)
			}
			ev.Stage3 = &resp
		}
	case EventStage1ModelComplete, EventStage2ModelComplete:
		if len(env.Data) > 0 {
			var p modelCompletePayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				return Event{}, fmt.Errorf("decode %s: %w", env.Type, err)
			}
			ev.Model = p.Model
			ev.Total = p.Total
		}
	case EventTitleComplete:
		if len(env.Data) > 0 {
			var p titlePayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				return Event{}, fmt.Errorf("decode title_complete: %w", err)
			}
			ev.Title = p.Title
		}
	case EventScrapingComplete:
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &ev.Links); err != nil {
				// Some backend versions wrap the list in {"links": [...]}.
				var wrapped struct {
					Links []ScrapedLink `json:"links"`
				}
				if err2 := json.Unmarshal(env.Data, &wrapped); err2 != nil {
					return Event{}, fmt.Errorf("decode scraping_complete: %w", err)
				}
				ev.Links = wrapped.Links
			}
		}
	}

	return ev, nil
}

// ErrorEvent builds the synthetic terminal event delivered when the
// transport fails mid-stream.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, RawType: "error", Message: strings.TrimSpace(message)}
}
