// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package council contains the data structures for council conversations:
// per-model stage results, rankings, the chairman synthesis, and the
// reducer that folds streamed events into a staged assistant message.
package council

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// STAGE RESULT TYPES
// =============================================================================

// Stage1Response is a single model's independent draft answer.
type Stage1Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// Stage2Ranking is one model's judgment of the anonymized Stage 1 drafts.
type Stage2Ranking struct {
	Model         string   `json:"model"`
	Ranking       string   `json:"ranking"`
	ParsedRanking []string `json:"parsed_ranking,omitempty"`
}

// Stage3Response is the chairman model's final synthesized answer.
type Stage3Response struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

// AggregateRanking is the averaged score for one model across all Stage 2
// judgments. Average may be non-numeric when a model received no parseable
// votes, so it is modeled as a nullable value rather than a plain float.
type AggregateRanking struct {
	Model         string  `json:"model"`
	AverageRank   Average `json:"average_rank"`
	RankingsCount int     `json:"rankings_count"`
}

// Metadata carries the anonymization map and aggregate scores attached to
// the stage2_complete event.
type Metadata struct {
	LabelToModel      map[string]string  `json:"label_to_model,omitempty"`
	AggregateRankings []AggregateRanking `json:"aggregate_rankings,omitempty"`
}

// ScrapedLink is a link preview produced by the backend's URL scraper.
type ScrapedLink struct {
	URL         string `json:"url"`
	Success     bool   `json:"success"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	OGImage     string `json:"og_image,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Markdown    string `json:"markdown,omitempty"`
}

// =============================================================================
// AVERAGE (NULLABLE SCORE)
// =============================================================================

// Average is an aggregate score that the backend may deliver as a JSON
// number, a numeric string, "N/A", or null.
type Average struct {
	Value float64
	Valid bool
}

// NumericAverage builds a valid Average, mostly for tests and fixtures.
func NumericAverage(v float64) Average {
	return Average{Value: v, Valid: true}
}

// UnmarshalJSON accepts a number, a numeric string, or anything else
// (null, "N/A") which decodes to an invalid Average.
func (a *Average) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*a = Average{}
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*a = Average{Value: num, Valid: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if num, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*a = Average{Value: num, Valid: true}
			return nil
		}
		*a = Average{}
		return nil
	}
	*a = Average{}
	return nil
}

// MarshalJSON emits the numeric value, or null for a non-numeric average.
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// String formats the average to two decimals, or "N/A".
func (a Average) String() string {
	if !a.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(a.Value, 'f', 2, 64)
}

// =============================================================================
// FLEXIBLE STAGE COLLECTIONS
// =============================================================================

// Stage1Results holds per-model drafts. The backend delivers these either as
// an ordered list or as an object keyed by model id; both shapes decode into
// the same ordered slice (map keys are sorted for determinism).
type Stage1Results []Stage1Response

// UnmarshalJSON tolerates both the list and the map-keyed-by-model shape.
func (r *Stage1Results) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []Stage1Response
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("stage1 list: %w", err)
		}
		*r = list
		return nil
	}
	var byModel map[string]json.RawMessage
	if err := json.Unmarshal(data, &byModel); err != nil {
		return fmt.Errorf("stage1 map: %w", err)
	}
	models := make([]string, 0, len(byModel))
	for model := range byModel {
		models = append(models, model)
	}
	sort.Strings(models)
	out := make([]Stage1Response, 0, len(models))
	for _, model := range models {
		raw := byModel[model]
		// Value may be the bare response string or a nested object.
		var resp string
		if err := json.Unmarshal(raw, &resp); err == nil {
			out = append(out, Stage1Response{Model: model, Response: resp})
			continue
		}
		var obj Stage1Response
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("stage1 entry %q: %w", model, err)
		}
		if obj.Model == "" {
			obj.Model = model
		}
		out = append(out, obj)
	}
	*r = out
	return nil
}

// Find returns the response for a model id, if present.
func (r Stage1Results) Find(model string) (Stage1Response, bool) {
	for _, resp := range r {
		if resp.Model == model {
			return resp, true
		}
	}
	return Stage1Response{}, false
}

// Stage2Results holds per-model rankings with the same shape tolerance as
// Stage1Results.
type Stage2Results []Stage2Ranking

// UnmarshalJSON tolerates both the list and the map-keyed-by-model shape.
func (r *Stage2Results) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []Stage2Ranking
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("stage2 list: %w", err)
		}
		*r = list
		return nil
	}
	var byModel map[string]json.RawMessage
	if err := json.Unmarshal(data, &byModel); err != nil {
		return fmt.Errorf("stage2 map: %w", err)
	}
	models := make([]string, 0, len(byModel))
	for model := range byModel {
		models = append(models, model)
	}
	sort.Strings(models)
	out := make([]Stage2Ranking, 0, len(models))
	for _, model := range models {
		raw := byModel[model]
		var ranking string
		if err := json.Unmarshal(raw, &ranking); err == nil {
			out = append(out, Stage2Ranking{Model: model, Ranking: ranking})
			continue
		}
		var obj Stage2Ranking
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("stage2 entry %q: %w", model, err)
		}
		if obj.Model == "" {
			obj.Model = model
		}
		out = append(out, obj)
	}
	*r = out
	return nil
}

// =============================================================================
// MESSAGES AND CONVERSATIONS
// =============================================================================

// Role values for Message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation. User messages carry Content;
// assistant messages carry the staged result fields.
type Message struct {
	Role     string          `json:"role"`
	Content  string          `json:"content,omitempty"`
	Stage1   Stage1Results   `json:"stage1,omitempty"`
	Stage2   Stage2Results   `json:"stage2,omitempty"`
	Stage3   *Stage3Response `json:"stage3,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
}

// Conversation is a full conversation as returned by the backend.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// ConversationMeta is the list-view summary of a conversation.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

// LastUserContent returns the most recent user message's content, used as
// the question line in exports.
func (c *Conversation) LastUserContent() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Content
		}
	}
	return ""
}

// =============================================================================
// MODEL NAME HELPERS
// =============================================================================

// ShortModelName strips the provider prefix from a model id, so
// "anthropic/claude-3" renders as "claude-3".
func ShortModelName(model string) string {
	if idx := strings.LastIndex(model, "/"); idx >= 0 && idx < len(model)-1 {
		return model[idx+1:]
	}
	return model
}

// DisplayNameResolver maps a raw model id to a human-facing display name.
// A nil resolver falls back to ShortModelName.
type DisplayNameResolver func(model string) string

// ResolveDisplayName applies the resolver, falling back to the short name
// when the resolver is nil or returns an empty string.
func ResolveDisplayName(resolver DisplayNameResolver, model string) string {
	if resolver != nil {
		if name := resolver(model); name != "" {
			return name
		}
	}
	return ShortModelName(model)
}

// SortedAggregate returns the numeric aggregate rankings sorted ascending by
// average (lower rank is better). Non-numeric entries are excluded.
func SortedAggregate(rankings []AggregateRanking) []AggregateRanking {
	out := make([]AggregateRanking, 0, len(rankings))
	for _, r := range rankings {
		if r.AverageRank.Valid {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageRank.Value < out[j].AverageRank.Value
	})
	return out
}
