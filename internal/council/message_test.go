// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package council

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// FLEXIBLE SHAPE TESTS
// =============================================================================

func TestStage1Results_UnmarshalList(t *testing.T) {
	input := `[{"model":"openai/gpt-5","response":"Hi"},{"model":"anthropic/claude-3","response":"Hello"}]`

	var results Stage1Results
	if err := json.Unmarshal([]byte(input), &results); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Model != "openai/gpt-5" || results[0].Response != "Hi" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	// List order is preserved.
	if results[1].Model != "anthropic/claude-3" {
		t.Errorf("expected list order preserved, got %+v", results[1])
	}
}

func TestStage1Results_UnmarshalMap(t *testing.T) {
	input := `{"openai/gpt-5":"Hi","anthropic/claude-3":{"model":"anthropic/claude-3","response":"Hello"}}`

	var results Stage1Results
	if err := json.Unmarshal([]byte(input), &results); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Map keys are sorted for determinism.
	if results[0].Model != "anthropic/claude-3" || results[0].Response != "Hello" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Model != "openai/gpt-5" || results[1].Response != "Hi" {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func TestStage1Results_UnmarshalNull(t *testing.T) {
	var results Stage1Results
	if err := json.Unmarshal([]byte("null"), &results); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for null, got %+v", results)
	}
}

func TestStage2Results_UnmarshalMap(t *testing.T) {
	input := `{"google/gemini":"FINAL RANKING: 1. Response B","openai/gpt-5":{"ranking":"1. Response A","parsed_ranking":["Response A"]}}`

	var results Stage2Results
	if err := json.Unmarshal([]byte(input), &results); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(results))
	}
	if results[0].Model != "google/gemini" || results[0].Ranking != "FINAL RANKING: 1. Response B" {
		t.Errorf("unexpected first ranking: %+v", results[0])
	}
	if results[1].Model != "openai/gpt-5" || len(results[1].ParsedRanking) != 1 {
		t.Errorf("unexpected second ranking: %+v", results[1])
	}
}

func TestStage2Results_UnmarshalList(t *testing.T) {
	input := `[{"model":"m1","ranking":"1. A","parsed_ranking":["A"]}]`

	var results Stage2Results
	if err := json.Unmarshal([]byte(input), &results); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(results) != 1 || results[0].Model != "m1" {
		t.Errorf("unexpected rankings: %+v", results)
	}
}

// =============================================================================
// AVERAGE TESTS
// =============================================================================

func TestAverage_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		value float64
	}{
		{"number", `1.5`, true, 1.5},
		{"integer", `2`, true, 2},
		{"numeric string", `"1.75"`, true, 1.75},
		{"n/a string", `"N/A"`, false, 0},
		{"null", `null`, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Average
			if err := json.Unmarshal([]byte(tt.input), &a); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if a.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", a.Valid, tt.valid)
			}
			if a.Valid && a.Value != tt.value {
				t.Errorf("Value = %v, want %v", a.Value, tt.value)
			}
		})
	}
}

func TestAverage_String(t *testing.T) {
	if s := NumericAverage(1.5).String(); s != "1.50" {
		t.Errorf("String() = %q, want 1.50", s)
	}
	if s := (Average{}).String(); s != "N/A" {
		t.Errorf("String() = %q, want N/A", s)
	}
}

// =============================================================================
// NAME AND AGGREGATE HELPERS
// =============================================================================

func TestShortModelName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"anthropic/claude-3", "claude-3"},
		{"openai/gpt-5", "gpt-5"},
		{"no-provider", "no-provider"},
		{"a/b/c", "c"},
		{"trailing/", "trailing/"},
	}
	for _, tt := range tests {
		if got := ShortModelName(tt.input); got != tt.want {
			t.Errorf("ShortModelName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolveDisplayName(t *testing.T) {
	resolver := func(model string) string {
		if model == "openai/gpt-5" {
			return "GPT-5"
		}
		return ""
	}
	if got := ResolveDisplayName(resolver, "openai/gpt-5"); got != "GPT-5" {
		t.Errorf("expected resolver hit, got %q", got)
	}
	if got := ResolveDisplayName(resolver, "anthropic/claude-3"); got != "claude-3" {
		t.Errorf("expected short-name fallback, got %q", got)
	}
	if got := ResolveDisplayName(nil, "x/y"); got != "y" {
		t.Errorf("expected nil-resolver fallback, got %q", got)
	}
}

func TestSortedAggregate(t *testing.T) {
	input := []AggregateRanking{
		{Model: "c", AverageRank: NumericAverage(2.5), RankingsCount: 3},
		{Model: "a", AverageRank: NumericAverage(1.0), RankingsCount: 3},
		{Model: "skip", AverageRank: Average{}, RankingsCount: 0},
		{Model: "b", AverageRank: NumericAverage(1.5), RankingsCount: 2},
	}

	sorted := SortedAggregate(input)
	if len(sorted) != 3 {
		t.Fatalf("expected non-numeric entry excluded, got %d rows", len(sorted))
	}
	want := []string{"a", "b", "c"}
	for i, model := range want {
		if sorted[i].Model != model {
			t.Errorf("row %d = %q, want %q", i, sorted[i].Model, model)
		}
	}
}

func TestConversation_LastUserContent(t *testing.T) {
	conv := &Conversation{Messages: []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant},
		{Role: RoleUser, Content: "second"},
		{Role: RoleAssistant},
	}}
	if got := conv.LastUserContent(); got != "second" {
		t.Errorf("LastUserContent = %q, want second", got)
	}

	empty := &Conversation{}
	if got := empty.LastUserContent(); got != "" {
		t.Errorf("expected empty content, got %q", got)
	}
}
