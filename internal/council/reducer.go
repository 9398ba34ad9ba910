// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package council

// =============================================================================
// STAGED MESSAGE
// =============================================================================

// LoadingFlags tracks which stages are currently in flight.
type LoadingFlags struct {
	Scraping bool
	Stage1   bool
	Stage2   bool
	Stage3   bool
}

// StageProgress counts completed models for an in-flight stage. Completed
// has set semantics: a model id appears at most once regardless of how many
// model_complete events name it.
type StageProgress struct {
	Completed []string
	Total     int
}

// Contains reports whether the model is already in the completed set.
func (p StageProgress) Contains(model string) bool {
	for _, m := range p.Completed {
		if m == model {
			return true
		}
	}
	return false
}

// StagedMessage is the in-memory assistant message being assembled from a
// stream. It is a value type: Apply returns an updated copy and never
// mutates the receiver, so any snapshot taken mid-stream stays valid.
type StagedMessage struct {
	Stage1   Stage1Results
	Stage2   Stage2Results
	Stage3   *Stage3Response
	Metadata *Metadata

	ScrapedLinks []ScrapedLink

	Loading LoadingFlags

	Stage1Progress StageProgress
	Stage2Progress StageProgress

	// Title set by title_complete, surfaced so the shell can refresh the
	// conversation list's display title.
	Title string

	// Terminal state. Done is set by the complete event, Err by the error
	// event (including the synthetic one for transport failures).
	Done bool
	Err  string
}

// NewStagedMessage returns the empty message created when the user submits
// a prompt, before any event arrives.
func NewStagedMessage() StagedMessage {
	return StagedMessage{}
}

// Settled reports whether the stream has reached a terminal state.
func (m StagedMessage) Settled() bool {
	return m.Done || m.Err != ""
}

// Finalize clears all loading flags, used when a stream ends without a
// terminal event (cancellation).
func (m StagedMessage) Finalize() StagedMessage {
	m.Loading = LoadingFlags{}
	return m
}

// ToMessage converts the staged result into a persisted-form Message.
func (m StagedMessage) ToMessage() Message {
	return Message{
		Role:     RoleAssistant,
		Stage1:   m.Stage1,
		Stage2:   m.Stage2,
		Stage3:   m.Stage3,
		Metadata: m.Metadata,
	}
}

// =============================================================================
// REDUCER
// =============================================================================

// Apply folds one event into the message and returns the updated copy.
// Events are applied strictly in arrival order. An event for an earlier
// stage never clears a later stage's data, so a duplicate or late event
// cannot regress progress. Unknown events are a no-op.
func (m StagedMessage) Apply(ev Event) StagedMessage {
	switch ev.Type {
	case EventScrapingStart:
		m.Loading.Scraping = true

	case EventScrapingComplete:
		m.Loading.Scraping = false
		if len(ev.Links) > 0 {
			m.ScrapedLinks = append([]ScrapedLink(nil), ev.Links...)
		}

	case EventScrapingError:
		// Scrape failures are soft: the council still runs on the raw prompt.
		m.Loading.Scraping = false

	case EventStage1Start:
		m.Loading.Stage1 = true
		m.Stage1Progress = StageProgress{Total: ev.Total}

	case EventStage1ModelComplete:
		if ev.Model != "" && !m.Stage1Progress.Contains(ev.Model) {
			completed := append([]string(nil), m.Stage1Progress.Completed...)
			m.Stage1Progress.Completed = append(completed, ev.Model)
		}
		if ev.Total > 0 {
			m.Stage1Progress.Total = ev.Total
		}

	case EventStage1Complete:
		m.Loading.Stage1 = false
		if ev.Stage1 != nil {
			m.Stage1 = append(Stage1Results(nil), ev.Stage1...)
		}

	case EventStage2Start:
		m.Loading.Stage2 = true
		m.Stage2Progress = StageProgress{Total: ev.Total}

	case EventStage2ModelComplete:
		if ev.Model != "" && !m.Stage2Progress.Contains(ev.Model) {
			completed := append([]string(nil), m.Stage2Progress.Completed...)
			m.Stage2Progress.Completed = append(completed, ev.Model)
		}
		if ev.Total > 0 {
			m.Stage2Progress.Total = ev.Total
		}

	case EventStage2Complete:
		m.Loading.Stage2 = false
		if ev.Stage2 != nil {
			m.Stage2 = append(Stage2Results(nil), ev.Stage2...)
		}
		if ev.Metadata != nil {
			meta := *ev.Metadata
			m.Metadata = &meta
		}

	case EventStage3Start:
		m.Loading.Stage3 = true

	case EventStage3Complete:
		m.Loading.Stage3 = false
		if ev.Stage3 != nil {
			resp := *ev.Stage3
			m.Stage3 = &resp
		}

	case EventTitleComplete:
		m.Title = ev.Title

	case EventComplete:
		m.Loading = LoadingFlags{}
		m.Done = true

	case EventError:
		m.Loading = LoadingFlags{}
		m.Err = ev.Message
		if m.Err == "" {
			m.Err = "stream failed"
		}

	case EventUnknown:
		// Ignored; the consumer logs the raw type.
	}

	return m
}
