package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventAnalysisCompleted is the type of the event emitted after each analysis
const EventAnalysisCompleted = "analysis.completed"

// AnalysisEvent is published once an analysis record has been stored.
type AnalysisEvent struct {
	EventID     uuid.UUID      `json:"event_id"`
	EventType   string         `json:"event_type"`
	AnalysisID  uuid.UUID      `json:"analysis_id"`
	Status      OutcomeStatus  `json:"status"`
	FailedStage string         `json:"failed_stage,omitempty"`
	Result      AnalysisResult `json:"result"`
	DurationMs  int64          `json:"duration_ms"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// NewAnalysisEvent builds the completion event for a stored record
func NewAnalysisEvent(analysisID uuid.UUID, outcome Outcome, elapsed time.Duration) AnalysisEvent {
	event := AnalysisEvent{
		EventID:    uuid.New(),
		EventType:  EventAnalysisCompleted,
		AnalysisID: analysisID,
		Status:     outcome.Status,
		Result:     outcome.Result,
		DurationMs: elapsed.Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}
	if outcome.Degraded() {
		event.FailedStage = string(outcome.FailedStage)
	}
	return event
}
