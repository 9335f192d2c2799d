package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/garnet-screening/internal/application/screening"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventCandidate    = "screening.candidate"
	EventRunCompleted = "screening.run.completed"
)

const (
	eventSource   = "gscreen"
	schemaVersion = "1.0"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CandidatePayload is one ranked candidate of a run.
type CandidatePayload struct {
	RunID     string              `json:"run_id"`
	Position  int                 `json:"position"`
	Candidate screening.Candidate `json:"candidate"`
}

// RunCompletedPayload closes the candidate stream of a run.
type RunCompletedPayload struct {
	RunID      string           `json:"run_id"`
	Sites      []string         `json:"sites"`
	Counts     screening.Counts `json:"counts"`
	Candidates int              `json:"candidates"`
	Failures   int              `json:"failures"`
	DurationMs int64            `json:"duration_ms"`
}

// NewEnvelope wraps payload with a fresh event id.
func NewEnvelope(eventType string, payload interface{}, metadata map[string]string) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: schemaVersion,
		Payload:       raw,
		Metadata:      metadata,
	}, nil
}

// DecodePayload unmarshals the envelope payload into v.
func (e *EventEnvelope) DecodePayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

//Personal.AI order the ending
