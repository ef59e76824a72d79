package eventstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a build lifecycle event.
type EventType string

const (
	TypeBuildStarted   EventType = "build.started"
	TypeBuildCompleted EventType = "build.completed"
	TypeBuildFailed    EventType = "build.failed"
	TypeBuildSkipped   EventType = "build.skipped"
)

// Event is one persisted build lifecycle record.
type Event struct {
	// ID is assigned by the store.
	ID        int64             `json:"id"`
	BuildID   string            `json:"build_id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPayloadMismatch, e.Type, err)
	}
	return nil
}
