package eventstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// BuildStarted is the payload of a build.started event.
type BuildStarted struct {
	// Trigger is what requested the build: "cli", "watch" or "schedule".
	Trigger    string `json:"trigger"`
	ConfigPath string `json:"config_path"`
}

// BuildCompleted is the payload of a build.completed event.
type BuildCompleted struct {
	Outcome    string `json:"outcome"` // success|warning
	DurationMS int64  `json:"duration_ms"`
	Warnings   int    `json:"warnings"`
	Documents  int    `json:"documents"`
	Sidebars   int    `json:"sidebars"`
	Revision   string `json:"revision,omitempty"`
	InputsHash string `json:"inputs_hash"`
	Manifest   string `json:"manifest,omitempty"`
}

// BuildFailed is the payload of a build.failed event.
type BuildFailed struct {
	Stage      string `json:"stage"`
	Category   string `json:"category,omitempty"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}

// BuildSkipped is the payload of a build.skipped event.
type BuildSkipped struct {
	InputsHash string `json:"inputs_hash"`
	Reason     string `json:"reason"`
}

func newEvent(buildID string, typ EventType, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload for build %s: %w", typ, buildID, err)
	}
	return Event{
		BuildID:   buildID,
		Type:      typ,
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}

// NewBuildStarted creates a build.started event.
func NewBuildStarted(buildID string, p BuildStarted) (Event, error) {
	return newEvent(buildID, TypeBuildStarted, p)
}

// NewBuildCompleted creates a build.completed event.
func NewBuildCompleted(buildID string, p BuildCompleted) (Event, error) {
	return newEvent(buildID, TypeBuildCompleted, p)
}

// NewBuildFailed creates a build.failed event.
func NewBuildFailed(buildID string, p BuildFailed) (Event, error) {
	return newEvent(buildID, TypeBuildFailed, p)
}

// NewBuildSkipped creates a build.skipped event.
func NewBuildSkipped(buildID string, p BuildSkipped) (Event, error) {
	return newEvent(buildID, TypeBuildSkipped, p)
}
