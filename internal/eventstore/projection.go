// Package eventstore persists build lifecycle events and projects them into
// a build history.
package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusWarning   = "warning"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// BuildSummary is a read model of one build.
type BuildSummary struct {
	BuildID     string        `json:"build_id"`
	Trigger     string        `json:"trigger,omitempty"`
	Status      string        `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Warnings    int           `json:"warnings"`
	Documents   int           `json:"documents"`
	Revision    string        `json:"revision,omitempty"`
	InputsHash  string        `json:"inputs_hash,omitempty"`
	ErrorStage  string        `json:"error_stage,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// BuildHistoryProjection maintains an in-memory view of build history,
// reconstructed from events stored in the event store.
type BuildHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	builds  map[string]*BuildSummary
	history []*BuildSummary // finished builds, newest first
	maxSize int
}

// NewBuildHistoryProjection creates a new projection backed by the given store.
func NewBuildHistoryProjection(store Store, maxHistorySize int) *BuildHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &BuildHistoryProjection{
		store:   store,
		builds:  make(map[string]*BuildSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *BuildHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.builds = make(map[string]*BuildSummary)
	p.history = nil
	for _, event := range events {
		p.applyEventLocked(event)
	}
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	p.trimLocked()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *BuildHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
	p.trimLocked()
}

func (p *BuildHistoryProjection) applyEventLocked(event Event) {
	if event.BuildID == "" {
		return
	}

	summary, exists := p.builds[event.BuildID]
	if !exists {
		summary = &BuildSummary{
			BuildID:   event.BuildID,
			Status:    StatusRunning,
			StartedAt: event.Timestamp,
		}
		p.builds[event.BuildID] = summary
	}

	switch event.Type {
	case TypeBuildStarted:
		var payload BuildStarted
		if err := event.Decode(&payload); err == nil {
			summary.Trigger = payload.Trigger
		}
		summary.StartedAt = event.Timestamp

	case TypeBuildCompleted:
		var payload BuildCompleted
		if err := event.Decode(&payload); err == nil {
			summary.Warnings = payload.Warnings
			summary.Documents = payload.Documents
			summary.Revision = payload.Revision
			summary.InputsHash = payload.InputsHash
		}
		summary.Status = StatusSucceeded
		if summary.Warnings > 0 {
			summary.Status = StatusWarning
		}
		p.finishLocked(summary, event.Timestamp)

	case TypeBuildFailed:
		var payload BuildFailed
		if err := event.Decode(&payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.Error = payload.Error
		}
		summary.Status = StatusFailed
		p.finishLocked(summary, event.Timestamp)

	case TypeBuildSkipped:
		var payload BuildSkipped
		if err := event.Decode(&payload); err == nil {
			summary.InputsHash = payload.InputsHash
		}
		summary.Status = StatusSkipped
		p.finishLocked(summary, event.Timestamp)
	}
}

func (p *BuildHistoryProjection) finishLocked(summary *BuildSummary, at time.Time) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	for _, h := range p.history {
		if h.BuildID == summary.BuildID {
			return
		}
	}
	p.history = append([]*BuildSummary{summary}, p.history...)
}

// trimLocked bounds history and drops finished builds that fell out of it.
func (p *BuildHistoryProjection) trimLocked() {
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.BuildID] = struct{}{}
	}
	for id, summary := range p.builds {
		if summary.Status == StatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.builds, id)
		}
	}
}

// GetHistory returns copies of the finished builds, newest first.
func (p *BuildHistoryProjection) GetHistory() []BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]BuildSummary, 0, len(p.history))
	for _, h := range p.history {
		out = append(out, *h)
	}
	return out
}

// GetBuild returns the summary for a specific build.
func (p *BuildHistoryProjection) GetBuild(buildID string) (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, ok := p.builds[buildID]
	if !ok {
		return BuildSummary{}, false
	}
	return *summary, true
}

// GetLastCompletedBuild returns the most recent finished build that produced
// a manifest, or false when none exists.
func (p *BuildHistoryProjection) GetLastCompletedBuild() (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, h := range p.history {
		if h.Status == StatusSucceeded || h.Status == StatusWarning {
			return *h, true
		}
	}
	return BuildSummary{}, false
}

// History rebuilds a projection over store and returns at most limit builds,
// newest first.
func History(ctx context.Context, store Store, limit int) ([]BuildSummary, error) {
	p := NewBuildHistoryProjection(store, limit)
	if err := p.Rebuild(ctx); err != nil {
		return nil, err
	}
	return p.GetHistory(), nil
}
