package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// must returns a helper that fails t when an event constructor errors.
func must(t *testing.T) func(Event, error) Event {
	return func(e Event, err error) Event {
		t.Helper()
		require.NoError(t, err)
		return e
	}
}

func TestBuildHistoryProjection_ApplyEvents(t *testing.T) {
	mustEvent := must(t)
	projection := NewBuildHistoryProjection(newTestStore(t), 10)

	start := mustEvent(NewBuildStarted(testBuildID, BuildStarted{Trigger: "watch"}))
	projection.Apply(start)

	summary, ok := projection.GetBuild(testBuildID)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, summary.Status)
	assert.Equal(t, "watch", summary.Trigger)
	assert.Empty(t, projection.GetHistory(), "running builds are not history")

	done := mustEvent(NewBuildCompleted(testBuildID, BuildCompleted{
		Outcome: "warning", Warnings: 2, Documents: 7, Revision: "abc", InputsHash: "h1",
	}))
	done.Timestamp = start.Timestamp.Add(2 * time.Second)
	projection.Apply(done)

	summary, _ = projection.GetBuild(testBuildID)
	assert.Equal(t, StatusWarning, summary.Status)
	assert.Equal(t, 7, summary.Documents)
	assert.Equal(t, 2*time.Second, summary.Duration)
	require.NotNil(t, summary.CompletedAt)

	history := projection.GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "h1", history[0].InputsHash)
}

func TestBuildHistoryProjection_Failed(t *testing.T) {
	mustEvent := must(t)
	projection := NewBuildHistoryProjection(newTestStore(t), 10)
	projection.Apply(mustEvent(NewBuildStarted("b-fail", BuildStarted{Trigger: "cli"})))
	projection.Apply(mustEvent(NewBuildFailed("b-fail", BuildFailed{Stage: "load_config", Error: "missing title"})))

	summary, ok := projection.GetBuild("b-fail")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, summary.Status)
	assert.Equal(t, "load_config", summary.ErrorStage)
	assert.Equal(t, "missing title", summary.Error)

	_, ok = projection.GetLastCompletedBuild()
	assert.False(t, ok, "failed builds produce no manifest")
}

func TestBuildHistoryProjection_RebuildFromStore(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	at := time.Now().Add(-time.Hour)

	appendAt := func(e Event, err error) {
		require.NoError(t, err)
		at = at.Add(time.Second)
		e.Timestamp = at
		require.NoError(t, store.Append(ctx, e))
	}
	appendAt(NewBuildStarted("b1", BuildStarted{Trigger: "cli"}))
	appendAt(NewBuildCompleted("b1", BuildCompleted{Outcome: "success", InputsHash: "h1"}))
	appendAt(NewBuildStarted("b2", BuildStarted{Trigger: "schedule"}))
	appendAt(NewBuildSkipped("b2", BuildSkipped{InputsHash: "h1"}))
	appendAt(NewBuildStarted("b3", BuildStarted{Trigger: "watch"}))

	history, err := History(ctx, store, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "b2", history[0].BuildID)
	assert.Equal(t, StatusSkipped, history[0].Status)
	assert.Equal(t, "b1", history[1].BuildID)
	assert.Equal(t, StatusSucceeded, history[1].Status)

	p := NewBuildHistoryProjection(store, 10)
	require.NoError(t, p.Rebuild(ctx))
	last, ok := p.GetLastCompletedBuild()
	require.True(t, ok)
	assert.Equal(t, "b1", last.BuildID)
	running, ok := p.GetBuild("b3")
	require.True(t, ok)
	assert.Equal(t, StatusRunning, running.Status)
}

func TestBuildHistoryProjection_Bounded(t *testing.T) {
	mustEvent := must(t)
	projection := NewBuildHistoryProjection(newTestStore(t), 2)
	for _, id := range []string{"a", "b", "c"} {
		projection.Apply(mustEvent(NewBuildStarted(id, BuildStarted{})))
		projection.Apply(mustEvent(NewBuildCompleted(id, BuildCompleted{})))
	}

	history := projection.GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].BuildID)
	_, ok := projection.GetBuild("a")
	assert.False(t, ok, "builds outside the bound are pruned")
}
