package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("load_config", time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("load_config", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSkipped)
	r.AddWarnings("unknown_sidebar", 2)
	r.SetDocuments(4)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveStageDuration("assemble", time.Millisecond)
	p.IncBuildOutcome(BuildOutcomeFailed)
	p.AddWarnings("unknown_page", 1)
	p.SetDocuments(1)
}
