package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/site"
)

// BuildService is the interface the CLI and the watcher run builds through.
type BuildService interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Stage names used for logging, metrics and failure events.
const (
	StageLoadConfig    = "load_config"
	StageLoadSidebars  = "load_sidebars"
	StageRevision      = "revision"
	StageDiscover      = "discover_content"
	StageSkipCheck     = "skip_evaluation"
	StageAssemble      = "assemble"
	StageWriteManifest = "write_manifest"
	StagePublish       = "publish"
)

// Request contains the inputs of one build.
type Request struct {
	// ConfigPath is the site configuration file.
	ConfigPath string

	// OutputDir receives the site manifest. An empty OutputDir validates
	// without writing anything.
	OutputDir string

	// Trigger names what requested the build: "cli", "startup", "watch" or
	// "schedule".
	Trigger string

	// Force rebuilds even when the inputs are unchanged.
	Force bool

	// IncludeDrafts keeps draft documents in the catalog.
	IncludeDrafts bool
}

// Result contains the outcome of a build.
type Result struct {
	BuildID string
	Status  Status

	// Model is the assembled site; nil for skipped and failed builds.
	Model *site.Model

	// ManifestPath is set when a manifest was written.
	ManifestPath string

	// InputsHash identifies the config, sidebars and content built from.
	InputsHash string

	Revision  string
	Documents int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// FailedStage names the stage that failed.
	FailedStage string

	// SkipReason explains why the build was skipped.
	SkipReason string
}

// Warnings returns the number of report warnings of the build.
func (r *Result) Warnings() int {
	if r == nil || r.Model == nil {
		return 0
	}
	return r.Model.Report.Len()
}

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusCanceled Status = "canceled"
)

// IsSuccess reports whether the build left a valid manifest behind.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning || s == StatusSkipped
}
