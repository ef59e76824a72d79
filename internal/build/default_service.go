package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/notify"
	"git.home.luguber.info/inful/docsite/internal/observability"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// DefaultBuildService is the standard implementation of BuildService.
// It runs config → sidebars → content → assemble → manifest sequentially.
type DefaultBuildService struct {
	recorder    metrics.Recorder
	events      eventstore.Store
	publisher   notify.Publisher
	sidebarOpts sidebar.Options
	newBuildID  func() string
	now         func() time.Time
}

// NewBuildService creates a DefaultBuildService that records nothing.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder:   metrics.NoopRecorder{},
		publisher:  notify.NoopPublisher{},
		newBuildID: uuid.NewString,
		now:        time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithEventStore records build lifecycle events in store.
func (s *DefaultBuildService) WithEventStore(store eventstore.Store) *DefaultBuildService {
	s.events = store
	return s
}

// WithPublisher publishes finished reports through p.
func (s *DefaultBuildService) WithPublisher(p notify.Publisher) *DefaultBuildService {
	if p != nil {
		s.publisher = p
	}
	return s
}

// WithSidebarOptions sets the sidebar resolution options.
func (s *DefaultBuildService) WithSidebarOptions(opts sidebar.Options) *DefaultBuildService {
	s.sidebarOpts = opts
	return s
}

// Run executes the build pipeline. The returned Result is never nil; on
// failure it names the failed stage and err is a *errors.SiteError.
func (s *DefaultBuildService) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{BuildID: s.newBuildID(), StartTime: s.now()}
	ctx = observability.WithBuildID(ctx, result.BuildID)
	if req.Trigger != "" {
		ctx = observability.WithTrigger(ctx, req.Trigger)
	}

	s.appendEvent(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(result.BuildID, eventstore.BuildStarted{Trigger: req.Trigger, ConfigPath: req.ConfigPath})
	})
	observability.InfoContext(ctx, "Build started", logfields.Path(req.ConfigPath))

	// Stage 1: site configuration
	var (
		cfg        *config.SiteConfig
		configHash string
	)
	err := s.stage(ctx, StageLoadConfig, func(ctx context.Context) error {
		var (
			expanded []byte
			err      error
		)
		cfg, expanded, err = config.LoadExpanded(req.ConfigPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return derrors.ConfigNotFound(req.ConfigPath)
			}
			return derrors.ConfigInvalid(req.ConfigPath, fmt.Errorf("%w: %w", ErrLoadConfig, err))
		}
		// Hash the expanded document so .env edits change the inputs.
		configHash = manifest.HashBytes(expanded)
		observability.DebugContext(ctx, "Configuration loaded",
			slog.String("title", cfg.Title),
			logfields.Locale(cfg.I18n.DefaultLocale))
		return nil
	})
	if err != nil {
		return s.fail(ctx, result, StageLoadConfig, err)
	}

	// Stage 2: sidebars
	var (
		tree        *sidebar.Tree
		sidebarHash string
	)
	err = s.stage(ctx, StageLoadSidebars, func(ctx context.Context) error {
		var err error
		tree, sidebarHash, err = s.loadSidebars(ctx, cfg.Docs.SidebarPath)
		return err
	})
	if err != nil {
		return s.fail(ctx, result, StageLoadSidebars, err)
	}

	// Stage 3: revision of the site sources. A missing repository is fine.
	_ = s.stage(ctx, StageRevision, func(ctx context.Context) error {
		rev, err := content.Revision(filepath.Dir(req.ConfigPath))
		if err != nil {
			observability.WarnContext(ctx, "Failed to resolve git revision", logfields.Error(err))
			return nil
		}
		result.Revision = rev
		return nil
	})

	// Stage 4: content discovery
	var catalog *content.Catalog
	err = s.stage(ctx, StageDiscover, func(ctx context.Context) error {
		opts := content.OptionsFromConfig(cfg)
		opts.IncludeDrafts = req.IncludeDrafts
		var err error
		catalog, err = content.Discover(ctx, opts)
		if err != nil {
			return derrors.DiscoveryError(opts.DocsDir, fmt.Errorf("%w: %w", ErrDiscovery, err))
		}
		result.Documents = catalog.Len()
		s.recorder.SetDocuments(catalog.Len())
		observability.InfoContext(ctx, "Content discovered", slog.Int("entries", catalog.Len()))
		return nil
	})
	if err != nil {
		return s.fail(ctx, result, StageDiscover, err)
	}

	inputs := manifest.Inputs{
		ConfigHash:    configHash,
		SidebarHash:   sidebarHash,
		Revision:      result.Revision,
		ContentDigest: catalog.Digest(),
	}
	result.InputsHash, err = (&manifest.SiteManifest{Inputs: inputs}).Hash()
	if err != nil {
		return s.fail(ctx, result, StageSkipCheck, derrors.InternalError("hash build inputs", err))
	}

	// Stage 5: skip when the previous manifest was built from the same inputs
	if req.OutputDir != "" && !req.Force {
		var unchanged bool
		_ = s.stage(ctx, StageSkipCheck, func(ctx context.Context) error {
			unchanged = s.inputsUnchanged(ctx, req.OutputDir, result.InputsHash)
			return nil
		})
		if unchanged {
			return s.skip(ctx, result, "inputs unchanged")
		}
	}

	// Stage 6: assemble
	var model *site.Model
	err = s.stage(ctx, StageAssemble, func(ctx context.Context) error {
		var err error
		model, err = site.Assemble(cfg, tree, catalog, site.Options{
			BuildID:       result.BuildID,
			Revision:      result.Revision,
			ContentDigest: inputs.ContentDigest,
			Now:           s.now,
		})
		if err != nil {
			var ble *site.BrokenLinksError
			if errors.As(err, &ble) {
				s.recordWarnings(ble.Warnings)
				return derrors.BrokenLinks(len(ble.Warnings), fmt.Errorf("%w: %w", ErrAssemble, err))
			}
			return derrors.InternalError("assemble site model", fmt.Errorf("%w: %w", ErrAssemble, err))
		}
		s.recordWarnings(model.Report.Warnings)
		for _, w := range model.Report.Warnings {
			observability.WarnContext(ctx, "Unresolved navigation reference",
				slog.String("kind", string(w.Kind)),
				slog.String("ref", w.Ref),
				slog.String("location", w.Location))
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, result, StageAssemble, err)
	}
	result.Model = model

	// Stage 7: manifest
	if req.OutputDir != "" {
		err = s.stage(ctx, StageWriteManifest, func(ctx context.Context) error {
			path := filepath.Join(req.OutputDir, manifest.FileName)
			if err := os.MkdirAll(req.OutputDir, 0o750); err != nil {
				return derrors.ManifestWriteError(path, fmt.Errorf("%w: %w", ErrManifest, err))
			}
			if err := manifest.Write(path, manifest.FromModel(model, inputs)); err != nil {
				return derrors.ManifestWriteError(path, fmt.Errorf("%w: %w", ErrManifest, err))
			}
			result.ManifestPath = path
			observability.InfoContext(ctx, "Manifest written", logfields.Path(path))
			return nil
		})
		if err != nil {
			return s.fail(ctx, result, StageWriteManifest, err)
		}
	}

	// Stage 8: publish; failures degrade to a warning
	s.publish(ctx, notify.NewReportMessage(model, result.InputsHash))

	return s.complete(ctx, result)
}

// loadSidebars parses and resolves the sidebar document. A missing document
// yields an empty tree.
func (s *DefaultBuildService) loadSidebars(ctx context.Context, path string) (*sidebar.Tree, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			observability.WarnContext(ctx, "Sidebar file not found; building without sidebars", logfields.Path(path))
			tree, err := sidebar.Resolve(nil, s.sidebarOpts)
			return tree, "", err
		}
		return nil, "", derrors.SidebarInvalid(path, fmt.Errorf("%w: %w", ErrLoadSidebars, err))
	}

	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, "", derrors.SidebarInvalid(path, fmt.Errorf("%w: %w", ErrLoadSidebars, err))
	}
	raw, err := sidebar.Parse(data, format)
	if err != nil {
		return nil, "", derrors.SidebarInvalid(path, fmt.Errorf("%w: %w", ErrLoadSidebars, err))
	}
	tree, err := sidebar.Resolve(raw, s.sidebarOpts)
	if err != nil {
		return nil, "", derrors.SidebarInvalid(path, fmt.Errorf("%w: %w", ErrLoadSidebars, err))
	}

	for _, name := range tree.Names() {
		observability.DebugContext(ctx, "Sidebar resolved",
			logfields.Sidebar(name),
			slog.Int("documents", len(tree.Documents(name))))
	}
	return tree, manifest.HashBytes(data), nil
}

func (s *DefaultBuildService) inputsUnchanged(ctx context.Context, outputDir, hash string) bool {
	prev, err := manifest.Read(filepath.Join(outputDir, manifest.FileName))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			observability.WarnContext(ctx, "Ignoring unreadable previous manifest", logfields.Error(err))
		}
		return false
	}
	prevHash, err := prev.Hash()
	return err == nil && prevHash == hash
}

// stage runs fn as a named stage, recording its duration and result.
func (s *DefaultBuildService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.recorder.ObserveStageDuration(name, elapsed)

	switch {
	case err == nil:
		s.recorder.IncStageResult(name, metrics.ResultSuccess)
		observability.DebugContext(ctx, "Stage complete", logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		s.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	return err
}

func (s *DefaultBuildService) recordWarnings(ws []site.Warning) {
	counts := make(map[site.WarningKind]int)
	for _, w := range ws {
		counts[w.Kind]++
	}
	for kind, n := range counts {
		s.recorder.AddWarnings(string(kind), n)
	}
}

func (s *DefaultBuildService) publish(ctx context.Context, msg notify.ReportMessage) {
	start := time.Now()
	err := s.publisher.PublishReport(ctx, msg)
	s.recorder.ObserveStageDuration(StagePublish, time.Since(start))
	if err != nil {
		s.recorder.IncStageResult(StagePublish, metrics.ResultWarning)
		observability.WarnContext(observability.WithStage(ctx, StagePublish), "Failed to publish build report",
			logfields.Error(derrors.ExternalError("nats", err)))
		return
	}
	s.recorder.IncStageResult(StagePublish, metrics.ResultSuccess)
}

func (s *DefaultBuildService) finish(result *Result) {
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)
}

func (s *DefaultBuildService) complete(ctx context.Context, result *Result) (*Result, error) {
	s.finish(result)
	result.Status = StatusSuccess
	outcome := metrics.BuildOutcomeSuccess
	if result.Model.Report.HasWarnings() {
		result.Status = StatusWarning
		outcome = metrics.BuildOutcomeWarning
	}
	s.recorder.IncBuildOutcome(outcome)

	sidebars := result.Model.Sidebars.Len()
	s.appendEvent(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildCompleted(result.BuildID, eventstore.BuildCompleted{
			Outcome:    string(result.Status),
			DurationMS: result.Duration.Milliseconds(),
			Warnings:   result.Warnings(),
			Documents:  result.Documents,
			Sidebars:   sidebars,
			Revision:   result.Revision,
			InputsHash: result.InputsHash,
			Manifest:   result.ManifestPath,
		})
	})
	observability.InfoContext(ctx, "Build completed",
		slog.String("status", string(result.Status)),
		logfields.Warnings(result.Warnings()),
		logfields.Revision(result.Revision),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

func (s *DefaultBuildService) skip(ctx context.Context, result *Result, reason string) (*Result, error) {
	s.finish(result)
	result.Status = StatusSkipped
	result.SkipReason = reason
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeSkipped)
	s.appendEvent(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildSkipped(result.BuildID, eventstore.BuildSkipped{InputsHash: result.InputsHash, Reason: reason})
	})
	observability.InfoContext(ctx, "Build skipped - no changes detected", slog.String("reason", reason))
	return result, nil
}

func (s *DefaultBuildService) fail(ctx context.Context, result *Result, stage string, err error) (*Result, error) {
	s.finish(result)
	result.FailedStage = stage
	result.Status = StatusFailed
	outcome := metrics.BuildOutcomeFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.Status = StatusCanceled
		outcome = metrics.BuildOutcomeCanceled
	}
	s.recorder.IncBuildOutcome(outcome)

	s.appendEvent(ctx, func() (eventstore.Event, error) {
		return eventstore.NewBuildFailed(result.BuildID, eventstore.BuildFailed{
			Stage:      stage,
			Category:   string(derrors.GetCategory(err)),
			Error:      err.Error(),
			DurationMS: result.Duration.Milliseconds(),
		})
	})
	observability.ErrorContext(observability.WithStage(ctx, stage), "Build failed",
		slog.String("status", string(result.Status)),
		logfields.Error(err))
	return result, err
}

// appendEvent records an event when a store is configured. Store failures
// are logged and never fail the build.
func (s *DefaultBuildService) appendEvent(ctx context.Context, build func() (eventstore.Event, error)) {
	if s.events == nil {
		return
	}
	e, err := build()
	if err == nil {
		e.Timestamp = s.now()
		err = s.events.Append(context.WithoutCancel(ctx), e)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record build event", logfields.Error(derrors.ExternalError("eventstore", err)))
	}
}
