package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/notify"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/site"
)

const siteYAML = `
title: Test Site
url: https://example.com
onBrokenLinks: %s
i18n:
  defaultLocale: en
  locales: [en]
themeConfig:
  navbar:
    items:
      - type: docSidebar
        sidebarId: tutorialSidebar
        label: Docs
`

const sidebarYAML = `
sidebars:
  tutorialSidebar:
    - type: category
      label: Basics
      items:
        - intro
        - setup
`

type testSite struct {
	root       string
	configPath string
	outputDir  string
}

func newTestSite(t *testing.T, policy string) *testSite {
	t.Helper()
	root := t.TempDir()
	ts := &testSite{
		root:       root,
		configPath: filepath.Join(root, "docsite.yaml"),
		outputDir:  filepath.Join(root, "build"),
	}
	ts.write(t, "docsite.yaml", fmt.Sprintf(siteYAML, policy))
	ts.write(t, "sidebars.yaml", sidebarYAML)
	ts.write(t, "docs/intro.md", "# Introduction\n\nHello.\n")
	ts.write(t, "docs/setup.md", "---\ntitle: Setup\n---\nSteps.\n")
	return ts
}

func (ts *testSite) write(t *testing.T, rel, data string) {
	t.Helper()
	p := filepath.Join(ts.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
}

func (ts *testSite) request() Request {
	return Request{ConfigPath: ts.configPath, OutputDir: ts.outputDir, Trigger: "cli"}
}

type countingRecorder struct {
	metrics.NoopRecorder
	outcomes map[metrics.BuildOutcomeLabel]int
	stages   map[string]map[metrics.ResultLabel]int
	warnings map[string]int
	docs     int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		outcomes: map[metrics.BuildOutcomeLabel]int{},
		stages:   map[string]map[metrics.ResultLabel]int{},
		warnings: map[string]int{},
	}
}

func (r *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) { r.outcomes[o]++ }
func (r *countingRecorder) AddWarnings(kind string, n int)             { r.warnings[kind] += n }
func (r *countingRecorder) SetDocuments(n int)                         { r.docs = n }
func (r *countingRecorder) IncStageResult(stage string, res metrics.ResultLabel) {
	if r.stages[stage] == nil {
		r.stages[stage] = map[metrics.ResultLabel]int{}
	}
	r.stages[stage][res]++
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishReport(context.Context, notify.ReportMessage) error {
	p.calls++
	return errors.New("nats: no servers available for connection")
}
func (p *failingPublisher) Close() error { return nil }

func newStore(t *testing.T) *eventstore.SQLiteStore {
	t.Helper()
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func eventTypes(t *testing.T, store eventstore.Store, buildID string) []eventstore.EventType {
	t.Helper()
	events, err := store.GetByBuildID(t.Context(), buildID)
	require.NoError(t, err)
	types := make([]eventstore.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusSuccess, true},
		{StatusWarning, true},
		{StatusSkipped, true},
		{StatusFailed, false},
		{StatusCanceled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsSuccess())
		})
	}
}

func TestRun_WritesManifest(t *testing.T) {
	ts := newTestSite(t, "warn")
	rec := newCountingRecorder()
	store := newStore(t)
	svc := NewBuildService().WithRecorder(rec).WithEventStore(store)

	result, err := svc.Run(t.Context(), ts.request())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, filepath.Join(ts.outputDir, manifest.FileName), result.ManifestPath)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 2, rec.docs)
	assert.NotEmpty(t, result.InputsHash)
	require.NotNil(t, result.Model)
	assert.Equal(t, "/docs/intro", result.Model.Navbar[0].Href)

	m, err := manifest.Read(result.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, result.BuildID, m.ID)
	require.Len(t, m.Sidebars, 1)
	assert.Equal(t, "tutorialSidebar", m.Sidebars[0].Name)
	hash, err := m.Hash()
	require.NoError(t, err)
	assert.Equal(t, result.InputsHash, hash)

	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeSuccess])
	assert.Equal(t, 1, rec.stages[StageWriteManifest][metrics.ResultSuccess])
	assert.Equal(t, []eventstore.EventType{eventstore.TypeBuildStarted, eventstore.TypeBuildCompleted},
		eventTypes(t, store, result.BuildID))
}

func TestRun_SkipsUnchangedInputs(t *testing.T) {
	ts := newTestSite(t, "warn")
	rec := newCountingRecorder()
	store := newStore(t)
	svc := NewBuildService().WithRecorder(rec).WithEventStore(store)

	first, err := svc.Run(t.Context(), ts.request())
	require.NoError(t, err)

	second, err := svc.Run(t.Context(), ts.request())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, "inputs unchanged", second.SkipReason)
	assert.Nil(t, second.Model)
	assert.Equal(t, first.InputsHash, second.InputsHash)
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeSkipped])
	assert.Equal(t, []eventstore.EventType{eventstore.TypeBuildStarted, eventstore.TypeBuildSkipped},
		eventTypes(t, store, second.BuildID))

	req := ts.request()
	req.Force = true
	forced, err := svc.Run(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, forced.Status)

	history, err := eventstore.History(t.Context(), store, 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestRun_ChangedContentRebuilds(t *testing.T) {
	ts := newTestSite(t, "warn")
	svc := NewBuildService()

	first, err := svc.Run(t.Context(), ts.request())
	require.NoError(t, err)

	ts.write(t, "docs/setup.md", "---\ntitle: Setup\n---\nDifferent steps.\n")
	second, err := svc.Run(t.Context(), ts.request())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, second.Status)
	assert.NotEqual(t, first.InputsHash, second.InputsHash)
}

func TestRun_EnvFileChangeRebuilds(t *testing.T) {
	const key = "DOCSITE_BUILD_TEST_TITLE"
	ts := newTestSite(t, "warn")
	ts.write(t, "docsite.yaml", strings.Replace(fmt.Sprintf(siteYAML, "warn"), "title: Test Site", "title: ${"+key+"}", 1))
	svc := NewBuildService()

	var hashes []string
	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		ts.write(t, ".env", key+"="+title+"\n")
		result, err := svc.Run(t.Context(), ts.request())
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, result.Status, "rebuild after .env set to %s", title)
		assert.Equal(t, title, result.Model.Config.Title)
		hashes = append(hashes, result.InputsHash)
	}
	assert.NotEqual(t, hashes[0], hashes[1])
	assert.NotEqual(t, hashes[1], hashes[2])

	_, set := os.LookupEnv(key)
	assert.False(t, set, ".env values stay out of the process environment")

	unchanged, err := svc.Run(t.Context(), ts.request())
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, unchanged.Status)
}

func TestRun_ValidateOnly(t *testing.T) {
	ts := newTestSite(t, "warn")
	req := ts.request()
	req.OutputDir = ""

	result, err := NewBuildService().Run(t.Context(), req)
	require.NoError(t, err)
	assert.NotNil(t, result.Model)
	assert.Empty(t, result.ManifestPath)
	assert.NoDirExists(t, ts.outputDir)
}

func TestRun_MissingConfig(t *testing.T) {
	store := newStore(t)
	rec := newCountingRecorder()
	svc := NewBuildService().WithEventStore(store).WithRecorder(rec)

	result, err := svc.Run(t.Context(), Request{ConfigPath: filepath.Join(t.TempDir(), "docsite.yaml")})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, StageLoadConfig, result.FailedStage)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeFailed])

	events, err := store.GetByBuildID(t.Context(), result.BuildID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	var failed eventstore.BuildFailed
	require.NoError(t, events[1].Decode(&failed))
	assert.Equal(t, StageLoadConfig, failed.Stage)
	assert.Equal(t, "config", failed.Category)
}

func TestRun_InvalidConfig(t *testing.T) {
	ts := newTestSite(t, "warn")
	ts.write(t, "docsite.yaml", "title: ''\nurl: https://example.com\n")

	result, err := NewBuildService().Run(t.Context(), ts.request())
	require.Error(t, err)
	assert.Equal(t, StageLoadConfig, result.FailedStage)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
	assert.ErrorIs(t, err, ErrLoadConfig)
}

func TestRun_InvalidSidebar(t *testing.T) {
	ts := newTestSite(t, "warn")
	ts.write(t, "sidebars.yaml", "sidebars:\n  tutorialSidebar:\n    - type: category\n      label: Empty\n      items: []\n")

	result, err := NewBuildService().Run(t.Context(), ts.request())
	require.Error(t, err)
	assert.Equal(t, StageLoadSidebars, result.FailedStage)
	assert.True(t, derrors.IsCategory(err, derrors.CategorySidebar))
	assert.ErrorIs(t, err, sidebar.ErrEmptyCategory)
}

func TestRun_MissingSidebarFile(t *testing.T) {
	ts := newTestSite(t, "warn")
	require.NoError(t, os.Remove(filepath.Join(ts.root, "sidebars.yaml")))
	rec := newCountingRecorder()

	result, err := NewBuildService().WithRecorder(rec).Run(t.Context(), ts.request())
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
	assert.Equal(t, 1, result.Model.Report.Count(site.UnknownSidebar))
	assert.Equal(t, 1, rec.warnings[string(site.UnknownSidebar)])
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeWarning])
}

func TestRun_BrokenLinksThrow(t *testing.T) {
	ts := newTestSite(t, "throw")
	require.NoError(t, os.Remove(filepath.Join(ts.root, "sidebars.yaml")))

	result, err := NewBuildService().Run(t.Context(), ts.request())
	require.Error(t, err)
	assert.Equal(t, StageAssemble, result.FailedStage)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryValidation))
	assert.ErrorIs(t, err, site.ErrBrokenLinks)
	assert.NoFileExists(t, filepath.Join(ts.outputDir, manifest.FileName))
}

func TestRun_UnknownDocumentWarns(t *testing.T) {
	ts := newTestSite(t, "warn")
	require.NoError(t, os.Remove(filepath.Join(ts.root, "docs", "setup.md")))

	result, err := NewBuildService().Run(t.Context(), ts.request())
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, result.Status)
	assert.Equal(t, []site.Warning{{Kind: site.UnknownDocument, Ref: "setup", Location: "tutorialSidebar"}},
		result.Model.Report.Warnings)
}

func TestRun_PublishFailureIsNotFatal(t *testing.T) {
	ts := newTestSite(t, "warn")
	pub := &failingPublisher{}
	rec := newCountingRecorder()

	result, err := NewBuildService().WithPublisher(pub).WithRecorder(rec).Run(t.Context(), ts.request())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, 1, rec.stages[StagePublish][metrics.ResultWarning])
}

func TestRun_Canceled(t *testing.T) {
	ts := newTestSite(t, "warn")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	result, err := NewBuildService().Run(ctx, ts.request())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCanceled, result.Status)
	assert.Equal(t, StageLoadConfig, result.FailedStage)
}
