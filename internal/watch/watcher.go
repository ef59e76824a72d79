// Package watch rebuilds a site when its inputs change and on a fixed
// interval. Builds never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Build triggers recorded on requests and events.
const (
	TriggerStartup  = "startup"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// DefaultDebounce collapses bursts of file events into one build.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Request is the base request; Trigger is set per build.
	Request build.Request

	// Paths are the files and directories to watch. Directories are watched
	// recursively. Missing paths are watched through their parent directory
	// so they are picked up once created.
	Paths []string

	Debounce time.Duration

	// Interval enables periodic rebuilds when positive.
	Interval time.Duration

	// OnResult is called after every build.
	OnResult func(*build.Result, error)
}

// Watcher runs builds on file changes and on schedule, one at a time.
type Watcher struct {
	svc  build.BuildService
	opts Options

	fsw *fsnotify.Watcher
	// roots are directories watched recursively; files maps a watched parent
	// directory to the file names of interest in it.
	roots []string
	files map[string]map[string]struct{}

	buildMu  sync.Mutex
	triggerC chan struct{}
}

// New creates a watcher for opts.Paths. Call Run to start it.
func New(svc build.BuildService, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}

	w := &Watcher{
		svc:      svc,
		opts:     opts,
		fsw:      fsw,
		files:    make(map[string]map[string]struct{}),
		triggerC: make(chan struct{}, 1),
	}
	for _, p := range opts.Paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(p string) error {
	if p == "" {
		return nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path %s: %w", p, err)
	}

	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		w.roots = append(w.roots, abs)
		return w.addDirsRecursive(abs)
	case err == nil || errors.Is(err, fs.ErrNotExist):
		dir := filepath.Dir(abs)
		if _, ok := w.files[dir]; !ok {
			w.files[dir] = make(map[string]struct{})
			if err := w.fsw.Add(dir); err != nil {
				slog.Warn("watch add failed", logfields.Path(dir), logfields.Error(err))
			}
		}
		w.files[dir][filepath.Base(abs)] = struct{}{}
		return nil
	default:
		return fmt.Errorf("failed to stat watch path %s: %w", abs, err)
	}
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// Run performs an initial build and then rebuilds on changes and on
// schedule until ctx is canceled. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	var sched *Scheduler
	if w.opts.Interval > 0 {
		var err error
		sched, err = NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.SchedulePeriodicBuild(w.opts.Interval, func() {
			w.build(ctx, TriggerSchedule)
		}); err != nil {
			_ = sched.Stop()
			return err
		}
	}

	slog.Info("Watching site inputs",
		slog.Int("directories", len(w.roots)),
		slog.Int("files", w.fileCount()),
		slog.Duration("interval", w.opts.Interval))

	w.build(ctx, TriggerStartup)
	if sched != nil {
		sched.Start()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.buildLoop(ctx)
	}()

	w.watchLoop(ctx)
	wg.Wait()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	return nil
}

func (w *Watcher) fileCount() int {
	n := 0
	for _, names := range w.files {
		n += len(names)
	}
	return n
}

// watchLoop forwards relevant file events until ctx is done.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || shouldIgnoreEvent(ev.Name) {
		return
	}

	if w.underRoot(ev.Name) {
		if ev.Op.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				_ = w.addDirsRecursive(ev.Name)
			}
		}
		slog.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
		w.trigger()
		return
	}

	if names, ok := w.files[filepath.Dir(ev.Name)]; ok {
		if _, ok := names[filepath.Base(ev.Name)]; ok {
			slog.Debug("Input file change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			w.trigger()
		}
	}
}

func (w *Watcher) underRoot(p string) bool {
	for _, root := range w.roots {
		if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// trigger requests a debounced rebuild.
func (w *Watcher) trigger() {
	select {
	case w.triggerC <- struct{}{}:
	default:
	}
}

// buildLoop runs one build per quiet period after a trigger.
func (w *Watcher) buildLoop(ctx context.Context) {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.triggerC:
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			w.build(ctx, TriggerWatch)
		}
	}
}

// build runs one build; concurrent callers wait their turn.
func (w *Watcher) build(ctx context.Context, trigger string) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	req := w.opts.Request
	req.Trigger = trigger
	result, err := w.svc.Run(ctx, req)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Trigger(trigger), logfields.Error(err))
	} else if result != nil {
		slog.Info("Rebuild finished",
			logfields.Trigger(trigger),
			logfields.BuildID(result.BuildID),
			slog.String("status", string(result.Status)),
			logfields.Warnings(result.Warnings()))
	}
	if w.opts.OnResult != nil {
		w.opts.OnResult(result, err)
	}
}
