package commands

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	ServiceFlags `embed:""`

	Output        string        `short:"o" help:"Output directory for the site manifest" default:"build" env:"DOCSITE_OUTPUT"`
	IncludeDrafts bool          `name:"include-drafts" help:"Treat draft documents as existing"`
	Debounce      time.Duration `help:"Quiet period before rebuilding after a change" default:"300ms"`
	Interval      time.Duration `help:"Periodic rebuild interval (0 disables)" default:"0s" env:"DOCSITE_INTERVAL"`
	MetricsAddr   string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (disabled when empty)" env:"DOCSITE_METRICS_ADDR"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, root.Config)
}

func (w *WatchCmd) run(ctx context.Context, configPath string) error {
	// The watched paths come from the configuration as it is at startup.
	cfg, err := config.Load(configPath)
	if err != nil {
		return derrors.ConfigInvalid(configPath, err)
	}

	var recorder metrics.Recorder
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheusRecorder(reg)

		_, stop, err := serveMetrics(w.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	svc, cleanup, err := newService(ctx, w.ServiceFlags, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	watcher, err := watch.New(svc, watch.Options{
		Request: build.Request{
			ConfigPath:    configPath,
			OutputDir:     w.Output,
			IncludeDrafts: w.IncludeDrafts,
		},
		Paths:    watch.Paths(configPath, cfg),
		Debounce: w.Debounce,
		Interval: w.Interval,
	})
	if err != nil {
		return derrors.InternalError("starting file watcher failed", err)
	}

	slog.Info("Watching site, press Ctrl+C to stop", slog.String("config", configPath))
	return watcher.Run(ctx)
}

// serveMetrics exposes reg on addr. It returns the bound address and a func
// that shuts the server down.
func serveMetrics(addr string, reg *prom.Registry) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "metrics listener failed").
			WithContext("addr", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()
	slog.Info("Serving metrics", slog.String("addr", ln.Addr().String()))

	return ln.Addr().String(), func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
