package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/build"
	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/notify"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger

	// Out receives command output; stdout when nil.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Site configuration file path" default:"docsite.yaml" env:"DOCSITE_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format" default:"text" enum:"text,json" env:"DOCSITE_LOG_FORMAT"`
	LogLevel  string           `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" env:"DOCSITE_LOG_LEVEL"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Validate   ValidateCmd `cmd:"" help:"Validate the site configuration, sidebars and navigation links"`
	Build      BuildCmd    `cmd:"" help:"Validate the site and write its manifest"`
	Init       InitCmd     `cmd:"" help:"Initialize a new site configuration file"`
	Watch      WatchCmd    `cmd:"" help:"Rebuild the site manifest when inputs change"`
	History    HistoryCmd  `cmd:"" help:"Show recent builds from the event store"`
	VersionCmd VersionCmd  `cmd:"" name:"version" help:"Show version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.LogFormat, parseLogLevel(c.LogLevel, c.Verbose)))
	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLogLevel maps a level name to slog; --verbose wins.
func parseLogLevel(name string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ServiceFlags are the integration settings shared by build and watch.
type ServiceFlags struct {
	EventsDB    string `name:"events-db" help:"SQLite database recording build events (disabled when empty)" env:"DOCSITE_EVENTS_DB"`
	NATSURL     string `name:"nats-url" help:"NATS server receiving build reports (disabled when empty)" env:"DOCSITE_NATS_URL"`
	NATSSubject string `name:"nats-subject" help:"Subject prefix for build reports" default:"docsite.reports" env:"DOCSITE_NATS_SUBJECT"`
	NATSRetries int    `name:"nats-retries" help:"Republish attempts after a failed report publish" default:"2"`
}

// newService wires a build service with the configured integrations. The
// returned cleanup func releases them. An unreachable NATS server only
// disables publishing.
func newService(ctx context.Context, flags ServiceFlags, recorder metrics.Recorder) (*build.DefaultBuildService, func(), error) {
	svc := build.NewBuildService()
	if recorder != nil {
		svc = svc.WithRecorder(recorder)
	}

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Warn("Cleanup failed", slog.String("error", err.Error()))
			}
		}
	}

	if flags.EventsDB != "" {
		store, err := eventstore.NewSQLiteStore(flags.EventsDB)
		if err != nil {
			return nil, nil, derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "opening event store failed").
				WithContext("path", flags.EventsDB)
		}
		closers = append(closers, store.Close)
		svc = svc.WithEventStore(store)
	}

	if flags.NATSURL != "" {
		pub, err := notify.NewNATSPublisher(ctx, notify.NATSOptions{
			URL:     flags.NATSURL,
			Subject: flags.NATSSubject,
			Retry:   retry.NewPolicy(retry.BackoffExponential, 200*time.Millisecond, 2*time.Second, flags.NATSRetries),
		}, slog.Default())
		if err != nil {
			slog.Warn("Report publishing disabled", slog.String("url", flags.NATSURL), slog.String("error", err.Error()))
		} else {
			closers = append(closers, pub.Close)
			svc = svc.WithPublisher(pub)
		}
	}

	return svc, cleanup, nil
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
