package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	ServiceFlags `embed:""`

	Output        string `short:"o" help:"Output directory for the site manifest" default:"build" env:"DOCSITE_OUTPUT"`
	Force         bool   `short:"f" help:"Rebuild even when the inputs are unchanged"`
	IncludeDrafts bool   `name:"include-drafts" help:"Treat draft documents as existing"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, cleanup, err := newService(ctx, b.ServiceFlags, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Run(ctx, build.Request{
		ConfigPath:    root.Config,
		OutputDir:     b.Output,
		Trigger:       "cli",
		Force:         b.Force,
		IncludeDrafts: b.IncludeDrafts,
	})
	if err != nil {
		return err
	}

	printResult(g, result)
	return nil
}

func printResult(g *Global, r *build.Result) {
	out := g.out()
	if r.Status == build.StatusSkipped {
		fprintf(out, "Build %s skipped: %s\n", r.BuildID, r.SkipReason)
		return
	}
	fprintf(out, "Build %s %s in %s\n", r.BuildID, r.Status, r.Duration.Round(time.Millisecond))
	fprintf(out, "  Documents: %d\n", r.Documents)
	fprintf(out, "  Warnings:  %d\n", r.Warnings())
	if r.ManifestPath != "" {
		fprintf(out, "  Manifest:  %s\n", r.ManifestPath)
	}
	if r.Model != nil {
		for _, w := range r.Model.Report.Warnings {
			fprintf(out, "  ⚠️  %s\n", w)
		}
	}
}
