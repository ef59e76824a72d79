package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docsite/internal/build"
	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Format        string `short:"f" help:"Report format" default:"text" enum:"text,json"`
	IncludeDrafts bool   `name:"include-drafts" help:"Treat draft documents as existing"`
	Strict        bool   `help:"Fail when the report contains warnings"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	formatter, err := site.NewFormatter(v.Format)
	if err != nil {
		return err
	}

	svc, cleanup, err := newService(ctx, ServiceFlags{}, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Run(ctx, build.Request{
		ConfigPath:    root.Config,
		Trigger:       "cli",
		IncludeDrafts: v.IncludeDrafts,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(g.out(), result.Model); err != nil {
		return derrors.InternalError("writing report failed", err)
	}

	if v.Strict && result.Model.Report.HasWarnings() {
		return derrors.BrokenLinks(result.Model.Report.Len(), site.ErrBrokenLinks)
	}
	return nil
}
