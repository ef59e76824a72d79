package commands

import (
	"context"
	"encoding/json"
	"time"

	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	EventsDB string `name:"events-db" help:"SQLite database recording build events" default:"docsite-events.db" env:"DOCSITE_EVENTS_DB"`
	Limit    int    `short:"n" help:"Maximum number of builds to show" default:"20"`
	Format   string `short:"f" help:"Output format" default:"text" enum:"text,json"`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	store, err := eventstore.NewSQLiteStore(h.EventsDB)
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "opening event store failed").
			WithContext("path", h.EventsDB)
	}
	defer func() { _ = store.Close() }()

	builds, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return derrors.InternalError("reading build history failed", err)
	}

	out := g.out()
	if h.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}

	if len(builds) == 0 {
		fprintf(out, "No builds recorded\n")
		return nil
	}
	for _, b := range builds {
		fprintf(out, "%s  %-9s  %-8s  %s  docs=%d warnings=%d",
			b.StartedAt.Local().Format(time.DateTime), b.Status, b.Trigger, b.BuildID, b.Documents, b.Warnings)
		if b.Error != "" {
			fprintf(out, "  stage=%s error=%q", b.ErrorStage, b.Error)
		}
		fprintf(out, "\n")
	}
	return nil
}
