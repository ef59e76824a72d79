package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/cmd/docsite/commands"
	derrors "git.home.luguber.info/inful/docsite/internal/errors"
	"git.home.luguber.info/inful/docsite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docsite"),
		kong.Description("Validate documentation site configuration, sidebars and navigation."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	if err != nil {
		adapter := derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		os.Exit(adapter.Report(err))
	}
}
