package commands

import "git.home.luguber.info/inful/docsite/internal/version"

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(g *Global, _ *CLI) error {
	out := g.out()
	fprintf(out, "docsite %s\n", version.Version)
	fprintf(out, "  commit: %s\n", version.GitCommit)
	fprintf(out, "  built:  %s\n", version.BuildTime)
	return nil
}
