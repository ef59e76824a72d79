package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/config"
	derrors "git.home.luguber.info/inful/docsite/internal/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for generated config file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	// With an output directory the config is written there as "docsite.yaml".
	if i.Output != "" {
		return RunInit(g, filepath.Join(i.Output, "docsite.yaml"), i.Force)
	}
	return RunInit(g, root.Config, i.Force)
}

func RunInit(g *Global, configPath string, force bool) error {
	out := g.out()
	fprintf(out, "Initializing docsite project\n")
	fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		fprintf(out, "Initialization failed\n")
		return derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "writing site configuration failed").
			WithContext("path", configPath)
	}
	fprintf(out, "initialized successfully\n")
	return nil
}
