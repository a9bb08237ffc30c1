package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/internal/cmd/commands/changerequest"
	"github.com/wikiforge/wikitree/internal/cmd/commands/db"
	"github.com/wikiforge/wikitree/internal/cmd/commands/space"
)

// Commands maps subcommand names to their cli.CommandFactory. Populated
// by initCommands before the CLI runs.
var Commands map[string]cli.CommandFactory

// initCommands builds the Commands map, wiring every leaf and group
// subcommand with the shared UI and logger.
func initCommands(log hclog.Logger, ui cli.Ui) {
	deps := &base.Command{UI: ui, Log: log}

	Commands = map[string]cli.CommandFactory{
		"version": func() (cli.Command, error) {
			return &commands.VersionCommand{Command: deps}, nil
		},

		"space": func() (cli.Command, error) {
			return &space.Command{Command: deps}, nil
		},
		"space create": func() (cli.Command, error) {
			return &space.CreateCommand{Command: deps}, nil
		},
		"space tree": func() (cli.Command, error) {
			return &space.TreeCommand{Command: deps}, nil
		},
		"space update-routes": func() (cli.Command, error) {
			return &space.UpdateRoutesCommand{Command: deps}, nil
		},

		"cr": func() (cli.Command, error) {
			return &changerequest.Command{Command: deps}, nil
		},
		"cr create": func() (cli.Command, error) {
			return &changerequest.CreateCommand{Command: deps}, nil
		},
		"cr list": func() (cli.Command, error) {
			return &changerequest.ListCommand{Command: deps}, nil
		},
		"cr diff": func() (cli.Command, error) {
			return &changerequest.DiffCommand{Command: deps}, nil
		},
		"cr review": func() (cli.Command, error) {
			return &changerequest.ReviewCommand{Command: deps}, nil
		},
		"cr merge": func() (cli.Command, error) {
			return &changerequest.MergeCommand{Command: deps}, nil
		},

		"db": func() (cli.Command, error) {
			return &db.Command{Command: deps}, nil
		},
		"db stats": func() (cli.Command, error) {
			return &db.StatsCommand{Command: deps}, nil
		},
	}
}
