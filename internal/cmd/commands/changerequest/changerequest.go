// Package changerequest implements the "cr" subcommand group: opening,
// listing, diffing, reviewing, and merging change requests.
package changerequest

import (
	"github.com/mitchellh/cli"

	"github.com/wikiforge/wikitree/internal/cmd/base"
)

// Command is the "cr" group command; running it without a subcommand
// prints subcommand help.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage change requests: open, list, diff, review, merge"
}

func (c *Command) Help() string {
	return `Usage: wikitree cr <subcommand> [options] [args]

  This command groups subcommands for the change-request branch model:
  opening a change request, listing them, diffing a change request
  against its base, recording review decisions, and merging.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
