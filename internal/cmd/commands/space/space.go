// Package space implements the "space" subcommand group: creating
// spaces, reading the live tree, and rewriting routes.
package space

import (
	"github.com/mitchellh/cli"

	"github.com/wikiforge/wikitree/internal/cmd/base"
)

// Command is the "space" group command; running it without a subcommand
// prints subcommand help.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage wiki spaces and their live document tree"
}

func (c *Command) Help() string {
	return `Usage: wikitree space <subcommand> [options] [args]

  This command groups subcommands for creating spaces and reading or
  rewriting their live document tree.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
