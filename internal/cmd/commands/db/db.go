// Package db implements the "db" subcommand group: connection-pool
// introspection for operators.
package db

import (
	"github.com/mitchellh/cli"

	"github.com/wikiforge/wikitree/internal/cmd/base"
)

// Command is the "db" group command; running it without a subcommand
// prints subcommand help.
type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Inspect the database connection pool"
}

func (c *Command) Help() string {
	return `Usage: wikitree db <subcommand> [options] [args]

  This command groups subcommands for database operations.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
