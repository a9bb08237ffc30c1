package db

import (
	"flag"
	"fmt"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/database"
)

// StatsCommand prints the current database connection pool statistics.
type StatsCommand struct {
	*base.Command

	flagConfig string
}

func (c *StatsCommand) Synopsis() string {
	return "Print database connection pool statistics"
}

func (c *StatsCommand) Help() string {
	return `Usage: wikitree db stats -config=PATH

  Prints the connection pool's open/idle/in-use counts and wait
  statistics, for diagnosing pool exhaustion.` +
		c.Flags().Help()
}

func (c *StatsCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("stats", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	return f
}

func (c *StatsCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	dbConn, err := commands.OpenDB(c.flagConfig, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	stats, err := database.GetPoolStats(dbConn)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading pool stats: %v", err))
		return 1
	}

	c.UI.Output(fmt.Sprintf("open=%d in_use=%d idle=%d max_open=%d wait_count=%d wait_duration=%s",
		stats.OpenConnections, stats.InUse, stats.Idle, stats.MaxOpenConnections,
		stats.WaitCount, stats.WaitDuration))
	return 0
}
