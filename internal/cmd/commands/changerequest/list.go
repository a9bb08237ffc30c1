package changerequest

import (
	"flag"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
)

// ListCommand lists a space's change requests, optionally filtered by
// status.
type ListCommand struct {
	*base.Command

	flagConfig string
	flagRoute  string
	flagStatus string
}

func (c *ListCommand) Synopsis() string {
	return "List a space's change requests"
}

func (c *ListCommand) Help() string {
	return `Usage: wikitree cr list -route=ROUTE [-status=STATUS]

  Lists change requests for the given space, optionally filtered by
  status (draft, in_review, changes_requested, approved, merged,
  archived).` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagRoute, "route", "", "(Required) The space's route.")
	f.StringVar(&c.flagStatus, "status", "", "Filter by status.")
	return f
}

func (c *ListCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagRoute == "" {
		c.UI.Error("route is required")
		return 1
	}

	database, err := commands.OpenDB(c.flagConfig, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	spaceResult, err := models.GetSpaceByRoute(database, c.flagRoute)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error finding space: %v", err))
		return 1
	}

	crs, err := models.ListChangeRequests(database, spaceResult.ID, statusDisplayName(c.flagStatus))
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listing change requests: %v", err))
		return 1
	}

	for _, cr := range crs {
		c.UI.Output(fmt.Sprintf("%s  %-20s %-10s owner=%s", cr.ID, cr.Title, cr.Status, cr.Owner))
	}
	return 0
}

// statusDisplayName accepts the -status flag in snake_case (as
// documented in Help) and converts it to the space-separated title
// case the status column is stored in, e.g. "in_review" -> "In Review".
func statusDisplayName(status string) string {
	if status == "" {
		return ""
	}
	words := strings.Fields(strcase.ToDelimited(status, ' '))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
