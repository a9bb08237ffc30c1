package changerequest

import (
	"flag"
	"fmt"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
	"github.com/wikiforge/wikitree/pkg/wikitree"
)

// CreateCommand opens a new change request against a space's main
// revision.
type CreateCommand struct {
	*base.Command

	flagConfig      string
	flagRoute       string
	flagTitle       string
	flagDescription string
	flagPrincipal   string
	flagRoles       string
}

func (c *CreateCommand) Synopsis() string {
	return "Open a new change request"
}

func (c *CreateCommand) Help() string {
	return `Usage: wikitree cr create -route=ROUTE -title=TITLE -principal=NAME -roles=ROLE[,ROLE...]

  Opens a change request whose base is the space's current main
  revision and whose working head is a clone of it. If the space has
  no main revision yet, the live tree is snapshotted first.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagRoute, "route", "", "(Required) The space's route.")
	f.StringVar(&c.flagTitle, "title", "", "(Required) Change request title.")
	f.StringVar(&c.flagDescription, "description", "", "Change request description.")
	f.StringVar(&c.flagPrincipal, "principal", "", "(Required) Calling principal.")
	f.StringVar(&c.flagRoles, "roles", "", "Comma-separated roles held by the principal.")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagRoute == "" || c.flagTitle == "" || c.flagPrincipal == "" {
		c.UI.Error("route, title, and principal are all required")
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

	opCtx := commands.ParseOpContext(c.flagPrincipal, c.flagRoles)
	cr, err := wikitree.NewChangeRequestService(database).Create(opCtx, spaceResult, c.flagTitle, c.flagDescription)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating change request: %v", err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("created change request %s (status=%s)", cr.ID, cr.Status))
	return 0
}
