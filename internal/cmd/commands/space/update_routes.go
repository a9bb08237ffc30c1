package space

import (
	"flag"
	"fmt"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
	"github.com/wikiforge/wikitree/pkg/wikitree"
)

// UpdateRoutesCommand rewrites a space's route and every descendant
// document's route via prefix substitution. Wiki Manager or System
// Manager only.
type UpdateRoutesCommand struct {
	*base.Command

	flagConfig    string
	flagRoute     string
	flagNewRoute  string
	flagPrincipal string
	flagRoles     string
}

func (c *UpdateRoutesCommand) Synopsis() string {
	return "Rewrite a space's route and all descendant routes"
}

func (c *UpdateRoutesCommand) Help() string {
	return `Usage: wikitree space update-routes -route=OLD -new-route=NEW -principal=NAME -roles=ROLE[,ROLE...]

  Rewrites the space's route and every document route that exactly
  matched or was prefixed by the old route. Requires the Wiki Manager or
  System Manager role.` +
		c.Flags().Help()
}

func (c *UpdateRoutesCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update-routes", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagRoute, "route", "", "(Required) The space's current route.")
	f.StringVar(&c.flagNewRoute, "new-route", "", "(Required) The new route.")
	f.StringVar(&c.flagPrincipal, "principal", "", "(Required) Calling principal.")
	f.StringVar(&c.flagRoles, "roles", "", "(Required) Comma-separated roles held by the principal.")
	return f
}

func (c *UpdateRoutesCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagRoute == "" || c.flagNewRoute == "" || c.flagPrincipal == "" || c.flagRoles == "" {
		c.UI.Error("route, new-route, principal, and roles are all required")
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
	updated, err := wikitree.NewLiveTreeStore(database).UpdateRoutes(opCtx, spaceResult, c.flagNewRoute)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error updating routes: %v", err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("updated %d document route(s)", updated))
	return 0
}
