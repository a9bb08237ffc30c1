package changerequest

import (
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
	"github.com/wikiforge/wikitree/pkg/wikitree"
)

// MergeCommand three-way merges a change request into its space's live
// tree and advances the main revision.
type MergeCommand struct {
	*base.Command

	flagConfig    string
	flagID        string
	flagPrincipal string
	flagRoles     string
}

func (c *MergeCommand) Synopsis() string {
	return "Merge a change request into its space's main revision"
}

func (c *MergeCommand) Help() string {
	return `Usage: wikitree cr merge -id=ID -principal=NAME -roles=ROLE[,ROLE...]

  Runs a three-way merge of the change request's head against the
  space's current main revision, using its base as the common
  ancestor. On conflict, every conflict is recorded and no live state
  is touched. Requires Wiki Manager, Approver, or System Manager.` +
		c.Flags().Help()
}

func (c *MergeCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("merge", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagID, "id", "", "(Required) Change request id.")
	f.StringVar(&c.flagPrincipal, "principal", "", "(Required) Calling principal.")
	f.StringVar(&c.flagRoles, "roles", "", "(Required) Comma-separated roles held by the principal.")
	return f
}

func (c *MergeCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagID == "" || c.flagPrincipal == "" || c.flagRoles == "" {
		c.UI.Error("id, principal, and roles are all required")
		return 1
	}
	id, err := uuid.Parse(c.flagID)
	if err != nil {
		c.UI.Error(fmt.Sprintf("invalid id: %v", err))
		return 1
	}

	database, err := commands.OpenDB(c.flagConfig, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	cr, err := wikitree.NewChangeRequestService(database).Get(id)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error finding change request: %v", err))
		return 1
	}
	spaceResult, err := models.GetSpaceByID(database, cr.SpaceID)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error finding space: %v", err))
		return 1
	}

	opCtx := commands.ParseOpContext(c.flagPrincipal, c.flagRoles)
	mergeRevisionID, err := wikitree.NewMergeApplier(database).Merge(opCtx, spaceResult, cr)
	if err != nil {
		if werr, ok := err.(*wikitree.Error); ok && len(werr.Conflicts) > 0 {
			c.UI.Error(fmt.Sprintf("merge conflict: %v", err))
			for _, conflict := range werr.Conflicts {
				c.UI.Output(fmt.Sprintf("  conflict: %s (%s)", conflict.DocKey, conflict.ConflictType))
			}
			return 1
		}
		c.UI.Error(fmt.Sprintf("error merging change request: %v", err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("merged into revision %s", mergeRevisionID))
	return 0
}
