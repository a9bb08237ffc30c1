package changerequest

import (
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
	"github.com/wikiforge/wikitree/pkg/wikitree"
)

// ReviewCommand either assigns reviewers to a change request
// (-reviewers) or records one reviewer's decision (-action).
type ReviewCommand struct {
	*base.Command

	flagConfig    string
	flagID        string
	flagReviewers string
	flagAction    string
	flagReviewer  string
	flagComment   string
	flagPrincipal string
	flagRoles     string
}

func (c *ReviewCommand) Synopsis() string {
	return "Assign reviewers or record a review decision"
}

func (c *ReviewCommand) Help() string {
	return `Usage: wikitree cr review -id=ID -reviewers=NAME[,NAME...]
   or: wikitree cr review -id=ID -action=approved|changes_requested -reviewer=NAME -principal=NAME -roles=ROLE[,ROLE...]

  With -reviewers, replaces the change request's reviewer set and moves
  it to In Review. With -action, records reviewer's decision and
  recomputes the change request's status; the caller must be the named
  reviewer or hold merge/approve capability.` +
		c.Flags().Help()
}

func (c *ReviewCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("review", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagID, "id", "", "(Required) Change request id.")
	f.StringVar(&c.flagReviewers, "reviewers", "", "Comma-separated reviewers to assign.")
	f.StringVar(&c.flagAction, "action", "", "Review decision: approved or changes_requested.")
	f.StringVar(&c.flagReviewer, "reviewer", "", "Reviewer recording the decision.")
	f.StringVar(&c.flagComment, "comment", "", "Review comment.")
	f.StringVar(&c.flagPrincipal, "principal", "", "Calling principal (required with -action).")
	f.StringVar(&c.flagRoles, "roles", "", "Comma-separated roles held by the principal.")
	return f
}

func (c *ReviewCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagID == "" {
		c.UI.Error("id is required")
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
	crService := wikitree.NewChangeRequestService(database)

	switch {
	case c.flagReviewers != "":
		reviewers := splitTrimmed(c.flagReviewers)
		if err := crService.RequestReview(id, reviewers); err != nil {
			c.UI.Error(fmt.Sprintf("error requesting review: %v", err))
			return 1
		}
		c.UI.Info(fmt.Sprintf("requested review from %d reviewer(s)", len(reviewers)))
		return 0

	case c.flagAction != "":
		action := normalizeAction(c.flagAction)
		if c.flagReviewer == "" || c.flagPrincipal == "" {
			c.UI.Error("reviewer and principal are required with -action")
			return 1
		}
		opCtx := commands.ParseOpContext(c.flagPrincipal, c.flagRoles)
		if err := crService.ReviewAction(opCtx, id, c.flagReviewer, action, c.flagComment); err != nil {
			c.UI.Error(fmt.Sprintf("error recording review: %v", err))
			return 1
		}
		c.UI.Info("review decision recorded")
		return 0

	default:
		c.UI.Error("one of -reviewers or -action is required")
		return 1
	}
}

func normalizeAction(action string) string {
	switch action {
	case "approved":
		return models.ReviewStatusApproved
	case "changes_requested":
		return models.ReviewStatusChangesRequested
	default:
		return action
	}
}

func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
