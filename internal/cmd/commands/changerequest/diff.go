package changerequest

import (
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/wikitree"
)

// DiffCommand prints a change request's diff, either the whole summary
// or, with -doc-key, a single page's two-sided diff.
type DiffCommand struct {
	*base.Command

	flagConfig string
	flagID     string
	flagDocKey string
}

func (c *DiffCommand) Synopsis() string {
	return "Diff a change request against its base revision"
}

func (c *DiffCommand) Help() string {
	return `Usage: wikitree cr diff -id=ID [-doc-key=KEY]

  Without -doc-key, prints the summary diff: one line per doc_key added,
  deleted, or modified between the change request's base and head.
  With -doc-key, prints both sides of that single page's content.` +
		c.Flags().Help()
}

func (c *DiffCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("diff", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagID, "id", "", "(Required) Change request id.")
	f.StringVar(&c.flagDocKey, "doc-key", "", "Diff a single doc_key instead of the summary.")
	return f
}

func (c *DiffCommand) Run(args []string) int {
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
	cr, err := crService.Get(id)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error finding change request: %v", err))
		return 1
	}

	revisions := wikitree.NewRevisionStore(database)
	diffEngine := wikitree.NewDiffEngine(revisions, wikitree.NewBlobStore(database))

	if c.flagDocKey != "" {
		page, err := diffEngine.Page(cr, c.flagDocKey)
		if err != nil {
			c.UI.Error(fmt.Sprintf("error diffing page: %v", err))
			return 1
		}
		c.printSide("base", page.Base)
		c.printSide("head", page.Head)
		return 0
	}

	entries, err := diffEngine.Summary(cr)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error diffing change request: %v", err))
		return 1
	}
	for _, e := range entries {
		c.UI.Output(fmt.Sprintf("%-9s %s  %s", e.ChangeType, e.DocKey, e.Title))
	}
	return 0
}

func (c *DiffCommand) printSide(label string, side *wikitree.PageSide) {
	if side == nil {
		c.UI.Output(fmt.Sprintf("--- %s: (absent)", label))
		return
	}
	c.UI.Output(fmt.Sprintf("--- %s: %s\n%s", label, side.Title, side.Content))
}
