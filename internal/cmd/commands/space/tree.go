package space

import (
	"flag"
	"fmt"
	"strings"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
	"github.com/wikiforge/wikitree/pkg/wikitree"
)

// TreeCommand prints a space's live document tree.
type TreeCommand struct {
	*base.Command

	flagConfig string
	flagRoute  string
}

func (c *TreeCommand) Synopsis() string {
	return "Print a space's live document tree"
}

func (c *TreeCommand) Help() string {
	return `Usage: wikitree space tree -route=ROUTE

  Prints the space's current document tree, indented by depth.` +
		c.Flags().Help()
}

func (c *TreeCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("tree", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagRoute, "route", "", "(Required) The space's route.")
	return f
}

func (c *TreeCommand) Run(args []string) int {
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

	tree, err := wikitree.NewLiveTreeStore(database).GetTree(spaceResult)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error reading tree: %v", err))
		return 1
	}

	printTree(c.UI.Output, tree, 0)
	return 0
}

func printTree(out func(string), node *wikitree.TreeNode, depth int) {
	if node == nil {
		return
	}
	kind := "page"
	if node.IsGroup {
		kind = "group"
	}
	out(fmt.Sprintf("%s%s [%s] (%s) %s", strings.Repeat("  ", depth), node.Title, kind, node.DocKey, node.Route))
	for _, child := range node.Children {
		printTree(out, child, depth+1)
	}
}
