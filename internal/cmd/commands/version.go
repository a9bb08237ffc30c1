package commands

import (
	"fmt"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/version"
)

// VersionCommand prints the CLI's build version.
type VersionCommand struct {
	*base.Command
}

func (c *VersionCommand) Synopsis() string {
	return "Print the wikitree version"
}

func (c *VersionCommand) Help() string {
	return "Usage: wikitree version\n\n  Prints the build version of this binary."
}

func (c *VersionCommand) Run(args []string) int {
	c.UI.Output(fmt.Sprintf("wikitree %s", version.String()))
	return 0
}
