package space

import (
	"flag"
	"fmt"

	"github.com/wikiforge/wikitree/internal/cmd/base"
	"github.com/wikiforge/wikitree/internal/cmd/commands"
	"github.com/wikiforge/wikitree/pkg/models"
	"github.com/wikiforge/wikitree/pkg/wikitree"
	"gorm.io/gorm"
)

// CreateCommand creates a new wiki space with an empty root group.
type CreateCommand struct {
	*base.Command

	flagConfig      string
	flagDisplayName string
	flagRoute       string
}

func (c *CreateCommand) Synopsis() string {
	return "Create a new wiki space"
}

func (c *CreateCommand) Help() string {
	return `Usage: wikitree space create -display-name=NAME -route=ROUTE

  Creates a new wiki space with an empty root group document.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ExitOnError))
	f.StringVar(&c.flagConfig, "config", "", "Path to wikitree config file.")
	f.StringVar(&c.flagDisplayName, "display-name", "", "(Required) Display name for the space.")
	f.StringVar(&c.flagRoute, "route", "", "(Required) URL route prefix, no leading/trailing slash.")
	return f
}

func (c *CreateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagDisplayName == "" || c.flagRoute == "" {
		c.UI.Error("display-name and route are both required")
		return 1
	}

	database, err := commands.OpenDB(c.flagConfig, c.Log)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	spaceResult, err := createSpace(database, c.flagDisplayName, c.flagRoute)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error creating space: %v", err))
		return 1
	}

	c.UI.Info(fmt.Sprintf("created space %s (route=%s, root_group=%s)",
		spaceResult.ID, spaceResult.Route, *spaceResult.RootGroupID))
	return 0
}

// createSpace inserts a new space and its root group document in one
// transaction, so a reader never observes a space with no root.
func createSpace(db *gorm.DB, displayName, route string) (*models.WikiSpace, error) {
	spaceResult := &models.WikiSpace{DisplayName: displayName, Route: route}
	if err := spaceResult.Validate(); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(spaceResult).Error; err != nil {
			return err
		}

		docKey, err := wikitree.NewDocKey()
		if err != nil {
			return err
		}
		root := &models.WikiDocument{
			SpaceID: spaceResult.ID,
			DocKey:  docKey,
			Title:   displayName,
			Slug:    "",
			IsGroup: true,
			Route:   route,
			Lft:     1,
			Rgt:     2,
		}
		if err := tx.Create(root).Error; err != nil {
			return err
		}

		if err := tx.Model(spaceResult).Update("root_group_id", root.ID).Error; err != nil {
			return err
		}
		spaceResult.RootGroupID = &root.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return spaceResult, nil
}
