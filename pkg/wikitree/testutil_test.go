package wikitree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB returns an in-memory sqlite database with every wikitree
// model migrated, the same setup style used for this package's other
// store tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))
	return db
}

// newTestSpace creates a space with a root group document and returns both.
func newTestSpace(t *testing.T, db *gorm.DB) *models.WikiSpace {
	t.Helper()
	space := &models.WikiSpace{DisplayName: "Test Space", Route: "/test-space"}
	require.NoError(t, db.Create(space).Error)

	root := &models.WikiDocument{
		SpaceID: space.ID,
		DocKey:  "root00000000",
		Title:   "Root",
		Slug:    "",
		IsGroup: true,
		Route:   space.Route,
		Lft:     1,
		Rgt:     2,
	}
	require.NoError(t, db.Create(root).Error)

	space.RootGroupID = &root.ID
	require.NoError(t, db.Model(space).Update("root_group_id", root.ID).Error)
	return space
}
