package wikitree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// itemSpec describes one revision item for test fixtures.
type itemSpec struct {
	docKey    string
	title     string
	slug      string
	isGroup   bool
	parentKey *string
	order     int
	content   string
}

func strp(s string) *string { return &s }

func makeRevision(t *testing.T, db *gorm.DB, space *models.WikiSpace, specs []itemSpec) *models.WikiRevision {
	t.Helper()
	rev := &models.WikiRevision{SpaceID: space.ID, Message: "fixture"}
	require.NoError(t, db.Create(rev).Error)

	blobs := NewBlobStore(db)

	items := make([]models.WikiRevisionItem, 0, len(specs))
	for _, s := range specs {
		item := models.WikiRevisionItem{
			RevisionID:  rev.ID,
			DocKey:      s.docKey,
			Title:       s.title,
			Slug:        s.slug,
			IsGroup:     s.isGroup,
			IsPublished: true,
			ParentKey:   s.parentKey,
			OrderIndex:  s.order,
		}
		if !s.isGroup {
			blob, err := blobs.Put("markdown", s.content)
			require.NoError(t, err)
			item.ContentBlobID = &blob.ID
		}
		items = append(items, item)
	}
	require.NoError(t, db.Create(&items).Error)

	revisions := NewRevisionStore(db)
	require.NoError(t, revisions.computeAndSaveHashes(db, rev))
	return rev
}

func TestThreeWayMergeNonOverlappingContent(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	base := makeRevision(t, db, space, []itemSpec{
		{docKey: "page00000001", title: "Page", slug: "page", content: "line1\nline2\nline3\n"},
	})
	ours := makeRevision(t, db, space, []itemSpec{
		{docKey: "page00000001", title: "Page", slug: "page", content: "line1\nline2\nline3-main\n"},
	})
	theirs := makeRevision(t, db, space, []itemSpec{
		{docKey: "page00000001", title: "Page", slug: "page", content: "line1-cr\nline2\nline3\n"},
	})

	merger := NewThreeWayMerger(db)
	result, err := merger.Merge(base.ID, ours.ID, theirs.ID)
	require.NoError(t, err)

	merged := result.Items["page00000001"]
	require.NotNil(t, merged)

	content, err := NewBlobStore(db).Get(*merged.ContentBlobID)
	require.NoError(t, err)
	require.Equal(t, "line1-cr\nline2\nline3-main\n", content)
}

func TestThreeWayMergeContentConflict(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	base := makeRevision(t, db, space, []itemSpec{
		{docKey: "page00000001", title: "Page", slug: "page", content: "v1"},
	})
	ours := makeRevision(t, db, space, []itemSpec{
		{docKey: "page00000001", title: "Page", slug: "page", content: "main-change"},
	})
	theirs := makeRevision(t, db, space, []itemSpec{
		{docKey: "page00000001", title: "Page", slug: "page", content: "cr-change"},
	})

	merger := NewThreeWayMerger(db)
	_, err := merger.Merge(base.ID, ours.ID, theirs.ID)
	require.Error(t, err)

	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, KindValidation, werr.Kind)
	require.Len(t, werr.Conflicts, 1)
	require.Equal(t, models.ConflictTypeContent, werr.Conflicts[0].ConflictType)
}

func TestThreeWayMergeTreeConflict(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	base := makeRevision(t, db, space, []itemSpec{
		{docKey: "g1", title: "G1", slug: "g1", isGroup: true, order: 0},
		{docKey: "g2", title: "G2", slug: "g2", isGroup: true, order: 1},
		{docKey: "page1", title: "P", slug: "p", order: 0, content: "hello"},
	})
	ours := makeRevision(t, db, space, []itemSpec{
		{docKey: "g1", title: "G1", slug: "g1", isGroup: true, order: 0},
		{docKey: "g2", title: "G2", slug: "g2", isGroup: true, order: 1},
		{docKey: "page1", title: "P", slug: "p", parentKey: strp("g2"), order: 0, content: "hello"},
	})
	theirs := makeRevision(t, db, space, []itemSpec{
		{docKey: "g1", title: "G1", slug: "g1", isGroup: true, order: 0},
		{docKey: "g2", title: "G2", slug: "g2", isGroup: true, order: 1},
		{docKey: "page1", title: "P", slug: "p", parentKey: strp("g1"), order: 0, content: "hello"},
	})

	merger := NewThreeWayMerger(db)
	_, err := merger.Merge(base.ID, ours.ID, theirs.ID)
	require.Error(t, err)

	werr, ok := err.(*Error)
	require.True(t, ok)
	require.Len(t, werr.Conflicts, 1)
	require.Equal(t, models.ConflictTypeTree, werr.Conflicts[0].ConflictType)
}

func TestThreeWayMergeCleanCROnlyEdits(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	base := makeRevision(t, db, space, []itemSpec{
		{docKey: "page1", title: "P", slug: "p", content: "hello"},
	})
	ours := base
	theirs := makeRevision(t, db, space, []itemSpec{
		{docKey: "page1", title: "P Renamed", slug: "p", content: "hello"},
	})

	merger := NewThreeWayMerger(db)
	result, err := merger.Merge(base.ID, ours.ID, theirs.ID)
	require.NoError(t, err)
	require.Equal(t, "P Renamed", result.Items["page1"].Title)
}
