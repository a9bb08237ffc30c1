package wikitree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffEngineTreeOmitsDeletedItems(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Add and remove pages", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	kept, err := editor.CreatePage(cr, nil, "Kept Page", "", false, true, "keep me", nil)
	require.NoError(t, err)
	removed, err := editor.CreatePage(cr, nil, "Removed Page", "", false, true, "bye", nil)
	require.NoError(t, err)
	require.NoError(t, editor.DeletePage(cr, removed.DocKey))

	diffEngine := NewDiffEngine(revisions, NewBlobStore(db))
	tree, err := diffEngine.Tree(cr)
	require.NoError(t, err)
	require.NotNil(t, tree)

	var sawKept, sawRemoved bool
	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		if n.DocKey == kept.DocKey {
			sawKept = true
		}
		if n.DocKey == removed.DocKey {
			sawRemoved = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree)

	require.True(t, sawKept)
	require.False(t, sawRemoved)
}

func TestDiffEngineCRPageReflectsWorkingHead(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Edit a page", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	page, err := editor.CreatePage(cr, nil, "Draft Page", "", false, true, "draft content", nil)
	require.NoError(t, err)

	diffEngine := NewDiffEngine(revisions, NewBlobStore(db))
	side, err := diffEngine.CRPage(cr, page.DocKey)
	require.NoError(t, err)
	require.Equal(t, "Draft Page", side.Title)
	require.Equal(t, "draft content", side.Content)

	_, err = diffEngine.CRPage(cr, "no-such-key00")
	require.True(t, IsKind(err, KindNotFound))
}
