package wikitree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCREditorCreatePageRejectsEmptyTitle(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Title required test", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	_, err = editor.CreatePage(cr, nil, "", "", false, true, "content", nil)
	require.True(t, IsKind(err, KindValidation))
}

func TestCREditorUpdatePageRejectsEmptyTitle(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Update validation test", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	page, err := editor.CreatePage(cr, nil, "Original Title", "", false, true, "content", nil)
	require.NoError(t, err)

	empty := ""
	err = editor.UpdatePage(cr, page.DocKey, PageFields{Title: &empty})
	require.True(t, IsKind(err, KindValidation))
}

func TestCREditorUpdatePageAppliesPartialFields(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Partial update test", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	page, err := editor.CreatePage(cr, nil, "Original Title", "", false, true, "content", nil)
	require.NoError(t, err)

	newTitle := "Renamed Title"
	require.NoError(t, editor.UpdatePage(cr, page.DocKey, PageFields{Title: &newTitle}))

	diffEngine := NewDiffEngine(revisions, NewBlobStore(db))
	side, err := diffEngine.CRPage(cr, page.DocKey)
	require.NoError(t, err)
	require.Equal(t, "Renamed Title", side.Title)
	require.Equal(t, "content", side.Content)
}
