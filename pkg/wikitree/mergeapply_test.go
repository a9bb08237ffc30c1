package wikitree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wikiforge/wikitree/pkg/models"
)

func managerCtx() OpContext {
	return NewOpContext(context.Background(), "alice", RoleWikiManager)
}

func TestMergeApplierCreatesNewPageAndAdvancesMain(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Add a page", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	_, err = editor.CreatePage(cr, nil, "Page One", "", false, true, "hello world", nil)
	require.NoError(t, err)

	applier := NewMergeApplier(db)
	mergeRevID, err := applier.Merge(opCtx, space, cr)
	require.NoError(t, err)
	require.NotEqual(t, initial.ID, mergeRevID)

	updatedSpace, err := models.GetSpaceByID(db, space.ID)
	require.NoError(t, err)
	require.NotNil(t, updatedSpace.MainRevisionID)
	require.Equal(t, mergeRevID, *updatedSpace.MainRevisionID)

	updatedCR, err := crSvc.Get(cr.ID)
	require.NoError(t, err)
	require.Equal(t, models.CRStatusMerged, updatedCR.Status)
	require.NotNil(t, updatedCR.MergeRevisionID)

	docs, err := models.GetAllDocuments(db, space.ID)
	require.NoError(t, err)

	var found bool
	for _, d := range docs {
		if d.Title == "Page One" {
			found = true
			require.Equal(t, space.Route+"/page-one", d.Route)
		}
	}
	require.True(t, found)
}

func TestMergeApplierPreservesRouteOnUpdate(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	page := &models.WikiDocument{
		SpaceID: space.ID,
		DocKey:  "page00000001",
		Title:   "Original Title",
		Slug:    "original-title",
		Route:   space.Route + "/original-route",
		ParentID: space.RootGroupID,
	}
	require.NoError(t, db.Create(page).Error)
	require.NoError(t, NewLiveTreeStore(db).RebuildNestedSets(space.ID))

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Rename page", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	newTitle := "Renamed Title"
	require.NoError(t, editor.UpdatePage(cr, page.DocKey, PageFields{Title: &newTitle}))

	applier := NewMergeApplier(db)
	_, err = applier.Merge(opCtx, space, cr)
	require.NoError(t, err)

	reloaded, err := models.GetDocumentByID(db, page.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed Title", reloaded.Title)
	require.Equal(t, space.Route+"/original-route", reloaded.Route)
}

func TestMergeApplierRequiresMergeCapability(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	unprivileged := NewOpContext(context.Background(), "bob")
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(unprivileged, space, "A change", "")
	require.NoError(t, err)

	applier := NewMergeApplier(db)
	_, err = applier.Merge(unprivileged, space, cr)
	require.Error(t, err)
	require.True(t, IsKind(err, KindPermission))
}
