package wikitree

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wikiforge/wikitree/pkg/models"
)

func TestLiveTreeStoreUpdateRoutesRewritesPrefix(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	child := &models.WikiDocument{
		SpaceID: space.ID,
		DocKey:  "child0000000",
		Title:   "Child",
		IsGroup: false,
		Route:   space.Route + "/child",
		Lft:     3,
		Rgt:     4,
	}
	require.NoError(t, db.Create(child).Error)

	tree := NewLiveTreeStore(db)
	opCtx := NewOpContext(context.Background(), "alice", RoleWikiManager)

	updated, err := tree.UpdateRoutes(opCtx, space, "/renamed-space")
	require.NoError(t, err)
	require.Equal(t, 2, updated)
	require.Equal(t, "/renamed-space", space.Route)

	root, err := models.GetDocumentByID(db, *space.RootGroupID)
	require.NoError(t, err)
	require.Equal(t, "/renamed-space", root.Route)

	reloadedChild, err := models.GetDocumentByID(db, child.ID)
	require.NoError(t, err)
	require.Equal(t, "/renamed-space/child", reloadedChild.Route)
}

func TestLiveTreeStoreUpdateRoutesRequiresManager(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	tree := NewLiveTreeStore(db)
	opCtx := NewOpContext(context.Background(), "bob", RoleDirectWriter)

	_, err := tree.UpdateRoutes(opCtx, space, "/renamed-space")
	require.True(t, IsKind(err, KindPermission))
}

func TestLiveTreeStoreUpdateRoutesRejectsIdenticalRoute(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	tree := NewLiveTreeStore(db)
	opCtx := NewOpContext(context.Background(), "alice", RoleWikiManager)

	_, err := tree.UpdateRoutes(opCtx, space, space.Route)
	require.True(t, IsKind(err, KindValidation))
}

func TestLiveTreeStoreUpdateRoutesRejectsDuplicateRoute(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	other := &models.WikiSpace{DisplayName: "Other Space", Route: "/other-space"}
	require.NoError(t, db.Create(other).Error)

	tree := NewLiveTreeStore(db)
	opCtx := NewOpContext(context.Background(), "alice", RoleWikiManager)

	_, err := tree.UpdateRoutes(opCtx, space, other.Route)
	require.True(t, IsKind(err, KindValidation))
}

// TestLiveTreeStoreReorderDirectWritePersistsAndAdvancesMainRevision
// exercises spec.md §8 scenario 1: insert a new sibling with no
// sort_order, confirm it lands last, reorder it to the front, and
// confirm the direct write advances the space's main revision per §4.8.
func TestLiveTreeStoreReorderDirectWritePersistsAndAdvancesMainRevision(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)
	require.Nil(t, space.MainRevisionID)

	tree := NewLiveTreeStore(db)

	docKeys := []string{"pageq1000000", "pageq2000000", "pageq3000000", "pageq4000000", "pageq5000000"}
	docs := make([]*models.WikiDocument, 0, len(docKeys))
	for i, key := range docKeys {
		d := &models.WikiDocument{
			SpaceID:   space.ID,
			DocKey:    key,
			Title:     key,
			Slug:      key,
			ParentID:  space.RootGroupID,
			SortOrder: i,
			Route:     space.Route + "/" + key,
		}
		require.NoError(t, db.Create(d).Error)
		docs = append(docs, d)
	}

	nextOrder, err := tree.AppendNew(space.ID, space.RootGroupID)
	require.NoError(t, err)
	require.Equal(t, len(docKeys), nextOrder)

	q6 := &models.WikiDocument{
		SpaceID:   space.ID,
		DocKey:    "pageq6000000",
		Title:     "pageq6000000",
		Slug:      "pageq6000000",
		ParentID:  space.RootGroupID,
		SortOrder: nextOrder,
		Route:     space.Route + "/pageq6000000",
	}
	require.NoError(t, db.Create(q6).Error)
	require.NoError(t, tree.RebuildNestedSets(space.ID))

	before, err := tree.GetTree(space)
	require.NoError(t, err)
	requireDocKeyOrder(t, before, []string{"pageq1000000", "pageq2000000", "pageq3000000", "pageq4000000", "pageq5000000", "pageq6000000"})

	siblingIDs := []uuid.UUID{q6.ID, docs[0].ID, docs[1].ID, docs[2].ID, docs[3].ID, docs[4].ID}
	opCtx := NewOpContext(context.Background(), "alice", RoleDirectWriter)

	result, err := tree.Reorder(opCtx, space, nil, q6, space.RootGroupID, siblingIDs)
	require.NoError(t, err)
	require.False(t, result.IsContribution)

	after, err := tree.GetTree(space)
	require.NoError(t, err)
	requireDocKeyOrder(t, after, []string{"pageq6000000", "pageq1000000", "pageq2000000", "pageq3000000", "pageq4000000", "pageq5000000"})

	reloadedQ6, err := models.GetDocumentByID(db, q6.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloadedQ6.SortOrder)
	for i, d := range docs {
		reloaded, err := models.GetDocumentByID(db, d.ID)
		require.NoError(t, err)
		require.Equal(t, i+1, reloaded.SortOrder)
	}

	reloadedSpace, err := models.GetSpaceByID(db, space.ID)
	require.NoError(t, err)
	require.NotNil(t, reloadedSpace.MainRevisionID)

	rev, err := NewRevisionStore(db).GetRevision(*reloadedSpace.MainRevisionID)
	require.NoError(t, err)
	require.Equal(t, "Direct reorder", rev.Message)
	require.False(t, rev.IsWorking)
}

// TestLiveTreeStoreReorderRoutesNonDirectWriterToContribution exercises
// the routeReorderAsContribution fall-through: a caller without
// direct-write capability never touches the live tree; the reorder is
// recorded on a change-request working head instead.
func TestLiveTreeStoreReorderRoutesNonDirectWriterToContribution(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	tree := NewLiveTreeStore(db)
	crService := NewChangeRequestService(db)

	p1 := &models.WikiDocument{
		SpaceID:   space.ID,
		DocKey:    "childp100000",
		Title:     "childp100000",
		Slug:      "childp100000",
		ParentID:  space.RootGroupID,
		SortOrder: 0,
		Route:     space.Route + "/childp100000",
	}
	p2 := &models.WikiDocument{
		SpaceID:   space.ID,
		DocKey:    "childp200000",
		Title:     "childp200000",
		Slug:      "childp200000",
		ParentID:  space.RootGroupID,
		SortOrder: 1,
		Route:     space.Route + "/childp200000",
	}
	require.NoError(t, db.Create(p1).Error)
	require.NoError(t, db.Create(p2).Error)
	require.NoError(t, tree.RebuildNestedSets(space.ID))

	opCtx := NewOpContext(context.Background(), "carol", RoleWikiApprover)
	result, err := tree.Reorder(opCtx, space, crService, p1, nil, []uuid.UUID{p2.ID, p1.ID})
	require.NoError(t, err)
	require.True(t, result.IsContribution)
	require.NotNil(t, result.ContributionCR)
	require.Equal(t, models.CRStatusDraft, result.ContributionCR.Status)
	require.Equal(t, "carol", result.ContributionCR.Owner)

	reloadedP1, err := models.GetDocumentByID(db, p1.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloadedP1.SortOrder)
	reloadedP2, err := models.GetDocumentByID(db, p2.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloadedP2.SortOrder)

	items, err := models.GetRevisionItems(db, result.ContributionCR.HeadRevisionID)
	require.NoError(t, err)
	orderByKey := make(map[string]int, len(items))
	for _, it := range items {
		orderByKey[it.DocKey] = it.OrderIndex
	}
	require.Equal(t, 0, orderByKey["childp200000"])
	require.Equal(t, 1, orderByKey["childp100000"])
}

func requireDocKeyOrder(t *testing.T, root *TreeNode, want []string) {
	t.Helper()
	got := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		got = append(got, c.DocKey)
	}
	require.Equal(t, want, got)
}
