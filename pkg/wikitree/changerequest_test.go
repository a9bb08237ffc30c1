package wikitree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wikiforge/wikitree/pkg/models"
)

func TestChangeRequestServiceListMyChangeRequestsAnnotatesChangeCount(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Alice's change", "")
	require.NoError(t, err)

	editor := NewCREditor(db)
	_, err = editor.CreatePage(cr, nil, "New Page", "", false, true, "hello", nil)
	require.NoError(t, err)

	mine, err := crSvc.ListMyChangeRequests("alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, cr.ID, mine[0].ID)
	require.Equal(t, 1, mine[0].ChangeCount)

	others, err := crSvc.ListMyChangeRequests("someone-else")
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestChangeRequestServiceListPendingReviewsRequiresApproverRole(t *testing.T) {
	db := newTestDB(t)
	space := newTestSpace(t, db)

	revisions := NewRevisionStore(db)
	initial, err := revisions.SnapshotLive(space, "initial", nil, false, false, "system")
	require.NoError(t, err)
	require.NoError(t, space.SetMainRevision(db, initial.ID))

	opCtx := managerCtx()
	crSvc := NewChangeRequestService(db)
	cr, err := crSvc.Create(opCtx, space, "Needs review", "")
	require.NoError(t, err)
	require.NoError(t, crSvc.RequestReview(cr.ID, []string{"carol"}))

	requester := NewOpContext(opCtx.Ctx, "dave", RoleDirectWriter)
	_, err = crSvc.ListPendingReviews(requester)
	require.True(t, IsKind(err, KindPermission))

	pending, err := crSvc.ListPendingReviews(opCtx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, cr.ID, pending[0].ID)
	require.Equal(t, models.CRStatusInReview, pending[0].Status)
}
