package wikitree

import (
	"time"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// MergeApplier runs a three-way merge and, on success, materializes the
// result onto the live tree and advances the space's main revision.
type MergeApplier struct {
	db        *gorm.DB
	merger    *ThreeWayMerger
	revisions *RevisionStore
}

// NewMergeApplier returns a MergeApplier backed by db.
func NewMergeApplier(db *gorm.DB) *MergeApplier {
	return &MergeApplier{db: db, merger: NewThreeWayMerger(db), revisions: NewRevisionStore(db)}
}

// Merge merges cr into space's live tree. Only a Wiki Manager, Approver,
// or System Manager may call this. On conflict, every conflict is
// recorded before the validation error is returned and no live state is
// touched. On success it returns the new merge revision's id.
func (a *MergeApplier) Merge(opCtx OpContext, space *models.WikiSpace, cr *models.WikiChangeRequest) (uuid.UUID, error) {
	if !opCtx.CanMergeOrApprove() {
		return uuid.Nil, Permission("%s may not merge change requests", opCtx.Principal)
	}
	if space.MainRevisionID == nil {
		return uuid.Nil, Validation("space %s has no main revision to merge against", space.ID)
	}

	result, mergeErr := a.merger.Merge(cr.BaseRevisionID, *space.MainRevisionID, cr.HeadRevisionID)
	if mergeErr != nil {
		if werr, ok := mergeErr.(*Error); ok && len(werr.Conflicts) > 0 {
			recErr := a.db.Transaction(func(tx *gorm.DB) error {
				return recordConflicts(tx, cr.ID, werr.Conflicts)
			})
			if recErr != nil {
				return uuid.Nil, recErr
			}
		}
		return uuid.Nil, mergeErr
	}

	var mergeRevisionID uuid.UUID
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := models.DeleteConflictsForChangeRequest(tx, cr.ID); err != nil {
			return err
		}

		rev := &models.WikiRevision{
			SpaceID:          space.ID,
			ParentRevisionID: space.MainRevisionID,
			Message:          "Merge change request: " + cr.Title,
			IsWorking:        false,
			IsMerge:          true,
			CreatedBy:        opCtx.Principal,
		}
		if err := tx.Create(rev).Error; err != nil {
			return err
		}

		if err := writeMergeRevisionItems(tx, rev, result.Items); err != nil {
			return err
		}
		if err := a.revisions.computeAndSaveHashes(tx, rev); err != nil {
			return err
		}

		if err := applyMergeToLiveTree(tx, space, result.Items); err != nil {
			return err
		}

		if err := (&LiveTreeStore{db: tx}).rebuildNestedSets(tx, space.ID); err != nil {
			return err
		}

		if err := space.SetMainRevision(tx, rev.ID); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(cr).Updates(map[string]interface{}{
			"status":            models.CRStatusMerged,
			"merge_revision_id": rev.ID,
			"merged_at":         now,
			"merged_by":         opCtx.Principal,
		}).Error; err != nil {
			return err
		}

		mergeRevisionID = rev.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return mergeRevisionID, nil
}

func writeMergeRevisionItems(tx *gorm.DB, rev *models.WikiRevision, items ItemMap) error {
	rows := make([]models.WikiRevisionItem, 0, len(items))
	for key, it := range items {
		rows = append(rows, models.WikiRevisionItem{
			RevisionID:    rev.ID,
			DocKey:        key,
			Title:         it.Title,
			Slug:          it.Slug,
			IsGroup:       it.IsGroup,
			IsPublished:   it.IsPublished,
			ParentKey:     it.ParentKey,
			OrderIndex:    it.OrderIndex,
			ContentBlobID: it.ContentBlobID,
		})
	}
	rev.DocCount = len(rows)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// applyMergeToLiveTree upserts live documents by doc_key in tree order,
// inserting new keys and updating existing ones while never rewriting
// route. Deleted items (absent from items) are left untouched here: a
// live document whose doc_key has no surviving item is not deleted or
// detached, and keeps its parent, route and place in the live tree.
func applyMergeToLiveTree(tx *gorm.DB, space *models.WikiSpace, items ItemMap) error {
	order := TreeOrder(items)

	existing, err := models.GetDocumentsByKeys(tx, space.ID, order)
	if err != nil {
		return err
	}

	idByKey := make(map[string]uuid.UUID, len(order))
	for k, d := range existing {
		idByKey[k] = d.ID
	}

	for _, key := range order {
		it := items[key]

		var parentID *uuid.UUID
		if it.ParentKey != nil {
			if pid, ok := idByKey[*it.ParentKey]; ok {
				parentID = &pid
			}
		}

		content := ""
		if it.ContentBlobID != nil {
			c, err := NewBlobStoreTx(tx).Get(*it.ContentBlobID)
			if err != nil {
				return err
			}
			content = c
		}

		if doc, ok := existing[key]; ok {
			if err := tx.Model(&doc).Updates(map[string]interface{}{
				"title":        it.Title,
				"slug":         it.Slug,
				"is_group":     it.IsGroup,
				"is_published": it.IsPublished,
				"content":      content,
				"sort_order":   it.OrderIndex,
				"parent_id":    parentID,
			}).Error; err != nil {
				return err
			}
			continue
		}

		var parentRoute string
		if it.ParentKey != nil {
			if pdoc, ok := existing[*it.ParentKey]; ok {
				parentRoute = pdoc.Route
			}
		}
		if parentRoute == "" {
			parentRoute = space.Route
		}

		newDoc := &models.WikiDocument{
			SpaceID:     space.ID,
			DocKey:      key,
			Title:       it.Title,
			Slug:        it.Slug,
			IsGroup:     it.IsGroup,
			IsPublished: it.IsPublished,
			ParentID:    parentID,
			SortOrder:   it.OrderIndex,
			Route:       parentRoute + "/" + it.Slug,
			Content:     content,
		}
		if err := tx.Create(newDoc).Error; err != nil {
			return err
		}
		idByKey[key] = newDoc.ID
		existing[key] = *newDoc
	}

	return nil
}
