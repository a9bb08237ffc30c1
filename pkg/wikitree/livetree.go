package wikitree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// LiveTreeStore reads and mutates the authoritative current-state
// document tree.
type LiveTreeStore struct {
	db        *gorm.DB
	revisions *RevisionStore
}

// NewLiveTreeStore returns a LiveTreeStore backed by db.
func NewLiveTreeStore(db *gorm.DB) *LiveTreeStore {
	return &LiveTreeStore{db: db, revisions: NewRevisionStore(db)}
}

// GetTree returns the nested children of space's root group, each
// sibling list sorted by (sort_order, id).
func (t *LiveTreeStore) GetTree(space *models.WikiSpace) (*TreeNode, error) {
	if space.RootGroupID == nil {
		return nil, NotFound("space %s has no root group", space.ID)
	}

	root, err := models.GetDocumentByID(t.db, *space.RootGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("root group for space %s not found", space.ID)
		}
		return nil, err
	}

	docs, err := models.GetSubtree(t.db, space.ID, *root)
	if err != nil {
		return nil, err
	}

	byParent := make(map[uuid.UUID][]*models.WikiDocument)
	byID := make(map[uuid.UUID]*models.WikiDocument, len(docs))
	for i := range docs {
		d := &docs[i]
		byID[d.ID] = d
		if d.ParentID != nil {
			byParent[*d.ParentID] = append(byParent[*d.ParentID], d)
		}
	}
	for k := range byParent {
		sortDocs(byParent[k])
	}

	var build func(d *models.WikiDocument) *TreeNode
	build = func(d *models.WikiDocument) *TreeNode {
		node := &TreeNode{
			DocKey:      d.DocKey,
			Title:       d.Title,
			Slug:        d.Slug,
			IsGroup:     d.IsGroup,
			IsPublished: d.IsPublished,
			Route:       d.Route,
		}
		for _, child := range byParent[d.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	return build(root), nil
}

func sortDocs(docs []*models.WikiDocument) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].SortOrder != docs[j].SortOrder {
			return docs[i].SortOrder < docs[j].SortOrder
		}
		return docs[i].ID.String() < docs[j].ID.String()
	})
}

// ReorderResult reports whether a reorder request was applied directly
// or routed to a change-request contribution instead.
type ReorderResult struct {
	IsContribution bool
	ContributionCR *models.WikiChangeRequest
}

// Reorder reparents doc if newParentID differs from its current parent,
// then assigns sort_order = i for each sibling in siblingIDs. If the
// caller lacks direct-write capability, the request is routed to a
// change-request contribution instead of writing the live tree.
func (t *LiveTreeStore) Reorder(opCtx OpContext, space *models.WikiSpace, cr *ChangeRequestService, doc *models.WikiDocument, newParentID *uuid.UUID, siblingIDs []uuid.UUID) (*ReorderResult, error) {
	if !opCtx.CanWriteLiveTree() {
		contribution, err := t.routeReorderAsContribution(opCtx, cr, space, doc, newParentID, siblingIDs)
		if err != nil {
			return nil, err
		}
		return &ReorderResult{IsContribution: true, ContributionCR: contribution}, nil
	}

	reparented := newParentID != nil && (doc.ParentID == nil || *doc.ParentID != *newParentID)
	if newParentID == nil && doc.ParentID != nil {
		reparented = true
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if reparented {
			if err := tx.Model(doc).Update("parent_id", newParentID).Error; err != nil {
				return err
			}
			doc.ParentID = newParentID
		}

		if err := t.applySortOrderCASE(tx, siblingIDs); err != nil {
			return err
		}

		if reparented {
			return t.rebuildNestedSets(tx, space.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := t.SnapshotDirectReorder(space, t.revisions, opCtx.Principal); err != nil {
		return nil, err
	}
	return &ReorderResult{IsContribution: false}, nil
}

// applySortOrderCASE assigns sort_order = i for orderedIDs[i] using a
// single parametrized CASE update, so reordering N siblings costs one
// write regardless of N.
func (t *LiveTreeStore) applySortOrderCASE(tx *gorm.DB, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	caseSQL := "CASE id "
	args := make([]interface{}, 0, len(orderedIDs)*2+len(orderedIDs))
	ids := make([]interface{}, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		caseSQL += "WHEN ? THEN ? "
		args = append(args, id, i)
		ids = append(ids, id)
	}
	caseSQL += "END"

	args = append(args, ids...)
	return tx.Model(&models.WikiDocument{}).
		Where("id IN ?", ids).
		Update("sort_order", gorm.Expr(caseSQL, args...)).Error
}

func (t *LiveTreeStore) routeReorderAsContribution(opCtx OpContext, cr *ChangeRequestService, space *models.WikiSpace, doc *models.WikiDocument, newParentID *uuid.UUID, siblingIDs []uuid.UUID) (*models.WikiChangeRequest, error) {
	if cr == nil {
		return nil, Permission("direct write to live tree requires direct-write capability")
	}

	draft, err := cr.GetOrCreateDraft(opCtx, space, "")
	if err != nil {
		return nil, err
	}

	docsByID, err := t.loadDocsByID(append(append([]uuid.UUID{}, siblingIDs...), doc.ID))
	if err != nil {
		return nil, err
	}

	var newParentKey *string
	if newParentID != nil {
		if p, ok := docsByID[*newParentID]; ok && p.DocKey != "" {
			key := p.DocKey
			newParentKey = &key
		}
	}

	orderedKeys := make([]string, 0, len(siblingIDs))
	for _, id := range siblingIDs {
		if d, ok := docsByID[id]; ok {
			orderedKeys = append(orderedKeys, d.DocKey)
		}
	}

	editor := NewCREditor(t.db)
	if newParentID != nil || doc.ParentID == nil {
		if err := editor.MovePage(draft, doc.DocKey, newParentKey, nil); err != nil {
			return nil, err
		}
	}
	if err := editor.ReorderChildren(draft, newParentKey, orderedKeys); err != nil {
		return nil, err
	}

	return draft, nil
}

func (t *LiveTreeStore) loadDocsByID(ids []uuid.UUID) (map[uuid.UUID]*models.WikiDocument, error) {
	var docs []models.WikiDocument
	if err := t.db.Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.WikiDocument, len(docs))
	for i := range docs {
		out[docs[i].ID] = &docs[i]
	}
	return out, nil
}

// RebuildNestedSets recursively walks from all roots ordered by
// (sort_order, id), assigning contiguous lft/rgt counters. Idempotent:
// running it twice yields identical indices.
func (t *LiveTreeStore) RebuildNestedSets(spaceID uuid.UUID) error {
	return t.db.Transaction(func(tx *gorm.DB) error {
		return t.rebuildNestedSets(tx, spaceID)
	})
}

func (t *LiveTreeStore) rebuildNestedSets(tx *gorm.DB, spaceID uuid.UUID) error {
	var docs []models.WikiDocument
	if err := tx.Where("space_id = ?", spaceID).Find(&docs).Error; err != nil {
		return err
	}

	byParent := make(map[uuid.UUID][]*models.WikiDocument)
	var roots []*models.WikiDocument
	byID := make(map[uuid.UUID]*models.WikiDocument, len(docs))
	for i := range docs {
		d := &docs[i]
		byID[d.ID] = d
		if d.ParentID == nil {
			roots = append(roots, d)
		} else {
			byParent[*d.ParentID] = append(byParent[*d.ParentID], d)
		}
	}
	sortDocs(roots)
	for k := range byParent {
		sortDocs(byParent[k])
	}

	counter := 0
	var walk func(d *models.WikiDocument)
	walk = func(d *models.WikiDocument) {
		counter++
		d.Lft = counter
		for _, child := range byParent[d.ID] {
			walk(child)
		}
		counter++
		d.Rgt = counter
	}
	for _, r := range roots {
		walk(r)
	}

	for i := range docs {
		d := &docs[i]
		if err := tx.Model(d).Updates(map[string]interface{}{"lft": d.Lft, "rgt": d.Rgt}).Error; err != nil {
			return fmt.Errorf("rebuilding nested set for document %s: %w", d.ID, err)
		}
	}
	return nil
}

// AppendNew assigns sort_order = max(sibling.sort_order) + 1 when the
// caller does not specify one, so new documents land last.
func (t *LiveTreeStore) AppendNew(spaceID uuid.UUID, parentID *uuid.UUID) (int, error) {
	siblings, err := models.GetChildren(t.db, spaceID, parentID)
	if err != nil {
		return 0, err
	}
	max := -1
	for _, s := range siblings {
		if s.SortOrder > max {
			max = s.SortOrder
		}
	}
	return max + 1, nil
}

// UpdateRoutes rewrites space's route and every descendant document's
// route via prefix substitution: an exact match on the old route, or an
// "old/%"-style prefix match, is rewritten to the new route, in a
// single batched update. Wiki Manager or System Manager only.
func (t *LiveTreeStore) UpdateRoutes(opCtx OpContext, space *models.WikiSpace, newRoute string) (int, error) {
	if !opCtx.Has(RoleWikiManager) && !opCtx.Has(RoleSystemManager) {
		return 0, Permission("only a Wiki Manager may rewrite space routes")
	}
	if newRoute == "" {
		return 0, Validation("new route must not be empty")
	}
	if newRoute == space.Route {
		return 0, Validation("new route is identical to the current route")
	}
	if existing, err := models.GetSpaceByRoute(t.db, newRoute); err == nil && existing.ID != space.ID {
		return 0, Validation("route %q is already in use by another space", newRoute)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	oldRoute := space.Route
	oldPrefix := oldRoute + "/"
	newPrefix := newRoute + "/"

	var updated int
	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(space).Update("route", newRoute).Error; err != nil {
			return err
		}
		space.Route = newRoute

		res := tx.Model(&models.WikiDocument{}).
			Where("space_id = ? AND route = ?", space.ID, oldRoute).
			Update("route", newRoute)
		if res.Error != nil {
			return res.Error
		}
		updated += int(res.RowsAffected)

		res = tx.Model(&models.WikiDocument{}).
			Where("space_id = ? AND route LIKE ?", space.ID, oldPrefix+"%").
			Update("route", gorm.Expr("? || substr(route, ?)", newPrefix, len(oldPrefix)+1))
		if res.Error != nil {
			return res.Error
		}
		updated += int(res.RowsAffected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// SnapshotDirectReorder advances the space's main revision after a
// direct (non-CR) live-tree write, per the merge applier's direct-write
// contract: snapshot the live tree as a new revision with message
// "Direct reorder" and parent = current main, then update main_revision_id.
func (t *LiveTreeStore) SnapshotDirectReorder(space *models.WikiSpace, revisions *RevisionStore, principal string) error {
	rev, err := revisions.SnapshotLive(space, "Direct reorder", space.MainRevisionID, false, false, principal)
	if err != nil {
		return err
	}
	return space.SetMainRevision(t.db, rev.ID)
}
