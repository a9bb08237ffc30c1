package wikitree

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// CREditor mutates a change request's working head revision. Every
// operation recomputes the head revision's hashes on exit.
type CREditor struct {
	db        *gorm.DB
	revisions *RevisionStore
}

// NewCREditor returns a CREditor backed by db.
func NewCREditor(db *gorm.DB) *CREditor {
	return &CREditor{db: db, revisions: NewRevisionStore(db)}
}

// PageFields describes a document's content fields, used by CreatePage
// and as a partial-update set by UpdatePage.
type PageFields struct {
	Title       *string
	Slug        *string
	IsGroup     *bool
	IsPublished *bool
	Content     *string
	IsDeleted   *bool
}

// CreatePage generates a fresh doc_key, defaults order_index to
// max(sibling.order_index)+1 and slug to a slugified title, blobs the
// content, and inserts a new item into cr's working head revision.
func (e *CREditor) CreatePage(cr *models.WikiChangeRequest, parentKey *string, title, slug string, isGroup, isPublished bool, content string, orderIndex *int) (*models.WikiRevisionItem, error) {
	if !cr.IsWorkingStatus() {
		return nil, Validation("change request %s is not editable in status %s", cr.ID, cr.Status)
	}
	if err := validation.Validate(title, validation.Required); err != nil {
		return nil, Validation("title is required")
	}
	if slug == "" {
		slug = Slugify(title)
	}

	docKey, err := NewDocKey()
	if err != nil {
		return nil, err
	}

	idx := 0
	if orderIndex != nil {
		idx = *orderIndex
	} else {
		siblings, err := e.siblingsOf(cr.HeadRevisionID, parentKey)
		if err != nil {
			return nil, err
		}
		for _, s := range siblings {
			if s.OrderIndex >= idx {
				idx = s.OrderIndex + 1
			}
		}
	}

	item := &models.WikiRevisionItem{
		RevisionID:  cr.HeadRevisionID,
		DocKey:      docKey,
		Title:       title,
		Slug:        slug,
		IsGroup:     isGroup,
		IsPublished: isPublished,
		ParentKey:   parentKey,
		OrderIndex:  idx,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if !isGroup {
			blob, err := NewBlobStoreTx(tx).Put("markdown", content)
			if err != nil {
				return err
			}
			item.ContentBlobID = &blob.ID
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return e.recomputeHashes(tx, cr.HeadRevisionID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdatePage partially updates any subset of an item's editable fields.
// Content is re-blobbed when provided.
func (e *CREditor) UpdatePage(cr *models.WikiChangeRequest, docKey string, fields PageFields) error {
	if !cr.IsWorkingStatus() {
		return Validation("change request %s is not editable in status %s", cr.ID, cr.Status)
	}

	item, err := models.GetRevisionItem(e.db, cr.HeadRevisionID, docKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("doc_key %s not found in change request %s", docKey, cr.ID)
		}
		return err
	}

	// Keyed by Go field name and normalized to its db column name below,
	// the same job strcase does for custom-field lookups in the teacher.
	fieldUpdates := map[string]interface{}{}
	if fields.Title != nil {
		if err := validation.Validate(*fields.Title, validation.Required); err != nil {
			return Validation("title cannot be empty")
		}
		fieldUpdates["Title"] = *fields.Title
	}
	if fields.Slug != nil {
		fieldUpdates["Slug"] = *fields.Slug
	}
	if fields.IsGroup != nil {
		fieldUpdates["IsGroup"] = *fields.IsGroup
	}
	if fields.IsPublished != nil {
		fieldUpdates["IsPublished"] = *fields.IsPublished
	}
	if fields.IsDeleted != nil {
		fieldUpdates["IsDeleted"] = *fields.IsDeleted
	}
	updates := columnUpdates(fieldUpdates)

	return e.db.Transaction(func(tx *gorm.DB) error {
		if fields.Content != nil {
			blob, err := NewBlobStoreTx(tx).Put("markdown", *fields.Content)
			if err != nil {
				return err
			}
			updates["content_blob_id"] = blob.ID
		}
		if len(updates) > 0 {
			if err := tx.Model(item).Updates(updates).Error; err != nil {
				return err
			}
		}
		return e.recomputeHashes(tx, cr.HeadRevisionID)
	})
}

// MovePage updates an item's parent_key and, if given, its order_index.
func (e *CREditor) MovePage(cr *models.WikiChangeRequest, docKey string, newParentKey *string, newOrderIndex *int) error {
	if !cr.IsWorkingStatus() {
		return Validation("change request %s is not editable in status %s", cr.ID, cr.Status)
	}

	item, err := models.GetRevisionItem(e.db, cr.HeadRevisionID, docKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("doc_key %s not found in change request %s", docKey, cr.ID)
		}
		return err
	}

	updates := map[string]interface{}{"parent_key": newParentKey}
	if newOrderIndex != nil {
		updates["order_index"] = *newOrderIndex
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Updates(updates).Error; err != nil {
			return err
		}
		return e.recomputeHashes(tx, cr.HeadRevisionID)
	})
}

// ReorderChildren assigns order_index = i for orderedKeys[i] among the
// children of parentKey.
func (e *CREditor) ReorderChildren(cr *models.WikiChangeRequest, parentKey *string, orderedKeys []string) error {
	if !cr.IsWorkingStatus() {
		return Validation("change request %s is not editable in status %s", cr.ID, cr.Status)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		for i, key := range orderedKeys {
			item, err := models.GetRevisionItem(tx, cr.HeadRevisionID, key)
			if err != nil {
				return err
			}
			if err := tx.Model(item).Update("order_index", i).Error; err != nil {
				return err
			}
		}
		return e.recomputeHashes(tx, cr.HeadRevisionID)
	})
}

// DeletePage marks docKey deleted and transitively marks every
// descendant deleted too, guarding against cycles with a visited set
// (a buggy client could otherwise create one within a working revision).
func (e *CREditor) DeletePage(cr *models.WikiChangeRequest, docKey string) error {
	if !cr.IsWorkingStatus() {
		return Validation("change request %s is not editable in status %s", cr.ID, cr.Status)
	}

	items, err := models.GetRevisionItems(e.db, cr.HeadRevisionID)
	if err != nil {
		return err
	}

	childrenOf := make(map[string][]string)
	for _, it := range items {
		if it.ParentKey != nil {
			childrenOf[*it.ParentKey] = append(childrenOf[*it.ParentKey], it.DocKey)
		}
	}

	toDelete := make(map[string]bool)
	visited := make(map[string]bool)
	var visit func(key string)
	visit = func(key string) {
		if visited[key] {
			return
		}
		visited[key] = true
		toDelete[key] = true
		for _, child := range childrenOf[key] {
			visit(child)
		}
	}
	visit(docKey)

	return e.db.Transaction(func(tx *gorm.DB) error {
		keys := make([]string, 0, len(toDelete))
		for k := range toDelete {
			keys = append(keys, k)
		}
		if err := tx.Model(&models.WikiRevisionItem{}).
			Where("revision_id = ? AND doc_key IN ?", cr.HeadRevisionID, keys).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		return e.recomputeHashes(tx, cr.HeadRevisionID)
	})
}

func (e *CREditor) siblingsOf(revisionID uuid.UUID, parentKey *string) ([]models.WikiRevisionItem, error) {
	items, err := models.GetRevisionItems(e.db, revisionID)
	if err != nil {
		return nil, err
	}
	var siblings []models.WikiRevisionItem
	for _, it := range items {
		samePair := (it.ParentKey == nil && parentKey == nil) ||
			(it.ParentKey != nil && parentKey != nil && *it.ParentKey == *parentKey)
		if samePair && !it.IsDeleted {
			siblings = append(siblings, it)
		}
	}
	return siblings, nil
}

// recomputeHashes recomputes and saves tree_hash/content_hash for
// revisionID, reusing RevisionStore's hash computation.
func (e *CREditor) recomputeHashes(tx *gorm.DB, revisionID uuid.UUID) error {
	rev, err := models.GetRevisionByID(tx, revisionID)
	if err != nil {
		return err
	}
	return e.revisions.computeAndSaveHashes(tx, rev)
}

// columnUpdates normalizes a map keyed by Go struct field name into one
// keyed by its snake_case db column name, for GORM's Model().Updates(map).
func columnUpdates(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for name, val := range fields {
		out[strcase.ToSnake(name)] = val
	}
	return out
}
