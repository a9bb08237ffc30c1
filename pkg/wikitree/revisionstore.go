package wikitree

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// RevisionStore creates and reads immutable revision snapshots.
type RevisionStore struct {
	db    *gorm.DB
	blobs *BlobStore
}

// NewRevisionStore returns a RevisionStore backed by db.
func NewRevisionStore(db *gorm.DB) *RevisionStore {
	return &RevisionStore{db: db, blobs: NewBlobStore(db)}
}

// SnapshotLive walks the live tree rooted at space.RootGroupID in lft
// order, assigns a doc_key to any document lacking one, writes one
// revision item per document, and computes the revision's hashes.
func (s *RevisionStore) SnapshotLive(space *models.WikiSpace, message string, parentRevisionID *uuid.UUID, working, merge bool, createdBy string) (*models.WikiRevision, error) {
	var docs []models.WikiDocument
	if space.RootGroupID != nil {
		root, err := models.GetDocumentByID(s.db, *space.RootGroupID)
		if err != nil {
			return nil, err
		}
		docs, err = models.GetSubtree(s.db, space.ID, *root)
		if err != nil {
			return nil, err
		}
	}

	rev := &models.WikiRevision{
		SpaceID:          space.ID,
		ParentRevisionID: parentRevisionID,
		Message:          message,
		IsWorking:        working,
		IsMerge:          merge,
		CreatedBy:        createdBy,
	}

	return s.writeRevision(rev, docs)
}

// writeRevision assigns missing doc_keys back onto the live documents,
// persists the revision and its items, and computes hashes.
func (s *RevisionStore) writeRevision(rev *models.WikiRevision, docs []models.WikiDocument) (*models.WikiRevision, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rev).Error; err != nil {
			return err
		}

		keyByDocID := make(map[uuid.UUID]string, len(docs))
		for i := range docs {
			d := &docs[i]
			if d.DocKey == "" {
				key, err := NewDocKey()
				if err != nil {
					return err
				}
				d.DocKey = key
				if err := tx.Model(d).Update("doc_key", key).Error; err != nil {
					return err
				}
			}
			keyByDocID[d.ID] = d.DocKey
		}

		items := make([]models.WikiRevisionItem, 0, len(docs))
		for i := range docs {
			d := &docs[i]

			var blobID *uuid.UUID
			if !d.IsGroup {
				blob, err := NewBlobStoreTx(tx).Put("markdown", d.Content)
				if err != nil {
					return err
				}
				blobID = &blob.ID
			}

			var parentKey *string
			if d.ParentID != nil {
				if pk, ok := keyByDocID[*d.ParentID]; ok {
					parentKey = &pk
				}
			}

			items = append(items, models.WikiRevisionItem{
				RevisionID:    rev.ID,
				DocKey:        d.DocKey,
				Title:         d.Title,
				Slug:          d.Slug,
				IsGroup:       d.IsGroup,
				IsPublished:   d.IsPublished,
				ParentKey:     parentKey,
				OrderIndex:    d.SortOrder,
				ContentBlobID: blobID,
			})
		}

		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		rev.DocCount = len(items)
		return s.computeAndSaveHashes(tx, rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// NewBlobStoreTx returns a BlobStore bound to a transaction, for use
// inside an enclosing transaction.
func NewBlobStoreTx(tx *gorm.DB) *BlobStore {
	return &BlobStore{db: tx}
}

// Clone shallow-copies every item of baseRevision into a new revision,
// reusing blob ids, and recomputes hashes.
func (s *RevisionStore) Clone(baseRevision *models.WikiRevision, working bool, message, createdBy string) (*models.WikiRevision, error) {
	baseItems, err := models.GetRevisionItems(s.db, baseRevision.ID)
	if err != nil {
		return nil, err
	}

	rev := &models.WikiRevision{
		SpaceID:          baseRevision.SpaceID,
		ParentRevisionID: &baseRevision.ID,
		Message:          message,
		IsWorking:        working,
		CreatedBy:        createdBy,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rev).Error; err != nil {
			return err
		}

		items := make([]models.WikiRevisionItem, 0, len(baseItems))
		for _, it := range baseItems {
			items = append(items, models.WikiRevisionItem{
				RevisionID:    rev.ID,
				DocKey:        it.DocKey,
				Title:         it.Title,
				Slug:          it.Slug,
				IsGroup:       it.IsGroup,
				IsPublished:   it.IsPublished,
				ParentKey:     it.ParentKey,
				OrderIndex:    it.OrderIndex,
				ContentBlobID: it.ContentBlobID,
				IsDeleted:     it.IsDeleted,
			})
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		rev.DocCount = len(items)
		return s.computeAndSaveHashes(tx, rev)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// Items returns a denormalized map of doc_key to Item for a revision,
// including each item's content hash resolved via the blob store.
// Deleted items are included with IsDeleted=true; callers filter as
// needed.
func (s *RevisionStore) Items(revisionID uuid.UUID) (ItemMap, error) {
	rows, err := models.GetRevisionItems(s.db, revisionID)
	if err != nil {
		return nil, err
	}

	var blobIDs []uuid.UUID
	for _, r := range rows {
		if r.ContentBlobID != nil {
			blobIDs = append(blobIDs, *r.ContentBlobID)
		}
	}
	blobs, err := models.GetBlobsByIDs(s.db, blobIDs)
	if err != nil {
		return nil, err
	}

	out := make(ItemMap, len(rows))
	for i := range rows {
		r := &rows[i]
		contentHash := ""
		if r.ContentBlobID != nil {
			if b, ok := blobs[*r.ContentBlobID]; ok {
				contentHash = b.Hash
			}
		}
		out[r.DocKey] = &Item{
			DocKey:        r.DocKey,
			Title:         r.Title,
			Slug:          r.Slug,
			IsGroup:       r.IsGroup,
			IsPublished:   r.IsPublished,
			ParentKey:     r.ParentKey,
			OrderIndex:    r.OrderIndex,
			ContentBlobID: r.ContentBlobID,
			ContentHash:   contentHash,
			IsDeleted:     r.IsDeleted,
		}
	}
	return out, nil
}

// TreeOrder returns doc_keys in pre-order traversal via parent_key
// linkage, ordered at each level by order_index ascending. Deleted
// items are excluded.
func TreeOrder(items ItemMap) []string {
	children := make(map[string][]*Item)
	var roots []*Item
	for _, it := range items {
		if it.IsDeleted {
			continue
		}
		if it.ParentKey == nil {
			roots = append(roots, it)
		} else {
			children[*it.ParentKey] = append(children[*it.ParentKey], it)
		}
	}

	sortByOrder := func(list []*Item) {
		sort.Slice(list, func(i, j int) bool {
			if list[i].OrderIndex != list[j].OrderIndex {
				return list[i].OrderIndex < list[j].OrderIndex
			}
			return list[i].DocKey < list[j].DocKey
		})
	}
	sortByOrder(roots)
	for k := range children {
		sortByOrder(children[k])
	}

	var out []string
	var walk func(list []*Item)
	walk = func(list []*Item) {
		for _, it := range list {
			out = append(out, it.DocKey)
			walk(children[it.DocKey])
		}
	}
	walk(roots)
	return out
}

// computeAndSaveHashes computes tree_hash and content_hash for rev from
// its items (already persisted in tx) and saves them.
func (s *RevisionStore) computeAndSaveHashes(tx *gorm.DB, rev *models.WikiRevision) error {
	rows, err := models.GetRevisionItems(tx, rev.ID)
	if err != nil {
		return err
	}

	var blobIDs []uuid.UUID
	for _, r := range rows {
		if r.ContentBlobID != nil {
			blobIDs = append(blobIDs, *r.ContentBlobID)
		}
	}
	blobs, err := models.GetBlobsByIDs(tx, blobIDs)
	if err != nil {
		return err
	}

	filtered := make([]models.WikiRevisionItem, 0, len(rows))
	for _, r := range rows {
		if !r.IsDeleted {
			filtered = append(filtered, r)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].DocKey < filtered[j].DocKey })

	treeHash, contentHash := computeHashes(filtered, blobs)

	rev.TreeHash = treeHash
	rev.ContentHash = contentHash
	return tx.Model(rev).Updates(map[string]interface{}{
		"tree_hash":    treeHash,
		"content_hash": contentHash,
		"doc_count":    rev.DocCount,
	}).Error
}

func computeHashes(items []models.WikiRevisionItem, blobs map[uuid.UUID]models.ContentBlob) (treeHash, contentHash string) {
	var treeLines, contentLines []string
	for _, it := range items {
		parentKey := ""
		if it.ParentKey != nil {
			parentKey = *it.ParentKey
		}
		treeLines = append(treeLines, it.DocKey+"|"+parentKey+"|"+strconv.Itoa(it.OrderIndex)+"|"+it.Slug)

		blobHash := ""
		if it.ContentBlobID != nil {
			if b, ok := blobs[*it.ContentBlobID]; ok {
				blobHash = b.Hash
			}
		}
		contentLines = append(contentLines, it.DocKey+":"+blobHash)
	}
	return sha256Hex(strings.Join(treeLines, "\n")), sha256Hex(strings.Join(contentLines, "\n"))
}

// GetRevision returns a revision by id.
func (s *RevisionStore) GetRevision(id uuid.UUID) (*models.WikiRevision, error) {
	rev, err := models.GetRevisionByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("revision %s not found", id)
		}
		return nil, err
	}
	return rev, nil
}
