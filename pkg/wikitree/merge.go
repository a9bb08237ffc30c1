package wikitree

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// MergeConflict is the in-memory record of one doc_key's conflict,
// surfaced to callers via Error.Conflicts and persisted as a
// models.WikiMergeConflict row.
type MergeConflict struct {
	DocKey       string
	ConflictType string
	Base         *Item
	Ours         *Item
	Theirs       *Item
}

// ThreeWayMerger computes the merged item set for a change request
// against the space's current main revision.
type ThreeWayMerger struct {
	db        *gorm.DB
	revisions *RevisionStore
	blobs     *BlobStore
}

// NewThreeWayMerger returns a ThreeWayMerger backed by db.
func NewThreeWayMerger(db *gorm.DB) *ThreeWayMerger {
	return &ThreeWayMerger{db: db, revisions: NewRevisionStore(db), blobs: NewBlobStore(db)}
}

// MergeResult is the merged item set produced by a successful three-way
// merge, ready for the merge applier to materialize.
type MergeResult struct {
	Items ItemMap
}

// Merge computes base/ours/theirs per doc_key and applies the decision
// matrix, returning the merged item map on success or a validation
// *Error carrying every recorded conflict on failure. ours is the
// space's current main revision; theirs is the CR's head revision.
func (m *ThreeWayMerger) Merge(baseID, oursID, theirsID uuid.UUID) (*MergeResult, error) {
	base, err := m.revisions.Items(baseID)
	if err != nil {
		return nil, err
	}
	ours, err := m.revisions.Items(oursID)
	if err != nil {
		return nil, err
	}
	theirs, err := m.revisions.Items(theirsID)
	if err != nil {
		return nil, err
	}

	base = liveOnly(base)
	ours = liveOnly(ours)
	theirs = liveOnly(theirs)

	keys := make(map[string]bool)
	for k := range base {
		keys[k] = true
	}
	for k := range ours {
		keys[k] = true
	}
	for k := range theirs {
		keys[k] = true
	}

	merged := make(ItemMap, len(keys))
	var conflicts []MergeConflict

	for key := range keys {
		b, o, t := base[key], ours[key], theirs[key]
		item, conflict, err := m.mergeOne(key, b, o, t)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			conflicts = append(conflicts, *conflict)
			continue
		}
		if item != nil {
			merged[key] = item
		}
	}

	if len(conflicts) > 0 {
		return nil, ConflictError(conflicts)
	}
	return &MergeResult{Items: merged}, nil
}

// mergeOne applies the decision matrix to a single doc_key. It returns
// (item, nil, nil) on a resolved outcome (item nil means the key is
// absent in the merge result), (nil, conflict, nil) on a conflict, or a
// non-nil error only for unexpected failures.
func (m *ThreeWayMerger) mergeOne(key string, b, o, t *Item) (*Item, *MergeConflict, error) {
	switch {
	case b == nil && o == nil && t == nil:
		return nil, nil, nil

	case b == nil && o == nil && t != nil:
		return t, nil, nil

	case b == nil && o != nil && t == nil:
		return o, nil, nil

	case b == nil && o != nil && t != nil:
		if itemsDiffer(o, t) {
			return nil, &MergeConflict{DocKey: key, ConflictType: models.ConflictTypeContent, Base: b, Ours: o, Theirs: t}, nil
		}
		return o, nil, nil

	case b != nil && o == nil && t == nil:
		return nil, nil, nil

	case b != nil && o == nil && t != nil:
		if !itemsDiffer(b, t) {
			return nil, nil, nil
		}
		return nil, &MergeConflict{DocKey: key, ConflictType: models.ConflictTypeContent, Base: b, Ours: o, Theirs: t}, nil

	case b != nil && o != nil && t == nil:
		if !itemsDiffer(b, o) {
			return nil, nil, nil
		}
		return nil, &MergeConflict{DocKey: key, ConflictType: models.ConflictTypeContent, Base: b, Ours: o, Theirs: t}, nil

	default:
		return m.mergeThreeSided(key, b, o, t)
	}
}

// mergeThreeSided handles the case where base, ours, and theirs all
// exist for key.
func (m *ThreeWayMerger) mergeThreeSided(key string, b, o, t *Item) (*Item, *MergeConflict, error) {
	oEqT := !itemsDiffer(o, t)
	oEqB := !itemsDiffer(b, o)
	tEqB := !itemsDiffer(b, t)

	switch {
	case oEqT:
		return o, nil, nil
	case oEqB && !tEqB:
		return t, nil, nil
	case !oEqB && tEqB:
		return o, nil, nil
	}

	if o.parentKeyOr("") != t.parentKeyOr("") || o.OrderIndex != t.OrderIndex {
		return nil, &MergeConflict{DocKey: key, ConflictType: models.ConflictTypeTree, Base: b, Ours: o, Theirs: t}, nil
	}

	metaDiffers := o.Title != t.Title || o.Slug != t.Slug || o.IsGroup != t.IsGroup || o.IsPublished != t.IsPublished
	if metaDiffers {
		titleOK := o.Title == t.Title || o.Title == b.Title || t.Title == b.Title
		slugOK := o.Slug == t.Slug || o.Slug == b.Slug || t.Slug == b.Slug
		groupOK := o.IsGroup == t.IsGroup || o.IsGroup == b.IsGroup || t.IsGroup == b.IsGroup
		pubOK := o.IsPublished == t.IsPublished || o.IsPublished == b.IsPublished || t.IsPublished == b.IsPublished
		if !(titleOK && slugOK && groupOK && pubOK) {
			return nil, &MergeConflict{DocKey: key, ConflictType: models.ConflictTypeMeta, Base: b, Ours: o, Theirs: t}, nil
		}
	}

	merged := &Item{
		DocKey:      key,
		Title:       resolveString(b.Title, o.Title, t.Title),
		Slug:        resolveString(b.Slug, o.Slug, t.Slug),
		IsGroup:     resolveBool(b.IsGroup, o.IsGroup, t.IsGroup),
		IsPublished: resolveBool(b.IsPublished, o.IsPublished, t.IsPublished),
		ParentKey:   o.ParentKey,
		OrderIndex:  o.OrderIndex,
	}

	if merged.IsGroup {
		return merged, nil, nil
	}

	baseContent, err := m.contentOf(b)
	if err != nil {
		return nil, nil, err
	}
	oursContent, err := m.contentOf(o)
	if err != nil {
		return nil, nil, err
	}
	theirsContent, err := m.contentOf(t)
	if err != nil {
		return nil, nil, err
	}

	if oursContent == theirsContent {
		merged.ContentBlobID = o.ContentBlobID
		merged.ContentHash = o.ContentHash
		return merged, nil, nil
	}
	if oursContent == baseContent {
		merged.ContentBlobID = t.ContentBlobID
		merged.ContentHash = t.ContentHash
		return merged, nil, nil
	}
	if theirsContent == baseContent {
		merged.ContentBlobID = o.ContentBlobID
		merged.ContentHash = o.ContentHash
		return merged, nil, nil
	}

	mergedLines, ok := mergeLines(normalizeText(baseContent), normalizeText(oursContent), normalizeText(theirsContent))
	if !ok {
		return nil, &MergeConflict{DocKey: key, ConflictType: models.ConflictTypeContent, Base: b, Ours: o, Theirs: t}, nil
	}

	blob, err := m.blobs.Put("markdown", joinLines(mergedLines))
	if err != nil {
		return nil, nil, err
	}
	merged.ContentBlobID = &blob.ID
	merged.ContentHash = blob.Hash
	return merged, nil, nil
}

func (m *ThreeWayMerger) contentOf(it *Item) (string, error) {
	if it == nil || it.ContentBlobID == nil {
		return "", nil
	}
	return m.blobs.Get(*it.ContentBlobID)
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

// resolveString implements resolve(b, o, t) for string fields: o if
// o==t; t if o==b; o if t==b; else o.
func resolveString(b, o, t string) string {
	switch {
	case o == t:
		return o
	case o == b:
		return t
	case t == b:
		return o
	default:
		return o
	}
}

func resolveBool(b, o, t bool) bool {
	switch {
	case o == t:
		return o
	case o == b:
		return t
	case t == b:
		return o
	default:
		return o
	}
}

// recordConflicts persists one WikiMergeConflict row per conflict,
// wiping any previously recorded conflicts for the change request first
// so a retried merge doesn't accumulate stale rows.
func recordConflicts(tx *gorm.DB, changeRequestID uuid.UUID, conflicts []MergeConflict) error {
	if err := models.DeleteConflictsForChangeRequest(tx, changeRequestID); err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	rows := make([]models.WikiMergeConflict, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, models.WikiMergeConflict{
			ChangeRequestID: changeRequestID,
			DocKey:          c.DocKey,
			ConflictType:    c.ConflictType,
			BasePayload:     itemToJSON(c.Base),
			OursPayload:     itemToJSON(c.Ours),
			TheirsPayload:   itemToJSON(c.Theirs),
		})
	}
	return tx.Create(&rows).Error
}

func itemToJSON(it *Item) models.JSON {
	if it == nil {
		return nil
	}
	data, err := json.Marshal(map[string]interface{}{
		"title":       it.Title,
		"slug":        it.Slug,
		"isGroup":     it.IsGroup,
		"isPublished": it.IsPublished,
		"parentKey":   it.parentKeyOr(""),
		"orderIndex":  it.OrderIndex,
		"contentHash": it.ContentHash,
	})
	if err != nil {
		return nil
	}
	return models.JSON(data)
}
