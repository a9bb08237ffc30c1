package wikitree

import (
	"github.com/wikiforge/wikitree/pkg/models"
)

// ChangeType classifies one doc_key's difference between a CR's base
// and head revisions.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeDeleted  ChangeType = "deleted"
	ChangeModified ChangeType = "modified"
)

// DiffEntry is one row of a summary diff.
type DiffEntry struct {
	DocKey     string     `json:"docKey"`
	ChangeType ChangeType `json:"changeType"`
	Title      string     `json:"title"`
	IsGroup    bool       `json:"isGroup"`
}

// PageDiff is the full two-sided view returned by a page-scope diff.
type PageDiff struct {
	DocKey string `json:"docKey"`
	Base   *PageSide `json:"base,omitempty"`
	Head   *PageSide `json:"head,omitempty"`
}

// PageSide is one side of a page-scope diff, including blob content.
type PageSide struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	IsGroup bool   `json:"isGroup"`
	Content string `json:"content"`
}

// DiffEngine computes diffs between a change request's base and head
// revisions.
type DiffEngine struct {
	revisions *RevisionStore
	blobs     *BlobStore
}

// NewDiffEngine returns a DiffEngine backed by db.
func NewDiffEngine(revisions *RevisionStore, blobs *BlobStore) *DiffEngine {
	return &DiffEngine{revisions: revisions, blobs: blobs}
}

// Summary compares normalized items of base and head, returning one
// DiffEntry per doc_key whose presence or field set differs. Deleted
// items are treated as absent on their side. A key present only on
// one side is added/deleted; otherwise any difference in
// {title, slug, is_group, is_published, parent_key, order_index,
// content_hash} is modified.
func (e *DiffEngine) Summary(cr *models.WikiChangeRequest) ([]DiffEntry, error) {
	base, err := e.revisions.Items(cr.BaseRevisionID)
	if err != nil {
		return nil, err
	}
	head, err := e.revisions.Items(cr.HeadRevisionID)
	if err != nil {
		return nil, err
	}

	baseLive := liveOnly(base)
	headLive := liveOnly(head)

	keys := make(map[string]bool)
	for k := range baseLive {
		keys[k] = true
	}
	for k := range headLive {
		keys[k] = true
	}

	var entries []DiffEntry
	for key := range keys {
		b, inBase := baseLive[key]
		h, inHead := headLive[key]
		switch {
		case inBase && !inHead:
			entries = append(entries, DiffEntry{DocKey: key, ChangeType: ChangeDeleted, Title: b.Title, IsGroup: b.IsGroup})
		case !inBase && inHead:
			entries = append(entries, DiffEntry{DocKey: key, ChangeType: ChangeAdded, Title: h.Title, IsGroup: h.IsGroup})
		case inBase && inHead:
			if itemsDiffer(b, h) {
				entries = append(entries, DiffEntry{DocKey: key, ChangeType: ChangeModified, Title: h.Title, IsGroup: h.IsGroup})
			}
		}
	}
	return entries, nil
}

// Page returns both sides of a single doc_key's diff, including blob
// content.
func (e *DiffEngine) Page(cr *models.WikiChangeRequest, docKey string) (*PageDiff, error) {
	base, err := e.revisions.Items(cr.BaseRevisionID)
	if err != nil {
		return nil, err
	}
	head, err := e.revisions.Items(cr.HeadRevisionID)
	if err != nil {
		return nil, err
	}

	out := &PageDiff{DocKey: docKey}
	if b, ok := liveOnly(base)[docKey]; ok {
		side, err := e.toSide(b)
		if err != nil {
			return nil, err
		}
		out.Base = side
	}
	if h, ok := liveOnly(head)[docKey]; ok {
		side, err := e.toSide(h)
		if err != nil {
			return nil, err
		}
		out.Head = side
	}
	if out.Base == nil && out.Head == nil {
		return nil, NotFound("doc_key %s not found in change request %s", docKey, cr.ID)
	}
	return out, nil
}

func (e *DiffEngine) toSide(it *Item) (*PageSide, error) {
	content := ""
	if it.ContentBlobID != nil {
		c, err := e.blobs.Get(*it.ContentBlobID)
		if err != nil {
			return nil, err
		}
		content = c
	}
	return &PageSide{Title: it.Title, Slug: it.Slug, IsGroup: it.IsGroup, Content: content}, nil
}

// Tree returns a nested read view of cr's working head revision, with
// deleted items (and, transitively, their descendants) omitted, each
// sibling list ordered by order_index via TreeOrder's linkage.
func (e *DiffEngine) Tree(cr *models.WikiChangeRequest) (*TreeNode, error) {
	items, err := e.revisions.Items(cr.HeadRevisionID)
	if err != nil {
		return nil, err
	}
	live := liveOnly(items)

	children := make(map[string][]string)
	var rootKey string
	for _, key := range TreeOrder(live) {
		it := live[key]
		if it.ParentKey == nil {
			rootKey = key
			continue
		}
		children[*it.ParentKey] = append(children[*it.ParentKey], key)
	}
	if rootKey == "" {
		return nil, NotFound("change request %s has no root document", cr.ID)
	}

	var build func(key string) *TreeNode
	build = func(key string) *TreeNode {
		it := live[key]
		node := &TreeNode{
			DocKey:      it.DocKey,
			Title:       it.Title,
			Slug:        it.Slug,
			IsGroup:     it.IsGroup,
			IsPublished: it.IsPublished,
		}
		for _, childKey := range children[key] {
			node.Children = append(node.Children, build(childKey))
		}
		return node
	}
	return build(rootKey), nil
}

// CRPage returns a single-sided read view of one doc_key in cr's working
// head revision, including blob content. Unlike PageDiff (two-sided,
// base vs head), this reflects only the CR's current state.
func (e *DiffEngine) CRPage(cr *models.WikiChangeRequest, docKey string) (*PageSide, error) {
	items, err := e.revisions.Items(cr.HeadRevisionID)
	if err != nil {
		return nil, err
	}
	it, ok := liveOnly(items)[docKey]
	if !ok {
		return nil, NotFound("doc_key %s not found in change request %s", docKey, cr.ID)
	}
	return e.toSide(it)
}

// liveOnly filters out deleted items, treating them as absent.
func liveOnly(items ItemMap) ItemMap {
	out := make(ItemMap, len(items))
	for k, v := range items {
		if !v.IsDeleted {
			out[k] = v
		}
	}
	return out
}

func itemsDiffer(a, b *Item) bool {
	if a.Title != b.Title || a.Slug != b.Slug || a.IsGroup != b.IsGroup || a.IsPublished != b.IsPublished {
		return true
	}
	if a.parentKeyOr("") != b.parentKeyOr("") {
		return true
	}
	if a.OrderIndex != b.OrderIndex {
		return true
	}
	if a.ContentHash != b.ContentHash {
		return true
	}
	return false
}
