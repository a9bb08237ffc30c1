package wikitree

import "github.com/google/uuid"

// Item is the denormalized, in-memory view of a single document's state
// within a revision: the shape every component (diff, merge, CR editor)
// actually operates on, as opposed to the storage-row WikiRevisionItem.
type Item struct {
	DocKey        string
	Title         string
	Slug          string
	IsGroup       bool
	IsPublished   bool
	ParentKey     *string
	OrderIndex    int
	ContentBlobID *uuid.UUID
	ContentHash   string
	IsDeleted     bool
}

// parentKeyOr returns the parent key as a comparable string, or empty
// for a root item.
func (i *Item) parentKeyOr(empty string) string {
	if i == nil || i.ParentKey == nil {
		return empty
	}
	return *i.ParentKey
}

// ItemMap is a revision's items keyed by doc_key, with deleted items
// already excluded or present depending on context; callers document
// which.
type ItemMap map[string]*Item

// TreeNode is one node of a nested-tree read view returned by GetTree
// and DiffEngine.Tree.
type TreeNode struct {
	DocKey      string      `json:"docKey"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	IsGroup     bool        `json:"isGroup"`
	IsPublished bool        `json:"isPublished"`
	Route       string      `json:"route,omitempty"`
	Children    []*TreeNode `json:"children,omitempty"`
}
