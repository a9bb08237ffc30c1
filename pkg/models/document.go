package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WikiDocument is a node in the live tree: either a group (has children) or
// a page (has content). doc_key correlates a document across revisions and
// is assigned once, never changed.
type WikiDocument struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SpaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"spaceId"`
	DocKey  string    `gorm:"type:varchar(12);uniqueIndex;not null" json:"docKey"`

	Title       string `gorm:"type:varchar(500);not null" json:"title"`
	Slug        string `gorm:"type:varchar(255);not null" json:"slug"`
	IsGroup     bool   `gorm:"not null;default:false" json:"isGroup"`
	IsPublished bool   `gorm:"not null;default:true" json:"isPublished"`

	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parentId,omitempty"`
	SortOrder int        `gorm:"not null;default:0" json:"sortOrder"`

	// Route is the permalink. It is preserved across reorder/reparent and is
	// only rewritten by an explicit rename or a space-wide update_routes.
	Route string `gorm:"type:varchar(500);not null;index" json:"route"`

	// Content is meaningful only when IsGroup is false.
	Content string `gorm:"type:text" json:"content"`

	Lft int `gorm:"not null;default:0;index" json:"lft"`
	Rgt int `gorm:"not null;default:0;index" json:"rgt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM.
func (WikiDocument) TableName() string {
	return "wiki_documents"
}

// BeforeCreate assigns a primary key if one hasn't been set.
func (d *WikiDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// GetDocumentByID returns the document with the given ID, or
// gorm.ErrRecordNotFound.
func GetDocumentByID(db *gorm.DB, id uuid.UUID) (*WikiDocument, error) {
	var doc WikiDocument
	if err := db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentByKey returns the document with the given doc_key, or
// gorm.ErrRecordNotFound.
func GetDocumentByKey(db *gorm.DB, spaceID uuid.UUID, docKey string) (*WikiDocument, error) {
	var doc WikiDocument
	if err := db.Where("space_id = ? AND doc_key = ?", spaceID, docKey).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentsByKeys returns a map of doc_key to document for the given
// keys, scoped to a space.
func GetDocumentsByKeys(db *gorm.DB, spaceID uuid.UUID, docKeys []string) (map[string]WikiDocument, error) {
	result := make(map[string]WikiDocument, len(docKeys))
	if len(docKeys) == 0 {
		return result, nil
	}

	var docs []WikiDocument
	if err := db.Where("space_id = ? AND doc_key IN ?", spaceID, docKeys).Find(&docs).Error; err != nil {
		return nil, err
	}
	for _, d := range docs {
		result[d.DocKey] = d
	}
	return result, nil
}

// GetSubtree returns every document whose nested-set indices fall within
// [root.Lft, root.Rgt], ordered by Lft ascending (a pre-order walk).
func GetSubtree(db *gorm.DB, spaceID uuid.UUID, root WikiDocument) ([]WikiDocument, error) {
	var docs []WikiDocument
	err := db.Where("space_id = ? AND lft >= ? AND rgt <= ?", spaceID, root.Lft, root.Rgt).
		Order("lft asc").
		Find(&docs).Error
	return docs, err
}

// GetChildren returns the direct children of parentID ordered by
// (sort_order, id), the display-order tie-break spec.md requires.
func GetChildren(db *gorm.DB, spaceID uuid.UUID, parentID *uuid.UUID) ([]WikiDocument, error) {
	var docs []WikiDocument
	q := db.Where("space_id = ?", spaceID)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	err := q.Order("sort_order asc, id asc").Find(&docs).Error
	return docs, err
}

// GetAllDocuments returns every document in a space, in no particular
// order; callers that need tree order should use GetSubtree.
func GetAllDocuments(db *gorm.DB, spaceID uuid.UUID) ([]WikiDocument, error) {
	var docs []WikiDocument
	err := db.Where("space_id = ?", spaceID).Find(&docs).Error
	return docs, err
}
