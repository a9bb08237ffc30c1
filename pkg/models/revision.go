package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WikiRevision is an immutable snapshot of a space's tree and content. A
// non-working revision is never mutated after its hashes are computed;
// only working revisions (owned by exactly one change request) are
// mutable, through their items.
type WikiRevision struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SpaceID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"spaceId"`
	ParentRevisionID *uuid.UUID `gorm:"type:uuid;index" json:"parentRevisionId,omitempty"`
	ChangeRequestID  *uuid.UUID `gorm:"type:uuid;index" json:"changeRequestId,omitempty"`

	Message   string `gorm:"type:text" json:"message"`
	IsWorking bool   `gorm:"not null;default:false;index" json:"isWorking"`
	IsMerge   bool   `gorm:"not null;default:false" json:"isMerge"`

	TreeHash    string `gorm:"type:varchar(64)" json:"treeHash"`
	ContentHash string `gorm:"type:varchar(64)" json:"contentHash"`
	DocCount    int    `gorm:"not null;default:0" json:"docCount"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"createdBy"`
}

// TableName returns the table name for GORM.
func (WikiRevision) TableName() string {
	return "wiki_revisions"
}

// BeforeCreate assigns a primary key if one hasn't been set.
func (r *WikiRevision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// GetRevisionByID returns the revision with the given ID, or
// gorm.ErrRecordNotFound.
func GetRevisionByID(db *gorm.DB, id uuid.UUID) (*WikiRevision, error) {
	var rev WikiRevision
	if err := db.Where("id = ?", id).First(&rev).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

// WikiRevisionItem is a single document's snapshot within a revision.
type WikiRevisionItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	RevisionID uuid.UUID `gorm:"type:uuid;not null;index:idx_rev_item_rev_key,unique" json:"revisionId"`
	DocKey     string    `gorm:"type:varchar(12);not null;index:idx_rev_item_rev_key,unique" json:"docKey"`

	Title       string `gorm:"type:varchar(500)" json:"title"`
	Slug        string `gorm:"type:varchar(255)" json:"slug"`
	IsGroup     bool   `gorm:"not null;default:false" json:"isGroup"`
	IsPublished bool   `gorm:"not null;default:true" json:"isPublished"`

	ParentKey  *string `gorm:"type:varchar(12);index" json:"parentKey,omitempty"`
	OrderIndex int     `gorm:"not null;default:0" json:"orderIndex"`

	ContentBlobID *uuid.UUID `gorm:"type:uuid" json:"contentBlobId,omitempty"`
	IsDeleted     bool       `gorm:"not null;default:false" json:"isDeleted"`
}

// TableName returns the table name for GORM.
func (WikiRevisionItem) TableName() string {
	return "wiki_revision_items"
}

// BeforeCreate assigns a primary key if one hasn't been set.
func (i *WikiRevisionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// GetRevisionItems returns every item of a revision, in no particular
// order.
func GetRevisionItems(db *gorm.DB, revisionID uuid.UUID) ([]WikiRevisionItem, error) {
	var items []WikiRevisionItem
	err := db.Where("revision_id = ?", revisionID).Find(&items).Error
	return items, err
}

// GetRevisionItem returns a single item of a revision by doc_key, or
// gorm.ErrRecordNotFound.
func GetRevisionItem(db *gorm.DB, revisionID uuid.UUID, docKey string) (*WikiRevisionItem, error) {
	var item WikiRevisionItem
	err := db.Where("revision_id = ? AND doc_key = ?", revisionID, docKey).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
