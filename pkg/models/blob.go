package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentBlob is an immutable, content-addressed text body. Blobs are
// deduplicated by the SHA-256 hash of their UTF-8 bytes and are never
// updated once inserted.
type ContentBlob struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Hash        string `gorm:"type:varchar(64);uniqueIndex;not null" json:"hash"`
	Content     string `gorm:"type:text;not null" json:"content"`
	ContentType string `gorm:"type:varchar(50);not null;default:markdown" json:"contentType"`
	Size        int    `gorm:"not null" json:"size"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM.
func (ContentBlob) TableName() string {
	return "wiki_content_blobs"
}

// BeforeCreate assigns a primary key if one hasn't been set.
func (b *ContentBlob) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.ContentType == "" {
		b.ContentType = "markdown"
	}
	return nil
}

// GetBlobByHash returns the blob with the given hash, or gorm.ErrRecordNotFound.
func GetBlobByHash(db *gorm.DB, hash string) (*ContentBlob, error) {
	var blob ContentBlob
	if err := db.Where("hash = ?", hash).First(&blob).Error; err != nil {
		return nil, err
	}
	return &blob, nil
}

// GetBlobByID returns the blob with the given ID, or gorm.ErrRecordNotFound.
func GetBlobByID(db *gorm.DB, id uuid.UUID) (*ContentBlob, error) {
	var blob ContentBlob
	if err := db.Where("id = ?", id).First(&blob).Error; err != nil {
		return nil, err
	}
	return &blob, nil
}

// GetBlobsByIDs returns a map of blob ID to blob for the given IDs.
func GetBlobsByIDs(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]ContentBlob, error) {
	result := make(map[uuid.UUID]ContentBlob, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var blobs []ContentBlob
	if err := db.Where("id IN ?", ids).Find(&blobs).Error; err != nil {
		return nil, err
	}
	for _, b := range blobs {
		result[b.ID] = b
	}
	return result, nil
}
