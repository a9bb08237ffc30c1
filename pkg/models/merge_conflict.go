package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Merge conflict categories.
const (
	ConflictTypeContent = "content"
	ConflictTypeMeta    = "meta"
	ConflictTypeTree    = "tree"
)

// Merge conflict resolution status.
const (
	ConflictStatusOpen     = "open"
	ConflictStatusResolved = "resolved"
)

// WikiMergeConflict records one unresolved (or resolved) conflict
// surfaced by a merge attempt against a change request. The three
// payload columns hold the base/ours/theirs snapshot of the document at
// the point of conflict so a reviewer can resolve it without recomputing
// the merge.
type WikiMergeConflict struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ChangeRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"changeRequestId"`
	DocKey          string    `gorm:"type:varchar(12);not null;index" json:"docKey"`
	ConflictType    string    `gorm:"type:varchar(20);not null" json:"conflictType"`

	BasePayload   JSON `gorm:"type:jsonb" json:"basePayload,omitempty"`
	OursPayload   JSON `gorm:"type:jsonb" json:"oursPayload,omitempty"`
	TheirsPayload JSON `gorm:"type:jsonb" json:"theirsPayload,omitempty"`

	Status     string     `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM.
func (WikiMergeConflict) TableName() string {
	return "wiki_merge_conflicts"
}

// BeforeCreate assigns a primary key and default status if unset.
func (c *WikiMergeConflict) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ConflictStatusOpen
	}
	return nil
}

// GetOpenConflicts returns every unresolved conflict for a change
// request, ordered by doc_key.
func GetOpenConflicts(db *gorm.DB, changeRequestID uuid.UUID) ([]WikiMergeConflict, error) {
	var conflicts []WikiMergeConflict
	err := db.Where("change_request_id = ? AND status = ?", changeRequestID, ConflictStatusOpen).
		Order("doc_key asc").
		Find(&conflicts).Error
	return conflicts, err
}

// DeleteConflictsForChangeRequest removes every conflict row belonging
// to a change request, used when a merge attempt is retried from scratch.
func DeleteConflictsForChangeRequest(db *gorm.DB, changeRequestID uuid.UUID) error {
	return db.Where("change_request_id = ?", changeRequestID).Delete(&WikiMergeConflict{}).Error
}
