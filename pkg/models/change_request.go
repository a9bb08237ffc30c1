package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Change request status values.
const (
	CRStatusDraft             = "Draft"
	CRStatusInReview          = "In Review"
	CRStatusChangesRequested  = "Changes Requested"
	CRStatusApproved          = "Approved"
	CRStatusMerged            = "Merged"
	CRStatusArchived          = "Archived"
)

// WikiChangeRequest is a branch: a base revision plus a mutable working
// head revision, reviewers, and a status.
type WikiChangeRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SpaceID     uuid.UUID `gorm:"type:uuid;not null;index" json:"spaceId"`
	Title       string    `gorm:"type:varchar(500);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(30);not null;default:Draft;index" json:"status"`

	BaseRevisionID  uuid.UUID `gorm:"type:uuid;not null" json:"baseRevisionId"`
	HeadRevisionID  uuid.UUID `gorm:"type:uuid;not null" json:"headRevisionId"`
	MergeRevisionID *uuid.UUID `gorm:"type:uuid" json:"mergeRevisionId,omitempty"`

	Outdated bool `gorm:"not null;default:false" json:"outdated"`

	Owner string `gorm:"type:varchar(255);not null;index" json:"owner"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	MergedAt   *time.Time `json:"mergedAt,omitempty"`
	MergedBy   string     `gorm:"type:varchar(255)" json:"mergedBy,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`

	Reviewers []WikiReviewer `gorm:"foreignKey:ChangeRequestID" json:"reviewers,omitempty"`
}

// TableName returns the table name for GORM.
func (WikiChangeRequest) TableName() string {
	return "wiki_change_requests"
}

// BeforeCreate assigns a primary key and default status if unset.
func (c *WikiChangeRequest) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CRStatusDraft
	}
	return nil
}

// IsWorkingStatus reports whether the CR's head revision is expected to
// still be mutable (status not Merged or Archived).
func (c *WikiChangeRequest) IsWorkingStatus() bool {
	return c.Status != CRStatusMerged && c.Status != CRStatusArchived
}

// GetChangeRequestByID returns the CR with the given ID, or
// gorm.ErrRecordNotFound.
func GetChangeRequestByID(db *gorm.DB, id uuid.UUID) (*WikiChangeRequest, error) {
	var cr WikiChangeRequest
	if err := db.Preload("Reviewers").Where("id = ?", id).First(&cr).Error; err != nil {
		return nil, err
	}
	return &cr, nil
}

// ListChangeRequests returns change requests for a space, optionally
// filtered by status, newest-updated first.
func ListChangeRequests(db *gorm.DB, spaceID uuid.UUID, status string) ([]WikiChangeRequest, error) {
	var crs []WikiChangeRequest
	q := db.Where("space_id = ?", spaceID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("updated_at desc").Find(&crs).Error
	return crs, err
}

// GetLatestDraftByOwner returns the caller's most recently updated
// Draft/Changes-Requested CR for a space, or gorm.ErrRecordNotFound.
func GetLatestDraftByOwner(db *gorm.DB, spaceID uuid.UUID, owner string) (*WikiChangeRequest, error) {
	var cr WikiChangeRequest
	err := db.Where(
		"space_id = ? AND owner = ? AND status IN ?",
		spaceID, owner, []string{CRStatusDraft, CRStatusChangesRequested},
	).Order("updated_at desc").First(&cr).Error
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

// ListChangeRequestsByOwner returns every CR owned by a principal across
// all spaces, newest-updated first.
func ListChangeRequestsByOwner(db *gorm.DB, owner string) ([]WikiChangeRequest, error) {
	var crs []WikiChangeRequest
	err := db.Where("owner = ?", owner).Order("updated_at desc").Find(&crs).Error
	return crs, err
}

// ListPendingReviewCRs returns CRs in In Review or Approved status across
// all spaces, oldest-updated first (the triage queue order).
func ListPendingReviewCRs(db *gorm.DB) ([]WikiChangeRequest, error) {
	var crs []WikiChangeRequest
	err := db.Where("status IN ?", []string{CRStatusInReview, CRStatusApproved}).
		Order("updated_at asc").Find(&crs).Error
	return crs, err
}

// Reviewer status values.
const (
	ReviewStatusRequested         = "Requested"
	ReviewStatusApproved          = "Approved"
	ReviewStatusChangesRequested  = "Changes Requested"
)

// WikiReviewer is a single reviewer row attached to a change request.
type WikiReviewer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ChangeRequestID uuid.UUID `gorm:"type:uuid;not null;index:idx_reviewer_cr_user,unique" json:"changeRequestId"`
	Reviewer        string    `gorm:"type:varchar(255);not null;index:idx_reviewer_cr_user,unique" json:"reviewer"`
	Status          string    `gorm:"type:varchar(30);not null;default:Requested" json:"status"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	Comment         string    `gorm:"type:text" json:"comment,omitempty"`
}

// TableName returns the table name for GORM.
func (WikiReviewer) TableName() string {
	return "wiki_change_request_reviewers"
}

// BeforeCreate assigns a primary key if one hasn't been set.
func (r *WikiReviewer) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
