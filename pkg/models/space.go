package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WikiSpace is a named container with its own document tree and main
// revision.
type WikiSpace struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DisplayName string `gorm:"type:varchar(255);not null" json:"displayName"`
	Route       string `gorm:"type:varchar(255);uniqueIndex;not null" json:"route"`

	RootGroupID    *uuid.UUID `gorm:"type:uuid;index" json:"rootGroupId,omitempty"`
	MainRevisionID *uuid.UUID `gorm:"type:uuid;index" json:"mainRevisionId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM.
func (WikiSpace) TableName() string {
	return "wiki_spaces"
}

// BeforeCreate assigns a primary key if one hasn't been set.
func (s *WikiSpace) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Validate checks that the space has the fields required before it can
// be created.
func (s *WikiSpace) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DisplayName, validation.Required),
		validation.Field(&s.Route, validation.Required),
	)
}

// GetSpaceByID returns the space with the given ID, or gorm.ErrRecordNotFound.
func GetSpaceByID(db *gorm.DB, id uuid.UUID) (*WikiSpace, error) {
	var space WikiSpace
	if err := db.Where("id = ?", id).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// GetSpaceByRoute returns the space with the given route, or
// gorm.ErrRecordNotFound.
func GetSpaceByRoute(db *gorm.DB, route string) (*WikiSpace, error) {
	var space WikiSpace
	if err := db.Where("route = ?", route).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// SetMainRevision updates the space's main_revision_id.
func (s *WikiSpace) SetMainRevision(db *gorm.DB, revisionID uuid.UUID) error {
	if err := db.Model(s).Update("main_revision_id", revisionID).Error; err != nil {
		return err
	}
	s.MainRevisionID = &revisionID
	return nil
}
