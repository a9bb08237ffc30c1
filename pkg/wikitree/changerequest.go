package wikitree

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// ChangeRequestService implements the change-request branch model: base
// revision, mutable working head, reviewers, and status transitions.
type ChangeRequestService struct {
	db        *gorm.DB
	revisions *RevisionStore
}

// NewChangeRequestService returns a ChangeRequestService backed by db.
func NewChangeRequestService(db *gorm.DB) *ChangeRequestService {
	return &ChangeRequestService{db: db, revisions: NewRevisionStore(db)}
}

// Create opens a new change request. If space has no main revision yet,
// the live tree is snapshotted as the initial main revision first.
func (s *ChangeRequestService) Create(opCtx OpContext, space *models.WikiSpace, title, description string) (*models.WikiChangeRequest, error) {
	if err := validation.Validate(title, validation.Required); err != nil {
		return nil, Validation("title is required")
	}

	if space.MainRevisionID == nil {
		rev, err := s.revisions.SnapshotLive(space, "Initial snapshot", nil, false, false, opCtx.Principal)
		if err != nil {
			return nil, err
		}
		if err := space.SetMainRevision(s.db, rev.ID); err != nil {
			return nil, err
		}
	}

	base, err := s.revisions.GetRevision(*space.MainRevisionID)
	if err != nil {
		return nil, err
	}

	head, err := s.revisions.Clone(base, true, "Working copy for "+title, opCtx.Principal)
	if err != nil {
		return nil, err
	}

	cr := &models.WikiChangeRequest{
		SpaceID:        space.ID,
		Title:          title,
		Description:    description,
		Status:         models.CRStatusDraft,
		BaseRevisionID: base.ID,
		HeadRevisionID: head.ID,
		Owner:          opCtx.Principal,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cr).Error; err != nil {
			return err
		}
		return tx.Model(head).Update("change_request_id", cr.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return cr, nil
}

// GetOrCreateDraft returns the caller's most recent Draft/Changes
// Requested CR for the space. If its base has diverged from main but
// its head is structurally identical to the new main (rebase elision),
// it is archived and a fresh CR is opened in its place; otherwise it is
// flagged outdated. See the rebase-elision policy decision recorded
// alongside this package's design notes.
func (s *ChangeRequestService) GetOrCreateDraft(opCtx OpContext, space *models.WikiSpace, title string) (*models.WikiChangeRequest, error) {
	existing, err := models.GetLatestDraftByOwner(s.db, space.ID, opCtx.Principal)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if title == "" {
			title = "Untitled change request"
		}
		return s.Create(opCtx, space, title, "")
	}

	if space.MainRevisionID == nil || existing.BaseRevisionID == *space.MainRevisionID {
		return existing, nil
	}

	main, err := s.revisions.GetRevision(*space.MainRevisionID)
	if err != nil {
		return nil, err
	}
	head, err := s.revisions.GetRevision(existing.HeadRevisionID)
	if err != nil {
		return nil, err
	}

	if head.TreeHash == main.TreeHash && head.ContentHash == main.ContentHash {
		if err := s.Archive(existing.ID); err != nil {
			return nil, err
		}
		return s.Create(opCtx, space, existing.Title, existing.Description)
	}

	if err := s.db.Model(existing).Update("outdated", true).Error; err != nil {
		return nil, err
	}
	existing.Outdated = true
	return existing, nil
}

// List returns a space's change requests, optionally filtered by status.
func (s *ChangeRequestService) List(space *models.WikiSpace, status string) ([]models.WikiChangeRequest, error) {
	return models.ListChangeRequests(s.db, space.ID, status)
}

// Get returns a change request by id.
func (s *ChangeRequestService) Get(id uuid.UUID) (*models.WikiChangeRequest, error) {
	cr, err := models.GetChangeRequestByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("change request %s not found", id)
		}
		return nil, err
	}
	return cr, nil
}

// Update partially updates a CR's title/description.
func (s *ChangeRequestService) Update(id uuid.UUID, title, description *string) (*models.WikiChangeRequest, error) {
	cr, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title != nil {
		if err := validation.Validate(*title, validation.Required); err != nil {
			return nil, Validation("title cannot be empty")
		}
		updates["title"] = *title
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return cr, nil
	}
	if err := s.db.Model(cr).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Archive sets a CR's status to Archived and stamps archived_at.
func (s *ChangeRequestService) Archive(id uuid.UUID) error {
	cr, err := s.Get(id)
	if err != nil {
		return err
	}
	now := time.Now()
	return s.db.Model(cr).Updates(map[string]interface{}{
		"status":      models.CRStatusArchived,
		"archived_at": now,
	}).Error
}

// RequestReview deduplicates reviewers, replaces the CR's reviewer rows
// with {reviewer, status=Requested}, and sets the CR status to In Review.
func (s *ChangeRequestService) RequestReview(id uuid.UUID, reviewers []string) error {
	cr, err := s.Get(id)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(reviewers))
	var dedup []string
	for _, r := range reviewers {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		dedup = append(dedup, r)
	}
	if len(dedup) == 0 {
		return Validation("at least one reviewer is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("change_request_id = ?", id).Delete(&models.WikiReviewer{}).Error; err != nil {
			return err
		}
		rows := make([]models.WikiReviewer, 0, len(dedup))
		for _, r := range dedup {
			rows = append(rows, models.WikiReviewer{
				ChangeRequestID: id,
				Reviewer:        r,
				Status:          models.ReviewStatusRequested,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		return tx.Model(cr).Update("status", models.CRStatusInReview).Error
	})
}

// ReviewAction records a reviewer's decision and recomputes CR status.
// The caller must be the named reviewer or hold merge/approve capability.
func (s *ChangeRequestService) ReviewAction(opCtx OpContext, id uuid.UUID, reviewer, action, comment string) error {
	if action != models.ReviewStatusApproved && action != models.ReviewStatusChangesRequested {
		return Validation("action must be %q or %q", models.ReviewStatusApproved, models.ReviewStatusChangesRequested)
	}

	cr, err := s.Get(id)
	if err != nil {
		return err
	}

	if opCtx.Principal != reviewer && !opCtx.CanMergeOrApprove() {
		return Permission("%s is not a reviewer on change request %s", opCtx.Principal, id)
	}

	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		var row models.WikiReviewer
		err := tx.Where("change_request_id = ? AND reviewer = ?", id, reviewer).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.WikiReviewer{ChangeRequestID: id, Reviewer: reviewer}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Model(&row).Updates(map[string]interface{}{
			"status":      action,
			"reviewed_at": now,
			"comment":     comment,
		}).Error; err != nil {
			return err
		}

		var reviewers []models.WikiReviewer
		if err := tx.Where("change_request_id = ?", id).Find(&reviewers).Error; err != nil {
			return err
		}

		return tx.Model(cr).Update("status", computeReviewStatus(reviewers)).Error
	})
}

// computeReviewStatus implements the review-status function: Changes
// Requested if any reviewer requested changes, else Approved if
// reviewers are non-empty and all approved, else In Review.
func computeReviewStatus(reviewers []models.WikiReviewer) string {
	if len(reviewers) == 0 {
		return models.CRStatusInReview
	}
	allApproved := true
	for _, r := range reviewers {
		if r.Status == models.ReviewStatusChangesRequested {
			return models.CRStatusChangesRequested
		}
		if r.Status != models.ReviewStatusApproved {
			allApproved = false
		}
	}
	if allApproved {
		return models.CRStatusApproved
	}
	return models.CRStatusInReview
}

// CheckOutdated sets outdated=1 iff the space's main revision has
// advanced since the CR's base revision.
func (s *ChangeRequestService) CheckOutdated(space *models.WikiSpace, id uuid.UUID) (bool, error) {
	cr, err := s.Get(id)
	if err != nil {
		return false, err
	}

	outdated := space.MainRevisionID == nil || *space.MainRevisionID != cr.BaseRevisionID
	if outdated != cr.Outdated {
		if err := s.db.Model(cr).Update("outdated", outdated).Error; err != nil {
			return false, err
		}
	}
	return outdated, nil
}

// CRSummary pairs a change request with its change_count, the number of
// diff entries the Diff Engine's summary scope would report.
type CRSummary struct {
	models.WikiChangeRequest
	ChangeCount int `json:"changeCount"`
}

// ListMyChangeRequests returns every CR owned by the principal across
// all spaces, each annotated with change_count. Supplements the base
// operation surface with the "my change requests" dashboard view.
func (s *ChangeRequestService) ListMyChangeRequests(principal string) ([]CRSummary, error) {
	crs, err := models.ListChangeRequestsByOwner(s.db, principal)
	if err != nil {
		return nil, err
	}
	return s.annotateChangeCounts(crs)
}

// ListPendingReviews returns CRs across all spaces currently awaiting
// review (In Review or Approved), oldest-updated first, each annotated
// with change_count. Requires Wiki Manager, Wiki Approver, or System
// Manager, mirroring the triage-view access the source restricts to
// wiki managers.
func (s *ChangeRequestService) ListPendingReviews(opCtx OpContext) ([]CRSummary, error) {
	if !opCtx.CanMergeOrApprove() {
		return nil, Permission("%s may not view the pending-reviews queue", opCtx.Principal)
	}
	crs, err := models.ListPendingReviewCRs(s.db)
	if err != nil {
		return nil, err
	}
	return s.annotateChangeCounts(crs)
}

func (s *ChangeRequestService) annotateChangeCounts(crs []models.WikiChangeRequest) ([]CRSummary, error) {
	diff := NewDiffEngine(s.revisions, NewBlobStore(s.db))
	out := make([]CRSummary, 0, len(crs))
	for _, cr := range crs {
		entries, err := diff.Summary(&cr)
		if err != nil {
			return nil, err
		}
		out = append(out, CRSummary{WikiChangeRequest: cr, ChangeCount: len(entries)})
	}
	return out, nil
}
