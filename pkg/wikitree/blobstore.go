package wikitree

import (
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/wikiforge/wikitree/pkg/models"
	"gorm.io/gorm"
)

// BlobStore puts and gets immutable, content-addressed text blobs.
type BlobStore struct {
	db *gorm.DB
}

// NewBlobStore returns a BlobStore backed by db.
func NewBlobStore(db *gorm.DB) *BlobStore {
	return &BlobStore{db: db}
}

// Put computes the SHA-256 of content's UTF-8 bytes and returns the
// existing blob if one already carries that hash, else inserts a new
// one. Empty content is a legal, canonical blob. A unique-constraint
// race on the hash column (two callers putting the same new content
// concurrently) is resolved by retrying the lookup once through a short
// backoff.
func (s *BlobStore) Put(contentType, content string) (*models.ContentBlob, error) {
	if contentType == "" {
		contentType = "markdown"
	}
	hash := sha256Hex(content)

	if existing, err := models.GetBlobByHash(s.db, hash); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	blob := &models.ContentBlob{
		Hash:        hash,
		Content:     content,
		ContentType: contentType,
		Size:        len(content),
	}

	insertErr := s.db.Create(blob).Error
	if insertErr == nil {
		return blob, nil
	}
	if !isUniqueViolation(insertErr) {
		return nil, insertErr
	}

	var resolved *models.ContentBlob
	retry := backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 1)
	err := backoff.Retry(func() error {
		existing, err := models.GetBlobByHash(s.db, hash)
		if err != nil {
			return err
		}
		resolved = existing
		return nil
	}, retry)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Get returns the blob's content by id.
func (s *BlobStore) Get(id uuid.UUID) (string, error) {
	blob, err := models.GetBlobByID(s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NotFound("blob %s not found", id)
		}
		return "", err
	}
	return blob.Content, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
