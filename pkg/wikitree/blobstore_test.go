package wikitree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStorePutDedups(t *testing.T) {
	db := newTestDB(t)
	store := NewBlobStore(db)

	a, err := store.Put("markdown", "hello world")
	require.NoError(t, err)
	b, err := store.Put("markdown", "hello world")
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, sha256Hex("hello world"), a.Hash)
}

func TestBlobStorePutDistinctContentDistinctBlob(t *testing.T) {
	db := newTestDB(t)
	store := NewBlobStore(db)

	a, err := store.Put("markdown", "one")
	require.NoError(t, err)
	b, err := store.Put("markdown", "two")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestBlobStoreGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	store := NewBlobStore(db)

	blob, err := store.Put("markdown", "round trip content")
	require.NoError(t, err)

	content, err := store.Get(blob.ID)
	require.NoError(t, err)
	assert.Equal(t, "round trip content", content)
}

func TestBlobStoreEmptyContentIsLegal(t *testing.T) {
	db := newTestDB(t)
	store := NewBlobStore(db)

	blob, err := store.Put("markdown", "")
	require.NoError(t, err)
	assert.Equal(t, sha256Hex(""), blob.Hash)
}

func TestBlobStoreGetMissingIsNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewBlobStore(db)

	_, err := store.Get(uuid.New())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}
