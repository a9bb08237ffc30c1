package wikitree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	lines := normalizeText("a \r\nb\t\r\nc\n")
	assert.Equal(t, []string{"a", "b", "c", ""}, lines)
}

func TestMergeLinesEqualLineCountFastPath(t *testing.T) {
	base := []string{"line1", "line2", "line3"}
	ours := []string{"line1-cr", "line2", "line3"}
	theirs := []string{"line1", "line2", "line3-main"}

	merged, ok := mergeLines(base, ours, theirs)
	assert.True(t, ok)
	assert.Equal(t, []string{"line1-cr", "line2", "line3-main"}, merged)
}

func TestMergeLinesEqualLineCountConflict(t *testing.T) {
	base := []string{"v1"}
	ours := []string{"cr-change"}
	theirs := []string{"main-change"}

	_, ok := mergeLines(base, ours, theirs)
	assert.False(t, ok)
}

func TestMergeLinesDisjointEdits(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e"}
	ours := []string{"a", "B", "c", "d", "e"}
	theirs := []string{"a", "b", "c", "D", "e"}

	merged, ok := mergeLines(base, ours, theirs)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "B", "c", "D", "e"}, merged)
}

func TestMergeLinesDisjointInsertions(t *testing.T) {
	base := []string{"a", "b"}
	ours := []string{"a", "inserted-by-ours", "b"}
	theirs := []string{"a", "b", "inserted-by-theirs"}

	merged, ok := mergeLines(base, ours, theirs)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "inserted-by-ours", "b", "inserted-by-theirs"}, merged)
}

func TestMergeLinesOverlappingEditsConflict(t *testing.T) {
	base := []string{"a", "b", "c"}
	ours := []string{"a", "ours-change", "c"}
	theirs := []string{"a", "theirs-change", "c"}

	_, ok := mergeLines(base, ours, theirs)
	assert.False(t, ok)
}

func TestComputeEditsIdentical(t *testing.T) {
	lines := []string{"x", "y", "z"}
	edits := computeEdits(lines, lines)
	for _, e := range edits {
		assert.Equal(t, editKeep, e.Type)
	}
}

func TestRegionsFromEditsPureInsertTouchesAnchor(t *testing.T) {
	base := []string{"a", "b"}
	other := []string{"a", "x", "b"}
	edits := computeEdits(base, other)
	regions := regionsFromEdits(edits, other)

	touched := touchedIndices(regions)
	assert.True(t, touched[1])
}
