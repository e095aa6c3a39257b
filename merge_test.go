package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergedCellIndexRangeAtFindsEnclosingMerge(t *testing.T) {
	merges := []CellRange{{StartRow: 2, EndRow: 4, StartCol: 1, EndCol: 3}}
	idx := NewMergedCellIndex(merges, nil)

	m, ok := idx.RangeAt(2, 1)
	require.True(t, ok)
	assert.Equal(t, merges[0], m)

	m, ok = idx.RangeAt(3, 2)
	require.True(t, ok)
	assert.Equal(t, merges[0], m)

	_, ok = idx.RangeAt(5, 1)
	assert.False(t, ok)
}

func TestMergedCellIndexIgnoresSingleCellRanges(t *testing.T) {
	merges := []CellRange{{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1}}
	idx := NewMergedCellIndex(merges, nil)
	assert.Empty(t, idx.Merges())
}

func TestMergedCellIndexOutsideIndexedRowsReportsNoMerge(t *testing.T) {
	merges := []CellRange{{StartRow: 0, EndRow: 5, StartCol: 0, EndCol: 2}}
	// Only index rows [0,2): row 3 is a real merge member but unindexed.
	indexed := []CellRange{{StartRow: 0, EndRow: 2}}
	idx := NewMergedCellIndex(merges, indexed)

	_, ok := idx.RangeAt(3, 0)
	assert.False(t, ok, "rows outside the indexed subset must report no merge")

	_, ok = idx.RangeAt(1, 0)
	assert.True(t, ok)
}

func TestMergedCellIndexIsAnchorAndResolveCell(t *testing.T) {
	merges := []CellRange{{StartRow: 2, EndRow: 4, StartCol: 1, EndCol: 3}}
	idx := NewMergedCellIndex(merges, nil)

	assert.True(t, idx.IsAnchor(2, 1))
	assert.False(t, idx.IsAnchor(3, 2))
	assert.True(t, idx.IsAnchor(0, 0), "unmerged cell is its own anchor")

	assert.Equal(t, CellCoord{Row: 2, Col: 1}, idx.ResolveCell(3, 2))
	assert.Equal(t, CellCoord{Row: 0, Col: 0}, idx.ResolveCell(0, 0))

	assert.True(t, idx.ShouldSkipCell(3, 2))
	assert.False(t, idx.ShouldSkipCell(2, 1))
}

func TestMergedCellIndexInteriorGridlines(t *testing.T) {
	merges := []CellRange{{StartRow: 0, EndRow: 2, StartCol: 0, EndCol: 3}}
	idx := NewMergedCellIndex(merges, nil)

	assert.True(t, IsInteriorVerticalGridline(idx, 0, 0))
	assert.True(t, IsInteriorVerticalGridline(idx, 0, 1))
	assert.False(t, IsInteriorVerticalGridline(idx, 0, 2))
	assert.True(t, IsInteriorHorizontalGridline(idx, 0, 0))
	assert.False(t, IsInteriorHorizontalGridline(idx, 1, 0))
}

func TestExpandRangeToMergedCellsViaPerimeterScan(t *testing.T) {
	merges := []CellRange{
		{StartRow: 0, EndRow: 3, StartCol: 0, EndCol: 2},
		{StartRow: 2, EndRow: 4, StartCol: 2, EndCol: 5},
	}
	idx := NewMergedCellIndex(merges, nil)

	r := CellRange{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 3}
	expanded := ExpandRangeToMergedCells(r, idx, nil)

	assert.Equal(t, 0, expanded.StartRow)
	assert.Equal(t, 4, expanded.EndRow)
	assert.Equal(t, 0, expanded.StartCol)
	assert.Equal(t, 5, expanded.EndCol)
}

func TestExpandRangeToMergedCellsNilIndexFailsOpen(t *testing.T) {
	r := CellRange{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 2}
	assert.Equal(t, r, ExpandRangeToMergedCells(r, nil, nil))
}

type stubMergeProvider struct {
	ranges []CellRange
}

func (s *stubMergeProvider) GetMergedRangesInRange(r CellRange) []CellRange {
	var out []CellRange
	for _, m := range s.ranges {
		if m.Overlaps(r) {
			out = append(out, m)
		}
	}
	return out
}

func TestExpandRangeToMergedCellsUsesProviderWhenAvailable(t *testing.T) {
	provider := &stubMergeProvider{ranges: []CellRange{
		{StartRow: 0, EndRow: 5, StartCol: 0, EndCol: 1},
	}}
	r := CellRange{StartRow: 2, EndRow: 3, StartCol: 0, EndCol: 1}
	expanded := ExpandRangeToMergedCells(r, nil, provider)
	assert.Equal(t, provider.ranges[0], expanded)
}

func TestMergedCellIndexIndexedRowCount(t *testing.T) {
	merges := []CellRange{{StartRow: 0, EndRow: 5, StartCol: 0, EndCol: 2}}
	idx := NewMergedCellIndex(merges, []CellRange{{StartRow: 0, EndRow: 3}, {StartRow: 3, EndRow: 5}})
	assert.Equal(t, 5, idx.IndexedRowCount())
}
