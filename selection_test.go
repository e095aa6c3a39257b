package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSelectionDefaultsToSingleCell(t *testing.T) {
	s := NewSelection()
	assert.Equal(t, []CellRange{{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1}}, s.Ranges)
	assert.Equal(t, CellCoord{Row: 0, Col: 0}, s.Active)
	assert.True(t, s.FillHandleEnabled)
}

func TestSelectionSetRangesClampsActiveCellToRange(t *testing.T) {
	var s Selection
	s.SetRanges([]CellRange{{StartRow: 2, EndRow: 5, StartCol: 2, EndCol: 5}}, 0, CellCoord{Row: 0, Col: 0}, nil)
	assert.Equal(t, CellCoord{Row: 2, Col: 2}, s.Active)
}

func TestSelectionSetRangesDropsEmptyRanges(t *testing.T) {
	var s Selection
	s.SetRanges([]CellRange{{StartRow: 0, EndRow: 0, StartCol: 0, EndCol: 0}, {StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 2}}, 5, CellCoord{}, nil)
	assert.Len(t, s.Ranges, 1)
	assert.Equal(t, 0, s.ActiveIndex)
}

func TestSelectionAddRangeMakesItActive(t *testing.T) {
	s := NewSelection()
	s.AddRange(CellRange{StartRow: 10, EndRow: 12, StartCol: 10, EndCol: 11}, nil)
	assert.Len(t, s.Ranges, 2)
	assert.Equal(t, 1, s.ActiveIndex)
	assert.Equal(t, CellCoord{Row: 10, Col: 10}, s.Active)
}

func TestSelectionAddRangeIgnoresEmptyRange(t *testing.T) {
	s := NewSelection()
	s.AddRange(CellRange{StartRow: 1, EndRow: 1, StartCol: 1, EndCol: 1}, nil)
	assert.Len(t, s.Ranges, 1)
}

func TestSelectionSetActiveRangeReturnsFalseWhenUnchanged(t *testing.T) {
	s := NewSelection()
	changed := s.SetActiveRange(CellRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1}, nil)
	assert.False(t, changed)
}

func TestSelectionSetActiveRangeUpdatesAndClamps(t *testing.T) {
	s := NewSelection()
	changed := s.SetActiveRange(CellRange{StartRow: 3, EndRow: 6, StartCol: 3, EndCol: 6}, nil)
	assert.True(t, changed)
	assert.Equal(t, CellRange{StartRow: 3, EndRow: 6, StartCol: 3, EndCol: 6}, s.ActiveRange())
	assert.Equal(t, CellCoord{Row: 3, Col: 3}, s.Active)
}

func TestSelectionSetActiveRangeSnapsToMergeAnchor(t *testing.T) {
	idx := NewMergedCellIndex([]CellRange{{StartRow: 0, EndRow: 3, StartCol: 0, EndCol: 3}}, nil)
	s := NewSelection()
	s.Active = CellCoord{Row: 2, Col: 2}
	s.SetActiveRange(CellRange{StartRow: 0, EndRow: 4, StartCol: 0, EndCol: 4}, idx)
	assert.Equal(t, CellCoord{Row: 0, Col: 0}, s.Active)
}

func TestSelectionActiveRangeOutOfBoundsReturnsZero(t *testing.T) {
	s := Selection{ActiveIndex: 5}
	assert.Equal(t, CellRange{}, s.ActiveRange())
}
