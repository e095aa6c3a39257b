package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableSizeAxisDefaultPositions(t *testing.T) {
	axis, err := NewVariableSizeAxis(20, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, axis.Count())
	assert.Equal(t, 0.0, axis.PositionOf(0))
	assert.Equal(t, 200.0, axis.PositionOf(10))
	assert.Equal(t, 2000.0, axis.TotalSize())
}

func TestVariableSizeAxisOverridesShiftSubsequentPositions(t *testing.T) {
	axis, err := NewVariableSizeAxis(20, 10)
	require.NoError(t, err)
	require.NoError(t, axis.SetSize(2, 50))

	assert.Equal(t, 40.0, axis.PositionOf(2))
	assert.Equal(t, 90.0, axis.PositionOf(3))
	assert.Equal(t, 50.0, axis.GetSize(2))
	assert.Equal(t, 20.0, axis.GetSize(3))
}

func TestVariableSizeAxisSetSizeWithinEpsilonClearsOverride(t *testing.T) {
	axis, err := NewVariableSizeAxis(20, 10)
	require.NoError(t, err)
	require.NoError(t, axis.SetSize(1, 30))
	require.NoError(t, axis.SetSize(1, 20+1e-9))
	assert.Empty(t, axis.Overrides())
}

func TestVariableSizeAxisRejectsInvalidSize(t *testing.T) {
	axis, err := NewVariableSizeAxis(20, 10)
	require.NoError(t, err)
	err = axis.SetSize(0, -5)
	require.Error(t, err)
	assert.True(t, IsInvalidSize(err))

	_, err = NewVariableSizeAxis(0, 10)
	require.Error(t, err)
}

func TestVariableSizeAxisIndexAtClampsToBounds(t *testing.T) {
	axis, err := NewVariableSizeAxis(10, 20)
	require.NoError(t, err)
	bounds := AxisBounds{Min: 5, MaxInclusive: 15}
	assert.Equal(t, 5, axis.IndexAt(-100, bounds))
	assert.Equal(t, 15, axis.IndexAt(1e9, bounds))
	assert.Equal(t, 7, axis.IndexAt(70, bounds))
}

func TestVariableSizeAxisVisibleRangeCoversViewport(t *testing.T) {
	axis, err := NewVariableSizeAxis(10, 50)
	require.NoError(t, err)
	bounds := AxisBounds{Min: 0, MaxExclusive: 50}

	start, end := axis.VisibleRange(25, 100, bounds)
	assert.Equal(t, 2, start)
	assert.Equal(t, 13, end)

	start, end = axis.VisibleRange(0, 0, bounds)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)
}

func TestVariableSizeAxisSetOverridesBulkReplace(t *testing.T) {
	axis, err := NewVariableSizeAxis(20, 10)
	require.NoError(t, err)
	require.NoError(t, axis.SetSize(0, 99))
	require.NoError(t, axis.SetOverrides(map[int]float64{3: 40, 4: 60}))

	assert.Equal(t, 20.0, axis.GetSize(0))
	assert.Equal(t, 40.0, axis.GetSize(3))
	assert.Equal(t, 60.0, axis.GetSize(4))
}

func TestVariableSizeAxisDeleteSize(t *testing.T) {
	axis, err := NewVariableSizeAxis(20, 10)
	require.NoError(t, err)
	require.NoError(t, axis.SetSize(2, 80))
	axis.DeleteSize(2)
	assert.Equal(t, 20.0, axis.GetSize(2))
}
