package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScrollManager(t *testing.T) *VirtualScrollManager {
	rows, err := NewVariableSizeAxis(20, 100)
	require.NoError(t, err)
	cols, err := NewVariableSizeAxis(80, 50)
	require.NoError(t, err)
	return NewVirtualScrollManager(rows, cols)
}

func TestVirtualScrollManagerClampsToMax(t *testing.T) {
	m := newTestScrollManager(t)
	m.SetViewportSize(400, 300)

	max := m.GetMaxScroll()
	m.SetScroll(max.MaxScrollX+1000, max.MaxScrollY+1000)
	x, y := m.GetScroll()
	assert.Equal(t, max.MaxScrollX, x)
	assert.Equal(t, max.MaxScrollY, y)
}

func TestVirtualScrollManagerScrollByClamps(t *testing.T) {
	m := newTestScrollManager(t)
	m.SetViewportSize(400, 300)
	m.ScrollBy(-1000, -1000)
	x, y := m.GetScroll()
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
}

func TestVirtualScrollManagerFrozenPanesShrinkScrollable(t *testing.T) {
	m := newTestScrollManager(t)
	m.SetViewportSize(400, 300)
	unfrozenW, unfrozenH := m.scrollableWidth(), m.scrollableHeight()
	unfrozenMax := m.GetMaxScroll()

	m.SetFrozen(2, 2)
	frozenMax := m.GetMaxScroll()

	assert.Less(t, m.scrollableWidth(), unfrozenW)
	assert.Less(t, m.scrollableHeight(), unfrozenH)
	// Frozen rows/cols leave both the scrollable content and the
	// scrollable area, so the scroll ceiling itself is unchanged.
	assert.Equal(t, unfrozenMax, frozenMax)
}

func TestVirtualScrollManagerViewportStateExcludesFrozenRange(t *testing.T) {
	m := newTestScrollManager(t)
	m.SetViewportSize(400, 300)
	m.SetFrozen(3, 1)
	m.SetScroll(0, 0)

	state := m.GetViewportState()
	assert.Equal(t, 3, state.FrozenRows)
	assert.Equal(t, 1, state.FrozenCols)
	assert.GreaterOrEqual(t, state.MainRows.Start, 3)
	assert.GreaterOrEqual(t, state.MainCols.Start, 1)
}

func TestVirtualScrollManagerSetFrozenNegativeClampsToZero(t *testing.T) {
	m := newTestScrollManager(t)
	m.SetFrozen(-5, -5)
	state := m.GetViewportState()
	assert.Equal(t, 0, state.FrozenRows)
	assert.Equal(t, 0, state.FrozenCols)
}
