package sheetgrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectOverlapsAndUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	assert.True(t, a.Overlaps(b))

	u := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 15, H: 15}, u)

	c := Rect{X: 100, Y: 100, W: 5, H: 5}
	assert.False(t, a.Overlaps(c))
}

func TestRectIntersectDisjointIsZero(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	c := Rect{X: 100, Y: 100, W: 5, H: 5}
	assert.Equal(t, Rect{}, a.Intersect(c))

	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	assert.Equal(t, Rect{X: 5, Y: 5, W: 5, H: 5}, a.Intersect(b))
}

func TestRectInflatedBy(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 20}
	inf := r.InflatedBy(2)
	assert.Equal(t, Rect{X: 8, Y: 8, W: 24, H: 24}, inf)
}

func TestDirtyRegionTrackerMergesOverlaps(t *testing.T) {
	tr := NewDirtyRegionTracker()
	tr.MarkDirty(Rect{X: 0, Y: 0, W: 10, H: 10})
	tr.MarkDirty(Rect{X: 5, Y: 5, W: 10, H: 10})
	require.Len(t, tr.Rects(), 1)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 15, H: 15}, tr.Rects()[0])
}

func TestDirtyRegionTrackerKeepsDisjointRectsSeparate(t *testing.T) {
	tr := NewDirtyRegionTracker()
	tr.MarkDirty(Rect{X: 0, Y: 0, W: 10, H: 10})
	tr.MarkDirty(Rect{X: 100, Y: 100, W: 10, H: 10})
	assert.Len(t, tr.Rects(), 2)
}

func TestDirtyRegionTrackerChainedMergeAcrossThreeRects(t *testing.T) {
	tr := NewDirtyRegionTracker()
	tr.MarkDirty(Rect{X: 0, Y: 0, W: 10, H: 10})
	tr.MarkDirty(Rect{X: 20, Y: 0, W: 10, H: 10})
	// Bridges both existing rects into one union.
	tr.MarkDirty(Rect{X: 5, Y: 0, W: 20, H: 10})
	require.Len(t, tr.Rects(), 1)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 30, H: 10}, tr.Rects()[0])
}

func TestDirtyRegionTrackerIgnoresNonFiniteAndEmptyRects(t *testing.T) {
	tr := NewDirtyRegionTracker()
	tr.MarkDirty(Rect{X: math.NaN(), Y: 0, W: 10, H: 10})
	tr.MarkDirty(Rect{X: math.Inf(1), Y: 0, W: 10, H: 10})
	tr.MarkDirty(Rect{X: 0, Y: 0, W: 0, H: 10})
	assert.True(t, tr.IsEmpty())
}

func TestDirtyRegionTrackerDrainResetsState(t *testing.T) {
	tr := NewDirtyRegionTracker()
	tr.MarkDirty(Rect{X: 0, Y: 0, W: 10, H: 10})
	drained := tr.Drain()
	require.Len(t, drained, 1)
	assert.True(t, tr.IsEmpty())
}

func TestDirtyRegionTrackerDrainIntoAppendsAndResets(t *testing.T) {
	tr := NewDirtyRegionTracker()
	tr.MarkDirty(Rect{X: 0, Y: 0, W: 10, H: 10})
	scratch := make([]Rect, 0, 4)
	scratch = tr.DrainInto(scratch)
	require.Len(t, scratch, 1)
	assert.True(t, tr.IsEmpty())
}
