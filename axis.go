package sheetgrid

import (
	"math"
	"sort"
)

// axisSizeEpsilon is the tolerance below which an override is considered
// equal to the default and therefore not stored, per spec.md section 4.1.
const axisSizeEpsilon = 1e-6

// AxisBounds restricts an axis query to [Min, MaxInclusive] or
// [Min, MaxExclusive) depending on which operation consumes it.
type AxisBounds struct {
	Min         int
	MaxInclusive int
	MaxExclusive int
}

type axisOverride struct {
	index int
	size  float64
}

// VariableSizeAxis maintains per-index size overrides over a default size,
// with O(log n) amortized prefix-sum queries via a sorted-override table
// plus a lazily rebuilt prefix-delta array (the sparse-segment-tree
// implementation spec.md section 4.1 allows).
type VariableSizeAxis struct {
	defaultSize float64
	count       int

	overrides map[int]float64

	sorted      []axisOverride
	prefixDelta []float64
	dirty       bool
}

// NewVariableSizeAxis creates an axis of count indices, each defaultSize
// wide/tall until overridden.
func NewVariableSizeAxis(defaultSize float64, count int) (*VariableSizeAxis, error) {
	if !validSize(defaultSize) {
		return nil, newGridError(ErrInvalidArgument, "default size %v is non-finite or non-positive", defaultSize)
	}
	return &VariableSizeAxis{
		defaultSize: defaultSize,
		count:       count,
		overrides:   make(map[int]float64),
		dirty:       true,
	}, nil
}

func validSize(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Count returns the number of indices on the axis.
func (a *VariableSizeAxis) Count() int { return a.count }

// DefaultSize returns the axis's default per-index size.
func (a *VariableSizeAxis) DefaultSize() float64 { return a.defaultSize }

func (a *VariableSizeAxis) rebuild() {
	if !a.dirty {
		return
	}
	a.sorted = a.sorted[:0]
	for idx, size := range a.overrides {
		a.sorted = append(a.sorted, axisOverride{index: idx, size: size})
	}
	sort.Slice(a.sorted, func(i, j int) bool { return a.sorted[i].index < a.sorted[j].index })
	a.prefixDelta = make([]float64, len(a.sorted)+1)
	for i, o := range a.sorted {
		a.prefixDelta[i+1] = a.prefixDelta[i] + (o.size - a.defaultSize)
	}
	a.dirty = false
}

// GetSize returns the override size for i if present, else the default.
func (a *VariableSizeAxis) GetSize(i int) float64 {
	if s, ok := a.overrides[i]; ok {
		return s
	}
	return a.defaultSize
}

// PositionOf returns the sum of sizes of [0, i): positionOf(0)=0,
// positionOf(i+1) = positionOf(i) + GetSize(i), strictly monotonic.
func (a *VariableSizeAxis) PositionOf(i int) float64 {
	a.rebuild()
	// number of overrides with index < i, via binary search.
	n := sort.Search(len(a.sorted), func(k int) bool { return a.sorted[k].index >= i })
	return float64(i)*a.defaultSize + a.prefixDelta[n]
}

// IndexAt returns the greatest i in [bounds.Min, bounds.MaxInclusive] with
// PositionOf(i) <= pos. For pos < PositionOf(bounds.Min) it returns
// bounds.Min.
func (a *VariableSizeAxis) IndexAt(pos float64, bounds AxisBounds) int {
	lo, hi := bounds.Min, bounds.MaxInclusive
	if hi < lo {
		return lo
	}
	if pos < a.PositionOf(lo) {
		return lo
	}
	// Binary search the largest index with PositionOf(index) <= pos.
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if a.PositionOf(mid) <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// VisibleRange returns [start, end) covering [pos, pos+length), clamped to
// [bounds.Min, bounds.MaxExclusive).
func (a *VariableSizeAxis) VisibleRange(pos, length float64, bounds AxisBounds) (start, end int) {
	maxInclusive := bounds.MaxExclusive - 1
	if maxInclusive < bounds.Min {
		return bounds.Min, bounds.Min
	}
	innerBounds := AxisBounds{Min: bounds.Min, MaxInclusive: maxInclusive}
	start = a.IndexAt(pos, innerBounds)
	if length <= 0 {
		end = start + 1
	} else {
		// The last index still (even partially) covered by [pos,pos+length)
		// is the greatest index whose start lies strictly before the end,
		// found by probing just inside the boundary.
		endIdx := a.IndexAt(pos+length-axisSizeEpsilon, innerBounds)
		end = endIdx + 1
	}
	if end > bounds.MaxExclusive {
		end = bounds.MaxExclusive
	}
	if end <= start {
		end = start + 1
		if end > bounds.MaxExclusive {
			end = bounds.MaxExclusive
		}
	}
	return start, end
}

// SetSize sets a single index's override size. Sizes within axisSizeEpsilon
// of the default are treated as "no override" per spec.md section 4.1.
func (a *VariableSizeAxis) SetSize(i int, size float64) error {
	if !validSize(size) {
		return newGridError(ErrInvalidArgument, "size %v at index %d is non-finite or non-positive", size, i)
	}
	if math.Abs(size-a.defaultSize) <= axisSizeEpsilon {
		delete(a.overrides, i)
	} else {
		a.overrides[i] = size
	}
	a.dirty = true
	return nil
}

// DeleteSize removes any override at index i, reverting it to the default.
func (a *VariableSizeAxis) DeleteSize(i int) {
	if _, ok := a.overrides[i]; ok {
		delete(a.overrides, i)
		a.dirty = true
	}
}

// SetOverrides bulk-replaces the entire override set. This is the
// preferred way to apply many changes at once, avoiding the O(n^2)
// incremental-update cost of repeated SetSize calls.
func (a *VariableSizeAxis) SetOverrides(overrides map[int]float64) error {
	next := make(map[int]float64, len(overrides))
	for idx, size := range overrides {
		if !validSize(size) {
			return newGridError(ErrInvalidArgument, "size %v at index %d is non-finite or non-positive", size, idx)
		}
		if math.Abs(size-a.defaultSize) <= axisSizeEpsilon {
			continue
		}
		next[idx] = size
	}
	a.overrides = next
	a.dirty = true
	return nil
}

// Overrides returns a copy of the current sparse override map, suitable
// for round-tripping through SetOverrides.
func (a *VariableSizeAxis) Overrides() map[int]float64 {
	out := make(map[int]float64, len(a.overrides))
	for k, v := range a.overrides {
		out[k] = v
	}
	return out
}

// TotalSize returns PositionOf(Count()), the full extent of the axis.
func (a *VariableSizeAxis) TotalSize() float64 {
	return a.PositionOf(a.count)
}
