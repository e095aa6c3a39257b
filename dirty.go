package sheetgrid

import "math"

// Rect is an axis-aligned pixel rectangle in viewport space.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rect has non-positive extent.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) right() float64  { return r.X + r.W }
func (r Rect) bottom() float64 { return r.Y + r.H }

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.right() && o.X < r.right() && r.Y < o.bottom() && o.Y < r.bottom()
}

// Union returns the bounding rect of r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := minF(r.X, o.X)
	y0 := minF(r.Y, o.Y)
	x1 := maxF(r.right(), o.right())
	y1 := maxF(r.bottom(), o.bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersect returns the overlap of r and o; zero-valued if disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0 := maxF(r.X, o.X)
	y0 := maxF(r.Y, o.Y)
	x1 := minF(r.right(), o.right())
	y1 := minF(r.bottom(), o.bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// InflatedBy returns r expanded by pad on every side.
func (r Rect) InflatedBy(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, W: r.W + 2*pad, H: r.H + 2*pad}
}

// DirtyRegionTracker accumulates non-overlapping dirty rectangles between
// frames. markDirty unions any overlapping rectangle into the inserted
// one; the list itself is kept unsorted, per spec.md section 4.3.
type DirtyRegionTracker struct {
	rects []Rect
}

// NewDirtyRegionTracker returns an empty tracker.
func NewDirtyRegionTracker() *DirtyRegionTracker {
	return &DirtyRegionTracker{}
}

// MarkDirty adds r to the tracked region, merging with any rect it
// overlaps. Non-finite or non-positive rects are ignored.
func (t *DirtyRegionTracker) MarkDirty(r Rect) {
	if r.Empty() {
		return
	}
	if !finiteRect(r) {
		return
	}
	candidate := r
	out := make([]Rect, 0, len(t.rects)+1)
	out = append(out, t.rects...)
	// Repeatedly fold in any rect overlapping the growing candidate; a
	// union can expose overlaps that didn't exist against the original r.
	changed := true
	for changed {
		changed = false
		kept := out[:0]
		for _, existing := range out {
			if candidate.Overlaps(existing) {
				candidate = candidate.Union(existing)
				changed = true
			} else {
				kept = append(kept, existing)
			}
		}
		out = kept
	}
	t.rects = append(out, candidate)
}

func finiteRect(r Rect) bool {
	return validFinite(r.X) && validFinite(r.Y) && validFinite(r.W) && validFinite(r.H)
}

func validFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Rects returns the current (unsorted) list of tracked rectangles without
// draining them.
func (t *DirtyRegionTracker) Rects() []Rect {
	return t.rects
}

// Drain returns the current rect list and resets the tracker to empty.
func (t *DirtyRegionTracker) Drain() []Rect {
	out := t.rects
	t.rects = nil
	return out
}

// DrainInto appends the current rects onto out (a caller-owned scratch
// buffer, reset by the caller before use) and resets the tracker, so the
// hot render loop avoids a per-frame allocation.
func (t *DirtyRegionTracker) DrainInto(out []Rect) []Rect {
	out = append(out, t.rects...)
	t.rects = t.rects[:0]
	return out
}

// IsEmpty reports whether there is nothing dirty.
func (t *DirtyRegionTracker) IsEmpty() bool {
	return len(t.rects) == 0
}
