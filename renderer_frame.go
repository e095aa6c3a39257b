package sheetgrid

import "math"

// MaxTextOverflowColumns bounds how far a single cell's overflowing text
// is allowed to bleed into neighboring empty columns (spec.md section
// 4.7.6), and how far an invalidated range is padded before being turned
// into a dirty rect (spec.md section 6.1).
const MaxTextOverflowColumns = 128

// requestRender coalesces repeated invalidations into a single scheduled
// frame, per spec.md section 4.7.1 step 1. A frame already pending is
// left alone; RenderImmediately bypasses the scheduler entirely.
func (g *GridRenderer) requestRender() {
	if g.noop() || !g.attached {
		return
	}
	if g.cancelFrame != nil {
		return
	}
	if g.scheduler == nil {
		g.renderFrame()
		return
	}
	g.cancelFrame = g.scheduler.Schedule(func() {
		g.cancelFrame = nil
		g.renderFrame()
	})
}

// RenderImmediately cancels any pending scheduled frame and paints right
// now, synchronously. Used by hosts driving their own render loop (tests,
// headless snapshotting).
func (g *GridRenderer) RenderImmediately() {
	if g.noop() || !g.attached {
		return
	}
	if g.cancelFrame != nil {
		g.cancelFrame()
		g.cancelFrame = nil
	}
	g.renderFrame()
}

// scheduleDebounced fires fn once, delayMs from now, on a goroutine timer;
// canceling prevents the fire if it hasn't happened yet. This is the
// plain-goroutine debounce every injected-Clock caller above the core
// uses instead of a browser's setTimeout, per spec.md section 9's
// capability-trait design note.
func scheduleDebounced(clock Clock, delayMs float64, fn func()) func() {
	done := make(chan struct{})
	go func() {
		start := clock.NowMs()
		for clock.NowMs()-start < delayMs {
			select {
			case <-done:
				return
			default:
			}
		}
		select {
		case <-done:
		default:
			fn()
		}
	}()
	var closed bool
	return func() {
		if !closed {
			closed = true
			close(done)
		}
	}
}

// renderFrame is the five-step per-frame algorithm of spec.md section
// 4.7.1: drain image completions, decide whether the frame can be
// serviced by a bit-blit scroll reuse (when it cannot and the scroll or
// viewport metadata changed since the last frame, the whole viewport is
// marked dirty), paint the dirty rects of the background and content
// layers, paint the selection layer's dirty rects, then snapshot
// the frame state for next time's blit-eligibility check.
func (g *GridRenderer) renderFrame() {
	if g.noop() || !g.attached {
		return
	}
	g.perf.reset()
	g.images.ProcessCompletions()

	blitUsed := g.tryBlitScroll()
	g.perf.stats.BlitUsed = blitUsed
	if last, vp := g.lastRendered, g.scroll.GetViewportState(); !blitUsed && (!last.valid ||
		last.scrollX != vp.ScrollX || last.scrollY != vp.ScrollY || last.width != vp.Width ||
		last.height != vp.Height || last.dpr != g.dpr || last.frozenRows != vp.FrozenRows ||
		last.frozenCols != vp.FrozenCols || last.zoom != g.zoom) {
		g.markFullRedraw()
	}

	bgRects := g.dirtyBg.Drain()
	fgRects := g.dirtyFg.Drain()
	selRects := g.dirtySel.Drain()

	g.perf.stats.DirtyRects = DirtyRectStats{
		Background: len(bgRects),
		Content:    len(fgRects),
		Selection:  len(selRects),
		Total:      len(bgRects) + len(fgRects) + len(selRects),
	}

	for _, r := range bgRects {
		g.paintBackgroundRect(r)
	}
	for _, r := range fgRects {
		g.paintContentRect(r)
	}
	for _, r := range selRects {
		g.paintSelectionRect(r)
	}

	vp := g.scroll.GetViewportState()
	g.lastRendered = lastFrameState{
		valid: true, scrollX: vp.ScrollX, scrollY: vp.ScrollY,
		width: vp.Width, height: vp.Height, dpr: g.dpr,
		frozenRows: vp.FrozenRows, frozenCols: vp.FrozenCols, zoom: g.zoom,
	}
}

// tryBlitScroll implements spec.md section 4.7.3: when the only change
// since last frame is a scroll delta (no resize/dpr/freeze/zoom change),
// a finite near-integer-device-pixel delta that doesn't exceed the
// scrollable extent, shift the main (bottom-right) quadrant's existing
// pixels on every layer by that delta instead of repainting them, mark
// only its newly exposed "ghost" strips dirty, and mark the frozen-row
// (top-right) and frozen-column (bottom-left) quadrants dirty in full
// when the delta moves them. It fires only when every attached surface
// offers BlitScroll(region, dx, dy). Returns whether it fired.
func (g *GridRenderer) tryBlitScroll() bool {
	last := g.lastRendered
	if !last.valid {
		return false
	}
	vp := g.scroll.GetViewportState()
	if last.width != vp.Width || last.height != vp.Height || last.dpr != g.dpr ||
		last.frozenRows != vp.FrozenRows || last.frozenCols != vp.FrozenCols || last.zoom != g.zoom {
		return false
	}
	dx := last.scrollX - vp.ScrollX
	dy := last.scrollY - vp.ScrollY
	if dx == 0 && dy == 0 {
		return false
	}
	if !validFinite(dx) || !validFinite(dy) {
		return false
	}
	if !nearIntegerDevicePixels(dx, g.dpr) || !nearIntegerDevicePixels(dy, g.dpr) {
		return false
	}
	if absF(dx) >= g.scroll.scrollableWidth() || absF(dy) >= g.scroll.scrollableHeight() {
		return false
	}

	quadRect := Rect{X: vp.FrozenWidth, Y: vp.FrozenHeight, W: vp.Width - vp.FrozenWidth, H: vp.Height - vp.FrozenHeight}
	if quadRect.Empty() {
		return false
	}

	type blitter interface {
		BlitScroll(region Rect, dx, dy float64)
	}
	for _, surf := range g.surfaces {
		if _, ok := surf.(blitter); !ok {
			return false
		}
	}
	for _, surf := range g.surfaces {
		surf.(blitter).BlitScroll(quadRect, dx, dy)
	}

	g.markGhostStrips(quadRect, dx, dy)
	tr := Rect{X: vp.FrozenWidth, Y: 0, W: vp.Width - vp.FrozenWidth, H: vp.FrozenHeight}
	bl := Rect{X: 0, Y: vp.FrozenHeight, W: vp.FrozenWidth, H: vp.Height - vp.FrozenHeight}
	for _, q := range []struct {
		r     Rect
		moved bool
	}{{tr, dx != 0}, {bl, dy != 0}} {
		if q.moved && !q.r.Empty() {
			g.dirtyBg.MarkDirty(q.r)
			g.dirtyFg.MarkDirty(q.r)
			g.dirtySel.MarkDirty(q.r)
		}
	}
	return true
}

func nearIntegerDevicePixels(delta, dpr float64) bool {
	if dpr <= 0 {
		return false
	}
	scaled := delta * dpr
	return absF(scaled-math.Round(scaled)) < 1e-3
}

// markGhostStrips marks the strip(s) newly exposed by a blit shift as
// dirty on the background and content layers, since no decoded pixels
// exist there yet.
func (g *GridRenderer) markGhostStrips(region Rect, dx, dy float64) {
	if dx > 0 {
		strip := Rect{X: region.X, Y: region.Y, W: dx, H: region.H}
		g.dirtyBg.MarkDirty(strip)
		g.dirtyFg.MarkDirty(strip)
	} else if dx < 0 {
		strip := Rect{X: region.right() + dx, Y: region.Y, W: -dx, H: region.H}
		g.dirtyBg.MarkDirty(strip)
		g.dirtyFg.MarkDirty(strip)
	}
	if dy > 0 {
		strip := Rect{X: region.X, Y: region.Y, W: region.W, H: dy}
		g.dirtyBg.MarkDirty(strip)
		g.dirtyFg.MarkDirty(strip)
	} else if dy < 0 {
		strip := Rect{X: region.X, Y: region.bottom() + dy, W: region.W, H: -dy}
		g.dirtyBg.MarkDirty(strip)
		g.dirtyFg.MarkDirty(strip)
	}
}

// quadrant identifies one of the four frozen-pane regions of the grid.
type quadrant int

const (
	quadTopLeft quadrant = iota
	quadTopRight
	quadBottomLeft
	quadBottomRight
)

// quadrantGeometry is the pixel rect and sheet-space row/col span one
// quadrant covers, per spec.md section 4.7.2's TL/TR/BL/BR table.
type quadrantGeometry struct {
	rect Rect
	rows AxisVisibleSpan
	cols AxisVisibleSpan
}

// quadrantsForRect decomposes an arbitrary viewport-space dirty rect into
// up to four per-quadrant geometries, clipped to both the rect and each
// quadrant's own bounds, and resolves the sheet-space row/col span each
// clipped piece corresponds to.
func (g *GridRenderer) quadrantsForRect(dirty Rect) []quadrantGeometry {
	vp := g.scroll.GetViewportState()
	bounds := []struct {
		q    quadrant
		rect Rect
	}{
		{quadTopLeft, Rect{X: 0, Y: 0, W: vp.FrozenWidth, H: vp.FrozenHeight}},
		{quadTopRight, Rect{X: vp.FrozenWidth, Y: 0, W: vp.Width - vp.FrozenWidth, H: vp.FrozenHeight}},
		{quadBottomLeft, Rect{X: 0, Y: vp.FrozenHeight, W: vp.FrozenWidth, H: vp.Height - vp.FrozenHeight}},
		{quadBottomRight, Rect{X: vp.FrozenWidth, Y: vp.FrozenHeight, W: vp.Width - vp.FrozenWidth, H: vp.Height - vp.FrozenHeight}},
	}

	var out []quadrantGeometry
	for _, b := range bounds {
		clip := dirty.Intersect(b.rect)
		if clip.Empty() {
			continue
		}
		rows, cols := g.quadrantRowColSpan(b.q, clip, vp)
		out = append(out, quadrantGeometry{rect: clip, rows: rows, cols: cols})
	}
	return out
}

func (g *GridRenderer) quadrantRowColSpan(q quadrant, clip Rect, vp ViewportState) (AxisVisibleSpan, AxisVisibleSpan) {
	rowsAxis := g.scroll.rows
	colsAxis := g.scroll.cols

	var rows, cols AxisVisibleSpan
	switch q {
	case quadTopLeft:
		rs, re := rowsAxis.VisibleRange(clip.Y, clip.H, AxisBounds{Min: 0, MaxExclusive: vp.FrozenRows})
		cs, ce := colsAxis.VisibleRange(clip.X, clip.W, AxisBounds{Min: 0, MaxExclusive: vp.FrozenCols})
		rows, cols = AxisVisibleSpan{rs, re}, AxisVisibleSpan{cs, ce}
	case quadTopRight:
		rs, re := rowsAxis.VisibleRange(clip.Y, clip.H, AxisBounds{Min: 0, MaxExclusive: vp.FrozenRows})
		scrollX := vp.ScrollX + (clip.X - vp.FrozenWidth)
		cs, ce := colsAxis.VisibleRange(scrollX, clip.W, AxisBounds{Min: vp.FrozenCols, MaxExclusive: colsAxis.Count()})
		rows, cols = AxisVisibleSpan{rs, re}, AxisVisibleSpan{cs, ce}
	case quadBottomLeft:
		scrollY := vp.ScrollY + (clip.Y - vp.FrozenHeight)
		rs, re := rowsAxis.VisibleRange(scrollY, clip.H, AxisBounds{Min: vp.FrozenRows, MaxExclusive: rowsAxis.Count()})
		cs, ce := colsAxis.VisibleRange(clip.X, clip.W, AxisBounds{Min: 0, MaxExclusive: vp.FrozenCols})
		rows, cols = AxisVisibleSpan{rs, re}, AxisVisibleSpan{cs, ce}
	case quadBottomRight:
		scrollY := vp.ScrollY + (clip.Y - vp.FrozenHeight)
		scrollX := vp.ScrollX + (clip.X - vp.FrozenWidth)
		rs, re := rowsAxis.VisibleRange(scrollY, clip.H, AxisBounds{Min: vp.FrozenRows, MaxExclusive: rowsAxis.Count()})
		cs, ce := colsAxis.VisibleRange(scrollX, clip.W, AxisBounds{Min: vp.FrozenCols, MaxExclusive: colsAxis.Count()})
		rows, cols = AxisVisibleSpan{rs, re}, AxisVisibleSpan{cs, ce}
	}
	return rows, cols
}
