package sheetgrid

// headerOverride lets the host pin header row/col counts independent of
// the frozen pane counts (spec.md section 4.7.4).
type headerOverride struct {
	rows, cols     int
	rowsSet, colsSet bool
}

// RendererOptions configures a GridRenderer at construction time.
type RendererOptions struct {
	Clock              Clock
	TextDecoderFactory TextDecoderFactory
	Theme              ThemePair
	DarkTheme          bool
	PerfStatsEnabled   bool
	MaxReadyImages     int
}

// DefaultRendererOptions returns sensible defaults grounded on the
// teacher's NewBuffer constructor defaults (dark theme on, perf stats on
// outside of production).
func DefaultRendererOptions() RendererOptions {
	return RendererOptions{
		Clock:            SystemClock(),
		Theme:            DefaultThemePair(),
		DarkTheme:        true,
		PerfStatsEnabled: true,
		MaxReadyImages:   256,
	}
}

// GridRenderer is the orchestrator described in spec.md section 4.7. It
// exclusively owns the three surfaces (it keeps no offscreen blit
// buffer of its own; blits go through the surfaces), the dirty trackers, the VirtualScrollManager, the MergedCellIndex snapshot,
// the LRU caches, the ImageCache and the perf stats.
type GridRenderer struct {
	provider CellProvider
	unsub    Unsubscribe

	scroll *VirtualScrollManager

	dirtyBg   *DirtyRegionTracker
	dirtyFg   *DirtyRegionTracker
	dirtySel  *DirtyRegionTracker

	mergeIdx *MergedCellIndex

	images *ImageCache

	textCache   *lruCache[textCacheKey, TextMeasurement]
	formatCache *lruCache[formatCacheKey, string]

	theme     ThemePair
	darkTheme bool

	dpr  float64
	zoom float64

	headers headerOverride

	selection Selection

	bgPatternImage DecodedImage

	layoutEngine TextLayoutEngine
	scheduler    FrameScheduler
	clock        Clock

	surfaces       [3]Surface
	attached       bool
	destroyed      bool
	cancelFrame    func()

	lastRendered lastFrameState

	perf *perfTracker

	viewportSubs []*viewportSubscription
}

type textCacheKey struct {
	text   string
	family string
	size   float64
	weight int
	style  string
}

type formatCacheKey struct {
	row, col int
}

// lastFrameState snapshots what was actually painted last frame, used by
// renderFrame's and tryBlitScroll's scrollDelta/metadata-change detection (§4.7.1).
type lastFrameState struct {
	valid      bool
	scrollX    float64
	scrollY    float64
	width      float64
	height     float64
	dpr        float64
	frozenRows int
	frozenCols int
	zoom       float64
}

// NewGridRenderer constructs a renderer over the given provider, axes and
// options. The renderer starts unattached; attach() must be called with
// real surfaces before any paint occurs.
func NewGridRenderer(provider CellProvider, rows, cols *VariableSizeAxis, layout TextLayoutEngine, opts RendererOptions) *GridRenderer {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.TextDecoderFactory == nil {
		opts.TextDecoderFactory = DefaultTextDecoderFactory()
	}
	if opts.MaxReadyImages <= 0 {
		opts.MaxReadyImages = 256
	}
	g := &GridRenderer{
		provider:            provider,
		scroll:              NewVirtualScrollManager(rows, cols),
		dirtyBg:             NewDirtyRegionTracker(),
		dirtyFg:             NewDirtyRegionTracker(),
		dirtySel:            NewDirtyRegionTracker(),
		theme:               opts.Theme,
		darkTheme:           opts.DarkTheme,
		dpr:                 1,
		zoom:                1,
		selection:           NewSelection(),
		layoutEngine:        layout,
		clock:               opts.Clock,
		perf:                newPerfTracker(opts.PerfStatsEnabled),
		textCache:           newLRUCache[textCacheKey, TextMeasurement](4096),
		formatCache:         newLRUCache[formatCacheKey, string](4096),
	}
	g.images = NewImageCache(opts.MaxReadyImages, nil, nil, opts.Clock, opts.TextDecoderFactory)
	g.images.SetOnReady(func(string) {
		g.dirtyFg.MarkDirty(Rect{X: 0, Y: 0, W: g.scroll.viewportWidth, H: g.scroll.viewportHeight})
		g.requestRender()
	})
	if sub, ok := provider.(Subscribable); ok {
		g.unsub = sub.Subscribe(g.onProviderUpdate)
	}
	return g
}

// Attach wires the three layered raster surfaces (background, content,
// selection) and the scheduler used for requestRender. Idempotent: a
// second attach simply replaces the surfaces.
func (g *GridRenderer) Attach(surfaces [3]Surface, scheduler FrameScheduler) error {
	if g.destroyed {
		return nil
	}
	for _, s := range surfaces {
		if s == nil {
			return newGridError(ErrSurfaceNotReady, "one or more raster surfaces could not be acquired")
		}
	}
	g.surfaces = surfaces
	g.scheduler = scheduler
	g.attached = true
	g.markFullRedraw()
	return nil
}

// Destroy cancels any pending frame, releases every cache/buffer and
// unsubscribes from the provider. All further calls on g become no-ops.
// Calling Destroy twice is safe.
func (g *GridRenderer) Destroy() {
	if g.destroyed {
		return
	}
	if g.cancelFrame != nil {
		g.cancelFrame()
		g.cancelFrame = nil
	}
	if g.unsub != nil {
		g.unsub()
		g.unsub = nil
	}
	g.images.Destroy()
	g.textCache.Clear()
	g.formatCache.Clear()
	g.surfaces = [3]Surface{}
	g.attached = false
	g.destroyed = true
}

func (g *GridRenderer) noop() bool { return g.destroyed }

func (g *GridRenderer) markFullRedraw() {
	full := Rect{X: 0, Y: 0, W: g.scroll.viewportWidth, H: g.scroll.viewportHeight}
	g.dirtyBg.MarkDirty(full)
	g.dirtyFg.MarkDirty(full)
	g.dirtySel.MarkDirty(full)
}

// Resize updates the viewport pixel size and DPR, aligning scroll to
// device pixels immediately (it does not wait for the next frame).
func (g *GridRenderer) Resize(width, height float64, dpr float64) {
	if g.noop() {
		return
	}
	g.scroll.SetViewportSize(width, height)
	g.dpr = dpr
	g.alignScrollToDevicePixels()
	g.notifyViewportChange()
	g.requestRender()
}

// SetFrozen sets the frozen row/col counts.
func (g *GridRenderer) SetFrozen(rows, cols int) {
	if g.noop() {
		return
	}
	g.scroll.SetFrozen(rows, cols)
	g.notifyViewportChange()
	g.requestRender()
}

func (g *GridRenderer) alignScrollToDevicePixels() {
	x, y := g.scroll.GetScroll()
	if g.dpr <= 0 {
		return
	}
	snappedX := roundToDevicePixel(x, g.dpr)
	snappedY := roundToDevicePixel(y, g.dpr)
	g.scroll.SetScroll(snappedX, snappedY)
}

func roundToDevicePixel(v, dpr float64) float64 {
	return float64(roundInt(v*dpr)) / dpr
}

// SetScroll sets the absolute scroll position, snapped to device pixels.
func (g *GridRenderer) SetScroll(x, y float64) {
	if g.noop() {
		return
	}
	g.scroll.SetScroll(x, y)
	g.alignScrollToDevicePixels()
	g.requestRender()
}

// ScrollBy adds a relative delta to the scroll position.
func (g *GridRenderer) ScrollBy(dx, dy float64) {
	if g.noop() {
		return
	}
	g.scroll.ScrollBy(dx, dy)
	g.alignScrollToDevicePixels()
	g.requestRender()
}

// SetZoom sets the zoom factor. If anchor is non-nil the viewport scrolls
// so the anchor point stays fixed under the cursor.
func (g *GridRenderer) SetZoom(z float64, anchor *Point) {
	if g.noop() || z <= 0 {
		return
	}
	prevZoom := g.zoom
	if anchor != nil && prevZoom > 0 {
		x, y := g.scroll.GetScroll()
		ratio := z / prevZoom
		newX := (x+anchor.X)*ratio - anchor.X
		newY := (y+anchor.Y)*ratio - anchor.Y
		g.zoom = z
		g.scroll.SetScroll(newX, newY)
	} else {
		g.zoom = z
	}
	g.alignScrollToDevicePixels()
	g.notifyViewportChange()
	g.requestRender()
}

// GetZoom returns the current zoom factor.
func (g *GridRenderer) GetZoom() float64 { return g.zoom }

// GetScroll returns the current scroll position.
func (g *GridRenderer) GetScroll() (x, y float64) { return g.scroll.GetScroll() }

// GetViewportState returns the current derived viewport snapshot.
func (g *GridRenderer) GetViewportState() ViewportState { return g.scroll.GetViewportState() }

// GetPerfStats returns the most recently recorded per-frame telemetry.
func (g *GridRenderer) GetPerfStats() GridPerfStats { return g.perf.stats }

// SetTheme installs a new theme pair (and optionally switches dark/light
// mode) and forces a full redraw.
func (g *GridRenderer) SetTheme(pair ThemePair, dark bool) {
	if g.noop() {
		return
	}
	g.theme = pair
	g.darkTheme = dark
	g.markFullRedraw()
	g.requestRender()
}

func (g *GridRenderer) currentTheme() GridTheme { return g.theme.ResolveForMode(g.darkTheme) }

// SetBackgroundPatternImage installs (or clears, with nil) the tiled
// background pattern image described in spec.md section 4.7.4.
func (g *GridRenderer) SetBackgroundPatternImage(img DecodedImage) {
	if g.noop() {
		return
	}
	g.bgPatternImage = img
	g.markFullRedraw()
	g.requestRender()
}

// SetHeaders overrides the header row/col counts; a nil pointer restores
// the default (frozen-count-derived) behavior for that axis.
func (g *GridRenderer) SetHeaders(headerRows, headerCols *int) {
	if g.noop() {
		return
	}
	if headerRows != nil {
		g.headers.rows, g.headers.rowsSet = *headerRows, true
	} else {
		g.headers.rowsSet = false
	}
	if headerCols != nil {
		g.headers.cols, g.headers.colsSet = *headerCols, true
	} else {
		g.headers.colsSet = false
	}
	g.markFullRedraw()
	g.requestRender()
}

func (g *GridRenderer) resolvedHeaderRows() int {
	if g.headers.rowsSet {
		return g.headers.rows
	}
	if g.scroll.frozenRows > 0 {
		return 1
	}
	return 0
}

func (g *GridRenderer) resolvedHeaderCols() int {
	if g.headers.colsSet {
		return g.headers.cols
	}
	if g.scroll.frozenCols > 0 {
		return 1
	}
	return 0
}

// InvalidateImage drops one cached image so the next paint reschedules a
// fresh decode.
func (g *GridRenderer) InvalidateImage(id string) {
	if g.noop() {
		return
	}
	g.images.Invalidate(id)
	g.requestRender()
}

// ClearImageCache drops every cached image.
func (g *GridRenderer) ClearImageCache() {
	if g.noop() {
		return
	}
	g.images.Clear()
	g.requestRender()
}

// --- Selection mutators ---

// SetSelection replaces the entire selection state wholesale.
func (g *GridRenderer) SetSelection(s Selection) {
	if g.noop() {
		return
	}
	g.selection = s
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// GetSelection returns the current selection state.
func (g *GridRenderer) GetSelection() Selection { return g.selection }

// SetSelectionRange replaces the selection with a single range.
func (g *GridRenderer) SetSelectionRange(r CellRange) {
	g.SetSelectionRanges([]CellRange{r}, 0, CellCoord{Row: r.StartRow, Col: r.StartCol})
}

// SetSelectionRanges replaces the whole range list.
func (g *GridRenderer) SetSelectionRanges(ranges []CellRange, activeIndex int, active CellCoord) {
	if g.noop() {
		return
	}
	g.selection.SetRanges(ranges, activeIndex, active, g.mergeIdx)
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// AddSelectionRange appends a new range to the selection, making it
// active.
func (g *GridRenderer) AddSelectionRange(r CellRange) {
	if g.noop() {
		return
	}
	g.selection.AddRange(r, g.mergeIdx)
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// SetActiveSelectionRange is the hot-path mutator that updates the active
// range in place. Returns false when nothing changed, letting callers
// skip a render request on a no-op drag update.
func (g *GridRenderer) SetActiveSelectionRange(r CellRange) bool {
	if g.noop() {
		return false
	}
	changed := g.selection.SetActiveRange(r, g.mergeIdx)
	if changed {
		g.dirtySel.MarkDirty(g.viewportRect())
		g.requestRender()
	}
	return changed
}

// SetRangeSelection sets (or clears, with nil) the transient drag range.
func (g *GridRenderer) SetRangeSelection(r *CellRange) {
	if g.noop() {
		return
	}
	g.selection.RangeSelection = r
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// SetFillPreviewRange sets (or clears, with nil) the fill-drag preview.
func (g *GridRenderer) SetFillPreviewRange(r *CellRange) {
	if g.noop() {
		return
	}
	g.selection.FillPreviewRange = r
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// SetFillHandleEnabled toggles whether the fill handle square is drawn.
func (g *GridRenderer) SetFillHandleEnabled(enabled bool) {
	if g.noop() {
		return
	}
	g.selection.FillHandleEnabled = enabled
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// SetReferenceHighlights replaces the formula-editing reference overlays.
func (g *GridRenderer) SetReferenceHighlights(highlights []ReferenceHighlight) {
	if g.noop() {
		return
	}
	g.selection.ReferenceHighlights = highlights
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

// SetRemotePresences replaces the collaborator presence overlays.
func (g *GridRenderer) SetRemotePresences(presences []RemotePresence) {
	if g.noop() {
		return
	}
	g.selection.RemotePresences = presences
	g.dirtySel.MarkDirty(g.viewportRect())
	g.requestRender()
}

func (g *GridRenderer) viewportRect() Rect {
	return Rect{X: 0, Y: 0, W: g.scroll.viewportWidth, H: g.scroll.viewportHeight}
}

// --- Axis size mutators ---

// SetRowHeight overrides a single row's height.
func (g *GridRenderer) SetRowHeight(row int, height float64) error {
	if g.noop() {
		return nil
	}
	if err := g.scroll.rows.SetSize(row, height); err != nil {
		return err
	}
	g.onAxisChanged()
	return nil
}

// SetColWidth overrides a single column's width.
func (g *GridRenderer) SetColWidth(col int, width float64) error {
	if g.noop() {
		return nil
	}
	if err := g.scroll.cols.SetSize(col, width); err != nil {
		return err
	}
	g.onAxisChanged()
	return nil
}

// ResetRowHeight removes a row's override, reverting to the default.
func (g *GridRenderer) ResetRowHeight(row int) {
	if g.noop() {
		return
	}
	g.scroll.rows.DeleteSize(row)
	g.onAxisChanged()
}

// ResetColWidth removes a column's override, reverting to the default.
func (g *GridRenderer) ResetColWidth(col int) {
	if g.noop() {
		return
	}
	g.scroll.cols.DeleteSize(col)
	g.onAxisChanged()
}

// AxisOverridesPatch is the input to ApplyAxisSizeOverrides.
type AxisOverridesPatch struct {
	Rows map[int]float64
	Cols map[int]float64
}

// ApplyAxisSizeOverrides bulk-applies row/col size overrides.
// resetUnspecified, when true, replaces the entire override set for an
// axis that was supplied (equivalent to VariableSizeAxis.SetOverrides);
// when false (the default), the given overrides are merged into a copy
// of the existing set, which is then applied with a single SetOverrides.
func (g *GridRenderer) ApplyAxisSizeOverrides(patch AxisOverridesPatch, resetUnspecified bool) error {
	if g.noop() {
		return nil
	}
	if patch.Rows != nil {
		if err := g.applyOneAxis(g.scroll.rows, patch.Rows, resetUnspecified); err != nil {
			return err
		}
	}
	if patch.Cols != nil {
		if err := g.applyOneAxis(g.scroll.cols, patch.Cols, resetUnspecified); err != nil {
			return err
		}
	}
	g.onAxisChanged()
	return nil
}

func (g *GridRenderer) applyOneAxis(axis *VariableSizeAxis, overrides map[int]float64, resetUnspecified bool) error {
	if resetUnspecified {
		return axis.SetOverrides(overrides)
	}
	merged := axis.Overrides()
	for idx, size := range overrides {
		merged[idx] = size
	}
	return axis.SetOverrides(merged)
}

func (g *GridRenderer) onAxisChanged() {
	g.markFullRedraw()
	g.notifyViewportChange()
	g.requestRender()
}

// AutoFitCol sizes col to the widest painted content currently known for
// its visible rows, capped at maxWidth if positive.
func (g *GridRenderer) AutoFitCol(col int, maxWidth float64) error {
	if g.noop() {
		return nil
	}
	vp := g.scroll.GetViewportState()
	best := g.scroll.cols.defaultSize
	for row := vp.MainRows.Start; row < vp.MainRows.End; row++ {
		cell, ok := g.provider.GetCell(row, col)
		if !ok {
			continue
		}
		w := g.measureCellContentWidth(cell)
		if w > best {
			best = w
		}
	}
	if maxWidth > 0 && best > maxWidth {
		best = maxWidth
	}
	if err := g.scroll.cols.SetSize(col, best); err != nil {
		return err
	}
	g.onAxisChanged()
	return nil
}

// AutoFitRow sizes row to the tallest painted content currently known for
// its visible columns, capped at maxHeight if positive.
func (g *GridRenderer) AutoFitRow(row int, maxHeight float64) error {
	if g.noop() {
		return nil
	}
	vp := g.scroll.GetViewportState()
	best := g.scroll.rows.defaultSize
	for col := vp.MainCols.Start; col < vp.MainCols.End; col++ {
		cell, ok := g.provider.GetCell(row, col)
		if !ok {
			continue
		}
		if g.layoutEngine == nil {
			continue
		}
		m := g.measureCached(formatCellValue(cell), styleFontSpec(cell.Style))
		h := m.Ascent + m.Descent + 4
		if h > best {
			best = h
		}
	}
	if maxHeight > 0 && best > maxHeight {
		best = maxHeight
	}
	if err := g.scroll.rows.SetSize(row, best); err != nil {
		return err
	}
	g.onAxisChanged()
	return nil
}

func (g *GridRenderer) measureCellContentWidth(cell Cell) float64 {
	font := styleFontSpec(cell.Style)
	text := formatCellValue(cell)
	if g.layoutEngine == nil {
		return g.scroll.cols.defaultSize
	}
	m := g.layoutEngine.Measure(text, font)
	return m.Width
}

// --- Viewport subscription ---

type viewportSubscription struct {
	listener    func(ViewportState)
	useRAF      bool
	debounceMs  float64
	pendingCancel func()
}

// SubscribeViewportOptions configures coalescing for a viewport
// subscription (spec.md section 4.8).
type SubscribeViewportOptions struct {
	AnimationFrame bool
	DebounceMs     float64
}

// SubscribeViewport registers a listener fired on layout changes only
// (axis size, frozen, resize, zoom) — never on scroll alone.
func (g *GridRenderer) SubscribeViewport(listener func(ViewportState), opts SubscribeViewportOptions) Unsubscribe {
	sub := &viewportSubscription{listener: listener, useRAF: opts.AnimationFrame, debounceMs: opts.DebounceMs}
	g.viewportSubs = append(g.viewportSubs, sub)
	return func() {
		for i, s := range g.viewportSubs {
			if s == sub {
				if s.pendingCancel != nil {
					s.pendingCancel()
				}
				g.viewportSubs = append(g.viewportSubs[:i], g.viewportSubs[i+1:]...)
				return
			}
		}
	}
}

func (g *GridRenderer) notifyViewportChange() {
	vp := g.scroll.GetViewportState()
	for _, sub := range g.viewportSubs {
		sub := sub
		fire := func() {
			sub.pendingCancel = nil
			sub.listener(vp)
		}
		if sub.pendingCancel != nil {
			sub.pendingCancel()
			sub.pendingCancel = nil
		}
		switch {
		case sub.useRAF && g.scheduler != nil:
			sub.pendingCancel = g.scheduler.Schedule(fire)
		case sub.debounceMs > 0:
			sub.pendingCancel = scheduleDebounced(g.clock, sub.debounceMs, fire)
		default:
			fire()
		}
	}
}

func (g *GridRenderer) onProviderUpdate(update ProviderUpdate) {
	if g.noop() {
		return
	}
	switch update.Kind {
	case UpdateInvalidateAll:
		g.mergeIdx = nil
		g.formatCache.Clear()
		g.markFullRedraw()
	case UpdateInvalidateRange:
		g.formatCache.Clear()
		g.invalidateRange(update.Range)
	}
	g.requestRender()
}

// formattedCellText returns the display text for (row,col), serving it
// from the formatted-text LRU when available. The cache is cleared
// wholesale on any provider invalidation rather than tracked per cell,
// since the cost that matters is repeated formatting of unchanged cells
// across frames, not surviving a data edit.
func (g *GridRenderer) formattedCellText(row, col int, cell Cell) string {
	key := formatCacheKey{row: row, col: col}
	if s, ok := g.formatCache.Get(key); ok {
		return s
	}
	s := formatCellValue(cell)
	g.formatCache.Set(key, s)
	return s
}

func (g *GridRenderer) invalidateRange(r CellRange) {
	nr := r.Normalize()
	if nr.Empty() {
		return
	}
	nr = ExpandRangeToMergedCells(nr, g.mergeIdx, mergeProviderOf(g.provider))
	nr.EndCol += MaxTextOverflowColumns
	rect := g.sheetRangeToViewportRect(nr)
	pad := borderStrokePadding(g.zoom)
	g.dirtyBg.MarkDirty(rect.InflatedBy(pad))
	g.dirtyFg.MarkDirty(rect.InflatedBy(pad))
}

func mergeProviderOf(p CellProvider) MergeRangeProvider {
	if mp, ok := p.(MergeRangeProvider); ok {
		return mp
	}
	return nil
}

func borderStrokePadding(zoom float64) float64 {
	return 4 * zoom
}

// sheetRangeToViewportRect converts a sheet-space cell range into the
// viewport pixel rect it currently occupies (ignoring frozen/scroll
// quadrant splitting — callers that need quadrant-exact rects use
// GetRangeRects instead).
func (g *GridRenderer) sheetRangeToViewportRect(r CellRange) Rect {
	vp := g.scroll.GetViewportState()

	x0 := g.sheetColToViewportX(r.StartCol, vp)
	x1 := g.sheetColToViewportX(r.EndCol, vp)
	y0 := g.sheetRowToViewportY(r.StartRow, vp)
	y1 := g.sheetRowToViewportY(r.EndRow, vp)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}.Normalize2()
}

func (g *GridRenderer) sheetColToViewportX(col int, vp ViewportState) float64 {
	cols := g.scroll.cols
	if col < vp.FrozenCols {
		return cols.PositionOf(col)
	}
	return vp.FrozenWidth + (cols.PositionOf(col) - cols.PositionOf(vp.FrozenCols)) - vp.ScrollX
}

func (g *GridRenderer) sheetRowToViewportY(row int, vp ViewportState) float64 {
	rows := g.scroll.rows
	if row < vp.FrozenRows {
		return rows.PositionOf(row)
	}
	return vp.FrozenHeight + (rows.PositionOf(row) - rows.PositionOf(vp.FrozenRows)) - vp.ScrollY
}

// Normalize2 flips a possibly inverted rect (can happen when a sheet
// range straddles scroll in a way that makes x1<x0) so that its width
// and height are non-negative, covering the same area.
func (r Rect) Normalize2() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}
