package sheetgrid

// AxisVisibleSpan is a half-open [Start,End) index range in a single axis.
type AxisVisibleSpan struct {
	Start, End int
}

// ViewportState is an immutable snapshot of the scroll/frozen geometry,
// per spec.md section 3.
type ViewportState struct {
	Width, Height  float64
	ScrollX, ScrollY float64
	FrozenRows, FrozenCols int
	FrozenWidth, FrozenHeight float64
	MainRows, MainCols AxisVisibleSpan
}

// MaxScroll is the clamp ceiling for scrollX/scrollY.
type MaxScroll struct {
	MaxScrollX, MaxScrollY float64
}

// VirtualScrollManager owns the two axes plus the live scroll/frozen
// state and derives ViewportState/MaxScroll lazily per access, per
// spec.md section 4.2.
type VirtualScrollManager struct {
	rows *VariableSizeAxis
	cols *VariableSizeAxis

	viewportWidth, viewportHeight float64
	scrollX, scrollY               float64
	frozenRows, frozenCols         int
}

// NewVirtualScrollManager wraps the row/col axes with scroll state.
func NewVirtualScrollManager(rows, cols *VariableSizeAxis) *VirtualScrollManager {
	return &VirtualScrollManager{rows: rows, cols: cols}
}

// RowAxis returns the underlying row axis.
func (m *VirtualScrollManager) RowAxis() *VariableSizeAxis { return m.rows }

// ColAxis returns the underlying column axis.
func (m *VirtualScrollManager) ColAxis() *VariableSizeAxis { return m.cols }

// SetViewportSize sets the visible pixel dimensions and re-clamps scroll.
func (m *VirtualScrollManager) SetViewportSize(width, height float64) {
	m.viewportWidth = width
	m.viewportHeight = height
	m.clampScroll()
}

// SetFrozen sets the frozen row/col counts and re-clamps scroll (frozen
// panes shrink the scrollable area).
func (m *VirtualScrollManager) SetFrozen(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	m.frozenRows = rows
	m.frozenCols = cols
	m.clampScroll()
}

func (m *VirtualScrollManager) frozenWidth() float64 {
	return m.cols.PositionOf(m.frozenCols)
}

func (m *VirtualScrollManager) frozenHeight() float64 {
	return m.rows.PositionOf(m.frozenRows)
}

func (m *VirtualScrollManager) scrollableWidth() float64 {
	return maxF(0, m.viewportWidth-m.frozenWidth())
}

func (m *VirtualScrollManager) scrollableHeight() float64 {
	return maxF(0, m.viewportHeight-m.frozenHeight())
}

// GetMaxScroll returns the clamp ceiling for scrollX/scrollY: total
// scrollable content minus the visible scrollable area.
func (m *VirtualScrollManager) GetMaxScroll() MaxScroll {
	totalW := m.cols.PositionOf(m.cols.Count()) - m.frozenWidth()
	totalH := m.rows.PositionOf(m.rows.Count()) - m.frozenHeight()
	return MaxScroll{
		MaxScrollX: maxF(0, totalW-m.scrollableWidth()),
		MaxScrollY: maxF(0, totalH-m.scrollableHeight()),
	}
}

func (m *VirtualScrollManager) clampScroll() {
	max := m.GetMaxScroll()
	m.scrollX = clampF(m.scrollX, 0, max.MaxScrollX)
	m.scrollY = clampF(m.scrollY, 0, max.MaxScrollY)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetScroll sets the absolute scroll position, clamped to [0, max].
func (m *VirtualScrollManager) SetScroll(x, y float64) {
	max := m.GetMaxScroll()
	m.scrollX = clampF(x, 0, max.MaxScrollX)
	m.scrollY = clampF(y, 0, max.MaxScrollY)
}

// ScrollBy adds (dx,dy) to the current scroll position, clamped.
func (m *VirtualScrollManager) ScrollBy(dx, dy float64) {
	m.SetScroll(m.scrollX+dx, m.scrollY+dy)
}

// GetScroll returns the current scroll position.
func (m *VirtualScrollManager) GetScroll() (x, y float64) { return m.scrollX, m.scrollY }

// GetViewportState computes the current immutable ViewportState,
// including the visible main-quadrant row/col spans.
func (m *VirtualScrollManager) GetViewportState() ViewportState {
	fw := m.frozenWidth()
	fh := m.frozenHeight()

	mainRowsStart, mainRowsEnd := m.rows.VisibleRange(m.scrollY, m.scrollableHeight(), AxisBounds{
		Min: m.frozenRows, MaxExclusive: m.rows.Count(),
	})
	mainColsStart, mainColsEnd := m.cols.VisibleRange(m.scrollX, m.scrollableWidth(), AxisBounds{
		Min: m.frozenCols, MaxExclusive: m.cols.Count(),
	})

	return ViewportState{
		Width: m.viewportWidth, Height: m.viewportHeight,
		ScrollX: m.scrollX, ScrollY: m.scrollY,
		FrozenRows: m.frozenRows, FrozenCols: m.frozenCols,
		FrozenWidth: fw, FrozenHeight: fh,
		MainRows: AxisVisibleSpan{Start: mainRowsStart, End: mainRowsEnd},
		MainCols: AxisVisibleSpan{Start: mainColsStart, End: mainColsEnd},
	}
}
