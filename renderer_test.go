package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phroun/sheetgrid/software"
)

type mapProvider struct {
	cells map[[2]int]Cell
}

func newMapProvider() *mapProvider {
	return &mapProvider{cells: make(map[[2]int]Cell)}
}

func (p *mapProvider) GetCell(row, col int) (Cell, bool) {
	c, ok := p.cells[[2]int{row, col}]
	return c, ok
}

func (p *mapProvider) set(row, col int, text string) {
	p.cells[[2]int{row, col}] = Cell{Value: CellValue{Kind: ValueString, Str: text}}
}

type stubScheduler struct{}

func (stubScheduler) Schedule(fn func()) (cancel func()) {
	fn()
	return func() {}
}

func newTestRenderer(t *testing.T) (*GridRenderer, *mapProvider) {
	rows, err := NewVariableSizeAxis(20, 200)
	require.NoError(t, err)
	cols, err := NewVariableSizeAxis(80, 60)
	require.NoError(t, err)
	provider := newMapProvider()
	opts := DefaultRendererOptions()
	r := NewGridRenderer(provider, rows, cols, software.Engine{}, opts)

	surfaces, err := software.Factory{}.CreateSurfaces(800, 600, 1)
	require.NoError(t, err)
	require.NoError(t, r.Attach(surfaces, stubScheduler{}))
	r.Resize(800, 600, 1)
	return r, provider
}

func TestGridRendererAttachRequiresAllSurfaces(t *testing.T) {
	rows, _ := NewVariableSizeAxis(20, 10)
	cols, _ := NewVariableSizeAxis(80, 10)
	r := NewGridRenderer(newMapProvider(), rows, cols, software.Engine{}, DefaultRendererOptions())

	var surfaces [3]Surface
	surfaces[0] = software.NewSurface(10, 10)
	err := r.Attach(surfaces, stubScheduler{})
	require.Error(t, err)
}

func TestGridRendererRenderImmediatelyPaintsWithoutPanic(t *testing.T) {
	r, provider := newTestRenderer(t)
	provider.set(0, 0, "hello")
	r.RenderImmediately()
}

func TestGridRendererPickCellAtReturnsCoordInsideViewport(t *testing.T) {
	r, _ := newTestRenderer(t)
	coord, ok := r.PickCellAt(5, 5)
	require.True(t, ok)
	assert.Equal(t, 0, coord.Row)
	assert.Equal(t, 0, coord.Col)
}

func TestGridRendererPickCellAtOutsideViewportFails(t *testing.T) {
	r, _ := newTestRenderer(t)
	_, ok := r.PickCellAt(-1, -1)
	assert.False(t, ok)
}

func TestGridRendererScrollToCellBringsTargetIntoView(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.ScrollToCell(150, 40, AlignStartEdge)
	x, y := r.GetScroll()
	assert.Greater(t, x, 0.0)
	assert.Greater(t, y, 0.0)
}

func TestGridRendererSetSelectionRangeUpdatesActiveRange(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.SetSelectionRange(CellRange{StartRow: 2, EndRow: 5, StartCol: 2, EndCol: 5})
	sel := r.GetSelection()
	assert.Equal(t, CellRange{StartRow: 2, EndRow: 5, StartCol: 2, EndCol: 5}, sel.ActiveRange())
}

func TestGridRendererSetActiveSelectionRangeReturnsFalseWhenUnchanged(t *testing.T) {
	r, _ := newTestRenderer(t)
	sel := r.GetSelection()
	changed := r.SetActiveSelectionRange(sel.ActiveRange())
	assert.False(t, changed)
}

func TestGridRendererGetCellRectOutOfBoundsFails(t *testing.T) {
	r, _ := newTestRenderer(t)
	_, ok := r.GetCellRect(-1, 0)
	assert.False(t, ok)
}

func TestGridRendererGetCellRectInBoundsSucceeds(t *testing.T) {
	r, _ := newTestRenderer(t)
	rect, ok := r.GetCellRect(0, 0)
	require.True(t, ok)
	assert.Equal(t, 80.0, rect.W)
	assert.Equal(t, 20.0, rect.H)
}

func TestGridRendererDestroyIsIdempotent(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.Destroy()
	r.Destroy()
	// Further calls must be safe no-ops.
	r.SetScroll(10, 10)
	assert.True(t, r.noop())
}

func TestGridRendererResizeTriggersFullRedraw(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.Resize(400, 300, 2)
	state := r.GetViewportState()
	assert.Equal(t, 400.0, state.Width)
	assert.Equal(t, 300.0, state.Height)

	// One full-viewport rect per layer (background, content, selection).
	r.RenderImmediately()
	assert.Equal(t, 3, r.GetPerfStats().DirtyRects.Total)
}
