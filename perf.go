package sheetgrid

// DirtyRectStats breaks down how many rects were drained per layer in the
// most recent frame.
type DirtyRectStats struct {
	Background, Content, Selection, Total int
}

// GridPerfStats is the per-frame telemetry spec.md section 4.8 requires.
// Collection follows RendererOptions.PerfStatsEnabled (on in
// DefaultRendererOptions), fixed when the renderer is built; there is no
// runtime toggle.
type GridPerfStats struct {
	LastFrameMs  float64
	CellsPainted int
	CellFetches  int
	DirtyRects   DirtyRectStats
	BlitUsed     bool
}

type perfTracker struct {
	enabled bool
	stats   GridPerfStats
}

func newPerfTracker(enabled bool) *perfTracker {
	return &perfTracker{enabled: enabled}
}

func (p *perfTracker) reset() {
	if !p.enabled {
		return
	}
	p.stats = GridPerfStats{}
}

func (p *perfTracker) addCellPainted() {
	if p.enabled {
		p.stats.CellsPainted++
	}
}

func (p *perfTracker) addCellFetch() {
	if p.enabled {
		p.stats.CellFetches++
	}
}
