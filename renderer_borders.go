package sheetgrid

// paintBorders resolves and strokes the collapsed borders for every
// interior and perimeter edge touched by the dirty rect r, per spec.md
// section 4.7.7: each shared edge is resolved once via ResolveEdgeWinner
// and edges strictly inside a merged range are skipped entirely.
func (g *GridRenderer) paintBorders(r Rect) {
	content := g.surfaces[1]
	if content == nil {
		return
	}
	for _, qg := range g.quadrantsForRect(r) {
		content.Clip(qg.rect, func() {
			g.paintHorizontalEdges(content, qg)
			g.paintVerticalEdges(content, qg)
		})
	}
}

func (g *GridRenderer) paintHorizontalEdges(surf Surface, qg quadrantGeometry) {
	rowCount := g.scroll.rows.Count()
	for row := qg.rows.Start; row <= qg.rows.End; row++ {
		for col := qg.cols.Start; col < qg.cols.End; col++ {
			if g.mergeIdx != nil && row > 0 && row < rowCount && IsInteriorHorizontalGridline(g.mergeIdx, row-1, col) {
				continue
			}
			winner, ok := g.resolveHorizontalEdge(row, col, rowCount)
			if !ok {
				continue
			}
			g.strokeHorizontalEdge(surf, row, col, winner)
		}
	}
}

func (g *GridRenderer) resolveHorizontalEdge(row, col, rowCount int) (EdgeCandidate, bool) {
	var candidates []EdgeCandidate
	if row > 0 {
		anchor := g.mergeAnchor(row-1, col)
		if cell, ok := g.provider.GetCell(anchor.Row, anchor.Col); ok {
			if spec := styleOrDefault(cell.Style).Borders.Bottom; !spec.Zero() {
				candidates = append(candidates, EdgeCandidate{SourceRow: anchor.Row, SourceCol: anchor.Col, Spec: spec})
			}
		}
	}
	if row < rowCount {
		anchor := g.mergeAnchor(row, col)
		if cell, ok := g.provider.GetCell(anchor.Row, anchor.Col); ok {
			if spec := styleOrDefault(cell.Style).Borders.Top; !spec.Zero() {
				candidates = append(candidates, EdgeCandidate{SourceRow: anchor.Row, SourceCol: anchor.Col, Spec: spec, Preferred: true})
			}
		}
	}
	return ResolveEdgeWinner(candidates, g.zoom)
}

func (g *GridRenderer) paintVerticalEdges(surf Surface, qg quadrantGeometry) {
	colCount := g.scroll.cols.Count()
	for col := qg.cols.Start; col <= qg.cols.End; col++ {
		for row := qg.rows.Start; row < qg.rows.End; row++ {
			if g.mergeIdx != nil && col > 0 && col < colCount && IsInteriorVerticalGridline(g.mergeIdx, row, col-1) {
				continue
			}
			winner, ok := g.resolveVerticalEdge(row, col, colCount)
			if !ok {
				continue
			}
			g.strokeVerticalEdge(surf, row, col, winner)
		}
	}
}

func (g *GridRenderer) resolveVerticalEdge(row, col, colCount int) (EdgeCandidate, bool) {
	var candidates []EdgeCandidate
	if col > 0 {
		anchor := g.mergeAnchor(row, col-1)
		if cell, ok := g.provider.GetCell(anchor.Row, anchor.Col); ok {
			if spec := styleOrDefault(cell.Style).Borders.Right; !spec.Zero() {
				candidates = append(candidates, EdgeCandidate{SourceRow: anchor.Row, SourceCol: anchor.Col, Spec: spec})
			}
		}
	}
	if col < colCount {
		anchor := g.mergeAnchor(row, col)
		if cell, ok := g.provider.GetCell(anchor.Row, anchor.Col); ok {
			if spec := styleOrDefault(cell.Style).Borders.Left; !spec.Zero() {
				candidates = append(candidates, EdgeCandidate{SourceRow: anchor.Row, SourceCol: anchor.Col, Spec: spec, Preferred: true})
			}
		}
	}
	return ResolveEdgeWinner(candidates, g.zoom)
}

func (g *GridRenderer) mergeAnchor(row, col int) CellCoord {
	if g.mergeIdx != nil {
		return g.mergeIdx.ResolveCell(row, col)
	}
	return CellCoord{Row: row, Col: col}
}

func (g *GridRenderer) strokeHorizontalEdge(surf Surface, row, col int, winner EdgeCandidate) {
	vp := g.scroll.GetViewportState()
	y := g.sheetRowToViewportY(row, vp)
	x0 := g.sheetColToViewportX(col, vp)
	x1 := g.sheetColToViewportX(col+1, vp)
	widthPx := float64(winner.Spec.Width) * g.zoom
	y = snapStrokePosition(y, widthPx)
	group := borderGroupKey(winner.Spec, g.zoom)
	surf.Stroke([]Point{{X: x0, Y: y}, {X: x1, Y: y}}, StrokeStyle{Color: group.Color, Width: group.LineWidth, Cap: group.Cap, Dash: dashPatternFor(group)})
}

func (g *GridRenderer) strokeVerticalEdge(surf Surface, row, col int, winner EdgeCandidate) {
	vp := g.scroll.GetViewportState()
	x := g.sheetColToViewportX(col, vp)
	y0 := g.sheetRowToViewportY(row, vp)
	y1 := g.sheetRowToViewportY(row+1, vp)
	widthPx := float64(winner.Spec.Width) * g.zoom
	x = snapStrokePosition(x, widthPx)
	group := borderGroupKey(winner.Spec, g.zoom)
	surf.Stroke([]Point{{X: x, Y: y0}, {X: x, Y: y1}}, StrokeStyle{Color: group.Color, Width: group.LineWidth, Cap: group.Cap, Dash: dashPatternFor(group)})
}

func dashPatternFor(group EdgeGroupKey) DashPattern {
	switch group.DashKey {
	case "dash":
		return DashPattern{group.LineWidth * 3, group.LineWidth * 2}
	case "dot":
		return DashPattern{group.LineWidth, group.LineWidth}
	default:
		return nil
	}
}
