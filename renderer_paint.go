package sheetgrid

import (
	"fmt"
	"math"
	"strings"
)

// formatCellValue renders a CellValue to display text following spec.md
// section 4.7.5's scalar formatting rules: null renders empty, booleans
// render as upper-case TRUE/FALSE, numbers use Go's default shortest
// round-trip representation, and strings pass through unchanged.
func formatCellValue(cell Cell) string {
	switch cell.Value.Kind {
	case ValueNull:
		return ""
	case ValueBool:
		if cell.Value.Bool {
			return "TRUE"
		}
		return "FALSE"
	case ValueNumber:
		return formatNumber(cell.Value.Num)
	case ValueString:
		return cell.Value.Str
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	s := fmt.Sprintf("%g", n)
	return s
}

// isErrorValue reports whether a string value looks like a formula error
// (spec.md section 4.7.5 renders these in the theme's ErrorText color).
func isErrorValue(s string) bool {
	return strings.HasPrefix(s, "#") && (strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?"))
}

func styleOrDefault(s *Style) Style {
	if s == nil {
		return Style{
			FontFamily: "sans-serif", FontSize: 13, FontWeight: 400, FontStyle: "normal",
			HorizontalAlign: AlignStart, VerticalAlign: VAlignMiddle,
		}
	}
	return *s
}

func styleFontSpec(s *Style) FontSpec {
	st := styleOrDefault(s)
	return FontSpec{Family: st.FontFamily, SizePx: st.FontSize, Weight: st.FontWeight, Style: st.FontStyle}
}

// paintBackgroundRect paints the grid background, the tiled background
// pattern image (if any) and the header bands across the whole dirty
// rect, then the gridlines decomposed per quadrant so freeze-pane edges
// are respected, per spec.md section 4.7.4.
func (g *GridRenderer) paintBackgroundRect(r Rect) {
	theme := g.currentTheme()
	bg := g.surfaces[0]
	if bg == nil {
		return
	}
	bg.FillRect(r, theme.GridBg)
	if g.bgPatternImage != nil {
		pattern := bg.CreatePattern(g.bgPatternImage, nil)
		if pattern != nil {
			pattern.FillRect(bg, r)
		}
	}

	headerRows := g.resolvedHeaderRows()
	headerCols := g.resolvedHeaderCols()
	if headerRows > 0 || headerCols > 0 {
		g.paintHeaderBands(r, theme, headerRows, headerCols)
	}

	g.paintGridlines(r, theme)
}

func (g *GridRenderer) paintHeaderBands(r Rect, theme GridTheme, headerRows, headerCols int) {
	bg := g.surfaces[0]
	vp := g.scroll.GetViewportState()
	if headerRows > 0 {
		top := g.scroll.rows.PositionOf(0)
		bottom := g.scroll.rows.PositionOf(headerRows)
		band := Rect{X: 0, Y: top, W: vp.Width, H: bottom - top}.Intersect(r)
		if !band.Empty() {
			bg.FillRect(band, theme.HeaderBg)
		}
	}
	if headerCols > 0 {
		left := g.scroll.cols.PositionOf(0)
		right := g.scroll.cols.PositionOf(headerCols)
		band := Rect{X: left, Y: 0, W: right - left, H: vp.Height}.Intersect(r)
		if !band.Empty() {
			bg.FillRect(band, theme.HeaderBg)
		}
	}
}

// paintGridlines strokes the plain (non-collapsed) gridlines within r,
// skipping edges that lie strictly inside a merged range.
func (g *GridRenderer) paintGridlines(r Rect, theme GridTheme) {
	bg := g.surfaces[0]
	for _, qg := range g.quadrantsForRect(r) {
		bg.Clip(qg.rect, func() {
			for row := qg.rows.Start; row <= qg.rows.End; row++ {
				if row > 0 && row < g.scroll.rows.Count() && g.mergeIdx != nil && IsInteriorHorizontalGridline(g.mergeIdx, row-1, qg.cols.Start) {
					continue
				}
				y := crispHalfPixel(g.sheetRowToViewportYRaw(row))
				bg.Stroke([]Point{{X: qg.rect.X, Y: y}, {X: qg.rect.right(), Y: y}}, StrokeStyle{Color: theme.GridLine, Width: 1})
			}
			for col := qg.cols.Start; col <= qg.cols.End; col++ {
				x := crispHalfPixel(g.sheetColToViewportXRaw(col))
				bg.Stroke([]Point{{X: x, Y: qg.rect.Y}, {X: x, Y: qg.rect.bottom()}}, StrokeStyle{Color: theme.GridLine, Width: 1})
			}
		})
	}
}

func (g *GridRenderer) sheetRowToViewportYRaw(row int) float64 {
	return g.sheetRowToViewportY(row, g.scroll.GetViewportState())
}

func (g *GridRenderer) sheetColToViewportXRaw(col int) float64 {
	return g.sheetColToViewportX(col, g.scroll.GetViewportState())
}

// paintContentRect paints cell fills, text, images and comment indicators
// within the dirty rect, then resolves and strokes collapsed borders for
// the same region, per spec.md section 4.7.5/4.7.7.
func (g *GridRenderer) paintContentRect(r Rect) {
	content := g.surfaces[1]
	if content == nil {
		return
	}
	theme := g.currentTheme()

	for _, qg := range g.quadrantsForRect(r) {
		content.Clip(qg.rect, func() {
			for row := qg.rows.Start; row < qg.rows.End; row++ {
				for col := qg.cols.Start; col < qg.cols.End; col++ {
					if g.mergeIdx != nil && g.mergeIdx.ShouldSkipCell(row, col) {
						continue
					}
					g.paintOneCell(content, theme, row, col)
				}
			}
		})
	}

	g.paintBorders(r)
}

func (g *GridRenderer) cellSpan(row, col int) CellRange {
	if g.mergeIdx != nil {
		if m, ok := g.mergeIdx.RangeAt(row, col); ok {
			return m
		}
	}
	return CellRange{StartRow: row, EndRow: row + 1, StartCol: col, EndCol: col + 1}
}

func (g *GridRenderer) paintOneCell(surf Surface, theme GridTheme, row, col int) {
	cell, ok := g.provider.GetCell(row, col)
	g.perf.addCellFetch()
	if !ok {
		return
	}
	span := g.cellSpan(row, col)
	vp := g.scroll.GetViewportState()
	x0 := g.sheetColToViewportX(span.StartCol, vp)
	x1 := g.sheetColToViewportX(span.EndCol, vp)
	y0 := g.sheetRowToViewportY(span.StartRow, vp)
	y1 := g.sheetRowToViewportY(span.EndRow, vp)
	rect := Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	if rect.Empty() {
		return
	}

	style := styleOrDefault(cell.Style)
	if style.Fill != "" {
		surf.FillRect(rect, style.Fill)
	}

	if cell.Image != nil {
		g.paintCellImage(surf, rect, cell.Image.ID)
	}

	g.paintCellText(surf, theme, rect, row, col, cell, style)

	if cell.Comment != nil {
		g.paintCommentIndicator(surf, theme, rect, cell.Comment.Resolved)
	}

	g.perf.addCellPainted()
}

// paintCellImage draws an image contain-fit within rect once its
// ImageCache entry is ready, and draws nothing otherwise. The renderer
// builds its ImageCache without a resolver, so ImageCache.Get schedules
// no decode for it and such entries stay pending.
func (g *GridRenderer) paintCellImage(surf Surface, rect Rect, id string) {
	entry := g.images.Get(id)
	if entry.State != ImageReady || entry.Bitmap == nil {
		return
	}
	fitted := containFit(rect, float64(entry.Bitmap.Width()), float64(entry.Bitmap.Height()))
	surf.DrawImage(entry.Bitmap, fitted)
}

// containFit centers a source of size (sw,sh) inside dst, scaled down
// (never up) to fit while preserving aspect ratio.
func containFit(dst Rect, sw, sh float64) Rect {
	if sw <= 0 || sh <= 0 {
		return dst
	}
	scale := minF(dst.W/sw, dst.H/sh)
	if scale > 1 {
		scale = 1
	}
	w := sw * scale
	h := sh * scale
	return Rect{X: dst.X + (dst.W-w)/2, Y: dst.Y + (dst.H-h)/2, W: w, H: h}
}

func (g *GridRenderer) paintCommentIndicator(surf Surface, theme GridTheme, rect Rect, resolved bool) {
	const size = 6
	color := theme.CommentIndicator
	if resolved {
		color = theme.CommentIndicatorResolved
	}
	tri := rect.X + rect.W - size
	surf.Stroke([]Point{
		{X: tri, Y: rect.Y}, {X: rect.X + rect.W, Y: rect.Y}, {X: rect.X + rect.W, Y: rect.Y + size}, {X: tri, Y: rect.Y},
	}, StrokeStyle{Color: color, Width: 1})
}

// paintCellText orchestrates the text layout contract of spec.md section
// 4.7.6: a fast single-line path for text that clearly fits, an
// overflow-probing path (checked up to MaxTextOverflowColumns empty
// neighbor columns) for unwrapped text wider than the cell, and the full
// TextLayoutEngine.Layout path for wrapped, rotated, rich and
// justify/fill-aligned text. Justify and fill reach Layout unchanged as
// the Align value; no gap expansion or fill repetition is applied here.
func (g *GridRenderer) paintCellText(surf Surface, theme GridTheme, rect Rect, row, col int, cell Cell, style Style) {
	if g.layoutEngine == nil {
		return
	}
	text := g.formattedCellText(row, col, cell)
	if text == "" {
		return
	}
	font := styleFontSpec(&style)
	color := theme.CellText
	if isErrorValue(text) {
		color = theme.ErrorText
	}

	needsFullLayout := style.WrapMode != WrapNone || style.RotationDeg != 0 ||
		style.HorizontalAlign == AlignJustify || style.HorizontalAlign == AlignFill || len(cell.RichText) > 0

	if !needsFullLayout {
		m := g.measureCached(text, font)
		if m.Width <= rect.W {
			x, y := g.textOriginSingleLine(rect, m, style)
			surf.FillText(text, x, y, font, color)
			g.paintDecorations(surf, style, color, x, y, m)
			return
		}
		overflowRect := g.probeOverflow(rect, row, col, m, style)
		x, y := g.textOriginSingleLine(overflowRect, m, style)
		surf.Clip(overflowRect, func() {
			surf.FillText(text, x, y, font, color)
			g.paintDecorations(surf, style, color, x, y, m)
		})
		return
	}

	res := g.layoutEngine.Layout(LayoutRequest{
		Text: text, Runs: cell.RichText, Font: font, MaxWidth: rect.W,
		WrapMode: style.WrapMode, Align: style.HorizontalAlign, Direction: style.Direction,
	})
	g.paintLaidOutLines(surf, rect, res, style, color, font)
}

func (g *GridRenderer) measureCached(text string, font FontSpec) TextMeasurement {
	key := textCacheKey{text: text, family: font.Family, size: font.SizePx, weight: font.Weight, style: font.Style}
	if m, ok := g.textCache.Get(key); ok {
		return m
	}
	m := g.layoutEngine.Measure(text, font)
	g.textCache.Set(key, m)
	return m
}

func (g *GridRenderer) textOriginSingleLine(rect Rect, m TextMeasurement, style Style) (x, y float64) {
	switch style.HorizontalAlign {
	case AlignRight, AlignEnd:
		x = rect.right() - m.Width - style.TextIndentPx
	case AlignCenter:
		x = rect.X + (rect.W-m.Width)/2
	default:
		x = rect.X + style.TextIndentPx
	}
	switch style.VerticalAlign {
	case VAlignTop:
		y = rect.Y + m.Ascent
	case VAlignBottom:
		y = rect.bottom() - m.Descent
	default:
		y = rect.Y + (rect.H+m.Ascent-m.Descent)/2
	}
	return x, y
}

// probeOverflow extends rect across up to MaxTextOverflowColumns empty
// neighbor columns (spec.md section 4.7.6) until it can contain the
// measured text width, stopping as soon as a non-empty neighbor or the
// grid edge is reached. Left-aligned text probes rightward, right-
// aligned text probes leftward, centered text probes both directions.
func (g *GridRenderer) probeOverflow(rect Rect, row, col int, m TextMeasurement, style Style) Rect {
	needed := m.Width - rect.W
	if needed <= 0 {
		return rect
	}
	probeRight := style.HorizontalAlign != AlignRight && style.HorizontalAlign != AlignEnd
	probeLeft := style.HorizontalAlign == AlignRight || style.HorizontalAlign == AlignEnd || style.HorizontalAlign == AlignCenter

	out := rect
	colsAxis := g.scroll.cols
	if probeRight {
		c := col + 1
		for i := 0; i < MaxTextOverflowColumns && out.W < m.Width && c < colsAxis.Count(); i, c = i+1, c+1 {
			if !g.isCellEmpty(row, c) {
				break
			}
			out.W += colsAxis.GetSize(c)
		}
	}
	if probeLeft {
		c := col - 1
		for i := 0; i < MaxTextOverflowColumns && out.W < m.Width && c >= 0; i, c = i+1, c-1 {
			if !g.isCellEmpty(row, c) {
				break
			}
			w := colsAxis.GetSize(c)
			out.X -= w
			out.W += w
		}
	}
	return out
}

func (g *GridRenderer) isCellEmpty(row, col int) bool {
	if g.mergeIdx != nil {
		if _, ok := g.mergeIdx.RangeAt(row, col); ok {
			return false
		}
	}
	cell, ok := g.provider.GetCell(row, col)
	if !ok {
		return true
	}
	return cell.Value.Kind == ValueNull && cell.Image == nil
}

func (g *GridRenderer) paintDecorations(surf Surface, style Style, color string, x, y float64, m TextMeasurement) {
	if style.Underline {
		width := 1.0
		if style.UnderlineStyle == UnderlineDouble {
			width = 1
			surf.Stroke([]Point{{X: x, Y: y + 2}, {X: x + m.Width, Y: y + 2}}, StrokeStyle{Color: color, Width: width})
			surf.Stroke([]Point{{X: x, Y: y + 4}, {X: x + m.Width, Y: y + 4}}, StrokeStyle{Color: color, Width: width})
		} else {
			surf.Stroke([]Point{{X: x, Y: y + 2}, {X: x + m.Width, Y: y + 2}}, StrokeStyle{Color: color, Width: width})
		}
	}
	if style.Strike {
		midY := y - m.Ascent/3
		surf.Stroke([]Point{{X: x, Y: midY}, {X: x + m.Width, Y: midY}}, StrokeStyle{Color: color, Width: 1})
	}
}

func (g *GridRenderer) paintLaidOutLines(surf Surface, rect Rect, res LayoutResult, style Style, color string, font FontSpec) {
	cx := rect.X + rect.W/2
	cy := rect.Y + rect.H/2
	needsRotation := style.RotationDeg != 0
	paint := func() {
		y := rect.Y
		switch style.VerticalAlign {
		case VAlignMiddle:
			y = rect.Y + (rect.H-res.Height)/2
		case VAlignBottom:
			y = rect.bottom() - res.Height
		}
		for _, line := range res.Lines {
			lineY := y + line.Ascent
			x := rect.X + line.X
			surf.FillText(line.Text, x, lineY, font, color)
			g.paintDecorations(surf, style, color, x, lineY, TextMeasurement{Width: line.Width, Ascent: line.Ascent, Descent: line.Descent})
			y += res.LineHeight
		}
	}
	if needsRotation {
		surf.Save()
		rad := style.RotationDeg * (math.Pi / 180)
		cos, sin := math.Cos(rad), math.Sin(rad)
		surf.SetTransform(cos, sin, -sin, cos, cx, cy)
		paint()
		surf.Restore()
		return
	}
	paint()
}

// paintSelectionRect paints the selection overlay: range fills/borders,
// the fill handle, reference highlights and remote collaborator
// presences, per spec.md section 4.7.8. The active cell gets no outline
// of its own.
func (g *GridRenderer) paintSelectionRect(r Rect) {
	sel := g.surfaces[2]
	if sel == nil {
		return
	}
	sel.ClearRect(r)
	theme := g.currentTheme()

	for _, rng := range g.selection.Ranges {
		g.paintSelectionRange(sel, theme, rng, r)
	}
	if g.selection.RangeSelection != nil {
		g.paintSelectionRange(sel, theme, *g.selection.RangeSelection, r)
	}
	if g.selection.FillPreviewRange != nil {
		g.paintDashedRange(sel, theme.SelectionBorder, *g.selection.FillPreviewRange, r)
	}
	for _, ref := range g.selection.ReferenceHighlights {
		g.paintDashedRange(sel, ref.Color, ref.Range, r)
	}
	for _, presence := range g.selection.RemotePresences {
		g.paintPresence(sel, theme, presence, r)
	}
	if g.selection.FillHandleEnabled {
		if handle, ok := g.fillHandleRectFor(g.selection.ActiveRange()); ok {
			sel.FillRect(handle, theme.SelectionHandle)
		}
	}
}

func (g *GridRenderer) paintSelectionRange(surf Surface, theme GridTheme, rng CellRange, clip Rect) {
	rect := g.sheetRangeToViewportRect(rng).Intersect(clip)
	if rect.Empty() {
		return
	}
	surf.FillRect(rect, theme.SelectionFill)
	g.strokeRectBorder(surf, rect, theme.SelectionBorder, 2)
}

func (g *GridRenderer) paintDashedRange(surf Surface, color string, rng CellRange, clip Rect) {
	rect := g.sheetRangeToViewportRect(rng).Intersect(clip)
	if rect.Empty() {
		return
	}
	style := StrokeStyle{Color: color, Width: 1.5, Dash: DashPattern{4, 3}}
	surf.Stroke([]Point{{X: rect.X, Y: rect.Y}, {X: rect.right(), Y: rect.Y}, {X: rect.right(), Y: rect.bottom()}, {X: rect.X, Y: rect.bottom()}, {X: rect.X, Y: rect.Y}}, style)
}

func (g *GridRenderer) paintPresence(surf Surface, theme GridTheme, p RemotePresence, clip Rect) {
	color := p.Color
	if color == "" {
		color = theme.RemotePresenceDefault
	}
	for _, rng := range p.Selections {
		g.paintDashedRange(surf, color, rng, clip)
	}
	if p.Cursor != nil {
		rect := g.cellRectFor(p.Cursor.Row, p.Cursor.Col).Intersect(clip)
		if !rect.Empty() {
			g.strokeRectBorder(surf, rect, color, 2)
		}
	}
}

func (g *GridRenderer) strokeRectBorder(surf Surface, rect Rect, color string, width float64) {
	surf.Stroke([]Point{{X: rect.X, Y: rect.Y}, {X: rect.right(), Y: rect.Y}, {X: rect.right(), Y: rect.bottom()}, {X: rect.X, Y: rect.bottom()}, {X: rect.X, Y: rect.Y}}, StrokeStyle{Color: color, Width: width})
}

func (g *GridRenderer) cellRectFor(row, col int) Rect {
	span := g.cellSpan(row, col)
	return g.sheetRangeToViewportRect(span)
}

func (g *GridRenderer) fillHandleRectFor(rng CellRange) (Rect, bool) {
	if rng.Empty() {
		return Rect{}, false
	}
	rect := g.sheetRangeToViewportRect(rng)
	const size = 6
	return Rect{X: rect.right() - size/2, Y: rect.bottom() - size/2, W: size, H: size}, true
}

// --- Hit testing / navigation / query surface (spec.md section 4.7) ---

// PickCellAt resolves the viewport pixel coordinate (x,y) to the anchor
// cell coordinate it belongs to, or false if outside the grid.
func (g *GridRenderer) PickCellAt(x, y float64) (CellCoord, bool) {
	vp := g.scroll.GetViewportState()
	if x < 0 || y < 0 || x >= vp.Width || y >= vp.Height {
		return CellCoord{}, false
	}
	var row, col int
	if y < vp.FrozenHeight {
		row = g.scroll.rows.IndexAt(y, AxisBounds{Min: 0, MaxInclusive: vp.FrozenRows - 1})
	} else {
		row = g.scroll.rows.IndexAt(vp.ScrollY+(y-vp.FrozenHeight), AxisBounds{Min: vp.FrozenRows, MaxInclusive: g.scroll.rows.Count() - 1})
	}
	if x < vp.FrozenWidth {
		col = g.scroll.cols.IndexAt(x, AxisBounds{Min: 0, MaxInclusive: vp.FrozenCols - 1})
	} else {
		col = g.scroll.cols.IndexAt(vp.ScrollX+(x-vp.FrozenWidth), AxisBounds{Min: vp.FrozenCols, MaxInclusive: g.scroll.cols.Count() - 1})
	}
	coord := CellCoord{Row: row, Col: col}
	if g.mergeIdx != nil {
		coord = g.mergeIdx.ResolveCell(row, col)
	}
	return coord, true
}

// ScrollAlign controls how ScrollToCell positions the target cell.
type ScrollAlign int

const (
	AlignAuto ScrollAlign = iota
	AlignStartEdge
	AlignCenterViewport
	AlignEndEdge
)

// ScrollToCell scrolls so that (row,col) becomes visible, aligned per
// align. AlignAuto only scrolls the minimum amount needed to bring the
// cell fully into view; the other modes force the stated alignment.
func (g *GridRenderer) ScrollToCell(row, col int, align ScrollAlign) {
	if g.noop() {
		return
	}
	rows, cols := g.scroll.rows, g.scroll.cols
	vp := g.scroll.GetViewportState()

	cellTop := rows.PositionOf(row) - rows.PositionOf(vp.FrozenRows)
	cellBottom := rows.PositionOf(row+1) - rows.PositionOf(vp.FrozenRows)
	cellLeft := cols.PositionOf(col) - cols.PositionOf(vp.FrozenCols)
	cellRight := cols.PositionOf(col+1) - cols.PositionOf(vp.FrozenCols)

	newY := vp.ScrollY
	newX := vp.ScrollX
	viewH := g.scroll.scrollableHeight()
	viewW := g.scroll.scrollableWidth()

	switch align {
	case AlignCenterViewport:
		newY = (cellTop+cellBottom)/2 - viewH/2
		newX = (cellLeft+cellRight)/2 - viewW/2
	case AlignStartEdge:
		newY = cellTop
		newX = cellLeft
	case AlignEndEdge:
		newY = cellBottom - viewH
		newX = cellRight - viewW
	default:
		if cellTop < vp.ScrollY {
			newY = cellTop
		} else if cellBottom > vp.ScrollY+viewH {
			newY = cellBottom - viewH
		}
		if cellLeft < vp.ScrollX {
			newX = cellLeft
		} else if cellRight > vp.ScrollX+viewW {
			newX = cellRight - viewW
		}
	}
	g.SetScroll(newX, newY)
}

// GetCellRect returns the current viewport pixel rect of (row,col)'s
// anchor span, or false if (row,col) lies outside the sheet. A cell
// scrolled out of view still yields its rect, which then lies partly or
// wholly outside the viewport (spec.md's "rect may lie outside the
// viewport" contract).
func (g *GridRenderer) GetCellRect(row, col int) (Rect, bool) {
	if row < 0 || col < 0 || row >= g.scroll.rows.Count() || col >= g.scroll.cols.Count() {
		return Rect{}, false
	}
	return g.cellRectFor(row, col), true
}

// GetRangeRects returns the (possibly up-to-4, one per quadrant) viewport
// pixel rects a range occupies, per spec.md section 4.7's quadrant-split
// contract for ranges straddling a freeze boundary.
func (g *GridRenderer) GetRangeRects(r CellRange) []Rect {
	nr := r.Normalize()
	if nr.Empty() {
		return nil
	}
	vp := g.scroll.GetViewportState()
	bounds := []Rect{
		{X: 0, Y: 0, W: vp.FrozenWidth, H: vp.FrozenHeight},
		{X: vp.FrozenWidth, Y: 0, W: vp.Width - vp.FrozenWidth, H: vp.FrozenHeight},
		{X: 0, Y: vp.FrozenHeight, W: vp.FrozenWidth, H: vp.Height - vp.FrozenHeight},
		{X: vp.FrozenWidth, Y: vp.FrozenHeight, W: vp.Width - vp.FrozenWidth, H: vp.Height - vp.FrozenHeight},
	}
	full := g.sheetRangeToViewportRect(nr)
	var out []Rect
	for _, b := range bounds {
		clip := full.Intersect(b)
		if !clip.Empty() {
			out = append(out, clip)
		}
	}
	return out
}

// GetFillHandleRect returns the current fill handle square, if enabled
// and a selection exists.
func (g *GridRenderer) GetFillHandleRect() (Rect, bool) {
	if !g.selection.FillHandleEnabled {
		return Rect{}, false
	}
	return g.fillHandleRectFor(g.selection.ActiveRange())
}
