// Package sheetgrid implements the canvas grid rendering core of a
// spreadsheet UI: virtualized scrolling, incremental repaint, merged-cell
// indexing, text layout probing, collapsed border resolution and
// device-pixel-aligned painting onto three layered raster surfaces.
package sheetgrid

// CellCoord is a zero-based (row, col) pair.
type CellCoord struct {
	Row int
	Col int
}

// CellRange is a half-open range [StartRow,EndRow) x [StartCol,EndCol).
// A range with StartRow==EndRow or StartCol==EndCol is empty.
type CellRange struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Empty reports whether the range covers zero rows or zero columns.
func (r CellRange) Empty() bool {
	return r.EndRow <= r.StartRow || r.EndCol <= r.StartCol
}

// Normalize returns r with swapped bounds fixed up, collapsing to the
// canonical "none" range ({0,0,0,0}) when empty.
func (r CellRange) Normalize() CellRange {
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	if r.Empty() {
		return CellRange{}
	}
	return r
}

// Contains reports whether (row,col) lies inside the half-open range.
func (r CellRange) Contains(row, col int) bool {
	return row >= r.StartRow && row < r.EndRow && col >= r.StartCol && col < r.EndCol
}

// Rows returns the row count spanned by the range.
func (r CellRange) Rows() int { return r.EndRow - r.StartRow }

// Cols returns the column count spanned by the range.
func (r CellRange) Cols() int { return r.EndCol - r.StartCol }

// Intersect returns the overlap of r and o, normalized to "none" when they
// do not overlap.
func (r CellRange) Intersect(o CellRange) CellRange {
	out := CellRange{
		StartRow: max(r.StartRow, o.StartRow),
		StartCol: max(r.StartCol, o.StartCol),
		EndRow:   min(r.EndRow, o.EndRow),
		EndCol:   min(r.EndCol, o.EndCol),
	}
	return out.Normalize()
}

// Union returns the bounding range covering both r and o. Either may be
// empty, in which case the other is returned unchanged.
func (r CellRange) Union(o CellRange) CellRange {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return CellRange{
		StartRow: min(r.StartRow, o.StartRow),
		StartCol: min(r.StartCol, o.StartCol),
		EndRow:   max(r.EndRow, o.EndRow),
		EndCol:   max(r.EndCol, o.EndCol),
	}
}

// Overlaps reports whether r and o share any cell.
func (r CellRange) Overlaps(o CellRange) bool {
	return !r.Intersect(o).Empty()
}

// WrapMode controls how text wraps inside a cell.
type WrapMode int

const (
	WrapNone WrapMode = iota
	WrapWord
	WrapAnywhere
)

// Direction is the explicit or detected paragraph direction.
type Direction int

const (
	DirAuto Direction = iota
	DirLTR
	DirRTL
)

// HorizontalAlign is the cell's horizontal text alignment.
type HorizontalAlign int

const (
	AlignLeft HorizontalAlign = iota
	AlignRight
	AlignCenter
	AlignStart
	AlignEnd
	AlignJustify
	AlignFill
)

// VerticalAlign is the cell's vertical text alignment.
type VerticalAlign int

const (
	VAlignTop VerticalAlign = iota
	VAlignMiddle
	VAlignBottom
)

// UnderlineStyle mirrors the teacher's cell.go UnderlineStyle but covers
// the spreadsheet style set instead of terminal SGR codes.
type UnderlineStyle int

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
)

// FontVariantPosition controls sub/superscript rendering.
type FontVariantPosition int

const (
	FontVariantNormal FontVariantPosition = iota
	FontVariantSubscript
	FontVariantSuperscript
)

// BorderStyleRank is used for collapsed-border tie-breaking; higher wins.
type BorderStyleRank int

const (
	StyleDotted BorderStyleRank = iota
	StyleDashed
	StyleSolid
	StyleDouble
)

// BorderSpec describes one edge's border as declared by a cell or a
// merged range's anchor.
type BorderSpec struct {
	Width int             // line width in cell-local units, before zoom
	Style BorderStyleRank
	Color string
}

// Zero reports whether the spec declares no border (width <= 0).
func (b BorderSpec) Zero() bool { return b.Width <= 0 }

// Borders bundles the four perimeter edges plus optional diagonals.
type Borders struct {
	Top, Right, Bottom, Left BorderSpec
	DiagonalUp, DiagonalDown BorderSpec
}

// RichTextRun is one styled run within a cell's rich text content.
type RichTextRun struct {
	Text      string
	Bold      bool
	Italic    bool
	Color     string
	FontSize  float64
	FontFamily string
}

// Style carries all paint-affecting cell formatting.
type Style struct {
	Fill                string
	TextColor           string
	FontFamily          string
	FontSize            float64
	FontWeight          int // 100-900, 400=normal, 700=bold
	FontStyle           string // "normal" | "italic"
	WrapMode            WrapMode
	Direction           Direction
	HorizontalAlign     HorizontalAlign
	VerticalAlign       VerticalAlign
	RotationDeg         float64
	Underline           bool
	UnderlineStyle      UnderlineStyle
	Strike              bool
	Borders             Borders
	TextIndentPx        float64
	FontVariantPosition FontVariantPosition
}

// CellImage references a decoded (or pending) image attached to a cell.
type CellImage struct {
	ID string
}

// CellComment is an optional comment/annotation on a cell.
type CellComment struct {
	Text     string
	Resolved bool
}

// CellValue is the tagged union of scalar cell contents. Exactly one of
// the typed fields is meaningful, selected by Kind.
type CellValueKind int

const (
	ValueNull CellValueKind = iota
	ValueBool
	ValueNumber
	ValueString
)

type CellValue struct {
	Kind CellValueKind
	Bool bool
	Num  float64
	Str  string
}

// Cell is the read-only payload handed back by a CellProvider.
type Cell struct {
	Value     CellValue
	Style     *Style
	Comment   *CellComment
	Image     *CellImage
	RichText  []RichTextRun
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absF(a float64) float64 {
	if a < 0 {
		return -a
	}
	return a
}
