package sheetgrid

import "sort"

// MergedCellIndex is a read-only, viewport-bounded snapshot of merged
// ranges. Queries for rows outside the indexed row ranges always report
// "no merge" — this is what keeps a merge spanning a million rows at
// O(visible cells) instead of O(merge height), per spec.md section 4.4.
type MergedCellIndex struct {
	merges       []CellRange
	indexedRows  []CellRange // row-only bounds, col fields unused (0,0)
	byRow        map[int][]CellRange
}

// rowRange is a half-open [Start,End) row interval.
type rowRange struct{ start, end int }

// NewMergedCellIndex builds an index from the given merges and the row
// ranges that should be queryable. A nil indexedRowRanges indexes every
// row of every merge; an empty (non-nil) slice indexes nothing.
func NewMergedCellIndex(merges []CellRange, indexedRowRanges []CellRange) *MergedCellIndex {
	idx := &MergedCellIndex{byRow: make(map[int][]CellRange)}

	normalized := make([]CellRange, 0, len(merges))
	for _, m := range merges {
		nm := m.Normalize()
		if nm.Rows() < 1 || nm.Cols() < 1 {
			continue
		}
		if nm.Rows() < 2 && nm.Cols() < 2 {
			continue // not actually merged (single cell)
		}
		normalized = append(normalized, nm)
	}
	idx.merges = normalized

	var bounds []rowRange
	if indexedRowRanges == nil {
		for _, m := range normalized {
			bounds = append(bounds, rowRange{m.StartRow, m.EndRow})
		}
	} else {
		for _, r := range indexedRowRanges {
			nr := r.Normalize()
			if nr.EndRow > nr.StartRow {
				bounds = append(bounds, rowRange{nr.StartRow, nr.EndRow})
			}
		}
	}
	idx.indexedRows = mergeRowRanges(bounds)

	for _, m := range normalized {
		for _, br := range idx.indexedRows {
			lo := max(m.StartRow, br.StartRow)
			hi := min(m.EndRow, br.EndRow)
			for row := lo; row < hi; row++ {
				idx.byRow[row] = append(idx.byRow[row], m)
			}
		}
	}
	return idx
}

func mergeRowRanges(in []rowRange) []CellRange {
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].start < in[j].start })
	out := []rowRange{in[0]}
	for _, r := range in[1:] {
		last := &out[len(out)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		out = append(out, r)
	}
	result := make([]CellRange, len(out))
	for i, r := range out {
		result[i] = CellRange{StartRow: r.start, EndRow: r.end}
	}
	return result
}

// IndexedRowCount returns the total number of rows covered by the indexed
// row ranges (an upper bound on byRow's cardinality).
func (idx *MergedCellIndex) IndexedRowCount() int {
	n := 0
	for _, r := range idx.indexedRows {
		n += r.Rows()
	}
	return n
}

// isRowIndexed reports whether row lies within an indexed row range.
func (idx *MergedCellIndex) isRowIndexed(row int) bool {
	for _, r := range idx.indexedRows {
		if row >= r.StartRow && row < r.EndRow {
			return true
		}
	}
	return false
}

// RangeAt returns the merge enclosing (row,col), or false if none (either
// because no merge covers it, or because row is outside the indexed
// subset and the query cannot be answered).
func (idx *MergedCellIndex) RangeAt(row, col int) (CellRange, bool) {
	if !idx.isRowIndexed(row) {
		return CellRange{}, false
	}
	for _, m := range idx.byRow[row] {
		if m.Contains(row, col) {
			return m, true
		}
	}
	return CellRange{}, false
}

// IsAnchor reports whether (row,col) is the top-left cell of its merge
// (or is not merged at all, which counts as its own anchor).
func (idx *MergedCellIndex) IsAnchor(row, col int) bool {
	m, ok := idx.RangeAt(row, col)
	if !ok {
		return true
	}
	return m.StartRow == row && m.StartCol == col
}

// ResolveCell returns the anchor coordinate for (row,col): itself if
// unmerged or already the anchor, otherwise the merge's top-left.
func (idx *MergedCellIndex) ResolveCell(row, col int) CellCoord {
	m, ok := idx.RangeAt(row, col)
	if !ok {
		return CellCoord{Row: row, Col: col}
	}
	return CellCoord{Row: m.StartRow, Col: m.StartCol}
}

// ShouldSkipCell reports whether (row,col) is a non-anchor member of a
// merge and should therefore not be painted on its own.
func (idx *MergedCellIndex) ShouldSkipCell(row, col int) bool {
	return !idx.IsAnchor(row, col)
}

// Merges returns the full normalized merge list backing this index.
func (idx *MergedCellIndex) Merges() []CellRange {
	return idx.merges
}

// IsInteriorVerticalGridline reports whether the edge between (row,col)
// and (row,col+1) lies strictly inside a merge.
func IsInteriorVerticalGridline(idx *MergedCellIndex, row, col int) bool {
	m, ok := idx.RangeAt(row, col)
	if !ok {
		return false
	}
	return col+1 < m.EndCol
}

// IsInteriorHorizontalGridline reports whether the edge between (row,col)
// and (row+1,col) lies strictly inside a merge.
func IsInteriorHorizontalGridline(idx *MergedCellIndex, row, col int) bool {
	m, ok := idx.RangeAt(row, col)
	if !ok {
		return false
	}
	return row+1 < m.EndRow
}

// MergeRangeProvider is the optional CellProvider capability used to
// short-circuit range expansion (spec.md section 4.5).
type MergeRangeProvider interface {
	GetMergedRangesInRange(r CellRange) []CellRange
}

// maxRangeExpansionIterations bounds the perimeter-scan loop in
// ExpandRangeToMergedCells.
const maxRangeExpansionIterations = 100

// ExpandRangeToMergedCells grows r until it stably contains every merge
// that intersects it. When provider implements MergeRangeProvider that
// capability is used directly; otherwise a perimeter-scan-with-skip over
// idx is used, which never materializes more than O(perimeter + visible
// merges) cells. If neither is available it fails open, returning r
// unchanged.
func ExpandRangeToMergedCells(r CellRange, idx *MergedCellIndex, provider MergeRangeProvider) CellRange {
	cur := r.Normalize()
	if cur.Empty() {
		return cur
	}

	if provider != nil {
		for i := 0; i < maxRangeExpansionIterations; i++ {
			merges := provider.GetMergedRangesInRange(cur)
			next := cur
			for _, m := range merges {
				next = next.Union(m)
			}
			if next == cur {
				return cur
			}
			cur = next
		}
		return cur
	}

	if idx == nil {
		return cur
	}

	for i := 0; i < maxRangeExpansionIterations; i++ {
		next := expandOnceViaPerimeterScan(cur, idx)
		if next == cur {
			return cur
		}
		cur = next
	}
	return cur
}

// expandOnceViaPerimeterScan walks the four edges of cur, and whenever a
// probed cell lies inside a merge, jumps the scan cursor past the merge's
// far edge on that axis instead of visiting every interior cell.
func expandOnceViaPerimeterScan(cur CellRange, idx *MergedCellIndex) CellRange {
	out := cur

	// Top and bottom edges: scan columns.
	for _, row := range []int{cur.StartRow, cur.EndRow - 1} {
		for col := cur.StartCol; col < cur.EndCol; {
			m, ok := idx.RangeAt(row, col)
			if !ok {
				col++
				continue
			}
			out = out.Union(m)
			if m.EndCol > col {
				col = m.EndCol
			} else {
				col++
			}
		}
	}

	// Left and right edges: scan rows.
	for _, col := range []int{cur.StartCol, cur.EndCol - 1} {
		for row := cur.StartRow; row < cur.EndRow; {
			m, ok := idx.RangeAt(row, col)
			if !ok {
				row++
				continue
			}
			out = out.Union(m)
			if m.EndRow > row {
				row = m.EndRow
			} else {
				row++
			}
		}
	}

	return out
}
