package sheetgrid

// EdgeOrientation distinguishes a horizontal (between rows) from a
// vertical (between columns) collapsed-border edge.
type EdgeOrientation int

const (
	EdgeHorizontal EdgeOrientation = iota
	EdgeVertical
)

// EdgeCandidate is one source's declaration for a shared edge: a cell on
// either side, or a merged range's perimeter. Preferred is true for the
// "bottom" source on a horizontal edge or the "right" source on a
// vertical edge — spec.md section 4.7.7's tie-break #3.
type EdgeCandidate struct {
	SourceRow, SourceCol int
	Spec                 BorderSpec
	Preferred            bool
}

// ResolveEdgeWinner picks the single winning border among candidates for
// one shared edge, applying spec.md section 4.7.7's deterministic
// tie-break chain: largest zoomed width, then style rank, then the
// preferred (bottom/right) source, then a fixed fallback ordering on
// (sourceRow, sourceCol, color). Candidates with a zero spec are ignored.
// Returns ok=false if no candidate declares the edge.
func ResolveEdgeWinner(candidates []EdgeCandidate, zoom float64) (EdgeCandidate, bool) {
	var winner EdgeCandidate
	found := false
	var winnerTotalWidth float64

	for _, c := range candidates {
		if c.Spec.Zero() {
			continue
		}
		totalWidth := float64(c.Spec.Width) * zoom
		if !found {
			winner, winnerTotalWidth, found = c, totalWidth, true
			continue
		}
		if totalWidth > winnerTotalWidth {
			winner, winnerTotalWidth = c, totalWidth
			continue
		}
		if totalWidth < winnerTotalWidth {
			continue
		}
		if c.Spec.Style > winner.Spec.Style {
			winner = c
			continue
		}
		if c.Spec.Style < winner.Spec.Style {
			continue
		}
		if c.Preferred && !winner.Preferred {
			winner = c
			continue
		}
		if winner.Preferred && !c.Preferred {
			continue
		}
		if edgeCandidateLess(c, winner) {
			winner = c
		}
	}
	return winner, found
}

// edgeCandidateLess provides the fixed, deterministic fallback ordering
// used only once every other tie-break has been exhausted.
func edgeCandidateLess(a, b EdgeCandidate) bool {
	if a.SourceRow != b.SourceRow {
		return a.SourceRow < b.SourceRow
	}
	if a.SourceCol != b.SourceCol {
		return a.SourceCol < b.SourceCol
	}
	return a.Spec.Color < b.Spec.Color
}

// EdgeGroupKey holds the visual stroke parameters derived from a winning
// edge's BorderSpec (spec.md section 4.7.7). paintBorders strokes each
// winning edge separately with these parameters; edges are not grouped
// into shared passes.
type EdgeGroupKey struct {
	Color     string
	LineWidth float64
	DashKey   string
	Cap       LineCap
	Double    bool
}

func borderGroupKey(spec BorderSpec, zoom float64) EdgeGroupKey {
	return EdgeGroupKey{
		Color:     spec.Color,
		LineWidth: float64(spec.Width) * zoom,
		DashKey:   dashKeyForStyle(spec.Style),
		Cap:       CapButt,
		Double:    spec.Style == StyleDouble,
	}
}

func dashKeyForStyle(style BorderStyleRank) string {
	switch style {
	case StyleDashed:
		return "dash"
	case StyleDotted:
		return "dot"
	default:
		return "solid"
	}
}

// snapStrokePosition snaps an integer-width line's center coordinate to a
// crisp half-pixel (odd widths) or whole-pixel (even widths) position.
// Non-integer widths are left at their exact coordinate so visual width
// ordering is preserved across zoom levels — spec.md section 4.7.7 and
// section 9's open question are intentionally not "fixed": soft edges at
// extreme zoom-out are the documented contract.
func snapStrokePosition(coord float64, widthPx float64) float64 {
	rounded := roundInt(widthPx)
	if absF(widthPx-float64(rounded)) > 1e-6 {
		return coord
	}
	if rounded%2 == 1 {
		return crispHalfPixel(coord)
	}
	return crispWholePixel(coord)
}

func roundInt(v float64) int {
	if v < 0 {
		return -roundInt(-v)
	}
	return int(v + 0.5)
}

// crispHalfPixel (the teacher-idiom "crispLine" helper, spec.md section
// 4.7.8) snaps coord to the nearest x.5 so an odd-width stroke centered
// there paints on exact device pixels.
func crispHalfPixel(coord float64) float64 {
	return float64(roundInt(coord-0.5)) + 0.5
}

// crispWholePixel snaps coord to the nearest integer pixel.
func crispWholePixel(coord float64) float64 {
	return float64(roundInt(coord))
}
