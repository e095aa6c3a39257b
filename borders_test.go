package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEdgeWinnerPrefersLargestWidth(t *testing.T) {
	candidates := []EdgeCandidate{
		{SourceRow: 0, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleSolid, Color: "#000"}},
		{SourceRow: 1, SourceCol: 0, Spec: BorderSpec{Width: 3, Style: StyleSolid, Color: "#fff"}},
	}
	winner, ok := ResolveEdgeWinner(candidates, 1)
	require.True(t, ok)
	assert.Equal(t, 3, winner.Spec.Width)
}

func TestResolveEdgeWinnerStyleBreaksWidthTie(t *testing.T) {
	candidates := []EdgeCandidate{
		{SourceRow: 0, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleDotted}},
		{SourceRow: 1, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleDouble}},
	}
	winner, ok := ResolveEdgeWinner(candidates, 1)
	require.True(t, ok)
	assert.Equal(t, StyleDouble, winner.Spec.Style)
}

func TestResolveEdgeWinnerPreferredBreaksStyleTie(t *testing.T) {
	candidates := []EdgeCandidate{
		{SourceRow: 0, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleSolid}, Preferred: false},
		{SourceRow: 1, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleSolid}, Preferred: true},
	}
	winner, ok := ResolveEdgeWinner(candidates, 1)
	require.True(t, ok)
	assert.True(t, winner.Preferred)
}

func TestResolveEdgeWinnerFallsBackToDeterministicOrdering(t *testing.T) {
	candidates := []EdgeCandidate{
		{SourceRow: 2, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleSolid, Color: "#bbb"}},
		{SourceRow: 1, SourceCol: 0, Spec: BorderSpec{Width: 1, Style: StyleSolid, Color: "#aaa"}},
	}
	winner, ok := ResolveEdgeWinner(candidates, 1)
	require.True(t, ok)
	assert.Equal(t, 1, winner.SourceRow, "lowest SourceRow wins the fallback ordering")
}

func TestResolveEdgeWinnerIgnoresZeroSpecs(t *testing.T) {
	candidates := []EdgeCandidate{
		{SourceRow: 0, SourceCol: 0, Spec: BorderSpec{Width: 0}},
	}
	_, ok := ResolveEdgeWinner(candidates, 1)
	assert.False(t, ok)
}

func TestResolveEdgeWinnerEmptyCandidates(t *testing.T) {
	_, ok := ResolveEdgeWinner(nil, 1)
	assert.False(t, ok)
}

func TestSnapStrokePositionOddWidthSnapsToHalfPixel(t *testing.T) {
	assert.Equal(t, 10.5, snapStrokePosition(10.2, 1))
	assert.Equal(t, 10.5, snapStrokePosition(10.8, 3))
}

func TestSnapStrokePositionEvenWidthSnapsToWholePixel(t *testing.T) {
	assert.Equal(t, 11.0, snapStrokePosition(10.6, 2))
}

func TestSnapStrokePositionNonIntegerWidthLeavesCoordUnsnapped(t *testing.T) {
	assert.Equal(t, 10.37, snapStrokePosition(10.37, 1.5))
}
