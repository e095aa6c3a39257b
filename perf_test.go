package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerfTrackerDisabledIgnoresCounters(t *testing.T) {
	p := newPerfTracker(false)
	p.addCellPainted()
	p.addCellFetch()
	assert.Equal(t, 0, p.stats.CellsPainted)
	assert.Equal(t, 0, p.stats.CellFetches)
}

func TestPerfTrackerEnabledCounts(t *testing.T) {
	p := newPerfTracker(true)
	p.addCellPainted()
	p.addCellPainted()
	p.addCellFetch()
	assert.Equal(t, 2, p.stats.CellsPainted)
	assert.Equal(t, 1, p.stats.CellFetches)
}

func TestPerfTrackerResetClearsStats(t *testing.T) {
	p := newPerfTracker(true)
	p.addCellPainted()
	p.reset()
	assert.Equal(t, GridPerfStats{}, p.stats)
}
