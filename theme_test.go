package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemePairResolveForMode(t *testing.T) {
	pair := DefaultThemePair()
	assert.Equal(t, DarkGridTheme(), pair.ResolveForMode(true))
	assert.Equal(t, LightGridTheme(), pair.ResolveForMode(false))
}

func TestDarkAndLightThemesSupplyDistinctTokens(t *testing.T) {
	dark := DarkGridTheme()
	light := LightGridTheme()
	assert.NotEqual(t, dark.GridBg, light.GridBg)
	assert.NotEqual(t, dark.SelectionFill, light.SelectionFill)
}
