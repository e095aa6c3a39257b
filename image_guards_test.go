package sheetgrid

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPNG(w, h uint32) []byte {
	data := make([]byte, 24)
	copy(data[0:8], pngSig)
	copy(data[12:16], "IHDR")
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	return data
}

func TestSniffImageDimensionsPNG(t *testing.T) {
	dims, ok := SniffImageDimensions(buildPNG(800, 600), DefaultTextDecoderFactory())
	require.True(t, ok)
	assert.Equal(t, ImageDimensions{Width: 800, Height: 600}, dims)
}

func TestSniffImageDimensionsGIF(t *testing.T) {
	data := make([]byte, 10)
	copy(data[0:3], "GIF")
	binary.LittleEndian.PutUint16(data[6:8], 320)
	binary.LittleEndian.PutUint16(data[8:10], 240)
	dims, ok := SniffImageDimensions(data, DefaultTextDecoderFactory())
	require.True(t, ok)
	assert.Equal(t, ImageDimensions{Width: 320, Height: 240}, dims)
}

func TestSniffImageDimensionsRejectsUnknownFormat(t *testing.T) {
	_, ok := SniffImageDimensions([]byte("not an image"), DefaultTextDecoderFactory())
	assert.False(t, ok)
}

func TestImageDimensionsExceedsGuard(t *testing.T) {
	assert.False(t, ImageDimensions{Width: 100, Height: 100}.ExceedsGuard())
	assert.True(t, ImageDimensions{Width: MaxImageDimension + 1, Height: 1}.ExceedsGuard())
	assert.True(t, ImageDimensions{Width: 0, Height: 10}.ExceedsGuard())
	assert.True(t, ImageDimensions{Width: 10000, Height: 10000}.ExceedsGuard(), "exceeds pixel-count guard even within per-dimension limit")
}

func TestSniffSVGExplicitDimensions(t *testing.T) {
	svg := []byte(`<svg width="120" height="60" xmlns="http://www.w3.org/2000/svg"></svg>`)
	dims, ok := SniffImageDimensions(svg, DefaultTextDecoderFactory())
	require.True(t, ok)
	assert.Equal(t, ImageDimensions{Width: 120, Height: 60}, dims)
}

func TestSniffSVGFallsBackToViewBox(t *testing.T) {
	svg := []byte(`<svg viewBox="0 0 200 100" xmlns="http://www.w3.org/2000/svg"></svg>`)
	dims, ok := SniffImageDimensions(svg, DefaultTextDecoderFactory())
	require.True(t, ok)
	assert.Equal(t, ImageDimensions{Width: 200, Height: 100}, dims)
}
