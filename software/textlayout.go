package software

import (
	"strings"

	"github.com/phroun/sheetgrid"
)

// charWidthFactor and the ascent/descent split below are a fixed,
// monospace-shaped approximation of glyph metrics — this package has no
// font rasterizer to query (see the package doc comment), so headline
// measurement is purely arithmetic, scaled off FontSpec.SizePx the same
// way a host would scale a bitmap font.
const (
	charWidthFactor = 0.58
	ascentFactor    = 0.8
	descentFactor   = 0.2
)

// Measure approximates the pixel metrics of text at the given font size
// without any glyph rasterization, counting runes rather than bytes so
// multi-byte UTF-8 text measures sensibly.
func Measure(text string, font sheetgrid.FontSpec) sheetgrid.TextMeasurement {
	n := float64(len([]rune(text)))
	size := font.SizePx
	if size <= 0 {
		size = 13
	}
	weightBoost := 1.0
	if font.Weight >= 600 {
		weightBoost = 1.08
	}
	return sheetgrid.TextMeasurement{
		Width:   n * size * charWidthFactor * weightBoost,
		Ascent:  size * ascentFactor,
		Descent: size * descentFactor,
	}
}

// Engine is the software package's TextLayoutEngine: word/char wrapping
// over the same fixed-metric model Measure uses, with no shaping or
// bidi resolution (spec.md section 6.2 scopes that to the collaborator,
// not the core, and a headless test surface has no script-aware host to
// delegate to).
type Engine struct{}

func (Engine) Measure(text string, font sheetgrid.FontSpec) sheetgrid.TextMeasurement {
	return Measure(text, font)
}

func (e Engine) Layout(req sheetgrid.LayoutRequest) sheetgrid.LayoutResult {
	lineHeight := req.LineHeightPx
	m := Measure("M", req.Font)
	if lineHeight <= 0 {
		lineHeight = m.Ascent + m.Descent + m.Ascent*0.3
	}

	var rawLines []string
	switch req.WrapMode {
	case sheetgrid.WrapWord:
		rawLines = wrapWord(req.Text, req.Font, req.MaxWidth)
	case sheetgrid.WrapAnywhere:
		rawLines = wrapAnywhere(req.Text, req.Font, req.MaxWidth)
	default:
		rawLines = strings.Split(req.Text, "\n")
	}
	if req.MaxLines > 0 && len(rawLines) > req.MaxLines {
		rawLines = rawLines[:req.MaxLines]
	}

	var lines []sheetgrid.LaidOutLine
	var maxWidth float64
	for _, s := range rawLines {
		lm := Measure(s, req.Font)
		x := lineX(lm.Width, req.MaxWidth, req.Align)
		lines = append(lines, sheetgrid.LaidOutLine{
			X: x, Width: lm.Width, Ascent: lm.Ascent, Descent: lm.Descent, Text: s,
		})
		if lm.Width > maxWidth {
			maxWidth = lm.Width
		}
	}

	return sheetgrid.LayoutResult{
		Width:      maxWidth,
		Height:     float64(len(lines)) * lineHeight,
		LineHeight: lineHeight,
		Lines:      lines,
	}
}

func lineX(lineWidth, maxWidth float64, align sheetgrid.HorizontalAlign) float64 {
	switch align {
	case sheetgrid.AlignRight, sheetgrid.AlignEnd:
		return maxWidth - lineWidth
	case sheetgrid.AlignCenter:
		return (maxWidth - lineWidth) / 2
	default:
		return 0
	}
}

func wrapWord(text string, font sheetgrid.FontSpec, maxWidth float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur string
		for _, w := range words {
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if Measure(candidate, font).Width > maxWidth && cur != "" {
				out = append(out, cur)
				cur = w
				continue
			}
			cur = candidate
		}
		out = append(out, cur)
	}
	return out
}

func wrapAnywhere(text string, font sheetgrid.FontSpec, maxWidth float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		start := 0
		for start < len(runes) {
			end := start + 1
			for end < len(runes) && Measure(string(runes[start:end+1]), font).Width <= maxWidth {
				end++
			}
			out = append(out, string(runes[start:end]))
			start = end
		}
	}
	return out
}
