package qt

import (
	"strings"

	"github.com/mappu/miqt/qt"
	"github.com/phroun/sheetgrid"
)

// Measure uses QFontMetrics, grounded on the teacher widget's own
// metrics.HorizontalAdvance/AverageCharWidth/Height/Ascent calls for
// font-metric-driven cell sizing.
func Measure(text string, font sheetgrid.FontSpec) sheetgrid.TextMeasurement {
	if text == "" {
		return sheetgrid.TextMeasurement{}
	}
	metrics := qt.NewQFontMetrics(qtFont(font))
	return sheetgrid.TextMeasurement{
		Width:   float64(metrics.HorizontalAdvance(text)),
		Ascent:  float64(metrics.Ascent()),
		Descent: float64(metrics.Descent()),
	}
}

// Engine is the qt package's TextLayoutEngine. As with the gtk
// package, line-breaking is plain Go word/char wrap over real
// QFontMetrics-measured substrings; Qt's own QTextLayout/QTextDocument
// justification and bidi machinery is a larger surface than a single
// cell's wrap/fill/justify needs and is left to a host that wants it
// (spec.md section 6.2).
type Engine struct{}

func (Engine) Measure(text string, font sheetgrid.FontSpec) sheetgrid.TextMeasurement {
	return Measure(text, font)
}

func (e Engine) Layout(req sheetgrid.LayoutRequest) sheetgrid.LayoutResult {
	m := Measure("M", req.Font)
	lineHeight := req.LineHeightPx
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
		lines = append(lines, sheetgrid.LaidOutLine{X: x, Width: lm.Width, Ascent: lm.Ascent, Descent: lm.Descent, Text: s})
		if lm.Width > maxWidth {
			maxWidth = lm.Width
		}
	}

	return sheetgrid.LayoutResult{Width: maxWidth, Height: float64(len(lines)) * lineHeight, LineHeight: lineHeight, Lines: lines}
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
