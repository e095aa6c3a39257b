package gtk

/*
#cgo pkg-config: gtk+-3.0 pangocairo
#include <stdlib.h>
#include <pango/pangocairo.h>

// Render text using Pango for proper Unicode combining character
// support, the same substitution the teacher widget makes for
// cairo_show_text.
static void pango_render_text(cairo_t *cr, const char *text, const char *font_family,
                              int font_size, int bold, int italic, double r, double g, double b) {
    PangoLayout *layout = pango_cairo_create_layout(cr);

    PangoFontDescription *desc = pango_font_description_new();
    pango_font_description_set_family(desc, font_family);
    pango_font_description_set_size(desc, font_size * PANGO_SCALE);
    if (bold) {
        pango_font_description_set_weight(desc, PANGO_WEIGHT_BOLD);
    }
    if (italic) {
        pango_font_description_set_style(desc, PANGO_STYLE_ITALIC);
    }

    pango_layout_set_font_description(layout, desc);
    pango_layout_set_text(layout, text, -1);

    cairo_set_source_rgb(cr, r, g, b);
    pango_cairo_show_layout(cr, layout);

    pango_font_description_free(desc);
    g_object_unref(layout);
}

// Get the pixel size of text rendered with Pango, using its own
// temporary 1x1 surface so Measure never needs a live cairo.Context.
static void pango_measure_standalone(const char *text, const char *font_family,
                                     int font_size, int bold, int italic,
                                     int *out_width, int *out_ascent, int *out_descent) {
    cairo_surface_t *surface = cairo_image_surface_create(CAIRO_FORMAT_ARGB32, 1, 1);
    cairo_t *cr = cairo_create(surface);

    PangoLayout *layout = pango_cairo_create_layout(cr);

    PangoFontDescription *desc = pango_font_description_new();
    pango_font_description_set_family(desc, font_family);
    pango_font_description_set_size(desc, font_size * PANGO_SCALE);
    if (bold) {
        pango_font_description_set_weight(desc, PANGO_WEIGHT_BOLD);
    }
    if (italic) {
        pango_font_description_set_style(desc, PANGO_STYLE_ITALIC);
    }

    pango_layout_set_font_description(layout, desc);
    pango_layout_set_text(layout, text, -1);

    int width, height;
    pango_layout_get_pixel_size(layout, &width, &height);
    *out_width = width;

    PangoContext *context = pango_layout_get_context(layout);
    PangoFontMetrics *metrics = pango_context_get_metrics(context, desc, NULL);
    *out_ascent = pango_font_metrics_get_ascent(metrics) / PANGO_SCALE;
    *out_descent = pango_font_metrics_get_descent(metrics) / PANGO_SCALE;
    pango_font_metrics_unref(metrics);

    pango_font_description_free(desc);
    g_object_unref(layout);
    cairo_destroy(cr);
    cairo_surface_destroy(surface);
}
*/
import "C"

import (
	"strings"
	"unsafe"

	"github.com/gotk3/gotk3/cairo"
	"github.com/phroun/sheetgrid"
)

func boldItalic(font sheetgrid.FontSpec) (bold, italic C.int) {
	if font.Weight >= 600 {
		bold = 1
	}
	if font.Style == "italic" {
		italic = 1
	}
	return
}

// pangoRenderText draws text via Pango onto a live cairo.Context, used
// by Surface.FillText. The baseline y passed in is where sheetgrid
// expects the text baseline, but Pango positions the layout's top-left
// corner, so we shift up by the measured ascent before drawing.
func pangoRenderText(cr *cairo.Context, text string, font sheetgrid.FontSpec, x, y, r, g, b float64) {
	m := Measure(text, font)
	cText := C.CString(text)
	cFont := C.CString(font.Family)
	defer C.free(unsafe.Pointer(cText))
	defer C.free(unsafe.Pointer(cFont))

	bold, italic := boldItalic(font)
	crNative := (*C.cairo_t)(unsafe.Pointer(cr.Native()))
	cr.Save()
	cr.Translate(x, y-m.Ascent)
	C.pango_render_text(crNative, cText, cFont, C.int(int(font.SizePx)), bold, italic, C.double(r), C.double(g), C.double(b))
	cr.Restore()
}

// Measure delegates pixel metrics to Pango via a standalone temporary
// surface, grounded on the teacher's
// pango_text_width_standalone/pango_get_font_metrics_standalone pair.
func Measure(text string, font sheetgrid.FontSpec) sheetgrid.TextMeasurement {
	if text == "" {
		return sheetgrid.TextMeasurement{}
	}
	cText := C.CString(text)
	cFont := C.CString(font.Family)
	defer C.free(unsafe.Pointer(cText))
	defer C.free(unsafe.Pointer(cFont))

	bold, italic := boldItalic(font)
	var width, ascent, descent C.int
	C.pango_measure_standalone(cText, cFont, C.int(int(font.SizePx)), bold, italic, &width, &ascent, &descent)
	return sheetgrid.TextMeasurement{Width: float64(width), Ascent: float64(ascent), Descent: float64(descent)}
}

// Engine is the gtk package's TextLayoutEngine. Line breaking is done
// in Go against real Pango-measured substrings (word/char wrap), since
// the teacher's own Pango usage is always single-line; full Pango
// paragraph wrapping (PangoLayout width + wrap mode) is left to a
// future host that needs justified/filled multi-line cells, per
// spec.md section 6.2's note that shaping/bidi/wrap decisions may be
// delegated wholesale to the collaborator.
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
