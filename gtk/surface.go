// Package gtk provides the GTK/Cairo/Pango Surface and TextLayoutEngine
// implementations for sheetgrid, adapted from the teacher widget's
// cairo drawing calls and standalone Pango measurement helpers.
package gtk

import (
	"github.com/gotk3/gotk3/cairo"
	"github.com/phroun/sheetgrid"
)

// Surface paints onto an owned cairo ARGB32 image surface. A host
// embedding this inside a live GtkDrawingArea blits the resulting
// surface onto the widget's own cairo.Context in its draw handler;
// sheetgrid itself never touches GTK widgets directly (rendering is
// the only concern in scope — spec.md's Non-goals exclude input
// handling and window chrome).
type Surface struct {
	surf *cairo.Surface
	cr   *cairo.Context
	w, h int
}

// NewSurface allocates a w x h ARGB32 cairo surface and context,
// grounded on createCustomGlyphSurface's
// cairo.CreateImageSurface/cairo.Create pairing.
func NewSurface(w, h int) *Surface {
	surf := cairo.CreateImageSurface(cairo.FORMAT_ARGB32, w, h)
	cr := cairo.Create(surf)
	return &Surface{surf: surf, cr: cr, w: w, h: h}
}

// CairoSurface exposes the backing surface for a host's own blit onto
// a live GtkDrawingArea.
func (s *Surface) CairoSurface() *cairo.Surface { return s.surf }

func (s *Surface) FillRect(r sheetgrid.Rect, colorHex string) {
	cr := s.cr
	red, green, blue, alpha := parseColor(colorHex)
	cr.SetSourceRGBA(red, green, blue, alpha)
	cr.Rectangle(r.X, r.Y, r.W, r.H)
	cr.Fill()
}

func (s *Surface) ClearRect(r sheetgrid.Rect) {
	cr := s.cr
	cr.Save()
	cr.SetOperator(cairo.OPERATOR_CLEAR)
	cr.Rectangle(r.X, r.Y, r.W, r.H)
	cr.Fill()
	cr.Restore()
}

func (s *Surface) Clip(r sheetgrid.Rect, fn func()) {
	cr := s.cr
	cr.Save()
	cr.Rectangle(r.X, r.Y, r.W, r.H)
	cr.Clip()
	fn()
	cr.Restore()
}

func (s *Surface) Stroke(points []sheetgrid.Point, style sheetgrid.StrokeStyle) {
	if len(points) < 2 {
		return
	}
	cr := s.cr
	red, green, blue, alpha := parseColor(style.Color)
	cr.Save()
	cr.SetSourceRGBA(red, green, blue, alpha)
	cr.SetLineWidth(style.Width)
	switch style.Cap {
	case sheetgrid.CapRound:
		cr.SetLineCap(cairo.LINE_CAP_ROUND)
	case sheetgrid.CapSquare:
		cr.SetLineCap(cairo.LINE_CAP_SQUARE)
	default:
		cr.SetLineCap(cairo.LINE_CAP_BUTT)
	}
	if len(style.Dash) > 0 {
		cr.SetDash(style.Dash, 0)
	}
	cr.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		cr.LineTo(p.X, p.Y)
	}
	cr.Stroke()
	cr.Restore()
}

// FillText renders via Pango (pangoRenderText) rather than cairo's own
// ShowText, since ShowText cannot shape combining characters or
// complex scripts — exactly the reason the teacher widget does the
// same substitution.
func (s *Surface) FillText(text string, x, y float64, font sheetgrid.FontSpec, colorHex string) {
	red, green, blue, _ := parseColor(colorHex)
	pangoRenderText(s.cr, text, font, x, y, red, green, blue)
}

func (s *Surface) MeasureText(text string, font sheetgrid.FontSpec) (width, ascent, descent float64) {
	m := Measure(text, font)
	return m.Width, m.Ascent, m.Descent
}

func (s *Surface) DrawImage(img sheetgrid.DecodedImage, dst sheetgrid.Rect) {
	src, ok := img.(*Image)
	if !ok || src.surf == nil {
		return
	}
	cr := s.cr
	cr.Save()
	cr.Translate(dst.X, dst.Y)
	if src.w > 0 && src.h > 0 {
		cr.Scale(dst.W/float64(src.w), dst.H/float64(src.h))
	}
	cr.SetSourceSurface(src.surf, 0, 0)
	cr.Paint()
	cr.Restore()
}

func (s *Surface) SetTransform(a, b, c, d, e, f float64) {
	s.cr.SetMatrix(cairo.NewMatrix(a, b, c, d, e, f))
}

func (s *Surface) Save()    { s.cr.Save() }
func (s *Surface) Restore() { s.cr.Restore() }

func (s *Surface) CreatePattern(img sheetgrid.DecodedImage, transform *[6]float64) sheetgrid.Pattern {
	src, ok := img.(*Image)
	if !ok || src.surf == nil {
		return nil
	}
	pat := cairo.NewPatternForSurface(src.surf)
	pat.SetExtend(cairo.EXTEND_REPEAT)
	return &tilePattern{pat: pat}
}

type tilePattern struct{ pat *cairo.Pattern }

func (p *tilePattern) FillRect(surf sheetgrid.Surface, r sheetgrid.Rect) {
	s, ok := surf.(*Surface)
	if !ok {
		return
	}
	cr := s.cr
	cr.Save()
	cr.Rectangle(r.X, r.Y, r.W, r.H)
	cr.Clip()
	cr.SetSource(p.pat)
	cr.Paint()
	cr.Restore()
}

// Image wraps a decoded ARGB32 cairo surface, built from raw pixel
// bytes by the ImageDecoder a host supplies to sheetgrid.ImageCache.
type Image struct {
	surf *cairo.Surface
	w, h int
}

// NewImageFromARGB32 builds an Image from premultiplied ARGB32 pixel
// data laid out the way cairo.ImageSurface.GetData returns it.
func NewImageFromARGB32(pixels []byte, w, h, stride int) *Image {
	surf := cairo.CreateImageSurfaceForData(pixels, cairo.FORMAT_ARGB32, w, h, stride)
	return &Image{surf: surf, w: w, h: h}
}

func (i *Image) Width() int  { return i.w }
func (i *Image) Height() int { return i.h }
func (i *Image) Close() error {
	if i.surf != nil {
		i.surf.Close()
		i.surf = nil
	}
	return nil
}

// Factory implements sheetgrid.SurfaceFactory, producing three
// independent cairo-backed surfaces at the requested device pixel
// ratio (the (dpr,0,0,dpr,0,0) transform spec.md section 6.4 mandates
// of every concrete Surface).
type Factory struct{}

func (Factory) CreateSurfaces(widthPx, heightPx int, dpr float64) ([3]sheetgrid.Surface, error) {
	var out [3]sheetgrid.Surface
	for i := range out {
		s := NewSurface(widthPx, heightPx)
		s.SetTransform(dpr, 0, 0, dpr, 0, 0)
		out[i] = s
	}
	return out, nil
}

// parseColor parses "#RRGGBB" or "#RRGGBBAA" into cairo's 0..1 RGBA
// components, grounded on color.go's ParseHexColor/parseHexNibble
// nibble-pair decoding (duplicated here rather than imported, since
// the gtk/qt adapters intentionally share no internal package, the
// same separation the teacher keeps between its own gtk/qt widgets).
func parseColor(s string) (r, g, b, a float64) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0, 1
	}
	s = s[1:]
	nib := func(c byte) int {
		switch {
		case c >= '0' && c <= '9':
			return int(c - '0')
		case c >= 'a' && c <= 'f':
			return int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10
		default:
			return 0
		}
	}
	byte2 := func(hi, lo byte) float64 { return float64(nib(hi)<<4|nib(lo)) / 255.0 }
	switch len(s) {
	case 6:
		return byte2(s[0], s[1]), byte2(s[2], s[3]), byte2(s[4], s[5]), 1
	case 8:
		return byte2(s[0], s[1]), byte2(s[2], s[3]), byte2(s[4], s[5]), byte2(s[6], s[7])
	default:
		return 0, 0, 0, 1
	}
}
