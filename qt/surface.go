// Package qt provides the Qt6/QPainter Surface and TextLayoutEngine
// implementations for sheetgrid, adapted from the teacher widget's
// QPainter drawing calls and QFontMetrics measurement.
package qt

import (
	"github.com/mappu/miqt/qt"
	"github.com/phroun/sheetgrid"
)

// Surface paints onto an owned QPixmap via its own QPainter, the same
// pixmap-plus-painter pairing the teacher widget uses for its
// pre-rendered glyph cache (qt.NewQPixmap2 + qt.NewQPainter2 against
// the pixmap's QPaintDevice). A host embedding this inside a live
// QWidget blits the pixmap in its own paintEvent; sheetgrid itself
// never touches Qt widgets, window chrome or input handling (out of
// scope per spec.md's Non-goals).
type Surface struct {
	pixmap  *qt.QPixmap
	painter *qt.QPainter
	w, h    int
}

// NewSurface allocates a w x h transparent QPixmap and a QPainter
// bound to it.
func NewSurface(w, h int) *Surface {
	pixmap := qt.NewQPixmap2(w, h)
	pixmap.FillWithFillColor(qt.NewQColor2(qt.Transparent))
	painter := qt.NewQPainter2(pixmap.QPaintDevice)
	return &Surface{pixmap: pixmap, painter: painter, w: w, h: h}
}

// Pixmap exposes the backing pixmap for a host's own blit onto a live
// QWidget.
func (s *Surface) Pixmap() *qt.QPixmap { return s.pixmap }

func (s *Surface) FillRect(r sheetgrid.Rect, colorHex string) {
	s.painter.FillRect5(int(r.X), int(r.Y), int(r.W+0.5), int(r.H+0.5), parseColor(colorHex))
}

func (s *Surface) ClearRect(r sheetgrid.Rect) {
	s.painter.Save()
	s.painter.SetCompositionMode(qt.QPainter__CompositionMode_Clear)
	s.painter.FillRect5(int(r.X), int(r.Y), int(r.W+0.5), int(r.H+0.5), qt.NewQColor2(qt.Transparent))
	s.painter.Restore()
}

func (s *Surface) Clip(r sheetgrid.Rect, fn func()) {
	s.painter.Save()
	s.painter.SetClipRect4(int(r.X), int(r.Y), int(r.W+0.5), int(r.H+0.5))
	fn()
	s.painter.Restore()
}

func (s *Surface) Stroke(points []sheetgrid.Point, style sheetgrid.StrokeStyle) {
	if len(points) < 2 {
		return
	}
	pen := qt.NewQPen3(parseColor(style.Color))
	pen.SetWidthF(style.Width)
	switch style.Cap {
	case sheetgrid.CapRound:
		pen.SetCapStyle(qt.RoundCap)
	case sheetgrid.CapSquare:
		pen.SetCapStyle(qt.SquareCap)
	default:
		pen.SetCapStyle(qt.FlatCap)
	}
	if len(style.Dash) > 0 {
		pen.SetStyle(qt.DashLine)
	}
	s.painter.SetPenWithPen(pen)
	for i := 1; i < len(points); i++ {
		s.painter.DrawLine3(qt.NewQPoint2(int(points[i-1].X), int(points[i-1].Y)), qt.NewQPoint2(int(points[i].X), int(points[i].Y)))
	}
}

func (s *Surface) FillText(text string, x, y float64, font sheetgrid.FontSpec, colorHex string) {
	s.painter.SetFont(qtFont(font))
	s.painter.SetPen(parseColor(colorHex))
	s.painter.DrawText3(int(x), int(y), text)
}

func (s *Surface) MeasureText(text string, font sheetgrid.FontSpec) (width, ascent, descent float64) {
	m := Measure(text, font)
	return m.Width, m.Ascent, m.Descent
}

func (s *Surface) DrawImage(img sheetgrid.DecodedImage, dst sheetgrid.Rect) {
	src, ok := img.(*Image)
	if !ok || src.pixmap == nil {
		return
	}
	s.painter.Save()
	s.painter.Translate2(dst.X, dst.Y)
	if src.w > 0 && src.h > 0 {
		s.painter.Scale(dst.W/float64(src.w), dst.H/float64(src.h))
	}
	s.painter.DrawPixmap9(0, 0, src.pixmap)
	s.painter.Restore()
}

func (s *Surface) SetTransform(a, b, c, d, e, f float64) {
	s.painter.SetTransform(qt.NewQTransform3(a, b, c, d, e, f))
}

func (s *Surface) Save()    { s.painter.Save() }
func (s *Surface) Restore() { s.painter.Restore() }

func (s *Surface) CreatePattern(img sheetgrid.DecodedImage, transform *[6]float64) sheetgrid.Pattern {
	src, ok := img.(*Image)
	if !ok {
		return nil
	}
	return &tilePattern{src: src}
}

type tilePattern struct{ src *Image }

func (p *tilePattern) FillRect(surf sheetgrid.Surface, r sheetgrid.Rect) {
	s, ok := surf.(*Surface)
	if !ok || p.src.pixmap == nil || p.src.w == 0 || p.src.h == 0 {
		return
	}
	for y := 0; y < int(r.H); y += p.src.h {
		for x := 0; x < int(r.W); x += p.src.w {
			dst := sheetgrid.Rect{X: r.X + float64(x), Y: r.Y + float64(y), W: float64(p.src.w), H: float64(p.src.h)}
			s.DrawImage(p.src, dst)
		}
	}
}

// Image wraps a decoded QPixmap. A host's ImageDecoder is responsible
// for turning cached image bytes into a QPixmap via QImage::loadFromData
// and handing it here, the same two-step decode-then-cache-pixmap path
// the teacher's glyphCache uses for pre-rendered glyphs.
type Image struct {
	pixmap *qt.QPixmap
	w, h   int
}

// NewImageFromPixmap wraps an already-decoded QPixmap.
func NewImageFromPixmap(pixmap *qt.QPixmap) *Image {
	return &Image{pixmap: pixmap, w: pixmap.Width(), h: pixmap.Height()}
}

func (i *Image) Width() int  { return i.w }
func (i *Image) Height() int { return i.h }
func (i *Image) Close() error {
	i.pixmap = nil
	return nil
}

// Factory implements sheetgrid.SurfaceFactory, producing three
// independent QPixmap-backed surfaces at the requested device pixel
// ratio.
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

// parseColor parses "#RRGGBB" or "#RRGGBBAA" into a *qt.QColor,
// grounded on widget.go's qt.NewQColor3(r,g,b) usage everywhere a
// resolved terminal color needs to become a Qt color; the alpha
// variant is new (sheetgrid's selection fill tokens carry alpha).
func parseColor(s string) *qt.QColor {
	if len(s) == 0 || s[0] != '#' {
		return qt.NewQColor2(qt.Black)
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
	byte2 := func(hi, lo byte) int { return nib(hi)<<4 | nib(lo) }
	switch len(s) {
	case 6:
		return qt.NewQColor3(byte2(s[0], s[1]), byte2(s[2], s[3]), byte2(s[4], s[5]))
	case 8:
		c := qt.NewQColor3(byte2(s[0], s[1]), byte2(s[2], s[3]), byte2(s[4], s[5]))
		c.SetAlpha(byte2(s[6], s[7]))
		return c
	default:
		return qt.NewQColor2(qt.Black)
	}
}

func qtFont(font sheetgrid.FontSpec) *qt.QFont {
	f := qt.NewQFont6(font.Family, int(font.SizePx))
	if font.Weight >= 600 {
		f.SetBold(true)
	}
	if font.Style == "italic" {
		f.SetItalic(true)
	}
	return f
}
