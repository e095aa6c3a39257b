// Package software provides a headless, cgo-free Surface and
// TextLayoutEngine pair over image.RGBA, for hosts with no GTK/Qt
// available and for the package's own tests.
package software

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/phroun/sheetgrid"
)

// Surface is a software raster target backed by a single image.RGBA. It
// implements sheetgrid.Surface directly against Go's image/draw
// primitives rather than any GUI toolkit, the way the teacher's own
// PTY-only build falls back to plain terminal escape sequences when no
// GTK/Qt widget is attached.
type Surface struct {
	img   *image.RGBA
	clip  image.Rectangle
	saved []savedState
	xx, yx, xy, yy, x0, y0 float64
}

type savedState struct {
	clip                   image.Rectangle
	xx, yx, xy, yy, x0, y0 float64
}

// NewSurface allocates a w x h software surface, identity-transformed.
func NewSurface(w, h int) *Surface {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Surface{img: img, clip: img.Bounds(), xx: 1, yy: 1}
}

// Image exposes the backing bitmap for snapshotting in tests.
func (s *Surface) Image() *image.RGBA { return s.img }

func (s *Surface) apply(x, y float64) (float64, float64) {
	return s.xx*x + s.xy*y + s.x0, s.yx*x + s.yy*y + s.y0
}

func (s *Surface) FillRect(r sheetgrid.Rect, colorHex string) {
	c := parseColor(colorHex)
	x0, y0 := s.apply(r.X, r.Y)
	x1, y1 := s.apply(r.X+r.W, r.Y+r.H)
	rect := normRect(x0, y0, x1, y1).Intersect(s.clip)
	if rect.Empty() {
		return
	}
	draw.Draw(s.img, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func (s *Surface) ClearRect(r sheetgrid.Rect) {
	x0, y0 := s.apply(r.X, r.Y)
	x1, y1 := s.apply(r.X+r.W, r.Y+r.H)
	rect := normRect(x0, y0, x1, y1).Intersect(s.clip)
	if rect.Empty() {
		return
	}
	draw.Draw(s.img, rect, image.Transparent, image.Point{}, draw.Src)
}

func (s *Surface) Clip(r sheetgrid.Rect, fn func()) {
	prevClip := s.clip
	x0, y0 := s.apply(r.X, r.Y)
	x1, y1 := s.apply(r.X+r.W, r.Y+r.H)
	s.clip = normRect(x0, y0, x1, y1).Intersect(prevClip)
	fn()
	s.clip = prevClip
}

// Stroke draws a polyline by stamping a width-sized square (at least
// 1px) at each step along every segment, good enough for a headless test surface that only
// needs to assert "something was drawn here", not pixel-perfect AA.
func (s *Surface) Stroke(points []sheetgrid.Point, style sheetgrid.StrokeStyle) {
	if len(points) < 2 {
		return
	}
	c := parseColor(style.Color)
	width := style.Width
	if width < 1 {
		width = 1
	}
	for i := 1; i < len(points); i++ {
		x0, y0 := s.apply(points[i-1].X, points[i-1].Y)
		x1, y1 := s.apply(points[i].X, points[i].Y)
		s.drawLine(x0, y0, x1, y1, width, c)
	}
}

func (s *Surface) drawLine(x0, y0, x1, y1, width float64, c color.Color) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	half := width / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := x0 + (x1-x0)*t
		py := y0 + (y1-y0)*t
		rect := normRect(px-half, py-half, px+half, py+half).Intersect(s.clip)
		if rect.Empty() {
			continue
		}
		draw.Draw(s.img, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
	}
}

// FillText draws a coarse text baseline marker: a horizontal bar sized
// to the engine's own measurement, since no glyph rasterizer is wired
// here (see textlayout.go) — real glyph shapes are a toolkit concern,
// this surface exists for headless layout/dirty-rect assertions, not
// pixel-identical font rendering.
func (s *Surface) FillText(text string, x, y float64, font sheetgrid.FontSpec, colorHex string) {
	if text == "" {
		return
	}
	m := Measure(text, font)
	c := parseColor(colorHex)
	x0, y0 := s.apply(x, y-m.Ascent)
	x1, y1 := s.apply(x+m.Width, y+m.Descent)
	rect := normRect(x0, y0, x1, y1).Intersect(s.clip)
	if rect.Empty() {
		return
	}
	draw.Draw(s.img, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}

func (s *Surface) MeasureText(text string, font sheetgrid.FontSpec) (width, ascent, descent float64) {
	m := Measure(text, font)
	return m.Width, m.Ascent, m.Descent
}

func (s *Surface) DrawImage(img sheetgrid.DecodedImage, dst sheetgrid.Rect) {
	src, ok := img.(*Image)
	x0, y0 := s.apply(dst.X, dst.Y)
	x1, y1 := s.apply(dst.X+dst.W, dst.Y+dst.H)
	rect := normRect(x0, y0, x1, y1).Intersect(s.clip)
	if rect.Empty() {
		return
	}
	if !ok || src.img == nil {
		draw.Draw(s.img, rect, &image.Uniform{C: color.RGBA{A: 64}}, image.Point{}, draw.Over)
		return
	}
	// Nearest-neighbour scale from the source bounds onto (x0,y0)-(x1,y1).
	sb := src.img.Bounds()
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		sy := sb.Min.Y + int((float64(py)+0.5-y0)/(y1-y0)*float64(sb.Dy()))
		for px := rect.Min.X; px < rect.Max.X; px++ {
			sx := sb.Min.X + int((float64(px)+0.5-x0)/(x1-x0)*float64(sb.Dx()))
			if sx >= sb.Min.X && sx < sb.Max.X && sy >= sb.Min.Y && sy < sb.Max.Y {
				draw.Draw(s.img, image.Rect(px, py, px+1, py+1), src.img, image.Pt(sx, sy), draw.Over)
			}
		}
	}
}

func (s *Surface) SetTransform(a, b, c, d, e, f float64) {
	s.xx, s.yx, s.xy, s.yy, s.x0, s.y0 = a, b, c, d, e, f
}

func (s *Surface) Save() {
	s.saved = append(s.saved, savedState{s.clip, s.xx, s.yx, s.xy, s.yy, s.x0, s.y0})
}

func (s *Surface) Restore() {
	if len(s.saved) == 0 {
		return
	}
	st := s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	s.clip = st.clip
	s.xx, s.yx, s.xy, s.yy, s.x0, s.y0 = st.xx, st.yx, st.xy, st.yy, st.x0, st.y0
}

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
	if !ok || p.src.img == nil {
		return
	}
	tw, th := p.src.img.Bounds().Dx(), p.src.img.Bounds().Dy()
	if tw == 0 || th == 0 {
		return
	}
	for y := 0; y < int(r.H); y += th {
		for x := 0; x < int(r.W); x += tw {
			dst := sheetgrid.Rect{X: r.X + float64(x), Y: r.Y + float64(y), W: float64(tw), H: float64(th)}
			s.DrawImage(p.src, dst)
		}
	}
}

func normRect(x0, y0, x1, y1 float64) image.Rectangle {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
}

// parseColor reads "#rrggbb" or "#rrggbbaa"; anything else is opaque black.
func parseColor(s string) color.Color {
	if (len(s) != 7 && len(s) != 9) || s[0] != '#' {
		return color.RGBA{A: 255}
	}
	v := [4]uint8{3: 255}
	for i := 1; i < len(s); i++ {
		n := s[i]|0x20 - '0'
		if n > 9 {
			n -= 'a' - '0' - 10
		}
		v[(i-1)/2] = v[(i-1)/2]<<4 | n&15
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

// Image is the software package's DecodedImage: a plain image.Image
// wrapped to satisfy sheetgrid.DecodedImage.
type Image struct {
	img image.Image
}

// NewImage wraps a decoded image.Image for use with Surface.DrawImage
// and Surface.CreatePattern.
func NewImage(img image.Image) *Image { return &Image{img: img} }

func (i *Image) Width() int  { return i.img.Bounds().Dx() }
func (i *Image) Height() int { return i.img.Bounds().Dy() }
func (i *Image) Close() error {
	i.img = nil
	return nil
}

// Factory implements sheetgrid.SurfaceFactory, producing three
// independent software surfaces (background/content/selection) scaled
// for the given device pixel ratio, mirroring the (dpr,0,0,dpr,0,0)
// transform spec.md section 6.4 requires of every concrete Surface
// implementation.
type Factory struct{}

func (Factory) CreateSurfaces(widthPx, heightPx int, dpr float64) ([3]sheetgrid.Surface, error) {
	var out [3]sheetgrid.Surface
	for i := range out {
		surf := NewSurface(widthPx, heightPx)
		surf.SetTransform(dpr, 0, 0, dpr, 0, 0)
		out[i] = surf
	}
	return out, nil
}
