package sheetgrid

import "time"

// DashPattern is an alternating on/off stroke pattern in device pixels.
type DashPattern []float64

// LineCap mirrors the raster surface's line cap styles.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// StrokeStyle bundles the stroke parameters a border/decoration pass
// needs from the surface.
type StrokeStyle struct {
	Color string
	Width float64
	Dash  DashPattern
	Cap   LineCap
}

// FontSpec is the font description handed to both the raster surface
// (for fillText/measureText fallbacks) and the TextLayoutEngine.
type FontSpec struct {
	Family string
	SizePx float64
	Weight int
	Style  string // "normal" | "italic"
}

// Surface is the 2D raster capability the core paints through. It
// corresponds to spec.md section 6.4 and section 9's "Surface capability
// trait" design note — a real implementation wraps a canvas 2D context
// (gtk: cairo.Context, qt: *qt.QPainter) or, headlessly, an in-memory
// raster buffer.
type Surface interface {
	FillRect(r Rect, color string)
	ClearRect(r Rect)
	Clip(r Rect, fn func())
	Stroke(points []Point, style StrokeStyle)
	FillText(text string, x, y float64, font FontSpec, color string)
	MeasureText(text string, font FontSpec) (width, ascent, descent float64)
	DrawImage(img DecodedImage, dst Rect)
	SetTransform(a, b, c, d, e, f float64)
	Save()
	Restore()
	CreatePattern(img DecodedImage, transform *[6]float64) Pattern
}

// Point is a 2D coordinate used by Stroke's polyline/segment list.
type Point struct{ X, Y float64 }

// Pattern is an opaque tiling fill created by Surface.CreatePattern.
type Pattern interface {
	FillRect(s Surface, r Rect)
}

// DecodedImage is the bitmap handed to Surface.DrawImage, already
// through the ImageCache's size guards.
type DecodedImage interface {
	Width() int
	Height() int
	Close() error
}

// SurfaceFactory creates the three DPR-scaled layered surfaces
// GridRenderer.attach expects (background/content/selection), applying
// the (dpr,0,0,dpr,0,0) transform and disabling image smoothing per
// spec.md section 6.4.
type SurfaceFactory interface {
	CreateSurfaces(widthPx, heightPx int, dpr float64) ([3]Surface, error)
}

// Clock abstracts performance.now()-style monotonic time.
type Clock interface {
	NowMs() float64
}

// systemClock is the default Clock, used unless a host injects another.
type systemClock struct{}

func (systemClock) NowMs() float64 {
	return float64(time.Now().UnixNano()) / 1e6
}

// SystemClock returns the default wall-clock Clock.
func SystemClock() Clock { return systemClock{} }

// FrameScheduler abstracts requestAnimationFrame: Schedule arranges for fn
// to run once, as soon as the next frame tick is appropriate, and the
// cancel func it returns aborts that call if it hasn't fired yet.
type FrameScheduler interface {
	Schedule(fn func()) (cancel func())
}

// TextDecoderFactory abstracts platform byte-decoding utilities (the
// teacher's "document.createElement"/TextDecoder capability-trait
// analogue from spec.md section 9) used by the SVG header-guard path to
// decode XML text.
type TextDecoderFactory interface {
	Decode(b []byte) string
}

type utf8Decoder struct{}

func (utf8Decoder) Decode(b []byte) string { return string(b) }

// DefaultTextDecoderFactory returns the stdlib UTF-8 decoder.
func DefaultTextDecoderFactory() TextDecoderFactory { return utf8Decoder{} }
