package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/render"
)

// circleSegments is the number of polygon edges used to approximate a circle.
const circleSegments = 32

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts   []SVGOption
	scale     float64
	converter bool
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
// The built-in rasteriser honours WithBackground only.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 1).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithConverter renders SVG and converts it with rsvg-convert instead of
// using the built-in rasteriser.
func WithConverter() PNGOption {
	return func(r *pngRenderer) { r.converter = true }
}

// RenderPNG paints c into a PNG image.
func RenderPNG(c *canvas.Canvas, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}
	if r.converter {
		return render.ToPNG(RenderSVG(c, r.svgOpts...), r.scale)
	}

	svg := newSVGRenderer(r.svgOpts...)
	w, h := c.Size()
	s := NewRasterSurface(w, h, r.scale, c.EmSize())
	defer s.Close()
	if visible(svg.background) {
		s.Fill(svg.background)
	}
	c.Paint(s)

	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	goRegularOnce sync.Once
	goRegular     *opentype.Font
)

func goRegularFont() *opentype.Font {
	goRegularOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err == nil {
			goRegular = f
		}
	})
	return goRegular
}

// RasterSurface is a [canvas.Surface] backed by an RGBA image. Drawing
// coordinates are canvas pixels; the image is scale times larger.
type RasterSurface struct {
	width, height int
	scale         float64
	img           *image.RGBA
	face          font.Face
}

// NewRasterSurface returns a transparent surface. Text uses Go Regular at
// emSize, falling back to a fixed 7x13 face if the font cannot be loaded.
func NewRasterSurface(width, height int, scale, emSize float64) *RasterSurface {
	if scale <= 0 {
		scale = 1
	}
	pw := int(math.Ceil(float64(width) * scale))
	ph := int(math.Ceil(float64(height) * scale))
	s := &RasterSurface{
		width:  width,
		height: height,
		scale:  scale,
		img:    image.NewRGBA(image.Rect(0, 0, pw, ph)),
		face:   basicfont.Face7x13,
	}
	if f := goRegularFont(); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    emSize * scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			s.face = face
		}
	}
	return s
}

func (s *RasterSurface) Size() (int, int) { return s.width, s.height }

// Image returns the backing image.
func (s *RasterSurface) Image() *image.RGBA { return s.img }

// Fill paints the whole surface with c.
func (s *RasterSurface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Close releases the font face.
func (s *RasterSurface) Close() error {
	if s.face != basicfont.Face7x13 {
		return s.face.Close()
	}
	return nil
}

func (s *RasterSurface) Context(clip canvas.Rect) canvas.DrawingContext {
	px := image.Rect(
		int(math.Floor(float64(clip.X)*s.scale)),
		int(math.Floor(float64(clip.Y)*s.scale)),
		int(math.Ceil(float64(clip.X+clip.W)*s.scale)),
		int(math.Ceil(float64(clip.Y+clip.H)*s.scale)),
	).Intersect(s.img.Bounds())
	return &rasterContext{s: s, clip: clip, px: px}
}

type rasterContext struct {
	s    *RasterSurface
	clip canvas.Rect
	px   image.Rectangle
}

func (c *rasterContext) Clip() canvas.Rect { return c.clip }

// rasterizer returns a rasteriser covering the clip rectangle. Its origin is
// the clip's top-left pixel.
func (c *rasterContext) rasterizer() *vector.Rasterizer {
	return vector.NewRasterizer(c.px.Dx(), c.px.Dy())
}

// pt maps canvas coordinates into rasteriser space.
func (c *rasterContext) pt(x, y float64) (float32, float32) {
	return float32(x*c.s.scale - float64(c.px.Min.X)), float32(y*c.s.scale - float64(c.px.Min.Y))
}

func (c *rasterContext) fill(z *vector.Rasterizer, col color.Color) {
	z.Draw(c.s.img, c.px, image.NewUniform(col), image.Point{})
}

func (c *rasterContext) strokeWidth(st canvas.Style) float64 {
	w := st.Width
	if w <= 0 {
		w = 1
	}
	return w * c.s.scale
}

// segment adds a quad covering the thickened segment. All quads share one
// winding so overlapping joints do not cancel.
func (c *rasterContext) segment(z *vector.Rasterizer, x0, y0, x1, y1, width float64) {
	ax, ay := c.pt(x0, y0)
	bx, by := c.pt(x1, y1)
	dx, dy := float64(bx-ax), float64(by-ay)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx := float32(-dy / l * width / 2)
	ny := float32(dx / l * width / 2)
	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(bx+nx, by+ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(ax-nx, ay-ny)
	z.ClosePath()
}

func (c *rasterContext) Line(x0, y0, x1, y1 float64, st canvas.Style) {
	if !visible(st.Stroke) || c.px.Empty() {
		return
	}
	z := c.rasterizer()
	c.segment(z, x0, y0, x1, y1, c.strokeWidth(st))
	c.fill(z, st.Stroke)
}

func (c *rasterContext) Polyline(xs, ys []float64, st canvas.Style) {
	n := min(len(xs), len(ys))
	if n < 2 || !visible(st.Stroke) || c.px.Empty() {
		return
	}
	z := c.rasterizer()
	w := c.strokeWidth(st)
	for i := 1; i < n; i++ {
		c.segment(z, xs[i-1], ys[i-1], xs[i], ys[i], w)
	}
	c.fill(z, st.Stroke)
}

func (c *rasterContext) Rect(r canvas.Rect, st canvas.Style) {
	if c.px.Empty() {
		return
	}
	x0, y0 := float64(r.X), float64(r.Y)
	x1, y1 := float64(r.X+r.W), float64(r.Y+r.H)
	if visible(st.Fill) {
		z := c.rasterizer()
		ax, ay := c.pt(x0, y0)
		bx, by := c.pt(x1, y1)
		z.MoveTo(ax, ay)
		z.LineTo(bx, ay)
		z.LineTo(bx, by)
		z.LineTo(ax, by)
		z.ClosePath()
		c.fill(z, st.Fill)
	}
	if visible(st.Stroke) {
		z := c.rasterizer()
		w := c.strokeWidth(st)
		c.segment(z, x0, y0, x1, y0, w)
		c.segment(z, x1, y0, x1, y1, w)
		c.segment(z, x1, y1, x0, y1, w)
		c.segment(z, x0, y1, x0, y0, w)
		c.fill(z, st.Stroke)
	}
}

func (c *rasterContext) Circle(cx, cy, r float64, st canvas.Style) {
	if c.px.Empty() || r <= 0 {
		return
	}
	if visible(st.Fill) {
		z := c.rasterizer()
		c.ring(z, cx, cy, r, false)
		c.fill(z, st.Fill)
	}
	if visible(st.Stroke) {
		half := c.strokeWidth(st) / 2 / c.s.scale
		z := c.rasterizer()
		c.ring(z, cx, cy, r+half, false)
		if r > half {
			c.ring(z, cx, cy, r-half, true)
		}
		c.fill(z, st.Stroke)
	}
}

// ring adds a circle polygon. Reversed circles subtract from the coverage
// of a forward one.
func (c *rasterContext) ring(z *vector.Rasterizer, cx, cy, r float64, reverse bool) {
	for i := 0; i <= circleSegments; i++ {
		k := i
		if reverse {
			k = circleSegments - i
		}
		a := 2 * math.Pi * float64(k) / circleSegments
		x, y := c.pt(cx+r*math.Cos(a), cy+r*math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func (c *rasterContext) Text(x, y float64, text string, a canvas.Anchor, st canvas.Style) {
	col := st.Fill
	if col == nil {
		col = st.Stroke
	}
	if !visible(col) || text == "" {
		return
	}
	px := x * c.s.scale
	switch adv := font.MeasureString(c.s.face, text); a {
	case canvas.AnchorMiddle:
		px -= float64(adv) / 128
	case canvas.AnchorEnd:
		px -= float64(adv) / 64
	}
	d := &font.Drawer{
		Dst:  c.s.img,
		Src:  image.NewUniform(col),
		Face: c.s.face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(y * c.s.scale * 64)},
	}
	d.DrawString(text)
}
