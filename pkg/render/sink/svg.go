package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"strings"

	"github.com/matzehuels/gridplot/pkg/canvas"
)

const gridCSS = `
    .cell { fill: none; stroke: #4c8bf5; stroke-width: 1; stroke-dasharray: 4 3; }
    .hot-line { stroke: #e8710a; stroke-width: 1; opacity: 0.6; }
    .grid-label { font-size: 9px; fill: #4c8bf5; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	grid       bool
	title      string
	background color.Color
	fontFamily string
}

// WithGrid overlays cell outlines and hot lines.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.grid = true } }

// WithTitle sets the document <title>.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithBackground fills the canvas before painting. Nil leaves it transparent.
func WithBackground(c color.Color) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithFontFamily sets the font-family used for text.
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{background: color.White, fontFamily: "sans-serif"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG paints every registered component of c into an SVG document.
// Call it once c is idle; components that have not laid out yet paint
// whatever state they hold.
func RenderSVG(c *canvas.Canvas, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	s := NewSVGSurface(c.Size())
	s.fontFamily = r.fontFamily
	s.fontSize = c.EmSize()

	if visible(r.background) {
		w, h := c.Size()
		s.Context(canvas.Rect{W: w, H: h}).Rect(canvas.Rect{W: w, H: h}, canvas.Style{Fill: r.background})
	}
	c.Paint(s)
	if r.grid {
		renderGrid(&s.body, c.Snapshot())
	}
	return s.document(r.title, r.grid)
}

func renderGrid(buf *bytes.Buffer, l canvas.Layout) {
	buf.WriteString(`  <g class="grid">` + "\n")
	for _, cell := range l.Cells {
		rc := cell.Rect
		fmt.Fprintf(buf, `    <rect class="cell" x="%d" y="%d" width="%d" height="%d"><title>%s</title></rect>`+"\n",
			rc.X, rc.Y, rc.W, rc.H, escapeXML(cell.Row+" × "+cell.Column))
	}
	for _, h := range l.HotLines {
		if h.Orientation == canvas.Row.String() {
			fmt.Fprintf(buf, `    <line class="hot-line" x1="0" y1="%d" x2="%d" y2="%d"/>`+"\n", h.Coord, l.Width, h.Coord)
		} else {
			fmt.Fprintf(buf, `    <line class="hot-line" x1="%d" y1="0" x2="%d" y2="%d"/>`+"\n", h.Coord, h.Coord, l.Height)
		}
	}
	for _, p := range l.Positions {
		if p.Orientation == canvas.Row.String() {
			fmt.Fprintf(buf, `    <text class="grid-label" x="2" y="%d">%s</text>`+"\n", p.Bounds.Min+10, escapeXML(p.Name))
		} else {
			fmt.Fprintf(buf, `    <text class="grid-label" x="%d" y="10">%s</text>`+"\n", p.Bounds.Min+2, escapeXML(p.Name))
		}
	}
	buf.WriteString("  </g>\n")
}

// SVGSurface is a [canvas.Surface] that accumulates SVG elements.
type SVGSurface struct {
	width, height int
	fontFamily    string
	fontSize      float64
	defs          bytes.Buffer
	body          bytes.Buffer
	clips         map[canvas.Rect]string
}

// NewSVGSurface returns an empty surface of the given size.
func NewSVGSurface(width, height int) *SVGSurface {
	return &SVGSurface{
		width:      width,
		height:     height,
		fontFamily: "sans-serif",
		fontSize:   canvas.DefaultEmSize,
		clips:      make(map[canvas.Rect]string),
	}
}

func (s *SVGSurface) Size() (int, int) { return s.width, s.height }

// Context returns a drawing context clipped to clip. Contexts for the same
// rectangle share one clip path.
func (s *SVGSurface) Context(clip canvas.Rect) canvas.DrawingContext {
	id, ok := s.clips[clip]
	if !ok {
		id = fmt.Sprintf("clip%d", len(s.clips))
		s.clips[clip] = id
		fmt.Fprintf(&s.defs, `    <clipPath id="%s"><rect x="%d" y="%d" width="%d" height="%d"/></clipPath>`+"\n",
			id, clip.X, clip.Y, clip.W, clip.H)
	}
	return &svgContext{s: s, clip: clip, clipID: id}
}

// Bytes returns the complete SVG document.
func (s *SVGSurface) Bytes() []byte { return s.document("", false) }

func (s *SVGSurface) document(title string, grid bool) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" font-family="%s" font-size="%.1f">`+"\n",
		s.width, s.height, s.width, s.height, escapeXML(s.fontFamily), s.fontSize)
	if title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(title))
	}
	if s.defs.Len() > 0 {
		buf.WriteString("  <defs>\n")
		buf.Write(s.defs.Bytes())
		buf.WriteString("  </defs>\n")
	}
	if grid {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", gridCSS)
	}
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

type svgContext struct {
	s      *SVGSurface
	clip   canvas.Rect
	clipID string
}

func (c *svgContext) Clip() canvas.Rect { return c.clip }

func (c *svgContext) Line(x0, y0, x1, y1 float64, st canvas.Style) {
	fmt.Fprintf(&c.s.body, `  <line x1="%s" y1="%s" x2="%s" y2="%s"%s%s/>`+"\n",
		num(x0), num(y0), num(x1), num(y1), strokeAttrs(st), c.clipAttr())
}

func (c *svgContext) Polyline(xs, ys []float64, st canvas.Style) {
	n := min(len(xs), len(ys))
	if n < 2 {
		return
	}
	var pts strings.Builder
	for i := range n {
		if i > 0 {
			pts.WriteByte(' ')
		}
		pts.WriteString(num(xs[i]))
		pts.WriteByte(',')
		pts.WriteString(num(ys[i]))
	}
	fmt.Fprintf(&c.s.body, `  <polyline points="%s" fill="none"%s%s/>`+"\n", pts.String(), strokeAttrs(st), c.clipAttr())
}

func (c *svgContext) Rect(r canvas.Rect, st canvas.Style) {
	fmt.Fprintf(&c.s.body, `  <rect x="%d" y="%d" width="%d" height="%d"%s%s%s/>`+"\n",
		r.X, r.Y, r.W, r.H, fillAttrs(st), strokeAttrs(st), c.clipAttr())
}

func (c *svgContext) Circle(cx, cy, r float64, st canvas.Style) {
	fmt.Fprintf(&c.s.body, `  <circle cx="%s" cy="%s" r="%s"%s%s%s/>`+"\n",
		num(cx), num(cy), num(r), fillAttrs(st), strokeAttrs(st), c.clipAttr())
}

func (c *svgContext) Text(x, y float64, text string, a canvas.Anchor, st canvas.Style) {
	fill := st.Fill
	if fill == nil {
		fill = st.Stroke
	}
	paint, op := svgPaint(fill)
	fmt.Fprintf(&c.s.body, `  <text x="%s" y="%s" text-anchor="%s" fill="%s"%s>%s</text>`+"\n",
		num(x), num(y), anchorName(a), paint, opacityAttr("fill-opacity", op), escapeXML(text))
}

func (c *svgContext) clipAttr() string {
	return fmt.Sprintf(` clip-path="url(#%s)"`, c.clipID)
}

func strokeAttrs(st canvas.Style) string {
	if !visible(st.Stroke) {
		return ` stroke="none"`
	}
	paint, op := svgPaint(st.Stroke)
	w := st.Width
	if w <= 0 {
		w = 1
	}
	return fmt.Sprintf(` stroke="%s" stroke-width="%s"%s`, paint, num(w), opacityAttr("stroke-opacity", op))
}

func fillAttrs(st canvas.Style) string {
	if !visible(st.Fill) {
		return ` fill="none"`
	}
	paint, op := svgPaint(st.Fill)
	return fmt.Sprintf(` fill="%s"%s`, paint, opacityAttr("fill-opacity", op))
}

func opacityAttr(name string, op float64) string {
	if op >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%.2f"`, name, op)
}

func anchorName(a canvas.Anchor) string {
	switch a {
	case canvas.AnchorMiddle:
		return "middle"
	case canvas.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
