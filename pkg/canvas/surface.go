package canvas

import "image/color"

// Anchor is the horizontal alignment of text relative to its point.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Style controls stroke and fill. A nil color disables that part.
type Style struct {
	Stroke color.Color
	Fill   color.Color
	Width  float64
}

// DrawingContext draws into one clip rectangle of a surface. Coordinates
// are canvas pixels, not clip-relative. Text is not clipped, so labels may
// sit in the margin around a cell.
type DrawingContext interface {
	Clip() Rect
	Line(x0, y0, x1, y1 float64, s Style)
	Polyline(xs, ys []float64, s Style)
	Rect(r Rect, s Style)
	Circle(cx, cy, r float64, s Style)
	Text(x, y float64, text string, a Anchor, s Style)
}

// Surface is a render target the size of the canvas.
type Surface interface {
	Size() (width, height int)
	Context(clip Rect) DrawingContext
}

// Paint draws every registered Painter into its cell on s, in name order.
// Components without a resolvable binding are skipped.
func (c *Canvas) Paint(s Surface) int {
	n := 0
	for _, comp := range c.Components() {
		p, ok := comp.(Painter)
		if !ok {
			continue
		}
		b := c.binding(comp)
		if b == nil {
			continue
		}
		r, err := b.resolve()
		if err != nil {
			c.logger.Debug("not painting component", "component", comp.Name(), "err", err)
			continue
		}
		p.Paint(s.Context(r))
		n++
	}
	return n
}
