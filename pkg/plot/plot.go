package plot

import (
	"image/color"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridplot/pkg/axis"
	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/errors"
)

// Plot is a component that draws renderers through an x and a y axis.
type Plot struct {
	name   string
	host   Host
	logger *log.Logger
	x, y   *Axis

	// Title is drawn above the plot area.
	Title string
	// Background fills the plot area when non-nil.
	Background color.Color

	renderers []Renderer
	bounds    canvas.Rect
	repaints  int

	// Paint may run for several sinks at once.
	mu   sync.Mutex
	last Stats
}

// NewPlot returns a plot drawing through x and y. The plot is marked
// dirty whenever either axis changes its transform.
func NewPlot(name string, host Host, x, y *Axis, logger *log.Logger) (*Plot, error) {
	if x == nil || y == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "plot %q needs two axes", name)
	}
	if x.Direction() != Horizontal || y.Direction() != Vertical {
		return nil, errors.New(errors.ErrCodeInvalidInput, "plot %q: axes must be horizontal then vertical", name)
	}
	p := &Plot{name: name, host: host, logger: logger, x: x, y: y}
	x.Watch(func(axis.Transform) { p.axisChanged() })
	y.Watch(func(axis.Transform) { p.axisChanged() })
	return p, nil
}

func (p *Plot) axisChanged() {
	p.host.MarkDirty(p)
}

// Name implements canvas.Component.
func (p *Plot) Name() string { return p.name }

// Axes returns the plot's axes.
func (p *Plot) Axes() (x, y *Axis) { return p.x, p.y }

// Add appends a renderer.
func (p *Plot) Add(r Renderer) {
	if f, ok := r.(*Function); ok {
		f.attach(p)
	}
	p.renderers = append(p.renderers, r)
	p.host.MarkDirty(p)
}

// Renderers returns the plot's renderers in drawing order.
func (p *Plot) Renderers() []Renderer { return p.renderers }

// Bounds returns the rectangle from the last layout.
func (p *Plot) Bounds() canvas.Rect { return p.bounds }

// LastStats returns what the last Paint drew and skipped.
func (p *Plot) LastStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Relayout implements canvas.Component. Renderers that precompute
// geometry are restarted when both axes are ready.
func (p *Plot) Relayout(r canvas.Rect) error {
	p.bounds = r
	if !p.x.Ready() || !p.y.Ready() {
		return nil
	}
	x, y := p.x.Transform(), p.y.Transform()
	for _, rr := range p.renderers {
		if u, ok := rr.(Updater); ok {
			u.Update(x, y)
		}
	}
	return nil
}

// Repaint implements canvas.Component.
func (p *Plot) Repaint() { p.repaints++ }

// Repaints counts Repaint calls.
func (p *Plot) Repaints() int { return p.repaints }

var frameStyle = canvas.Style{Stroke: color.Gray{Y: 0x60}, Width: 1}

// Paint draws the frame, the title and every renderer. Points a renderer
// cannot place are counted, not fatal.
func (p *Plot) Paint(dc canvas.DrawingContext) {
	r := dc.Clip()
	if p.Background != nil {
		dc.Rect(r, canvas.Style{Fill: p.Background})
	}
	dc.Rect(r, frameStyle)
	if p.Title != "" {
		dc.Text(float64(r.X)+float64(r.W)/2, float64(r.Y)-6, p.Title, canvas.AnchorMiddle, axisStyle)
	}
	var total Stats
	if p.x.Ready() && p.y.Ready() {
		x, y := p.x.Transform(), p.y.Transform()
		for _, rr := range p.renderers {
			total.Add(rr.Render(dc, x, y))
		}
	}
	if total.Skipped > 0 && p.logger != nil {
		p.logger.Debug("skipped unplottable points", "plot", p.name, "skipped", total.Skipped)
	}
	p.mu.Lock()
	p.last = total
	p.mu.Unlock()
}
