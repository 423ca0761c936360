package plot

import (
	"image/color"
	"strconv"

	"github.com/matzehuels/gridplot/pkg/axis"
	"github.com/matzehuels/gridplot/pkg/canvas"
)

// Direction says which way an axis runs.
type Direction int

const (
	// Horizontal axes take their pixels from the column of their cell.
	Horizontal Direction = iota
	// Vertical axes take their pixels from the row of their cell.
	Vertical
)

func (d Direction) String() string {
	if d == Horizontal {
		return "x"
	}
	return "y"
}

// DefaultMaxTicks is the major tick budget of a new axis.
const DefaultMaxTicks = 6

// Axis is a component that owns a data-to-pixel transform.
type Axis struct {
	name     string
	host     Host
	dir      Direction
	kind     axis.Kind
	min, max float64
	inverted bool

	// Label is drawn next to the axis.
	Label string
	// MaxTicks bounds the number of major ticks.
	MaxTicks int

	tr       axis.Transform
	ready    bool
	major    []float64
	watchers []func(axis.Transform)
}

// NewAxis returns an axis over [min, max]. Vertical axes are inverted,
// so larger values are drawn higher up.
func NewAxis(name string, host Host, dir Direction, kind axis.Kind, min, max float64) (*Axis, error) {
	a := &Axis{
		name:     name,
		host:     host,
		dir:      dir,
		kind:     kind,
		inverted: dir == Vertical,
		MaxTicks: DefaultMaxTicks,
	}
	if err := a.setData(min, max); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Axis) setData(min, max float64) error {
	probe := axis.Transform{Kind: a.kind}.WithData(min, max)
	if err := probe.Validate(); err != nil {
		return err
	}
	a.min, a.max = probe.DataMin, probe.DataMax
	return nil
}

// Name implements canvas.Component.
func (a *Axis) Name() string { return a.name }

// Direction returns which way the axis runs.
func (a *Axis) Direction() Direction { return a.dir }

// SetInverted flips the polarity and schedules a re-layout.
func (a *Axis) SetInverted(inverted bool) {
	a.inverted = inverted
	a.host.MarkDirty(a)
}

// SetRange changes the data interval and schedules a re-layout.
func (a *Axis) SetRange(min, max float64) error {
	if err := a.setData(min, max); err != nil {
		return err
	}
	a.host.MarkDirty(a)
	return nil
}

// Range returns the data interval.
func (a *Axis) Range() (min, max float64) { return a.min, a.max }

// Transform returns the transform from the last layout. It is the zero,
// degenerate transform until the axis has been laid out.
func (a *Axis) Transform() axis.Transform { return a.tr }

// Ready reports whether the axis has been laid out.
func (a *Axis) Ready() bool { return a.ready }

// Ticks returns the major ticks from the last layout.
func (a *Axis) Ticks() []float64 { return a.major }

// Watch calls fn with the new transform whenever it changes.
func (a *Axis) Watch(fn func(axis.Transform)) {
	a.watchers = append(a.watchers, fn)
}

// Relayout implements canvas.Component.
func (a *Axis) Relayout(r canvas.Rect) error {
	px := canvas.Bounds{Min: r.X, Max: r.X + r.W}
	if a.dir == Vertical {
		px = canvas.Bounds{Min: r.Y, Max: r.Y + r.H}
	}
	tr, err := axis.New(a.kind, a.min, a.max, px, a.inverted)
	if err != nil {
		return err
	}
	if major, _, err := tr.Ticks(max(a.MaxTicks, 1)); err == nil {
		a.major = major
	}
	changed := !a.ready || tr != a.tr
	a.tr, a.ready = tr, true
	if changed {
		for _, fn := range a.watchers {
			fn(tr)
		}
	}
	return nil
}

// Repaint implements canvas.Component. Painting happens in Paint.
func (a *Axis) Repaint() {}

var axisStyle = canvas.Style{Stroke: color.Black, Fill: color.Black, Width: 1}

// Paint draws the axis line along the bottom (x) or left (y) of its cell,
// with major ticks and their labels outside the cell.
func (a *Axis) Paint(dc canvas.DrawingContext) {
	if !a.ready {
		return
	}
	r := dc.Clip()
	const tick = 5
	if a.dir == Horizontal {
		y := float64(r.Y + r.H)
		dc.Line(float64(r.X), y, float64(r.X+r.W), y, axisStyle)
		for _, v := range a.major {
			x, err := a.tr.Forward(v)
			if err != nil {
				continue
			}
			dc.Line(x, y, x, y+tick, axisStyle)
			dc.Text(x, y+tick+12, formatTick(v), canvas.AnchorMiddle, axisStyle)
		}
		if a.Label != "" {
			dc.Text(float64(r.X)+float64(r.W)/2, y+tick+28, a.Label, canvas.AnchorMiddle, axisStyle)
		}
		return
	}
	x := float64(r.X)
	dc.Line(x, float64(r.Y), x, float64(r.Y+r.H), axisStyle)
	for _, v := range a.major {
		y, err := a.tr.Forward(v)
		if err != nil {
			continue
		}
		dc.Line(x-tick, y, x, y, axisStyle)
		dc.Text(x-tick-3, y+4, formatTick(v), canvas.AnchorEnd, axisStyle)
	}
	if a.Label != "" {
		dc.Text(x-tick-3, float64(r.Y)-6, a.Label, canvas.AnchorEnd, axisStyle)
	}
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
