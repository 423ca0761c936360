package document

import (
	"image/color"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridplot/pkg/axis"
	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/plot"
)

// Scene is a built document: a canvas with its components registered and
// bound. Nothing has been laid out yet; call Canvas.WaitUntilIdle.
type Scene struct {
	Doc    *Document
	Canvas *canvas.Canvas
	Axes   map[string]*plot.Axis
	Plots  map[string]*plot.Plot
}

// seriesPalette colors series and functions that do not set one.
var seriesPalette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// Build creates the canvas described by d. The logger may be nil.
func Build(d *Document, logger *log.Logger, opts ...canvas.Option) (*Scene, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	all := []canvas.Option{canvas.WithLogger(logger)}
	if d.EmSize > 0 {
		all = append(all, canvas.WithEmSize(d.EmSize))
	}
	c, err := canvas.New(d.Width, d.Height, append(all, opts...)...)
	if err != nil {
		return nil, err
	}

	defs := make([]canvas.PositionDef, 0, len(d.Rows)+len(d.Columns))
	for _, r := range d.Rows {
		defs = append(defs, canvas.PositionDef{Name: r.Name, Orientation: canvas.Row, Min: r.Min, Max: r.Max, Base: r.RelativeTo})
	}
	for _, col := range d.Columns {
		defs = append(defs, canvas.PositionDef{Name: col.Name, Orientation: canvas.Column, Min: col.Min, Max: col.Max, Base: col.RelativeTo})
	}
	if _, err := c.AddPositions(defs); err != nil {
		return nil, err
	}

	s := &Scene{
		Doc:    d,
		Canvas: c,
		Axes:   make(map[string]*plot.Axis, len(d.Axes)),
		Plots:  make(map[string]*plot.Plot, len(d.Plots)),
	}
	for _, ad := range d.Axes {
		a, err := buildAxis(c, ad)
		if err != nil {
			return nil, err
		}
		if err := s.attach(a, ad.Row, ad.Column); err != nil {
			return nil, err
		}
		s.Axes[ad.Name] = a
	}
	for _, pd := range d.Plots {
		p, err := plot.NewPlot(pd.Name, c, s.Axes[pd.XAxis], s.Axes[pd.YAxis], c.Logger())
		if err != nil {
			return nil, err
		}
		p.Title = pd.Title
		p.Background, _ = ParseColor(pd.Background)
		n := 0
		for _, sd := range pd.Series {
			p.Add(buildSeries(sd, n))
			n++
		}
		for _, fd := range pd.Functions {
			p.Add(buildFunction(c, fd, n))
			n++
		}
		if err := s.attach(p, pd.Row, pd.Column); err != nil {
			return nil, err
		}
		s.Plots[pd.Name] = p
	}
	return s, nil
}

func (s *Scene) attach(comp canvas.Component, row, col string) error {
	if err := s.Canvas.Register(comp); err != nil {
		return err
	}
	r, _ := s.Canvas.Position(row)
	cl, _ := s.Canvas.Position(col)
	return s.Canvas.Bind(comp, r, cl)
}

func buildAxis(c *canvas.Canvas, ad AxisDoc) (*plot.Axis, error) {
	dir, err := ParseDirection(ad.Direction)
	if err != nil {
		return nil, err
	}
	kind, err := axis.ParseKind(ad.Scale)
	if err != nil {
		return nil, err
	}
	a, err := plot.NewAxis(ad.Name, c, dir, kind, ad.Min, ad.Max)
	if err != nil {
		return nil, err
	}
	a.Label = ad.Label
	if ad.Ticks > 0 {
		a.MaxTicks = ad.Ticks
	}
	if ad.Inverted != nil {
		a.SetInverted(*ad.Inverted)
	}
	return a, nil
}

func style(spec string, width float64, n int) canvas.Style {
	c, _ := ParseColor(spec)
	if c == nil {
		c = seriesPalette[n%len(seriesPalette)]
	}
	if width <= 0 {
		width = 1.5
	}
	return canvas.Style{Stroke: c, Fill: c, Width: width}
}

func buildSeries(sd SeriesDoc, n int) *plot.Series {
	line := sd.Line == nil || *sd.Line
	return &plot.Series{
		Label:   sd.Label,
		X:       sd.X,
		Y:       sd.Y,
		Style:   style(sd.Color, sd.Width, n),
		Line:    line,
		Markers: sd.Markers,
	}
}

func buildFunction(c *canvas.Canvas, fd FunctionDoc, n int) *plot.Function {
	base := Functions[fd.Func]
	amp, freq := fd.Amplitude, fd.Frequency
	if amp == 0 {
		amp = 1
	}
	if freq == 0 {
		freq = 1
	}
	f := func(x float64) float64 { return amp*base(freq*x+fd.Phase) + fd.Offset }
	return plot.NewFunction(fd.Label, c, f, style(fd.Color, fd.Width, n))
}

// Close stops background computations started by the scene's renderers.
func (s *Scene) Close() {
	for _, p := range s.Plots {
		for _, r := range p.Renderers() {
			if f, ok := r.(*plot.Function); ok {
				f.Stop()
			}
		}
	}
}
