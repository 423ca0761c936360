package plot

import (
	"github.com/matzehuels/gridplot/pkg/axis"
	"github.com/matzehuels/gridplot/pkg/canvas"
)

// Stats counts what a renderer did with its data.
type Stats struct {
	Drawn   int
	Skipped int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Drawn += o.Drawn
	s.Skipped += o.Skipped
}

// Renderer draws one data set into a plot.
type Renderer interface {
	Name() string
	Render(dc canvas.DrawingContext, x, y axis.Transform) Stats
}

// Updater is implemented by renderers that precompute geometry when the
// plot's transforms change.
type Updater interface {
	Update(x, y axis.Transform)
}

// Series renders paired x/y samples as a line, markers, or both.
//
// Points that an axis cannot place, such as non-positive values on a log
// axis, are skipped and break the line.
type Series struct {
	Label   string
	X, Y    []float64
	Style   canvas.Style
	Line    bool
	Markers bool
	// Radius of markers in pixels.
	Radius float64
}

// Name implements Renderer.
func (s *Series) Name() string { return s.Label }

// Render implements Renderer.
func (s *Series) Render(dc canvas.DrawingContext, x, y axis.Transform) Stats {
	var (
		st     Stats
		xs, ys []float64
	)
	flush := func() {
		if s.Line && len(xs) > 1 {
			dc.Polyline(xs, ys, s.Style)
		}
		xs, ys = xs[:0], ys[:0]
	}
	n := min(len(s.X), len(s.Y))
	for i := 0; i < n; i++ {
		px, errX := x.Forward(s.X[i])
		py, errY := y.Forward(s.Y[i])
		if errX != nil || errY != nil {
			st.Skipped++
			flush()
			continue
		}
		st.Drawn++
		xs, ys = append(xs, px), append(ys, py)
		if s.Markers {
			r := s.Radius
			if r <= 0 {
				r = 2
			}
			dc.Circle(px, py, r, s.Style)
		}
	}
	flush()
	st.Skipped += max(len(s.X), len(s.Y)) - n
	return st
}
