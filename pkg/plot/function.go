package plot

import (
	"context"
	"math"
	"sync"

	"github.com/matzehuels/gridplot/pkg/axis"
	"github.com/matzehuels/gridplot/pkg/canvas"
)

// Function samples y = F(x) once per pixel column of the plot on a
// background goroutine.
//
// Each computation registers a pending-change token with the host and
// clears it after the result has been handed back to the executor, so an
// idle wait covers the whole computation. While a computation is running,
// Render reprojects the previous result onto the current transforms.
type Function struct {
	Label string
	F     func(x float64) float64
	Style canvas.Style

	host  Host
	owner canvas.Component

	mu      sync.Mutex
	cancel  context.CancelFunc
	gen     int
	started bool
	ux, uy  axis.Transform

	// Written on the executor only.
	runs       [][]Point
	haveResult bool
	rx, ry     axis.Transform
}

// NewFunction returns a renderer for f. When added to a plot, the plot is
// marked dirty each time a computation lands.
func NewFunction(label string, host Host, f func(float64) float64, style canvas.Style) *Function {
	return &Function{Label: label, F: f, Style: style, host: host}
}

// Name implements Renderer.
func (fn *Function) Name() string { return fn.Label }

// attach is called by Plot.Add.
func (fn *Function) attach(owner canvas.Component) { fn.owner = owner }

// Update implements Updater. It cancels any running computation and
// starts a new one for x and y, unless the latest computation was
// already started for the same transforms.
func (fn *Function) Update(x, y axis.Transform) {
	if x.Degenerate() || y.Degenerate() {
		return
	}

	fn.mu.Lock()
	if fn.started && fn.ux == x && fn.uy == y {
		fn.mu.Unlock()
		return
	}
	if fn.cancel != nil {
		fn.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	fn.cancel = cancel
	fn.started, fn.ux, fn.uy = true, x, y
	fn.gen++
	gen := fn.gen
	fn.mu.Unlock()

	owner := canvas.NewOwnerID()
	fn.host.RegisterPendingChange(owner)
	go func() {
		defer fn.host.ClearPendingChange(owner)
		runs, ok := sample(ctx, fn.F, x, y)
		if !ok {
			return
		}
		fn.host.Post(func() {
			fn.mu.Lock()
			current := gen == fn.gen
			fn.mu.Unlock()
			if !current {
				return
			}
			fn.runs, fn.rx, fn.ry, fn.haveResult = runs, x, y, true
			if fn.owner != nil {
				fn.host.MarkDirty(fn.owner)
			}
		})
	}()
}

// Stop cancels a running computation.
func (fn *Function) Stop() {
	fn.mu.Lock()
	defer fn.mu.Unlock()
	if fn.cancel != nil {
		fn.cancel()
		fn.cancel = nil
	}
	fn.started = false
}

// Result returns the last computed geometry and the transforms it was
// computed for.
func (fn *Function) Result() (runs [][]Point, x, y axis.Transform, ok bool) {
	return fn.runs, fn.rx, fn.ry, fn.haveResult
}

// Render implements Renderer.
func (fn *Function) Render(dc canvas.DrawingContext, x, y axis.Transform) Stats {
	if !fn.haveResult {
		return Stats{}
	}
	runs := fn.runs
	if fn.rx != x || fn.ry != y {
		// Draw the stale result where it belongs until the new one lands;
		// if the axes cannot be composed it is drawn unmoved.
		runs, _ = Reproject(runs, fn.rx, fn.ry, x, y)
	}
	var st Stats
	for _, run := range runs {
		if len(run) < 2 {
			st.Drawn += len(run)
			continue
		}
		xs := make([]float64, len(run))
		ys := make([]float64, len(run))
		for i, p := range run {
			xs[i], ys[i] = p.X, p.Y
		}
		dc.Polyline(xs, ys, fn.Style)
		st.Drawn += len(run)
	}
	return st
}

// sample evaluates f at every pixel column of x. Samples that fall
// outside either axis split the curve.
func sample(ctx context.Context, f func(float64) float64, x, y axis.Transform) ([][]Point, bool) {
	lo, hi := math.Min(x.PixelMin, x.PixelMax), math.Max(x.PixelMin, x.PixelMax)
	var (
		runs [][]Point
		cur  []Point
	)
	for px := lo; px <= hi; px++ {
		if int(px-lo)%64 == 0 && ctx.Err() != nil {
			return nil, false
		}
		v, err := x.Inverse(px)
		if err != nil {
			continue
		}
		py, err := y.Forward(f(v))
		if err != nil {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, Point{X: px, Y: py})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs, ctx.Err() == nil
}
