package plot

import "github.com/matzehuels/gridplot/pkg/axis"

// Reproject moves pixel geometry laid out against one set of transforms
// onto another. It returns false, leaving runs untouched, when the
// transforms cannot be composed.
func Reproject(runs [][]Point, oldX, oldY, newX, newY axis.Transform) ([][]Point, bool) {
	m, ok := axis.Compose(oldX, oldY, newX, newY)
	if !ok {
		return runs, false
	}
	out := make([][]Point, len(runs))
	for i, run := range runs {
		moved := make([]Point, len(run))
		for j, p := range run {
			moved[j].X, moved[j].Y = m.Apply(p.X, p.Y)
		}
		out[i] = moved
	}
	return out, true
}
