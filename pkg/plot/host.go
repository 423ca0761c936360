package plot

import "github.com/matzehuels/gridplot/pkg/canvas"

// Host is the part of a canvas that components use to schedule work.
// *canvas.Canvas implements it.
type Host interface {
	MarkDirty(comp canvas.Component)
	Post(fn func())
	RegisterPendingChange(owner string)
	ClearPendingChange(owner string)
}

// Point is a pixel coordinate.
type Point struct {
	X, Y float64
}
