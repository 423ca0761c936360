// Package plot provides canvas components: axes, plots and the renderers
// that draw data into a plot.
//
// An [Axis] is bound to a row and a column like any other component. On
// every re-layout it rebuilds its [axis.Transform] from the freshly
// resolved cell and tells interested plots. A [Plot] draws its renderers
// through the transforms of its two axes.
//
// Renderers that are slow to compute, such as [Function], do their work
// on a goroutine. The work is bracketed by a pending-change token on the
// canvas, so canvas.Canvas.WaitUntilIdle does not return before the
// result has landed. Until then the previous result is moved into place
// with [Reproject].
package plot
