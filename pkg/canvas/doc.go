// Package canvas implements the device-position layout engine.
//
// A [Canvas] owns a set of rows and columns ([DevicePosition]). Each
// position is a pair of [Constraint] endpoints that resolve to a pixel
// interval against the canvas height (rows), the canvas width (columns),
// or the interval of another position it is based on. The canvas keeps
// derived state consistent with those intervals:
//
//   - a [CellIndex] with one [Cell] per row × column pair and one
//     [HotLine] per position edge, used for hit testing;
//   - component bindings: a [Component] bound to a row and a column is
//     marked dirty whenever either interval moves, and re-laid-out once per
//     drain of the update scheduler no matter how many times it was
//     invalidated in between.
//
// # Layout strings
//
// Endpoints are written as sums of terms:
//
//	term := number '%' | number 'em' | number 'px' | number
//
// joined with '+' or '-', for example "50%-3em" or "100%-20". Percentages
// resolve against the reference length, em terms against the canvas em
// size, and bare or px numbers are absolute pixels. The legacy form
// "<fraction>,<offsetPixels>" is also accepted.
//
// # Threading
//
// All position, cell and hot-line state is owned by a single executor.
// Hosts that use more than one goroutine start [Canvas.Run] once and
// funnel mutations through [Canvas.Post] or [Canvas.Invoke]; other
// goroutines read through [Canvas.Snapshot]. Without a running executor,
// the goroutine that calls [Canvas.Drain] or [Canvas.WaitUntilIdle] acts
// as the executor.
//
// # Example
//
//	c, _ := canvas.New(400, 300)
//	row, _ := c.NewRow("body", "2em", "100%-3em")
//	col, _ := c.NewColumn("main", "10%", "90%")
//	_ = c.Bind(myComponent, row, col)
//	_ = c.WaitUntilIdle(ctx)
package canvas
