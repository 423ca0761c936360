// Package document reads and writes layout documents.
//
// A layout document is a TOML file describing a canvas: its size, its
// rows and columns, the axes and plots bound to them, and the data the
// plots draw. [Parse] and [Load] decode and validate a document; [Build]
// turns it into a live canvas.Canvas with its components registered and
// bound.
//
//	width = 640
//	height = 480
//
//	[[row]]
//	name = "body"
//	min = "2em"
//	max = "100%-3em"
//
//	[[column]]
//	name = "main"
//	min = "10%"
//	max = "90%"
//
//	[[axis]]
//	name = "x"
//	direction = "x"
//	min = 0.0
//	max = 10.0
//	row = "body"
//	column = "main"
//
// Rows and columns may name another position of the same orientation in
// relative_to; their percentages then refer to that position's interval.
package document
