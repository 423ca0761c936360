package canvas

import (
	"fmt"
	"math"
)

// Orientation tells whether a position is a row (vertical interval,
// resolved against the canvas height) or a column (horizontal interval,
// resolved against the canvas width).
type Orientation int

const (
	Row Orientation = iota
	Column
)

func (o Orientation) String() string {
	switch o {
	case Row:
		return "row"
	case Column:
		return "column"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation parses "row" or "column".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "row", "rows":
		return Row, nil
	case "column", "col", "columns":
		return Column, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// Edge selects the minimum or maximum end of a position.
type Edge int

const (
	MinEdge Edge = iota
	MaxEdge
)

func (e Edge) String() string {
	if e == MinEdge {
		return "min"
	}
	return "max"
}

// Bounds is a resolved pixel interval. Min <= Max holds for every value
// produced by resolution.
type Bounds struct {
	Min, Max int
}

// Len returns the interval length in pixels.
func (b Bounds) Len() int { return b.Max - b.Min }

// Edge returns the coordinate of edge e.
func (b Bounds) Edge(e Edge) int {
	if e == MinEdge {
		return b.Min
	}
	return b.Max
}

func (b Bounds) String() string { return fmt.Sprintf("[%d,%d]", b.Min, b.Max) }

// Rect is a pixel rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H int
}

// RectOf returns the intersection rectangle of a row and a column interval.
func RectOf(row, col Bounds) Rect {
	return Rect{X: col.Min, Y: row.Min, W: col.Len(), H: row.Len()}
}

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Area returns W*H.
func (r Rect) Area() int { return r.W * r.H }

// Center returns the centre point of r.
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) String() string { return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H) }

// roundPixel rounds half up, the way pixel coordinates are snapped
// everywhere in this package.
func roundPixel(v float64) int {
	return int(math.Floor(v + 0.5))
}
