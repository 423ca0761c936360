package axis

import (
	"fmt"
	"math"
)

// Affine is a 2x3 affine map in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// applied as x' = A*x + B*y + C and y' = D*x + E*y + F.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity map.
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Translate returns a pure translation.
func Translate(x, y float64) Affine {
	return Affine{A: 1, C: x, E: 1, F: y}
}

// Scale returns a pure scale about the origin.
func Scale(x, y float64) Affine {
	return Affine{A: x, E: y}
}

// Multiply returns m * other: other is applied first.
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply maps the point (x, y).
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// Det returns the determinant of the linear part.
func (m Affine) Det() float64 { return m.A*m.E - m.B*m.D }

// Invert returns the inverse map, or false if m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.Det()
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}, true
}

// IsIdentity reports whether m is the identity within eps.
func (m Affine) IsIdentity(eps float64) bool {
	near := func(a, b float64) bool { return math.Abs(a-b) <= eps }
	return near(m.A, 1) && near(m.B, 0) && near(m.C, 0) &&
		near(m.D, 0) && near(m.E, 1) && near(m.F, 0)
}

func (m Affine) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g]", m.A, m.B, m.C, m.D, m.E, m.F)
}

// Compose returns the map that takes a point laid out against oldX and
// oldY to the same data point laid out against newX and newY. The axes
// are solved independently, so the result has no shear.
//
// It returns false when no such map exists: an axis is degenerate, the
// kinds of an old/new pair differ, or the result would be singular.
func Compose(oldX, oldY, newX, newY Transform) (Affine, bool) {
	sx, tx, ok := solve(oldX, newX)
	if !ok {
		return Affine{}, false
	}
	sy, ty, ok := solve(oldY, newY)
	if !ok {
		return Affine{}, false
	}
	m := Affine{A: sx, C: tx, E: sy, F: ty}
	if m.Det() == 0 {
		return Affine{}, false
	}
	return m, true
}

// solve finds p' = s*p + t along one axis. The old axis's data extremes
// are placed in both pixel spaces; two points fix the line.
func solve(old, next Transform) (s, t float64, ok bool) {
	if old.Kind != next.Kind || old.Degenerate() || next.Degenerate() {
		return 0, 0, false
	}
	oMin, err1 := old.Forward(old.DataMin)
	oMax, err2 := old.Forward(old.DataMax)
	nMin, err3 := next.Forward(old.DataMin)
	nMax, err4 := next.Forward(old.DataMax)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, 0, false
	}
	if oMin == oMax {
		return 0, 0, false
	}
	s = (nMin - nMax) / (oMin - oMax)
	t = nMin - s*oMin
	if s == 0 || !finite(s) || !finite(t) {
		return 0, 0, false
	}
	return s, t, true
}
