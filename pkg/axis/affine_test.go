package axis

import (
	"math"
	"testing"

	"github.com/matzehuels/gridplot/pkg/canvas"
)

func TestComposeIdentity(t *testing.T) {
	x := mustNew(t, Linear, 0, 10, canvas.Bounds{Min: 0, Max: 100}, false)
	y := mustNew(t, Linear, 0, 10, canvas.Bounds{Min: 0, Max: 100}, true)
	m, ok := Compose(x, y, x, y)
	if !ok {
		t.Fatal("Compose of identical axes failed")
	}
	if !m.IsIdentity(1e-12) {
		t.Errorf("Compose = %v, want identity", m)
	}
}

func TestComposeMovesPoints(t *testing.T) {
	tests := []struct {
		name         string
		oldX, oldY   Transform
		newX, newY   Transform
		dataX, dataY float64
	}{
		{
			name:  "ZoomAndShift",
			oldX:  Transform{Kind: Linear, DataMin: 0, DataMax: 10, PixelMin: 0, PixelMax: 100},
			oldY:  Transform{Kind: Linear, DataMin: 0, DataMax: 10, PixelMin: 0, PixelMax: 100, Inverted: true},
			newX:  Transform{Kind: Linear, DataMin: 2, DataMax: 6, PixelMin: 40, PixelMax: 440},
			newY:  Transform{Kind: Linear, DataMin: -5, DataMax: 5, PixelMin: 10, PixelMax: 210, Inverted: true},
			dataX: 3,
			dataY: 4,
		},
		{
			name:  "Log",
			oldX:  Transform{Kind: Log, DataMin: 1, DataMax: 1000, PixelMin: 0, PixelMax: 300},
			oldY:  Transform{Kind: Linear, DataMin: 0, DataMax: 1, PixelMin: 0, PixelMax: 100},
			newX:  Transform{Kind: Log, DataMin: 10, DataMax: 100, PixelMin: 0, PixelMax: 300},
			newY:  Transform{Kind: Linear, DataMin: 0, DataMax: 2, PixelMin: 0, PixelMax: 100},
			dataX: 50,
			dataY: 0.5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Compose(tt.oldX, tt.oldY, tt.newX, tt.newY)
			if !ok {
				t.Fatal("Compose failed")
			}
			ox, _ := tt.oldX.Forward(tt.dataX)
			oy, _ := tt.oldY.Forward(tt.dataY)
			nx, _ := tt.newX.Forward(tt.dataX)
			ny, _ := tt.newY.Forward(tt.dataY)
			gx, gy := m.Apply(ox, oy)
			if math.Abs(gx-nx) > 1e-9 || math.Abs(gy-ny) > 1e-9 {
				t.Errorf("Apply(%g,%g) = (%g,%g), want (%g,%g)", ox, oy, gx, gy, nx, ny)
			}
		})
	}
}

func TestComposeFails(t *testing.T) {
	good := Transform{Kind: Linear, DataMin: 0, DataMax: 10, PixelMin: 0, PixelMax: 100}
	flat := Transform{Kind: Linear, DataMin: 0, DataMax: 10, PixelMin: 50, PixelMax: 50}
	logX := Transform{Kind: Log, DataMin: 1, DataMax: 10, PixelMin: 0, PixelMax: 100}

	tests := []struct {
		name                   string
		oldX, oldY, newX, newY Transform
	}{
		{"ZeroWidthOld", flat, good, good, good},
		{"ZeroWidthNew", good, good, good, flat},
		{"MismatchedKinds", good, good, logX, good},
		{"ZeroValue", Transform{}, good, good, good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m, ok := Compose(tt.oldX, tt.oldY, tt.newX, tt.newY); ok {
				t.Errorf("Compose succeeded with %v", m)
			}
		})
	}
}

func TestAffineInvert(t *testing.T) {
	m := Translate(5, -3).Multiply(Scale(2, 4))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert failed")
	}
	if !m.Multiply(inv).IsIdentity(1e-12) {
		t.Errorf("m * inv = %v", m.Multiply(inv))
	}
	x, y := m.Apply(1, 1)
	if x != 7 || y != 1 {
		t.Errorf("Apply(1,1) = (%g,%g), want (7,1)", x, y)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("singular matrix inverted")
	}
}
