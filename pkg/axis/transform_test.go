package axis

import (
	stderrors "errors"
	"math"
	"math/rand"
	"testing"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/errors"
)

func mustNew(t *testing.T, k Kind, min, max float64, px canvas.Bounds, inverted bool) Transform {
	t.Helper()
	tr, err := New(k, min, max, px, inverted)
	if err != nil {
		t.Fatalf("New(%v, %g, %g): %v", k, min, max, err)
	}
	return tr
}

func TestForwardLinear(t *testing.T) {
	tr := mustNew(t, Linear, 10, 100, canvas.Bounds{Min: 50, Max: 350}, false)
	tests := []struct {
		v, want float64
	}{
		{10, 50},
		{100, 350},
		{55, 200},
		{40, 150},
	}
	for _, tt := range tests {
		got, err := tr.Forward(tt.v)
		if err != nil {
			t.Fatalf("Forward(%g): %v", tt.v, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Forward(%g) = %g, want %g", tt.v, got, tt.want)
		}
	}
}

func TestForwardLog(t *testing.T) {
	tr := mustNew(t, Log, 1, 1000, canvas.Bounds{Min: 0, Max: 300}, false)
	got, err := tr.Forward(10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-100) > 1 {
		t.Errorf("Forward(10) = %g, want 100 within 1px", got)
	}

	for _, v := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := tr.Forward(v)
		if !stderrors.Is(err, ErrDomain) {
			t.Errorf("Forward(%g) error = %v, want ErrDomain", v, err)
		}
		if !errors.Is(err, errors.ErrCodeDomain) {
			t.Errorf("Forward(%g) code = %q", v, errors.GetCode(err))
		}
	}
}

func TestInverted(t *testing.T) {
	tr := mustNew(t, Linear, 0, 10, canvas.Bounds{Min: 0, Max: 100}, true)
	p, _ := tr.Forward(0)
	if p != 100 {
		t.Errorf("Forward(DataMin) = %g, want PixelMax", p)
	}
	p, _ = tr.Forward(10)
	if p != 0 {
		t.Errorf("Forward(DataMax) = %g, want PixelMin", p)
	}
	v, _ := tr.Inverse(25)
	if math.Abs(v-7.5) > 1e-9 {
		t.Errorf("Inverse(25) = %g, want 7.5", v)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		min, max float64
		inverted bool
	}{
		{"Linear", Linear, -50, 250, false},
		{"LinearInverted", Linear, 10, 100, true},
		{"Log", Log, 1, 1e6, false},
		{"LogInverted", Log, 0.01, 10, true},
	}
	rng := rand.New(rand.NewSource(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustNew(t, tt.kind, tt.min, tt.max, canvas.Bounds{Min: 20, Max: 780}, tt.inverted)
			for i := 0; i < 1000; i++ {
				var v float64
				if tt.kind == Log {
					lo, hi := math.Log(tt.min), math.Log(tt.max)
					v = math.Exp(lo + rng.Float64()*(hi-lo))
				} else {
					v = tt.min + rng.Float64()*(tt.max-tt.min)
				}
				p, err := tr.Forward(v)
				if err != nil {
					t.Fatalf("Forward(%g): %v", v, err)
				}
				back, err := tr.Inverse(p)
				if err != nil {
					t.Fatalf("Inverse(%g): %v", p, err)
				}
				if math.Abs(back-v) > 1e-9*math.Max(1, math.Abs(v)) {
					t.Fatalf("Inverse(Forward(%g)) = %g", v, back)
				}
			}
		})
	}
}

func TestMonotonic(t *testing.T) {
	for _, inverted := range []bool{false, true} {
		tr := mustNew(t, Log, 1, 1000, canvas.Bounds{Min: 0, Max: 300}, inverted)
		prev, _ := tr.Forward(1)
		for v := 2.0; v <= 1000; v *= 1.5 {
			p, _ := tr.Forward(v)
			if inverted && p >= prev || !inverted && p <= prev {
				t.Fatalf("inverted=%v: Forward not monotonic at %g (%g after %g)", inverted, v, p, prev)
			}
			prev = p
		}
	}
}

func TestDegenerate(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
	}{
		{"Zero", Transform{}},
		{"ZeroWidthPixels", Transform{Kind: Linear, DataMin: 0, DataMax: 1, PixelMin: 5, PixelMax: 5}},
		{"EmptyData", Transform{Kind: Linear, DataMin: 3, DataMax: 3, PixelMin: 0, PixelMax: 100}},
		{"LogNonPositive", Transform{Kind: Log, DataMin: 0, DataMax: 10, PixelMin: 0, PixelMax: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.tr.Degenerate() {
				t.Error("Degenerate() = false")
			}
			if _, err := tt.tr.Forward(1); !stderrors.Is(err, ErrDomain) {
				t.Errorf("Forward error = %v, want ErrDomain", err)
			}
			if _, err := tt.tr.Inverse(1); !stderrors.Is(err, ErrDomain) {
				t.Errorf("Inverse error = %v, want ErrDomain", err)
			}
		})
	}
}

func TestNewValidates(t *testing.T) {
	px := canvas.Bounds{Min: 0, Max: 100}
	if _, err := New(Log, -1, 10, px, false); !errors.Is(err, errors.ErrCodeInvalidDataRange) {
		t.Errorf("log over negative range: %v", err)
	}
	if _, err := New(Linear, 1, 1, px, false); !errors.Is(err, errors.ErrCodeInvalidDataRange) {
		t.Errorf("empty range: %v", err)
	}
	if _, err := New(Linear, math.NaN(), 1, px, false); err == nil {
		t.Error("NaN range accepted")
	}
	tr, err := New(Linear, 100, 10, px, false)
	if err != nil {
		t.Fatal(err)
	}
	if tr.DataMin != 10 || tr.DataMax != 100 {
		t.Errorf("reversed range not swapped: %v", tr)
	}
}

func TestTicks(t *testing.T) {
	lin := mustNew(t, Linear, 0, 100, canvas.Bounds{Min: 0, Max: 500}, false)
	major, _, err := lin.Ticks(6)
	if err != nil {
		t.Fatal(err)
	}
	if len(major) == 0 || len(major) > 6 {
		t.Fatalf("linear major ticks = %v", major)
	}
	for _, v := range major {
		if v < 0 || v > 100 {
			t.Errorf("tick %g outside data range", v)
		}
	}

	lg := mustNew(t, Log, 1, 1000, canvas.Bounds{Min: 0, Max: 300}, false)
	major, _, err = lg.Ticks(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(major) == 0 || len(major) > 5 {
		t.Errorf("log major ticks = %v", major)
	}

	if _, _, err := lin.Ticks(0); err == nil {
		t.Error("Ticks(0) succeeded")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"": Linear, "linear": Linear, "log": Log, "log10": Log} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("sqrt"); err == nil {
		t.Error("ParseKind(sqrt) succeeded")
	}
}
