package sink

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/gridplot/pkg/canvas"
)

// box fills its cell and writes a label in the middle.
type box struct {
	name  string
	fill  color.Color
	label string
}

func (b *box) Name() string               { return b.name }
func (b *box) Relayout(canvas.Rect) error { return nil }
func (b *box) Repaint()                   {}

func (b *box) Paint(dc canvas.DrawingContext) {
	r := dc.Clip()
	dc.Rect(r, canvas.Style{Fill: b.fill})
	cx, cy := r.Center()
	dc.Circle(cx, cy, 5, canvas.Style{Stroke: color.Black, Width: 2})
	if b.label != "" {
		dc.Text(cx, cy, b.label, canvas.AnchorMiddle, canvas.Style{Fill: color.Black})
	}
}

// fixture builds a 200x100 canvas with one cell at (20,10 100x80) holding
// a red box.
func fixture(t *testing.T) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(200, 100)
	if err != nil {
		t.Fatalf("canvas.New: %v", err)
	}
	row, err := c.NewRow("top", "10px", "90px")
	if err != nil {
		t.Fatalf("NewRow: %v", err)
	}
	col, err := c.NewColumn("left", "20px", "120px")
	if err != nil {
		t.Fatalf("NewColumn: %v", err)
	}
	b := &box{name: "box", fill: color.RGBA{R: 0xff, A: 0xff}, label: "a<b"}
	if err := c.Register(b); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.Bind(b, row, col); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if _, err := c.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	return c
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(fixture(t), WithTitle("demo")))

	for _, want := range []string{
		`viewBox="0 0 200 100"`,
		`<title>demo</title>`,
		`<clipPath id="clip1"><rect x="20" y="10" width="100" height="80"/></clipPath>`,
		`<rect x="20" y="10" width="100" height="80" fill="#ff0000" stroke="none" clip-path="url(#clip1)"/>`,
		`<circle cx="70" cy="50" r="5" fill="none" stroke="#000000" stroke-width="2" clip-path="url(#clip1)"/>`,
		`text-anchor="middle"`,
		`a&lt;b`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q\n%s", want, svg)
		}
	}
	if strings.Contains(svg, `class="grid"`) {
		t.Error("grid overlay rendered without WithGrid")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not terminated")
	}
}

func TestRenderSVGGrid(t *testing.T) {
	svg := string(RenderSVG(fixture(t), WithGrid(), WithBackground(nil)))

	if !strings.Contains(svg, `<rect class="cell" x="20" y="10" width="100" height="80">`) {
		t.Error("missing cell outline")
	}
	// Four hot lines: two per position.
	if n := strings.Count(svg, `class="hot-line"`); n != 4 {
		t.Errorf("hot lines = %d, want 4", n)
	}
	if !strings.Contains(svg, `<line class="hot-line" x1="0" y1="90" x2="200" y2="90"/>`) {
		t.Error("missing row max hot line")
	}
	if strings.Contains(svg, `width="200" height="100" fill="#ffffff"`) {
		t.Error("background painted despite WithBackground(nil)")
	}
}

func TestSVGSurfaceSharesClipPaths(t *testing.T) {
	s := NewSVGSurface(50, 50)
	r := canvas.Rect{X: 1, Y: 2, W: 10, H: 10}
	s.Context(r).Line(0, 0, 5, 5, canvas.Style{Stroke: color.Black})
	s.Context(r).Line(0, 5, 5, 0, canvas.Style{Stroke: color.Black})
	s.Context(canvas.Rect{W: 5, H: 5}).Polyline([]float64{0, 1}, []float64{0, 1}, canvas.Style{Stroke: color.Black})

	out := string(s.Bytes())
	if n := strings.Count(out, "<clipPath"); n != 2 {
		t.Errorf("clip paths = %d, want 2", n)
	}
	if !strings.Contains(out, `points="0,0 1,1"`) {
		t.Errorf("polyline points not written:\n%s", out)
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{12.5, "12.5"},
		{1.234567, "1.23"},
		{-0.001, "0"},
		{-3.1, "-3.1"},
	}
	for _, tt := range tests {
		if got := num(tt.in); got != tt.want {
			t.Errorf("num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSVGPaint(t *testing.T) {
	tests := []struct {
		name    string
		c       color.Color
		paint   string
		opacity float64
	}{
		{"nil", nil, "none", 1},
		{"opaque", color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}, "#123456", 1},
		{"translucent", color.NRGBA{R: 0xff, A: 0x80}, "#ff0000", 128.0 / 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paint, op := svgPaint(tt.c)
			if paint != tt.paint || op != tt.opacity {
				t.Errorf("svgPaint = %q, %v; want %q, %v", paint, op, tt.paint, tt.opacity)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		w, h  int
		// pixel inside the box, in image coordinates
		px, py int
	}{
		{"1x", 1, 200, 100, 30, 20},
		{"2x", 2, 400, 200, 60, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := RenderPNG(fixture(t), WithScale(tt.scale))
			if err != nil {
				t.Fatalf("RenderPNG: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("png.Decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
			if r, g, b, _ := img.At(tt.px, tt.py).RGBA(); r>>8 < 0xf0 || g>>8 > 0x10 || b>>8 > 0x10 {
				t.Errorf("inside box = (%d,%d,%d), want red", r>>8, g>>8, b>>8)
			}
			if r, g, b, _ := img.At(2, 2).RGBA(); r>>8 < 0xf0 || g>>8 < 0xf0 || b>>8 < 0xf0 {
				t.Errorf("background = (%d,%d,%d), want white", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestRasterClipping(t *testing.T) {
	s := NewRasterSurface(40, 40, 1, 12)
	defer s.Close()
	dc := s.Context(canvas.Rect{X: 10, Y: 10, W: 10, H: 10})
	dc.Line(0, 15, 40, 15, canvas.Style{Stroke: color.Black, Width: 4})

	img := s.Image()
	if _, _, _, a := img.At(15, 15).RGBA(); a == 0 {
		t.Error("line not drawn inside clip")
	}
	if _, _, _, a := img.At(5, 15).RGBA(); a != 0 {
		t.Error("line drawn outside clip")
	}
	if _, _, _, a := img.At(30, 15).RGBA(); a != 0 {
		t.Error("line drawn outside clip")
	}
}

func TestRasterCircleStrokeIsHollow(t *testing.T) {
	s := NewRasterSurface(40, 40, 1, 12)
	defer s.Close()
	s.Context(canvas.Rect{W: 40, H: 40}).Circle(20, 20, 12, canvas.Style{Stroke: color.Black, Width: 2})

	img := s.Image()
	if _, _, _, a := img.At(20, 20).RGBA(); a != 0 {
		t.Error("stroked circle filled its centre")
	}
	if _, _, _, a := img.At(32, 20).RGBA(); a == 0 {
		t.Error("stroked circle has no outline")
	}
}

func TestRenderJSON(t *testing.T) {
	c := fixture(t)
	data, err := RenderJSON(c.Snapshot(), WithJSONTitle("demo"), WithJSONSource("demo.toml"))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"title": "demo"`, `"source": "demo.toml"`, `"width": 200`, `"hot_lines"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s", want)
		}
	}
	if strings.Contains(s, `"components"`) {
		t.Error("components exported without WithJSONComponents")
	}

	l, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(l.Positions) != 2 || len(l.Cells) != 1 || len(l.HotLines) != 4 {
		t.Errorf("round trip = %d positions, %d cells, %d lines", len(l.Positions), len(l.Cells), len(l.HotLines))
	}
	if got := l.Cells[0].Rect; got != (canvas.Rect{X: 20, Y: 10, W: 100, H: 80}) {
		t.Errorf("cell rect = %v", got)
	}
}

func TestRenderJSONComponents(t *testing.T) {
	data, err := RenderJSON(fixture(t).Snapshot(), WithJSONComponents())
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	l, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(l.Components) != 1 || l.Components[0].Name != "box" || l.Components[0].Row != "top" {
		t.Errorf("components = %+v", l.Components)
	}
}
