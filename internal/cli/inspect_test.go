package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/pipeline"
)

func newTestInspector(t *testing.T) (inspectModel, *canvas.Canvas) {
	t.Helper()
	opts := pipeline.Options{
		Path:   writeDoc(t, t.TempDir(), "quadrants"),
		Logger: log.New(io.Discard),
	}
	scene, err := buildScene(context.Background(), opts)
	if err != nil {
		t.Fatalf("buildScene: %v", err)
	}
	t.Cleanup(scene.Close)
	return newInspectModel(scene.Canvas, opts.Path), scene.Canvas
}

func send(t *testing.T, m inspectModel, msgs ...tea.Msg) (inspectModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(inspectModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInspectDragHotLine(t *testing.T) {
	m, c := newTestInspector(t)
	if m.x != 100 || m.y != 50 {
		t.Fatalf("cursor starts at (%d, %d), want the canvas centre", m.x, m.y)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.grabbed == nil || m.grabbed.String() != "top.max" {
		t.Fatalf("grabbed %v, want top.max", m.grabbed)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	top, _ := c.Position("top")
	if got := top.Bounds(); got != (canvas.Bounds{Min: 0, Max: 55}) {
		t.Errorf("top after drag = %v, want [0,55]", got)
	}
	bottom, _ := c.Position("bottom")
	if got := bottom.Bounds(); got != (canvas.Bounds{Min: 50, Max: 100}) {
		t.Errorf("bottom moved with top: %v", got)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.grabbed != nil || m.moved != 1 {
		t.Errorf("after release grabbed=%v moved=%d, want nil and 1", m.grabbed, m.moved)
	}

	m, _ = send(t, m, runes("+"))
	if w, h := c.Size(); w != 220 || h != 110 {
		t.Fatalf("size after resize = %dx%d, want 220x110", w, h)
	}
	if got := top.Bounds(); got != (canvas.Bounds{Min: 0, Max: 60}) {
		t.Errorf("top after resize = %v, want [0,60]", got)
	}
	if m.y != 60 {
		t.Errorf("cursor y = %d, want it scaled to 60", m.y)
	}
}

func TestInspectCursorStaysOnCanvas(t *testing.T) {
	m, _ := newTestInspector(t)

	for range 50 {
		m, _ = send(t, m, runes("L"), runes("K"))
	}
	if m.x != 199 || m.y != 0 {
		t.Errorf("cursor = (%d, %d), want (199, 0)", m.x, m.y)
	}
	if m.grabbed != nil {
		t.Error("moving the cursor grabbed a line")
	}
}

func TestInspectGrabNothing(t *testing.T) {
	m, _ := newTestInspector(t)
	m.x, m.y = 30, 20

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.grabbed != nil {
		t.Errorf("grabbed %v away from every hot line", m.grabbed)
	}
	if m.status != "no hot line under the cursor" {
		t.Errorf("status = %q", m.status)
	}
}

func TestInspectQuit(t *testing.T) {
	m, _ := newTestInspector(t)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeyEsc})
	if m.grabbed != nil {
		t.Fatal("esc did not release the grabbed line")
	}
	if cmd != nil {
		t.Fatal("esc with a grabbed line quit")
	}

	_, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("esc returned %T, want tea.QuitMsg", cmd())
	}
}

func TestInspectView(t *testing.T) {
	m, _ := newTestInspector(t)
	m.x, m.y = 20, 70

	view := m.View()
	mustContain(t, view, "gridplot inspect", "200x100", "(20, 70)", "bottom × left", "component")

	if got := strings.Count(m.renderMap(), "\n") + 1; got != m.rows {
		t.Errorf("map has %d lines, want %d", got, m.rows)
	}
}

func TestNearestLine(t *testing.T) {
	_, c := newTestInspector(t)
	lines := c.Cells().HotLines()

	tests := []struct {
		name string
		x, y int
		want string
	}{
		{"row within tolerance", 30, 47, "top.max"},
		{"column within tolerance", 97, 20, "left.max"},
		{"closer column wins", 98, 46, "left.max"},
		{"too far", 30, 20, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ""
			if h := nearestLine(lines, tt.x, tt.y, 3, 5); h != nil {
				got = h.String()
			}
			if got != tt.want {
				t.Errorf("nearestLine(%d, %d) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
