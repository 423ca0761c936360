package canvas

import (
	"sync"
	"testing"
)

// recorder is a Component that counts layout calls.
type recorder struct {
	name string

	mu        sync.Mutex
	relayouts int
	repaints  int
	last      Rect
	onLayout  func(Rect) error
}

func newRecorder(name string) *recorder { return &recorder{name: name} }

func (r *recorder) Name() string { return r.name }

func (r *recorder) Relayout(bounds Rect) error {
	r.mu.Lock()
	r.relayouts++
	r.last = bounds
	hook := r.onLayout
	r.mu.Unlock()
	if hook != nil {
		return hook(bounds)
	}
	return nil
}

func (r *recorder) Repaint() {
	r.mu.Lock()
	r.repaints++
	r.mu.Unlock()
}

func (r *recorder) counts() (relayouts, repaints int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relayouts, r.repaints
}

func (r *recorder) bounds() Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func mustCanvas(t *testing.T, w, h int, opts ...Option) *Canvas {
	t.Helper()
	c, err := New(w, h, opts...)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", w, h, err)
	}
	return c
}

func mustRow(t *testing.T, c *Canvas, name, min, max string) *DevicePosition {
	t.Helper()
	p, err := c.NewRow(name, min, max)
	if err != nil {
		t.Fatalf("NewRow(%q): %v", name, err)
	}
	return p
}

func mustColumn(t *testing.T, c *Canvas, name, min, max string) *DevicePosition {
	t.Helper()
	p, err := c.NewColumn(name, min, max)
	if err != nil {
		t.Fatalf("NewColumn(%q): %v", name, err)
	}
	return p
}
