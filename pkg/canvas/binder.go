package canvas

import (
	"fmt"

	"github.com/matzehuels/gridplot/pkg/errors"
)

// Component is a visual element laid out in one cell of the grid.
type Component interface {
	// Name identifies the component in the canvas registry.
	Name() string
	// Relayout receives the component's freshly resolved bounds.
	Relayout(bounds Rect) error
	// Repaint requests that the component redraw itself.
	Repaint()
}

// Painter is implemented by components that can draw onto a surface.
type Painter interface {
	Paint(dc DrawingContext)
}

// State is a component's position in the update cycle.
type State int

const (
	Clean State = iota
	Dirty
	Pending
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Pending:
		return "pending"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// binding ties a component to a row and a column.
type binding struct {
	comp     Component
	row, col *DevicePosition
	cancel   []func()
	state    State // guarded by the scheduler lock
	dropped  bool  // guarded by the scheduler lock
	bounds   Rect
}

func (b *binding) unsubscribe() {
	for _, f := range b.cancel {
		f()
	}
	b.cancel = nil
}

// Bind attaches comp to row and col, replacing any previous binding, and
// marks it dirty. A nil row or column binds to the unset sentinel; the
// component is then reported and skipped on every drain until rebound.
func (c *Canvas) Bind(comp Component, row, col *DevicePosition) error {
	if comp == nil {
		return errors.New(errors.ErrCodeInvalidInput, "cannot bind nil component")
	}
	if row == nil {
		row = c.nullRow
	}
	if col == nil {
		col = c.nullCol
	}
	if row.orientation != Row {
		return errors.New(errors.ErrCodeInvalidInput, "%q: %q is not a row", comp.Name(), row.name)
	}
	if col.orientation != Column {
		return errors.New(errors.ErrCodeInvalidInput, "%q: %q is not a column", comp.Name(), col.name)
	}
	for _, p := range []*DevicePosition{row, col} {
		if !p.IsNull() && p.canvas != c {
			return errors.New(errors.ErrCodePositionNotFound, "%q: position %q belongs to another canvas", comp.Name(), p.name)
		}
	}

	b := c.binding(comp)
	if b == nil {
		b = &binding{comp: comp}
		c.bmu.Lock()
		c.bindings[comp] = b
		c.bmu.Unlock()
	} else {
		b.unsubscribe()
	}
	b.row, b.col = row, col
	onChange := func(BoundsChanged) { c.sched.markDirty(b) }
	b.cancel = append(b.cancel, row.Subscribe(onChange), col.Subscribe(onChange))

	c.sched.markDirty(b)
	return nil
}

// Unbind detaches comp from its row and column.
func (c *Canvas) Unbind(comp Component) {
	b := c.binding(comp)
	if b == nil {
		return
	}
	b.unsubscribe()
	c.sched.forget(b)
	c.bmu.Lock()
	delete(c.bindings, comp)
	c.bmu.Unlock()
}

// binding looks up comp's binding. Writes to the map happen on the
// executor; the lock lets other goroutines read it.
func (c *Canvas) binding(comp Component) *binding {
	c.bmu.RLock()
	defer c.bmu.RUnlock()
	return c.bindings[comp]
}

// boundComponents returns the bindings in no particular order.
func (c *Canvas) boundComponents() []*binding {
	c.bmu.RLock()
	defer c.bmu.RUnlock()
	out := make([]*binding, 0, len(c.bindings))
	for _, b := range c.bindings {
		out = append(out, b)
	}
	return out
}

// Binding returns the row and column comp is bound to.
func (c *Canvas) Binding(comp Component) (row, col *DevicePosition, ok bool) {
	b := c.binding(comp)
	if b == nil {
		return nil, nil, false
	}
	return b.row, b.col, true
}

// ResolveBounds returns the rectangle of comp's cell:
// (col.Min, row.Min, col.Len, row.Len). Binding to an unset row or column
// is an error rather than a zero rectangle.
func (c *Canvas) ResolveBounds(comp Component) (Rect, error) {
	b := c.binding(comp)
	if b == nil {
		return Rect{}, errors.New(errors.ErrCodeComponentNotFound, "component %q is not bound", comp.Name())
	}
	return b.resolve()
}

func (b *binding) resolve() (Rect, error) {
	switch {
	case b.row.IsNull() && b.col.IsNull():
		return Rect{}, errors.Wrap(errors.ErrCodeUnresolvedBinding, ErrUnresolvedBinding, "component %q has no row or column", b.comp.Name())
	case b.row.IsNull():
		return Rect{}, errors.Wrap(errors.ErrCodeUnresolvedBinding, ErrUnresolvedBinding, "component %q has no row", b.comp.Name())
	case b.col.IsNull():
		return Rect{}, errors.Wrap(errors.ErrCodeUnresolvedBinding, ErrUnresolvedBinding, "component %q has no column", b.comp.Name())
	}
	return RectOf(b.row.Bounds(), b.col.Bounds()), nil
}
