package canvas

import (
	"github.com/matzehuels/gridplot/pkg/errors"
)

// PositionID indexes a position in its canvas's arena.
type PositionID int

// NoPosition is the id of the unset sentinel positions and of a missing base.
const NoPosition PositionID = -1

// BoundsChanged is delivered to listeners when a position's resolved
// interval moves.
type BoundsChanged struct {
	Position *DevicePosition
	Old, New Bounds
}

// Listener receives bounds-changed events. Listeners run synchronously on
// the executor and must not edit positions directly; edits requested while
// a resolution pass is in progress are deferred to the next drain.
type Listener func(BoundsChanged)

// DevicePosition is a row or column of the layout grid.
type DevicePosition struct {
	canvas      *Canvas
	id          PositionID
	name        string
	orientation Orientation
	min, max    Constraint
	base        PositionID

	bounds   Bounds
	resolved bool

	listeners []subscription
	nextSub   int
	lines     [2]*HotLine
}

// ID returns the arena index of p, or NoPosition for a sentinel.
func (p *DevicePosition) ID() PositionID { return p.id }

// Name returns the position's name.
func (p *DevicePosition) Name() string { return p.name }

// Orientation reports whether p is a row or a column.
func (p *DevicePosition) Orientation() Orientation { return p.orientation }

// IsNull reports whether p is the canvas's unset sentinel (or nil).
func (p *DevicePosition) IsNull() bool { return p == nil || p.id == NoPosition }

// Constraints returns the min and max endpoint constraints.
func (p *DevicePosition) Constraints() (Constraint, Constraint) { return p.min, p.max }

// Base returns the position p is relative to, or nil.
func (p *DevicePosition) Base() *DevicePosition {
	if p.base == NoPosition || p.canvas == nil {
		return nil
	}
	return p.canvas.positions[p.base]
}

// Bounds returns the cached resolved interval, resolving first if the
// position was invalidated since the last pass.
func (p *DevicePosition) Bounds() Bounds {
	if p.IsNull() {
		return Bounds{}
	}
	if !p.resolved && p.canvas != nil {
		p.canvas.resolveFrom(p.id)
	}
	return p.bounds
}

// HotLine returns the hot line for edge e.
func (p *DevicePosition) HotLine(e Edge) *HotLine { return p.lines[e] }

// Resolve computes p's interval against the current canvas extent (or the
// current bounds of its base) without touching the cache or notifying
// listeners. It is idempotent for unchanged inputs.
func (p *DevicePosition) Resolve() Bounds {
	if p.IsNull() {
		return Bounds{}
	}
	if p.canvas == nil {
		return p.bounds
	}
	origin, ref := p.reference()
	return p.ResolveAgainst(origin, ref)
}

// ResolveAgainst evaluates both endpoints against an explicit origin and
// reference length. A reversed result is swapped so that Min <= Max.
//
// The swap keeps layout strings that list the edges in reverse order
// working, but it will equally hide a caller that reversed them by
// mistake.
func (p *DevicePosition) ResolveAgainst(origin, length int) Bounds {
	lo, hi := p.raw(float64(origin), float64(length))
	b := Bounds{Min: roundPixel(lo), Max: roundPixel(hi)}
	if b.Min > b.Max {
		b.Min, b.Max = b.Max, b.Min
	}
	return b
}

func (p *DevicePosition) raw(origin, ref float64) (float64, float64) {
	em := p.canvas.EmSize()
	return p.min.eval(origin, ref, em), p.max.eval(origin, ref, em)
}

// reference returns the origin and reference length p resolves against.
func (p *DevicePosition) reference() (int, int) {
	if base := p.Base(); base != nil {
		b := base.bounds
		return b.Min, b.Len()
	}
	w, h := p.canvas.Size()
	if p.orientation == Row {
		return 0, h
	}
	return 0, w
}

// SetRange replaces both constraints with fraction+offset pairs.
func (p *DevicePosition) SetRange(minFraction float64, minOffset int, maxFraction float64, maxOffset int) error {
	return p.SetConstraints(Frac(minFraction, minOffset), Frac(maxFraction, maxOffset))
}

// SetConstraints replaces both endpoint constraints and re-resolves p and
// every position based on it. Listeners fire only for positions whose
// resolved bounds actually changed.
//
// When called from a listener during a resolution pass, the edit is
// queued and applied on the next drain.
func (p *DevicePosition) SetConstraints(min, max Constraint) error {
	if p.IsNull() {
		return errors.New(errors.ErrCodeInvalidInput, "cannot set range on unset position")
	}
	if p.canvas == nil {
		return errors.New(errors.ErrCodePositionNotFound, "position %q was removed", p.name)
	}
	c := p.canvas
	if c.inResolve {
		c.logger.Debug("deferring position edit made during resolution", "position", p.name)
		c.Post(func() { _ = p.SetConstraints(min, max) })
		return nil
	}
	p.min, p.max = min, max
	c.resolveFrom(p.id)
	return nil
}

// SetLayout parses and applies symbolic endpoint strings.
func (p *DevicePosition) SetLayout(min, max string) error {
	lo, err := ParseConstraint(min)
	if err != nil {
		return &errors.PositionError{Position: p.name, Err: err}
	}
	hi, err := ParseConstraint(max)
	if err != nil {
		return &errors.PositionError{Position: p.name, Err: err}
	}
	return p.SetConstraints(lo, hi)
}

// SetBase makes p relative to base (nil clears it). The change is
// rejected if it would create a cycle or mixes rows with columns.
func (p *DevicePosition) SetBase(base *DevicePosition) error {
	if p.IsNull() {
		return errors.New(errors.ErrCodeInvalidInput, "cannot set base on unset position")
	}
	if p.canvas == nil {
		return errors.New(errors.ErrCodePositionNotFound, "position %q was removed", p.name)
	}
	c := p.canvas
	next := NoPosition
	if base != nil {
		if base.canvas != c || base.IsNull() {
			return &errors.PositionError{Position: p.name, Err: errors.New(errors.ErrCodePositionNotFound, "base %q does not belong to this canvas", base.name)}
		}
		if base.orientation != p.orientation {
			return &errors.PositionError{Position: p.name, Err: errors.New(errors.ErrCodeInvalidInput, "%s cannot be based on %s %q", p.orientation, base.orientation, base.name)}
		}
		next = base.id
	}
	prev := p.base
	p.base = next
	if err := c.checkAcyclic(); err != nil {
		p.base = prev
		return &errors.PositionError{Position: p.name, Err: err}
	}
	c.orderDirty = true
	c.resolveFrom(p.id)
	return nil
}

// Subscribe registers l and returns a function that removes it.
func (p *DevicePosition) Subscribe(l Listener) (cancel func()) {
	if p.IsNull() {
		return func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.listeners = append(p.listeners, subscription{id: id, fn: l})
	return func() {
		for i, s := range p.listeners {
			if s.id == id {
				p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

type subscription struct {
	id int
	fn Listener
}

// ListenerCount returns the number of registered listeners.
func (p *DevicePosition) ListenerCount() int { return len(p.listeners) }

func (p *DevicePosition) String() string {
	if p.IsNull() {
		return "<unset>"
	}
	return p.orientation.String() + " " + p.name + " " + p.bounds.String()
}
