package canvas

import (
	"context"
	stderrors "errors"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gridplot/pkg/errors"
	"github.com/matzehuels/gridplot/pkg/observability"
)

// DefaultEmSize is the em size in pixels used when none is configured.
const DefaultEmSize = 13.0

// Sentinel errors. They are wrapped in coded errors from pkg/errors.
var (
	// ErrUnresolvedBinding marks a component bound to an unset row or column.
	ErrUnresolvedBinding = stderrors.New("unresolved binding")

	// ErrWaitInDrain is returned by WaitUntilIdle when called from inside a
	// drain, where waiting would deadlock.
	ErrWaitInDrain = stderrors.New("wait for idle from inside a drain")
)

// Canvas owns device positions, their cells and hot lines, the component
// registry and the update scheduler.
type Canvas struct {
	width, height int
	emSize        float64
	logger        *log.Logger

	positions  []*DevicePosition
	byName     map[string]*DevicePosition
	topo       []PositionID
	orderDirty bool
	inResolve  bool

	nullRow, nullCol *DevicePosition

	cells      *CellIndex
	components map[string]Component
	bindings   map[Component]*binding
	bmu        sync.RWMutex // guards bindings

	sched   *scheduler
	running atomic.Bool
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEmSize sets the pixel size of one em.
func WithEmSize(px float64) Option {
	return func(c *Canvas) {
		if px > 0 {
			c.emSize = px
		}
	}
}

// WithPollInterval sets how often WaitUntilIdle re-checks without being woken.
func WithPollInterval(d time.Duration) Option {
	return func(c *Canvas) { c.sched = newScheduler(d) }
}

// New creates a canvas of the given pixel size.
func New(width, height int, opts ...Option) (*Canvas, error) {
	if err := errors.ValidateSize(width, height); err != nil {
		return nil, err
	}
	c := &Canvas{
		width:      width,
		height:     height,
		emSize:     DefaultEmSize,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		byName:     make(map[string]*DevicePosition),
		cells:      newCellIndex(),
		components: make(map[string]Component),
		bindings:   make(map[Component]*binding),
		sched:      newScheduler(DefaultPollInterval),
	}
	c.nullRow = &DevicePosition{canvas: c, id: NoPosition, name: "<unset row>", orientation: Row, base: NoPosition}
	c.nullCol = &DevicePosition{canvas: c, id: NoPosition, name: "<unset column>", orientation: Column, base: NoPosition}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Logger returns the canvas logger.
func (c *Canvas) Logger() *log.Logger { return c.logger }

// Size returns the canvas extent in pixels.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// EmSize returns the pixel size of one em.
func (c *Canvas) EmSize() float64 { return c.emSize }

// Resize changes the canvas extent and eagerly re-resolves every position.
func (c *Canvas) Resize(width, height int) error {
	if err := errors.ValidateSize(width, height); err != nil {
		return err
	}
	if c.inResolve {
		c.Post(func() { _ = c.Resize(width, height) })
		return nil
	}
	if width == c.width && height == c.height {
		return nil
	}
	c.logger.Debug("resize", "width", width, "height", height)
	c.width, c.height = width, height
	c.resolveAll()
	return nil
}

// SetEmSize changes the em size and re-resolves every position.
func (c *Canvas) SetEmSize(px float64) error {
	if px <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "em size must be positive, got %g", px)
	}
	if c.inResolve {
		c.Post(func() { _ = c.SetEmSize(px) })
		return nil
	}
	c.emSize = px
	c.resolveAll()
	return nil
}

// NullRow returns the unset row sentinel.
func (c *Canvas) NullRow() *DevicePosition { return c.nullRow }

// NullColumn returns the unset column sentinel.
func (c *Canvas) NullColumn() *DevicePosition { return c.nullCol }

// =============================================================================
// Positions
// =============================================================================

// PositionDef declares a position. Base names another position of the
// same orientation that this one is relative to.
type PositionDef struct {
	Name        string
	Orientation Orientation
	Min, Max    string
	Base        string
}

// NewRow adds a row resolved against the canvas height.
func (c *Canvas) NewRow(name, min, max string) (*DevicePosition, error) {
	return c.AddPosition(PositionDef{Name: name, Orientation: Row, Min: min, Max: max})
}

// NewColumn adds a column resolved against the canvas width.
func (c *Canvas) NewColumn(name, min, max string) (*DevicePosition, error) {
	return c.AddPosition(PositionDef{Name: name, Orientation: Column, Min: min, Max: max})
}

// NewRelative adds a position of base's orientation resolved against
// base's interval.
func (c *Canvas) NewRelative(name string, base *DevicePosition, min, max string) (*DevicePosition, error) {
	if base.IsNull() {
		return nil, errors.New(errors.ErrCodePositionNotFound, "%q: base position is unset", name)
	}
	return c.AddPosition(PositionDef{Name: name, Orientation: base.orientation, Min: min, Max: max, Base: base.name})
}

// AddPosition adds a single position.
func (c *Canvas) AddPosition(def PositionDef) (*DevicePosition, error) {
	ps, err := c.AddPositions([]PositionDef{def})
	if err != nil {
		return nil, err
	}
	return ps[0], nil
}

// AddPositions adds a batch of positions. Bases may refer to positions
// later in the batch. All definitions are validated before any is added:
// malformed layout strings, unknown or mismatched bases, duplicate names
// and cyclic base chains fail the whole batch.
func (c *Canvas) AddPositions(defs []PositionDef) ([]*DevicePosition, error) {
	if c.inResolve {
		return nil, errors.New(errors.ErrCodeReentrantResolve, "positions cannot be added from a bounds listener")
	}
	type parsed struct {
		def      PositionDef
		min, max Constraint
	}
	batch := make([]parsed, 0, len(defs))
	names := make(map[string]Orientation, len(defs))
	for _, d := range defs {
		if err := errors.ValidateName(d.Name); err != nil {
			return nil, &errors.PositionError{Position: d.Name, Err: err}
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, &errors.PositionError{Position: d.Name, Err: errors.New(errors.ErrCodeDuplicateName, "position already exists")}
		}
		if _, dup := names[d.Name]; dup {
			return nil, &errors.PositionError{Position: d.Name, Err: errors.New(errors.ErrCodeDuplicateName, "position declared twice")}
		}
		names[d.Name] = d.Orientation
		lo, err := ParseConstraint(d.Min)
		if err != nil {
			return nil, &errors.PositionError{Position: d.Name, Err: err}
		}
		hi, err := ParseConstraint(d.Max)
		if err != nil {
			return nil, &errors.PositionError{Position: d.Name, Err: err}
		}
		batch = append(batch, parsed{def: d, min: lo, max: hi})
	}

	for _, p := range batch {
		if p.def.Base == "" {
			continue
		}
		var orient Orientation
		if existing, ok := c.byName[p.def.Base]; ok {
			orient = existing.orientation
		} else if o, ok := names[p.def.Base]; ok {
			orient = o
		} else {
			return nil, &errors.PositionError{Position: p.def.Name, Err: errors.New(errors.ErrCodePositionNotFound, "undefined base %q", p.def.Base)}
		}
		if orient != p.def.Orientation {
			return nil, &errors.PositionError{Position: p.def.Name, Err: errors.New(errors.ErrCodeInvalidInput, "%s cannot be based on %s %q", p.def.Orientation, orient, p.def.Base)}
		}
	}

	// Allocate arena slots, then link bases by id.
	first := len(c.positions)
	created := make([]*DevicePosition, len(batch))
	for i, p := range batch {
		dp := &DevicePosition{
			canvas:      c,
			id:          PositionID(first + i),
			name:        p.def.Name,
			orientation: p.def.Orientation,
			min:         p.min,
			max:         p.max,
			base:        NoPosition,
		}
		created[i] = dp
		c.positions = append(c.positions, dp)
		c.byName[dp.name] = dp
	}
	for i, p := range batch {
		if p.def.Base != "" {
			created[i].base = c.byName[p.def.Base].id
		}
	}
	if err := c.checkAcyclic(); err != nil {
		for _, dp := range created {
			delete(c.byName, dp.name)
		}
		c.positions = c.positions[:first]
		return nil, err
	}

	for _, dp := range created {
		c.cells.add(dp)
	}
	c.orderDirty = true
	ids := make(map[PositionID]bool, len(created))
	for _, dp := range created {
		ids[dp.id] = true
	}
	c.resolveWhere(func(id PositionID) bool { return ids[id] })
	c.logger.Debug("added positions", "count", len(created))
	return created, nil
}

// Position looks up a position by name.
func (c *Canvas) Position(name string) (*DevicePosition, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Positions returns all live positions in creation order.
func (c *Canvas) Positions() []*DevicePosition {
	out := make([]*DevicePosition, 0, len(c.byName))
	for _, p := range c.positions {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Rows returns all rows in creation order.
func (c *Canvas) Rows() []*DevicePosition { return c.filter(Row) }

// Columns returns all columns in creation order.
func (c *Canvas) Columns() []*DevicePosition { return c.filter(Column) }

func (c *Canvas) filter(o Orientation) []*DevicePosition {
	var out []*DevicePosition
	for _, p := range c.positions {
		if p != nil && p.orientation == o {
			out = append(out, p)
		}
	}
	return out
}

// RemovePosition detaches p from the canvas. Positions based on p must be
// removed first. Components bound to p are rebound to the unset sentinel
// and marked dirty, so the next drain reports them.
func (c *Canvas) RemovePosition(p *DevicePosition) error {
	if p.IsNull() || p.canvas != c || c.positions[p.id] != p {
		return errors.New(errors.ErrCodePositionNotFound, "position is not part of this canvas")
	}
	if c.inResolve {
		return errors.New(errors.ErrCodeReentrantResolve, "positions cannot be removed from a bounds listener")
	}
	for _, q := range c.positions {
		if q != nil && q.base == p.id {
			return &errors.PositionError{Position: p.name, Err: errors.New(errors.ErrCodePositionInUse, "%q is based on it", q.name)}
		}
	}
	for _, b := range c.boundComponents() {
		if b.row != p && b.col != p {
			continue
		}
		row, col := b.row, b.col
		if row == p {
			row = c.nullRow
		}
		if col == p {
			col = c.nullCol
		}
		c.logger.Warn("component lost its position", "component", b.comp.Name(), "position", p.name)
		_ = c.Bind(b.comp, row, col)
	}
	c.cells.remove(p)
	p.listeners = nil
	c.positions[p.id] = nil
	delete(c.byName, p.name)
	c.orderDirty = true
	p.canvas = nil
	return nil
}

// MoveHotLine moves the edge of h to coord by rewriting the pixel offset
// of the constraint that produces it. Fractional and em terms are kept.
func (c *Canvas) MoveHotLine(h *HotLine, coord int) error {
	p := h.Position
	if p.IsNull() || p.canvas != c {
		return errors.New(errors.ErrCodePositionNotFound, "hot line does not belong to this canvas")
	}
	origin, ref := p.reference()
	lo, hi := p.raw(float64(origin), float64(ref))
	// The resolved min edge comes from the max constraint when the
	// constraints are reversed.
	fromMin := (h.Edge == MinEdge) == (lo <= hi)
	min, max := p.min, p.max
	delta := coord - h.coord
	if fromMin {
		min.Pixels += delta
	} else {
		max.Pixels += delta
	}
	return p.SetConstraints(min, max)
}

// Cells returns the cell index.
func (c *Canvas) Cells() *CellIndex { return c.cells }

// =============================================================================
// Components
// =============================================================================

// Register adds comp to the name registry.
func (c *Canvas) Register(comp Component) error {
	name := comp.Name()
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if _, dup := c.components[name]; dup {
		return errors.New(errors.ErrCodeDuplicateName, "component %q already registered", name)
	}
	c.components[name] = comp
	return nil
}

// Component looks up a registered component by name.
func (c *Canvas) Component(name string) (Component, bool) {
	comp, ok := c.components[name]
	return comp, ok
}

// Components returns registered components sorted by name.
func (c *Canvas) Components() []Component {
	names := make([]string, 0, len(c.components))
	for n := range c.components {
		names = append(names, n)
	}
	slices.Sort(names)
	out := make([]Component, len(names))
	for i, n := range names {
		out[i] = c.components[n]
	}
	return out
}

// Unregister removes comp from the registry and unbinds it.
func (c *Canvas) Unregister(comp Component) {
	if c.components[comp.Name()] == comp {
		delete(c.components, comp.Name())
	}
	c.Unbind(comp)
}

// =============================================================================
// Updates
// =============================================================================

// MarkDirty schedules comp for re-layout. It is idempotent until the next
// drain and safe to call from any goroutine.
func (c *Canvas) MarkDirty(comp Component) {
	if b := c.binding(comp); b != nil {
		c.sched.markDirty(b)
	}
}

// State returns comp's update state; unbound components are Clean. Dirty
// is never reported: marking a component enqueues it in the same step.
func (c *Canvas) State(comp Component) State {
	if b := c.binding(comp); b != nil {
		return c.sched.state(b)
	}
	return Clean
}

// Drain runs posted tasks and lays out every dirty component once. Errors
// from individual components are logged and joined into the result; they
// never stop the pass. It returns the number of components laid out.
func (c *Canvas) Drain() (int, error) {
	start := time.Now()
	n, errs, ran := c.sched.drain(c.layout)
	if !ran {
		return 0, nil
	}
	if n > 0 || len(errs) > 0 {
		observability.Layout().OnDrain(context.Background(), n, len(errs), time.Since(start))
	}
	return n, stderrors.Join(errs...)
}

// layout resolves and lays out one binding.
func (c *Canvas) layout(b *binding) error {
	r, err := b.resolve()
	if err != nil {
		c.logger.Error("skipping component", "component", b.comp.Name(), "err", err)
		return err
	}
	b.bounds = r
	if err := b.comp.Relayout(r); err != nil {
		c.logger.Warn("relayout failed", "component", b.comp.Name(), "err", err)
		return errors.Wrap(errors.ErrCodeInternal, err, "relayout %q", b.comp.Name())
	}
	b.comp.Repaint()
	return nil
}

// Post queues fn to run on the executor at the start of the next drain.
// Safe to call from any goroutine.
func (c *Canvas) Post(fn func()) { c.sched.post(fn) }

// Invoke runs fn on the executor and waits for it. Without a running
// executor fn runs on the calling goroutine.
func (c *Canvas) Invoke(ctx context.Context, fn func()) error {
	if !c.running.Load() {
		fn()
		return nil
	}
	done := make(chan struct{})
	c.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run makes the calling goroutine the canvas executor until ctx ends.
// It drains whenever work is posted or a component becomes dirty.
func (c *Canvas) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeInternal, "canvas executor already running")
	}
	defer c.running.Store(false)
	c.logger.Debug("executor started")
	for {
		if _, err := c.Drain(); err != nil {
			c.logger.Debug("drain finished with errors", "err", err)
		}
		select {
		case <-ctx.Done():
			c.logger.Debug("executor stopped")
			return ctx.Err()
		case <-c.sched.wake:
		}
	}
}

// Running reports whether an executor loop is active.
func (c *Canvas) Running() bool { return c.running.Load() }

// WaitUntilIdle blocks until no tasks or dirty components are queued, no
// drain is running, no pending change is registered and the display is
// unlocked. It re-checks after every wake-up, so work registered while
// waiting extends the wait. Without a running executor the caller drains.
//
// Calling it from inside a drain returns ErrWaitInDrain.
func (c *Canvas) WaitUntilIdle(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observability.Layout().OnIdle(ctx, time.Since(start), err) }()

	if c.sched.inDrain() {
		return errors.Wrap(errors.ErrCodeWaitInDrain, ErrWaitInDrain, "WaitUntilIdle")
	}
	inline := !c.running.Load()
	for {
		if inline && c.sched.queued() > 0 {
			if _, err := c.Drain(); err != nil {
				c.logger.Debug("drain finished with errors", "err", err)
			}
		}
		idle, changed := c.sched.snapshot()
		if idle {
			return nil
		}
		timer := time.NewTimer(c.sched.poll)
		select {
		case <-changed:
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		timer.Stop()
	}
}

// =============================================================================
// Pending changes and display lock
// =============================================================================

// NewOwnerID returns a fresh identifier for pending-change tokens.
func NewOwnerID() string { return uuid.NewString() }

// RegisterPendingChange records that owner is computing something that
// will change the picture. Registering twice is the same as once.
func (c *Canvas) RegisterPendingChange(owner string) { c.sched.registerPending(owner) }

// ClearPendingChange removes owner's token.
func (c *Canvas) ClearPendingChange(owner string) { c.sched.clearPending(owner) }

// PendingChanges returns the registered owners, sorted.
func (c *Canvas) PendingChanges() []string { return c.sched.pendingOwners() }

// LockDisplay marks the canvas as not settled until UnlockDisplay.
func (c *Canvas) LockDisplay() { c.sched.lock() }

// UnlockDisplay releases one LockDisplay. Unbalanced calls are logged.
func (c *Canvas) UnlockDisplay() {
	if !c.sched.unlock() {
		c.logger.Warn("UnlockDisplay without matching LockDisplay")
	}
}
