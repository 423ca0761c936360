package canvas

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/gridplot/pkg/errors"
	"github.com/matzehuels/gridplot/pkg/observability"
)

// order returns live arena ids with every base ahead of its dependents.
func (c *Canvas) order() []PositionID {
	if c.orderDirty {
		order, err := c.topoOrder()
		if err != nil {
			// Every edit path validates acyclicity first.
			panic("canvas: position graph became cyclic: " + err.Error())
		}
		c.topo = order
		c.orderDirty = false
	}
	return c.topo
}

// topoOrder sorts the arena by base chains. Each position has at most one
// base, so the walk follows a chain upwards until it reaches a finished
// position, then emits the chain top-down.
func (c *Canvas) topoOrder() ([]PositionID, error) {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(c.positions))
	order := make([]PositionID, 0, len(c.positions))

	for i, p := range c.positions {
		if p == nil || color[i] == black {
			continue
		}
		var chain []PositionID
		cur := PositionID(i)
		for cur != NoPosition && color[cur] == white {
			color[cur] = gray
			chain = append(chain, cur)
			cur = c.positions[cur].base
		}
		if cur != NoPosition && color[cur] == gray {
			return nil, c.cycleError(chain, cur)
		}
		for j := len(chain) - 1; j >= 0; j-- {
			color[chain[j]] = black
			order = append(order, chain[j])
		}
	}
	return order, nil
}

func (c *Canvas) cycleError(chain []PositionID, start PositionID) error {
	var names []string
	seen := false
	for _, id := range chain {
		if id == start {
			seen = true
		}
		if seen {
			names = append(names, c.positions[id].name)
		}
	}
	names = append(names, c.positions[start].name)
	return errors.New(errors.ErrCodeCycle, "relative positions form a cycle: %s", strings.Join(names, " -> "))
}

func (c *Canvas) checkAcyclic() error {
	_, err := c.topoOrder()
	return err
}

// resolveAll re-resolves every position, as after a resize.
func (c *Canvas) resolveAll() {
	c.resolveWhere(func(PositionID) bool { return true })
}

// resolveFrom re-resolves id and every position whose base chain reaches it.
func (c *Canvas) resolveFrom(id PositionID) {
	affected := map[PositionID]bool{id: true}
	c.resolveWhere(func(pid PositionID) bool {
		if affected[pid] {
			return true
		}
		if b := c.positions[pid].base; b != NoPosition && affected[b] {
			affected[pid] = true
			return true
		}
		return false
	})
}

// resolveWhere resolves the selected positions in dependency order. Because
// bases come first in the order, a dependent's base is always final by the
// time the dependent is evaluated. Cells and hot lines are updated before
// any listener runs.
func (c *Canvas) resolveWhere(include func(PositionID) bool) {
	if c.inResolve {
		c.logger.Warn("ignoring reentrant resolution request")
		return
	}
	start := time.Now()
	c.inResolve = true
	defer func() { c.inResolve = false }()

	var (
		events []BoundsChanged
		count  int
	)
	for _, id := range c.order() {
		if !include(id) {
			continue
		}
		count++
		p := c.positions[id]
		next := p.Resolve()
		prev, wasResolved := p.bounds, p.resolved
		p.bounds = next
		p.resolved = true
		if next != prev || !wasResolved {
			c.cells.positionMoved(p)
		}
		if next != prev {
			events = append(events, BoundsChanged{Position: p, Old: prev, New: next})
		}
	}

	for _, ev := range events {
		subs := append([]subscription(nil), ev.Position.listeners...)
		for _, s := range subs {
			s.fn(ev)
		}
	}

	observability.Layout().OnResolve(context.Background(), count, len(events), time.Since(start))
}
