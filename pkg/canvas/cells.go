package canvas

// Cell is the intersection of one row and one column.
type Cell struct {
	Row, Column *DevicePosition
	rect        Rect
}

// Rect returns the cached intersection rectangle.
func (c *Cell) Rect() Rect { return c.rect }

func (c *Cell) update() { c.rect = RectOf(c.Row.bounds, c.Column.bounds) }

func (c *Cell) String() string {
	return c.Row.name + "×" + c.Column.name + " " + c.rect.String()
}

// HotLine is one edge of a position, used to pick edges with a pointer.
type HotLine struct {
	Position *DevicePosition
	Edge     Edge
	coord    int
}

// Coord returns the cached pixel coordinate of the edge.
func (h *HotLine) Coord() int { return h.coord }

func (h *HotLine) update() {
	h.coord = roundPixel(float64(h.Position.bounds.Edge(h.Edge)))
}

func (h *HotLine) String() string {
	return h.Position.name + "." + h.Edge.String()
}

type cellKey struct{ row, col PositionID }

// CellIndex holds every cell and hot line of a canvas.
type CellIndex struct {
	rows, cols []*DevicePosition
	cells      []*Cell
	byKey      map[cellKey]*Cell
}

func newCellIndex() *CellIndex {
	return &CellIndex{byKey: make(map[cellKey]*Cell)}
}

// add registers p and creates its hot lines and its cells against every
// position of the opposite orientation.
func (ix *CellIndex) add(p *DevicePosition) {
	p.lines = [2]*HotLine{{Position: p, Edge: MinEdge}, {Position: p, Edge: MaxEdge}}
	if p.orientation == Row {
		ix.rows = append(ix.rows, p)
		for _, col := range ix.cols {
			ix.addCell(p, col)
		}
	} else {
		ix.cols = append(ix.cols, p)
		for _, row := range ix.rows {
			ix.addCell(row, p)
		}
	}
}

func (ix *CellIndex) addCell(row, col *DevicePosition) {
	c := &Cell{Row: row, Column: col}
	c.update()
	ix.cells = append(ix.cells, c)
	ix.byKey[cellKey{row.id, col.id}] = c
}

// remove drops p with all of its cells and hot lines.
func (ix *CellIndex) remove(p *DevicePosition) {
	if p.orientation == Row {
		ix.rows = removePos(ix.rows, p)
	} else {
		ix.cols = removePos(ix.cols, p)
	}
	kept := ix.cells[:0]
	for _, c := range ix.cells {
		if c.Row == p || c.Column == p {
			delete(ix.byKey, cellKey{c.Row.id, c.Column.id})
			continue
		}
		kept = append(kept, c)
	}
	clear(ix.cells[len(kept):])
	ix.cells = kept
	p.lines = [2]*HotLine{}
}

func removePos(list []*DevicePosition, p *DevicePosition) []*DevicePosition {
	for i, q := range list {
		if q == p {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// positionMoved refreshes the derived state of p after resolution.
func (ix *CellIndex) positionMoved(p *DevicePosition) {
	for _, h := range p.lines {
		if h != nil {
			h.update()
		}
	}
	if p.orientation == Row {
		for _, col := range ix.cols {
			if c := ix.byKey[cellKey{p.id, col.id}]; c != nil {
				c.update()
			}
		}
		return
	}
	for _, row := range ix.rows {
		if c := ix.byKey[cellKey{row.id, p.id}]; c != nil {
			c.update()
		}
	}
}

// Cell returns the cell of row × col, or nil.
func (ix *CellIndex) Cell(row, col *DevicePosition) *Cell {
	if row.IsNull() || col.IsNull() {
		return nil
	}
	return ix.byKey[cellKey{row.id, col.id}]
}

// Cells returns all cells in creation order.
func (ix *CellIndex) Cells() []*Cell {
	return append([]*Cell(nil), ix.cells...)
}

// Len returns the number of cells.
func (ix *CellIndex) Len() int { return len(ix.cells) }

// CellAt returns the cell to pick at (x, y), or nil if no cell contains
// the point. Among containing cells the smallest area wins; ties go to the
// cell whose centre is nearest the point, then to the smaller area, then
// to the earlier cell.
func (ix *CellIndex) CellAt(x, y int) *Cell {
	var (
		best     *Cell
		bestDist float64
	)
	for _, c := range ix.cells {
		r := c.rect
		if !r.Contains(x, y) {
			continue
		}
		cx, cy := r.Center()
		dx, dy := cx-float64(x), cy-float64(y)
		dist := dx*dx + dy*dy
		if best == nil || pickBetter(r, dist, best.rect, bestDist) {
			best, bestDist = c, dist
		}
	}
	return best
}

// pickBetter reports whether candidate a beats the current pick b.
func pickBetter(a Rect, aDist float64, b Rect, bDist float64) bool {
	if a.Area() != b.Area() {
		return a.Area() < b.Area()
	}
	if aDist != bDist {
		return aDist < bDist
	}
	return a.Area() < b.Area()
}

// LineAt returns the first hot line within one pixel of the query along
// its perpendicular axis: rows are matched against y and checked before
// columns, which are matched against x.
func (ix *CellIndex) LineAt(x, y int) *HotLine {
	for _, row := range ix.rows {
		for _, h := range row.lines {
			if abs(h.coord-y) <= 1 {
				return h
			}
		}
	}
	for _, col := range ix.cols {
		for _, h := range col.lines {
			if abs(h.coord-x) <= 1 {
				return h
			}
		}
	}
	return nil
}

// HotLines returns row lines followed by column lines.
func (ix *CellIndex) HotLines() []*HotLine {
	out := make([]*HotLine, 0, 2*(len(ix.rows)+len(ix.cols)))
	for _, row := range ix.rows {
		out = append(out, row.lines[:]...)
	}
	for _, col := range ix.cols {
		out = append(out, col.lines[:]...)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
