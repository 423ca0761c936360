package canvas

// Layout is a value copy of a canvas's resolved state. It is safe to hand
// to other goroutines and is the shape written by the JSON sink.
type Layout struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	EmSize     float64        `json:"em_size"`
	Positions  []PositionInfo `json:"positions"`
	Cells      []CellInfo     `json:"cells"`
	HotLines   []LineInfo     `json:"hot_lines"`
	Components []BindingInfo  `json:"components,omitempty"`
}

// PositionInfo describes one resolved position.
type PositionInfo struct {
	Name        string `json:"name"`
	Orientation string `json:"orientation"`
	Min         string `json:"min"`
	Max         string `json:"max"`
	Base        string `json:"base,omitempty"`
	Bounds      Bounds `json:"bounds"`
}

// CellInfo describes one cell.
type CellInfo struct {
	Row    string `json:"row"`
	Column string `json:"column"`
	Rect   Rect   `json:"rect"`
}

// LineInfo describes one hot line.
type LineInfo struct {
	Position    string `json:"position"`
	Orientation string `json:"orientation"`
	Edge        string `json:"edge"`
	Coord       int    `json:"coord"`
}

// BindingInfo describes a registered component and where it sits.
type BindingInfo struct {
	Name   string `json:"name"`
	Row    string `json:"row,omitempty"`
	Column string `json:"column,omitempty"`
	Bounds *Rect  `json:"bounds,omitempty"`
	State  string `json:"state"`
}

// Snapshot copies the resolved layout. Call it on the executor, or
// through Invoke from another goroutine.
func (c *Canvas) Snapshot() Layout {
	l := Layout{Width: c.width, Height: c.height, EmSize: c.emSize}
	for _, p := range c.Positions() {
		info := PositionInfo{
			Name:        p.name,
			Orientation: p.orientation.String(),
			Min:         p.min.String(),
			Max:         p.max.String(),
			Bounds:      p.Bounds(),
		}
		if b := p.Base(); b != nil {
			info.Base = b.name
		}
		l.Positions = append(l.Positions, info)
	}
	for _, cell := range c.cells.cells {
		l.Cells = append(l.Cells, CellInfo{Row: cell.Row.name, Column: cell.Column.name, Rect: cell.rect})
	}
	for _, h := range c.cells.HotLines() {
		l.HotLines = append(l.HotLines, LineInfo{
			Position:    h.Position.name,
			Orientation: h.Position.orientation.String(),
			Edge:        h.Edge.String(),
			Coord:       h.coord,
		})
	}
	for _, comp := range c.Components() {
		info := BindingInfo{Name: comp.Name(), State: c.State(comp).String()}
		if b := c.binding(comp); b != nil {
			if !b.row.IsNull() {
				info.Row = b.row.name
			}
			if !b.col.IsNull() {
				info.Column = b.col.name
			}
			if r, err := b.resolve(); err == nil {
				info.Bounds = &r
			}
		}
		l.Components = append(l.Components, info)
	}
	return l
}

// Position returns the named position in l.
func (l Layout) Position(name string) (PositionInfo, bool) {
	for _, p := range l.Positions {
		if p.Name == name {
			return p, true
		}
	}
	return PositionInfo{}, false
}
