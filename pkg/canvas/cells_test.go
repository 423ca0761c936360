package canvas

import "testing"

func TestCellAtTieBreak(t *testing.T) {
	c := mustCanvas(t, 100, 100)
	mustRow(t, c, "all", "0%", "100%")
	mustRow(t, c, "top", "0%", "50%")
	mustRow(t, c, "a", "0%", "50%")
	mustRow(t, c, "b", "25%", "75%")
	mustColumn(t, c, "col", "0%", "100%")
	ix := c.Cells()

	tests := []struct {
		name    string
		x, y    int
		wantRow string
	}{
		// "top" and "a" are identical; the earlier cell wins.
		{"SmallestAreaThenInsertion", 10, 10, "top"},
		{"NearestCentre", 50, 45, "b"},
		{"OnlyLargeCellContains", 10, 90, "all"},
		{"BottomEdgeExclusive", 10, 50, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.CellAt(tt.x, tt.y)
			if got == nil {
				t.Fatalf("CellAt(%d,%d) = nil", tt.x, tt.y)
			}
			if got.Row.Name() != tt.wantRow {
				t.Errorf("CellAt(%d,%d) row = %s, want %s", tt.x, tt.y, got.Row.Name(), tt.wantRow)
			}
		})
	}
	if got := ix.CellAt(-1, 10); got != nil {
		t.Errorf("CellAt outside canvas = %v", got)
	}
}

func TestCellAtCentreThenArea(t *testing.T) {
	c := mustCanvas(t, 100, 100)
	a := mustRow(t, c, "a", "0%", "50%")
	b := mustRow(t, c, "b", "25%", "75%")
	mustColumn(t, c, "col", "0%", "100%")

	if got := c.Cells().CellAt(50, 30); got == nil || got.Row != a {
		t.Errorf("CellAt(50,30) = %v, want row a", got)
	}
	if got := c.Cells().CellAt(50, 45); got == nil || got.Row != b {
		t.Errorf("CellAt(50,45) = %v, want row b", got)
	}
}

func TestCellsFollowPositions(t *testing.T) {
	c := mustCanvas(t, 100, 100)
	r1 := mustRow(t, c, "r1", "0%", "50%")
	if c.Cells().Len() != 0 {
		t.Fatalf("cells without columns = %d", c.Cells().Len())
	}
	c1 := mustColumn(t, c, "c1", "0%", "50%")
	mustColumn(t, c, "c2", "50%", "100%")
	mustRow(t, c, "r2", "50%", "100%")
	if got := c.Cells().Len(); got != 4 {
		t.Fatalf("cells = %d, want 4", got)
	}

	cell := c.Cells().Cell(r1, c1)
	if err := r1.SetLayout("10", "20"); err != nil {
		t.Fatal(err)
	}
	if got, want := cell.Rect(), (Rect{0, 10, 50, 10}); got != want {
		t.Errorf("cell rect = %v, want %v", got, want)
	}
	if got := r1.HotLine(MaxEdge).Coord(); got != 20 {
		t.Errorf("hot line = %d, want 20", got)
	}
	if got := len(c.Cells().HotLines()); got != 8 {
		t.Errorf("hot lines = %d, want 8", got)
	}
}

func TestLineAt(t *testing.T) {
	c := mustCanvas(t, 100, 100)
	top := mustRow(t, c, "top", "0%", "50%")
	left := mustColumn(t, c, "left", "0%", "40%")

	tests := []struct {
		name string
		x, y int
		want *HotLine
	}{
		{"RowWithinOne", 70, 51, top.HotLine(MaxEdge)},
		{"RowExact", 70, 50, top.HotLine(MaxEdge)},
		{"ColumnWithinOne", 41, 80, left.HotLine(MaxEdge)},
		{"RowsBeforeColumns", 40, 1, top.HotLine(MinEdge)},
		{"Miss", 70, 80, nil},
		{"TooFar", 70, 52, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Cells().LineAt(tt.x, tt.y); got != tt.want {
				t.Errorf("LineAt(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHotLineCoordIsEdge(t *testing.T) {
	c := mustCanvas(t, 101, 101)
	row := mustRow(t, c, "r", "0%", "50%")
	col := mustColumn(t, c, "c", "25%", "75%")

	tests := []struct {
		name string
		line *HotLine
		edge int
	}{
		{"row min", row.HotLine(MinEdge), row.Bounds().Min},
		{"row max", row.HotLine(MaxEdge), row.Bounds().Max},
		{"column min", col.HotLine(MinEdge), col.Bounds().Min},
		{"column max", col.HotLine(MaxEdge), col.Bounds().Max},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.Coord(); got != tt.edge {
				t.Errorf("coord = %d, want the edge %d", got, tt.edge)
			}
		})
	}

	for v, want := range map[float64]int{49.5: 50, 50.49: 50, -0.5: 0, -0.51: -1} {
		if got := roundPixel(v); got != want {
			t.Errorf("roundPixel(%g) = %d, want %d", v, got, want)
		}
	}
}
