package canvas_test

import (
	"fmt"

	"github.com/matzehuels/gridplot/pkg/canvas"
)

func Example() {
	c, _ := canvas.New(400, 300)
	row, _ := c.NewRow("body", "2em", "100%-3em")
	col, _ := c.NewColumn("main", "10%", "90%")
	fmt.Println(row.Bounds(), col.Bounds())

	cell := c.Cells().CellAt(200, 150)
	fmt.Println(cell.Rect())

	line := c.Cells().LineAt(359, 10)
	fmt.Println(line, line.Coord())
	// Output:
	// [26,261] [40,360]
	// (40,26 320x235)
	// main.max 360
}

func ExampleParseConstraint() {
	for _, s := range []string{"50%-3em", "100%-20", "0.5,-20"} {
		c, err := canvas.ParseConstraint(s)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Printf("%-8s -> fraction=%g em=%g px=%d (%v)\n", s, c.Fraction, c.Em, c.Pixels, c)
	}
	// Output:
	// 50%-3em  -> fraction=0.5 em=-3 px=0 (50%-3em)
	// 100%-20  -> fraction=1 em=0 px=-20 (100%-20px)
	// 0.5,-20  -> fraction=0.5 em=0 px=-20 (50%-20px)
}
