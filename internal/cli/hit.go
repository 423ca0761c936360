package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/document"
	"github.com/matzehuels/gridplot/pkg/pipeline"
)

// hitResult is what lies under one pixel.
type hitResult struct {
	X          int              `json:"x"`
	Y          int              `json:"y"`
	Cell       *canvas.CellInfo `json:"cell,omitempty"`
	Line       *canvas.LineInfo `json:"line,omitempty"`
	Components []string         `json:"components,omitempty"`
}

// hitCommand creates the hit command for hit-testing a pixel.
func (c *CLI) hitCommand() *cobra.Command {
	var asJSON bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "hit [doc.toml] [x] [y]",
		Short: "Show the cell and hot line under a pixel",
		Long: `Show the cell and hot line under a pixel.

The cell is the smallest one containing the point; ties go to the cell whose
centre is nearest. A hot line matches when the point is within one pixel of
a row or column edge.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid x %q: %w", args[1], err)
			}
			y, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid y %q: %w", args[2], err)
			}
			opts.Path = args[0]
			opts.Logger = c.Logger

			scene, err := buildScene(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer scene.Close()

			res := hitTest(scene.Canvas, x, y)
			if asJSON {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				return writeOutput("", append(data, '\n'))
			}
			printHit(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	addSizeFlags(cmd, &opts)

	return cmd
}

// buildScene loads the document named by opts and lays it out.
func buildScene(ctx context.Context, opts pipeline.Options) (*document.Scene, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	doc, _, err := pipeline.Load(opts)
	if err != nil {
		return nil, err
	}
	return pipeline.BuildScene(ctx, doc, opts)
}

// hitTest queries c's cell index at (x, y). Call it on the executor.
func hitTest(c *canvas.Canvas, x, y int) hitResult {
	res := hitResult{X: x, Y: y}
	if cell := c.Cells().CellAt(x, y); cell != nil {
		res.Cell = &canvas.CellInfo{Row: cell.Row.Name(), Column: cell.Column.Name(), Rect: cell.Rect()}
		for _, comp := range c.Components() {
			row, col, ok := c.Binding(comp)
			if ok && row == cell.Row && col == cell.Column {
				res.Components = append(res.Components, comp.Name())
			}
		}
	}
	if h := c.Cells().LineAt(x, y); h != nil {
		res.Line = &canvas.LineInfo{
			Position:    h.Position.Name(),
			Orientation: h.Position.Orientation().String(),
			Edge:        h.Edge.String(),
			Coord:       h.Coord(),
		}
	}
	return res
}

func printHit(res hitResult) {
	printInfo("Point (%d, %d)", res.X, res.Y)
	if res.Cell == nil {
		printKeyValue("cell", "—")
	} else {
		printKeyValue("cell", fmt.Sprintf("%s × %s %s", res.Cell.Row, res.Cell.Column, res.Cell.Rect))
	}
	if res.Line == nil {
		printKeyValue("hot line", "—")
	} else {
		printKeyValue("hot line", fmt.Sprintf("%s %s @ %d", res.Line.Position, res.Line.Edge, res.Line.Coord))
	}
	for _, name := range res.Components {
		printKeyValue("component", name)
	}
}
