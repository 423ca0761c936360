package depgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridplot/pkg/canvas"
	"github.com/matzehuels/gridplot/pkg/render"
)

// Options configures dependency graph rendering.
type Options struct {
	// Detailed includes constraints and resolved bounds in node labels.
	// When false, only the position name is shown.
	Detailed bool
	// Cells adds one node per cell with edges from its row and column.
	Cells bool
}

// ToDOT converts a layout snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Positions without a base are drawn with a bold outline; they resolve
// directly against the canvas extent.
func ToDOT(l canvas.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, o := range []canvas.Orientation{canvas.Row, canvas.Column} {
		name := o.String()
		fmt.Fprintf(&buf, "  subgraph cluster_%s {\n", name)
		fmt.Fprintf(&buf, "    label=%q;\n", name+"s")
		buf.WriteString("    style=dashed;\n")
		for _, p := range l.Positions {
			if p.Orientation != name {
				continue
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", nodeID(p.Name), strings.Join(fmtAttrs(p, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, p := range l.Positions {
		if p.Base != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(p.Base), nodeID(p.Name))
		}
	}

	if opts.Cells {
		buf.WriteString("\n")
		for _, c := range l.Cells {
			id := "cell:" + c.Row + "/" + c.Column
			label := c.Row + " × " + c.Column
			if opts.Detailed {
				label += "\n" + c.Rect.String()
			}
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=lightyellow];\n", id, label)
			fmt.Fprintf(&buf, "  %q -> %q [style=dotted, arrowhead=none];\n", nodeID(c.Row), id)
			fmt.Fprintf(&buf, "  %q -> %q [style=dotted, arrowhead=none];\n", nodeID(c.Column), id)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID keeps position nodes apart from cell nodes.
func nodeID(name string) string { return "pos:" + name }

func fmtLabel(p canvas.PositionInfo, detailed bool) string {
	if !detailed {
		return p.Name
	}
	return fmt.Sprintf("%s\nmin: %s\nmax: %s\n%s", p.Name, p.Min, p.Max, p.Bounds)
}

func fmtAttrs(p canvas.PositionInfo, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(p, detailed))}
	if p.Base == "" {
		attrs = append(attrs, "penwidth=2")
	}
	if p.Orientation == canvas.Column.String() {
		attrs = append(attrs, "fillcolor=aliceblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
