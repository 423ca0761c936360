// Package depgraph renders the relative-positioning graph of a canvas.
//
// # Overview
//
// Positions may be defined relative to another position of the same
// orientation. This package draws those chains as a node-link diagram
// using Graphviz: one node per position, an arrow from each base to the
// positions resolved against it, rows and columns in separate clusters.
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := depgraph.ToDOT(c.Snapshot(), depgraph.Options{Detailed: true})
//	svg, err := depgraph.RenderSVG(dot)
//
// For PDF or PNG output:
//
//	pdf, err := depgraph.RenderPDF(dot)
//	png, err := depgraph.RenderPNG(dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: include constraints and resolved bounds in node labels
//   - Cells: add a node per cell linked to its row and column
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package depgraph
