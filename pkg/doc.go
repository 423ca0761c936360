// Package pkg provides the core libraries for gridplot.
//
// # Overview
//
// Gridplot places plots and axes on a grid of rows and columns whose edges
// are written as layout strings ("10% + 2em", "100% - 40px"), optionally
// relative to another row or column. The pkg directory is organized into
// four areas:
//
//  1. Layout: [canvas] resolves rows and columns, indexes cells and hot
//     lines, and re-lays-out bound components through its scheduler.
//  2. Plotting: [axis] maps data values to pixels; [plot] draws series and
//     functions inside a cell.
//  3. Documents and orchestration: [document] decodes TOML layout files
//     and builds scenes; [pipeline] loads, resolves, renders and caches.
//  4. Output: [render/sink] writes SVG, PNG, PDF and JSON;
//     [render/depgraph] draws the relative_to graph with Graphviz.
//
// # Architecture
//
// The typical data flow:
//
//	layout.toml
//	     ↓
//	[document] package (parse, validate, build a scene)
//	     ↓
//	[canvas] package (resolve positions, drain the scheduler)
//	     ↓
//	[render/sink] package (draw every component)
//	     ↓
//	SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	doc, _ := document.Load("layout.toml")
//	scene, _ := pipeline.BuildScene(ctx, doc, pipeline.Options{})
//	defer scene.Close()
//
//	svg := sink.RenderSVG(scene.Canvas)
//
// # Supporting Packages
//
// [cache] stores resolved layouts and rendered artifacts on disk, in
// memory or in Redis. [errors] defines coded errors shared by every
// package. [observability] exposes hooks for layout and render events.
// [buildinfo] carries version information set at link time.
//
// [canvas]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/canvas
// [axis]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/axis
// [plot]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/plot
// [document]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/document
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/pipeline
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/render/sink
// [render/depgraph]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/render/depgraph
// [cache]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/gridplot/pkg/buildinfo
package pkg
