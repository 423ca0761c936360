// Package render provides output rendering for resolved canvases.
//
// # Overview
//
// This package contains the shared pieces of the rendering layer:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Canvas sinks (in [sink] subpackage)
//   - Position dependency graphs (in [depgraph] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). They are used by both the
// canvas sinks and the dependency graph renderer.
//
//	svg, err := sink.RenderSVG(c)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [HasConverter] reports whether rsvg-convert is on PATH; the PNG sink
// falls back to its built-in rasteriser when it is not.
//
// [sink]: github.com/matzehuels/gridplot/pkg/render/sink
// [depgraph]: github.com/matzehuels/gridplot/pkg/render/depgraph
package render
