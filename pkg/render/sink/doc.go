// Package sink provides output format renderers for resolved canvases.
//
// # Overview
//
// A "sink" turns a [canvas.Canvas] whose components have settled into a
// final output format. This package provides renderers for:
//
//   - SVG: Scalable vector graphics, one clip path per bound cell
//   - PNG: Raster output through a built-in rasteriser or rsvg-convert
//   - PDF: Print-ready output (requires rsvg-convert)
//   - JSON: Resolved layout export for external tools
//
// Every painting sink implements [canvas.Surface]; the canvas hands each
// registered painter a [canvas.DrawingContext] clipped to its cell.
//
// # SVG Output
//
//	svg := sink.RenderSVG(c, sink.WithGrid(), sink.WithTitle("dashboard"))
//
// [WithGrid] overlays cell outlines and hot lines, which is handy when
// debugging a layout document.
//
// # PNG Output
//
//	png, err := sink.RenderPNG(c, sink.WithScale(2))
//
// The built-in rasteriser uses golang.org/x/image/vector and the Go fonts,
// so it has no external requirements. [WithConverter] routes through
// rsvg-convert instead for output identical to the SVG.
//
// # PDF Output
//
// [RenderPDF] renders SVG and converts it via [render.ToPDF]. This requires
// librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// # JSON Output
//
// [RenderJSON] exports [canvas.Layout] (positions, cells, hot lines and
// component bindings) as pretty-printed JSON.
//
// [render.ToPDF]: github.com/matzehuels/gridplot/pkg/render.ToPDF
package sink
