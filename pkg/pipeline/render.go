package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridplot/pkg/document"
	"github.com/matzehuels/gridplot/pkg/observability"
	"github.com/matzehuels/gridplot/pkg/render/depgraph"
	"github.com/matzehuels/gridplot/pkg/render/sink"
)

// Render produces every requested format from an idle scene. Formats are
// rendered concurrently; the first failure cancels the rest.
func Render(ctx context.Context, scene *document.Scene, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	layout := scene.Canvas.Snapshot()
	svgOpts := buildSVGOptions(scene, opts)

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var data []byte
			var err error

			switch format {
			case FormatSVG:
				data = sink.RenderSVG(scene.Canvas, svgOpts...)
			case FormatPNG:
				pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(svgOpts...)}
				if opts.Converter {
					pngOpts = append(pngOpts, sink.WithConverter())
				}
				data, err = sink.RenderPNG(scene.Canvas, pngOpts...)
			case FormatPDF:
				data, err = sink.RenderPDF(scene.Canvas, sink.WithPDFSVGOptions(svgOpts...))
			case FormatJSON:
				data, err = sink.RenderJSON(layout, sink.WithJSONTitle(scene.Doc.Title), sink.WithJSONSource(opts.Path))
			case FormatDOT:
				data = []byte(depgraph.ToDOT(layout, depgraph.Options{Detailed: true}))
			default:
				err = fmt.Errorf("unsupported format: %s", format)
			}

			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options shared by the SVG, PNG and
// PDF sinks.
func buildSVGOptions(scene *document.Scene, opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if scene.Doc.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(scene.Doc.Title))
	}
	if opts.Grid {
		svgOpts = append(svgOpts, sink.WithGrid())
	}
	switch opts.Background {
	case "":
	case "none":
		svgOpts = append(svgOpts, sink.WithBackground(nil))
	default:
		if c, err := document.ParseColor(opts.Background); err == nil {
			svgOpts = append(svgOpts, sink.WithBackground(c))
		}
	}
	return svgOpts
}
