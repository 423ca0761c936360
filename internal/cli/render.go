package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridplot/pkg/pipeline"
)

// renderOpts holds the flags of the render command that are not pipeline options.
type renderOpts struct {
	output  string // output file (single format) or base path (several)
	formats string // comma-separated formats
	noCache bool
}

// renderCommand creates the render command for generating outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [doc.toml]",
		Short: "Render a layout document to SVG, PNG, PDF, JSON or DOT",
		Long: `Render a layout document to SVG, PNG, PDF, JSON or DOT.

Formats are rendered in parallel. With a single format, -o names the output
file ("-" writes to stdout); with several, -o is a base path and each format
gets its own extension. PNG uses the built-in rasteriser unless --converter
asks for rsvg-convert; PDF always needs rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Formats = pipeline.ParseFormats(ro.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.Grid, "grid", false, "overlay cells and hot lines")
	cmd.Flags().StringVar(&opts.Background, "background", "", `background color ("none" for transparent)`)
	cmd.Flags().BoolVar(&opts.Converter, "converter", false, "rasterise PNG with rsvg-convert")
	addSizeFlags(cmd, &opts)

	return cmd
}

// runRender executes the pipeline and writes each artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro renderOpts) error {
	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := ro.output == "-"
	if toStdout && len(opts.Formats) > 1 {
		return fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Path))
	if !toStdout {
		spinner.Start()
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if !toStdout {
			spinner.StopWithError("Render failed")
		}
		return err
	}
	if ctx.Err() != nil {
		if !toStdout {
			spinner.Stop()
		}
		return ctx.Err()
	}

	paths := outputPaths(opts.Path, ro.output, opts.Formats)
	formats := make([]string, 0, len(result.Artifacts))
	for f := range result.Artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	for _, format := range formats {
		spinner.SetMessage(fmt.Sprintf("Writing %s...", paths[format]))
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			if !toStdout {
				spinner.StopWithError("Write failed")
			}
			return fmt.Errorf("write %s: %w", format, err)
		}
		c.Logger.Debug("wrote artifact", "format", format, "bytes", len(result.Artifacts[format]))
	}
	if toStdout {
		return nil
	}
	spinner.Stop()

	printSuccess("Rendered %s", opts.Path)
	for _, format := range formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Positions, result.Stats.Cells, result.Stats.Components, result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to the file it is written to.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
