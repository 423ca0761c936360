package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridplot/pkg/pipeline"
	"github.com/matzehuels/gridplot/pkg/render/depgraph"
)

// depsOpts holds the flags of the deps command.
type depsOpts struct {
	output   string
	format   string
	detailed bool
	cells    bool
	scale    float64
	noCache  bool
}

// depsCommand creates the deps command for drawing relative positions.
func (c *CLI) depsCommand() *cobra.Command {
	do := depsOpts{format: pipeline.FormatDOT, scale: 2}
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "deps [doc.toml]",
		Short: "Draw which rows and columns are positioned relative to which",
		Long: `Draw which rows and columns are positioned relative to which.

Each position is a node; an edge runs from a base position to every position
declared relative to it. Positions without a base are drawn with a heavy
outline. The graph is written as DOT, or laid out with Graphviz as SVG, PNG
or PDF.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return c.runDeps(cmd.Context(), opts, do)
		},
	}

	cmd.Flags().StringVarP(&do.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&do.format, "format", "f", do.format, "output format: dot (default), svg, png, pdf")
	cmd.Flags().BoolVar(&do.detailed, "detailed", false, "label nodes with constraints and bounds")
	cmd.Flags().BoolVar(&do.cells, "cells", false, "include cells")
	cmd.Flags().Float64Var(&do.scale, "scale", do.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&do.noCache, "no-cache", false, "disable caching")
	addSizeFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runDeps(ctx context.Context, opts pipeline.Options, do depsOpts) error {
	runner, err := c.newRunner(do.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	l, _, err := runner.ResolveLayout(ctx, opts)
	if err != nil {
		return fmt.Errorf("resolve layout: %w", err)
	}

	dot := depgraph.ToDOT(l, depgraph.Options{Detailed: do.detailed, Cells: do.cells})
	var data []byte
	switch do.format {
	case pipeline.FormatDOT:
		data = []byte(dot)
	case pipeline.FormatSVG:
		data, err = depgraph.RenderSVG(dot)
	case pipeline.FormatPNG:
		data, err = depgraph.RenderPNG(dot, do.scale)
	case pipeline.FormatPDF:
		data, err = depgraph.RenderPDF(dot)
	default:
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'png', or 'pdf')", do.format)
	}
	if err != nil {
		return fmt.Errorf("render graph: %w", err)
	}

	if err := writeOutput(do.output, data); err != nil {
		return err
	}
	if do.output != "" {
		printSuccess("Position graph written")
		printFile(do.output)
	}
	return nil
}
