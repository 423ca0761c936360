package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridplot/pkg/pipeline"
	"github.com/matzehuels/gridplot/pkg/render/sink"
)

// layoutOpts holds the flags of the layout command.
type layoutOpts struct {
	output  string
	json    bool
	noCache bool
	refresh bool
}

// layoutCommand creates the layout command for resolving a document.
func (c *CLI) layoutCommand() *cobra.Command {
	var lo layoutOpts
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [doc.toml]",
		Short: "Resolve a layout document and print its grid",
		Long: `Resolve a layout document and print its grid.

The layout command builds the canvas described by the document, waits until
every component has laid out, and prints the resolved rows, columns and
cells. With --json (or an -o path) the resolved layout is written in the
same format as 'render -f json'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			opts.Refresh = lo.refresh
			return c.runLayout(cmd.Context(), opts, lo)
		},
	}

	cmd.Flags().StringVarP(&lo.output, "output", "o", "", "write the resolved layout as JSON to this file")
	cmd.Flags().BoolVar(&lo.json, "json", false, "print the resolved layout as JSON")
	cmd.Flags().BoolVar(&lo.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&lo.refresh, "refresh", false, "ignore cached layouts")
	addSizeFlags(cmd, &opts)

	return cmd
}

// runLayout resolves the document and prints or writes the layout.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, lo layoutOpts) error {
	runner, err := c.newRunner(lo.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Resolving layout...")
	spinner.Start()

	prog := newProgress(c.Logger)
	l, cached, err := runner.ResolveLayout(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("resolve layout: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Resolved %d positions", len(l.Positions)))

	if lo.json || lo.output != "" {
		data, err := sink.RenderJSON(l, sink.WithJSONSource(opts.Path), sink.WithJSONComponents())
		if err != nil {
			return err
		}
		if err := writeOutput(lo.output, data); err != nil {
			return fmt.Errorf("write output %s: %w", lo.output, err)
		}
		if lo.output != "" {
			printSuccess("Layout written")
			printFile(lo.output)
		}
		return nil
	}

	printSuccess("Layout of %s (%dx%d, em %gpx)", opts.Path, l.Width, l.Height, l.EmSize)
	fmt.Fprintln(stdout, positionTable(l))
	if len(l.Cells) > 0 {
		fmt.Fprintln(stdout, cellTable(l))
	}
	printStats(len(l.Positions), len(l.Cells), len(l.Components), cached)
	printNewline()
	printNextStep("Render", appName+" render "+opts.Path)
	return nil
}

// addSizeFlags registers the canvas size overrides shared by several commands.
func addSizeFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().IntVar(&opts.Width, "width", 0, "override the canvas width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "override the canvas height in pixels")
	cmd.Flags().Float64Var(&opts.EmSize, "em", 0, "override the em size in pixels")
	cmd.Flags().DurationVar(&opts.IdleTimeout, "idle-timeout", pipeline.DefaultIdleTimeout, "how long to wait for components to settle")
}
