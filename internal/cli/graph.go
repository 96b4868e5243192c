package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seoflow/seoflow/pkg/workflow"
)

// graphCommand creates the graph command for rendering the stage machine.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the workflow stage machine",
		Long: `Render the workflow stage machine as Graphviz DOT, SVG, or PNG.

DOT output goes to stdout unless --output is given; SVG and PNG are
written to seoflow-stages.<ext> by default. Dashed stages degrade and
continue on failure, solid stages abort the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout for dot)")

	return cmd
}

// runGraph renders the stage machine in the requested format.
func runGraph(ctx context.Context, format, output string) error {
	logger := loggerFromContext(ctx)
	dot := workflow.ToDOT()

	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "dot", "":
		if output == "" {
			fmt.Print(dot)
			return nil
		}
		if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printFile(output)
		return nil
	case "svg", "png":
	default:
		return fmt.Errorf("unknown format %q (want dot, svg, or png)", format)
	}

	render := workflow.RenderSVG
	if format == "png" {
		render = workflow.RenderPNG
	}
	if output == "" {
		output = "seoflow-stages." + format
	}

	spinner := newSpinnerWithContext(ctx, "Rendering stage graph...")
	spinner.Start()

	data, err := render(dot)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render %s: %w", format, err)
	}
	logger.Debugf("Rendered %s (%d bytes)", format, len(data))
	if err := os.WriteFile(output, data, 0o644); err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("write %s: %w", output, err)
	}
	spinner.StopWithSuccess("Stage graph rendered")
	printFile(output)
	return nil
}
