package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sashob/springbox/pkg/chart"
	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/graph"
	"github.com/sashob/springbox/pkg/pipeline"
)

// renderCommand creates the render command for turning a saved layout into
// chart artifacts without re-running the simulation.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		formats   string
		graphFile string
		labels    bool
	)

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a computed layout as SVG, PNG, or DOT",
		Long: `Render a computed layout as SVG, PNG, or DOT.

The render command takes a layout.json file (produced by 'layout') and
generates chart artifacts from the stored positions. Pass --graph to overlay
the original edges in DOT and PNG output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], parseFormats(formats), output, graphFile, labels)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file base (default: derived from input)")
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "comma-separated output formats: svg, png, dot")
	cmd.Flags().StringVarP(&graphFile, "graph", "g", "", "graph.json to draw edges from")
	cmd.Flags().BoolVar(&labels, "labels", false, "draw node names in SVG output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, formats []string, output, graphFile string, labels bool) error {
	pr := newProgress(loggerFromContext(ctx))

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	l, err := chart.UnmarshalLayout(data)
	if err != nil {
		return fmt.Errorf("parse layout %s: %w", input, err)
	}

	var dotOpts []chart.DOTOption
	if graphFile != "" {
		g, err := graph.ReadFile(graphFile)
		if err != nil {
			return fmt.Errorf("load graph %s: %w", graphFile, err)
		}
		dotOpts = append(dotOpts, chart.WithDOTEdges(g.Edges))
	}

	var written []string
	for _, format := range formats {
		var artifact []byte
		switch format {
		case pipeline.FormatSVG:
			var svgOpts []chart.SVGOption
			if labels {
				svgOpts = append(svgOpts, chart.WithLabels())
			}
			artifact = chart.RenderSVG(l, svgOpts...)
		case pipeline.FormatDOT:
			artifact = []byte(chart.ToDOT(l, dotOpts...))
		case pipeline.FormatPNG:
			artifact, err = chart.RenderPNG(ctx, l, dotOpts...)
			if err != nil {
				return fmt.Errorf("render png: %w", err)
			}
		case pipeline.FormatJSON:
			artifact = data
		default:
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}

		path := outputPath(input, "."+format)
		if output != "" {
			path = output + "." + format
		}
		if err := os.WriteFile(path, artifact, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		written = append(written, path)
	}

	pr.done(fmt.Sprintf("Rendered %d artifacts", len(written)))
	printSuccess("Render complete")
	for _, path := range written {
		printFile(path)
	}

	return nil
}
