package chart

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/sashob/springbox/pkg/graph"
)

// DOTOption configures DOT generation via [ToDOT].
type DOTOption func(*dotRenderer)

type dotRenderer struct {
	edges []graph.Edge
}

// WithDOTEdges overlays the graph's edges on the scatter output. Edge
// thickness scales with weight so heavier springs read as stronger links.
func WithDOTEdges(edges []graph.Edge) DOTOption {
	return func(r *dotRenderer) { r.edges = edges }
}

// ToDOT converts a layout to Graphviz DOT with pinned positions. Every node
// carries pos="x,y!" so neato keeps the engine's coordinates instead of
// computing its own. Graphviz's y axis points up while the canvas y points
// down, so y is flipped here to preserve the visual arrangement.
func ToDOT(l Layout, opts ...DOTOption) string {
	r := dotRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.3, fontsize=10];\n")
	buf.WriteString("\n")

	// Graphviz pos units are points; 1/10 scale keeps typical canvases readable.
	for _, p := range l.Points {
		fmt.Fprintf(&buf, "  %q [pos=\"%.2f,%.2f!\"];\n", p.Name, p.X/10, (l.Height-p.Y)/10)
	}

	if len(r.edges) > 0 {
		buf.WriteString("\n")
		for _, e := range r.edges {
			fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.2f];\n", e.From, e.To, 0.5+e.Weight/2)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOT renders a DOT string through Graphviz to the given format.
// Supported formats: [graphviz.SVG], [graphviz.PNG].
func RenderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderGraphvizSVG renders the layout to SVG through Graphviz neato.
func RenderGraphvizSVG(ctx context.Context, l Layout, opts ...DOTOption) ([]byte, error) {
	return RenderDOT(ctx, ToDOT(l, opts...), graphviz.SVG)
}

// RenderPNG renders the layout to PNG through Graphviz neato.
func RenderPNG(ctx context.Context, l Layout, opts ...DOTOption) ([]byte, error) {
	return RenderDOT(ctx, ToDOT(l, opts...), graphviz.PNG)
}
