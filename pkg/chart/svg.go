package chart

import (
	"bytes"
	"fmt"
)

// SVGOption configures scatter rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	radius     float64
	showLabels bool
	margin     float64
}

// WithRadius sets the point radius (default 4).
func WithRadius(r float64) SVGOption { return func(s *svgRenderer) { s.radius = r } }

// WithLabels draws each node's name next to its point.
func WithLabels() SVGOption { return func(s *svgRenderer) { s.showLabels = true } }

// WithMargin pads the viewBox so edge points are not clipped (default 10).
func WithMargin(m float64) SVGOption { return func(s *svgRenderer) { s.margin = m } }

// RenderSVG renders the layout as a standalone scatter chart.
func RenderSVG(l Layout, opts ...SVGOption) []byte {
	r := svgRenderer{radius: 4, margin: 10}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		-r.margin, -r.margin, l.Width+2*r.margin, l.Height+2*r.margin, l.Width, l.Height)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="white" stroke="#ccc"/>`+"\n",
		l.Width, l.Height)

	for _, p := range l.Points {
		fmt.Fprintf(&buf, `  <circle cx="%.2f" cy="%.2f" r="%.1f" fill="#2a7" stroke="#175" stroke-width="1">`+"\n",
			p.X, p.Y, r.radius)
		fmt.Fprintf(&buf, "    <title>%s</title>\n  </circle>\n", escapeXML(p.Name))
		if r.showLabels {
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-size="10" font-family="sans-serif">%s</text>`+"\n",
				p.X+r.radius+2, p.Y+3, escapeXML(p.Name))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		switch c {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(c)
		}
	}
	return buf.String()
}
