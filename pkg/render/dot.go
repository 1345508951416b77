package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// pointsPerInch converts layout pixels to Graphviz inches.
const pointsPerInch = 72.0

// DOTOptions configures AdjacencyDOT.
type DOTOptions struct {
	// Tolerance is passed to Adjacency.
	Tolerance float64
	// Selected ids are drawn highlighted.
	Selected []string
	// Detailed adds geometry to node labels.
	Detailed bool
}

// AdjacencyDOT converts the adjacency graph to Graphviz DOT source. Nodes
// are boxes sized like their panels and pinned at their centers, with the
// y axis flipped to match Graphviz. Overlap edges are drawn red and dashed.
func AdjacencyDOT(panels []layout.Panel, opts DOTOptions) string {
	selected := make(map[string]bool, len(opts.Selected))
	for _, id := range opts.Selected {
		selected[id] = true
	}
	frame := Bounds(panels)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true];\n")
	buf.WriteString("\n")

	for _, p := range byZ(panels) {
		r := p.Rect()
		attrs := fmt.Sprintf("label=%q, pos=\"%.1f,%.1f!\", width=%.3f, height=%.3f",
			fmtLabel(p, opts.Detailed),
			r.CenterX(), frame.Bottom()-r.CenterY(),
			r.Width/pointsPerInch, r.Height/pointsPerInch)
		if selected[p.ID] {
			attrs += ", fillcolor=lightblue, penwidth=2"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range Adjacency(panels, opts.Tolerance) {
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.From, e.To, edgeAttrs(e.Relation))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p layout.Panel, detailed bool) string {
	if !detailed {
		return p.ID
	}
	return fmt.Sprintf("%s\n%s\n%gx%g @ %g,%g", p.ID, p.Kind, p.Size.Width, p.Size.Height, p.Position.X, p.Position.Y)
}

func edgeAttrs(r Relation) string {
	switch r {
	case Overlap:
		return `label="overlap", color=red, style=dashed`
	case Below:
		return `label="below"`
	default:
		return `label="right"`
	}
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root tag with one whose size
// matches its viewBox, so the drawing scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
