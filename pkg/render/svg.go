package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/panels/pkg/layout"
)

// SVGOption configures SVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	selected map[string]bool
	grid     *layout.GridSettings
	frame    *layout.Rect
	labels   bool
}

// WithSelection highlights the given panel ids.
func WithSelection(ids ...string) SVGOption {
	return func(r *svgRenderer) {
		for _, id := range ids {
			r.selected[id] = true
		}
	}
}

// WithGrid draws grid lines when the grid is visible.
func WithGrid(g layout.GridSettings) SVGOption { return func(r *svgRenderer) { r.grid = &g } }

// WithFrame fixes the drawing area instead of fitting the panels.
func WithFrame(f layout.Rect) SVGOption { return func(r *svgRenderer) { r.frame = &f } }

// WithLabels writes each panel's id and kind inside its rectangle.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// SVG draws the visible panels back to front. Without WithFrame the
// drawing spans from the origin to the far corner of the layout.
func SVG(panels []layout.Panel, opts ...SVGOption) []byte {
	r := svgRenderer{selected: map[string]bool{}}
	for _, opt := range opts {
		opt(&r)
	}
	frame := r.frameFor(panels)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		frame.X, frame.Y, frame.Width, frame.Height, frame.Width, frame.Height)
	buf.WriteString("  <style>.panel { fill: #ffffff; stroke: #333333; stroke-width: 1; } .panel.selected { fill: #dbeafe; stroke: #2563eb; stroke-width: 2; } .label { font: 12px sans-serif; fill: #333333; }</style>\n")
	r.renderGrid(&buf, frame)
	for _, p := range byZ(panels) {
		r.renderPanel(&buf, p)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) frameFor(panels []layout.Panel) layout.Rect {
	if r.frame != nil && r.frame.Width > 0 && r.frame.Height > 0 {
		return *r.frame
	}
	b := Bounds(panels)
	w, h := b.Right(), b.Bottom()
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	return layout.Rect{Width: w, Height: h}
}

func (r *svgRenderer) renderGrid(buf *bytes.Buffer, frame layout.Rect) {
	if r.grid == nil || !r.grid.Visible || r.grid.Size <= 0 {
		return
	}
	fmt.Fprintf(buf, `  <g stroke="%s" stroke-opacity="%.2f" stroke-width="0.5">`+"\n", html.EscapeString(r.grid.Color), r.grid.Opacity)
	for x := frame.X - mod(frame.X, r.grid.Size); x <= frame.Right(); x += r.grid.Size {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", x, frame.Y, x, frame.Bottom())
	}
	for y := frame.Y - mod(frame.Y, r.grid.Size); y <= frame.Bottom(); y += r.grid.Size {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", frame.X, y, frame.Right(), y)
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderPanel(buf *bytes.Buffer, p layout.Panel) {
	class := "panel"
	if r.selected[p.ID] {
		class += " selected"
	}
	fmt.Fprintf(buf, `  <rect id="panel-%s" class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4"/>`+"\n",
		html.EscapeString(p.ID), class, p.Position.X, p.Position.Y, p.Size.Width, p.Size.Height)
	if r.labels {
		fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f">%s (%s)</text>`+"\n",
			p.Position.X+6, p.Position.Y+16, html.EscapeString(p.ID), html.EscapeString(p.Kind))
	}
}

func mod(v, m float64) float64 {
	r := v - m*float64(int64(v/m))
	if r < 0 {
		r += m
	}
	return r
}
