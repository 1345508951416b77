// Package render produces read-only views of a panel layout.
//
// # Overview
//
// Nothing in this package mutates panels. It offers three outputs:
//
//   - [Adjacency] and [AdjacencyDOT] describe which panels touch or overlap,
//     as a list of edges or as Graphviz DOT source
//   - [SVG] draws the panels as rectangles, for snapshots and the HTTP API
//   - [Preview] draws a scaled text grid for terminals
//
// # Graphviz
//
// [RenderSVG] lays out DOT source in-process with
// [github.com/goccy/go-graphviz]. Nodes are pinned at their panel
// centers, so the drawing keeps the layout's shape:
//
//	dot := render.AdjacencyDOT(panels, render.DOTOptions{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToPDF] and [ToPNG] convert any SVG through the external rsvg-convert
// tool from librsvg.
package render
