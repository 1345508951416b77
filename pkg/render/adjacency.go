package render

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/panels/pkg/layout"
)

// DefaultTolerance is how far apart two edges may be and still touch.
const DefaultTolerance = 5.0

// Relation classifies an adjacency edge.
type Relation string

const (
	// RightOf means To starts where From ends horizontally.
	RightOf Relation = "right"
	// Below means To starts where From ends vertically.
	Below Relation = "below"
	// Overlap means the two rectangles intersect.
	Overlap Relation = "overlap"
)

// Edge connects two panels.
type Edge struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Relation Relation `json:"relation"`
}

// Adjacency returns the edges between visible panels. Panels that overlap
// get a single Overlap edge; otherwise a panel whose left (top) edge lies
// within tolerance of another's right (bottom) edge, with the two spanning
// a common range on the other axis, gets a RightOf (Below) edge. Edges are
// sorted by From, To and Relation. A non-positive tolerance uses
// DefaultTolerance.
func Adjacency(panels []layout.Panel, tolerance float64) []Edge {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var edges []Edge
	for i, a := range panels {
		if !a.Visible {
			continue
		}
		for _, b := range panels[i+1:] {
			if !b.Visible {
				continue
			}
			edges = append(edges, relate(a, b, tolerance)...)
		}
	}
	slices.SortFunc(edges, func(x, y Edge) int {
		return cmp.Or(cmp.Compare(x.From, y.From), cmp.Compare(x.To, y.To), cmp.Compare(x.Relation, y.Relation))
	})
	return edges
}

func relate(a, b layout.Panel, tol float64) []Edge {
	ra, rb := a.Rect(), b.Rect()
	if ra.Intersects(rb) {
		from, to := a.ID, b.ID
		if to < from {
			from, to = to, from
		}
		return []Edge{{From: from, To: to, Relation: Overlap}}
	}
	var out []Edge
	vertical := spans(ra.Y, ra.Bottom(), rb.Y, rb.Bottom())
	horizontal := spans(ra.X, ra.Right(), rb.X, rb.Right())
	switch {
	case vertical && math.Abs(ra.Right()-rb.X) <= tol:
		out = append(out, Edge{From: a.ID, To: b.ID, Relation: RightOf})
	case vertical && math.Abs(rb.Right()-ra.X) <= tol:
		out = append(out, Edge{From: b.ID, To: a.ID, Relation: RightOf})
	}
	switch {
	case horizontal && math.Abs(ra.Bottom()-rb.Y) <= tol:
		out = append(out, Edge{From: a.ID, To: b.ID, Relation: Below})
	case horizontal && math.Abs(rb.Bottom()-ra.Y) <= tol:
		out = append(out, Edge{From: b.ID, To: a.ID, Relation: Below})
	}
	return out
}

// spans reports whether [a0,a1) and [b0,b1) share a range of positive length.
func spans(a0, a1, b0, b1 float64) bool {
	return math.Min(a1, b1)-math.Max(a0, b0) > 0
}

// Bounds returns the smallest rectangle holding every visible panel, or
// the zero Rect when there are none.
func Bounds(panels []layout.Panel) layout.Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, p := range panels {
		if !p.Visible {
			continue
		}
		r := p.Rect()
		if first {
			minX, minY, maxX, maxY = r.X, r.Y, r.Right(), r.Bottom()
			first = false
			continue
		}
		minX, minY = math.Min(minX, r.X), math.Min(minY, r.Y)
		maxX, maxY = math.Max(maxX, r.Right()), math.Max(maxY, r.Bottom())
	}
	return layout.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// byZ returns the visible panels sorted back to front.
func byZ(panels []layout.Panel) []layout.Panel {
	out := make([]layout.Panel, 0, len(panels))
	for _, p := range panels {
		if p.Visible {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b layout.Panel) int { return cmp.Compare(a.ZIndex, b.ZIndex) })
	return out
}
