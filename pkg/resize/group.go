package resize

import (
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// Defaults for the multi-panel passes.
const (
	// AdjacencyTolerance is how far apart two edges may be and still count
	// as touching.
	AdjacencyTolerance = 5.0
	// DefaultMinPanelSize is the floor applied to every dimension a
	// multi-panel pass shrinks.
	DefaultMinPanelSize = 50.0
	// DefaultLayoutMargin separates panels nudged apart by PreserveLayout.
	DefaultLayoutMargin = 10.0
)

// Change is the planned new bounds of one panel.
type Change struct {
	PanelID string      `json:"panelId"`
	From    layout.Rect `json:"from"`
	To      layout.Rect `json:"to"`
}

// Operation converts the change into a queued resize.
func (c Change) Operation(priority int) Operation {
	pos := c.To.Position()
	return Operation{
		PanelID:        c.PanelID,
		OriginalSize:   c.From.Size(),
		TargetSize:     c.To.Size(),
		TargetPosition: &pos,
		Priority:       priority,
	}
}

// Operations converts changes in order into one gesture: the operations
// share a Gesture id and are applied all together or not at all. Changes
// that leave the bounds untouched are skipped.
func Operations(changes []Change, priority int) []Operation {
	out := make([]Operation, 0, len(changes))
	gesture := uuid.NewString()
	for _, c := range changes {
		if c.From == c.To {
			continue
		}
		op := c.Operation(priority)
		op.Gesture = gesture
		out = append(out, op)
	}
	return out
}

// PreviewChanges returns copies of panels with changes applied.
func PreviewChanges(panels []layout.Panel, changes []Change) []layout.Panel {
	out := make([]layout.Panel, len(panels))
	for i, p := range panels {
		out[i] = p.Clone()
	}
	for _, c := range changes {
		if i := indexOf(out, c.PanelID); i >= 0 {
			out[i].Position = c.To.Position()
			out[i].Size = c.To.Size()
		}
	}
	return out
}

// Merge folds later changes for the same panel into the first one, keeping
// the original From and the last To.
func Merge(changes ...[]Change) []Change {
	var out []Change
	for _, list := range changes {
		for _, c := range list {
			i := slices.IndexFunc(out, func(o Change) bool { return o.PanelID == c.PanelID })
			if i < 0 {
				out = append(out, c)
				continue
			}
			out[i].To = c.To
		}
	}
	return out
}

// =============================================================================
// Proportional resize
// =============================================================================

// ProportionalOptions tune Proportional.
type ProportionalOptions struct {
	Tolerance float64
	MinSize   float64
}

func (o ProportionalOptions) withDefaults() ProportionalOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = AdjacencyTolerance
	}
	if o.MinSize <= 0 {
		o.MinSize = DefaultMinPanelSize
	}
	return o
}

// Proportional resizes primaryID to size and redistributes the delta over
// its neighbours. Panels whose left edge touches the primary's right edge
// (and that share some vertical extent) follow the edge and split the
// negated width delta in proportion to their widths. Bottom neighbours do
// the same with heights. No neighbour shrinks below its floor, which is the
// larger of opts.MinSize and its own minimum.
//
// The primary's size is clamped to its constraints first. The first change
// is always the primary's; no change is returned for an unknown id.
func Proportional(panels []layout.Panel, primaryID string, size layout.Size, opts ProportionalOptions) ([]Change, error) {
	opts = opts.withDefaults()
	i := indexOf(panels, primaryID)
	if i < 0 {
		return nil, nil
	}
	if err := errors.ValidateSize(size.Width, size.Height); err != nil {
		return nil, err
	}
	primary := panels[i]
	from := primary.Rect()
	to := layout.NewRect(primary.Position, layout.GetConstrainedSize(size, primary.Constraints))
	changes := []Change{{PanelID: primary.ID, From: from, To: to}}

	dw, dh := to.Width-from.Width, to.Height-from.Height
	var right, below []layout.Panel
	for _, p := range panels {
		if p.ID == primary.ID {
			continue
		}
		r := p.Rect()
		if dw != 0 && math.Abs(r.X-from.Right()) <= opts.Tolerance && spanOverlap(r.Y, r.Bottom(), from.Y, from.Bottom()) > 0 {
			right = append(right, p)
		}
		if dh != 0 && math.Abs(r.Y-from.Bottom()) <= opts.Tolerance && spanOverlap(r.X, r.Right(), from.X, from.Right()) > 0 {
			below = append(below, p)
		}
	}

	changes = distribute(changes, right, dw, opts.MinSize, true)
	changes = distribute(changes, below, dh, opts.MinSize, false)
	return Merge(changes), nil
}

func distribute(changes []Change, neighbours []layout.Panel, delta, floor float64, horizontal bool) []Change {
	if len(neighbours) == 0 || delta == 0 {
		return changes
	}
	total := 0.0
	for _, n := range neighbours {
		total += extent(n.Size, horizontal)
	}
	for _, n := range neighbours {
		from := n.Rect()
		to := from
		share := -delta * extent(n.Size, horizontal) / total
		if horizontal {
			f := floor
			if n.Constraints.MinSize != nil {
				f = max(f, n.Constraints.MinSize.Width)
			}
			to.X = from.X + delta
			to.Width = max(f, from.Width+share)
		} else {
			f := floor
			if n.Constraints.MinSize != nil {
				f = max(f, n.Constraints.MinSize.Height)
			}
			to.Y = from.Y + delta
			to.Height = max(f, from.Height+share)
		}
		changes = append(changes, Change{PanelID: n.ID, From: from, To: to})
	}
	return changes
}

func extent(s layout.Size, horizontal bool) float64 {
	if horizontal {
		return s.Width
	}
	return s.Height
}

func spanOverlap(a0, a1, b0, b1 float64) float64 {
	return min(a1, b1) - max(a0, b0)
}

// =============================================================================
// Group scale
// =============================================================================

// AnchorTopLeft returns the top-left corner of the panels' bounding box.
func AnchorTopLeft(panels []layout.Panel) layout.Point {
	return Bounds(panels).Position()
}

// AnchorCenter returns the center of the panels' bounding box.
func AnchorCenter(panels []layout.Panel) layout.Point {
	b := Bounds(panels)
	return layout.Point{X: b.CenterX(), Y: b.CenterY()}
}

// Bounds returns the bounding box of panels, or the zero Rect for none.
func Bounds(panels []layout.Panel) layout.Rect {
	if len(panels) == 0 {
		return layout.Rect{}
	}
	r := panels[0].Rect()
	x0, y0, x1, y1 := r.X, r.Y, r.Right(), r.Bottom()
	for _, p := range panels[1:] {
		r := p.Rect()
		x0, y0 = min(x0, r.X), min(y0, r.Y)
		x1, y1 = max(x1, r.Right()), max(y1, r.Bottom())
	}
	return layout.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// GroupScale scales every panel by factor around anchor. Positions and
// sizes both scale relative to the anchor, so the relative layout is kept;
// sizes are then clamped to each panel's constraints and to minSize, and
// positions to the non-negative workspace.
func GroupScale(panels []layout.Panel, factor float64, anchor layout.Point, minSize float64) ([]Change, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "scale factor %g must be positive", factor)
	}
	if minSize <= 0 {
		minSize = DefaultMinPanelSize
	}
	changes := make([]Change, 0, len(panels))
	for _, p := range panels {
		from := p.Rect()
		size := layout.Size{
			Width:  max(minSize, p.Size.Width*factor),
			Height: max(minSize, p.Size.Height*factor),
		}
		size = layout.GetConstrainedSize(size, p.Constraints)
		pos := layout.Point{
			X: anchor.X + (p.Position.X-anchor.X)*factor,
			Y: anchor.Y + (p.Position.Y-anchor.Y)*factor,
		}
		pos = layout.GetConstrainedPosition(pos, size, layout.BoundsConstraints{})
		changes = append(changes, Change{PanelID: p.ID, From: from, To: layout.NewRect(pos, size)})
	}
	return changes, nil
}

// =============================================================================
// Overflow and layout preservation
// =============================================================================

// HandleOverflow clips every change whose target leaves container. Edges
// past the container are pulled in by shrinking the panel; the position
// only moves forward onto the container edge, never below zero. A panel
// clipped below minSize is restored to minSize against the far edge.
func HandleOverflow(changes []Change, container layout.Rect, minSize float64) []Change {
	if minSize <= 0 {
		minSize = DefaultMinPanelSize
	}
	out := make([]Change, len(changes))
	for i, c := range changes {
		out[i] = c
		out[i].To = clipInto(c.To, container, minSize)
	}
	return out
}

func clipInto(r, c layout.Rect, minSize float64) layout.Rect {
	if c.Contains(r) {
		return r
	}
	r.X, r.Width = clipAxis(r.X, r.Width, c.X, c.Width, minSize)
	r.Y, r.Height = clipAxis(r.Y, r.Height, c.Y, c.Height, minSize)
	return r
}

func clipAxis(pos, length, cPos, cLength, minSize float64) (float64, float64) {
	end := pos + length
	cEnd := cPos + cLength
	if pos < cPos {
		pos = cPos
	}
	if end > cEnd {
		end = cEnd
	}
	floor := min(minSize, cLength)
	if end-pos < floor {
		pos = max(cPos, end-floor)
		if pos+floor > cEnd {
			pos = max(cPos, cEnd-floor)
		}
		end = pos + floor
	}
	return max(pos, 0), end - max(pos, 0)
}

// PreserveLayout walks every pair of panels in order and, when the later
// one overlaps the earlier one, pushes it right or down (whichever needs the
// shorter move) to margin past the earlier panel's edge. Panels already
// moved may be moved again by a later pair. It returns the nudges as
// changes; panels it did not touch are omitted.
func PreserveLayout(panels []layout.Panel, margin float64) []Change {
	if margin < 0 {
		margin = 0
	}
	work := make([]layout.Rect, len(panels))
	for i, p := range panels {
		work[i] = p.Rect()
	}
	moved := make([]bool, len(panels))
	for i := range work {
		for j := i + 1; j < len(work); j++ {
			a, b := work[i], work[j]
			if !a.Intersects(b) {
				continue
			}
			dx := a.Right() + margin - b.X
			dy := a.Bottom() + margin - b.Y
			if dx <= dy {
				work[j].X += dx
			} else {
				work[j].Y += dy
			}
			moved[j] = true
		}
	}
	var out []Change
	for i, p := range panels {
		if moved[i] {
			out = append(out, Change{PanelID: p.ID, From: p.Rect(), To: work[i]})
		}
	}
	return out
}

// =============================================================================
// Planning
// =============================================================================

// PlanOptions configure the full multi-panel pipeline.
type PlanOptions struct {
	Proportional ProportionalOptions
	// Container enables HandleOverflow.
	Container *layout.Rect
	// Preserve enables PreserveLayout with Margin.
	Preserve bool
	Margin   float64
	MinSize  float64
}

// PlanProportional runs Proportional followed by the overflow and layout
// preservation passes.
func PlanProportional(panels []layout.Panel, primaryID string, size layout.Size, opts PlanOptions) ([]Change, error) {
	changes, err := Proportional(panels, primaryID, size, opts.Proportional)
	if err != nil {
		return nil, err
	}
	return finish(panels, changes, opts), nil
}

// PlanGroup runs GroupScale over the panels with ids followed by the
// overflow and layout preservation passes. Unknown ids are ignored.
func PlanGroup(panels []layout.Panel, ids []string, factor float64, anchor *layout.Point, opts PlanOptions) ([]Change, error) {
	var group []layout.Panel
	for _, id := range ids {
		if i := indexOf(panels, id); i >= 0 {
			group = append(group, panels[i])
		}
	}
	if len(group) == 0 {
		return nil, nil
	}
	a := AnchorTopLeft(group)
	if anchor != nil {
		a = *anchor
	}
	changes, err := GroupScale(group, factor, a, opts.MinSize)
	if err != nil {
		return nil, err
	}
	return finish(panels, changes, opts), nil
}

func finish(panels []layout.Panel, changes []Change, opts PlanOptions) []Change {
	if opts.Container != nil {
		changes = HandleOverflow(changes, *opts.Container, opts.MinSize)
	}
	if opts.Preserve {
		margin := opts.Margin
		if margin == 0 {
			margin = DefaultLayoutMargin
		}
		changes = Merge(changes, PreserveLayout(PreviewChanges(panels, changes), margin))
	}
	return changes
}

func indexOf(panels []layout.Panel, id string) int {
	return slices.IndexFunc(panels, func(p layout.Panel) bool { return p.ID == id })
}
