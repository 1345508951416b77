package layout

import "math"

// MagneticThreshold is the proximity in pixels within which a candidate's
// edges or center are pulled into alignment with another panel.
const MagneticThreshold = 10.0

// =============================================================================
// Grid Snapping
// =============================================================================

// SnapToGrid rounds each axis of p to the nearest multiple of g.Size.
// It returns p unchanged when the grid is disabled or invalid.
func SnapToGrid(p Point, g GridSettings) Point {
	if !g.Enabled || g.Size <= 0 {
		return p
	}
	return Point{X: snapValue(p.X, g.Size), Y: snapValue(p.Y, g.Size)}
}

// ShouldSnapToGrid reports whether p lies within g.SnapThreshold of the
// nearest grid line on either axis.
func ShouldSnapToGrid(p Point, g GridSettings) bool {
	x, y := ShouldSnapAxes(p, g)
	return x || y
}

// ShouldSnapAxes reports, per axis, whether p lies within g.SnapThreshold
// of the nearest grid line: x for vertical lines, y for horizontal ones.
func ShouldSnapAxes(p Point, g GridSettings) (x, y bool) {
	if !g.Enabled || g.Size <= 0 {
		return false, false
	}
	return math.Abs(snapValue(p.X, g.Size)-p.X) <= g.SnapThreshold,
		math.Abs(snapValue(p.Y, g.Size)-p.Y) <= g.SnapThreshold
}

// SnapSizeToGrid rounds both dimensions to multiples of g.Size, never below
// one grid unit. It returns s unchanged when the grid is disabled.
func SnapSizeToGrid(s Size, g GridSettings) Size {
	if !g.Enabled || g.Size <= 0 {
		return s
	}
	return Size{
		Width:  math.Max(g.Size, snapValue(s.Width, g.Size)),
		Height: math.Max(g.Size, snapValue(s.Height, g.Size)),
	}
}

func snapValue(v, unit float64) float64 {
	return math.Round(v/unit) * unit
}

// =============================================================================
// Magnetic Snap Zones
// =============================================================================

// Orientation of a snap guide line.
type Orientation string

const (
	// Vertical guides align x coordinates.
	Vertical Orientation = "vertical"
	// Horizontal guides align y coordinates.
	Horizontal Orientation = "horizontal"
)

// Anchor names the feature of a rectangle that produced an alignment.
type Anchor string

const (
	AnchorStart  Anchor = "start"  // left or top edge
	AnchorCenter Anchor = "center" // horizontal or vertical center
	AnchorEnd    Anchor = "end"    // right or bottom edge
)

// SnapLine describes one alignment found by CalculateSnapZones.
type SnapLine struct {
	Orientation  Orientation `json:"orientation"`
	Coordinate   float64     `json:"coordinate"`
	PanelID      string      `json:"panelId"`
	Source       Anchor      `json:"source"`
	Target       Anchor      `json:"target"`
	Displacement float64     `json:"displacement"`
}

// SnapResult is the outcome of magnetic snapping.
type SnapResult struct {
	Position Point      `json:"position"`
	Lines    []SnapLine `json:"snapLines"`
	SnappedX bool       `json:"snappedX"`
	SnappedY bool       `json:"snappedY"`
}

type feature struct {
	anchor Anchor
	value  float64
}

func xFeatures(r Rect) [3]feature {
	return [3]feature{{AnchorStart, r.X}, {AnchorCenter, r.CenterX()}, {AnchorEnd, r.Right()}}
}

func yFeatures(r Rect) [3]feature {
	return [3]feature{{AnchorStart, r.Y}, {AnchorCenter, r.CenterY()}, {AnchorEnd, r.Bottom()}}
}

// CalculateSnapZones aligns the candidate rectangle with the nearest edge or
// center of any panel in others, independently per axis. A pull is applied
// only when the distance is within MagneticThreshold; the smallest pull wins.
func CalculateSnapZones(pos Point, size Size, others []Panel) SnapResult {
	return CalculateSnapZonesWithin(pos, size, others, MagneticThreshold)
}

// CalculateSnapZonesWithin is CalculateSnapZones with a caller-chosen
// threshold. A non-positive threshold disables magnetic snapping.
func CalculateSnapZonesWithin(pos Point, size Size, others []Panel, threshold float64) SnapResult {
	if threshold <= 0 {
		return SnapResult{Position: pos}
	}
	candidate := NewRect(pos, size)
	result := SnapResult{Position: pos}

	bestX, bestY := math.Inf(1), math.Inf(1)
	var lineX, lineY SnapLine

	for _, o := range others {
		r := o.Rect()
		for _, c := range xFeatures(candidate) {
			for _, t := range xFeatures(r) {
				d := t.value - c.value
				if math.Abs(d) <= threshold && math.Abs(d) < math.Abs(bestX) {
					bestX = d
					lineX = SnapLine{Orientation: Vertical, Coordinate: t.value, PanelID: o.ID, Source: c.anchor, Target: t.anchor, Displacement: d}
				}
			}
		}
		for _, c := range yFeatures(candidate) {
			for _, t := range yFeatures(r) {
				d := t.value - c.value
				if math.Abs(d) <= threshold && math.Abs(d) < math.Abs(bestY) {
					bestY = d
					lineY = SnapLine{Orientation: Horizontal, Coordinate: t.value, PanelID: o.ID, Source: c.anchor, Target: t.anchor, Displacement: d}
				}
			}
		}
	}

	if !math.IsInf(bestX, 1) {
		result.Position.X += bestX
		result.SnappedX = true
		result.Lines = append(result.Lines, lineX)
	}
	if !math.IsInf(bestY, 1) {
		result.Position.Y += bestY
		result.SnappedY = true
		result.Lines = append(result.Lines, lineY)
	}
	return result
}
