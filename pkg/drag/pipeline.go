package drag

import (
	"math"

	"github.com/matzehuels/panels/pkg/layout"
)

// Pipeline turns a raw candidate position into the position written to the
// drag state: grid snap, then magnetic snap against the other panels, then
// bounds.
type Pipeline struct {
	Grid       layout.GridSettings
	SnapToGrid bool
	// MagneticThreshold is the snap-zone distance. Zero or less disables
	// magnetic snapping.
	MagneticThreshold float64
	Bounds            layout.BoundsConstraints
}

// Result is the outcome of one pipeline pass.
type Result struct {
	Raw      layout.Point `json:"raw"`
	Position layout.Point `json:"position"`
	// GridX and GridY report which axes ended on the grid snap.
	GridX bool `json:"gridX"`
	GridY bool `json:"gridY"`
	// Lines holds the magnetic guides that won over the grid.
	Lines []layout.SnapLine `json:"snapLines,omitempty"`
}

// Resolve runs the pipeline for panel at candidate. The panel itself and
// any entry in others with the same id are ignored for magnetic snapping.
func (p Pipeline) Resolve(candidate layout.Point, panel layout.Panel, others []layout.Panel) Result {
	res := Result{Raw: candidate, Position: candidate}

	// Each axis snaps to the grid on its own, when it is near a grid line.
	gridAdjX, gridAdjY := math.Inf(1), math.Inf(1)
	if p.SnapToGrid {
		nearX, nearY := layout.ShouldSnapAxes(candidate, p.Grid)
		gridPos := layout.SnapToGrid(candidate, p.Grid)
		if nearX {
			gridAdjX = math.Abs(gridPos.X - candidate.X)
			res.Position.X = gridPos.X
			res.GridX = true
		}
		if nearY {
			gridAdjY = math.Abs(gridPos.Y - candidate.Y)
			res.Position.Y = gridPos.Y
			res.GridY = true
		}
	}

	mag := layout.CalculateSnapZonesWithin(candidate, panel.Size, excluding(others, panel.ID), p.MagneticThreshold)
	for _, line := range mag.Lines {
		switch line.Orientation {
		case layout.Vertical:
			if math.Abs(mag.Position.X-candidate.X) < gridAdjX {
				res.Position.X = mag.Position.X
				res.GridX = false
				res.Lines = append(res.Lines, line)
			}
		case layout.Horizontal:
			if math.Abs(mag.Position.Y-candidate.Y) < gridAdjY {
				res.Position.Y = mag.Position.Y
				res.GridY = false
				res.Lines = append(res.Lines, line)
			}
		}
	}

	res.Position = layout.GetConstrainedPosition(res.Position, panel.Size, p.Bounds)
	return res
}

func excluding(panels []layout.Panel, id string) []layout.Panel {
	out := make([]layout.Panel, 0, len(panels))
	for _, o := range panels {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}
