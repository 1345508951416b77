package render

import (
	"math"
	"strings"

	"github.com/matzehuels/panels/pkg/layout"
)

// Default preview dimensions in cells.
const (
	DefaultPreviewCols = 80
	DefaultPreviewRows = 24
)

// PreviewOptions configures Preview.
type PreviewOptions struct {
	Cols, Rows int
	// Scale is layout pixels per cell. Zero fits the layout into Cols x Rows.
	Scale float64
	// Selected panels are drawn with a double border.
	Selected []string
}

// Preview draws the visible panels as boxes on a text grid, back to front,
// so higher panels cover lower ones. Each box is labelled with its panel id
// where it fits. Cells are twice as tall as they are wide, so vertical
// scale is doubled.
func Preview(panels []layout.Panel, opts PreviewOptions) string {
	if opts.Cols <= 0 {
		opts.Cols = DefaultPreviewCols
	}
	if opts.Rows <= 0 {
		opts.Rows = DefaultPreviewRows
	}
	selected := make(map[string]bool, len(opts.Selected))
	for _, id := range opts.Selected {
		selected[id] = true
	}

	scale := opts.Scale
	if scale <= 0 {
		b := Bounds(panels)
		scale = math.Max(b.Right()/float64(opts.Cols), b.Bottom()/float64(opts.Rows)/2)
		if scale <= 0 {
			scale = 1
		}
	}

	grid := make([][]rune, opts.Rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", opts.Cols))
	}
	for _, p := range byZ(panels) {
		x0 := int(math.Round(p.Position.X / scale))
		y0 := int(math.Round(p.Position.Y / scale / 2))
		x1 := max(x0+1, int(math.Round(p.Rect().Right()/scale))-1)
		y1 := max(y0+1, int(math.Round(p.Rect().Bottom()/scale/2))-1)
		drawBox(grid, x0, y0, x1, y1, boxChars(selected[p.ID]))
		if y1-y0 > 1 {
			drawLabel(grid, x0+1, y0+1, x1-1, p.ID)
		}
	}

	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

type box struct {
	h, v, tl, tr, bl, br rune
}

func boxChars(selected bool) box {
	if selected {
		return box{'═', '║', '╔', '╗', '╚', '╝'}
	}
	return box{'─', '│', '┌', '┐', '└', '┘'}
}

func drawBox(grid [][]rune, x0, y0, x1, y1 int, b box) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			var r rune
			switch {
			case y == y0 && x == x0:
				r = b.tl
			case y == y0 && x == x1:
				r = b.tr
			case y == y1 && x == x0:
				r = b.bl
			case y == y1 && x == x1:
				r = b.br
			case y == y0 || y == y1:
				r = b.h
			case x == x0 || x == x1:
				r = b.v
			default:
				r = ' '
			}
			set(grid, x, y, r)
		}
	}
}

func drawLabel(grid [][]rune, x0, y, x1 int, label string) {
	x := x0
	for _, r := range label {
		if x > x1 {
			return
		}
		set(grid, x, y, r)
		x++
	}
}

func set(grid [][]rune, x, y int, r rune) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = r
}
