package layout

import "strings"

// Point is a workspace-relative position. Coordinates may be negative while a
// drag is in progress; committed positions are clamped to be non-negative.
type Point struct {
	X float64 `json:"x" toml:"x" bson:"x"`
	Y float64 `json:"y" toml:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
}

// IsPositive reports whether both dimensions are strictly greater than zero.
func (s Size) IsPositive() bool { return s.Width > 0 && s.Height > 0 }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      float64 `json:"x" toml:"x" bson:"x"`
	Y      float64 `json:"y" toml:"y" bson:"y"`
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
}

// NewRect builds a rectangle from a position and a size.
func NewRect(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Position returns the top-left corner.
func (r Rect) Position() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Intersects reports whether r and o overlap with non-zero area.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Direction identifies one of the eight resize handles.
type Direction string

// Resize handle directions.
const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// Directions lists every valid handle in a stable order.
var Directions = []Direction{North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest}

// ParseDirection converts a handle name such as "se" or "NW" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Directions {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// HasNorth reports whether the handle moves the top edge.
func (d Direction) HasNorth() bool { return strings.Contains(string(d), "n") }

// HasSouth reports whether the handle moves the bottom edge.
func (d Direction) HasSouth() bool { return strings.Contains(string(d), "s") }

// HasEast reports whether the handle moves the right edge.
func (d Direction) HasEast() bool { return strings.Contains(string(d), "e") }

// HasWest reports whether the handle moves the left edge.
func (d Direction) HasWest() bool { return strings.Contains(string(d), "w") }

// IsCorner reports whether the handle affects both axes.
func (d Direction) IsCorner() bool { return len(d) == 2 }

// AspectRatio constrains width/height to Ratio within ±Tolerance.
type AspectRatio struct {
	Ratio     float64 `json:"ratio" toml:"ratio" bson:"ratio"`
	Tolerance float64 `json:"tolerance" toml:"tolerance" bson:"tolerance"`
}

// CollisionConstraints controls how a panel reacts to overlaps.
type CollisionConstraints struct {
	PreventOverlap bool `json:"preventOverlap" toml:"prevent_overlap" bson:"prevent_overlap"`
}

// Constraints are optional limits attached to a panel.
//
// If both MinSize and MaxSize are set the caller guarantees MinSize <= MaxSize
// on each axis; inverted bounds are not repaired.
type Constraints struct {
	MinSize   *Size                 `json:"minSize,omitempty" toml:"min_size,omitempty" bson:"min_size,omitempty"`
	MaxSize   *Size                 `json:"maxSize,omitempty" toml:"max_size,omitempty" bson:"max_size,omitempty"`
	Aspect    *AspectRatio          `json:"aspectRatio,omitempty" toml:"aspect_ratio,omitempty" bson:"aspect_ratio,omitempty"`
	Collision *CollisionConstraints `json:"collisionConstraints,omitempty" toml:"collision,omitempty" bson:"collision,omitempty"`
}

// PreventsOverlap reports whether the panel opted into blocking collisions.
func (c Constraints) PreventsOverlap() bool {
	return c.Collision != nil && c.Collision.PreventOverlap
}

// Clone returns a deep copy so snapshots never share pointers with live state.
func (c Constraints) Clone() Constraints {
	out := Constraints{}
	if c.MinSize != nil {
		v := *c.MinSize
		out.MinSize = &v
	}
	if c.MaxSize != nil {
		v := *c.MaxSize
		out.MaxSize = &v
	}
	if c.Aspect != nil {
		v := *c.Aspect
		out.Aspect = &v
	}
	if c.Collision != nil {
		v := *c.Collision
		out.Collision = &v
	}
	return out
}

// GridSettings configures the snapping grid.
// Size must be positive and SnapThreshold non-negative.
type GridSettings struct {
	Enabled       bool    `json:"enabled" toml:"enabled" bson:"enabled"`
	Size          float64 `json:"size" toml:"size" bson:"size"`
	Visible       bool    `json:"visible" toml:"visible" bson:"visible"`
	Color         string  `json:"color" toml:"color" bson:"color"`
	Opacity       float64 `json:"opacity" toml:"opacity" bson:"opacity"`
	SnapThreshold float64 `json:"snapThreshold" toml:"snap_threshold" bson:"snap_threshold"`
}

// DefaultGridSettings returns a 20px grid with snapping enabled.
func DefaultGridSettings() GridSettings {
	return GridSettings{
		Enabled:       true,
		Size:          20,
		Visible:       true,
		Color:         "#e5e7eb",
		Opacity:       0.5,
		SnapThreshold: 10,
	}
}

// Valid reports whether the grid satisfies its invariants.
func (g GridSettings) Valid() bool { return g.Size > 0 && g.SnapThreshold >= 0 }

// GridPatch is a partial update for GridSettings. Nil fields are left unchanged.
type GridPatch struct {
	Enabled       *bool    `json:"enabled,omitempty"`
	Size          *float64 `json:"size,omitempty"`
	Visible       *bool    `json:"visible,omitempty"`
	Color         *string  `json:"color,omitempty"`
	Opacity       *float64 `json:"opacity,omitempty"`
	SnapThreshold *float64 `json:"snapThreshold,omitempty"`
}

// Apply merges the patch into g. Values that would break the grid invariants
// (non-positive size, negative threshold) are ignored.
func (p GridPatch) Apply(g GridSettings) GridSettings {
	if p.Enabled != nil {
		g.Enabled = *p.Enabled
	}
	if p.Size != nil && *p.Size > 0 {
		g.Size = *p.Size
	}
	if p.Visible != nil {
		g.Visible = *p.Visible
	}
	if p.Color != nil {
		g.Color = *p.Color
	}
	if p.Opacity != nil {
		g.Opacity = *p.Opacity
	}
	if p.SnapThreshold != nil && *p.SnapThreshold >= 0 {
		g.SnapThreshold = *p.SnapThreshold
	}
	return g
}

// Viewport is the visible region of the workspace.
type Viewport struct {
	X      float64 `json:"x" toml:"x" bson:"x"`
	Y      float64 `json:"y" toml:"y" bson:"y"`
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
	Zoom   float64 `json:"zoom" toml:"zoom" bson:"zoom"`
}

// DefaultViewport returns a 1920x1080 viewport at zoom 1.
func DefaultViewport() Viewport {
	return Viewport{Width: 1920, Height: 1080, Zoom: 1}
}

// Rect returns the viewport bounds as a rectangle.
func (v Viewport) Rect() Rect {
	return Rect{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height}
}
