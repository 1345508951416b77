package layout

import "fmt"

// BoundsConstraints restricts where a panel may be placed.
type BoundsConstraints struct {
	// ConstrainToParent keeps the panel inside Parent when Parent is set.
	ConstrainToParent bool
	Parent            *Rect
}

// GetConstrainedPosition clamps pos into the non-negative workspace and, when
// requested, into the parent rectangle. A panel larger than its parent is
// pinned to the parent's top-left corner.
func GetConstrainedPosition(pos Point, size Size, c BoundsConstraints) Point {
	out := Point{X: max(pos.X, 0), Y: max(pos.Y, 0)}
	if !c.ConstrainToParent || c.Parent == nil {
		return out
	}
	p := *c.Parent
	out.X = clamp(out.X, p.X, max(p.X, p.Right()-size.Width))
	out.Y = clamp(out.Y, p.Y, max(p.Y, p.Bottom()-size.Height))
	return out
}

// GetConstrainedSize clamps each axis of size into [MinSize, MaxSize].
// Missing bounds are not applied.
func GetConstrainedSize(size Size, c Constraints) Size {
	out := size
	if c.MinSize != nil {
		out.Width = max(out.Width, c.MinSize.Width)
		out.Height = max(out.Height, c.MinSize.Height)
	}
	if c.MaxSize != nil {
		out.Width = min(out.Width, c.MaxSize.Width)
		out.Height = min(out.Height, c.MaxSize.Height)
	}
	return out
}

// Dimension names an axis of a Size.
type Dimension string

const (
	DimensionWidth  Dimension = "width"
	DimensionHeight Dimension = "height"
)

// Bound names the side of a range that was violated.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// Violation records one clamped dimension.
type Violation struct {
	Dimension Dimension `json:"dimension"`
	Bound     Bound     `json:"bound"`
	Requested float64   `json:"requested"`
	Limit     float64   `json:"limit"`
	// Amount is the absolute distance between Requested and Limit.
	Amount float64 `json:"amount"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %.0f clamped to %s %.0f", v.Dimension, v.Requested, v.Bound, v.Limit)
}

// ConstraintResult is returned by EnforceMinMaxConstraints.
type ConstraintResult struct {
	Size           Size        `json:"constrainedSize"`
	WasConstrained bool        `json:"wasConstrained"`
	Violations     []Violation `json:"violations"`
}

// EnforceMinMaxConstraints clamps like GetConstrainedSize and reports each
// violated bound. Width violations are listed before height violations.
func EnforceMinMaxConstraints(size Size, c Constraints) ConstraintResult {
	res := ConstraintResult{Size: GetConstrainedSize(size, c)}

	check := func(dim Dimension, requested float64, minV, maxV *float64) {
		if minV != nil && requested < *minV {
			res.Violations = append(res.Violations, Violation{dim, BoundMin, requested, *minV, *minV - requested})
		}
		if maxV != nil && requested > *maxV {
			res.Violations = append(res.Violations, Violation{dim, BoundMax, requested, *maxV, requested - *maxV})
		}
	}

	var minW, minH, maxW, maxH *float64
	if c.MinSize != nil {
		minW, minH = &c.MinSize.Width, &c.MinSize.Height
	}
	if c.MaxSize != nil {
		maxW, maxH = &c.MaxSize.Width, &c.MaxSize.Height
	}
	check(DimensionWidth, size.Width, minW, maxW)
	check(DimensionHeight, size.Height, minH, maxH)

	res.WasConstrained = len(res.Violations) > 0
	return res
}

// SatisfiesConstraints reports whether size is already within bounds.
func SatisfiesConstraints(size Size, c Constraints) bool {
	return size.IsPositive() && GetConstrainedSize(size, c) == size
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
