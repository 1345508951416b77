package resize

import (
	"fmt"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// Confidence penalties applied per warning.
const (
	PenaltyConstraint = 0.9
	PenaltyAspect     = 0.8
	PenaltyCollision  = 0.7
	PenaltyViewport   = 0.85
)

// CommonSizeThreshold is the preset distance under which a resize gets a
// "snap to preset" suggestion.
const CommonSizeThreshold = 50.0

// IssueKind classifies a validation issue.
type IssueKind string

const (
	IssueGeometry   IssueKind = "geometry"
	IssueConstraint IssueKind = "constraint"
	IssueAspect     IssueKind = "aspectRatio"
	IssueCollision  IssueKind = "collision"
	IssueViewport   IssueKind = "viewport"
	// IssueGesture marks an operation rejected because another operation
	// of its gesture was.
	IssueGesture IssueKind = "gesture"
)

// Issue is one validation error or warning.
type Issue struct {
	Kind    IssueKind   `json:"kind"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	// PanelIDs lists the other panels involved in a collision.
	PanelIDs []string `json:"panelIds,omitempty"`
}

// Validation is the result of ValidateResizeOperation.
type Validation struct {
	IsValid       bool        `json:"isValid"`
	ValidatedSize layout.Size `json:"validatedSize"`
	Errors        []Issue     `json:"errors"`
	Warnings      []Issue     `json:"warnings"`
	Suggestions   []string    `json:"suggestions"`
	Confidence    float64     `json:"confidence"`
}

// Err returns the first error as an *errors.Error, or nil when valid.
func (v Validation) Err() error {
	if v.IsValid || len(v.Errors) == 0 {
		return nil
	}
	e := v.Errors[0]
	return errors.New(e.Code, "%s", e.Message)
}

// ValidationContext is what an operation is checked against.
type ValidationContext struct {
	// Others are the other panels on the workspace. The panel being resized
	// may be included; it is skipped by id.
	Others []layout.Panel
	// Viewport, when set, turns overflow into a warning.
	Viewport *layout.Rect
	// Position overrides the panel position for the collision and viewport
	// checks.
	Position *layout.Point
}

// ValidateResizeOperation checks op against panel and its surroundings.
// Non-positive sizes and collisions with a preventOverlap panel are errors.
// Clamping, aspect drift, advisory collisions and viewport overflow are
// warnings that each multiply the confidence by a fixed penalty.
func ValidateResizeOperation(op Operation, panel layout.Panel, ctx ValidationContext) Validation {
	v := Validation{IsValid: true, ValidatedSize: op.TargetSize, Confidence: 1}

	if err := errors.ValidateSize(op.TargetSize.Width, op.TargetSize.Height); err != nil {
		v.IsValid = false
		v.ValidatedSize = panel.Size
		v.Confidence = 0
		v.Errors = append(v.Errors, Issue{Kind: IssueGeometry, Code: errors.ErrCodeInvalidGeometry, Message: errors.UserMessage(err)})
		return v
	}

	c := panel.Constraints
	if op.Constraints != nil {
		c = *op.Constraints
	}

	enforced := layout.EnforceMinMaxConstraints(op.TargetSize, c)
	v.ValidatedSize = enforced.Size
	for _, vi := range enforced.Violations {
		v.warn(Issue{Kind: IssueConstraint, Code: errors.ErrCodeConstraintViolation, Message: vi.String()}, PenaltyConstraint)
	}

	if c.Aspect != nil && c.Aspect.Ratio > 0 {
		if drift := layout.AspectDrift(v.ValidatedSize, *c.Aspect); drift > c.Aspect.Tolerance {
			v.warn(Issue{
				Kind:    IssueAspect,
				Code:    errors.ErrCodeConstraintViolation,
				Message: fmt.Sprintf("aspect ratio drifts %.3f from %.3f", drift, c.Aspect.Ratio),
			}, PenaltyAspect)
			fixed := layout.GetConstrainedSize(layout.ApplyAspectRatio(v.ValidatedSize, c.Aspect.Ratio, layout.East), c)
			v.Suggestions = append(v.Suggestions, fmt.Sprintf("resize to %.0fx%.0f to keep the aspect ratio", fixed.Width, fixed.Height))
		}
	}

	pos := panel.Position
	if ctx.Position != nil {
		pos = *ctx.Position
	}
	rect := layout.NewRect(pos, v.ValidatedSize)

	var blocking, advisory []string
	for _, id := range layout.DetectRectCollisions(panel.ID, rect, ctx.Others) {
		if c.PreventsOverlap() || preventsOverlap(ctx.Others, id) {
			blocking = append(blocking, id)
		} else {
			advisory = append(advisory, id)
		}
	}
	if len(blocking) > 0 {
		v.IsValid = false
		v.Errors = append(v.Errors, Issue{
			Kind:     IssueCollision,
			Code:     errors.ErrCodeCollision,
			Message:  fmt.Sprintf("would overlap %d panel(s) that prevent overlap", len(blocking)),
			PanelIDs: blocking,
		})
	}
	if len(advisory) > 0 {
		v.warn(Issue{
			Kind:     IssueCollision,
			Code:     errors.ErrCodeCollision,
			Message:  fmt.Sprintf("overlaps %d panel(s)", len(advisory)),
			PanelIDs: advisory,
		}, PenaltyCollision)
	}

	if ctx.Viewport != nil && !ctx.Viewport.Contains(rect) {
		v.warn(Issue{Kind: IssueViewport, Code: errors.ErrCodeConstraintViolation, Message: "extends past the viewport"}, PenaltyViewport)
	}

	if snap := layout.SnapToCommonSizes(v.ValidatedSize, CommonSizeThreshold, layout.DefaultCommonSizes); snap.WasSnapped && snap.Size != v.ValidatedSize {
		v.Suggestions = append(v.Suggestions, fmt.Sprintf("snap to %s (%.0fx%.0f)", snap.Target.Name, snap.Size.Width, snap.Size.Height))
	}

	if !v.IsValid {
		v.Confidence = 0
	}
	return v
}

func (v *Validation) warn(issue Issue, penalty float64) {
	v.Warnings = append(v.Warnings, issue)
	v.Confidence *= penalty
}

func preventsOverlap(panels []layout.Panel, id string) bool {
	for _, p := range panels {
		if p.ID == id {
			return p.Constraints.PreventsOverlap()
		}
	}
	return false
}
