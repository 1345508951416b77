package layout

// Panel is a movable, resizable rectangular region of the workspace.
// Size is always strictly positive on both axes.
type Panel struct {
	ID          string      `json:"id" toml:"id" bson:"id"`
	Kind        string      `json:"kind" toml:"kind" bson:"kind"`
	Position    Point       `json:"position" toml:"position" bson:"position"`
	Size        Size        `json:"size" toml:"size" bson:"size"`
	ZIndex      int         `json:"zIndex" toml:"z_index" bson:"z_index"`
	Visible     bool        `json:"visible" toml:"visible" bson:"visible"`
	Constraints Constraints `json:"constraints" toml:"constraints" bson:"constraints"`
}

// Rect returns the panel bounds.
func (p Panel) Rect() Rect { return NewRect(p.Position, p.Size) }

// Clone returns a deep copy of the panel.
func (p Panel) Clone() Panel {
	p.Constraints = p.Constraints.Clone()
	return p
}

// PanelPatch is a partial update for a Panel. Nil fields are left unchanged.
// The id is never patchable.
type PanelPatch struct {
	Kind        *string      `json:"kind,omitempty"`
	Position    *Point       `json:"position,omitempty"`
	Size        *Size        `json:"size,omitempty"`
	ZIndex      *int         `json:"zIndex,omitempty"`
	Visible     *bool        `json:"visible,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PanelPatch) IsEmpty() bool {
	return p.Kind == nil && p.Position == nil && p.Size == nil &&
		p.ZIndex == nil && p.Visible == nil && p.Constraints == nil
}

// Apply merges the patch shallowly into panel and returns the result.
// The input panel is not modified.
func (p PanelPatch) Apply(panel Panel) Panel {
	out := panel.Clone()
	if p.Kind != nil {
		out.Kind = *p.Kind
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Size != nil {
		out.Size = *p.Size
	}
	if p.ZIndex != nil {
		out.ZIndex = *p.ZIndex
	}
	if p.Visible != nil {
		out.Visible = *p.Visible
	}
	if p.Constraints != nil {
		out.Constraints = p.Constraints.Clone()
	}
	return out
}

// MovePatch is shorthand for a patch that only sets the position.
func MovePatch(pos Point) PanelPatch { return PanelPatch{Position: &pos} }

// ResizePatch is shorthand for a patch that sets position and size together.
func ResizePatch(pos Point, size Size) PanelPatch {
	return PanelPatch{Position: &pos, Size: &size}
}
