package store

import (
	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// Placement constants for AddPanel. Up to MaxCascadeAttempts diagonal
// offsets of CascadeOffset are tried from the requested origin before
// the panel is placed at FallbackOrigin.
const (
	CascadeOffset      = 30.0
	MaxCascadeAttempts = 10
	DuplicateOffset    = 20.0
	DefaultKind        = "panel"
)

var (
	DefaultOrigin    = layout.Point{X: 50, Y: 50}
	FallbackOrigin   = layout.Point{X: 0, Y: 0}
	DefaultPanelSize = layout.Size{Width: 400, Height: 300}
)

// PanelSpec describes a panel to add. Zero fields take defaults.
type PanelSpec struct {
	Kind string
	// Position is the requested origin. Nil starts the cascade at DefaultOrigin.
	Position    *layout.Point
	Size        layout.Size
	Hidden      bool
	Constraints layout.Constraints
}

// AddPanel creates a panel with a fresh id on top of all others. The
// position cascades diagonally from the requested origin until no existing
// panel sits at exactly that point.
func (s *Store) AddPanel(spec PanelSpec) layout.Panel {
	var out layout.Panel
	s.update(func() []Event {
		size := spec.Size
		if !size.IsPositive() {
			size = DefaultPanelSize
		}
		size = layout.GetConstrainedSize(size, spec.Constraints)

		origin := DefaultOrigin
		if spec.Position != nil {
			origin = *spec.Position
		}
		kind := spec.Kind
		if kind == "" {
			kind = DefaultKind
		}

		out = layout.Panel{
			ID:          s.newID(),
			Kind:        kind,
			Position:    s.cascadeLocked(origin, size),
			Size:        size,
			ZIndex:      s.maxZLocked() + 1,
			Visible:     !spec.Hidden,
			Constraints: spec.Constraints.Clone(),
		}
		s.panels = append(s.panels, out)
		s.commitLocked("addPanel")
		out = out.Clone()
		return []Event{{Type: EventPanels, Action: "addPanel", PanelIDs: []string{out.ID}}}
	})
	return out
}

// cascadeLocked returns the first free diagonal offset from origin.
func (s *Store) cascadeLocked(origin layout.Point, size layout.Size) layout.Point {
	for attempt := 0; attempt < MaxCascadeAttempts; attempt++ {
		d := float64(attempt) * CascadeOffset
		candidate := layout.GetConstrainedPosition(layout.Point{X: origin.X + d, Y: origin.Y + d}, size, layout.BoundsConstraints{})
		if !s.positionTakenLocked(candidate) {
			return candidate
		}
	}
	return FallbackOrigin
}

func (s *Store) positionTakenLocked(p layout.Point) bool {
	for _, o := range s.panels {
		if o.Position == p {
			return true
		}
	}
	return false
}

// RemovePanel deletes the panel and drops it from the selection.
func (s *Store) RemovePanel(id string) {
	s.update(func() []Event {
		if !s.removeLocked(id) {
			return nil
		}
		s.commitLocked("removePanel")
		return []Event{{Type: EventPanels, Action: "removePanel", PanelIDs: []string{id}}}
	})
}

func (s *Store) removeLocked(id string) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.panels = append(s.panels[:i], s.panels[i+1:]...)
	s.selected = without(s.selected, id)
	if s.drag.PanelID == id {
		s.drag = DragState{}
	}
	if s.resize.PanelID == id {
		s.resize = ResizeState{}
	}
	return true
}

// UpdatePanel merges patch into the panel. The resulting size is clamped to
// the panel's constraints and the position to the non-negative workspace.
//
// Unknown ids are a no-op with a nil error. A patch that produces a
// non-positive size fails with INVALID_GEOMETRY, and one that overlaps a
// panel with preventOverlap fails with COLLISION; neither is applied.
func (s *Store) UpdatePanel(id string, patch layout.PanelPatch) error {
	var err error
	s.update(func() []Event {
		i := s.indexLocked(id)
		if i < 0 || patch.IsEmpty() {
			return nil
		}
		var next layout.Panel
		next, err = s.preparePatchLocked(s.panels[i], patch)
		if err != nil {
			s.rejectLocked("updatePanel", string(errors.GetCode(err)), "panel", id)
			return nil
		}
		s.panels[i] = next
		s.commitLocked("updatePanel")
		return []Event{{Type: EventPanels, Action: "updatePanel", PanelIDs: []string{id}}}
	})
	return err
}

// preparePatchLocked applies patch to p and enforces all invariants
// without writing anything.
func (s *Store) preparePatchLocked(p layout.Panel, patch layout.PanelPatch) (layout.Panel, error) {
	next, err := preparePatch(p, patch)
	if err != nil {
		return layout.Panel{}, err
	}
	if next.Position != p.Position || next.Size != p.Size {
		if blockers := s.blockingLocked(next, s.panels); len(blockers) > 0 {
			return layout.Panel{}, errors.New(errors.ErrCodeCollision, "panel %s would overlap %v", p.ID, blockers)
		}
	}
	return next, nil
}

// preparePatch applies patch to p with geometry validation and clamping,
// but no collision check.
func preparePatch(p layout.Panel, patch layout.PanelPatch) (layout.Panel, error) {
	if patch.Size != nil {
		if err := errors.ValidateSize(patch.Size.Width, patch.Size.Height); err != nil {
			return layout.Panel{}, err
		}
	}
	if patch.Position != nil {
		if err := errors.ValidatePosition(patch.Position.X, patch.Position.Y); err != nil {
			return layout.Panel{}, err
		}
	}
	next := patch.Apply(p)
	next.Size = layout.GetConstrainedSize(next.Size, next.Constraints)
	next.Position = layout.GetConstrainedPosition(next.Position, next.Size, layout.BoundsConstraints{})
	return next, nil
}

// blockingLocked returns the panels of set that forbid next's bounds. A
// collision blocks when either panel has preventOverlap; other overlaps are
// logged. set is s.panels unless a multi-panel action checks its result.
func (s *Store) blockingLocked(next layout.Panel, set []layout.Panel) []string {
	var blockers []string
	for _, id := range layout.DetectCollisions(next, set) {
		other := set[indexIn(set, id)]
		if next.Constraints.PreventsOverlap() || other.Constraints.PreventsOverlap() {
			blockers = append(blockers, id)
			continue
		}
		s.logger.Warn("panels overlap", "panel", next.ID, "other", id)
	}
	return blockers
}

// BringToFront gives the panel a zIndex above every other panel.
// It is a no-op when the panel is already uniquely on top.
func (s *Store) BringToFront(id string) {
	s.update(func() []Event {
		if !s.bringToFrontLocked(id) {
			return nil
		}
		s.commitLocked("bringToFront")
		return []Event{{Type: EventPanels, Action: "bringToFront", PanelIDs: []string{id}}}
	})
}

func (s *Store) bringToFrontLocked(id string) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	top := s.maxZLocked()
	if s.panels[i].ZIndex == top {
		unique := true
		for j, p := range s.panels {
			if j != i && p.ZIndex == top {
				unique = false
				break
			}
		}
		if unique {
			return false
		}
	}
	s.panels[i].ZIndex = top + 1
	return true
}

// DuplicatePanel clones the panel with a new id, offset by DuplicateOffset,
// on top of all others, and selects the copy. A copy that would be blocked
// by preventOverlap keeps cascading by DuplicateOffset; after
// MaxCascadeAttempts nothing is added and ok is false.
func (s *Store) DuplicatePanel(id string) (layout.Panel, bool) {
	var (
		out layout.Panel
		ok  bool
	)
	s.update(func() []Event {
		i := s.indexLocked(id)
		if i < 0 {
			return nil
		}
		if out, ok = s.duplicateLocked(s.panels[i]); !ok {
			s.rejectLocked("duplicatePanel", "collision", "panel", id)
			return nil
		}
		s.selected = []string{out.ID}
		s.commitLocked("duplicatePanel")
		return []Event{
			{Type: EventPanels, Action: "duplicatePanel", PanelIDs: []string{out.ID}},
			{Type: EventSelection, Action: "duplicatePanel", PanelIDs: []string{out.ID}},
		}
	})
	return out, ok
}

func (s *Store) duplicateLocked(src layout.Panel) (layout.Panel, bool) {
	dup := src.Clone()
	dup.ID = s.newID()
	dup.ZIndex = s.maxZLocked() + 1
	for attempt := 1; attempt <= MaxCascadeAttempts; attempt++ {
		d := float64(attempt) * DuplicateOffset
		dup.Position = layout.Point{X: src.Position.X + d, Y: src.Position.Y + d}
		if len(s.blockingLocked(dup, s.panels)) == 0 {
			s.panels = append(s.panels, dup)
			return dup.Clone(), true
		}
	}
	return layout.Panel{}, false
}

// CenterPanel positions the panel in the middle of the viewport.
func (s *Store) CenterPanel(id string) {
	s.update(func() []Event {
		i := s.indexLocked(id)
		if i < 0 {
			return nil
		}
		p := s.panels[i]
		pos := layout.GetConstrainedPosition(centerIn(s.viewport, p.Size), p.Size, layout.BoundsConstraints{})
		if pos == p.Position {
			return nil
		}
		next := p.Clone()
		next.Position = pos
		if blockers := s.blockingLocked(next, s.panels); len(blockers) > 0 {
			s.rejectLocked("centerPanel", "collision", "panel", id)
			return nil
		}
		s.panels[i].Position = pos
		s.commitLocked("centerPanel")
		return []Event{{Type: EventPanels, Action: "centerPanel", PanelIDs: []string{id}}}
	})
}

func centerIn(vp layout.Viewport, size layout.Size) layout.Point {
	return layout.Point{
		X: vp.X + (vp.Width-size.Width)/2,
		Y: vp.Y + (vp.Height-size.Height)/2,
	}
}

func indexIn(set []layout.Panel, id string) int {
	for i, p := range set {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
