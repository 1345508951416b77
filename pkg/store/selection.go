package store

import (
	"math"
	"slices"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// SelectPanel selects id. A single select replaces the selection; a
// multi-select toggles id in or out of it. A newly selected panel is
// brought to the front.
func (s *Store) SelectPanel(id string, multiSelect bool) {
	s.update(func() []Event {
		if s.indexLocked(id) < 0 {
			return nil
		}
		before := append([]string(nil), s.selected...)
		switch {
		case !multiSelect:
			s.selected = []string{id}
		case slices.Contains(s.selected, id):
			s.selected = without(s.selected, id)
		default:
			s.selected = append(s.selected, id)
		}
		raised := false
		if slices.Contains(s.selected, id) {
			raised = s.bringToFrontLocked(id)
		}
		if !raised && slices.Equal(before, s.selected) {
			return nil
		}
		s.commitLocked("selectPanel")
		events := []Event{{Type: EventSelection, Action: "selectPanel", PanelIDs: []string{id}}}
		if raised {
			events = append(events, Event{Type: EventPanels, Action: "bringToFront", PanelIDs: []string{id}})
		}
		return events
	})
}

// DeselectPanel removes id from the selection.
func (s *Store) DeselectPanel(id string) {
	s.update(func() []Event {
		if !slices.Contains(s.selected, id) {
			return nil
		}
		s.selected = without(s.selected, id)
		s.commitLocked("deselectPanel")
		return []Event{{Type: EventSelection, Action: "deselectPanel", PanelIDs: []string{id}}}
	})
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.update(func() []Event {
		if len(s.selected) == 0 {
			return nil
		}
		s.selected = nil
		s.commitLocked("clearSelection")
		return []Event{{Type: EventSelection, Action: "clearSelection"}}
	})
}

// SelectMultiple replaces the selection with ids in the given order.
// Unknown and duplicate ids are dropped.
func (s *Store) SelectMultiple(ids []string) {
	s.update(func() []Event {
		next := make([]string, 0, len(ids))
		for _, id := range ids {
			if s.indexLocked(id) >= 0 && !slices.Contains(next, id) {
				next = append(next, id)
			}
		}
		if slices.Equal(next, s.selected) {
			return nil
		}
		s.selected = next
		s.commitLocked("selectMultiple")
		return []Event{{Type: EventSelection, Action: "selectMultiple", PanelIDs: append([]string(nil), next...)}}
	})
}

// SelectAll selects every panel in array order.
func (s *Store) SelectAll() {
	s.update(func() []Event {
		next := make([]string, len(s.panels))
		for i, p := range s.panels {
			next[i] = p.ID
		}
		if slices.Equal(next, s.selected) {
			return nil
		}
		s.selected = next
		s.commitLocked("selectAll")
		return []Event{{Type: EventSelection, Action: "selectAll"}}
	})
}

// CycleSelection moves a single selection to the next (or previous) panel
// in array order, wrapping around. With nothing selected it picks the first
// (or last) panel.
func (s *Store) CycleSelection(forward bool) {
	s.update(func() []Event {
		n := len(s.panels)
		if n == 0 {
			return nil
		}
		cur := -1
		if len(s.selected) > 0 {
			cur = s.indexLocked(s.selected[len(s.selected)-1])
		}
		var next int
		switch {
		case cur < 0 && forward:
			next = 0
		case cur < 0:
			next = n - 1
		case forward:
			next = (cur + 1) % n
		default:
			next = (cur - 1 + n) % n
		}
		id := s.panels[next].ID
		if slices.Equal(s.selected, []string{id}) {
			return nil
		}
		s.selected = []string{id}
		s.bringToFrontLocked(id)
		s.commitLocked("cycleSelection")
		return []Event{{Type: EventSelection, Action: "cycleSelection", PanelIDs: []string{id}}}
	})
}

// DeleteSelection removes every selected panel and clears the selection.
func (s *Store) DeleteSelection() {
	s.update(func() []Event {
		if len(s.selected) == 0 {
			return nil
		}
		removed := append([]string(nil), s.selected...)
		for _, id := range removed {
			s.removeLocked(id)
		}
		s.selected = nil
		s.commitLocked("deleteSelection")
		return []Event{
			{Type: EventPanels, Action: "deleteSelection", PanelIDs: removed},
			{Type: EventSelection, Action: "deleteSelection"},
		}
	})
}

// DuplicateSelection duplicates every selected panel and selects the copies.
func (s *Store) DuplicateSelection() []layout.Panel {
	var out []layout.Panel
	s.update(func() []Event {
		if len(s.selected) == 0 {
			return nil
		}
		var ids []string
		for _, id := range s.selected {
			i := s.indexLocked(id)
			if i < 0 {
				continue
			}
			dup, ok := s.duplicateLocked(s.panels[i])
			if !ok {
				s.rejectLocked("duplicateSelection", "collision", "panel", id)
				continue
			}
			out = append(out, dup)
			ids = append(ids, dup.ID)
		}
		if len(ids) == 0 {
			return nil
		}
		s.selected = ids
		s.commitLocked("duplicateSelection")
		return []Event{
			{Type: EventPanels, Action: "duplicateSelection", PanelIDs: ids},
			{Type: EventSelection, Action: "duplicateSelection", PanelIDs: ids},
		}
	})
	return out
}

// MoveSelection translates every selected panel by (dx, dy). The move is
// all or nothing: if any panel would be blocked by a collision, nothing
// moves and COLLISION is returned. Positions are clamped to the
// non-negative workspace. An empty selection is a no-op.
func (s *Store) MoveSelection(dx, dy float64) error {
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return errors.New(errors.ErrCodeInvalidGeometry, "move delta must be finite")
	}
	return s.transformSelection("moveSelection", func(p layout.Panel) (layout.Panel, error) {
		p.Position = layout.GetConstrainedPosition(layout.Point{X: p.Position.X + dx, Y: p.Position.Y + dy}, p.Size, layout.BoundsConstraints{})
		return p, nil
	})
}

// ResizeSelection grows every selected panel by (dw, dh), clamped to each
// panel's constraints. If any resulting size would be non-positive, or any
// panel would be blocked by a collision, nothing changes.
func (s *Store) ResizeSelection(dw, dh float64) error {
	return s.transformSelection("resizeSelection", func(p layout.Panel) (layout.Panel, error) {
		size := layout.Size{Width: p.Size.Width + dw, Height: p.Size.Height + dh}
		if err := errors.ValidateSize(size.Width, size.Height); err != nil {
			return p, err
		}
		p.Size = layout.GetConstrainedSize(size, p.Constraints)
		return p, nil
	})
}

// CenterSelection moves the selection as one group so that its bounding
// box is centered in the viewport. Relative positions are kept, subject to
// the same clamping and collision rules as MoveSelection.
func (s *Store) CenterSelection() error {
	var err error
	s.update(func() []Event {
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, id := range s.selected {
			if i := s.indexLocked(id); i >= 0 {
				r := s.panels[i].Rect()
				minX, minY = math.Min(minX, r.X), math.Min(minY, r.Y)
				maxX, maxY = math.Max(maxX, r.Right()), math.Max(maxY, r.Bottom())
			}
		}
		if math.IsInf(minX, 1) {
			return nil
		}
		target := centerIn(s.viewport, layout.Size{Width: maxX - minX, Height: maxY - minY})
		dx, dy := target.X-minX, target.Y-minY
		var events []Event
		events, err = s.transformLocked("centerSelection", func(p layout.Panel) (layout.Panel, error) {
			p.Position = layout.GetConstrainedPosition(layout.Point{X: p.Position.X + dx, Y: p.Position.Y + dy}, p.Size, layout.BoundsConstraints{})
			return p, nil
		})
		return events
	})
	return err
}

// transformSelection applies fn to every selected panel atomically.
func (s *Store) transformSelection(action string, fn func(layout.Panel) (layout.Panel, error)) error {
	var err error
	s.update(func() []Event {
		var events []Event
		events, err = s.transformLocked(action, fn)
		return events
	})
	return err
}

// transformLocked checks the transformed rectangles against each other and
// against the unselected panels, so co-moving panels never block one
// another at their old positions but may not overlap at the new ones.
func (s *Store) transformLocked(action string, fn func(layout.Panel) (layout.Panel, error)) ([]Event, error) {
	if len(s.selected) == 0 {
		return nil, nil
	}
	final := make([]layout.Panel, len(s.panels))
	copy(final, s.panels)

	var changed []int
	for _, id := range s.selected {
		i := s.indexLocked(id)
		if i < 0 {
			continue
		}
		next, err := fn(s.panels[i].Clone())
		if err != nil {
			s.rejectLocked(action, string(errors.GetCode(err)), "panel", id)
			return nil, err
		}
		if next.Position != s.panels[i].Position || next.Size != s.panels[i].Size {
			final[i] = next
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(changed))
	for _, i := range changed {
		if blockers := s.blockingLocked(final[i], final); len(blockers) > 0 {
			s.rejectLocked(action, "collision", "panel", final[i].ID)
			return nil, errors.New(errors.ErrCodeCollision, "panel %s would overlap %v", final[i].ID, blockers)
		}
		ids = append(ids, final[i].ID)
	}
	s.panels = final
	s.commitLocked(action)
	return []Event{{Type: EventPanels, Action: action, PanelIDs: ids}}, nil
}
