package store

import (
	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// DragOptions are captured when a drag starts.
type DragOptions struct {
	ConstrainToParent bool
	SnapToGrid        bool
}

// StartDrag begins dragging id with the pointer at pointer. It returns false
// for unknown ids or when another drag or a resize is active.
func (s *Store) StartDrag(id string, pointer layout.Point, opts DragOptions) bool {
	ok := false
	s.update(func() []Event {
		i := s.indexLocked(id)
		if i < 0 || s.drag.IsDragging || s.resize.IsResizing {
			return nil
		}
		pos := s.panels[i].Position
		s.drag = DragState{
			IsDragging:        true,
			PanelID:           id,
			StartPosition:     pos,
			CurrentPosition:   pos,
			Offset:            pointer.Sub(pos),
			ConstrainToParent: opts.ConstrainToParent,
			SnapToGrid:        opts.SnapToGrid,
		}
		ok = true
		return []Event{{Type: EventDrag, Action: "startDrag", PanelIDs: []string{id}}}
	})
	return ok
}

// UpdateDrag records a candidate position. The panel itself is untouched.
func (s *Store) UpdateDrag(pos layout.Point) {
	s.update(func() []Event {
		if !s.drag.IsDragging || s.drag.CurrentPosition == pos {
			return nil
		}
		s.drag.CurrentPosition = pos
		return []Event{{Type: EventDrag, Action: "updateDrag", PanelIDs: []string{s.drag.PanelID}}}
	})
}

// EndDrag commits the current drag position and clears the drag state.
// A commit blocked by a collision leaves the panel at its start position
// and returns COLLISION. Without an active drag it returns false.
func (s *Store) EndDrag() (layout.Panel, bool, error) {
	var (
		out       layout.Panel
		committed bool
		err       error
	)
	s.update(func() []Event {
		if !s.drag.IsDragging {
			return nil
		}
		d := s.drag
		s.drag = DragState{}
		events := []Event{{Type: EventDrag, Action: "endDrag", PanelIDs: []string{d.PanelID}}}

		i := s.indexLocked(d.PanelID)
		if i < 0 {
			return events
		}
		pos := d.CurrentPosition
		var next layout.Panel
		next, err = s.preparePatchLocked(s.panels[i], layout.MovePatch(pos))
		if err != nil {
			s.rejectLocked("endDrag", string(errors.GetCode(err)), "panel", d.PanelID)
			out = s.panels[i].Clone()
			return events
		}
		out = next.Clone()
		if next.Position == s.panels[i].Position {
			return events
		}
		s.panels[i] = next
		committed = true
		s.commitLocked("endDrag")
		return append(events, Event{Type: EventPanels, Action: "endDrag", PanelIDs: []string{d.PanelID}})
	})
	return out, committed, err
}

// CancelDrag discards the drag without touching the panel.
func (s *Store) CancelDrag() {
	s.update(func() []Event {
		if !s.drag.IsDragging {
			return nil
		}
		id := s.drag.PanelID
		s.drag = DragState{}
		return []Event{{Type: EventDrag, Action: "cancelDrag", PanelIDs: []string{id}}}
	})
}

// StartResize begins resizing id from handle dir. It returns false for
// unknown ids or when a drag or another resize is active.
func (s *Store) StartResize(id string, dir layout.Direction, maintainAspectRatio bool) bool {
	ok := false
	s.update(func() []Event {
		i := s.indexLocked(id)
		if i < 0 || s.drag.IsDragging || s.resize.IsResizing {
			return nil
		}
		p := s.panels[i]
		s.resize = ResizeState{
			IsResizing:          true,
			PanelID:             id,
			StartSize:           p.Size,
			CurrentSize:         p.Size,
			StartPosition:       p.Position,
			CurrentPosition:     p.Position,
			Direction:           dir,
			MaintainAspectRatio: maintainAspectRatio,
		}
		ok = true
		return []Event{{Type: EventResize, Action: "startResize", PanelIDs: []string{id}}}
	})
	return ok
}

// UpdateResize records a candidate geometry. The panel itself is untouched.
func (s *Store) UpdateResize(pos layout.Point, size layout.Size) {
	s.update(func() []Event {
		if !s.resize.IsResizing {
			return nil
		}
		if s.resize.CurrentPosition == pos && s.resize.CurrentSize == size {
			return nil
		}
		s.resize.CurrentPosition = pos
		s.resize.CurrentSize = size
		return []Event{{Type: EventResize, Action: "updateResize", PanelIDs: []string{s.resize.PanelID}}}
	})
}

// EndResize commits the current resize geometry and clears the resize
// state. The size is clamped to the panel's constraints and, for handles
// involving north or west, the position is recomputed so the opposite
// edges stay where they were at StartResize.
func (s *Store) EndResize() (layout.Panel, bool, error) {
	var (
		out       layout.Panel
		committed bool
		err       error
	)
	s.update(func() []Event {
		if !s.resize.IsResizing {
			return nil
		}
		r := s.resize
		s.resize = ResizeState{}
		events := []Event{{Type: EventResize, Action: "endResize", PanelIDs: []string{r.PanelID}}}

		i := s.indexLocked(r.PanelID)
		if i < 0 {
			return events
		}
		if err = errors.ValidateSize(r.CurrentSize.Width, r.CurrentSize.Height); err != nil {
			s.rejectLocked("endResize", string(errors.GetCode(err)), "panel", r.PanelID)
			out = s.panels[i].Clone()
			return events
		}
		size := layout.GetConstrainedSize(r.CurrentSize, s.panels[i].Constraints)
		pos := r.CurrentPosition
		if r.Direction.HasNorth() || r.Direction.HasWest() {
			anchored := layout.AnchorPosition(r.Direction, r.StartPosition, r.StartSize, size)
			if r.Direction.HasWest() {
				pos.X = anchored.X
			}
			if r.Direction.HasNorth() {
				pos.Y = anchored.Y
			}
		}

		var next layout.Panel
		next, err = s.preparePatchLocked(s.panels[i], layout.ResizePatch(pos, size))
		if err != nil {
			s.rejectLocked("endResize", string(errors.GetCode(err)), "panel", r.PanelID)
			out = s.panels[i].Clone()
			return events
		}
		out = next.Clone()
		if next.Position == s.panels[i].Position && next.Size == s.panels[i].Size {
			return events
		}
		s.panels[i] = next
		committed = true
		s.commitLocked("endResize")
		return append(events, Event{Type: EventPanels, Action: "endResize", PanelIDs: []string{r.PanelID}})
	})
	return out, committed, err
}

// CancelResize discards the resize without touching the panel.
func (s *Store) CancelResize() {
	s.update(func() []Event {
		if !s.resize.IsResizing {
			return nil
		}
		id := s.resize.PanelID
		s.resize = ResizeState{}
		return []Event{{Type: EventResize, Action: "cancelResize", PanelIDs: []string{id}}}
	})
}
