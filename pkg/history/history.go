// Package history implements snapshot-based undo and redo.
//
// A [Manager] holds a bounded past stack, the present snapshot, and a future
// stack. Recording a new snapshot pushes the present onto past and clears
// future; Undo and Redo move the present between the two stacks.
//
// Manager is not safe for concurrent use. The layout store serializes access.
package history

import (
	"time"

	"github.com/matzehuels/panels/pkg/layout"
)

// DefaultLimit is the past stack capacity used when none is configured.
const DefaultLimit = 20

// Snapshot is a full copy of the layout-relevant state. Snapshots are treated
// as immutable once recorded; use Clone before mutating a returned one.
type Snapshot struct {
	Timestamp time.Time               `json:"timestamp"`
	Panels    map[string]layout.Panel `json:"panels"`
	// Order is the panel array order, which Panels alone cannot carry.
	Order            []string        `json:"order"`
	SelectedPanelIDs []string        `json:"selectedPanelIds"`
	Viewport         layout.Viewport `json:"viewport"`
}

// NewSnapshot builds a snapshot from an ordered panel list.
func NewSnapshot(panels []layout.Panel, selected []string, vp layout.Viewport) Snapshot {
	s := Snapshot{
		Timestamp:        time.Now(),
		Panels:           make(map[string]layout.Panel, len(panels)),
		Order:            make([]string, 0, len(panels)),
		SelectedPanelIDs: append([]string(nil), selected...),
		Viewport:         vp,
	}
	for _, p := range panels {
		s.Panels[p.ID] = p.Clone()
		s.Order = append(s.Order, p.ID)
	}
	return s
}

// OrderedPanels returns copies of the panels in array order.
func (s Snapshot) OrderedPanels() []layout.Panel {
	out := make([]layout.Panel, 0, len(s.Order))
	for _, id := range s.Order {
		if p, ok := s.Panels[id]; ok {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Panels = make(map[string]layout.Panel, len(s.Panels))
	for id, p := range s.Panels {
		out.Panels[id] = p.Clone()
	}
	out.Order = append([]string(nil), s.Order...)
	out.SelectedPanelIDs = append([]string(nil), s.SelectedPanelIDs...)
	return out
}

// Manager tracks past, present and future snapshots.
type Manager struct {
	limit   int
	past    []Snapshot
	present Snapshot
	future  []Snapshot
}

// New returns a Manager whose present is initial. A non-positive limit
// falls back to DefaultLimit.
func New(limit int, initial Snapshot) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit, present: initial.Clone()}
}

// Limit returns the past stack capacity.
func (m *Manager) Limit() int { return m.limit }

// Present returns a copy of the current snapshot.
func (m *Manager) Present() Snapshot { return m.present.Clone() }

// Record makes s the present. The previous present moves onto past,
// dropping the oldest entry beyond the limit, and future is cleared.
func (m *Manager) Record(s Snapshot) {
	m.past = append(m.past, m.present)
	if over := len(m.past) - m.limit; over > 0 {
		m.past = append([]Snapshot(nil), m.past[over:]...)
	}
	m.present = s.Clone()
	m.future = nil
}

// Undo steps back one snapshot and returns the new present.
// It reports false and changes nothing when past is empty.
func (m *Manager) Undo() (Snapshot, bool) {
	if len(m.past) == 0 {
		return Snapshot{}, false
	}
	last := len(m.past) - 1
	m.future = append(m.future, m.present)
	m.present = m.past[last]
	m.past = m.past[:last]
	return m.present.Clone(), true
}

// Redo steps forward one snapshot and returns the new present.
// It reports false and changes nothing when future is empty.
func (m *Manager) Redo() (Snapshot, bool) {
	if len(m.future) == 0 {
		return Snapshot{}, false
	}
	last := len(m.future) - 1
	m.past = append(m.past, m.present)
	m.present = m.future[last]
	m.future = m.future[:last]
	return m.present.Clone(), true
}

// CanUndo reports whether Undo would change the present.
func (m *Manager) CanUndo() bool { return len(m.past) > 0 }

// CanRedo reports whether Redo would change the present.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Len returns the sizes of the past and future stacks.
func (m *Manager) Len() (past, future int) { return len(m.past), len(m.future) }

// Reset discards past and future and makes s the present.
func (m *Manager) Reset(s Snapshot) {
	m.past, m.future = nil, nil
	m.present = s.Clone()
}
