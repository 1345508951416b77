package store

import (
	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

// PanelUpdate is one entry of ApplyBatch.
type PanelUpdate struct {
	PanelID string
	Patch   layout.PanelPatch
}

// BatchResult reports what ApplyBatch did.
type BatchResult struct {
	Applied []string
	// Rejected maps panel ids to the reason the batch was refused.
	Rejected map[string]error
}

// ApplyBatch applies the updates as one action with a single snapshot.
// Every update is checked against the state the whole batch produces, so
// panels that move out of each other's way do not block one another. If
// any update is invalid nothing is applied and Rejected names the
// offending panels. Unknown ids are ignored.
func (s *Store) ApplyBatch(action string, updates []PanelUpdate) BatchResult {
	res := BatchResult{Rejected: map[string]error{}}
	if action == "" {
		action = "applyBatch"
	}
	s.update(func() []Event {
		final := make([]layout.Panel, len(s.panels))
		copy(final, s.panels)

		var changed []int
		for _, u := range updates {
			i := s.indexLocked(u.PanelID)
			if i < 0 || u.Patch.IsEmpty() {
				continue
			}
			next, err := preparePatch(final[i], u.Patch)
			if err != nil {
				res.Rejected[u.PanelID] = err
				continue
			}
			final[i] = next
			changed = append(changed, i)
		}
		for _, i := range changed {
			if blockers := s.blockingLocked(final[i], final); len(blockers) > 0 {
				res.Rejected[final[i].ID] = errors.New(errors.ErrCodeCollision, "panel %s would overlap %v", final[i].ID, blockers)
			}
		}
		if len(res.Rejected) > 0 {
			for id, err := range res.Rejected {
				s.rejectLocked(action, string(errors.GetCode(err)), "panel", id)
			}
			return nil
		}
		for _, i := range changed {
			if final[i].Position != s.panels[i].Position || final[i].Size != s.panels[i].Size {
				res.Applied = append(res.Applied, final[i].ID)
			}
		}
		if len(res.Applied) == 0 {
			return nil
		}
		s.panels = final
		s.commitLocked(action)
		return []Event{{Type: EventPanels, Action: action, PanelIDs: append([]string(nil), res.Applied...)}}
	})
	return res
}

// View runs fn with the read lock held. fn must not call back into the
// store.
func (s *Store) View(fn func(panels []layout.Panel, grid layout.GridSettings, vp layout.Viewport)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.panels, s.grid, s.viewport)
}
