package store

import (
	"context"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/history"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/observability"
	"github.com/matzehuels/panels/pkg/workspace"
)

// =============================================================================
// Undo / Redo
// =============================================================================

// Undo restores the previous snapshot. It reports false when there is
// nothing to undo. Any active drag or resize is discarded.
func (s *Store) Undo() bool {
	return s.travel("undo", s.history.Undo)
}

// Redo re-applies the snapshot undone last. It reports false when there
// is nothing to redo.
func (s *Store) Redo() bool {
	return s.travel("redo", s.history.Redo)
}

func (s *Store) travel(action string, step func() (history.Snapshot, bool)) bool {
	ok := false
	s.update(func() []Event {
		var snap history.Snapshot
		snap, ok = step()
		if !ok {
			return nil
		}
		s.restoreLocked(snap)
		past, future := s.history.Len()
		observability.Store().OnHistory(action, past, future)
		s.logger.Debug(action, "past", past, "future", future)
		return []Event{
			{Type: EventHistory, Action: action},
			{Type: EventPanels, Action: action},
			{Type: EventSelection, Action: action},
		}
	})
	return ok
}

func (s *Store) restoreLocked(snap history.Snapshot) {
	s.panels = snap.OrderedPanels()
	s.selected = append([]string(nil), snap.SelectedPanelIDs...)
	s.viewport = snap.Viewport
	s.drag = DragState{}
	s.resize = ResizeState{}
}

// ResetLayout removes every panel and clears the undo history. It cannot
// be undone.
func (s *Store) ResetLayout() {
	s.update(func() []Event {
		s.panels = nil
		s.selected = nil
		s.drag = DragState{}
		s.resize = ResizeState{}
		s.history.Reset(s.snapshotLocked())
		s.logger.Info("layout reset")
		return []Event{
			{Type: EventPanels, Action: "resetLayout"},
			{Type: EventSelection, Action: "resetLayout"},
			{Type: EventHistory, Action: "resetLayout"},
		}
	})
}

// =============================================================================
// Grid and viewport
// =============================================================================

// UpdateGridSettings merges patch into the grid settings. Grid settings
// are not part of history snapshots.
func (s *Store) UpdateGridSettings(patch layout.GridPatch) layout.GridSettings {
	var out layout.GridSettings
	s.update(func() []Event {
		next := patch.Apply(s.grid)
		out = next
		if next == s.grid {
			return nil
		}
		s.grid = next
		return []Event{{Type: EventGrid, Action: "updateGridSettings"}}
	})
	return out
}

// SetGridSnap turns grid snapping on or off.
func (s *Store) SetGridSnap(enabled bool) {
	s.UpdateGridSettings(layout.GridPatch{Enabled: &enabled})
}

// ToggleGridSnap flips grid snapping and returns the new state.
func (s *Store) ToggleGridSnap() bool {
	var enabled bool
	s.update(func() []Event {
		s.grid.Enabled = !s.grid.Enabled
		enabled = s.grid.Enabled
		return []Event{{Type: EventGrid, Action: "toggleGridSnap"}}
	})
	return enabled
}

// SetViewport replaces the viewport and records a snapshot.
func (s *Store) SetViewport(vp layout.Viewport) {
	s.update(func() []Event {
		if vp == s.viewport || vp.Width <= 0 || vp.Height <= 0 {
			return nil
		}
		s.viewport = vp
		s.commitLocked("setViewport")
		return []Event{{Type: EventViewport, Action: "setViewport"}}
	})
}

// =============================================================================
// Workspaces
// =============================================================================

// SaveWorkspace stores the current panels, grid and viewport under name.
// Saving an existing name overwrites that workspace.
func (s *Store) SaveWorkspace(ctx context.Context, name, description string) (workspace.Config, error) {
	s.mu.RLock()
	cfg := workspace.Config{
		Name:        name,
		Description: description,
		Panels:      clonePanels(s.panels),
		Grid:        s.grid,
		Viewport:    s.viewport,
	}
	s.mu.RUnlock()

	saved, err := s.workspaces.Save(ctx, cfg)
	if err != nil {
		return workspace.Config{}, err
	}
	s.update(func() []Event {
		s.activeWorkspace = saved.ID
		return []Event{{Type: EventWorkspace, Action: "saveWorkspace"}}
	})
	return saved, nil
}

// LoadWorkspace replaces the live panels, grid and viewport with the saved
// workspace. The selection is cleared. The replacement is recorded, so it
// can be undone.
func (s *Store) LoadWorkspace(ctx context.Context, id string) error {
	cfg, err := s.workspaces.Load(ctx, id)
	if err != nil {
		return err
	}
	s.update(func() []Event {
		s.panels = clonePanels(cfg.Panels)
		for i := range s.panels {
			p := &s.panels[i]
			p.Size = layout.GetConstrainedSize(p.Size, p.Constraints)
		}
		s.selected = nil
		if cfg.Grid.Valid() {
			s.grid = cfg.Grid
		}
		if cfg.Viewport.Width > 0 && cfg.Viewport.Height > 0 {
			s.viewport = cfg.Viewport
		}
		s.drag = DragState{}
		s.resize = ResizeState{}
		s.activeWorkspace = cfg.ID
		s.commitLocked("loadWorkspace")
		return []Event{
			{Type: EventWorkspace, Action: "loadWorkspace"},
			{Type: EventPanels, Action: "loadWorkspace"},
			{Type: EventSelection, Action: "loadWorkspace"},
			{Type: EventGrid, Action: "loadWorkspace"},
		}
	})
	return nil
}

// DeleteWorkspace removes a saved workspace. The live panels are untouched.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	if err := s.workspaces.Delete(ctx, id); err != nil {
		return err
	}
	s.update(func() []Event {
		if s.activeWorkspace == id {
			s.activeWorkspace = ""
		}
		return []Event{{Type: EventWorkspace, Action: "deleteWorkspace"}}
	})
	return nil
}

// SaveActiveWorkspace re-saves the active workspace under its own name.
// It fails with WORKSPACE_NOT_FOUND when none is active.
func (s *Store) SaveActiveWorkspace(ctx context.Context) (workspace.Config, error) {
	s.mu.RLock()
	id := s.activeWorkspace
	s.mu.RUnlock()

	cfg, ok := s.workspaces.Get(id)
	if id == "" || !ok {
		return workspace.Config{}, errors.New(errors.ErrCodeWorkspaceNotFound, "no active workspace")
	}
	return s.SaveWorkspace(ctx, cfg.Name, cfg.Description)
}
