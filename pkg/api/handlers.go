package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/keyboard"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/store"
)

// =============================================================================
// Panels
// =============================================================================

type addPanelRequest struct {
	Kind        string             `json:"kind"`
	Position    *layout.Point      `json:"position,omitempty"`
	Size        layout.Size        `json:"size"`
	Hidden      bool               `json:"hidden,omitempty"`
	Constraints layout.Constraints `json:"constraints"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.State())
}

func (s *Server) handleListPanels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Panels())
}

func (s *Server) handleAddPanel(w http.ResponseWriter, r *http.Request) {
	var req addPanelRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := s.store.AddPanel(store.PanelSpec{
		Kind:        req.Kind,
		Position:    req.Position,
		Size:        req.Size,
		Hidden:      req.Hidden,
		Constraints: req.Constraints,
	})
	writeJSON(w, http.StatusCreated, p)
}

// panel resolves the {id} parameter or writes PANEL_NOT_FOUND.
func (s *Server) panel(w http.ResponseWriter, r *http.Request) (layout.Panel, bool) {
	id := chi.URLParam(r, "id")
	p, ok := s.store.Panel(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodePanelNotFound, "panel %s not found", id))
	}
	return p, ok
}

func (s *Server) handleGetPanel(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.panel(w, r); ok {
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleUpdatePanel(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	var patch layout.PanelPatch
	if err := decode(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.UpdatePanel(p.ID, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, _ = s.store.Panel(p.ID)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemovePanel(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	s.store.RemovePanel(p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectPanel(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	multi, _ := strconv.ParseBool(r.URL.Query().Get("multi"))
	s.store.SelectPanel(p.ID, multi)
	writeJSON(w, http.StatusOK, map[string][]string{"selectedPanelIds": s.store.SelectedIDs()})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicatePanel(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	dup, _ := s.store.DuplicatePanel(p.ID)
	writeJSON(w, http.StatusCreated, dup)
}

func (s *Server) handleCenterPanel(w http.ResponseWriter, r *http.Request) {
	p, ok := s.panel(w, r)
	if !ok {
		return
	}
	s.store.CenterPanel(p.ID)
	p, _ = s.store.Panel(p.ID)
	writeJSON(w, http.StatusOK, p)
}

// =============================================================================
// History, keys, grid
// =============================================================================

type historyResponse struct {
	Changed bool        `json:"changed"`
	State   store.State `json:"state"`
}

func (s *Server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	changed := s.store.Undo()
	writeJSON(w, http.StatusOK, historyResponse{Changed: changed, State: s.store.State()})
}

func (s *Server) handleRedo(w http.ResponseWriter, _ *http.Request) {
	changed := s.store.Redo()
	writeJSON(w, http.StatusOK, historyResponse{Changed: changed, State: s.store.State()})
}

type keysRequest struct {
	// Chord, when set, replaces the event fields.
	Chord string `json:"chord,omitempty"`
	keyboard.Event
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ev := req.Event
	if req.Chord != "" {
		c, err := keyboard.ParseChord(req.Chord)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ev = c.Event()
		ev.InTextInput = req.InTextInput
	}
	res, err := s.keys.Dispatch(r.Context(), ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetGrid(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Grid())
}

func (s *Server) handleUpdateGrid(w http.ResponseWriter, r *http.Request) {
	var patch layout.GridPatch
	if err := decode(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.UpdateGridSettings(patch))
}

func (s *Server) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	vp := s.store.Viewport()
	if err := decode(r, &vp); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateSize(vp.Width, vp.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.store.SetViewport(vp)
	writeJSON(w, http.StatusOK, s.store.Viewport())
}

// =============================================================================
// Workspaces
// =============================================================================

type saveWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Workspaces().List())
}

func (s *Server) handleSaveWorkspace(w http.ResponseWriter, r *http.Request) {
	var req saveWorkspaceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg, err := s.store.SaveWorkspace(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cfg, ok := s.store.Workspaces().Find(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeWorkspaceNotFound, "workspace %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWorkspace(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LoadWorkspace(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.State())
}
