package api

import (
	"net/http"
	"strconv"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/render"
	"github.com/matzehuels/panels/pkg/resize"
)

type proportionalRequest struct {
	PanelID  string      `json:"panelId"`
	Size     layout.Size `json:"size"`
	Priority int         `json:"priority,omitempty"`
}

type groupRequest struct {
	PanelIDs []string      `json:"panelIds"`
	Factor   float64       `json:"factor"`
	Anchor   *layout.Point `json:"anchor,omitempty"`
	Priority int           `json:"priority,omitempty"`
}

type planResponse struct {
	Changes    []resize.Change    `json:"changes"`
	Operations []resize.Operation `json:"operations"`
}

type queueResponse struct {
	Pending   []resize.Operation `json:"pending"`
	Conflicts []resize.Conflict  `json:"conflicts"`
	LastFrame resize.FrameResult `json:"lastFrame"`
}

func (s *Server) handleProportional(w http.ResponseWriter, r *http.Request) {
	var req proportionalRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, ok := s.store.Panel(req.PanelID); !ok {
		s.writeError(w, r, errors.New(errors.ErrCodePanelNotFound, "panel %s not found", req.PanelID))
		return
	}
	changes, err := resize.PlanProportional(s.store.Panels(), req.PanelID, req.Size, s.plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.enqueue(w, changes, req.Priority)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ids := req.PanelIDs
	if len(ids) == 0 {
		ids = s.store.SelectedIDs()
	}
	changes, err := resize.PlanGroup(s.store.Panels(), ids, req.Factor, req.Anchor, s.plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.enqueue(w, changes, req.Priority)
}

func (s *Server) enqueue(w http.ResponseWriter, changes []resize.Change, priority int) {
	ops := s.queue.Enqueue(resize.Operations(changes, priority)...)
	writeJSON(w, http.StatusAccepted, planResponse{Changes: changes, Operations: ops})
}

func (s *Server) handleQueue(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, queueResponse{
		Pending:   s.queue.Pending(),
		Conflicts: s.queue.Conflicts(),
		LastFrame: s.queue.LastFrame(),
	})
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleRenderSVG(w http.ResponseWriter, _ *http.Request) {
	st := s.store.State()
	svg := render.SVG(st.Panels, render.WithSelection(st.SelectedPanelIDs...), render.WithGrid(st.Grid), render.WithLabels())
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleRenderDOT(w http.ResponseWriter, _ *http.Request) {
	st := s.store.State()
	dot := render.AdjacencyDOT(st.Panels, render.DOTOptions{Selected: st.SelectedPanelIDs, Tolerance: s.plan.Proportional.Tolerance})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleRenderPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cols, _ := strconv.Atoi(q.Get("cols"))
	rows, _ := strconv.Atoi(q.Get("rows"))
	st := s.store.State()
	out := render.Preview(st.Panels, render.PreviewOptions{Cols: cols, Rows: rows, Selected: st.SelectedPanelIDs})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleAdjacency(w http.ResponseWriter, _ *http.Request) {
	edges := render.Adjacency(s.store.Panels(), s.plan.Proportional.Tolerance)
	if edges == nil {
		edges = []render.Edge{}
	}
	writeJSON(w, http.StatusOK, edges)
}
