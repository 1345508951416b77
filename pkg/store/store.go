package store

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/panels/pkg/history"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/observability"
	"github.com/matzehuels/panels/pkg/workspace"
)

// =============================================================================
// Events
// =============================================================================

// EventType classifies what an action changed.
type EventType string

const (
	EventPanels    EventType = "panels"
	EventSelection EventType = "selection"
	EventDrag      EventType = "drag"
	EventResize    EventType = "resize"
	EventGrid      EventType = "grid"
	EventViewport  EventType = "viewport"
	EventHistory   EventType = "history"
	EventWorkspace EventType = "workspace"
)

// Event is delivered to listeners after an action completes.
type Event struct {
	Type     EventType `json:"type"`
	Action   string    `json:"action"`
	PanelIDs []string  `json:"panelIds,omitempty"`
}

// Listener receives store events.
type Listener func(Event)

// =============================================================================
// Transient interaction state
// =============================================================================

// DragState describes the active drag, if any.
type DragState struct {
	IsDragging        bool         `json:"isDragging"`
	PanelID           string       `json:"draggedPanelId,omitempty"`
	StartPosition     layout.Point `json:"startPosition"`
	CurrentPosition   layout.Point `json:"currentPosition"`
	Offset            layout.Point `json:"offset"`
	ConstrainToParent bool         `json:"constrainToParent"`
	SnapToGrid        bool         `json:"snapToGrid"`
}

// ResizeState describes the active resize, if any.
type ResizeState struct {
	IsResizing          bool             `json:"isResizing"`
	PanelID             string           `json:"resizedPanelId,omitempty"`
	StartSize           layout.Size      `json:"startSize"`
	CurrentSize         layout.Size      `json:"currentSize"`
	StartPosition       layout.Point     `json:"startPosition"`
	CurrentPosition     layout.Point     `json:"currentPosition"`
	Direction           layout.Direction `json:"direction,omitempty"`
	MaintainAspectRatio bool             `json:"maintainAspectRatio"`
}

// State is a read-only copy of everything a render consumer needs.
type State struct {
	Panels            []layout.Panel      `json:"panels"`
	SelectedPanelIDs  []string            `json:"selectedPanelIds"`
	Grid              layout.GridSettings `json:"gridSettings"`
	Viewport          layout.Viewport     `json:"viewport"`
	Drag              DragState           `json:"dragState"`
	Resize            ResizeState         `json:"resizeState"`
	ActiveWorkspaceID string              `json:"activeWorkspaceId,omitempty"`
	CanUndo           bool                `json:"canUndo"`
	CanRedo           bool                `json:"canRedo"`
}

// =============================================================================
// Store
// =============================================================================

// Options configures a Store. Zero values select defaults.
type Options struct {
	Grid         *layout.GridSettings
	Viewport     *layout.Viewport
	HistoryLimit int
	// Workspaces handles persistence. Nil uses an in-memory manager.
	Workspaces *workspace.Manager
	Logger     *log.Logger
	// NewID generates panel ids. Nil uses uuid.NewString.
	NewID func() string
}

// Store holds the live layout. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	panels   []layout.Panel
	selected []string
	grid     layout.GridSettings
	viewport layout.Viewport
	drag     DragState
	resize   ResizeState
	history  *history.Manager

	workspaces      *workspace.Manager
	activeWorkspace string

	logger *log.Logger
	newID  func() string

	listeners    map[int]Listener
	nextListener int
}

// New creates an empty store.
func New(opts Options) *Store {
	s := &Store{
		grid:       layout.DefaultGridSettings(),
		viewport:   layout.DefaultViewport(),
		workspaces: opts.Workspaces,
		logger:     opts.Logger,
		newID:      opts.NewID,
		listeners:  make(map[int]Listener),
	}
	if opts.Grid != nil && opts.Grid.Valid() {
		s.grid = *opts.Grid
	}
	if opts.Viewport != nil {
		s.viewport = *opts.Viewport
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.workspaces == nil {
		s.workspaces = workspace.NewManager(workspace.NewMemoryStorage(), s.logger)
	}
	s.history = history.New(opts.HistoryLimit, s.snapshotLocked())
	return s
}

// Subscribe registers fn for all future events and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// update runs fn under the write lock and then delivers its events
// with the lock released.
func (s *Store) update(fn func() []Event) {
	s.mu.Lock()
	events := fn()
	var listeners []Listener
	if len(events) > 0 {
		listeners = make([]Listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}

// commitLocked records a history snapshot for action.
func (s *Store) commitLocked(action string) {
	s.history.Record(s.snapshotLocked())
	observability.Store().OnCommit(action, len(s.panels))
	s.logger.Debug("commit", "action", action, "panels", len(s.panels), "selected", len(s.selected))
}

func (s *Store) rejectLocked(action, reason string, kv ...any) {
	observability.Store().OnRejected(action, reason)
	s.logger.Warn("action rejected", append([]any{"action", action, "reason", reason}, kv...)...)
}

func (s *Store) snapshotLocked() history.Snapshot {
	return history.NewSnapshot(s.panels, s.selected, s.viewport)
}

// =============================================================================
// Reads
// =============================================================================

// Panel returns a copy of the panel with id.
func (s *Store) Panel(id string) (layout.Panel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return layout.Panel{}, false
	}
	return s.panels[i].Clone(), true
}

// Panels returns copies of all panels in array order.
func (s *Store) Panels() []layout.Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePanels(s.panels)
}

// SelectedIDs returns the ordered selection.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selected...)
}

// Selected returns copies of the selected panels in selection order.
func (s *Store) Selected() []layout.Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]layout.Panel, 0, len(s.selected))
	for _, id := range s.selected {
		if i := s.indexLocked(id); i >= 0 {
			out = append(out, s.panels[i].Clone())
		}
	}
	return out
}

// Grid returns the grid settings.
func (s *Store) Grid() layout.GridSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// Viewport returns the viewport.
func (s *Store) Viewport() layout.Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// DragState returns the transient drag state.
func (s *Store) DragState() DragState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drag
}

// ResizeState returns the transient resize state.
func (s *Store) ResizeState() ResizeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resize
}

// State returns a consistent copy of the whole store.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Panels:            clonePanels(s.panels),
		SelectedPanelIDs:  append([]string(nil), s.selected...),
		Grid:              s.grid,
		Viewport:          s.viewport,
		Drag:              s.drag,
		Resize:            s.resize,
		ActiveWorkspaceID: s.activeWorkspace,
		CanUndo:           s.history.CanUndo(),
		CanRedo:           s.history.CanRedo(),
	}
}

// CanUndo reports whether Undo would change anything.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change anything.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// HistoryLen returns the sizes of the undo and redo stacks.
func (s *Store) HistoryLen() (past, future int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Len()
}

// Workspaces returns the workspace manager.
func (s *Store) Workspaces() *workspace.Manager { return s.workspaces }

// Logger returns the store logger.
func (s *Store) Logger() *log.Logger { return s.logger }

func (s *Store) indexLocked(id string) int {
	return indexIn(s.panels, id)
}

func (s *Store) maxZLocked() int {
	z := 0
	for _, p := range s.panels {
		z = max(z, p.ZIndex)
	}
	return z
}

func clonePanels(in []layout.Panel) []layout.Panel {
	out := make([]layout.Panel, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
