// Package tui is an interactive terminal editor for a panel layout.
//
// Keys go through a keyboard.Dispatcher, so the editor honours the same
// bindings as the HTTP API. Left-button drags move panels through a
// drag.Controller and commit on release. The board is drawn with
// render.Preview at a fixed scale, so cells map back to layout
// coordinates.
package tui

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/panels/pkg/drag"
	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/keyboard"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/render"
	"github.com/matzehuels/panels/pkg/store"
)

var (
	colorCyan = lipgloss.Color("36")
	colorRed  = lipgloss.Color("167")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleStatus = lipgloss.NewStyle().Foreground(colorGray)
	styleError  = lipgloss.NewStyle().Foreground(colorRed)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleKey    = lipgloss.NewStyle().Foreground(colorCyan)
)

// Chrome takes one row above the board and one below it.
const chromeRows = 2

// Options configures a Model.
type Options struct {
	// Keys executes key presses. Nil builds a dispatcher with the
	// default bindings.
	Keys *keyboard.Dispatcher
	Drag drag.Options
	// Title is shown in the header, usually the workspace name.
	Title  string
	Logger *log.Logger
}

// Model is the bubbletea model of the editor.
type Model struct {
	ctx    context.Context
	store  *store.Store
	keys   *keyboard.Dispatcher
	drag   *drag.Controller
	title  string
	logger *log.Logger

	width, height int
	help          bool
	status        string
	failed        bool
}

// New returns an editor over st. ctx is used for workspace saves.
func New(ctx context.Context, st *store.Store, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = st.Logger()
	}
	keys := opts.Keys
	if keys == nil {
		keys = keyboard.NewDispatcher(st, keyboard.Options{Logger: logger})
	}
	if opts.Drag.Logger == nil {
		opts.Drag.Logger = logger
	}
	title := opts.Title
	if title == "" {
		title = "panels"
	}
	return Model{
		ctx:    ctx,
		store:  st,
		keys:   keys,
		drag:   drag.NewController(st, opts.Drag),
		title:  title,
		logger: logger,
		width:  render.DefaultPreviewCols,
		height: render.DefaultPreviewRows + chromeRows,
	}
}

// Run starts the editor in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.drag.Cancel()
		return m, tea.Quit
	case "?":
		m.help = !m.help
		return m, nil
	case "n":
		p := m.store.AddPanel(store.PanelSpec{})
		m.store.SelectPanel(p.ID, false)
		m.setStatus("added " + p.ID)
		return m, nil
	}

	ev, ok := keyEvent(msg)
	if !ok {
		return m, nil
	}
	res, err := m.keys.Dispatch(m.ctx, ev)
	switch {
	case err != nil:
		m.setError(err)
	case res.Handled:
		m.setStatus(keyboard.ActionDescriptions[res.Action])
	}
	return m, nil
}

// keyEvent converts a bubbletea key into a dispatcher event. Keys the
// chord parser does not know are dropped.
func keyEvent(msg tea.KeyMsg) (keyboard.Event, bool) {
	s := msg.String()
	if msg.Type == tea.KeySpace {
		s = "space"
	}
	c, err := keyboard.ParseChord(s)
	if err != nil {
		return keyboard.Event{}, false
	}
	return c.Event(), true
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	pt := m.pointer(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		id, ok := panelAt(m.store.Panels(), pt)
		if !ok {
			if !msg.Shift {
				m.store.ClearSelection()
			}
			return
		}
		m.store.SelectPanel(id, msg.Shift)
		if slices.Contains(m.store.SelectedIDs(), id) {
			m.drag.Start(id, pt)
		}
	case tea.MouseActionMotion:
		if m.drag.State() == drag.Dragging {
			m.drag.Move(pt)
		}
	case tea.MouseActionRelease:
		if m.drag.State() != drag.Dragging {
			return
		}
		p, moved, err := m.drag.End()
		switch {
		case err != nil:
			m.setError(err)
		case moved:
			m.setStatus(fmt.Sprintf("moved %s to %g,%g", p.ID, p.Position.X, p.Position.Y))
		}
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.failed = s, false
}

func (m *Model) setError(err error) {
	m.status, m.failed = errors.UserMessage(err), true
	m.logger.Debug("editor action failed", "err", err)
}

// boardSize is the board area in cells.
func (m Model) boardSize() (cols, rows int) {
	return max(1, m.width), max(1, m.height-chromeRows)
}

// scale is layout pixels per cell, chosen so the viewport fits the board.
func (m Model) scale() float64 {
	cols, rows := m.boardSize()
	vp := m.store.Viewport()
	s := math.Max(vp.Width/float64(cols), vp.Height/float64(rows)/2)
	if s <= 0 {
		return 1
	}
	return s
}

// pointer maps a terminal cell to layout coordinates. Row 0 is the header.
func (m Model) pointer(col, row int) layout.Point {
	s := m.scale()
	return layout.Point{X: float64(col) * s, Y: float64(row-1) * s * 2}
}

// panelAt returns the topmost visible panel containing pt.
func panelAt(panels []layout.Panel, pt layout.Point) (string, bool) {
	var (
		hit   string
		z     int
		found bool
	)
	for _, p := range panels {
		if !p.Visible {
			continue
		}
		r := p.Rect()
		if pt.X < r.X || pt.X >= r.Right() || pt.Y < r.Y || pt.Y >= r.Bottom() {
			continue
		}
		if !found || p.ZIndex >= z {
			hit, z, found = p.ID, p.ZIndex, true
		}
	}
	return hit, found
}

func (m Model) View() string {
	st := m.store.State()
	cols, rows := m.boardSize()

	var b strings.Builder
	b.WriteString(styleTitle.Render(m.title))
	b.WriteString(styleDim.Render("  ? help  n new  q quit"))
	b.WriteString("\n")

	if m.help {
		b.WriteString(m.helpView())
	} else {
		panels := st.Panels
		if st.Drag.IsDragging {
			panels = withDragPreview(panels, st.Drag)
		}
		board := render.Preview(panels, render.PreviewOptions{
			Cols:     cols,
			Rows:     rows,
			Scale:    m.scale(),
			Selected: st.SelectedPanelIDs,
		})
		b.WriteString(board)
	}

	grid := "off"
	if st.Grid.Enabled {
		grid = fmt.Sprintf("%gpx", st.Grid.Size)
	}
	info := fmt.Sprintf("%d panels  %d selected  grid %s", len(st.Panels), len(st.SelectedPanelIDs), grid)
	if st.CanUndo {
		info += "  undo"
	}
	if st.CanRedo {
		info += "  redo"
	}
	b.WriteString(styleStatus.Render(info))
	if m.status != "" {
		b.WriteString("  ")
		if m.failed {
			b.WriteString(styleError.Render(m.status))
		} else {
			b.WriteString(styleStatus.Render(m.status))
		}
	}
	return b.String()
}

func (m Model) helpView() string {
	reg := m.keys.Registry()
	var b strings.Builder
	for _, a := range reg.Actions() {
		fmt.Fprintf(&b, "  %-28s %s\n", styleKey.Render(reg.Display(a)), keyboard.ActionDescriptions[a])
	}
	return b.String()
}

// withDragPreview draws the dragged panel at its candidate position.
func withDragPreview(panels []layout.Panel, d store.DragState) []layout.Panel {
	out := make([]layout.Panel, len(panels))
	copy(out, panels)
	for i := range out {
		if out[i].ID == d.PanelID {
			out[i].Position = d.CurrentPosition
		}
	}
	return out
}
