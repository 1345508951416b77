// Package drag drives panel drags from pointer input.
//
// A Controller is a two-state machine, Idle and Dragging. Start captures the
// pointer offset inside the panel, Move runs each pointer sample through a
// Pipeline and writes the result into the store's drag state at most once
// per throttle interval, and End commits. Samples that arrive inside the
// throttle window are kept as the pending sample and flushed by End, so the
// committed position is always the last one the pointer reached.
package drag

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/store"
)

// DefaultThrottle limits drag-state writes to about 60 per second.
const DefaultThrottle = 16 * time.Millisecond

// State of a Controller.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Options configures a Controller.
type Options struct {
	Throttle          time.Duration
	SnapToGrid        bool
	MagneticThreshold float64
	ConstrainToParent bool
	// Parent bounds the drag when ConstrainToParent is set. Nil uses the
	// store viewport.
	Parent *layout.Rect
	Now    func() time.Time
	Logger *log.Logger
}

// DefaultOptions returns grid and magnetic snapping with the default throttle.
func DefaultOptions() Options {
	return Options{
		Throttle:          DefaultThrottle,
		SnapToGrid:        true,
		MagneticThreshold: layout.MagneticThreshold,
	}
}

// Controller runs one drag at a time against a store.
type Controller struct {
	store *store.Store
	opts  Options

	state     State
	panelID   string
	offset    layout.Point
	lastWrite time.Time
	pending   *Result
	last      Result
}

// NewController returns an idle controller.
func NewController(st *store.Store, opts Options) *Controller {
	if opts.Throttle < 0 {
		opts.Throttle = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = st.Logger()
	}
	return &Controller{store: st, opts: opts}
}

// State returns the controller state.
func (c *Controller) State() State { return c.state }

// PanelID returns the dragged panel, or "" when idle.
func (c *Controller) PanelID() string { return c.panelID }

// Last returns the most recent pipeline result.
func (c *Controller) Last() Result { return c.last }

// Start begins dragging id with the pointer at pointer. It reports false
// when the controller is busy or the store refuses the drag.
func (c *Controller) Start(id string, pointer layout.Point) bool {
	if c.state != Idle {
		return false
	}
	p, ok := c.store.Panel(id)
	if !ok {
		return false
	}
	if !c.store.StartDrag(id, pointer, store.DragOptions{
		ConstrainToParent: c.opts.ConstrainToParent,
		SnapToGrid:        c.opts.SnapToGrid,
	}) {
		return false
	}
	c.state = Dragging
	c.panelID = id
	c.offset = pointer.Sub(p.Position)
	c.lastWrite = time.Time{}
	c.pending = nil
	c.last = Result{Raw: p.Position, Position: p.Position}
	c.opts.Logger.Debug("drag started", "panel", id, "offset", c.offset)
	return true
}

// Move processes a pointer sample. It returns the pipeline result and
// whether it was written to the store; throttled samples are held until
// the next write or End.
func (c *Controller) Move(pointer layout.Point) (Result, bool) {
	if c.state != Dragging {
		return Result{}, false
	}
	res, ok := c.resolve(pointer.Sub(c.offset))
	if !ok {
		return Result{}, false
	}
	c.last = res

	now := c.opts.Now()
	if !c.lastWrite.IsZero() && now.Sub(c.lastWrite) < c.opts.Throttle {
		c.pending = &res
		return res, false
	}
	c.store.UpdateDrag(res.Position)
	c.lastWrite = now
	c.pending = nil
	return res, true
}

func (c *Controller) resolve(candidate layout.Point) (Result, bool) {
	var (
		res   Result
		found bool
	)
	c.store.View(func(panels []layout.Panel, grid layout.GridSettings, vp layout.Viewport) {
		var panel layout.Panel
		for _, p := range panels {
			if p.ID == c.panelID {
				panel, found = p, true
				break
			}
		}
		if !found {
			return
		}
		bounds := layout.BoundsConstraints{ConstrainToParent: c.opts.ConstrainToParent, Parent: c.opts.Parent}
		if bounds.ConstrainToParent && bounds.Parent == nil {
			r := vp.Rect()
			bounds.Parent = &r
		}
		pipe := Pipeline{
			Grid:              grid,
			SnapToGrid:        c.opts.SnapToGrid,
			MagneticThreshold: c.opts.MagneticThreshold,
			Bounds:            bounds,
		}
		res = pipe.Resolve(candidate, panel, panels)
	})
	if !found {
		// The panel was removed under us; the store already dropped the drag.
		c.reset()
	}
	return res, found
}

// End flushes the pending sample and commits the drag. It returns the
// panel as stored afterwards and whether its position changed.
func (c *Controller) End() (layout.Panel, bool, error) {
	if c.state != Dragging {
		return layout.Panel{}, false, nil
	}
	if c.pending != nil {
		c.store.UpdateDrag(c.pending.Position)
	}
	id := c.panelID
	c.reset()
	p, committed, err := c.store.EndDrag()
	if err != nil {
		c.opts.Logger.Warn("drag not committed", "panel", id, "err", err)
	}
	return p, committed, err
}

// Cancel abandons the drag. The store is left as it was before Start.
func (c *Controller) Cancel() {
	if c.state != Dragging {
		return
	}
	c.reset()
	c.store.CancelDrag()
}

func (c *Controller) reset() {
	c.state = Idle
	c.panelID = ""
	c.offset = layout.Point{}
	c.pending = nil
	c.last = Result{}
}
