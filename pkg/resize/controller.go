package resize

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/store"
)

// DefaultThrottle limits resize-state writes to about 60 per second.
const DefaultThrottle = 16 * time.Millisecond

// State of a Controller.
type State int

const (
	Idle State = iota
	Resizing
)

func (s State) String() string {
	if s == Resizing {
		return "resizing"
	}
	return "idle"
}

// Options configures a Controller.
type Options struct {
	Throttle time.Duration
	// SnapToGrid rounds the previewed size to the store grid.
	SnapToGrid bool
	// MaintainAspectRatio locks the ratio the panel had at Start, or the
	// panel's aspect constraint when it has one.
	MaintainAspectRatio bool
	// Viewport adds viewport overflow warnings to the End validation.
	Viewport bool
	Now      func() time.Time
	Logger   *log.Logger
}

// Preview is the geometry computed for one pointer sample.
type Preview struct {
	// Requested is the size before clamping and snapping.
	Requested layout.Size  `json:"requested"`
	Size      layout.Size  `json:"size"`
	Position  layout.Point `json:"position"`
}

// EndResult is returned by End.
type EndResult struct {
	Panel      layout.Panel `json:"panel"`
	Committed  bool         `json:"committed"`
	Validation Validation   `json:"validation"`
}

// Controller runs one single-panel resize at a time against a store.
type Controller struct {
	store *store.Store
	opts  Options

	state        State
	panelID      string
	dir          layout.Direction
	startPointer layout.Point
	start        layout.Panel
	ratio        float64

	last      Preview
	pending   *Preview
	lastWrite time.Time
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

// Direction returns the active handle, or "" when idle.
func (c *Controller) Direction() layout.Direction { return c.dir }

// Last returns the most recent preview.
func (c *Controller) Last() Preview { return c.last }

// Start begins resizing id from handle dir with the pointer at pointer.
func (c *Controller) Start(id string, dir layout.Direction, pointer layout.Point) bool {
	if c.state != Idle || dir == "" {
		return false
	}
	p, ok := c.store.Panel(id)
	if !ok {
		return false
	}
	if !c.store.StartResize(id, dir, c.opts.MaintainAspectRatio) {
		return false
	}
	c.state = Resizing
	c.panelID = id
	c.dir = dir
	c.startPointer = pointer
	c.start = p
	c.ratio = layout.CalculateAspectRatio(p.Size)
	if a := p.Constraints.Aspect; a != nil && a.Ratio > 0 {
		c.ratio = a.Ratio
	}
	c.last = Preview{Requested: p.Size, Size: p.Size, Position: p.Position}
	c.pending = nil
	c.lastWrite = time.Time{}
	c.opts.Logger.Debug("resize started", "panel", id, "direction", dir)
	return true
}

// Move processes a pointer sample and reports whether it was written to
// the store; throttled samples are held until the next write or End.
func (c *Controller) Move(pointer layout.Point) (Preview, bool) {
	if c.state != Resizing {
		return Preview{}, false
	}
	pv := c.compute(pointer.Sub(c.startPointer))
	c.last = pv

	now := c.opts.Now()
	if !c.lastWrite.IsZero() && now.Sub(c.lastWrite) < c.opts.Throttle {
		c.pending = &pv
		return pv, false
	}
	c.store.UpdateResize(pv.Position, pv.Size)
	c.lastWrite = now
	c.pending = nil
	return pv, true
}

func (c *Controller) compute(delta layout.Point) Preview {
	r := layout.CalculateResizeDelta(c.dir, delta, c.start.Position, c.start.Size)
	requested := r.Size()
	if c.opts.MaintainAspectRatio && c.ratio > 0 {
		requested = layout.ApplyAspectRatio(requested, c.ratio, c.dir)
	}

	size := requested
	if size.IsPositive() {
		size = layout.GetConstrainedSize(size, c.start.Constraints)
		if c.opts.SnapToGrid {
			size = layout.GetConstrainedSize(layout.SnapSizeToGrid(size, c.store.Grid()), c.start.Constraints)
		}
	}
	return Preview{
		Requested: requested,
		Size:      size,
		Position:  layout.AnchorPosition(c.dir, c.start.Position, c.start.Size, size),
	}
}

// End validates the last requested size, commits the corrected geometry
// and returns the validation alongside the stored panel. An invalid
// request cancels the resize and returns the first validation error.
func (c *Controller) End() (EndResult, error) {
	if c.state != Resizing {
		return EndResult{}, nil
	}
	pv := c.last
	if c.pending != nil {
		pv = *c.pending
	}
	start, dir := c.start, c.dir
	c.reset()

	var viewport *layout.Rect
	if c.opts.Viewport {
		r := c.store.Viewport().Rect()
		viewport = &r
	}
	op := Operation{PanelID: start.ID, OriginalSize: start.Size, TargetSize: pv.Requested}
	pos := layout.AnchorPosition(dir, start.Position, start.Size, layout.GetConstrainedSize(pv.Requested, start.Constraints))
	v := ValidateResizeOperation(op, start, ValidationContext{
		Others:   c.store.Panels(),
		Viewport: viewport,
		Position: &pos,
	})
	res := EndResult{Panel: start, Validation: v}
	if !v.IsValid {
		c.store.CancelResize()
		c.opts.Logger.Warn("resize rejected", "panel", start.ID, "err", v.Err())
		return res, v.Err()
	}

	final := v.ValidatedSize
	if c.opts.SnapToGrid {
		final = layout.GetConstrainedSize(layout.SnapSizeToGrid(final, c.store.Grid()), start.Constraints)
		pos = layout.AnchorPosition(dir, start.Position, start.Size, final)
	}
	c.store.UpdateResize(pos, final)
	p, committed, err := c.store.EndResize()
	res.Panel = p
	res.Committed = committed
	if err != nil {
		return res, err
	}
	if len(v.Warnings) > 0 {
		c.opts.Logger.Info("resize corrected", "panel", start.ID, "warnings", len(v.Warnings), "confidence", v.Confidence)
	}
	return res, nil
}

// Cancel abandons the resize. The store is left as it was before Start.
func (c *Controller) Cancel() {
	if c.state != Resizing {
		return
	}
	c.reset()
	c.store.CancelResize()
}

func (c *Controller) reset() {
	c.state = Idle
	c.panelID = ""
	c.dir = ""
	c.pending = nil
	c.last = Preview{}
}
