// Package keyboard maps key chords to store commands.
//
// Chords are parsed into a canonical form ("ctrl+shift+z"), looked up in a
// Registry and executed by a Dispatcher against the current selection.
// Movement and resizing apply to every selected panel at once: either all
// of them change or, when one would be blocked, none do. The dispatcher
// keeps no state between key presses.
package keyboard

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/store"
)

// DefaultWorkspaceName is used by Save when no workspace is active.
const DefaultWorkspaceName = "default"

// Options configures a Dispatcher.
type Options struct {
	Registry *Registry
	// Disabled turns the dispatcher off until SetEnabled(true).
	Disabled bool
	// AllowInTextInput dispatches even when focus is in a text field.
	AllowInTextInput bool
	// ConfirmReset is asked before Reset runs. Nil allows it.
	ConfirmReset func() bool
	// WorkspaceName is used by Save when no workspace is active.
	WorkspaceName string
	Logger        *log.Logger
}

// Result reports what Dispatch did.
type Result struct {
	Action  Action `json:"action,omitempty"`
	Handled bool   `json:"handled"`
}

// Dispatcher executes key events against a store.
type Dispatcher struct {
	store   *store.Store
	reg     *Registry
	opts    Options
	enabled bool
	logger  *log.Logger
}

// NewDispatcher returns a dispatcher. A nil registry uses DefaultRegistry.
func NewDispatcher(st *store.Store, opts Options) *Dispatcher {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.WorkspaceName == "" {
		opts.WorkspaceName = DefaultWorkspaceName
	}
	logger := opts.Logger
	if logger == nil {
		logger = st.Logger()
	}
	return &Dispatcher{store: st, reg: opts.Registry, opts: opts, enabled: !opts.Disabled, logger: logger}
}

// Registry returns the bindings in use.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Enabled reports whether Dispatch handles events.
func (d *Dispatcher) Enabled() bool { return d.enabled }

// SetEnabled turns dispatching on or off.
func (d *Dispatcher) SetEnabled(enabled bool) { d.enabled = enabled }

// Dispatch handles a key event. Events are ignored, unhandled and without
// error, when the dispatcher is disabled, focus is in a text field, or the
// chord is unbound. A malformed key returns INVALID_KEY. Actions that the
// store refuses return the store's error with Handled set.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Result, error) {
	if !d.enabled || (ev.InTextInput && !d.opts.AllowInTextInput) {
		return Result{}, nil
	}
	c, err := ev.Chord()
	if err != nil {
		return Result{}, err
	}
	action, ok := d.reg.Lookup(c)
	if !ok {
		return Result{}, nil
	}
	res := Result{Action: action, Handled: true}
	if err := d.Run(ctx, action); err != nil {
		d.logger.Warn("key command failed", "action", action, "chord", c.String(), "err", err)
		return res, err
	}
	d.logger.Debug("key command", "action", action, "chord", c.String())
	return res, nil
}

// Run executes action directly.
func (d *Dispatcher) Run(ctx context.Context, action Action) error {
	if dx, dy, ok := moveDelta(action); ok {
		return d.store.MoveSelection(dx, dy)
	}
	switch action {
	case GrowWidth:
		return d.store.ResizeSelection(ResizeStep, 0)
	case ShrinkWidth:
		return d.store.ResizeSelection(-ResizeStep, 0)
	case GrowHeight:
		return d.store.ResizeSelection(0, ResizeStep)
	case ShrinkHeight:
		return d.store.ResizeSelection(0, -ResizeStep)
	case SelectNext:
		d.store.CycleSelection(true)
	case SelectPrev:
		d.store.CycleSelection(false)
	case SelectAll:
		d.store.SelectAll()
	case ClearSelection:
		d.store.ClearSelection()
	case DeleteSelected:
		d.store.DeleteSelection()
	case Duplicate:
		d.store.DuplicateSelection()
	case Center:
		return d.store.CenterSelection()
	case Undo:
		d.store.Undo()
	case Redo:
		d.store.Redo()
	case Save:
		return d.save(ctx)
	case Reset:
		if d.opts.ConfirmReset == nil || d.opts.ConfirmReset() {
			d.store.ResetLayout()
		}
	case ToggleGrid:
		d.store.ToggleGridSnap()
	default:
		return errors.New(errors.ErrCodeInvalidKey, "unknown action %q", action)
	}
	return nil
}

func (d *Dispatcher) save(ctx context.Context) error {
	_, err := d.store.SaveActiveWorkspace(ctx)
	if errors.Is(err, errors.ErrCodeWorkspaceNotFound) {
		_, err = d.store.SaveWorkspace(ctx, d.opts.WorkspaceName, "")
	}
	return err
}

func moveDelta(a Action) (dx, dy float64, ok bool) {
	switch a {
	case MoveLeft:
		return -MoveStep, 0, true
	case MoveRight:
		return MoveStep, 0, true
	case MoveUp:
		return 0, -MoveStep, true
	case MoveDown:
		return 0, MoveStep, true
	case MoveLeftFast:
		return -MoveStepFast, 0, true
	case MoveRightFast:
		return MoveStepFast, 0, true
	case MoveUpFast:
		return 0, -MoveStepFast, true
	case MoveDownFast:
		return 0, MoveStepFast, true
	case MoveLeftFar:
		return -MoveStepFar, 0, true
	case MoveRightFar:
		return MoveStepFar, 0, true
	case MoveUpFar:
		return 0, -MoveStepFar, true
	case MoveDownFar:
		return 0, MoveStepFar, true
	}
	return 0, 0, false
}
