package keyboard

import (
	"slices"
	"strings"

	"github.com/matzehuels/panels/pkg/errors"
)

// Action names a keyboard command.
type Action string

const (
	MoveLeft      Action = "move_left"
	MoveRight     Action = "move_right"
	MoveUp        Action = "move_up"
	MoveDown      Action = "move_down"
	MoveLeftFast  Action = "move_left_fast"
	MoveRightFast Action = "move_right_fast"
	MoveUpFast    Action = "move_up_fast"
	MoveDownFast  Action = "move_down_fast"
	MoveLeftFar   Action = "move_left_far"
	MoveRightFar  Action = "move_right_far"
	MoveUpFar     Action = "move_up_far"
	MoveDownFar   Action = "move_down_far"

	GrowWidth    Action = "grow_width"
	ShrinkWidth  Action = "shrink_width"
	GrowHeight   Action = "grow_height"
	ShrinkHeight Action = "shrink_height"

	SelectNext     Action = "select_next"
	SelectPrev     Action = "select_prev"
	SelectAll      Action = "select_all"
	ClearSelection Action = "clear_selection"
	DeleteSelected Action = "delete_selection"
	Duplicate      Action = "duplicate"
	Center         Action = "center"

	Undo       Action = "undo"
	Redo       Action = "redo"
	Save       Action = "save"
	Reset      Action = "reset"
	ToggleGrid Action = "toggle_grid"
)

// Step sizes in pixels.
const (
	MoveStep     = 1.0
	MoveStepFast = 10.0
	MoveStepFar  = 50.0
	ResizeStep   = 20.0
)

// ActionDescriptions are shown in help output.
var ActionDescriptions = map[Action]string{
	MoveLeft:       "Move selection left 1px",
	MoveRight:      "Move selection right 1px",
	MoveUp:         "Move selection up 1px",
	MoveDown:       "Move selection down 1px",
	MoveLeftFast:   "Move selection left 10px",
	MoveRightFast:  "Move selection right 10px",
	MoveUpFast:     "Move selection up 10px",
	MoveDownFast:   "Move selection down 10px",
	MoveLeftFar:    "Move selection left 50px",
	MoveRightFar:   "Move selection right 50px",
	MoveUpFar:      "Move selection up 50px",
	MoveDownFar:    "Move selection down 50px",
	GrowWidth:      "Widen selection 20px",
	ShrinkWidth:    "Narrow selection 20px",
	GrowHeight:     "Heighten selection 20px",
	ShrinkHeight:   "Shorten selection 20px",
	SelectNext:     "Select next panel",
	SelectPrev:     "Select previous panel",
	SelectAll:      "Select all panels",
	ClearSelection: "Clear selection",
	DeleteSelected: "Delete selected panels",
	Duplicate:      "Duplicate selected panels",
	Center:         "Center selected panels",
	Undo:           "Undo",
	Redo:           "Redo",
	Save:           "Save workspace",
	Reset:          "Reset layout",
	ToggleGrid:     "Toggle grid snapping",
}

// DefaultBindings maps every action to its default chords.
var DefaultBindings = map[Action][]string{
	MoveLeft:       {"left"},
	MoveRight:      {"right"},
	MoveUp:         {"up"},
	MoveDown:       {"down"},
	MoveLeftFast:   {"shift+left"},
	MoveRightFast:  {"shift+right"},
	MoveUpFast:     {"shift+up"},
	MoveDownFast:   {"shift+down"},
	MoveLeftFar:    {"alt+left"},
	MoveRightFar:   {"alt+right"},
	MoveUpFar:      {"alt+up"},
	MoveDownFar:    {"alt+down"},
	GrowWidth:      {"ctrl+right"},
	ShrinkWidth:    {"ctrl+left"},
	GrowHeight:     {"ctrl+down"},
	ShrinkHeight:   {"ctrl+up"},
	SelectNext:     {"tab"},
	SelectPrev:     {"shift+tab"},
	SelectAll:      {"ctrl+a", "meta+a"},
	ClearSelection: {"escape"},
	DeleteSelected: {"delete", "backspace"},
	Duplicate:      {"ctrl+d", "meta+d"},
	Center:         {"ctrl+shift+c"},
	Undo:           {"ctrl+z", "meta+z"},
	Redo:           {"ctrl+shift+z", "meta+shift+z", "ctrl+y"},
	Save:           {"ctrl+s", "meta+s"},
	Reset:          {"ctrl+shift+backspace"},
	ToggleGrid:     {"ctrl+g", "meta+g"},
}

// Registry maps chords to actions. The zero value is not usable; use
// NewRegistry or DefaultRegistry.
type Registry struct {
	byChord  map[string]Action
	byAction map[Action][]Chord
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byChord: make(map[string]Action), byAction: make(map[Action][]Chord)}
}

// DefaultRegistry returns a registry with DefaultBindings.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range sortedActions(DefaultBindings) {
		if err := r.Bind(a, DefaultBindings[a]...); err != nil {
			panic(err)
		}
	}
	return r
}

// Bind adds chords to action. A chord bound to another action moves to
// this one. Unknown actions fail with INVALID_CONFIG.
func (r *Registry) Bind(action Action, chords ...string) error {
	if _, ok := ActionDescriptions[action]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keyboard action %q", action)
	}
	parsed := make([]Chord, 0, len(chords))
	for _, s := range chords {
		c, err := ParseChord(s)
		if err != nil {
			return err
		}
		parsed = append(parsed, c)
	}
	for _, c := range parsed {
		key := c.String()
		if prev, ok := r.byChord[key]; ok && prev != action {
			r.byAction[prev] = slices.DeleteFunc(r.byAction[prev], func(o Chord) bool { return o == c })
		}
		r.byChord[key] = action
		if !slices.Contains(r.byAction[action], c) {
			r.byAction[action] = append(r.byAction[action], c)
		}
	}
	return nil
}

// Unbind removes every chord of action.
func (r *Registry) Unbind(action Action) {
	for _, c := range r.byAction[action] {
		delete(r.byChord, c.String())
	}
	delete(r.byAction, action)
}

// Apply replaces the chords of each action in overrides. Keys are action
// names. An empty chord list unbinds the action.
func (r *Registry) Apply(overrides map[string][]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		a := Action(k)
		if _, ok := ActionDescriptions[a]; !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown keyboard action %q", k)
		}
		r.Unbind(a)
		if err := r.Bind(a, overrides[k]...); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "binding %s", k)
		}
	}
	return nil
}

// Lookup returns the action bound to c.
func (r *Registry) Lookup(c Chord) (Action, bool) {
	a, ok := r.byChord[c.String()]
	return a, ok
}

// Keys returns the chords bound to action in binding order.
func (r *Registry) Keys(action Action) []Chord {
	return slices.Clone(r.byAction[action])
}

// Display returns the chords of action joined for help output, or "".
func (r *Registry) Display(action Action) string {
	keys := r.byAction[action]
	out := make([]string, len(keys))
	for i, c := range keys {
		out[i] = c.String()
	}
	return strings.Join(out, ", ")
}

// Actions returns the bound actions sorted by name.
func (r *Registry) Actions() []Action {
	out := make([]Action, 0, len(r.byAction))
	for a, keys := range r.byAction {
		if len(keys) > 0 {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return out
}

func sortedActions(m map[Action][]string) []Action {
	out := make([]Action, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}
