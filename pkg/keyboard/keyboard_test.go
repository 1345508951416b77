package keyboard

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/store"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ctrl+z", "ctrl+z"},
		{"Ctrl+Shift+Z", "ctrl+shift+z"},
		{"shift+ctrl+z", "ctrl+shift+z"},
		{"Z", "shift+z"},
		{"Ctrl+Z", "ctrl+z"},
		{"Meta+Z", "meta+z"},
		{"Alt+Shift+K", "alt+shift+k"},
		{"Shift+Tab", "shift+tab"},
		{"esc", "escape"},
		{"cmd+s", "meta+s"},
		{"Option+Left", "alt+left"},
		{" return ", "enter"},
		{"ctrl++", "ctrl++"},
		{"+", "+"},
		{"F5", "f5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeChord(tt.in)
			if err != nil {
				t.Fatalf("NormalizeChord(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeChord(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseChordErrors(t *testing.T) {
	tests := []struct {
		in   string
		code errors.Code
	}{
		{"", errors.ErrCodeInvalidChord},
		{"ctrl+", errors.ErrCodeInvalidChord},
		{"hyper+x", errors.ErrCodeInvalidChord},
		{"ctrl+banana", errors.ErrCodeInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseChord(tt.in)
			if !errors.Is(err, tt.code) {
				t.Errorf("ParseChord(%q) error = %v, want code %s", tt.in, err, tt.code)
			}
		})
	}
}

func TestEventChord(t *testing.T) {
	c, err := Event{Key: "Z", Ctrl: true}.Chord()
	require.NoError(t, err)
	assert.Equal(t, "ctrl+shift+z", c.String())

	c, err = Event{Key: " "}.Chord()
	require.NoError(t, err)
	assert.Equal(t, "space", c.String())
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	for a := range ActionDescriptions {
		assert.NotEmpty(t, r.Keys(a), "action %s has no default binding", a)
	}

	a, ok := r.Lookup(MustParseChord("Meta+Z"))
	require.True(t, ok)
	assert.Equal(t, Undo, a)
	assert.Equal(t, "ctrl+z, meta+z", r.Display(Undo))

	require.NoError(t, r.Bind(Redo, "ctrl+z"))
	a, _ = r.Lookup(MustParseChord("ctrl+z"))
	assert.Equal(t, Redo, a, "rebinding moves the chord")
	assert.Equal(t, "meta+z", r.Display(Undo))

	require.NoError(t, r.Apply(map[string][]string{"toggle_grid": {"g"}, "save": nil}))
	assert.Equal(t, "g", r.Display(ToggleGrid))
	assert.Empty(t, r.Keys(Save))
	assert.NotContains(t, r.Actions(), Save)

	assert.True(t, errors.Is(r.Bind("fly", "f"), errors.ErrCodeInvalidConfig))
	assert.True(t, errors.Is(r.Apply(map[string][]string{"undo": {"ctrl+banana"}}), errors.ErrCodeInvalidKey))
}

func newDispatcher(t *testing.T, opts Options) (*Dispatcher, *store.Store) {
	t.Helper()
	st := store.New(store.Options{Logger: log.New(io.Discard)})
	return NewDispatcher(st, opts), st
}

func press(t *testing.T, d *Dispatcher, key string, mods ...string) Result {
	t.Helper()
	ev := Event{Key: key}
	for _, m := range mods {
		switch m {
		case "ctrl":
			ev.Ctrl = true
		case "shift":
			ev.Shift = true
		case "alt":
			ev.Alt = true
		case "meta":
			ev.Meta = true
		}
	}
	res, err := d.Dispatch(context.Background(), ev)
	require.NoError(t, err)
	return res
}

func TestDispatchMoves(t *testing.T) {
	d, st := newDispatcher(t, Options{})
	p := st.AddPanel(store.PanelSpec{Position: &layout.Point{X: 100, Y: 100}})
	st.SelectPanel(p.ID, false)

	press(t, d, "right")
	press(t, d, "down", "shift")
	press(t, d, "left", "alt")
	got, _ := st.Panel(p.ID)
	assert.Equal(t, layout.Point{X: 51, Y: 110}, got.Position)

	press(t, d, "right", "ctrl")
	press(t, d, "up", "ctrl")
	got, _ = st.Panel(p.ID)
	assert.Equal(t, layout.Size{Width: 420, Height: 280}, got.Size)
}

func TestDispatchMoveIsAtomic(t *testing.T) {
	d, st := newDispatcher(t, Options{})
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := st.AddPanel(store.PanelSpec{Position: &layout.Point{X: 0, Y: 0}, Size: layout.Size{Width: 100, Height: 100}})
	b := st.AddPanel(store.PanelSpec{Position: &layout.Point{X: 0, Y: 200}, Size: layout.Size{Width: 100, Height: 100}})
	st.AddPanel(store.PanelSpec{Position: &layout.Point{X: 120, Y: 200}, Size: layout.Size{Width: 100, Height: 100}, Constraints: guard})
	st.SelectMultiple([]string{a.ID, b.ID})

	res, err := d.Dispatch(context.Background(), Event{Key: "right", Alt: true})
	assert.True(t, res.Handled)
	assert.True(t, errors.Is(err, errors.ErrCodeCollision))
	ga, _ := st.Panel(a.ID)
	gb, _ := st.Panel(b.ID)
	assert.Equal(t, 0.0, ga.Position.X)
	assert.Equal(t, 0.0, gb.Position.X)
}

func TestDispatchGating(t *testing.T) {
	d, st := newDispatcher(t, Options{})
	st.AddPanel(store.PanelSpec{})

	res, err := d.Dispatch(context.Background(), Event{Key: "a", Ctrl: true, InTextInput: true})
	require.NoError(t, err)
	assert.False(t, res.Handled)
	assert.Empty(t, st.SelectedIDs())

	d.SetEnabled(false)
	assert.False(t, press(t, d, "a", "ctrl").Handled)
	d.SetEnabled(true)
	assert.True(t, press(t, d, "a", "ctrl").Handled)
	assert.Len(t, st.SelectedIDs(), 1)

	assert.False(t, press(t, d, "q").Handled, "unbound chord")

	_, err = d.Dispatch(context.Background(), Event{Key: "banana"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidKey))

	text, st2 := newDispatcher(t, Options{AllowInTextInput: true})
	st2.AddPanel(store.PanelSpec{})
	res, err = text.Dispatch(context.Background(), Event{Key: "a", Ctrl: true, InTextInput: true})
	require.NoError(t, err)
	assert.True(t, res.Handled)
}

func TestDispatchTabCycles(t *testing.T) {
	d, st := newDispatcher(t, Options{})
	a := st.AddPanel(store.PanelSpec{})
	b := st.AddPanel(store.PanelSpec{})

	press(t, d, "tab")
	assert.Equal(t, []string{a.ID}, st.SelectedIDs())
	press(t, d, "tab")
	press(t, d, "tab")
	assert.Equal(t, []string{a.ID}, st.SelectedIDs())
	press(t, d, "tab", "shift")
	assert.Equal(t, []string{b.ID}, st.SelectedIDs())
}

func TestDispatchSingleShots(t *testing.T) {
	d, st := newDispatcher(t, Options{ConfirmReset: func() bool { return false }})
	p := st.AddPanel(store.PanelSpec{})
	st.SelectPanel(p.ID, false)

	press(t, d, "d", "ctrl")
	assert.Len(t, st.Panels(), 2)
	press(t, d, "z", "ctrl")
	assert.Len(t, st.Panels(), 1)
	press(t, d, "z", "ctrl", "shift")
	assert.Len(t, st.Panels(), 2)

	grid := st.Grid().Enabled
	press(t, d, "g", "ctrl")
	assert.Equal(t, !grid, st.Grid().Enabled)

	press(t, d, "backspace", "ctrl", "shift")
	assert.Len(t, st.Panels(), 2, "reset not confirmed")

	press(t, d, "s", "ctrl")
	require.Len(t, st.Workspaces().List(), 1)
	assert.Equal(t, DefaultWorkspaceName, st.Workspaces().List()[0].Name)
	press(t, d, "s", "ctrl")
	assert.Len(t, st.Workspaces().List(), 1, "second save updates the active workspace")

	press(t, d, "delete")
	assert.Len(t, st.Panels(), 1)

	press(t, d, "escape")
	assert.Empty(t, st.SelectedIDs())
}

func TestDispatchCenter(t *testing.T) {
	d, st := newDispatcher(t, Options{})
	st.SetViewport(layout.Viewport{Width: 1000, Height: 1000, Zoom: 1})
	p := st.AddPanel(store.PanelSpec{Size: layout.Size{Width: 200, Height: 200}})
	st.SelectPanel(p.ID, false)

	press(t, d, "c", "ctrl", "shift")
	got, _ := st.Panel(p.ID)
	assert.Equal(t, layout.Point{X: 400, Y: 400}, got.Position)
}
