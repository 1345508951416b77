package drag

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *fakeClock                   { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }
func pt(x, y float64) layout.Point           { return layout.Point{X: x, Y: y} }
func box(x, y, w, h float64) store.PanelSpec { return store.PanelSpec{Position: &layout.Point{X: x, Y: y}, Size: layout.Size{Width: w, Height: h}} }

func newStore(grid bool) *store.Store {
	g := layout.DefaultGridSettings()
	g.Enabled = grid
	return store.New(store.Options{Grid: &g, Logger: log.New(io.Discard)})
}

func TestPipelineGridSnap(t *testing.T) {
	p := Pipeline{Grid: layout.DefaultGridSettings(), SnapToGrid: true, MagneticThreshold: layout.MagneticThreshold}
	panel := layout.Panel{ID: "a", Size: layout.Size{Width: 100, Height: 100}}

	res := p.Resolve(pt(105, 203), panel, nil)
	assert.Equal(t, pt(100, 200), res.Position)
	assert.True(t, res.GridX)
	assert.True(t, res.GridY)
	assert.Empty(t, res.Lines)
}

func TestPipelineSnapsAxesIndependently(t *testing.T) {
	g := layout.DefaultGridSettings()
	g.SnapThreshold = 5
	p := Pipeline{Grid: g, SnapToGrid: true}
	panel := layout.Panel{ID: "a", Size: layout.Size{Width: 100, Height: 100}}

	// x is one pixel off a grid line, y sits halfway between two.
	res := p.Resolve(pt(101, 210), panel, nil)
	assert.Equal(t, pt(100, 210), res.Position)
	assert.True(t, res.GridX)
	assert.False(t, res.GridY)

	res = p.Resolve(pt(110, 198), panel, nil)
	assert.Equal(t, pt(110, 200), res.Position)
	assert.False(t, res.GridX)
	assert.True(t, res.GridY)
}

func TestPipelineMagneticPrecedence(t *testing.T) {
	panel := layout.Panel{ID: "a", Size: layout.Size{Width: 100, Height: 100}}
	tests := []struct {
		name  string
		grid  bool
		other layout.Panel
		in    layout.Point
		want  layout.Point
		lines int
	}{
		{
			name:  "magnetic without grid",
			other: layout.Panel{ID: "b", Position: pt(300, 0), Size: layout.Size{Width: 100, Height: 100}},
			in:    pt(195, 0),
			want:  pt(200, 0),
			lines: 2,
		},
		{
			name:  "smaller magnetic pull beats grid",
			grid:  true,
			other: layout.Panel{ID: "b", Position: pt(303, 0), Size: layout.Size{Width: 100, Height: 100}},
			in:    pt(204, 0),
			want:  pt(203, 0),
			lines: 1,
		},
		{
			name:  "grid wins ties and smaller grid pulls",
			grid:  true,
			other: layout.Panel{ID: "b", Position: pt(305, 0), Size: layout.Size{Width: 100, Height: 100}},
			in:    pt(198, 0),
			want:  pt(200, 0),
			lines: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := layout.DefaultGridSettings()
			g.Enabled = tt.grid
			p := Pipeline{Grid: g, SnapToGrid: true, MagneticThreshold: layout.MagneticThreshold}
			res := p.Resolve(tt.in, panel, []layout.Panel{panel, tt.other})
			assert.Equal(t, tt.want, res.Position)
			assert.Len(t, res.Lines, tt.lines)
		})
	}
}

func TestPipelineBounds(t *testing.T) {
	parent := layout.Rect{X: 0, Y: 0, Width: 500, Height: 500}
	p := Pipeline{Bounds: layout.BoundsConstraints{ConstrainToParent: true, Parent: &parent}}
	panel := layout.Panel{ID: "a", Size: layout.Size{Width: 100, Height: 100}}

	assert.Equal(t, pt(400, 0), p.Resolve(pt(470, -30), panel, nil).Position)
}

func TestDragCommitsSnappedPosition(t *testing.T) {
	st := newStore(true)
	p := st.AddPanel(box(0, 0, 100, 100))
	c := NewController(st, DefaultOptions())

	require.True(t, c.Start(p.ID, pt(0, 0)))
	assert.Equal(t, Dragging, c.State())
	_, wrote := c.Move(pt(105, 203))
	assert.True(t, wrote)
	assert.Equal(t, pt(100, 200), st.DragState().CurrentPosition)

	got, committed, err := c.End()
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, pt(100, 200), got.Position)
	assert.Equal(t, Idle, c.State())
}

func TestDragKeepsPointerOffset(t *testing.T) {
	st := newStore(false)
	p := st.AddPanel(box(100, 100, 100, 100))
	c := NewController(st, DefaultOptions())

	require.True(t, c.Start(p.ID, pt(150, 120)))
	res, _ := c.Move(pt(250, 220))
	assert.Equal(t, pt(200, 200), res.Position)
}

func TestDragThrottleFlushesPendingOnEnd(t *testing.T) {
	st := newStore(false)
	p := st.AddPanel(box(0, 0, 50, 50))
	clock := newClock()
	opts := DefaultOptions()
	opts.Now = clock.Now
	c := NewController(st, opts)

	require.True(t, c.Start(p.ID, pt(0, 0)))
	_, wrote := c.Move(pt(100, 100))
	assert.True(t, wrote, "first sample is written")

	clock.Advance(5 * time.Millisecond)
	_, wrote = c.Move(pt(400, 300))
	assert.False(t, wrote, "inside the throttle window")
	assert.Equal(t, pt(100, 100), st.DragState().CurrentPosition)

	got, committed, err := c.End()
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, pt(400, 300), got.Position)
}

func TestDragThrottleWindowElapses(t *testing.T) {
	st := newStore(false)
	p := st.AddPanel(box(0, 0, 50, 50))
	clock := newClock()
	opts := DefaultOptions()
	opts.Now = clock.Now
	c := NewController(st, opts)

	c.Start(p.ID, pt(0, 0))
	c.Move(pt(100, 100))
	clock.Advance(DefaultThrottle)
	_, wrote := c.Move(pt(120, 100))
	assert.True(t, wrote)
	assert.Equal(t, pt(120, 100), st.DragState().CurrentPosition)
}

func TestDragCancel(t *testing.T) {
	st := newStore(false)
	p := st.AddPanel(box(10, 10, 50, 50))
	before := st.State()
	c := NewController(st, DefaultOptions())

	c.Start(p.ID, pt(10, 10))
	c.Move(pt(300, 300))
	c.Cancel()
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, before, st.State())

	_, committed, err := c.End()
	assert.NoError(t, err)
	assert.False(t, committed)
}

func TestDragUnknownPanel(t *testing.T) {
	c := NewController(newStore(false), DefaultOptions())
	assert.False(t, c.Start("ghost", pt(0, 0)))
	_, wrote := c.Move(pt(1, 1))
	assert.False(t, wrote)
}

func TestDragPanelRemovedMidDrag(t *testing.T) {
	st := newStore(false)
	p := st.AddPanel(box(0, 0, 50, 50))
	c := NewController(st, DefaultOptions())

	c.Start(p.ID, pt(0, 0))
	st.RemovePanel(p.ID)
	_, wrote := c.Move(pt(10, 10))
	assert.False(t, wrote)
	assert.Equal(t, Idle, c.State())
}
