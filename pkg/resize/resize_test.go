package resize

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	g := layout.DefaultGridSettings()
	g.Enabled = false
	return store.New(store.Options{Grid: &g, Logger: log.New(io.Discard)})
}

func spec(x, y, w, h float64) store.PanelSpec {
	return store.PanelSpec{Position: &layout.Point{X: x, Y: y}, Size: layout.Size{Width: w, Height: h}}
}

func minSize(w, h float64) layout.Constraints {
	return layout.Constraints{MinSize: &layout.Size{Width: w, Height: h}}
}

func TestValidateResizeOperation(t *testing.T) {
	panel := layout.Panel{ID: "a", Size: layout.Size{Width: 300, Height: 300}, Constraints: minSize(200, 200)}

	t.Run("clamped below min", func(t *testing.T) {
		v := ValidateResizeOperation(Operation{PanelID: "a", TargetSize: layout.Size{Width: 150, Height: 150}}, panel, ValidationContext{})
		assert.True(t, v.IsValid)
		assert.Equal(t, layout.Size{Width: 200, Height: 200}, v.ValidatedSize)
		require.Len(t, v.Warnings, 2)
		assert.Equal(t, IssueConstraint, v.Warnings[0].Kind)
		assert.InDelta(t, PenaltyConstraint*PenaltyConstraint, v.Confidence, 1e-9)
	})

	t.Run("non-positive is an error", func(t *testing.T) {
		v := ValidateResizeOperation(Operation{PanelID: "a", TargetSize: layout.Size{Width: 0, Height: 150}}, panel, ValidationContext{})
		assert.False(t, v.IsValid)
		assert.Equal(t, panel.Size, v.ValidatedSize)
		assert.Zero(t, v.Confidence)
		assert.True(t, errors.Is(v.Err(), errors.ErrCodeInvalidGeometry))
	})

	t.Run("advisory collision warns", func(t *testing.T) {
		other := layout.Panel{ID: "b", Position: layout.Point{X: 350}, Size: layout.Size{Width: 100, Height: 100}}
		v := ValidateResizeOperation(Operation{PanelID: "a", TargetSize: layout.Size{Width: 400, Height: 300}}, panel, ValidationContext{Others: []layout.Panel{panel, other}})
		assert.True(t, v.IsValid)
		require.Len(t, v.Warnings, 1)
		assert.Equal(t, IssueCollision, v.Warnings[0].Kind)
		assert.Equal(t, []string{"b"}, v.Warnings[0].PanelIDs)
		assert.InDelta(t, PenaltyCollision, v.Confidence, 1e-9)
	})

	t.Run("blocking collision is an error", func(t *testing.T) {
		other := layout.Panel{
			ID: "b", Position: layout.Point{X: 350}, Size: layout.Size{Width: 100, Height: 100},
			Constraints: layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}},
		}
		v := ValidateResizeOperation(Operation{PanelID: "a", TargetSize: layout.Size{Width: 400, Height: 300}}, panel, ValidationContext{Others: []layout.Panel{other}})
		assert.False(t, v.IsValid)
		assert.True(t, errors.Is(v.Err(), errors.ErrCodeCollision))
	})

	t.Run("aspect drift and viewport", func(t *testing.T) {
		p := panel
		p.Constraints.Aspect = &layout.AspectRatio{Ratio: 1, Tolerance: 0.05}
		vp := layout.Rect{Width: 350, Height: 1000}
		v := ValidateResizeOperation(Operation{PanelID: "a", TargetSize: layout.Size{Width: 400, Height: 300}}, p, ValidationContext{Viewport: &vp})
		assert.True(t, v.IsValid)
		require.Len(t, v.Warnings, 2)
		assert.Equal(t, IssueAspect, v.Warnings[0].Kind)
		assert.Equal(t, IssueViewport, v.Warnings[1].Kind)
		assert.InDelta(t, PenaltyAspect*PenaltyViewport, v.Confidence, 1e-9)
		assert.NotEmpty(t, v.Suggestions)
	})

	t.Run("operation constraints override", func(t *testing.T) {
		c := minSize(10, 10)
		v := ValidateResizeOperation(Operation{PanelID: "a", TargetSize: layout.Size{Width: 150, Height: 150}, Constraints: &c}, panel, ValidationContext{})
		assert.Empty(t, v.Warnings)
		assert.Equal(t, layout.Size{Width: 150, Height: 150}, v.ValidatedSize)
	})
}

func TestControllerClampsBelowMinimum(t *testing.T) {
	st := newStore(t)
	sp := spec(0, 0, 300, 300)
	sp.Constraints = minSize(200, 200)
	p := st.AddPanel(sp)
	c := NewController(st, Options{})

	require.True(t, c.Start(p.ID, layout.SouthEast, layout.Point{X: 300, Y: 300}))
	pv, wrote := c.Move(layout.Point{X: 150, Y: 150})
	assert.True(t, wrote)
	assert.Equal(t, layout.Size{Width: 150, Height: 150}, pv.Requested)
	assert.Equal(t, layout.Size{Width: 200, Height: 200}, pv.Size)

	res, err := c.End()
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, layout.Size{Width: 200, Height: 200}, res.Panel.Size)
	assert.Len(t, res.Validation.Warnings, 2, "one warning per axis")
	assert.Equal(t, Idle, c.State())
}

func TestControllerNorthWestKeepsOppositeCorner(t *testing.T) {
	st := newStore(t)
	p := st.AddPanel(spec(100, 100, 300, 200))
	c := NewController(st, Options{})

	require.True(t, c.Start(p.ID, layout.NorthWest, layout.Point{X: 100, Y: 100}))
	c.Move(layout.Point{X: 60, Y: 130})
	res, err := c.End()
	require.NoError(t, err)

	got := res.Panel
	assert.Equal(t, layout.Size{Width: 340, Height: 170}, got.Size)
	assert.InDelta(t, 400, got.Position.X+got.Size.Width, 1)
	assert.InDelta(t, 300, got.Position.Y+got.Size.Height, 1)
}

func TestControllerAspectLock(t *testing.T) {
	st := newStore(t)
	p := st.AddPanel(spec(0, 0, 400, 200))
	c := NewController(st, Options{MaintainAspectRatio: true})

	c.Start(p.ID, layout.East, layout.Point{X: 400, Y: 100})
	pv, _ := c.Move(layout.Point{X: 600, Y: 100})
	assert.Equal(t, layout.Size{Width: 600, Height: 300}, pv.Size)
}

func TestControllerGridSnap(t *testing.T) {
	st := newStore(t)
	st.SetGridSnap(true)
	p := st.AddPanel(spec(0, 0, 200, 200))
	c := NewController(st, Options{SnapToGrid: true})

	c.Start(p.ID, layout.SouthEast, layout.Point{X: 200, Y: 200})
	pv, _ := c.Move(layout.Point{X: 247, Y: 213})
	assert.Equal(t, layout.Size{Width: 240, Height: 220}, pv.Size)
	res, err := c.End()
	require.NoError(t, err)
	assert.Equal(t, layout.Size{Width: 240, Height: 220}, res.Panel.Size)
}

func TestControllerRejectsInvertedResize(t *testing.T) {
	st := newStore(t)
	p := st.AddPanel(spec(0, 0, 100, 100))
	c := NewController(st, Options{})

	c.Start(p.ID, layout.East, layout.Point{X: 100, Y: 50})
	c.Move(layout.Point{X: -20, Y: 50})
	res, err := c.End()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
	assert.False(t, res.Committed)
	assert.False(t, st.ResizeState().IsResizing)
	got, _ := st.Panel(p.ID)
	assert.Equal(t, layout.Size{Width: 100, Height: 100}, got.Size)
}

func TestControllerCancel(t *testing.T) {
	st := newStore(t)
	p := st.AddPanel(spec(0, 0, 100, 100))
	before := st.State()
	c := NewController(st, Options{})

	c.Start(p.ID, layout.South, layout.Point{X: 50, Y: 100})
	c.Move(layout.Point{X: 50, Y: 400})
	c.Cancel()
	assert.Equal(t, before, st.State())
	assert.False(t, c.Start("ghost", layout.South, layout.Point{}))
}
