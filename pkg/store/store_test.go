package store

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/layout"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	n := 0
	return New(Options{
		Logger: log.New(io.Discard),
		NewID: func() string {
			n++
			return fmt.Sprintf("p%d", n)
		},
	})
}

func at(x, y float64) *layout.Point { return &layout.Point{X: x, Y: y} }

func sz(w, h float64) layout.Size { return layout.Size{Width: w, Height: h} }

func mustPanel(t *testing.T, s *Store, id string) layout.Panel {
	t.Helper()
	p, ok := s.Panel(id)
	require.True(t, ok, "panel %s", id)
	return p
}

func TestAddPanelCascades(t *testing.T) {
	s := newTestStore(t)
	seen := map[layout.Point]bool{}
	for i := 0; i < 3; i++ {
		p := s.AddPanel(PanelSpec{Position: at(100, 100), Size: sz(200, 100)})
		assert.False(t, seen[p.Position], "panel %d reused position %v", i, p.Position)
		seen[p.Position] = true
	}
	panels := s.Panels()
	assert.Equal(t, layout.Point{X: 100, Y: 100}, panels[0].Position)
	assert.Equal(t, layout.Point{X: 130, Y: 130}, panels[1].Position)
	assert.Equal(t, layout.Point{X: 160, Y: 160}, panels[2].Position)
}

func TestAddPanelFallsBackAfterCap(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < MaxCascadeAttempts; i++ {
		s.AddPanel(PanelSpec{Position: at(10, 10)})
	}
	p := s.AddPanel(PanelSpec{Position: at(10, 10)})
	assert.Equal(t, FallbackOrigin, p.Position)
}

func TestAddPanelDefaults(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{})
	b := s.AddPanel(PanelSpec{Kind: "chat", Size: sz(100, 100), Constraints: layout.Constraints{MinSize: &layout.Size{Width: 150, Height: 50}}})

	assert.Equal(t, DefaultOrigin, a.Position)
	assert.Equal(t, DefaultPanelSize, a.Size)
	assert.Equal(t, DefaultKind, a.Kind)
	assert.True(t, a.Visible)
	assert.Equal(t, 1, a.ZIndex)

	assert.Equal(t, 2, b.ZIndex)
	assert.Equal(t, sz(150, 100), b.Size, "size is clamped to min on add")
	assert.NotEqual(t, a.Position, b.Position)
}

func TestUnknownIDsAreNoops(t *testing.T) {
	s := newTestStore(t)
	s.AddPanel(PanelSpec{})
	before := s.State()

	s.RemovePanel("ghost")
	require.NoError(t, s.UpdatePanel("ghost", layout.MovePatch(layout.Point{X: 1})))
	s.SelectPanel("ghost", false)
	s.DeselectPanel("ghost")
	s.BringToFront("ghost")
	s.CenterPanel("ghost")
	_, ok := s.DuplicatePanel("ghost")
	assert.False(t, ok)
	assert.False(t, s.StartDrag("ghost", layout.Point{}, DragOptions{}))
	assert.False(t, s.StartResize("ghost", layout.SouthEast, false))

	assert.Equal(t, before, s.State())
}

func TestUpdatePanel(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Size: sz(300, 300), Constraints: layout.Constraints{
		MinSize: &layout.Size{Width: 200, Height: 200},
		MaxSize: &layout.Size{Width: 500, Height: 500},
	}})

	t.Run("merges shallowly", func(t *testing.T) {
		kind := "notes"
		require.NoError(t, s.UpdatePanel(p.ID, layout.PanelPatch{Kind: &kind}))
		got := mustPanel(t, s, p.ID)
		assert.Equal(t, "notes", got.Kind)
		assert.Equal(t, p.Size, got.Size)
	})

	t.Run("clamps size", func(t *testing.T) {
		size := sz(900, 100)
		require.NoError(t, s.UpdatePanel(p.ID, layout.PanelPatch{Size: &size}))
		assert.Equal(t, sz(500, 200), mustPanel(t, s, p.ID).Size)
	})

	t.Run("clamps position", func(t *testing.T) {
		require.NoError(t, s.UpdatePanel(p.ID, layout.MovePatch(layout.Point{X: -40, Y: 10})))
		assert.Equal(t, layout.Point{X: 0, Y: 10}, mustPanel(t, s, p.ID).Position)
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		before := mustPanel(t, s, p.ID)
		size := sz(0, 100)
		err := s.UpdatePanel(p.ID, layout.PanelPatch{Size: &size})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
		assert.Equal(t, before, mustPanel(t, s, p.ID))
	})
}

func TestPreventOverlapBlocksUpdate(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100), Constraints: guard})
	b := s.AddPanel(PanelSpec{Position: at(200, 0), Size: sz(100, 100)})

	err := s.UpdatePanel(b.ID, layout.MovePatch(layout.Point{X: 90, Y: 0}))
	assert.True(t, errors.Is(err, errors.ErrCodeCollision))
	assert.Equal(t, layout.Point{X: 200, Y: 0}, mustPanel(t, s, b.ID).Position)

	// Touching is fine.
	require.NoError(t, s.UpdatePanel(b.ID, layout.MovePatch(layout.Point{X: 100, Y: 0})))
	assert.Empty(t, layout.DetectCollisions(mustPanel(t, s, a.ID), s.Panels()))
}

func TestAdvisoryCollisionCommits(t *testing.T) {
	s := newTestStore(t)
	s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100)})
	b := s.AddPanel(PanelSpec{Position: at(200, 0), Size: sz(100, 100)})
	require.NoError(t, s.UpdatePanel(b.ID, layout.MovePatch(layout.Point{X: 50, Y: 0})))
	assert.Equal(t, 50.0, mustPanel(t, s, b.ID).Position.X)
}

func TestSelection(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{})
	b := s.AddPanel(PanelSpec{})
	c := s.AddPanel(PanelSpec{})

	s.SelectPanel(a.ID, false)
	assert.Equal(t, []string{a.ID}, s.SelectedIDs())
	assert.Greater(t, mustPanel(t, s, a.ID).ZIndex, c.ZIndex, "selecting raises the panel")

	s.SelectPanel(b.ID, true)
	s.SelectPanel(c.ID, true)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, s.SelectedIDs())

	s.SelectPanel(b.ID, true)
	assert.Equal(t, []string{a.ID, c.ID}, s.SelectedIDs(), "multi-select toggles")

	s.SelectPanel(b.ID, false)
	assert.Equal(t, []string{b.ID}, s.SelectedIDs())

	s.SelectMultiple([]string{c.ID, "ghost", a.ID, c.ID})
	assert.Equal(t, []string{c.ID, a.ID}, s.SelectedIDs())

	s.DeselectPanel(c.ID)
	assert.Equal(t, []string{a.ID}, s.SelectedIDs())

	s.ClearSelection()
	assert.Empty(t, s.SelectedIDs())

	s.SelectAll()
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, s.SelectedIDs())
}

func TestZIndexStrictlyIncreasesOnFocus(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{})
	b := s.AddPanel(PanelSpec{})

	s.SelectPanel(a.ID, false)
	za := mustPanel(t, s, a.ID).ZIndex
	assert.Greater(t, za, mustPanel(t, s, b.ID).ZIndex)

	s.SelectPanel(b.ID, false)
	assert.Greater(t, mustPanel(t, s, b.ID).ZIndex, za)

	top := mustPanel(t, s, b.ID).ZIndex
	s.BringToFront(b.ID)
	assert.Equal(t, top, mustPanel(t, s, b.ID).ZIndex, "already on top")
}

func TestCycleSelection(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{})
	b := s.AddPanel(PanelSpec{})
	c := s.AddPanel(PanelSpec{})

	s.CycleSelection(true)
	assert.Equal(t, []string{a.ID}, s.SelectedIDs())
	s.CycleSelection(true)
	s.CycleSelection(true)
	assert.Equal(t, []string{c.ID}, s.SelectedIDs())
	s.CycleSelection(true)
	assert.Equal(t, []string{a.ID}, s.SelectedIDs(), "wraps forward")
	s.CycleSelection(false)
	assert.Equal(t, []string{c.ID}, s.SelectedIDs(), "wraps backward")
	s.CycleSelection(false)
	assert.Equal(t, []string{b.ID}, s.SelectedIDs())

	empty := newTestStore(t)
	empty.CycleSelection(true)
	assert.Empty(t, empty.SelectedIDs())
}

func TestDeleteSelection(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{})
	b := s.AddPanel(PanelSpec{})
	c := s.AddPanel(PanelSpec{})
	s.SelectMultiple([]string{a.ID, c.ID})

	s.DeleteSelection()
	assert.Empty(t, s.SelectedIDs())
	panels := s.Panels()
	require.Len(t, panels, 1)
	assert.Equal(t, b.ID, panels[0].ID)
}

func TestMoveSelectionIsAtomic(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100)})
	b := s.AddPanel(PanelSpec{Position: at(0, 200), Size: sz(100, 100)})
	s.AddPanel(PanelSpec{Position: at(150, 200), Size: sz(100, 100), Constraints: guard})
	s.SelectMultiple([]string{a.ID, b.ID})

	require.NoError(t, s.MoveSelection(10, 0))
	assert.Equal(t, 10.0, mustPanel(t, s, a.ID).Position.X)
	assert.Equal(t, 10.0, mustPanel(t, s, b.ID).Position.X)

	// b would hit the guarded panel, so a must not move either.
	err := s.MoveSelection(50, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeCollision))
	assert.Equal(t, 10.0, mustPanel(t, s, a.ID).Position.X)
	assert.Equal(t, 10.0, mustPanel(t, s, b.ID).Position.X)

	assert.NoError(t, newTestStore(t).MoveSelection(5, 5), "empty selection is a no-op")
}

func TestResizeSelectionIsAtomic(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100)})
	b := s.AddPanel(PanelSpec{Position: at(300, 0), Size: sz(30, 30)})
	s.SelectAll()

	err := s.ResizeSelection(-40, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
	assert.Equal(t, sz(100, 100), mustPanel(t, s, a.ID).Size)
	assert.Equal(t, sz(30, 30), mustPanel(t, s, b.ID).Size)

	require.NoError(t, s.ResizeSelection(20, 20))
	assert.Equal(t, sz(120, 120), mustPanel(t, s, a.ID).Size)
	assert.Equal(t, sz(50, 50), mustPanel(t, s, b.ID).Size)
}

func TestDuplicateAndCenter(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{Position: at(100, 100), Size: sz(200, 100), Kind: "notes"})

	dup, ok := s.DuplicatePanel(a.ID)
	require.True(t, ok)
	assert.NotEqual(t, a.ID, dup.ID)
	assert.Equal(t, "notes", dup.Kind)
	assert.Equal(t, layout.Point{X: 120, Y: 120}, dup.Position)
	assert.Greater(t, dup.ZIndex, a.ZIndex)
	assert.Equal(t, []string{dup.ID}, s.SelectedIDs())

	s.SetViewport(layout.Viewport{Width: 1000, Height: 800, Zoom: 1})
	s.CenterPanel(a.ID)
	assert.Equal(t, layout.Point{X: 400, Y: 350}, mustPanel(t, s, a.ID).Position)
}

func TestDragScenarioCommitsOnEnd(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100)})

	require.True(t, s.StartDrag(p.ID, layout.Point{X: 10, Y: 10}, DragOptions{SnapToGrid: true}))
	assert.False(t, s.StartDrag(p.ID, layout.Point{}, DragOptions{}), "one drag at a time")
	assert.Equal(t, layout.Point{X: 10, Y: 10}, s.DragState().Offset)

	s.UpdateDrag(layout.Point{X: 100, Y: 200})
	assert.Equal(t, layout.Point{X: 0, Y: 0}, mustPanel(t, s, p.ID).Position, "in-progress drag is transient")
	past, _ := s.HistoryLen()

	got, committed, err := s.EndDrag()
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, layout.Point{X: 100, Y: 200}, got.Position)
	assert.False(t, s.DragState().IsDragging)
	after, _ := s.HistoryLen()
	assert.Equal(t, past+1, after, "only the commit is recorded")
}

func TestCancelDragLeavesStore(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Position: at(0, 0)})
	before := s.State()

	s.StartDrag(p.ID, layout.Point{}, DragOptions{})
	s.UpdateDrag(layout.Point{X: 500, Y: 500})
	s.CancelDrag()
	assert.Equal(t, before, s.State())

	_, committed, err := s.EndDrag()
	assert.NoError(t, err)
	assert.False(t, committed)
}

func TestEndDragBlockedByCollision(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100), Constraints: guard})
	b := s.AddPanel(PanelSpec{Position: at(300, 0), Size: sz(100, 100)})

	s.StartDrag(b.ID, layout.Point{}, DragOptions{})
	s.UpdateDrag(layout.Point{X: 50, Y: 50})
	got, committed, err := s.EndDrag()
	assert.True(t, errors.Is(err, errors.ErrCodeCollision))
	assert.False(t, committed)
	assert.Equal(t, layout.Point{X: 300, Y: 0}, got.Position)
	assert.False(t, s.DragState().IsDragging)
}

func TestEndResizeClampsAndAnchors(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Position: at(100, 100), Size: sz(300, 300), Constraints: layout.Constraints{
		MinSize: &layout.Size{Width: 200, Height: 200},
	}})

	require.True(t, s.StartResize(p.ID, layout.NorthWest, false))
	// Pointer dragged 150px right and down: requested 150x150 at (250,250).
	s.UpdateResize(layout.Point{X: 250, Y: 250}, sz(150, 150))
	got, committed, err := s.EndResize()
	require.NoError(t, err)
	require.True(t, committed)

	assert.Equal(t, sz(200, 200), got.Size)
	assert.InDelta(t, 400, got.Position.X+got.Size.Width, 1)
	assert.InDelta(t, 400, got.Position.Y+got.Size.Height, 1)
}

func TestEndResizeRejectsNonPositive(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Size: sz(100, 100)})
	s.StartResize(p.ID, layout.East, false)
	s.UpdateResize(p.Position, sz(-5, 100))
	_, committed, err := s.EndResize()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGeometry))
	assert.False(t, committed)
	assert.Equal(t, sz(100, 100), mustPanel(t, s, p.ID).Size)
}

func TestUndoRedoLaws(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Position: at(0, 0)})
	require.NoError(t, s.UpdatePanel(p.ID, layout.MovePatch(layout.Point{X: 40, Y: 40})))
	s.SelectPanel(p.ID, false)

	present := s.State()
	require.True(t, s.Undo())
	require.True(t, s.Redo())
	restored := s.State()
	assert.Equal(t, present.Panels, restored.Panels)
	assert.Equal(t, present.SelectedPanelIDs, restored.SelectedPanelIDs)
	assert.Equal(t, present.Viewport, restored.Viewport)

	require.True(t, s.Undo())
	assert.True(t, s.CanRedo())
	s.AddPanel(PanelSpec{})
	assert.False(t, s.CanRedo(), "new commit clears redo")
	assert.False(t, s.Redo())
}

func TestUndoEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
}

func TestUndoStepsBack(t *testing.T) {
	s := newTestStore(t)
	p := s.AddPanel(PanelSpec{Position: at(0, 0)})
	require.NoError(t, s.UpdatePanel(p.ID, layout.MovePatch(layout.Point{X: 40, Y: 40})))

	require.True(t, s.Undo())
	assert.Equal(t, layout.Point{X: 0, Y: 0}, mustPanel(t, s, p.ID).Position)
	require.True(t, s.Undo())
	assert.Empty(t, s.Panels())
	assert.False(t, s.Undo())
}

func TestHistoryLimit(t *testing.T) {
	s := New(Options{HistoryLimit: 3, Logger: log.New(io.Discard)})
	for i := 0; i < 10; i++ {
		s.AddPanel(PanelSpec{})
	}
	past, _ := s.HistoryLen()
	assert.Equal(t, 3, past)
}

func TestResetLayout(t *testing.T) {
	s := newTestStore(t)
	s.AddPanel(PanelSpec{})
	s.SelectAll()
	s.ResetLayout()
	assert.Empty(t, s.Panels())
	assert.Empty(t, s.SelectedIDs())
	assert.False(t, s.CanUndo(), "reset is not undoable")
}

func TestGridSettings(t *testing.T) {
	s := newTestStore(t)
	size := 40.0
	g := s.UpdateGridSettings(layout.GridPatch{Size: &size})
	assert.Equal(t, 40.0, g.Size)

	bad := -1.0
	g = s.UpdateGridSettings(layout.GridPatch{Size: &bad})
	assert.Equal(t, 40.0, g.Size, "invalid size ignored")

	s.SetGridSnap(false)
	assert.False(t, s.Grid().Enabled)
	assert.True(t, s.ToggleGridSnap())
	assert.False(t, s.CanUndo(), "grid changes are not snapshotted")
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	var events []Event
	unsubscribe := s.Subscribe(func(e Event) {
		events = append(events, e)
		_ = s.Panels() // listeners may read the store
	})

	p := s.AddPanel(PanelSpec{})
	s.SelectPanel(p.ID, false)
	require.NotEmpty(t, events)
	assert.Equal(t, EventPanels, events[0].Type)
	assert.Equal(t, []string{p.ID}, events[0].PanelIDs)

	n := len(events)
	unsubscribe()
	unsubscribe()
	s.AddPanel(PanelSpec{})
	assert.Len(t, events, n)
}

func TestApplyBatch(t *testing.T) {
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100)})
	b := s.AddPanel(PanelSpec{Position: at(200, 0), Size: sz(100, 100)})
	past, _ := s.HistoryLen()

	bad := sz(0, 10)
	res := s.ApplyBatch("resizeQueue", []PanelUpdate{
		{PanelID: a.ID, Patch: layout.PanelPatch{Size: &layout.Size{Width: 150, Height: 100}}},
		{PanelID: b.ID, Patch: layout.PanelPatch{Size: &bad}},
	})
	assert.Empty(t, res.Applied, "one invalid update refuses the batch")
	assert.Contains(t, res.Rejected, b.ID)
	assert.Equal(t, sz(100, 100), mustPanel(t, s, a.ID).Size)

	res = s.ApplyBatch("resizeQueue", []PanelUpdate{
		{PanelID: a.ID, Patch: layout.PanelPatch{Size: &layout.Size{Width: 150, Height: 100}}},
		{PanelID: "ghost", Patch: layout.MovePatch(layout.Point{})},
	})
	assert.Equal(t, []string{a.ID}, res.Applied)
	assert.Empty(t, res.Rejected)
	after, _ := s.HistoryLen()
	assert.Equal(t, past+1, after, "one snapshot per batch")
}

func TestApplyBatchChecksFinalBounds(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(200, 100), Constraints: guard})
	b := s.AddPanel(PanelSpec{Position: at(200, 0), Size: sz(200, 100), Constraints: guard})

	// a grows into the space b leaves; applied in order, a would hit b.
	res := s.ApplyBatch("", []PanelUpdate{
		{PanelID: a.ID, Patch: layout.PanelPatch{Size: &layout.Size{Width: 250, Height: 100}}},
		{PanelID: b.ID, Patch: layout.PanelPatch{Position: &layout.Point{X: 250}, Size: &layout.Size{Width: 150, Height: 100}}},
	})
	assert.ElementsMatch(t, []string{a.ID, b.ID}, res.Applied)
	assert.Equal(t, layout.Rect{Width: 250, Height: 100}, mustPanel(t, s, a.ID).Rect())
	assert.Equal(t, layout.Rect{X: 250, Width: 150, Height: 100}, mustPanel(t, s, b.ID).Rect())

	// a grows past b's left edge while b only shrinks: nothing changes.
	res = s.ApplyBatch("", []PanelUpdate{
		{PanelID: a.ID, Patch: layout.PanelPatch{Size: &layout.Size{Width: 300, Height: 100}}},
		{PanelID: b.ID, Patch: layout.PanelPatch{Size: &layout.Size{Width: 100, Height: 100}}},
	})
	assert.Empty(t, res.Applied)
	assert.Contains(t, res.Rejected, a.ID)
	assert.Equal(t, sz(250, 100), mustPanel(t, s, a.ID).Size)
	assert.Equal(t, sz(150, 100), mustPanel(t, s, b.ID).Size)
}

func TestWorkspaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a := s.AddPanel(PanelSpec{Position: at(10, 10), Size: sz(100, 100)})
	s.AddPanel(PanelSpec{Position: at(200, 10), Size: sz(100, 100)})

	cfg, err := s.SaveWorkspace(ctx, "Main", "two panels")
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, s.State().ActiveWorkspaceID)

	s.RemovePanel(a.ID)
	s.AddPanel(PanelSpec{Kind: "extra"})
	s.SelectAll()

	require.NoError(t, s.LoadWorkspace(ctx, cfg.ID))
	panels := s.Panels()
	require.Len(t, panels, 2, "load replaces, never merges")
	assert.Equal(t, a.ID, panels[0].ID)
	assert.Empty(t, s.SelectedIDs())

	require.True(t, s.Undo(), "load is undoable")
	assert.Len(t, s.Panels(), 2)
	assert.Equal(t, "extra", s.Panels()[1].Kind)

	err = s.LoadWorkspace(ctx, "nope")
	assert.True(t, errors.Is(err, errors.ErrCodeWorkspaceNotFound))

	require.NoError(t, s.DeleteWorkspace(ctx, cfg.ID))
	assert.Empty(t, s.State().ActiveWorkspaceID)
	assert.Empty(t, s.Workspaces().List())
}

func TestConstraintInvariantHoldsAfterEveryAction(t *testing.T) {
	s := newTestStore(t)
	c := layout.Constraints{MinSize: &layout.Size{Width: 80, Height: 80}, MaxSize: &layout.Size{Width: 300, Height: 300}}
	for i := 0; i < 3; i++ {
		s.AddPanel(PanelSpec{Size: sz(float64(50+i*200), 100), Constraints: c})
	}
	s.SelectAll()

	check := func(step string) {
		for _, p := range s.Panels() {
			assert.True(t, layout.SatisfiesConstraints(p.Size, p.Constraints), "%s: %s has %v", step, p.ID, p.Size)
		}
	}
	check("add")
	_ = s.ResizeSelection(500, 500)
	check("grow")
	_ = s.ResizeSelection(-290, -290)
	check("shrink")
	s.Undo()
	check("undo")
}

func TestSelectionTransformsKeepGuardedPanelsApart(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100), Constraints: guard})
	b := s.AddPanel(PanelSpec{Position: at(100, 0), Size: sz(100, 100), Constraints: guard})
	s.SelectAll()

	// a clamps at x=0 while b keeps moving into it.
	err := s.MoveSelection(-50, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeCollision), "move: %v", err)
	err = s.ResizeSelection(20, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeCollision), "resize: %v", err)
	assert.Equal(t, layout.Rect{Width: 100, Height: 100}, mustPanel(t, s, a.ID).Rect())
	assert.Equal(t, layout.Rect{X: 100, Width: 100, Height: 100}, mustPanel(t, s, b.ID).Rect())
	assert.Empty(t, layout.DetectCollisions(mustPanel(t, s, a.ID), s.Panels()))

	// Moving together past their own old positions is fine.
	require.NoError(t, s.MoveSelection(10, 0))
	assert.Equal(t, 10.0, mustPanel(t, s, a.ID).Position.X)
	assert.Equal(t, 110.0, mustPanel(t, s, b.ID).Position.X)
}

func TestDuplicateCascadesPastGuardedPanel(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := s.AddPanel(PanelSpec{Position: at(100, 100), Size: sz(100, 100), Constraints: guard})

	dup, ok := s.DuplicatePanel(a.ID)
	require.True(t, ok)
	assert.Equal(t, layout.Point{X: 200, Y: 200}, dup.Position)
	assert.Empty(t, layout.DetectCollisions(dup, s.Panels()))

	s.SelectAll()
	copies := s.DuplicateSelection()
	require.Len(t, copies, 2)
	for _, p := range s.Panels() {
		assert.Empty(t, layout.DetectCollisions(p, s.Panels()), "panel %s overlaps", p.ID)
	}
}

func TestDuplicateGivesUpWhenNoRoom(t *testing.T) {
	s := newTestStore(t)
	guard := layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(1000, 1000), Constraints: guard})

	_, ok := s.DuplicatePanel(a.ID)
	assert.False(t, ok)
	assert.Len(t, s.Panels(), 1)
}

func TestCenterSelectionMovesGroup(t *testing.T) {
	s := newTestStore(t)
	s.SetViewport(layout.Viewport{Width: 1000, Height: 800, Zoom: 1})
	a := s.AddPanel(PanelSpec{Position: at(0, 0), Size: sz(100, 100)})
	b := s.AddPanel(PanelSpec{Position: at(200, 100), Size: sz(100, 100)})
	s.SelectAll()
	before, _ := s.HistoryLen()

	require.NoError(t, s.CenterSelection())
	assert.Equal(t, layout.Point{X: 350, Y: 300}, mustPanel(t, s, a.ID).Position)
	assert.Equal(t, layout.Point{X: 550, Y: 400}, mustPanel(t, s, b.ID).Position)
	after, _ := s.HistoryLen()
	assert.Equal(t, before+1, after, "one snapshot for the whole group")

	assert.NoError(t, newTestStore(t).CenterSelection(), "empty selection is a no-op")
}
