package resize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/panels/pkg/frame"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/observability"
	"github.com/matzehuels/panels/pkg/store"
)

type recordingQueueHooks struct {
	observability.NoopQueueHooks
	frames []int
}

func (h *recordingQueueHooks) OnFrame(applied, _, _ int, _ time.Duration) {
	h.frames = append(h.frames, applied)
}

func sized(w, h float64) layout.Size { return layout.Size{Width: w, Height: h} }

func TestQueueAppliesOnNextFrame(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	sched := frame.NewManual()
	q := NewQueue(st, QueueOptions{Scheduler: sched})
	past, _ := st.HistoryLen()

	ops := q.Enqueue(Operation{PanelID: a.ID, TargetSize: sized(150, 120)})
	require.Len(t, ops, 1)
	assert.NotEmpty(t, ops[0].ID)
	assert.Equal(t, sized(100, 100), ops[0].OriginalSize)

	got, _ := st.Panel(a.ID)
	assert.Equal(t, sized(100, 100), got.Size, "nothing applied before the frame")
	assert.Equal(t, 1, sched.Pending())

	sched.Flush()
	got, _ = st.Panel(a.ID)
	assert.Equal(t, sized(150, 120), got.Size)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, sched.Pending(), "empty queue schedules nothing")
	after, _ := st.HistoryLen()
	assert.Equal(t, past+1, after)
}

func TestQueueBatchesPerFrame(t *testing.T) {
	st := newStore(t)
	var ops []Operation
	for i := 0; i < 25; i++ {
		p := st.AddPanel(spec(float64(i*200), 0, 100, 100))
		ops = append(ops, Operation{PanelID: p.ID, TargetSize: sized(110, 110)})
	}
	hooks := &recordingQueueHooks{}
	observability.SetQueueHooks(hooks)
	t.Cleanup(observability.Reset)

	sched := frame.NewManual()
	q := NewQueue(st, QueueOptions{Scheduler: sched})
	q.Enqueue(ops...)

	assert.Equal(t, 3, sched.FlushAll(10))
	assert.Equal(t, []int{10, 10, 5}, hooks.frames)
	assert.Equal(t, 0, q.LastFrame().Remaining)
}

func TestQueueConflictHighestPriorityWins(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	ops := q.Enqueue(
		Operation{PanelID: a.ID, TargetSize: sized(300, 300), Priority: 5},
		Operation{PanelID: a.ID, TargetSize: sized(200, 200), Priority: 1},
		Operation{PanelID: a.ID, TargetSize: sized(400, 400), Priority: 5},
	)
	res := q.ProcessFrame()

	got, _ := st.Panel(a.ID)
	assert.Equal(t, sized(400, 400), got.Size, "later operation wins the tie")
	assert.Equal(t, []string{ops[2].ID}, res.Applied)
	require.Len(t, res.Conflicts, 2)
	for _, c := range res.Conflicts {
		assert.Equal(t, ops[2].ID, c.Winner)
		assert.Equal(t, ConflictSpace, c.ConflictType)
		assert.Equal(t, ResolutionQueue, c.Resolution)
	}
	assert.Len(t, q.Conflicts(), 2)
}

func TestQueueDefersDependencies(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	b := st.AddPanel(spec(300, 0, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	first := Operation{ID: "op-a", PanelID: a.ID, TargetSize: sized(120, 120)}
	second := Operation{ID: "op-b", PanelID: b.ID, TargetSize: sized(130, 130), Dependencies: []string{"op-a"}}
	q.Enqueue(second, first)

	res := q.ProcessFrame()
	assert.Equal(t, []string{"op-a"}, res.Applied)
	assert.Equal(t, []string{"op-b"}, res.Deferred)
	assert.Equal(t, 1, res.Remaining)

	res = q.ProcessFrame()
	assert.Equal(t, []string{"op-b"}, res.Applied)
}

func TestQueueRejectsDependencyCycle(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	q.Enqueue(
		Operation{ID: "x", PanelID: a.ID, TargetSize: sized(120, 120), Dependencies: []string{"y"}},
		Operation{ID: "y", PanelID: a.ID, TargetSize: sized(130, 130), Dependencies: []string{"x"}},
	)
	res := q.ProcessFrame()
	assert.Empty(t, res.Applied)
	assert.Len(t, res.Rejected, 2)
	assert.Equal(t, 0, q.Len())
}

func TestQueueRevalidatesAgainstLiveState(t *testing.T) {
	st := newStore(t)
	guard := spec(200, 0, 100, 100)
	guard.Constraints = layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	a := st.AddPanel(spec(0, 0, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	ops := q.Enqueue(Operation{PanelID: a.ID, TargetSize: sized(250, 100)})
	// The blocking panel appears after the operation was queued.
	st.AddPanel(guard)

	res := q.ProcessFrame()
	assert.Empty(t, res.Applied)
	require.Contains(t, res.Rejected, ops[0].ID)
	got, _ := st.Panel(a.ID)
	assert.Equal(t, sized(100, 100), got.Size)
}

func TestQueueDropsRemovedPanels(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})
	q.Enqueue(Operation{PanelID: a.ID, TargetSize: sized(150, 150)})
	st.RemovePanel(a.ID)

	res := q.ProcessFrame()
	assert.Empty(t, res.Applied)
	assert.Empty(t, res.Rejected)
}

func TestQueueMovesWithTargetPosition(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	var frames []FrameResult
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual(), OnFrame: func(r FrameResult) { frames = append(frames, r) }})

	pos := layout.Point{X: 40, Y: 60}
	q.Enqueue(Operation{PanelID: a.ID, TargetSize: sized(100, 100), TargetPosition: &pos})
	q.Drain(5)

	got, _ := st.Panel(a.ID)
	assert.Equal(t, pos, got.Position)
	assert.Len(t, frames, 1)
}

func guarded(x, y, w, h float64) store.PanelSpec {
	sp := spec(x, y, w, h)
	sp.Constraints = layout.Constraints{Collision: &layout.CollisionConstraints{PreventOverlap: true}}
	return sp
}

func opIDs(ops []Operation) []string {
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}
	return ids
}

func TestQueueValidatesGestureAgainstFinalBounds(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(guarded(0, 0, 200, 100))
	b := st.AddPanel(guarded(200, 0, 200, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	changes, err := PlanProportional(st.Panels(), a.ID, sized(250, 100), PlanOptions{})
	require.NoError(t, err)
	ops := q.Enqueue(Operations(changes, 0)...)
	require.Len(t, ops, 2)

	res := q.ProcessFrame()
	assert.ElementsMatch(t, opIDs(ops), res.Applied)
	assert.Empty(t, res.Rejected)
	gotA, _ := st.Panel(a.ID)
	gotB, _ := st.Panel(b.ID)
	assert.Equal(t, layout.Rect{Width: 250, Height: 100}, gotA.Rect())
	assert.Equal(t, layout.Rect{X: 250, Width: 150, Height: 100}, gotB.Rect())
}

func TestQueueRejectsWholeGesture(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(guarded(0, 0, 200, 100))
	b := st.AddPanel(guarded(200, 0, 200, 100))
	st.AddPanel(guarded(0, 120, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	// Scaling puts a on top of the third panel; b alone would fit.
	changes, err := PlanGroup(st.Panels(), []string{a.ID, b.ID}, 1.5, nil, PlanOptions{})
	require.NoError(t, err)
	ops := q.Enqueue(Operations(changes, 0)...)
	require.Len(t, ops, 2)

	res := q.ProcessFrame()
	assert.Empty(t, res.Applied)
	require.Contains(t, res.Rejected, ops[0].ID)
	require.Contains(t, res.Rejected, ops[1].ID)
	assert.Equal(t, IssueCollision, res.Rejected[ops[0].ID].Errors[0].Kind)
	assert.Equal(t, IssueGesture, res.Rejected[ops[1].ID].Errors[0].Kind)

	gotA, _ := st.Panel(a.ID)
	gotB, _ := st.Panel(b.ID)
	assert.Equal(t, layout.Rect{Width: 200, Height: 100}, gotA.Rect())
	assert.Equal(t, layout.Rect{X: 200, Width: 200, Height: 100}, gotB.Rect())
}

func TestQueueDropsGestureThatLosesConflict(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	b := st.AddPanel(spec(300, 0, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual()})

	changes, err := PlanGroup(st.Panels(), []string{a.ID, b.ID}, 2, &layout.Point{}, PlanOptions{})
	require.NoError(t, err)
	group := q.Enqueue(Operations(changes, 1)...)
	single := q.Enqueue(Operation{PanelID: a.ID, TargetSize: sized(150, 150), Priority: 5})

	res := q.ProcessFrame()
	assert.Equal(t, opIDs(single), res.Applied)
	require.Len(t, res.Conflicts, 2)
	for _, c := range res.Conflicts {
		assert.Equal(t, single[0].ID, c.Winner)
	}
	assert.ElementsMatch(t, opIDs(group), []string{res.Conflicts[0].Discarded, res.Conflicts[1].Discarded})

	gotA, _ := st.Panel(a.ID)
	gotB, _ := st.Panel(b.ID)
	assert.Equal(t, sized(150, 150), gotA.Size)
	assert.Equal(t, layout.Rect{X: 300, Width: 100, Height: 100}, gotB.Rect(), "the rest of the gesture is discarded")
}

func TestQueueNeverSplitsGesture(t *testing.T) {
	st := newStore(t)
	a := st.AddPanel(spec(0, 0, 100, 100))
	b := st.AddPanel(spec(100, 0, 100, 100))
	c := st.AddPanel(spec(0, 300, 100, 100))
	q := NewQueue(st, QueueOptions{Scheduler: frame.NewManual(), MaxOperationsPerFrame: 2})

	single := q.Enqueue(Operation{PanelID: c.ID, TargetSize: sized(120, 120)})
	changes, err := PlanProportional(st.Panels(), a.ID, sized(140, 100), PlanOptions{})
	require.NoError(t, err)
	group := q.Enqueue(Operations(changes, 0)...)
	require.Len(t, group, 2)

	res := q.ProcessFrame()
	assert.Equal(t, opIDs(single), res.Applied, "the gesture does not fit beside the single operation")
	assert.Equal(t, 2, res.Remaining)

	res = q.ProcessFrame()
	assert.ElementsMatch(t, opIDs(group), res.Applied)

	// A gesture larger than the frame budget is drained alone in one frame.
	changes, err = PlanGroup(st.Panels(), []string{a.ID, b.ID, c.ID}, 0.5, &layout.Point{}, PlanOptions{})
	require.NoError(t, err)
	big := q.Enqueue(Operations(changes, 0)...)
	require.Len(t, big, 3)
	res = q.ProcessFrame()
	assert.ElementsMatch(t, opIDs(big), res.Applied)
	assert.Equal(t, 0, res.Remaining)
}
