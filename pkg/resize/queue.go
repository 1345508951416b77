package resize

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/frame"
	"github.com/matzehuels/panels/pkg/layout"
	"github.com/matzehuels/panels/pkg/observability"
	"github.com/matzehuels/panels/pkg/store"
)

// DefaultMaxOperationsPerFrame bounds the work done in one frame.
const DefaultMaxOperationsPerFrame = 10

// Operation is one queued resize.
type Operation struct {
	ID           string      `json:"id"`
	PanelID      string      `json:"panelId"`
	OriginalSize layout.Size `json:"originalSize"`
	TargetSize   layout.Size `json:"targetSize"`
	// TargetPosition moves the panel together with the resize. Nil keeps
	// the position the panel has when the operation is applied.
	TargetPosition *layout.Point `json:"targetPosition,omitempty"`
	Priority       int           `json:"priority"`
	// Gesture groups the operations planned from one user gesture. They are
	// taken, validated and applied together: all of them or none. Empty
	// means the operation stands alone.
	Gesture string `json:"gesture,omitempty"`
	// Dependencies are operation ids that must be resolved first.
	Dependencies []string `json:"dependencies,omitempty"`
	// Constraints replace the panel's own constraints during validation.
	Constraints *layout.Constraints `json:"constraints,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`

	seq uint64
}

// ConflictType and Resolution values recorded on a Conflict.
const (
	ConflictSpace   = "space"
	ResolutionQueue = "queue"
)

// Conflict records an operation discarded in favour of another one for the
// same panel. Discarded operations are not retried.
type Conflict struct {
	PanelID      string   `json:"panelId"`
	OperationIDs []string `json:"operationIds"`
	Winner       string   `json:"winner"`
	Discarded    string   `json:"discarded"`
	ConflictType string   `json:"conflictType"`
	Resolution   string   `json:"resolution"`
}

// FrameResult reports one drained frame. Applied, Rejected and Deferred
// are keyed by operation id, not panel id.
type FrameResult struct {
	Applied   []string              `json:"applied"`
	Rejected  map[string]Validation `json:"rejected"`
	Conflicts []Conflict            `json:"conflicts"`
	Deferred  []string              `json:"deferred"`
	Remaining int                   `json:"remaining"`
	Duration  time.Duration         `json:"duration"`
}

// QueueOptions configures a Queue.
type QueueOptions struct {
	MaxOperationsPerFrame int
	// Scheduler requests frames. Nil uses a frame.Timer at the default
	// interval.
	Scheduler frame.Scheduler
	// Viewport, when set, adds viewport overflow warnings to validation.
	Viewport bool
	// OnFrame is called after every drained frame.
	OnFrame func(FrameResult)
	Logger  *log.Logger
	Now     func() time.Time
}

// Queue batches resize operations per frame.
type Queue struct {
	store *store.Store
	opts  QueueOptions

	mu        sync.Mutex
	pending   []Operation
	conflicts []Conflict
	last      FrameResult
	scheduled bool
	seq       uint64
}

// NewQueue returns an empty queue writing into st.
func NewQueue(st *store.Store, opts QueueOptions) *Queue {
	if opts.MaxOperationsPerFrame <= 0 {
		opts.MaxOperationsPerFrame = DefaultMaxOperationsPerFrame
	}
	if opts.Scheduler == nil {
		opts.Scheduler = frame.NewTimer(frame.DefaultInterval)
	}
	if opts.Logger == nil {
		opts.Logger = st.Logger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Queue{store: st, opts: opts}
}

// Enqueue adds operations and requests a frame if none is pending.
// Missing ids and original sizes are filled in. It returns the stored
// operations.
func (q *Queue) Enqueue(ops ...Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	q.mu.Lock()
	for _, op := range ops {
		if op.ID == "" {
			op.ID = uuid.NewString()
		}
		if op.CreatedAt.IsZero() {
			op.CreatedAt = q.opts.Now()
		}
		if !op.OriginalSize.IsPositive() {
			if p, ok := q.store.Panel(op.PanelID); ok {
				op.OriginalSize = p.Size
			}
		}
		q.seq++
		op.seq = q.seq
		q.pending = append(q.pending, op)
		out = append(out, op)
	}
	q.scheduleLocked()
	q.mu.Unlock()
	return out
}

// Len returns the number of queued operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pending returns copies of the queued operations in queue order.
func (q *Queue) Pending() []Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.pending)
}

// Conflicts returns every conflict recorded since the last Reset.
func (q *Queue) Conflicts() []Conflict {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.conflicts)
}

// LastFrame returns the result of the most recent frame.
func (q *Queue) LastFrame() FrameResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.last
}

// Reset drops all queued operations and recorded conflicts.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
	q.conflicts = nil
}

// Drain processes frames synchronously until the queue is empty or limit
// frames have run.
func (q *Queue) Drain(limit int) []FrameResult {
	var out []FrameResult
	for i := 0; i < limit && q.Len() > 0; i++ {
		out = append(out, q.ProcessFrame())
	}
	return out
}

func (q *Queue) scheduleLocked() {
	if q.scheduled || len(q.pending) == 0 {
		return
	}
	q.scheduled = true
	q.opts.Scheduler.RequestFrame(q.onFrame)
}

func (q *Queue) onFrame() {
	q.mu.Lock()
	q.scheduled = false
	empty := len(q.pending) == 0
	q.mu.Unlock()
	if !empty {
		q.ProcessFrame()
	}
}

// ProcessFrame drains one batch: it picks up to MaxOperationsPerFrame
// operations whose dependencies are resolved, resolves conflicts, validates
// the winners against the state the whole batch produces and applies them
// as one batch.
func (q *Queue) ProcessFrame() FrameResult {
	start := q.opts.Now()
	res := FrameResult{Rejected: map[string]Validation{}}

	q.mu.Lock()
	batch, deferred := q.takeLocked()
	res.Deferred = deferred
	if len(batch) == 0 && len(q.pending) > 0 {
		// Nothing is ready, so the remaining dependencies form a cycle.
		for _, op := range q.pending {
			res.Rejected[op.ID] = Validation{Errors: []Issue{{
				Kind:    IssueGeometry,
				Code:    errors.ErrCodeInternal,
				Message: "unresolvable operation dependencies",
			}}}
		}
		q.pending = nil
		res.Deferred = nil
	}
	winners, conflicts := resolveConflicts(batch)
	q.conflicts = append(q.conflicts, conflicts...)
	res.Conflicts = conflicts
	q.mu.Unlock()

	for _, c := range conflicts {
		q.opts.Logger.Warn("resize conflict", "panel", c.PanelID, "winner", c.Winner, "discarded", c.Discarded)
	}

	updates, byPanel := q.validate(winners, res.Rejected)
	if len(updates) > 0 {
		br := q.store.ApplyBatch("resizeQueue", updates)
		for _, id := range br.Applied {
			res.Applied = append(res.Applied, byPanel[id])
		}
		if len(br.Rejected) > 0 {
			// The store changed since validation and refused the batch.
			for _, u := range updates {
				opID := byPanel[u.PanelID]
				if err, ok := br.Rejected[u.PanelID]; ok {
					res.Rejected[opID] = Validation{Errors: []Issue{{Kind: IssueCollision, Code: errors.GetCode(err), Message: errors.UserMessage(err)}}}
					continue
				}
				res.Rejected[opID] = Validation{Errors: []Issue{{Kind: IssueGesture, Code: errors.ErrCodeCollision, Message: "frame rejected by the store"}}}
			}
		}
	}

	q.mu.Lock()
	res.Remaining = len(q.pending)
	res.Duration = q.opts.Now().Sub(start)
	q.last = res
	q.scheduleLocked()
	q.mu.Unlock()

	observability.Queue().OnFrame(len(res.Applied), len(res.Conflicts), res.Remaining, res.Duration)
	q.opts.Logger.Debug("resize frame", "applied", len(res.Applied), "rejected", len(res.Rejected),
		"conflicts", len(res.Conflicts), "deferred", len(res.Deferred), "remaining", res.Remaining)
	if q.opts.OnFrame != nil {
		q.opts.OnFrame(res)
	}
	return res
}

// takeLocked removes up to MaxOperationsPerFrame ready operations from the
// queue. An operation is ready when none of its dependencies is still
// queued; it waits in place otherwise. A gesture is taken whole or not at
// all, so a gesture larger than MaxOperationsPerFrame is drained alone in
// one frame.
func (q *Queue) takeLocked() (batch []Operation, deferred []string) {
	pendingIDs := make(map[string]string, len(q.pending))
	members := make(map[string][]Operation)
	for _, op := range q.pending {
		pendingIDs[op.ID] = op.Gesture
		if op.Gesture != "" {
			members[op.Gesture] = append(members[op.Gesture], op)
		}
	}
	ready := func(op Operation) bool {
		for _, dep := range op.Dependencies {
			g, queued := pendingIDs[dep]
			if queued && (op.Gesture == "" || g != op.Gesture) {
				return false
			}
		}
		return true
	}

	decided := make(map[string]bool)
	taken := make(map[string]bool)
	for _, op := range q.pending {
		if op.Gesture == "" {
			switch {
			case len(batch) >= q.opts.MaxOperationsPerFrame:
			case !ready(op):
				deferred = append(deferred, op.ID)
			default:
				batch = append(batch, op)
				taken[op.ID] = true
			}
			continue
		}
		if decided[op.Gesture] {
			continue
		}
		decided[op.Gesture] = true
		group := members[op.Gesture]
		if !slices.ContainsFunc(group, func(m Operation) bool { return !ready(m) }) {
			if len(batch) == 0 || len(batch)+len(group) <= q.opts.MaxOperationsPerFrame {
				for _, m := range group {
					batch = append(batch, m)
					taken[m.ID] = true
				}
			}
			continue
		}
		for _, m := range group {
			deferred = append(deferred, m.ID)
		}
	}

	rest := q.pending[:0:0]
	for _, op := range q.pending {
		if !taken[op.ID] {
			rest = append(rest, op)
		}
	}
	q.pending = rest
	return batch, deferred
}

// resolveConflicts keeps one operation per panel: the highest priority,
// the later one on ties. A gesture that loses any of its operations loses
// all of them, and the remaining operations are resolved again without
// it. Winners keep batch order.
func resolveConflicts(batch []Operation) ([]Operation, []Conflict) {
	// excluded maps a losing gesture to the operation that beat it.
	excluded := make(map[string]string)
	out := func(op Operation) bool {
		_, ok := excluded[op.Gesture]
		return op.Gesture != "" && ok
	}
	var best map[string]Operation
	for {
		best = make(map[string]Operation)
		for _, op := range batch {
			if out(op) {
				continue
			}
			cur, ok := best[op.PanelID]
			if !ok || op.Priority > cur.Priority || (op.Priority == cur.Priority && op.seq > cur.seq) {
				best[op.PanelID] = op
			}
		}
		changed := false
		for _, op := range batch {
			if op.Gesture == "" || out(op) {
				continue
			}
			if w := best[op.PanelID]; w.ID != op.ID {
				excluded[op.Gesture] = w.ID
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	var (
		winners   []Operation
		conflicts []Conflict
	)
	for _, op := range batch {
		w, ok := best[op.PanelID]
		if ok && w.ID == op.ID {
			winners = append(winners, op)
			continue
		}
		winner := w.ID
		if !ok {
			winner = excluded[op.Gesture]
		}
		conflicts = append(conflicts, Conflict{
			PanelID:      op.PanelID,
			OperationIDs: []string{winner, op.ID},
			Winner:       winner,
			Discarded:    op.ID,
			ConflictType: ConflictSpace,
			Resolution:   ResolutionQueue,
		})
	}
	return winners, conflicts
}

// validate checks the winners against the state the whole frame would
// produce: every target is clamped to its constraints first, then
// collisions are checked between the resulting rectangles. An invalid
// operation rejects the rest of its gesture, and the check repeats over
// the survivors until they are consistent. Operations on panels that no
// longer exist are dropped silently.
func (q *Queue) validate(ops []Operation, rejected map[string]Validation) ([]store.PanelUpdate, map[string]string) {
	live := q.store.Panels()
	var viewport *layout.Rect
	if q.opts.Viewport {
		r := q.store.Viewport().Rect()
		viewport = &r
	}

	alive := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if indexOf(live, op.PanelID) >= 0 {
			alive = append(alive, op)
		}
	}

	for {
		preview := slices.Clone(live)
		for _, op := range alive {
			i := indexOf(live, op.PanelID)
			v := ValidateResizeOperation(op, live[i], ValidationContext{})
			if op.TargetPosition != nil {
				preview[i].Position = *op.TargetPosition
			}
			preview[i].Size = v.ValidatedSize
		}

		results := make([]Validation, len(alive))
		failed := make(map[string]string)
		for k, op := range alive {
			i := indexOf(live, op.PanelID)
			results[k] = ValidateResizeOperation(op, live[i], ValidationContext{
				Others:   preview,
				Viewport: viewport,
				Position: op.TargetPosition,
			})
			if !results[k].IsValid {
				rejected[op.ID] = results[k]
				q.opts.Logger.Warn("resize rejected", "operation", op.ID, "panel", op.PanelID, "err", results[k].Err())
				if op.Gesture != "" {
					failed[op.Gesture] = op.ID
				}
			}
		}

		survivors := alive[:0:0]
		for k, op := range alive {
			if !results[k].IsValid {
				continue
			}
			if by, ok := failed[op.Gesture]; ok && op.Gesture != "" {
				rejected[op.ID] = Validation{Errors: []Issue{{
					Kind:    IssueGesture,
					Code:    rejected[by].Errors[0].Code,
					Message: fmt.Sprintf("rejected with operation %s of the same gesture", by),
				}}}
				continue
			}
			survivors = append(survivors, op)
		}
		if len(survivors) < len(alive) {
			alive = survivors
			continue
		}

		updates := make([]store.PanelUpdate, 0, len(alive))
		byPanel := make(map[string]string, len(alive))
		for k, op := range alive {
			size := results[k].ValidatedSize
			patch := layout.PanelPatch{Size: &size}
			if op.TargetPosition != nil {
				pos := *op.TargetPosition
				patch.Position = &pos
			}
			updates = append(updates, store.PanelUpdate{PanelID: op.PanelID, Patch: patch})
			byPanel[op.PanelID] = op.ID
		}
		return updates, byPanel
	}
}
