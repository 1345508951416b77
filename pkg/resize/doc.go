// Package resize implements panel resizing.
//
// # Single panel
//
// [Controller] is the Idle/Resizing state machine for one handle. Each
// pointer sample goes through [layout.CalculateResizeDelta], optional aspect
// locking, constraint clamping and optional grid snapping before it is
// written to the store's resize state. The controller keeps the unclamped
// requested size so that End can report, through [ValidateResizeOperation],
// which constraints had to correct it.
//
// # Multiple panels
//
// A gesture that touches several panels produces a list of [Change] values:
//
//   - [Proportional] shares a primary panel's size delta among its right
//     and bottom neighbours in proportion to their size.
//   - [GroupScale] scales a set of panels around an anchor point.
//   - [HandleOverflow] clips changed panels back into a container.
//   - [PreserveLayout] greedily nudges overlapping panels apart.
//
// Changes become [Operation] values and are queued on a [Queue], which
// drains at most MaxOperationsPerFrame per frame. When several operations
// in a frame target the same panel the highest priority wins, later
// operations winning ties, and the losers are recorded as [Conflict]
// values. Every surviving operation is validated again against the live
// store immediately before it is applied, and the whole frame is committed
// with a single history snapshot.
//
// The multi-panel passes are greedy and order dependent. They do not
// guarantee an overlap-free result, only that the pass itself never makes
// an overlap worse than it found it.
package resize
