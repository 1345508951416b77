// Package layout provides the panel data model and the pure geometry used to
// move, resize, snap and constrain panels inside a 2D workspace.
//
// # Overview
//
// A [Panel] is an axis-aligned rectangle with an id, a stacking order and an
// optional set of [Constraints]. Everything in this package is side-effect
// free: functions take explicit inputs and return explicit outputs, which
// makes them safe to call from any controller and trivial to unit test.
//
// # Snapping
//
// Two independent snapping mechanisms exist:
//
//   - Grid snapping ([SnapToGrid], [ShouldSnapToGrid], [SnapSizeToGrid]) rounds
//     coordinates to multiples of [GridSettings].Size.
//   - Magnetic snapping ([CalculateSnapZones]) pulls a candidate's edges or
//     center into alignment with edges or centers of other panels when they are
//     within [MagneticThreshold] pixels. It does not depend on the grid.
//
// # Collisions
//
// [DetectCollisions] uses a strict overlap test: two rectangles collide only
// when both projections intersect with non-zero measure. Edge-touching
// rectangles do not collide.
//
// # Constraints
//
// [GetConstrainedSize] is a plain per-axis clamp; [EnforceMinMaxConstraints]
// performs the same clamp and reports every bound that was violated, which the
// multi-panel resize path turns into warnings.
//
// # Resize handles
//
// [CalculateResizeDelta] maps a pointer delta to a new position and size for
// one of the eight [Direction] handles. North and west handles shift the
// position so that the opposite edge stays fixed.
package layout
