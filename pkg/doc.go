// Package pkg provides the core libraries of the panels layout engine.
//
// # Overview
//
// Panels manipulates explicit, axis-aligned rectangles under explicit user
// commands: drag, resize, keyboard nudges, undo and redo. There is no
// auto-layout. The pkg directory is organized into three areas:
//
//  1. Geometry and state: [layout], [store], [history]
//  2. Interaction: [drag], [resize], [keyboard], [frame]
//  3. Surfaces and persistence: [workspace], [render], [api]
//
// # Architecture
//
// Every change flows through the store, which records one history snapshot
// per committed action and notifies subscribers afterwards:
//
//	pointer / key / HTTP request
//	         ↓
//	    [drag] / [resize] / [keyboard] (transient state, snapping, throttling)
//	         ↓
//	    [store] (constraints, collisions, selection, z-order)
//	         ↓
//	    [history] snapshot + store events
//	         ↓
//	    [render] / [api] / [workspace] (read-only consumers and persistence)
//
// # Quick Start
//
// Add two panels, drag one next to the other and undo it:
//
//	import (
//	    "github.com/matzehuels/panels/pkg/drag"
//	    "github.com/matzehuels/panels/pkg/layout"
//	    "github.com/matzehuels/panels/pkg/store"
//	)
//
//	st := store.New(store.Options{})
//	a := st.AddPanel(store.PanelSpec{})
//	st.AddPanel(store.PanelSpec{Position: &layout.Point{X: 600, Y: 50}})
//
//	c := drag.NewController(st, drag.DefaultOptions())
//	c.Start(a.ID, layout.Point{X: 60, Y: 60})
//	c.Move(layout.Point{X: 205, Y: 60})
//	c.End()
//
//	st.Undo()
//
// # Main Packages
//
//   - [layout]: Points, sizes, rectangles, constraints, grid and magnetic snapping
//   - [store]: The live layout, selection, transient drag/resize state
//   - [history]: Bounded undo/redo snapshots
//   - [drag]: Drag pipeline (grid, magnetic, bounds) and throttled controller
//   - [resize]: Single-panel resize, proportional and group plans, frame queue
//   - [keyboard]: Chord parsing, bindings and the command dispatcher
//   - [workspace]: Saved layouts over memory, file, Redis or MongoDB storage
//   - [render]: Text previews, SVG drawings and adjacency graphs
//   - [api]: HTTP surface over a store
//   - [errors]: Error codes shared by every package
//   - [observability]: Hooks for commits, frames and storage I/O
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/layout
// [store]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/store
// [history]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/history
// [drag]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/drag
// [resize]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/resize
// [keyboard]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/keyboard
// [frame]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/frame
// [workspace]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/workspace
// [render]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/render
// [api]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/panels/pkg/observability
package pkg
