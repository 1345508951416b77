// Package store is the single source of truth for a panel layout.
//
// A [Store] owns the panels, the ordered selection, grid settings, the
// viewport, transient drag and resize state, and the undo history. Every
// exported method is one atomic action: it runs to completion under the
// store lock, and any action that changes panels, selection or viewport
// records a history snapshot. In-progress drag and resize updates are
// transient and only their End commit is recorded.
//
// # Unknown ids
//
// Actions that reference a panel id that does not exist are no-ops, not
// errors. UI events routinely race with deletion.
//
// # Observers
//
// Render consumers call [Store.Subscribe] to receive an [Event] after each
// action. Listeners run after the lock is released and may call back into
// the store.
//
//	s := store.New(store.Options{})
//	unsubscribe := s.Subscribe(func(e store.Event) {
//	    redraw(s.State())
//	})
//	defer unsubscribe()
//
//	p := s.AddPanel(store.PanelSpec{Kind: "notes"})
//	s.SelectPanel(p.ID, false)
package store
