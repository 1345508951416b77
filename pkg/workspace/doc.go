// Package workspace persists named panel layouts.
//
// A [Config] captures the entire panel set, grid settings and viewport of the
// layout at save time. The [Manager] owns the in-memory collection of configs
// and tracks which one is active; actual I/O goes through a [Storage]
// collaborator that only needs atomic get/set/remove of a named blob.
//
// # Backends
//
//   - [MemoryStorage]: process-local map, the default for tests and serve
//   - [FileStorage]: one JSON file per key under a directory (CLI default)
//   - [RedisStorage]: shared storage for multi-process setups
//   - [MongoStorage]: document-per-key collection
//   - [NullStorage]: discards writes
//
// [ScopedStorage] prefixes keys for multi-tenant isolation, and [Instrument]
// reports backend I/O to the observability hooks.
//
// # Usage
//
//	st, err := workspace.Open(ctx, workspace.Options{Backend: workspace.BackendFile, Dir: dir})
//	if err != nil {
//	    return err
//	}
//	mgr := workspace.NewManager(st, logger)
//	if err := mgr.Refresh(ctx); err != nil {
//	    return err
//	}
//	cfg, err := mgr.Save(ctx, workspace.Config{Name: "Dashboard", Panels: panels})
//
// Loading a config replaces the live panel set wholesale; nothing is merged.
package workspace
