// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about store commits, resize queue frames, and storage I/O.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnCommit("endDrag", len(panels))
//	observability.Storage().OnSet(ctx, "redis", key, len(blob), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the layout store.
// Store actions are synchronous and carry no context.
type StoreHooks interface {
	// OnCommit records an action that changed state and recorded history.
	OnCommit(action string, panelCount int)

	// OnRejected records an action that was refused, e.g. a blocked collision.
	OnRejected(action string, reason string)

	// OnHistory records an undo or redo.
	OnHistory(action string, pastLen, futureLen int)
}

// =============================================================================
// Queue Hooks
// =============================================================================

// QueueHooks receives events from the frame-batched resize queue.
type QueueHooks interface {
	// OnFrame records one processed batch.
	OnFrame(applied, conflicts, remaining int, duration time.Duration)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from workspace storage backends.
type StorageHooks interface {
	// OnGet records a read. found is false for a missing key.
	OnGet(ctx context.Context, backend, key string, found bool, err error)

	// OnSet records a write of size bytes.
	OnSet(ctx context.Context, backend, key string, size int, err error)

	// OnRemove records a delete.
	OnRemove(ctx context.Context, backend, key string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnCommit(string, int)       {}
func (NoopStoreHooks) OnRejected(string, string)  {}
func (NoopStoreHooks) OnHistory(string, int, int) {}

// NoopQueueHooks is a no-op implementation of QueueHooks.
type NoopQueueHooks struct{}

func (NoopQueueHooks) OnFrame(int, int, int, time.Duration) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnGet(context.Context, string, string, bool, error) {}
func (NoopStorageHooks) OnSet(context.Context, string, string, int, error)  {}
func (NoopStorageHooks) OnRemove(context.Context, string, string, error)    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks   StoreHooks   = NoopStoreHooks{}
	queueHooks   QueueHooks   = NoopQueueHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	hooksMu      sync.RWMutex
)

// SetStoreHooks registers custom store hooks. Nil is ignored.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetQueueHooks registers custom queue hooks. Nil is ignored.
func SetQueueHooks(h QueueHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queueHooks = h
	}
}

// SetStorageHooks registers custom storage hooks. Nil is ignored.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Queue returns the registered queue hooks.
func Queue() QueueHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queueHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	queueHooks = NoopQueueHooks{}
	storageHooks = NoopStorageHooks{}
}
