package workspace

import "context"

// ScopedStorage prepends a prefix to every key of an inner Storage, so
// several users or profiles can share one backend.
//
//	alice := NewScopedStorage(shared, "user:alice:")
//	bob := NewScopedStorage(shared, "user:bob:")
type ScopedStorage struct {
	inner  Storage
	prefix string
}

// NewScopedStorage wraps inner with prefix. A nil inner falls back to memory.
func NewScopedStorage(inner Storage, prefix string) *ScopedStorage {
	if inner == nil {
		inner = NewMemoryStorage()
	}
	return &ScopedStorage{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix.
func (s *ScopedStorage) Prefix() string { return s.prefix }

func (s *ScopedStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStorage) Set(ctx context.Context, key string, data []byte) error {
	return s.inner.Set(ctx, s.prefix+key, data)
}

func (s *ScopedStorage) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

// Close closes the inner storage.
func (s *ScopedStorage) Close() error { return s.inner.Close() }

var _ Storage = (*ScopedStorage)(nil)
