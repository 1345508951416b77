package workspace

import "context"

// NullStorage never stores anything. Useful when persistence should be off.
type NullStorage struct{}

// NewNullStorage creates a null storage.
func NewNullStorage() *NullStorage { return &NullStorage{} }

// Get always reports a missing key.
func (NullStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NullStorage) Set(ctx context.Context, key string, data []byte) error { return nil }

// Remove does nothing.
func (NullStorage) Remove(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (NullStorage) Close() error { return nil }

// Ensure NullStorage implements Storage.
var _ Storage = (*NullStorage)(nil)
