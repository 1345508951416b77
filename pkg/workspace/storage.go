package workspace

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/panels/pkg/errors"
	"github.com/matzehuels/panels/pkg/observability"
)

// Storage is the key-value collaborator behind the Manager.
// Implementations must make each call atomic for a single key; no
// durability is assumed beyond "what was set is later gotten".
type Storage interface {
	// Get returns the blob stored under key. A missing key reports
	// found=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNull   = "null"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend string

	// Dir is the FileStorage root.
	Dir string

	RedisAddr   string
	RedisPrefix string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Scope, when set, prefixes every key (see ScopedStorage).
	Scope string

	Logger *log.Logger
}

// Open constructs the backend named by opts.Backend, wrapped with
// instrumentation. An empty backend selects memory.
func Open(ctx context.Context, opts Options) (Storage, error) {
	var (
		st  Storage
		err error
	)
	switch opts.Backend {
	case "", BackendMemory:
		st = NewMemoryStorage()
	case BackendNull:
		st = NewNullStorage()
	case BackendFile:
		dir := opts.Dir
		if dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file storage requires a directory")
		}
		st, err = NewFileStorage(filepath.Clean(dir))
	case BackendRedis:
		st, err = NewRedisStorage(ctx, RedisOptions{Addr: opts.RedisAddr, Prefix: opts.RedisPrefix})
	case BackendMongo:
		st, err = NewMongoStorage(ctx, MongoOptions{
			URI:        opts.MongoURI,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s storage", opts.Backend)
	}

	if opts.Scope != "" {
		st = NewScopedStorage(st, opts.Scope)
	}
	name := opts.Backend
	if name == "" {
		name = BackendMemory
	}
	return Instrument(st, name, opts.Logger), nil
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	inner   Storage
	backend string
	logger  *log.Logger
}

// Instrument wraps st so every call is reported to observability.Storage()
// and failures are logged at error level.
func Instrument(st Storage, backend string, logger *log.Logger) Storage {
	if logger == nil {
		logger = log.Default()
	}
	return &instrumented{inner: st, backend: backend, logger: logger}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	data, found, err := s.inner.Get(ctx, key)
	observability.Storage().OnGet(ctx, s.backend, key, found, err)
	if err != nil {
		s.logger.Error("storage get failed", "backend", s.backend, "key", key, "err", err)
	} else {
		s.logger.Debug("storage get", "backend", s.backend, "key", key, "found", found, "took", time.Since(start))
	}
	return data, found, err
}

func (s *instrumented) Set(ctx context.Context, key string, data []byte) error {
	err := s.inner.Set(ctx, key, data)
	observability.Storage().OnSet(ctx, s.backend, key, len(data), err)
	if err != nil {
		s.logger.Error("storage set failed", "backend", s.backend, "key", key, "err", err)
	}
	return err
}

func (s *instrumented) Remove(ctx context.Context, key string) error {
	err := s.inner.Remove(ctx, key)
	observability.Storage().OnRemove(ctx, s.backend, key, err)
	if err != nil {
		s.logger.Error("storage remove failed", "backend", s.backend, "key", key, "err", err)
	}
	return err
}

func (s *instrumented) Close() error { return s.inner.Close() }

func (s *instrumented) String() string { return fmt.Sprintf("%s storage", s.backend) }
