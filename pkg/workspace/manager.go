package workspace

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/panels/pkg/errors"
)

// Storage keys used by the Manager.
const (
	IndexKey  = "workspaces.index"
	keyPrefix = "workspace:"
)

// Key returns the storage key for a workspace id.
func Key(id string) string { return keyPrefix + id }

type index struct {
	IDs    []string `json:"ids"`
	Active string   `json:"active,omitempty"`
}

// Manager owns the collection of workspace configs. The in-memory map is
// authoritative for reads; every mutation writes through to storage.
type Manager struct {
	mu      sync.RWMutex
	storage Storage
	logger  *log.Logger
	configs map[string]Config
	active  string

	now   func() time.Time
	newID func() string
}

// NewManager creates a Manager over st. Call Refresh to load what the
// storage already holds.
func NewManager(st Storage, logger *log.Logger) *Manager {
	if st == nil {
		st = NewMemoryStorage()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		storage: st,
		logger:  logger,
		configs: make(map[string]Config),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Storage returns the backing storage.
func (m *Manager) Storage() Storage { return m.storage }

// Save persists cfg. When cfg.ID is empty and a workspace with the same
// name exists, that workspace is updated in place; otherwise a new id is
// assigned. The saved workspace becomes active.
func (m *Manager) Save(ctx context.Context, cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	if cfg.ID == "" {
		if existing, ok := m.byNameLocked(cfg.Name); ok {
			cfg.ID = existing.ID
			cfg.CreatedAt = existing.CreatedAt
		} else {
			cfg.ID = m.newID()
		}
	} else if existing, ok := m.configs[cfg.ID]; ok {
		cfg.CreatedAt = existing.CreatedAt
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now
	cfg = cfg.Clone()

	if err := m.writeLocked(ctx, cfg); err != nil {
		return Config{}, err
	}
	m.configs[cfg.ID] = cfg
	m.active = cfg.ID
	if err := m.writeIndexLocked(ctx); err != nil {
		return Config{}, err
	}

	m.logger.Debug("workspace saved", "id", cfg.ID, "name", cfg.Name, "panels", len(cfg.Panels))
	return cfg.Clone(), nil
}

// Import stores an externally produced config under its own id, or a fresh
// one when it has none. Timestamps are kept when present.
func (m *Manager) Import(ctx context.Context, cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = m.newID()
	}
	now := m.now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = now
	}
	cfg = cfg.Clone()

	if err := m.writeLocked(ctx, cfg); err != nil {
		return Config{}, err
	}
	m.configs[cfg.ID] = cfg
	if err := m.writeIndexLocked(ctx); err != nil {
		return Config{}, err
	}
	return cfg.Clone(), nil
}

// Load returns the workspace with id and marks it active. A config missing
// from memory is looked up in storage before failing with
// WORKSPACE_NOT_FOUND.
func (m *Manager) Load(ctx context.Context, id string) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok {
		var err error
		cfg, ok, err = m.readLocked(ctx, id)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Config{}, errors.New(errors.ErrCodeWorkspaceNotFound, "workspace %q not found", id)
		}
		m.configs[id] = cfg
	}

	if m.active != id {
		m.active = id
		if err := m.writeIndexLocked(ctx); err != nil {
			return Config{}, err
		}
	}
	return cfg.Clone(), nil
}

// Delete removes the workspace. Deleting the active workspace leaves no
// workspace active. Unknown ids fail with WORKSPACE_NOT_FOUND.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.configs[id]; !ok {
		return errors.New(errors.ErrCodeWorkspaceNotFound, "workspace %q not found", id)
	}
	if err := m.storage.Remove(ctx, Key(id)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove workspace %s", id)
	}
	delete(m.configs, id)
	if m.active == id {
		m.active = ""
	}
	return m.writeIndexLocked(ctx)
}

// Get returns a workspace by id without changing the active one.
func (m *Manager) Get(id string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[id]
	if !ok {
		return Config{}, false
	}
	return cfg.Clone(), true
}

// Find returns a workspace by id, or failing that by exact name.
func (m *Manager) Find(idOrName string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cfg, ok := m.configs[idOrName]; ok {
		return cfg.Clone(), true
	}
	if cfg, ok := m.byNameLocked(idOrName); ok {
		return cfg.Clone(), true
	}
	return Config{}, false
}

// List returns all workspaces, most recently updated first.
func (m *Manager) List() []Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Config, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Active returns the active workspace, if any.
func (m *Manager) Active() (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return Config{}, false
	}
	cfg, ok := m.configs[m.active]
	if !ok {
		return Config{}, false
	}
	return cfg.Clone(), true
}

// Refresh rebuilds the in-memory map from the storage index. Entries listed
// in the index but missing from storage are dropped with a warning.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, found, err := m.storage.Get(ctx, IndexKey)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "read workspace index")
	}
	configs := make(map[string]Config)
	var idx index
	if found {
		if err := json.Unmarshal(raw, &idx); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "decode workspace index")
		}
	}
	for _, id := range idx.IDs {
		cfg, ok, err := m.readLocked(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			m.logger.Warn("workspace listed in index is missing", "id", id)
			continue
		}
		configs[id] = cfg
	}
	m.configs = configs
	m.active = ""
	if _, ok := configs[idx.Active]; ok {
		m.active = idx.Active
	}
	return nil
}

func (m *Manager) byNameLocked(name string) (Config, bool) {
	for _, cfg := range m.configs {
		if cfg.Name == name {
			return cfg, true
		}
	}
	return Config{}, false
}

func (m *Manager) readLocked(ctx context.Context, id string) (Config, bool, error) {
	raw, found, err := m.storage.Get(ctx, Key(id))
	if err != nil {
		return Config{}, false, errors.Wrap(errors.ErrCodeStorage, err, "read workspace %s", id)
	}
	if !found {
		return Config{}, false, nil
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, false, errors.Wrap(errors.ErrCodeStorage, err, "decode workspace %s", id)
	}
	return cfg, true, nil
}

func (m *Manager) writeLocked(ctx context.Context, cfg Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode workspace %s", cfg.ID)
	}
	if err := m.storage.Set(ctx, Key(cfg.ID), raw); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write workspace %s", cfg.ID)
	}
	return nil
}

func (m *Manager) writeIndexLocked(ctx context.Context) error {
	idx := index{IDs: make([]string, 0, len(m.configs)), Active: m.active}
	for id := range m.configs {
		idx.IDs = append(idx.IDs, id)
	}
	sort.Strings(idx.IDs)
	raw, err := json.Marshal(idx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode workspace index")
	}
	if err := m.storage.Set(ctx, IndexKey, raw); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write workspace index")
	}
	return nil
}
