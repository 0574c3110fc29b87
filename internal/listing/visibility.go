package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// PreferenceStore persists the visible column keys per persistence key.
// Load reports found=false when nothing was ever saved for key.
type PreferenceStore interface {
	Load(ctx context.Context, key string) (columns []string, found bool, err error)
	Save(ctx context.Context, key string, columns []string) error
}

// MemoryPreferences is a process-local PreferenceStore.
type MemoryPreferences struct {
	mu    sync.RWMutex
	prefs map[string][]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{prefs: make(map[string][]string)}
}

func (m *MemoryPreferences) Load(_ context.Context, key string) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cols, ok := m.prefs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), cols...), true, nil
}

func (m *MemoryPreferences) Save(_ context.Context, key string, columns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = append([]string{}, columns...)
	return nil
}

// VisibilityStore decides which columns of one registry are visible.
//
// With a persistence key, visibility is read from and written to the backend
// on every call. With an empty key (or no backend) it lives in this store only
// and disappears with it.
type VisibilityStore struct {
	registry *ColumnRegistry
	backend  PreferenceStore
	logger   zerolog.Logger

	mu      sync.Mutex
	session map[string][]string
}

func NewVisibilityStore(registry *ColumnRegistry, backend PreferenceStore, logger zerolog.Logger) *VisibilityStore {
	return &VisibilityStore{
		registry: registry,
		backend:  backend,
		logger:   logger,
		session:  make(map[string][]string),
	}
}

func (s *VisibilityStore) durable(key string) bool {
	return key != "" && s.backend != nil
}

// Get returns the visible column keys in registry order. It falls back to the
// registry defaults when nothing is stored or the backend fails.
func (s *VisibilityStore) Get(ctx context.Context, persistenceKey string) []string {
	if !s.durable(persistenceKey) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cols, ok := s.session[persistenceKey]; ok {
			return append([]string(nil), cols...)
		}
		return s.registry.DefaultVisibleKeys()
	}

	cols, found, err := s.backend.Load(ctx, persistenceKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("persistence_key", persistenceKey).Msg("load column preferences failed, using defaults")
		return s.registry.DefaultVisibleKeys()
	}
	if !found {
		return s.registry.DefaultVisibleKeys()
	}
	return s.registry.order(cols)
}

// Toggle flips the visibility of columnKey and persists the result
// immediately. It returns the new visible set. Toggles on the same persistence
// key are serialized across stores, so two views sharing a key never lose
// each other's change.
func (s *VisibilityStore) Toggle(ctx context.Context, persistenceKey, columnKey string) ([]string, error) {
	if !s.registry.Has(columnKey) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, columnKey)
	}

	unlock := toggleLocks.lock(persistenceKey)
	defer unlock()

	current := s.Get(ctx, persistenceKey)
	next := make([]string, 0, len(current)+1)
	removed := false
	for _, k := range current {
		if k == columnKey {
			removed = true
			continue
		}
		next = append(next, k)
	}
	if !removed {
		next = s.registry.order(append(next, columnKey))
	}

	if !s.durable(persistenceKey) {
		s.mu.Lock()
		s.session[persistenceKey] = next
		s.mu.Unlock()
		return append([]string(nil), next...), nil
	}

	if err := s.backend.Save(ctx, persistenceKey, next); err != nil {
		return current, fmt.Errorf("save column preferences %q: %w", persistenceKey, err)
	}
	s.logger.Debug().
		Str("persistence_key", persistenceKey).
		Str("column", columnKey).
		Bool("visible", !removed).
		Msg("column visibility toggled")
	return next, nil
}

var toggleLocks = &keyedMutex{locks: make(map[string]*refMutex)}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key and forgets it when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
