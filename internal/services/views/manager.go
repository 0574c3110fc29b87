package views

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"listconsole/internal/catalog"
	"listconsole/internal/domain/preference"
	"listconsole/internal/listing"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Instance is one mounted view owned by one user.
type Instance struct {
	ID       string
	ViewName string
	UserID   string
	View     *listing.View
	Mounted  time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (i *Instance) touch(now time.Time) {
	i.mu.Lock()
	i.lastSeen = now
	i.mu.Unlock()
}

func (i *Instance) LastSeen() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastSeen
}

// LoadingStatus is the console-wide loading indicator.
type LoadingStatus struct {
	Busy  bool `json:"busy"`
	Count int  `json:"count"`
}

// Manager mounts catalog views per user and tracks the live instances.
type Manager struct {
	registry  *catalog.Registry
	prefs     listing.PreferenceStore
	loading   *listing.LoadingTracker
	debounce  time.Duration
	now       func() time.Time
	mu        sync.RWMutex
	instances map[string]*Instance
}

// NewManager creates a view manager. prefs may be nil for session-only
// column visibility.
func NewManager(registry *catalog.Registry, prefs listing.PreferenceStore, debounce time.Duration) *Manager {
	return &Manager{
		registry:  registry,
		prefs:     prefs,
		loading:   listing.NewLoadingTracker(),
		debounce:  debounce,
		now:       time.Now,
		instances: make(map[string]*Instance),
	}
}

// Mount builds and starts a view for userID. The view outlives ctx's
// cancellation but keeps its values; Unmount stops it.
func (m *Manager) Mount(ctx context.Context, viewName, userID string) (*Instance, error) {
	cfg, err := m.registry.Build(viewName)
	if err != nil {
		if errors.Is(err, catalog.ErrViewNotFound) {
			return nil, &NotFoundError{Kind: "view", ID: viewName}
		}
		return nil, &ServiceError{Op: "build_view", Err: err}
	}
	cfg.PersistenceKey = preference.Scoped(userID, cfg.PersistenceKey)

	id := uuid.NewString()
	opts := []listing.Option{
		listing.WithLogger(log.With().Str("view", viewName).Str("instance", id).Logger()),
		listing.WithDebounce(m.debounce),
		listing.WithLoadingTracker(m.loading),
	}
	if m.prefs != nil {
		opts = append(opts, listing.WithPreferences(m.prefs))
	}
	v, err := listing.NewView(cfg, opts...)
	if err != nil {
		return nil, &ServiceError{Op: "new_view", Err: err}
	}

	now := m.now()
	inst := &Instance{
		ID:       id,
		ViewName: viewName,
		UserID:   userID,
		View:     v,
		Mounted:  now,
		lastSeen: now,
	}
	m.mu.Lock()
	m.instances[id] = inst
	m.mu.Unlock()

	if err := v.Mount(context.WithoutCancel(ctx)); err != nil {
		m.remove(id)
		return nil, &ServiceError{Op: "mount_view", Err: err}
	}

	log.Info().
		Str("view", viewName).
		Str("instance", id).
		Str("user", userID).
		Msg("view mounted")
	return inst, nil
}

// Get returns the instance if userID owns it.
func (m *Manager) Get(id, userID string) (*Instance, error) {
	m.mu.RLock()
	inst, ok := m.instances[id]
	m.mu.RUnlock()
	if !ok || inst.UserID != userID {
		return nil, &NotFoundError{Kind: "instance", ID: id}
	}
	inst.touch(m.now())
	return inst, nil
}

// Unmount stops the instance and forgets it.
func (m *Manager) Unmount(id, userID string) error {
	if _, err := m.Get(id, userID); err != nil {
		return err
	}
	if inst := m.remove(id); inst != nil {
		inst.View.Close()
		log.Info().Str("instance", id).Str("view", inst.ViewName).Msg("view unmounted")
	}
	return nil
}

func (m *Manager) remove(id string) *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst := m.instances[id]
	delete(m.instances, id)
	return inst
}

// EntityChanged refreshes every mounted view of entity.
func (m *Manager) EntityChanged(entity string) (int, error) {
	token, err := m.registry.EntityChanged(entity)
	if err != nil {
		if errors.Is(err, catalog.ErrEntityNotFound) {
			return 0, &NotFoundError{Kind: "entity", ID: entity}
		}
		return 0, &ServiceError{Op: "entity_changed", Err: err}
	}
	return token, nil
}

func (m *Manager) Views() []catalog.ViewInfo { return m.registry.Views() }

// Loading reports how many mounted views are fetching.
func (m *Manager) Loading() LoadingStatus {
	n := m.loading.Count()
	return LoadingStatus{Busy: n > 0, Count: n}
}

// Instances returns userID's mounted views, oldest first.
func (m *Manager) Instances(userID string) []*Instance {
	m.mu.RLock()
	out := make([]*Instance, 0)
	for _, inst := range m.instances {
		if inst.UserID == userID {
			out = append(out, inst)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].Mounted.Before(out[b].Mounted) })
	return out
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// Sweep unmounts instances not accessed within idle and returns how many.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var stale []*Instance
	for id, inst := range m.instances {
		if inst.LastSeen().Before(cutoff) {
			stale = append(stale, inst)
			delete(m.instances, id)
		}
	}
	m.mu.Unlock()

	for _, inst := range stale {
		inst.View.Close()
		log.Debug().
			Str("instance", inst.ID).
			Str("view", inst.ViewName).
			Time("last_seen", inst.LastSeen()).
			Msg("idle view unmounted")
	}
	return len(stale)
}

// Close unmounts everything.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.instances
	m.instances = make(map[string]*Instance)
	m.mu.Unlock()

	for _, inst := range all {
		inst.View.Close()
	}
	log.Info().Int("count", len(all)).Msg("all views unmounted")
}
