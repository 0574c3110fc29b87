package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"listconsole/internal/listing"
	"listconsole/internal/source"

	"github.com/rs/zerolog/log"
)

var (
	ErrViewNotFound   = errors.New("view not found")
	ErrEntityNotFound = errors.New("entity not found")
)

// ViewInfo is the public description of a catalog view.
type ViewInfo struct {
	Name       string           `json:"name"`
	Entity     string           `json:"entity"`
	Title      string           `json:"title"`
	PageSize   int              `json:"pageSize"`
	Searchable bool             `json:"searchable"`
	Selection  bool             `json:"selection"`
	Columns    []listing.Column `json:"columns"`
}

type entry struct {
	spec   ViewSpec
	remote *source.Remote
}

// Registry holds the catalog views and one refresh coordinator per entity.
type Registry struct {
	views        map[string]entry
	coordinators map[string]*listing.RefreshCoordinator
	mu           sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		views:        make(map[string]entry),
		coordinators: make(map[string]*listing.RefreshCoordinator),
	}
}

// FromCatalog builds a registry with one upstream client per catalog upstream.
func FromCatalog(c *Catalog, timeoutSec int, maxRetries uint64) *Registry {
	clients := make(map[string]*source.HTTPClient, len(c.Upstreams))
	for name, up := range c.Upstreams {
		clients[name] = source.NewHTTPClient(name, up.BaseURL, timeoutSec, maxRetries)
	}

	r := NewRegistry()
	for _, spec := range c.Views {
		up := c.Upstreams[spec.Upstream]
		remote := source.NewRemote(clients[spec.Upstream], spec.ListPath, spec.SearchPath, spec.Params.toSource(), up.Headers)
		r.Register(spec, remote)
	}
	return r
}

// Register adds a view. Views of the same entity share a coordinator.
func (r *Registry) Register(spec ViewSpec, remote *source.Remote) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.views[spec.Name] = entry{spec: spec, remote: remote}
	if _, ok := r.coordinators[spec.Entity]; !ok {
		r.coordinators[spec.Entity] = listing.NewRefreshCoordinator()
	}
	log.Info().
		Str("view", spec.Name).
		Str("entity", spec.Entity).
		Int("columns", len(spec.Columns)).
		Msg("registered view")
}

func (r *Registry) get(name string) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.views[name]
	if !ok {
		return entry{}, fmt.Errorf("%w: %s", ErrViewNotFound, name)
	}
	return e, nil
}

// Views describes every registered view, sorted by name.
func (r *Registry) Views() []ViewInfo {
	r.mu.RLock()
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)

	infos := make([]ViewInfo, 0, len(names))
	for _, name := range names {
		e, err := r.get(name)
		if err != nil {
			continue
		}
		infos = append(infos, ViewInfo{
			Name:       e.spec.Name,
			Entity:     e.spec.Entity,
			Title:      e.spec.Title,
			PageSize:   e.spec.PageSize,
			Searchable: e.spec.SearchPath != "",
			Selection:  e.spec.Selection,
			Columns:    columns(e.spec),
		})
	}
	return infos
}

// Coordinator returns the refresh coordinator of entity.
func (r *Registry) Coordinator(entity string) (*listing.RefreshCoordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coordinators[entity]
	return c, ok
}

// EntityChanged bumps the entity's refresh token; every mounted view of the
// entity refetches and drops its selection.
func (r *Registry) EntityChanged(entity string) (int, error) {
	c, ok := r.Coordinator(entity)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	token := c.Bump()
	log.Debug().Str("entity", entity).Int("token", token).Msg("entity changed")
	return token, nil
}

// Build returns a fresh view config for name.
func (r *Registry) Build(name string) (listing.ViewConfig, error) {
	e, err := r.get(name)
	if err != nil {
		return listing.ViewConfig{}, err
	}
	spec := e.spec
	coord, _ := r.Coordinator(spec.Entity)

	cfg := listing.ViewConfig{
		Name:    spec.Name,
		Columns: columns(spec),
		API:     e.remote.API(),
		Header: listing.Header{
			Title:               spec.Title,
			SearchBarEnabled:    spec.SearchBar,
			ColumnFilterEnabled: spec.ColumnFilters,
		},
		Footer: listing.Footer{
			ShowPrevNext:   spec.Footer.PrevNext,
			ShowPagination: spec.Footer.Pagination,
		},
		PersistenceKey:      spec.PersistenceKey,
		PageSizeDefault:     spec.PageSize,
		RowSelectionEnabled: spec.Selection,
		Refresh:             coord,
	}
	for _, a := range spec.HeaderActions {
		cfg.Header.Actions = append(cfg.Header.Actions, r.headerAction(spec, a))
	}
	for _, a := range spec.RowActions {
		cfg.RowActions = append(cfg.RowActions, r.rowAction(spec, e.remote, a))
	}
	for _, a := range spec.BulkActions {
		cfg.BulkActions = append(cfg.BulkActions, r.bulkAction(spec, e.remote, a))
	}
	if err := cfg.Validate(); err != nil {
		return listing.ViewConfig{}, fmt.Errorf("view %s: %w", name, err)
	}
	return cfg, nil
}

func columns(spec ViewSpec) []listing.Column {
	cols := make([]listing.Column, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		// formats were checked when the catalog was parsed
		render, _ := source.Renderer(c.Format, c.Key)
		cols = append(cols, listing.Column{
			Key:              c.Key,
			Label:            c.Label,
			VisibleByDefault: c.Visible,
			Sortable:         c.Sortable,
			Filterable:       c.Filterable,
			Render:           render,
		})
	}
	return cols
}
