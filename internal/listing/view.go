package listing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"listconsole/internal/pagination"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is how long search input must be quiet before it is applied.
const DefaultDebounce = 300 * time.Millisecond

// Mode is the fetch strategy currently in use.
type Mode string

const (
	ModeList   Mode = "list"
	ModeSearch Mode = "search"
)

type Option func(*View)

func WithLogger(l zerolog.Logger) Option {
	return func(v *View) { v.logger = l }
}

// WithDebounce sets the search debounce. Zero applies search text immediately.
func WithDebounce(d time.Duration) Option {
	return func(v *View) { v.debounce = d }
}

// WithPreferences makes column visibility durable for views with a persistence key.
func WithPreferences(p PreferenceStore) Option {
	return func(v *View) { v.prefs = p }
}

// WithLoadingTracker reports this view's loading state into a shared tracker.
func WithLoadingTracker(t *LoadingTracker) Option {
	return func(v *View) { v.tracker = t }
}

// View is one list engine instance bound to one entity screen.
//
// Every request is tagged with a sequence number; a response is applied only
// if no newer request was issued in the meantime. Superseded calls run to
// completion, their results are dropped.
type View struct {
	cfg        ViewConfig
	registry   *ColumnRegistry
	visibility *VisibilityStore
	selection  *Selection
	dispatcher *Dispatcher
	prefs      PreferenceStore
	tracker    *LoadingTracker
	logger     zerolog.Logger
	debounce   time.Duration
	seq        sequence
	wg         sync.WaitGroup

	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	state        FetchState
	page         int
	pageSize     int
	query        string
	pendingQuery string
	filters      map[string]string
	token        int
	latest       uint64
	timer        *time.Timer
	holdsLoading bool
	mounted      bool
	closed       bool
	unwatch      func()
	listeners    map[int]func(FetchState)
	nextListener int
	queue        []FetchState
	draining     bool
}

// NewView validates cfg and builds an unmounted view. Nothing is fetched
// until Mount.
func NewView(cfg ViewConfig, opts ...Option) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	registry, err := NewColumnRegistry(cfg.Columns)
	if err != nil {
		return nil, err
	}

	v := &View{
		cfg:       cfg,
		registry:  registry,
		selection: NewSelection(),
		logger:    log.With().Str("view", cfg.Name).Logger(),
		debounce:  DefaultDebounce,
		state:     FetchState{Status: StatusIdle},
		page:      1,
		pageSize:  cfg.PageSizeDefault,
		filters:   make(map[string]string),
		listeners: make(map[int]func(FetchState)),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.visibility = NewVisibilityStore(registry, v.prefs, v.logger)
	v.dispatcher = NewDispatcher(v.cfg, v.currentRows, v.selection.Selected)
	if cfg.Refresh != nil {
		v.token = cfg.Refresh.Token()
	}
	return v, nil
}

func (v *View) Config() ViewConfig { return v.cfg }

func (v *View) Registry() *ColumnRegistry { return v.registry }

// Mount starts the view and issues the first fetch. ctx bounds every fetch
// the view makes; it should outlive individual requests.
func (v *View) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.mounted {
		v.mu.Unlock()
		return nil
	}
	v.mounted = true
	v.ctx, v.cancel = context.WithCancel(ctx)
	if v.cfg.Refresh != nil {
		v.unwatch = v.cfg.Refresh.Watch(func(token int) {
			if err := v.SetRefreshToken(token); err != nil && !errors.Is(err, ErrClosed) {
				v.logger.Warn().Err(err).Msg("refresh failed")
			}
		})
	}
	v.fetchLocked()
	v.mu.Unlock()

	v.deliver()
	return nil
}

// Close unmounts the view: pending debounce and watchers are dropped, the
// selection is cleared and in-flight fetches are cancelled. Close does not
// wait for fetch functions to return; use Wait for that.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	unwatch := v.unwatch
	v.releaseLoadingLocked()
	v.selection.Clear()
	v.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	v.logger.Debug().Msg("view closed")
}

// Wait blocks until every fetch the view started has returned or ctx is done.
func (v *View) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		v.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current fetch state.
func (v *View) State() FetchState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modeLocked()
}

// Subscribe calls fn after every state transition until cancel is called.
// fn runs outside the view's lock and may call back into the view. States are
// delivered one at a time in the order they were applied.
func (v *View) Subscribe(fn func(FetchState)) (cancel func()) {
	v.mu.Lock()
	id := v.nextListener
	v.nextListener++
	v.listeners[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.listeners, id)
			v.mu.Unlock()
		})
	}
}

// SetPage navigates to page n in list mode.
func (v *View) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, n)
	}
	return v.mutate(func() (bool, error) {
		if v.searchingLocked() {
			return false, ErrPagingInSearch
		}
		v.page = n
		return true, nil
	})
}

// NextPage moves forward unless the last known page is displayed.
func (v *View) NextPage() error {
	return v.mutate(func() (bool, error) {
		if v.searchingLocked() {
			return false, ErrPagingInSearch
		}
		if r := v.state.Result; r != nil && v.page >= r.TotalPages {
			return false, nil
		}
		v.page++
		return true, nil
	})
}

// PrevPage moves back unless the first page is displayed.
func (v *View) PrevPage() error {
	return v.mutate(func() (bool, error) {
		if v.searchingLocked() {
			return false, ErrPagingInSearch
		}
		if v.page <= 1 {
			return false, nil
		}
		v.page--
		return true, nil
	})
}

// SetPageSize changes the page size and goes back to page 1.
func (v *View) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, n)
	}
	return v.mutate(func() (bool, error) {
		v.pageSize = n
		v.page = 1
		return true, nil
	})
}

// SetSearch records new search text. It is applied once input has been quiet
// for the debounce interval; a changed query always restarts at page 1, and
// an empty query returns to list mode.
func (v *View) SetSearch(query string) error {
	if v.cfg.API.Search == nil {
		return ErrSearchUnsupported
	}
	query = strings.TrimSpace(query)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.pendingQuery = query
	if v.debounce <= 0 {
		v.mu.Unlock()
		return v.applySearch()
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.debounce, v.flushSearch)
	v.mu.Unlock()
	return nil
}

// FlushSearch applies pending search text without waiting for the debounce.
func (v *View) FlushSearch() error {
	if v.cfg.API.Search == nil {
		return ErrSearchUnsupported
	}
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
	}
	v.mu.Unlock()
	return v.applySearch()
}

func (v *View) flushSearch() {
	if err := v.applySearch(); err != nil && !errors.Is(err, ErrClosed) {
		v.logger.Warn().Err(err).Msg("apply search failed")
	}
}

func (v *View) applySearch() error {
	return v.mutate(func() (bool, error) {
		if v.pendingQuery == v.query {
			return false, nil
		}
		v.query = v.pendingQuery
		v.page = 1
		return true, nil
	})
}

// SetColumnFilter sets or, with an empty value, clears a column filter.
func (v *View) SetColumnFilter(column, value string) error {
	if !v.cfg.Header.ColumnFilterEnabled {
		return fmt.Errorf("%w: column filters are disabled", ErrNotFilterable)
	}
	col, ok := v.registry.Column(column)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if !col.Filterable {
		return fmt.Errorf("%w: %q", ErrNotFilterable, column)
	}
	value = strings.TrimSpace(value)

	return v.mutate(func() (bool, error) {
		if v.filters[column] == value {
			return false, nil
		}
		if value == "" {
			delete(v.filters, column)
		} else {
			v.filters[column] = value
		}
		v.page = 1
		return true, nil
	})
}

// SetRefreshToken refetches the current page or query and clears the
// selection whenever token differs from the last one seen.
func (v *View) SetRefreshToken(token int) error {
	return v.mutate(func() (bool, error) {
		if token == v.token {
			return false, nil
		}
		v.token = token
		v.selection.Clear()
		return true, nil
	})
}

// Refresh signals that server data changed. Views bound to a coordinator bump
// it, which refreshes every view watching the same coordinator.
func (v *View) Refresh() error {
	if c := v.cfg.Refresh; c != nil {
		v.mu.Lock()
		closed := v.closed
		v.mu.Unlock()
		if closed {
			return ErrClosed
		}
		c.Bump()
		return nil
	}
	return v.mutate(func() (bool, error) {
		v.token++
		v.selection.Clear()
		return true, nil
	})
}

func (v *View) RefreshToken() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token
}

func (v *View) ToggleSelection(id string) (bool, error) {
	if err := v.selectable(); err != nil {
		return false, err
	}
	return v.selection.Toggle(id), nil
}

func (v *View) SelectPage() error {
	if err := v.selectable(); err != nil {
		return err
	}
	v.selection.SelectAllOnPage(v.currentRows())
	return nil
}

func (v *View) DeselectPage() error {
	if err := v.selectable(); err != nil {
		return err
	}
	v.selection.DeselectPage(v.currentRows())
	return nil
}

func (v *View) ClearSelection() { v.selection.Clear() }

func (v *View) Selected() []string { return v.selection.Selected() }

func (v *View) selectable() error {
	if !v.cfg.RowSelectionEnabled {
		return ErrSelectionDisabled
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	return nil
}

// VisibleColumns returns the columns to render, in definition order.
func (v *View) VisibleColumns(ctx context.Context) []Column {
	return v.registry.Columns(v.visibility.Get(ctx, v.cfg.PersistenceKey))
}

// ToggleColumn flips one column's visibility and persists it.
func (v *View) ToggleColumn(ctx context.Context, column string) ([]string, error) {
	return v.visibility.Toggle(ctx, v.cfg.PersistenceKey, column)
}

func (v *View) RunRowAction(ctx context.Context, actionID, rowID string) error {
	return v.dispatcher.Row(ctx, actionID, rowID)
}

func (v *View) RunBulkAction(ctx context.Context, actionID string) error {
	return v.dispatcher.Bulk(ctx, actionID)
}

func (v *View) RunHeaderAction(ctx context.Context, actionID string) error {
	return v.dispatcher.Header(ctx, actionID)
}

// mutate applies fn under the lock. When fn asks for it and the view is
// mounted, a new fetch is issued and listeners are told about Loading.
func (v *View) mutate(fn func() (refetch bool, err error)) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	refetch, err := fn()
	if err != nil || !refetch || !v.mounted {
		v.mu.Unlock()
		return err
	}
	v.fetchLocked()
	v.mu.Unlock()

	v.deliver()
	return nil
}

func (v *View) fetchLocked() {
	seq := v.seq.Next()
	v.latest = seq

	search := v.searchingLocked()
	req := ListRequest{
		Page:          v.page,
		PageSize:      v.pageSize,
		ColumnFilters: maps.Clone(v.filters),
	}
	if search {
		req.Page = 1
		req.Query = v.query
	}

	v.state = FetchState{Status: StatusLoading, Seq: seq}
	v.queue = append(v.queue, v.state)
	if v.tracker != nil && !v.holdsLoading {
		v.tracker.Acquire()
		v.holdsLoading = true
	}

	v.logger.Debug().
		Uint64("seq", seq).
		Str("mode", string(v.modeLocked())).
		Int("page", req.Page).
		Int("page_size", req.PageSize).
		Str("query", req.Query).
		Msg("fetch issued")

	v.wg.Add(1)
	go v.run(v.ctx, seq, req, search)
}

func (v *View) run(ctx context.Context, seq uint64, req ListRequest, search bool) {
	defer v.wg.Done()

	start := time.Now()
	raw, err := v.call(ctx, req, search)
	took := time.Since(start)

	v.mu.Lock()
	if v.closed || seq != v.latest {
		v.mu.Unlock()
		v.logger.Debug().Uint64("seq", seq).Dur("duration", took).Msg("stale response discarded")
		return
	}

	var next FetchState
	if err != nil {
		next = v.failedLocked(seq, err.Error())
	} else if msg, failed := pagination.DetectError(raw); failed {
		next = v.failedLocked(seq, msg)
	} else {
		res := pagination.Normalize(raw, req.Page, req.PageSize)
		if !search {
			v.page = res.CurrentPage
		}
		next = FetchState{Status: StatusSuccess, Result: &res, Seq: seq}
	}
	v.state = next
	v.queue = append(v.queue, next)
	v.releaseLoadingLocked()
	v.mu.Unlock()

	if next.Status == StatusError {
		v.logger.Warn().Uint64("seq", seq).Dur("duration", took).Str("error", next.Err).Msg("fetch failed")
	} else {
		v.logger.Debug().Uint64("seq", seq).Dur("duration", took).Int("rows", len(next.Result.Rows)).Msg("fetch applied")
	}
	v.deliver()
}

// call runs the fetch function, turning a panic into an error.
func (v *View) call(ctx context.Context, req ListRequest, search bool) (raw any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	if search {
		return v.cfg.API.Search(ctx, req)
	}
	return v.cfg.API.List(ctx, req)
}

// failedLocked drops any previously displayed rows.
func (v *View) failedLocked(seq uint64, msg string) FetchState {
	res := pagination.Empty(v.pageSize)
	return FetchState{Status: StatusError, Result: &res, Err: msg, Seq: seq}
}

func (v *View) releaseLoadingLocked() {
	if v.tracker != nil && v.holdsLoading {
		v.tracker.Release()
		v.holdsLoading = false
	}
}

func (v *View) searchingLocked() bool {
	return v.cfg.API.Search != nil && v.query != ""
}

func (v *View) modeLocked() Mode {
	if v.searchingLocked() {
		return ModeSearch
	}
	return ModeList
}

func (v *View) currentRows() []pagination.Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]pagination.Row(nil), v.state.Rows()...)
}

func (v *View) listenersLocked() []func(FetchState) {
	out := make([]func(FetchState), 0, len(v.listeners))
	for _, fn := range v.listeners {
		out = append(out, fn)
	}
	return out
}

// deliver drains the notification queue. Only one goroutine drains at a time;
// others leave their states for it.
func (v *View) deliver() {
	v.mu.Lock()
	if v.draining {
		v.mu.Unlock()
		return
	}
	v.draining = true
	for len(v.queue) > 0 {
		st := v.queue[0]
		v.queue = v.queue[1:]
		ls := v.listenersLocked()
		v.mu.Unlock()
		for _, fn := range ls {
			fn(st)
		}
		v.mu.Lock()
	}
	v.queue = nil
	v.draining = false
	v.mu.Unlock()
}
