package listing

import (
	"context"
	"fmt"
	"slices"

	"listconsole/internal/pagination"
)

// ListFunc fetches one page in list mode. It returns the raw upstream payload;
// the view normalizes it and checks it for soft errors.
type ListFunc func(ctx context.Context, req ListRequest) (any, error)

// SearchFunc fetches search results for req.Query, at most req.PageSize rows.
type SearchFunc func(ctx context.Context, req ListRequest) (any, error)

// API holds the fetch functions of a view. List is required.
type API struct {
	List   ListFunc
	Search SearchFunc
}

// Action is a header action or a menu item.
type Action struct {
	ID      string
	Icon    string
	Label   string
	OnClick func(ctx context.Context) error
}

// RowAction is bound to one row of the current page.
type RowAction struct {
	ID      string
	Icon    string
	Label   string
	OnClick func(ctx context.Context, row pagination.Row) error
}

// BulkAction receives every row of the current page plus the selected ids.
// It owns confirmation and side effects.
type BulkAction struct {
	ID    string
	Icon  string
	Label string
	Run   func(ctx context.Context, rows []pagination.Row, selected []string) error
}

type Header struct {
	Title               string
	SearchBarEnabled    bool
	ColumnFilterEnabled bool
	Actions             []Action
	MenuItems           []Action
}

type Footer struct {
	ShowPrevNext   bool
	ShowPagination bool
}

// ViewConfig declares one entity list screen.
type ViewConfig struct {
	Name                string
	Columns             []Column
	API                 API
	Header              Header
	Footer              Footer
	PersistenceKey      string
	PageSizeDefault     int
	RowSelectionEnabled bool
	RowActions          []RowAction
	BulkActions         []BulkAction

	// Refresh, when set, is watched by the view: every token change refetches
	// and clears the selection.
	Refresh *RefreshCoordinator
}

// Validate reports configuration mistakes. They are programming errors, not
// data errors, so NewView refuses to build a view from an invalid config.
// Action ids are defaulted on c's own copies of the action slices; slices
// shared with the caller are left untouched.
func (c *ViewConfig) Validate() error {
	if c.API.List == nil {
		return fmt.Errorf("%w: api.list is required", ErrInvalidConfig)
	}
	if c.PageSizeDefault <= 0 {
		return fmt.Errorf("%w: pageSizeDefault must be > 0, got %d", ErrInvalidConfig, c.PageSizeDefault)
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("%w: at least one column is required", ErrInvalidConfig)
	}

	c.Header.Actions = slices.Clone(c.Header.Actions)
	c.Header.MenuItems = slices.Clone(c.Header.MenuItems)
	c.RowActions = slices.Clone(c.RowActions)
	c.BulkActions = slices.Clone(c.BulkActions)

	for i := range c.Header.Actions {
		if err := normalizeAction(&c.Header.Actions[i].ID, c.Header.Actions[i].Icon, c.Header.Actions[i].OnClick == nil); err != nil {
			return fmt.Errorf("header action %d: %w", i, err)
		}
	}
	for i := range c.Header.MenuItems {
		if err := normalizeAction(&c.Header.MenuItems[i].ID, c.Header.MenuItems[i].Icon, c.Header.MenuItems[i].OnClick == nil); err != nil {
			return fmt.Errorf("menu item %d: %w", i, err)
		}
	}
	for i := range c.RowActions {
		if err := normalizeAction(&c.RowActions[i].ID, c.RowActions[i].Icon, c.RowActions[i].OnClick == nil); err != nil {
			return fmt.Errorf("row action %d: %w", i, err)
		}
	}
	for i := range c.BulkActions {
		if err := normalizeAction(&c.BulkActions[i].ID, c.BulkActions[i].Icon, c.BulkActions[i].Run == nil); err != nil {
			return fmt.Errorf("bulk action %d: %w", i, err)
		}
	}
	return nil
}

// normalizeAction falls back to the icon when an action has no id.
func normalizeAction(id *string, icon string, noCallback bool) error {
	if *id == "" {
		*id = icon
	}
	if *id == "" {
		return fmt.Errorf("%w: action needs an id or icon", ErrInvalidConfig)
	}
	if noCallback {
		return fmt.Errorf("%w: action %q has no callback", ErrInvalidConfig, *id)
	}
	return nil
}
