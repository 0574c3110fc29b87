package listing

import (
	"fmt"
	"strings"

	"listconsole/internal/pagination"
)

// Column describes one column of a view. Render, when set, turns the row into
// the cell value; otherwise the row's value under Key is used.
type Column struct {
	Key              string                       `json:"key"`
	Label            string                       `json:"label"`
	VisibleByDefault bool                         `json:"visibleByDefault"`
	Sortable         bool                         `json:"sortable"`
	Filterable       bool                         `json:"filterable"`
	Render           func(row pagination.Row) any `json:"-"`
}

// ColumnRegistry is the immutable column set of one view.
type ColumnRegistry struct {
	columns []Column
	index   map[string]int
}

// NewColumnRegistry validates and copies cols. Keys must be non-empty and unique.
func NewColumnRegistry(cols []Column) (*ColumnRegistry, error) {
	r := &ColumnRegistry{
		columns: make([]Column, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		c.Key = strings.TrimSpace(c.Key)
		if c.Key == "" {
			return nil, fmt.Errorf("%w: column %d has no key", ErrInvalidConfig, i)
		}
		if _, dup := r.index[c.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate column key %q", ErrInvalidConfig, c.Key)
		}
		if c.Label == "" {
			c.Label = c.Key
		}
		r.index[c.Key] = len(r.columns)
		r.columns = append(r.columns, c)
	}
	return r, nil
}

func (r *ColumnRegistry) AllKeys() []string {
	keys := make([]string, len(r.columns))
	for i, c := range r.columns {
		keys[i] = c.Key
	}
	return keys
}

func (r *ColumnRegistry) DefaultVisibleKeys() []string {
	keys := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		if c.VisibleByDefault {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func (r *ColumnRegistry) Column(key string) (Column, bool) {
	i, ok := r.index[key]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

func (r *ColumnRegistry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Columns returns the columns for keys in registry order. Unknown keys are dropped.
func (r *ColumnRegistry) Columns(keys []string) []Column {
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := make([]Column, 0, len(keys))
	for _, c := range r.columns {
		if _, ok := want[c.Key]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Render produces the cells of row for the given column keys.
func (r *ColumnRegistry) Render(row pagination.Row, keys []string) map[string]any {
	cells := make(map[string]any, len(keys))
	for _, c := range r.Columns(keys) {
		if c.Render != nil {
			cells[c.Key] = c.Render(row)
			continue
		}
		cells[c.Key] = row[c.Key]
	}
	return cells
}

// order sorts keys into registry order, dropping unknown and duplicate keys.
func (r *ColumnRegistry) order(keys []string) []string {
	cols := r.Columns(keys)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Key
	}
	return out
}
