package listing

import (
	"context"
	"maps"

	"listconsole/internal/pagination"
)

// RenderedRow is a row reduced to its visible cells.
type RenderedRow struct {
	ID       string         `json:"id,omitempty"`
	Selected bool           `json:"selected"`
	Cells    map[string]any `json:"cells"`
}

// Snapshot is everything a client needs to draw a view.
type Snapshot struct {
	Name         string            `json:"name"`
	Title        string            `json:"title,omitempty"`
	Mode         Mode              `json:"mode"`
	Status       Status            `json:"status"`
	Loading      bool              `json:"loading"`
	Error        string            `json:"error,omitempty"`
	Page         int               `json:"page"`
	PageSize     int               `json:"pageSize"`
	TotalPages   int               `json:"totalPages"`
	TotalRecords *int              `json:"totalRecords,omitempty"`
	HasNext      bool              `json:"hasNext"`
	HasPrev      bool              `json:"hasPrev"`
	Query        string            `json:"query,omitempty"`
	PendingQuery string            `json:"pendingQuery,omitempty"`
	Filters      map[string]string `json:"filters,omitempty"`
	RefreshToken int               `json:"refreshToken"`
	Columns      []Column          `json:"columns"`
	Rows         []RenderedRow     `json:"rows"`
	Selected     []string          `json:"selected"`
}

// Snapshot renders the current state with the visible columns.
func (v *View) Snapshot(ctx context.Context) Snapshot {
	keys := v.visibility.Get(ctx, v.cfg.PersistenceKey)

	v.mu.Lock()
	st := v.state
	snap := Snapshot{
		Name:         v.cfg.Name,
		Title:        v.cfg.Header.Title,
		Mode:         v.modeLocked(),
		Status:       st.Status,
		Loading:      st.Loading(),
		Error:        st.Err,
		Page:         v.page,
		PageSize:     v.pageSize,
		TotalPages:   1,
		Query:        v.query,
		PendingQuery: v.pendingQuery,
		Filters:      maps.Clone(v.filters),
		RefreshToken: v.token,
	}
	v.mu.Unlock()

	if r := st.Result; r != nil {
		snap.TotalPages = r.TotalPages
		snap.TotalRecords = r.TotalRecords
		snap.HasNext = r.HasNext()
		snap.HasPrev = r.HasPrev()
		if snap.Mode == ModeSearch {
			snap.Page = r.CurrentPage
		}
	}

	snap.Columns = v.registry.Columns(keys)
	snap.Rows = make([]RenderedRow, 0, len(st.Rows()))
	for _, row := range st.Rows() {
		snap.Rows = append(snap.Rows, v.render(row, keys))
	}
	snap.Selected = v.selection.Selected()
	return snap
}

func (v *View) render(row pagination.Row, keys []string) RenderedRow {
	id, _ := pagination.RowID(row)
	return RenderedRow{
		ID:       id,
		Selected: id != "" && v.selection.IsSelected(id),
		Cells:    v.registry.Render(row, keys),
	}
}
