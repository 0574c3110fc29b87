package listing

import (
	"context"
	"fmt"

	"listconsole/internal/pagination"
)

// Dispatcher binds configured actions to the current page and selection.
// It only hands data to callbacks; it never changes anything by itself.
type Dispatcher struct {
	header   []Action
	row      []RowAction
	bulk     []BulkAction
	rows     func() []pagination.Row
	selected func() []string
}

func NewDispatcher(cfg ViewConfig, rows func() []pagination.Row, selected func() []string) *Dispatcher {
	header := append(append([]Action{}, cfg.Header.Actions...), cfg.Header.MenuItems...)
	return &Dispatcher{
		header:   header,
		row:      cfg.RowActions,
		bulk:     cfg.BulkActions,
		rows:     rows,
		selected: selected,
	}
}

// Row runs row action actionID against the row with rowID on the current page.
func (d *Dispatcher) Row(ctx context.Context, actionID, rowID string) error {
	var action *RowAction
	for i := range d.row {
		if d.row[i].ID == actionID {
			action = &d.row[i]
			break
		}
	}
	if action == nil {
		return fmt.Errorf("%w: row action %q", ErrUnknownAction, actionID)
	}

	for _, row := range d.rows() {
		if id, ok := pagination.RowID(row); ok && id == rowID {
			return action.OnClick(ctx, row)
		}
	}
	return fmt.Errorf("%w: %q", ErrRowNotFound, rowID)
}

// Bulk runs bulk action actionID with the current page rows and the selected
// ids. Selected ids may belong to pages that are not loaded.
func (d *Dispatcher) Bulk(ctx context.Context, actionID string) error {
	for _, action := range d.bulk {
		if action.ID == actionID {
			return action.Run(ctx, d.rows(), d.selected())
		}
	}
	return fmt.Errorf("%w: bulk action %q", ErrUnknownAction, actionID)
}

// Header runs a header action or menu item.
func (d *Dispatcher) Header(ctx context.Context, actionID string) error {
	for _, action := range d.header {
		if action.ID == actionID {
			return action.OnClick(ctx)
		}
	}
	return fmt.Errorf("%w: header action %q", ErrUnknownAction, actionID)
}
