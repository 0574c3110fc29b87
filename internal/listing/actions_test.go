package listing

import (
	"context"
	"errors"
	"testing"

	"listconsole/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestView_Actions(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	api := &pagedList{total: 25}

	var (
		edited   pagination.Row
		bulkRows []pagination.Row
		bulkIDs  []string
		exported bool
	)
	errDelete := errors.New("delete refused")

	cfg := testConfig(api.List, nil)
	cfg.RowActions = []RowAction{
		{Icon: "edit", OnClick: func(_ context.Context, row pagination.Row) error { edited = row; return nil }},
	}
	cfg.BulkActions = []BulkAction{
		{ID: "delete", Icon: "trash", Run: func(_ context.Context, rows []pagination.Row, ids []string) error {
			bulkRows, bulkIDs = rows, ids
			return errDelete
		}},
	}
	cfg.Header.MenuItems = []Action{
		{ID: "export", Label: "Export CSV", OnClick: func(context.Context) error { exported = true; return nil }},
	}

	v := newTestView(t, cfg)
	defer v.Close()
	require.NoError(t, v.Mount(ctx))
	waitState(t, v, succeededOnPage(1))

	require.NoError(t, v.RunRowAction(ctx, "edit", "4"))
	assert.Equal(t, "item-4", edited["name"])

	assert.ErrorIs(t, v.RunRowAction(ctx, "edit", "14"), ErrRowNotFound)
	assert.ErrorIs(t, v.RunRowAction(ctx, "view", "4"), ErrUnknownAction)

	_, err := v.ToggleSelection("2")
	require.NoError(t, err)
	_, err = v.ToggleSelection("21")
	require.NoError(t, err)

	err = v.RunBulkAction(ctx, "delete")
	assert.ErrorIs(t, err, errDelete, "callback errors are passed through")
	assert.Len(t, bulkRows, 10)
	assert.Equal(t, []string{"2", "21"}, bulkIDs)
	assert.Equal(t, []string{"2", "21"}, v.Selected(), "the engine does not clear the selection itself")

	assert.ErrorIs(t, v.RunBulkAction(ctx, "archive"), ErrUnknownAction)

	require.NoError(t, v.RunHeaderAction(ctx, "export"))
	assert.True(t, exported)
	assert.ErrorIs(t, v.RunHeaderAction(ctx, "import"), ErrUnknownAction)
}
