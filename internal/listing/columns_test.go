package listing

import (
	"strings"
	"testing"

	"listconsole/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRegistry(t *testing.T) {
	reg, err := NewColumnRegistry([]Column{
		{Key: "id", VisibleByDefault: true},
		{Key: "name", Label: "Name", VisibleByDefault: true},
		{Key: "code", Label: "Code", Render: func(r pagination.Row) any { return strings.ToUpper(r["code"].(string)) }},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "code"}, reg.AllKeys())
	assert.Equal(t, []string{"id", "name"}, reg.DefaultVisibleKeys())

	col, ok := reg.Column("id")
	require.True(t, ok)
	assert.Equal(t, "id", col.Label, "label defaults to key")
	_, ok = reg.Column("missing")
	assert.False(t, ok)

	cols := reg.Columns([]string{"code", "missing", "id"})
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Key)
	assert.Equal(t, "code", cols[1].Key)

	cells := reg.Render(pagination.Row{"id": 1, "name": "Kenya", "code": "ke"}, []string{"name", "code"})
	assert.Equal(t, map[string]any{"name": "Kenya", "code": "KE"}, cells)
}

func TestColumnRegistry_Invalid(t *testing.T) {
	_, err := NewColumnRegistry([]Column{{Key: " "}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewColumnRegistry([]Column{{Key: "a"}, {Key: "a "}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
