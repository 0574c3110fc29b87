package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPrefs struct{}

func (failingPrefs) Load(context.Context, string) ([]string, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func (failingPrefs) Save(context.Context, string, []string) error {
	return errors.New("redis: connection refused")
}

// slowPrefs widens the window between reading and writing preferences.
type slowPrefs struct {
	*MemoryPreferences
	delay time.Duration
}

func (s slowPrefs) Load(ctx context.Context, key string) ([]string, bool, error) {
	time.Sleep(s.delay)
	return s.MemoryPreferences.Load(ctx, key)
}

func testRegistry(t *testing.T) *ColumnRegistry {
	t.Helper()
	reg, err := NewColumnRegistry(testColumns)
	require.NoError(t, err)
	return reg
}

func TestVisibilityStore_PersistsPerKey(t *testing.T) {
	ctx := context.Background()
	prefs := NewMemoryPreferences()

	first := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())
	assert.Equal(t, []string{"id", "name"}, first.Get(ctx, "countries"))

	visible, err := first.Toggle(ctx, "countries", "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, visible)

	visible, err = first.Toggle(ctx, "countries", "code")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "code"}, visible)

	// A fresh store over the same backend is a reload of the view.
	reloaded := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())
	assert.Equal(t, []string{"id", "code"}, reloaded.Get(ctx, "countries"))
	assert.Equal(t, []string{"id", "name"}, reloaded.Get(ctx, "regions"))
}

func TestVisibilityStore_SessionOnlyWithoutKey(t *testing.T) {
	ctx := context.Background()
	prefs := NewMemoryPreferences()

	s := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())
	_, err := s.Toggle(ctx, "", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, s.Get(ctx, ""))

	other := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())
	assert.Equal(t, []string{"id", "name"}, other.Get(ctx, ""))

	noBackend := NewVisibilityStore(testRegistry(t), nil, zerolog.Nop())
	_, err = noBackend.Toggle(ctx, "countries", "code")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "code"}, noBackend.Get(ctx, "countries"))
}

func TestVisibilityStore_AllHiddenIsRemembered(t *testing.T) {
	ctx := context.Background()
	s := NewVisibilityStore(testRegistry(t), NewMemoryPreferences(), zerolog.Nop())

	_, err := s.Toggle(ctx, "k", "id")
	require.NoError(t, err)
	visible, err := s.Toggle(ctx, "k", "name")
	require.NoError(t, err)
	assert.Empty(t, visible)
	assert.Empty(t, s.Get(ctx, "k"))
}

func TestVisibilityStore_StaleKeysAreDropped(t *testing.T) {
	ctx := context.Background()
	prefs := NewMemoryPreferences()
	require.NoError(t, prefs.Save(ctx, "countries", []string{"legacy", "code", "id"}))

	s := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())
	assert.Equal(t, []string{"id", "code"}, s.Get(ctx, "countries"))
}

func TestVisibilityStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewVisibilityStore(testRegistry(t), failingPrefs{}, zerolog.Nop())

	assert.Equal(t, []string{"id", "name"}, s.Get(ctx, "countries"), "backend failure falls back to defaults")

	visible, err := s.Toggle(ctx, "countries", "name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, []string{"id", "name"}, visible)

	_, err = s.Toggle(ctx, "countries", "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestView_ColumnVisibilityPersistsAcrossMounts(t *testing.T) {
	ctx := context.Background()
	prefs := NewMemoryPreferences()
	api := &pagedList{total: 3}

	cfg := testConfig(api.List, nil)
	cfg.PersistenceKey = "user-1:countries"
	v := newTestView(t, cfg, WithPreferences(prefs))
	_, err := v.ToggleColumn(ctx, "name")
	require.NoError(t, err)
	v.Close()

	again := newTestView(t, cfg, WithPreferences(prefs))
	defer again.Close()
	cols := again.VisibleColumns(ctx)
	require.Len(t, cols, 1)
	assert.Equal(t, "id", cols[0].Key)

	cfg.PersistenceKey = "user-2:countries"
	other := newTestView(t, cfg, WithPreferences(prefs))
	defer other.Close()
	assert.Len(t, other.VisibleColumns(ctx), 2)
}

func TestVisibilityStore_ConcurrentTogglesKeepBothChanges(t *testing.T) {
	ctx := context.Background()
	prefs := slowPrefs{MemoryPreferences: NewMemoryPreferences(), delay: 20 * time.Millisecond}
	require.NoError(t, prefs.Save(ctx, "countries", []string{"id"}))

	// Two views of the same screen share the backend but not the store.
	a := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())
	b := NewVisibilityStore(testRegistry(t), prefs, zerolog.Nop())

	var wg sync.WaitGroup
	for store, col := range map[*VisibilityStore]string{a: "name", b: "code"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Toggle(ctx, "countries", col)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"id", "name", "code"}, a.Get(ctx, "countries"))
	assert.Empty(t, toggleLocks.locks)
}

func TestVisibilityStore_ConcurrentSessionToggles(t *testing.T) {
	ctx := context.Background()
	store := NewVisibilityStore(testRegistry(t), nil, zerolog.Nop())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Toggle(ctx, "", "code")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// An even number of flips lands back on the defaults.
	assert.Equal(t, []string{"id", "name"}, store.Get(ctx, ""))
}
