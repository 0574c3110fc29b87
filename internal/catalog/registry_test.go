package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"listconsole/internal/listing"
	"listconsole/internal/pagination"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
upstreams:
  geo:
    base_url: %s
views:
  - name: countries
    entity: country
    title: Countries
    upstream: geo
    list_path: /countries
    search_path: /countries/search
    page_size: 2
    selection: true
    search_bar: true
    columns:
      - { key: id, label: ID, visible: true }
      - { key: code, label: Code, visible: true, format: upper }
    header_actions:
      - { id: create, kind: link, href: /countries/new }
      - { id: reload, kind: refresh }
    row_actions:
      - { id: edit, kind: link, href: "/countries/{id}/edit" }
      - { id: disable, kind: webhook, path: "/countries/{id}/disable" }
    bulk_actions:
      - { id: archive, kind: webhook, path: /countries/archive }
  - name: countries-lite
    entity: country
    upstream: geo
    list_path: /countries
    columns:
      - { key: id, label: ID, visible: true }
`

type fakeGeo struct {
	mu    sync.Mutex
	posts map[string]json.RawMessage
}

func (f *fakeGeo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var body json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.posts[r.URL.Path] = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	page := r.URL.Query().Get("page")
	if page == "" {
		page = "1"
	}
	fmt.Fprintf(w, `{"data":[{"id":1,"code":"ke"},{"id":2,"code":"ug"}],"pagination":{"page":%s,"limit":2,"totalPages":3,"totalRecords":6}}`, page)
}

func (f *fakeGeo) post(path string) (json.RawMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.posts[path]
	return b, ok
}

func newTestRegistry(t *testing.T) (*Registry, *fakeGeo) {
	t.Helper()
	geo := &fakeGeo{posts: map[string]json.RawMessage{}}
	srv := httptest.NewServer(geo)
	t.Cleanup(srv.Close)

	c, err := Parse([]byte(fmt.Sprintf(testCatalog, srv.URL)))
	require.NoError(t, err)
	return FromCatalog(c, 5, 0), geo
}

func mountView(t *testing.T, r *Registry, name string) *listing.View {
	t.Helper()
	cfg, err := r.Build(name)
	require.NoError(t, err)
	v, err := listing.NewView(cfg, listing.WithLogger(zerolog.Nop()), listing.WithDebounce(0))
	require.NoError(t, err)
	require.NoError(t, v.Mount(context.Background()))
	t.Cleanup(v.Close)
	require.Eventually(t, func() bool { return v.State().Status == listing.StatusSuccess }, 2*time.Second, 5*time.Millisecond)
	return v
}

func TestRegistry_BuildAndFetch(t *testing.T) {
	r, _ := newTestRegistry(t)
	v := mountView(t, r, "countries")

	st := v.State()
	assert.Equal(t, 3, st.Result.TotalPages)
	require.Len(t, st.Result.Rows, 2)

	snap := v.Snapshot(context.Background())
	assert.Equal(t, "Countries", snap.Title)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "KE", snap.Rows[0].Cells["code"])

	require.NoError(t, v.SetPage(2))
	require.Eventually(t, func() bool {
		s := v.State()
		return s.Status == listing.StatusSuccess && s.Result.CurrentPage == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRegistry_UnknownView(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Build("planograms")
	assert.ErrorIs(t, err, ErrViewNotFound)
	_, err = r.EntityChanged("planogram")
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestRegistry_Views(t *testing.T) {
	r, _ := newTestRegistry(t)
	infos := r.Views()
	require.Len(t, infos, 2)
	assert.Equal(t, "countries", infos[0].Name)
	assert.True(t, infos[0].Searchable)
	assert.Equal(t, "countries-lite", infos[1].Name)
	assert.False(t, infos[1].Searchable)
}

func TestRegistry_ViewsOfOneEntityShareCoordinator(t *testing.T) {
	r, _ := newTestRegistry(t)
	a := mountView(t, r, "countries")
	b := mountView(t, r, "countries-lite")

	_, err := a.ToggleSelection("1")
	require.NoError(t, err)

	token, err := r.EntityChanged("country")
	require.NoError(t, err)
	assert.Equal(t, 1, token)
	assert.Equal(t, 1, a.RefreshToken())
	assert.Equal(t, 1, b.RefreshToken())
	assert.Empty(t, a.Selected())
}

func TestRegistry_LinkActions(t *testing.T) {
	r, _ := newTestRegistry(t)
	v := mountView(t, r, "countries")

	ctx, out := WithOutcome(context.Background())
	require.NoError(t, v.RunRowAction(ctx, "edit", "2"))
	assert.Equal(t, "/countries/2/edit", out.Href)

	ctx, out = WithOutcome(context.Background())
	require.NoError(t, v.RunHeaderAction(ctx, "create"))
	assert.Equal(t, "/countries/new", out.Href)

	assert.ErrorIs(t, v.RunRowAction(context.Background(), "edit", "99"), listing.ErrRowNotFound)
}

func TestRegistry_WebhookActionsRefreshEntity(t *testing.T) {
	r, geo := newTestRegistry(t)
	v := mountView(t, r, "countries")

	ctx, out := WithOutcome(context.Background())
	require.NoError(t, v.RunRowAction(ctx, "disable", "1"))
	body, ok := geo.post("/countries/1/disable")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":1,"code":"ke"}`, string(body))
	assert.True(t, out.Posted)
	assert.Equal(t, 1, out.Token)

	require.Eventually(t, func() bool { return v.State().Status == listing.StatusSuccess }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, v.SelectPage())

	ctx, out = WithOutcome(context.Background())
	require.NoError(t, v.RunBulkAction(ctx, "archive"))
	body, ok = geo.post("/countries/archive")
	require.True(t, ok)
	assert.JSONEq(t, `{"ids":["1","2"]}`, string(body))
	assert.Equal(t, 2, out.Targets)
	assert.Equal(t, 2, out.Token)
	assert.Empty(t, v.Selected(), "refresh clears the selection")

	assert.ErrorContains(t, v.RunBulkAction(context.Background(), "archive"), "nothing selected")
}

func TestRegistry_RefreshHeaderAction(t *testing.T) {
	r, _ := newTestRegistry(t)
	v := mountView(t, r, "countries")

	ctx, out := WithOutcome(context.Background())
	require.NoError(t, v.RunHeaderAction(ctx, "reload"))
	assert.Equal(t, 1, out.Token)
	assert.Equal(t, 1, v.RefreshToken())
}

func TestExpand(t *testing.T) {
	got, err := expand("/vendors/{id}/sites/{site_code}", pagination.Row{"id": json.Number("12"), "site_code": "a b"})
	require.NoError(t, err)
	assert.Equal(t, "/vendors/12/sites/a%20b", got)

	_, err = expand("/vendors/{uuid}", pagination.Row{"id": 1})
	assert.EqualError(t, err, `row has no "uuid" for "/vendors/{uuid}"`)
}
