package listing

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"listconsole/internal/pagination"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

var testColumns = []Column{
	{Key: "id", Label: "ID", VisibleByDefault: true},
	{Key: "name", Label: "Name", VisibleByDefault: true, Sortable: true, Filterable: true},
	{Key: "code", Label: "Code", VisibleByDefault: false, Filterable: true},
}

// pagedList serves `total` rows split into pages, in the nested layout.
type pagedList struct {
	total int
	calls atomic.Int32

	mu   sync.Mutex
	reqs []ListRequest
}

func (p *pagedList) List(_ context.Context, req ListRequest) (any, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()
	return pagination.Denormalize(pageOf(p.total, req.Page, req.PageSize, ""), pagination.ShapeNested), nil
}

func (p *pagedList) Search(_ context.Context, req ListRequest) (any, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()
	return pagination.Denormalize(pageOf(p.total, 1, req.PageSize, req.Query), pagination.ShapeLaravel), nil
}

func (p *pagedList) last() ListRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reqs[len(p.reqs)-1]
}

func pageOf(total, page, size int, query string) pagination.Result {
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	rows := []pagination.Row{}
	for i := (page-1)*size + 1; i <= page*size && i <= total; i++ {
		rows = append(rows, pagination.Row{"id": i, "name": "item-" + strconv.Itoa(i) + query, "code": "C" + strconv.Itoa(i)})
	}
	t := total
	return pagination.Result{Rows: rows, CurrentPage: page, PageSize: size, TotalPages: pages, TotalRecords: &t}
}

// gatedAPI parks every call until the test answers it.
type gatedAPI struct {
	calls chan *gatedCall
}

type gatedCall struct {
	req     ListRequest
	search  bool
	respond chan gatedReply
}

type gatedReply struct {
	raw any
	err error
}

func newGatedAPI() *gatedAPI {
	return &gatedAPI{calls: make(chan *gatedCall, 16)}
}

func (g *gatedAPI) List(ctx context.Context, req ListRequest) (any, error) {
	return g.park(ctx, req, false)
}

func (g *gatedAPI) Search(ctx context.Context, req ListRequest) (any, error) {
	return g.park(ctx, req, true)
}

func (g *gatedAPI) park(ctx context.Context, req ListRequest, search bool) (any, error) {
	c := &gatedCall{req: req, search: search, respond: make(chan gatedReply, 1)}
	g.calls <- c
	select {
	case r := <-c.respond:
		return r.raw, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedAPI) next(t *testing.T) *gatedCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(waitFor):
		t.Fatal("no fetch issued")
		return nil
	}
}

func (c *gatedCall) reply(raw any, err error) {
	c.respond <- gatedReply{raw: raw, err: err}
}

func testConfig(list ListFunc, search SearchFunc) ViewConfig {
	return ViewConfig{
		Name:                "countries",
		Columns:             testColumns,
		API:                 API{List: list, Search: search},
		Header:              Header{Title: "Countries", SearchBarEnabled: search != nil, ColumnFilterEnabled: true},
		Footer:              Footer{ShowPrevNext: true, ShowPagination: true},
		PageSizeDefault:     10,
		RowSelectionEnabled: true,
	}
}

func newTestView(t *testing.T, cfg ViewConfig, opts ...Option) *View {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop()), WithDebounce(0)}, opts...)
	v, err := NewView(cfg, opts...)
	require.NoError(t, err)
	return v
}

func waitState(t *testing.T, v *View, cond func(FetchState) bool) FetchState {
	t.Helper()
	require.Eventually(t, func() bool { return cond(v.State()) }, waitFor, 5*time.Millisecond)
	return v.State()
}

func succeededOnPage(page int) func(FetchState) bool {
	return func(s FetchState) bool {
		return s.Status == StatusSuccess && s.Result.CurrentPage == page
	}
}
