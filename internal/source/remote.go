package source

import (
	"context"
	"net/url"
	"strconv"

	"listconsole/internal/listing"
	"listconsole/internal/pagination"
)

// Params names the query parameters an upstream expects.
type Params struct {
	Page  string
	Limit string
	Query string
	// FilterPrefix is prepended to column keys for column filters, e.g. "filter_".
	FilterPrefix string
}

// DefaultParams matches the most common upstream convention.
var DefaultParams = Params{Page: "page", Limit: "limit", Query: "q"}

// Remote fetches one entity's list and search endpoints.
type Remote struct {
	client     *HTTPClient
	listPath   string
	searchPath string
	params     Params
	headers    map[string]string
}

// NewRemote binds list and search paths on client. An empty searchPath means
// the entity has no search endpoint.
func NewRemote(client *HTTPClient, listPath, searchPath string, params Params, headers map[string]string) *Remote {
	if params.Page == "" {
		params.Page = DefaultParams.Page
	}
	if params.Limit == "" {
		params.Limit = DefaultParams.Limit
	}
	if params.Query == "" {
		params.Query = DefaultParams.Query
	}
	return &Remote{
		client:     client,
		listPath:   listPath,
		searchPath: searchPath,
		params:     params,
		headers:    headers,
	}
}

// List fetches one page. The decoded payload is returned untouched.
func (r *Remote) List(ctx context.Context, req listing.ListRequest) (any, error) {
	q := url.Values{}
	q.Set(r.params.Page, strconv.Itoa(req.Page))
	q.Set(r.params.Limit, strconv.Itoa(req.PageSize))
	r.addFilters(q, req)
	return r.get(ctx, r.listPath, q)
}

// Search fetches results for req.Query. The search contract has no page.
func (r *Remote) Search(ctx context.Context, req listing.ListRequest) (any, error) {
	q := url.Values{}
	q.Set(r.params.Query, req.Query)
	q.Set(r.params.Limit, strconv.Itoa(req.PageSize))
	r.addFilters(q, req)
	return r.get(ctx, r.searchPath, q)
}

// API returns the fetch functions for a view config.
func (r *Remote) API() listing.API {
	api := listing.API{List: r.List}
	if r.searchPath != "" {
		api.Search = r.Search
	}
	return api
}

// Post sends payload to path, used by webhook actions.
func (r *Remote) Post(ctx context.Context, path string, payload any) error {
	resp, err := r.client.PostJSON(ctx, path, payload, r.headers)
	if err != nil {
		return err
	}
	// some services answer 200 with an error envelope
	if v, err := resp.Decode(); err == nil {
		if msg, failed := pagination.DetectError(v); failed {
			return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
		}
	}
	return nil
}

func (r *Remote) addFilters(q url.Values, req listing.ListRequest) {
	for col, v := range req.ColumnFilters {
		if v != "" {
			q.Set(r.params.FilterPrefix+col, v)
		}
	}
}

func (r *Remote) get(ctx context.Context, path string, q url.Values) (any, error) {
	resp, err := r.client.Get(ctx, path, q, r.headers)
	if err != nil {
		return nil, err
	}
	return resp.Decode()
}
