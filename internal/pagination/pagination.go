// Package pagination turns the list payloads returned by upstream entity
// services into one canonical page shape.
//
// Upstreams disagree on where pagination lives (root, "pagination",
// "pagination.pagination") and on what its fields are called
// (page/current_page, limit/per_page, totalPages/last_page, ...). Everything in
// this package is pure; nothing here performs I/O or returns an error.
package pagination

// Row is one record of a list page, keyed by column key.
type Row map[string]any

// Result is the canonical list page.
type Result struct {
	Rows         []Row `json:"rows"`
	CurrentPage  int   `json:"currentPage"`
	PageSize     int   `json:"pageSize"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords *int  `json:"totalRecords,omitempty"`
}

// Empty returns a result with no rows and a single page.
func Empty(pageSize int) Result {
	return Result{
		Rows:        []Row{},
		CurrentPage: 1,
		PageSize:    pageSize,
		TotalPages:  1,
	}
}

// HasNext reports whether a page after CurrentPage exists.
func (r Result) HasNext() bool { return r.CurrentPage < r.TotalPages }

// HasPrev reports whether a page before CurrentPage exists.
func (r Result) HasPrev() bool { return r.CurrentPage > 1 }

// Field precedence per logical field. The first name found wins.
var (
	pageFields         = []string{"page", "current_page", "currentPage"}
	limitFields        = []string{"limit", "per_page", "perPage", "pageSize", "page_size"}
	totalPagesFields   = []string{"totalPages", "total_pages", "last_page", "lastPage"}
	totalRecordsFields = []string{"totalRecords", "total", "total_records", "totalCount", "total_count"}

	rowFields       = []string{"data", "rows", "items", "results"}
	nestedRowFields = []string{"items", "rows", "data"}
)
