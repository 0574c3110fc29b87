package listing

import "fmt"

// ListRequest is what a fetch function is asked for. In search mode Page is
// always 1 and Query is non-empty.
type ListRequest struct {
	Page          int               `json:"page"`
	PageSize      int               `json:"pageSize"`
	Query         string            `json:"query,omitempty"`
	ColumnFilters map[string]string `json:"columnFilters,omitempty"`
}

// Validate checks the request bounds.
func (r ListRequest) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, r.Page)
	}
	if r.PageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, r.PageSize)
	}
	return nil
}
