package listing

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid view config")
	ErrInvalidPage       = errors.New("page must be >= 1")
	ErrInvalidPageSize   = errors.New("page size must be > 0")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrNotFilterable     = errors.New("column is not filterable")
	ErrSearchUnsupported = errors.New("view has no search function")
	ErrPagingInSearch    = errors.New("paging is not available while searching")
	ErrSelectionDisabled = errors.New("row selection is disabled for this view")
	ErrRowNotFound       = errors.New("row not found on current page")
	ErrUnknownAction     = errors.New("unknown action")
	ErrClosed            = errors.New("view is closed")
)
