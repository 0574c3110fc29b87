package pagination

// Shape names one of the upstream payload layouts Normalize understands.
type Shape string

const (
	ShapeFlat         Shape = "flat"          // {data, page, limit, totalPages, totalRecords}
	ShapeNested       Shape = "nested"        // {data, pagination:{page, limit, ...}}
	ShapeDoubleNested Shape = "double_nested" // {data, pagination:{pagination:{...}}}
	ShapeLaravel      Shape = "laravel"       // {data, pagination:{current_page, per_page, last_page, total}}
)

// Shapes lists every layout Denormalize can produce.
var Shapes = []Shape{ShapeFlat, ShapeNested, ShapeDoubleNested, ShapeLaravel}

// Denormalize renders r in the given upstream layout. It is the inverse of
// Normalize and is what fake upstreams in tests serve.
func Denormalize(r Result, shape Shape) map[string]any {
	rows := make([]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, map[string]any(row))
	}

	fields := map[string]any{
		"page":       r.CurrentPage,
		"limit":      r.PageSize,
		"totalPages": r.TotalPages,
	}
	if r.TotalRecords != nil {
		fields["totalRecords"] = *r.TotalRecords
	}

	switch shape {
	case ShapeNested:
		return map[string]any{"data": rows, "pagination": fields}
	case ShapeDoubleNested:
		return map[string]any{"data": rows, "pagination": map[string]any{"pagination": fields}}
	case ShapeLaravel:
		laravel := map[string]any{
			"current_page": r.CurrentPage,
			"per_page":     r.PageSize,
			"last_page":    r.TotalPages,
		}
		if r.TotalRecords != nil {
			laravel["total"] = *r.TotalRecords
		}
		return map[string]any{"data": rows, "pagination": laravel}
	default:
		fields["data"] = rows
		return fields
	}
}
