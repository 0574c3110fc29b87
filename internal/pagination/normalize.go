package pagination

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize converts a raw upstream payload into a Result.
//
// requestedPage and requestedPageSize fill in page and limit when the payload
// does not carry them; a missing page count defaults to 1. CurrentPage is
// clamped to [1, TotalPages] when the upstream reported its page count; without
// one the requested page is echoed back. A nil or unrecognised payload yields
// an empty single-page result.
func Normalize(raw any, requestedPage, requestedPageSize int) Result {
	raw = decodeBytes(raw)

	res := Result{
		Rows:        extractRows(raw),
		CurrentPage: requestedPage,
		PageSize:    requestedPageSize,
		TotalPages:  1,
	}

	containers := paginationContainers(raw)
	if v, ok := lookupInt(containers, pageFields); ok {
		res.CurrentPage = v
	}
	if v, ok := lookupInt(containers, limitFields); ok && v > 0 {
		res.PageSize = v
	}
	pagesKnown := false
	if v, ok := lookupInt(containers, totalPagesFields); ok {
		res.TotalPages = v
		pagesKnown = true
	}
	if v, ok := lookupInt(containers, totalRecordsFields); ok && v >= 0 {
		total := v
		res.TotalRecords = &total
	}

	if res.TotalPages < 1 {
		res.TotalPages = 1
	}
	if res.CurrentPage < 1 {
		res.CurrentPage = 1
	}
	if pagesKnown && res.CurrentPage > res.TotalPages {
		res.CurrentPage = res.TotalPages
	}
	return res
}

// decodeBytes lets callers hand over an undecoded JSON body.
func decodeBytes(raw any) any {
	var b []byte
	switch v := raw.(type) {
	case []byte:
		b = v
	case json.RawMessage:
		b = v
	default:
		return raw
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

// paginationContainers returns the objects that may hold pagination fields,
// deepest first: pagination.pagination, pagination, meta, data, root. A data
// object is a container too, since Laravel paginators are often wrapped in
// {"data": {...}} whole.
func paginationContainers(raw any) []map[string]any {
	root, ok := asMap(raw)
	if !ok {
		return nil
	}
	var out []map[string]any
	if p, ok := asMap(root["pagination"]); ok {
		if pp, ok := asMap(p["pagination"]); ok {
			out = append(out, pp)
		}
		out = append(out, p)
	}
	if m, ok := asMap(root["meta"]); ok {
		out = append(out, m)
	}
	if d, ok := asMap(root["data"]); ok {
		out = append(out, d)
	}
	return append(out, root)
}

func lookupInt(containers []map[string]any, names []string) (int, bool) {
	for _, c := range containers {
		for _, name := range names {
			v, present := c[name]
			if !present {
				continue
			}
			if n, ok := toInt(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func extractRows(raw any) []Row {
	if rows, ok := asRows(raw); ok {
		return rows
	}
	root, ok := asMap(raw)
	if !ok {
		return []Row{}
	}
	for _, name := range rowFields {
		v, present := root[name]
		if !present {
			continue
		}
		if rows, ok := asRows(v); ok {
			return rows
		}
		if inner, ok := asMap(v); ok {
			for _, nested := range nestedRowFields {
				if rows, ok := asRows(inner[nested]); ok {
					return rows
				}
			}
		}
	}
	return []Row{}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Row:
		return m, true
	}
	return nil, false
}

func asRows(v any) ([]Row, bool) {
	switch list := v.(type) {
	case []Row:
		return list, true
	case []map[string]any:
		rows := make([]Row, 0, len(list))
		for _, m := range list {
			rows = append(rows, Row(m))
		}
		return rows, true
	case []any:
		rows := make([]Row, 0, len(list))
		for _, item := range list {
			if m, ok := asMap(item); ok {
				rows = append(rows, Row(m))
			}
		}
		return rows, true
	}
	return nil, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
