package source

import (
	"fmt"
	"strings"
	"time"

	"listconsole/internal/pagination"
)

// Column formats understood by Renderer.
const (
	FormatDate  = "date"
	FormatBool  = "bool"
	FormatUpper = "upper"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// Renderer returns the cell renderer for format applied to column key. An
// empty format means the raw value is shown.
func Renderer(format, key string) (func(pagination.Row) any, error) {
	switch format {
	case "":
		return nil, nil
	case FormatDate:
		return func(row pagination.Row) any {
			s, ok := row[key].(string)
			if !ok {
				return row[key]
			}
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t.Format("2006-01-02")
				}
			}
			return s
		}, nil
	case FormatBool:
		return func(row pagination.Row) any {
			switch v := row[key].(type) {
			case bool:
				return yesNo(v)
			case string:
				return yesNo(v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes"))
			case nil:
				return nil
			default:
				return yesNo(fmt.Sprint(v) == "1")
			}
		}, nil
	case FormatUpper:
		return func(row pagination.Row) any {
			if s, ok := row[key].(string); ok {
				return strings.ToUpper(s)
			}
			return row[key]
		}, nil
	}
	return nil, fmt.Errorf("unknown column format %q", format)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
