package pagination

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RowID returns the stable identifier of a row: its "id", or failing that its
// "uuid". Numeric identifiers are formatted without exponent.
func RowID(row Row) (string, bool) {
	for _, key := range []string{"id", "uuid"} {
		if id, ok := formatID(row[key]); ok {
			return id, true
		}
	}
	return "", false
}

func formatID(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case json.Number:
		return id.String(), true
	case float64:
		if math.IsNaN(id) || math.IsInf(id, 0) {
			return "", false
		}
		if id == math.Trunc(id) && math.Abs(id) < 1<<53 {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(id), true
	case fmt.Stringer:
		return id.String(), true
	}
	return "", false
}
