package listing

import "listconsole/internal/pagination"

// Status is the tag of FetchState.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FetchState is the fetch status of one view. Result is set in Success and
// Error (where it is an empty single page); Err is set in Error only. Seq is
// the tag of the request the state belongs to.
type FetchState struct {
	Status Status             `json:"status"`
	Result *pagination.Result `json:"result,omitempty"`
	Err    string             `json:"error,omitempty"`
	Seq    uint64             `json:"seq"`
}

func (s FetchState) Loading() bool { return s.Status == StatusLoading }

// Rows returns the rows of the current result, if any.
func (s FetchState) Rows() []pagination.Row {
	if s.Result == nil {
		return nil
	}
	return s.Result.Rows
}
