package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"listconsole/internal/pagination"
)

// Response is a fully read upstream answer.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode parses the body as JSON, keeping numbers as json.Number. An empty
// body decodes to nil.
func (r *Response) Decode() (any, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode upstream body: %w", err)
	}
	return v, nil
}

// Err describes a non-2xx answer, preferring the message the upstream sent.
func (r *Response) Err() error {
	msg := ""
	if v, err := r.Decode(); err == nil {
		if m, ok := pagination.DetectError(v); ok {
			msg = m
		} else if m, ok := v.(map[string]any); ok {
			if s, ok := m["message"].(string); ok {
				msg = s
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(r.Body))
	}
	if msg == "" || len(msg) > 200 {
		msg = http.StatusText(r.StatusCode)
	}
	return &UpstreamError{StatusCode: r.StatusCode, Message: msg}
}

// UpstreamError is a non-2xx answer from an upstream service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}
