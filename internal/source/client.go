package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// HTTPClient talks JSON to one upstream entity service.
type HTTPClient struct {
	client          *http.Client
	baseURL         string
	name            string // upstream name for logging
	maxRetries      uint64
	initialInterval time.Duration
}

// NewHTTPClient creates a client with a per-attempt timeout. Transport
// failures and 5xx answers to GET requests are retried up to maxRetries times.
func NewHTTPClient(name, baseURL string, timeoutSec int, maxRetries uint64) *HTTPClient {
	if timeoutSec == 0 {
		timeoutSec = 30
	}
	return &HTTPClient{
		client:          &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		baseURL:         baseURL,
		name:            name,
		maxRetries:      maxRetries,
		initialInterval: 200 * time.Millisecond,
	}
}

// SetRetryInterval sets the first backoff interval.
func (c *HTTPClient) SetRetryInterval(d time.Duration) {
	c.initialInterval = d
}

// Get makes a GET request with the given query parameters.
func (c *HTTPClient) Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (*Response, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, headers, c.maxRetries)
}

// PostJSON makes a POST request with a JSON payload. It is sent once: a
// failed POST may already have had its side effect upstream.
func (c *HTTPClient) PostJSON(ctx context.Context, endpoint string, payload any, headers map[string]string) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+endpoint, body, headers, 0)
}

func (c *HTTPClient) do(ctx context.Context, method, u string, body []byte, headers map[string]string, retries uint64) (*Response, error) {
	var resp *Response
	attempt := 0

	op := func() error {
		attempt++
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "listconsole/"+c.name)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		log.Debug().
			Str("upstream", c.name).
			Str("method", method).
			Str("url", u).
			Int("attempt", attempt).
			Msg("making HTTP request")

		r, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		resp, err = c.read(r)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return resp.Err()
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	notify := func(err error, wait time.Duration) {
		log.Warn().
			Str("upstream", c.name).
			Str("url", u).
			Dur("wait", wait).
			Err(err).
			Msg("upstream call failed, retrying")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx), notify); err != nil {
		log.Error().
			Str("upstream", c.name).
			Str("url", u).
			Int("attempts", attempt).
			Err(err).
			Msg("HTTP request failed")
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, resp.Err()
	}
	return resp, nil
}

func (c *HTTPClient) read(r *http.Response) (*Response, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("upstream", c.name).
		Int("status_code", r.StatusCode).
		Int("body_length", len(body)).
		Msg("received HTTP response")

	return &Response{StatusCode: r.StatusCode, Headers: r.Header, Body: body}, nil
}
