// Package client talks to a zbirka server over its HTTP API. A Client
// implements the same Backend as the local store, so the CLI and the item
// lifecycle controller work unchanged against a remote catalogue.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/metrics"
)

// Client is a remote catalogue. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	cfg     Config
	metrics *metrics.Collector
}

// New constructs a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.cfg.Timeout}
	}
	return c, nil
}

// request describes one API call. body is kept as bytes so the call can be
// replayed on retry.
type request struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	// retry is false for calls that are unsafe to repeat, e.g. creating an item.
	retry bool
}

func jsonRequest(op, method, path string, payload any, retry bool) (request, error) {
	req := request{op: op, method: method, path: path, retry: retry}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("%s: encoding request: %w", op, err)
		}
		req.body = data
		req.contentType = "application/json"
	}
	return req, nil
}

// do runs req, retrying recoverable failures with exponential backoff, and
// returns the successful response. The caller closes its body.
func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.BaseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = c.cfg.MaxInterval
	exp.Reset()

	attempts := 1
	if req.retry {
		attempts = c.cfg.MaxAttempts
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.once(ctx, req)
		if err == nil {
			return resp, nil
		}
		if IsIrrecoverable(err) || attempt >= attempts || ctx.Err() != nil {
			return nil, err
		}

		wait := exp.NextBackOff()
		slog.Debug("retrying request", "op", req.op, "attempt", attempt, "wait", wait, "error", err)
		c.metrics.RecordClientRetry(req.op)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", req.op, ctx.Err())
		}
	}
}

func (c *Client) once(ctx context.Context, req request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", req.op, err)
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", req.op, err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, networkError(req.op, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var errBody api.ErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &errBody) != nil {
		errBody.Error = strings.TrimSpace(string(data))
	}
	return nil, httpError(req.op, resp.StatusCode, errBody)
}

// call runs req and decodes a JSON response into out, if out is not nil.
func (c *Client) call(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", req.op, err)
	}
	return nil
}
