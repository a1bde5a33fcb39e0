package client

import (
	"fmt"
	"net/http"

	"github.com/erazemk/zbirka/internal/metrics"
)

// Option mutates the Client during New.
type Option func(*Client) error

// WithHTTPClient injects a custom *http.Client. Config.Timeout does not
// apply to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithConfig replaces the transport settings.
func WithConfig(cfg Config) Option {
	return func(c *Client) error {
		if cfg.MaxAttempts < 1 {
			return fmt.Errorf("max attempts must be at least 1, got %d", cfg.MaxAttempts)
		}
		c.cfg = cfg
		return nil
	}
}

// WithMetrics records retries on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) error {
		c.metrics = m
		return nil
	}
}
