package remote

import (
	"net/http"
	"strings"
	"time"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the base URL of the remote activities service.
// A trailing slash is stripped so path joining stays predictable.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout bounds each request to the remote service.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}
