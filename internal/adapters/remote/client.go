// Package remote wraps read and write calls against the activities service,
// mapping HTTP outcomes to success/failure values the controller can act on.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mergington/signup/internal/domain/model"
	"github.com/mergington/signup/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 10 * time.Second
)

// Operation names used for metrics labels.
const (
	opList       = "list"
	opRegister   = "register"
	opUnregister = "unregister"
)

// Outcome is the result of a mutation call. OK mirrors the HTTP status class;
// Message carries the server's success text, Detail its error text (optional).
type Outcome struct {
	OK      bool
	Message string
	Detail  string
}

// Client talks to the remote activities service. It performs no retries,
// idempotency keying, or request deduplication; a double submit issues two
// requests.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
}

// New creates a Client with default configuration.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}

	return c
}

// List fetches the wholesale activities snapshot from GET /activities.
// Transport and decode failures come back as wrapped sentinel errors.
func (c *Client) List(ctx context.Context) (model.Activities, error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamLatency(opList, float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/activities", nil)
	if err != nil {
		metrics.RecordUpstreamRequest(opList, "error")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(opList, "error")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamRequest(opList, "error")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	var activities model.Activities
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		metrics.RecordUpstreamRequest(opList, "error")
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	metrics.RecordUpstreamRequest(opList, "ok")
	return activities, nil
}

// Register signs email up for the named activity via
// POST /activities/{name}/signup?email={email}.
func (c *Client) Register(ctx context.Context, activity, email string) (Outcome, error) {
	return c.mutate(ctx, http.MethodPost, opRegister, activity, email)
}

// Unregister removes email from the named activity via
// DELETE /activities/{name}/signup?email={email}.
func (c *Client) Unregister(ctx context.Context, activity, email string) (Outcome, error) {
	return c.mutate(ctx, http.MethodDelete, opUnregister, activity, email)
}

// mutate issues a write keyed by activity name and participant email.
// Both are percent-encoded for URL safety; an empty email is sent as-is since
// the server is the authority on validation.
func (c *Client) mutate(ctx context.Context, method, op, activity, email string) (Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstreamLatency(op, float64(time.Since(start).Milliseconds()))
	}()

	endpoint := fmt.Sprintf("%s/activities/%s/signup?email=%s",
		c.baseURL, url.PathEscape(activity), url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		metrics.RecordUpstreamRequest(op, "error")
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(op, "error")
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest(op, "error")
		return Outcome{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		var ack struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &ack); err != nil {
			metrics.RecordUpstreamRequest(op, "error")
			return Outcome{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		metrics.RecordUpstreamRequest(op, "ok")
		return Outcome{OK: true, Message: ack.Message}, nil
	}

	var fail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &fail); err != nil {
		metrics.RecordUpstreamRequest(op, "error")
		return Outcome{}, fmt.Errorf("%w: status %d: %w", ErrDecode, resp.StatusCode, err)
	}
	metrics.RecordUpstreamRequest(op, "rejected")
	return Outcome{OK: false, Detail: fail.Detail}, nil
}
