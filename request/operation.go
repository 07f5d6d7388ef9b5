package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/xraph/netqueue/backoff"
	"github.com/xraph/netqueue/id"
	"github.com/xraph/netqueue/scope"
	"github.com/xraph/netqueue/task"
)

// DefaultMaxBody caps how much of a response body is kept.
const DefaultMaxBody = 10 << 20

// Response is the captured result of the last attempt.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Operation is one HTTP request run as a task. It tracks its own state
// through the embedded Status.
type Operation struct {
	*task.Status

	id      id.TaskID
	method  string
	rawURL  string
	host    string
	header  http.Header
	body    []byte
	client  *http.Client
	retries int
	backoff backoff.Strategy
	timeout time.Duration
	maxBody int64
	scope   scope.Scope

	mu       sync.Mutex
	resp     *Response
	attempts int
}

// Option configures an Operation.
type Option func(*Operation)

// WithHeader adds a request header.
func WithHeader(key, value string) Option {
	return func(o *Operation) { o.header.Add(key, value) }
}

// WithBody sets the request body and its content type.
func WithBody(body []byte, contentType string) Option {
	return func(o *Operation) {
		o.body = body
		if contentType != "" {
			o.header.Set("Content-Type", contentType)
		}
	}
}

// WithClient sets the HTTP client. Defaults to http.DefaultClient.
func WithClient(c *http.Client) Option {
	return func(o *Operation) { o.client = c }
}

// WithRetries sets how many times a retryable failure is retried.
func WithRetries(n int) Option {
	return func(o *Operation) { o.retries = max(n, 0) }
}

// WithBackoff sets the wait between retries. Defaults to backoff.Default.
func WithBackoff(s backoff.Strategy) Option {
	return func(o *Operation) { o.backoff = s }
}

// WithTimeout bounds the whole operation, retries included.
func WithTimeout(d time.Duration) Option {
	return func(o *Operation) { o.timeout = d }
}

// WithMaxBody caps how many response body bytes are kept.
func WithMaxBody(n int64) Option {
	return func(o *Operation) { o.maxBody = n }
}

// WithScopeFrom runs the operation under the forge scope found in ctx.
func WithScopeFrom(ctx context.Context) Option {
	return func(o *Operation) { o.scope = scope.Capture(ctx) }
}

// New creates an operation for method and rawURL.
func New(method, rawURL string, opts ...Option) *Operation {
	o := &Operation{
		Status:  task.NewStatus(),
		id:      id.NewRequestID(),
		method:  strings.ToUpper(method),
		rawURL:  rawURL,
		header:  make(http.Header),
		client:  http.DefaultClient,
		backoff: backoff.Default(),
		maxBody: DefaultMaxBody,
	}
	if u, err := url.Parse(rawURL); err == nil {
		o.host = strings.ToLower(u.Host)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ID implements task.Task.
func (o *Operation) ID() id.TaskID { return o.id }

// Name implements task.Task.
func (o *Operation) Name() string { return o.method + " " + o.rawURL }

// Key implements task.Keyed with the target host.
func (o *Operation) Key() string { return o.host }

// Timeout implements task.Timed.
func (o *Operation) Timeout() time.Duration { return o.timeout }

// ScopeAppID implements task.Scoped.
func (o *Operation) ScopeAppID() string { return o.scope.AppID }

// ScopeOrgID implements task.Scoped.
func (o *Operation) ScopeOrgID() string { return o.scope.OrgID }

// Response returns the last response received, or nil.
func (o *Operation) Response() *Response {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resp
}

// Attempts returns how many HTTP round trips were made.
func (o *Operation) Attempts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempts
}

// Run implements task.Task. It returns nil for 1xx-3xx responses and a
// *StatusError for 4xx and 5xx once retries are exhausted.
func (o *Operation) Run(ctx context.Context) error {
	if o.host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, o.rawURL)
	}

	var err error
	for attempt := 0; attempt <= o.retries; attempt++ {
		if attempt > 0 {
			if werr := backoff.Wait(ctx, o.backoff.Delay(attempt)); werr != nil {
				return werr
			}
		}

		var resp *Response
		resp, err = o.roundTrip(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			continue
		}

		o.mu.Lock()
		o.resp = resp
		o.mu.Unlock()

		if resp.StatusCode < http.StatusBadRequest {
			return nil
		}
		err = &StatusError{StatusCode: resp.StatusCode}
		if !retryable(resp.StatusCode) {
			return err
		}
	}
	return err
}

func (o *Operation) roundTrip(ctx context.Context) (*Response, error) {
	o.mu.Lock()
	o.attempts++
	o.mu.Unlock()

	var body io.Reader
	if o.body != nil {
		body = bytes.NewReader(o.body)
	}
	req, err := http.NewRequestWithContext(ctx, o.method, o.rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header = o.header.Clone()

	res, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, o.maxBody))
	if err != nil {
		return nil, fmt.Errorf("request: read body: %w", err)
	}
	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       data,
	}, nil
}
