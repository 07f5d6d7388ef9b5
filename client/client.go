// Package client is a Go client for the HTTP API a netqueue Forge
// extension mounts (see the api package).
//
//	c := client.New("https://svc.internal/v1", client.WithToken("nq_..."))
//	stats, err := c.Stats(ctx)
//	err = c.SetConcurrency(ctx, 8)
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/xraph/netqueue/api"
	"github.com/xraph/netqueue/id"
)

// Client talks to a remote queue's API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the API rooted at baseURL, which includes the
// version prefix (".../v1").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("netqueue/client: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Stats returns the queue snapshot.
func (c *Client) Stats(ctx context.Context) (*api.StatsResponse, error) {
	var out api.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/queue", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelAll cancels every queued task.
func (c *Client) CancelAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/queue/cancel", nil)
}

// SetConcurrency sets the queue-wide limit.
func (c *Client) SetConcurrency(ctx context.Context, n int) error {
	return c.do(ctx, http.MethodPost, "/queue/concurrency/"+strconv.Itoa(n), nil)
}

// Suspend stops the queue starting pending tasks.
func (c *Client) Suspend(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/queue/suspend", nil)
}

// Resume lets the queue start pending tasks again.
func (c *Client) Resume(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/queue/resume", nil)
}

// CancelTask cancels one task.
func (c *Client) CancelTask(ctx context.Context, taskID id.TaskID) error {
	return c.do(ctx, http.MethodPost, "/tasks/"+taskID.String()+"/cancel", nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("netqueue/client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("netqueue/client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("netqueue/client: request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("netqueue/client: decode response: %w", err)
	}
	return nil
}
