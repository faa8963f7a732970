// Package logseq is a client for the HTTP API server built into the Logseq
// desktop app. Every call is a POST to /api naming a plugin API method and its
// positional arguments; the response body is the method's JSON return value.
package logseq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://127.0.0.1:12315"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// ErrNotFound is returned when the host answers null for a lookup.
var ErrNotFound = errors.New("logseq: not found")

// APIError carries a non-2xx answer from the host.
type APIError struct {
	Method string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("logseq: %s returned HTTP %d", e.Method, e.Status)
	}
	return fmt.Sprintf("logseq: %s returned HTTP %d: %s", e.Method, e.Status, e.Body)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

// Call invokes one API method and returns the raw JSON result.
func (c *Client) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(request{Method: method, Args: args})
	if err != nil {
		return nil, fmt.Errorf("logseq: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("logseq: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logseq: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Method: method, Status: resp.StatusCode, Body: strings.TrimSpace(string(errBody))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("logseq: reading %s response: %w", method, err)
	}
	c.logger.Debug("logseq call", "method", method, "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start))
	return raw, nil
}

func (c *Client) callInto(ctx context.Context, out any, method string, args ...any) error {
	raw, err := c.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return ErrNotFound
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("logseq: decoding %s response: %w", method, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
