// Package api implements the HTTP client for the marketplace backend. It
// covers the full REST contract the client consumes: item CRUD, account
// registration and login, profile updates, the conversation list, and chat
// history. Authentication is a bearer token read from a credential source on
// every authorized call; no call retries on failure.
package api

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

	"github.com/google/uuid"

	"github.com/campusmarket/market-client/internal/auth"
	"github.com/campusmarket/market-client/internal/metrics"
)

// DefaultTimeout bounds every REST call issued by the client.
const DefaultTimeout = 10 * time.Second

// CredentialSource supplies the stored login for authorized calls.
// *auth.FileStore and *auth.RedisStore both satisfy it.
type CredentialSource interface {
	Load(ctx context.Context) (auth.Credentials, error)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string

	// Credentials supplies the bearer token for authorized calls.
	Credentials CredentialSource

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Logger receives request failures. Nil means slog.Default().
	Logger *slog.Logger
}

// Client talks to the marketplace backend.
type Client struct {
	baseURL string
	creds   CredentialSource
	httpc   *http.Client
	logger  *slog.Logger
}

// New creates a Client from the given configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		creds:   cfg.Credentials,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// request describes one REST call.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	authed      bool
}

// do issues the request and decodes a 2xx JSON body into out (out may be
// nil for responses without a useful body). Non-2xx statuses become *Error
// or *ValidationError values.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if r.authed {
		if c.creds == nil {
			return fmt.Errorf("api: no credential source configured: %w", ErrUnauthorized)
		}
		creds, err := c.creds.Load(ctx)
		if errors.Is(err, auth.ErrNoCredentials) {
			return fmt.Errorf("api: not logged in: %w", ErrUnauthorized)
		}
		if err != nil {
			return fmt.Errorf("api: load credentials: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(r.method, "error").Inc()
		return fmt.Errorf("api: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()
	metrics.RequestsTotal.WithLabelValues(r.method, metrics.StatusClass(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp.StatusCode, body)
		c.logger.Warn("backend request failed",
			"method", r.method,
			"path", r.path,
			"status", resp.StatusCode,
		)
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", r.method, r.path, err)
	}
	return nil
}

// getJSON issues an unauthenticated GET.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, request{method: http.MethodGet, path: path}, out)
}

// getJSONAuthed issues a bearer-authorized GET.
func (c *Client) getJSONAuthed(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, authed: true}, out)
}

// jsonBody marshals v for a JSON request body.
func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("api: encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
