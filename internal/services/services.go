// package services defines clients for the remote media tagging APIs
//
// Upload, search, tag editing, deletion, settings forwarding
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/mbb-dev/birdtag/internal/auth"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// TokenSource supplies the current ID token for Authorization headers.
// *session.Store satisfies it.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource, useful in tests.
type StaticToken string

// Token returns the static token value.
func (s StaticToken) Token() string { return string(s) }

// Client carries the HTTP plumbing shared by all API services: connection
// reuse, request throttling, and Bearer authorization.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	logger     *log.Logger
}

// NewClient creates a Client from the API configuration. A nil httpClient
// gets a default with the configured timeout applied.
func NewClient(cfg shared.APIConfig, httpClient *http.Client, tokens TokenSource, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.RequestBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		tokens:     tokens,
		logger:     logger,
	}
}

// authorize sets the Authorization header, failing when no session exists.
// A token with a readable exp claim in the past is treated as absent, so
// an expired session never reaches the network. Opaque tokens pass; their
// validity is the gateway's call.
func (c *Client) authorize(req *http.Request) error {
	token := c.tokens.Token()
	if token == "" {
		return shared.ErrNotAuthenticated
	}
	if exp, err := auth.TokenExpiry(token); err == nil && !exp.After(time.Now()) {
		return fmt.Errorf("log in again: %w", shared.ErrTokenExpired)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// doJSON performs an authenticated request with an optional JSON payload
// and returns the raw response body.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	return c.send(req)
}

// send throttles, executes, and reads a prepared request.
func (c *Client) send(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(data))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, detail)
	}

	return data, nil
}
