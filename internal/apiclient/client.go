// Package apiclient is a Go client for the API used by tooling and
// integration tests. It holds the bearer token pair and refreshes it
// transparently: when a request hits a 401, one refresh runs no matter
// how many requests fail at once, the rest wait for it and retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/auth"
)

// Client talks to the API with automatic token refresh.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu       sync.Mutex
	access   string
	refresh  string
	inflight chan struct{} // non-nil while a refresh is running
	lastErr  error         // outcome of the last finished refresh
}

// New creates a client for a server base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTokens installs a token pair, typically from login.
func (c *Client) SetTokens(pair auth.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = pair.Access
	c.refresh = pair.Refresh
}

// ClearSession drops both tokens.
func (c *Client) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = ""
	c.refresh = ""
}

// Authenticated reports whether a session is installed.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access != ""
}

// Do sends a JSON request with the bearer token attached. On a 401 it
// refreshes the session once and retries; if the refresh fails the
// session is cleared and ErrSessionExpired returned. The caller owns the
// response body.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload, c.accessToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.refreshSession(ctx); err != nil {
		c.ClearSession()
		return nil, apperrors.ErrSessionExpired
	}
	return c.send(ctx, method, path, payload, c.accessToken())
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.HTTPClient.Do(req)
}

// refreshSession runs at most one refresh at a time. Late arrivals wait
// for the in-flight one and share its outcome.
func (c *Client) refreshSession(ctx context.Context) error {
	c.mu.Lock()
	if c.inflight != nil {
		ch := c.inflight
		c.mu.Unlock()
		select {
		case <-ch:
			c.mu.Lock()
			err := c.lastErr
			c.mu.Unlock()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ch := make(chan struct{})
	c.inflight = ch
	refreshToken := c.refresh
	c.mu.Unlock()

	err := c.doRefresh(ctx, refreshToken)

	c.mu.Lock()
	c.lastErr = err
	c.inflight = nil
	close(ch)
	c.mu.Unlock()
	return err
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.ErrSessionExpired
	}
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperrors.ErrSessionExpired
	}

	var session struct {
		Tokens auth.TokenPair `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if session.Tokens.Access == "" {
		return apperrors.ErrSessionExpired
	}
	c.SetTokens(session.Tokens)
	return nil
}
