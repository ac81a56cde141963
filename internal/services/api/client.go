package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/j-veylop/cursor-dashboard-tui/internal/config"
	"github.com/j-veylop/cursor-dashboard-tui/internal/logger"
)

// TokenSource supplies the stored session token. An empty string means no
// credential is saved.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource holding a fixed token, used when verifying an
// unsaved candidate credential.
type StaticToken string

// Token returns the static token value.
func (t StaticToken) Token() string {
	return string(t)
}

// ClientConfig holds the knobs for the HTTP client.
type ClientConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultClientConfig returns the production endpoint configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   config.DefaultBaseURL,
		UserAgent: config.DefaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Client issues authenticated requests against the Cursor web API. Every
// request carries the session token as a cookie plus a fixed user-agent.
// There is no retry and no timeout beyond the underlying client's.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tokens     TokenSource
}

// NewClient creates an authenticated client reading its token from tokens.
func NewClient(tokens TokenSource, cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		tokens:     tokens,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// WithToken returns a client identical to c but authenticating with the
// given override token. Used to verify a candidate credential before it is
// saved.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.tokens = StaticToken(token)
	return &clone
}

// do performs one authenticated request and returns the status code and raw
// body. A transport-level failure is returned as a KindNetwork error.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, wrapError(KindNetwork, "failed to create request", err)
	}

	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	req.Header.Set("Cookie", config.SessionCookieName+"="+token)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, wrapError(KindNetwork, "request failed", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, wrapError(KindNetwork, "failed to read response body", err)
	}

	return resp.StatusCode, raw, nil
}
