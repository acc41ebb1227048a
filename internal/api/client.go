// Package api is the HTTP client for the scheduling backend: the three
// event collections, the task mutations and the lookups.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/telecontrol-mt/calendario/internal/clierr"
)

const (
	loginPath = "/login"
	maxBody   = 16 << 20
)

// MsgLoginRequired is returned when the server redirects to its login page.
const MsgLoginRequired = "sesión no iniciada: configure el usuario con " +
	"'calendario config set server.username USUARIO'"

// Result is the {success, message} envelope every mutation returns.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Err returns nil on success, otherwise a ServerRejected error carrying
// the server message, or fallback when the server sent none.
func (r Result) Err(fallback string) error {
	if r.Success {
		return nil
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = fallback
	}
	return clierr.New(clierr.ServerRejected, msg)
}

// Client talks to one backend. It keeps the session cookie in memory.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying transport client. Its cookie jar
// is kept when set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, clierr.Newf(clierr.InvalidInput, "invalid server url %q", baseURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	c := &Client{base: u, http: &http.Client{Jar: jar}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func transportErr(path string, err error) error {
	return clierr.Wrap(clierr.Transport, fmt.Sprintf("%s: %v", path, err), err)
}

// do sends the request and returns the body. Redirects to the login page
// are reported as Unauthenticated.
func (c *Client) do(req *http.Request, path string) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, transportErr(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, transportErr(path, err)
	}
	if resp.Request != nil && resp.Request.URL.Path == loginPath && path != loginPath {
		return 0, nil, clierr.New(clierr.Unauthenticated, MsgLoginRequired)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return 0, nil, transportErr(path, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, path)
}

// getJSON fetches path and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	status, body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return clierr.Newf(clierr.Transport, "%s: HTTP %d", path, status).
			WithDetails(map[string]any{"status": status})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return transportErr(path, err)
	}
	return nil
}

// postResult posts a JSON body and decodes the {success, message}
// envelope. A decodable envelope is returned whatever the HTTP status; a
// non-2xx status never counts as success.
func (c *Client) postResult(ctx context.Context, path string, payload any) (Result, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encoding %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(data))
	if err != nil {
		return Result{}, transportErr(path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req, path)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return Result{}, transportErr(path, fmt.Errorf("HTTP %d: %w", status, err))
	}
	if status < 200 || status > 299 {
		res.Success = false
	}
	return res, nil
}
