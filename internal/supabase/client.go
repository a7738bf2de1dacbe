// Package supabase is a small typed client for the Supabase Auth, REST and Storage APIs.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "mealtap/internal/errors"
)

// Client talks to one Supabase project using its publishable (anon) key.
// Calls made on behalf of a user pass that user's access token, so row-level
// policies apply on the server.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for the project at rawURL. It returns ErrNotConfigured
// when either the URL or the key is missing.
func New(rawURL, apiKey string, opts ...Option) (*Client, error) {
	if rawURL == "" || apiKey == "" {
		return nil, apperrors.ErrNotConfigured
	}
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse supabase url: %w", err)
	}
	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the project URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// Configured reports whether c can reach a project. A nil client is valid and
// fails every call with ErrNotConfigured.
func (c *Client) Configured() bool {
	return c != nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	token   string
	header  http.Header
	body    io.Reader
	jsonIn  any
	jsonOut any
}

func (c *Client) do(ctx context.Context, r request) error {
	if c == nil {
		return apperrors.ErrNotConfigured
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	body := r.body
	if r.jsonIn != nil {
		payload, err := json.Marshal(r.jsonIn)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vals := range r.header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if r.jsonIn != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	token := r.token
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, raw)
	}
	if r.jsonOut == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, r.jsonOut); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// escapePath escapes each segment of an object path.
func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
