package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/LefterisXris/brew-bean-app/internal/middleware"
)

// maxErrorBody caps how much of an upstream error response is kept.
const maxErrorBody = 4 << 10

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewClient(name string, baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid %s base url %q: %w", name, baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s base url %q: scheme and host required", name, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}, nil
}

// Do sends a request relative to the base url with the given headers and the
// context's correlation id.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, header http.Header) (*http.Response, error) {
	rel := &url.URL{Path: strings.TrimPrefix(path, "/"), RawQuery: rawQuery}
	u := c.baseDir().ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	if header != nil {
		req.Header = header.Clone()
	}
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

// getJSON decodes a 2xx response into out; anything else is an UpstreamError.
func (c *Client) getJSON(ctx context.Context, op Op, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, "", nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return &UpstreamError{Op: op, Service: c.Name, Err: err}
	}
	defer resp.Body.Close()
	return c.decode(op, resp, out)
}

func (c *Client) postJSON(ctx context.Context, op Op, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &UpstreamError{Op: op, Service: c.Name, Err: fmt.Errorf("encode request: %w", err)}
	}

	headers := http.Header{
		"Accept":       {"application/json"},
		"Content-Type": {"application/json"},
	}
	resp, err := c.Do(ctx, http.MethodPost, path, "", bytes.NewReader(payload), headers)
	if err != nil {
		return &UpstreamError{Op: op, Service: c.Name, Err: err}
	}
	defer resp.Body.Close()
	return c.decode(op, resp, out)
}

func (c *Client) decode(op Op, resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Op: op, Service: c.Name, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, Service: c.Name, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// baseDir makes relative resolution keep any path prefix on the base URL.
func (c *Client) baseDir() *url.URL {
	u := *c.BaseURL
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &u
}
