// Package estimate is the client for the valuation backend.
//
// Every call to Estimate performs exactly one POST {base}/estimate with a
// {"text": query} body. There is no retry and no client-side timeout; callers
// that need a deadline pass a context that has one. Failures are classified
// as *NetworkError (no response) or *ServerError (unusable response).
package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"sterling/config"
)

const (
	estimatePath    = "/estimate"
	maxResponseSize = 32 << 20 // PDFs are returned inline
	maxErrorBody    = 4096
)

type request struct {
	Text string `json:"text"`
}

// Client posts queries to a single, statically configured backend.
type Client struct {
	baseURL    string
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(ua)
	}
}

// NewClient validates baseURL and returns a Client for {baseURL}/estimate.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("estimate: invalid base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("estimate: base URL %q must be an absolute http(s) URL", baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		endpoint:   endpointURL(baseURL),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func endpointURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + estimatePath
}

// Endpoint returns the full URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Estimate sends query to the backend and decodes the justification.
func (c *Client) Estimate(ctx context.Context, query string) (*Result, error) {
	body, err := json.Marshal(request{Text: query})
	if err != nil {
		return nil, fmt.Errorf("estimate: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("estimate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Estimate] POST %s (%d bytes)", c.endpoint, len(body))
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: c.endpoint, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &ServerError{
			StatusCode: res.StatusCode,
			URL:        c.endpoint,
			Body:       string(buf),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, &NetworkError{URL: c.endpoint, Err: fmt.Errorf("read response body: %w", err)}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Estimate] %d from %s (%d bytes)", res.StatusCode, c.endpoint, len(raw))
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, &ServerError{
			StatusCode: res.StatusCode,
			URL:        c.endpoint,
			Body:       truncate(string(raw), maxErrorBody),
			Err:        err,
		}
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
