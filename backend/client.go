// Package backend is the client of the upstream auction platform REST API. Upstream field
// spellings (fueltype, bodytype, engineconfiguration, state_name) stay in this package.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound matches an APIError with status 404
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx upstream response
type APIError struct {
	Status     int
	Message    string
	Suggestion string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Options configures a Client
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond and Burst bound the outbound call rate
	RequestsPerSecond float64
	Burst             int
	Transport         http.RoundTripper
}

// Client calls the upstream API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New returns a client for opts.BaseURL
func New(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst == 0 {
		opts.Burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		limiter: rate.NewLimiter(limit, opts.Burst),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out interface{}) error {
	var payload io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, token, contentType, payload, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, token, contentType string, body io.Reader, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.S().Warnw("upstream request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	zap.S().Debugw("upstream request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

type errorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

func decodeError(status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg, Suggestion: body.Suggestion}
}

// flexString accepts a JSON string, number or null
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(v)
	default:
		*f = flexString(s)
	}
	return nil
}

type successBody struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func (s successBody) check() error {
	if s.Success != nil && !*s.Success {
		return &APIError{Status: http.StatusOK, Message: s.Message}
	}
	return nil
}
