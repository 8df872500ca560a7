// Package api is a small REST client for the shop's public API.
//
// The API answers almost every request with HTTP 200 and puts the real
// outcome in a JSON envelope ({"responseCode": 404, "message": "..."}),
// often under a text/html content type. Responses are therefore decoded
// regardless of content type, and assertions look at the envelope.
package api

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thompsonoloko-droid/automation-e2e/internal/logging"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://automationexercise.com/api"

// Default client settings.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultBurst     = 5
)

// ErrUnexpectedStatus is returned by VerifyStatusCode on a mismatch.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client issues requests against the API root.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLimiter throttles requests through l. Share one limiter between
// clients to bound the combined rate; nil disables throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger logs every request at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = logging.OrNop(l)
	}
}

// NewClient returns a client for baseURL (default: DefaultBaseURL).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultBurst),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Body is a request payload: a form or a JSON document. Form wins when both
// are set; an empty Body sends no payload.
type Body struct {
	JSON interface{}
	Form map[string]string
}

func (b Body) encode() (io.Reader, string, error) {
	switch {
	case b.Form != nil:
		values := url.Values{}
		for k, v := range b.Form {
			values.Set(k, v)
		}
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	case b.JSON != nil:
		raw, err := json.Marshal(b.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode json body: %w", err)
		}
		return bytes.NewReader(raw), "application/json", nil
	default:
		return nil, "", nil
	}
}

// Form is shorthand for a form Body.
func Form(values map[string]string) Body {
	return Body{Form: values}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v whatever the content type.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body %q: %w", truncate(r.Body, 200), err)
	}
	return nil
}

// Envelope decodes the responseCode/message envelope.
func (r *Response) Envelope() (Envelope, error) {
	var env Envelope
	err := r.JSON(&env)
	return env, err
}

// Envelope is the outcome the API reports inside an HTTP 200.
type Envelope struct {
	ResponseCode int    `json:"responseCode"`
	Message      string `json:"message"`
}

// Get issues a GET with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (*Response, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}
	return c.do(ctx, http.MethodGet, u, Body{})
}

// Post issues a POST.
func (c *Client) Post(ctx context.Context, endpoint string, body Body) (*Response, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+endpoint, body)
}

// Put issues a PUT.
func (c *Client) Put(ctx context.Context, endpoint string, body Body) (*Response, error) {
	return c.do(ctx, http.MethodPut, c.baseURL+endpoint, body)
}

// Delete issues a DELETE. The API expects credentials in a form body.
func (c *Client) Delete(ctx context.Context, endpoint string, body Body) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.baseURL+endpoint, body)
}

func (c *Client) do(ctx context.Context, method, u string, body Body) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	payload, contentType, err := body.encode()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

// VerifyStatusCode checks the HTTP status of resp.
func VerifyStatusCode(resp *Response, code int) error {
	if resp == nil {
		return fmt.Errorf("%w: no response, want %d", ErrUnexpectedStatus, code)
	}
	if resp.StatusCode != code {
		return fmt.Errorf("%w: got %d, want %d (body %q)", ErrUnexpectedStatus, resp.StatusCode, code, truncate(resp.Body, 200))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
