// Package http provides the fluent, retry-aware HTTP client every backend
// call goes through.
//
// Usage:
//
//	c := http.NewClient(http.Options{BaseURL: "https://shop.example.com"})
//
//	resp, err := c.Get("/api/orders").
//	    Bearer(token).
//	    Endpoint("orders.list").
//	    Send(ctx)
//
//	var orders []Order
//	err = resp.JSON(&orders)
//
//	resp, err := c.Post("/api/auth/login").
//	    Body(map[string]any{"email": email, "password": password}).
//	    Send(ctx)
//
// A non-2xx status is not an error; Send only fails when no response was
// received. Callers branch on Response.OK.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	gohttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// RequestIDHeader carries a per-call correlation id to the backend.
const RequestIDHeader = "X-Request-ID"

var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration // per attempt
	Retries   int           // total attempts, 1 = no retry
	RetryWait time.Duration // initial backoff, doubles every attempt
	Transport gohttp.RoundTripper
	Logger    *slog.Logger
}

// Client sends requests relative to a base URL.
type Client struct {
	base      string
	http      *gohttp.Client
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	log       *slog.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		timeout:   opts.Timeout,
		retries:   opts.Retries,
		retryWait: opts.RetryWait,
		log:       opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}
	if c.retries < 1 {
		c.retries = 1
	}
	if c.retryWait <= 0 {
		c.retryWait = 500 * time.Millisecond
	}
	if c.log == nil {
		c.log = logger.L
	}

	rt := opts.Transport
	if rt == nil {
		rt = defaultTransport
	}
	c.http = &gohttp.Client{Transport: rt}
	return c
}

// BaseURL returns the configured origin ("" for same-origin).
func (c *Client) BaseURL() string { return c.base }

// Retries is the configured attempt count for idempotent requests.
func (c *Client) Retries() int { return c.retries }

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	client   *Client
	method   string
	path     string
	query    url.Values
	headers  map[string]string
	body     interface{}
	endpoint string
	retries  int
}

func (c *Client) Get(path string) *Request  { return c.newRequest(gohttp.MethodGet, path) }
func (c *Client) Post(path string) *Request { return c.newRequest(gohttp.MethodPost, path) }
func (c *Client) Put(path string) *Request  { return c.newRequest(gohttp.MethodPut, path) }

// newRequest gives GET and PUT the client's attempt count. POST is sent
// once unless the caller opts in with Retry: a failure after the body was
// written could otherwise repeat its effect.
func (c *Client) newRequest(method, path string) *Request {
	retries := 1
	if method == gohttp.MethodGet || method == gohttp.MethodPut {
		retries = c.retries
	}
	return &Request{
		client:  c,
		method:  method,
		path:    path,
		query:   url.Values{},
		headers: map[string]string{"Accept": "application/json"},
		retries: retries,
	}
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets the Authorization: Bearer <token> header. An empty token
// leaves the request unauthenticated.
func (r *Request) Bearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.Header("Authorization", "Bearer "+token)
}

// Query adds a query parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// Body sets the request body. v is marshalled to JSON; strings and []byte
// are sent raw.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Endpoint names the call for metrics and logs instead of the raw path,
// which may carry ids.
func (r *Request) Endpoint(name string) *Request {
	r.endpoint = name
	return r
}

// Retry overrides the client's attempt count for this request.
func (r *Request) Retry(n int) *Request {
	if n >= 1 {
		r.retries = n
	}
	return r
}

// URL is the fully resolved request URL.
func (r *Request) URL() string {
	u := r.client.base + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	return u
}

// ------------------- Send -------------------

// Send executes the request, retrying transport failures with exponential
// backoff. It returns an error only when no response was received.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	id := uuid.NewString()
	log := logger.WithCtx(ctx)
	if log == logger.L {
		log = r.client.log
	}
	log = log.With("request_id", id, "method", r.method, "endpoint", r.label())

	var lastErr error
	for attempt := 1; attempt <= r.retries; attempt++ {
		start := time.Now()
		resp, err := r.do(ctx, id)
		r.observe(resp, err, time.Since(start))
		if err == nil {
			log.Debug("http: response", "status", resp.StatusCode, "attempt", attempt)
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < r.retries {
			backoff := time.Duration(float64(r.client.retryWait) * math.Pow(2, float64(attempt-1)))
			log.Warn("http: request failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("http: %s %s: %w", r.method, r.path, ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("http: %s %s failed after %d attempt(s): %w", r.method, r.path, r.retries, lastErr)
}

func (r *Request) do(ctx context.Context, id string) (*Response, error) {
	body, ct, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.client.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}

	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set(RequestIDHeader, id)

	resp, err := r.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, string, error) {
	if r.body == nil {
		return nil, "", nil
	}
	switch v := r.body.(type) {
	case string:
		return strings.NewReader(v), "text/plain", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

func (r *Request) label() string {
	if r.endpoint != "" {
		return r.endpoint
	}
	return r.path
}

func (r *Request) observe(resp *Response, err error, d time.Duration) {
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.APIRequestTotal.WithLabelValues(r.method, r.label(), status).Inc()
	metrics.APIRequestDuration.WithLabelValues(r.method, r.label(), status).Observe(d.Seconds())
}

// ------------------- Response -------------------

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	mt, _, err := mime.ParseMediaType(r.Headers.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}
