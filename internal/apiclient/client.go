package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/metrics"
	"github.com/nyroxsystems-boop/Autoteile-Dashboard-sub001/internal/platform/correlation"
)

const defaultCallTimeout = 30 * time.Second

// TokenSource provides the current bearer token. An empty string means no
// token; the request proceeds unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

// Param is one query parameter. Insertion order is preserved on the wire;
// params with an empty value are treated as absent and skipped.
type Param struct {
	Key   string
	Value string
}

// Options carries the per-request parts of a request descriptor.
type Options struct {
	Query  []Param
	Body   any
	Header http.Header
}

// Client is the HTTP request core. It never mutates session state itself; on
// a 401 it signals invalidation through the registered hook and propagates
// the error.
type Client struct {
	baseURL     string
	httpc       *http.Client
	scheme      string
	staticToken string

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithAuthScheme overrides the Authorization scheme (default "Token").
func WithAuthScheme(scheme string) Option {
	return func(c *Client) { c.scheme = scheme }
}

// WithStaticToken sets an environment-provided token that takes precedence
// over any session token (service-to-service deployments).
func WithStaticToken(token string) Option {
	return func(c *Client) { c.staticToken = token }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultCallTimeout},
		scheme:  "Token",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource registers the provider of the per-user session token.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

// OnUnauthorized registers the hook fired when the backend answers 401. The
// auth manager uses it to clear the session; the client itself stays ignorant
// of session state.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) token() string {
	if c.staticToken != "" {
		return c.staticToken
	}
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return ""
	}
	return ts.Token()
}

// Payload is a successful response before type narrowing. An empty 2xx body
// is normalized to an empty JSON object; a non-JSON 2xx body is kept as raw
// text and is not an error.
type Payload struct {
	Status int
	Header http.Header
	Body   []byte
	IsJSON bool

	url string
}

// Decode narrows the payload into the caller's declared shape. Failure means
// the backend sent something this client does not understand and surfaces as
// a malformed-response error.
func (p *Payload) Decode(v any) error {
	if err := json.Unmarshal(p.Body, v); err != nil {
		return &Error{
			Type:    TypeMalformed,
			Message: "malformed response body",
			Status:  p.Status,
			URL:     p.url,
			Body:    string(p.Body),
			Cause:   err,
		}
	}
	return nil
}

// Text returns the response body as text.
func (p *Payload) Text() string {
	return string(p.Body)
}

// Do executes one request. Bodies are JSON-encoded; GET and DELETE never send
// a body even when one is passed. Errors are always *Error; nothing is
// retried or swallowed here.
func (c *Client) Do(ctx context.Context, method, path string, opts *Options) (*Payload, error) {
	if opts == nil {
		opts = &Options{}
	}

	fullURL := c.baseURL + path
	if q := encodeQuery(opts.Query); q != "" {
		fullURL += "?" + q
	}

	requestID, ok := correlation.ID(ctx)
	if !ok {
		requestID = correlation.NewID()
		ctx = correlation.WithID(ctx, requestID)
	}

	var bodyReader io.Reader
	sendBody := opts.Body != nil && method != http.MethodGet && method != http.MethodDelete
	if sendBody {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, &Error{Type: TypeMalformed, Message: "failed to encode request body", URL: fullURL, Cause: err}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, &Error{Type: TypeUnreachable, Message: "failed to build request", URL: fullURL, Cause: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if sendBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range opts.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", c.scheme+" "+token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "unreachable").Inc()
		slog.WarnContext(ctx, "Backend unreachable", "method", method, "url", fullURL, "error", err)
		return nil, &Error{Type: TypeUnreachable, Message: "backend unreachable", URL: fullURL, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "unreachable").Inc()
		return nil, &Error{Type: TypeUnreachable, Message: "failed to read response body", URL: fullURL, Cause: err}
	}

	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		payload := &Payload{
			Status: resp.StatusCode,
			Header: resp.Header,
			Body:   respBody,
			url:    fullURL,
		}
		if len(bytes.TrimSpace(respBody)) == 0 {
			payload.Body = []byte("{}")
			payload.IsJSON = true
		} else {
			payload.IsJSON = json.Valid(respBody)
		}
		return payload, nil
	}

	apiErr := newHTTPError(resp.StatusCode, fullURL, parseErrorBody(respBody))
	slog.WarnContext(ctx, "API request failed",
		"method", method, "url", fullURL, "status", resp.StatusCode, "type", string(apiErr.Type))

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.SessionInvalidationsTotal.Inc()
		c.mu.RLock()
		hook := c.onUnauthorized
		c.mu.RUnlock()
		if hook != nil {
			hook()
		}
	}

	return nil, apiErr
}

// Get issues a GET and decodes the response into out (skipped when out is nil).
func (c *Client) Get(ctx context.Context, path string, opts *Options, out any) error {
	return c.call(ctx, http.MethodGet, path, opts, out)
}

// Post issues a POST and decodes the response into out (skipped when out is nil).
func (c *Client) Post(ctx context.Context, path string, opts *Options, out any) error {
	return c.call(ctx, http.MethodPost, path, opts, out)
}

// Put issues a PUT and decodes the response into out (skipped when out is nil).
func (c *Client) Put(ctx context.Context, path string, opts *Options, out any) error {
	return c.call(ctx, http.MethodPut, path, opts, out)
}

// Patch issues a PATCH and decodes the response into out (skipped when out is nil).
func (c *Client) Patch(ctx context.Context, path string, opts *Options, out any) error {
	return c.call(ctx, http.MethodPatch, path, opts, out)
}

// Delete issues a DELETE and decodes the response into out (skipped when out is nil).
func (c *Client) Delete(ctx context.Context, path string, opts *Options, out any) error {
	return c.call(ctx, http.MethodDelete, path, opts, out)
}

func (c *Client) call(ctx context.Context, method, path string, opts *Options, out any) error {
	payload, err := c.Do(ctx, method, path, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return payload.Decode(out)
}

// encodeQuery renders params in insertion order, skipping absent values.
func encodeQuery(params []Param) string {
	var b strings.Builder
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// parseErrorBody JSON-parses a non-2xx body, falling back to wrapping the raw
// text so the caller always gets a structured value.
func parseErrorBody(body []byte) any {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return map[string]any{"error": string(body)}
	}
	return parsed
}
